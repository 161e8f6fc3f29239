package plugin

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/VanZoel112/vzoelupgrade-sub000/internal/command"
)

// Result is the outcome of loading one extension. Err nil means loaded.
type Result struct {
	Name string
	Err  error
}

// Loaded reports whether the extension ended up registered.
func (r Result) Loaded() bool { return r.Err == nil }

// Loader instantiates extensions from a namespace of factories and
// registers their commands. Each loader owns its state, so tests can run
// isolated instances.
type Loader struct {
	factories []Factory
	enabled   map[string]struct{} // nil means all
	disabled  map[string]struct{}
	log       zerolog.Logger

	mu        sync.Mutex
	instances map[string]Extension
	loaded    map[string]struct{}
	failed    map[string]error
}

// Option adjusts a Loader.
type Option func(*Loader)

// WithFactories replaces the default namespace, mainly for tests.
func WithFactories(fs []Factory) Option {
	return func(l *Loader) { l.factories = fs }
}

// WithEnabled whitelists extension names; empty list keeps all.
func WithEnabled(names []string) Option {
	return func(l *Loader) {
		if len(names) == 0 {
			return
		}
		l.enabled = nameSet(names)
	}
}

// WithDisabled blacklists extension names.
func WithDisabled(names []string) Option {
	return func(l *Loader) { l.disabled = nameSet(names) }
}

func nameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[strings.ToLower(strings.TrimSpace(n))] = struct{}{}
	}
	return set
}

// NewLoader builds a loader over the default namespace unless options say
// otherwise.
func NewLoader(log zerolog.Logger, opts ...Option) *Loader {
	l := &Loader{
		factories: Registered(),
		disabled:  map[string]struct{}{},
		log:       log.With().Str("component", "plugins").Logger(),
		instances: map[string]Extension{},
		loaded:    map[string]struct{}{},
		failed:    map[string]error{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) allowed(name string) bool {
	normalized := strings.ToLower(name)
	if strings.HasPrefix(normalized, "_") {
		return false
	}
	if l.enabled != nil {
		if _, ok := l.enabled[normalized]; !ok {
			return false
		}
	}
	_, off := l.disabled[normalized]
	return !off
}

// Discover enumerates the available extension names, sorted. Private
// (underscore-prefixed) and disabled extensions are skipped. Discovery
// never mutates registration state.
func (l *Loader) Discover() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	names := make([]string, 0, len(l.factories))
	for _, f := range l.factories {
		ext := f()
		if ext == nil || !l.allowed(ext.Name()) {
			continue
		}
		if _, seen := l.instances[ext.Name()]; !seen {
			l.instances[ext.Name()] = ext
		}
		names = append(names, ext.Name())
	}
	sort.Strings(names)
	return names
}

// Load initializes every discovered extension that is not already loaded
// and registers its command list. A failing or panicking Setup marks that
// extension failed and moves on; isolation between extensions is the
// point of this loop.
func (l *Loader) Load(ctx context.Context, app *command.App) []Result {
	results := make([]Result, 0)
	for _, name := range l.Discover() {
		l.mu.Lock()
		_, already := l.loaded[name]
		ext := l.instances[name]
		l.mu.Unlock()
		if already {
			continue
		}

		err := l.setup(ctx, ext, app)
		if err != nil {
			l.log.Error().Err(err).Str("plugin", name).Msg("extension failed to load")
			l.mu.Lock()
			l.failed[name] = err
			l.mu.Unlock()
			results = append(results, Result{Name: name, Err: err})
			continue
		}

		for _, cmdName := range ext.Commands() {
			app.Registry.Register(cmdName, name, ext.Handle)
		}

		l.mu.Lock()
		l.loaded[name] = struct{}{}
		delete(l.failed, name)
		l.mu.Unlock()
		l.log.Info().Str("plugin", name).Strs("commands", ext.Commands()).Msg("extension loaded")
		results = append(results, Result{Name: name})
	}
	return results
}

// setup runs the optional initialization entry point, converting a panic
// into an error so it stays contained to this extension.
func (l *Loader) setup(ctx context.Context, ext Extension, app *command.App) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("setup panicked: %v", r)
		}
	}()
	if init, ok := ext.(Initializer); ok {
		return init.Setup(ctx, app)
	}
	return nil
}

// LoadedNames returns the successfully loaded extensions, sorted.
func (l *Loader) LoadedNames() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, 0, len(l.loaded))
	for name := range l.loaded {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Failed returns the extensions whose initialization failed.
func (l *Loader) Failed() map[string]error {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]error, len(l.failed))
	for name, err := range l.failed {
		out[name] = err
	}
	return out
}
