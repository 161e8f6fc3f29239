package command

import (
	"context"

	"github.com/rs/zerolog"
)

type route struct {
	owner   string
	handler HandlerFunc
}

// Registry is the authoritative mapping from normalized command names to
// the handler that owns them. Ownership is first-wins: once a name is
// claimed, later claims are rejected and logged, never silently replaced.
//
// Names are appended only during the load phase; steady-state dispatch
// treats the map as read-only, so dispatch needs no locking.
type Registry struct {
	routes map[string]route
	log    zerolog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		routes: map[string]route{},
		log:    log.With().Str("component", "registry").Logger(),
	}
}

// Register claims one command name for ownerID. It reports whether the
// claim succeeded; a conflict keeps the first registrant and logs a
// warning.
func (r *Registry) Register(name, ownerID string, handler HandlerFunc) bool {
	name = Normalize(name)
	if name == "" || handler == nil {
		return false
	}
	if existing, taken := r.routes[name]; taken {
		r.log.Warn().
			Str("command", name).
			Str("owner", existing.owner).
			Str("rejected", ownerID).
			Msg("command already claimed, keeping first registrant")
		return false
	}
	r.routes[name] = route{owner: ownerID, handler: handler}
	return true
}

// RegisterHandler is the explicit registration path for components that
// want programmatic control over several names at once. It shares the
// ownership set with the declarative path, so the two can never collide
// silently. It reports whether every name was claimed.
func (r *Registry) RegisterHandler(names []string, ownerID string, handler HandlerFunc) bool {
	all := true
	for _, name := range names {
		if !r.Register(name, ownerID, handler) {
			all = false
		}
	}
	return all
}

// IsHandled reports whether a command name is already owned. Extensions
// that attach their own transport listeners call this first and defer to
// the earlier claim.
func (r *Registry) IsHandled(name string) bool {
	_, ok := r.routes[Normalize(name)]
	return ok
}

// Owner returns which extension owns a name, empty if unclaimed.
func (r *Registry) Owner(name string) string {
	return r.routes[Normalize(name)].owner
}

// Names returns all registered command names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.routes))
	for name := range r.routes {
		names = append(names, name)
	}
	return names
}

// Dispatch invokes the handler registered for name, reporting whether one
// existed. The handler's error, if any, is passed through untouched.
func (r *Registry) Dispatch(ctx context.Context, name string, c *Context) (bool, error) {
	rt, ok := r.routes[Normalize(name)]
	if !ok {
		return false, nil
	}
	return true, rt.handler(ctx, c)
}
