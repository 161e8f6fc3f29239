// Package plugin discovers and loads extensions: independently authored
// units of handler code that declare the command names they own. Loading
// is a two-phase contract, enumerate then load-with-isolation, so one
// broken extension is a value in the loader's results instead of a fault
// that stops its neighbours.
package plugin

import (
	"context"

	"github.com/VanZoel112/vzoelupgrade-sub000/internal/command"
)

// Extension is the loadable unit. Commands returns the static list of
// command names the extension claims; Handle serves all of them.
type Extension interface {
	Name() string
	Commands() []string
	Handle(ctx context.Context, c *command.Context) error
}

// Initializer is implemented by extensions that need the shared
// application handle before their commands go live, e.g. to register
// transport-level hooks. Setup may block on I/O.
type Initializer interface {
	Setup(ctx context.Context, app *command.App) error
}

// Factory constructs a fresh extension instance.
type Factory func() Extension

var registered []Factory

// Add registers a factory in the default namespace. Plugin packages call
// this from init() and are blank-imported by the binary.
func Add(f Factory) {
	registered = append(registered, f)
}

// Registered returns the default namespace's factories.
func Registered() []Factory {
	return registered
}
