// pkg/engine/module.go
package engine

import (
	"context"
)

// Module is the unit of work the engine schedules. Implementations are
// opaque to the engine: it never interprets their business logic, only
// their success or failure and the output they return.
//
// A module is invoked with its resolved arguments (literals, "@name"
// substitutions, and sentinel slots already filled from upstream outputs)
// and with the raw outputs of its dependencies keyed by producing instance
// ID. Process returns the value propagated to every dependent, which may
// be a single value or a collection of named sub-outputs.
type Module interface {
	// SetUp validates the resolved arguments and prepares any state the
	// module needs. It runs immediately before Process on the same node
	// and must not start externally visible work.
	SetUp(ctx context.Context, args map[string]interface{}) error

	// Process performs the module's work. Long-running cloud or I/O
	// operations should honor ctx cancellation where they safely can.
	Process(ctx context.Context, args map[string]interface{}, inputs map[string]interface{}) (interface{}, error)
}

// ModuleFactory is a function that creates an instance of a module.
// The orchestrator creates a fresh instance per recipe node, so two
// instances of the same type never share mutable state.
type ModuleFactory func() Module
