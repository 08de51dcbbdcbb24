package engine

import (
	"errors"

	"github.com/dyluth/spoor/pkg/replay"
)

// ErrMissingInput is returned (wrapped) from Start by a module whose input data
// is absent from the context. The engine detaches such a module for the rest of
// the run instead of recording a failure.
var ErrMissingInput = errors.New("missing input data")

// Module is an analysis plugin. Every module has a name; the hooks it takes
// part in are declared by implementing Starter, Handler and Finisher.
type Module interface {
	Name() string
}

// Starter is implemented by modules that initialise state before the first event.
type Starter interface {
	Start(rc *replay.Context) error
}

// Handler is implemented by modules that consume events.
type Handler interface {
	// Kinds returns the event kinds the module wants to receive.
	Kinds() []replay.Kind

	// Handle processes one event. Called in stream order.
	Handle(rc *replay.Context, ev replay.Event) error
}

// Finisher is implemented by modules that publish results after the last event.
type Finisher interface {
	End(rc *replay.Context) error
}

// Hook identifies the lifecycle moment a failure happened in.
type Hook string

const (
	HookStart Hook = "start"
	HookEvent Hook = "event"
	HookEnd   Hook = "end"
)
