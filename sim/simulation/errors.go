package simulation

import (
	"errors"
	"fmt"

	"github.com/sarchlab/netsim/sim/timing"
)

var (
	// ErrEventInPast is returned when a component schedules an event that is
	// not strictly in the future.
	ErrEventInPast = errors.New("event scheduled in the past")

	// ErrUnknownEvent is returned when the simulator cannot dispatch an
	// event.
	ErrUnknownEvent = errors.New("unknown event")

	// ErrBadEvent is returned when an event carries arguments the simulator
	// cannot use.
	ErrBadEvent = errors.New("bad event arguments")

	// ErrBadTopology is returned when a node or a link does not fit the
	// nodes and links already added.
	ErrBadTopology = errors.New("bad topology")

	// ErrNotUninitialized is returned when the topology is changed or Run is
	// called after the simulator has started.
	ErrNotUninitialized = errors.New("simulator already started")
)

// A FatalError stops a run. It tells when the run stopped and which component
// failed.
type FatalError struct {
	Time      timing.VTimeInMs
	Component string
	Err       error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal error at %d in %s: %v", e.Time, e.Component, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}
