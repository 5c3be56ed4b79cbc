// Package simulation runs the main loop of a network simulation. It owns the
// global event queue, the nodes and the links, and advances the virtual clock
// from one step to the next.
package simulation

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/sarchlab/netsim/sim/hooking"
	"github.com/sarchlab/netsim/sim/link"
	"github.com/sarchlab/netsim/sim/node"
	"github.com/sarchlab/netsim/sim/params"
	"github.com/sarchlab/netsim/sim/timing"
)

// A Simulator drives nodes and links with a single virtual clock.
type Simulator struct {
	hooking.HookableBase

	parameters              *params.Parameters
	report                  io.Writer
	logger                  *log.Logger
	continueOnDownCallError bool
	stopTime                timing.VTimeInMs

	queue *timing.EventQueue
	nodes []*node.Node
	links []*link.Link

	timeLock sync.RWMutex
	now      timing.VTimeInMs
	state    State

	// stepLock is held while a step mutates nodes and links.
	stepLock sync.RWMutex

	isPaused      bool
	isPausedLock  sync.Mutex
	pauseLock     sync.Mutex
	singleRunLock sync.Mutex
}

// Parameters returns the global parameters.
func (s *Simulator) Parameters() *params.Parameters {
	return s.parameters
}

// Report returns where dumps and traces are printed.
func (s *Simulator) Report() io.Writer {
	return s.report
}

// StopTime returns the time after which no event is run.
func (s *Simulator) StopTime() timing.VTimeInMs {
	return s.stopTime
}

// Nodes returns the nodes, indexed by id.
func (s *Simulator) Nodes() []*node.Node {
	return s.nodes
}

// Links returns the links in the order they were added.
func (s *Simulator) Links() []*link.Link {
	return s.links
}

// Now returns the time of the current step.
func (s *Simulator) Now() timing.VTimeInMs {
	s.timeLock.RLock()
	defer s.timeLock.RUnlock()

	return s.now
}

func (s *Simulator) writeNow(t timing.VTimeInMs) {
	s.timeLock.Lock()
	s.now = t
	s.timeLock.Unlock()
}

// State returns the lifecycle stage of the simulator.
func (s *Simulator) State() State {
	s.timeLock.RLock()
	defer s.timeLock.RUnlock()

	return s.state
}

func (s *Simulator) writeState(st State) {
	s.timeLock.Lock()
	s.state = st
	s.timeLock.Unlock()
}

// PendingEvents returns the number of events in the global queue.
func (s *Simulator) PendingEvents() int {
	return s.queue.Len()
}

// AddNode adds a node. Nodes must be added in id order starting from 0.
func (s *Simulator) AddNode(n *node.Node) error {
	if s.State() != Uninitialized {
		return ErrNotUninitialized
	}

	if n.ID() != len(s.nodes) {
		return fmt.Errorf("%w: expected node %d, got node %d",
			ErrBadTopology, len(s.nodes), n.ID())
	}

	s.nodes = append(s.nodes, n)

	return nil
}

// AddLink adds a link and attaches it to the nodes at both of its ends.
func (s *Simulator) AddLink(l *link.Link) error {
	if s.State() != Uninitialized {
		return ErrNotUninitialized
	}

	a, z := l.Ends()
	for _, end := range []link.Endpoint{a, z} {
		if end.Node < 0 || end.Node >= len(s.nodes) {
			return fmt.Errorf("%w: %s connects missing node %d",
				ErrBadTopology, l.Name(), end.Node)
		}
	}

	if err := s.nodes[a.Node].AttachLink(l); err != nil {
		return fmt.Errorf("%w: %w", ErrBadTopology, err)
	}

	if z.Node != a.Node {
		if err := s.nodes[z.Node].AttachLink(l); err != nil {
			return fmt.Errorf("%w: %w", ErrBadTopology, err)
		}
	}

	s.links = append(s.links, l)

	return nil
}

// Schedule adds an event to the global queue.
func (s *Simulator) Schedule(evt *timing.Event) error {
	if s.State() == Running && evt.Time <= s.Now() {
		return fmt.Errorf("%w: %s at %d", ErrEventInPast, evt, s.Now())
	}

	return s.queue.Push(evt)
}

// Pause stops the simulator before its next step.
func (s *Simulator) Pause() {
	s.isPausedLock.Lock()
	defer s.isPausedLock.Unlock()

	if s.isPaused {
		return
	}

	s.pauseLock.Lock()
	s.isPaused = true
}

// Continue lets a paused simulator go on.
func (s *Simulator) Continue() {
	s.isPausedLock.Lock()
	defer s.isPausedLock.Unlock()

	if !s.isPaused {
		return
	}

	s.pauseLock.Unlock()
	s.isPaused = false
}

// IsPaused tells if the simulator is paused.
func (s *Simulator) IsPaused() bool {
	s.isPausedLock.Lock()
	defer s.isPausedLock.Unlock()

	return s.isPaused
}

// Inspect runs f between two steps, so that f sees the nodes and links in a
// consistent state. It is safe to call from another goroutine.
func (s *Simulator) Inspect(f func()) {
	s.stepLock.RLock()
	defer s.stepLock.RUnlock()

	f()
}

// Run initializes the nodes and runs steps until no event is left or the
// stop time is passed. It returns the first fatal error.
func (s *Simulator) Run() error {
	s.singleRunLock.Lock()
	defer s.singleRunLock.Unlock()

	if s.State() != Uninitialized {
		return ErrNotUninitialized
	}

	fmt.Fprint(s.report,
		"\nsimulation starts - first processing step with clock = 0\n\n")
	s.writeState(Running)

	defer s.writeState(Terminated)

	s.stepLock.Lock()
	err := s.initialize()
	s.stepLock.Unlock()

	if err != nil {
		return err
	}

	for s.queue.Len() > 0 {
		next := s.queue.Peek().Time
		if next > s.stopTime {
			s.logger.Printf("%d events not run; stopped too early?",
				s.queue.Len())
			break
		}

		s.pauseLock.Lock()
		s.stepLock.Lock()

		s.writeNow(next)
		err = s.step(next)

		s.stepLock.Unlock()
		s.pauseLock.Unlock()

		if err != nil {
			return err
		}
	}

	fmt.Fprintf(s.report,
		"\nsimulation ended - last processing step with clock = %d\n\n",
		s.Now())

	return nil
}

func (s *Simulator) initialize() error {
	for _, n := range s.nodes {
		err := n.Initialize()
		if err = s.nodeError(n, err); err != nil {
			return err
		}

		if err = s.enqueue(n.DrainOutputEvents(), nodeName(n)); err != nil {
			return err
		}
	}

	return s.transmit()
}

func (s *Simulator) step(now timing.VTimeInMs) error {
	if err := s.processEvents(now); err != nil {
		return err
	}

	for _, n := range s.nodes {
		err := n.ProcessInputEvents(now)
		if err = s.nodeError(n, err); err != nil {
			return err
		}

		if err = s.enqueue(n.DrainOutputEvents(), nodeName(n)); err != nil {
			return err
		}
	}

	return s.transmit()
}

func (s *Simulator) transmit() error {
	now := s.Now()

	for _, l := range s.links {
		if err := l.Transmit(now); err != nil {
			return s.fatal(l.Name(), err)
		}

		if err := s.enqueue(l.DrainOutputEvents(), l.Name()); err != nil {
			return err
		}
	}

	return nil
}

func (s *Simulator) enqueue(evts []*timing.Event, component string) error {
	now := s.Now()

	for _, evt := range evts {
		if evt.Time <= now {
			return s.fatal(component,
				fmt.Errorf("%w: %s at %d", ErrEventInPast, evt, now))
		}

		if err := s.queue.Push(evt); err != nil {
			return s.fatal(component, err)
		}
	}

	return nil
}

func (s *Simulator) nodeError(n *node.Node, err error) error {
	if err == nil {
		return nil
	}

	if s.continueOnDownCallError && errors.Is(err, node.ErrDownCallMisuse) {
		s.logger.Printf("ignoring: %v", err)
		return nil
	}

	return s.fatal(nodeName(n), err)
}

func (s *Simulator) fatal(component string, err error) error {
	fe := &FatalError{
		Time:      s.Now(),
		Component: component,
		Err:       err,
	}

	s.logger.Print(fe)

	return fe
}

func nodeName(n *node.Node) string {
	return fmt.Sprintf("node %d", n.ID())
}
