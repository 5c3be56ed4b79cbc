package simulation

import (
	"fmt"
	"strconv"

	"github.com/sarchlab/netsim/sim/hooking"
	"github.com/sarchlab/netsim/sim/link"
	"github.com/sarchlab/netsim/sim/node"
	"github.com/sarchlab/netsim/sim/packet"
	"github.com/sarchlab/netsim/sim/timing"
)

const simulatorName = "simulator"

// processEvents takes every event due now out of the global queue. Events for
// a single node are handed over to it; the others are handled here.
func (s *Simulator) processEvents(now timing.VTimeInMs) error {
	for s.queue.Len() > 0 && s.queue.Peek().Time <= now {
		evt := s.queue.Pop()
		if evt.Time < now {
			return s.fatal(simulatorName,
				fmt.Errorf("%w: %s at %d", ErrEventInPast, evt, now))
		}

		s.invokeEventHook(timing.HookPosBeforeEvent, evt)

		if err := s.dispatch(evt); err != nil {
			return s.fatal(simulatorName, err)
		}

		s.invokeEventHook(timing.HookPosAfterEvent, evt)
	}

	return nil
}

func (s *Simulator) invokeEventHook(pos *hooking.HookPos, evt *timing.Event) {
	if s.NumHooks() == 0 {
		return
	}

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    pos,
		Now:    int(evt.Time),
		Item:   evt,
	})
}

func (s *Simulator) dispatch(evt *timing.Event) error {
	switch evt.Kind {
	case timing.EventTraceroute:
		return s.startTraceroute(evt)
	case timing.EventUpLink, timing.EventDownLink:
		return s.changeLinkState(evt)
	case timing.EventDumpRoutes:
		return s.dump(evt, (*node.Node).DumpRoutingTable)
	case timing.EventDumpPackets:
		return s.dump(evt, (*node.Node).DumpPacketStats)
	case timing.EventDumpControlState:
		return s.dump(evt, (*node.Node).DumpControlState)
	case timing.EventDumpAppState:
		return s.dump(evt, (*node.Node).DumpAppState)
	case timing.EventDeliverPacket, timing.EventClockInterrupt:
		n, err := s.nodeByID(evt.Node)
		if err != nil {
			return fmt.Errorf("%s: %w", evt, err)
		}

		n.AddInputEvent(evt)

		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEvent, evt)
	}
}

// startTraceroute makes the source node receive a fresh tracing packet on
// its loopback interface. The node stamps it when it forwards it.
func (s *Simulator) startTraceroute(evt *timing.Event) error {
	ids, err := intArgs(evt, 2)
	if err != nil {
		return err
	}

	src, err := s.nodeByID(ids[0])
	if err != nil {
		return fmt.Errorf("%s: %w", evt, err)
	}

	p := packet.NewTracing(ids[0], ids[1])
	p.SetSequenceNumber(-1)

	src.AddInputEvent(timing.NewPacketEvent(timing.EventDeliverPacket,
		evt.Time, p, src.ID(), node.Local))

	return nil
}

// changeLinkState brings up or down the links joining two endpoints and
// tells the nodes at both ends.
func (s *Simulator) changeLinkState(evt *timing.Event) error {
	ids, err := intArgs(evt, 4)
	if err != nil {
		return err
	}

	a := link.Endpoint{Node: ids[0], Iface: ids[1]}
	z := link.Endpoint{Node: ids[2], Iface: ids[3]}
	up := evt.Kind == timing.EventUpLink
	found := false

	for _, l := range s.links {
		if !l.Connects(a, z) {
			continue
		}

		found = true
		l.SetState(up)

		e1, e2 := l.Ends()
		for _, end := range []link.Endpoint{e1, e2} {
			notice := timing.NewPacketEvent(evt.Kind, evt.Time, nil,
				end.Node, end.Iface)
			s.nodes[end.Node].AddInputEvent(notice)
		}
	}

	if !found {
		s.logger.Printf("%d: %s: no link between %s and %s",
			evt.Time, evt.Kind, a, z)
	}

	return nil
}

func (s *Simulator) dump(
	evt *timing.Event,
	f func(*node.Node, timing.VTimeInMs),
) error {
	if len(evt.Args) != 1 {
		return fmt.Errorf("%w: %s needs a target", ErrBadEvent, evt)
	}

	if evt.Args[0] == "all" {
		for _, n := range s.nodes {
			f(n, evt.Time)
		}

		return nil
	}

	ids, err := intArgs(evt, 1)
	if err != nil {
		return err
	}

	n, err := s.nodeByID(ids[0])
	if err != nil {
		return fmt.Errorf("%s: %w", evt, err)
	}

	f(n, evt.Time)

	return nil
}

func (s *Simulator) nodeByID(id int) (*node.Node, error) {
	if id < 0 || id >= len(s.nodes) {
		return nil, fmt.Errorf("%w: no node %d", ErrBadEvent, id)
	}

	return s.nodes[id], nil
}

func intArgs(evt *timing.Event, count int) ([]int, error) {
	if len(evt.Args) < count {
		return nil, fmt.Errorf("%w: %s needs %d arguments",
			ErrBadEvent, evt, count)
	}

	values := make([]int, count)

	for i := 0; i < count; i++ {
		v, err := strconv.Atoi(evt.Args[i])
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %q is not a number",
				ErrBadEvent, evt, evt.Args[i])
		}

		values[i] = v
	}

	return values, nil
}
