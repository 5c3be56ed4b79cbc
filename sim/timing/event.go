// Package timing defines the virtual clock, the global events and the queue
// that keeps them in a deterministic total order.
package timing

import (
	"fmt"
	"strings"

	"github.com/sarchlab/netsim/sim/hooking"
	"github.com/sarchlab/netsim/sim/packet"
)

// VTimeInMs is the virtual time, in milliseconds.
type VTimeInMs int

// EventKind is the operation an event asks for.
type EventKind int

// The kinds of events the simulator dispatches.
const (
	EventUnknown EventKind = iota
	EventTraceroute
	EventUpLink
	EventDownLink
	EventDumpRoutes
	EventDumpPackets
	EventDeliverPacket
	EventDumpControlState
	EventDumpAppState
	EventClockInterrupt
)

var eventKindNames = map[EventKind]string{
	EventUnknown:          "unknown",
	EventTraceroute:       "traceroute",
	EventUpLink:           "uplink",
	EventDownLink:         "downlink",
	EventDumpRoutes:       "dumproutes",
	EventDumpPackets:      "dumppacketstats",
	EventDeliverPacket:    "deliver",
	EventDumpControlState: "dumpcontrolstate",
	EventDumpAppState:     "dumpappstate",
	EventClockInterrupt:   "clock",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("EventKind(%d)", int(k))
}

// IsGlobal tells if the event is handled by the simulator itself rather than
// handed over to a single node.
func (k EventKind) IsGlobal() bool {
	switch k {
	case EventDeliverPacket, EventClockInterrupt:
		return false
	default:
		return true
	}
}

// NoNode is the node field of events that do not target a node.
const NoNode = -1

// HookPosBeforeEvent is a hook position that triggers before the simulator
// dispatches a global event.
var HookPosBeforeEvent = hooking.NewHookPos("BeforeEvent")

// HookPosAfterEvent is a hook position that triggers after the simulator
// dispatches a global event.
var HookPosAfterEvent = hooking.NewHookPos("AfterEvent")

// An Event is something scheduled to happen at a virtual time. Events are not
// modified once pushed into an EventQueue.
type Event struct {
	Kind   EventKind
	Time   VTimeInMs
	Args   []string
	Packet *packet.Packet
	Node   int
	Iface  int

	key int64
}

// NewEvent creates an event with arguments and no packet.
func NewEvent(kind EventKind, t VTimeInMs, args ...string) *Event {
	return &Event{
		Kind: kind,
		Time: t,
		Args: args,
		Node: NoNode,
	}
}

// NewPacketEvent creates an event that carries a packet to an interface of a
// node.
func NewPacketEvent(
	kind EventKind,
	t VTimeInMs,
	p *packet.Packet,
	nodeID, iface int,
) *Event {
	return &Event{
		Kind:   kind,
		Time:   t,
		Packet: p,
		Node:   nodeID,
		Iface:  iface,
	}
}

// Key returns the order key assigned when the event entered a queue, or 0.
func (e *Event) Key() int64 {
	return e.key
}

func (e *Event) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d %s", e.Time, e.Kind)

	if len(e.Args) > 0 {
		fmt.Fprintf(&b, " %s", strings.Join(e.Args, " "))
	}

	if e.Node != NoNode {
		fmt.Fprintf(&b, " node %d iface %d", e.Node, e.Iface)
	}

	if e.Packet != nil {
		fmt.Fprintf(&b, " [%s]", e.Packet)
	}

	return b.String()
}
