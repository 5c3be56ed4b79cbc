// Package node implements the simulated network nodes. A node owns no
// routing or application logic. It keeps the timers, counters and interface
// bindings its two plugged strategies rely on, and turns their down-calls into
// events.
package node

import (
	"errors"
	"fmt"
	"io"

	"github.com/sarchlab/netsim/sim/hooking"
	"github.com/sarchlab/netsim/sim/link"
	"github.com/sarchlab/netsim/sim/packet"
	"github.com/sarchlab/netsim/sim/params"
	"github.com/sarchlab/netsim/sim/timing"
)

// Interface sentinels.
const (
	// Local is the virtual loopback interface. It is always up.
	Local = -1

	// Unknown means there is no route. Sending through it drops the packet.
	Unknown = -2
)

const noTime timing.VTimeInMs = -1

var (
	// ErrDownCallMisuse is returned when a strategy uses a down-call in a way
	// that is not allowed.
	ErrDownCallMisuse = errors.New("down-call misuse")

	// ErrEventOutOfOrder is returned when a node is given an event that is
	// not due at the current time.
	ErrEventOutOfOrder = errors.New("event out of order")

	// ErrUnknownEvent is returned when a node is given an event it cannot
	// handle.
	ErrUnknownEvent = errors.New("unknown event")

	// ErrUnknownPacket is returned when a packet of unknown kind reaches its
	// destination.
	ErrUnknownPacket = errors.New("unknown packet kind")

	// ErrBadInterface is returned when a link is attached to an interface the
	// node does not have or that is already in use.
	ErrBadInterface = errors.New("bad interface")
)

// HookPosPacketSent marks when a node hands a packet to an interface. The
// detail is the interface.
var HookPosPacketSent = hooking.NewHookPos("NodePacketSent")

// HookPosPacketReceived marks when a packet reaches its destination node. The
// detail is the interface it arrived on.
var HookPosPacketReceived = hooking.NewHookPos("NodePacketReceived")

// HookPosPacketForwarded marks when a node has passed a packet to its router.
// The detail is the interface the packet arrived on.
var HookPosPacketForwarded = hooking.NewHookPos("NodePacketForwarded")

// HookPosPacketDropped marks when a node drops a packet. The detail is the
// reason.
var HookPosPacketDropped = hooking.NewHookPos("NodePacketDropped")

// Reasons for a node to drop a packet.
const (
	DropTTLExpired = "ttl expired"
	DropNoRoute    = "no route"
)

// Counters are the traffic counters of a node. Forwarded counts packets
// handed to the router, including those the router then drops; such a
// packet also counts as dropped.
type Counters struct {
	Sent      int
	Received  int
	Dropped   int
	Forwarded int
}

// A Node is one simulated network node.
type Node struct {
	hooking.HookableBase

	id         int
	numIfaces  int
	links      []*link.Link
	routerName string
	appName    string
	router     Router
	app        Application
	args       []string
	parameters *params.Parameters
	report     io.Writer

	traceForwarding bool
	headerSize      int

	now    timing.VTimeInMs
	input  []*timing.Event
	output []*timing.Event

	nextAppTimeout     timing.VTimeInMs
	nextControlTimeout timing.VTimeInMs
	nextAppTick        timing.VTimeInMs
	nextControlTick    timing.VTimeInMs
	appTickPeriod      timing.VTimeInMs
	controlTickPeriod  timing.VTimeInMs

	counters Counters
	seq      int
	err      error
}

// ID returns the id of the node.
func (n *Node) ID() int {
	return n.id
}

// Now returns the current virtual time of the node.
func (n *Node) Now() timing.VTimeInMs {
	return n.now
}

// Report returns where the node and its strategies print.
func (n *Node) Report() io.Writer {
	return n.report
}

// NumInterfaces returns the number of interfaces.
func (n *Node) NumInterfaces() int {
	return n.numIfaces
}

// Links returns the link bound to each interface. Unbound interfaces are nil.
func (n *Node) Links() []*link.Link {
	return n.links
}

// RouterName returns the registered name of the routing strategy.
func (n *Node) RouterName() string {
	return n.routerName
}

// AppName returns the registered name of the application strategy.
func (n *Node) AppName() string {
	return n.appName
}

// Counters returns a copy of the traffic counters.
func (n *Node) Counters() Counters {
	return n.counters
}

// AttachLink binds a link to the interface at this node's end of it.
func (n *Node) AttachLink(l *link.Link) error {
	attached := false

	a, z := l.Ends()
	for _, end := range []link.Endpoint{a, z} {
		if end.Node != n.id {
			continue
		}

		if end.Iface < 0 || end.Iface >= n.numIfaces {
			return fmt.Errorf("%w: node %d has no interface %d",
				ErrBadInterface, n.id, end.Iface)
		}

		if n.links[end.Iface] != nil {
			return fmt.Errorf("%w: interface %s is already bound",
				ErrBadInterface, end)
		}

		n.links[end.Iface] = l
		attached = true
	}

	if !attached {
		return fmt.Errorf("%w: %s does not reach node %d",
			ErrBadInterface, l.Name(), n.id)
	}

	return nil
}

// Initialize starts both strategies at time 0.
func (n *Node) Initialize() error {
	n.now = 0
	n.nextAppTimeout = noTime
	n.nextControlTimeout = noTime
	n.nextAppTick = noTime
	n.nextControlTick = noTime

	period, err := n.router.Initialise(n.now, n.id, n, n.parameters,
		n.links, n.numIfaces)
	if err != nil {
		return fmt.Errorf("node %d: router %s: %w", n.id, n.routerName, err)
	}

	n.controlTickPeriod = period
	if period > 0 {
		n.nextControlTick = period
		n.emitClockInterrupt(n.nextControlTick)
	}

	period, err = n.app.Initialise(n.now, n.id, n, n.args)
	if err != nil {
		return fmt.Errorf("node %d: application %s: %w", n.id, n.appName, err)
	}

	n.appTickPeriod = period
	if period > 0 {
		n.nextAppTick = period
		n.emitClockInterrupt(n.nextAppTick)
	}

	return n.takeErr()
}

// AddInputEvent queues an event for the next ProcessInputEvents call.
func (n *Node) AddInputEvent(evt *timing.Event) {
	n.input = append(n.input, evt)
}

// DrainOutputEvents returns the events produced since the last call.
func (n *Node) DrainOutputEvents() []*timing.Event {
	evts := n.output
	n.output = nil

	return evts
}

// ProcessInputEvents handles every queued event, then fires the clock ticks
// and timeouts due now.
func (n *Node) ProcessInputEvents(now timing.VTimeInMs) error {
	n.now = now

	for len(n.input) > 0 {
		evt := n.input[0]
		n.input[0] = nil
		n.input = n.input[1:]

		if evt.Time != now {
			n.input = nil
			return fmt.Errorf("%w: node %d at %d got %s",
				ErrEventOutOfOrder, n.id, now, evt)
		}

		if err := n.handle(evt); err != nil {
			n.input = nil
			return err
		}
	}

	n.fireTimers()

	return n.takeErr()
}

func (n *Node) handle(evt *timing.Event) error {
	switch evt.Kind {
	case timing.EventUpLink:
		fmt.Fprintf(n.report, "--> node %d at %d interface %d going up\n",
			n.id, n.now, evt.Iface)
		n.router.OnLinkUp(n.now, evt.Iface)
	case timing.EventDownLink:
		fmt.Fprintf(n.report, "--> node %d at %d interface %d going down\n",
			n.id, n.now, evt.Iface)
		n.router.OnLinkDown(n.now, evt.Iface)
	case timing.EventDeliverPacket:
		return n.deliver(evt)
	case timing.EventClockInterrupt:
		// Ticks and timeouts are matched against the remembered times in
		// fireTimers, so stale interrupts do nothing.
	default:
		return fmt.Errorf("%w: node %d at %d got %s",
			ErrUnknownEvent, n.id, n.now, evt)
	}

	return nil
}

func (n *Node) fireTimers() {
	if n.nextControlTick == n.now {
		n.router.OnClockTick(n.now)
		n.nextControlTick = n.now + n.controlTickPeriod
		n.emitClockInterrupt(n.nextControlTick)
	}

	if n.nextAppTick == n.now {
		n.app.OnClockTick(n.now)
		n.nextAppTick = n.now + n.appTickPeriod
		n.emitClockInterrupt(n.nextAppTick)
	}

	if n.nextControlTimeout == n.now {
		n.nextControlTimeout = noTime
		n.router.OnTimeout(n.now)
	}

	if n.nextAppTimeout == n.now {
		n.nextAppTimeout = noTime
		n.app.OnTimeout(n.now)
	}
}

func (n *Node) deliver(evt *timing.Event) error {
	p := evt.Packet
	iface := evt.Iface

	if l := n.linkAt(iface); l != nil {
		l.CountReceived(n.id, iface)
	}

	if p.Destination() == n.id || p.Destination() == packet.OneHop {
		return n.receive(p, iface)
	}

	p.DecrementTTL()
	if p.TTL() <= 0 {
		n.dropExpired(p)
		return nil
	}

	if p.Kind() == packet.KindTracing {
		iface = n.traceHop(p, iface)
	}

	n.router.ForwardPacket(n.now, p, iface)
	n.counters.Forwarded++
	n.invoke(HookPosPacketForwarded, p, iface)

	return nil
}

func (n *Node) receive(p *packet.Packet, iface int) error {
	switch p.Kind() {
	case packet.KindData:
		n.countReceived(p, iface)
		n.nextAppTimeout = noTime

		d, err := p.AsData()
		if err != nil {
			return err
		}

		n.app.OnReceive(n.now, d)
	case packet.KindControl:
		n.countReceived(p, iface)
		n.nextControlTimeout = noTime
		n.router.OnReceive(n.now, p, iface)
	case packet.KindTracing:
		n.countReceived(p, iface)
		fmt.Fprintf(n.report, "--> node %d time %d received traceroute: %s -> %d\n",
			n.id, n.now, p.Path(), n.id)
	default:
		return fmt.Errorf("%w: node %d at %d got %s",
			ErrUnknownPacket, n.id, n.now, p)
	}

	return nil
}

func (n *Node) countReceived(p *packet.Packet, iface int) {
	n.counters.Received++
	n.invoke(HookPosPacketReceived, p, iface)
}

// traceHop records this node in the path of a tracing packet. At the first
// hop the packet is stamped as sent by this node.
func (n *Node) traceHop(p *packet.Packet, iface int) int {
	if p.Source() != n.id || p.TTL() != packet.InitialTTL-1 {
		p.AppendHop(n.id)
		return iface
	}

	n.counters.Sent++
	n.seq++
	p.SetSequenceNumber(n.seq)
	p.StartPath(n.id)

	fmt.Fprintf(n.report, "--> node %d time %d traceroute to: %d\n",
		n.id, n.now, p.Destination())

	return Local
}

func (n *Node) dropExpired(p *packet.Packet) {
	n.counters.Dropped++

	if p.Kind() == packet.KindTracing {
		fmt.Fprintf(n.report, "--> node %d at %d dropping expired trace route packet %s\n",
			n.id, n.now, p.Path())
	} else {
		fmt.Fprintf(n.report, "--> node %d at %d dropping expired packet %s\n",
			n.id, n.now, p)
	}

	n.invoke(HookPosPacketDropped, p, DropTTLExpired)
}

func (n *Node) linkAt(iface int) *link.Link {
	if iface < 0 || iface >= len(n.links) {
		return nil
	}

	return n.links[iface]
}

func (n *Node) emitClockInterrupt(t timing.VTimeInMs) {
	evt := timing.NewPacketEvent(timing.EventClockInterrupt, t, nil, n.id, 0)
	n.output = append(n.output, evt)
}

func (n *Node) invoke(pos *hooking.HookPos, p *packet.Packet, detail any) {
	if n.NumHooks() == 0 {
		return
	}

	n.InvokeHook(hooking.HookCtx{
		Domain: n,
		Pos:    pos,
		Now:    int(n.now),
		Item:   p,
		Detail: detail,
	})
}

// misuse records a down-call misuse so that it is reported to the
// simulator at the end of the current step, and returns it to the caller.
func (n *Node) misuse(call, format string, args ...any) error {
	err := fmt.Errorf("%w: node %d at %d: %s: %s",
		ErrDownCallMisuse, n.id, n.now, call, fmt.Sprintf(format, args...))

	if n.err == nil {
		n.err = err
	}

	return err
}

func (n *Node) takeErr() error {
	err := n.err
	n.err = nil

	return err
}

func (n *Node) String() string {
	return fmt.Sprintf("Node %d: %d interf.s, ctr code: %s app code: %s",
		n.id, n.numIfaces, n.routerName, n.appName)
}
