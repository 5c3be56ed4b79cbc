// Package link models the physical connections between node interfaces and
// the time it takes packets to cross them.
package link

import (
	"errors"
	"fmt"
	"io"
	"math/rand"

	"github.com/sarchlab/netsim/sim/hooking"
	"github.com/sarchlab/netsim/sim/packet"
	"github.com/sarchlab/netsim/sim/queueing"
	"github.com/sarchlab/netsim/sim/timing"
)

// HookPosPacketScheduled marks when a packet is given a delivery time. The
// hook detail is the delivery event.
var HookPosPacketScheduled = hooking.NewHookPos("LinkPacketScheduled")

// HookPosPacketDropped marks when the link loses a packet. The hook detail is
// the DropReason.
var HookPosPacketDropped = hooking.NewHookPos("LinkPacketDropped")

// DropReason tells why a link lost a packet.
type DropReason string

// Reasons for a link to lose a packet.
const (
	DropError     DropReason = "error"
	DropQueueFull DropReason = "queue full"
	DropLinkDown  DropReason = "link down"
)

// ErrQueueNotDrained is returned when a transmission pass leaves packets in
// an output queue.
var ErrQueueNotDrained = errors.New("link output queue not drained")

// ErrNotAttached is returned when a node uses a link it is not attached to.
var ErrNotAttached = errors.New("endpoint not attached to link")

// Endpoint is one interface of one node.
type Endpoint struct {
	Node  int
	Iface int
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%d.%d", e.Node, e.Iface)
}

type side struct {
	end      Endpoint
	out      queueing.Buffer
	sent     int
	received int
	cursor   timing.VTimeInMs
}

// A Link connects two endpoints. Each direction has its own output queue and
// is serialized independently.
type Link struct {
	hooking.HookableBase

	name      string
	sides     []*side
	bandwidth int64
	latency   int
	errorRate float64
	jitter    float64
	maxQueue  int
	up        bool
	report    io.Writer

	dropRand   *rand.Rand
	jitterRand *rand.Rand

	outputEvents []*timing.Event
}

// Name returns the name of the link.
func (l *Link) Name() string {
	return l.name
}

// Ends returns the two endpoints of the link.
func (l *Link) Ends() (Endpoint, Endpoint) {
	return l.sides[0].end, l.sides[1].end
}

// Connects tells if the link joins the two endpoints, in either orientation.
func (l *Link) Connects(a, b Endpoint) bool {
	e1, e2 := l.Ends()

	return (e1 == a && e2 == b) || (e1 == b && e2 == a)
}

// Bandwidth returns the bandwidth in bits per second.
func (l *Link) Bandwidth() int64 {
	return l.bandwidth
}

// Latency returns the latency in milliseconds.
func (l *Link) Latency() int {
	return l.latency
}

// IsUp tells if the link carries traffic.
func (l *Link) IsUp() bool {
	return l.up
}

// SetState brings the link up or down. Any queued traffic is discarded.
func (l *Link) SetState(up bool) {
	l.up = up

	for _, s := range l.sides {
		s.out.Clear()
	}
}

func (l *Link) sideOf(nodeID, iface int) (*side, *side, error) {
	e := Endpoint{Node: nodeID, Iface: iface}

	switch e {
	case l.sides[0].end:
		return l.sides[0], l.sides[1], nil
	case l.sides[1].end:
		return l.sides[1], l.sides[0], nil
	default:
		return nil, nil, fmt.Errorf("%w: %s on %s", ErrNotAttached, e, l.name)
	}
}

// Enqueue places a packet sent by the given endpoint in that direction's
// output queue. A link that is down discards it.
func (l *Link) Enqueue(now timing.VTimeInMs, nodeID, iface int, p *packet.Packet) error {
	s, _, err := l.sideOf(nodeID, iface)
	if err != nil {
		return err
	}

	if !l.up {
		l.drop(now, p, DropLinkDown)
		return nil
	}

	s.out.Push(p)
	s.sent++

	return nil
}

// CountReceived records that the given endpoint received a packet from this
// link.
func (l *Link) CountReceived(nodeID, iface int) {
	s, _, err := l.sideOf(nodeID, iface)
	if err != nil || !l.up {
		return
	}

	s.received++
}

// Transmit turns every queued packet into a future delivery event.
func (l *Link) Transmit(now timing.VTimeInMs) error {
	if !l.up {
		l.sides[0].out.Clear()
		l.sides[1].out.Clear()
	} else {
		l.transmitSide(now, l.sides[0], l.sides[1])
		l.transmitSide(now, l.sides[1], l.sides[0])
	}

	for _, s := range l.sides {
		if s.out.Size() != 0 {
			return fmt.Errorf("%w: %s has %d packets left",
				ErrQueueNotDrained, s.out.Name(), s.out.Size())
		}
	}

	return nil
}

func (l *Link) transmitSide(now timing.VTimeInMs, from, to *side) {
	if from.cursor < now {
		from.cursor = now
	}

	for from.out.Size() > 0 {
		p := from.out.Pop()

		if l.lost() {
			l.drop(now, p, DropError)
			continue
		}

		l.schedule(now, p, from, to)
	}
}

func (l *Link) lost() bool {
	if l.dropRand == nil {
		return false
	}

	return l.dropRand.Intn(10000) <= int(l.errorRate*10000)
}

func (l *Link) schedule(now timing.VTimeInMs, p *packet.Packet, from, to *side) {
	txTime := float64(p.Size()) * 8.0 * 1000.0 / float64(l.bandwidth)

	extra := 0.0
	if l.jitterRand != nil {
		extra = float64(l.jitterRand.Intn(10000)) / 10000 * l.jitter * txTime
	}

	transit := timing.VTimeInMs(int(txTime) + l.latency + int(extra))
	if transit < 1 {
		transit = 1
	}

	if from.sent-to.received > l.maxQueue {
		fmt.Fprintf(l.report,
			"--> node %d at %d dropping packet due to full queue\n",
			to.end.Node, now)
		l.drop(now, p, DropQueueFull)

		return
	}

	deliverAt := from.cursor + transit
	from.cursor += timing.VTimeInMs(int(txTime))

	evt := timing.NewPacketEvent(timing.EventDeliverPacket, deliverAt, p,
		to.end.Node, to.end.Iface)
	l.outputEvents = append(l.outputEvents, evt)

	if l.NumHooks() > 0 {
		l.InvokeHook(hooking.HookCtx{
			Domain: l,
			Pos:    HookPosPacketScheduled,
			Now:    int(now),
			Item:   p,
			Detail: evt,
		})
	}
}

func (l *Link) drop(now timing.VTimeInMs, p *packet.Packet, reason DropReason) {
	if l.NumHooks() == 0 {
		return
	}

	l.InvokeHook(hooking.HookCtx{
		Domain: l,
		Pos:    HookPosPacketDropped,
		Now:    int(now),
		Item:   p,
		Detail: reason,
	})
}

// DrainOutputEvents returns the delivery events produced since the last call.
func (l *Link) DrainOutputEvents() []*timing.Event {
	evts := l.outputEvents
	l.outputEvents = nil

	return evts
}

// SideStats are the packet counters of one endpoint.
type SideStats struct {
	Endpoint Endpoint
	Received int
	Sent     int
}

// Stats are the packet counters of a link.
type Stats struct {
	Up    bool
	Sides [2]SideStats
}

// Stats returns the packet counters.
func (l *Link) Stats() Stats {
	st := Stats{Up: l.up}

	for i, s := range l.sides {
		st.Sides[i] = SideStats{
			Endpoint: s.end,
			Received: s.received,
			Sent:     s.sent,
		}
	}

	return st
}

// DumpPacketStats formats the packet counters in one line.
func (l *Link) DumpPacketStats() string {
	state := " d "
	if l.up {
		state = " u "
	}

	a, z := l.sides[0], l.sides[1]

	return fmt.Sprintf("%s(node:%d ifc:%d) r %d s %d <--> (node:%d ifc:%d) r %d s %d",
		state,
		a.end.Node, a.end.Iface, a.received, a.sent,
		z.end.Node, z.end.Iface, z.received, z.sent)
}

func (l *Link) String() string {
	state := "down"
	if l.up {
		state = "up"
	}

	a, z := l.Ends()

	return fmt.Sprintf(
		"Link (Node1:%d I1:%d)<-->(Node2:%d I2:%d) bwd: %d bps lat: %d ms error: %g jit: %g %s",
		a.Node, a.Iface, z.Node, z.Iface,
		l.bandwidth, l.latency, l.errorRate, l.jitter, state)
}
