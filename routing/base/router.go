// Package base provides a routing strategy that does nothing but trace what
// happens to it. Concrete routers embed it and override what they need.
package base

import (
	"fmt"

	"github.com/sarchlab/netsim/sim/link"
	"github.com/sarchlab/netsim/sim/node"
	"github.com/sarchlab/netsim/sim/packet"
	"github.com/sarchlab/netsim/sim/params"
	"github.com/sarchlab/netsim/sim/timing"
)

// Router keeps what every routing strategy is given at initialisation.
type Router struct {
	name    string
	traceOn bool

	NodeID     int
	Host       node.Host
	Parameters *params.Parameters
	Links      []*link.Link
	NumIfaces  int
}

// NewRouter creates a base router that names itself name in traces.
func NewRouter(name string) *Router {
	return &Router{name: name}
}

// Name returns the name used in traces.
func (r *Router) Name() string {
	return r.name
}

// Initialise stores the node environment. Tracing is on when the trace
// parameter is set.
func (r *Router) Initialise(
	_ timing.VTimeInMs,
	nodeID int,
	host node.Host,
	parameters *params.Parameters,
	links []*link.Link,
	numIfaces int,
) (timing.VTimeInMs, error) {
	r.NodeID = nodeID
	r.Host = host
	r.Parameters = parameters
	r.Links = links
	r.NumIfaces = numIfaces
	r.traceOn = parameters != nil && parameters.Bool(params.Trace)

	return 0, nil
}

// SetTrace turns tracing on or off.
func (r *Router) SetTrace(on bool) {
	r.traceOn = on
}

// OnClockTick traces the tick.
func (r *Router) OnClockTick(now timing.VTimeInMs) {
	r.Trace(now, "clock tick")
}

// OnTimeout traces the timeout.
func (r *Router) OnTimeout(now timing.VTimeInMs) {
	r.Trace(now, "timeout")
}

// OnLinkUp traces the interface change.
func (r *Router) OnLinkUp(now timing.VTimeInMs, iface int) {
	r.Trace(now, "interface %d link up", iface)
}

// OnLinkDown traces the interface change.
func (r *Router) OnLinkDown(now timing.VTimeInMs, iface int) {
	r.Trace(now, "interface %d link down", iface)
}

// OnReceive traces the control packet.
func (r *Router) OnReceive(now timing.VTimeInMs, p *packet.Packet, iface int) {
	r.Trace(now, "received control packet %s received by ifc %d", p, iface)
}

// ForwardPacket drops the packet, since a base router knows no route.
func (r *Router) ForwardPacket(now timing.VTimeInMs, p *packet.Packet, iface int) {
	r.Trace(now, "forward packet %s received by ifc %d", p, iface)
	_ = r.Host.SendVia(p, node.Unknown)
}

// ShowControlState traces that there is no state.
func (r *Router) ShowControlState(now timing.VTimeInMs) {
	r.Trace(now, "has no state to show")
}

// ShowRoutingTable traces that there is no routing table.
func (r *Router) ShowRoutingTable(now timing.VTimeInMs) {
	r.Trace(now, "has no routing table to show")
}

// Trace prints a line to the report when tracing is on.
func (r *Router) Trace(now timing.VTimeInMs, format string, args ...any) {
	if !r.traceOn || r.Host == nil {
		return
	}

	fmt.Fprintf(r.Host.Report(), "trace: %s time %d node %d %s\n",
		r.name, now, r.NodeID, fmt.Sprintf(format, args...))
}

// DeliverLocally handles the packets a router delivers to its own node: a
// packet addressed to the node, and the local copy of a broadcast packet. It
// returns true when nothing else is left to do with p.
func (r *Router) DeliverLocally(now timing.VTimeInMs, p *packet.Packet) bool {
	if p.Destination() == r.NodeID {
		_ = r.Host.SendVia(p.Copy(), node.Local)
		r.Trace(now, "forwarded a packet locally sent to this node")

		return true
	}

	if p.Destination() == packet.Broadcast {
		local := p.Copy()
		local.SetDestination(r.NodeID)
		_ = r.Host.SendVia(local, node.Local)
		r.Trace(now, "forwarded a local copy of a broadcasted packet")
	}

	return false
}
