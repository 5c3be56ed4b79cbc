package node

import (
	"io"

	"github.com/sarchlab/netsim/sim/link"
	"github.com/sarchlab/netsim/sim/packet"
	"github.com/sarchlab/netsim/sim/params"
	"github.com/sarchlab/netsim/sim/timing"
)

// Host is what a node offers to the strategies plugged into it.
type Host interface {
	// ID returns the id of the node.
	ID() int

	// Now returns the current virtual time.
	Now() timing.VTimeInMs

	// Send hands a locally originated data packet to the router.
	Send(p *packet.Packet) error

	// SendVia sends a packet through an interface. Local delivers the packet
	// to this node in the next step; Unknown drops it.
	SendVia(p *packet.Packet, iface int) error

	// SetTimeout asks for an application timeout after d milliseconds,
	// replacing any pending one.
	SetTimeout(d timing.VTimeInMs) error

	// SetControlTimeout asks for a routing timeout after d milliseconds,
	// replacing any pending one.
	SetControlTimeout(d timing.VTimeInMs) error

	// CreateDataPacket creates a data packet from this node.
	CreateDataPacket(dst int, payload []byte) *packet.Packet

	// CreateControlPacket creates a control packet.
	CreateControlPacket(src, dst int, payload []byte) *packet.Packet

	// InterfaceState tells if an interface is up.
	InterfaceState(iface int) bool

	// CountDropped records a packet the caller chose to drop.
	CountDropped()

	// Report returns where the strategies print their output.
	Report() io.Writer
}

// Router is the routing strategy of a node.
//
//nolint:interfacebloat
type Router interface {
	// Initialise is called once at time 0. It returns the period of the
	// clock ticks the router wants, 0 meaning none.
	Initialise(
		now timing.VTimeInMs,
		nodeID int,
		host Host,
		parameters *params.Parameters,
		links []*link.Link,
		numIfaces int,
	) (timing.VTimeInMs, error)
	OnClockTick(now timing.VTimeInMs)
	OnTimeout(now timing.VTimeInMs)
	OnLinkUp(now timing.VTimeInMs, iface int)
	OnLinkDown(now timing.VTimeInMs, iface int)
	OnReceive(now timing.VTimeInMs, p *packet.Packet, iface int)

	// ForwardPacket decides where a packet goes. It must use the host's
	// send down-calls or drop the packet.
	ForwardPacket(now timing.VTimeInMs, p *packet.Packet, iface int)
	ShowControlState(now timing.VTimeInMs)
	ShowRoutingTable(now timing.VTimeInMs)
}

// Application is the application strategy of a node.
type Application interface {
	// Initialise is called once at time 0 with the arguments given to the
	// node. It returns the period of the clock ticks the application wants,
	// 0 meaning none.
	Initialise(
		now timing.VTimeInMs,
		nodeID int,
		host Host,
		args []string,
	) (timing.VTimeInMs, error)
	OnClockTick(now timing.VTimeInMs)
	OnTimeout(now timing.VTimeInMs)
	OnReceive(now timing.VTimeInMs, p *packet.Packet)
	ShowState(now timing.VTimeInMs)
}
