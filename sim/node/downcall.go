package node

import (
	"fmt"

	"github.com/sarchlab/netsim/sim/packet"
	"github.com/sarchlab/netsim/sim/timing"
)

// Send hands a data packet created by this node to the router, as if it had
// arrived on the loopback interface.
func (n *Node) Send(p *packet.Packet) error {
	switch {
	case p == nil:
		return n.misuse("send", "no packet to send")
	case p.Source() != n.id:
		return n.misuse("send", "can only send locally originated packets")
	case p.Kind() != packet.KindData:
		return n.misuse("send", "can only send data packets")
	}

	n.router.ForwardPacket(n.now, p, Local)
	n.counters.Forwarded++
	n.invoke(HookPosPacketForwarded, p, Local)

	return nil
}

// SendVia sends a packet through an interface.
func (n *Node) SendVia(p *packet.Packet, iface int) error {
	if p == nil {
		return n.misuse("send via", "no packet to send")
	}

	if iface == Unknown || iface >= n.numIfaces || iface < Local {
		n.dropNoRoute(p, "packet sent to UNKNOWN")
		return nil
	}

	if p.Destination() == n.id {
		evt := timing.NewPacketEvent(timing.EventDeliverPacket, n.now+1, p,
			n.id, Local)
		n.output = append(n.output, evt)
		n.countSent(p, iface)

		return nil
	}

	l := n.linkAt(iface)
	if l == nil {
		n.dropNoRoute(p, fmt.Sprintf("packet sent to unbound interface %d", iface))
		return nil
	}

	if err := l.Enqueue(n.now, n.id, iface, p); err != nil {
		return n.misuse("send via", "%v", err)
	}

	n.countSent(p, iface)

	if n.traceForwarding {
		fmt.Fprintf(n.report, "node %d time %d forwarded packet %s\n",
			n.id, n.now, p)
	}

	return nil
}

func (n *Node) countSent(p *packet.Packet, iface int) {
	n.counters.Sent++
	n.invoke(HookPosPacketSent, p, iface)
}

func (n *Node) dropNoRoute(p *packet.Packet, what string) {
	n.counters.Dropped++

	if n.traceForwarding {
		fmt.Fprintf(n.report, "node %d time %d %s %s\n", n.id, n.now, what, p)
	}

	n.invoke(HookPosPacketDropped, p, DropNoRoute)
}

// SetTimeout installs the application timeout d milliseconds from now.
func (n *Node) SetTimeout(d timing.VTimeInMs) error {
	if d < 1 {
		return n.misuse("set timeout", "timeout value must be >= 1, got %d", d)
	}

	n.nextAppTimeout = n.now + d
	n.emitClockInterrupt(n.nextAppTimeout)

	return nil
}

// SetControlTimeout installs the routing timeout d milliseconds from now.
func (n *Node) SetControlTimeout(d timing.VTimeInMs) error {
	if d < 1 {
		return n.misuse("set control timeout",
			"timeout value must be >= 1, got %d", d)
	}

	n.nextControlTimeout = n.now + d
	n.emitClockInterrupt(n.nextControlTimeout)

	return nil
}

// CreateDataPacket creates a data packet from this node with a fresh sequence
// number.
func (n *Node) CreateDataPacket(dst int, payload []byte) *packet.Packet {
	return n.stamp(packet.NewData(n.id, dst, payload))
}

// CreateControlPacket creates a control packet with a fresh sequence number.
func (n *Node) CreateControlPacket(src, dst int, payload []byte) *packet.Packet {
	return n.stamp(packet.NewControl(src, dst, payload))
}

func (n *Node) stamp(p *packet.Packet) *packet.Packet {
	n.seq++
	p.SetSequenceNumber(n.seq)
	p.SetHeaderSize(n.headerSize)

	return p
}

// InterfaceState tells if an interface is up. The loopback interface always
// is; unbound interfaces never are.
func (n *Node) InterfaceState(iface int) bool {
	if iface == Local {
		return true
	}

	l := n.linkAt(iface)
	if l == nil {
		return false
	}

	return l.IsUp()
}

// CountDropped records a packet a strategy chose to drop.
func (n *Node) CountDropped() {
	n.counters.Dropped++
}
