// Package flooding implements a switch that floods every packet it does not
// consume through all its other interfaces that are up.
package flooding

import (
	"github.com/sarchlab/netsim/routing/base"
	"github.com/sarchlab/netsim/sim/node"
	"github.com/sarchlab/netsim/sim/packet"
	"github.com/sarchlab/netsim/sim/timing"
)

// Name is the name the switch is registered under.
const Name = "FloodingSwitch"

// Switch is a flooding switch.
type Switch struct {
	*base.Router
}

// New creates a flooding switch.
func New() *Switch {
	return &Switch{Router: base.NewRouter("flooding switch control")}
}

// OnReceive traces the control packet. Flooding needs no control traffic.
func (s *Switch) OnReceive(now timing.VTimeInMs, _ *packet.Packet, _ int) {
	s.Trace(now, "received control packet")
}

// ForwardPacket delivers the packet locally if it is addressed to this node,
// and floods it otherwise. Broadcast packets are both delivered and flooded.
func (s *Switch) ForwardPacket(now timing.VTimeInMs, p *packet.Packet, iface int) {
	if s.DeliverLocally(now, p) {
		return
	}

	s.flood(now, p, iface)
}

func (s *Switch) flood(now timing.VTimeInMs, p *packet.Packet, inbound int) {
	copies := 0

	for i := 0; i < s.NumIfaces; i++ {
		if i == inbound || !s.Host.InterfaceState(i) {
			continue
		}

		_ = s.Host.SendVia(p.Copy(), i)
		copies++
	}

	if copies == 0 {
		_ = s.Host.SendVia(p, node.Unknown)
	}

	s.Trace(now, "forwarded %d packet copy(ies)", copies)
}
