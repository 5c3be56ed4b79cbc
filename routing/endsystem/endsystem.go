// Package endsystem implements the routing of a host with a single network
// interface.
package endsystem

import (
	"errors"
	"fmt"

	"github.com/sarchlab/netsim/routing/base"
	"github.com/sarchlab/netsim/sim/link"
	"github.com/sarchlab/netsim/sim/node"
	"github.com/sarchlab/netsim/sim/packet"
	"github.com/sarchlab/netsim/sim/params"
	"github.com/sarchlab/netsim/sim/timing"
)

// Name is the name the router is registered under.
const Name = "EndSystemControl"

// ErrTooManyInterfaces is returned when an end system is given more than one
// interface.
var ErrTooManyInterfaces = errors.New("end system has more than one interface")

// Control is the routing of an end system.
type Control struct {
	*base.Router
}

// New creates an end system router.
func New() *Control {
	return &Control{Router: base.NewRouter("end system control")}
}

// Initialise refuses nodes with more than one interface.
func (c *Control) Initialise(
	now timing.VTimeInMs,
	nodeID int,
	host node.Host,
	parameters *params.Parameters,
	links []*link.Link,
	numIfaces int,
) (timing.VTimeInMs, error) {
	if _, err := c.Router.Initialise(now, nodeID, host, parameters,
		links, numIfaces); err != nil {
		return 0, err
	}

	if numIfaces > 1 {
		return 0, fmt.Errorf("%w: node %d has %d",
			ErrTooManyInterfaces, nodeID, numIfaces)
	}

	c.Trace(now, "starting")

	return 0, nil
}

// ForwardPacket sends the packets of this node through its interface and
// drops the packets of others.
func (c *Control) ForwardPacket(now timing.VTimeInMs, p *packet.Packet, iface int) {
	if c.DeliverLocally(now, p) {
		return
	}

	if iface != node.Local {
		_ = c.Host.SendVia(p, node.Unknown)
		return
	}

	if !c.Host.InterfaceState(0) {
		_ = c.Host.SendVia(p, node.Unknown)
		c.Trace(now, "network interface is down")

		return
	}

	_ = c.Host.SendVia(p.Copy(), 0)
	c.Trace(now, "forwarded a packet sent by this node")
}
