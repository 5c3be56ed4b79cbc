package node

import (
	"fmt"
	"strings"

	"github.com/sarchlab/netsim/sim/timing"
)

// DumpRoutingTable asks the router to print its routing table.
func (n *Node) DumpRoutingTable(now timing.VTimeInMs) {
	n.router.ShowRoutingTable(now)
}

// DumpControlState asks the router to print its state.
func (n *Node) DumpControlState(now timing.VTimeInMs) {
	n.router.ShowControlState(now)
}

// DumpAppState asks the application to print its state.
func (n *Node) DumpAppState(now timing.VTimeInMs) {
	n.app.ShowState(now)
}

// DumpPacketStats prints the node counters and those of its links.
func (n *Node) DumpPacketStats(now timing.VTimeInMs) {
	var b strings.Builder

	c := n.counters
	fmt.Fprintf(&b, "\nPkt stats for node %d time %d -  s %d r %d d %d f %d\n",
		n.id, now, c.Sent, c.Received, c.Dropped, c.Forwarded)

	for i, l := range n.links {
		if l == nil {
			fmt.Fprintf(&b, " interface %d not connected\n", i)
			continue
		}

		b.WriteString(l.DumpPacketStats())
		b.WriteString("\n")
	}

	fmt.Fprint(n.report, b.String())
}
