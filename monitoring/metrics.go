package monitoring

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sarchlab/netsim/sim/simulation"
)

// counterCollector exports the packet counters of every node and link. The
// values are read between two simulation steps when scraped.
type counterCollector struct {
	sim *simulation.Simulator

	nodePackets *prometheus.Desc
	linkPackets *prometheus.Desc
	linkUp      *prometheus.Desc
	virtualTime *prometheus.Desc
}

func newCounterCollector(s *simulation.Simulator) *counterCollector {
	return &counterCollector{
		sim: s,
		nodePackets: prometheus.NewDesc(
			"netsim_node_packets_total",
			"Packets handled by a node, labeled by outcome.",
			[]string{"node", "outcome"}, nil),
		linkPackets: prometheus.NewDesc(
			"netsim_link_packets_total",
			"Packets carried by one end of a link, labeled by direction.",
			[]string{"link", "node", "iface", "direction"}, nil),
		linkUp: prometheus.NewDesc(
			"netsim_link_up",
			"1 when the link carries traffic.",
			[]string{"link"}, nil),
		virtualTime: prometheus.NewDesc(
			"netsim_virtual_time_ms",
			"Virtual time of the current simulation step.",
			nil, nil),
	}
}

func (c *counterCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.nodePackets
	ch <- c.linkPackets
	ch <- c.linkUp
	ch <- c.virtualTime
}

func (c *counterCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.virtualTime,
		prometheus.GaugeValue, float64(c.sim.Now()))

	c.sim.Inspect(func() {
		for _, n := range c.sim.Nodes() {
			id := strconv.Itoa(n.ID())
			counters := n.Counters()

			for outcome, v := range map[string]int{
				"sent":      counters.Sent,
				"received":  counters.Received,
				"dropped":   counters.Dropped,
				"forwarded": counters.Forwarded,
			} {
				ch <- prometheus.MustNewConstMetric(c.nodePackets,
					prometheus.CounterValue, float64(v), id, outcome)
			}
		}

		for _, l := range c.sim.Links() {
			st := l.Stats()

			up := 0.0
			if st.Up {
				up = 1
			}

			ch <- prometheus.MustNewConstMetric(c.linkUp,
				prometheus.GaugeValue, up, l.Name())

			for _, side := range st.Sides {
				nodeID := strconv.Itoa(side.Endpoint.Node)
				iface := strconv.Itoa(side.Endpoint.Iface)

				ch <- prometheus.MustNewConstMetric(c.linkPackets,
					prometheus.CounterValue, float64(side.Sent),
					l.Name(), nodeID, iface, "sent")
				ch <- prometheus.MustNewConstMetric(c.linkPackets,
					prometheus.CounterValue, float64(side.Received),
					l.Name(), nodeID, iface, "received")
			}
		}
	})
}
