package ft21

import (
	"github.com/sarchlab/netsim/app/base"
	"github.com/sarchlab/netsim/sim/node"
	"github.com/sarchlab/netsim/sim/packet"
	"github.com/sarchlab/netsim/sim/timing"
)

// endpoint is what senders and the receiver share: logging, statistics and
// the conversion between messages and data packets.
type endpoint struct {
	*base.App

	stats *Stats
}

func newEndpoint(name string) endpoint {
	return endpoint{App: base.NewApp(name, true)}
}

func (e *endpoint) start(
	now timing.VTimeInMs,
	nodeID int,
	host node.Host,
	args []string,
) {
	_, _ = e.App.Initialise(now, nodeID, host, args)
	e.stats = NewStats(now)
}

// Stats returns the transfer statistics.
func (e *endpoint) Stats() *Stats {
	return e.stats
}

func (e *endpoint) send(now timing.VTimeInMs, dst int, m Message) {
	b, err := Encode(m)
	if err != nil {
		e.Log(now, "cannot send %s: %v", m, err)
		return
	}

	e.Log(now, "SENDING: %s", m)

	p := e.Host.CreateDataPacket(dst, b)
	_ = e.Host.Send(p)

	e.stats.Out.Add(m.Type().String(), 1)
	e.stats.Out.Add(TrafficCounter, p.Size())
}

// receive decodes the payload of p. It returns nil if p is not a message.
func (e *endpoint) receive(now timing.VTimeInMs, p *packet.Packet) Message {
	e.stats.In.Add(TrafficCounter, p.Size())

	m, err := Decode(p.Payload())
	if err != nil {
		e.Log(now, "GOT garbage from %d: %v", p.Source(), err)
		return nil
	}

	e.Log(now, "GOT: %s", m)
	e.stats.In.Add(m.Type().String(), 1)

	return m
}

// OnTimeout counts the timeout.
func (e *endpoint) OnTimeout(now timing.VTimeInMs) {
	e.stats.TimeoutEvents++
	e.Log(now, "TIMEOUT...")
}

// ShowState prints the statistics so far.
func (e *endpoint) ShowState(now timing.VTimeInMs) {
	e.stats.Report(e.Host.Report(), e.Name(), now)
}
