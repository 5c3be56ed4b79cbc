package ping

import (
	"fmt"

	"github.com/sarchlab/netsim/app/base"
	"github.com/sarchlab/netsim/sim/node"
	"github.com/sarchlab/netsim/sim/packet"
	"github.com/sarchlab/netsim/sim/timing"
)

// Receiver answers every packet it gets with a reply quoting the payload.
type Receiver struct {
	*base.App

	received int
}

// NewReceiver creates a ping receiver.
func NewReceiver() *Receiver {
	return &Receiver{App: base.NewApp("receiver", true)}
}

// Initialise starts the receiver without a clock.
func (r *Receiver) Initialise(
	now timing.VTimeInMs,
	nodeID int,
	host node.Host,
	args []string,
) (timing.VTimeInMs, error) {
	if _, err := r.App.Initialise(now, nodeID, host, args); err != nil {
		return 0, err
	}

	r.Log(now, "receiver starting")

	return 0, nil
}

// OnReceive replies to the source of p.
func (r *Receiver) OnReceive(now timing.VTimeInMs, p *packet.Packet) {
	r.received++
	r.Log(now, "received %s", p)

	reply := fmt.Sprintf("receiver received \"%s\"", p.Payload())
	_ = r.Host.Send(r.Host.CreateDataPacket(p.Source(), []byte(reply)))
}

// Received returns the number of packets answered.
func (r *Receiver) Received() int {
	return r.received
}

// ShowState prints the counter.
func (r *Receiver) ShowState(_ timing.VTimeInMs) {
	fmt.Fprintf(r.Host.Report(), "%s received and replied to %d packets\n",
		r.Name(), r.received)
}
