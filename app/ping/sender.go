// Package ping provides an application pair: a sender that pings a node
// periodically and a receiver that answers every ping.
package ping

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/sarchlab/netsim/app/base"
	"github.com/sarchlab/netsim/sim/node"
	"github.com/sarchlab/netsim/sim/packet"
	"github.com/sarchlab/netsim/sim/timing"
)

// Names the applications are registered under.
const (
	SenderName   = "PingSender"
	ReceiverName = "PingReceiver"
)

// DefaultPeriod is the ping period when none is given.
const DefaultPeriod timing.VTimeInMs = 1000

// ErrBadArgs is returned when the application arguments cannot be used.
var ErrBadArgs = errors.New("bad ping arguments")

// Sender sends "ping N" to a destination every period.
type Sender struct {
	*base.App

	dst     int
	period  timing.VTimeInMs
	sent    int
	replies int
}

// NewSender creates a ping sender.
func NewSender() *Sender {
	return &Sender{App: base.NewApp("sender", true)}
}

// Initialise reads the arguments DEST [PERIOD].
func (s *Sender) Initialise(
	now timing.VTimeInMs,
	nodeID int,
	host node.Host,
	args []string,
) (timing.VTimeInMs, error) {
	if _, err := s.App.Initialise(now, nodeID, host, args); err != nil {
		return 0, err
	}

	if len(args) < 1 || len(args) > 2 {
		return 0, fmt.Errorf("%w: want DEST [PERIOD], got %v", ErrBadArgs, args)
	}

	dst, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: destination %q", ErrBadArgs, args[0])
	}

	s.dst = dst
	s.period = DefaultPeriod

	if len(args) == 2 {
		period, err := strconv.Atoi(args[1])
		if err != nil || period < 1 {
			return 0, fmt.Errorf("%w: period %q", ErrBadArgs, args[1])
		}

		s.period = timing.VTimeInMs(period)
	}

	s.Log(now, "starting pings")

	return s.period, nil
}

// OnClockTick sends the next ping.
func (s *Sender) OnClockTick(now timing.VTimeInMs) {
	s.sent++
	p := s.Host.CreateDataPacket(s.dst, []byte(fmt.Sprintf("ping %d", s.sent)))
	s.Log(now, "sent ping packet n. %d - %s", s.sent, p)

	_ = s.Host.Send(p)
}

// OnReceive counts a reply.
func (s *Sender) OnReceive(now timing.VTimeInMs, p *packet.Packet) {
	s.replies++
	s.Log(now, " received reply \"%s\"", p.Payload())
}

// Sent returns the number of pings sent.
func (s *Sender) Sent() int {
	return s.sent
}

// Replies returns the number of replies received.
func (s *Sender) Replies() int {
	return s.replies
}

// ShowState prints the counters.
func (s *Sender) ShowState(_ timing.VTimeInMs) {
	fmt.Fprintf(s.Host.Report(), "%s sent %d pings and received %d replies\n",
		s.Name(), s.sent, s.replies)
}
