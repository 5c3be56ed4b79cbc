package ft21

import (
	"fmt"

	"github.com/sarchlab/netsim/sim/node"
	"github.com/sarchlab/netsim/sim/packet"
	"github.com/sarchlab/netsim/sim/timing"
)

// SenderSWName is the name the Stop-and-Wait sender is registered under.
const SenderSWName = "FT21SenderSW"

// SenderSW uploads a file one message at a time, resending the outstanding
// message whenever its timeout expires.
type SenderSW struct {
	endpoint

	file     *upload
	receiver int
	timeout  timing.VTimeInMs

	cur      int
	sentAt   timing.VTimeInMs
	resent   bool
	finished bool
}

// NewSenderSW creates a Stop-and-Wait sender.
func NewSenderSW() *SenderSW {
	return &SenderSW{endpoint: newEndpoint(SenderSWName), timeout: DefaultTimeout}
}

// Initialise reads FILE BLOCKSIZE [RECEIVER] and sends the upload request.
func (s *SenderSW) Initialise(
	now timing.VTimeInMs,
	nodeID int,
	host node.Host,
	args []string,
) (timing.VTimeInMs, error) {
	s.start(now, nodeID, host, args)

	if len(args) < 2 || len(args) > 3 {
		return 0, fmt.Errorf("%w: want FILE BLOCKSIZE [RECEIVER], got %v",
			ErrBadArgs, args)
	}

	file, err := loadUpload(args[0], args[1])
	if err != nil {
		return 0, err
	}

	s.file = file

	if s.receiver, err = parseReceiver(args, 2); err != nil {
		return 0, err
	}

	s.sendCurrent(now)

	return 0, nil
}

// Finished tells if the receiver acknowledged the end of the transfer.
func (s *SenderSW) Finished() bool {
	return s.finished
}

func (s *SenderSW) sendCurrent(now timing.VTimeInMs) {
	s.send(now, s.receiver, s.file.message(s.cur))
	s.sentAt = now
	_ = s.Host.SetTimeout(s.timeout)
}

// OnTimeout resends the outstanding message.
func (s *SenderSW) OnTimeout(now timing.VTimeInMs) {
	if s.finished {
		return
	}

	s.endpoint.OnTimeout(now)
	s.stats.Timeout.Add(s.timeout)
	s.resent = true
	s.sendCurrent(now)
}

// OnReceive moves on when the outstanding message is acknowledged. Any other
// ack only re-arms the timer, since its arrival cancelled it.
func (s *SenderSW) OnReceive(now timing.VTimeInMs, p *packet.Packet) {
	m := s.receive(now, p)
	if s.finished {
		return
	}

	switch m := m.(type) {
	case Ack:
		if m.Seq != s.cur {
			s.rearm(now)
			return
		}

		if !s.resent {
			s.stats.RTT.Add(now - s.sentAt)
		}

		s.resent = false

		if s.cur > s.file.last {
			s.finish(now)
			return
		}

		s.cur++
		s.sendCurrent(now)
	case Error:
		s.Log(now, "transfer aborted: %s", m.Reason)
		s.finished = true
	default:
		s.rearm(now)
	}
}

func (s *SenderSW) rearm(now timing.VTimeInMs) {
	_ = s.Host.SetTimeout(remaining(now, s.sentAt, s.timeout))
}

func (s *SenderSW) finish(now timing.VTimeInMs) {
	s.finished = true
	s.Log(now, "All Done. Transfer complete...")
	s.stats.Report(s.Host.Report(), s.Name(), now)
}
