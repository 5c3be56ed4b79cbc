package ft21

import (
	"fmt"
	"strconv"

	"github.com/sarchlab/netsim/sim/node"
	"github.com/sarchlab/netsim/sim/packet"
	"github.com/sarchlab/netsim/sim/timing"
)

// SenderGBNName is the name the Go-Back-N sender is registered under.
const SenderGBNName = "FT21SenderGBN"

// SenderGBN uploads a file keeping up to a window of blocks in flight. Acks
// are cumulative. When the timer of the oldest block expires, every block
// from it on is sent again.
type SenderGBN struct {
	endpoint

	file     *upload
	receiver int
	window   int
	timeout  timing.VTimeInMs

	// base is the oldest unacknowledged sequence number and next the next
	// one to send. Both are 0 until the upload request is acknowledged.
	base     int
	next     int
	sentAt   map[int]timing.VTimeInMs
	resent   map[int]bool
	finished bool
}

// NewSenderGBN creates a Go-Back-N sender.
func NewSenderGBN() *SenderGBN {
	return &SenderGBN{
		endpoint: newEndpoint(SenderGBNName),
		timeout:  DefaultTimeout,
		sentAt:   make(map[int]timing.VTimeInMs),
		resent:   make(map[int]bool),
	}
}

// Initialise reads FILE BLOCKSIZE WINDOW [RECEIVER] and sends the upload
// request.
func (s *SenderGBN) Initialise(
	now timing.VTimeInMs,
	nodeID int,
	host node.Host,
	args []string,
) (timing.VTimeInMs, error) {
	s.start(now, nodeID, host, args)

	if len(args) < 3 || len(args) > 4 {
		return 0, fmt.Errorf("%w: want FILE BLOCKSIZE WINDOW [RECEIVER], got %v",
			ErrBadArgs, args)
	}

	file, err := loadUpload(args[0], args[1])
	if err != nil {
		return 0, err
	}

	s.file = file

	window, err := strconv.Atoi(args[2])
	if err != nil || window < 1 {
		return 0, fmt.Errorf("%w: window %q", ErrBadArgs, args[2])
	}

	s.window = window

	if s.receiver, err = parseReceiver(args, 3); err != nil {
		return 0, err
	}

	s.sendSeq(now, 0)
	_ = s.Host.SetTimeout(s.timeout)

	return 0, nil
}

// Finished tells if the receiver acknowledged the end of the transfer.
func (s *SenderGBN) Finished() bool {
	return s.finished
}

func (s *SenderGBN) sendSeq(now timing.VTimeInMs, seq int) {
	if _, ok := s.sentAt[seq]; ok {
		s.resent[seq] = true
	}

	s.send(now, s.receiver, s.file.message(seq))
	s.sentAt[seq] = now
}

// fill sends new messages while the window has room. The end of the
// transfer is sent once every block is acknowledged.
func (s *SenderGBN) fill(now timing.VTimeInMs) {
	fin := s.file.last + 1

	for s.next < s.base+s.window && s.next <= s.file.last {
		s.sendSeq(now, s.next)
		s.next++
	}

	if s.base == fin && s.next == fin {
		s.sendSeq(now, fin)
		s.next++
	}
}

// OnTimeout goes back to the oldest unacknowledged message.
func (s *SenderGBN) OnTimeout(now timing.VTimeInMs) {
	if s.finished {
		return
	}

	s.endpoint.OnTimeout(now)
	s.stats.Timeout.Add(s.timeout)

	if s.next == 0 {
		s.sendSeq(now, 0)
	} else {
		s.next = s.base
		s.fill(now)
	}

	_ = s.Host.SetTimeout(s.timeout)
}

// OnReceive slides the window on new cumulative acks.
func (s *SenderGBN) OnReceive(now timing.VTimeInMs, p *packet.Packet) {
	m := s.receive(now, p)
	if s.finished {
		return
	}

	switch m := m.(type) {
	case Ack:
		s.onAck(now, m)
	case Error:
		s.Log(now, "transfer aborted: %s", m.Reason)
		s.finished = true
	default:
		s.rearm(now)
	}
}

func (s *SenderGBN) onAck(now timing.VTimeInMs, ack Ack) {
	if s.next == 0 {
		if ack.Seq != 0 {
			s.rearm(now)
			return
		}

		s.tallyRTT(now, 0)
		s.base, s.next = 1, 1
		s.fill(now)
		_ = s.Host.SetTimeout(s.timeout)

		return
	}

	if ack.Seq < s.base || ack.Seq >= s.next {
		s.rearm(now)
		return
	}

	s.tallyRTT(now, ack.Seq)

	if ack.Seq == s.file.last+1 {
		s.finished = true
		s.Log(now, "All Done. Transfer complete...")
		s.stats.Report(s.Host.Report(), s.Name(), now)

		return
	}

	s.base = ack.Seq + 1
	s.fill(now)
	_ = s.Host.SetTimeout(s.timeout)
}

func (s *SenderGBN) tallyRTT(now timing.VTimeInMs, seq int) {
	if s.resent[seq] {
		return
	}

	s.stats.RTT.Add(now - s.sentAt[seq])
}

func (s *SenderGBN) rearm(now timing.VTimeInMs) {
	_ = s.Host.SetTimeout(remaining(now, s.sentAt[s.base], s.timeout))
}
