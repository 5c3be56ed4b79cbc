package ft21

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/netsim/sim/packet"
	"github.com/sarchlab/netsim/sim/timing"
)

// wire records what an application under test sends through a MockHost.
type wire struct {
	sent     []Message
	timeouts []timing.VTimeInMs
	report   bytes.Buffer
}

func (w *wire) attach(host *MockHost, self int) {
	host.EXPECT().Report().Return(&w.report).AnyTimes()
	host.EXPECT().
		CreateDataPacket(gomock.Any(), gomock.Any()).
		DoAndReturn(func(dst int, payload []byte) *packet.Packet {
			m, err := Decode(payload)
			Expect(err).NotTo(HaveOccurred())
			w.sent = append(w.sent, m)

			return packet.NewData(self, dst, payload)
		}).
		AnyTimes()
	host.EXPECT().Send(gomock.Any()).Return(nil).AnyTimes()
	host.EXPECT().
		SetTimeout(gomock.Any()).
		DoAndReturn(func(d timing.VTimeInMs) error {
			w.timeouts = append(w.timeouts, d)
			return nil
		}).
		AnyTimes()
}

func (w *wire) types() []Type {
	types := make([]Type, len(w.sent))
	for i, m := range w.sent {
		types[i] = m.Type()
	}

	return types
}

func from(src, dst int, m Message) *packet.Packet {
	b, err := Encode(m)
	Expect(err).NotTo(HaveOccurred())

	return packet.NewData(src, dst, b)
}

func writeFile(content string) string {
	path := filepath.Join(GinkgoT().TempDir(), "data.bin")
	Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())

	return path
}

var _ = Describe("SenderSW", func() {
	var (
		mockCtrl *gomock.Controller
		host     *MockHost
		w        *wire
		s        *SenderSW
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		host = NewMockHost(mockCtrl)
		w = &wire{}
		w.attach(host, 0)
		s = NewSenderSW()

		period, err := s.Initialise(0, 0, host, []string{writeFile("hello"), "10"})
		Expect(err).NotTo(HaveOccurred())
		Expect(period).To(BeZero())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should send one upload, one block and the end", func() {
		s.OnReceive(10, from(1, 0, Ack{Seq: 0}))
		s.OnReceive(20, from(1, 0, Ack{Seq: 1}))
		s.OnReceive(30, from(1, 0, Ack{Seq: 2}))

		Expect(w.types()).To(Equal([]Type{TypeUpload, TypeData, TypeFin}))
		Expect(w.sent[0]).To(Equal(Upload{Filename: "data.bin"}))
		Expect(w.sent[1]).To(Equal(Data{Seq: 1, Block: []byte("hello")}))
		Expect(w.sent[2]).To(Equal(Fin{Seq: 2}))
		Expect(s.Finished()).To(BeTrue())
		Expect(s.Stats().RTT.Len()).To(Equal(3))
		Expect(w.report.String()).To(ContainSubstring("All Done. Transfer complete..."))
		Expect(w.report.String()).To(ContainSubstring("FT21SenderSW STATS"))
	})

	It("should resend on timeout", func() {
		s.OnTimeout(1000)
		s.OnReceive(1010, from(1, 0, Ack{Seq: 0}))

		Expect(w.types()).To(Equal([]Type{TypeUpload, TypeUpload, TypeData}))
		Expect(s.Stats().TimeoutEvents).To(Equal(1))
		Expect(s.Stats().Timeout.Len()).To(Equal(1))
		Expect(s.Stats().RTT.Len()).To(BeZero())
	})

	It("should re-arm the timer on stale acks", func() {
		s.OnReceive(10, from(1, 0, Ack{Seq: 0}))
		s.OnReceive(30, from(1, 0, Ack{Seq: 0}))

		Expect(w.types()).To(Equal([]Type{TypeUpload, TypeData}))
		Expect(w.timeouts).To(Equal([]timing.VTimeInMs{1000, 1000, 980}))
	})

	It("should stop on errors", func() {
		s.OnReceive(10, from(1, 0, Error{Reason: "no"}))
		s.OnTimeout(1000)

		Expect(s.Finished()).To(BeTrue())
		Expect(w.types()).To(Equal([]Type{TypeUpload}))
	})
})

var _ = Describe("SenderGBN", func() {
	var (
		mockCtrl *gomock.Controller
		host     *MockHost
		w        *wire
		s        *SenderGBN
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		host = NewMockHost(mockCtrl)
		w = &wire{}
		w.attach(host, 0)
		s = NewSenderGBN()

		_, err := s.Initialise(0, 0, host,
			[]string{writeFile("0123456789abcdefghijABCDE"), "10", "2", "1"})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	seqs := func() []int {
		out := make([]int, 0, len(w.sent))

		for _, m := range w.sent {
			switch m := m.(type) {
			case Upload:
				out = append(out, 0)
			case Data:
				out = append(out, m.Seq)
			case Fin:
				out = append(out, m.Seq)
			}
		}

		return out
	}

	It("should keep the window full", func() {
		s.OnReceive(10, from(1, 0, Ack{Seq: 0}))
		Expect(seqs()).To(Equal([]int{0, 1, 2}))

		s.OnReceive(20, from(1, 0, Ack{Seq: 1}))
		Expect(seqs()).To(Equal([]int{0, 1, 2, 3}))
		Expect(w.sent[3]).To(Equal(Data{Seq: 3, Block: []byte("ABCDE")}))

		s.OnReceive(30, from(1, 0, Ack{Seq: 3}))
		Expect(seqs()).To(Equal([]int{0, 1, 2, 3, 4}))
		Expect(w.sent[4]).To(Equal(Fin{Seq: 4}))

		s.OnReceive(40, from(1, 0, Ack{Seq: 4}))
		Expect(s.Finished()).To(BeTrue())
	})

	It("should go back to the oldest block on timeout", func() {
		s.OnReceive(10, from(1, 0, Ack{Seq: 0}))
		s.OnReceive(20, from(1, 0, Ack{Seq: 1}))
		s.OnTimeout(1020)

		Expect(seqs()).To(Equal([]int{0, 1, 2, 3, 2, 3}))
		Expect(s.Stats().TimeoutEvents).To(Equal(1))
	})

	It("should resend the upload until it is acknowledged", func() {
		s.OnTimeout(1000)
		s.OnReceive(1005, from(1, 0, Ack{Seq: 2}))

		Expect(seqs()).To(Equal([]int{0, 0}))
		Expect(w.timeouts).To(Equal([]timing.VTimeInMs{1000, 1000, 995}))
	})

	It("should ignore duplicate acks", func() {
		s.OnReceive(10, from(1, 0, Ack{Seq: 0}))
		s.OnReceive(15, from(1, 0, Ack{Seq: 0, OutsideWindow: true}))

		Expect(seqs()).To(Equal([]int{0, 1, 2}))
		Expect(w.timeouts[len(w.timeouts)-1]).To(Equal(timing.VTimeInMs(995)))
	})
})

var _ = Describe("Receiver", func() {
	var (
		mockCtrl *gomock.Controller
		host     *MockHost
		w        *wire
		r        *Receiver
		dir      string
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		host = NewMockHost(mockCtrl)
		w = &wire{}
		w.attach(host, 1)
		r = NewReceiver()
		dir = GinkgoT().TempDir()

		_, err := r.Initialise(0, 1, host, []string{"2", dir})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should refuse a bad window", func() {
		_, err := NewReceiver().Initialise(0, 1, host, []string{"zero"})

		Expect(err).To(MatchError(ErrBadArgs))
	})

	It("should reorder blocks within the window", func() {
		r.OnReceive(1, from(0, 1, Upload{Filename: "in/f.txt", Optional: []byte{7}}))
		r.OnReceive(2, from(0, 1, Data{Seq: 2, Block: []byte("world")}))
		r.OnReceive(3, from(0, 1, Data{Seq: 1, Block: []byte("hello ")}))
		r.OnReceive(4, from(0, 1, Data{Seq: 5, Block: []byte("late")}))
		r.OnReceive(5, from(0, 1, Fin{Seq: 3}))

		Expect(w.sent).To(Equal([]Message{
			Ack{Seq: 0, Optional: []byte{7}},
			Ack{Seq: 0},
			Ack{Seq: 2},
			Ack{Seq: 2, OutsideWindow: true},
			Ack{Seq: 3},
		}))
		Expect(r.Done()).To(BeTrue())
		Expect(r.Path()).To(Equal(filepath.Join(dir, "copy-of-f.txt")))

		content, err := os.ReadFile(r.Path())
		Expect(err).NotTo(HaveOccurred())
		Expect(string(content)).To(Equal("hello world"))
	})

	It("should refuse a second upload", func() {
		r.OnReceive(1, from(0, 1, Upload{Filename: "f"}))
		r.OnReceive(2, from(0, 1, Data{Seq: 1, Block: []byte("x")}))
		r.OnReceive(3, from(0, 1, Upload{Filename: "g"}))

		Expect(w.sent[2].Type()).To(Equal(TypeError))
	})

	It("should create an empty copy of an empty file", func() {
		r.OnReceive(1, from(0, 1, Upload{Filename: "empty"}))
		r.OnReceive(2, from(0, 1, Fin{Seq: 1}))

		info, err := os.Stat(filepath.Join(dir, "copy-of-empty"))
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Size()).To(BeZero())
	})
})
