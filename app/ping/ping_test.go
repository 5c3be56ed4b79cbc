package ping

import (
	"bytes"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/netsim/sim/packet"
	"github.com/sarchlab/netsim/sim/timing"
)

var _ = Describe("Sender", func() {
	var (
		mockCtrl *gomock.Controller
		host     *MockHost
		report   *bytes.Buffer
		s        *Sender
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		host = NewMockHost(mockCtrl)
		report = new(bytes.Buffer)
		host.EXPECT().Report().Return(report).AnyTimes()
		s = NewSender()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should use the default period", func() {
		period, err := s.Initialise(0, 1, host, []string{"2"})

		Expect(err).NotTo(HaveOccurred())
		Expect(period).To(Equal(DefaultPeriod))
	})

	It("should use the given period", func() {
		period, err := s.Initialise(0, 1, host, []string{"2", "250"})

		Expect(err).NotTo(HaveOccurred())
		Expect(period).To(Equal(timing.VTimeInMs(250)))
	})

	DescribeTable("should refuse bad arguments",
		func(args []string) {
			_, err := s.Initialise(0, 1, host, args)

			Expect(errors.Is(err, ErrBadArgs)).To(BeTrue())
		},
		Entry("no destination", []string{}),
		Entry("bad destination", []string{"two"}),
		Entry("bad period", []string{"2", "0"}),
		Entry("too many", []string{"2", "3", "4"}),
	)

	It("should send numbered pings on every tick", func() {
		_, err := s.Initialise(0, 1, host, []string{"2"})
		Expect(err).NotTo(HaveOccurred())

		for i := 1; i <= 2; i++ {
			p := packet.NewData(1, 2, nil)
			host.EXPECT().
				CreateDataPacket(2, []byte("ping "+string(rune('0'+i)))).
				Return(p)
			host.EXPECT().Send(p).Return(nil)

			s.OnClockTick(timing.VTimeInMs(1000 * i))
		}

		Expect(s.Sent()).To(Equal(2))
		Expect(report.String()).To(ContainSubstring(
			"log: sender time 2000 node 1 sent ping packet n. 2"))
	})

	It("should count replies", func() {
		_, err := s.Initialise(0, 1, host, []string{"2"})
		Expect(err).NotTo(HaveOccurred())

		s.OnReceive(1010, packet.NewData(2, 1, []byte("pong")))
		s.ShowState(1020)

		Expect(s.Replies()).To(Equal(1))
		Expect(report.String()).To(ContainSubstring("received reply \"pong\""))
		Expect(report.String()).To(ContainSubstring(
			"sender sent 0 pings and received 1 replies"))
	})
})

var _ = Describe("Receiver", func() {
	var (
		mockCtrl *gomock.Controller
		host     *MockHost
		report   *bytes.Buffer
		r        *Receiver
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		host = NewMockHost(mockCtrl)
		report = new(bytes.Buffer)
		host.EXPECT().Report().Return(report).AnyTimes()
		r = NewReceiver()

		period, err := r.Initialise(0, 2, host, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(period).To(BeZero())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should reply to the source", func() {
		reply := packet.NewData(2, 1, nil)
		host.EXPECT().
			CreateDataPacket(1, []byte(`receiver received "ping 1"`)).
			Return(reply)
		host.EXPECT().Send(reply).Return(nil)

		r.OnReceive(1005, packet.NewData(1, 2, []byte("ping 1")))
		r.ShowState(1006)

		Expect(r.Received()).To(Equal(1))
		Expect(report.String()).To(ContainSubstring(
			"receiver received and replied to 1 packets"))
	})
})
