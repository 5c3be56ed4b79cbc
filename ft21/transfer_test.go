package ft21_test

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/netsim/ft21"
	"github.com/sarchlab/netsim/routing/endsystem"
	"github.com/sarchlab/netsim/sim/link"
	"github.com/sarchlab/netsim/sim/node"
	"github.com/sarchlab/netsim/sim/params"
	"github.com/sarchlab/netsim/sim/simulation"
)

var _ = Describe("Transfer", func() {
	var (
		dir     string
		content []byte
		source  string
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		content = bytes.Repeat([]byte("0123456789"), 250)
		source = filepath.Join(dir, "upload.bin")
		Expect(os.WriteFile(source, content, 0o600)).To(Succeed())
	})

	run := func(sender node.Application, args []string, errorRate float64) {
		parameter := params.New()
		s := simulation.MakeBuilder().
			WithParameters(parameter).
			WithReportWriter(io.Discard).
			WithLogger(log.New(io.Discard, "", 0)).
			Build()

		apps := []node.Application{sender, ft21.NewReceiver()}
		appArgs := [][]string{args, {"4", filepath.Join(dir, "out")}}

		for id, app := range apps {
			n := node.MakeBuilder().
				WithNumInterfaces(1).
				WithRouter(endsystem.Name, endsystem.New()).
				WithApplication("ft21", app, appArgs[id]).
				WithParameters(parameter).
				WithReportWriter(io.Discard).
				Build(id)
			Expect(s.AddNode(n)).To(Succeed())
		}

		l := link.MakeBuilder().
			WithBandwidth(1_000_000).
			WithLatency(10).
			WithErrorRate(errorRate).
			Build(link.Endpoint{Node: 0, Iface: 0}, link.Endpoint{Node: 1, Iface: 0})
		Expect(s.AddLink(l)).To(Succeed())

		Expect(s.Run()).To(Succeed())
	}

	copied := func() []byte {
		b, err := os.ReadFile(filepath.Join(dir, "out", "copy-of-upload.bin"))
		Expect(err).NotTo(HaveOccurred())

		return b
	}

	for _, rate := range []float64{0, 0.1} {
		rate := rate
		It("should copy a file with Stop-and-Wait at error rate "+
			strconv.FormatFloat(rate, 'f', 1, 64), func() {
			sender := ft21.NewSenderSW()
			run(sender, []string{source, "300"}, rate)

			Expect(sender.Finished()).To(BeTrue())
			Expect(copied()).To(Equal(content))
		})

		It("should copy a file with Go-Back-N at error rate "+
			strconv.FormatFloat(rate, 'f', 1, 64), func() {
			sender := ft21.NewSenderGBN()
			run(sender, []string{source, "300", "4"}, rate)

			Expect(sender.Finished()).To(BeTrue())
			Expect(copied()).To(Equal(content))
		})
	}

	It("should not retransmit on a clean link", func() {
		sender := ft21.NewSenderSW()
		run(sender, []string{source, "1000"}, 0)

		Expect(sender.Stats().TimeoutEvents).To(BeZero())
		Expect(sender.Stats().Out).To(HaveKeyWithValue("DATA", 3))
		Expect(sender.Stats().Out).To(HaveKeyWithValue("UPLOAD", 1))
		Expect(sender.Stats().Out).To(HaveKeyWithValue("FIN", 1))
	})
})
