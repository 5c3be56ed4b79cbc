package monitoring

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/netsim/builtin"
	"github.com/sarchlab/netsim/config"
	"github.com/sarchlab/netsim/sim/simulation"
)

const pingScenario = `
parameter stop 1500
node 0 1 EndSystemControl PingSender 1
node 1 1 EndSystemControl PingReceiver
link 0.0 1.0 8000 0 0 0
`

var _ = Describe("Monitor", func() {
	var (
		sim *simulation.Simulator
		m   *Monitor
		r   *mux.Router
	)

	get := func(url string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

		return rec
	}

	BeforeEach(func() {
		s, err := config.Parse(strings.NewReader(pingScenario))
		Expect(err).NotTo(HaveOccurred())

		sim, err = config.Build(s, builtin.NewRegistry(),
			simulation.MakeBuilder().
				WithReportWriter(io.Discard).
				WithLogger(log.New(io.Discard, "", 0)))
		Expect(err).NotTo(HaveOccurred())

		m = NewMonitor()
		m.RegisterSimulator(sim)
		r = m.router()
	})

	It("should refuse low port numbers", func() {
		Expect(NewMonitor().WithPortNumber(80).portNumber).To(Equal(0))
		Expect(NewMonitor().WithPortNumber(8080).portNumber).To(Equal(8080))
	})

	It("should pause and continue the simulator", func() {
		Expect(get("/api/pause").Code).To(Equal(http.StatusOK))
		Expect(sim.IsPaused()).To(BeTrue())

		rsp := nowRsp{}
		Expect(json.Unmarshal(get("/api/now").Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.Paused).To(BeTrue())
		Expect(rsp.State).To(Equal("uninitialized"))

		Expect(get("/api/continue").Code).To(Equal(http.StatusOK))
		Expect(sim.IsPaused()).To(BeFalse())
	})

	It("should report the time once the simulation ran", func() {
		Expect(sim.Run()).To(Succeed())

		rsp := nowRsp{}
		Expect(json.Unmarshal(get("/api/now").Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.Now).To(Equal(1072))
		Expect(rsp.State).To(Equal("terminated"))
	})

	It("should list nodes with their counters", func() {
		Expect(sim.Run()).To(Succeed())

		var nodes []nodeRsp
		Expect(json.Unmarshal(get("/api/list_nodes").Body.Bytes(), &nodes)).
			To(Succeed())

		Expect(nodes).To(HaveLen(2))
		Expect(nodes[1]).To(Equal(nodeRsp{
			ID:        1,
			Router:    "EndSystemControl",
			App:       "PingReceiver",
			Sent:      1,
			Received:  1,
			Forwarded: 1,
		}))
	})

	It("should list links", func() {
		var links []linkRsp
		Expect(json.Unmarshal(get("/api/list_links").Body.Bytes(), &links)).
			To(Succeed())

		Expect(links).To(HaveLen(1))
		Expect(links[0].Name).To(Equal("Link[0.0-1.0]"))
		Expect(links[0].Up).To(BeTrue())
	})

	It("should serialize nodes and links", func() {
		Expect(get("/api/node/0").Code).To(Equal(http.StatusOK))

		rsp := get("/api/link/0")
		Expect(rsp.Code).To(Equal(http.StatusOK))
		Expect(rsp.Body.String()).To(ContainSubstring(`"v":"Link[0.0-1.0]"`))
	})

	It("should serialize fields of a link", func() {
		field := func(req string) *httptest.ResponseRecorder {
			return get("/api/field/" + url.PathEscape(req))
		}

		rsp := field(`{"link":0,"field_name":"bandwidth"}`)
		Expect(rsp.Code).To(Equal(http.StatusOK))
		Expect(rsp.Body.String()).To(ContainSubstring(`"v":8000`))

		rsp = field(`{"link":0,"field_name":"sides"}`)
		Expect(rsp.Code).To(Equal(http.StatusOK))
		Expect(rsp.Body.String()).To(ContainSubstring(`"l":2`))

		rsp = field(`{"link":0,"field_name":"sides.1.end.Node"}`)
		Expect(rsp.Code).To(Equal(http.StatusOK))
		Expect(rsp.Body.String()).To(ContainSubstring(`"v":1`))

		Expect(field(`{"link":0,"field_name":"nothing"}`).Code).
			To(Equal(http.StatusBadRequest))
	})

	It("should answer 404 for missing nodes and links", func() {
		Expect(get("/api/node/7").Code).To(Equal(http.StatusNotFound))
		Expect(get("/api/link/3").Code).To(Equal(http.StatusNotFound))
	})

	It("should refuse malformed field requests", func() {
		Expect(get("/api/field/nonsense").Code).To(Equal(http.StatusBadRequest))
		Expect(get("/api/field/%7B%7D").Code).To(Equal(http.StatusBadRequest))
	})

	It("should track virtual time as progress", func() {
		Expect(sim.Run()).To(Succeed())

		var bars []*ProgressBar
		Expect(json.Unmarshal(get("/api/progress").Body.Bytes(), &bars)).
			To(Succeed())

		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Total).To(Equal(uint64(1500)))
		Expect(bars[0].Finished).To(Equal(uint64(1072)))
	})

	It("should complete progress bars", func() {
		bar := m.CreateProgressBar("files", 3)
		bar.IncrementInProgress(2)
		bar.MoveInProgressToFinished(1)

		Expect(bar.Finished).To(Equal(uint64(1)))
		Expect(bar.InProgress).To(Equal(uint64(1)))

		m.CompleteProgressBar(bar)
		Expect(m.progressBars).To(HaveLen(1))
	})

	It("should report resources", func() {
		rsp := resourceRsp{}
		Expect(json.Unmarshal(get("/api/resource").Body.Bytes(), &rsp)).
			To(Succeed())

		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should export packet counters", func() {
		Expect(sim.Run()).To(Succeed())

		body := get("/metrics").Body.String()

		Expect(body).To(ContainSubstring(
			`netsim_node_packets_total{node="1",outcome="received"} 1`))
		Expect(body).To(ContainSubstring(
			`netsim_node_packets_total{node="0",outcome="dropped"} 0`))
		Expect(body).To(ContainSubstring(
			`netsim_link_up{link="Link[0.0-1.0]"} 1`))
		Expect(body).To(ContainSubstring(
			`netsim_link_packets_total{direction="sent",iface="0",` +
				`link="Link[0.0-1.0]",node="0"} 1`))
		Expect(body).To(ContainSubstring("netsim_virtual_time_ms 1072"))
	})

	It("should serve the web page", func() {
		rec := get("/")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(HavePrefix("<!DOCTYPE html>"))
	})
})
