// Package monitoring turns a running simulation into a small web server. It
// can pause and continue the simulator, show the state of nodes and links,
// report the resources the process uses and export packet counters to
// Prometheus.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/netsim/monitoring/web"
	"github.com/sarchlab/netsim/sim/simulation"
)

// Monitor serves the state of a simulator over HTTP.
type Monitor struct {
	sim        *simulation.Simulator
	portNumber int
	registry   *prometheus.Registry
	timeBar    *ProgressBar

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{registry: prometheus.NewRegistry()}
}

// WithPortNumber sets the port number of the monitor. Ports below 1000 are
// refused and a random port is used instead.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterSimulator sets the simulator to monitor. Its packet counters are
// exported on /metrics and its virtual time is shown as a progress bar.
func (m *Monitor) RegisterSimulator(s *simulation.Simulator) {
	m.sim = s
	m.registry.MustRegister(newCounterCollector(s))
	m.timeBar = m.CreateProgressBar("virtual time (ms)", uint64(s.StopTime()))
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := newProgressBar(name, total)

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar from the web page.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pause)
	r.HandleFunc("/api/continue", m.continueSim)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/list_nodes", m.listNodes)
	r.HandleFunc("/api/node/{id:[0-9]+}", m.nodeDetails)
	r.HandleFunc("/api/list_links", m.listLinks)
	r.HandleFunc("/api/link/{index:[0-9]+}", m.linkDetails)
	r.HandleFunc("/api/field/{json}", m.fieldValue)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.Handle("/metrics",
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts serving in the background and returns the URL of the
// web page.
func (m *Monitor) StartServer() (string, error) {
	listener, err := net.Listen("tcp", ":"+strconv.Itoa(m.portNumber))
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	r := m.router()

	go func() {
		err := http.Serve(listener, r)
		dieOnErr(err)
	}()

	return url, nil
}

func (m *Monitor) pause(w http.ResponseWriter, _ *http.Request) {
	m.sim.Pause()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) continueSim(w http.ResponseWriter, _ *http.Request) {
	m.sim.Continue()
	w.WriteHeader(http.StatusOK)
}

type nowRsp struct {
	Now     int    `json:"now"`
	State   string `json:"state"`
	Paused  bool   `json:"paused"`
	Pending int    `json:"pending"`
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	rsp := nowRsp{
		Now:    int(m.sim.Now()),
		State:  m.sim.State().String(),
		Paused: m.sim.IsPaused(),
	}

	m.inspect(func() { rsp.Pending = m.sim.PendingEvents() })

	writeJSON(w, rsp)
}

type nodeRsp struct {
	ID        int    `json:"id"`
	Router    string `json:"router"`
	App       string `json:"app"`
	Sent      int    `json:"sent"`
	Received  int    `json:"received"`
	Dropped   int    `json:"dropped"`
	Forwarded int    `json:"forwarded"`
}

func (m *Monitor) listNodes(w http.ResponseWriter, _ *http.Request) {
	var rsp []nodeRsp

	m.inspect(func() {
		for _, n := range m.sim.Nodes() {
			c := n.Counters()
			rsp = append(rsp, nodeRsp{
				ID:        n.ID(),
				Router:    n.RouterName(),
				App:       n.AppName(),
				Sent:      c.Sent,
				Received:  c.Received,
				Dropped:   c.Dropped,
				Forwarded: c.Forwarded,
			})
		}
	})

	writeJSON(w, rsp)
}

type linkRsp struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Up    bool   `json:"up"`
	Stats string `json:"stats"`
}

func (m *Monitor) listLinks(w http.ResponseWriter, _ *http.Request) {
	var rsp []linkRsp

	m.inspect(func() {
		for i, l := range m.sim.Links() {
			rsp = append(rsp, linkRsp{
				Index: i,
				Name:  l.Name(),
				Up:    l.IsUp(),
				Stats: strings.TrimSpace(l.DumpPacketStats()),
			})
		}
	})

	writeJSON(w, rsp)
}

func (m *Monitor) nodeDetails(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	item := m.findItemOr404(w, "node", id)
	if item == nil {
		return
	}

	m.serialize(w, item, nil)
}

func (m *Monitor) linkDetails(w http.ResponseWriter, r *http.Request) {
	index, _ := strconv.Atoi(mux.Vars(r)["index"])

	item := m.findItemOr404(w, "link", index)
	if item == nil {
		return
	}

	m.serialize(w, item, nil)
}

type fieldReq struct {
	Node      *int   `json:"node,omitempty"`
	Link      *int   `json:"link,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) fieldValue(w http.ResponseWriter, r *http.Request) {
	req := fieldReq{}

	err := json.Unmarshal([]byte(mux.Vars(r)["json"]), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	var item any

	switch {
	case req.Node != nil:
		item = m.findItemOr404(w, "node", *req.Node)
	case req.Link != nil:
		item = m.findItemOr404(w, "link", *req.Link)
	default:
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, "Error: either node or link must be given")

		return
	}

	if item == nil {
		return
	}

	m.serialize(w, item, strings.Split(req.FieldName, "."))
}

func (m *Monitor) serialize(w http.ResponseWriter, item any, fields []string) {
	buf := new(bytes.Buffer)

	var err error

	m.inspect(func() {
		serializer := goseth.NewSerializer()
		serializer.SetRoot(item)
		serializer.SetMaxDepth(1)

		if len(fields) > 0 {
			if err = serializer.SetEntryPoint(fields); err != nil {
				return
			}
		}

		err = serializer.Serialize(buf)
	})

	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	_, err = w.Write(buf.Bytes())
	dieOnErr(err)
}

func (m *Monitor) findItemOr404(
	w http.ResponseWriter,
	kind string,
	index int,
) any {
	var item any

	m.inspect(func() {
		switch kind {
		case "node":
			if index < len(m.sim.Nodes()) {
				item = m.sim.Nodes()[index]
			}
		case "link":
			if index < len(m.sim.Links()) {
				item = m.sim.Links()[index]
			}
		}
	})

	if item == nil {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, "%s %d not found", kind, index)
	}

	return item
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	if m.timeBar != nil {
		m.timeBar.SetFinished(uint64(m.sim.Now()))
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	writeJSON(w, m.progressBars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memoryInfo, err := proc.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

// inspect runs f between two simulation steps.
func (m *Monitor) inspect(f func()) {
	m.sim.Inspect(f)
}

func writeJSON(w http.ResponseWriter, v any) {
	b, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")

	_, err = w.Write(b)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
