package ft21

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/sarchlab/netsim/sim/timing"
)

// TrafficCounter counts the bytes of the simulated packets.
const TrafficCounter = "bytes"

// Counters are named counters.
type Counters map[string]int

// Add adds v to the counter name.
func (c Counters) Add(name string, v int) {
	c[name] += v
}

func (c Counters) String() string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}

	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, c[name])
	}

	return "{" + strings.Join(parts, ", ") + "}"
}

// A Tally keeps samples of a quantity.
type Tally struct {
	Name    string
	samples []float64
}

// Add records a sample.
func (t *Tally) Add(v timing.VTimeInMs) {
	t.samples = append(t.samples, float64(v))
}

// Len returns the number of samples.
func (t *Tally) Len() int {
	return len(t.samples)
}

// Min returns the smallest sample, or 0 without samples.
func (t *Tally) Min() float64 {
	if len(t.samples) == 0 {
		return 0
	}

	return floats.Min(t.samples)
}

// Max returns the largest sample, or 0 without samples.
func (t *Tally) Max() float64 {
	if len(t.samples) == 0 {
		return 0
	}

	return floats.Max(t.samples)
}

// Mean returns the average sample, or 0 without samples.
func (t *Tally) Mean() float64 {
	if len(t.samples) == 0 {
		return 0
	}

	return stat.Mean(t.samples, nil)
}

// StdDev returns the sample standard deviation, or 0 with less than two
// samples.
func (t *Tally) StdDev() float64 {
	if len(t.samples) < 2 {
		return 0
	}

	return stat.StdDev(t.samples, nil)
}

func (t *Tally) String() string {
	if len(t.samples) == 0 {
		return fmt.Sprintf("%s (max/avg/min/#samples) : ?, ?, ?, ?", t.Name)
	}

	return fmt.Sprintf("%s (min: %.0f / avg: %.2f / max: %.0f / stddev: %.2f / #samples: %d)",
		t.Name, t.Min(), t.Mean(), t.Max(), t.StdDev(), len(t.samples))
}

// Stats are the statistics of one side of a transfer.
type Stats struct {
	start timing.VTimeInMs

	In            Counters
	Out           Counters
	RTT           Tally
	Timeout       Tally
	TimeoutEvents int
}

// NewStats starts statistics at now.
func NewStats(now timing.VTimeInMs) *Stats {
	return &Stats{
		start:   now,
		In:      make(Counters),
		Out:     make(Counters),
		RTT:     Tally{Name: "RTT"},
		Timeout: Tally{Name: "Timeout"},
	}
}

// Rates returns the mean inbound and outbound rates in kbit/s up to now.
func (s *Stats) Rates(now timing.VTimeInMs) (in, out float64) {
	elapsed := float64(now - s.start)
	if elapsed <= 0 {
		return 0, 0
	}

	in = 8 * float64(s.In[TrafficCounter]) / elapsed
	out = 8 * float64(s.Out[TrafficCounter]) / elapsed

	return in, out
}

// Report prints the statistics of the transfer named name.
func (s *Stats) Report(w io.Writer, name string, now timing.VTimeInMs) {
	in, out := s.Rates(now)

	fmt.Fprintf(w, "\n+++++++++++++++++++++++++++++++++++++++++\n")
	fmt.Fprintf(w, "%s STATS\n\n", name)
	fmt.Fprintf(w, "COUNTERS:\nInbound: %s\nOutbound: %s\n", s.In, s.Out)
	fmt.Fprintf(w, "------------------------------------\n")
	fmt.Fprintf(w, "RTT/Timeout Stats:\n%s\n%s\n", &s.RTT, &s.Timeout)
	fmt.Fprintf(w, "timeout events: %d\n", s.TimeoutEvents)
	fmt.Fprintf(w, "------------------------------------\n")
	fmt.Fprintf(w, "Transfer Rates:\n")
	fmt.Fprintf(w, "Inbound mean transfer rate: %3.2f Kbit/s\n", in)
	fmt.Fprintf(w, "Outbound mean transfer rate: %3.2f Kbit/s\n", out)
	fmt.Fprintf(w, "+++++++++++++++++++++++++++++++++++++++++\n\n")
}
