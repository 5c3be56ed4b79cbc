package link

import (
	"io"
	"log"
	"math/rand"

	"github.com/sarchlab/netsim/sim/queueing"
)

// DefaultMaxQueue is the queue bound used when none is configured. It is
// large enough to never be reached in practice.
const DefaultMaxQueue = 1_000_000

// Builder can build links.
type Builder struct {
	bandwidth int64
	latency   int
	errorRate float64
	jitter    float64
	maxQueue  int
	down      bool
	report    io.Writer
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		maxQueue: DefaultMaxQueue,
		report:   io.Discard,
	}
}

// WithBandwidth sets the bandwidth in bits per second.
func (b Builder) WithBandwidth(bps int64) Builder {
	b.bandwidth = bps
	return b
}

// WithLatency sets the propagation latency in milliseconds.
func (b Builder) WithLatency(ms int) Builder {
	b.latency = ms
	return b
}

// WithErrorRate sets the probability, between 0 and 1, that a packet is lost.
func (b Builder) WithErrorRate(rate float64) Builder {
	b.errorRate = rate
	return b
}

// WithJitter sets the maximum extra delay, as a fraction of the transmission
// time.
func (b Builder) WithJitter(fraction float64) Builder {
	b.jitter = fraction
	return b
}

// WithMaxQueue sets how many packets may be in flight in one direction before
// new ones are dropped.
func (b Builder) WithMaxQueue(n int) Builder {
	b.maxQueue = n
	return b
}

// WithDownState makes the link start in the down state.
func (b Builder) WithDownState() Builder {
	b.down = true
	return b
}

// WithReportWriter sets where drop notices are printed.
func (b Builder) WithReportWriter(w io.Writer) Builder {
	b.report = w
	return b
}

// Build creates a link between two endpoints.
func (b Builder) Build(a, z Endpoint) *Link {
	b.mustBeValid()

	l := &Link{
		name:      "Link[" + a.String() + "-" + z.String() + "]",
		bandwidth: b.bandwidth,
		latency:   b.latency,
		errorRate: b.errorRate,
		jitter:    b.jitter,
		maxQueue:  b.maxQueue,
		up:        !b.down,
		report:    b.report,
	}

	l.sides = []*side{l.newSide(a, "A"), l.newSide(z, "B")}

	seed := int64(a.Node + z.Node + a.Iface + z.Iface)
	if b.errorRate > 0.0001 {
		l.dropRand = rand.New(rand.NewSource(10000 + seed))
	}

	if b.jitter > 0.0001 {
		l.jitterRand = rand.New(rand.NewSource(20000 + seed))
	}

	return l
}

func (b Builder) mustBeValid() {
	if b.bandwidth <= 0 {
		log.Panic("link bandwidth must be positive")
	}

	if b.latency < 0 {
		log.Panic("link latency must not be negative")
	}

	if b.errorRate < 0 || b.errorRate > 1 {
		log.Panic("link error rate must be between 0 and 1")
	}

	if b.jitter < 0 || b.jitter > 1 {
		log.Panic("link jitter must be between 0 and 1")
	}
}

func (l *Link) newSide(end Endpoint, label string) *side {
	return &side{
		end: end,
		out: queueing.MakeBufferBuilder().Build(l.name + ".Out" + label),
	}
}
