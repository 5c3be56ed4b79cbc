// Package packet defines the virtual packets that travel between nodes.
package packet

import (
	"errors"
	"fmt"
	"strings"
)

// Kind tells what a packet carries and therefore who consumes it.
type Kind int

// The packet kinds. Data goes to applications, control goes to routing
// strategies, and tracing packets are handled by the nodes themselves.
const (
	KindData Kind = iota
	KindControl
	KindTracing
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindData:
		return "DATA"
	case KindControl:
		return "CONTROL"
	case KindTracing:
		return "TRACING"
	default:
		return "UNKNOWN"
	}
}

const (
	// HeaderSize is the size of a packet with no payload, similar to IP.
	HeaderSize = 20

	// InitialTTL is the hop budget of a freshly created packet.
	InitialTTL = 32

	// OneHop addresses the first node that receives the packet.
	OneHop = 10000

	// Broadcast addresses every node.
	Broadcast = 11111

	// UnknownAddr is the unknown address.
	UnknownAddr = -1
)

// ErrNotData is returned when a packet is used as a data packet but carries
// another kind.
var ErrNotData = errors.New("packet is not a data packet")

// A Packet is a message with a header and a payload.
type Packet struct {
	src        int
	dst        int
	ttl        int
	seq        int
	headerSize int
	payload    []byte
	kind       Kind
}

// New creates a packet of unknown kind. The packet owns the given payload.
func New(src, dst int, payload []byte) *Packet {
	return &Packet{
		src:        src,
		dst:        dst,
		ttl:        InitialTTL,
		headerSize: HeaderSize,
		payload:    payload,
		kind:       KindUnknown,
	}
}

// NewData creates a data packet.
func NewData(src, dst int, payload []byte) *Packet {
	p := New(src, dst, payload)
	p.kind = KindData

	return p
}

// NewControl creates a control packet.
func NewControl(src, dst int, payload []byte) *Packet {
	p := New(src, dst, payload)
	p.kind = KindControl

	return p
}

// NewTracing creates a tracing packet with an empty path.
func NewTracing(src, dst int) *Packet {
	p := New(src, dst, []byte{})
	p.kind = KindTracing

	return p
}

// Copy makes a structurally identical packet that shares no storage with p.
func (p *Packet) Copy() *Packet {
	payload := make([]byte, len(p.payload))
	copy(payload, p.payload)

	c := *p
	c.payload = payload

	return &c
}

// AsData returns an independent copy of p if it is a data packet.
func (p *Packet) AsData() (*Packet, error) {
	if p.kind != KindData {
		return nil, fmt.Errorf("%w: %s", ErrNotData, p)
	}

	return p.Copy(), nil
}

// Source returns the source address.
func (p *Packet) Source() int {
	return p.src
}

// SetSource sets the source address.
func (p *Packet) SetSource(src int) {
	p.src = src
}

// Destination returns the destination address.
func (p *Packet) Destination() int {
	return p.dst
}

// SetDestination sets the destination address.
func (p *Packet) SetDestination(dst int) {
	p.dst = dst
}

// Kind returns the kind of the packet.
func (p *Packet) Kind() Kind {
	return p.kind
}

// TTL returns the remaining hop budget.
func (p *Packet) TTL() int {
	return p.ttl
}

// DecrementTTL consumes one hop of the budget.
func (p *Packet) DecrementTTL() {
	p.ttl--
}

// SequenceNumber returns the sequence number stamped by the creating node.
func (p *Packet) SequenceNumber() int {
	return p.seq
}

// SetSequenceNumber sets the sequence number.
func (p *Packet) SetSequenceNumber(seq int) {
	p.seq = seq
}

// HeaderSize returns the number of header bytes accounted in Size.
func (p *Packet) HeaderSize() int {
	return p.headerSize
}

// SetHeaderSize changes the number of header bytes accounted in Size.
func (p *Packet) SetHeaderSize(n int) {
	if n < 0 {
		panic("header size must not be negative")
	}

	p.headerSize = n
}

// Size returns the header size plus the payload length, in bytes.
func (p *Packet) Size() int {
	return p.headerSize + len(p.payload)
}

// Payload returns the payload. Callers must not retain it across hops.
func (p *Packet) Payload() []byte {
	return p.payload
}

// SetPayload replaces the payload.
func (p *Packet) SetPayload(payload []byte) {
	p.payload = payload
}

// Path returns the trace accumulated by a tracing packet.
func (p *Packet) Path() string {
	return string(p.payload)
}

// StartPath resets the trace of a tracing packet to its first hop.
func (p *Packet) StartPath(nodeID int) {
	p.payload = []byte(fmt.Sprintf(" %d", nodeID))
}

// AppendHop records that the tracing packet went through nodeID.
func (p *Packet) AppendHop(nodeID int) {
	p.payload = []byte(fmt.Sprintf("%s -> %d", p.payload, nodeID))
}

func (p *Packet) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "src %d dst %d type %s ttl %d seq %d size %d",
		p.src, p.dst, p.kind, p.ttl, p.seq, p.Size())

	if p.kind == KindTracing {
		fmt.Fprintf(&b, " path %s", p.Path())
	}

	return b.String()
}
