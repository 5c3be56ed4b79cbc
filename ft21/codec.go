// Package ft21 implements the FT21 file transfer protocol on top of
// simulated data packets: a wire codec, transfer statistics, a Stop-and-Wait
// sender, a Go-Back-N sender and a windowed receiver.
package ft21

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// MaxMessageSize is the largest encoded message.
const MaxMessageSize = 1 << 16

// Type is the first byte of every message.
type Type byte

// Message types, in wire order.
const (
	TypeUpload Type = iota
	TypeData
	TypeFin
	TypeAck
	TypeError
)

func (t Type) String() string {
	switch t {
	case TypeUpload:
		return "UPLOAD"
	case TypeData:
		return "DATA"
	case TypeFin:
		return "FIN"
	case TypeAck:
		return "ACK"
	case TypeError:
		return "ERROR"
	default:
		return fmt.Sprintf("Type(%d)", byte(t))
	}
}

var (
	// ErrMalformed is returned when bytes cannot be decoded as a message.
	ErrMalformed = errors.New("malformed ft21 message")

	// ErrTooLarge is returned when a message does not fit MaxMessageSize.
	ErrTooLarge = errors.New("ft21 message too large")
)

// A Message is one of Upload, Data, Fin, Ack or Error.
type Message interface {
	Type() Type
	String() string
	appendTo(b []byte) []byte
}

// Upload starts a transfer.
type Upload struct {
	Filename string
	Optional []byte
}

// Type returns TypeUpload.
func (Upload) Type() Type { return TypeUpload }

func (m Upload) String() string { return fmt.Sprintf("UPLOAD<%s>", m.Filename) }

func (m Upload) appendTo(b []byte) []byte {
	b = appendOptional(b, m.Optional)
	return append(b, m.Filename...)
}

// Data carries the block with sequence number Seq. Blocks are numbered from 1.
type Data struct {
	Seq      int
	Optional []byte
	Block    []byte
}

// Type returns TypeData.
func (Data) Type() Type { return TypeData }

func (m Data) String() string {
	return fmt.Sprintf("DATA<%d, len: %d>", m.Seq, len(m.Block))
}

func (m Data) appendTo(b []byte) []byte {
	b = binary.BigEndian.AppendUint32(b, uint32(int32(m.Seq)))
	b = appendOptional(b, m.Optional)

	return append(b, m.Block...)
}

// Fin ends a transfer. Its sequence number follows the last block.
type Fin struct {
	Seq      int
	Optional []byte
}

// Type returns TypeFin.
func (Fin) Type() Type { return TypeFin }

func (m Fin) String() string { return fmt.Sprintf("FIN<%d>", m.Seq) }

func (m Fin) appendTo(b []byte) []byte {
	b = binary.BigEndian.AppendUint32(b, uint32(int32(m.Seq)))
	return appendOptional(b, m.Optional)
}

// Ack acknowledges every message up to Seq. OutsideWindow is set when the
// acknowledged message fell outside the receiver window. Optional echoes the
// optional bytes of the acknowledged message.
type Ack struct {
	Seq           int
	OutsideWindow bool
	Optional      []byte
}

// Type returns TypeAck.
func (Ack) Type() Type { return TypeAck }

func (m Ack) String() string { return fmt.Sprintf("ACK<%d>", m.Seq) }

func (m Ack) appendTo(b []byte) []byte {
	seq := int32(m.Seq)
	if m.OutsideWindow {
		seq = -seq
	}

	b = binary.BigEndian.AppendUint32(b, uint32(seq))

	return append(b, m.Optional...)
}

// Error reports a protocol error to the peer.
type Error struct {
	Reason string
}

// Type returns TypeError.
func (Error) Type() Type { return TypeError }

func (m Error) String() string { return fmt.Sprintf("ERROR<%s>", m.Reason) }

func (m Error) appendTo(b []byte) []byte {
	return append(b, m.Reason...)
}

func appendOptional(b, optional []byte) []byte {
	b = append(b, byte(len(optional)))
	return append(b, optional...)
}

// Encode turns a message into bytes.
func Encode(m Message) ([]byte, error) {
	if u, ok := m.(Upload); ok && len(u.Optional) > 255 {
		return nil, fmt.Errorf("%w: optional data of %d bytes", ErrTooLarge,
			len(u.Optional))
	}

	b := m.appendTo([]byte{byte(m.Type())})
	if len(b) > MaxMessageSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, m, len(b))
	}

	return b, nil
}

// Decode parses bytes produced by Encode.
func Decode(b []byte) (Message, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrMalformed)
	}

	r := reader{buf: b[1:], t: Type(b[0])}

	var m Message

	switch r.t {
	case TypeUpload:
		opt := r.optional()
		m = Upload{Optional: opt, Filename: string(r.rest())}
	case TypeData:
		seq := r.int()
		opt := r.optional()
		m = Data{Seq: seq, Optional: opt, Block: r.rest()}
	case TypeFin:
		seq := r.int()
		m = Fin{Seq: seq, Optional: r.optional()}
	case TypeAck:
		seq := r.int()
		ack := Ack{Seq: seq, Optional: r.rest()}

		if seq < 0 {
			ack.Seq = -seq
			ack.OutsideWindow = true
		}

		m = ack
	case TypeError:
		m = Error{Reason: string(r.rest())}
	default:
		return nil, fmt.Errorf("%w: unknown type %d", ErrMalformed, b[0])
	}

	if r.err != nil {
		return nil, r.err
	}

	return m, nil
}

// reader reads fields in order and keeps the first error.
type reader struct {
	buf []byte
	t   Type
	err error
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}

	if len(r.buf) < n {
		r.err = fmt.Errorf("%w: %s truncated", ErrMalformed, r.t)
		return nil
	}

	out := r.buf[:n]
	r.buf = r.buf[n:]

	return out
}

func (r *reader) int() int {
	b := r.take(4)
	if b == nil {
		return 0
	}

	return int(int32(binary.BigEndian.Uint32(b)))
}

func (r *reader) optional() []byte {
	n := r.take(1)
	if n == nil {
		return nil
	}

	return clone(r.take(int(n[0])))
}

func (r *reader) rest() []byte {
	if r.err != nil {
		return nil
	}

	out := clone(r.buf)
	r.buf = nil

	return out
}

func clone(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}

	return append([]byte(nil), b...)
}
