// Package queueing provides the FIFO queues that hold packets waiting for a
// link to transmit them.
package queueing

import (
	"log"

	"github.com/sarchlab/netsim/sim/hooking"
	"github.com/sarchlab/netsim/sim/packet"
)

// HookPosBufPush marks when a packet is pushed into the buffer.
var HookPosBufPush = &hooking.HookPos{Name: "Buffer Push"}

// HookPosBufPop marks when a packet is popped from the buffer.
var HookPosBufPop = &hooking.HookPos{Name: "Buffer Pop"}

// HookPosBufClear marks when the buffer discards its packets.
var HookPosBufClear = &hooking.HookPos{Name: "Buffer Clear"}

// A Buffer is a fifo queue of packets.
type Buffer interface {
	hooking.Hookable

	Name() string
	CanPush() bool
	Push(p *packet.Packet)
	Pop() *packet.Packet
	Peek() *packet.Packet
	Capacity() int
	Size() int
	Clear()
}

// BufferBuilder is a builder for Buffer.
type BufferBuilder struct {
	capacity int
}

// MakeBufferBuilder creates a BufferBuilder for an unbounded buffer.
func MakeBufferBuilder() BufferBuilder {
	return BufferBuilder{}
}

// WithCapacity defines the capacity of the buffer. A capacity that is not
// positive means unbounded.
func (b BufferBuilder) WithCapacity(capacity int) BufferBuilder {
	b.capacity = capacity
	return b
}

// Build builds a new Buffer.
func (b BufferBuilder) Build(name string) Buffer {
	return &bufferImpl{
		name:     name,
		capacity: b.capacity,
	}
}

type bufferImpl struct {
	hooking.HookableBase

	name     string
	capacity int
	elements []*packet.Packet
}

// Name returns the name of the buffer.
func (b *bufferImpl) Name() string {
	return b.name
}

func (b *bufferImpl) CanPush() bool {
	return b.capacity <= 0 || len(b.elements) < b.capacity
}

func (b *bufferImpl) Push(p *packet.Packet) {
	if !b.CanPush() {
		log.Panic("buffer overflow")
	}

	b.elements = append(b.elements, p)

	if b.NumHooks() > 0 {
		b.InvokeHook(hooking.HookCtx{
			Domain: b,
			Pos:    HookPosBufPush,
			Item:   p,
		})
	}
}

func (b *bufferImpl) Pop() *packet.Packet {
	if len(b.elements) == 0 {
		return nil
	}

	p := b.elements[0]
	b.elements[0] = nil
	b.elements = b.elements[1:]

	if b.NumHooks() > 0 {
		b.InvokeHook(hooking.HookCtx{
			Domain: b,
			Pos:    HookPosBufPop,
			Item:   p,
		})
	}

	return p
}

func (b *bufferImpl) Peek() *packet.Packet {
	if len(b.elements) == 0 {
		return nil
	}

	return b.elements[0]
}

func (b *bufferImpl) Capacity() int {
	return b.capacity
}

func (b *bufferImpl) Size() int {
	return len(b.elements)
}

func (b *bufferImpl) Clear() {
	if len(b.elements) > 0 && b.NumHooks() > 0 {
		b.InvokeHook(hooking.HookCtx{
			Domain: b,
			Pos:    HookPosBufClear,
			Detail: len(b.elements),
		})
	}

	b.elements = nil
}
