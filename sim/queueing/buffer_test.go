package queueing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/netsim/sim/hooking"
	"github.com/sarchlab/netsim/sim/packet"
)

var _ = Describe("BufferImpl", func() {
	var (
		buf Buffer
		p1  *packet.Packet
		p2  *packet.Packet
	)

	BeforeEach(func() {
		buf = MakeBufferBuilder().
			WithCapacity(2).
			Build("Buf")
		p1 = packet.NewData(0, 1, []byte("a"))
		p2 = packet.NewData(0, 1, []byte("b"))
	})

	It("should allow push and pop", func() {
		Expect(buf.Name()).To(Equal("Buf"))
		Expect(buf.Capacity()).To(Equal(2))
		Expect(buf.CanPush()).To(BeTrue())

		buf.Push(p1)
		Expect(buf.CanPush()).To(BeTrue())
		Expect(buf.Size()).To(Equal(1))

		buf.Push(p2)
		Expect(buf.CanPush()).To(BeFalse())
		Expect(buf.Size()).To(Equal(2))
		Expect(func() {
			buf.Push(p1)
		}).To(Panic())

		Expect(buf.Peek()).To(BeIdenticalTo(p1))
		Expect(buf.Pop()).To(BeIdenticalTo(p1))
		Expect(buf.Size()).To(Equal(1))
		Expect(buf.Peek()).To(BeIdenticalTo(p2))
		Expect(buf.Pop()).To(BeIdenticalTo(p2))
		Expect(buf.Size()).To(Equal(0))
		Expect(buf.Peek()).To(BeNil())
		Expect(buf.Pop()).To(BeNil())
	})

	It("should clear", func() {
		buf.Push(p2)
		Expect(buf.Size()).To(Equal(1))

		buf.Clear()

		Expect(buf.Size()).To(Equal(0))
		Expect(buf.Peek()).To(BeNil())
	})

	It("should not bound a buffer without capacity", func() {
		unbounded := MakeBufferBuilder().Build("Unbounded")

		for i := 0; i < 1000; i++ {
			unbounded.Push(p1)
		}

		Expect(unbounded.CanPush()).To(BeTrue())
		Expect(unbounded.Size()).To(Equal(1000))
	})

	It("should invoke hooks", func() {
		positions := make([]*hooking.HookPos, 0)
		buf.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			positions = append(positions, ctx.Pos)
		}))

		buf.Push(p1)
		buf.Pop()
		buf.Push(p2)
		buf.Clear()

		Expect(positions).To(Equal([]*hooking.HookPos{
			HookPosBufPush, HookPosBufPop, HookPosBufPush, HookPosBufClear,
		}))
	})
})
