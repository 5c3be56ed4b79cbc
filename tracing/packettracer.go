package tracing

import (
	"fmt"

	"github.com/sarchlab/netsim/sim/hooking"
	"github.com/sarchlab/netsim/sim/link"
	"github.com/sarchlab/netsim/sim/node"
	"github.com/sarchlab/netsim/sim/packet"
	"github.com/sarchlab/netsim/sim/simulation"
	"github.com/sarchlab/netsim/sim/timing"
)

// A PacketTracer is a hook that records the packet events of nodes and
// links.
type PacketTracer struct {
	w      Writer
	filter RecordFilter
	err    error
}

// NewPacketTracer creates a tracer writing the records that pass filter.
func NewPacketTracer(w Writer, filter RecordFilter) *PacketTracer {
	if filter == nil {
		filter = All
	}

	return &PacketTracer{w: w, filter: filter}
}

// Err returns the first error the writer returned.
func (t *PacketTracer) Err() error {
	return t.err
}

// Func records the packet event described by ctx.
func (t *PacketTracer) Func(ctx hooking.HookCtx) {
	r, ok := toRecord(ctx)
	if !ok || !t.filter(r) {
		return
	}

	if err := t.w.Write(r); err != nil && t.err == nil {
		t.err = err
	}
}

var nodeWhat = map[*hooking.HookPos]string{
	node.HookPosPacketSent:      WhatSent,
	node.HookPosPacketReceived:  WhatReceived,
	node.HookPosPacketForwarded: WhatForwarded,
	node.HookPosPacketDropped:   WhatDropped,
}

func toRecord(ctx hooking.HookCtx) (Record, bool) {
	p, _ := ctx.Item.(*packet.Packet)

	switch d := ctx.Domain.(type) {
	case *node.Node:
		what, ok := nodeWhat[ctx.Pos]
		if !ok {
			return Record{}, false
		}

		r := newRecord(ctx.Now, fmt.Sprintf("node %d", d.ID()), what, p)

		switch detail := ctx.Detail.(type) {
		case int:
			r.Iface = detail
		case string:
			r.Detail = detail
		}

		return r, true
	case *link.Link:
		switch ctx.Pos {
		case link.HookPosPacketScheduled:
			r := newRecord(ctx.Now, d.Name(), WhatScheduled, p)
			if evt, ok := ctx.Detail.(*timing.Event); ok {
				r.Detail = fmt.Sprintf("deliver at %d to %d.%d",
					evt.Time, evt.Node, evt.Iface)
			}

			return r, true
		case link.HookPosPacketDropped:
			r := newRecord(ctx.Now, d.Name(), WhatDropped, p)
			r.Detail = fmt.Sprint(ctx.Detail)

			return r, true
		}
	}

	return Record{}, false
}

// CollectTrace attaches hook to every node and link of the simulator.
func CollectTrace(sim *simulation.Simulator, hook hooking.Hook) {
	for _, n := range sim.Nodes() {
		n.AcceptHook(hook)
	}

	for _, l := range sim.Links() {
		l.AcceptHook(hook)
	}
}
