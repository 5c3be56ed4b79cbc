// Package tracing records what happens to packets as they cross nodes and
// links. A PacketTracer hook turns hook invocations into Records and hands
// them to a Writer.
package tracing

import (
	"github.com/sarchlab/netsim/sim/packet"
)

// What a record describes.
const (
	WhatSent      = "sent"
	WhatReceived  = "received"
	WhatForwarded = "forwarded"
	WhatDropped   = "dropped"
	WhatScheduled = "scheduled"
)

// A Record is one packet event.
type Record struct {
	Time   int
	Where  string
	What   string
	Kind   string
	Src    int
	Dst    int
	Seq    int
	TTL    int
	Size   int
	Iface  int
	Detail string
}

func newRecord(now int, where, what string, p *packet.Packet) Record {
	r := Record{
		Time:  now,
		Where: where,
		What:  what,
		Iface: -1,
	}

	if p != nil {
		r.Kind = p.Kind().String()
		r.Src = p.Source()
		r.Dst = p.Destination()
		r.Seq = p.SequenceNumber()
		r.TTL = p.TTL()
		r.Size = p.Size()
	}

	return r
}

// RecordFilter selects the records worth keeping.
type RecordFilter func(r Record) bool

// All keeps every record.
func All(Record) bool { return true }
