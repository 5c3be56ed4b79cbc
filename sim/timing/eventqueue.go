package timing

import (
	"container/heap"
	"errors"
	"fmt"
	"math"
)

// Displacement bounds the number of events that may share one timestamp.
const Displacement = 1_000_000

// ErrOrderKeyOverflow is returned when an event cannot be given a valid order
// key.
var ErrOrderKeyOverflow = errors.New("event order key overflow")

// OrderKey combines a time and the number of events already inserted at that
// time into a single key. Keys of later times are always larger.
func OrderKey(t VTimeInMs, n int) (int64, error) {
	if t < 0 {
		return 0, fmt.Errorf("%w: negative time %d", ErrOrderKeyOverflow, t)
	}

	if n < 0 || n >= Displacement {
		return 0, fmt.Errorf("%w: %d events at time %d",
			ErrOrderKeyOverflow, n, t)
	}

	if int64(t) > (math.MaxInt64-int64(n))/Displacement {
		return 0, fmt.Errorf("%w: time %d too large", ErrOrderKeyOverflow, t)
	}

	return int64(t)*Displacement + int64(n), nil
}

// EventQueue holds events ordered by time, breaking ties by insertion order.
type EventQueue struct {
	events  eventHeap
	counts  map[VTimeInMs]int
	popTime VTimeInMs
}

// NewEventQueue creates an empty EventQueue.
func NewEventQueue() *EventQueue {
	q := new(EventQueue)
	q.events = make([]*Event, 0)
	q.counts = make(map[VTimeInMs]int)
	heap.Init(&q.events)

	return q
}

// Push assigns the event its order key and adds it to the queue.
func (q *EventQueue) Push(evt *Event) error {
	n := q.counts[evt.Time]

	key, err := OrderKey(evt.Time, n)
	if err != nil {
		return err
	}

	evt.key = key
	q.counts[evt.Time] = n + 1
	heap.Push(&q.events, evt)

	return nil
}

// Pop removes and returns the earliest event.
func (q *EventQueue) Pop() *Event {
	evt := heap.Pop(&q.events).(*Event)

	if evt.Time > q.popTime {
		delete(q.counts, q.popTime)
		q.popTime = evt.Time
	}

	return evt
}

// Peek returns the earliest event without removing it.
func (q *EventQueue) Peek() *Event {
	return q.events[0]
}

// Len returns the number of events in the queue.
func (q *EventQueue) Len() int {
	return q.events.Len()
}

type eventHeap []*Event

func (h eventHeap) Len() int {
	return len(h)
}

func (h eventHeap) Less(i, j int) bool {
	return h[i].key < h[j].key
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(*Event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	evt := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]

	return evt
}
