package tracing

import (
	"sort"
	"sync"
)

// CountWriter counts records by what happened and where. It keeps nothing
// else. Reads may happen from another goroutine.
type CountWriter struct {
	lock   sync.Mutex
	counts map[string]map[string]uint64
}

// NewCountWriter creates an empty counter.
func NewCountWriter() *CountWriter {
	return &CountWriter{counts: make(map[string]map[string]uint64)}
}

// Write counts a record.
func (c *CountWriter) Write(r Record) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	byWhere, ok := c.counts[r.What]
	if !ok {
		byWhere = make(map[string]uint64)
		c.counts[r.What] = byWhere
	}

	byWhere[r.Where]++

	return nil
}

// Flush does nothing.
func (c *CountWriter) Flush() error {
	return nil
}

// Count returns how many records say what happened at where. An empty where
// sums over every place.
func (c *CountWriter) Count(what, where string) uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	if where != "" {
		return c.counts[what][where]
	}

	var total uint64
	for _, n := range c.counts[what] {
		total += n
	}

	return total
}

// Places returns where records about what happened, in order.
func (c *CountWriter) Places(what string) []string {
	c.lock.Lock()
	defer c.lock.Unlock()

	places := make([]string, 0, len(c.counts[what]))
	for where := range c.counts[what] {
		places = append(places, where)
	}

	sort.Strings(places)

	return places
}
