package config

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/sarchlab/netsim/sim/link"
	"github.com/sarchlab/netsim/sim/params"
	"github.com/sarchlab/netsim/sim/registry"
	"github.com/sarchlab/netsim/sim/timing"
)

// ErrInvalid is returned when a scenario is well formed but inconsistent.
var ErrInvalid = errors.New("invalid scenario")

type validator struct {
	errs   []error
	ifaces map[int]int
	bound  map[link.Endpoint]bool
}

func (v *validator) fail(line int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if line > 0 {
		msg = fmt.Sprintf("line %d: %s", line, msg)
	}

	v.errs = append(v.errs, fmt.Errorf("%w: %s", ErrInvalid, msg))
}

// Validate checks that the scenario can be built with the algorithms of reg.
// It reports every problem it finds.
func (s *Scenario) Validate(reg *registry.Registry) error {
	v := &validator{
		ifaces: make(map[int]int),
		bound:  make(map[link.Endpoint]bool),
	}

	v.parameters(s)
	v.nodes(s, reg)
	v.links(s)
	v.events(s)

	return errors.Join(v.errs...)
}

func (v *validator) parameters(s *Scenario) {
	for _, name := range []string{params.Stop, params.MaxQueue, params.HeaderSize} {
		value, ok := s.Parameter(name)
		if !ok {
			continue
		}

		if n, err := strconv.Atoi(value); err != nil || n < 0 {
			v.fail(0, "parameter %s=%q is not a non-negative integer", name, value)
		}
	}
}

func (v *validator) nodes(s *Scenario, reg *registry.Registry) {
	for _, n := range s.Nodes {
		if _, dup := v.ifaces[n.ID]; dup {
			v.fail(n.Line, "node %d defined twice", n.ID)
			continue
		}

		v.ifaces[n.ID] = n.Interfaces

		if n.Interfaces < 0 {
			v.fail(n.Line, "node %d has %d interfaces", n.ID, n.Interfaces)
		}

		if _, err := reg.RouterFactory(n.Routing); err != nil {
			v.errs = append(v.errs, fmt.Errorf("node %d: %w", n.ID, err))
		}

		if _, err := reg.ApplicationFactory(n.Application); err != nil {
			v.errs = append(v.errs, fmt.Errorf("node %d: %w", n.ID, err))
		}
	}

	for id := 0; id < len(v.ifaces); id++ {
		if _, ok := v.ifaces[id]; !ok {
			v.fail(0, "node ids must run from 0 to %d, node %d is missing",
				len(v.ifaces)-1, id)
		}
	}
}

func (v *validator) links(s *Scenario) {
	for _, l := range s.Links {
		for _, str := range []string{l.A, l.Z} {
			v.bind(l.Line, str)
		}

		if l.Bandwidth <= 0 {
			v.fail(l.Line, "link %s-%s bandwidth must be positive", l.A, l.Z)
		}

		if l.Latency < 0 {
			v.fail(l.Line, "link %s-%s latency must not be negative", l.A, l.Z)
		}

		if l.ErrorRate < 0 || l.ErrorRate > 1 {
			v.fail(l.Line, "link %s-%s error rate must be within [0, 1]", l.A, l.Z)
		}

		if l.Jitter < 0 || l.Jitter > 1 {
			v.fail(l.Line, "link %s-%s jitter must be within [0, 1]", l.A, l.Z)
		}
	}
}

func (v *validator) bind(line int, str string) {
	ep, err := ParseEndpoint(str)
	if err != nil {
		v.fail(line, "%v", err)
		return
	}

	if !v.hasIface(ep) {
		v.fail(line, "no interface %s", ep)
		return
	}

	if v.bound[ep] {
		v.fail(line, "interface %s is bound to more than one link", ep)
	}

	v.bound[ep] = true
}

func (v *validator) hasIface(ep link.Endpoint) bool {
	count, ok := v.ifaces[ep.Node]
	return ok && ep.Iface >= 0 && ep.Iface < count
}

func (v *validator) hasNode(str string) bool {
	id, err := strconv.Atoi(str)
	if err != nil {
		return false
	}

	_, ok := v.ifaces[id]

	return ok
}

func (v *validator) events(s *Scenario) {
	for _, e := range s.Events {
		kind, ok := EventKind(e.Kind)
		if !ok {
			v.fail(e.Line, "unknown event %q", e.Kind)
			continue
		}

		if e.Time < 0 {
			v.fail(e.Line, "%s at negative time %d", e.Kind, e.Time)
		}

		switch kind {
		case timing.EventTraceroute:
			v.eventNodes(e, 2)
		case timing.EventUpLink, timing.EventDownLink:
			v.eventEndpoints(e)
		default:
			if len(e.Args) != 1 {
				v.fail(e.Line, "%s needs all or a node id", e.Kind)
			} else if e.Args[0] != "all" && !v.hasNode(e.Args[0]) {
				v.fail(e.Line, "%s of missing node %q", e.Kind, e.Args[0])
			}
		}
	}
}

func (v *validator) eventNodes(e Event, count int) {
	if len(e.Args) != count {
		v.fail(e.Line, "%s needs %d node ids", e.Kind, count)
		return
	}

	if i := slices.IndexFunc(e.Args, func(a string) bool { return !v.hasNode(a) }); i >= 0 {
		v.fail(e.Line, "%s of missing node %q", e.Kind, e.Args[i])
	}
}

func (v *validator) eventEndpoints(e Event) {
	if len(e.Args) != 2 {
		v.fail(e.Line, "%s needs two node.iface endpoints", e.Kind)
		return
	}

	for _, str := range e.Args {
		if _, err := ParseEndpoint(str); err != nil {
			v.fail(e.Line, "%v", err)
		}
	}
}
