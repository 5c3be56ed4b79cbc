package config

import (
	"sort"

	"github.com/sarchlab/netsim/sim/link"
	"github.com/sarchlab/netsim/sim/node"
	"github.com/sarchlab/netsim/sim/params"
	"github.com/sarchlab/netsim/sim/registry"
	"github.com/sarchlab/netsim/sim/simulation"
	"github.com/sarchlab/netsim/sim/timing"
)

// Build validates the scenario and builds a simulator for it. The builder
// supplies everything a scenario does not describe, such as where reports
// go.
func Build(
	s *Scenario,
	reg *registry.Registry,
	b simulation.Builder,
) (*simulation.Simulator, error) {
	if err := s.Validate(reg); err != nil {
		return nil, err
	}

	parameters := params.New()
	for _, p := range s.Parameters {
		if err := parameters.Set(p.Name, p.Value); err != nil {
			return nil, err
		}
	}

	sim := b.WithParameters(parameters).Build()

	if err := addNodes(sim, s, reg); err != nil {
		return nil, err
	}

	if err := addLinks(sim, s); err != nil {
		return nil, err
	}

	for _, e := range s.Events {
		kind, _ := EventKind(e.Kind)

		args, err := e.simArgs(kind)
		if err != nil {
			return nil, err
		}

		evt := timing.NewEvent(kind, timing.VTimeInMs(e.Time), args...)
		if err := sim.Schedule(evt); err != nil {
			return nil, err
		}
	}

	return sim, nil
}

func addNodes(sim *simulation.Simulator, s *Scenario, reg *registry.Registry) error {
	nodes := append([]Node(nil), s.Nodes...)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	for _, n := range nodes {
		newRouter, err := reg.RouterFactory(n.Routing)
		if err != nil {
			return err
		}

		newApp, err := reg.ApplicationFactory(n.Application)
		if err != nil {
			return err
		}

		nd := node.MakeBuilder().
			WithNumInterfaces(n.Interfaces).
			WithRouter(n.Routing, newRouter()).
			WithApplication(n.Application, newApp(), n.Args).
			WithParameters(sim.Parameters()).
			WithReportWriter(sim.Report()).
			Build(n.ID)

		if err := sim.AddNode(nd); err != nil {
			return err
		}
	}

	return nil
}

func addLinks(sim *simulation.Simulator, s *Scenario) error {
	maxQueue, err := sim.Parameters().Int(params.MaxQueue, link.DefaultMaxQueue)
	if err != nil {
		return err
	}

	for _, l := range s.Links {
		a, err := ParseEndpoint(l.A)
		if err != nil {
			return err
		}

		z, err := ParseEndpoint(l.Z)
		if err != nil {
			return err
		}

		b := link.MakeBuilder().
			WithBandwidth(l.Bandwidth).
			WithLatency(l.Latency).
			WithErrorRate(l.ErrorRate).
			WithJitter(l.Jitter).
			WithMaxQueue(maxQueue).
			WithReportWriter(sim.Report())

		if l.Down {
			b = b.WithDownState()
		}

		if err := sim.AddLink(b.Build(a, z)); err != nil {
			return err
		}
	}

	return nil
}
