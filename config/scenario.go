// Package config loads simulation scenarios and builds simulators from them.
// A scenario is read either from the line-oriented text format or from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/netsim/sim/link"
	"github.com/sarchlab/netsim/sim/timing"
)

// A Scenario describes a whole simulation.
type Scenario struct {
	Parameters []Parameter `yaml:"parameters"`
	Nodes      []Node      `yaml:"nodes"`
	Links      []Link      `yaml:"links"`
	Events     []Event     `yaml:"events"`
}

// Parameter is a global parameter. An empty value switches a flag on.
type Parameter struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// Node describes a node and the strategies it runs.
type Node struct {
	ID          int      `yaml:"id"`
	Interfaces  int      `yaml:"interfaces"`
	Routing     string   `yaml:"routing"`
	Application string   `yaml:"application"`
	Args        []string `yaml:"args"`

	Line int `yaml:"-"`
}

// Link describes a link between two interfaces written as "node.iface".
type Link struct {
	A         string  `yaml:"a"`
	Z         string  `yaml:"z"`
	Bandwidth int64   `yaml:"bandwidth"`
	Latency   int     `yaml:"latency"`
	ErrorRate float64 `yaml:"error_rate"`
	Jitter    float64 `yaml:"jitter"`
	Down      bool    `yaml:"down"`

	Line int `yaml:"-"`
}

// Event is a scheduled event. Kind is one of the event keywords.
type Event struct {
	Kind string   `yaml:"kind"`
	Time int      `yaml:"time"`
	Args []string `yaml:"args"`

	Line int `yaml:"-"`
}

// Load reads a scenario file. Files ending in .yaml or .yml are read as
// YAML, anything else as text.
func Load(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return decodeYAML(f, path)
	default:
		s, err := Parse(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		return s, nil
	}
}

// ParseYAML reads a scenario from YAML.
func ParseYAML(data []byte) (*Scenario, error) {
	s := &Scenario{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, err
	}

	return s, nil
}

func decodeYAML(f *os.File, path string) (*Scenario, error) {
	s := &Scenario{}

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	if err := dec.Decode(s); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return s, nil
}

// Parameter returns the value of a parameter and whether it is set. The last
// definition wins.
func (s *Scenario) Parameter(name string) (string, bool) {
	for i := len(s.Parameters) - 1; i >= 0; i-- {
		if s.Parameters[i].Name == name {
			return s.Parameters[i].Value, true
		}
	}

	return "", false
}

// ParseEndpoint reads "node.iface".
func ParseEndpoint(s string) (link.Endpoint, error) {
	nodeStr, ifaceStr, found := strings.Cut(s, ".")
	if !found {
		return link.Endpoint{}, fmt.Errorf("%q is not node.iface", s)
	}

	n, err := strconv.Atoi(nodeStr)
	if err != nil {
		return link.Endpoint{}, fmt.Errorf("%q is not node.iface", s)
	}

	i, err := strconv.Atoi(ifaceStr)
	if err != nil {
		return link.Endpoint{}, fmt.Errorf("%q is not node.iface", s)
	}

	return link.Endpoint{Node: n, Iface: i}, nil
}

var eventKeywords = map[string]timing.EventKind{
	"traceroute":         timing.EventTraceroute,
	"trace_route":        timing.EventTraceroute,
	"uplink":             timing.EventUpLink,
	"up_link":            timing.EventUpLink,
	"downlink":           timing.EventDownLink,
	"down_link":          timing.EventDownLink,
	"dumproutes":         timing.EventDumpRoutes,
	"dump_routes":        timing.EventDumpRoutes,
	"dumpcontrolstate":   timing.EventDumpControlState,
	"dump_control_state": timing.EventDumpControlState,
	"dumpappstate":       timing.EventDumpAppState,
	"dump_app_state":     timing.EventDumpAppState,
	"dumppacketstats":    timing.EventDumpPackets,
	"dump_packet_stats":  timing.EventDumpPackets,
}

// EventKind returns the kind named by an event keyword, ignoring case.
func EventKind(keyword string) (timing.EventKind, bool) {
	k, ok := eventKeywords[strings.ToLower(keyword)]
	return k, ok
}

// simArgs turns the arguments of a scenario event into those of a simulator
// event. Link events name their endpoints as node.iface in scenarios and as
// four numbers in the simulator.
func (e Event) simArgs(kind timing.EventKind) ([]string, error) {
	if kind != timing.EventUpLink && kind != timing.EventDownLink {
		return e.Args, nil
	}

	args := make([]string, 0, 4)

	for _, arg := range e.Args {
		ep, err := ParseEndpoint(arg)
		if err != nil {
			return nil, err
		}

		args = append(args, strconv.Itoa(ep.Node), strconv.Itoa(ep.Iface))
	}

	return args, nil
}
