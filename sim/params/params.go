// Package params holds the global parameters of a simulation run.
package params

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Names of the parameters the engine itself reads.
const (
	Stop            = "stop"
	MaxQueue        = "max_queue"
	HeaderSize      = "header_size"
	Trace           = "trace"
	TraceForwarding = "trace_forwarding"
)

// ErrFrozen is returned when a parameter is set after the configuration is
// loaded.
var ErrFrozen = errors.New("parameters are frozen")

// ErrBadValue is returned when a parameter cannot be read as the requested
// type.
var ErrBadValue = errors.New("bad parameter value")

// Parameters is a name to value store. It is filled while loading the
// configuration and read-only afterwards.
type Parameters struct {
	vars   map[string]string
	frozen bool
}

// New creates an empty, writable parameter store.
func New() *Parameters {
	return &Parameters{vars: make(map[string]string)}
}

// Set defines or redefines a parameter. A parameter given without a value is
// stored as the empty string.
func (p *Parameters) Set(name, value string) error {
	if p.frozen {
		return fmt.Errorf("%w: cannot set %q", ErrFrozen, name)
	}

	p.vars[name] = value

	return nil
}

// Freeze makes the store read-only.
func (p *Parameters) Freeze() {
	p.frozen = true
}

// Frozen tells if the store is read-only.
func (p *Parameters) Frozen() bool {
	return p.frozen
}

// Has tells if the parameter is defined.
func (p *Parameters) Has(name string) bool {
	_, ok := p.vars[name]
	return ok
}

// Get returns the value of a parameter.
func (p *Parameters) Get(name string) (string, bool) {
	v, ok := p.vars[name]
	return v, ok
}

// Int returns the integer value of a parameter, or def if it is not defined.
func (p *Parameters) Int(name string, def int) (int, error) {
	v, ok := p.vars[name]
	if !ok {
		return def, nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q", ErrBadValue, name, v)
	}

	return n, nil
}

// Bool tells if a parameter is switched on. A parameter defined without a
// value counts as on.
func (p *Parameters) Bool(name string) bool {
	v, ok := p.vars[name]
	if !ok {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// Names returns the defined parameter names in sorted order.
func (p *Parameters) Names() []string {
	names := make([]string, 0, len(p.vars))
	for name := range p.vars {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func (p *Parameters) String() string {
	pairs := make([]string, 0, len(p.vars))
	for _, name := range p.Names() {
		pairs = append(pairs, name+"="+p.vars[name])
	}

	return "{" + strings.Join(pairs, ", ") + "}"
}
