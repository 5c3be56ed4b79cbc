// Package registry maps the strategy names used in scenario files to the
// factories that create them.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sarchlab/netsim/sim/node"
)

var (
	// ErrUnknownRouter is returned when no router is registered under a name.
	ErrUnknownRouter = errors.New("unknown routing algorithm")

	// ErrUnknownApplication is returned when no application is registered
	// under a name.
	ErrUnknownApplication = errors.New("unknown application algorithm")

	// ErrDuplicated is returned when a name is registered twice.
	ErrDuplicated = errors.New("name already registered")
)

// RouterFactory creates a fresh routing strategy for one node.
type RouterFactory func() node.Router

// ApplicationFactory creates a fresh application strategy for one node.
type ApplicationFactory func() node.Application

// Registry holds router and application factories by name.
type Registry struct {
	routers map[string]RouterFactory
	apps    map[string]ApplicationFactory
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		routers: make(map[string]RouterFactory),
		apps:    make(map[string]ApplicationFactory),
	}
}

// RegisterRouter adds a router factory.
func (r *Registry) RegisterRouter(name string, f RouterFactory) error {
	if _, found := r.routers[name]; found {
		return fmt.Errorf("%w: router %q", ErrDuplicated, name)
	}

	r.routers[name] = f

	return nil
}

// RegisterApplication adds an application factory.
func (r *Registry) RegisterApplication(name string, f ApplicationFactory) error {
	if _, found := r.apps[name]; found {
		return fmt.Errorf("%w: application %q", ErrDuplicated, name)
	}

	r.apps[name] = f

	return nil
}

// RouterFactory returns the factory registered under name.
func (r *Registry) RouterFactory(name string) (RouterFactory, error) {
	f, found := r.routers[name]
	if !found {
		return nil, fmt.Errorf("%w: %q (known: %s)",
			ErrUnknownRouter, name, strings.Join(r.RouterNames(), ", "))
	}

	return f, nil
}

// ApplicationFactory returns the factory registered under name.
func (r *Registry) ApplicationFactory(name string) (ApplicationFactory, error) {
	f, found := r.apps[name]
	if !found {
		return nil, fmt.Errorf("%w: %q (known: %s)",
			ErrUnknownApplication, name, strings.Join(r.ApplicationNames(), ", "))
	}

	return f, nil
}

// RouterNames lists the registered router names in order.
func (r *Registry) RouterNames() []string {
	return sortedKeys(r.routers)
}

// ApplicationNames lists the registered application names in order.
func (r *Registry) ApplicationNames() []string {
	return sortedKeys(r.apps)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
