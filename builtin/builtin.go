// Package builtin registers the routing and application algorithms that ship
// with the simulator.
package builtin

import (
	"github.com/sarchlab/netsim/app/emptyapp"
	"github.com/sarchlab/netsim/app/ping"
	"github.com/sarchlab/netsim/ft21"
	"github.com/sarchlab/netsim/routing/endsystem"
	"github.com/sarchlab/netsim/routing/flooding"
	"github.com/sarchlab/netsim/sim/node"
	"github.com/sarchlab/netsim/sim/registry"
)

// Register adds every bundled algorithm to r.
func Register(r *registry.Registry) error {
	routers := map[string]registry.RouterFactory{
		flooding.Name:  func() node.Router { return flooding.New() },
		endsystem.Name: func() node.Router { return endsystem.New() },
	}

	apps := map[string]registry.ApplicationFactory{
		emptyapp.Name:      func() node.Application { return emptyapp.New() },
		ping.SenderName:    func() node.Application { return ping.NewSender() },
		ping.ReceiverName:  func() node.Application { return ping.NewReceiver() },
		ft21.SenderSWName:  func() node.Application { return ft21.NewSenderSW() },
		ft21.SenderGBNName: func() node.Application { return ft21.NewSenderGBN() },
		ft21.ReceiverName:  func() node.Application { return ft21.NewReceiver() },
	}

	for name, f := range routers {
		if err := r.RegisterRouter(name, f); err != nil {
			return err
		}
	}

	for name, f := range apps {
		if err := r.RegisterApplication(name, f); err != nil {
			return err
		}
	}

	return nil
}

// NewRegistry returns a registry holding every bundled algorithm.
func NewRegistry() *registry.Registry {
	r := registry.New()
	if err := Register(r); err != nil {
		panic(err)
	}

	return r
}
