// Package emptyapp provides an application that does nothing.
package emptyapp

import (
	"github.com/sarchlab/netsim/app/base"
	"github.com/sarchlab/netsim/sim/node"
	"github.com/sarchlab/netsim/sim/timing"
)

// Name is the name the application is registered under.
const Name = "EmptyApp"

// App does nothing.
type App struct {
	*base.App
}

// New creates an empty application.
func New() *App {
	return &App{App: base.NewApp("empty app", false)}
}

// Initialise logs the start.
func (a *App) Initialise(
	now timing.VTimeInMs,
	nodeID int,
	host node.Host,
	args []string,
) (timing.VTimeInMs, error) {
	period, err := a.App.Initialise(now, nodeID, host, args)
	a.Log(now, "starting")

	return period, err
}
