// Package base provides an application strategy that does nothing but log
// what happens to it. Concrete applications embed it and override what they
// need.
package base

import (
	"fmt"

	"github.com/sarchlab/netsim/sim/node"
	"github.com/sarchlab/netsim/sim/packet"
	"github.com/sarchlab/netsim/sim/timing"
)

// App keeps what every application is given at initialisation.
type App struct {
	name  string
	logOn bool

	NodeID int
	Host   node.Host
	Args   []string
}

// NewApp creates a base application that names itself name in logs.
func NewApp(name string, logOn bool) *App {
	return &App{name: name, logOn: logOn}
}

// Name returns the name used in logs.
func (a *App) Name() string {
	return a.name
}

// Initialise stores the node environment.
func (a *App) Initialise(
	_ timing.VTimeInMs,
	nodeID int,
	host node.Host,
	args []string,
) (timing.VTimeInMs, error) {
	a.NodeID = nodeID
	a.Host = host
	a.Args = args

	return 0, nil
}

// SetLog turns logging on or off.
func (a *App) SetLog(on bool) {
	a.logOn = on
}

// OnClockTick logs the tick.
func (a *App) OnClockTick(now timing.VTimeInMs) {
	a.Log(now, "clock tick")
}

// OnTimeout logs the timeout.
func (a *App) OnTimeout(now timing.VTimeInMs) {
	a.Log(now, "timeout")
}

// OnReceive logs the packet.
func (a *App) OnReceive(now timing.VTimeInMs, p *packet.Packet) {
	a.Log(now, "received packet %s", p)
}

// ShowState logs that there is no state.
func (a *App) ShowState(now timing.VTimeInMs) {
	a.Log(now, "has no state to show")
}

// Log prints a line to the report when logging is on.
func (a *App) Log(now timing.VTimeInMs, format string, args ...any) {
	if !a.logOn || a.Host == nil {
		return
	}

	fmt.Fprintf(a.Host.Report(), "log: %s time %d node %d %s\n",
		a.name, now, a.NodeID, fmt.Sprintf(format, args...))
}
