package node

import (
	"io"
	"log"

	"github.com/sarchlab/netsim/sim/link"
	"github.com/sarchlab/netsim/sim/packet"
	"github.com/sarchlab/netsim/sim/params"
)

// Builder can build nodes.
type Builder struct {
	numIfaces  int
	routerName string
	router     Router
	appName    string
	app        Application
	args       []string
	parameters *params.Parameters
	report     io.Writer
}

// MakeBuilder creates a Builder with no strategies.
func MakeBuilder() Builder {
	return Builder{
		report: io.Discard,
	}
}

// WithNumInterfaces sets how many interfaces the node has.
func (b Builder) WithNumInterfaces(n int) Builder {
	b.numIfaces = n
	return b
}

// WithRouter sets the routing strategy and the name it is registered under.
func (b Builder) WithRouter(name string, r Router) Builder {
	b.routerName = name
	b.router = r

	return b
}

// WithApplication sets the application strategy, the name it is registered
// under, and the arguments it is initialised with.
func (b Builder) WithApplication(name string, a Application, args []string) Builder {
	b.appName = name
	b.app = a
	b.args = args

	return b
}

// WithParameters sets the global parameters.
func (b Builder) WithParameters(p *params.Parameters) Builder {
	b.parameters = p
	return b
}

// WithReportWriter sets where the node and its strategies print.
func (b Builder) WithReportWriter(w io.Writer) Builder {
	b.report = w
	return b
}

// Build creates the node.
func (b Builder) Build(id int) *Node {
	if b.router == nil || b.app == nil {
		log.Panic("a node needs a router and an application")
	}

	if b.numIfaces < 0 {
		log.Panic("number of interfaces must not be negative")
	}

	parameters := b.parameters
	if parameters == nil {
		parameters = params.New()
	}

	headerSize, err := parameters.Int(params.HeaderSize, packet.HeaderSize)
	if err != nil || headerSize < 0 {
		log.Panicf("bad %s parameter", params.HeaderSize)
	}

	return &Node{
		id:                 id,
		numIfaces:          b.numIfaces,
		links:              make([]*link.Link, b.numIfaces),
		routerName:         b.routerName,
		router:             b.router,
		appName:            b.appName,
		app:                b.app,
		args:               b.args,
		parameters:         parameters,
		report:             b.report,
		traceForwarding:    parameters.Bool(params.TraceForwarding),
		headerSize:         headerSize,
		nextAppTimeout:     noTime,
		nextControlTimeout: noTime,
		nextAppTick:        noTime,
		nextControlTick:    noTime,
	}
}
