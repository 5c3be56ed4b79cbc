package simulation

import (
	"io"
	"log"
	"os"

	"github.com/sarchlab/netsim/sim/params"
	"github.com/sarchlab/netsim/sim/timing"
)

// DefaultStopTime is used when the stop parameter is not set.
const DefaultStopTime timing.VTimeInMs = 600000

// Builder can be used to build a simulator.
type Builder struct {
	parameters              *params.Parameters
	report                  io.Writer
	logger                  *log.Logger
	continueOnDownCallError bool
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithParameters sets the global parameters. They are frozen when the
// simulator is built.
func (b Builder) WithParameters(p *params.Parameters) Builder {
	b.parameters = p
	return b
}

// WithReportWriter sets where dumps and traces are printed. Defaults to the
// standard output.
func (b Builder) WithReportWriter(w io.Writer) Builder {
	b.report = w
	return b
}

// WithLogger sets the logger for warnings and errors. Defaults to the
// standard error.
func (b Builder) WithLogger(l *log.Logger) Builder {
	b.logger = l
	return b
}

// WithContinueOnDownCallError makes the simulator log down-call misuses and
// carry on instead of stopping.
func (b Builder) WithContinueOnDownCallError() Builder {
	b.continueOnDownCallError = true
	return b
}

// Build builds the simulator.
func (b Builder) Build() *Simulator {
	parameters := b.parameters
	if parameters == nil {
		parameters = params.New()
	}

	parameters.Freeze()

	stop, err := parameters.Int(params.Stop, int(DefaultStopTime))
	if err != nil {
		log.Panic(err)
	}

	report := b.report
	if report == nil {
		report = os.Stdout
	}

	logger := b.logger
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}

	return &Simulator{
		parameters:              parameters,
		report:                  report,
		logger:                  logger,
		continueOnDownCallError: b.continueOnDownCallError,
		stopTime:                timing.VTimeInMs(stop),
		queue:                   timing.NewEventQueue(),
	}
}
