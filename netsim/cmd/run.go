package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/spf13/cobra"

	"github.com/sarchlab/netsim/builtin"
	"github.com/sarchlab/netsim/config"
	"github.com/sarchlab/netsim/datarecording"
	"github.com/sarchlab/netsim/monitoring"
	"github.com/sarchlab/netsim/sim/params"
	"github.com/sarchlab/netsim/sim/simulation"
	"github.com/sarchlab/netsim/sim/timing"
	"github.com/sarchlab/netsim/tracing"
)

type runOptions struct {
	scenario         string
	stop             int
	overrides        []string
	logEvents        bool
	traceCSV         bool
	traceDB          bool
	traceJSON        bool
	traceDir         string
	continueOnMisuse bool
	monitor          bool
	monitorPort      int
	openMonitor      bool
}

var runOpts runOptions

var runCmd = &cobra.Command{
	Use:   "run SCENARIO",
	Short: "Run a scenario.",
	Long: `Run a scenario given as a text or YAML file. Reports are printed ` +
		`to the standard output and warnings to the standard error.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := runOpts
		opts.scenario = args[0]

		if err := opts.applyEnv(cmd); err != nil {
			return err
		}

		return runScenario(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.IntVar(&runOpts.stop, "stop", 0,
		"Stop time in ms, overriding the scenario and "+EnvStop+".")
	f.StringArrayVarP(&runOpts.overrides, "param", "p", nil,
		"Set a parameter as name=value, overriding the scenario.")
	f.BoolVar(&runOpts.logEvents, "log-events", false,
		"Log every global event as it is dispatched.")
	f.BoolVar(&runOpts.traceCSV, "trace-csv", false,
		"Write a packet trace to a CSV file.")
	f.BoolVar(&runOpts.traceDB, "trace-db", false,
		"Write a packet trace to a SQLite database.")
	f.BoolVar(&runOpts.traceJSON, "trace-json", false,
		"Write a packet trace to a JSON file.")
	f.StringVar(&runOpts.traceDir, "trace-dir", ".",
		"Directory of trace files. Defaults to "+EnvTraceDir+".")
	f.BoolVar(&runOpts.continueOnMisuse, "continue-on-misuse", false,
		"Log misused node calls instead of stopping the simulation.")
	f.BoolVar(&runOpts.monitor, "monitor", false,
		"Serve the state of the simulation over HTTP.")
	f.IntVar(&runOpts.monitorPort, "monitor-port", 0,
		"Port of the monitor. Defaults to "+EnvMonitorPort+" or a random port.")
	f.BoolVar(&runOpts.openMonitor, "open-monitor", false,
		"Start the monitor and open it in a browser.")
}

// applyEnv fills the options the command line left unset from the
// environment.
func (o *runOptions) applyEnv(cmd *cobra.Command) error {
	flags := cmd.Flags()

	if !flags.Changed("stop") {
		stop, err := envInt(EnvStop, 0)
		if err != nil {
			return err
		}

		o.stop = stop
	}

	if !flags.Changed("monitor-port") {
		port, err := envInt(EnvMonitorPort, 0)
		if err != nil {
			return err
		}

		o.monitorPort = port
	}

	if !flags.Changed("trace-dir") {
		o.traceDir = envString(EnvTraceDir, o.traceDir)
	}

	return nil
}

// runScenario loads, builds and runs a scenario.
func runScenario(opts runOptions, stdout, stderr io.Writer) error {
	s, err := config.Load(opts.scenario)
	if err != nil {
		return err
	}

	if err := opts.override(s); err != nil {
		return err
	}

	logger := log.New(stderr, "", 0)

	b := simulation.MakeBuilder().
		WithReportWriter(stdout).
		WithLogger(logger)
	if opts.continueOnMisuse {
		b = b.WithContinueOnDownCallError()
	}

	sim, err := config.Build(s, builtin.NewRegistry(), b)
	if err != nil {
		return err
	}

	runID := xid.New().String()
	fmt.Fprintf(stderr, "run %s: %s\n", runID, opts.scenario)

	if opts.logEvents {
		sim.AcceptHook(timing.NewEventLogger(logger))
	}

	finish, err := opts.attachTracers(sim, runID, stderr)
	if err != nil {
		return err
	}

	if opts.monitor || opts.openMonitor {
		if err := opts.startMonitor(sim); err != nil {
			return err
		}
	}

	runErr := sim.Run()

	if err := finish(); err != nil && runErr == nil {
		runErr = err
	}

	return runErr
}

// override adds the command line parameters after those of the scenario, so
// that they win.
func (o *runOptions) override(s *config.Scenario) error {
	if o.stop > 0 {
		s.Parameters = append(s.Parameters,
			config.Parameter{Name: params.Stop, Value: strconv.Itoa(o.stop)})
	}

	for _, kv := range o.overrides {
		name, value, _ := strings.Cut(kv, "=")
		if name == "" {
			return fmt.Errorf("bad parameter %q, want name=value", kv)
		}

		s.Parameters = append(s.Parameters,
			config.Parameter{Name: name, Value: value})
	}

	return nil
}

// attachTracers hooks the requested trace writers to the simulator. The
// returned function flushes and closes them.
func (o *runOptions) attachTracers(
	sim *simulation.Simulator,
	runID string,
	stderr io.Writer,
) (func() error, error) {
	var closers []func() error

	finish := func() error {
		var first error

		for _, c := range closers {
			if err := c(); err != nil && first == nil {
				first = err
			}
		}

		return first
	}

	if !o.traceCSV && !o.traceDB && !o.traceJSON {
		return finish, nil
	}

	if err := os.MkdirAll(o.traceDir, 0o755); err != nil {
		return nil, err
	}

	if o.traceCSV {
		w := tracing.NewCSVTraceWriter(
			filepath.Join(o.traceDir, "netsim_trace_"+runID))
		if err := w.Init(); err != nil {
			return nil, err
		}

		tracer := tracing.NewPacketTracer(w, nil)
		tracing.CollectTrace(sim, tracer)

		closers = append(closers, func() error {
			if err := w.Close(); err != nil {
				return err
			}

			fmt.Fprintf(stderr, "Trace written to %s\n", w.Path())

			return tracer.Err()
		})
	}

	if o.traceJSON {
		w, filename, err := tracing.CreateJSONTraceWriter(
			filepath.Join(o.traceDir, "netsim_trace_"+runID))
		if err != nil {
			return nil, err
		}

		tracer := tracing.NewPacketTracer(w, nil)
		tracing.CollectTrace(sim, tracer)

		closers = append(closers, func() error {
			if err := w.Close(); err != nil {
				return err
			}

			fmt.Fprintf(stderr, "Trace written to %s\n", filename)

			return tracer.Err()
		})
	}

	if o.traceDB {
		recorder, err := datarecording.New(
			filepath.Join(o.traceDir, "netsim_"+runID))
		if err != nil {
			return nil, err
		}

		w, err := tracing.NewDBTraceWriter(recorder)
		if err != nil {
			return nil, err
		}

		tracer := tracing.NewPacketTracer(w, nil)
		tracing.CollectTrace(sim, tracer)

		closers = append(closers, func() error {
			if err := recorder.Close(); err != nil {
				return err
			}

			return tracer.Err()
		})
	}

	return finish, nil
}

func (o *runOptions) startMonitor(sim *simulation.Simulator) error {
	m := monitoring.NewMonitor().WithPortNumber(o.monitorPort)
	m.RegisterSimulator(sim)

	url, err := m.StartServer()
	if err != nil {
		return err
	}

	if o.openMonitor {
		return browser.OpenURL(url)
	}

	return nil
}
