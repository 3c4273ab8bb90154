package cmd

import (
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/terminal-sim/terminal-sim/internal/api"
	"github.com/terminal-sim/terminal-sim/internal/store"
	"github.com/terminal-sim/terminal-sim/sim"
	"github.com/terminal-sim/terminal-sim/sim/trace"
)

var (
	// Shared CLI flags.
	scenarioPath string // YAML scenario file; empty = built-in default
	logLevel     string // log verbosity level
	seed         int64  // overrides the scenario seed when >= 0
	noJitter     bool   // disable within-minute spawn spreading

	// run flags
	tracePath  string // zstd JSONL trace output; empty = no trace
	resultsDB  string // sqlite results database; empty = no persistence

	// serve flags
	listenAddr string
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "terminal-sim",
	Short: "Discrete-event simulator for airport departure pipelines",
}

// setupEngine loads the scenario (or the built-in default), applies flag
// overrides, and constructs the kernel.
func setupEngine() (*sim.Engine, *Scenario) {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)

	scenario := DefaultScenario()
	if scenarioPath != "" {
		scenario, err = LoadScenario(scenarioPath)
		if err != nil {
			logrus.Fatalf("unable to load scenario: %v", err)
		}
	}
	if seed >= 0 {
		scenario.Seed = seed
	}
	if noJitter {
		off := false
		scenario.Jitter = &off
	}

	cfg, err := scenario.EngineConfig()
	if err != nil {
		logrus.Fatalf("invalid scenario: %v", err)
	}

	engine := sim.NewEngine(cfg)
	logWarnings(engine)
	logrus.Infof("scenario %q: %d flights, %d counters, %d checkpoints, %d intervals of %ds",
		scenario.Name, len(cfg.Flights), len(cfg.Counters), len(cfg.Checkpoints),
		engine.TotalIntervals(), engine.IntervalSeconds())
	return engine, scenario
}

// runCmd executes the whole horizon and reports outcomes.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the departure pipeline simulation to the horizon",
	Run: func(cmd *cobra.Command, args []string) {
		engine, scenario := setupEngine()

		startTime := time.Now()
		engine.RunAllIntervals()
		logrus.Infof("simulated %d intervals in %s", engine.TotalIntervals(), time.Since(startTime))

		logOutcomes(engine)

		runID := uuid.NewString()
		header := trace.RunHeader{
			RunID:     runID,
			Scenario:  scenario.Name,
			Seed:      scenario.Seed,
			Intervals: engine.TotalIntervals(),
		}

		if tracePath != "" {
			st := engine.CollectTrace(header, trace.LevelIntervals)
			if err := trace.WriteFile(tracePath, st); err != nil {
				logrus.Fatalf("unable to write trace: %v", err)
			}
			s := trace.Summarize(st)
			logrus.Infof("trace %s: %d intervals, %d arrivals, peak queues ticket=%d checkpoint=%d hold=%d",
				tracePath, s.Intervals, s.TotalArrivals, s.PeakTicketQueued, s.PeakCheckpoint, s.PeakHoldRooms)
		}

		if resultsDB != "" {
			if err := persistRun(engine, header, resultsDB); err != nil {
				logrus.Fatalf("unable to persist run: %v", err)
			}
			logrus.Infof("run %s saved to %s", runID, resultsDB)
		}

		logrus.Info("Simulation complete.")
	},
}

// persistRun stores the run summary, per-flight outcomes, and queue-total
// series in the results database.
func persistRun(engine *sim.Engine, header trace.RunHeader, dbPath string) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	outcomes := make([]store.FlightOutcomeRow, 0, len(engine.Flights()))
	for _, o := range engine.FlightOutcomes() {
		outcomes = append(outcomes, store.FlightOutcomeRow{
			Flight:   o.Flight.Number,
			Planned:  o.Planned,
			Spawned:  o.Spawned,
			Departed: o.Departed,
			Missed:   o.MissedPurged,
		})
	}

	totals := make([]store.QueueTotalsRow, 0, engine.TotalIntervals()+1)
	for k := 0; k <= engine.MaxComputedInterval(); k++ {
		totals = append(totals, store.QueueTotalsRow{
			Interval:         k,
			TicketQueued:     engine.TicketQueuedAtInterval(k),
			CheckpointQueued: engine.CheckpointQueuedAtInterval(k),
			HoldRoomTotal:    engine.HoldRoomTotalAtInterval(k),
		})
	}

	return st.SaveRun(store.RunRow{
		ID:        header.RunID,
		Scenario:  header.Scenario,
		Seed:      header.Seed,
		Intervals: header.Intervals,
	}, outcomes, totals)
}

// serveCmd exposes the engine over HTTP for interactive stepping.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the simulation over HTTP (REST control + websocket feed)",
	Run: func(cmd *cobra.Command, args []string) {
		engine, scenario := setupEngine()

		server := api.New(engine)
		logrus.Infof("serving scenario %q on %s", scenario.Name, listenAddr)
		if err := http.ListenAndServe(listenAddr, server.Handler()); err != nil {
			logrus.Fatalf("server stopped: %v", err)
		}
	},
}

// Execute runs the CLI root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands.
func init() {
	for _, c := range []*cobra.Command{runCmd, serveCmd} {
		c.Flags().StringVar(&scenarioPath, "scenario", "", "Scenario YAML file (built-in default when empty)")
		c.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
		c.Flags().Int64Var(&seed, "seed", -1, "Override the scenario RNG seed (negative keeps the scenario value)")
		c.Flags().BoolVar(&noJitter, "no-jitter", false, "Disable 0-59s within-minute spawn jitter")
	}

	runCmd.Flags().StringVar(&tracePath, "trace", "", "Write a zstd-compressed JSONL interval trace to this path")
	runCmd.Flags().StringVar(&resultsDB, "results-db", "", "Persist the run summary to this SQLite database")

	serveCmd.Flags().StringVar(&listenAddr, "addr", ":8080", "HTTP listen address")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
}
