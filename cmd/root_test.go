package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/terminal-sim/terminal-sim/internal/store"
	"github.com/terminal-sim/terminal-sim/sim/trace"
)

// End-to-end: the run command simulates the default scenario, writes the
// trace, and persists the run summary.
func TestRunCommand_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	traceOut := filepath.Join(dir, "run.jsonl.zst")
	dbOut := filepath.Join(dir, "results.db")

	rootCmd.SetArgs([]string{
		"run",
		"--log", "error",
		"--seed", "7",
		"--no-jitter",
		"--trace", traceOut,
		"--results-db", dbOut,
	})
	require.NoError(t, rootCmd.Execute())

	// Trace round-trips and covers the whole horizon.
	st, err := trace.ReadFile(traceOut)
	require.NoError(t, err)
	require.Equal(t, "morning-bank", st.Header.Scenario)
	require.Equal(t, int64(7), st.Header.Seed)
	require.Equal(t, st.Header.Intervals, len(st.Intervals))

	summary := trace.Summarize(st)
	require.Greater(t, summary.TotalArrivals, 0)

	// The run row and its detail rows landed in the database.
	db, err := store.Open(dbOut)
	require.NoError(t, err)
	defer db.Close()

	runs, err := db.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, "morning-bank", runs[0].Scenario)

	outcomes, err := db.RunOutcomes(runs[0].ID)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	totals, err := db.RunQueueTotals(runs[0].ID)
	require.NoError(t, err)
	require.Equal(t, runs[0].Intervals+1, len(totals))

	_, err = os.Stat(traceOut)
	require.NoError(t, err)
}

// The scenario flag loads a file instead of the built-in default.
func TestRunCommand_ScenarioFile(t *testing.T) {
	rootCmd.SetArgs([]string{
		"run",
		"--log", "error",
		"--scenario", testdataPath(t, "morning_bank.yaml"),
		"--trace", "",
		"--results-db", "",
	})
	require.NoError(t, rootCmd.Execute())
}
