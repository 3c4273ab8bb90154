package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore_SaveAndQueryRun(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer s.Close()

	run := RunRow{ID: "run-1", Scenario: "morning-bank", Seed: 42, Intervals: 37}
	outcomes := []FlightOutcomeRow{
		{Flight: "AA100", Planned: 102, Spawned: 102, Departed: 98, Missed: 4},
		{Flight: "BB200", Planned: 112, Spawned: 112, Departed: 112, Missed: 0},
	}
	totals := []QueueTotalsRow{
		{Interval: 0},
		{Interval: 1, TicketQueued: 7, CheckpointQueued: 3, HoldRoomTotal: 1},
	}
	require.NoError(t, s.SaveRun(run, outcomes, totals))

	runs, err := s.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, "run-1", runs[0].ID)
	require.Equal(t, int64(42), runs[0].Seed)
	require.NotEmpty(t, runs[0].CreatedAt)

	got, err := s.RunOutcomes("run-1")
	require.NoError(t, err)
	require.Equal(t, outcomes, got)

	series, err := s.RunQueueTotals("run-1")
	require.NoError(t, err)
	require.Equal(t, totals, series)
}

func TestStore_DuplicateRunIDRejected(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer s.Close()

	run := RunRow{ID: "dup", Scenario: "x", Seed: 1, Intervals: 2}
	require.NoError(t, s.SaveRun(run, nil, nil))
	require.Error(t, s.SaveRun(run, nil, nil))
}

func TestStore_EmptyPathRejected(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)
}
