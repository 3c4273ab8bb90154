package sim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func steppedEngine(t *testing.T, intervals int) *Engine {
	t.Helper()
	cfg := singleFlightConfig(30, 1.0)
	cfg.Counters = []CounterConfig{{ID: 1, RatePerMinute: 2}}
	cfg.Checkpoints = []CheckpointConfig{{ID: 1, RatePerHour: 900}}
	e := NewEngine(cfg)
	for i := 0; i < intervals; i++ {
		e.ComputeNextInterval()
	}
	return e
}

// Rewind determinism: jumping back to a snapshot reproduces the exact state
// that produced it, and stepping forward again matches the next snapshot.
func TestSnapshot_RewindDeterminism(t *testing.T) {
	e := steppedEngine(t, 0)
	e.RunAllIntervals()

	e.GoToInterval(6)
	digest6 := stateDigest(e)

	e.GoToInterval(5)
	digest5 := stateDigest(e)
	require.NotEqual(t, digest5, digest6)

	e.ComputeNextInterval()
	require.Equal(t, digest6, stateDigest(e), "step after rewind must match snapshot 6")

	e.GoToInterval(5)
	require.Equal(t, digest5, stateDigest(e), "second restore of snapshot 5 is identical")
}

// A held snapshot view stays frozen while the kernel keeps stepping.
func TestSnapshot_HistoryViewImmutable(t *testing.T) {
	e := steppedEngine(t, 12)

	held := e.HistoryQueuedTicket()[10]
	heldSizes := make([]int, len(held))
	for i, line := range held {
		heldSizes[i] = len(line)
	}

	for i := 0; i < 10; i++ {
		e.ComputeNextInterval()
	}

	for i, line := range held {
		require.Equal(t, heldSizes[i], len(line))
	}
}

// GoToInterval clamps out-of-range targets instead of failing.
func TestSnapshot_GoToClamps(t *testing.T) {
	e := steppedEngine(t, 8)

	e.GoToInterval(-3)
	require.Equal(t, 0, e.CurrentInterval())

	e.GoToInterval(10_000)
	require.Equal(t, 8, e.CurrentInterval())
	require.Equal(t, 8, e.MaxComputedInterval())
}

// ComputeNextInterval restores instead of recomputing when the next snapshot
// already exists, and is a no-op at the horizon.
func TestSnapshot_ComputeNextRestoresExisting(t *testing.T) {
	e := steppedEngine(t, 8)

	e.GoToInterval(3)
	require.True(t, e.CanFastForward())

	e.ComputeNextInterval()
	require.Equal(t, 4, e.CurrentInterval())
	require.Equal(t, 8, e.MaxComputedInterval(), "no new snapshots while replaying")

	e.GoToInterval(e.MaxComputedInterval())
	for e.CurrentInterval() < e.TotalIntervals() {
		e.ComputeNextInterval()
	}
	require.Equal(t, e.TotalIntervals(), e.CurrentInterval())

	e.ComputeNextInterval() // beyond horizon: no-op
	require.Equal(t, e.TotalIntervals(), e.CurrentInterval())
}

func TestSnapshot_RewindFastForwardBounds(t *testing.T) {
	e := steppedEngine(t, 0)
	require.False(t, e.CanRewind())
	require.False(t, e.CanFastForward())

	e.ComputeNextInterval()
	require.True(t, e.CanRewind())
	require.False(t, e.CanFastForward())

	e.RewindOneInterval()
	require.Equal(t, 0, e.CurrentInterval())
	require.True(t, e.CanFastForward())

	e.FastForwardOneInterval()
	require.Equal(t, 1, e.CurrentInterval())

	// At the frontier, fast-forward computes a fresh interval.
	e.FastForwardOneInterval()
	require.Equal(t, 2, e.CurrentInterval())
	require.Equal(t, 2, e.MaxComputedInterval())
}

// RunAllIntervals after arbitrary stepping reproduces the same run.
func TestSnapshot_RunAllIsReproducible(t *testing.T) {
	cfg := singleFlightConfig(25, 1.0)
	cfg.JitterEnabled = true

	a := NewEngine(cfg)
	a.RunAllIntervals()
	finalA := stateDigest(a)

	b := NewEngine(cfg)
	b.ComputeNextInterval()
	b.ComputeNextInterval()
	b.GoToInterval(0)
	b.RunAllIntervals()

	require.Equal(t, finalA, stateDigest(b))
}
