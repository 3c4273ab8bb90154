package sim

import "testing"

func multiFlightConfig(seed int64) EngineConfig {
	flights := []*Flight{
		NewFlight("AA100", minutesOfDay(10, 0), 80, 0.9, ShapeCircle),
		NewFlight("BB200", minutesOfDay(10, 30), 120, 0.75, ShapeTriangle),
		NewFlight("CC300", minutesOfDay(11, 0), 60, 1.0, ShapeSquare),
	}
	return EngineConfig{
		PercentInPerson: 0.6,
		Counters: []CounterConfig{
			{ID: 1, RatePerMinute: 2},
			{ID: 2, RatePerMinute: 1.5, AllowedFlights: []string{"BB200"}},
		},
		Checkpoints: []CheckpointConfig{
			{ID: 1, RatePerHour: 600},
			{ID: 2, RatePerHour: 450},
		},
		HoldRooms: []HoldRoomConfig{
			{ID: 1, WalkSecondsFromCheckpoint: 30},
			{ID: 2, WalkSecondsFromCheckpoint: 30},
		},
		ArrivalSpanMinutes:  120,
		IntervalMinutes:     5,
		TransitDelayMinutes: 1,
		HoldDelayMinutes:    1,
		Flights:             flights,
		Seed:                seed,
		JitterEnabled:       true,
	}
}

// Same configuration, same seed, same jitter toggle: byte-identical
// snapshots at every interval.
func TestDeterminism_SameSeedIdenticalRuns(t *testing.T) {
	a := NewEngine(multiFlightConfig(42))
	b := NewEngine(multiFlightConfig(42))

	for a.CurrentInterval() < a.TotalIntervals() {
		a.ComputeNextInterval()
		b.ComputeNextInterval()

		da, db := stateDigest(a), stateDigest(b)
		if da != db {
			t.Fatalf("state diverged at interval %d", a.CurrentInterval())
		}
	}
}

// Reseeding mid-run resets the jitter stream deterministically: two engines
// reseeded identically continue identically.
func TestDeterminism_ReseedAligns(t *testing.T) {
	a := NewEngine(multiFlightConfig(1))
	b := NewEngine(multiFlightConfig(2))

	a.ComputeNextInterval()
	b.ComputeNextInterval()
	b.ComputeNextInterval()

	a.SetRandomSeed(7)
	b.SetRandomSeed(7)
	a.RunAllIntervals()
	b.RunAllIntervals()

	if stateDigest(a) != stateDigest(b) {
		t.Fatal("reseeded runs diverged")
	}
}

// With jitter disabled the seed is irrelevant to the pipeline: hold-room
// assignment is the only consumer, and with distinct per-flight walk times
// there are no ties to break.
func TestDeterminism_JitterOffIgnoresSeed(t *testing.T) {
	mk := func(seed int64) *Engine {
		cfg := multiFlightConfig(seed)
		cfg.JitterEnabled = false
		cfg.HoldRooms = []HoldRoomConfig{
			{ID: 1, WalkSecondsFromCheckpoint: 30},
			{ID: 2, WalkSecondsFromCheckpoint: 60},
		}
		return NewEngine(cfg)
	}
	a := mk(1)
	b := mk(999)
	a.RunAllIntervals()
	b.RunAllIntervals()

	if stateDigest(a) != stateDigest(b) {
		t.Fatal("jitter-off runs with different seeds diverged")
	}
}
