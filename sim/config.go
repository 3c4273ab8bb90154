package sim

import (
	"fmt"
)

// DefaultBoardingCloseMinutes is how long before departure boarding closes.
const DefaultBoardingCloseMinutes = 20

// DefaultWalkSpeedMps is the engine-owned walking speed forwarded to an
// attached travel-time provider.
const DefaultWalkSpeedMps = 1.34

// CounterConfig describes one ticket counter: a rate-accrual server measured
// in passengers per minute. An empty AllowedFlights list accepts all flights.
type CounterConfig struct {
	ID             int
	RatePerMinute  float64
	AllowedFlights []string
}

// Accepts reports whether this counter serves flight f. Matching is by
// normalized flight number, so flights rebuilt from configuration still match.
func (c CounterConfig) Accepts(f *Flight) bool {
	if f == nil {
		return false
	}
	if len(c.AllowedFlights) == 0 {
		return true
	}
	for _, num := range c.AllowedFlights {
		if flightNumbersEqual(num, f.Number) {
			return true
		}
	}
	return false
}

// CheckpointConfig describes one security lane. Input is passengers per hour
// (industry standard); the engine derives a fixed per-passenger service
// duration from it. Walking time is handled by the travel model and is not
// part of service time.
type CheckpointConfig struct {
	ID          int
	RatePerHour float64
}

// ServiceSeconds returns the deterministic per-passenger service time,
// max(1, round(3600/ratePerHour)). A closed lane (rate 0) reports
// closedLaneServiceSeconds so the router never picks it while any open lane
// exists.
func (c CheckpointConfig) ServiceSeconds() int {
	if c.RatePerHour <= 0 {
		return closedLaneServiceSeconds
	}
	secs := int(roundHalfUp(3600.0 / c.RatePerHour))
	return max(1, secs)
}

// HoldRoomConfig describes one hold room. An empty AllowedFlights list
// accepts all flights.
type HoldRoomConfig struct {
	ID                        int
	WalkSecondsFromCheckpoint int
	AllowedFlights            []string
}

// Accepts reports whether this room admits flight f.
func (h HoldRoomConfig) Accepts(f *Flight) bool {
	if f == nil {
		return false
	}
	if len(h.AllowedFlights) == 0 {
		return true
	}
	for _, num := range h.AllowedFlights {
		if flightNumbersEqual(num, f.Number) {
			return true
		}
	}
	return false
}

// EngineConfig is the full construction input for NewEngine.
// Invalid values are clamped, not rejected; the resulting warnings are
// retained on the engine (Warnings accessor).
type EngineConfig struct {
	PercentInPerson float64

	Counters    []CounterConfig
	Checkpoints []CheckpointConfig
	HoldRooms   []HoldRoomConfig

	ArrivalSpanMinutes  int
	IntervalMinutes     int
	TransitDelayMinutes int // legacy fallback for walking legs
	HoldDelayMinutes    int // legacy fallback for checkpoint→hold

	Flights []*Flight

	// Optional knobs.
	ArrivalCurve  *ArrivalCurveConfig
	Travel        TravelTimeProvider
	Seed          int64
	JitterEnabled bool
}

// validate clamps cfg in place and returns one warning per adjustment.
func (cfg *EngineConfig) validate() []string {
	var warnings []string
	if cfg.PercentInPerson < 0 || cfg.PercentInPerson > 1 || cfg.PercentInPerson != cfg.PercentInPerson {
		warnings = append(warnings, fmt.Sprintf("percent in person %v clamped into [0,1]", cfg.PercentInPerson))
		cfg.PercentInPerson = clamp01(cfg.PercentInPerson)
	}
	if cfg.IntervalMinutes < 1 {
		warnings = append(warnings, fmt.Sprintf("interval minutes %d raised to 1", cfg.IntervalMinutes))
		cfg.IntervalMinutes = 1
	}
	if cfg.ArrivalSpanMinutes < 1 {
		warnings = append(warnings, fmt.Sprintf("arrival span %d raised to 1", cfg.ArrivalSpanMinutes))
		cfg.ArrivalSpanMinutes = 1
	}
	if cfg.TransitDelayMinutes < 0 {
		warnings = append(warnings, "negative transit delay clamped to 0")
		cfg.TransitDelayMinutes = 0
	}
	if cfg.HoldDelayMinutes < 0 {
		warnings = append(warnings, "negative hold delay clamped to 0")
		cfg.HoldDelayMinutes = 0
	}
	for i := range cfg.Counters {
		if cfg.Counters[i].RatePerMinute < 0 || cfg.Counters[i].RatePerMinute != cfg.Counters[i].RatePerMinute {
			warnings = append(warnings, fmt.Sprintf("counter %d rate clamped to 0", cfg.Counters[i].ID))
			cfg.Counters[i].RatePerMinute = 0
		}
	}
	for i := range cfg.Checkpoints {
		if cfg.Checkpoints[i].RatePerHour < 0 || cfg.Checkpoints[i].RatePerHour != cfg.Checkpoints[i].RatePerHour {
			warnings = append(warnings, fmt.Sprintf("checkpoint %d rate clamped to 0", cfg.Checkpoints[i].ID))
			cfg.Checkpoints[i].RatePerHour = 0
		}
	}
	for i := range cfg.HoldRooms {
		if cfg.HoldRooms[i].WalkSecondsFromCheckpoint < 0 {
			warnings = append(warnings, fmt.Sprintf("hold room %d walk seconds clamped to 0", cfg.HoldRooms[i].ID))
			cfg.HoldRooms[i].WalkSecondsFromCheckpoint = 0
		}
	}
	return warnings
}

// DefaultCheckpointConfigs builds n lanes sharing ratePerHour. With n <= 0 a
// single closed lane is returned so the engine always has a lane to route to.
func DefaultCheckpointConfigs(n int, ratePerHour float64) []CheckpointConfig {
	n = max(0, n)
	rate := maxFloat(0, ratePerHour)
	out := make([]CheckpointConfig, 0, max(1, n))
	for i := 0; i < n; i++ {
		out = append(out, CheckpointConfig{ID: i + 1, RatePerHour: rate})
	}
	if len(out) == 0 {
		out = append(out, CheckpointConfig{ID: 1, RatePerHour: 0})
	}
	return out
}

// DefaultHoldRoomConfigs builds a 1:1 room-per-flight mapping, each room
// restricted to its flight with walk time holdDelayMinutes. With no flights
// it returns a single room that accepts everything.
func DefaultHoldRoomConfigs(flights []*Flight, holdDelayMinutes int) []HoldRoomConfig {
	walk := max(0, holdDelayMinutes) * 60
	if len(flights) == 0 {
		return []HoldRoomConfig{{ID: 1, WalkSecondsFromCheckpoint: walk}}
	}
	out := make([]HoldRoomConfig, 0, len(flights))
	for i, f := range flights {
		cfg := HoldRoomConfig{ID: i + 1, WalkSecondsFromCheckpoint: walk}
		if f != nil {
			cfg.AllowedFlights = []string{f.Number}
		}
		out = append(out, cfg)
	}
	return out
}

func flightNumbersEqual(a, b string) bool {
	return equalFoldTrimmed(a, b)
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
