package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/terminal-sim/terminal-sim/sim"
)

// Scenario is the top-level YAML scenario file: flights, stations, delays,
// and the optional arrival-curve override. Loaded via LoadScenario(path).
type Scenario struct {
	Name string `yaml:"name"`

	PercentInPerson     float64 `yaml:"percent_in_person"`
	ArrivalSpanMinutes  int     `yaml:"arrival_span_minutes"`
	IntervalMinutes     int     `yaml:"interval_minutes"`
	TransitDelayMinutes int     `yaml:"transit_delay_minutes"`
	HoldDelayMinutes    int     `yaml:"hold_delay_minutes"`

	Seed   int64 `yaml:"seed"`
	Jitter *bool `yaml:"jitter,omitempty"` // nil defaults to true

	TicketCounters []CounterSpec    `yaml:"ticket_counters"`
	Checkpoints    []CheckpointSpec `yaml:"checkpoints"`
	HoldRooms      []HoldRoomSpec   `yaml:"hold_rooms,omitempty"`
	Flights        []FlightSpec     `yaml:"flights"`

	ArrivalCurve *ArrivalCurveSpec `yaml:"arrival_curve,omitempty"`
}

// CounterSpec defines one ticket counter.
type CounterSpec struct {
	ID             int      `yaml:"id"`
	RatePerMinute  float64  `yaml:"rate_per_minute"`
	AllowedFlights []string `yaml:"allowed_flights,omitempty"`
}

// CheckpointSpec defines one security lane.
type CheckpointSpec struct {
	ID          int     `yaml:"id"`
	RatePerHour float64 `yaml:"rate_per_hour"`
}

// HoldRoomSpec defines one hold room.
type HoldRoomSpec struct {
	ID                        int      `yaml:"id"`
	WalkSecondsFromCheckpoint int      `yaml:"walk_seconds_from_checkpoint"`
	AllowedFlights            []string `yaml:"allowed_flights,omitempty"`
}

// FlightSpec defines one scheduled departure. Departure is "HH:MM".
type FlightSpec struct {
	Number      string  `yaml:"number"`
	Departure   string  `yaml:"departure"`
	Seats       int     `yaml:"seats"`
	FillPercent float64 `yaml:"fill_percent"`
	Shape       string  `yaml:"shape,omitempty"`
}

// ArrivalCurveSpec mirrors sim.ArrivalCurveConfig in YAML form.
type ArrivalCurveSpec struct {
	LegacyMode                      bool    `yaml:"legacy_mode"`
	PeakMinutesBeforeDeparture      int     `yaml:"peak_minutes_before_departure"`
	LeftSigmaMinutes                float64 `yaml:"left_sigma_minutes"`
	RightSigmaMinutes               float64 `yaml:"right_sigma_minutes"`
	LateClampEnabled                bool    `yaml:"late_clamp_enabled"`
	LateClampMinutesBeforeDeparture int     `yaml:"late_clamp_minutes_before_departure"`
	WindowStartMinutesBeforeDeparture int   `yaml:"window_start_minutes_before_departure"`
}

// LoadScenario reads and parses a YAML scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario file: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate rejects scenarios the engine cannot clamp into shape: missing
// flights, unparsable departure times, duplicate flight numbers.
func (s *Scenario) Validate() error {
	if len(s.Flights) == 0 {
		return fmt.Errorf("scenario has no flights")
	}
	seen := make(map[string]bool, len(s.Flights))
	for i, fs := range s.Flights {
		if strings.TrimSpace(fs.Number) == "" {
			return fmt.Errorf("flight %d has an empty number", i)
		}
		key := strings.ToLower(strings.TrimSpace(fs.Number))
		if seen[key] {
			return fmt.Errorf("duplicate flight number %q", fs.Number)
		}
		seen[key] = true
		if _, err := parseTimeOfDay(fs.Departure); err != nil {
			return fmt.Errorf("flight %s: %w", fs.Number, err)
		}
	}
	return nil
}

// EngineConfig converts the scenario into the kernel's construction input.
func (s *Scenario) EngineConfig() (sim.EngineConfig, error) {
	if err := s.Validate(); err != nil {
		return sim.EngineConfig{}, err
	}

	flights := make([]*sim.Flight, 0, len(s.Flights))
	for _, fs := range s.Flights {
		dep, err := parseTimeOfDay(fs.Departure)
		if err != nil {
			return sim.EngineConfig{}, fmt.Errorf("flight %s: %w", fs.Number, err)
		}
		flights = append(flights, sim.NewFlight(fs.Number, dep, fs.Seats, fs.FillPercent, sim.ShapeType(fs.Shape)))
	}

	counters := make([]sim.CounterConfig, 0, len(s.TicketCounters))
	for _, cs := range s.TicketCounters {
		counters = append(counters, sim.CounterConfig{
			ID:             cs.ID,
			RatePerMinute:  cs.RatePerMinute,
			AllowedFlights: cs.AllowedFlights,
		})
	}

	checkpoints := make([]sim.CheckpointConfig, 0, len(s.Checkpoints))
	for _, cs := range s.Checkpoints {
		checkpoints = append(checkpoints, sim.CheckpointConfig{ID: cs.ID, RatePerHour: cs.RatePerHour})
	}

	rooms := make([]sim.HoldRoomConfig, 0, len(s.HoldRooms))
	for _, hs := range s.HoldRooms {
		rooms = append(rooms, sim.HoldRoomConfig{
			ID:                        hs.ID,
			WalkSecondsFromCheckpoint: hs.WalkSecondsFromCheckpoint,
			AllowedFlights:            hs.AllowedFlights,
		})
	}

	cfg := sim.EngineConfig{
		PercentInPerson:     s.PercentInPerson,
		Counters:            counters,
		Checkpoints:         checkpoints,
		HoldRooms:           rooms,
		ArrivalSpanMinutes:  s.ArrivalSpanMinutes,
		IntervalMinutes:     s.IntervalMinutes,
		TransitDelayMinutes: s.TransitDelayMinutes,
		HoldDelayMinutes:    s.HoldDelayMinutes,
		Flights:             flights,
		Seed:                s.Seed,
		JitterEnabled:       s.Jitter == nil || *s.Jitter,
	}

	if s.ArrivalCurve != nil {
		curve := sim.LegacyArrivalCurve()
		curve.LegacyMode = s.ArrivalCurve.LegacyMode
		curve.PeakMinutesBeforeDeparture = s.ArrivalCurve.PeakMinutesBeforeDeparture
		curve.LeftSigmaMinutes = s.ArrivalCurve.LeftSigmaMinutes
		curve.RightSigmaMinutes = s.ArrivalCurve.RightSigmaMinutes
		curve.LateClampEnabled = s.ArrivalCurve.LateClampEnabled
		curve.LateClampMinutesBeforeDeparture = s.ArrivalCurve.LateClampMinutesBeforeDeparture
		curve.WindowStartMinutesBeforeDeparture = s.ArrivalCurve.WindowStartMinutesBeforeDeparture
		cfg.ArrivalCurve = &curve
	}

	return cfg, nil
}

// parseTimeOfDay converts "HH:MM" to minutes since midnight.
func parseTimeOfDay(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q (want HH:MM)", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour*60 + minute, nil
}
