package trace

// Level controls trace collection verbosity.
type Level string

const (
	// LevelNone disables tracing: Record drops every record it is given.
	LevelNone Level = "none"
	// LevelIntervals captures one record per simulated interval.
	LevelIntervals Level = "intervals"
)

// validLevels maps accepted trace level strings.
var validLevels = map[Level]bool{
	LevelNone:      true,
	LevelIntervals: true,
	"":             true, // empty defaults to none
}

// IsValidLevel returns true if the given level string is recognized.
func IsValidLevel(level string) bool {
	return validLevels[Level(level)]
}

// SimulationTrace collects interval records during a run.
type SimulationTrace struct {
	Header    RunHeader
	Level     Level
	Intervals []IntervalRecord
}

// New creates a SimulationTrace ready for recording.
func New(header RunHeader, level Level) *SimulationTrace {
	if level == "" {
		level = LevelNone
	}
	return &SimulationTrace{
		Header:    header,
		Level:     level,
		Intervals: make([]IntervalRecord, 0),
	}
}

// Record appends an interval record. A LevelNone trace drops it.
func (st *SimulationTrace) Record(rec IntervalRecord) {
	if st.Level == LevelNone {
		return
	}
	st.Intervals = append(st.Intervals, rec)
}

// Summary aggregates a trace into run-level totals.
type Summary struct {
	Intervals        int
	TotalArrivals    int
	TotalTicketed    int
	TotalPassed      int
	PeakTicketQueued int
	PeakCheckpoint   int
	PeakHoldRooms    int
}

// Summarize computes aggregate statistics. Safe for nil or empty traces.
func Summarize(st *SimulationTrace) *Summary {
	s := &Summary{}
	if st == nil {
		return s
	}
	s.Intervals = len(st.Intervals)
	for _, rec := range st.Intervals {
		for _, v := range rec.Arrivals {
			s.TotalArrivals += v
		}
		for _, v := range rec.Ticketed {
			s.TotalTicketed += v
		}
		for _, v := range rec.PassedCheckpoint {
			s.TotalPassed += v
		}
		if rec.TicketQueued > s.PeakTicketQueued {
			s.PeakTicketQueued = rec.TicketQueued
		}
		if rec.CheckpointQueued > s.PeakCheckpoint {
			s.PeakCheckpoint = rec.CheckpointQueued
		}
		if rec.HoldRoomTotal > s.PeakHoldRooms {
			s.PeakHoldRooms = rec.HoldRoomTotal
		}
	}
	return s
}
