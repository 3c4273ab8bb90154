package cmd

// DefaultScenario returns the built-in morning-bank scenario used when no
// scenario file is supplied: three flights sharing two counters, two
// checkpoint lanes, and two hold rooms (one for AA100, one shared by BB200
// and CC300).
func DefaultScenario() *Scenario {
	return &Scenario{
		Name:                "morning-bank",
		PercentInPerson:     0.6,
		ArrivalSpanMinutes:  120,
		IntervalMinutes:     5,
		TransitDelayMinutes: 1,
		HoldDelayMinutes:    1,
		Seed:                42,
		TicketCounters: []CounterSpec{
			{ID: 1, RatePerMinute: 2.0},
			{ID: 2, RatePerMinute: 1.5},
		},
		Checkpoints: []CheckpointSpec{
			{ID: 1, RatePerHour: 600},
			{ID: 2, RatePerHour: 450},
		},
		HoldRooms: []HoldRoomSpec{
			{ID: 1, WalkSecondsFromCheckpoint: 45, AllowedFlights: []string{"AA100"}},
			{ID: 2, WalkSecondsFromCheckpoint: 60, AllowedFlights: []string{"BB200", "CC300"}},
		},
		Flights: []FlightSpec{
			{Number: "AA100", Departure: "10:00", Seats: 120, FillPercent: 0.85, Shape: "circle"},
			{Number: "BB200", Departure: "10:30", Seats: 160, FillPercent: 0.70, Shape: "triangle"},
			{Number: "CC300", Departure: "11:15", Seats: 90, FillPercent: 0.95, Shape: "square"},
		},
	}
}
