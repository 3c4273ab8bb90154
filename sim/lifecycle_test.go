package sim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Boarding close with a passenger stranded in the ticket queue: the
// passenger is marked missed, stays visible in the interval's history
// record, and never appears in a later snapshot or hold room.
func TestBoardingClose_StrandedPassengerMissed(t *testing.T) {
	cfg := singleFlightConfig(1, 1.0)
	cfg.Counters = []CounterConfig{{ID: 1, RatePerMinute: 0}} // never serves
	e := NewEngine(cfg)
	require.Equal(t, 1, e.Flights()[0].Planned())

	e.RunAllIntervals()

	outcome := e.FlightOutcomes()[0]
	require.Equal(t, 1, outcome.Spawned)
	require.Equal(t, 1, outcome.MissedPurged)
	require.Equal(t, 0, outcome.Departed)

	// The close interval's history still shows the stranded passenger in
	// the ticket queue; every later interval is clean.
	closeInterval := 40
	inQueueAt := func(k int) int {
		total := 0
		for _, line := range e.HistoryQueuedTicket()[k] {
			total += len(line)
		}
		return total
	}
	require.Equal(t, 1, inQueueAt(closeInterval))
	for k := closeInterval + 1; k < e.TotalIntervals(); k++ {
		require.Zero(t, inQueueAt(k), "interval %d", k)
	}

	// No hold room ever saw the passenger.
	for k, rooms := range e.HistoryHoldRooms() {
		for _, room := range rooms {
			require.Empty(t, room, "interval %d", k)
		}
	}

	// The snapshot after the close interval carries no trace either.
	e.GoToInterval(closeInterval + 1)
	for _, line := range e.TicketLines() {
		require.Empty(t, line)
	}
	require.Empty(t, e.PendingToTicket())
}

// Every passenger not in the chosen hold room at the close second is missed
// by the end of that second, wherever it was in the pipeline.
func TestBoardingClose_MarksEveryNonBoardedLocation(t *testing.T) {
	cfg := singleFlightConfig(0, 1.0)
	e := NewEngine(cfg)
	f := e.Flights()[0]

	boarded := newPassenger(f, 0, true)
	inTicketQueue := newPassenger(f, 0, true)
	inTicketStaging := newPassenger(f, 0, true)
	inCheckpointQueue := newPassenger(f, 0, true)
	inService := newPassenger(f, 0, true)
	inTransit := newPassenger(f, 0, false)

	e.holdRoomLines[0] = append(e.holdRoomLines[0], boarded)
	e.ticketLines[0] = append(e.ticketLines[0], inTicketQueue)
	e.completedTicketLines[0] = append(e.completedTicketLines[0], inTicketStaging)
	e.checkpointLines[0] = append(e.checkpointLines[0], inCheckpointQueue)
	e.checkpointServing[0] = inService
	e.checkpointServiceEndAbs[0] = 99999
	e.pendingToHold[3000] = append(e.pendingToHold[3000], inTransit)

	e.markBoardingClosed(f)

	require.False(t, boarded.Missed, "boarded passenger keeps its seat")
	for _, p := range []*Passenger{inTicketQueue, inTicketStaging, inCheckpointQueue, inService, inTransit} {
		require.True(t, p.Missed)
	}
	require.Empty(t, e.pendingToHold, "in-transit passengers are purged immediately")
	require.Equal(t, []*Flight{f}, e.FlightsJustClosed())
}

// Departure empties every hold room for the flight and releases its stamps.
func TestDeparture_ClearsHoldRooms(t *testing.T) {
	e := NewEngine(singleFlightConfig(10, 1.0))

	e.RunAllIntervals()

	// After the departure interval, no passenger of f remains anywhere.
	require.Zero(t, e.HoldRoomTotalAtInterval(e.TotalIntervals()))
	require.Equal(t, 10, e.FlightOutcomes()[0].Departed)

	for _, room := range e.HoldRoomLines() {
		require.Empty(t, room)
	}
	for _, m := range e.stamps.all() {
		require.Empty(t, m, "departure frees the flight's stamp entries")
	}
}

// Clearing a closed flight resets every lane's service-end marker, so lanes
// resume fresh in the next interval.
func TestClearFlight_ResetsAllLaneServiceEnds(t *testing.T) {
	cfg := singleFlightConfig(0, 1.0)
	cfg.Checkpoints = []CheckpointConfig{
		{ID: 1, RatePerHour: 120},
		{ID: 2, RatePerHour: 120},
	}
	e := NewEngine(cfg)
	f := e.Flights()[0]

	e.checkpointServiceEndAbs[0] = 500
	e.checkpointServiceEndAbs[1] = 700

	e.clearFlightFromNonHoldAreas(f)

	require.Equal(t, []int{0, 0}, e.CheckpointServiceEndAbs())
}

// A flight whose chosen room disappears from the configuration degrades to
// room index 0 instead of failing.
func TestChosenRoom_ClampsToValidRange(t *testing.T) {
	cfg := singleFlightConfig(0, 1.0)
	e := NewEngine(cfg)
	f := e.Flights()[0]

	e.chosenRoom[f] = 7 // stale index beyond the room list
	p := newPassenger(f, 0, false)
	e.pendingToHold[5] = append(e.pendingToHold[5], p)

	e.SimulateInterval()

	require.Len(t, e.holdRoomLines[0], 1, "admission degrades to room 0")
	require.False(t, p.Missed)
}
