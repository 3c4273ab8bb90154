package sim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fixedTravel answers every leg with the configured values; negative values
// signal "unknown" so the engine falls back to legacy delays.
type fixedTravel struct {
	spawnToTicket     int
	spawnToCheckpoint int
	ticketToCheckpoint int
	checkpointToHold  int
	walkSpeed         float64
}

func (ft *fixedTravel) SecondsSpawnToTicket(int) int          { return ft.spawnToTicket }
func (ft *fixedTravel) SecondsSpawnToCheckpoint(int) int      { return ft.spawnToCheckpoint }
func (ft *fixedTravel) SecondsTicketToCheckpoint(int, int) int { return ft.ticketToCheckpoint }
func (ft *fixedTravel) SecondsCheckpointToHold(int, int) int  { return ft.checkpointToHold }
func (ft *fixedTravel) SetWalkSpeedMps(mps float64)           { ft.walkSpeed = mps }

func TestTravel_LegacyFallbacks(t *testing.T) {
	cfg := singleFlightConfig(0, 1.0)
	cfg.TransitDelayMinutes = 2
	cfg.HoldDelayMinutes = 3
	cfg.HoldRooms = []HoldRoomConfig{{ID: 1, WalkSecondsFromCheckpoint: 45}}
	e := NewEngine(cfg)

	require.Equal(t, 120, e.travelSecondsSpawnToTicket(0))
	require.Equal(t, 120, e.travelSecondsSpawnToCheckpoint(0))
	require.Equal(t, 120, e.travelSecondsTicketToCheckpoint(0, 0))
	require.Equal(t, 45, e.travelSecondsCheckpointToHold(0, 0), "room walk seconds win over hold delay")
}

func TestTravel_HoldDelayWhenRoomWalkZero(t *testing.T) {
	cfg := singleFlightConfig(0, 1.0)
	cfg.HoldDelayMinutes = 3
	e := NewEngine(cfg)

	require.Equal(t, 180, e.travelSecondsCheckpointToHold(0, 0))
}

func TestTravel_FloorsAtOneSecond(t *testing.T) {
	e := NewEngine(singleFlightConfig(0, 1.0)) // zero delays everywhere

	require.Equal(t, 1, e.travelSecondsSpawnToTicket(0))
	require.Equal(t, 1, e.travelSecondsSpawnToCheckpoint(0))
	require.Equal(t, 1, e.travelSecondsTicketToCheckpoint(0, 0))
	require.Equal(t, 1, e.travelSecondsCheckpointToHold(0, 0))
}

func TestTravel_ProviderOverridesAndUnknownFallsBack(t *testing.T) {
	cfg := singleFlightConfig(0, 1.0)
	cfg.TransitDelayMinutes = 2
	e := NewEngine(cfg)

	ft := &fixedTravel{
		spawnToTicket:      33,
		spawnToCheckpoint:  -1, // unknown
		ticketToCheckpoint: 75,
		checkpointToHold:   0, // unknown
	}
	e.SetTravelTimeProvider(ft)

	require.Equal(t, 33, e.travelSecondsSpawnToTicket(0))
	require.Equal(t, 120, e.travelSecondsSpawnToCheckpoint(0), "unknown leg uses legacy delay")
	require.Equal(t, 75, e.travelSecondsTicketToCheckpoint(0, 0))
	require.Equal(t, 1, e.travelSecondsCheckpointToHold(0, 0), "unknown leg uses room walk / hold delay path")
}

func TestWalkSpeed_ClampsAndForwards(t *testing.T) {
	e := NewEngine(singleFlightConfig(0, 1.0))
	ft := &fixedTravel{}
	e.SetTravelTimeProvider(ft)
	require.Equal(t, DefaultWalkSpeedMps, ft.walkSpeed, "attach forwards current speed")

	e.SetWalkSpeedMps(10)
	require.Equal(t, 3.5, e.WalkSpeedMps())
	require.Equal(t, 3.5, ft.walkSpeed)

	e.SetWalkSpeedMps(0.01)
	require.Equal(t, 0.20, e.WalkSpeedMps())

	e.SetWalkSpeedMps(-5)
	require.Equal(t, DefaultWalkSpeedMps, e.WalkSpeedMps(), "non-positive resets to default")
}
