package sim

// TravelTimeProvider supplies walking times between pipeline nodes, in
// seconds. A provider covers walking only; service time at a station is
// determined solely by the station's rate.
//
// Each query returns a positive number of seconds for a known leg, or a
// value <= 0 to signal "unknown" so the engine falls back to its legacy
// delays. SetWalkSpeedMps is forwarded from the engine whenever the unified
// walk speed changes; providers that do not scale with walk speed may ignore
// the call.
type TravelTimeProvider interface {
	SecondsSpawnToTicket(counterIdx int) int
	SecondsSpawnToCheckpoint(checkpointIdx int) int
	SecondsTicketToCheckpoint(counterIdx, checkpointIdx int) int
	SecondsCheckpointToHold(checkpointIdx, holdRoomIdx int) int
	SetWalkSpeedMps(mps float64)
}

// Travel seconds helpers. Every leg resolves to at least one second so a
// scheduled hop never lands on the departure tick itself.

func (e *Engine) travelSecondsSpawnToTicket(counterIdx int) int {
	sec := -1
	if e.travel != nil {
		sec = e.travel.SecondsSpawnToTicket(counterIdx)
	}
	if sec <= 0 {
		sec = e.transitDelayMinutes * 60
	}
	return max(1, sec)
}

func (e *Engine) travelSecondsSpawnToCheckpoint(checkpointIdx int) int {
	sec := -1
	if e.travel != nil {
		sec = e.travel.SecondsSpawnToCheckpoint(checkpointIdx)
	}
	if sec <= 0 {
		sec = e.transitDelayMinutes * 60
	}
	return max(1, sec)
}

func (e *Engine) travelSecondsTicketToCheckpoint(counterIdx, checkpointIdx int) int {
	sec := -1
	if e.travel != nil {
		sec = e.travel.SecondsTicketToCheckpoint(counterIdx, checkpointIdx)
	}
	if sec <= 0 {
		sec = e.transitDelayMinutes * 60
	}
	return max(1, sec)
}

func (e *Engine) travelSecondsCheckpointToHold(checkpointIdx, holdRoomIdx int) int {
	sec := -1
	if e.travel != nil {
		sec = e.travel.SecondsCheckpointToHold(checkpointIdx, holdRoomIdx)
	}
	if sec <= 0 {
		// Prefer the destination room's configured walk seconds; else the
		// legacy hold delay.
		room := e.holdRooms[clampInt(holdRoomIdx, 0, len(e.holdRooms)-1)]
		if room.WalkSecondsFromCheckpoint > 0 {
			sec = room.WalkSecondsFromCheckpoint
		} else {
			sec = e.holdDelayMinutes * 60
		}
	}
	return max(1, sec)
}

// SetTravelTimeProvider attaches (or detaches, with nil) the walking-time
// provider and forwards the engine's walk speed to it.
func (e *Engine) SetTravelTimeProvider(p TravelTimeProvider) {
	e.travel = p
	if p != nil {
		p.SetWalkSpeedMps(e.walkSpeedMps)
	}
}

// TravelProvider returns the attached provider, or nil.
func (e *Engine) TravelProvider() TravelTimeProvider { return e.travel }

// WalkSpeedMps returns the unified walking speed. The engine is the source
// of truth; providers receive updates, never the other way round.
func (e *Engine) WalkSpeedMps() float64 { return e.walkSpeedMps }

// SetWalkSpeedMps clamps mps into [0.20, 3.50] (NaN or non-positive input
// resets to the default; +Inf clamps to 3.50) and forwards the value to the
// attached provider.
func (e *Engine) SetWalkSpeedMps(mps float64) {
	v := DefaultWalkSpeedMps
	if mps == mps && mps > 0 { // not NaN, positive
		v = mps
		if v < 0.20 {
			v = 0.20
		}
		if v > 3.50 {
			v = 3.50
		}
	}
	e.walkSpeedMps = v
	if e.travel != nil {
		e.travel.SetWalkSpeedMps(v)
	}
}
