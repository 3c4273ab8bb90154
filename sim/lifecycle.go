package sim

// markMissed flips a passenger to missed exactly once, keeping the per-flight
// missed tally single-counted no matter how many containers still reference
// the passenger when the mark lands.
func (e *Engine) markMissed(p *Passenger) {
	if p == nil || p.Missed {
		return
	}
	p.Missed = true
	e.missedPurged[p.Flight]++
}

// markBoardingClosed fires at boardingCloseAbs(f): every passenger of f not
// already seated in the flight's chosen hold room is marked missed, pulled
// out of the pending maps, and loses its lane hints and stamps. Queue and
// staging members keep their slots until the end-of-interval purge so the
// interval's history still shows them where they stood.
func (e *Engine) markBoardingClosed(f *Flight) {
	if f == nil {
		return
	}
	if !containsFlight(e.justClosed, f) {
		e.justClosed = append(e.justClosed, f)
	}

	chosen := clampInt(e.ChosenHoldRoom(f), 0, len(e.holdRoomLines)-1)
	inChosen := make(map[*Passenger]bool)
	for _, p := range e.holdRoomLines[chosen] {
		if p != nil && p.Flight == f {
			inChosen[p] = true
		}
	}

	e.markMissedNotInChosen(e.ticketLines, f, inChosen)
	e.markMissedNotInChosen(e.completedTicketLines, f, inChosen)
	e.markMissedNotInChosen(e.checkpointLines, f, inChosen)
	e.markMissedNotInChosen(e.completedCheckpointLines, f, inChosen)

	e.purgeFromPending(e.pendingToTicket, f, inChosen)
	e.purgeFromPending(e.pendingToCheckpoint, f, inChosen)
	e.purgeFromPending(e.pendingToHold, f, inChosen)

	for _, p := range e.counterServing {
		if p != nil && p.Flight == f && !inChosen[p] {
			e.markMissed(p)
		}
	}
	for _, p := range e.checkpointServing {
		if p != nil && p.Flight == f && !inChosen[p] {
			e.markMissed(p)
		}
	}
}

func (e *Engine) markMissedNotInChosen(lines [][]*Passenger, f *Flight, inChosen map[*Passenger]bool) {
	for _, line := range lines {
		for _, p := range line {
			if p != nil && p.Flight == f && !inChosen[p] {
				e.markMissed(p)
			}
		}
	}
}

// purgeFromPending removes f's not-yet-boarded passengers from a pending
// map, marking each missed and dropping its hints and stamps. Passengers in
// transit have no queue slot, so purging here is their only removal point.
func (e *Engine) purgeFromPending(pending map[int][]*Passenger, f *Flight, inChosen map[*Passenger]bool) {
	for key, list := range pending {
		kept := list[:0]
		for _, p := range list {
			if p != nil && p.Flight == f && !inChosen[p] {
				e.markMissed(p)
				delete(e.targetTicketLine, p)
				delete(e.targetCheckpointLine, p)
				e.stamps.clearPassenger(p)
				continue
			}
			kept = append(kept, p)
		}
		if len(kept) == 0 {
			delete(pending, key)
		} else {
			pending[key] = kept
		}
	}
}

// clearFlightFromHoldRooms fires at departure: the flight's passengers leave
// every hold room and their stamp entries are released.
func (e *Engine) clearFlightFromHoldRooms(f *Flight) {
	for i, room := range e.holdRoomLines {
		kept := room[:0]
		for _, p := range room {
			if p != nil && p.Flight == f {
				e.departedCount[f]++
				continue
			}
			kept = append(kept, p)
		}
		e.holdRoomLines[i] = kept
	}
	e.stamps.clearFlight(f)
}

// clearFlightFromNonHoldAreas runs at the end of an interval in which f
// closed: f's passengers vanish from all queues, staging, pending maps,
// serving slots, hints, and stamps. serviceEndAbs resets for every lane, so
// all lanes resume fresh next interval.
func (e *Engine) clearFlightFromNonHoldAreas(f *Flight) {
	removeFlight := func(lines [][]*Passenger) {
		for i, line := range lines {
			kept := line[:0]
			for _, p := range line {
				if p != nil && p.Flight == f {
					continue
				}
				kept = append(kept, p)
			}
			lines[i] = kept
		}
	}
	removeFlight(e.ticketLines)
	removeFlight(e.completedTicketLines)
	removeFlight(e.checkpointLines)
	removeFlight(e.completedCheckpointLines)

	e.purgeAllFromPending(e.pendingToTicket, f)
	e.purgeAllFromPending(e.pendingToCheckpoint, f)
	e.purgeAllFromPending(e.pendingToHold, f)

	for i, p := range e.counterServing {
		if p != nil && p.Flight == f {
			e.counterServing[i] = nil
		}
	}
	for i, p := range e.checkpointServing {
		if p != nil && p.Flight == f {
			e.checkpointServing[i] = nil
		}
	}
	for i := range e.checkpointServiceEndAbs {
		e.checkpointServiceEndAbs[i] = 0
	}

	for p := range e.targetTicketLine {
		if p.Flight == f {
			delete(e.targetTicketLine, p)
		}
	}
	for p := range e.targetCheckpointLine {
		if p.Flight == f {
			delete(e.targetCheckpointLine, p)
		}
	}
	e.stamps.clearFlight(f)
}

func (e *Engine) purgeAllFromPending(pending map[int][]*Passenger, f *Flight) {
	for key, list := range pending {
		kept := list[:0]
		for _, p := range list {
			if p != nil && p.Flight == f {
				delete(e.targetTicketLine, p)
				delete(e.targetCheckpointLine, p)
				e.stamps.clearPassenger(p)
				continue
			}
			kept = append(kept, p)
		}
		if len(kept) == 0 {
			delete(pending, key)
		} else {
			pending[key] = kept
		}
	}
}

// removeMissedPassengers drops every missed passenger from the live
// containers at the end of an interval. The interval's history slices were
// captured first, so a passenger missed mid-interval stays visible in that
// one record and never appears again.
func (e *Engine) removeMissedPassengers() {
	purge := func(lines [][]*Passenger) {
		for i, line := range lines {
			kept := line[:0]
			for _, p := range line {
				if p != nil && p.Missed {
					continue
				}
				kept = append(kept, p)
			}
			lines[i] = kept
		}
	}
	purge(e.ticketLines)
	purge(e.completedTicketLines)
	purge(e.checkpointLines)
	purge(e.completedCheckpointLines)
	purge(e.holdRoomLines)

	for p := range e.targetTicketLine {
		if p.Missed {
			delete(e.targetTicketLine, p)
		}
	}
	for p := range e.targetCheckpointLine {
		if p.Missed {
			delete(e.targetCheckpointLine, p)
		}
	}
	e.stamps.clearMissed()
}

func containsFlight(list []*Flight, f *Flight) bool {
	for _, x := range list {
		if x == f {
			return true
		}
	}
	return false
}
