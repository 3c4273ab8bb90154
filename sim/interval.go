package sim

// SimulateInterval advances the world by one engine interval
// (intervalMinutes × 60 seconds) in 1-second ticks: spawn the interval's
// minute arrival buckets, sweep the window second by second (flight events,
// node arrivals, ticket service, checkpoint service), then record history,
// persist carries, purge, and snapshot.
//
// The per-second sub-phase order is fixed: boarding-close events, departure
// events, arrivals to ticket, arrivals to checkpoint, arrivals to hold,
// ticket service, checkpoint service. Lanes run in ascending index order and
// buckets drain in insertion order, which is what makes runs with the same
// seed byte-identical.
func (e *Engine) SimulateInterval() {
	e.justClosed = e.justClosed[:0]
	for i := range e.counterServing {
		e.counterServing[i] = nil
	}
	// checkpointServing and checkpointServiceEndAbs deliberately persist:
	// a service in progress completes at its scheduled absolute second even
	// when that second falls in a later interval.

	intervalSeconds := e.IntervalSeconds()
	startAbs := e.currentInterval * intervalSeconds
	endAbs := startAbs + intervalSeconds
	startMinute := startAbs / 60

	arrivalsThisInterval := make(map[*Flight]int)
	enqueuedTicketThisInterval := make(map[*Flight]int)
	ticketedThisInterval := make(map[*Flight]int)
	arrivedCheckpointThisInterval := make(map[*Flight]int)
	passedCheckpointThisInterval := make(map[*Flight]int)

	onlineArrivals := makeLines(len(e.checkpoints))
	fromTicketArrivals := makeLines(len(e.checkpoints))

	// Flight events that fall inside this window, keyed by absolute second.
	closeEvents := make(map[int][]*Flight)
	departEvents := make(map[int][]*Flight)
	for _, f := range e.flights {
		if closeAbs := e.boardingCloseAbs(f); closeAbs >= startAbs && closeAbs < endAbs {
			closeEvents[closeAbs] = append(closeEvents[closeAbs], f)
		}
		if depAbs := e.departureAbs(f); depAbs >= startAbs && depAbs < endAbs {
			departEvents[depAbs] = append(departEvents[depAbs], f)
		}
	}

	// Phase B: spawn this interval's minute buckets and schedule first legs.
	for subMin := 0; subMin < e.intervalMinutes; subMin++ {
		e.spawnMinute(startMinute+subMin, arrivalsThisInterval)
	}

	// Phase C: second sweep.
	ticketDebt := append([]float64(nil), e.counterProgress...)
	ticketRateSec := make([]float64, len(e.counters))
	for c := range ticketRateSec {
		ticketRateSec[c] = e.ticketRatePerSecond(c)
	}

	for absSec := startAbs; absSec < endAbs; absSec++ {
		for _, f := range closeEvents[absSec] {
			e.markBoardingClosed(f)
		}
		for _, f := range departEvents[absSec] {
			e.clearFlightFromHoldRooms(f)
		}

		e.arriveToTicket(absSec, enqueuedTicketThisInterval)
		e.arriveToCheckpoint(absSec, arrivedCheckpointThisInterval, onlineArrivals, fromTicketArrivals)
		e.arriveToHold(absSec)

		e.runTicketService(absSec, ticketDebt, ticketRateSec, ticketedThisInterval)
		e.runCheckpointService(absSec, passedCheckpointThisInterval)
	}

	// Phase D: persist carries, record history, clear closed flights, purge.
	for c := range e.counterProgress {
		v := ticketDebt[c]
		if v != v || v < 0 { // NaN or negative
			v = 0
		}
		for v >= 1.0 {
			v -= 1.0
		}
		e.counterProgress[c] = v
	}

	e.hist.servedTicket = append(e.hist.servedTicket, deepCopyLines(e.completedTicketLines))
	e.hist.queuedTicket = append(e.hist.queuedTicket, deepCopyLines(e.ticketLines))
	e.hist.servedCheckpoint = append(e.hist.servedCheckpoint, deepCopyLines(e.completedCheckpointLines))
	e.hist.queuedCheckpoint = append(e.hist.queuedCheckpoint, deepCopyLines(e.checkpointLines))
	e.hist.holdRooms = append(e.hist.holdRooms, deepCopyLines(e.holdRoomLines))

	e.hist.arrivals = append(e.hist.arrivals, copyFlightCounts(arrivalsThisInterval))
	e.hist.enqueuedTicket = append(e.hist.enqueuedTicket, copyFlightCounts(enqueuedTicketThisInterval))
	e.hist.ticketed = append(e.hist.ticketed, copyFlightCounts(ticketedThisInterval))
	e.hist.arrivedCheckpoint = append(e.hist.arrivedCheckpoint, copyFlightCounts(arrivedCheckpointThisInterval))
	e.hist.passedCheckpoint = append(e.hist.passedCheckpoint, copyFlightCounts(passedCheckpointThisInterval))

	e.hist.ticketLineSize = append(e.hist.ticketLineSize, e.totalWaiting(e.ticketLines))
	e.hist.checkpointLineSize = append(e.hist.checkpointLineSize, e.totalWaiting(e.checkpointLines))

	e.hist.onlineArrivals = append(e.hist.onlineArrivals, onlineArrivals)
	e.hist.fromTicketArrivals = append(e.hist.fromTicketArrivals, fromTicketArrivals)

	closedNumbers := make([]string, 0, len(e.justClosed))
	for _, f := range e.justClosed {
		closedNumbers = append(closedNumbers, f.Number)
	}
	e.hist.closedFlights = append(e.hist.closedFlights, closedNumbers)

	for _, f := range e.justClosed {
		e.clearFlightFromNonHoldAreas(f)
	}
	e.removeMissedPassengers()

	e.currentInterval++

	e.heldUps[e.currentInterval] = e.totalWaiting(e.ticketLines) + e.totalWaiting(e.checkpointLines)
	e.recordQueueTotals()
	e.appendSnapshotAfterInterval()
}

// spawnMinute materializes one minute's arrivals for every flight and
// schedules their first travel leg.
func (e *Engine) spawnMinute(minuteIdx int, arrivalsThisInterval map[*Flight]int) {
	jitterRNG := e.rng.forSubsystem(subsystemJitter)
	minuteStartAbs := minuteIdx * 60

	for _, f := range e.flights {
		counts := e.arrivalTable[f]
		idx := minuteIdx - e.spawnOffsetMinutes(f)
		if idx < 0 || idx >= len(counts) {
			continue
		}
		total := max(0, counts[idx])
		if total == 0 {
			continue
		}
		incFlightCount(arrivalsThisInterval, f, total)
		e.spawnedCount[f] += total

		inPerson := int(roundHalfUp(float64(total) * e.percentInPerson))
		online := total - inPerson
		if len(e.counters) == 0 {
			// No ticketing at all: everyone proceeds as online.
			online += inPerson
			inPerson = 0
		}

		allowed := e.allowedCounters(f)

		for i := 0; i < inPerson; i++ {
			p := newPassenger(f, minuteIdx, true)

			counterIdx := 0
			if len(allowed) > 0 {
				counterIdx = allowed[0]
				for _, ci := range allowed {
					if len(e.ticketLines[ci]) < len(e.ticketLines[counterIdx]) {
						counterIdx = ci
					}
				}
			}
			e.targetTicketLine[p] = counterIdx

			jitter := 0
			if e.jitterEnabled {
				jitter = jitterRNG.Intn(60)
			}
			dueAbs := minuteStartAbs + jitter + e.travelSecondsSpawnToTicket(counterIdx)
			e.pendingToTicket[dueAbs] = append(e.pendingToTicket[dueAbs], p)
		}

		for i := 0; i < online; i++ {
			p := newPassenger(f, minuteIdx, false)

			jitter := 0
			if e.jitterEnabled {
				jitter = jitterRNG.Intn(60)
			}
			// Travel needs a candidate lane before the walk begins; use the
			// best lane as of the minute start. The binding lane choice
			// happens on arrival with current loads.
			protoLane := e.pickCheckpointLaneAt(minuteStartAbs)
			e.targetCheckpointLine[p] = protoLane
			dueAbs := minuteStartAbs + jitter + e.travelSecondsSpawnToCheckpoint(protoLane)
			e.pendingToCheckpoint[dueAbs] = append(e.pendingToCheckpoint[dueAbs], p)
		}
	}
}

// allowedCounters lists the counters accepting f, or every counter when none
// explicitly accept it.
func (e *Engine) allowedCounters(f *Flight) []int {
	var allowed []int
	for j := range e.counters {
		if e.counters[j].Accepts(f) {
			allowed = append(allowed, j)
		}
	}
	if len(allowed) == 0 && len(e.counters) > 0 {
		for j := range e.counters {
			allowed = append(allowed, j)
		}
	}
	return allowed
}

func (e *Engine) arriveToTicket(absSec int, enqueued map[*Flight]int) {
	due, ok := e.pendingToTicket[absSec]
	if !ok {
		return
	}
	delete(e.pendingToTicket, absSec)
	for _, p := range due {
		if p == nil || p.Missed {
			continue
		}
		counterIdx := 0
		if t, ok := e.targetTicketLine[p]; ok {
			counterIdx = clampInt(t, 0, len(e.ticketLines)-1)
		}
		e.ticketLines[counterIdx] = append(e.ticketLines[counterIdx], p)
		e.stamps.ticketQueueEnter[p] = absSec
		incFlightCount(enqueued, p.Flight, 1)
	}
}

func (e *Engine) arriveToCheckpoint(absSec int, arrived map[*Flight]int, onlineArrivals, fromTicketArrivals [][]*Passenger) {
	due, ok := e.pendingToCheckpoint[absSec]
	if !ok {
		return
	}
	delete(e.pendingToCheckpoint, absSec)
	for _, p := range due {
		if p == nil || p.Missed {
			continue
		}
		if p.InPerson {
			// Leaves ticket staging the moment it reaches the checkpoint.
			e.removeFromStaging(e.completedTicketLines, p)
		}

		p.CheckpointEntryMinute = absSec / 60
		e.stamps.checkpointQueueEnter[p] = absSec

		// The stored hint only priced the walk; the binding lane is chosen
		// here against the loads at the arrival second.
		delete(e.targetCheckpointLine, p)
		lane := e.pickCheckpointLaneAt(absSec)

		e.checkpointLines[lane] = append(e.checkpointLines[lane], p)
		incFlightCount(arrived, p.Flight, 1)

		if p.InPerson {
			fromTicketArrivals[lane] = append(fromTicketArrivals[lane], p)
		} else {
			onlineArrivals[lane] = append(onlineArrivals[lane], p)
		}
	}
}

func (e *Engine) arriveToHold(absSec int) {
	due, ok := e.pendingToHold[absSec]
	if !ok {
		return
	}
	delete(e.pendingToHold, absSec)
	for _, p := range due {
		if p == nil || p.Missed {
			continue
		}
		e.removeFromStaging(e.completedCheckpointLines, p)

		if absSec >= e.boardingCloseAbs(p.Flight) {
			e.markMissed(p)
			continue
		}

		roomIdx := p.HoldRoomIdx
		if roomIdx < 0 {
			roomIdx = e.ChosenHoldRoom(p.Flight)
			p.HoldRoomIdx = roomIdx
		}
		roomIdx = clampInt(roomIdx, 0, len(e.holdRoomLines)-1)

		p.HoldRoomEntryMinute = absSec / 60
		p.HoldRoomSeq = len(e.holdRoomLines[roomIdx]) + 1
		e.holdRoomLines[roomIdx] = append(e.holdRoomLines[roomIdx], p)
		e.stamps.holdEnter[p] = absSec
	}
}

// runTicketService accrues fractional service per counter and completes
// whole passengers as the debt crosses 1.0. Idle lanes do not bank time.
func (e *Engine) runTicketService(absSec int, ticketDebt, ticketRateSec []float64, ticketed map[*Flight]int) {
	for c := range e.counters {
		if len(e.ticketLines[c]) == 0 {
			ticketDebt[c] = 0
			continue
		}
		ticketDebt[c] += ticketRateSec[c]

		for ticketDebt[c] >= 1.0 {
			next := e.takeFirstNotMissed(&e.ticketLines[c])
			if next == nil {
				ticketDebt[c] = 0
				break
			}
			e.counterServing[c] = next

			e.stamps.ticketDone[next] = absSec
			e.completedTicketLines[c] = append(e.completedTicketLines[c], next)
			incFlightCount(ticketed, next.Flight, 1)

			if !next.Missed {
				targetLane := e.pickCheckpointLaneAt(absSec)
				e.targetCheckpointLine[next] = targetLane
				arriveAbs := absSec + e.travelSecondsTicketToCheckpoint(c, targetLane)
				e.pendingToCheckpoint[arriveAbs] = append(e.pendingToCheckpoint[arriveAbs], next)
			}

			ticketDebt[c] -= 1.0
			if len(e.ticketLines[c]) == 0 {
				ticketDebt[c] = 0
				break
			}
		}
	}
}

// runCheckpointService finalizes services due at this second, then starts
// the next service on any idle lane. A lane can complete one passenger and
// begin the next within the same tick.
func (e *Engine) runCheckpointService(absSec int, passed map[*Flight]int) {
	for c := range e.checkpoints {
		if e.checkpointServiceEndAbs[c] > 0 && absSec >= e.checkpointServiceEndAbs[c] {
			doneP := e.checkpointServing[c]
			e.checkpointServing[c] = nil
			e.checkpointServiceEndAbs[c] = 0

			if doneP != nil && !doneP.Missed {
				e.completedCheckpointLines[c] = append(e.completedCheckpointLines[c], doneP)
				incFlightCount(passed, doneP.Flight, 1)

				room := clampInt(e.ChosenHoldRoom(doneP.Flight), 0, len(e.holdRooms)-1)
				doneP.HoldRoomIdx = room

				arriveAbs := absSec + e.travelSecondsCheckpointToHold(c, room)
				e.pendingToHold[arriveAbs] = append(e.pendingToHold[arriveAbs], doneP)
			}
		}

		if e.checkpointServiceEndAbs[c] == 0 {
			if next := e.takeFirstNotMissed(&e.checkpointLines[c]); next != nil {
				e.beginCheckpointService(next, c, absSec)
			}
		}
	}
}

func (e *Engine) beginCheckpointService(p *Passenger, lane, startAbs int) {
	doneAbs := startAbs + max(1, e.checkpointServiceSeconds(lane))

	e.checkpointServing[lane] = p
	e.checkpointServiceEndAbs[lane] = doneAbs

	e.stamps.checkpointStart[p] = startAbs
	e.stamps.checkpointDone[p] = doneAbs
}

// takeFirstNotMissed pops the first non-missed passenger from the queue,
// leaving missed entries in place for the end-of-interval purge.
func (e *Engine) takeFirstNotMissed(queue *[]*Passenger) *Passenger {
	for i, p := range *queue {
		if p != nil && !p.Missed {
			*queue = append((*queue)[:i], (*queue)[i+1:]...)
			return p
		}
	}
	return nil
}

// removeFromStaging deletes the first identity match of p across lines.
func (e *Engine) removeFromStaging(lines [][]*Passenger, p *Passenger) {
	if p == nil {
		return
	}
	for li, line := range lines {
		for i, q := range line {
			if q == p {
				lines[li] = append(line[:i], line[i+1:]...)
				return
			}
		}
	}
}

func (e *Engine) totalWaiting(lines [][]*Passenger) int {
	n := 0
	for _, line := range lines {
		n += len(line)
	}
	return n
}

func (e *Engine) recordQueueTotals() {
	e.ticketQueuedSeries[e.currentInterval] = e.totalWaiting(e.ticketLines)
	e.checkpointQueuedSeries[e.currentInterval] = e.totalWaiting(e.checkpointLines)
	e.holdRoomTotalSeries[e.currentInterval] = e.totalWaiting(e.holdRoomLines)
}
