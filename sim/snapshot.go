package sim

// engineSnapshot is the full kernel state after interval k (index 0 is the
// initial empty state). Membership sequences are deep-copied; passenger
// records are shared by pointer, which is safe because identity is stable
// for the lifetime of all retained snapshots.
type engineSnapshot struct {
	currentInterval int

	ticketLines              [][]*Passenger
	completedTicketLines     [][]*Passenger
	checkpointLines          [][]*Passenger
	completedCheckpointLines [][]*Passenger
	holdRoomLines            [][]*Passenger

	counterProgress []float64

	pendingToTicket     map[int][]*Passenger
	pendingToCheckpoint map[int][]*Passenger
	pendingToHold       map[int][]*Passenger

	targetTicketLine     map[*Passenger]int
	targetCheckpointLine map[*Passenger]int

	counterServing          []*Passenger
	checkpointServing       []*Passenger
	checkpointServiceEndAbs []int

	justClosed []*Flight

	heldUps                map[int]int
	ticketQueuedSeries     map[int]int
	checkpointQueuedSeries map[int]int
	holdRoomTotalSeries    map[int]int

	spawnedCount  map[*Flight]int
	missedPurged  map[*Flight]int
	departedCount map[*Flight]int

	stamps stampTable
}

func (e *Engine) makeSnapshot() *engineSnapshot {
	return &engineSnapshot{
		currentInterval: e.currentInterval,

		ticketLines:              deepCopyLines(e.ticketLines),
		completedTicketLines:     deepCopyLines(e.completedTicketLines),
		checkpointLines:          deepCopyLines(e.checkpointLines),
		completedCheckpointLines: deepCopyLines(e.completedCheckpointLines),
		holdRoomLines:            deepCopyLines(e.holdRoomLines),

		counterProgress: append([]float64(nil), e.counterProgress...),

		pendingToTicket:     deepCopyPendingMap(e.pendingToTicket),
		pendingToCheckpoint: deepCopyPendingMap(e.pendingToCheckpoint),
		pendingToHold:       deepCopyPendingMap(e.pendingToHold),

		targetTicketLine:     copyTargetMap(e.targetTicketLine),
		targetCheckpointLine: copyTargetMap(e.targetCheckpointLine),

		counterServing:          append([]*Passenger(nil), e.counterServing...),
		checkpointServing:       append([]*Passenger(nil), e.checkpointServing...),
		checkpointServiceEndAbs: append([]int(nil), e.checkpointServiceEndAbs...),

		justClosed: append([]*Flight(nil), e.justClosed...),

		heldUps:                copyIntByInterval(e.heldUps),
		ticketQueuedSeries:     copyIntByInterval(e.ticketQueuedSeries),
		checkpointQueuedSeries: copyIntByInterval(e.checkpointQueuedSeries),
		holdRoomTotalSeries:    copyIntByInterval(e.holdRoomTotalSeries),

		spawnedCount:  copyFlightCounts(e.spawnedCount),
		missedPurged:  copyFlightCounts(e.missedPurged),
		departedCount: copyFlightCounts(e.departedCount),

		stamps: e.stamps.copy(),
	}
}

// captureInitialSnapshot resets bookkeeping and records snapshot 0.
func (e *Engine) captureInitialSnapshot() {
	e.snapshots = e.snapshots[:0]

	for k := range e.heldUps {
		delete(e.heldUps, k)
	}
	for k := range e.ticketQueuedSeries {
		delete(e.ticketQueuedSeries, k)
	}
	for k := range e.checkpointQueuedSeries {
		delete(e.checkpointQueuedSeries, k)
	}
	for k := range e.holdRoomTotalSeries {
		delete(e.holdRoomTotalSeries, k)
	}

	e.justClosed = e.justClosed[:0]
	restoreTargetInPlace(e.targetTicketLine, nil)
	restoreTargetInPlace(e.targetCheckpointLine, nil)
	e.stamps.clear()

	for i := range e.counterServing {
		e.counterServing[i] = nil
	}
	for i := range e.checkpointServing {
		e.checkpointServing[i] = nil
	}
	for i := range e.checkpointServiceEndAbs {
		e.checkpointServiceEndAbs[i] = 0
	}

	restorePendingInPlace(e.pendingToTicket, nil)
	restorePendingInPlace(e.pendingToCheckpoint, nil)
	restorePendingInPlace(e.pendingToHold, nil)

	restoreFlightCountsInPlace(e.spawnedCount, nil)
	restoreFlightCountsInPlace(e.missedPurged, nil)
	restoreFlightCountsInPlace(e.departedCount, nil)

	e.recordQueueTotals()

	e.snapshots = append(e.snapshots, e.makeSnapshot())
	e.maxComputedInterval = 0
}

// appendSnapshotAfterInterval records the just-finished interval's state,
// overwriting in place when the interval was recomputed after a rewind.
func (e *Engine) appendSnapshotAfterInterval() {
	snap := e.makeSnapshot()
	if e.currentInterval < len(e.snapshots) {
		e.snapshots[e.currentInterval] = snap
	} else {
		e.snapshots = append(e.snapshots, snap)
	}
	if e.currentInterval > e.maxComputedInterval {
		e.maxComputedInterval = e.currentInterval
	}
}

// restoreSnapshot replaces the live container contents with snapshot k's
// (clamped into range). Containers are reused, not reallocated, so external
// holders of engine accessor results stay untouched.
func (e *Engine) restoreSnapshot(k int) {
	k = clampInt(k, 0, e.maxComputedInterval)
	s := e.snapshots[k]

	e.currentInterval = s.currentInterval

	restoreLinesInPlace(&e.ticketLines, s.ticketLines)
	restoreLinesInPlace(&e.completedTicketLines, s.completedTicketLines)
	restoreLinesInPlace(&e.checkpointLines, s.checkpointLines)
	restoreLinesInPlace(&e.completedCheckpointLines, s.completedCheckpointLines)
	restoreLinesInPlace(&e.holdRoomLines, s.holdRoomLines)

	e.counterProgress = append(e.counterProgress[:0], s.counterProgress...)

	restorePendingInPlace(e.pendingToTicket, s.pendingToTicket)
	restorePendingInPlace(e.pendingToCheckpoint, s.pendingToCheckpoint)
	restorePendingInPlace(e.pendingToHold, s.pendingToHold)

	restoreTargetInPlace(e.targetTicketLine, s.targetTicketLine)
	restoreTargetInPlace(e.targetCheckpointLine, s.targetCheckpointLine)

	e.counterServing = append(e.counterServing[:0], s.counterServing...)
	e.checkpointServing = append(e.checkpointServing[:0], s.checkpointServing...)
	e.checkpointServiceEndAbs = append(e.checkpointServiceEndAbs[:0], s.checkpointServiceEndAbs...)

	e.justClosed = append(e.justClosed[:0], s.justClosed...)

	restoreIntByIntervalInPlace(e.heldUps, s.heldUps)
	restoreIntByIntervalInPlace(e.ticketQueuedSeries, s.ticketQueuedSeries)
	restoreIntByIntervalInPlace(e.checkpointQueuedSeries, s.checkpointQueuedSeries)
	restoreIntByIntervalInPlace(e.holdRoomTotalSeries, s.holdRoomTotalSeries)

	restoreFlightCountsInPlace(e.spawnedCount, s.spawnedCount)
	restoreFlightCountsInPlace(e.missedPurged, s.missedPurged)
	restoreFlightCountsInPlace(e.departedCount, s.departedCount)

	e.stamps.restore(s.stamps)
}

// Control API.

// CanRewind reports whether an earlier snapshot exists.
func (e *Engine) CanRewind() bool { return e.currentInterval > 0 }

// CanFastForward reports whether a later snapshot is already computed.
func (e *Engine) CanFastForward() bool { return e.currentInterval < e.maxComputedInterval }

// MaxComputedInterval returns the highest snapshot index computed so far.
func (e *Engine) MaxComputedInterval() int { return e.maxComputedInterval }

// GoToInterval restores snapshot k, clamping k into [0, MaxComputedInterval].
func (e *Engine) GoToInterval(k int) { e.restoreSnapshot(k) }

// RewindOneInterval steps back one snapshot if possible.
func (e *Engine) RewindOneInterval() {
	if e.CanRewind() {
		e.restoreSnapshot(e.currentInterval - 1)
	}
}

// FastForwardOneInterval restores the next snapshot when it exists, else
// computes it.
func (e *Engine) FastForwardOneInterval() {
	if e.CanFastForward() {
		e.restoreSnapshot(e.currentInterval + 1)
		return
	}
	e.ComputeNextInterval()
}

// ComputeNextInterval advances one interval: a no-op at the horizon, a
// snapshot restore when the next interval was already computed, a fresh
// SimulateInterval otherwise.
func (e *Engine) ComputeNextInterval() {
	if e.currentInterval >= e.totalIntervals {
		return
	}
	if e.currentInterval+1 <= e.maxComputedInterval {
		e.restoreSnapshot(e.currentInterval + 1)
		return
	}
	e.SimulateInterval()
}

// RunAllIntervals resets to the initial state, clears history, and simulates
// the whole horizon in one call. The RNG streams are reseeded first so a
// full run is byte-identical no matter how much stepping preceded it.
func (e *Engine) RunAllIntervals() {
	e.currentInterval = 0
	e.hist.clear()
	e.rng = newPartitionedRNG(e.seed)
	e.computeChosenHoldRooms()

	for i := range e.ticketLines {
		e.ticketLines[i] = e.ticketLines[i][:0]
	}
	for i := range e.completedTicketLines {
		e.completedTicketLines[i] = e.completedTicketLines[i][:0]
	}
	for i := range e.checkpointLines {
		e.checkpointLines[i] = e.checkpointLines[i][:0]
	}
	for i := range e.completedCheckpointLines {
		e.completedCheckpointLines[i] = e.completedCheckpointLines[i][:0]
	}
	for i := range e.holdRoomLines {
		e.holdRoomLines[i] = e.holdRoomLines[i][:0]
	}
	for i := range e.counterProgress {
		e.counterProgress[i] = 0
	}

	e.captureInitialSnapshot()

	for e.currentInterval < e.totalIntervals {
		e.SimulateInterval()
	}
}
