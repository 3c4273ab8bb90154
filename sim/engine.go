package sim

// Engine is the simulation kernel. It owns every passenger and queue; all
// state transitions are driven by SimulateInterval, which runs to completion
// as one logical step. Construct with NewEngine, drive with the control API
// in snapshot.go, observe through the read accessors below.
type Engine struct {
	flights     []*Flight
	counters    []CounterConfig
	checkpoints []CheckpointConfig
	holdRooms   []HoldRoomConfig

	percentInPerson     float64
	arrivalSpanMinutes  int
	intervalMinutes     int
	transitDelayMinutes int
	holdDelayMinutes    int
	boardingCloseMin    int

	globalStartMinute int // minutes since midnight at absolute second 0
	totalIntervals    int
	currentInterval   int

	curveCfg     ArrivalCurveConfig
	legacyGen    *legacyArrivalGenerator
	arrivalTable map[*Flight][]int
	chosenRoom   map[*Flight]int

	// Waiting FIFOs and the parallel staging FIFOs of passengers who
	// finished service but have not yet arrived at the next node.
	ticketLines              [][]*Passenger
	completedTicketLines     [][]*Passenger
	checkpointLines          [][]*Passenger
	completedCheckpointLines [][]*Passenger
	holdRoomLines            [][]*Passenger

	// Fractional service carry per ticket counter, wrapped into [0,1) at
	// each interval boundary.
	counterProgress []float64

	// Absolute second → passengers due at that node at that second.
	pendingToTicket     map[int][]*Passenger
	pendingToCheckpoint map[int][]*Passenger
	pendingToHold       map[int][]*Passenger

	// Lane hints. The ticket target is binding; the checkpoint target is
	// re-evaluated on arrival.
	targetTicketLine     map[*Passenger]int
	targetCheckpointLine map[*Passenger]int

	counterServing         []*Passenger // transient: most recent service this interval
	checkpointServing      []*Passenger // persists across intervals
	checkpointServiceEndAbs []int       // 0 = idle

	stamps stampTable

	justClosed []*Flight

	// Cumulative per-flight accounting, maintained across the whole run.
	spawnedCount     map[*Flight]int
	missedPurged     map[*Flight]int
	departedCount    map[*Flight]int

	// Queue-total series keyed by interval index.
	heldUps              map[int]int
	ticketQueuedSeries   map[int]int
	checkpointQueuedSeries map[int]int
	holdRoomTotalSeries  map[int]int

	hist history

	rng           *partitionedRNG
	seed          int64
	jitterEnabled bool

	travel       TravelTimeProvider
	walkSpeedMps float64

	snapshots           []*engineSnapshot
	maxComputedInterval int

	warnings []string
}

// NewEngine builds a kernel from cfg. Configuration is clamped rather than
// rejected; the applied adjustments are available via Warnings. Absolute
// second 0 is (earliest departure − arrival span); the horizon runs to the
// last departure.
func NewEngine(cfg EngineConfig) *Engine {
	warnings := cfg.validate()

	checkpoints := cfg.Checkpoints
	if len(checkpoints) == 0 {
		checkpoints = []CheckpointConfig{{ID: 1, RatePerHour: 0}}
	}
	holdRooms := cfg.HoldRooms
	if len(holdRooms) == 0 {
		holdRooms = DefaultHoldRoomConfigs(cfg.Flights, cfg.HoldDelayMinutes)
	}

	e := &Engine{
		flights:             cfg.Flights,
		counters:            cfg.Counters,
		checkpoints:         checkpoints,
		holdRooms:           holdRooms,
		percentInPerson:     cfg.PercentInPerson,
		arrivalSpanMinutes:  cfg.ArrivalSpanMinutes,
		intervalMinutes:     cfg.IntervalMinutes,
		transitDelayMinutes: cfg.TransitDelayMinutes,
		holdDelayMinutes:    cfg.HoldDelayMinutes,
		boardingCloseMin:    DefaultBoardingCloseMinutes,
		seed:                cfg.Seed,
		jitterEnabled:       cfg.JitterEnabled,
		walkSpeedMps:        DefaultWalkSpeedMps,
		warnings:            warnings,
	}

	earliestDep := 0
	latestDep := 0
	for i, f := range e.flights {
		if i == 0 || f.DepartureMinute < earliestDep {
			earliestDep = f.DepartureMinute
		}
		if f.DepartureMinute > latestDep {
			latestDep = f.DepartureMinute
		}
	}
	e.globalStartMinute = earliestDep - e.arrivalSpanMinutes
	maxDepartureMinutes := max(0, latestDep-e.globalStartMinute)
	if len(e.flights) == 0 {
		maxDepartureMinutes = 0
	}
	e.totalIntervals = maxDepartureMinutes/e.intervalMinutes + 1

	e.legacyGen = newLegacyArrivalGenerator(e.arrivalSpanMinutes)
	curve := LegacyArrivalCurve()
	if cfg.ArrivalCurve != nil {
		curve = *cfg.ArrivalCurve
	}

	e.rng = newPartitionedRNG(cfg.Seed)

	e.ticketLines = makeLines(len(e.counters))
	e.completedTicketLines = makeLines(len(e.counters))
	e.checkpointLines = makeLines(len(e.checkpoints))
	e.completedCheckpointLines = makeLines(len(e.checkpoints))
	e.holdRoomLines = makeLines(len(e.holdRooms))

	e.counterProgress = make([]float64, len(e.counters))
	e.counterServing = make([]*Passenger, len(e.counters))
	e.checkpointServing = make([]*Passenger, len(e.checkpoints))
	e.checkpointServiceEndAbs = make([]int, len(e.checkpoints))

	e.pendingToTicket = make(map[int][]*Passenger)
	e.pendingToCheckpoint = make(map[int][]*Passenger)
	e.pendingToHold = make(map[int][]*Passenger)
	e.targetTicketLine = make(map[*Passenger]int)
	e.targetCheckpointLine = make(map[*Passenger]int)

	e.stamps = newStampTable()

	e.spawnedCount = make(map[*Flight]int)
	e.missedPurged = make(map[*Flight]int)
	e.departedCount = make(map[*Flight]int)

	e.heldUps = make(map[int]int)
	e.ticketQueuedSeries = make(map[int]int)
	e.checkpointQueuedSeries = make(map[int]int)
	e.holdRoomTotalSeries = make(map[int]int)

	e.SetArrivalCurveConfig(curve)
	e.computeChosenHoldRooms()

	if cfg.Travel != nil {
		e.SetTravelTimeProvider(cfg.Travel)
	}

	e.captureInitialSnapshot()
	return e
}

func makeLines(n int) [][]*Passenger {
	lines := make([][]*Passenger, n)
	for i := range lines {
		lines[i] = make([]*Passenger, 0)
	}
	return lines
}

// SetRandomSeed reseeds every RNG stream. Hold-room tie-breaks are
// recomputed so the choice reflects the new seed.
func (e *Engine) SetRandomSeed(seed int64) {
	e.seed = seed
	e.rng = newPartitionedRNG(seed)
	e.computeChosenHoldRooms()
}

// SetSpawnJitterEnabled toggles the 0–59s within-minute spawn spreading.
func (e *Engine) SetSpawnJitterEnabled(enabled bool) {
	e.jitterEnabled = enabled
}

// SetArrivalCurveConfig validates and clamps cfg, stores it, and rebuilds
// the whole arrival table. Setting an identical configuration yields an
// identical table. Boarding close is pinned to the engine constant so curve
// edits cannot move the lifecycle cutoff.
func (e *Engine) SetArrivalCurveConfig(cfg ArrivalCurveConfig) {
	cfg.BoardingCloseMinutesBeforeDeparture = e.boardingCloseMin
	e.warnings = append(e.warnings, cfg.ValidateAndClamp()...)
	e.curveCfg = cfg
	e.rebuildArrivalTable()
}

// ArrivalCurveConfigCopy returns the active curve configuration by value.
func (e *Engine) ArrivalCurveConfigCopy() ArrivalCurveConfig { return e.curveCfg }

// computeChosenHoldRooms pre-assigns each flight to exactly one room: the
// accepting room with minimal walk seconds, ties broken by seeded RNG; if no
// room accepts the flight, the first accept-all room; else room 0.
func (e *Engine) computeChosenHoldRooms() {
	e.chosenRoom = make(map[*Flight]int, len(e.flights))
	roomCount := len(e.holdRooms)
	if roomCount == 0 {
		return
	}
	rng := e.rng.forSubsystem(subsystemHoldRooms)

	for _, f := range e.flights {
		var candidates []int
		bestSeconds := -1
		for r, room := range e.holdRooms {
			if !room.Accepts(f) {
				continue
			}
			ws := max(0, room.WalkSecondsFromCheckpoint)
			switch {
			case bestSeconds < 0 || ws < bestSeconds:
				bestSeconds = ws
				candidates = candidates[:0]
				candidates = append(candidates, r)
			case ws == bestSeconds:
				candidates = append(candidates, r)
			}
		}

		chosen := 0
		if len(candidates) > 0 {
			chosen = candidates[rng.Intn(len(candidates))]
		} else {
			for r, room := range e.holdRooms {
				if len(room.AllowedFlights) == 0 {
					chosen = r
					break
				}
			}
		}
		e.chosenRoom[f] = clampInt(chosen, 0, roomCount-1)
	}
}

// Absolute-time helpers. All times are seconds or minutes since horizon
// start (absolute second 0).

func (e *Engine) departureMinuteIdx(f *Flight) int {
	return f.DepartureMinute - e.globalStartMinute
}

func (e *Engine) boardingCloseMinuteIdx(f *Flight) int {
	return f.DepartureMinute - e.boardingCloseMin - e.globalStartMinute
}

func (e *Engine) departureAbs(f *Flight) int { return e.departureMinuteIdx(f) * 60 }

func (e *Engine) boardingCloseAbs(f *Flight) int { return e.boardingCloseMinuteIdx(f) * 60 }

func (e *Engine) spawnOffsetMinutes(f *Flight) int {
	return f.DepartureMinute - e.arrivalSpanMinutes - e.globalStartMinute
}

func (e *Engine) ticketRatePerSecond(counterIdx int) float64 {
	if counterIdx < 0 || counterIdx >= len(e.counters) {
		return 0
	}
	return maxFloat(0, e.counters[counterIdx].RatePerMinute) / 60.0
}

// IntervalSeconds returns the engine step length in seconds.
func (e *Engine) IntervalSeconds() int { return e.intervalMinutes * 60 }

// Basic read accessors.

func (e *Engine) Flights() []*Flight          { return e.flights }
func (e *Engine) PercentInPerson() float64    { return e.percentInPerson }
func (e *Engine) ArrivalSpanMinutes() int     { return e.arrivalSpanMinutes }
func (e *Engine) IntervalMinutes() int        { return e.intervalMinutes }
func (e *Engine) TransitDelayMinutes() int    { return e.transitDelayMinutes }
func (e *Engine) HoldDelayMinutes() int       { return e.holdDelayMinutes }
func (e *Engine) TotalIntervals() int         { return e.totalIntervals }
func (e *Engine) CurrentInterval() int        { return e.currentInterval }
func (e *Engine) NumTicketCounters() int      { return len(e.counters) }
func (e *Engine) NumCheckpoints() int         { return len(e.checkpoints) }
func (e *Engine) GlobalStartMinuteOfDay() int { return e.globalStartMinute }
func (e *Engine) Seed() int64                 { return e.seed }
func (e *Engine) JitterEnabled() bool         { return e.jitterEnabled }

// Warnings returns the configuration adjustments applied so far.
func (e *Engine) Warnings() []string {
	return append([]string(nil), e.warnings...)
}

// CounterConfigs returns a copy of the ticket counter configuration.
func (e *Engine) CounterConfigs() []CounterConfig {
	return append([]CounterConfig(nil), e.counters...)
}

// CheckpointConfigs returns a copy of the checkpoint lane configuration.
func (e *Engine) CheckpointConfigs() []CheckpointConfig {
	return append([]CheckpointConfig(nil), e.checkpoints...)
}

// HoldRoomConfigs returns a copy of the hold room configuration.
func (e *Engine) HoldRoomConfigs() []HoldRoomConfig {
	return append([]HoldRoomConfig(nil), e.holdRooms...)
}

// Queue membership accessors. All return copies of the membership sequences;
// passengers are shared by pointer.

func (e *Engine) TicketLines() [][]*Passenger          { return deepCopyLines(e.ticketLines) }
func (e *Engine) CompletedTicketLines() [][]*Passenger { return deepCopyLines(e.completedTicketLines) }
func (e *Engine) CheckpointLines() [][]*Passenger      { return deepCopyLines(e.checkpointLines) }
func (e *Engine) CompletedCheckpointLines() [][]*Passenger {
	return deepCopyLines(e.completedCheckpointLines)
}
func (e *Engine) HoldRoomLines() [][]*Passenger { return deepCopyLines(e.holdRoomLines) }

// CounterServing returns the most recent service slot per ticket counter in
// the current interval (transient; reset each interval).
func (e *Engine) CounterServing() []*Passenger {
	return append([]*Passenger(nil), e.counterServing...)
}

// CheckpointServing returns the in-service passenger per lane (persists
// across intervals until the scheduled completion second).
func (e *Engine) CheckpointServing() []*Passenger {
	return append([]*Passenger(nil), e.checkpointServing...)
}

// CheckpointServiceEndAbs returns each lane's scheduled completion second
// (0 = idle).
func (e *Engine) CheckpointServiceEndAbs() []int {
	return append([]int(nil), e.checkpointServiceEndAbs...)
}

// CounterProgress returns the fractional service carry per ticket counter.
func (e *Engine) CounterProgress() []float64 {
	return append([]float64(nil), e.counterProgress...)
}

// Pending map accessors. Keys are absolute seconds.

func (e *Engine) PendingToTicket() map[int][]*Passenger     { return deepCopyPendingMap(e.pendingToTicket) }
func (e *Engine) PendingToCheckpoint() map[int][]*Passenger { return deepCopyPendingMap(e.pendingToCheckpoint) }
func (e *Engine) PendingToHold() map[int][]*Passenger       { return deepCopyPendingMap(e.pendingToHold) }

// TargetTicketLine returns the binding counter hint for p, or -1.
func (e *Engine) TargetTicketLine(p *Passenger) int {
	if v, ok := e.targetTicketLine[p]; ok {
		return v
	}
	return -1
}

// TargetCheckpointLine returns the routing hint for p, or -1. The hint is
// re-evaluated when the passenger actually arrives.
func (e *Engine) TargetCheckpointLine(p *Passenger) int {
	if v, ok := e.targetCheckpointLine[p]; ok {
		return v
	}
	return -1
}

// ChosenHoldRoom returns the room pre-assigned to f at construction.
func (e *Engine) ChosenHoldRoom(f *Flight) int {
	if v, ok := e.chosenRoom[f]; ok {
		return v
	}
	return 0
}

// Stamps returns the absolute-second stamps recorded for p (-1 = absent).
func (e *Engine) Stamps(p *Passenger) PassengerStamps {
	return PassengerStamps{
		TicketQueueEnterAbs:     lookupStamp(e.stamps.ticketQueueEnter, p),
		TicketDoneAbs:           lookupStamp(e.stamps.ticketDone, p),
		CheckpointQueueEnterAbs: lookupStamp(e.stamps.checkpointQueueEnter, p),
		CheckpointStartAbs:      lookupStamp(e.stamps.checkpointStart, p),
		CheckpointDoneAbs:       lookupStamp(e.stamps.checkpointDone, p),
		HoldEnterAbs:            lookupStamp(e.stamps.holdEnter, p),
	}
}

// TicketDoneMinuteSecond mirrors the ticket completion stamp as the legacy
// (minute, second-of-minute) pair, or (-1, -1).
func (e *Engine) TicketDoneMinuteSecond(p *Passenger) (int, int) {
	abs := lookupStamp(e.stamps.ticketDone, p)
	if abs < 0 {
		return -1, -1
	}
	return abs / 60, abs % 60
}

// CheckpointDoneMinuteSecond mirrors the checkpoint completion stamp as the
// legacy (minute, second-of-minute) pair, or (-1, -1).
func (e *Engine) CheckpointDoneMinuteSecond(p *Passenger) (int, int) {
	abs := lookupStamp(e.stamps.checkpointDone, p)
	if abs < 0 {
		return -1, -1
	}
	return abs / 60, abs % 60
}

// FlightsJustClosed lists the flights whose boarding closed during the most
// recently simulated interval.
func (e *Engine) FlightsJustClosed() []*Flight {
	return append([]*Flight(nil), e.justClosed...)
}

// ArrivalTable returns a copy of flight f's minute arrival counts.
func (e *Engine) ArrivalTable(f *Flight) []int {
	return append([]int(nil), e.arrivalTable[f]...)
}

// TotalArrivalsAtMinute sums every flight's arrival count at the given
// minute since horizon start.
func (e *Engine) TotalArrivalsAtMinute(minuteIdx int) int {
	sum := 0
	for _, f := range e.flights {
		counts := e.arrivalTable[f]
		idx := minuteIdx - e.spawnOffsetMinutes(f)
		if idx >= 0 && idx < len(counts) {
			sum += counts[idx]
		}
	}
	return sum
}

// TotalArrivalsAtInterval sums arrivals at the first minute of interval k.
func (e *Engine) TotalArrivalsAtInterval(k int) int {
	if k < 0 {
		return 0
	}
	return e.TotalArrivalsAtMinute(k * e.intervalMinutes)
}

// Queue-total series accessors (recorded at each interval boundary).

func (e *Engine) TicketQueuedAtInterval(k int) int     { return e.ticketQueuedSeries[k] }
func (e *Engine) CheckpointQueuedAtInterval(k int) int { return e.checkpointQueuedSeries[k] }
func (e *Engine) HoldRoomTotalAtInterval(k int) int    { return e.holdRoomTotalSeries[k] }
func (e *Engine) HeldUpsAtInterval(k int) int          { return e.heldUps[k] }

// HeldUpsSeries returns the full held-ups series keyed by interval.
func (e *Engine) HeldUpsSeries() map[int]int { return copyIntByInterval(e.heldUps) }

// History accessors. Index k holds the record produced by interval k.

func (e *Engine) HistoryArrivals() []map[*Flight]int          { return copyFlightCountHistory(e.hist.arrivals) }
func (e *Engine) HistoryEnqueuedTicket() []map[*Flight]int    { return copyFlightCountHistory(e.hist.enqueuedTicket) }
func (e *Engine) HistoryTicketed() []map[*Flight]int          { return copyFlightCountHistory(e.hist.ticketed) }
func (e *Engine) HistoryArrivedCheckpoint() []map[*Flight]int { return copyFlightCountHistory(e.hist.arrivedCheckpoint) }
func (e *Engine) HistoryPassedCheckpoint() []map[*Flight]int  { return copyFlightCountHistory(e.hist.passedCheckpoint) }

func (e *Engine) HistoryTicketLineSize() []int     { return append([]int(nil), e.hist.ticketLineSize...) }
func (e *Engine) HistoryCheckpointLineSize() []int { return append([]int(nil), e.hist.checkpointLineSize...) }

func (e *Engine) HistoryQueuedTicket() [][][]*Passenger     { return copyLineHistory(e.hist.queuedTicket) }
func (e *Engine) HistoryServedTicket() [][][]*Passenger     { return copyLineHistory(e.hist.servedTicket) }
func (e *Engine) HistoryQueuedCheckpoint() [][][]*Passenger { return copyLineHistory(e.hist.queuedCheckpoint) }
func (e *Engine) HistoryServedCheckpoint() [][][]*Passenger { return copyLineHistory(e.hist.servedCheckpoint) }
func (e *Engine) HistoryHoldRooms() [][][]*Passenger        { return copyLineHistory(e.hist.holdRooms) }
func (e *Engine) HistoryOnlineArrivals() [][][]*Passenger   { return copyLineHistory(e.hist.onlineArrivals) }
func (e *Engine) HistoryFromTicketArrivals() [][][]*Passenger {
	return copyLineHistory(e.hist.fromTicketArrivals)
}

func copyFlightCountHistory(src []map[*Flight]int) []map[*Flight]int {
	out := make([]map[*Flight]int, len(src))
	for i, m := range src {
		out[i] = copyFlightCounts(m)
	}
	return out
}

func copyLineHistory(src [][][]*Passenger) [][][]*Passenger {
	out := make([][][]*Passenger, len(src))
	for i, lines := range src {
		out[i] = deepCopyLines(lines)
	}
	return out
}

// FlightOutcome summarizes one flight at the current interval.
type FlightOutcome struct {
	Flight      *Flight
	Planned     int
	Spawned     int
	InHoldRoom  int
	Departed    int
	MissedPurged int
}

// FlightOutcomes reports per-flight accounting at the current point of the
// run, in flight-list order.
func (e *Engine) FlightOutcomes() []FlightOutcome {
	inHold := make(map[*Flight]int)
	for _, room := range e.holdRoomLines {
		for _, p := range room {
			if p != nil {
				inHold[p.Flight]++
			}
		}
	}
	out := make([]FlightOutcome, 0, len(e.flights))
	for _, f := range e.flights {
		out = append(out, FlightOutcome{
			Flight:       f,
			Planned:      f.Planned(),
			Spawned:      e.spawnedCount[f],
			InHoldRoom:   inHold[f],
			Departed:     e.departedCount[f],
			MissedPurged: e.missedPurged[f],
		})
	}
	return out
}
