package sim

import "github.com/terminal-sim/terminal-sim/sim/trace"

// flightCountsByNumber re-keys a per-flight counter map by flight number for
// serialization. Empty maps collapse to nil so encoded records stay compact.
func flightCountsByNumber(m map[*Flight]int) map[string]int {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]int, len(m))
	for f, v := range m {
		out[f.Number] = v
	}
	return out
}

// IntervalRecordAt converts the history entry for interval k into a trace
// record. k must be a recorded interval (< len of history).
func (e *Engine) IntervalRecordAt(k int) trace.IntervalRecord {
	return trace.IntervalRecord{
		Interval:          k,
		Arrivals:          flightCountsByNumber(e.hist.arrivals[k]),
		EnqueuedTicket:    flightCountsByNumber(e.hist.enqueuedTicket[k]),
		Ticketed:          flightCountsByNumber(e.hist.ticketed[k]),
		ArrivedCheckpoint: flightCountsByNumber(e.hist.arrivedCheckpoint[k]),
		PassedCheckpoint:  flightCountsByNumber(e.hist.passedCheckpoint[k]),
		TicketQueued:      e.TicketQueuedAtInterval(k + 1),
		CheckpointQueued:  e.CheckpointQueuedAtInterval(k + 1),
		HoldRoomTotal:     e.HoldRoomTotalAtInterval(k + 1),
		HeldUps:           e.HeldUpsAtInterval(k + 1),
		ClosedFlights:     append([]string(nil), e.hist.closedFlights[k]...),
	}
}

// RecordedIntervals reports how many interval history entries exist.
func (e *Engine) RecordedIntervals() int { return len(e.hist.arrivals) }

// CollectTrace builds a full-run trace from the recorded history.
func (e *Engine) CollectTrace(header trace.RunHeader, level trace.Level) *trace.SimulationTrace {
	st := trace.New(header, level)
	for k := 0; k < e.RecordedIntervals(); k++ {
		st.Record(e.IntervalRecordAt(k))
	}
	return st
}
