package sim

import (
	"fmt"
	"sort"
	"strings"
)

// Shared helpers for kernel tests.

// minutesOfDay converts "HH:MM"-style components to minutes since midnight.
func minutesOfDay(hour, minute int) int { return hour*60 + minute }

// singleFlightConfig is the S1-style baseline: one flight departing 10:00,
// one counter at 60/min, one checkpoint at 3600/hr (1s service), zero legacy
// delays, everyone in person, jitter off, legacy arrivals.
func singleFlightConfig(seats int, fill float64) EngineConfig {
	f := NewFlight("AA100", minutesOfDay(10, 0), seats, fill, ShapeCircle)
	return EngineConfig{
		PercentInPerson:     1.0,
		Counters:            []CounterConfig{{ID: 1, RatePerMinute: 60}},
		Checkpoints:         []CheckpointConfig{{ID: 1, RatePerHour: 3600}},
		HoldRooms:           []HoldRoomConfig{{ID: 1}},
		ArrivalSpanMinutes:  60,
		IntervalMinutes:     1,
		TransitDelayMinutes: 0,
		HoldDelayMinutes:    0,
		Flights:             []*Flight{f},
		Seed:                42,
		JitterEnabled:       false,
	}
}

// passengerDigest renders a passenger's observable state without relying on
// pointer identity, so digests compare across engines.
func passengerDigest(e *Engine, p *Passenger) string {
	st := e.Stamps(p)
	return fmt.Sprintf("%s/%d/%t/%t/%d/%d:%d,%d,%d,%d,%d,%d",
		p.Flight.Number, p.SpawnMinute, p.InPerson, p.Missed,
		p.HoldRoomIdx, p.HoldRoomSeq,
		st.TicketQueueEnterAbs, st.TicketDoneAbs,
		st.CheckpointQueueEnterAbs, st.CheckpointStartAbs, st.CheckpointDoneAbs,
		st.HoldEnterAbs)
}

func linesDigest(e *Engine, label string, lines [][]*Passenger, b *strings.Builder) {
	for i, line := range lines {
		fmt.Fprintf(b, "%s[%d]:", label, i)
		for _, p := range line {
			b.WriteString(passengerDigest(e, p))
			b.WriteByte('|')
		}
		b.WriteByte('\n')
	}
}

// stateDigest flattens the engine's live state into a comparable string.
func stateDigest(e *Engine) string {
	var b strings.Builder
	fmt.Fprintf(&b, "interval=%d\n", e.CurrentInterval())

	linesDigest(e, "ticket", e.ticketLines, &b)
	linesDigest(e, "ticketDone", e.completedTicketLines, &b)
	linesDigest(e, "cp", e.checkpointLines, &b)
	linesDigest(e, "cpDone", e.completedCheckpointLines, &b)
	linesDigest(e, "hold", e.holdRoomLines, &b)

	fmt.Fprintf(&b, "progress=%v\n", e.counterProgress)
	fmt.Fprintf(&b, "serviceEnd=%v\n", e.checkpointServiceEndAbs)

	for _, pending := range []map[int][]*Passenger{e.pendingToTicket, e.pendingToCheckpoint, e.pendingToHold} {
		keys := make([]int, 0, len(pending))
		for k := range pending {
			keys = append(keys, k)
		}
		sort.Ints(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "pend[%d]:", k)
			for _, p := range pending[k] {
				b.WriteString(passengerDigest(e, p))
				b.WriteByte('|')
			}
			b.WriteByte('\n')
		}
		b.WriteString(";\n")
	}

	for k := 0; k <= e.CurrentInterval(); k++ {
		fmt.Fprintf(&b, "totals[%d]=%d,%d,%d,%d\n", k,
			e.TicketQueuedAtInterval(k), e.CheckpointQueuedAtInterval(k),
			e.HoldRoomTotalAtInterval(k), e.HeldUpsAtInterval(k))
	}
	return b.String()
}

// sumCounts totals a per-flight counter map.
func sumCounts(m map[*Flight]int) int {
	total := 0
	for _, v := range m {
		total += v
	}
	return total
}

// sumHistory totals one flight's counter across all recorded intervals.
func sumHistory(hist []map[*Flight]int, f *Flight) int {
	total := 0
	for _, m := range hist {
		total += m[f]
	}
	return total
}

// livePassengerCount implements the conservation census: queues, pending
// maps, checkpoint serving slots, and hold rooms. Staging lists are views of
// the pending maps and are deliberately not counted.
func livePassengerCount(e *Engine) int {
	n := 0
	for _, line := range e.ticketLines {
		n += len(line)
	}
	for _, line := range e.checkpointLines {
		n += len(line)
	}
	for _, room := range e.holdRoomLines {
		n += len(room)
	}
	for _, pending := range []map[int][]*Passenger{e.pendingToTicket, e.pendingToCheckpoint, e.pendingToHold} {
		for _, list := range pending {
			n += len(list)
		}
	}
	for _, p := range e.checkpointServing {
		if p != nil {
			n++
		}
	}
	return n
}
