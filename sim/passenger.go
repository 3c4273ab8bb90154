package sim

// Passenger is owned by the kernel from creation to terminal state (in a
// hold room, missed, or purged at flight close). Queues and snapshots share
// passengers by pointer; records are never reallocated, so identity stays
// stable for the lifetime of every retained snapshot.
type Passenger struct {
	Flight      *Flight
	SpawnMinute int  // minutes since horizon start
	InPerson    bool // false = bought online, skips ticketing
	Missed      bool

	// Hold-room placement, -1 until admitted.
	HoldRoomIdx         int
	HoldRoomSeq         int // 1-based arrival order within the room
	HoldRoomEntryMinute int

	CheckpointEntryMinute int // -1 until the passenger joins a checkpoint queue
}

func newPassenger(f *Flight, spawnMinute int, inPerson bool) *Passenger {
	return &Passenger{
		Flight:                f,
		SpawnMinute:           spawnMinute,
		InPerson:              inPerson,
		HoldRoomIdx:           -1,
		HoldRoomSeq:           -1,
		HoldRoomEntryMinute:   -1,
		CheckpointEntryMinute: -1,
	}
}

// stampTable holds the absolute-second stamps for every live passenger.
// The stamps live here, keyed by passenger identity, rather than on the
// Passenger struct: a stamp is always set or always absent, and snapshot
// deep-copy reduces to copying six maps.
type stampTable struct {
	ticketQueueEnter     map[*Passenger]int
	ticketDone           map[*Passenger]int
	checkpointQueueEnter map[*Passenger]int
	checkpointStart      map[*Passenger]int
	checkpointDone       map[*Passenger]int
	holdEnter            map[*Passenger]int
}

func newStampTable() stampTable {
	return stampTable{
		ticketQueueEnter:     make(map[*Passenger]int),
		ticketDone:           make(map[*Passenger]int),
		checkpointQueueEnter: make(map[*Passenger]int),
		checkpointStart:      make(map[*Passenger]int),
		checkpointDone:       make(map[*Passenger]int),
		holdEnter:            make(map[*Passenger]int),
	}
}

func (s *stampTable) all() []map[*Passenger]int {
	return []map[*Passenger]int{
		s.ticketQueueEnter, s.ticketDone,
		s.checkpointQueueEnter, s.checkpointStart, s.checkpointDone,
		s.holdEnter,
	}
}

func (s *stampTable) clearPassenger(p *Passenger) {
	for _, m := range s.all() {
		delete(m, p)
	}
}

func (s *stampTable) clearFlight(f *Flight) {
	for _, m := range s.all() {
		for p := range m {
			if p.Flight == f {
				delete(m, p)
			}
		}
	}
}

func (s *stampTable) clearMissed() {
	for _, m := range s.all() {
		for p := range m {
			if p.Missed {
				delete(m, p)
			}
		}
	}
}

func (s *stampTable) clear() {
	for _, m := range s.all() {
		for p := range m {
			delete(m, p)
		}
	}
}

func (s *stampTable) copy() stampTable {
	return stampTable{
		ticketQueueEnter:     copyStampMap(s.ticketQueueEnter),
		ticketDone:           copyStampMap(s.ticketDone),
		checkpointQueueEnter: copyStampMap(s.checkpointQueueEnter),
		checkpointStart:      copyStampMap(s.checkpointStart),
		checkpointDone:       copyStampMap(s.checkpointDone),
		holdEnter:            copyStampMap(s.holdEnter),
	}
}

func (s *stampTable) restore(from stampTable) {
	restoreStampMap(s.ticketQueueEnter, from.ticketQueueEnter)
	restoreStampMap(s.ticketDone, from.ticketDone)
	restoreStampMap(s.checkpointQueueEnter, from.checkpointQueueEnter)
	restoreStampMap(s.checkpointStart, from.checkpointStart)
	restoreStampMap(s.checkpointDone, from.checkpointDone)
	restoreStampMap(s.holdEnter, from.holdEnter)
}

func copyStampMap(m map[*Passenger]int) map[*Passenger]int {
	out := make(map[*Passenger]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func restoreStampMap(dst, src map[*Passenger]int) {
	for k := range dst {
		delete(dst, k)
	}
	for k, v := range src {
		dst[k] = v
	}
}

// PassengerStamps is the read-only view of one passenger's absolute-second
// stamps. A field is -1 when the stamp is absent.
type PassengerStamps struct {
	TicketQueueEnterAbs     int
	TicketDoneAbs           int
	CheckpointQueueEnterAbs int
	CheckpointStartAbs      int
	CheckpointDoneAbs       int
	HoldEnterAbs            int
}

func lookupStamp(m map[*Passenger]int, p *Passenger) int {
	if v, ok := m[p]; ok {
		return v
	}
	return -1
}
