package sim

// closedLaneServiceSeconds stands in for "infinite" service time on a lane
// with rate 0. It matches 3600 seconds divided by the minimum representable
// rate, keeping backlog arithmetic in ordinary int range.
const closedLaneServiceSeconds = 36_000_000

// checkpointServiceSeconds returns the fixed service duration for one
// passenger on the given lane.
func (e *Engine) checkpointServiceSeconds(lane int) int {
	if lane < 0 || lane >= len(e.checkpoints) {
		return closedLaneServiceSeconds
	}
	return e.checkpoints[lane].ServiceSeconds()
}

// pickCheckpointLaneAt selects the lane with the minimal time backlog at the
// given absolute second:
//
//	backlog(c) = remainingService(c) + nonMissedQueued(c) × serviceSeconds(c)
//
// A closed lane (rate 0) is charged one extra closed-lane service, so it is
// picked only when every lane is closed. Ties break to the smaller
// non-missed queue, then the lower lane index.
// Lanes are scanned in ascending index order, so the result is deterministic
// for equal inputs.
func (e *Engine) pickCheckpointLaneAt(absSec int) int {
	best := 0
	bestLoad := int64(-1)
	bestQueued := 0

	for c := range e.checkpoints {
		svc := int64(e.checkpointServiceSeconds(c))

		rem := int64(0)
		if end := e.checkpointServiceEndAbs[c]; end > absSec {
			rem = int64(end - absSec)
		}

		queued := e.nonMissedQueued(c)
		load := rem + int64(queued)*svc
		if c < len(e.checkpoints) && e.checkpoints[c].RatePerHour <= 0 {
			// A closed lane never finishes anyone: charge it one more
			// service so it loses to every open lane.
			load += svc
		}

		if bestLoad < 0 || load < bestLoad {
			best, bestLoad, bestQueued = c, load, queued
			continue
		}
		if load == bestLoad && queued < bestQueued {
			best, bestQueued = c, queued
		}
	}
	return best
}

func (e *Engine) nonMissedQueued(lane int) int {
	n := 0
	for _, p := range e.checkpointLines[lane] {
		if p != nil && !p.Missed {
			n++
		}
	}
	return n
}
