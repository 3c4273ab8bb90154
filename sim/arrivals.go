package sim

import (
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat/distuv"
)

// ArrivalCurveConfig selects and parameterizes the per-flight minute arrival
// curve. All *MinutesBeforeDeparture fields count backwards from departure.
type ArrivalCurveConfig struct {
	LegacyMode bool

	PeakMinutesBeforeDeparture        int
	LeftSigmaMinutes                  float64
	RightSigmaMinutes                 float64
	LateClampEnabled                  bool
	LateClampMinutesBeforeDeparture   int
	WindowStartMinutesBeforeDeparture int
	BoardingCloseMinutesBeforeDeparture int
}

// LegacyArrivalCurve returns the default configuration: the legacy centered
// Gaussian with the standard edited-mode parameters pre-filled so switching
// modes is a single flag flip.
func LegacyArrivalCurve() ArrivalCurveConfig {
	return ArrivalCurveConfig{
		LegacyMode:                          true,
		PeakMinutesBeforeDeparture:          90,
		LeftSigmaMinutes:                    30,
		RightSigmaMinutes:                   20,
		LateClampEnabled:                    false,
		LateClampMinutesBeforeDeparture:     DefaultBoardingCloseMinutes,
		WindowStartMinutesBeforeDeparture:   180,
		BoardingCloseMinutesBeforeDeparture: DefaultBoardingCloseMinutes,
	}
}

// ValidateAndClamp forces the configuration into its valid range in place and
// returns one warning per adjustment. Offsets are non-negative, the peak is
// kept inside the window, and sigmas have a floor of one minute.
func (c *ArrivalCurveConfig) ValidateAndClamp() []string {
	var warnings []string
	clampNonNeg := func(name string, v *int) {
		if *v < 0 {
			warnings = append(warnings, name+" was negative, clamped to 0")
			*v = 0
		}
	}
	clampNonNeg("window start", &c.WindowStartMinutesBeforeDeparture)
	clampNonNeg("boarding close", &c.BoardingCloseMinutesBeforeDeparture)
	clampNonNeg("late clamp", &c.LateClampMinutesBeforeDeparture)
	clampNonNeg("peak", &c.PeakMinutesBeforeDeparture)

	if c.WindowStartMinutesBeforeDeparture < c.BoardingCloseMinutesBeforeDeparture {
		warnings = append(warnings, "window start was inside boarding close, widened")
		c.WindowStartMinutesBeforeDeparture = c.BoardingCloseMinutesBeforeDeparture
	}
	if c.PeakMinutesBeforeDeparture > c.WindowStartMinutesBeforeDeparture {
		warnings = append(warnings, "peak clamped to window start")
		c.PeakMinutesBeforeDeparture = c.WindowStartMinutesBeforeDeparture
	}
	if c.PeakMinutesBeforeDeparture < c.BoardingCloseMinutesBeforeDeparture {
		warnings = append(warnings, "peak clamped to boarding close")
		c.PeakMinutesBeforeDeparture = c.BoardingCloseMinutesBeforeDeparture
	}
	if c.LeftSigmaMinutes < 1 || c.LeftSigmaMinutes != c.LeftSigmaMinutes {
		warnings = append(warnings, "left sigma raised to 1 minute")
		c.LeftSigmaMinutes = 1
	}
	if c.RightSigmaMinutes < 1 || c.RightSigmaMinutes != c.RightSigmaMinutes {
		warnings = append(warnings, "right sigma raised to 1 minute")
		c.RightSigmaMinutes = 1
	}
	return warnings
}

// legacyArrivalGenerator builds the legacy minute curve: a centered Gaussian
// over max(1, span−20) minutes, mean (T−1)/2, sigma max(1, T/6), normalized.
// All math is deterministic, so repeated runs are byte-identical.
type legacyArrivalGenerator struct {
	totalMinutes int
	minuteProbs  []float64
}

func newLegacyArrivalGenerator(arrivalSpanMinutes int) *legacyArrivalGenerator {
	total := max(1, arrivalSpanMinutes-20)

	mean := float64(total-1) / 2.0
	sigma := maxFloat(1.0, float64(total)/6.0)
	bell := distuv.Normal{Mu: mean, Sigma: sigma}

	probs := make([]float64, total)
	sum := 0.0
	for m := 0; m < total; m++ {
		probs[m] = bell.Prob(float64(m))
		sum += probs[m]
	}
	for m := range probs {
		probs[m] /= sum
	}
	return &legacyArrivalGenerator{totalMinutes: total, minuteProbs: probs}
}

// perMinute allocates exact integer arrivals per minute summing to planned.
func (g *legacyArrivalGenerator) perMinute(planned int) []int {
	return apportion(g.minuteProbs, max(0, planned))
}

// editedSplitGaussianCurve builds the edited-mode minute curve for one
// flight: a split Gaussian over [windowStart, boardingClose] minutes before
// departure, peaked at cfg.Peak, with separate left/right sigmas and an
// optional late clamp. The returned slice has one entry per minute of the
// arrival span; index i is the minute spawnOffset(flight)+i.
func editedSplitGaussianCurve(planned int, cfg ArrivalCurveConfig, arrivalSpanMinutes int) []int {
	span := max(1, arrivalSpanMinutes)
	planned = max(0, planned)

	left := distuv.Normal{Mu: 0, Sigma: cfg.LeftSigmaMinutes}
	right := distuv.Normal{Mu: 0, Sigma: cfg.RightSigmaMinutes}
	peak := float64(cfg.PeakMinutesBeforeDeparture)

	weights := make([]float64, span)
	for i := 0; i < span; i++ {
		minutesBeforeDep := span - i
		if minutesBeforeDep > cfg.WindowStartMinutesBeforeDeparture ||
			minutesBeforeDep < cfg.BoardingCloseMinutesBeforeDeparture {
			continue
		}
		if cfg.LateClampEnabled && minutesBeforeDep < cfg.LateClampMinutesBeforeDeparture {
			continue
		}
		x := float64(minutesBeforeDep) - peak
		if x >= 0 {
			// earlier than the peak: left tail
			weights[i] = left.Prob(x) / left.Prob(0)
		} else {
			weights[i] = right.Prob(x) / right.Prob(0)
		}
	}

	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if sum == 0 {
		// Degenerate window: put everything at the first minute of the span.
		out := make([]int, span)
		if planned > 0 {
			out[0] = planned
			logrus.Warnf("arrival curve window carries no mass; %d passengers placed at the first minute of the arrival span", planned)
		}
		return out
	}
	for i := range weights {
		weights[i] /= sum
	}
	return apportion(weights, planned)
}

// apportion assigns floor(p·total) to each bucket, then hands the remainder
// to the buckets with the largest fractional parts (ties broken by index).
func apportion(probs []float64, total int) []int {
	out := make([]int, len(probs))
	if total <= 0 || len(probs) == 0 {
		return out
	}
	fracs := make([]float64, len(probs))
	floorSum := 0
	for i, p := range probs {
		raw := p * float64(total)
		out[i] = int(raw)
		fracs[i] = raw - float64(out[i])
		floorSum += out[i]
	}
	remainder := total - floorSum

	idx := make([]int, len(probs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return fracs[idx[a]] > fracs[idx[b]]
	})
	for k := 0; k < remainder && k < len(idx); k++ {
		out[idx[k]]++
	}
	return out
}

// rebuildArrivalTable regenerates the per-flight minute arrival counts from
// the current curve configuration. Called at construction and whenever the
// configuration changes.
func (e *Engine) rebuildArrivalTable() {
	e.arrivalTable = make(map[*Flight][]int, len(e.flights))
	for _, f := range e.flights {
		var counts []int
		if e.curveCfg.LegacyMode {
			counts = e.legacyGen.perMinute(f.Planned())
			// The legacy curve covers span−20 minutes; pad so every table row
			// spans the full arrival window.
			for len(counts) < e.arrivalSpanMinutes {
				counts = append(counts, 0)
			}
		} else {
			counts = editedSplitGaussianCurve(f.Planned(), e.curveCfg, e.arrivalSpanMinutes)
		}
		e.arrivalTable[f] = counts
	}
}
