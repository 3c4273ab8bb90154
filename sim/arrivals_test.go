package sim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLegacyCurve_SumsToPlanned(t *testing.T) {
	gen := newLegacyArrivalGenerator(60)

	for _, planned := range []int{0, 1, 7, 10, 123, 500} {
		counts := gen.perMinute(planned)
		require.Len(t, counts, 40, "span 60 → 40 curve minutes")
		sum := 0
		for _, c := range counts {
			require.GreaterOrEqual(t, c, 0)
			sum += c
		}
		require.Equal(t, planned, sum, "planned=%d", planned)
	}
}

func TestLegacyCurve_DegenerateSpanStillHasOneMinute(t *testing.T) {
	gen := newLegacyArrivalGenerator(5)
	counts := gen.perMinute(9)
	require.Len(t, counts, 1)
	require.Equal(t, 9, counts[0])
}

func TestLegacyCurve_Deterministic(t *testing.T) {
	a := newLegacyArrivalGenerator(90).perMinute(250)
	b := newLegacyArrivalGenerator(90).perMinute(250)
	require.Equal(t, a, b)
}

func TestApportion_RemainderGoesToLargestFractions(t *testing.T) {
	// 0.25·10 = 2.5 each; remainder 2 goes to the two largest fractional
	// parts, which all tie — index order wins.
	out := apportion([]float64{0.25, 0.25, 0.25, 0.25}, 10)
	require.Equal(t, []int{3, 3, 2, 2}, out)
}

func TestApportion_EmptyAndZero(t *testing.T) {
	require.Equal(t, []int{}, apportion([]float64{}, 5))
	require.Equal(t, []int{0, 0}, apportion([]float64{0.5, 0.5}, 0))
}

func TestEditedCurve_RespectsWindowAndClamp(t *testing.T) {
	cfg := ArrivalCurveConfig{
		LegacyMode:                          false,
		PeakMinutesBeforeDeparture:          90,
		LeftSigmaMinutes:                    30,
		RightSigmaMinutes:                   20,
		LateClampEnabled:                    true,
		LateClampMinutesBeforeDeparture:     45,
		WindowStartMinutesBeforeDeparture:   150,
		BoardingCloseMinutesBeforeDeparture: 20,
	}
	require.Empty(t, cfg.ValidateAndClamp())

	span := 180
	counts := editedSplitGaussianCurve(300, cfg, span)
	require.Len(t, counts, span)

	sum := 0
	for i, c := range counts {
		minutesBeforeDep := span - i
		if minutesBeforeDep > 150 || minutesBeforeDep < 45 {
			require.Zero(t, c, "mass outside window at %d min before departure", minutesBeforeDep)
		}
		sum += c
	}
	require.Equal(t, 300, sum)
}

func TestEditedCurve_PeakCarriesMostMass(t *testing.T) {
	cfg := LegacyArrivalCurve()
	cfg.LegacyMode = false
	require.Empty(t, cfg.ValidateAndClamp())

	span := 200
	counts := editedSplitGaussianCurve(1000, cfg, span)

	peakIdx := span - cfg.PeakMinutesBeforeDeparture
	for i, c := range counts {
		if c > counts[peakIdx] {
			t.Fatalf("minute %d carries %d > peak minute %d with %d", i, c, peakIdx, counts[peakIdx])
		}
	}
}

func TestArrivalCurveConfig_ValidateAndClamp(t *testing.T) {
	cfg := ArrivalCurveConfig{
		LegacyMode:                          false,
		PeakMinutesBeforeDeparture:          500,
		LeftSigmaMinutes:                    0,
		RightSigmaMinutes:                   -3,
		WindowStartMinutesBeforeDeparture:   120,
		BoardingCloseMinutesBeforeDeparture: -5,
		LateClampMinutesBeforeDeparture:     -1,
	}
	warnings := cfg.ValidateAndClamp()
	require.NotEmpty(t, warnings)

	require.Equal(t, 0, cfg.BoardingCloseMinutesBeforeDeparture)
	require.Equal(t, 0, cfg.LateClampMinutesBeforeDeparture)
	require.Equal(t, 120, cfg.PeakMinutesBeforeDeparture, "peak clamps to window start")
	require.Equal(t, 1.0, cfg.LeftSigmaMinutes)
	require.Equal(t, 1.0, cfg.RightSigmaMinutes)
}

func TestEngine_ArrivalTableConservation(t *testing.T) {
	cfg := singleFlightConfig(137, 0.83)
	e := NewEngine(cfg)
	f := e.Flights()[0]

	counts := e.ArrivalTable(f)
	require.Len(t, counts, 60, "table rows span the full arrival window")
	sum := 0
	for _, c := range counts {
		sum += c
	}
	require.Equal(t, f.Planned(), sum)
}

func TestEngine_SetArrivalCurveConfigIdempotent(t *testing.T) {
	e := NewEngine(singleFlightConfig(200, 1.0))
	f := e.Flights()[0]

	edited := LegacyArrivalCurve()
	edited.LegacyMode = false

	e.SetArrivalCurveConfig(edited)
	first := e.ArrivalTable(f)
	e.SetArrivalCurveConfig(edited)
	second := e.ArrivalTable(f)
	require.Equal(t, first, second)

	sum := 0
	for _, c := range second {
		sum += c
	}
	require.Equal(t, f.Planned(), sum)
}
