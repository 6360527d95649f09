package estimator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var anchor = time.Date(2026, time.May, 14, 9, 30, 0, 0, time.UTC)

func TestSimulateIsDeterministic(t *testing.T) {
	s := NewSimulator(DefaultSimulatorConfig())

	a := s.SimulateAt(anchor, "nordicthreads.com", 62, "hoodie", 60)
	b := s.SimulateAt(anchor, "nordicthreads.com", 62, "hoodie", 60)

	require.Equal(t, len(a.Series), len(b.Series))
	for i := range a.Series {
		assert.Equal(t, a.Series[i], b.Series[i], "index %d", i)
	}
	assert.Equal(t, a.FutureScore, b.FutureScore)
	assert.Equal(t, a.ReliabilityIndex, b.ReliabilityIndex)
	assert.Equal(t, a.PriceMin, b.PriceMin)
	assert.Equal(t, a.PriceMax, b.PriceMax)
}

func TestSimulateDifferentSeedsDiverge(t *testing.T) {
	s := NewSimulator(DefaultSimulatorConfig())

	a := s.SimulateAt(anchor, "store-a.com", 62, "hoodie", 60)
	b := s.SimulateAt(anchor, "store-b.com", 62, "hoodie", 60)

	assert.NotEqual(t, a.Series, b.Series)
}

func TestSimulateSeriesLength(t *testing.T) {
	s := NewSimulator(DefaultSimulatorConfig())

	for _, lead := range []int{30, 60, 90} {
		fc := s.SimulateAt(anchor, "seed", 50, "tee", lead)
		assert.Len(t, fc.Series, 30+1+lead, "lead %d", lead)
	}
}

func TestSimulateValuesStayBounded(t *testing.T) {
	s := NewSimulator(DefaultSimulatorConfig())

	// Extreme base scores push the running score against both clamps over
	// 90 days; every emitted value must stay inside [10,98].
	for _, base := range []float64{0, 5, 50, 97, 150} {
		fc := s.SimulateAt(anchor, "clamp-case", base, "hoodie", 90)
		for i, p := range fc.Series {
			assert.GreaterOrEqual(t, p.Value, 10, "base %v index %d", base, i)
			assert.LessOrEqual(t, p.Value, 98, "base %v index %d", base, i)
		}
	}
}

func TestSimulateTodayIndexSplitsHistoryFromForecast(t *testing.T) {
	s := NewSimulator(DefaultSimulatorConfig())

	fc := s.SimulateAt(anchor, "seed", 55, "tee", 30)

	require.Equal(t, 30, fc.TodayIndex)
	for i, p := range fc.Series {
		assert.Equal(t, i > fc.TodayIndex, p.IsFuture, "index %d", i)
	}
	assert.Equal(t, fc.Series[len(fc.Series)-1].Value, fc.FutureScore)
	assert.Equal(t, fc.Series[fc.TodayIndex].Value, fc.CurrentScore)
}

func TestSeasonalBiasSignFlips(t *testing.T) {
	s := NewSimulator(DefaultSimulatorConfig())

	for m := time.January; m <= time.December; m++ {
		heavy := s.seasonalBias(WeightHeavy, m)
		light := s.seasonalBias(WeightLight, m)

		if m >= time.March && m <= time.August {
			assert.Negative(t, heavy, "month %s", m)
			assert.Positive(t, light, "month %s", m)
		} else {
			assert.Positive(t, heavy, "month %s", m)
			assert.Negative(t, light, "month %s", m)
		}
		assert.Equal(t, heavy, -light)
	}
}

func TestNoiseBounded(t *testing.T) {
	s := NewSimulator(DefaultSimulatorConfig())

	date := anchor
	for i := 0; i < 365; i++ {
		v := s.noise("any-seed", date)
		assert.GreaterOrEqual(t, v, -3.0)
		assert.LessOrEqual(t, v, 3.0)
		date = date.AddDate(0, 0, 1)
	}
}

func TestNoiseValueHandlesMinInt32(t *testing.T) {
	// -MinInt32 overflows int32, so a hash landing exactly there must still
	// fold into range. 2147483648 % 60 = 8, so the value is 0.8 - 3.
	v := noiseValue(math.MinInt32)
	assert.InDelta(t, -2.2, v, 1e-9)
	assert.GreaterOrEqual(t, v, -3.0)
	assert.LessOrEqual(t, v, 3.0)
}

func TestReliabilityDropsWithLeadTime(t *testing.T) {
	s := NewSimulator(DefaultSimulatorConfig())

	short := s.SimulateAt(anchor, "seed", 60, "tee", 30)
	long := s.SimulateAt(anchor, "seed", 60, "tee", 90)

	assert.LessOrEqual(t, short.ReliabilityIndex, 99.9)
	assert.LessOrEqual(t, long.ReliabilityIndex, 99.9)
	// Same seed and season: only the per-month penalty and end-date jitter
	// differ, and the penalty dominates.
	assert.Greater(t, short.ReliabilityIndex, long.ReliabilityIndex-3)
}

func TestPriceRangeRounding(t *testing.T) {
	s := NewSimulator(DefaultSimulatorConfig())

	fc := s.SimulateAt(anchor, "seed", 60, "hoodie", 30)

	require.Greater(t, fc.PriceMax, fc.PriceMin)
	assert.Zero(t, int(fc.PriceMin)%5)
	assert.Zero(t, int(fc.PriceMax)%5)
}

func TestPriceRangeSeasonMargin(t *testing.T) {
	s := NewSimulator(DefaultSimulatorConfig())

	// May +30d lands in June: sun season, so a hoodie launch is off-season
	// and a tee launch is on-season.
	hoodie := s.SimulateAt(anchor, "seed", 60, "hoodie", 30)
	tee := s.SimulateAt(anchor, "seed", 60, "tee", 30)

	assert.True(t, hoodie.OffSeason)
	assert.False(t, tee.OffSeason)

	// Hoodie off-season: 60 * 1.25 * 0.92 = 69 -> spread 0.85/1.25, round 5.
	assert.Equal(t, 60.0, hoodie.PriceMin)
	assert.Equal(t, 85.0, hoodie.PriceMax)
}
