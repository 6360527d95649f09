package trends

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchmap/backend/internal/estimator"
)

func newTestService() *Service {
	return NewService(estimator.NewSimulator(estimator.DefaultSimulatorConfig()))
}

func TestScoreFromSeedStableAndBounded(t *testing.T) {
	a := ScoreFromSeed("nordicthreads.com" + "hoodie")
	b := ScoreFromSeed("nordicthreads.com" + "hoodie")

	assert.Equal(t, a, b)
	assert.GreaterOrEqual(t, a, 35.0)
	assert.Less(t, a, 90.0)
}

func TestScanCoversWatchlistDeterministically(t *testing.T) {
	svc := newTestService()
	now := time.Date(2026, time.February, 2, 12, 0, 0, 0, time.UTC)

	first := svc.scanAt(now, "dashboard")
	second := svc.scanAt(now, "dashboard")

	require.Len(t, first, len(defaultCategories))
	assert.Equal(t, first, second)

	for _, row := range first {
		assert.GreaterOrEqual(t, row.CurrentScore, 10)
		assert.LessOrEqual(t, row.CurrentScore, 98)
		assert.Contains(t, []string{"rising", "falling", "stable"}, row.Momentum)
		assert.Greater(t, row.PriceMax, row.PriceMin)
	}
}

func TestScanSeasonalityMatchesWeight(t *testing.T) {
	svc := newTestService()

	// February +30d lands in March: the sun season starts, so heavy
	// categories project off-season and light ones on-season.
	rows := svc.scanAt(time.Date(2026, time.February, 2, 12, 0, 0, 0, time.UTC), "seed")

	for _, row := range rows {
		if row.Weight == "heavy" {
			assert.True(t, row.OffSeason, "category %s", row.Name)
		} else {
			assert.False(t, row.OffSeason, "category %s", row.Name)
		}
	}
}

func TestForecastDerivesScoreWhenUnset(t *testing.T) {
	svc := newTestService()

	fc := svc.Forecast("store.com", 0, "tshirt", 30)

	require.NotEmpty(t, fc.Series)
	assert.GreaterOrEqual(t, fc.CurrentScore, 10)
	assert.LessOrEqual(t, fc.CurrentScore, 98)
}
