package trends

import (
	"strconv"
	"time"

	"github.com/launchmap/backend/internal/estimator"
	"github.com/launchmap/backend/internal/metrics"
)

// TrackedCategory is one row of the trend-scanner dashboard.
type TrackedCategory struct {
	Name         string  `json:"name"`
	Weight       string  `json:"weight"`
	CurrentScore int     `json:"current_score"`
	FutureScore  int     `json:"future_score"`
	Momentum     string  `json:"momentum"`
	OffSeason    bool    `json:"off_season"`
	PriceMin     float64 `json:"price_min"`
	PriceMax     float64 `json:"price_max"`
}

// defaultCategories is the fixed scanner watchlist.
var defaultCategories = []string{
	"hoodie",
	"sweatshirt",
	"tshirt",
	"jacket",
	"cap",
	"pants",
}

type Service struct {
	sim *estimator.Simulator
}

func NewService(sim *estimator.Simulator) *Service {
	return &Service{sim: sim}
}

// Forecast runs the deterministic simulator for one category. A zero score
// means "derive the current score from the seed" so dashboard charts render
// without prior state.
func (s *Service) Forecast(seed string, baseScore float64, category string, leadTimeDays int) estimator.Forecast {
	if baseScore <= 0 {
		baseScore = ScoreFromSeed(seed + category)
	}

	metrics.ForecastRequests.WithLabelValues(strconv.Itoa(leadTimeDays)).Inc()

	return s.sim.Simulate(seed, baseScore, category, leadTimeDays)
}

// Scan produces the watchlist with 30-day projections for each category.
func (s *Service) Scan(seed string) []TrackedCategory {
	return s.scanAt(time.Now(), seed)
}

func (s *Service) scanAt(now time.Time, seed string) []TrackedCategory {
	out := make([]TrackedCategory, 0, len(defaultCategories))

	for _, cat := range defaultCategories {
		score := ScoreFromSeed(seed + cat)
		fc := s.sim.SimulateAt(now, seed+cat, score, cat, 30)

		out = append(out, TrackedCategory{
			Name:         cat,
			Weight:       estimator.ClassifyCategory(cat).String(),
			CurrentScore: fc.CurrentScore,
			FutureScore:  fc.FutureScore,
			Momentum:     momentum(fc.CurrentScore, fc.FutureScore),
			OffSeason:    fc.OffSeason,
			PriceMin:     fc.PriceMin,
			PriceMax:     fc.PriceMax,
		})
	}

	return out
}

// ScoreFromSeed maps a seed string to a stable trend score in [35,90),
// using the same rolling-hash scheme as the simulator noise.
func ScoreFromSeed(seed string) float64 {
	var h int32
	for _, r := range seed {
		h = h*31 + int32(r)
	}
	if h < 0 {
		h = -h
	}
	return float64(35 + h%55)
}

func momentum(current, future int) string {
	switch {
	case future > current+2:
		return "rising"
	case future < current-2:
		return "falling"
	default:
		return "stable"
	}
}
