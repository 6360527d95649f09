package estimator

import (
	"math"
	"strings"
	"time"
)

// CategoryPrice pairs a category keyword with its launch base price. Ordered:
// the first keyword contained in the category name wins.
type CategoryPrice struct {
	Keyword string
	Price   float64
}

// ForecastPoint is one chart sample. Date is a day/month label for display;
// the point at the history/forecast boundary carries IsFuture=false.
type ForecastPoint struct {
	Date     string `json:"date"`
	Value    int    `json:"value"`
	IsFuture bool   `json:"is_future"`
}

// Forecast bundles the simulated series with its derived values.
type Forecast struct {
	Series           []ForecastPoint `json:"series"`
	TodayIndex       int             `json:"today_index"`
	CurrentScore     int             `json:"current_score"`
	FutureScore      int             `json:"future_score"`
	ReliabilityIndex float64         `json:"reliability_index"`
	OffSeason        bool            `json:"off_season"`
	PriceMin         float64         `json:"price_min"`
	PriceMax         float64         `json:"price_max"`
}

// SimulatorConfig fixes the noise, seasonal and pricing constants. A single
// damping scheme (BiasDamp on the seasonal term, NoiseDamp dividing the noise
// term) is applied at every call site.
type SimulatorConfig struct {
	HistoryDays  int
	HistorySlope float64

	MinScore, MaxScore float64

	BiasMagnitude float64
	BiasDamp      float64
	NoiseDamp     float64

	ReliabilityBase     float64
	ReliabilityPerMonth float64
	SeasonBonus         float64
	ReliabilityCeiling  float64

	BasePrices       []CategoryPrice
	DefaultBasePrice float64
	HeavyPriceFactor float64
	PriceSpreadLow   float64
	PriceSpreadHigh  float64
	OnSeasonMargin   float64
	OffSeasonMargin  float64
}

func DefaultSimulatorConfig() SimulatorConfig {
	return SimulatorConfig{
		HistoryDays:  30,
		HistorySlope: 0.2,

		MinScore: 10,
		MaxScore: 98,

		BiasMagnitude: 0.7,
		BiasDamp:      0.8,
		NoiseDamp:     3,

		ReliabilityBase:     93.5,
		ReliabilityPerMonth: 1.5,
		SeasonBonus:         1.2,
		ReliabilityCeiling:  99.9,

		BasePrices: []CategoryPrice{
			{"hoodie", 60},
			{"sweat", 55},
			{"jacket", 90},
			{"veste", 90},
			{"tshirt", 25},
			{"tee", 25},
			{"cap", 20},
			{"pants", 50},
		},
		DefaultBasePrice: 35,
		HeavyPriceFactor: 1.25,
		PriceSpreadLow:   0.85,
		PriceSpreadHigh:  1.25,
		OnSeasonMargin:   1.08,
		OffSeasonMargin:  0.92,
	}
}

// Simulator produces reproducible trend series: the same seed, score,
// category and lead time always yield byte-identical output for a given day.
// All randomness comes from a rolling string hash, never from a stateful RNG.
type Simulator struct {
	cfg SimulatorConfig
}

func NewSimulator(cfg SimulatorConfig) *Simulator {
	return &Simulator{cfg: cfg}
}

// Simulate projects the trend score leadTimeDays into the future, anchored at
// the current day. Lead time is clamped to [1, 90].
func (s *Simulator) Simulate(seed string, baseScore float64, category string, leadTimeDays int) Forecast {
	return s.SimulateAt(time.Now(), seed, baseScore, category, leadTimeDays)
}

// SimulateAt is Simulate with an explicit anchor day, for replay and tests.
func (s *Simulator) SimulateAt(now time.Time, seed string, baseScore float64, category string, leadTimeDays int) Forecast {
	if leadTimeDays < 1 {
		leadTimeDays = 1
	}
	if leadTimeDays > 90 {
		leadTimeDays = 90
	}

	weight := ClassifyCategory(category)
	today := now.Truncate(24 * time.Hour)

	series := make([]ForecastPoint, 0, s.cfg.HistoryDays+1+leadTimeDays)

	for i := s.cfg.HistoryDays; i >= 0; i-- {
		date := today.AddDate(0, 0, -i)
		value := baseScore - float64(i)*s.cfg.HistorySlope + s.noise(seed, date)
		series = append(series, ForecastPoint{
			Date:  dayLabel(date),
			Value: s.clampRound(value),
		})
	}

	running := baseScore
	for i := 1; i <= leadTimeDays; i++ {
		date := today.AddDate(0, 0, i)
		running += s.seasonalBias(weight, date.Month())*s.cfg.BiasDamp + s.noise(seed, date)/s.cfg.NoiseDamp
		running = math.Min(math.Max(running, s.cfg.MinScore), s.cfg.MaxScore)
		series = append(series, ForecastPoint{
			Date:     dayLabel(date),
			Value:    s.clampRound(running),
			IsFuture: true,
		})
	}

	todayIdx := s.cfg.HistoryDays
	releaseMonth := today.AddDate(0, 0, leadTimeDays).Month()
	offSeason := s.seasonalBias(weight, releaseMonth) < 0

	fc := Forecast{
		Series:           series,
		TodayIndex:       todayIdx,
		CurrentScore:     series[todayIdx].Value,
		FutureScore:      series[len(series)-1].Value,
		ReliabilityIndex: s.reliability(seed, today, leadTimeDays, offSeason),
		OffSeason:        offSeason,
	}
	fc.PriceMin, fc.PriceMax = s.priceRange(category, weight, offSeason)

	return fc
}

// noise maps seed+day to a reproducible value in [-3,3] using a polynomial
// rolling hash with 32-bit signed overflow semantics.
func (s *Simulator) noise(seed string, date time.Time) float64 {
	key := seed + date.Format("2006-01-02")
	var h int32
	for _, r := range key {
		h = h*31 + int32(r)
	}
	return noiseValue(h)
}

// noiseValue folds a hash into [-3,3]. The magnitude is taken on an int64
// because negating math.MinInt32 overflows int32.
func noiseValue(h int32) float64 {
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return float64(v%60)/10 - 3
}

// seasonalBias returns the fixed directional nudge for a garment weight in a
// given month. The sun season runs March through August; heavy pieces trend
// down then and up the rest of the year, light pieces the reverse.
func (s *Simulator) seasonalBias(weight CategoryWeight, month time.Month) float64 {
	sunSeason := month >= time.March && month <= time.August
	if weight == WeightHeavy {
		if sunSeason {
			return -s.cfg.BiasMagnitude
		}
		return s.cfg.BiasMagnitude
	}
	if sunSeason {
		return s.cfg.BiasMagnitude
	}
	return -s.cfg.BiasMagnitude
}

func (s *Simulator) reliability(seed string, today time.Time, leadTimeDays int, offSeason bool) float64 {
	rel := s.cfg.ReliabilityBase - float64(leadTimeDays)/30*s.cfg.ReliabilityPerMonth
	if !offSeason {
		rel += s.cfg.SeasonBonus
	}
	rel -= math.Abs(s.noise(seed, today.AddDate(0, 0, leadTimeDays))) / 2
	if rel > s.cfg.ReliabilityCeiling {
		rel = s.cfg.ReliabilityCeiling
	}
	return math.Round(rel*10) / 10
}

// priceRange recommends a launch price band for the category, widened around
// the base price and tilted by the seasonal margin.
func (s *Simulator) priceRange(category string, weight CategoryWeight, offSeason bool) (float64, float64) {
	base := s.cfg.DefaultBasePrice
	lower := strings.ToLower(category)
	for _, cp := range s.cfg.BasePrices {
		if strings.Contains(lower, cp.Keyword) {
			base = cp.Price
			break
		}
	}

	if weight == WeightHeavy {
		base *= s.cfg.HeavyPriceFactor
	}

	margin := s.cfg.OnSeasonMargin
	if offSeason {
		margin = s.cfg.OffSeasonMargin
	}

	min := roundTo5(base * margin * s.cfg.PriceSpreadLow)
	max := roundTo5(base * margin * s.cfg.PriceSpreadHigh)
	return min, max
}

func (s *Simulator) clampRound(v float64) int {
	v = math.Round(v)
	if v < s.cfg.MinScore {
		return int(s.cfg.MinScore)
	}
	if v > s.cfg.MaxScore {
		return int(s.cfg.MaxScore)
	}
	return int(v)
}

func dayLabel(date time.Time) string {
	return date.Format("02/01")
}

func roundTo5(v float64) float64 {
	return math.Round(v/5) * 5
}
