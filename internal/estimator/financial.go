package estimator

import (
	"math"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// RevenueEstimate is the persisted output of one analysis pass.
type RevenueEstimate struct {
	EstimatedMonthlyVisits  float64        `json:"estimated_monthly_visits"`
	ConversionRate          float64        `json:"conversion_rate"`
	AverageOrderValue       float64        `json:"average_order_value"`
	EstimatedMonthlyRevenue float64        `json:"estimated_monthly_revenue"`
	EstimatedDailyRevenue   float64        `json:"estimated_daily_revenue"`
	EstimatedMonthlyOrders  int            `json:"estimated_monthly_orders"`
	ProductCount            int            `json:"product_count"`
	Country                 string         `json:"country"`
	MonthlyRevenueHistory   []MonthlyValue `json:"monthly_revenue_history"`
	MonthlyTrafficHistory   []MonthlyValue `json:"monthly_traffic_history"`
}

type MonthlyValue struct {
	Month string  `json:"month"`
	Value float64 `json:"value"`
}

// EstimatorConfig fixes the tier tables. Every range is [Lo, Hi).
type EstimatorConfig struct {
	DefaultAOV float64

	// Visit tiers keyed by quality score, checked top down.
	VisitTiers []VisitTier

	LowVisibilityFactor  float64 // applied when 0 < visible products < 5
	HighVisibilityFactor float64 // applied when visible products >= 10

	MarketingApps map[string]bool
	ReviewApps    map[string]bool

	MarketingConvLo, MarketingConvHi float64
	ReviewConvLo, ReviewConvHi       float64
	BaseConvLo, BaseConvHi           float64

	HighAOVThreshold float64
	HighAOVFactor    float64
	LowAOVThreshold  float64
	LowAOVFactor     float64

	HistoryMonths int
}

type VisitTier struct {
	MinScore float64
	Lo, Hi   float64
}

func DefaultEstimatorConfig() EstimatorConfig {
	return EstimatorConfig{
		DefaultAOV: 80,

		VisitTiers: []VisitTier{
			{MinScore: 0.8, Lo: 20000, Hi: 50000},
			{MinScore: 0.6, Lo: 8000, Hi: 20000},
			{MinScore: 0.4, Lo: 3000, Hi: 8000},
			{MinScore: 0, Lo: 500, Hi: 3000},
		},

		LowVisibilityFactor:  0.6,
		HighVisibilityFactor: 1.2,

		MarketingApps: map[string]bool{
			"klaviyo":    true,
			"mailchimp":  true,
			"omnisend":   true,
			"privy":      true,
			"pushowl":    true,
			"postscript": true,
		},
		ReviewApps: map[string]bool{
			"judgeme": true,
			"loox":    true,
			"yotpo":   true,
			"stamped": true,
			"okendo":  true,
			"rivyo":   true,
		},

		MarketingConvLo: 0.020, MarketingConvHi: 0.030,
		ReviewConvLo: 0.015, ReviewConvHi: 0.025,
		BaseConvLo: 0.008, BaseConvHi: 0.015,

		HighAOVThreshold: 150,
		HighAOVFactor:    0.8,
		LowAOVThreshold:  50,
		LowAOVFactor:     1.1,

		HistoryMonths: 6,
	}
}

// Estimator derives traffic, conversion and revenue figures from scraped
// signals. The random source is injected so analyses can be replayed under
// test; production callers seed it per request.
type Estimator struct {
	cfg EstimatorConfig
	rng *rand.Rand
	now func() time.Time
}

func NewEstimator(cfg EstimatorConfig, rng *rand.Rand) *Estimator {
	return &Estimator{cfg: cfg, rng: rng, now: time.Now}
}

// Estimate never fails: missing inputs fall through to fixed defaults, so a
// fully failed scrape (facts nil, no storefront data) still yields a usable
// baseline record.
func (e *Estimator) Estimate(facts *StoreFacts, storefront []StorefrontProduct, qualityScore float64, country string) RevenueEstimate {
	aov := e.averageOrderValue(facts, storefront)
	visible := 0
	if facts != nil {
		visible = len(facts.Products)
	}

	visits := e.monthlyVisits(qualityScore, visible)
	conv := e.conversionRate(facts, aov)

	monthly := visits * conv * aov

	est := RevenueEstimate{
		EstimatedMonthlyVisits:  math.Round(visits),
		ConversionRate:          conv,
		AverageOrderValue:       math.Round(aov*100) / 100,
		EstimatedMonthlyRevenue: math.Round(monthly),
		EstimatedDailyRevenue:   math.Round(monthly/30*100) / 100,
		EstimatedMonthlyOrders:  int(math.Floor(visits * conv)),
		ProductCount:            e.productCount(visible, storefront),
		Country:                 country,
	}

	est.MonthlyRevenueHistory = e.history(monthly)
	est.MonthlyTrafficHistory = e.history(visits)

	return est
}

func (e *Estimator) averageOrderValue(facts *StoreFacts, storefront []StorefrontProduct) float64 {
	sum, n := 0.0, 0
	for _, p := range storefront {
		if p.Price != nil && *p.Price > 0 {
			sum += *p.Price
			n++
		}
	}
	if n > 0 {
		return sum / float64(n)
	}

	if facts != nil {
		for _, p := range facts.Products {
			if v, ok := ParsePrice(p.PriceRaw); ok {
				sum += v
				n++
			}
		}
		if n > 0 {
			return sum / float64(n)
		}
	}

	return e.cfg.DefaultAOV
}

var priceToken = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// ParsePrice extracts the first numeric token from locale-formatted price
// text. A comma decimal separator ("29,99€") parses the same as a dot.
func ParsePrice(raw string) (float64, bool) {
	token := priceToken.FindString(raw)
	if token == "" {
		return 0, false
	}
	token = strings.ReplaceAll(token, ",", ".")
	v, err := strconv.ParseFloat(token, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// productCount estimates the true catalog size, which usually exceeds what a
// home page shows.
func (e *Estimator) productCount(visible int, storefront []StorefrontProduct) int {
	if len(storefront) > 0 {
		if len(storefront) >= 50 {
			// The API pages out at 50; the real catalog is larger.
			return 100 + e.rng.Intn(100)
		}
		return len(storefront) * 2
	}

	if visible > 0 {
		count := visible * 15
		if count < 30 {
			count = 30
		}
		return count
	}

	return 30 + e.rng.Intn(100)
}

func (e *Estimator) monthlyVisits(qualityScore float64, visible int) float64 {
	visits := 0.0
	for _, tier := range e.cfg.VisitTiers {
		if qualityScore >= tier.MinScore {
			visits = tier.Lo + e.rng.Float64()*(tier.Hi-tier.Lo)
			break
		}
	}

	if visible > 0 && visible < 5 {
		visits *= e.cfg.LowVisibilityFactor
	} else if visible >= 10 {
		visits *= e.cfg.HighVisibilityFactor
	}

	return visits
}

func (e *Estimator) conversionRate(facts *StoreFacts, aov float64) float64 {
	lo, hi := e.cfg.BaseConvLo, e.cfg.BaseConvHi

	if facts != nil {
		hasMarketing, hasReview := false, false
		for _, app := range facts.Apps {
			key := strings.ToLower(app)
			if e.cfg.MarketingApps[key] {
				hasMarketing = true
			}
			if e.cfg.ReviewApps[key] {
				hasReview = true
			}
		}
		if hasMarketing {
			lo, hi = e.cfg.MarketingConvLo, e.cfg.MarketingConvHi
		} else if hasReview {
			lo, hi = e.cfg.ReviewConvLo, e.cfg.ReviewConvHi
		}
	}

	conv := lo + e.rng.Float64()*(hi-lo)

	if aov > e.cfg.HighAOVThreshold {
		conv *= e.cfg.HighAOVFactor
	} else if aov < e.cfg.LowAOVThreshold {
		conv *= e.cfg.LowAOVFactor
	}

	return conv
}

// history fabricates a plausible 6-month backfill around the current value:
// a reduced base with independent per-month jitter and a slight upward trend
// toward the present.
func (e *Estimator) history(current float64) []MonthlyValue {
	now := e.now()
	months := e.cfg.HistoryMonths
	out := make([]MonthlyValue, 0, months)

	base := current * 0.7
	for i := 0; i < months; i++ {
		label := now.AddDate(0, -(months - 1 - i), 0).Format("Jan")
		variation := e.rng.Float64()*0.4 - 0.2
		trend := float64(i) * 0.05
		value := base * (1 + variation + trend)
		if value < 0 {
			value = 0
		}
		out = append(out, MonthlyValue{Month: label, Value: math.Round(value)})
	}

	return out
}
