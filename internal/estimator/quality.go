package estimator

import (
	"math"
	"strings"
)

func normalizeTheme(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ScorerConfig fixes the factor weights and normalization caps of the quality
// scorer. The zero value is not usable; call DefaultScorerConfig.
type ScorerConfig struct {
	AppWeight     float64
	AppCap        int
	ProductWeight float64
	ProductCap    int
	ThemeWeight   float64
	NavWeight     float64
	NavCap        int
	DesignWeight  float64

	PremiumThemeScore  float64
	StandardThemeScore float64
	PremiumThemes      map[string]bool

	// Fallback is returned when facts are nil or no factor had data.
	Fallback float64
}

func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		AppWeight:     0.30,
		AppCap:        10,
		ProductWeight: 0.20,
		ProductCap:    20,
		ThemeWeight:   0.20,
		NavWeight:     0.15,
		NavCap:        8,
		DesignWeight:  0.15,

		PremiumThemeScore:  0.8,
		StandardThemeScore: 0.5,
		PremiumThemes: map[string]bool{
			"dawn":     true,
			"prestige": true,
			"impulse":  true,
			"impact":   true,
			"turbo":    true,
			"motion":   true,
			"flow":     true,
		},

		Fallback: 0.3,
	}
}

// Scorer turns partial scraped signals into a confidence score in [0,1].
type Scorer struct {
	cfg ScorerConfig
}

func NewScorer(cfg ScorerConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score is a weighted average over the factors that actually had data.
// Factors with no data contribute neither value nor weight, so a store with
// only two observable signals is judged on those two alone.
func (s *Scorer) Score(facts *StoreFacts) float64 {
	if facts == nil {
		return s.cfg.Fallback
	}

	total := 0.0
	weight := 0.0

	if n := len(facts.Apps); n > 0 {
		total += math.Min(float64(n)/float64(s.cfg.AppCap), 1) * s.cfg.AppWeight
		weight += s.cfg.AppWeight
	}

	if n := len(facts.Products); n > 0 {
		total += math.Min(float64(n)/float64(s.cfg.ProductCap), 1) * s.cfg.ProductWeight
		weight += s.cfg.ProductWeight
	}

	if facts.Theme.Name != "" {
		themeScore := s.cfg.StandardThemeScore
		if s.cfg.PremiumThemes[normalizeTheme(facts.Theme.Name)] {
			themeScore = s.cfg.PremiumThemeScore
		}
		total += themeScore * s.cfg.ThemeWeight
		weight += s.cfg.ThemeWeight
	}

	if n := len(facts.Navigation); n > 0 {
		total += math.Min(float64(n)/float64(s.cfg.NavCap), 1) * s.cfg.NavWeight
		weight += s.cfg.NavWeight
	}

	if facts.Colors.HasAny() && facts.Fonts.HasAny() {
		total += s.cfg.DesignWeight
		weight += s.cfg.DesignWeight
	}

	if weight == 0 {
		return s.cfg.Fallback
	}

	return total / weight
}
