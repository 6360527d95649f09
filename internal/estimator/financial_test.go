package estimator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEstimator(seed int64) *Estimator {
	return NewEstimator(DefaultEstimatorConfig(), rand.New(rand.NewSource(seed)))
}

func floatPtr(v float64) *float64 { return &v }

func TestAverageOrderValueFromStorefrontPrices(t *testing.T) {
	e := newTestEstimator(1)

	storefront := []StorefrontProduct{
		{Price: floatPtr(20)},
		{Price: floatPtr(40)},
		{Price: nil},
	}

	est := e.Estimate(nil, storefront, 0.5, "US")
	assert.Equal(t, 30.0, est.AverageOrderValue)
}

func TestAverageOrderValueFallsBackToScrapedPrices(t *testing.T) {
	e := newTestEstimator(1)

	facts := &StoreFacts{Products: []ScrapedProduct{
		{PriceRaw: "29,99€"},
		{PriceRaw: "$40.01"},
		{PriceRaw: "sold out"},
	}}

	est := e.Estimate(facts, nil, 0.5, "EU")
	assert.Equal(t, 35.0, est.AverageOrderValue)
}

func TestAverageOrderValueDefaultsWhenNothingParses(t *testing.T) {
	e := newTestEstimator(1)

	est := e.Estimate(nil, nil, 0.5, "US")
	assert.Equal(t, 80.0, est.AverageOrderValue)
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"29,99€", 29.99, true},
		{"$19.50", 19.5, true},
		{"EUR 45", 45, true},
		{"From 120,00 kr", 120, true},
		{"sold out", 0, false},
		{"", 0, false},
	}

	for _, tc := range cases {
		got, ok := ParsePrice(tc.raw)
		assert.Equal(t, tc.ok, ok, "raw %q", tc.raw)
		if tc.ok {
			assert.InDelta(t, tc.want, got, 1e-9, "raw %q", tc.raw)
		}
	}
}

func TestEstimateRevenueIdentityHolds(t *testing.T) {
	e := newTestEstimator(7)

	est := e.Estimate(fullFacts(), nil, 0.9, "US")

	require.Greater(t, est.EstimatedMonthlyRevenue, 0.0)
	assert.InDelta(t, est.EstimatedMonthlyRevenue,
		est.EstimatedMonthlyVisits*est.ConversionRate*est.AverageOrderValue,
		est.EstimatedMonthlyRevenue*0.01)
	assert.InDelta(t, est.EstimatedMonthlyRevenue/30, est.EstimatedDailyRevenue, 1)
}

func TestEstimateVisitTiersRespectScore(t *testing.T) {
	// Ten visible products trigger the high-visibility multiplier, so the
	// raw tier range is scaled by 1.2 on both ends.
	facts := fullFacts()

	for seed := int64(0); seed < 20; seed++ {
		e := newTestEstimator(seed)
		est := e.Estimate(facts, nil, 0.85, "US")
		assert.GreaterOrEqual(t, est.EstimatedMonthlyVisits, 20000*1.2)
		assert.Less(t, est.EstimatedMonthlyVisits, 50000*1.2+1)
	}

	for seed := int64(0); seed < 20; seed++ {
		e := newTestEstimator(seed)
		est := e.Estimate(facts, nil, 0.1, "US")
		assert.GreaterOrEqual(t, est.EstimatedMonthlyVisits, 500*1.2)
		assert.Less(t, est.EstimatedMonthlyVisits, 3000*1.2+1)
	}
}

func TestEstimateLowVisibilityShrinksTraffic(t *testing.T) {
	sparse := &StoreFacts{Products: []ScrapedProduct{{PriceRaw: "30€"}, {PriceRaw: "35€"}}}

	for seed := int64(0); seed < 20; seed++ {
		e := newTestEstimator(seed)
		est := e.Estimate(sparse, nil, 0.5, "US")
		// Tier [3000,8000) scaled by 0.6.
		assert.GreaterOrEqual(t, est.EstimatedMonthlyVisits, 3000*0.6)
		assert.Less(t, est.EstimatedMonthlyVisits, 8000*0.6+1)
	}
}

func TestEstimateConversionBounds(t *testing.T) {
	marketing := &StoreFacts{Apps: []string{"Klaviyo"}}
	review := &StoreFacts{Apps: []string{"Loox"}}

	for seed := int64(0); seed < 20; seed++ {
		e := newTestEstimator(seed)
		// AOV defaults to 80, so no AOV adjustment applies.
		est := e.Estimate(marketing, nil, 0.5, "US")
		assert.GreaterOrEqual(t, est.ConversionRate, 0.020)
		assert.Less(t, est.ConversionRate, 0.030)

		e = newTestEstimator(seed)
		est = e.Estimate(review, nil, 0.5, "US")
		assert.GreaterOrEqual(t, est.ConversionRate, 0.015)
		assert.Less(t, est.ConversionRate, 0.025)
	}
}

func TestEstimateHighAOVSuppressesConversion(t *testing.T) {
	storefront := []StorefrontProduct{{Price: floatPtr(200)}}

	for seed := int64(0); seed < 20; seed++ {
		e := newTestEstimator(seed)
		est := e.Estimate(nil, storefront, 0.5, "US")
		assert.Less(t, est.ConversionRate, 0.015*0.8+1e-9)
	}
}

func TestEstimateProductCountTiers(t *testing.T) {
	e := newTestEstimator(3)

	small := make([]StorefrontProduct, 12)
	est := e.Estimate(nil, small, 0.5, "US")
	assert.Equal(t, 24, est.ProductCount)

	paged := make([]StorefrontProduct, 50)
	for seed := int64(0); seed < 20; seed++ {
		e := newTestEstimator(seed)
		est := e.Estimate(nil, paged, 0.5, "US")
		assert.GreaterOrEqual(t, est.ProductCount, 100)
		assert.Less(t, est.ProductCount, 200)
	}

	visible := &StoreFacts{Products: []ScrapedProduct{{}, {}, {}}}
	est = e.Estimate(visible, nil, 0.5, "US")
	assert.Equal(t, 45, est.ProductCount)

	one := &StoreFacts{Products: []ScrapedProduct{{}}}
	est = e.Estimate(one, nil, 0.5, "US")
	assert.Equal(t, 30, est.ProductCount)
}

func TestEstimateHistoriesHaveSixEntries(t *testing.T) {
	e := newTestEstimator(9)

	est := e.Estimate(fullFacts(), nil, 0.7, "US")

	require.Len(t, est.MonthlyRevenueHistory, 6)
	require.Len(t, est.MonthlyTrafficHistory, 6)
	for _, m := range est.MonthlyRevenueHistory {
		assert.NotEmpty(t, m.Month)
		assert.GreaterOrEqual(t, m.Value, 0.0)
	}
}

func TestEstimateCarriesCountryThrough(t *testing.T) {
	e := newTestEstimator(4)
	est := e.Estimate(nil, nil, 0.5, "FR")
	assert.Equal(t, "FR", est.Country)
}
