package profit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateMarginAndBreakEven(t *testing.T) {
	r := Calculate(Input{
		SellingPrice: 40,
		UnitCost:     12,
		ShippingCost: 4,
		FeeRate:      0.05, // 2.00 in fees
		FixedCosts:   1100,
	})

	assert.Equal(t, 18.0, r.CostPerUnit)
	assert.Equal(t, 22.0, r.MarginPerUnit)
	assert.Equal(t, 55.0, r.MarginPercent)
	assert.Equal(t, 50, r.BreakEvenUnits)
}

func TestCalculateMonthlyProfit(t *testing.T) {
	r := Calculate(Input{
		SellingPrice:  40,
		UnitCost:      12,
		ShippingCost:  4,
		FeeRate:       0.05,
		FixedCosts:    1100,
		MonthlyVolume: 100,
	})

	assert.Equal(t, 4000.0, r.MonthlyRevenue)
	assert.Equal(t, 1100.0, r.MonthlyProfit)
	assert.True(t, r.Profitable)
}

func TestCalculateBreakEvenRoundsUp(t *testing.T) {
	r := Calculate(Input{SellingPrice: 30, UnitCost: 20, FixedCosts: 95})

	// 95 / 10 margin = 9.5 -> selling 9 units still loses money.
	assert.Equal(t, 10, r.BreakEvenUnits)
}

func TestCalculateNegativeMargin(t *testing.T) {
	r := Calculate(Input{
		SellingPrice:  20,
		UnitCost:      25,
		MonthlyVolume: 50,
	})

	assert.Equal(t, -5.0, r.MarginPerUnit)
	assert.Equal(t, 0, r.BreakEvenUnits)
	assert.False(t, r.Profitable)
}

func TestCalculateZeroInputIsTotal(t *testing.T) {
	r := Calculate(Input{})

	assert.Equal(t, 0.0, r.MarginPerUnit)
	assert.Equal(t, 0.0, r.MarginPercent)
	assert.Equal(t, 0, r.BreakEvenUnits)
	assert.False(t, r.Profitable)
}
