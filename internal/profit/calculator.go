package profit

import "math"

// Input is one product's unit economics. FeeRate is the payment/platform fee
// as a fraction of the selling price; FixedCosts are monthly.
type Input struct {
	SellingPrice  float64 `json:"selling_price"`
	UnitCost      float64 `json:"unit_cost"`
	ShippingCost  float64 `json:"shipping_cost"`
	FeeRate       float64 `json:"fee_rate"`
	FixedCosts    float64 `json:"fixed_costs"`
	MonthlyVolume int     `json:"monthly_volume"`
}

type Result struct {
	RevenuePerUnit float64 `json:"revenue_per_unit"`
	CostPerUnit    float64 `json:"cost_per_unit"`
	MarginPerUnit  float64 `json:"margin_per_unit"`
	MarginPercent  float64 `json:"margin_percent"`
	BreakEvenUnits int     `json:"break_even_units"`
	MonthlyRevenue float64 `json:"monthly_revenue"`
	MonthlyProfit  float64 `json:"monthly_profit"`
	Profitable     bool    `json:"profitable"`
}

// Calculate derives margin and break-even figures. It is a total function:
// degenerate inputs (zero price, margin at or below zero) yield a result
// with Profitable=false and BreakEvenUnits=0 rather than an error.
func Calculate(in Input) Result {
	fees := in.SellingPrice * in.FeeRate
	costPerUnit := in.UnitCost + in.ShippingCost + fees
	margin := in.SellingPrice - costPerUnit

	result := Result{
		RevenuePerUnit: round2(in.SellingPrice),
		CostPerUnit:    round2(costPerUnit),
		MarginPerUnit:  round2(margin),
	}

	if in.SellingPrice > 0 {
		result.MarginPercent = round2(margin / in.SellingPrice * 100)
	}

	if margin > 0 {
		result.BreakEvenUnits = int(math.Ceil(in.FixedCosts / margin))
	}

	if in.MonthlyVolume > 0 {
		volume := float64(in.MonthlyVolume)
		result.MonthlyRevenue = round2(in.SellingPrice * volume)
		result.MonthlyProfit = round2(margin*volume - in.FixedCosts)
	}

	result.Profitable = margin > 0 && result.MonthlyProfit >= 0

	return result
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
