package models

import (
	"time"

	"github.com/launchmap/backend/internal/estimator"
)

// StoreAnalysis is one persisted brand-spy result. Re-analyzing the same
// record overwrites the estimate fields; last write wins.
type StoreAnalysis struct {
	ID           string                    `json:"id"`
	UserID       string                    `json:"user_id"`
	StoreURL     string                    `json:"store_url"`
	StoreName    string                    `json:"store_name"`
	ThemeName    string                    `json:"theme_name"`
	QualityScore float64                   `json:"quality_score"`
	ScrapeFailed bool                      `json:"scrape_failed"`
	Estimate     estimator.RevenueEstimate `json:"estimate"`
	CreatedAt    time.Time                 `json:"created_at"`
	UpdatedAt    time.Time                 `json:"updated_at"`
}

// Brand is a user's brand identity record from the launch flow.
type Brand struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	TargetAudience string    `json:"target_audience"`
	PrimaryColor   string    `json:"primary_color"`
	SecondaryColor string    `json:"secondary_color"`
	CreatedAt      time.Time `json:"created_at"`
}

// MarketingStrategy stores AI-generated strategy text for a brand.
type MarketingStrategy struct {
	ID        string    `json:"id"`
	BrandID   string    `json:"brand_id"`
	Content   string    `json:"content"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfitReport is a stored profitability calculation.
type ProfitReport struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	ProductName    string    `json:"product_name"`
	SellingPrice   float64   `json:"selling_price"`
	UnitCost       float64   `json:"unit_cost"`
	ShippingCost   float64   `json:"shipping_cost"`
	FeeRate        float64   `json:"fee_rate"`
	FixedCosts     float64   `json:"fixed_costs"`
	MarginPerUnit  float64   `json:"margin_per_unit"`
	MarginPercent  float64   `json:"margin_percent"`
	BreakEvenUnits int       `json:"break_even_units"`
	CreatedAt      time.Time `json:"created_at"`
}
