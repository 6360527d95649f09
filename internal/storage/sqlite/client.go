package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/launchmap/backend/internal/storage/models"
	"github.com/launchmap/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS store_analyses (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		store_url TEXT NOT NULL,
		store_name TEXT,
		theme_name TEXT,
		quality_score REAL NOT NULL,
		scrape_failed INTEGER DEFAULT 0,
		monthly_visits REAL,
		conversion_rate REAL,
		average_order_value REAL,
		monthly_revenue REAL,
		daily_revenue REAL,
		monthly_orders INTEGER,
		product_count INTEGER,
		country TEXT,
		revenue_history TEXT,
		traffic_history TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_analyses_user ON store_analyses(user_id);
	CREATE INDEX IF NOT EXISTS idx_analyses_url ON store_analyses(store_url);
	CREATE INDEX IF NOT EXISTS idx_analyses_updated ON store_analyses(updated_at);

	CREATE TABLE IF NOT EXISTS brands (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		category TEXT,
		target_audience TEXT,
		primary_color TEXT,
		secondary_color TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_brands_user ON brands(user_id);

	CREATE TABLE IF NOT EXISTS marketing_strategies (
		id TEXT PRIMARY KEY,
		brand_id TEXT NOT NULL,
		content TEXT NOT NULL,
		model TEXT,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (brand_id) REFERENCES brands(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_strategies_brand ON marketing_strategies(brand_id);

	CREATE TABLE IF NOT EXISTS profit_reports (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		product_name TEXT,
		selling_price REAL NOT NULL,
		unit_cost REAL NOT NULL,
		shipping_cost REAL,
		fee_rate REAL,
		fixed_costs REAL,
		margin_per_unit REAL,
		margin_percent REAL,
		break_even_units INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_profit_user ON profit_reports(user_id);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

// UpsertAnalysis creates the record or overwrites its estimate fields.
// Re-analysis keeps the original created_at; only updated_at moves.
func (c *Client) UpsertAnalysis(a *models.StoreAnalysis) error {
	revHistory, _ := json.Marshal(a.Estimate.MonthlyRevenueHistory)
	trafHistory, _ := json.Marshal(a.Estimate.MonthlyTrafficHistory)

	query := `
		INSERT INTO store_analyses (id, user_id, store_url, store_name, theme_name, quality_score,
			scrape_failed, monthly_visits, conversion_rate, average_order_value, monthly_revenue,
			daily_revenue, monthly_orders, product_count, country, revenue_history, traffic_history,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			store_name = excluded.store_name,
			theme_name = excluded.theme_name,
			quality_score = excluded.quality_score,
			scrape_failed = excluded.scrape_failed,
			monthly_visits = excluded.monthly_visits,
			conversion_rate = excluded.conversion_rate,
			average_order_value = excluded.average_order_value,
			monthly_revenue = excluded.monthly_revenue,
			daily_revenue = excluded.daily_revenue,
			monthly_orders = excluded.monthly_orders,
			product_count = excluded.product_count,
			country = excluded.country,
			revenue_history = excluded.revenue_history,
			traffic_history = excluded.traffic_history,
			updated_at = excluded.updated_at
	`

	scrapeFailed := 0
	if a.ScrapeFailed {
		scrapeFailed = 1
	}

	_, err := c.db.Exec(
		query,
		a.ID,
		a.UserID,
		a.StoreURL,
		a.StoreName,
		a.ThemeName,
		a.QualityScore,
		scrapeFailed,
		a.Estimate.EstimatedMonthlyVisits,
		a.Estimate.ConversionRate,
		a.Estimate.AverageOrderValue,
		a.Estimate.EstimatedMonthlyRevenue,
		a.Estimate.EstimatedDailyRevenue,
		a.Estimate.EstimatedMonthlyOrders,
		a.Estimate.ProductCount,
		a.Estimate.Country,
		string(revHistory),
		string(trafHistory),
		a.CreatedAt.Unix(),
		a.UpdatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to upsert analysis: %w", err)
	}

	logger.Info("Analysis stored",
		zap.String("analysis_id", a.ID),
		zap.String("store_url", a.StoreURL),
		zap.Float64("quality_score", a.QualityScore),
	)

	return nil
}

func (c *Client) GetAnalysis(id string) (*models.StoreAnalysis, error) {
	query := `
		SELECT id, user_id, store_url, store_name, theme_name, quality_score, scrape_failed,
			monthly_visits, conversion_rate, average_order_value, monthly_revenue, daily_revenue,
			monthly_orders, product_count, country, revenue_history, traffic_history,
			created_at, updated_at
		FROM store_analyses WHERE id = ?
	`

	a, err := scanAnalysis(c.db.QueryRow(query, id))
	if err != nil && errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (c *Client) ListAnalyses(userID string, limit int) ([]models.StoreAnalysis, error) {
	query := `
		SELECT id, user_id, store_url, store_name, theme_name, quality_score, scrape_failed,
			monthly_visits, conversion_rate, average_order_value, monthly_revenue, daily_revenue,
			monthly_orders, product_count, country, revenue_history, traffic_history,
			created_at, updated_at
		FROM store_analyses
		WHERE user_id = ?
		ORDER BY updated_at DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var analyses []models.StoreAnalysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, *a)
	}

	return analyses, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAnalysis(row rowScanner) (*models.StoreAnalysis, error) {
	var a models.StoreAnalysis
	var scrapeFailed int
	var revHistory, trafHistory string
	var createdAt, updatedAt int64

	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.StoreURL,
		&a.StoreName,
		&a.ThemeName,
		&a.QualityScore,
		&scrapeFailed,
		&a.Estimate.EstimatedMonthlyVisits,
		&a.Estimate.ConversionRate,
		&a.Estimate.AverageOrderValue,
		&a.Estimate.EstimatedMonthlyRevenue,
		&a.Estimate.EstimatedDailyRevenue,
		&a.Estimate.EstimatedMonthlyOrders,
		&a.Estimate.ProductCount,
		&a.Estimate.Country,
		&revHistory,
		&trafHistory,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to scan analysis: %w", err)
	}

	a.ScrapeFailed = scrapeFailed == 1
	a.CreatedAt = time.Unix(createdAt, 0)
	a.UpdatedAt = time.Unix(updatedAt, 0)
	json.Unmarshal([]byte(revHistory), &a.Estimate.MonthlyRevenueHistory)
	json.Unmarshal([]byte(trafHistory), &a.Estimate.MonthlyTrafficHistory)

	return &a, nil
}

func (c *Client) InsertBrand(b *models.Brand) error {
	query := `
		INSERT INTO brands (id, user_id, name, category, target_audience, primary_color, secondary_color, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		b.ID,
		b.UserID,
		b.Name,
		b.Category,
		b.TargetAudience,
		b.PrimaryColor,
		b.SecondaryColor,
		b.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert brand: %w", err)
	}

	logger.Info("Brand stored", zap.String("brand_id", b.ID), zap.String("name", b.Name))
	return nil
}

func (c *Client) GetBrand(id string) (*models.Brand, error) {
	query := `SELECT id, user_id, name, category, target_audience, primary_color, secondary_color, created_at FROM brands WHERE id = ?`

	var b models.Brand
	var createdAt int64

	err := c.db.QueryRow(query, id).Scan(
		&b.ID,
		&b.UserID,
		&b.Name,
		&b.Category,
		&b.TargetAudience,
		&b.PrimaryColor,
		&b.SecondaryColor,
		&createdAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get brand: %w", err)
	}

	b.CreatedAt = time.Unix(createdAt, 0)
	return &b, nil
}

func (c *Client) InsertStrategy(s *models.MarketingStrategy) error {
	query := `INSERT INTO marketing_strategies (id, brand_id, content, model, created_at) VALUES (?, ?, ?, ?, ?)`

	_, err := c.db.Exec(query, s.ID, s.BrandID, s.Content, s.Model, s.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert strategy: %w", err)
	}

	return nil
}

func (c *Client) ListStrategies(brandID string) ([]models.MarketingStrategy, error) {
	query := `SELECT id, brand_id, content, model, created_at FROM marketing_strategies WHERE brand_id = ? ORDER BY created_at DESC`

	rows, err := c.db.Query(query, brandID)
	if err != nil {
		return nil, fmt.Errorf("failed to list strategies: %w", err)
	}
	defer rows.Close()

	var strategies []models.MarketingStrategy
	for rows.Next() {
		var s models.MarketingStrategy
		var createdAt int64

		if err := rows.Scan(&s.ID, &s.BrandID, &s.Content, &s.Model, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan strategy: %w", err)
		}

		s.CreatedAt = time.Unix(createdAt, 0)
		strategies = append(strategies, s)
	}

	return strategies, nil
}

func (c *Client) InsertProfitReport(r *models.ProfitReport) error {
	query := `
		INSERT INTO profit_reports (id, user_id, product_name, selling_price, unit_cost, shipping_cost,
			fee_rate, fixed_costs, margin_per_unit, margin_percent, break_even_units, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		r.ID,
		r.UserID,
		r.ProductName,
		r.SellingPrice,
		r.UnitCost,
		r.ShippingCost,
		r.FeeRate,
		r.FixedCosts,
		r.MarginPerUnit,
		r.MarginPercent,
		r.BreakEvenUnits,
		r.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert profit report: %w", err)
	}

	return nil
}
