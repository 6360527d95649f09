package analysis

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/launchmap/backend/internal/estimator"
	"github.com/launchmap/backend/internal/metrics"
	"github.com/launchmap/backend/internal/scraper"
	"github.com/launchmap/backend/internal/storage/models"
	"github.com/launchmap/backend/internal/storage/sqlite"
	"github.com/launchmap/backend/pkg/logger"
)

// ErrNotShopify is re-exported so handlers map it to a client error without
// importing the scraper.
var ErrNotShopify = scraper.ErrNotShopify

// ErrAnalysisNotFound marks a refresh of a record that does not exist.
var ErrAnalysisNotFound = errors.New("analysis not found")

// Service runs the full brand-spy pipeline: scrape, score, estimate, persist.
type Service struct {
	scraper *scraper.Scraper
	scorer  *estimator.Scorer
	estCfg  estimator.EstimatorConfig
	db      *sqlite.Client
}

func NewService(sc *scraper.Scraper, db *sqlite.Client) *Service {
	return &Service{
		scraper: sc,
		scorer:  estimator.NewScorer(estimator.DefaultScorerConfig()),
		estCfg:  estimator.DefaultEstimatorConfig(),
		db:      db,
	}
}

// Analyze scrapes the store and derives a fresh estimate. A scrape failure
// is not an error: the estimator runs on defaults and the record is flagged.
// Only a confirmed non-Shopify target aborts the analysis.
func (s *Service) Analyze(ctx context.Context, userID, storeURL string) (*models.StoreAnalysis, error) {
	now := time.Now()
	analysis := &models.StoreAnalysis{
		ID:        uuid.NewString(),
		UserID:    userID,
		StoreURL:  storeURL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.run(ctx, analysis); err != nil {
		return nil, err
	}

	if err := s.db.UpsertAnalysis(analysis); err != nil {
		return nil, err
	}

	return analysis, nil
}

// Reanalyze overwrites the estimate fields of an existing record with a
// fresh pass. The jitter re-rolls, so the new figures legitimately differ
// from the old ones even when the store has not changed.
func (s *Service) Reanalyze(ctx context.Context, analysisID, userID, storeURL string) (*models.StoreAnalysis, error) {
	existing, err := s.db.GetAnalysis(analysisID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrAnalysisNotFound
	}

	analysis := &models.StoreAnalysis{
		ID:        existing.ID,
		UserID:    userID,
		StoreURL:  storeURL,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: time.Now(),
	}

	if err := s.run(ctx, analysis); err != nil {
		return nil, err
	}

	if err := s.db.UpsertAnalysis(analysis); err != nil {
		return nil, err
	}

	return analysis, nil
}

func (s *Service) List(userID string, limit int) ([]models.StoreAnalysis, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.db.ListAnalyses(userID, limit)
}

func (s *Service) run(ctx context.Context, analysis *models.StoreAnalysis) error {
	start := time.Now()

	facts, err := s.scraper.ScrapeStore(ctx, analysis.StoreURL)
	if err != nil {
		if errors.Is(err, scraper.ErrNotShopify) {
			return err
		}
		// Degrade to a defaults-only estimate; the scrape boundary
		// swallows everything else.
		logger.Warn("Scrape failed, analyzing with defaults",
			zap.String("url", analysis.StoreURL),
			zap.Error(err),
		)
		metrics.ScrapeFailures.Inc()
		facts = nil
		analysis.ScrapeFailed = true
	}

	storefront, available := s.scraper.FetchStorefrontProducts(ctx, analysis.StoreURL)
	if !available {
		storefront = nil
	}

	score := s.scorer.Score(facts)
	metrics.QualityScore.Observe(score)

	est := estimator.NewEstimator(s.estCfg, rand.New(rand.NewSource(time.Now().UnixNano())))
	analysis.Estimate = est.Estimate(facts, storefront, score, scraper.DetectCountry(facts))
	analysis.QualityScore = score

	if facts != nil {
		analysis.StoreName = facts.StoreName
		analysis.ThemeName = facts.Theme.Name
	}

	metrics.AnalysisDuration.WithLabelValues("spy").Observe(time.Since(start).Seconds())

	logger.Info("Store analyzed",
		zap.String("analysis_id", analysis.ID),
		zap.String("url", analysis.StoreURL),
		zap.Float64("quality_score", score),
		zap.Float64("monthly_revenue", analysis.Estimate.EstimatedMonthlyRevenue),
	)

	return nil
}
