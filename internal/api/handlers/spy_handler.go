package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/launchmap/backend/internal/analysis"
	"github.com/launchmap/backend/internal/cache/redis"
	"github.com/launchmap/backend/internal/metrics"
	"github.com/launchmap/backend/internal/storage/models"
	"github.com/launchmap/backend/pkg/logger"
	"github.com/launchmap/backend/pkg/utils"
)

const analysisCacheTTL = 6 * time.Hour

// SpyHandler serves the brand-spy flow: analyze a competitor store, refresh
// an existing analysis, list past analyses.
type SpyHandler struct {
	service      *analysis.Service
	cache        *redis.Client
	monthlyQuota int
}

func NewSpyHandler(service *analysis.Service, cache *redis.Client, monthlyQuota int) *SpyHandler {
	return &SpyHandler{
		service:      service,
		cache:        cache,
		monthlyQuota: monthlyQuota,
	}
}

type analyzeRequest struct {
	URL        string `json:"url"`
	UserID     string `json:"user_id"`
	AnalysisID string `json:"analysis_id"`
}

func (h *SpyHandler) Analyze(c *fiber.Ctx) error {
	var req analyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "URL is required",
		})
	}

	if blocked, resp := h.checkQuota(c, req.UserID); blocked {
		return resp
	}

	// A fresh cached analysis of the same store short-circuits the scrape.
	urlHash := utils.HashString(utils.NormalizeStoreURL(req.URL))
	if cached := h.cachedAnalysis(c.Context(), urlHash); cached != nil {
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"analysis": cached, "cached": true})
	}
	metrics.CacheMisses.WithLabelValues("analysis").Inc()

	result, err := h.service.Analyze(c.Context(), req.UserID, req.URL)
	if err != nil {
		return h.analysisError(c, err)
	}

	h.cacheAnalysis(c.Context(), urlHash, result)
	metrics.AnalysisTotal.WithLabelValues("created").Inc()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"analysis": result})
}

func (h *SpyHandler) Reanalyze(c *fiber.Ctx) error {
	var req analyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.AnalysisID == "" || req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "analysis_id and url are required",
		})
	}

	if blocked, resp := h.checkQuota(c, req.UserID); blocked {
		return resp
	}

	result, err := h.service.Reanalyze(c.Context(), req.AnalysisID, req.UserID, req.URL)
	if err != nil {
		return h.analysisError(c, err)
	}

	// Refresh replaces whatever the cache held for this store.
	urlHash := utils.HashString(utils.NormalizeStoreURL(req.URL))
	h.cacheAnalysis(c.Context(), urlHash, result)
	metrics.AnalysisTotal.WithLabelValues("refreshed").Inc()

	return c.JSON(fiber.Map{"analysis": result})
}

func (h *SpyHandler) ListAnalyses(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id is required",
		})
	}

	analyses, err := h.service.List(userID, c.QueryInt("limit"))
	if err != nil {
		logger.Error("Failed to list analyses", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list analyses",
		})
	}

	if analyses == nil {
		analyses = []models.StoreAnalysis{}
	}

	return c.JSON(fiber.Map{"analyses": analyses})
}

// checkQuota enforces the monthly plan limit. Without Redis the check is
// skipped; the rate limiter still caps burst traffic.
func (h *SpyHandler) checkQuota(c *fiber.Ctx, userID string) (bool, error) {
	if h.cache == nil || userID == "" || h.monthlyQuota <= 0 {
		return false, nil
	}

	month := time.Now().Format("2006-01")
	count, err := h.cache.IncrPlanUsage(c.Context(), userID, month)
	if err != nil {
		logger.Warn("Plan usage check unavailable", zap.Error(err))
		return false, nil
	}

	if count > int64(h.monthlyQuota) {
		metrics.QuotaRejections.Inc()
		return true, c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":     "Monthly analysis quota exceeded",
			"limit":     h.monthlyQuota,
			"remaining": 0,
		})
	}

	return false, nil
}

func (h *SpyHandler) analysisError(c *fiber.Ctx, err error) error {
	if errors.Is(err, analysis.ErrAnalysisNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Analysis not found",
		})
	}

	if errors.Is(err, analysis.ErrNotShopify) {
		metrics.AnalysisTotal.WithLabelValues("rejected").Inc()
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "Target does not look like a Shopify store",
		})
	}

	logger.Error("Analysis failed", zap.Error(err))
	metrics.AnalysisTotal.WithLabelValues("error").Inc()
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to analyze store",
	})
}

func (h *SpyHandler) cachedAnalysis(ctx context.Context, urlHash string) *models.StoreAnalysis {
	if h.cache == nil {
		return nil
	}

	cached, hit, err := h.cache.GetAnalysis(ctx, urlHash)
	if err != nil {
		logger.Warn("Analysis cache lookup failed", zap.Error(err))
		return nil
	}
	if !hit {
		return nil
	}

	metrics.CacheHits.WithLabelValues("analysis").Inc()
	return cached
}

func (h *SpyHandler) cacheAnalysis(ctx context.Context, urlHash string, a *models.StoreAnalysis) {
	if h.cache == nil {
		return
	}
	if err := h.cache.SetAnalysis(ctx, urlHash, a, analysisCacheTTL); err != nil {
		logger.Warn("Failed to cache analysis", zap.Error(err))
	}
}
