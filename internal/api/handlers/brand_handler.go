package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/launchmap/backend/internal/llm"
	"github.com/launchmap/backend/internal/storage/models"
	"github.com/launchmap/backend/internal/storage/sqlite"
	"github.com/launchmap/backend/pkg/logger"
)

type BrandHandler struct {
	db  *sqlite.Client
	llm *llm.Client
}

func NewBrandHandler(db *sqlite.Client, llmClient *llm.Client) *BrandHandler {
	return &BrandHandler{
		db:  db,
		llm: llmClient,
	}
}

type createBrandRequest struct {
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	Category       string `json:"category"`
	TargetAudience string `json:"target_audience"`
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
}

func (h *BrandHandler) CreateBrand(c *fiber.Ctx) error {
	var req createBrandRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Name == "" || req.Category == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "name and category are required",
		})
	}

	brand := &models.Brand{
		ID:             uuid.New().String(),
		UserID:         req.UserID,
		Name:           req.Name,
		Category:       req.Category,
		TargetAudience: req.TargetAudience,
		PrimaryColor:   req.PrimaryColor,
		SecondaryColor: req.SecondaryColor,
		CreatedAt:      time.Now().UTC(),
	}

	if err := h.db.InsertBrand(brand); err != nil {
		logger.Error("Failed to create brand", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create brand",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"brand": brand})
}

func (h *BrandHandler) GetBrand(c *fiber.Ctx) error {
	brand, err := h.db.GetBrand(c.Params("id"))
	if err != nil {
		logger.Error("Failed to load brand", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load brand",
		})
	}
	if brand == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Brand not found",
		})
	}

	strategies, err := h.db.ListStrategies(brand.ID)
	if err != nil {
		logger.Error("Failed to load strategies", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load brand",
		})
	}
	if strategies == nil {
		strategies = []models.MarketingStrategy{}
	}

	return c.JSON(fiber.Map{
		"brand":      brand,
		"strategies": strategies,
	})
}

func (h *BrandHandler) GenerateStrategy(c *fiber.Ctx) error {
	if h.llm == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Strategy generation is not configured",
		})
	}

	brand, err := h.db.GetBrand(c.Params("id"))
	if err != nil {
		logger.Error("Failed to load brand", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load brand",
		})
	}
	if brand == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Brand not found",
		})
	}

	content, err := h.llm.GenerateMarketingStrategy(c.Context(), brand)
	if err != nil {
		logger.Error("Strategy generation failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to generate strategy",
		})
	}

	strategy := &models.MarketingStrategy{
		ID:        uuid.New().String(),
		BrandID:   brand.ID,
		Content:   content,
		Model:     h.llm.Model(),
		CreatedAt: time.Now().UTC(),
	}

	if err := h.db.InsertStrategy(strategy); err != nil {
		logger.Error("Failed to store strategy", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store strategy",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"strategy": strategy})
}

type suggestIdentityRequest struct {
	Category string `json:"category"`
	Audience string `json:"audience"`
}

func (h *BrandHandler) SuggestIdentity(c *fiber.Ctx) error {
	if h.llm == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Identity suggestions are not configured",
		})
	}

	var req suggestIdentityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Category == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "category is required",
		})
	}

	suggestion, err := h.llm.SuggestBrandIdentity(c.Context(), req.Category, req.Audience)
	if err != nil {
		logger.Error("Identity suggestion failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to suggest brand identity",
		})
	}

	return c.JSON(fiber.Map{"suggestion": suggestion})
}
