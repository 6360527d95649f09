package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/launchmap/backend/internal/profit"
	"github.com/launchmap/backend/internal/storage/models"
	"github.com/launchmap/backend/internal/storage/sqlite"
	"github.com/launchmap/backend/pkg/logger"
)

type ProfitHandler struct {
	db *sqlite.Client
}

func NewProfitHandler(db *sqlite.Client) *ProfitHandler {
	return &ProfitHandler{db: db}
}

type profitRequest struct {
	UserID      string `json:"user_id"`
	ProductName string `json:"product_name"`
	profit.Input
}

func (h *ProfitHandler) Calculate(c *fiber.Ctx) error {
	var req profitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.SellingPrice < 0 || req.UnitCost < 0 || req.ShippingCost < 0 ||
		req.FeeRate < 0 || req.FeeRate > 1 || req.FixedCosts < 0 || req.MonthlyVolume < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Costs must be non-negative and fee_rate between 0 and 1",
		})
	}

	result := profit.Calculate(req.Input)

	// The report is best-effort; a storage failure does not block the answer.
	if req.UserID != "" {
		report := &models.ProfitReport{
			ID:             uuid.New().String(),
			UserID:         req.UserID,
			ProductName:    req.ProductName,
			SellingPrice:   req.SellingPrice,
			UnitCost:       req.UnitCost,
			ShippingCost:   req.ShippingCost,
			FeeRate:        req.FeeRate,
			FixedCosts:     req.FixedCosts,
			MarginPerUnit:  result.MarginPerUnit,
			MarginPercent:  result.MarginPercent,
			BreakEvenUnits: result.BreakEvenUnits,
			CreatedAt:      time.Now().UTC(),
		}
		if err := h.db.InsertProfitReport(report); err != nil {
			logger.Warn("Failed to store profit report", zap.Error(err))
		}
	}

	return c.JSON(fiber.Map{"result": result})
}
