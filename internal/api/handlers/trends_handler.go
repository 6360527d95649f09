package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/launchmap/backend/internal/estimator"
	"github.com/launchmap/backend/internal/trends"
)

// Forecast horizons the dashboard offers.
var allowedLeadTimes = map[int]bool{30: true, 60: true, 90: true}

type TrendsHandler struct {
	service *trends.Service
}

func NewTrendsHandler(service *trends.Service) *TrendsHandler {
	return &TrendsHandler{service: service}
}

func (h *TrendsHandler) GetForecast(c *fiber.Ctx) error {
	category := c.Query("category")
	if category == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "category is required",
		})
	}

	leadTime := c.QueryInt("lead_time", 30)
	if !allowedLeadTimes[leadTime] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "lead_time must be 30, 60 or 90",
			"allowed": []int{30, 60, 90},
		})
	}

	seed := c.Query("seed", category)
	baseScore := c.QueryFloat("score", 0)

	forecast := h.service.Forecast(seed, baseScore, category, leadTime)

	return c.JSON(fiber.Map{
		"category": category,
		"weight":   estimator.ClassifyCategory(category).String(),
		"forecast": forecast,
	})
}

func (h *TrendsHandler) GetCategories(c *fiber.Ctx) error {
	seed := c.Query("seed", "launchmap")

	return c.JSON(fiber.Map{
		"categories": h.service.Scan(seed),
	})
}
