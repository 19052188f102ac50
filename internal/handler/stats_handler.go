package handler

import (
	"strconv"

	"go-pos-farmstall/internal/service"

	"github.com/gofiber/fiber/v2"
)

type StatsHandler struct {
	service service.StatsService
}

func NewStatsHandler(s service.StatsService) *StatsHandler {
	return &StatsHandler{service: s}
}

// GetTodayStats returns today's sales summary.
// Query params: top (bound for the top-products ranking, default 10)
func (h *StatsHandler) GetTodayStats(c *fiber.Ctx) error {
	topN, err := strconv.Atoi(c.Query("top", "10"))
	if err != nil || topN <= 0 {
		topN = 10
	}

	stats, err := h.service.TodayStats(topN)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch stats"})
	}

	return c.JSON(stats)
}
