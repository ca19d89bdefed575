package handler

import (
	"strconv"

	"go-shoeroom/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
	errors  ErrorResponder
}

func NewDashboardHandler(s service.DashboardService, errors ErrorResponder) *DashboardHandler {
	return &DashboardHandler{service: s, errors: errors}
}

// GetSales returns units and revenue per day for charts
// Query params: days (default 7)
func (h *DashboardHandler) GetSales(c *fiber.Ctx) error {
	daysStr := c.Query("days", "7")
	days, err := strconv.Atoi(daysStr)
	if err != nil || days <= 0 {
		days = 7
	}

	data, err := h.service.GetSalesByDay(c.UserContext(), days)
	if err != nil {
		return h.errors.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// GetDashboardStats returns overview statistics
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats(c.UserContext())
	if err != nil {
		return h.errors.Respond(c, err)
	}

	return c.JSON(stats)
}
