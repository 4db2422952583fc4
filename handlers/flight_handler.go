package handlers

import (
	"context"

	"github.com/fenilmodi00/flightme-backend/models"
	"github.com/fenilmodi00/flightme-backend/services"
	"github.com/gofiber/fiber/v2"
)

// SearchHistory lists recent searches
type SearchHistory interface {
	RecentSearches(ctx context.Context, limit int) ([]models.SearchRecord, error)
}

type FlightHandler struct {
	Service *services.FlightPriceService
	Routes  *services.PopularRouteService
	History SearchHistory
}

func NewFlightHandler(service *services.FlightPriceService, routes *services.PopularRouteService, history SearchHistory) *FlightHandler {
	return &FlightHandler{Service: service, Routes: routes, History: history}
}

// Analyze returns the price analysis for ?origin=&destination=&date=
func (h *FlightHandler) Analyze(c *fiber.Ctx) error {
	result, err := h.Service.AnalyzeRoute(
		c.UserContext(),
		c.Query("origin"),
		c.Query("destination"),
		c.Query("date"),
		c.IP(),
	)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// Historical returns the chart series for ?origin=&destination=&date=
func (h *FlightHandler) Historical(c *fiber.Ctx) error {
	series, err := h.Service.HistoricalPrices(
		c.UserContext(),
		c.Query("origin"),
		c.Query("destination"),
		c.Query("date"),
	)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(series)
}

func (h *FlightHandler) PopularRoutes(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.Routes.Suggest(),
	})
}

func (h *FlightHandler) RecentSearches(c *fiber.Ctx) error {
	if h.History == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"error":   "search history is not available",
		})
	}

	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > 100 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "limit must be between 1 and 100",
		})
	}

	records, err := h.History.RecentSearches(c.UserContext(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    records,
	})
}
