package handlers

import (
	"context"
	"database/sql"
	"time"

	"github.com/fenilmodi00/flightme-backend/services"
	"github.com/fenilmodi00/flightme-backend/shared"
	"github.com/gofiber/fiber/v2"
)

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ConnectionStatsProvider exposes the connection pool of a database
type ConnectionStatsProvider interface {
	GetConnectionStats() sql.DBStats
}

type SystemHandler struct {
	Service  *services.FlightPriceService
	Database HealthChecker
}

func NewSystemHandler(service *services.FlightPriceService, database HealthChecker) *SystemHandler {
	return &SystemHandler{Service: service, Database: database}
}

func (h *SystemHandler) Health(c *fiber.Ctx) error {
	status := "ok"
	databaseStatus := "disabled"

	if h.Database != nil {
		databaseStatus = "ok"
		if err := h.Database.HealthCheck(c.UserContext()); err != nil {
			status = "degraded"
			databaseStatus = err.Error()
		}
	}

	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":    status,
		"database":  databaseStatus,
		"timestamp": time.Now().Unix(),
	})
}

// Metrics returns counters of the pipeline, analyzer and fetcher
func (h *SystemHandler) Metrics(c *fiber.Ctx) error {
	snapshots := []shared.MetricsSnapshot{
		h.Service.GetMetrics().Snapshot(),
		h.Service.Analyzer().GetMetrics().Snapshot(),
		h.Service.Fetcher().GetMetrics().Snapshot(),
	}

	data := fiber.Map{
		"services":          snapshots,
		"result_cache_size": h.Service.Analyzer().Cache().Size(),
		"sources":           h.Service.Fetcher().Sources(),
	}
	if provider, ok := h.Database.(ConnectionStatsProvider); ok {
		data["database_pool"] = poolStats(provider.GetConnectionStats())
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func poolStats(stats sql.DBStats) fiber.Map {
	return fiber.Map{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
		"max_idle_closed":      stats.MaxIdleClosed,
		"max_lifetime_closed":  stats.MaxLifetimeClosed,
	}
}
