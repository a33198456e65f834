package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	config "github.com/harshit961695/unipost/configs"
	job "github.com/harshit961695/unipost/internal/jobs"
	"github.com/harshit961695/unipost/internal/service"
)

type AnalyticsHandler struct {
	cfg config.Config
	s   service.AnalyticsService
	agg *job.AnalyticsJob
}

func NewAnalyticsHandler(cfg config.Config, service service.AnalyticsService, agg *job.AnalyticsJob) *AnalyticsHandler {
	return &AnalyticsHandler{cfg: cfg, s: service, agg: agg}
}

func (h *AnalyticsHandler) Latest(c *fiber.Ctx) error {
	userID := GetUserID(c)

	latest, err := h.s.LatestSnapshot(c.Context(), userID)
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to load analytics",
		})
	}

	return c.Status(fiber.StatusOK).JSON(latest)
}

func (h *AnalyticsHandler) DashboardStats(c *fiber.Ctx) error {
	userID := GetUserID(c)

	stats, err := h.s.DashboardStats(c.Context(), userID)
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to load dashboard stats",
		})
	}

	return c.Status(fiber.StatusOK).JSON(stats)
}

// FetchAnalytics is the external trigger for the aggregation sweep,
// guarded by a shared secret instead of a user session.
func (h *AnalyticsHandler) FetchAnalytics(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader != "Bearer "+h.cfg.CronSecret {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	summary, err := h.agg.Aggregate(c.Context())
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Aggregation failed",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":           true,
		"processed_users":   summary.ProcessedUsers,
		"platforms_checked": summary.PlatformsChecked,
	})
}
