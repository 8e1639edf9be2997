package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/deppfellow/shopping-list/internal/middleware"
	"github.com/deppfellow/shopping-list/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// HealthHandler serves /status for load balancers and uptime monitors.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

type checkResult struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

type healthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Driver      string                 `json:"driver"`
	Checks      map[string]checkResult `json:"checks"`
}

// CheckHealth pings the document store and, when configured, Redis.
//
// An unreachable store answers 503. An unreachable Redis only degrades
// the status: the rate limiter keeps working on in-memory counters.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	obs := h.server.Config.Observability

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	response := healthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Environment: h.server.Config.Primary.Env,
		Driver:      h.server.Config.Database.Driver,
		Checks:      map[string]checkResult{},
	}

	if obs.HasCheck("database") {
		result := h.runCheck(c.Request().Context(), &logger, "database", h.server.PingDatabase)
		response.Checks["database"] = result
		if result.Status != "healthy" {
			response.Status = "unhealthy"
		}
	}

	if obs.HasCheck("redis") && h.server.Redis != nil {
		result := h.runCheck(c.Request().Context(), &logger, "redis", func(ctx context.Context) error {
			return h.server.Redis.Ping(ctx).Err()
		})
		response.Checks["redis"] = result
		if result.Status != "healthy" && response.Status == "healthy" {
			response.Status = "degraded"
		}
	}

	if response.Status == "unhealthy" {
		logger.Warn().Dur("total_duration", time.Since(start)).Msg("health check failed")
		h.recordFailure("overall", map[string]interface{}{
			"total_duration_ms": time.Since(start).Milliseconds(),
		})
		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().Dur("total_duration", time.Since(start)).Str("status", response.Status).Msg("health check passed")
	return c.JSON(http.StatusOK, response)
}

func (h *HealthHandler) runCheck(parent context.Context, logger *zerolog.Logger, name string, ping func(context.Context) error) checkResult {
	ctx, cancel := context.WithTimeout(parent, h.server.Config.Observability.HealthChecks.Timeout)
	defer cancel()

	start := time.Now()
	err := ping(ctx)
	elapsed := time.Since(start)

	if err != nil {
		logger.Error().Err(err).Str("check", name).Dur("response_time", elapsed).Msg("health check failed")
		h.recordFailure(name, map[string]interface{}{
			"response_time_ms": elapsed.Milliseconds(),
			"error_message":    err.Error(),
		})
		return checkResult{Status: "unhealthy", ResponseTime: elapsed.String(), Error: err.Error()}
	}

	return checkResult{Status: "healthy", ResponseTime: elapsed.String()}
}

func (h *HealthHandler) recordFailure(check string, attrs map[string]interface{}) {
	app := h.server.LoggerService.GetApplication()
	if app == nil {
		return
	}
	attrs["check_type"] = check
	attrs["operation"] = "health_check"
	attrs["error_type"] = check + "_unhealthy"
	app.RecordCustomEvent("HealthCheckError", attrs)
}
