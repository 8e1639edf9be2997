package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/shopping-list/internal/config"
	"github.com/deppfellow/shopping-list/internal/errs"
	"github.com/deppfellow/shopping-list/internal/metrics"
	"github.com/deppfellow/shopping-list/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const rateLimitKeyPrefix = "shoplist:ratelimit"

// RateLimitMiddleware limits requests per client IP.
//
// With Redis configured the counters are shared by every instance
// (fixed windows, see RedisWindowStore). Without Redis, or while Redis
// fails, each instance counts in memory with a token bucket.
type RateLimitMiddleware struct {
	server  *server.Server
	cfg     *config.RateLimitConfig
	store   middleware.RateLimiterStore
	backend string
}

func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	cfg := s.Config.RateLimit
	if cfg == nil {
		cfg = config.DefaultRateLimitConfig()
	}

	memory := NewMemoryRateLimiterStore(cfg)

	rl := &RateLimitMiddleware{
		server:  s,
		cfg:     cfg,
		store:   memory,
		backend: "memory",
	}

	if s.Redis != nil {
		rl.store = NewRedisWindowStore(s.Redis, cfg, memory, s.Logger)
		rl.backend = "redis"
	}

	return rl
}

// NewMemoryRateLimiterStore refills cfg.Requests tokens per cfg.Window,
// with a burst of cfg.Requests.
func NewMemoryRateLimiterStore(cfg *config.RateLimitConfig) middleware.RateLimiterStore {
	return middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(cfg.Requests) / cfg.Window.Seconds()),
		Burst:     cfg.Requests,
		ExpiresIn: 3 * cfg.Window,
	})
}

// Limit returns the Echo rate limiter middleware, or a pass-through when
// rate limiting is disabled. Health and metrics endpoints are never limited.
func (r *RateLimitMiddleware) Limit() echo.MiddlewareFunc {
	if !r.cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			switch c.Path() {
			case "/status", "/metrics":
				return true
			}
			return false
		},
		Store: r.store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errs.NewBadRequestError("Could not identify the client", false, nil, nil, nil)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			r.RecordRateLimitHit(c.Path())
			GetLogger(c).Warn().
				Str("client", identifier).
				Str("backend", r.backend).
				Msg("rate limit exceeded")
			return errs.NewTooManyRequestsError(r.cfg.Window)
		},
	})
}

// RecordRateLimitHit counts a rejected request and reports it to New Relic.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	metrics.RateLimited.WithLabelValues(r.backend).Inc()

	if app := r.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("RateLimitHit", map[string]interface{}{
			"endpoint": endpoint,
			"backend":  r.backend,
		})
	}
}

// RedisWindowStore counts requests per client in fixed windows: one Redis
// key per client and window, expiring with the window.
//
// Any Redis failure defers the decision to fallback, so an outage never
// blocks traffic.
type RedisWindowStore struct {
	client   *redis.Client
	limit    int64
	window   time.Duration
	timeout  time.Duration
	fallback middleware.RateLimiterStore
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewRedisWindowStore(client *redis.Client, cfg *config.RateLimitConfig, fallback middleware.RateLimiterStore, logger *zerolog.Logger) *RedisWindowStore {
	return &RedisWindowStore{
		client:   client,
		limit:    int64(cfg.Requests),
		window:   cfg.Window,
		timeout:  250 * time.Millisecond,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *RedisWindowStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	windowStart := s.now().Truncate(s.window)
	key := fmt.Sprintf("%s:%s:%d", rateLimitKeyPrefix, identifier, windowStart.Unix())

	pipe := s.client.TxPipeline()
	count := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.window+time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("rate limiter redis unavailable, using in-memory counters")
		return s.fallback.Allow(identifier)
	}

	return count.Val() <= s.limit, nil
}
