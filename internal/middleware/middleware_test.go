package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/deppfellow/shopping-list/internal/config"
	"github.com/deppfellow/shopping-list/internal/errs"
	"github.com/deppfellow/shopping-list/internal/logger"
	"github.com/deppfellow/shopping-list/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func newTestServer(rl *config.RateLimitConfig) *server.Server {
	log := zerolog.Nop()
	return &server.Server{
		Config: &config.Config{
			Primary:       config.Primary{Env: "test"},
			Server:        config.ServerConfig{Port: "0", CORSAllowedOrigins: []string{"*"}},
			Database:      config.DatabaseConfig{Driver: config.DriverMemory},
			RateLimit:     rl,
			Observability: config.DefaultObservabilityConfig(),
		},
		Logger:        &log,
		LoggerService: &logger.LoggerService{},
	}
}

func newTestEcho(s *server.Server, mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = NewGlobalMiddlewares(s).GlobalErrorHandler
	e.Use(RequestID(), NewContextEnhancer(s).EnhanceContext())
	e.Use(mw...)
	return e
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errs.HTTPError {
	t.Helper()
	var body errs.HTTPError
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestGlobalErrorHandler(t *testing.T) {
	s := newTestServer(config.DefaultRateLimitConfig())
	e := newTestEcho(s)

	e.GET("/list/:listID", func(c echo.Context) error {
		return errs.ListNotFound(c.Param("listID"))
	})
	e.GET("/validation", func(c echo.Context) error {
		return errs.Validation("Validation failed: items is required", []errs.FieldError{{Field: "items", Error: "is required"}})
	})
	e.GET("/boom", func(c echo.Context) error {
		return errs.Store("Failed to save shopping list", http.ErrHandlerTimeout)
	})

	tests := []struct {
		name   string
		path   string
		status int
		code   string
	}{
		{"list not found", "/list/abc", http.StatusBadRequest, "LIST_NOT_FOUND"},
		{"validation", "/validation", http.StatusBadRequest, "BAD_REQUEST"},
		{"store failure", "/boom", http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
		{"unknown route", "/nope", http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, rec.Code)
			}
			body := decodeError(t, rec)
			if body.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, body.Code)
			}
			if rec.Header().Get(RequestIDHeader) == "" {
				t.Error("expected a request id header")
			}
		})
	}

	t.Run("store failure hides the cause", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
		if body := decodeError(t, rec); body.Message != http.StatusText(http.StatusInternalServerError) {
			t.Errorf("internal message leaked: %q", body.Message)
		}
	})

	t.Run("validation lists fields", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/validation", nil))
		body := decodeError(t, rec)
		if len(body.Errors) != 1 || body.Errors[0].Field != "items" {
			t.Errorf("expected field error on items, got %+v", body.Errors)
		}
	})
}

func TestRequestIDReuse(t *testing.T) {
	s := newTestServer(config.DefaultRateLimitConfig())
	e := newTestEcho(s)
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	t.Run("well formed id is kept", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
			t.Errorf("expected abc-123, got %q", got)
		}
	})

	t.Run("garbage id is replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "bad id\nwith newline")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if got := rec.Header().Get(RequestIDHeader); got == "" || got == "bad id\nwith newline" {
			t.Errorf("expected a generated id, got %q", got)
		}
	})
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(&config.RateLimitConfig{Enabled: true, Requests: 2, Window: time.Hour})
	e := newTestEcho(s, NewRateLimitMiddleware(s).Limit())
	e.GET("/get/lists", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/status", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	call := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := call("/get/lists"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	rec := call("/get/lists")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Code != "TOO_MANY_REQUESTS" {
		t.Errorf("expected TOO_MANY_REQUESTS, got %s", body.Code)
	}
	if rec.Header().Get("Retry-After") != "3600" {
		t.Errorf("expected Retry-After 3600, got %q", rec.Header().Get("Retry-After"))
	}

	if rec := call("/status"); rec.Code != http.StatusOK {
		t.Errorf("status endpoint must not be limited, got %d", rec.Code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	s := newTestServer(&config.RateLimitConfig{Enabled: false, Requests: 1, Window: time.Hour})
	e := newTestEcho(s, NewRateLimitMiddleware(s).Limit())
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}
}

func TestRedisWindowStoreFallsBack(t *testing.T) {
	cfg := &config.RateLimitConfig{Enabled: true, Requests: 1, Window: time.Hour}
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	log := zerolog.Nop()
	store := NewRedisWindowStore(client, cfg, NewMemoryRateLimiterStore(cfg), &log)

	allowed, err := store.Allow("10.0.0.2")
	if err != nil || !allowed {
		t.Fatalf("first request should pass through the fallback, got %v %v", allowed, err)
	}
	allowed, err = store.Allow("10.0.0.2")
	if err != nil || allowed {
		t.Errorf("fallback should enforce the limit, got %v %v", allowed, err)
	}
}
