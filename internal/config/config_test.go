package config

import (
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SHOPLIST_PRIMARY.ENV", "development")
	t.Setenv("SHOPLIST_SERVER.PORT", "8080")
	t.Setenv("SHOPLIST_SERVER.READ_TIMEOUT", "30")
	t.Setenv("SHOPLIST_SERVER.WRITE_TIMEOUT", "30")
	t.Setenv("SHOPLIST_SERVER.IDLE_TIMEOUT", "60")
	t.Setenv("SHOPLIST_SERVER.CORS_ALLOWED_ORIGINS", "http://localhost:3000")
}

func TestLoadConfig(t *testing.T) {
	t.Run("mongo driver gets collection defaults", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("SHOPLIST_DATABASE.DRIVER", "mongo")
		t.Setenv("SHOPLIST_DATABASE.MONGO.URI", "mongodb://localhost:27017")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}

		if cfg.Database.Mongo.Database != "shoppinglists" {
			t.Errorf("expected default database name, got %q", cfg.Database.Mongo.Database)
		}
		if cfg.Database.Mongo.Collection != "shopping_lists" {
			t.Errorf("expected default collection name, got %q", cfg.Database.Mongo.Collection)
		}
		if cfg.Database.Mongo.ConnectTimeout != 10*time.Second {
			t.Errorf("expected 10s connect timeout, got %s", cfg.Database.Mongo.ConnectTimeout)
		}
		if cfg.Observability.ServiceName != ServiceName {
			t.Errorf("expected service name %q, got %q", ServiceName, cfg.Observability.ServiceName)
		}
		if cfg.Observability.Environment != "development" {
			t.Errorf("expected environment to follow primary.env, got %q", cfg.Observability.Environment)
		}
		if cfg.RateLimit == nil || cfg.RateLimit.Requests != 120 {
			t.Errorf("expected default rate limit, got %+v", cfg.RateLimit)
		}
	})

	t.Run("mongo driver without uri fails", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("SHOPLIST_DATABASE.DRIVER", "mongo")

		if _, err := LoadConfig(); err == nil {
			t.Fatal("expected error for missing mongo uri")
		}
	})

	t.Run("unknown driver fails", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("SHOPLIST_DATABASE.DRIVER", "couchdb")

		if _, err := LoadConfig(); err == nil {
			t.Fatal("expected error for unsupported driver")
		}
	})

	t.Run("partial observability keeps defaults", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("SHOPLIST_DATABASE.DRIVER", "memory")
		t.Setenv("SHOPLIST_OBSERVABILITY.LOGGING.LEVEL", "warn")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Observability.GetLogLevel() != "warn" {
			t.Errorf("expected warn level, got %q", cfg.Observability.GetLogLevel())
		}
		if cfg.Observability.HealthChecks.Timeout != 5*time.Second {
			t.Errorf("expected default health check timeout, got %s", cfg.Observability.HealthChecks.Timeout)
		}
	})
}

func TestObservabilityConfig(t *testing.T) {
	t.Run("rejects unknown level", func(t *testing.T) {
		cfg := DefaultObservabilityConfig()
		cfg.Logging.Level = "verbose"
		if err := cfg.Validate(); err == nil {
			t.Fatal("expected validation error")
		}
	})

	t.Run("level falls back by environment", func(t *testing.T) {
		cfg := DefaultObservabilityConfig()
		cfg.Logging.Level = ""

		cfg.Environment = "production"
		if got := cfg.GetLogLevel(); got != "info" {
			t.Errorf("production default = %q, want info", got)
		}

		cfg.Environment = "development"
		if got := cfg.GetLogLevel(); got != "debug" {
			t.Errorf("development default = %q, want debug", got)
		}
	})

	t.Run("checks follow enabled flag", func(t *testing.T) {
		cfg := DefaultObservabilityConfig()
		if !cfg.HasCheck("database") {
			t.Error("expected database check enabled by default")
		}
		cfg.HealthChecks.Enabled = false
		if cfg.HasCheck("database") {
			t.Error("expected no checks when health checks are disabled")
		}
	})
}
