// Package config manages environment variables.
//
// It reads variables from the `.env` file and the process environment,
// loads them into structured Go types, and validates that required
// values are present so they can be reused across the application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for optional config blocks (observability, rate limit, store).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists, it is loaded into the
	// process env before any SHOPLIST_ variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

/*
	Env vars are read using the prefix SHOPLIST_. The prefix is removed, the
	rest is lowercased, and "." separates nesting levels:

	  SHOPLIST_SERVER.PORT          -> server.port          -> Config.Server.Port
	  SHOPLIST_DATABASE.MONGO.URI   -> database.mongo.uri   -> Config.Database.Mongo.URI
*/

// EnvPrefix is the prefix every recognised environment variable starts with.
const EnvPrefix = "SHOPLIST_"

// Supported document store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is the root configuration object for the application.
//
// Observability and RateLimit are pointers because they are optional;
// applyDefaults fills them in when they are missing.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis"`
	RateLimit     *RateLimitConfig     `koanf:"rate_limit"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are expressed in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
}

// DatabaseConfig selects the document store and carries the settings of
// each backend. Only the block matching Driver has to be filled in.
type DatabaseConfig struct {
	Driver   string         `koanf:"driver" validate:"required,oneof=mongo postgres memory"`
	Mongo    MongoConfig    `koanf:"mongo"`
	Postgres PostgresConfig `koanf:"postgres"`
}

// Validate checks that the block for the selected driver is usable.
// Struct tags cannot express "required when a sibling has value X" for
// nested structs, so this is done by hand.
func (d DatabaseConfig) Validate() error {
	switch d.Driver {
	case DriverMongo:
		if d.Mongo.URI == "" {
			return fmt.Errorf("database.mongo.uri is required for driver %q", d.Driver)
		}
	case DriverPostgres:
		p := d.Postgres
		if p.Host == "" || p.Port == 0 || p.User == "" || p.Name == "" {
			return fmt.Errorf("database.postgres host, port, user and name are required for driver %q", d.Driver)
		}
	}
	return nil
}

// MongoConfig contains the MongoDB connection URI and the target collection.
type MongoConfig struct {
	URI            string        `koanf:"uri"`
	Database       string        `koanf:"database"`
	Collection     string        `koanf:"collection"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// PostgresConfig contains PostgreSQL connection parameters and pool tuning.
// Lists are stored as JSONB documents in a single table.
type PostgresConfig struct {
	Host            string `koanf:"host"`
	Port            int    `koanf:"port"`
	User            string `koanf:"user"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name"`
	SSLMode         string `koanf:"ssl_mode"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time"`
}

// RedisConfig contains Redis connection details. Address is "host:port".
// An empty address disables Redis; the rate limiter then keeps its
// counters in process memory.
type RedisConfig struct {
	Address string `koanf:"address"`
}

// RateLimitConfig controls the per-client request limiter.
type RateLimitConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Requests int           `koanf:"requests" validate:"min=1"`
	Window   time.Duration `koanf:"window" validate:"min=1s"`
}

// DefaultRateLimitConfig allows 120 requests per client per minute.
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		Enabled:  true,
		Requests: 120,
		Window:   time.Minute,
	}
}

// ServiceName is the name reported to logs, traces and New Relic.
const ServiceName = "shopping-list"

// LoadConfig loads configuration from environment variables, unmarshals it
// into Config, validates it and applies defaults.
//
// Unlike the rest of the application it returns errors instead of exiting,
// so the CLI can decide how to report them.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load initial env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	mainConfig.applyDefaults()

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if err := mainConfig.Database.Validate(); err != nil {
		return nil, err
	}

	// Service name and environment always follow the primary config so
	// logs and traces agree on how this service is labelled.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// MustLoadConfig is LoadConfig for process bootstrap: any error is logged
// fatally to stderr.
func MustLoadConfig() *Config {
	cfg, err := LoadConfig()
	if err != nil {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	return cfg
}

func (c *Config) applyDefaults() {
	defaults := DefaultObservabilityConfig()
	if c.Observability == nil {
		c.Observability = defaults
	} else {
		// A partially configured block keeps the defaults for what was left out.
		if c.Observability.Logging.Format == "" {
			c.Observability.Logging.Format = defaults.Logging.Format
		}
		if c.Observability.Logging.SlowOperationThreshold == 0 {
			c.Observability.Logging.SlowOperationThreshold = defaults.Logging.SlowOperationThreshold
		}
		if c.Observability.HealthChecks.Timeout == 0 {
			c.Observability.HealthChecks.Timeout = defaults.HealthChecks.Timeout
		}
	}
	rateDefaults := DefaultRateLimitConfig()
	if c.RateLimit == nil {
		c.RateLimit = rateDefaults
	} else {
		if c.RateLimit.Requests == 0 {
			c.RateLimit.Requests = rateDefaults.Requests
		}
		if c.RateLimit.Window == 0 {
			c.RateLimit.Window = rateDefaults.Window
		}
	}

	if c.Database.Driver == DriverMongo {
		if c.Database.Mongo.Database == "" {
			c.Database.Mongo.Database = "shoppinglists"
		}
		if c.Database.Mongo.Collection == "" {
			c.Database.Mongo.Collection = "shopping_lists"
		}
		if c.Database.Mongo.ConnectTimeout == 0 {
			c.Database.Mongo.ConnectTimeout = 10 * time.Second
		}
	}

	if c.Database.Driver == DriverPostgres && c.Database.Postgres.SSLMode == "" {
		c.Database.Postgres.SSLMode = "disable"
	}
}
