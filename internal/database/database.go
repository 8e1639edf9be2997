// Package database opens the connections behind the document store.
//
// Two backends are supported:
//   - MongoDB (mongo.go): one collection of list documents, with a codec
//     that stores item costs as Decimal128
//   - PostgreSQL (this file): a pgx pool over a table of JSONB documents,
//     with query tracing (pgx tracelog) and optional New Relic
//     instrumentation (nrpgx5)
package database

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/deppfellow/shopping-list/internal/config"
	loggerConfig "github.com/deppfellow/shopping-list/internal/logger"
	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/rs/zerolog"
)

// Database is the PostgreSQL pool shared by the JSONB list repository.
type Database struct {
	Pool *pgxpool.Pool
	log  *zerolog.Logger
}

// queryTracers fans pgx query hooks out to several tracers, since
// ConnConfig has room for only one.
type queryTracers []pgx.QueryTracer

func (qt queryTracers) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, tracer := range qt {
		ctx = tracer.TraceQueryStart(ctx, conn, data)
	}
	return ctx
}

func (qt queryTracers) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, tracer := range qt {
		tracer.TraceQueryEnd(ctx, conn, data)
	}
}

// PingTimeout bounds the connectivity check made at startup.
const PingTimeout = 10 * time.Second

// PostgresDSN builds a postgres:// URL from the config. The password is
// escaped so characters like '@' or ':' keep the URL intact.
func PostgresDSN(cfg config.PostgresConfig) string {
	hostPort := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		cfg.User,
		url.QueryEscape(cfg.Password),
		hostPort,
		cfg.Name,
		cfg.SSLMode,
	)
}

// New opens and pings the PostgreSQL pool.
//
// With New Relic configured, queries are reported as datastore segments.
// In the local environment every query is also logged through pgx-zerolog.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	poolConfig, err := pgxpool.ParseConfig(PostgresDSN(cfg.Database.Postgres))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx pool config: %w", err)
	}

	applyPoolSettings(poolConfig, cfg.Database.Postgres)

	var tracers queryTracers
	if loggerService.GetApplication() != nil {
		tracers = append(tracers, nrpgx5.NewTracer())
	}
	if cfg.Primary.Env == "local" {
		level := logger.GetLevel()
		tracers = append(tracers, &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(loggerConfig.NewPgxLogger(level)),
			LogLevel: tracelog.LogLevel(loggerConfig.GetPgxTraceLogLevel(level)),
		})
	}

	switch len(tracers) {
	case 0:
	case 1:
		poolConfig.ConnConfig.Tracer = tracers[0]
	default:
		poolConfig.ConnConfig.Tracer = tracers
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), PingTimeout)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().
		Str("host", cfg.Database.Postgres.Host).
		Str("database", cfg.Database.Postgres.Name).
		Msg("connected to postgres")

	return &Database{Pool: pool, log: logger}, nil
}

// applyPoolSettings copies the optional pool tuning onto the pgx config.
// Zero values keep the pgx defaults. Lifetimes are in seconds.
func applyPoolSettings(poolConfig *pgxpool.Config, cfg config.PostgresConfig) {
	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = time.Duration(cfg.ConnMaxLifetime) * time.Second
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolConfig.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleTime) * time.Second
	}
}

// Ping checks that a connection can be acquired and used.
func (db *Database) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// Close releases the pool.
func (db *Database) Close() error {
	db.log.Info().Msg("closing database connection pool")
	db.Pool.Close()
	return nil
}
