package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uniconnect/api/internal/config"
	"github.com/uniconnect/api/internal/pkg/logger"
)

const (
	// applicationName tags our sessions in pg_stat_activity
	applicationName = "uniconnect-api"

	connectTimeout     = 10 * time.Second
	transactionTimeout = 30 * time.Second
	healthCheckPeriod  = 30 * time.Second
)

// PostgresDB wraps the pgx pool shared by every repository
type PostgresDB struct {
	Pool *pgxpool.Pool
}

// poolConfig translates the database section into pool settings without dialing
func poolConfig(cfg *config.Config) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.GetPostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgxpool config: %w", err)
	}

	maxLifetime, err := time.ParseDuration(cfg.Database.ConnMaxLifetime)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection max lifetime: %w", err)
	}

	pc.ConnConfig.RuntimeParams["application_name"] = applicationName
	if cfg.Database.MaxOpenConns > 0 {
		pc.MaxConns = int32(cfg.Database.MaxOpenConns)
	}
	pc.MinConns = min(int32(cfg.Database.MaxIdleConns), pc.MaxConns)
	pc.MaxConnLifetime = maxLifetime
	// Broken idle connections are found by the pool's periodic check, not on every acquire
	pc.HealthCheckPeriod = healthCheckPeriod

	return pc, nil
}

// NewPostgresDB creates the pool and verifies the server is reachable
func NewPostgresDB(ctx context.Context, cfg *config.Config) (*PostgresDB, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pc, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to establish database connection: %w", err)
	}

	logger.Info().
		Str("host", cfg.Database.Host).
		Str("database", cfg.Database.DBName).
		Int32("maxConns", pc.MaxConns).
		Int32("minConns", pc.MinConns).
		Msg("Database pool ready")

	return &PostgresDB{Pool: pool}, nil
}

// Close closes the pool
func (db *PostgresDB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// TransactionFn is a function that executes within a transaction
type TransactionFn func(ctx context.Context, tx pgx.Tx) error

// WithTransaction runs fn in a read-committed transaction. An error or panic
// from fn rolls everything back; otherwise the transaction is committed.
func (db *PostgresDB) WithTransaction(ctx context.Context, fn TransactionFn) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, transactionTimeout)
		defer cancel()
	}

	return pgx.BeginTxFunc(ctx, db.Pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(ctx, tx)
	})
}
