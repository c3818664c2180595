package builder

import (
	"context"
	"fmt"

	"github.com/futig/mindtrace-ai/internal/config"
	"github.com/futig/mindtrace-ai/internal/pkg/retry"
	"github.com/futig/mindtrace-ai/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// setupDatabase migrates the schema and opens the pgvector connection pool.
// Both steps are retried because the database container usually starts
// alongside the service.
func setupDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	rc := retry.NewRetryConfig(cfg.DBConnectAttempts, cfg.DBConnectDelay)
	onRetry := func(attempt uint, err error) {
		logger.Warn("database not ready, retrying",
			zap.Uint("attempt", attempt+1),
			zap.Error(err),
		)
	}

	logger.Info("Running database migrations")
	if err := retry.Do(ctx, rc, func() error {
		return repository.RunMigrations(cfg.DatabaseURL)
	}, onRetry); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.DBMaxConns)
	poolConfig.MinConns = int32(cfg.DBMinConns)
	poolConfig.MaxConnLifetime = cfg.DBMaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.DBMaxConnIdleTime
	poolConfig.HealthCheckPeriod = cfg.DBHealthCheckPeriod
	// The vector extension exists only after the first migration.
	poolConfig.AfterConnect = repository.RegisterVectorTypes

	var pool *pgxpool.Pool
	err = retry.Do(ctx, rc, func() error {
		p, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return fmt.Errorf("create connection pool: %w", err)
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return fmt.Errorf("ping database: %w", err)
		}
		pool = p
		return nil
	}, onRetry)
	if err != nil {
		return nil, err
	}

	logger.Info("database connection pool established",
		zap.Int32("max_conns", poolConfig.MaxConns),
		zap.Int32("min_conns", poolConfig.MinConns),
		zap.Duration("max_conn_lifetime", poolConfig.MaxConnLifetime),
		zap.Duration("max_conn_idle_time", poolConfig.MaxConnIdleTime),
		zap.Duration("health_check_period", poolConfig.HealthCheckPeriod),
	)

	return pool, nil
}
