// Package store persists ask-pipeline history to Postgres. The archive is
// optional: with no DATABASE_URL configured every method is a cheap no-op,
// so callers never branch on whether persistence is enabled.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/abhimh33/Skylark-BI/pkg/models"
)

// Archive writes snapshot statistics and ask-request history to Postgres.
// A nil pool means the archive is disabled.
type Archive struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewArchive connects to Postgres and ensures the schema exists. An empty
// databaseURL returns a disabled archive and no error.
func NewArchive(ctx context.Context, databaseURL string, logger *zap.Logger) (*Archive, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if databaseURL == "" {
		logger.Info("postgres archive disabled")
		return &Archive{logger: logger}, nil
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	a := &Archive{pool: pool, logger: logger}
	if err := a.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("postgres archive enabled")
	return a, nil
}

// Enabled reports whether the archive writes anywhere.
func (a *Archive) Enabled() bool {
	return a.pool != nil
}

func (a *Archive) ensureSchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS snapshot_stats (
			id BIGSERIAL PRIMARY KEY,
			fetched_at TIMESTAMPTZ NOT NULL,
			total_deals INT NOT NULL,
			total_work_orders INT NOT NULL,
			quality_warnings INT NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS ask_history (
			id BIGSERIAL PRIMARY KEY,
			request_id TEXT NOT NULL,
			question TEXT NOT NULL,
			metric_type TEXT NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			source TEXT NOT NULL,
			processing_time_ms BIGINT NOT NULL,
			asked_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	for _, stmt := range ddl {
		if _, err := a.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure archive schema: %w", err)
		}
	}
	return nil
}

// SaveSnapshotStats records the shape of one cleaned snapshot.
func (a *Archive) SaveSnapshotStats(ctx context.Context, snapshot *models.Snapshot) error {
	if a.pool == nil {
		return nil
	}
	_, err := a.pool.Exec(ctx,
		`INSERT INTO snapshot_stats (fetched_at, total_deals, total_work_orders, quality_warnings)
		 VALUES ($1, $2, $3, $4)`,
		snapshot.FetchedAt, len(snapshot.Deals), len(snapshot.WorkOrders), len(snapshot.Issues))
	if err != nil {
		return fmt.Errorf("failed to save snapshot stats: %w", err)
	}
	return nil
}

// RecordAsk appends one answered question to the history.
func (a *Archive) RecordAsk(ctx context.Context, requestID, question string, metricType models.MetricType, confidence float64, source string, elapsed time.Duration) error {
	if a.pool == nil {
		return nil
	}
	_, err := a.pool.Exec(ctx,
		`INSERT INTO ask_history (request_id, question, metric_type, confidence, source, processing_time_ms)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		requestID, question, string(metricType), confidence, source, elapsed.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to record ask history: %w", err)
	}
	return nil
}

// Close releases the pool. Safe on a disabled archive.
func (a *Archive) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}
