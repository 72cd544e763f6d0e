package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rafael-ceotto/StormGuard/internal/models"
	"github.com/rafael-ceotto/StormGuard/internal/service"
)

// MetricsRepository writes per-cycle aggregates for the reporting sink.
type MetricsRepository struct {
	db *pgxpool.Pool
}

func NewMetricsRepository(db *pgxpool.Pool) service.MetricsRepository {
	return &MetricsRepository{db: db}
}

// RecordCycle appends one row of cumulative dispatch counters. Callers treat
// a failure here as non-fatal.
func (r *MetricsRepository) RecordCycle(ctx context.Context, metrics *models.CycleMetrics) error {
	query := `
		INSERT INTO alert_metrics (timestamp, total_sent, total_failed, created_at)
		VALUES ($1, $2, $3, NOW());
	`
	_, err := r.db.Exec(ctx, query, metrics.Timestamp, metrics.TotalSent, metrics.TotalFailed)
	if err != nil {
		return fmt.Errorf("failed to record cycle metrics: %w", err)
	}
	return nil
}
