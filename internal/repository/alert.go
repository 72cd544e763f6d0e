package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rafael-ceotto/StormGuard/internal/models"
	"github.com/rafael-ceotto/StormGuard/internal/service"
	"github.com/redis/go-redis/v9"
)

const alertCacheTTL = 5 * time.Minute

// AlertRepository persists alerts and caches single-alert reads in Redis.
type AlertRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
}

func NewAlertRepository(db *pgxpool.Pool, redisClient *redis.Client) service.AlertRepository {
	return &AlertRepository{
		db:          db,
		redisClient: redisClient,
	}
}

// Create inserts one fully-populated alert row.
func (r *AlertRepository) Create(ctx context.Context, alert *models.Alert) error {
	query := `
		INSERT INTO alerts (
			id, user_id, prediction_id, disaster_type, title, message,
			risk_level, risk_score, latitude, longitude, radius_km,
			sent, read, clicked, created_at, sent_at, read_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := r.db.Exec(ctx, query,
		alert.ID,
		alert.UserID,
		alert.PredictionID,
		alert.DisasterType,
		alert.Title,
		alert.Message,
		alert.RiskLevel,
		alert.RiskScore,
		alert.Latitude,
		alert.Longitude,
		alert.RadiusKM,
		alert.Sent,
		alert.Read,
		alert.Clicked,
		alert.CreatedAt,
		alert.SentAt,
		alert.ReadAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

const alertColumns = `
	id, user_id, prediction_id, disaster_type, title, message,
	risk_level, risk_score, latitude, longitude, radius_km,
	sent, read, clicked, created_at, sent_at, read_at`

func scanAlert(row pgx.Row) (*models.Alert, error) {
	alert := &models.Alert{}
	err := row.Scan(
		&alert.ID,
		&alert.UserID,
		&alert.PredictionID,
		&alert.DisasterType,
		&alert.Title,
		&alert.Message,
		&alert.RiskLevel,
		&alert.RiskScore,
		&alert.Latitude,
		&alert.Longitude,
		&alert.RadiusKM,
		&alert.Sent,
		&alert.Read,
		&alert.Clicked,
		&alert.CreatedAt,
		&alert.SentAt,
		&alert.ReadAt,
	)
	if err != nil {
		return nil, err
	}
	return alert, nil
}

// GetByID returns one alert or service.ErrAlertNotFound.
func (r *AlertRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Alert, error) {
	query := fmt.Sprintf(`SELECT %s FROM alerts WHERE id = $1;`, alertColumns)
	alert, err := scanAlert(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("alert %s: %w", id, service.ErrAlertNotFound)
		}
		return nil, fmt.Errorf("failed to get alert by id: %w", err)
	}
	return alert, nil
}

// ListByUser returns a user's alerts, newest first.
func (r *AlertRepository) ListByUser(ctx context.Context, userID string, limit, offset int, unreadOnly bool) ([]*models.Alert, error) {
	query := fmt.Sprintf(`SELECT %s FROM alerts WHERE user_id = $1`, alertColumns)
	if unreadOnly {
		query += ` AND read = false`
	}
	query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3;`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]*models.Alert, 0)
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert row: %w", err)
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alert rows: %w", err)
	}
	return alerts, nil
}

// Update persists the engagement fields of an existing alert.
func (r *AlertRepository) Update(ctx context.Context, alert *models.Alert) error {
	query := `
		UPDATE alerts SET
			read = $1,
			clicked = $2,
			read_at = $3
		WHERE id = $4;
	`
	cmdTag, err := r.db.Exec(ctx, query, alert.Read, alert.Clicked, alert.ReadAt, alert.ID)
	if err != nil {
		return fmt.Errorf("failed to update alert: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("alert %s: %w", alert.ID, service.ErrAlertNotFound)
	}
	return nil
}

// Delete removes the alert row entirely.
func (r *AlertRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM alerts WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("alert %s: %w", id, service.ErrAlertNotFound)
	}
	return nil
}

// CountSentSince counts alerts sent to a user since the given instant.
// Backs the daily-cap eligibility rule.
func (r *AlertRepository) CountSentSince(ctx context.Context, userID string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM alerts
		WHERE user_id = $1 AND sent = true AND sent_at >= $2;
	`
	var count int
	if err := r.db.QueryRow(ctx, query, userID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sent alerts: %w", err)
	}
	return count, nil
}

// HasAlertForPrediction reports whether the user already holds an alert for
// the prediction created after the given instant. Backs the cross-cycle
// redispatch cooldown.
func (r *AlertRepository) HasAlertForPrediction(ctx context.Context, userID, predictionID string, since time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM alerts
			WHERE user_id = $1 AND prediction_id = $2 AND created_at >= $3
		);
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, predictionID, since).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check existing alert: %w", err)
	}
	return exists, nil
}

// StatsByUser aggregates a user's alert history.
func (r *AlertRepository) StatsByUser(ctx context.Context, userID string) (*models.AlertStats, error) {
	stats := &models.AlertStats{ByType: make(map[models.DisasterType]int)}

	totalsQuery := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE sent),
			COUNT(*) FILTER (WHERE read),
			COUNT(*) FILTER (WHERE clicked)
		FROM alerts
		WHERE user_id = $1;
	`
	err := r.db.QueryRow(ctx, totalsQuery, userID).Scan(
		&stats.TotalAlerts,
		&stats.Sent,
		&stats.Read,
		&stats.Clicked,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get alert totals: %w", err)
	}

	byTypeQuery := `
		SELECT disaster_type, COUNT(*)
		FROM alerts
		WHERE user_id = $1
		GROUP BY disaster_type;
	`
	rows, err := r.db.Query(ctx, byTypeQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get alert counts by type: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dt models.DisasterType
		var count int
		if err := rows.Scan(&dt, &count); err != nil {
			return nil, fmt.Errorf("failed to scan alert type count: %w", err)
		}
		stats.ByType[dt] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alert type counts: %w", err)
	}
	return stats, nil
}

// GetAlertFromCache tries Redis first; a miss returns (nil, nil).
func (r *AlertRepository) GetAlertFromCache(ctx context.Context, id uuid.UUID) (*models.Alert, error) {
	key := fmt.Sprintf("alert:%s", id.String())
	val, err := r.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get alert from cache: %w", err)
	}

	alert := &models.Alert{}
	if err := json.Unmarshal(val, alert); err != nil {
		return nil, fmt.Errorf("failed to unmarshal alert from cache: %w", err)
	}
	return alert, nil
}

// SetAlertCache stores the alert in Redis with a short TTL.
func (r *AlertRepository) SetAlertCache(ctx context.Context, alert *models.Alert) error {
	key := fmt.Sprintf("alert:%s", alert.ID.String())
	val, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert for cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, key, val, alertCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set alert in cache: %w", err)
	}
	return nil
}

// InvalidateAlertCache drops a cached alert after a mutation.
func (r *AlertRepository) InvalidateAlertCache(ctx context.Context, id uuid.UUID) error {
	key := fmt.Sprintf("alert:%s", id.String())
	if err := r.redisClient.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate alert cache: %w", err)
	}
	return nil
}
