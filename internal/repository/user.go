package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rafael-ceotto/StormGuard/internal/models"
	"github.com/rafael-ceotto/StormGuard/internal/service"
)

// UserRepository reads the user directory and preference store. Both are
// read-only to this service.
type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) service.CandidateRepository {
	return &UserRepository{db: db}
}

// FindCandidates returns users inside the bounding box whose directory
// attributes allow notification and whose preference toggle (or the default
// when no row exists) enables the prediction's disaster type. Preferences
// are resolved to concrete values here so callers never see a nil.
//
// The flag column comes from the fixed disaster-type table, never from
// request input, so interpolating it is safe.
func (r *UserRepository) FindCandidates(ctx context.Context, pred *models.Prediction, box models.BoundingBox) ([]*models.Candidate, error) {
	query := fmt.Sprintf(`
		SELECT
			u.id,
			u.latitude,
			u.longitude,
			COALESCE(u.device_token, ''),
			u.notifications_enabled,
			up.user_id,
			up.hurricane_alerts,
			up.heat_wave_alerts,
			up.flood_alerts,
			up.severe_storm_alerts,
			up.min_risk_level,
			up.alert_radius_km,
			up.max_daily_alerts,
			up.quiet_hours_start,
			up.quiet_hours_end,
			up.enable_push
		FROM users u
		LEFT JOIN user_preferences up ON u.id = up.user_id
		WHERE
			u.notifications_enabled = true
			AND u.device_token IS NOT NULL
			AND u.device_token <> ''
			AND COALESCE(up.%s, true)
			AND u.latitude BETWEEN $1 AND $2
			AND u.longitude BETWEEN $3 AND $4;
	`, pred.DisasterType.FlagColumn())

	rows, err := r.db.Query(ctx, query, box.MinLat, box.MaxLat, box.MinLon, box.MaxLon)
	if err != nil {
		return nil, fmt.Errorf("failed to find candidates: %w", err)
	}
	defer rows.Close()

	candidates := make([]*models.Candidate, 0)
	for rows.Next() {
		var row candidateRow
		err := rows.Scan(
			&row.user.ID,
			&row.user.Latitude,
			&row.user.Longitude,
			&row.user.DeviceToken,
			&row.user.NotificationsEnabled,
			&row.prefUserID,
			&row.hurricane,
			&row.heatWave,
			&row.flood,
			&row.storm,
			&row.minRisk,
			&row.radiusKM,
			&row.maxDaily,
			&row.quietStart,
			&row.quietEnd,
			&row.enablePush,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate row: %w", err)
		}
		candidates = append(candidates, resolveCandidate(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidate rows: %w", err)
	}
	return candidates, nil
}

// candidateRow is one scanned result row. The preference columns are
// pointers because the LEFT JOIN yields NULLs when no row exists.
type candidateRow struct {
	user       models.User
	prefUserID *string
	hurricane  *bool
	heatWave   *bool
	flood      *bool
	storm      *bool
	minRisk    *string
	radiusKM   *int
	maxDaily   *int
	quietStart *string
	quietEnd   *string
	enablePush *bool
}

// resolveCandidate turns a scanned row into a candidate with a concrete
// preference. A missing preference row resolves to the default preference;
// a present row with NULL columns falls back to the defaults column by
// column, and an unknown min_risk_level keeps the default MEDIUM.
func resolveCandidate(row candidateRow) *models.Candidate {
	pref := models.DefaultPreference(row.user.ID)
	if row.prefUserID != nil {
		pref.HurricaneAlerts = boolOr(row.hurricane, pref.HurricaneAlerts)
		pref.HeatWaveAlerts = boolOr(row.heatWave, pref.HeatWaveAlerts)
		pref.FloodAlerts = boolOr(row.flood, pref.FloodAlerts)
		pref.SevereStormAlerts = boolOr(row.storm, pref.SevereStormAlerts)
		pref.AlertRadiusKM = intOr(row.radiusKM, pref.AlertRadiusKM)
		pref.MaxDailyAlerts = intOr(row.maxDaily, pref.MaxDailyAlerts)
		pref.QuietHoursStart = stringOr(row.quietStart, "")
		pref.QuietHoursEnd = stringOr(row.quietEnd, "")
		pref.EnablePush = boolOr(row.enablePush, pref.EnablePush)
		if row.minRisk != nil && models.RiskLevel(*row.minRisk).Valid() {
			pref.MinRiskLevel = models.RiskLevel(*row.minRisk)
		}
	}
	return &models.Candidate{User: row.user, Preference: pref}
}

func boolOr(v *bool, def bool) bool {
	if v != nil {
		return *v
	}
	return def
}

func intOr(v *int, def int) int {
	if v != nil {
		return *v
	}
	return def
}

func stringOr(v *string, def string) string {
	if v != nil {
		return *v
	}
	return def
}
