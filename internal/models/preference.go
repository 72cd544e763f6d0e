package models

// Preference holds a user's alerting preferences, one row per user.
// A missing row is equivalent to DefaultPreference, never to "ineligible";
// the repository resolves the default once so downstream code always
// receives a concrete value.
type Preference struct {
	UserID            string    `json:"user_id"`
	HurricaneAlerts   bool      `json:"hurricane_alerts"`
	HeatWaveAlerts    bool      `json:"heat_wave_alerts"`
	FloodAlerts       bool      `json:"flood_alerts"`
	SevereStormAlerts bool      `json:"severe_storm_alerts"`
	MinRiskLevel      RiskLevel `json:"min_risk_level"`
	AlertRadiusKM     int       `json:"alert_radius_km"`
	MaxDailyAlerts    int       `json:"max_daily_alerts"`
	QuietHoursStart   string    `json:"quiet_hours_start,omitempty"` // "22:00", empty = none
	QuietHoursEnd     string    `json:"quiet_hours_end,omitempty"`
	EnablePush        bool      `json:"enable_push"`
}

// DefaultPreference is what applies when a user has no preference row:
// all disaster types enabled, MEDIUM threshold, 100 km radius.
func DefaultPreference(userID string) *Preference {
	return &Preference{
		UserID:            userID,
		HurricaneAlerts:   true,
		HeatWaveAlerts:    true,
		FloodAlerts:       true,
		SevereStormAlerts: true,
		MinRiskLevel:      RiskMedium,
		AlertRadiusKM:     100,
		MaxDailyAlerts:    10,
		EnablePush:        true,
	}
}

// TypeEnabled reports whether the preference toggle gating dt is on.
// It dispatches through the same table the candidate query uses.
func (p *Preference) TypeEnabled(dt DisasterType) bool {
	switch disasterFlagColumn[dt] {
	case "hurricane_alerts":
		return p.HurricaneAlerts
	case "heat_wave_alerts":
		return p.HeatWaveAlerts
	case "flood_alerts":
		return p.FloodAlerts
	case "severe_storm_alerts":
		return p.SevereStormAlerts
	default:
		return false
	}
}
