package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafael-ceotto/StormGuard/internal/models"
)

func boolPtr(v bool) *bool       { return &v }
func intPtr(v int) *int          { return &v }
func stringPtr(v string) *string { return &v }

func testUser(id string) models.User {
	return models.User{
		ID:                   id,
		Latitude:             29.76,
		Longitude:            -95.36,
		DeviceToken:          "token-" + id,
		NotificationsEnabled: true,
	}
}

func TestResolveCandidate_NoPreferenceRowUsesDefaults(t *testing.T) {
	cand := resolveCandidate(candidateRow{user: testUser("user-1")})

	require.NotNil(t, cand.Preference)
	assert.Equal(t, models.DefaultPreference("user-1"), cand.Preference)
}

func TestResolveCandidate_ExplicitDefaultRowMatchesMissingRow(t *testing.T) {
	withoutRow := resolveCandidate(candidateRow{user: testUser("user-1")})

	defaults := models.DefaultPreference("user-2")
	withRow := resolveCandidate(candidateRow{
		user:       testUser("user-2"),
		prefUserID: stringPtr("user-2"),
		hurricane:  boolPtr(defaults.HurricaneAlerts),
		heatWave:   boolPtr(defaults.HeatWaveAlerts),
		flood:      boolPtr(defaults.FloodAlerts),
		storm:      boolPtr(defaults.SevereStormAlerts),
		minRisk:    stringPtr(string(defaults.MinRiskLevel)),
		radiusKM:   intPtr(defaults.AlertRadiusKM),
		maxDaily:   intPtr(defaults.MaxDailyAlerts),
		enablePush: boolPtr(defaults.EnablePush),
	})

	withRow.Preference.UserID = withoutRow.Preference.UserID
	assert.Equal(t, withoutRow.Preference, withRow.Preference)
}

func TestResolveCandidate_RowOverridesDefaults(t *testing.T) {
	cand := resolveCandidate(candidateRow{
		user:       testUser("user-1"),
		prefUserID: stringPtr("user-1"),
		hurricane:  boolPtr(false),
		minRisk:    stringPtr("HIGH"),
		radiusKM:   intPtr(25),
		maxDaily:   intPtr(3),
		quietStart: stringPtr("22:00"),
		quietEnd:   stringPtr("07:00"),
		enablePush: boolPtr(false),
	})

	pref := cand.Preference
	assert.False(t, pref.HurricaneAlerts)
	assert.True(t, pref.HeatWaveAlerts)
	assert.True(t, pref.FloodAlerts)
	assert.True(t, pref.SevereStormAlerts)
	assert.Equal(t, models.RiskHigh, pref.MinRiskLevel)
	assert.Equal(t, 25, pref.AlertRadiusKM)
	assert.Equal(t, 3, pref.MaxDailyAlerts)
	assert.Equal(t, "22:00", pref.QuietHoursStart)
	assert.Equal(t, "07:00", pref.QuietHoursEnd)
	assert.False(t, pref.EnablePush)
}

func TestResolveCandidate_NullColumnsFallBack(t *testing.T) {
	cand := resolveCandidate(candidateRow{
		user:       testUser("user-1"),
		prefUserID: stringPtr("user-1"),
		flood:      boolPtr(false),
	})

	defaults := models.DefaultPreference("user-1")
	pref := cand.Preference
	assert.False(t, pref.FloodAlerts)
	assert.Equal(t, defaults.HurricaneAlerts, pref.HurricaneAlerts)
	assert.Equal(t, defaults.MinRiskLevel, pref.MinRiskLevel)
	assert.Equal(t, defaults.AlertRadiusKM, pref.AlertRadiusKM)
	assert.Equal(t, defaults.MaxDailyAlerts, pref.MaxDailyAlerts)
	assert.Equal(t, defaults.EnablePush, pref.EnablePush)
}

func TestResolveCandidate_UnknownMinRiskLevelKeepsDefault(t *testing.T) {
	cand := resolveCandidate(candidateRow{
		user:       testUser("user-1"),
		prefUserID: stringPtr("user-1"),
		minRisk:    stringPtr("EXTREME"),
	})

	assert.Equal(t, models.RiskMedium, cand.Preference.MinRiskLevel)
}
