package service

import (
	"time"

	"github.com/rafael-ceotto/StormGuard/internal/models"
)

// Evaluate runs the ordered eligibility rule chain for one candidate.
// The first failing rule determines the returned reason. The function is
// pure: the daily-sent count and the clock are supplied by the caller.
//
// Rule order: disaster type toggle, risk threshold, quiet hours, daily cap.
func Evaluate(pred *models.Prediction, cand *models.Candidate, sentToday int, now time.Time) (models.SkipReason, bool) {
	pref := cand.Preference

	if !pref.TypeEnabled(pred.DisasterType) {
		return models.ReasonPreferenceDisabled, false
	}
	if pred.Probability < pref.MinRiskLevel.Threshold() {
		return models.ReasonBelowRiskThreshold, false
	}
	if withinQuietHours(pref.QuietHoursStart, pref.QuietHoursEnd, now) {
		return models.ReasonQuietHours, false
	}
	if pref.MaxDailyAlerts > 0 && sentToday >= pref.MaxDailyAlerts {
		return models.ReasonDailyCapReached, false
	}
	return "", true
}

// withinQuietHours reports whether now falls in [start, end), where start and
// end are "HH:MM" strings. A window ending before it starts wraps midnight.
// Empty or malformed bounds disable the window.
func withinQuietHours(start, end string, now time.Time) bool {
	startMin, okStart := parseClock(start)
	endMin, okEnd := parseClock(end)
	if !okStart || !okEnd {
		return false
	}

	nowMin := now.Hour()*60 + now.Minute()
	if startMin <= endMin {
		return nowMin >= startMin && nowMin < endMin
	}
	// wraps midnight, e.g. 22:00-08:00
	return nowMin >= startMin || nowMin < endMin
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(s string) (int, bool) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
