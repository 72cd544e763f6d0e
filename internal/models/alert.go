package models

import (
	"time"

	"github.com/google/uuid"
)

// Alert is the persisted record of one dispatched notification and its
// engagement history. Field names are the storage contract other tooling
// reads; do not rename them casually.
type Alert struct {
	ID           uuid.UUID    `json:"id"`
	UserID       string       `json:"user_id"`
	PredictionID string       `json:"prediction_id"`
	DisasterType DisasterType `json:"disaster_type"`
	Title        string       `json:"title"`
	Message      string       `json:"message"`
	RiskLevel    RiskLevel    `json:"risk_level"`
	RiskScore    float64      `json:"risk_score"`
	Latitude     float64      `json:"latitude"`
	Longitude    float64      `json:"longitude"`
	RadiusKM     int          `json:"radius_km"`
	Sent         bool         `json:"sent"`
	Read         bool         `json:"read"`
	Clicked      bool         `json:"clicked"`
	CreatedAt    time.Time    `json:"created_at"`
	SentAt       *time.Time   `json:"sent_at,omitempty"`
	ReadAt       *time.Time   `json:"read_at,omitempty"`
}

// MarkRead applies the SENT -> READ transition. Already-read (including
// clicked) alerts are left untouched; re-marking is a no-op, not an error.
func (a *Alert) MarkRead(now time.Time) bool {
	if a.Read {
		return false
	}
	a.Read = true
	a.ReadAt = &now
	return true
}

// MarkClicked applies the -> CLICKED transition. Clicking implies reading,
// so an unread alert also gets read=true with the same timestamp. Returns
// false when the alert was already clicked.
func (a *Alert) MarkClicked(now time.Time) bool {
	if a.Clicked {
		return false
	}
	a.Clicked = true
	if !a.Read {
		a.Read = true
		a.ReadAt = &now
	}
	return true
}

// AlertStats aggregates a user's alert history for the stats endpoint.
type AlertStats struct {
	TotalAlerts int                  `json:"total_alerts"`
	Sent        int                  `json:"sent"`
	Read        int                  `json:"read"`
	Clicked     int                  `json:"clicked"`
	ByType      map[DisasterType]int `json:"by_type"`
}
