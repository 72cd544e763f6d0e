package v1

import (
	"time"

	"github.com/google/uuid"
)

// DispatchPredictionRequest is the trigger input from the orchestrator.
// @Description Prediction record that triggers a dispatch cycle
type DispatchPredictionRequest struct {
	PredictionID string  `json:"prediction_id" validate:"required"`
	DisasterType string  `json:"disaster_type" validate:"required"`
	Probability  float64 `json:"probability" validate:"gte=0,lte=1"`
	Latitude     float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude    float64 `json:"longitude" validate:"gte=-180,lte=180"`
	RadiusKM     int     `json:"radius_km" validate:"required,gt=0"`
}

// CycleResultResponse is the aggregate returned to the orchestrator.
// @Description Dispatch cycle result
type CycleResultResponse struct {
	Total   int                     `json:"total"`
	Sent    int                     `json:"sent"`
	Failed  int                     `json:"failed"`
	Skipped int                     `json:"skipped"`
	Errors  []DispatchErrorResponse `json:"errors"`
}

// DispatchErrorResponse is one per-user entry of the errors array.
type DispatchErrorResponse struct {
	UserID string `json:"user_id"`
	Error  string `json:"error"`
}

// AlertResponse mirrors the persisted alert schema.
// @Description Alert record with engagement state
type AlertResponse struct {
	ID           uuid.UUID  `json:"id"`
	UserID       string     `json:"user_id"`
	PredictionID string     `json:"prediction_id"`
	DisasterType string     `json:"disaster_type"`
	Title        string     `json:"title"`
	Message      string     `json:"message"`
	RiskLevel    string     `json:"risk_level"`
	RiskScore    float64    `json:"risk_score"`
	Latitude     float64    `json:"latitude"`
	Longitude    float64    `json:"longitude"`
	RadiusKM     int        `json:"radius_km"`
	Sent         bool       `json:"sent"`
	Read         bool       `json:"read"`
	Clicked      bool       `json:"clicked"`
	CreatedAt    time.Time  `json:"created_at"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	ReadAt       *time.Time `json:"read_at,omitempty"`
}

// AlertStatsResponse is the per-user engagement rollup.
// @Description Per-user alert statistics
type AlertStatsResponse struct {
	TotalAlerts int            `json:"total_alerts"`
	Sent        int            `json:"sent"`
	Read        int            `json:"read"`
	Clicked     int            `json:"clicked"`
	ByType      map[string]int `json:"by_type"`
}
