package models

import (
	"time"

	"github.com/google/uuid"
)

// OutcomeStatus is the terminal classification of one send attempt.
type OutcomeStatus string

const (
	OutcomeSent    OutcomeStatus = "sent"
	OutcomeSkipped OutcomeStatus = "skipped"
	OutcomeFailed  OutcomeStatus = "failed"
)

// SkipReason explains why a user was rejected or skipped. Used for
// observability only, never for control flow outside the cycle.
type SkipReason string

const (
	ReasonPreferenceDisabled SkipReason = "preference_disabled"
	ReasonBelowRiskThreshold SkipReason = "below_risk_threshold"
	ReasonQuietHours         SkipReason = "quiet_hours"
	ReasonDailyCapReached    SkipReason = "daily_cap_reached"
	ReasonNotDeliverable     SkipReason = "not_deliverable"
	ReasonAlreadyAlerted     SkipReason = "already_alerted"
)

// DispatchOutcome is the ephemeral per-attempt result. It is folded into the
// cycle aggregate and, for sent, into an Alert record; it is never persisted
// directly.
type DispatchOutcome struct {
	UserID  string
	Status  OutcomeStatus
	AlertID uuid.UUID
	Reason  SkipReason
	Err     error
}

// DispatchError is the per-user entry of the cycle result's errors array.
type DispatchError struct {
	UserID string `json:"user_id"`
	Error  string `json:"error"`
}

// CycleResult is the aggregate returned to the orchestrator, structured even
// on partial failure.
type CycleResult struct {
	Total   int             `json:"total"`
	Sent    int             `json:"sent"`
	Failed  int             `json:"failed"`
	Skipped int             `json:"skipped"`
	Errors  []DispatchError `json:"errors"`
}

// Fold merges one outcome into the aggregate.
func (r *CycleResult) Fold(o DispatchOutcome) {
	switch o.Status {
	case OutcomeSent:
		r.Sent++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
		msg := "unknown error"
		if o.Err != nil {
			msg = o.Err.Error()
		}
		r.Errors = append(r.Errors, DispatchError{UserID: o.UserID, Error: msg})
	}
}

// CycleMetrics is the cumulative record written to the metrics sink after
// each cycle.
type CycleMetrics struct {
	Timestamp   time.Time `json:"timestamp"`
	TotalSent   int       `json:"total_sent"`
	TotalFailed int       `json:"total_failed"`
}
