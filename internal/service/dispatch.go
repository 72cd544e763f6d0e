package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rafael-ceotto/StormGuard/internal/config"
	"github.com/rafael-ceotto/StormGuard/internal/models"
	"github.com/rafael-ceotto/StormGuard/internal/push"
	"github.com/sirupsen/logrus"
)

// ErrInvalidPrediction marks malformed trigger input; the cycle is rejected
// before any store is touched.
var ErrInvalidPrediction = errors.New("invalid prediction")

// CandidateRepository supplies the users geographically and topically in
// scope for a prediction, with preferences already resolved to concrete
// values (missing rows become the default preference).
type CandidateRepository interface {
	FindCandidates(ctx context.Context, pred *models.Prediction, box models.BoundingBox) ([]*models.Candidate, error)
}

// AlertRepository owns the alerts table and its cache.
type AlertRepository interface {
	Create(ctx context.Context, alert *models.Alert) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Alert, error)
	ListByUser(ctx context.Context, userID string, limit, offset int, unreadOnly bool) ([]*models.Alert, error)
	Update(ctx context.Context, alert *models.Alert) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountSentSince(ctx context.Context, userID string, since time.Time) (int, error)
	HasAlertForPrediction(ctx context.Context, userID, predictionID string, since time.Time) (bool, error)
	StatsByUser(ctx context.Context, userID string) (*models.AlertStats, error)
	GetAlertFromCache(ctx context.Context, id uuid.UUID) (*models.Alert, error)
	SetAlertCache(ctx context.Context, alert *models.Alert) error
	InvalidateAlertCache(ctx context.Context, id uuid.UUID) error
}

// MetricsRepository is the sink for per-cycle aggregates.
type MetricsRepository interface {
	RecordCycle(ctx context.Context, metrics *models.CycleMetrics) error
}

// DispatchService runs one dispatch cycle per prediction: select candidates,
// filter for eligibility, send one notification per eligible user, record
// alerts and fold the aggregate for the metrics sink.
type DispatchService interface {
	RunCycle(ctx context.Context, pred *models.Prediction) (*models.CycleResult, error)
}

type dispatchService struct {
	users   CandidateRepository
	alerts  AlertRepository
	metrics MetricsRepository
	gateway push.Gateway
	logger  *logrus.Logger
	cfg     *config.Config
	now     func() time.Time
}

func NewDispatchService(
	users CandidateRepository,
	alerts AlertRepository,
	metrics MetricsRepository,
	gateway push.Gateway,
	logger *logrus.Logger,
	cfg *config.Config,
) DispatchService {
	return &dispatchService{
		users:   users,
		alerts:  alerts,
		metrics: metrics,
		gateway: gateway,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// RunCycle executes the full pipeline for one prediction. Store errors
// before dispatch abort the cycle (fail-closed); per-recipient transport
// errors are isolated and reported in the result's errors array.
func (s *dispatchService) RunCycle(ctx context.Context, pred *models.Prediction) (*models.CycleResult, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":       "dispatch",
		"method":        "RunCycle",
		"prediction_id": pred.ID,
		"disaster_type": pred.DisasterType,
	})

	if err := pred.Validate(); err != nil {
		log.WithError(err).Warn("Rejecting malformed prediction")
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrediction, err)
	}

	box := models.NewBoundingBox(pred.Latitude, pred.Longitude, pred.RadiusKM)
	candidates, err := s.users.FindCandidates(ctx, pred, box)
	if err != nil {
		log.WithError(err).Error("Candidate selection failed, aborting cycle")
		return nil, fmt.Errorf("service: could not select candidates: %w", err)
	}
	log.WithField("candidates", len(candidates)).Info("Candidate selection completed")

	eligible, err := s.filterEligible(ctx, pred, box, candidates, log)
	if err != nil {
		return nil, err
	}
	log.WithField("eligible", len(eligible)).Info("Eligibility filter completed")

	result := s.dispatch(ctx, pred, eligible)
	log.WithFields(logrus.Fields{
		"total":   result.Total,
		"sent":    result.Sent,
		"failed":  result.Failed,
		"skipped": result.Skipped,
	}).Info("Dispatch cycle completed")

	// Metrics recording is best-effort; a sink failure never fails the cycle.
	metrics := &models.CycleMetrics{
		Timestamp:   s.now().UTC(),
		TotalSent:   result.Sent,
		TotalFailed: result.Failed,
	}
	if err := s.metrics.RecordCycle(ctx, metrics); err != nil {
		log.WithError(err).Warn("Failed to record cycle metrics")
	}

	return result, nil
}

// filterEligible applies the rule chain to every candidate, fetching the
// daily-sent count only when the preceding rules passed and a cap is set.
// Duplicate candidate rows collapse to one entry per user, and rows whose
// coordinates fall outside the selection box are discarded.
func (s *dispatchService) filterEligible(ctx context.Context, pred *models.Prediction, box models.BoundingBox, candidates []*models.Candidate, log *logrus.Entry) ([]*models.Candidate, error) {
	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	seen := make(map[string]struct{}, len(candidates))
	eligible := make([]*models.Candidate, 0, len(candidates))
	for _, cand := range candidates {
		if _, dup := seen[cand.User.ID]; dup {
			continue
		}
		seen[cand.User.ID] = struct{}{}

		if !box.Contains(cand.User.Latitude, cand.User.Longitude) {
			log.WithField("user_id", cand.User.ID).Debug("Candidate outside selection area")
			continue
		}

		sentToday := 0
		if cand.Preference.MaxDailyAlerts > 0 {
			count, err := s.alerts.CountSentSince(ctx, cand.User.ID, startOfDay)
			if err != nil {
				return nil, fmt.Errorf("service: could not count sent alerts for user %s: %w", cand.User.ID, err)
			}
			sentToday = count
		}

		if reason, ok := Evaluate(pred, cand, sentToday, now); !ok {
			log.WithFields(logrus.Fields{
				"user_id": cand.User.ID,
				"reason":  reason,
			}).Debug("Candidate rejected by eligibility filter")
			continue
		}
		eligible = append(eligible, cand)
	}
	return eligible, nil
}

// dispatch fans the eligible set out over a bounded worker pool, one send
// attempt per user, and folds the outcomes under a mutex. At most once per
// user per cycle; a failing user never blocks the others.
func (s *dispatchService) dispatch(ctx context.Context, pred *models.Prediction, eligible []*models.Candidate) *models.CycleResult {
	result := &models.CycleResult{
		Total:  len(eligible),
		Errors: []models.DispatchError{},
	}
	if len(eligible) == 0 {
		return result
	}

	level := models.RiskLevelFromScore(pred.Probability)
	title, body, data := renderPayload(pred, level, s.now())

	workers := s.cfg.DispatchWorkers
	if workers > len(eligible) {
		workers = len(eligible)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan *models.Candidate)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for cand := range jobs {
				outcome := s.sendOne(ctx, pred, cand, level, title, body, data)
				mu.Lock()
				result.Fold(outcome)
				mu.Unlock()
			}
		}()
	}

	for _, cand := range eligible {
		jobs <- cand
	}
	close(jobs)
	wg.Wait()

	return result
}

// sendOne performs exactly one notification attempt for one user and
// classifies the terminal outcome. The Alert row is written only after the
// transport acknowledged the send, so cancellation mid-flight can never
// leave a sent=true record without a delivered message.
func (s *dispatchService) sendOne(ctx context.Context, pred *models.Prediction, cand *models.Candidate, level models.RiskLevel, title, body string, data map[string]string) models.DispatchOutcome {
	userID := cand.User.ID

	// Re-check at send time: selection data may have gone stale (token
	// revoked, notifications turned off between selection and send).
	if !cand.User.Deliverable() || !cand.Preference.EnablePush {
		return models.DispatchOutcome{UserID: userID, Status: models.OutcomeSkipped, Reason: models.ReasonNotDeliverable}
	}

	if s.cfg.RedispatchCooldown > 0 {
		since := s.now().Add(-s.cfg.RedispatchCooldown)
		alerted, err := s.alerts.HasAlertForPrediction(ctx, userID, pred.ID, since)
		if err != nil {
			return models.DispatchOutcome{UserID: userID, Status: models.OutcomeFailed, Err: fmt.Errorf("redispatch check: %w", err)}
		}
		if alerted {
			return models.DispatchOutcome{UserID: userID, Status: models.OutcomeSkipped, Reason: models.ReasonAlreadyAlerted}
		}
	}

	req := &push.Request{
		UserID:      userID,
		DeviceToken: cand.User.DeviceToken,
		Title:       title,
		Body:        body,
		Data:        data,
	}
	if err := s.gateway.Send(ctx, req); err != nil {
		return models.DispatchOutcome{UserID: userID, Status: models.OutcomeFailed, Err: err}
	}

	now := s.now()
	alert := &models.Alert{
		ID:           uuid.New(),
		UserID:       userID,
		PredictionID: pred.ID,
		DisasterType: pred.DisasterType,
		Title:        title,
		Message:      body,
		RiskLevel:    level,
		RiskScore:    pred.Probability,
		Latitude:     pred.Latitude,
		Longitude:    pred.Longitude,
		RadiusKM:     pred.RadiusKM,
		Sent:         true,
		CreatedAt:    now,
		SentAt:       &now,
	}
	if err := s.alerts.Create(ctx, alert); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("Notification sent but alert record failed")
		return models.DispatchOutcome{UserID: userID, Status: models.OutcomeFailed, Err: fmt.Errorf("record alert: %w", err)}
	}

	return models.DispatchOutcome{UserID: userID, Status: models.OutcomeSent, AlertID: alert.ID}
}

// renderPayload builds the notification content shared by every recipient of
// a cycle.
func renderPayload(pred *models.Prediction, level models.RiskLevel, now time.Time) (title, body string, data map[string]string) {
	location := fmt.Sprintf("(%.4f, %.4f)", pred.Latitude, pred.Longitude)
	title = fmt.Sprintf("%s Alert", titleCase(string(pred.DisasterType)))
	body = fmt.Sprintf("%s risk in %s", level, location)
	data = map[string]string{
		"alert_type": string(pred.DisasterType),
		"risk_level": string(level),
		"risk_score": strconv.FormatFloat(pred.Probability, 'f', 2, 64),
		"location":   location,
		"timestamp":  now.UTC().Format(time.RFC3339),
	}
	return title, body, data
}

// titleCase turns "heat_wave" into "Heat Wave".
func titleCase(s string) string {
	words := strings.Split(strings.ReplaceAll(s, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
