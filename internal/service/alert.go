package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rafael-ceotto/StormGuard/internal/models"
	"github.com/sirupsen/logrus"
)

var (
	// ErrAlertNotFound means no alert exists with the given id.
	ErrAlertNotFound = errors.New("alert not found")
	// ErrForbidden means the alert exists but belongs to another user.
	// Deliberately distinct from ErrAlertNotFound.
	ErrForbidden = errors.New("alert belongs to another user")
)

// AlertService exposes the engagement API over persisted alerts. Every
// operation is authorized to the alert's owning user only.
type AlertService interface {
	GetAlert(ctx context.Context, id uuid.UUID, requesterID string) (*models.Alert, error)
	ListUserAlerts(ctx context.Context, userID, requesterID string, limit, offset int, unreadOnly bool) ([]*models.Alert, error)
	MarkRead(ctx context.Context, id uuid.UUID, requesterID string) (*models.Alert, error)
	MarkClicked(ctx context.Context, id uuid.UUID, requesterID string) (*models.Alert, error)
	DeleteAlert(ctx context.Context, id uuid.UUID, requesterID string) error
	GetStats(ctx context.Context, userID, requesterID string) (*models.AlertStats, error)
}

type alertService struct {
	repo   AlertRepository
	logger *logrus.Logger
	now    func() time.Time
}

func NewAlertService(repo AlertRepository, logger *logrus.Logger) AlertService {
	return &alertService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// GetAlert returns one alert, cache first.
func (s *alertService) GetAlert(ctx context.Context, id uuid.UUID, requesterID string) (*models.Alert, error) {
	alert, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if alert.UserID != requesterID {
		return nil, fmt.Errorf("service: get alert %s: %w", id, ErrForbidden)
	}
	return alert, nil
}

// ListUserAlerts returns a page of a user's alerts, newest first.
func (s *alertService) ListUserAlerts(ctx context.Context, userID, requesterID string, limit, offset int, unreadOnly bool) ([]*models.Alert, error) {
	if userID != requesterID {
		return nil, fmt.Errorf("service: list alerts for %s: %w", userID, ErrForbidden)
	}
	if limit < 1 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	alerts, err := s.repo.ListByUser(ctx, userID, limit, offset, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("service: could not list alerts: %w", err)
	}
	return alerts, nil
}

// MarkRead applies SENT -> READ. Re-marking an already-read or clicked alert
// is a no-op that returns the unchanged record.
func (s *alertService) MarkRead(ctx context.Context, id uuid.UUID, requesterID string) (*models.Alert, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "alert",
		"method":   "MarkRead",
		"alert_id": id,
	})

	alert, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if alert.UserID != requesterID {
		return nil, fmt.Errorf("service: mark read %s: %w", id, ErrForbidden)
	}

	if !alert.MarkRead(s.now()) {
		return alert, nil
	}
	if err := s.repo.Update(ctx, alert); err != nil {
		log.WithError(err).Error("Failed to persist read transition")
		return nil, fmt.Errorf("service: could not mark alert read: %w", err)
	}
	s.invalidateCache(ctx, id, log)
	log.Info("Alert marked read")
	return alert, nil
}

// MarkClicked applies -> CLICKED, setting read as a side effect when needed.
func (s *alertService) MarkClicked(ctx context.Context, id uuid.UUID, requesterID string) (*models.Alert, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "alert",
		"method":   "MarkClicked",
		"alert_id": id,
	})

	alert, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if alert.UserID != requesterID {
		return nil, fmt.Errorf("service: mark clicked %s: %w", id, ErrForbidden)
	}

	if !alert.MarkClicked(s.now()) {
		return alert, nil
	}
	if err := s.repo.Update(ctx, alert); err != nil {
		log.WithError(err).Error("Failed to persist click transition")
		return nil, fmt.Errorf("service: could not mark alert clicked: %w", err)
	}
	s.invalidateCache(ctx, id, log)
	log.Info("Alert marked clicked")
	return alert, nil
}

// DeleteAlert removes the record entirely. Terminal; no further transitions.
func (s *alertService) DeleteAlert(ctx context.Context, id uuid.UUID, requesterID string) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "alert",
		"method":   "DeleteAlert",
		"alert_id": id,
	})

	alert, err := s.fetch(ctx, id)
	if err != nil {
		return err
	}
	if alert.UserID != requesterID {
		return fmt.Errorf("service: delete alert %s: %w", id, ErrForbidden)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		log.WithError(err).Error("Failed to delete alert")
		return fmt.Errorf("service: could not delete alert: %w", err)
	}
	s.invalidateCache(ctx, id, log)
	log.Info("Alert deleted")
	return nil
}

// GetStats aggregates a user's alert history.
func (s *alertService) GetStats(ctx context.Context, userID, requesterID string) (*models.AlertStats, error) {
	if userID != requesterID {
		return nil, fmt.Errorf("service: stats for %s: %w", userID, ErrForbidden)
	}

	stats, err := s.repo.StatsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: could not get alert stats: %w", err)
	}
	return stats, nil
}

// fetch resolves an alert cache-first, falling back to the database and
// repopulating the cache on a miss. Cache errors are logged, never fatal.
func (s *alertService) fetch(ctx context.Context, id uuid.UUID) (*models.Alert, error) {
	cached, err := s.repo.GetAlertFromCache(ctx, id)
	if err != nil {
		s.logger.WithError(err).WithField("alert_id", id).Warn("Alert cache read failed")
	}
	if cached != nil {
		return cached, nil
	}

	alert, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: could not get alert: %w", err)
	}
	if err := s.repo.SetAlertCache(ctx, alert); err != nil {
		s.logger.WithError(err).WithField("alert_id", id).Warn("Alert cache write failed")
	}
	return alert, nil
}

func (s *alertService) invalidateCache(ctx context.Context, id uuid.UUID, log *logrus.Entry) {
	if err := s.repo.InvalidateAlertCache(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to invalidate alert cache")
	}
}
