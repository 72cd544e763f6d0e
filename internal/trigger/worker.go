package trigger

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rafael-ceotto/StormGuard/internal/config"
	"github.com/rafael-ceotto/StormGuard/internal/models"
	"github.com/rafael-ceotto/StormGuard/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Worker consumes queued predictions and runs one dispatch cycle per
// prediction. It applies the global risk floor before the pipeline runs;
// per-user thresholds are the eligibility filter's concern.
type Worker struct {
	redisClient *redis.Client
	dispatch    service.DispatchService
	logger      *logrus.Logger
	cfg         *config.Config
}

func NewWorker(redisClient *redis.Client, dispatch service.DispatchService, logger *logrus.Logger, cfg *config.Config) *Worker {
	return &Worker{
		redisClient: redisClient,
		dispatch:    dispatch,
		logger:      logger,
		cfg:         cfg,
	}
}

// Start launches the consuming goroutine. It runs until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Starting prediction trigger worker...")
	go func() {
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("Stopping prediction trigger worker.")
				return
			default:
				result, err := w.redisClient.BRPop(ctx, 0, predictionQueueKey).Result()
				if err != nil {
					if errors.Is(err, context.Canceled) {
						continue
					}
					w.logger.WithError(err).Error("Failed to pop prediction from Redis")
					time.Sleep(time.Second)
					continue
				}

				// result[0] is the key, result[1] the payload
				var pred models.Prediction
				if err := json.Unmarshal([]byte(result[1]), &pred); err != nil {
					w.logger.WithError(err).Error("Failed to unmarshal queued prediction")
					continue
				}

				w.processPrediction(ctx, &pred)
			}
		}
	}()
}

func (w *Worker) processPrediction(ctx context.Context, pred *models.Prediction) {
	log := w.logger.WithFields(logrus.Fields{
		"prediction_id": pred.ID,
		"disaster_type": pred.DisasterType,
		"probability":   pred.Probability,
	})

	if err := pred.Validate(); err != nil {
		log.WithError(err).Warn("Dropping malformed queued prediction")
		return
	}

	// Global floor, independent of per-user thresholds.
	if pred.Probability <= w.cfg.GlobalRiskThreshold {
		log.Debug("Prediction below global risk threshold, skipping")
		return
	}

	result, err := w.dispatch.RunCycle(ctx, pred)
	if err != nil {
		// The cycle is retried by re-enqueueing upstream, not here.
		log.WithError(err).Error("Dispatch cycle failed")
		return
	}

	log.WithFields(logrus.Fields{
		"total":   result.Total,
		"sent":    result.Sent,
		"failed":  result.Failed,
		"skipped": result.Skipped,
	}).Info("Dispatch cycle finished")
}
