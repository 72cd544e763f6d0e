package trigger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rafael-ceotto/StormGuard/internal/models"
	"github.com/redis/go-redis/v9"
)

const predictionQueueKey = "prediction_events"

// Publisher enqueues predictions for asynchronous dispatch.
type Publisher interface {
	Publish(ctx context.Context, pred *models.Prediction) error
}

// RedisPublisher pushes predictions onto a Redis list consumed by the
// trigger worker.
type RedisPublisher struct {
	redisClient *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{
		redisClient: client,
	}
}

// Publish appends one prediction to the queue.
func (p *RedisPublisher) Publish(ctx context.Context, pred *models.Prediction) error {
	payload, err := json.Marshal(pred)
	if err != nil {
		return fmt.Errorf("failed to marshal prediction: %w", err)
	}
	if err := p.redisClient.LPush(ctx, predictionQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish prediction to Redis: %w", err)
	}
	return nil
}
