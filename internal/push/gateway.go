package push

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rafael-ceotto/StormGuard/internal/config"
	"github.com/sirupsen/logrus"
)

// Request is the per-user dispatch request sent to the push gateway.
type Request struct {
	UserID      string            `json:"user_id"`
	DeviceToken string            `json:"device_token"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	Data        map[string]string `json:"data,omitempty"`
}

// Gateway delivers a single push notification. A returned error means the
// transport did not accept the message; retry policy belongs to the caller's
// orchestration layer, never to implementations.
type Gateway interface {
	Send(ctx context.Context, req *Request) error
}

// HTTPGateway posts requests to a mobile-push gateway as JSON, signing the
// body with HMAC-SHA256 when a secret is configured.
type HTTPGateway struct {
	url        string
	secret     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewHTTPGateway creates a gateway client with a per-request timeout.
func NewHTTPGateway(cfg *config.Config, logger *logrus.Logger) *HTTPGateway {
	return &HTTPGateway{
		url:    cfg.PushGatewayURL,
		secret: cfg.PushGatewaySecret,
		httpClient: &http.Client{
			Timeout: cfg.PushTimeout,
		},
		logger: logger,
	}
}

// Send posts one notification. Exactly one attempt per call.
func (g *HTTPGateway) Send(ctx context.Context, req *Request) error {
	if g.url == "" {
		return fmt.Errorf("push gateway URL is not configured")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal push request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create push request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.secret != "" {
		httpReq.Header.Set("X-Push-Signature", generateHMACSHA256(payload, g.secret))
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("push gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push gateway rejected message: status %d", resp.StatusCode)
	}

	g.logger.WithFields(logrus.Fields{
		"user_id": req.UserID,
		"title":   req.Title,
	}).Debug("Push notification accepted by gateway")
	return nil
}

// generateHMACSHA256 signs the payload so the gateway can verify the origin.
func generateHMACSHA256(data []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
