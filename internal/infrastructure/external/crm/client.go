// Package crm triggers the external CRM automation platform over signed
// JSON webhooks.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	standardwebhooks "github.com/standard-webhooks/standard-webhooks/libraries/go"
	"go.uber.org/zap"

	"github.com/garyjia/claims-portal/internal/application/port"
)

// ErrTriggerFailed is returned when the CRM rejects or cannot receive a trigger
var ErrTriggerFailed = errors.New("crm trigger failed")

// Config holds the CRM trigger endpoints and signing secret
type Config struct {
	ContactURL    string
	StatusURL     string
	SigningSecret string
	Timeout       time.Duration
}

// Client implements port.CRMNotifier
type Client struct {
	cfg    Config
	http   *http.Client
	signer *standardwebhooks.Webhook
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

var _ port.CRMNotifier = (*Client)(nil)

// NewClient creates a CRM client. Requests are unsigned when no secret is set.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
		now:    time.Now,
		newID:  func() string { return "msg_" + uuid.NewString() },
	}

	if cfg.SigningSecret != "" {
		wh, err := standardwebhooks.NewWebhookRaw([]byte(cfg.SigningSecret))
		if err != nil {
			return nil, fmt.Errorf("failed to create webhook signer: %w", err)
		}
		c.signer = wh
	}
	return c, nil
}

// SyncContact creates or updates the insured party's CRM contact
func (c *Client) SyncContact(ctx context.Context, contact port.ContactSync) error {
	return c.trigger(ctx, c.cfg.ContactURL, contact)
}

// SendStatusUpdate triggers the status notification automation
func (c *Client) SendStatusUpdate(ctx context.Context, u port.StatusUpdate) error {
	return c.trigger(ctx, c.cfg.StatusURL, u)
}

// Verify checks the webhook signature headers of an inbound payload.
// It is a no-op when no secret is configured.
func (c *Client) Verify(payload []byte, headers http.Header) error {
	if c.signer == nil {
		return nil
	}
	if err := c.signer.Verify(payload, headers); err != nil {
		return fmt.Errorf("invalid webhook signature: %w", err)
	}
	return nil
}

func (c *Client) trigger(ctx context.Context, url string, v any) error {
	if url == "" {
		return fmt.Errorf("%w: no trigger URL configured", ErrTriggerFailed)
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	msgID := c.newID()
	if c.signer != nil {
		ts := c.now()
		sig, err := c.signer.Sign(msgID, ts, payload)
		if err != nil {
			return fmt.Errorf("failed to sign payload: %w", err)
		}
		req.Header.Set("webhook-id", msgID)
		req.Header.Set("webhook-timestamp", fmt.Sprintf("%d", ts.Unix()))
		req.Header.Set("webhook-signature", sig)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("CRM trigger request failed", zap.String("url", url), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrTriggerFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("CRM trigger rejected",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return fmt.Errorf("%w: status %d", ErrTriggerFailed, resp.StatusCode)
	}

	c.logger.Info("CRM trigger delivered", zap.String("url", url), zap.String("webhook_id", msgID))
	return nil
}
