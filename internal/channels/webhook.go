package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/good-yellow-bee/blazealert/internal/models"
)

// WebhookConfig holds webhook channel configuration.
type WebhookConfig struct {
	URL     string            // Target URL for POSTed alerts
	Headers map[string]string // Extra request headers (e.g. auth)
	Timeout time.Duration     // Per-request timeout (default 30s)

	// RatePerMinute caps outgoing requests to protect the receiver
	// from alert floods; 0 disables the limiter.
	RatePerMinute int
}

// Validate validates the webhook configuration.
func (c *WebhookConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("webhook URL is required")
	}
	return nil
}

// WebhookChannel POSTs alerts to an HTTP endpoint as JSON.
type WebhookChannel struct {
	config     WebhookConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewWebhookChannel creates a new webhook channel.
func NewWebhookChannel(config WebhookConfig) (*WebhookChannel, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid webhook config: %w", err)
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if config.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RatePerMinute)), config.RatePerMinute)
	}

	return &WebhookChannel{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		limiter:    limiter,
	}, nil
}

// Type returns "webhook".
func (c *WebhookChannel) Type() models.ChannelType {
	return models.ChannelWebhook
}

// Send POSTs the alert. When the rate limit is exhausted the send
// blocks until a slot frees or the context is cancelled.
func (c *WebhookChannel) Send(ctx context.Context, alert *models.Alert) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("webhook rate limit: %w", err)
		}
	}

	jsonData, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range c.config.Headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook error: status %d, body: %s", resp.StatusCode, string(body))
	}

	return nil
}

// Close is a no-op for the webhook channel.
func (c *WebhookChannel) Close() error {
	return nil
}
