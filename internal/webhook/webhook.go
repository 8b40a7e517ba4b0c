// Package webhook delivers confirmed bookings to the downstream CRM endpoint.
//
// Delivery is best effort with bounded retries; the slot engine and dialogue
// engine never wait on it.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/CloseLoop/SalesPipe/internal/models"
)

// Delivery constants.
const (
	// DefaultTimeout bounds a single delivery attempt.
	DefaultTimeout = 10 * time.Second
	// MaxAttempts bounds retries per booking.
	MaxAttempts = 3
	// retryBackoff is the base delay between attempts, doubled each retry.
	retryBackoff = 2 * time.Second
)

// Sender delivers booking payloads. Implemented by Client and by test mocks.
type Sender interface {
	SendBooking(ctx context.Context, booking models.BookingRequest) error
}

// Opts holds configuration options for the webhook client.
type Opts struct {
	URL        string
	HTTPClient *http.Client
}

// Option defines a configuration option for the webhook client.
type Option func(*Opts)

// WithURL sets the CRM booking endpoint.
func WithURL(url string) Option {
	return func(o *Opts) { o.URL = url }
}

// WithHTTPClient overrides the HTTP client. Intended for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Opts) { o.HTTPClient = c }
}

// Client posts booking payloads to a configured URL.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a webhook client. The URL is required.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.URL == "" {
		return nil, models.ErrWebhookURLMissing
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	slog.Debug("webhook.NewClient: booking webhook configured")
	return &Client{url: cfg.URL, httpClient: httpClient}, nil
}

// SendBooking posts the booking as JSON, retrying transient failures with
// doubling backoff. A non-2xx response counts as a failure.
func (c *Client) SendBooking(ctx context.Context, booking models.BookingRequest) error {
	body, err := json.Marshal(booking)
	if err != nil {
		return fmt.Errorf("failed to marshal booking payload: %w", err)
	}

	var lastErr error
	backoff := retryBackoff
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		lastErr = c.post(ctx, body)
		if lastErr == nil {
			slog.Info("Client.SendBooking: booking delivered",
				"sessionID", booking.SessionID, "attempt", attempt)
			return nil
		}
		slog.Warn("Client.SendBooking: delivery attempt failed",
			"sessionID", booking.SessionID, "attempt", attempt, "error", lastErr)
		if attempt < MaxAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}
	return fmt.Errorf("booking delivery failed after %d attempts: %w", MaxAttempts, lastErr)
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
