package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// NotificationLevel represents the severity level of a notification
type NotificationLevel string

const (
	LevelInfo     NotificationLevel = "info"
	LevelWarning  NotificationLevel = "warning"
	LevelError    NotificationLevel = "error"
	LevelCritical NotificationLevel = "critical"
)

const (
	userAgent     = "internet-cafe-api/1.0"
	defaultSource = "internet-cafe-api"
)

// Notifier posts notifications to an external webhook
type Notifier interface {
	SendNotification(ctx context.Context, notification Notification) error
	IsHealthy(ctx context.Context) bool
}

// NotificationConfig holds configuration for the notification client
type NotificationConfig struct {
	URL            string
	Timeout        time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
	MaxPayloadSize int64
}

// DefaultConfig returns a default configuration for the notification client
func DefaultConfig(url string) NotificationConfig {
	return NotificationConfig{
		URL:            url,
		Timeout:        10 * time.Second,
		RetryAttempts:  3,
		RetryDelay:     time.Second,
		MaxPayloadSize: 1024 * 1024,
	}
}

type notificationClient struct {
	config NotificationConfig
	client *http.Client
	logger *slog.Logger
}

// NewNotifier creates a new Notifier with default configuration
func NewNotifier(url string, logger *slog.Logger) Notifier {
	return NewNotifierWithConfig(DefaultConfig(url), logger)
}

// NewNotifierWithConfig creates a new Notifier with custom configuration
func NewNotifierWithConfig(config NotificationConfig, logger *slog.Logger) Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &notificationClient{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
	}
}

// Notification is the webhook payload describing one domain event
type Notification struct {
	Level     NotificationLevel `json:"level"`
	Event     string            `json:"event"`
	Entity    string            `json:"entity,omitempty"`
	EntityID  string            `json:"entity_id,omitempty"`
	ActorID   string            `json:"actor_id,omitempty"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp,omitempty"`
	Source    string            `json:"source,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Validate checks if the notification is valid
func (n *Notification) Validate() error {
	if n.Level == "" {
		return fmt.Errorf("notification level is required")
	}
	if n.Event == "" {
		return fmt.Errorf("notification event is required")
	}
	if n.Message == "" {
		return fmt.Errorf("notification message is required")
	}
	if len(n.Message) > 1000 {
		return fmt.Errorf("notification message too long (max 1000 characters)")
	}

	switch n.Level {
	case LevelInfo, LevelWarning, LevelError, LevelCritical:
	default:
		return fmt.Errorf("invalid notification level: %s", n.Level)
	}

	return nil
}

// permanentError marks a failure that a retry cannot fix.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// SendNotification posts the notification, retrying transient failures with linear backoff
func (c *notificationClient) SendNotification(ctx context.Context, notification Notification) error {
	if err := notification.Validate(); err != nil {
		return fmt.Errorf("invalid notification: %w", err)
	}

	if notification.Timestamp.IsZero() {
		notification.Timestamp = time.Now().UTC()
	}
	if notification.Source == "" {
		notification.Source = defaultSource
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.config.RetryDelay * time.Duration(attempt)):
			}
			c.logger.Debug("retrying notification send", "attempt", attempt+1, "max_attempts", c.config.RetryAttempts+1)
		}

		err := c.sendNotificationAttempt(ctx, notification)
		if err == nil {
			return nil
		}
		lastErr = err
		c.logger.Warn("notification send attempt failed", "attempt", attempt+1, "error", err)

		var perm *permanentError
		if errors.As(err, &perm) {
			return err
		}
	}

	return fmt.Errorf("failed to send notification after %d attempts: %w", c.config.RetryAttempts+1, lastErr)
}

func (c *notificationClient) sendNotificationAttempt(ctx context.Context, notification Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return &permanentError{fmt.Errorf("failed to marshal notification: %w", err)}
	}

	if int64(len(payload)) > c.config.MaxPayloadSize {
		return &permanentError{fmt.Errorf("notification payload too large: %d bytes (max %d)", len(payload), c.config.MaxPayloadSize)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewBuffer(payload))
	if err != nil {
		return &permanentError{fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("notification service returned error status %d: %s", resp.StatusCode, string(body))
	}
	if resp.StatusCode >= 400 {
		return &permanentError{fmt.Errorf("notification service rejected request with status %d: %s", resp.StatusCode, string(body))}
	}

	return nil
}

// IsHealthy checks if the notification service is reachable
func (c *notificationClient) IsHealthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.URL+"/health", nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode < 500
}
