package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"internet-cafe-api/internal/notification"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// LogSink writes events to the structured log.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Record(ctx context.Context, event Event) error {
	s.logger.InfoContext(ctx, "audit",
		"action", event.Action,
		"entity", event.Entity,
		"entity_id", event.EntityID,
		"actor_id", event.ActorID,
		"timestamp", event.Timestamp,
		"detail", event.Detail,
	)
	return nil
}

// Publisher is the subset of *nats.Conn the NATS sink needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSSink publishes events as JSON on "<prefix>.<action>".
type NATSSink struct {
	publisher Publisher
	prefix    string
}

// NewNATSSink creates a NATSSink.
func NewNATSSink(publisher Publisher, prefix string) *NATSSink {
	return &NATSSink{publisher: publisher, prefix: prefix}
}

func (s *NATSSink) Name() string { return "nats" }

func (s *NATSSink) Record(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}
	subject := s.prefix + "." + event.Action
	if err := s.publisher.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

// ConnectNATS dials the NATS server used by the audit sink.
func ConnectNATS(url string, logger *slog.Logger) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("internet-cafe-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
}

// WebhookSink forwards events to the HTTP notification service.
type WebhookSink struct {
	notifier notification.Notifier
}

// NewWebhookSink creates a WebhookSink.
func NewWebhookSink(notifier notification.Notifier) *WebhookSink {
	return &WebhookSink{notifier: notifier}
}

func (s *WebhookSink) Name() string { return "webhook" }

func (s *WebhookSink) Record(ctx context.Context, event Event) error {
	message := event.Detail
	if message == "" {
		message = event.Action + " " + event.Entity
	}
	return s.notifier.SendNotification(ctx, notification.Notification{
		Level:     levelFor(event.Action),
		Event:     event.Action,
		Entity:    event.Entity,
		EntityID:  event.EntityID.String(),
		ActorID:   event.ActorID.String(),
		Message:   message,
		Timestamp: event.Timestamp,
	})
}

func levelFor(action string) notification.NotificationLevel {
	switch action {
	case ActionSessionTerminated, ActionComputerRemoved, ActionUserStatusChanged:
		return notification.LevelWarning
	default:
		return notification.LevelInfo
	}
}
