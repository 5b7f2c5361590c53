// Package events publishes notification lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/lexcase/caseflow/internal/config"
	"github.com/lexcase/caseflow/internal/model"
)

// Publisher emits notification events
type Publisher interface {
	PublishNotificationCreated(ctx context.Context, n *model.Notification) error
	Close() error
}

// messageWriter is the part of kafka.Writer the producer uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes JSON-encoded events to a single topic keyed by recipient,
// so one user's events stay ordered within a partition.
type Producer struct {
	writer messageWriter
	topic  string
	logger *zap.Logger
}

// NewProducer creates a producer for topic on brokers
func NewProducer(brokers []string, clientID, topic string, logger *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Transport: &kafka.Transport{
			ClientID: clientID,
		},
	}

	return &Producer{
		writer: writer,
		topic:  topic,
		logger: logger,
	}
}

// New returns a Kafka producer when Kafka is enabled with brokers, and Noop
// otherwise. Close must be called to flush pending writes.
func New(cfg config.KafkaConfig, logger *zap.Logger) Publisher {
	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		return Noop{}
	}
	logger.Info("Initialized Kafka producer", zap.Strings("brokers", cfg.Brokers), zap.String("topic", cfg.Topic))
	return NewProducer(cfg.Brokers, cfg.ClientID, cfg.Topic, logger)
}

// NewEvent builds the created event for n
func NewEvent(n *model.Notification) model.NotificationEvent {
	return model.NotificationEvent{
		Type:           model.EventNotificationCreated,
		NotificationID: n.ID,
		Recipient:      n.Recipient,
		Category:       n.Category,
		Priority:       n.Priority,
		RelatedCaseID:  n.RelatedCaseID(),
		OccurredAt:     n.CreatedAt,
	}
}

// PublishNotificationCreated sends a notification.created event
func (p *Producer) PublishNotificationCreated(ctx context.Context, n *model.Notification) error {
	value, err := json.Marshal(NewEvent(n))
	if err != nil {
		return fmt.Errorf("marshal notification event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(n.Recipient),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(model.EventNotificationCreated)},
		},
		Time: time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish notification event",
			zap.String("topic", p.topic),
			zap.String("notification_id", n.ID),
			zap.Error(err))
		return fmt.Errorf("publish notification event: %w", err)
	}

	p.logger.Debug("Notification event published",
		zap.String("topic", p.topic),
		zap.String("notification_id", n.ID))

	return nil
}

// Close flushes and closes the writer
func (p *Producer) Close() error {
	return p.writer.Close()
}

// Noop discards events when Kafka is disabled
type Noop struct{}

func (Noop) PublishNotificationCreated(context.Context, *model.Notification) error { return nil }
func (Noop) Close() error                                                      { return nil }
