package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/lexcase/caseflow/internal/config"
	"github.com/lexcase/caseflow/internal/model"
)

type mockWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *mockWriter) Close() error {
	m.closed = true
	return nil
}

func testNotification() *model.Notification {
	caseID := "lc-1"
	return &model.Notification{
		ID:               "n-1",
		Recipient:        "u-1",
		Category:         model.CategoryCourtDate,
		Priority:         model.PriorityUrgent,
		RelatedLegalCase: &caseID,
		CreatedAt:        time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC),
	}
}

func TestPublishNotificationCreated(t *testing.T) {
	w := &mockWriter{}
	p := &Producer{writer: w, topic: "notification-events", logger: zap.NewNop()}

	if err := p.PublishNotificationCreated(context.Background(), testNotification()); err != nil {
		t.Fatalf("PublishNotificationCreated() error = %v", err)
	}
	if len(w.messages) != 1 {
		t.Fatalf("wrote %d messages, want 1", len(w.messages))
	}

	msg := w.messages[0]
	if string(msg.Key) != "u-1" {
		t.Errorf("key = %q, want u-1", msg.Key)
	}

	var event model.NotificationEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if event.Type != model.EventNotificationCreated {
		t.Errorf("type = %q", event.Type)
	}
	if event.RelatedCaseID != "lc-1" {
		t.Errorf("relatedCaseId = %q, want lc-1", event.RelatedCaseID)
	}
	if event.Priority != model.PriorityUrgent {
		t.Errorf("priority = %q", event.Priority)
	}
}

func TestPublishNotificationCreatedWriteError(t *testing.T) {
	w := &mockWriter{err: errors.New("broker down")}
	p := &Producer{writer: w, topic: "notification-events", logger: zap.NewNop()}

	if err := p.PublishNotificationCreated(context.Background(), testNotification()); err == nil {
		t.Error("expected error when writer fails")
	}
}

func TestClose(t *testing.T) {
	w := &mockWriter{}
	p := &Producer{writer: w, logger: zap.NewNop()}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if !w.closed {
		t.Error("writer not closed")
	}
}

func TestNewSelectsPublisher(t *testing.T) {
	logger := zap.NewNop()

	if p := New(config.KafkaConfig{Enabled: false, Brokers: []string{"localhost:9092"}}, logger); p != (Noop{}) {
		t.Errorf("disabled: New() = %T, want Noop", p)
	}
	if p := New(config.KafkaConfig{Enabled: true}, logger); p != (Noop{}) {
		t.Errorf("no brokers: New() = %T, want Noop", p)
	}

	p := New(config.KafkaConfig{Enabled: true, Brokers: []string{"localhost:9092"}, ClientID: "caseflow", Topic: "notification-events"}, logger)
	producer, ok := p.(*Producer)
	if !ok {
		t.Fatalf("enabled: New() = %T, want *Producer", p)
	}
	if producer.topic != "notification-events" {
		t.Errorf("topic = %q", producer.topic)
	}
	if err := producer.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
