package mailer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"
	"go.uber.org/zap"

	"github.com/lexcase/caseflow/internal/config"
)

func TestBuildMessage(t *testing.T) {
	s := NewSMTPSender(config.EmailConfig{
		From:     "noreply@firm.test",
		FromName: "Case Management",
	}, zap.NewNop())

	raw, messageID, err := s.buildMessage(Message{
		To:      "advocate@firm.test",
		Subject: "New case assigned: LC-001",
		HTML:    "<p>Hello</p>",
	}, time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("buildMessage() error = %v", err)
	}
	if messageID == "" {
		t.Error("empty message id")
	}

	r, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("parse message: %v", err)
	}

	subject, err := r.Header.Subject()
	if err != nil || subject != "New case assigned: LC-001" {
		t.Errorf("subject = %q, err = %v", subject, err)
	}

	to, err := r.Header.AddressList("To")
	if err != nil || len(to) != 1 || to[0].Address != "advocate@firm.test" {
		t.Errorf("to = %v, err = %v", to, err)
	}

	from, err := r.Header.AddressList("From")
	if err != nil || len(from) != 1 || from[0].Name != "Case Management" {
		t.Errorf("from = %v, err = %v", from, err)
	}

	part, err := r.NextPart()
	if err != nil {
		t.Fatalf("read body part: %v", err)
	}
	body, _ := io.ReadAll(part.Body)
	if string(body) != "<p>Hello</p>" {
		t.Errorf("body = %q", body)
	}
}

func TestSendRejectsInvalidRecipient(t *testing.T) {
	s := NewSMTPSender(config.EmailConfig{Host: "localhost", Port: 25}, zap.NewNop())
	if _, err := s.Send(context.Background(), Message{To: "not-an-address"}); err == nil {
		t.Error("expected error for invalid recipient")
	}
}

func TestNewDisabled(t *testing.T) {
	s := New(config.EmailConfig{Enabled: false}, zap.NewNop())
	if _, err := s.Send(context.Background(), Message{To: "a@b.test"}); !errors.Is(err, ErrDisabled) {
		t.Errorf("Send() = %v, want ErrDisabled", err)
	}
}

func TestRenderCaseAssignment(t *testing.T) {
	data := CaseAssignmentEmail{
		RecipientName: "Jane Wanjiru",
		CaseType:      "legal",
		CaseNumber:    "LC-001",
		CaseTitle:     "Acme <Holdings> v Doe",
		AssignedBy:    "Peter Otieno",
		ActionURL:     "http://app.test/legal-cases/lc-1",
	}

	html, err := RenderCaseAssignment(data)
	if err != nil {
		t.Fatalf("RenderCaseAssignment() error = %v", err)
	}

	for _, want := range []string{"Jane Wanjiru", "LC-001", "Acme &lt;Holdings&gt; v Doe", "Peter Otieno", "http://app.test/legal-cases/lc-1"} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered html missing %q", want)
		}
	}
	if !strings.Contains(html, "A new case has been assigned") {
		t.Error("expected new assignment heading")
	}
	if data.Subject() != "New case assigned: LC-001" {
		t.Errorf("Subject() = %q", data.Subject())
	}

	data.Reassigned = true
	if data.Subject() != "Case reassigned to you: LC-001" {
		t.Errorf("Subject() = %q", data.Subject())
	}
}
