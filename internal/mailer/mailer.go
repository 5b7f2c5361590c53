// Package mailer sends HTML email over SMTP.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"github.com/emersion/go-message/mail"
	"go.uber.org/zap"

	"github.com/lexcase/caseflow/internal/config"
)

// ErrDisabled is returned by the sender used when email is switched off
var ErrDisabled = errors.New("email delivery disabled")

// Message is a single HTML email
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers a message and returns its Message-ID
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// SMTPSender delivers mail through one SMTP relay
type SMTPSender struct {
	cfg    config.EmailConfig
	logger *zap.Logger
}

// NewSMTPSender creates a sender for cfg
func NewSMTPSender(cfg config.EmailConfig, logger *zap.Logger) *SMTPSender {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SMTPSender{cfg: cfg, logger: logger}
}

// New returns an SMTP sender when email is enabled and Disabled otherwise
func New(cfg config.EmailConfig, logger *zap.Logger) Sender {
	if !cfg.Enabled {
		return Disabled{}
	}
	return NewSMTPSender(cfg, logger)
}

// Send composes msg and hands it to the relay
func (s *SMTPSender) Send(ctx context.Context, msg Message) (string, error) {
	if _, err := mail.ParseAddress(msg.To); err != nil {
		return "", fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}

	body, messageID, err := s.buildMessage(msg, time.Now())
	if err != nil {
		return "", err
	}

	if err := s.sendSMTP(ctx, msg.To, body); err != nil {
		s.logger.Error("Failed to send email",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err))
		return "", err
	}

	s.logger.Info("Email sent",
		zap.String("to", msg.To),
		zap.String("message_id", messageID))

	return messageID, nil
}

// buildMessage renders headers and the quoted-printable HTML body
func (s *SMTPSender) buildMessage(msg Message, now time.Time) ([]byte, string, error) {
	var h mail.Header
	h.SetDate(now)
	h.SetAddressList("From", []*mail.Address{{Name: s.cfg.FromName, Address: s.cfg.From}})
	h.SetAddressList("To", []*mail.Address{{Address: msg.To}})
	h.SetSubject(msg.Subject)
	h.SetContentType("text/html", map[string]string{"charset": "utf-8"})
	h.Set("Content-Transfer-Encoding", "quoted-printable")

	if err := h.GenerateMessageID(); err != nil {
		return nil, "", fmt.Errorf("generate message id: %w", err)
	}
	messageID, err := h.MessageID()
	if err != nil {
		return nil, "", fmt.Errorf("read message id: %w", err)
	}

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, "", fmt.Errorf("create message writer: %w", err)
	}
	if _, err := w.Write([]byte(msg.HTML)); err != nil {
		return nil, "", fmt.Errorf("write message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close message body: %w", err)
	}

	return buf.Bytes(), messageID, nil
}

func (s *SMTPSender) sendSMTP(ctx context.Context, to string, body []byte) error {
	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if s.cfg.UseTLS {
		tlsConfig := &tls.Config{
			ServerName: s.cfg.Host,
			MinVersion: tls.VersionTLS12,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start message: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close message: %w", err)
	}

	// the relay has accepted the message by now
	_ = client.Quit()
	return nil
}

// Disabled rejects every message with ErrDisabled
type Disabled struct{}

func (Disabled) Send(context.Context, Message) (string, error) {
	return "", ErrDisabled
}
