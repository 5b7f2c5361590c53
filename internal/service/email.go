package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lexcase/caseflow/internal/mailer"
	"github.com/lexcase/caseflow/internal/model"
)

// sendAssignmentEmail renders the assignment template for n, sends it to
// the recipient and records the delivery on the notification
func (s *NotificationService) sendAssignmentEmail(ctx context.Context, n *model.Notification) error {
	user, err := s.activeUser(ctx, n.Recipient)
	if err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}

	c, err := notificationCase(ctx, s.cases, n)
	if err != nil {
		return fmt.Errorf("resolve case: %w", err)
	}

	data := mailer.CaseAssignmentEmail{
		RecipientName: user.FullName(),
		CaseType:      string(c.Type),
		CaseNumber:    c.Number,
		CaseTitle:     c.Title,
		Reassigned:    n.Category == model.CategoryCaseReassigned,
	}
	if a := n.Metadata.Assignment; a != nil {
		data.AssignedBy = a.AssignedBy
	}
	if n.ActionURL != "" {
		data.ActionURL = s.appURL + n.ActionURL
	}

	html, err := mailer.RenderCaseAssignment(data)
	if err != nil {
		return err
	}

	messageID, err := s.mail.Send(ctx, mailer.Message{
		To:      user.Email,
		Subject: data.Subject(),
		HTML:    html,
	})
	if err != nil {
		return err
	}

	sentAt := s.clock.Now().UTC()
	if err := s.notifications.MarkEmailSent(ctx, n.ID, sentAt); err != nil {
		return fmt.Errorf("record email delivery: %w", err)
	}
	n.IsEmailSent = true
	n.EmailSentAt = &sentAt

	s.logger.Info("Assignment email sent",
		zap.String("notification_id", n.ID),
		zap.String("message_id", messageID))

	return nil
}
