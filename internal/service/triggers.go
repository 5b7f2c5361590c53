package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lexcase/caseflow/internal/model"
)

// NotifyCaseAssigned tells the new assignee about a case assignment and
// emails them. A previous assignee other than the new one makes it a
// reassignment.
func (s *NotificationService) NotifyCaseAssigned(ctx context.Context, a model.CaseAssignment) (*model.Notification, error) {
	if err := s.validateStruct(a); err != nil {
		return nil, err
	}

	c, err := loadCase(ctx, s.cases, a.CaseType, a.CaseID)
	if err != nil {
		return nil, err
	}

	category := model.CategoryCaseAssigned
	title := "New case assigned"
	if a.PreviousAssignee != "" && a.PreviousAssignee != a.AssigneeID {
		category = model.CategoryCaseReassigned
		title = "Case reassigned to you"
	}

	legal, credit := c.related()
	return s.CreateNotification(ctx, model.NotificationInput{
		Recipient:         a.AssigneeID,
		Title:             title,
		Message:           fmt.Sprintf("You have been assigned to %s case %s: %s", c.Type, c.Number, c.Title),
		Category:          category,
		Priority:          model.PriorityHigh,
		RelatedLegalCase:  legal,
		RelatedCreditCase: credit,
		ActionURL:         caseActionURL(c.Type, c.ID),
		Metadata: model.Metadata{Assignment: &model.AssignmentMetadata{
			CaseNumber:       c.Number,
			CaseTitle:        c.Title,
			CaseType:         c.Type,
			AssignedBy:       a.AssignedBy,
			PreviousAssignee: a.PreviousAssignee,
		}},
		SendEmail: true,
	})
}

// NotifyPaymentStatusUpdated tells the credit case assignee that a promised
// payment changed status. Unassigned cases produce no notification.
func (s *NotificationService) NotifyPaymentStatusUpdated(ctx context.Context, e model.PaymentEvent) (*model.Notification, error) {
	return s.notifyPayment(ctx, e, model.CategoryPaymentStatusUpdated,
		"Payment status updated",
		func(c *caseRef) string {
			return fmt.Sprintf("Payment of %s on case %s is now %s", formatAmount(e.Currency, e.Amount), c.Number, e.Status)
		})
}

// NotifyPromisedPaymentAdded tells the credit case assignee about a new
// promised payment. Unassigned cases produce no notification.
func (s *NotificationService) NotifyPromisedPaymentAdded(ctx context.Context, e model.PaymentEvent) (*model.Notification, error) {
	return s.notifyPayment(ctx, e, model.CategoryPromisedPaymentAdded,
		"Promised payment added",
		func(c *caseRef) string {
			msg := fmt.Sprintf("%s promised to pay %s on case %s", c.DebtorName, formatAmount(e.Currency, e.Amount), c.Number)
			if e.DueDate != nil {
				msg += " by " + e.DueDate.Format(dateLayout)
			}
			return msg
		})
}

func (s *NotificationService) notifyPayment(
	ctx context.Context,
	e model.PaymentEvent,
	category model.Category,
	title string,
	message func(*caseRef) string,
) (*model.Notification, error) {
	if err := s.validateStruct(e); err != nil {
		return nil, err
	}

	c, err := loadCase(ctx, s.cases, model.CaseTypeCredit, e.CaseID)
	if err != nil {
		return nil, err
	}
	if c.AssignedTo == nil || *c.AssignedTo == "" {
		s.logger.Info("Credit case has no assignee, skipping payment notification",
			zap.String("case_id", c.ID),
			zap.String("category", string(category)))
		return nil, nil
	}

	_, credit := c.related()
	return s.CreateNotification(ctx, model.NotificationInput{
		Recipient:         *c.AssignedTo,
		Title:             fmt.Sprintf("%s: %s", title, c.Number),
		Message:           message(c),
		Category:          category,
		Priority:          model.PriorityMedium,
		RelatedCreditCase: credit,
		EventDate:         e.DueDate,
		ActionURL:         caseActionURL(c.Type, c.ID),
		Metadata: model.Metadata{PaymentStatus: &model.PaymentStatusMetadata{
			CaseNumber:    c.Number,
			PaymentID:     e.PaymentID,
			PaymentAmount: e.Amount,
			Currency:      e.Currency,
			Status:        e.Status,
		}},
	})
}
