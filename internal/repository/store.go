// Package repository defines the stores the notification subsystem reads
// and writes, with a PostgreSQL implementation. The mongodb subpackage
// implements the same interfaces over MongoDB.
package repository

import (
	"context"
	"time"

	"github.com/lexcase/caseflow/internal/model"
)

// NotificationStore persists notification records.
// Lookups that find nothing return nil without an error.
type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	GetByID(ctx context.Context, id string) (*model.Notification, error)
	List(ctx context.Context, filter model.NotificationFilter) ([]model.Notification, int, error)
	CountUnread(ctx context.Context, recipient string) (int, error)
	// MarkAsRead flips is_read only when recipient owns the record.
	MarkAsRead(ctx context.Context, id, recipient string) (*model.Notification, error)
	MarkAllAsRead(ctx context.Context, recipient string) (int, error)
	// Delete removes the record only when recipient owns it.
	Delete(ctx context.Context, id, recipient string) (bool, error)
	MarkEmailSent(ctx context.Context, id string, sentAt time.Time) error
	Exists(ctx context.Context, key model.DuplicateKey) (bool, error)
}

// CaseStore is the read-only view over legal and credit cases. All date
// windows are half-open: from <= date < to.
type CaseStore interface {
	FindLegalCasesWithCourtDates(ctx context.Context, from, to time.Time) ([]model.LegalCase, error)
	FindFollowUpNotes(ctx context.Context, from, to time.Time) ([]model.FollowUpCandidate, error)
	FindPromisedPayments(ctx context.Context, from, to time.Time, status model.PaymentStatus) ([]model.PromisedPaymentCandidate, error)
	GetLegalCase(ctx context.Context, id string) (*model.LegalCase, error)
	GetCreditCase(ctx context.Context, id string) (*model.CreditCase, error)
}

// UserStore resolves notification recipients.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*model.User, error)
}
