package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/lexcase/caseflow/internal/model"
)

const notificationColumns = `id, recipient, title, message, category, priority,
	related_legal_case, related_credit_case, event_date, is_read,
	is_email_sent, email_sent_at, action_url, metadata, created_at, updated_at`

// NotificationRepository handles database operations for notifications
type NotificationRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sqlx.DB, logger *zap.Logger) *NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a notification record
func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (` + notificationColumns + `)
		VALUES (
			:id, :recipient, :title, :message, :category, :priority,
			:related_legal_case, :related_credit_case, :event_date, :is_read,
			:is_email_sent, :email_sent_at, :action_url, :metadata, :created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, n); err != nil {
		r.logger.Error("Failed to create notification",
			zap.String("recipient", n.Recipient),
			zap.String("category", string(n.Category)),
			zap.Error(err))
		return fmt.Errorf("insert notification: %w", err)
	}

	return nil
}

// GetByID retrieves a notification by ID
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`

	var n model.Notification
	if err := r.db.GetContext(ctx, &n, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get notification", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("get notification: %w", err)
	}

	return &n, nil
}

// List retrieves a page of a user's notifications, newest first, together
// with the total number of matching records
func (r *NotificationRepository) List(ctx context.Context, filter model.NotificationFilter) ([]model.Notification, int, error) {
	where := `WHERE recipient = $1`
	if filter.UnreadOnly {
		where += ` AND is_read = FALSE`
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM notifications `+where, filter.Recipient); err != nil {
		r.logger.Error("Failed to count notifications", zap.String("recipient", filter.Recipient), zap.Error(err))
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications ` + where +
		` ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`

	notifications := []model.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, query, filter.Recipient, filter.Limit, filter.Offset); err != nil {
		r.logger.Error("Failed to list notifications", zap.String("recipient", filter.Recipient), zap.Error(err))
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}

	return notifications, total, nil
}

// CountUnread retrieves the count of unread notifications for a user
func (r *NotificationRepository) CountUnread(ctx context.Context, recipient string) (int, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE recipient = $1 AND is_read = FALSE`

	var count int
	if err := r.db.GetContext(ctx, &count, query, recipient); err != nil {
		r.logger.Error("Failed to get unread notification count", zap.Error(err))
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}

	return count, nil
}

// MarkAsRead marks a notification as read if it belongs to recipient
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id, recipient string) (*model.Notification, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE, updated_at = NOW()
		WHERE id = $1 AND recipient = $2
		RETURNING ` + notificationColumns

	var n model.Notification
	if err := r.db.GetContext(ctx, &n, query, id, recipient); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to mark notification as read", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("mark notification read: %w", err)
	}

	return &n, nil
}

// MarkAllAsRead marks all unread notifications for a user as read
func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, recipient string) (int, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE, updated_at = NOW()
		WHERE recipient = $1 AND is_read = FALSE`

	res, err := r.db.ExecContext(ctx, query, recipient)
	if err != nil {
		r.logger.Error("Failed to mark all notifications as read", zap.Error(err))
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	return int(affected), nil
}

// Delete removes a notification if it belongs to recipient
func (r *NotificationRepository) Delete(ctx context.Context, id, recipient string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1 AND recipient = $2`, id, recipient)
	if err != nil {
		r.logger.Error("Failed to delete notification", zap.String("id", id), zap.Error(err))
		return false, fmt.Errorf("delete notification: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	return affected > 0, nil
}

// MarkEmailSent records that the email side-channel delivered the notification
func (r *NotificationRepository) MarkEmailSent(ctx context.Context, id string, sentAt time.Time) error {
	query := `
		UPDATE notifications
		SET is_email_sent = TRUE, email_sent_at = $2, updated_at = NOW()
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, sentAt); err != nil {
		r.logger.Error("Failed to mark notification email as sent", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("mark email sent: %w", err)
	}

	return nil
}

// Exists reports whether a notification for the same recipient, category,
// related case and event date is already stored
func (r *NotificationRepository) Exists(ctx context.Context, key model.DuplicateKey) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE recipient = $1
			  AND category = $2
			  AND related_legal_case IS NOT DISTINCT FROM $3
			  AND related_credit_case IS NOT DISTINCT FROM $4
			  AND event_date = $5
		)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query,
		key.Recipient, key.Category, key.RelatedLegalCase, key.RelatedCreditCase, key.EventDate)
	if err != nil {
		r.logger.Error("Failed to check for existing notification", zap.Error(err))
		return false, fmt.Errorf("check notification exists: %w", err)
	}

	return exists, nil
}
