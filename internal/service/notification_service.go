package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lexcase/caseflow/internal/cache"
	"github.com/lexcase/caseflow/internal/clock"
	"github.com/lexcase/caseflow/internal/events"
	"github.com/lexcase/caseflow/internal/mailer"
	"github.com/lexcase/caseflow/internal/model"
	"github.com/lexcase/caseflow/internal/repository"
)

// NotificationService handles notification operations
type NotificationService struct {
	notifications repository.NotificationStore
	cases         repository.CaseStore
	users         repository.UserStore
	mail          mailer.Sender
	unread        cache.UnreadCounter
	events        events.Publisher
	clock         clock.Clock
	validate      *validator.Validate
	appURL        string
	logger        *zap.Logger
}

// NewNotificationService creates a new notification service. The unread
// count cache and event publisher start as no-ops.
func NewNotificationService(
	notifications repository.NotificationStore,
	cases repository.CaseStore,
	users repository.UserStore,
	mail mailer.Sender,
	appURL string,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		cases:         cases,
		users:         users,
		mail:          mail,
		unread:        cache.Noop{},
		events:        events.Noop{},
		clock:         clock.Real{},
		validate:      newValidator(),
		appURL:        strings.TrimSuffix(appURL, "/"),
		logger:        logger,
	}
}

// WithUnreadCache sets the unread count cache
func (s *NotificationService) WithUnreadCache(c cache.UnreadCounter) *NotificationService {
	s.unread = c
	return s
}

// WithPublisher sets the event publisher
func (s *NotificationService) WithPublisher(p events.Publisher) *NotificationService {
	s.events = p
	return s
}

// WithClock sets the clock used for timestamps
func (s *NotificationService) WithClock(c clock.Clock) *NotificationService {
	s.clock = c
	return s
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("notification_category", func(fl validator.FieldLevel) bool {
		return model.Category(fl.Field().String()).Valid()
	})
	v.RegisterValidation("notification_priority", func(fl validator.FieldLevel) bool {
		return model.Priority(fl.Field().String()).Valid()
	})
	return v
}

func (s *NotificationService) validateStruct(v interface{}) error {
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// CreateNotification validates and stores a notification. When SendEmail is
// set on an assignment category the email is attempted afterwards; email
// problems are logged and never fail the call.
func (s *NotificationService) CreateNotification(ctx context.Context, in model.NotificationInput) (*model.Notification, error) {
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}
	if err := in.Metadata.CheckCategory(in.Category); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	priority := in.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	now := s.clock.Now().UTC()
	n := &model.Notification{
		ID:                uuid.New().String(),
		Recipient:         in.Recipient,
		Title:             in.Title,
		Message:           in.Message,
		Category:          in.Category,
		Priority:          priority,
		RelatedLegalCase:  in.RelatedLegalCase,
		RelatedCreditCase: in.RelatedCreditCase,
		EventDate:         in.EventDate,
		ActionURL:         in.ActionURL,
		Metadata:          in.Metadata,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.notifications.Create(ctx, n); err != nil {
		s.logger.Error("Failed to create notification",
			zap.String("recipient", n.Recipient),
			zap.String("category", string(n.Category)),
			zap.Error(err))
		return nil, err
	}

	s.invalidateUnread(ctx, n.Recipient)

	if err := s.events.PublishNotificationCreated(ctx, n); err != nil {
		s.logger.Warn("Failed to publish notification event",
			zap.String("notification_id", n.ID),
			zap.Error(err))
	}

	if in.SendEmail && n.Category.IsAssignment() {
		if err := s.sendAssignmentEmail(ctx, n); err != nil {
			if errors.Is(err, mailer.ErrDisabled) {
				s.logger.Debug("Email disabled, skipping assignment email", zap.String("notification_id", n.ID))
			} else {
				s.logger.Error("Failed to send assignment email",
					zap.String("notification_id", n.ID),
					zap.String("recipient", n.Recipient),
					zap.Error(err))
			}
		}
	}

	return n, nil
}

// ListNotifications returns a page of the user's notifications, newest first
func (s *NotificationService) ListNotifications(ctx context.Context, userID string, page, limit int, unreadOnly bool) (*model.NotificationPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = model.DefaultPageLimit
	} else if limit > model.MaxPageLimit {
		limit = model.MaxPageLimit
	}

	items, total, err := s.notifications.List(ctx, model.NotificationFilter{
		Recipient:  userID,
		UnreadOnly: unreadOnly,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}

	return &model.NotificationPage{
		Notifications: items,
		Pagination:    model.NewPagination(total, page, limit),
	}, nil
}

// MarkAsRead marks the notification read when userID owns it
func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID string) (*model.Notification, error) {
	n, err := s.notifications.MarkAsRead(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNotificationNotFound
	}

	s.invalidateUnread(ctx, userID)
	return n, nil
}

// MarkAllAsRead marks every unread notification of userID as read
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string) (int, error) {
	count, err := s.notifications.MarkAllAsRead(ctx, userID)
	if err != nil {
		return 0, err
	}

	s.invalidateUnread(ctx, userID)
	return count, nil
}

// GetUnreadCount returns the number of unread notifications for userID
func (s *NotificationService) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	count, ok, err := s.unread.Get(ctx, userID)
	if err != nil {
		s.logger.Warn("Unread count cache read failed", zap.String("user_id", userID), zap.Error(err))
	}
	if ok {
		return count, nil
	}

	count, err = s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}

	if err := s.unread.Set(ctx, userID, count); err != nil {
		s.logger.Warn("Unread count cache write failed", zap.String("user_id", userID), zap.Error(err))
	}

	return count, nil
}

// DeleteNotification deletes the notification when userID owns it
func (s *NotificationService) DeleteNotification(ctx context.Context, id, userID string) error {
	deleted, err := s.notifications.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotificationNotFound
	}

	s.invalidateUnread(ctx, userID)
	return nil
}

func (s *NotificationService) invalidateUnread(ctx context.Context, userID string) {
	if err := s.unread.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("Failed to invalidate unread count", zap.String("user_id", userID), zap.Error(err))
	}
}

// activeUser loads a user and reports ErrUserNotFound for missing or
// inactive accounts
func (s *NotificationService) activeUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrUserNotFound
	}
	return user, nil
}
