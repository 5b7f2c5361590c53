package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lexcase/caseflow/internal/model"
	"github.com/lexcase/caseflow/internal/service"
)

// NotificationCreator is what other services call to raise notifications
type NotificationCreator interface {
	CreateNotification(ctx context.Context, in model.NotificationInput) (*model.Notification, error)
	NotifyCaseAssigned(ctx context.Context, a model.CaseAssignment) (*model.Notification, error)
	NotifyPaymentStatusUpdated(ctx context.Context, e model.PaymentEvent) (*model.Notification, error)
	NotifyPromisedPaymentAdded(ctx context.Context, e model.PaymentEvent) (*model.Notification, error)
}

// ReminderRunner runs the reminder passes
type ReminderRunner interface {
	Run(ctx context.Context, passes ...service.Pass) ([]service.PassResult, error)
}

// RunRemindersRequest optionally selects a subset of passes
type RunRemindersRequest struct {
	Passes []string `json:"passes"`
}

// InternalHandler serves service-to-service endpoints
type InternalHandler struct {
	notifications NotificationCreator
	reminders     ReminderRunner
	logger        *zap.Logger
}

// NewInternalHandler creates a new internal handler
func NewInternalHandler(notifications NotificationCreator, reminders ReminderRunner, logger *zap.Logger) *InternalHandler {
	return &InternalHandler{
		notifications: notifications,
		reminders:     reminders,
		logger:        logger,
	}
}

// CreateNotification creates a notification on behalf of another service
// POST /api/v1/internal/notifications
func (h *InternalHandler) CreateNotification(c *gin.Context) {
	var in model.NotificationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	n, err := h.notifications.CreateNotification(c.Request.Context(), in)
	if err != nil {
		handleError(c, h.logger, "Failed to create notification", err)
		return
	}

	ok(c, http.StatusCreated, n, "Notification created")
}

// CaseAssigned notifies the new assignee of a case
// POST /api/v1/internal/notifications/case-assigned
func (h *InternalHandler) CaseAssigned(c *gin.Context) {
	var a model.CaseAssignment
	if err := c.ShouldBindJSON(&a); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	n, err := h.notifications.NotifyCaseAssigned(c.Request.Context(), a)
	if err != nil {
		handleError(c, h.logger, "Failed to send assignment notification", err)
		return
	}

	ok(c, http.StatusCreated, n, "Assignment notification created")
}

// PaymentStatus notifies the assignee that a promised payment changed status
// POST /api/v1/internal/notifications/payment-status
func (h *InternalHandler) PaymentStatus(c *gin.Context) {
	h.paymentEvent(c, h.notifications.NotifyPaymentStatusUpdated)
}

// PromisedPayment notifies the assignee about a new promised payment
// POST /api/v1/internal/notifications/promised-payment
func (h *InternalHandler) PromisedPayment(c *gin.Context) {
	h.paymentEvent(c, h.notifications.NotifyPromisedPaymentAdded)
}

func (h *InternalHandler) paymentEvent(c *gin.Context, notify func(context.Context, model.PaymentEvent) (*model.Notification, error)) {
	var e model.PaymentEvent
	if err := c.ShouldBindJSON(&e); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	n, err := notify(c.Request.Context(), e)
	if err != nil {
		handleError(c, h.logger, "Failed to send payment notification", err)
		return
	}

	if n == nil {
		ok(c, http.StatusOK, nil, "Case is unassigned; no notification created")
		return
	}
	ok(c, http.StatusCreated, n, "Payment notification created")
}

// RunReminders runs the reminder passes and reports per-pass counts. Pass
// failures do not fail the request; they are reported in the error field.
// POST /api/v1/internal/reminders/run
func (h *InternalHandler) RunReminders(c *gin.Context) {
	var req RunRemindersRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	passes := make([]service.Pass, 0, len(req.Passes))
	for _, name := range req.Passes {
		p, err := service.ParsePass(name)
		if err != nil {
			fail(c, http.StatusBadRequest, "Unknown reminder pass", err)
			return
		}
		passes = append(passes, p)
	}
	if len(passes) == 0 {
		passes = service.Passes
	}

	results, err := h.reminders.Run(c.Request.Context(), passes...)
	resp := Response{Success: true, Data: gin.H{"results": results}, Message: "Reminder passes completed"}
	if err != nil {
		h.logger.Warn("Reminder passes completed with errors", zap.Error(err))
		resp.Message = "Reminder passes completed with errors"
		resp.Error = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}
