package model

import (
	"time"
)

// Category identifies what a notification is about
type Category string

const (
	CategoryCourtDate            Category = "court_date"
	CategoryMentioningDate       Category = "mentioning_date"
	CategoryHearingDate          Category = "hearing_date"
	CategoryCaseAssigned         Category = "case_assigned"
	CategoryCaseReassigned       Category = "case_reassigned"
	CategoryTaskReminder         Category = "task_reminder"
	CategoryDailySummary         Category = "daily_summary"
	CategorySystem               Category = "system"
	CategoryPaymentStatusUpdated Category = "payment_status_updated"
	CategoryPaymentDueReminder   Category = "payment_due_reminder"
	CategoryFollowUpReminder     Category = "follow_up_reminder"
	CategoryPromisedPaymentAdded Category = "promised_payment_added"
)

// Categories lists every known category
var Categories = []Category{
	CategoryCourtDate,
	CategoryMentioningDate,
	CategoryHearingDate,
	CategoryCaseAssigned,
	CategoryCaseReassigned,
	CategoryTaskReminder,
	CategoryDailySummary,
	CategorySystem,
	CategoryPaymentStatusUpdated,
	CategoryPaymentDueReminder,
	CategoryFollowUpReminder,
	CategoryPromisedPaymentAdded,
}

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// IsAssignment reports whether c is one of the case assignment categories,
// the only ones that fan out to email.
func (c Category) IsAssignment() bool {
	return c == CategoryCaseAssigned || c == CategoryCaseReassigned
}

// Priority is the urgency tier of a notification
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Rank orders priorities: low < medium < high < urgent.
// Unknown values rank below low.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	case PriorityUrgent:
		return 3
	default:
		return -1
	}
}

// Valid reports whether p is a known priority
func (p Priority) Valid() bool {
	return p.Rank() >= 0
}

// Notification represents a notification addressed to a single user
type Notification struct {
	ID                string     `json:"id" db:"id" bson:"_id"`
	Recipient         string     `json:"recipient" db:"recipient" bson:"recipient"`
	Title             string     `json:"title" db:"title" bson:"title"`
	Message           string     `json:"message" db:"message" bson:"message"`
	Category          Category   `json:"category" db:"category" bson:"category"`
	Priority          Priority   `json:"priority" db:"priority" bson:"priority"`
	RelatedLegalCase  *string    `json:"relatedLegalCase,omitempty" db:"related_legal_case" bson:"relatedLegalCase,omitempty"`
	RelatedCreditCase *string    `json:"relatedCreditCase,omitempty" db:"related_credit_case" bson:"relatedCreditCase,omitempty"`
	EventDate         *time.Time `json:"eventDate,omitempty" db:"event_date" bson:"eventDate,omitempty"`
	IsRead            bool       `json:"isRead" db:"is_read" bson:"isRead"`
	IsEmailSent       bool       `json:"isEmailSent" db:"is_email_sent" bson:"isEmailSent"`
	EmailSentAt       *time.Time `json:"emailSentAt,omitempty" db:"email_sent_at" bson:"emailSentAt,omitempty"`
	ActionURL         string     `json:"actionUrl,omitempty" db:"action_url" bson:"actionUrl,omitempty"`
	Metadata          Metadata   `json:"metadata" db:"metadata" bson:"metadata"`
	CreatedAt         time.Time  `json:"createdAt" db:"created_at" bson:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
}

// RelatedCaseID returns whichever related case reference is set
func (n *Notification) RelatedCaseID() string {
	if n.RelatedLegalCase != nil {
		return *n.RelatedLegalCase
	}
	if n.RelatedCreditCase != nil {
		return *n.RelatedCreditCase
	}
	return ""
}

// NotificationInput carries everything needed to create a notification
type NotificationInput struct {
	Recipient         string     `json:"recipient" validate:"required"`
	Title             string     `json:"title" validate:"required,max=200"`
	Message           string     `json:"message" validate:"required,max=2000"`
	Category          Category   `json:"category" validate:"required,notification_category"`
	Priority          Priority   `json:"priority" validate:"omitempty,notification_priority"`
	RelatedLegalCase  *string    `json:"relatedLegalCase,omitempty" validate:"excluded_with=RelatedCreditCase"`
	RelatedCreditCase *string    `json:"relatedCreditCase,omitempty"`
	EventDate         *time.Time `json:"eventDate,omitempty"`
	ActionURL         string     `json:"actionUrl,omitempty" validate:"max=500"`
	Metadata          Metadata   `json:"metadata"`
	SendEmail         bool       `json:"sendEmail"`
}

// NotificationFilter selects a page of a user's notifications
type NotificationFilter struct {
	Recipient  string
	UnreadOnly bool
	Limit      int
	Offset     int
}

// DuplicateKey identifies a reminder for the same event already delivered
// to the same user.
type DuplicateKey struct {
	Recipient         string
	Category          Category
	RelatedLegalCase  *string
	RelatedCreditCase *string
	EventDate         time.Time
}

// Pagination describes the page returned by the list endpoint
type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	TotalCount  int `json:"totalCount"`
	Limit       int `json:"limit"`
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// NewPagination builds pagination metadata for a page of total records
func NewPagination(total, page, limit int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  total,
		Limit:       limit,
	}
}

// NotificationPage is a page of notifications with its pagination metadata
type NotificationPage struct {
	Notifications []Notification `json:"notifications"`
	Pagination    Pagination     `json:"pagination"`
}

// NotificationCountResponse represents the count of unread notifications
type NotificationCountResponse struct {
	Count int `json:"count"`
}

// NotificationMarkResponse represents the response after marking notifications as read
type NotificationMarkResponse struct {
	ModifiedCount int `json:"modifiedCount"`
}
