package model

import "time"

// CaseType distinguishes the two case collections
type CaseType string

const (
	CaseTypeLegal  CaseType = "legal"
	CaseTypeCredit CaseType = "credit"
)

// PaymentStatus is the state of a promised payment
type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "pending"
	PaymentStatusPaid          PaymentStatus = "paid"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
	PaymentStatusDefaulted     PaymentStatus = "defaulted"
)

// LegalCase is the read-only view of a legal case used for reminders
type LegalCase struct {
	ID           string       `json:"id" bson:"_id"`
	CaseNumber   string       `json:"caseNumber" bson:"caseNumber"`
	Title        string       `json:"title" bson:"title"`
	CourtDetails CourtDetails `json:"courtDetails" bson:"courtDetails"`
	AssignedTo   *string      `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
}

// CourtDetails holds the dated court events of a legal case
type CourtDetails struct {
	CourtName       string     `json:"courtName,omitempty" bson:"courtName,omitempty"`
	CourtDate       *time.Time `json:"courtDate,omitempty" bson:"courtDate,omitempty"`
	NextHearingDate *time.Time `json:"nextHearingDate,omitempty" bson:"nextHearingDate,omitempty"`
	MentioningDate  *time.Time `json:"mentioningDate,omitempty" bson:"mentioningDate,omitempty"`
}

// CreditCase is the read-only view of a debt collection case
type CreditCase struct {
	ID               string            `json:"id" bson:"_id"`
	CaseNumber       string            `json:"caseNumber" bson:"caseNumber"`
	Title            string            `json:"title" bson:"title"`
	DebtorName       string            `json:"debtorName" bson:"debtorName"`
	AssignedTo       *string           `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
	Notes            []CaseNote        `json:"notes,omitempty" bson:"notes,omitempty"`
	PromisedPayments []PromisedPayment `json:"promisedPayments,omitempty" bson:"promisedPayments,omitempty"`
}

// CaseNote is a note on a credit case, optionally carrying a follow-up date
type CaseNote struct {
	ID           string     `json:"id" bson:"_id"`
	Content      string     `json:"content" bson:"content"`
	FollowUpDate *time.Time `json:"followUpDate,omitempty" bson:"followUpDate,omitempty"`
	CreatedAt    time.Time  `json:"createdAt" bson:"createdAt"`
}

// PromisedPayment is a debtor's promise to pay on a date
type PromisedPayment struct {
	ID           string        `json:"id" bson:"_id"`
	Amount       float64       `json:"amount" bson:"amount"`
	Currency     string        `json:"currency" bson:"currency"`
	PromisedDate time.Time     `json:"promisedDate" bson:"promisedDate"`
	Status       PaymentStatus `json:"status" bson:"status"`
	Notes        string        `json:"notes,omitempty" bson:"notes,omitempty"`
}

// FollowUpCandidate is one credit case note with its parent case context,
// i.e. a single row of the unwound notes array.
type FollowUpCandidate struct {
	CaseID     string
	CaseNumber string
	CaseTitle  string
	DebtorName string
	AssignedTo *string
	Note       CaseNote
}

// PromisedPaymentCandidate is one promised payment with its parent case
// context.
type PromisedPaymentCandidate struct {
	CaseID     string
	CaseNumber string
	CaseTitle  string
	DebtorName string
	AssignedTo *string
	Payment    PromisedPayment
}

// CaseAssignment describes a case being assigned to a user
type CaseAssignment struct {
	CaseType         CaseType `json:"caseType" validate:"required,oneof=legal credit"`
	CaseID           string   `json:"caseId" validate:"required"`
	AssigneeID       string   `json:"assigneeId" validate:"required"`
	AssignedBy       string   `json:"assignedBy"`
	PreviousAssignee string   `json:"previousAssignee"`
}

// PaymentEvent describes a change on a credit case's promised payment
type PaymentEvent struct {
	CaseID    string        `json:"caseId" validate:"required"`
	PaymentID string        `json:"paymentId" validate:"required"`
	Amount    float64       `json:"amount" validate:"gte=0"`
	Currency  string        `json:"currency" validate:"required,len=3"`
	Status    PaymentStatus `json:"status" validate:"required,oneof=pending paid partially_paid defaulted"`
	DueDate   *time.Time    `json:"dueDate,omitempty"`
}
