package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// Metadata is the category-specific payload of a notification. At most one
// variant is set, and which one follows the notification's category.
type Metadata struct {
	CourtEvent    *CourtEventMetadata    `json:"courtEvent,omitempty" bson:"courtEvent,omitempty"`
	FollowUp      *FollowUpMetadata      `json:"followUp,omitempty" bson:"followUp,omitempty"`
	PaymentDue    *PaymentDueMetadata    `json:"paymentDue,omitempty" bson:"paymentDue,omitempty"`
	Assignment    *AssignmentMetadata    `json:"assignment,omitempty" bson:"assignment,omitempty"`
	PaymentStatus *PaymentStatusMetadata `json:"paymentStatus,omitempty" bson:"paymentStatus,omitempty"`
	Extra         map[string]string      `json:"extra,omitempty" bson:"extra,omitempty"`
}

// CourtEventMetadata is produced by the court date pass
type CourtEventMetadata struct {
	CaseNumber string `json:"caseNumber" bson:"caseNumber"`
	CaseTitle  string `json:"caseTitle" bson:"caseTitle"`
	CourtName  string `json:"courtName,omitempty" bson:"courtName,omitempty"`
	DaysUntil  int    `json:"daysUntil" bson:"daysUntil"`
}

// FollowUpMetadata is produced by the follow-up pass
type FollowUpMetadata struct {
	CaseNumber  string `json:"caseNumber" bson:"caseNumber"`
	DebtorName  string `json:"debtorName" bson:"debtorName"`
	NoteID      string `json:"noteId" bson:"noteId"`
	NoteContent string `json:"noteContent" bson:"noteContent"`
	DaysUntil   int    `json:"daysUntil" bson:"daysUntil"`
}

// PaymentDueMetadata is produced by the promised payment pass
type PaymentDueMetadata struct {
	CaseNumber    string  `json:"caseNumber" bson:"caseNumber"`
	DebtorName    string  `json:"debtorName" bson:"debtorName"`
	PaymentID     string  `json:"paymentId" bson:"paymentId"`
	PaymentAmount float64 `json:"paymentAmount" bson:"paymentAmount"`
	Currency      string  `json:"currency" bson:"currency"`
	Notes         string  `json:"notes,omitempty" bson:"notes,omitempty"`
	DaysUntil     int     `json:"daysUntil" bson:"daysUntil"`
}

// AssignmentMetadata accompanies case_assigned and case_reassigned
type AssignmentMetadata struct {
	CaseNumber       string   `json:"caseNumber" bson:"caseNumber"`
	CaseTitle        string   `json:"caseTitle" bson:"caseTitle"`
	CaseType         CaseType `json:"caseType" bson:"caseType"`
	AssignedBy       string   `json:"assignedBy,omitempty" bson:"assignedBy,omitempty"`
	PreviousAssignee string   `json:"previousAssignee,omitempty" bson:"previousAssignee,omitempty"`
}

// PaymentStatusMetadata accompanies payment_status_updated and
// promised_payment_added
type PaymentStatusMetadata struct {
	CaseNumber    string        `json:"caseNumber" bson:"caseNumber"`
	PaymentID     string        `json:"paymentId" bson:"paymentId"`
	PaymentAmount float64       `json:"paymentAmount" bson:"paymentAmount"`
	Currency      string        `json:"currency" bson:"currency"`
	Status        PaymentStatus `json:"status" bson:"status"`
}

// variants counts how many payload variants are populated
func (m Metadata) variants() int {
	n := 0
	if m.CourtEvent != nil {
		n++
	}
	if m.FollowUp != nil {
		n++
	}
	if m.PaymentDue != nil {
		n++
	}
	if m.Assignment != nil {
		n++
	}
	if m.PaymentStatus != nil {
		n++
	}
	return n
}

// IsEmpty reports whether no payload is set
func (m Metadata) IsEmpty() bool {
	return m.variants() == 0 && len(m.Extra) == 0
}

// CheckCategory verifies that the populated variant belongs to category c.
func (m Metadata) CheckCategory(c Category) error {
	if m.variants() > 1 {
		return errors.New("metadata has more than one variant set")
	}

	switch {
	case m.CourtEvent != nil:
		if c != CategoryCourtDate && c != CategoryHearingDate && c != CategoryMentioningDate {
			return fmt.Errorf("court event metadata not allowed for %s", c)
		}
	case m.FollowUp != nil:
		if c != CategoryFollowUpReminder {
			return fmt.Errorf("follow-up metadata not allowed for %s", c)
		}
	case m.PaymentDue != nil:
		if c != CategoryPaymentDueReminder {
			return fmt.Errorf("payment due metadata not allowed for %s", c)
		}
	case m.Assignment != nil:
		if !c.IsAssignment() {
			return fmt.Errorf("assignment metadata not allowed for %s", c)
		}
	case m.PaymentStatus != nil:
		if c != CategoryPaymentStatusUpdated && c != CategoryPromisedPaymentAdded {
			return fmt.Errorf("payment status metadata not allowed for %s", c)
		}
	}
	return nil
}

// Value stores the metadata as a JSON document
func (m Metadata) Value() (driver.Value, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return b, nil
}

// Scan reads metadata from a JSON column
func (m *Metadata) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*m = Metadata{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported metadata column type %T", src)
	}
	if len(data) == 0 {
		*m = Metadata{}
		return nil
	}
	return json.Unmarshal(data, m)
}
