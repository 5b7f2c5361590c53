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

// CaseRepository reads legal and credit cases. Notes and promised payments
// live in their own tables keyed by case id.
type CaseRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewCaseRepository creates a new case repository
func NewCaseRepository(db *sqlx.DB, logger *zap.Logger) *CaseRepository {
	return &CaseRepository{
		db:     db,
		logger: logger,
	}
}

type legalCaseRow struct {
	ID              string     `db:"id"`
	CaseNumber      string     `db:"case_number"`
	Title           string     `db:"title"`
	CourtName       string     `db:"court_name"`
	CourtDate       *time.Time `db:"court_date"`
	NextHearingDate *time.Time `db:"next_hearing_date"`
	MentioningDate  *time.Time `db:"mentioning_date"`
	AssignedTo      *string    `db:"assigned_to"`
}

func (r legalCaseRow) toModel() model.LegalCase {
	return model.LegalCase{
		ID:         r.ID,
		CaseNumber: r.CaseNumber,
		Title:      r.Title,
		CourtDetails: model.CourtDetails{
			CourtName:       r.CourtName,
			CourtDate:       r.CourtDate,
			NextHearingDate: r.NextHearingDate,
			MentioningDate:  r.MentioningDate,
		},
		AssignedTo: r.AssignedTo,
	}
}

type creditCaseRow struct {
	ID         string  `db:"id"`
	CaseNumber string  `db:"case_number"`
	Title      string  `db:"title"`
	DebtorName string  `db:"debtor_name"`
	AssignedTo *string `db:"assigned_to"`
}

type noteRow struct {
	CaseID       string     `db:"case_id"`
	CaseNumber   string     `db:"case_number"`
	CaseTitle    string     `db:"case_title"`
	DebtorName   string     `db:"debtor_name"`
	AssignedTo   *string    `db:"assigned_to"`
	NoteID       string     `db:"note_id"`
	Content      string     `db:"content"`
	FollowUpDate *time.Time `db:"follow_up_date"`
	CreatedAt    time.Time  `db:"created_at"`
}

type paymentRow struct {
	CaseID       string    `db:"case_id"`
	CaseNumber   string    `db:"case_number"`
	CaseTitle    string    `db:"case_title"`
	DebtorName   string    `db:"debtor_name"`
	AssignedTo   *string   `db:"assigned_to"`
	PaymentID    string    `db:"payment_id"`
	Amount       float64   `db:"amount"`
	Currency     string    `db:"currency"`
	PromisedDate time.Time `db:"promised_date"`
	Status       string    `db:"status"`
	Notes        string    `db:"notes"`
}

func (r paymentRow) payment() model.PromisedPayment {
	return model.PromisedPayment{
		ID:           r.PaymentID,
		Amount:       r.Amount,
		Currency:     r.Currency,
		PromisedDate: r.PromisedDate,
		Status:       model.PaymentStatus(r.Status),
		Notes:        r.Notes,
	}
}

// FindLegalCasesWithCourtDates returns assigned legal cases with at least one
// court date, hearing date or mentioning date inside [from, to)
func (r *CaseRepository) FindLegalCasesWithCourtDates(ctx context.Context, from, to time.Time) ([]model.LegalCase, error) {
	query := `
		SELECT id, case_number, title, court_name, court_date, next_hearing_date, mentioning_date, assigned_to
		FROM legal_cases
		WHERE assigned_to IS NOT NULL
		  AND (
			(court_date >= $1 AND court_date < $2)
			OR (next_hearing_date >= $1 AND next_hearing_date < $2)
			OR (mentioning_date >= $1 AND mentioning_date < $2)
		  )
		ORDER BY case_number`

	var rows []legalCaseRow
	if err := r.db.SelectContext(ctx, &rows, query, from, to); err != nil {
		r.logger.Error("Failed to query legal cases with court dates", zap.Error(err))
		return nil, fmt.Errorf("query legal cases: %w", err)
	}

	cases := make([]model.LegalCase, 0, len(rows))
	for _, row := range rows {
		cases = append(cases, row.toModel())
	}

	return cases, nil
}

// FindFollowUpNotes returns one row per credit case note whose follow-up
// date falls inside [from, to), joined with its parent case
func (r *CaseRepository) FindFollowUpNotes(ctx context.Context, from, to time.Time) ([]model.FollowUpCandidate, error) {
	query := `
		SELECT c.id AS case_id, c.case_number, c.title AS case_title, c.debtor_name, c.assigned_to,
		       n.id AS note_id, n.content, n.follow_up_date, n.created_at
		FROM credit_case_notes n
		JOIN credit_cases c ON c.id = n.case_id
		WHERE n.follow_up_date >= $1 AND n.follow_up_date < $2
		ORDER BY n.follow_up_date, n.id`

	var rows []noteRow
	if err := r.db.SelectContext(ctx, &rows, query, from, to); err != nil {
		r.logger.Error("Failed to query follow-up notes", zap.Error(err))
		return nil, fmt.Errorf("query follow-up notes: %w", err)
	}

	candidates := make([]model.FollowUpCandidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, model.FollowUpCandidate{
			CaseID:     row.CaseID,
			CaseNumber: row.CaseNumber,
			CaseTitle:  row.CaseTitle,
			DebtorName: row.DebtorName,
			AssignedTo: row.AssignedTo,
			Note: model.CaseNote{
				ID:           row.NoteID,
				Content:      row.Content,
				FollowUpDate: row.FollowUpDate,
				CreatedAt:    row.CreatedAt,
			},
		})
	}

	return candidates, nil
}

// FindPromisedPayments returns one row per promised payment with the given
// status whose promised date falls inside [from, to)
func (r *CaseRepository) FindPromisedPayments(ctx context.Context, from, to time.Time, status model.PaymentStatus) ([]model.PromisedPaymentCandidate, error) {
	query := `
		SELECT c.id AS case_id, c.case_number, c.title AS case_title, c.debtor_name, c.assigned_to,
		       p.id AS payment_id, p.amount::float8 AS amount, p.currency, p.promised_date, p.status, p.notes
		FROM promised_payments p
		JOIN credit_cases c ON c.id = p.case_id
		WHERE p.promised_date >= $1 AND p.promised_date < $2
		  AND p.status = $3
		ORDER BY p.promised_date, p.id`

	var rows []paymentRow
	if err := r.db.SelectContext(ctx, &rows, query, from, to, string(status)); err != nil {
		r.logger.Error("Failed to query promised payments", zap.Error(err))
		return nil, fmt.Errorf("query promised payments: %w", err)
	}

	candidates := make([]model.PromisedPaymentCandidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, model.PromisedPaymentCandidate{
			CaseID:     row.CaseID,
			CaseNumber: row.CaseNumber,
			CaseTitle:  row.CaseTitle,
			DebtorName: row.DebtorName,
			AssignedTo: row.AssignedTo,
			Payment:    row.payment(),
		})
	}

	return candidates, nil
}

// GetLegalCase retrieves a legal case by ID
func (r *CaseRepository) GetLegalCase(ctx context.Context, id string) (*model.LegalCase, error) {
	query := `
		SELECT id, case_number, title, court_name, court_date, next_hearing_date, mentioning_date, assigned_to
		FROM legal_cases WHERE id = $1`

	var row legalCaseRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get legal case", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("get legal case: %w", err)
	}

	lc := row.toModel()
	return &lc, nil
}

// GetCreditCase retrieves a credit case by ID with its notes and promised payments
func (r *CaseRepository) GetCreditCase(ctx context.Context, id string) (*model.CreditCase, error) {
	var row creditCaseRow
	err := r.db.GetContext(ctx, &row,
		`SELECT id, case_number, title, debtor_name, assigned_to FROM credit_cases WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get credit case", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("get credit case: %w", err)
	}

	cc := &model.CreditCase{
		ID:         row.ID,
		CaseNumber: row.CaseNumber,
		Title:      row.Title,
		DebtorName: row.DebtorName,
		AssignedTo: row.AssignedTo,
	}

	var notes []noteRow
	err = r.db.SelectContext(ctx, &notes, `
		SELECT case_id, id AS note_id, content, follow_up_date, created_at
		FROM credit_case_notes WHERE case_id = $1 ORDER BY created_at`, id)
	if err != nil {
		return nil, fmt.Errorf("get credit case notes: %w", err)
	}
	for _, n := range notes {
		cc.Notes = append(cc.Notes, model.CaseNote{
			ID:           n.NoteID,
			Content:      n.Content,
			FollowUpDate: n.FollowUpDate,
			CreatedAt:    n.CreatedAt,
		})
	}

	var payments []paymentRow
	err = r.db.SelectContext(ctx, &payments, `
		SELECT case_id, id AS payment_id, amount::float8 AS amount, currency, promised_date, status, notes
		FROM promised_payments WHERE case_id = $1 ORDER BY promised_date`, id)
	if err != nil {
		return nil, fmt.Errorf("get credit case payments: %w", err)
	}
	for _, p := range payments {
		cc.PromisedPayments = append(cc.PromisedPayments, p.payment())
	}

	return cc, nil
}
