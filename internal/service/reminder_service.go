package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/lexcase/caseflow/internal/clock"
	"github.com/lexcase/caseflow/internal/model"
	"github.com/lexcase/caseflow/internal/repository"
)

const dateLayout = "Mon, 02 Jan 2006"

// Pass names one of the reminder scans
type Pass string

const (
	PassCourtDates       Pass = "court_dates"
	PassFollowUps        Pass = "follow_ups"
	PassPromisedPayments Pass = "promised_payments"
)

// Passes lists every pass in the order RunAll executes them
var Passes = []Pass{PassCourtDates, PassFollowUps, PassPromisedPayments}

// ParsePass accepts a pass name or its short alias
func ParsePass(name string) (Pass, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "court", "court_dates", "court-dates":
		return PassCourtDates, nil
	case "followup", "follow_ups", "follow-ups", "followups":
		return PassFollowUps, nil
	case "payments", "promised_payments", "promised-payments":
		return PassPromisedPayments, nil
	default:
		return "", fmt.Errorf("%w: unknown reminder pass %q", ErrInvalidInput, name)
	}
}

// PassResult summarises one pass. Every candidate ends up in exactly one
// of Created, Skipped, Duplicates or Failed.
type PassResult struct {
	Pass       Pass `json:"pass"`
	Candidates int  `json:"candidates"`
	Created    int  `json:"created"`
	Skipped    int  `json:"skipped"`
	Duplicates int  `json:"duplicates"`
	Failed     int  `json:"failed"`
}

func (r PassResult) String() string {
	return fmt.Sprintf("%s: %d candidates, %d created, %d skipped, %d duplicates, %d failed",
		r.Pass, r.Candidates, r.Created, r.Skipped, r.Duplicates, r.Failed)
}

// ReminderService scans cases for upcoming dated events and notifies the
// assigned user about each one
type ReminderService struct {
	cases         repository.CaseStore
	users         repository.UserStore
	notifications repository.NotificationStore
	notifier      *NotificationService
	clock         clock.Clock
	loc           *time.Location
	deduplicate   bool
	logger        *zap.Logger
}

// NewReminderService creates a reminder engine. Reminders are created
// through notifier; store is only consulted for duplicate checks.
func NewReminderService(
	cases repository.CaseStore,
	users repository.UserStore,
	store repository.NotificationStore,
	notifier *NotificationService,
	clk clock.Clock,
	loc *time.Location,
	deduplicate bool,
	logger *zap.Logger,
) *ReminderService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReminderService{
		cases:         cases,
		users:         users,
		notifications: store,
		notifier:      notifier,
		clock:         clk,
		loc:           loc,
		deduplicate:   deduplicate,
		logger:        logger,
	}
}

// reminder is one dated event ready to be turned into a notification
type reminder struct {
	assignee  *string
	eventDate time.Time
	input     model.NotificationInput
}

// RunAll runs every pass in sequence
func (s *ReminderService) RunAll(ctx context.Context) ([]PassResult, error) {
	return s.Run(ctx, Passes...)
}

// Run executes the given passes in order. A failing pass is logged and the
// remaining passes still run; the returned error joins all pass errors.
func (s *ReminderService) Run(ctx context.Context, passes ...Pass) ([]PassResult, error) {
	if len(passes) == 0 {
		passes = Passes
	}

	results := make([]PassResult, 0, len(passes))
	var errs []error

	for _, p := range passes {
		var (
			result PassResult
			err    error
		)
		switch p {
		case PassCourtDates:
			result, err = s.ScanCourtDates(ctx)
		case PassFollowUps:
			result, err = s.ScanFollowUps(ctx)
		case PassPromisedPayments:
			result, err = s.ScanPromisedPayments(ctx)
		default:
			result, err = PassResult{Pass: p}, fmt.Errorf("%w: unknown reminder pass %q", ErrInvalidInput, p)
		}

		results = append(results, result)
		if err != nil {
			s.logger.Error("Reminder pass failed", zap.String("pass", string(p)), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
			continue
		}
		s.logger.Info("Reminder pass finished",
			zap.String("pass", string(p)),
			zap.Int("candidates", result.Candidates),
			zap.Int("created", result.Created),
			zap.Int("skipped", result.Skipped),
			zap.Int("duplicates", result.Duplicates))
	}

	return results, errors.Join(errs...)
}

// ScanCourtDates notifies assignees about court dates, hearings and
// mentionings in the next LookaheadDays days. Every populated in-window
// date of a case is a separate reminder.
func (s *ReminderService) ScanCourtDates(ctx context.Context) (PassResult, error) {
	result := PassResult{Pass: PassCourtDates}
	now := s.clock.Now()
	from, to := ReminderWindow(now, s.loc)

	cases, err := s.cases.FindLegalCasesWithCourtDates(ctx, from, to)
	if err != nil {
		return result, fmt.Errorf("find legal cases: %w", err)
	}

	var reminders []reminder
	for _, lc := range cases {
		for _, ev := range courtEvents(lc) {
			if !inWindow(*ev.date, from, to) {
				continue
			}
			reminders = append(reminders, s.courtReminder(now, lc, ev))
		}
	}

	return s.deliver(ctx, result, reminders)
}

// ScanFollowUps notifies credit case assignees about note follow-ups due
// in the next LookaheadDays days, one reminder per note
func (s *ReminderService) ScanFollowUps(ctx context.Context) (PassResult, error) {
	result := PassResult{Pass: PassFollowUps}
	now := s.clock.Now()
	from, to := ReminderWindow(now, s.loc)

	candidates, err := s.cases.FindFollowUpNotes(ctx, from, to)
	if err != nil {
		return result, fmt.Errorf("find follow-up notes: %w", err)
	}

	var reminders []reminder
	for _, c := range candidates {
		if c.Note.FollowUpDate == nil || !inWindow(*c.Note.FollowUpDate, from, to) {
			continue
		}
		reminders = append(reminders, s.followUpReminder(now, c))
	}

	return s.deliver(ctx, result, reminders)
}

// ScanPromisedPayments notifies credit case assignees about pending
// promised payments due in the next LookaheadDays days
func (s *ReminderService) ScanPromisedPayments(ctx context.Context) (PassResult, error) {
	result := PassResult{Pass: PassPromisedPayments}
	now := s.clock.Now()
	from, to := ReminderWindow(now, s.loc)

	candidates, err := s.cases.FindPromisedPayments(ctx, from, to, model.PaymentStatusPending)
	if err != nil {
		return result, fmt.Errorf("find promised payments: %w", err)
	}

	var reminders []reminder
	for _, c := range candidates {
		if c.Payment.Status != model.PaymentStatusPending || !inWindow(c.Payment.PromisedDate, from, to) {
			continue
		}
		reminders = append(reminders, s.paymentReminder(now, c))
	}

	return s.deliver(ctx, result, reminders)
}

// deliver turns reminders into notifications. Lookup problems skip the
// reminder; persistence problems are counted and reported together.
func (s *ReminderService) deliver(ctx context.Context, result PassResult, reminders []reminder) (PassResult, error) {
	result.Candidates = len(reminders)
	users := s.resolveUsers(ctx, reminders)

	var errs []error
	for _, r := range reminders {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		if r.assignee == nil || *r.assignee == "" {
			result.Skipped++
			s.logger.Debug("Skipping reminder without assignee",
				zap.String("pass", string(result.Pass)),
				zap.String("case", caseID(r.input)))
			continue
		}

		user := users[*r.assignee]
		if user == nil || !user.IsActive {
			result.Skipped++
			s.logger.Warn("Skipping reminder for missing or inactive user",
				zap.String("pass", string(result.Pass)),
				zap.String("user_id", *r.assignee),
				zap.String("case", caseID(r.input)))
			continue
		}

		r.input.Recipient = user.ID
		event := r.eventDate
		r.input.EventDate = &event

		if s.deduplicate {
			exists, err := s.notifications.Exists(ctx, model.DuplicateKey{
				Recipient:         user.ID,
				Category:          r.input.Category,
				RelatedLegalCase:  r.input.RelatedLegalCase,
				RelatedCreditCase: r.input.RelatedCreditCase,
				EventDate:         event,
			})
			if err != nil {
				result.Failed++
				errs = append(errs, fmt.Errorf("check duplicate for case %s: %w", caseID(r.input), err))
				continue
			}
			if exists {
				result.Duplicates++
				continue
			}
		}

		if _, err := s.notifier.CreateNotification(ctx, r.input); err != nil {
			result.Failed++
			s.logger.Error("Failed to create reminder",
				zap.String("pass", string(result.Pass)),
				zap.String("case", caseID(r.input)),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("create reminder for case %s: %w", caseID(r.input), err))
			continue
		}
		result.Created++
	}

	return result, errors.Join(errs...)
}

// resolveUsers loads every assignee referenced by reminders in one query,
// falling back to single lookups when the batch query fails
func (s *ReminderService) resolveUsers(ctx context.Context, reminders []reminder) map[string]*model.User {
	seen := make(map[string]bool)
	var ids []string
	for _, r := range reminders {
		if r.assignee == nil || *r.assignee == "" || seen[*r.assignee] {
			continue
		}
		seen[*r.assignee] = true
		ids = append(ids, *r.assignee)
	}
	if len(ids) == 0 {
		return map[string]*model.User{}
	}

	users, err := s.users.GetByIDs(ctx, ids)
	if err == nil {
		return users
	}
	s.logger.Warn("Batch user lookup failed, resolving users one by one", zap.Error(err))

	users = make(map[string]*model.User, len(ids))
	for _, id := range ids {
		u, err := s.users.GetByID(ctx, id)
		if err != nil {
			s.logger.Warn("User lookup failed", zap.String("user_id", id), zap.Error(err))
			continue
		}
		if u != nil {
			users[id] = u
		}
	}
	return users
}

type courtEvent struct {
	category model.Category
	label    string
	date     *time.Time
}

func courtEvents(lc model.LegalCase) []courtEvent {
	all := []courtEvent{
		{model.CategoryCourtDate, "Court date", lc.CourtDetails.CourtDate},
		{model.CategoryHearingDate, "Hearing", lc.CourtDetails.NextHearingDate},
		{model.CategoryMentioningDate, "Mentioning", lc.CourtDetails.MentioningDate},
	}
	events := all[:0]
	for _, ev := range all {
		if ev.date != nil {
			events = append(events, ev)
		}
	}
	return events
}

func (s *ReminderService) courtReminder(now time.Time, lc model.LegalCase, ev courtEvent) reminder {
	days := DaysUntil(now, *ev.date, s.loc)
	id := lc.ID

	message := fmt.Sprintf("%s for case %s (%s)", ev.label, lc.CaseNumber, lc.Title)
	if lc.CourtDetails.CourtName != "" {
		message += " at " + lc.CourtDetails.CourtName
	}
	message += " is on " + ev.date.In(s.loc).Format(dateLayout)

	return reminder{
		assignee:  lc.AssignedTo,
		eventDate: *ev.date,
		input: model.NotificationInput{
			Title:            fmt.Sprintf("%s %s: %s", ev.label, whenPhrase(days), lc.CaseNumber),
			Message:          message,
			Category:         ev.category,
			Priority:         Classify(days),
			RelatedLegalCase: &id,
			ActionURL:        caseActionURL(model.CaseTypeLegal, lc.ID),
			Metadata: model.Metadata{CourtEvent: &model.CourtEventMetadata{
				CaseNumber: lc.CaseNumber,
				CaseTitle:  lc.Title,
				CourtName:  lc.CourtDetails.CourtName,
				DaysUntil:  days,
			}},
		},
	}
}

func (s *ReminderService) followUpReminder(now time.Time, c model.FollowUpCandidate) reminder {
	date := *c.Note.FollowUpDate
	days := DaysUntil(now, date, s.loc)
	id := c.CaseID

	return reminder{
		assignee:  c.AssignedTo,
		eventDate: date,
		input: model.NotificationInput{
			Title: fmt.Sprintf("Follow-up %s: %s", whenPhrase(days), c.CaseNumber),
			Message: fmt.Sprintf("Follow up with %s on case %s on %s: %s",
				c.DebtorName, c.CaseNumber, date.In(s.loc).Format(dateLayout), truncate(c.Note.Content, 200)),
			Category:          model.CategoryFollowUpReminder,
			Priority:          Classify(days),
			RelatedCreditCase: &id,
			ActionURL:         caseActionURL(model.CaseTypeCredit, c.CaseID),
			Metadata: model.Metadata{FollowUp: &model.FollowUpMetadata{
				CaseNumber:  c.CaseNumber,
				DebtorName:  c.DebtorName,
				NoteID:      c.Note.ID,
				NoteContent: c.Note.Content,
				DaysUntil:   days,
			}},
		},
	}
}

func (s *ReminderService) paymentReminder(now time.Time, c model.PromisedPaymentCandidate) reminder {
	p := c.Payment
	days := DaysUntil(now, p.PromisedDate, s.loc)
	id := c.CaseID

	return reminder{
		assignee:  c.AssignedTo,
		eventDate: p.PromisedDate,
		input: model.NotificationInput{
			Title: fmt.Sprintf("Promised payment due %s: %s", whenPhrase(days), c.CaseNumber),
			Message: fmt.Sprintf("%s promised to pay %s on case %s on %s",
				c.DebtorName, formatAmount(p.Currency, p.Amount), c.CaseNumber, p.PromisedDate.In(s.loc).Format(dateLayout)),
			Category:          model.CategoryPaymentDueReminder,
			Priority:          Classify(days),
			RelatedCreditCase: &id,
			ActionURL:         caseActionURL(model.CaseTypeCredit, c.CaseID),
			Metadata: model.Metadata{PaymentDue: &model.PaymentDueMetadata{
				CaseNumber:    c.CaseNumber,
				DebtorName:    c.DebtorName,
				PaymentID:     p.ID,
				PaymentAmount: p.Amount,
				Currency:      p.Currency,
				Notes:         p.Notes,
				DaysUntil:     days,
			}},
		},
	}
}

func whenPhrase(days int) string {
	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}

func formatAmount(currency string, amount float64) string {
	return fmt.Sprintf("%s %.2f", currency, amount)
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + "..."
}

func caseID(in model.NotificationInput) string {
	if in.RelatedLegalCase != nil {
		return *in.RelatedLegalCase
	}
	if in.RelatedCreditCase != nil {
		return *in.RelatedCreditCase
	}
	return ""
}
