package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/lexcase/caseflow/internal/mailer"
	"github.com/lexcase/caseflow/internal/model"
)

// memNotifications is an in-memory NotificationStore
type memNotifications struct {
	mu        sync.Mutex
	items     []*model.Notification
	createErr func(n *model.Notification) error
	existsErr error
	emailSent map[string]time.Time
}

func newMemNotifications() *memNotifications {
	return &memNotifications{emailSent: map[string]time.Time{}}
}

func (m *memNotifications) Create(_ context.Context, n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		if err := m.createErr(n); err != nil {
			return err
		}
	}
	cp := *n
	m.items = append(m.items, &cp)
	return nil
}

func (m *memNotifications) GetByID(_ context.Context, id string) (*model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.items {
		if n.ID == id {
			cp := *n
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memNotifications) List(_ context.Context, f model.NotificationFilter) ([]model.Notification, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []model.Notification
	for _, n := range m.items {
		if n.Recipient != f.Recipient || (f.UnreadOnly && n.IsRead) {
			continue
		}
		matched = append(matched, *n)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	if f.Offset >= total {
		return []model.Notification{}, total, nil
	}
	end := f.Offset + f.Limit
	if end > total {
		end = total
	}
	return matched[f.Offset:end], total, nil
}

func (m *memNotifications) CountUnread(_ context.Context, recipient string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.items {
		if n.Recipient == recipient && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *memNotifications) MarkAsRead(_ context.Context, id, recipient string) (*model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.items {
		if n.ID == id && n.Recipient == recipient {
			n.IsRead = true
			cp := *n
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memNotifications) MarkAllAsRead(_ context.Context, recipient string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.items {
		if n.Recipient == recipient && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

func (m *memNotifications) Delete(_ context.Context, id, recipient string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, n := range m.items {
		if n.ID == id && n.Recipient == recipient {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memNotifications) MarkEmailSent(_ context.Context, id string, sentAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.items {
		if n.ID == id {
			n.IsEmailSent = true
			n.EmailSentAt = &sentAt
			m.emailSent[id] = sentAt
			return nil
		}
	}
	return errors.New("notification not found")
}

func sameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (m *memNotifications) Exists(_ context.Context, key model.DuplicateKey) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.items {
		if n.Recipient == key.Recipient &&
			n.Category == key.Category &&
			sameRef(n.RelatedLegalCase, key.RelatedLegalCase) &&
			sameRef(n.RelatedCreditCase, key.RelatedCreditCase) &&
			n.EventDate != nil && n.EventDate.Equal(key.EventDate) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memNotifications) all() []model.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Notification, 0, len(m.items))
	for _, n := range m.items {
		out = append(out, *n)
	}
	return out
}

// memCases is an in-memory CaseStore that applies the same half-open
// window filters as the database implementations
type memCases struct {
	legal    []model.LegalCase
	credit   []model.CreditCase
	legalErr error
}

func within(t *time.Time, from, to time.Time) bool {
	return t != nil && !t.Before(from) && t.Before(to)
}

func (m *memCases) FindLegalCasesWithCourtDates(_ context.Context, from, to time.Time) ([]model.LegalCase, error) {
	if m.legalErr != nil {
		return nil, m.legalErr
	}
	var out []model.LegalCase
	for _, lc := range m.legal {
		if lc.AssignedTo == nil {
			continue
		}
		d := lc.CourtDetails
		if within(d.CourtDate, from, to) || within(d.NextHearingDate, from, to) || within(d.MentioningDate, from, to) {
			out = append(out, lc)
		}
	}
	return out, nil
}

func (m *memCases) FindFollowUpNotes(_ context.Context, from, to time.Time) ([]model.FollowUpCandidate, error) {
	var out []model.FollowUpCandidate
	for _, cc := range m.credit {
		for _, note := range cc.Notes {
			if !within(note.FollowUpDate, from, to) {
				continue
			}
			out = append(out, model.FollowUpCandidate{
				CaseID:     cc.ID,
				CaseNumber: cc.CaseNumber,
				CaseTitle:  cc.Title,
				DebtorName: cc.DebtorName,
				AssignedTo: cc.AssignedTo,
				Note:       note,
			})
		}
	}
	return out, nil
}

func (m *memCases) FindPromisedPayments(_ context.Context, from, to time.Time, status model.PaymentStatus) ([]model.PromisedPaymentCandidate, error) {
	var out []model.PromisedPaymentCandidate
	for _, cc := range m.credit {
		for _, p := range cc.PromisedPayments {
			date := p.PromisedDate
			if p.Status != status || !within(&date, from, to) {
				continue
			}
			out = append(out, model.PromisedPaymentCandidate{
				CaseID:     cc.ID,
				CaseNumber: cc.CaseNumber,
				CaseTitle:  cc.Title,
				DebtorName: cc.DebtorName,
				AssignedTo: cc.AssignedTo,
				Payment:    p,
			})
		}
	}
	return out, nil
}

func (m *memCases) GetLegalCase(_ context.Context, id string) (*model.LegalCase, error) {
	for i := range m.legal {
		if m.legal[i].ID == id {
			lc := m.legal[i]
			return &lc, nil
		}
	}
	return nil, nil
}

func (m *memCases) GetCreditCase(_ context.Context, id string) (*model.CreditCase, error) {
	for i := range m.credit {
		if m.credit[i].ID == id {
			cc := m.credit[i]
			return &cc, nil
		}
	}
	return nil, nil
}

// memUsers is an in-memory UserStore
type memUsers struct {
	users    map[string]*model.User
	batchErr error
	getErr   map[string]error
	batched  int
	single   int
}

func newMemUsers(users ...*model.User) *memUsers {
	m := &memUsers{users: map[string]*model.User{}, getErr: map[string]error{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	m.single++
	if err := m.getErr[id]; err != nil {
		return nil, err
	}
	return m.users[id], nil
}

func (m *memUsers) GetByIDs(_ context.Context, ids []string) (map[string]*model.User, error) {
	m.batched++
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make(map[string]*model.User, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

// mockSender records sent messages
type mockSender struct {
	sent []mailer.Message
	err  error
}

func (m *mockSender) Send(_ context.Context, msg mailer.Message) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, msg)
	return "<msg-1@test>", nil
}

// mockCache is a map-backed UnreadCounter
type mockCache struct {
	counts      map[string]int
	invalidated []string
}

func newMockCache() *mockCache {
	return &mockCache{counts: map[string]int{}}
}

func (m *mockCache) Get(_ context.Context, userID string) (int, bool, error) {
	c, ok := m.counts[userID]
	return c, ok, nil
}

func (m *mockCache) Set(_ context.Context, userID string, count int) error {
	m.counts[userID] = count
	return nil
}

func (m *mockCache) Invalidate(_ context.Context, userID string) error {
	delete(m.counts, userID)
	m.invalidated = append(m.invalidated, userID)
	return nil
}

// mockPublisher records published notifications
type mockPublisher struct {
	published []string
	err       error
}

func (m *mockPublisher) PublishNotificationCreated(_ context.Context, n *model.Notification) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, n.ID)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }
