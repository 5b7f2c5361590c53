package service

import (
	"context"

	"github.com/lexcase/caseflow/internal/model"
	"github.com/lexcase/caseflow/internal/repository"
)

// caseRef is the part of a legal or credit case notifications refer to
type caseRef struct {
	Type       model.CaseType
	ID         string
	Number     string
	Title      string
	DebtorName string
	AssignedTo *string
}

func caseActionURL(t model.CaseType, id string) string {
	if t == model.CaseTypeCredit {
		return "/credit-cases/" + id
	}
	return "/legal-cases/" + id
}

// related returns the notification reference matching the case type
func (c *caseRef) related() (legal, credit *string) {
	id := c.ID
	if c.Type == model.CaseTypeCredit {
		return nil, &id
	}
	return &id, nil
}

func loadCase(ctx context.Context, cases repository.CaseStore, t model.CaseType, id string) (*caseRef, error) {
	switch t {
	case model.CaseTypeLegal:
		lc, err := cases.GetLegalCase(ctx, id)
		if err != nil {
			return nil, err
		}
		if lc == nil {
			return nil, ErrCaseNotFound
		}
		return &caseRef{Type: t, ID: lc.ID, Number: lc.CaseNumber, Title: lc.Title, AssignedTo: lc.AssignedTo}, nil
	case model.CaseTypeCredit:
		cc, err := cases.GetCreditCase(ctx, id)
		if err != nil {
			return nil, err
		}
		if cc == nil {
			return nil, ErrCaseNotFound
		}
		return &caseRef{
			Type:       t,
			ID:         cc.ID,
			Number:     cc.CaseNumber,
			Title:      cc.Title,
			DebtorName: cc.DebtorName,
			AssignedTo: cc.AssignedTo,
		}, nil
	default:
		return nil, ErrCaseNotFound
	}
}

// notificationCase resolves whichever case a notification points at
func notificationCase(ctx context.Context, cases repository.CaseStore, n *model.Notification) (*caseRef, error) {
	switch {
	case n.RelatedLegalCase != nil:
		return loadCase(ctx, cases, model.CaseTypeLegal, *n.RelatedLegalCase)
	case n.RelatedCreditCase != nil:
		return loadCase(ctx, cases, model.CaseTypeCredit, *n.RelatedCreditCase)
	default:
		return nil, ErrCaseNotFound
	}
}
