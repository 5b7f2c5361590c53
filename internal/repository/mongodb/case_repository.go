package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/lexcase/caseflow/internal/model"
)

// CaseRepository reads legal and credit case documents. Notes and promised
// payments are embedded arrays and are unwound in aggregation pipelines.
type CaseRepository struct {
	legal  *mongo.Collection
	credit *mongo.Collection
	logger *zap.Logger
}

// NewCaseRepository creates a case repository over db
func NewCaseRepository(db *mongo.Database, logger *zap.Logger) *CaseRepository {
	return &CaseRepository{
		legal:  db.Collection(CollectionLegalCases),
		credit: db.Collection(CollectionCreditCases),
		logger: logger,
	}
}

func window(from, to time.Time) bson.M {
	return bson.M{"$gte": from, "$lt": to}
}

func courtDateFilter(from, to time.Time) bson.M {
	return bson.M{
		"assignedTo": bson.M{"$ne": nil},
		"$or": bson.A{
			bson.M{"courtDetails.courtDate": window(from, to)},
			bson.M{"courtDetails.nextHearingDate": window(from, to)},
			bson.M{"courtDetails.mentioningDate": window(from, to)},
		},
	}
}

// followUpPipeline prefilters cases with any matching note, unwinds notes
// and filters again so only the matching notes survive.
func followUpPipeline(from, to time.Time) mongo.Pipeline {
	match := bson.M{"notes.followUpDate": window(from, to)}
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$unwind", Value: "$notes"}},
		{{Key: "$match", Value: match}},
		{{Key: "$project", Value: bson.M{
			"caseNumber": 1, "title": 1, "debtorName": 1, "assignedTo": 1, "notes": 1,
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "notes.followUpDate", Value: 1}}}},
	}
}

func promisedPaymentPipeline(from, to time.Time, status model.PaymentStatus) mongo.Pipeline {
	match := bson.M{
		"promisedPayments.promisedDate": window(from, to),
		"promisedPayments.status":       status,
	}
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$unwind", Value: "$promisedPayments"}},
		{{Key: "$match", Value: match}},
		{{Key: "$project", Value: bson.M{
			"caseNumber": 1, "title": 1, "debtorName": 1, "assignedTo": 1, "promisedPayments": 1,
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "promisedPayments.promisedDate", Value: 1}}}},
	}
}

// FindLegalCasesWithCourtDates returns assigned legal cases with at least one
// court date, hearing date or mentioning date inside [from, to)
func (r *CaseRepository) FindLegalCasesWithCourtDates(ctx context.Context, from, to time.Time) ([]model.LegalCase, error) {
	cursor, err := r.legal.Find(ctx, courtDateFilter(from, to))
	if err != nil {
		r.logger.Error("Failed to query legal cases with court dates", zap.Error(err))
		return nil, fmt.Errorf("query legal cases: %w", err)
	}

	var cases []model.LegalCase
	if err := cursor.All(ctx, &cases); err != nil {
		return nil, fmt.Errorf("decode legal cases: %w", err)
	}

	return cases, nil
}

type followUpDoc struct {
	CaseID     string         `bson:"_id"`
	CaseNumber string         `bson:"caseNumber"`
	Title      string         `bson:"title"`
	DebtorName string         `bson:"debtorName"`
	AssignedTo *string        `bson:"assignedTo"`
	Note       model.CaseNote `bson:"notes"`
}

// FindFollowUpNotes unwinds the notes array and returns one row per note
// whose follow-up date falls inside [from, to)
func (r *CaseRepository) FindFollowUpNotes(ctx context.Context, from, to time.Time) ([]model.FollowUpCandidate, error) {
	cursor, err := r.credit.Aggregate(ctx, followUpPipeline(from, to))
	if err != nil {
		r.logger.Error("Failed to aggregate follow-up notes", zap.Error(err))
		return nil, fmt.Errorf("aggregate follow-up notes: %w", err)
	}

	var docs []followUpDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode follow-up notes: %w", err)
	}

	candidates := make([]model.FollowUpCandidate, 0, len(docs))
	for _, d := range docs {
		candidates = append(candidates, model.FollowUpCandidate{
			CaseID:     d.CaseID,
			CaseNumber: d.CaseNumber,
			CaseTitle:  d.Title,
			DebtorName: d.DebtorName,
			AssignedTo: d.AssignedTo,
			Note:       d.Note,
		})
	}

	return candidates, nil
}

type promisedPaymentDoc struct {
	CaseID     string                `bson:"_id"`
	CaseNumber string                `bson:"caseNumber"`
	Title      string                `bson:"title"`
	DebtorName string                `bson:"debtorName"`
	AssignedTo *string               `bson:"assignedTo"`
	Payment    model.PromisedPayment `bson:"promisedPayments"`
}

// FindPromisedPayments unwinds the promised payments array and returns one
// row per payment with the given status inside [from, to)
func (r *CaseRepository) FindPromisedPayments(ctx context.Context, from, to time.Time, status model.PaymentStatus) ([]model.PromisedPaymentCandidate, error) {
	cursor, err := r.credit.Aggregate(ctx, promisedPaymentPipeline(from, to, status))
	if err != nil {
		r.logger.Error("Failed to aggregate promised payments", zap.Error(err))
		return nil, fmt.Errorf("aggregate promised payments: %w", err)
	}

	var docs []promisedPaymentDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode promised payments: %w", err)
	}

	candidates := make([]model.PromisedPaymentCandidate, 0, len(docs))
	for _, d := range docs {
		candidates = append(candidates, model.PromisedPaymentCandidate{
			CaseID:     d.CaseID,
			CaseNumber: d.CaseNumber,
			CaseTitle:  d.Title,
			DebtorName: d.DebtorName,
			AssignedTo: d.AssignedTo,
			Payment:    d.Payment,
		})
	}

	return candidates, nil
}

// GetLegalCase retrieves a legal case by ID
func (r *CaseRepository) GetLegalCase(ctx context.Context, id string) (*model.LegalCase, error) {
	var lc model.LegalCase
	if err := r.legal.FindOne(ctx, byID(id)).Decode(&lc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Error("Failed to get legal case", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("get legal case: %w", err)
	}
	return &lc, nil
}

// GetCreditCase retrieves a credit case by ID
func (r *CaseRepository) GetCreditCase(ctx context.Context, id string) (*model.CreditCase, error) {
	var cc model.CreditCase
	if err := r.credit.FindOne(ctx, byID(id)).Decode(&cc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Error("Failed to get credit case", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("get credit case: %w", err)
	}
	return &cc, nil
}
