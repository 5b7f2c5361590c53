package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/lexcase/caseflow/internal/model"
)

// UserRepository reads firm users from MongoDB
type UserRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewUserRepository creates a user repository over db
func NewUserRepository(db *mongo.Database, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		collection: db.Collection(CollectionUsers),
		logger:     logger,
	}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.collection.FindOne(ctx, byID(id)).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Error("failed to get user by ID", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// GetByIDs retrieves several users at once, keyed by ID
func (r *UserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*model.User, error) {
	users := make(map[string]*model.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": idsValue(ids)})
	if err != nil {
		r.logger.Error("failed to batch get users", zap.Error(err), zap.Int("count", len(ids)))
		return nil, fmt.Errorf("batch get users: %w", err)
	}

	var rows []model.User
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	for i := range rows {
		users[rows[i].ID] = &rows[i]
	}

	return users, nil
}
