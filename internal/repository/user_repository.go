package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/lexcase/caseflow/internal/model"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT id, first_name, last_name, email, is_active FROM users WHERE id = $1`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("failed to get user by ID", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

// GetByIDs retrieves several users at once, keyed by ID. Unknown IDs are
// simply absent from the result.
func (r *UserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*model.User, error) {
	users := make(map[string]*model.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	query := `SELECT id, first_name, last_name, email, is_active FROM users WHERE id = ANY($1)`

	var rows []model.User
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		r.logger.Error("failed to batch get users", zap.Error(err), zap.Int("count", len(ids)))
		return nil, fmt.Errorf("batch get users: %w", err)
	}

	for i := range rows {
		users[rows[i].ID] = &rows[i]
	}

	return users, nil
}
