package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/lexcase/caseflow/internal/model"
)

const (
	CollectionNotifications = "notifications"
	CollectionLegalCases    = "legalcases"
	CollectionCreditCases   = "creditcases"
	CollectionUsers         = "users"
)

// NotificationRepository stores notifications in a MongoDB collection
type NotificationRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewNotificationRepository creates a notification repository over db
func NewNotificationRepository(db *mongo.Database, logger *zap.Logger) *NotificationRepository {
	return &NotificationRepository{
		collection: db.Collection(CollectionNotifications),
		logger:     logger,
	}
}

// EnsureIndexes creates the indexes the list and dedup queries rely on
func (r *NotificationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "isRead", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "category", Value: 1}, {Key: "eventDate", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create notification indexes: %w", err)
	}
	return nil
}

// Create inserts a notification document
func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	if _, err := r.collection.InsertOne(ctx, n); err != nil {
		r.logger.Error("Failed to create notification",
			zap.String("recipient", n.Recipient),
			zap.String("category", string(n.Category)),
			zap.Error(err))
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// GetByID retrieves a notification by ID
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*model.Notification, error) {
	var n model.Notification
	err := r.collection.FindOne(ctx, byID(id)).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Error("Failed to get notification", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return &n, nil
}

// List retrieves a page of a user's notifications, newest first
func (r *NotificationRepository) List(ctx context.Context, filter model.NotificationFilter) ([]model.Notification, int, error) {
	query := bson.M{"recipient": idValue(filter.Recipient)}
	if filter.UnreadOnly {
		query["isRead"] = false
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		r.logger.Error("Failed to count notifications", zap.String("recipient", filter.Recipient), zap.Error(err))
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(filter.Offset)).
		SetLimit(int64(filter.Limit))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		r.logger.Error("Failed to list notifications", zap.String("recipient", filter.Recipient), zap.Error(err))
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}

	notifications := []model.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, 0, fmt.Errorf("decode notifications: %w", err)
	}

	return notifications, int(total), nil
}

// CountUnread retrieves the count of unread notifications for a user
func (r *NotificationRepository) CountUnread(ctx context.Context, recipient string) (int, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"recipient": idValue(recipient), "isRead": false})
	if err != nil {
		r.logger.Error("Failed to get unread notification count", zap.Error(err))
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return int(count), nil
}

// MarkAsRead marks a notification as read if it belongs to recipient
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id, recipient string) (*model.Notification, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"isRead": true, "updatedAt": time.Now().UTC()}}

	var n model.Notification
	err := r.collection.FindOneAndUpdate(ctx, byOwnedID(id, recipient), update, opts).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Error("Failed to mark notification as read", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return &n, nil
}

// MarkAllAsRead marks all unread notifications for a user as read
func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, recipient string) (int, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"recipient": idValue(recipient), "isRead": false},
		bson.M{"$set": bson.M{"isRead": true, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		r.logger.Error("Failed to mark all notifications as read", zap.Error(err))
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return int(res.ModifiedCount), nil
}

// Delete removes a notification if it belongs to recipient
func (r *NotificationRepository) Delete(ctx context.Context, id, recipient string) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, byOwnedID(id, recipient))
	if err != nil {
		r.logger.Error("Failed to delete notification", zap.String("id", id), zap.Error(err))
		return false, fmt.Errorf("delete notification: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// MarkEmailSent records that the email side-channel delivered the notification
func (r *NotificationRepository) MarkEmailSent(ctx context.Context, id string, sentAt time.Time) error {
	_, err := r.collection.UpdateOne(ctx,
		byID(id),
		bson.M{"$set": bson.M{"isEmailSent": true, "emailSentAt": sentAt, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		r.logger.Error("Failed to mark notification email as sent", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("mark email sent: %w", err)
	}
	return nil
}

// duplicateQuery matches a stored notification for the same event. A nil
// case reference matches documents where the field is null or missing.
func duplicateQuery(key model.DuplicateKey) bson.M {
	query := bson.M{
		"recipient":         idValue(key.Recipient),
		"category":          key.Category,
		"eventDate":         key.EventDate,
		"relatedLegalCase":  nil,
		"relatedCreditCase": nil,
	}
	if key.RelatedLegalCase != nil {
		query["relatedLegalCase"] = idValue(*key.RelatedLegalCase)
	}
	if key.RelatedCreditCase != nil {
		query["relatedCreditCase"] = idValue(*key.RelatedCreditCase)
	}
	return query
}

// Exists reports whether a matching notification is already stored
func (r *NotificationRepository) Exists(ctx context.Context, key model.DuplicateKey) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, duplicateQuery(key), options.Count().SetLimit(1))
	if err != nil {
		r.logger.Error("Failed to check for existing notification", zap.Error(err))
		return false, fmt.Errorf("check notification exists: %w", err)
	}
	return count > 0, nil
}
