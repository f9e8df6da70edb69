package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Dias221467/Message_Catalog/internal/models"
	"github.com/Dias221467/Message_Catalog/pkg/apperr"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{
		collection: db.Collection("notifications"),
	}
}

func (r *NotificationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "is_read", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "taxonomy", Value: 1}, {Key: "category_id", Value: 1}}},
	})
	if err != nil {
		return translate(err, "failed to create notification indexes")
	}
	return nil
}

// Create inserts a new notification
func (r *NotificationRepository) Create(ctx context.Context, notif *models.Notification) error {
	now := time.Now().UTC()
	notif.ID = primitive.NewObjectID()
	notif.CreatedAt = now
	notif.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, notif)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert notification")
		return translate(err, "failed to create notification")
	}
	return nil
}

// List returns notifications unread first, newest first within each group
func (r *NotificationRepository) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, error) {
	query := bson.M{}
	if filter.UnreadOnly {
		query["is_read"] = false
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "is_read", Value: 1},
		{Key: "created_at", Value: -1},
	})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, translate(err, "failed to fetch notifications")
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, translate(err, "failed to decode notifications")
	}
	return notifications, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"is_read": false})
	if err != nil {
		return 0, translate(err, "failed to count notifications")
	}
	return n, nil
}

// MarkRead sets isRead on one notification and returns it
func (r *NotificationRepository) MarkRead(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"is_read": true, "updated_at": time.Now().UTC()}}

	var notif models.Notification
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&notif)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("notification not found")
	}
	if err != nil {
		return nil, translate(err, "failed to update notification")
	}
	return &notif, nil
}

// MarkReadForCategory marks every notification about a category as read
func (r *NotificationRepository) MarkReadForCategory(ctx context.Context, taxonomy models.Taxonomy, categoryID primitive.ObjectID) (int64, error) {
	filter := bson.M{"taxonomy": taxonomy, "category_id": categoryID, "is_read": false}
	update := bson.M{"$set": bson.M{"is_read": true, "updated_at": time.Now().UTC()}}

	res, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, translate(err, "failed to update notifications")
	}
	return res.ModifiedCount, nil
}

// DeleteReadBefore removes read notifications created before cutoff
func (r *NotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	filter := bson.M{"is_read": true, "created_at": bson.M{"$lte": cutoff}}
	res, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, translate(err, "failed to delete expired notifications")
	}
	logrus.Infof("Deleted %d expired notifications", res.DeletedCount)
	return res.DeletedCount, nil
}
