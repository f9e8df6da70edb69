package repository

import (
	"context"

	"github.com/Dias221467/Message_Catalog/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ActivityRepository struct {
	collection *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{
		collection: db.Collection("activities"),
	}
}

// Create inserts a new activity log
func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	activity.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, activity)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert activity")
		return translate(err, "failed to insert activity")
	}
	return nil
}

// List fetches recent activities, optionally for a single taxonomy
func (r *ActivityRepository) List(ctx context.Context, taxonomy models.Taxonomy, limit int) ([]models.Activity, error) {
	filter := bson.M{}
	if taxonomy != "" {
		filter["taxonomy"] = taxonomy
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate(err, "failed to fetch activities")
	}
	defer cursor.Close(ctx)

	activities := []models.Activity{}
	if err := cursor.All(ctx, &activities); err != nil {
		return nil, translate(err, "failed to decode activities")
	}
	return activities, nil
}
