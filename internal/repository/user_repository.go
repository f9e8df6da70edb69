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

// UserRepository handles database operations related to users.
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
	}
}

func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return translate(err, "failed to create user indexes")
	}
	return nil
}

// Create inserts a new user into the database.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Validation("user with this email already exists")
		}
		logrus.WithError(err).Error("Failed to insert user into database")
		return nil, translate(err, "failed to insert user")
	}

	logrus.WithField("userID", user.ID.Hex()).Info("User inserted successfully")
	return user, nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, translate(err, "failed to find user")
	}
	return &user, nil
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByResetToken finds the user holding an unexpired reset token hash.
func (r *UserRepository) GetByResetToken(ctx context.Context, hashedToken string, now time.Time) (*models.User, error) {
	return r.findOne(ctx, bson.M{
		"reset_password_token":   hashedToken,
		"reset_password_expires": bson.M{"$gt": now},
	})
}

// Update saves an existing user's details.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"name":                   user.Name,
		"hashed_password":        user.HashedPassword,
		"role":                   user.Role,
		"reset_password_token":   user.ResetPasswordToken,
		"reset_password_expires": user.ResetPasswordExpires,
		"updated_at":             user.UpdatedAt,
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": set})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": user.ID.Hex(),
			"error":  err,
		}).Error("Failed to update user")
		return translate(err, "failed to update user")
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	return r.find(ctx, bson.M{})
}

func (r *UserRepository) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	return r.find(ctx, bson.M{"role": role})
}

func (r *UserRepository) find(ctx context.Context, filter bson.M) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate(err, "failed to fetch users")
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, translate(err, "failed to decode users")
	}
	return users, nil
}
