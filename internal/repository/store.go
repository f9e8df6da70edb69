package repository

import (
	"context"
	"time"

	"github.com/Dias221467/Message_Catalog/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CategoryStore is the persistence contract for one taxonomy. Every
// mutation is applied to a single category document.
type CategoryStore interface {
	Taxonomy() models.Taxonomy
	Create(ctx context.Context, category *models.Category) (*models.Category, error)
	List(ctx context.Context, filter models.CategoryFilter) ([]models.Category, error)
	Count(ctx context.Context, filter models.CategoryFilter) (int64, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	Update(ctx context.Context, id primitive.ObjectID, update models.CategoryUpdate) (*models.Category, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.Status) (*models.Category, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteAll(ctx context.Context) (int64, error)
	AddSubcategory(ctx context.Context, id primitive.ObjectID, sub models.Subcategory) (*models.Category, error)
	RemoveSubcategory(ctx context.Context, id, subID primitive.ObjectID) (*models.Category, error)
	UpdateSubcategory(ctx context.Context, id, subID primitive.ObjectID, update models.SubcategoryUpdate) (*models.Category, error)
	AddMessage(ctx context.Context, id, subID primitive.ObjectID, msg models.Message) (*models.Category, error)
	UpsertByName(ctx context.Context, upsert models.CategoryUpsert) (created bool, err error)
}

// NotificationStore persists the moderation notification ledger.
type NotificationStore interface {
	Create(ctx context.Context, notif *models.Notification) error
	List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, error)
	CountUnread(ctx context.Context) (int64, error)
	MarkRead(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
	MarkReadForCategory(ctx context.Context, taxonomy models.Taxonomy, categoryID primitive.ObjectID) (int64, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ActivityStore persists the moderation audit trail.
type ActivityStore interface {
	Create(ctx context.Context, activity *models.Activity) error
	List(ctx context.Context, taxonomy models.Taxonomy, limit int) ([]models.Activity, error)
}

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByResetToken(ctx context.Context, hashedToken string, now time.Time) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context) ([]models.User, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
}

var (
	_ CategoryStore     = (*CategoryRepository)(nil)
	_ NotificationStore = (*NotificationRepository)(nil)
	_ ActivityStore     = (*ActivityRepository)(nil)
	_ UserStore         = (*UserRepository)(nil)
)
