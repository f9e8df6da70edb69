package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const NotificationCategoryApproval = "category_approval"

// Notification alerts admins to a category awaiting review. CategoryID is
// a weak reference: the category may since have been renamed or deleted.
type Notification struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Type         string             `json:"type" bson:"type"`
	CategoryID   primitive.ObjectID `json:"categoryId" bson:"category_id"`
	CategoryName string             `json:"categoryName" bson:"category_name"` // name at creation time
	Taxonomy     Taxonomy           `json:"taxonomy" bson:"taxonomy"`
	IsEnglish    bool               `json:"isEnglish" bson:"is_english"`
	IsRead       bool               `json:"isRead" bson:"is_read"`
	CreatedAt    time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updated_at"`
}

// NotificationFilter narrows the ledger listing.
type NotificationFilter struct {
	UnreadOnly bool
	Limit      int64
}

// CategoryRef is the current state of a notification's target.
type CategoryRef struct {
	ID     primitive.ObjectID `json:"id"`
	Name   string             `json:"name"`
	Status Status             `json:"status"`
}

// NotificationView is a notification with its target resolved. Category is
// nil and Dangling true when the target no longer exists.
type NotificationView struct {
	Notification
	Category *CategoryRef `json:"category"`
	Dangling bool         `json:"dangling"`
}
