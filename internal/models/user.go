package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account that can browse or moderate the catalog.
type User struct {
	ID                   primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name                 string             `json:"name" bson:"name"`
	Email                string             `json:"email" bson:"email"`
	HashedPassword       string             `json:"-" bson:"hashed_password"`
	Role                 Role               `json:"role" bson:"role"`
	ResetPasswordToken   string             `json:"-" bson:"reset_password_token,omitempty"`
	ResetPasswordExpires time.Time          `json:"-" bson:"reset_password_expires,omitempty"`
	CreatedAt            time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt            time.Time          `json:"updatedAt" bson:"updated_at"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
