package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category is the root document of a taxonomy. Subcategories and their
// messages are embedded and only addressable through their parent.
type Category struct {
	ID            primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Name          string              `json:"name" bson:"name"`
	Status        Status              `json:"status" bson:"status"`
	CreatedBy     *primitive.ObjectID `json:"createdBy,omitempty" bson:"created_by,omitempty"`
	Subcategories []Subcategory       `json:"subcategories" bson:"subcategories"`
	CreatedAt     time.Time           `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time           `json:"updatedAt" bson:"updated_at"`
}

type Subcategory struct {
	ID       primitive.ObjectID `json:"id" bson:"_id"`
	Name     string             `json:"name" bson:"name"`
	Messages []Message          `json:"messages" bson:"messages"`
}

type Message struct {
	ID      primitive.ObjectID `json:"id" bson:"_id"`
	Content string             `json:"content" bson:"content"`
}

// FindSubcategory returns the subcategory with the given id, or nil.
func (c *Category) FindSubcategory(id primitive.ObjectID) *Subcategory {
	for i := range c.Subcategories {
		if c.Subcategories[i].ID == id {
			return &c.Subcategories[i]
		}
	}
	return nil
}

// HasSubcategoryNamed reports whether a sibling with that name exists,
// ignoring the subcategory identified by except.
func (c *Category) HasSubcategoryNamed(name string, except primitive.ObjectID) bool {
	for _, sub := range c.Subcategories {
		if sub.Name == name && sub.ID != except {
			return true
		}
	}
	return false
}

// AssignIDs fills in missing subcategory and message identities.
func AssignIDs(subs []Subcategory) []Subcategory {
	if subs == nil {
		return []Subcategory{}
	}
	for i := range subs {
		if subs[i].ID.IsZero() {
			subs[i].ID = primitive.NewObjectID()
		}
		subs[i].Messages = AssignMessageIDs(subs[i].Messages)
	}
	return subs
}

func AssignMessageIDs(msgs []Message) []Message {
	if msgs == nil {
		return []Message{}
	}
	for i := range msgs {
		if msgs[i].ID.IsZero() {
			msgs[i].ID = primitive.NewObjectID()
		}
	}
	return msgs
}

// CategoryFilter narrows List and Count. An empty Statuses matches every
// status.
type CategoryFilter struct {
	Statuses []Status
}

// StatusFilter matches any of the given statuses.
func StatusFilter(statuses ...Status) CategoryFilter {
	return CategoryFilter{Statuses: statuses}
}

// Matches reports whether status passes the filter.
func (f CategoryFilter) Matches(status Status) bool {
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// OnlyApproved reports whether the filter selects exactly the public view.
func (f CategoryFilter) OnlyApproved() bool {
	return len(f.Statuses) == 1 && f.Statuses[0] == StatusApproved
}

// CategoryUpdate is a partial update; nil fields are left unchanged.
type CategoryUpdate struct {
	Name          *string
	Subcategories *[]Subcategory
	Status        *Status
}

// SubcategoryUpdate is a partial update of one subcategory.
type SubcategoryUpdate struct {
	Name     *string
	Messages *[]Message
}

// CategoryUpsert is the import-side write: match by name, replace the
// subcategories, and set the status either always (StatusExplicit) or only
// when the category is created.
type CategoryUpsert struct {
	Name           string
	Status         Status
	StatusExplicit bool
	Subcategories  []Subcategory
	CreatedBy      *primitive.ObjectID
}
