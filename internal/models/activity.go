package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Activity types recorded in the moderation audit trail.
const (
	ActivityCategoryCreated     = "category_created"
	ActivityCategoryUpdated     = "category_updated"
	ActivityCategoryDeleted     = "category_deleted"
	ActivityCategoryApproved    = "category_approved"
	ActivityCategoryDisapproved = "category_disapproved"
	ActivityTaxonomyCleared     = "taxonomy_cleared"
	ActivityTaxonomyImported    = "taxonomy_imported"
)

type Activity struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ActorID   *primitive.ObjectID `bson:"actor_id,omitempty" json:"actorId,omitempty"`
	Type      string              `bson:"type" json:"type"`
	Taxonomy  Taxonomy            `bson:"taxonomy" json:"taxonomy"`
	TargetID  *primitive.ObjectID `bson:"target_id,omitempty" json:"targetId,omitempty"`
	Timestamp time.Time           `bson:"timestamp" json:"timestamp"`
	Message   string              `bson:"message" json:"message"`
}
