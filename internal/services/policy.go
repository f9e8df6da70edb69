package services

import (
	"context"
	"fmt"

	"github.com/Dias221467/Message_Catalog/internal/models"
	"github.com/Dias221467/Message_Catalog/pkg/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaxonomyPolicy holds the per-taxonomy status defaults. Creation paths
// read their initial status from here instead of hard-coding it.
type TaxonomyPolicy struct {
	Taxonomy            models.Taxonomy
	MemberStatus        models.Status
	AdminStatus         models.Status
	ImportDefaultStatus models.Status
}

// NewTaxonomyPolicy returns the standard policy: members create Pending
// categories, admins create Approved ones.
func NewTaxonomyPolicy(taxonomy models.Taxonomy, importDefault models.Status) TaxonomyPolicy {
	return TaxonomyPolicy{
		Taxonomy:            taxonomy,
		MemberStatus:        models.StatusPending,
		AdminStatus:         models.StatusApproved,
		ImportDefaultStatus: importDefault,
	}
}

// InitialStatus is the status a category starts in when created by role.
func (p TaxonomyPolicy) InitialStatus(role models.Role) models.Status {
	if role == models.RoleAdmin {
		return p.AdminStatus
	}
	return p.MemberStatus
}

// Actor is the authenticated caller as seen by the services. UserID is nil
// for system callers such as the CLI.
type Actor struct {
	UserID *primitive.ObjectID
	Role   models.Role
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// SystemActor acts with admin rights and no user attribution.
var SystemActor = Actor{Role: models.RoleAdmin}

func requireAdmin(actor Actor) error {
	if !actor.IsAdmin() {
		return apperr.Permission("admin role required")
	}
	return nil
}

// ParseObjectID converts a hex path parameter into an ObjectID.
func ParseObjectID(hex, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperr.Wrap(apperr.KindValidation, err, "invalid %s ID", what)
	}
	return id, nil
}

// CategoryCache caches the public (Approved) listing of a taxonomy.
//
// Every Invalidate bumps the taxonomy's generation. A miss reports the
// generation it saw, and SetApproved drops the write if the generation has
// moved since, so a listing read before a write never lands after it.
type CategoryCache interface {
	GetApproved(ctx context.Context, taxonomy models.Taxonomy) (categories []models.Category, generation int64, ok bool)
	SetApproved(ctx context.Context, taxonomy models.Taxonomy, generation int64, categories []models.Category)
	Invalidate(ctx context.Context, taxonomy models.Taxonomy)
}

// NotificationPublisher pushes freshly written notifications to live clients.
type NotificationPublisher interface {
	Publish(notif models.Notification)
}

// Mailer sends plain text email.
type Mailer interface {
	Send(to, subject, body string) error
}

func describe(taxonomy models.Taxonomy, name string) string {
	if taxonomy == models.TaxonomyEnglish {
		return fmt.Sprintf("English category %q", name)
	}
	return fmt.Sprintf("category %q", name)
}
