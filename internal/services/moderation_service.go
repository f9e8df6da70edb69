package services

import (
	"context"

	"github.com/Dias221467/Message_Catalog/internal/models"
	"github.com/Dias221467/Message_Catalog/internal/repository"
	"github.com/Dias221467/Message_Catalog/pkg/apperr"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ModerationService drives category status transitions.
//
// Pending is only reachable at creation. From any state an admin may move
// a category to Approved or Disapproved; the toggle between the two is
// freely reversible. Rejecting is the same as disapproving and never
// deletes. Every transition marks the category's notifications read.
type ModerationService struct {
	store         repository.CategoryStore
	notifications *NotificationService
	activities    *ActivityService
	cache         CategoryCache
}

func NewModerationService(
	store repository.CategoryStore,
	notifications *NotificationService,
	activities *ActivityService,
	cache CategoryCache,
) *ModerationService {
	return &ModerationService{
		store:         store,
		notifications: notifications,
		activities:    activities,
		cache:         cache,
	}
}

func (s *ModerationService) Taxonomy() models.Taxonomy { return s.store.Taxonomy() }

// ParseTransition validates a requested target status literal.
func ParseTransition(literal string) (models.Status, error) {
	status, err := models.ParseStatus(literal)
	if err != nil || status == models.StatusPending {
		return "", apperr.New(apperr.KindInvalidStatus, "invalid status %q: must be Approved or Disapproved", literal)
	}
	return status, nil
}

// SetStatus moves the category to the literal target status.
func (s *ModerationService) SetStatus(ctx context.Context, actor Actor, id primitive.ObjectID, literal string) (*models.Category, error) {
	target, err := ParseTransition(literal)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, actor, id, target)
}

func (s *ModerationService) Approve(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.Category, error) {
	return s.transition(ctx, actor, id, models.StatusApproved)
}

// Reject hides the category by disapproving it. It stays recoverable.
func (s *ModerationService) Reject(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.Category, error) {
	return s.transition(ctx, actor, id, models.StatusDisapproved)
}

func (s *ModerationService) transition(ctx context.Context, actor Actor, id primitive.ObjectID, target models.Status) (*models.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	updated, err := s.store.SetStatus(ctx, id, target)
	if err != nil {
		return nil, err
	}
	taxonomy := s.store.Taxonomy()
	if s.cache != nil {
		s.cache.Invalidate(ctx, taxonomy)
	}

	if s.notifications != nil {
		if _, err := s.notifications.MarkReadForCategory(ctx, taxonomy, id); err != nil {
			logrus.WithError(err).WithField("category_id", id.Hex()).
				Error("Failed to mark category notifications as read")
		}
	}

	activity := models.ActivityCategoryApproved
	verb := "Approved "
	if target == models.StatusDisapproved {
		activity = models.ActivityCategoryDisapproved
		verb = "Disapproved "
	}
	s.activities.LogActivity(ctx, actor, activity, taxonomy, &id, verb+describe(taxonomy, updated.Name))

	logrus.WithFields(logrus.Fields{
		"taxonomy":    taxonomy,
		"category_id": id.Hex(),
		"status":      target,
	}).Info("Category status changed")
	return updated, nil
}

// reviewFilter selects everything hidden from members: categories created
// Pending by members and imports that landed Disapproved.
var reviewFilter = models.StatusFilter(models.StatusPending, models.StatusDisapproved)

// ReviewQueue lists the categories awaiting a decision.
func (s *ModerationService) ReviewQueue(ctx context.Context) ([]models.Category, error) {
	return s.store.List(ctx, reviewFilter)
}

// ReviewCount is the size of the review queue.
func (s *ModerationService) ReviewCount(ctx context.Context) (int64, error) {
	return s.store.Count(ctx, reviewFilter)
}

// PendingCount counts only categories still in their initial Pending state.
func (s *ModerationService) PendingCount(ctx context.Context) (int64, error) {
	return s.store.Count(ctx, models.StatusFilter(models.StatusPending))
}
