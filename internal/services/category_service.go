package services

import (
	"context"
	"strings"

	"github.com/Dias221467/Message_Catalog/internal/models"
	"github.com/Dias221467/Message_Catalog/internal/repository"
	"github.com/Dias221467/Message_Catalog/pkg/apperr"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatusAll is the list filter literal that disables status filtering.
const StatusAll = "all"

// CategoryService implements the taxonomy operations for one taxonomy.
// Both taxonomies run the same code with a different store and policy.
type CategoryService struct {
	store         repository.CategoryStore
	policy        TaxonomyPolicy
	notifications *NotificationService
	activities    *ActivityService
	cache         CategoryCache
	moderation    *ModerationService
}

func NewCategoryService(
	store repository.CategoryStore,
	policy TaxonomyPolicy,
	notifications *NotificationService,
	activities *ActivityService,
	cache CategoryCache,
) *CategoryService {
	return &CategoryService{
		store:         store,
		policy:        policy,
		notifications: notifications,
		activities:    activities,
		cache:         cache,
		moderation:    NewModerationService(store, notifications, activities, cache),
	}
}

func (s *CategoryService) Taxonomy() models.Taxonomy { return s.store.Taxonomy() }

func (s *CategoryService) Policy() TaxonomyPolicy { return s.policy }

func (s *CategoryService) log() *logrus.Entry {
	return logrus.WithField("taxonomy", s.store.Taxonomy())
}

func (s *CategoryService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, s.store.Taxonomy())
	}
}

// CreateCategoryInput is the payload accepted by Create.
type CreateCategoryInput struct {
	Name          string               `json:"name" validate:"required"`
	Subcategories []models.Subcategory `json:"subcategories"`
}

// Create stores a new category. Its initial status depends on the actor's
// role; categories that start Pending get a notification for the admins.
// The notification write is independent of the category write.
func (s *CategoryService) Create(ctx context.Context, actor Actor, input CreateCategoryInput) (*models.Category, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := ValidateStruct(input); err != nil {
		s.log().WithError(err).Warn("Category creation rejected")
		return nil, err
	}
	if err := validateSubcategories(input.Subcategories); err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:          input.Name,
		Status:        s.policy.InitialStatus(actor.Role),
		CreatedBy:     actor.UserID,
		Subcategories: input.Subcategories,
	}
	created, err := s.store.Create(ctx, category)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	if created.Status == models.StatusPending && s.notifications != nil {
		if err := s.notifications.NotifyPendingCategory(ctx, s.store.Taxonomy(), created); err != nil {
			s.log().WithError(err).WithField("category_id", created.ID.Hex()).
				Error("Category created without approval notification")
		}
	}
	s.activities.LogActivity(ctx, actor, models.ActivityCategoryCreated, s.store.Taxonomy(), &created.ID,
		"Created "+describe(s.store.Taxonomy(), created.Name))

	return created, nil
}

func validateSubcategories(subs []models.Subcategory) error {
	seen := make(map[string]bool, len(subs))
	for _, sub := range subs {
		if strings.TrimSpace(sub.Name) == "" {
			return apperr.Validation("subcategory name is required")
		}
		if seen[sub.Name] {
			return apperr.New(apperr.KindDuplicateSubcategory, "subcategory %q already exists", sub.Name)
		}
		seen[sub.Name] = true
	}
	return nil
}

// List returns categories filtered by status. The literal is parsed
// case-insensitively; an empty literal means Approved, "all" disables the
// filter. Non-admins can only see Approved categories.
func (s *CategoryService) List(ctx context.Context, actor Actor, statusLiteral string) ([]models.Category, error) {
	var filter models.CategoryFilter
	switch strings.ToLower(strings.TrimSpace(statusLiteral)) {
	case "":
		filter = models.StatusFilter(models.StatusApproved)
	case StatusAll:
	default:
		status, err := models.ParseStatus(statusLiteral)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInvalidStatus, err, "invalid status %q", statusLiteral)
		}
		filter = models.StatusFilter(status)
	}

	public := filter.OnlyApproved()
	if !actor.IsAdmin() && !public {
		return nil, apperr.Permission("only approved categories are visible")
	}

	// The generation must be read before the store.
	var generation int64
	if public && s.cache != nil {
		cached, gen, ok := s.cache.GetApproved(ctx, s.store.Taxonomy())
		if ok {
			return cached, nil
		}
		generation = gen
	}

	categories, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if public && s.cache != nil {
		s.cache.SetApproved(ctx, s.store.Taxonomy(), generation, categories)
	}
	return categories, nil
}

// Get fetches one category. Non-admins get NotFound for anything that is
// not Approved.
func (s *CategoryService) Get(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.Category, error) {
	category, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && category.Status != models.StatusApproved {
		return nil, apperr.NotFound("category not found")
	}
	return category, nil
}

// UpdateCategoryInput is a partial update; omitted fields stay unchanged.
type UpdateCategoryInput struct {
	Name          *string               `json:"name"`
	Subcategories *[]models.Subcategory `json:"subcategories"`
	Status        *string               `json:"status"`
}

// Update replaces the provided fields. A status change is a moderation
// transition: Pending is refused and the transition side effects apply.
func (s *CategoryService) Update(ctx context.Context, actor Actor, id primitive.ObjectID, input UpdateCategoryInput) (*models.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var update models.CategoryUpdate
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperr.Validation("category name cannot be empty")
		}
		update.Name = &name
	}
	if input.Subcategories != nil {
		if err := validateSubcategories(*input.Subcategories); err != nil {
			return nil, err
		}
		update.Subcategories = input.Subcategories
	}
	var target *models.Status
	if input.Status != nil {
		status, err := ParseTransition(*input.Status)
		if err != nil {
			return nil, err
		}
		target = &status
	}

	var updated *models.Category
	if update.Name != nil || update.Subcategories != nil || target == nil {
		var err error
		updated, err = s.store.Update(ctx, id, update)
		if err != nil {
			return nil, err
		}
		s.invalidate(ctx)
		s.activities.LogActivity(ctx, actor, models.ActivityCategoryUpdated, s.store.Taxonomy(), &id,
			"Updated "+describe(s.store.Taxonomy(), updated.Name))
	}
	if target != nil {
		return s.moderation.transition(ctx, actor, id, *target)
	}
	return updated, nil
}

// Delete removes one category. Notifications that point at it stay.
func (s *CategoryService) Delete(ctx context.Context, actor Actor, id primitive.ObjectID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.activities.LogActivity(ctx, actor, models.ActivityCategoryDeleted, s.store.Taxonomy(), &id, "Deleted category")
	return nil
}

// DeleteAll clears the whole taxonomy and reports how many were removed.
func (s *CategoryService) DeleteAll(ctx context.Context, actor Actor) (int64, error) {
	if err := requireAdmin(actor); err != nil {
		return 0, err
	}
	n, err := s.store.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx)
	s.activities.LogActivity(ctx, actor, models.ActivityTaxonomyCleared, s.store.Taxonomy(), nil, "Cleared taxonomy")
	return n, nil
}

// AddSubcategoryInput is the payload for AddSubcategory.
type AddSubcategoryInput struct {
	Name     string           `json:"name"`
	Messages []models.Message `json:"messages"`
}

func (s *CategoryService) AddSubcategory(ctx context.Context, actor Actor, id primitive.ObjectID, input AddSubcategoryInput) (*models.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.Validation("subcategory name is required")
	}

	updated, err := s.store.AddSubcategory(ctx, id, models.Subcategory{Name: name, Messages: input.Messages})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *CategoryService) RemoveSubcategory(ctx context.Context, actor Actor, id, subID primitive.ObjectID) (*models.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	updated, err := s.store.RemoveSubcategory(ctx, id, subID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

// UpdateSubcategoryInput merges name and/or messages into a subcategory.
type UpdateSubcategoryInput struct {
	Name     *string           `json:"name"`
	Messages *[]models.Message `json:"messages"`
}

func (s *CategoryService) UpdateSubcategory(ctx context.Context, actor Actor, id, subID primitive.ObjectID, input UpdateSubcategoryInput) (*models.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	update := models.SubcategoryUpdate{Messages: input.Messages}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperr.Validation("subcategory name cannot be empty")
		}
		update.Name = &name
	}

	updated, err := s.store.UpdateSubcategory(ctx, id, subID, update)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *CategoryService) AddMessage(ctx context.Context, actor Actor, id, subID primitive.ObjectID, content string) (*models.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("message content is required")
	}

	updated, err := s.store.AddMessage(ctx, id, subID, models.Message{Content: content})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}
