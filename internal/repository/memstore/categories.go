// Package memstore keeps every store contract in process memory. It backs
// the test suites and STORAGE_DRIVER=memory.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dias221467/Message_Catalog/internal/models"
	"github.com/Dias221467/Message_Catalog/internal/repository"
	"github.com/Dias221467/Message_Catalog/pkg/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ repository.CategoryStore = (*Categories)(nil)

// Categories is an in-memory category store for one taxonomy. Documents
// are copied on the way in and out so callers never share state.
type Categories struct {
	mu       sync.RWMutex
	taxonomy models.Taxonomy
	docs     map[primitive.ObjectID]*models.Category

	// FailWrites, when set, is returned by every mutation.
	FailWrites error
}

func NewCategories(taxonomy models.Taxonomy) *Categories {
	return &Categories{
		taxonomy: taxonomy,
		docs:     make(map[primitive.ObjectID]*models.Category),
	}
}

func (s *Categories) Taxonomy() models.Taxonomy { return s.taxonomy }

func cloneCategory(c *models.Category) *models.Category {
	out := *c
	if c.CreatedBy != nil {
		id := *c.CreatedBy
		out.CreatedBy = &id
	}
	out.Subcategories = cloneSubcategories(c.Subcategories)
	return &out
}

func cloneSubcategories(subs []models.Subcategory) []models.Subcategory {
	out := make([]models.Subcategory, len(subs))
	for i, sub := range subs {
		out[i] = sub
		out[i].Messages = append([]models.Message{}, sub.Messages...)
	}
	return out
}

func (s *Categories) nameTaken(name string, except primitive.ObjectID) bool {
	for id, doc := range s.docs {
		if doc.Name == name && id != except {
			return true
		}
	}
	return false
}

func (s *Categories) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return nil, apperr.Storage(s.FailWrites, "failed to create category")
	}
	if s.nameTaken(category.Name, primitive.NilObjectID) {
		return nil, apperr.New(apperr.KindDuplicateName, "category %q already exists", category.Name)
	}

	now := time.Now().UTC()
	category.ID = primitive.NewObjectID()
	category.CreatedAt = now
	category.UpdatedAt = now
	category.Subcategories = models.AssignIDs(category.Subcategories)
	s.docs[category.ID] = cloneCategory(category)
	return cloneCategory(category), nil
}

func (s *Categories) List(ctx context.Context, filter models.CategoryFilter) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Category{}
	for _, doc := range s.docs {
		if filter.Matches(doc.Status) {
			out = append(out, *cloneCategory(doc))
		}
	}
	sort.Slice(out, func(i, j int) bool { return newestFirst(out[i], out[j]) })
	return out, nil
}

// newestFirst is the Mongo listing order: created_at descending, then _id.
func newestFirst(a, b models.Category) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.Hex() > b.ID.Hex()
}

func (s *Categories) Count(ctx context.Context, filter models.CategoryFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, doc := range s.docs {
		if filter.Matches(doc.Status) {
			n++
		}
	}
	return n, nil
}

func (s *Categories) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, apperr.NotFound("category not found")
	}
	return cloneCategory(doc), nil
}

// mutate runs fn against the stored document under the write lock.
func (s *Categories) mutate(id primitive.ObjectID, fn func(doc *models.Category) error) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return nil, apperr.Storage(s.FailWrites, "failed to update category")
	}

	doc, ok := s.docs[id]
	if !ok {
		return nil, apperr.NotFound("category not found")
	}
	working := cloneCategory(doc)
	if err := fn(working); err != nil {
		return nil, err
	}
	working.UpdatedAt = time.Now().UTC()
	s.docs[id] = working
	return cloneCategory(working), nil
}

func (s *Categories) Update(ctx context.Context, id primitive.ObjectID, update models.CategoryUpdate) (*models.Category, error) {
	return s.mutate(id, func(doc *models.Category) error {
		if update.Name != nil {
			if s.nameTaken(*update.Name, id) {
				return apperr.New(apperr.KindDuplicateName, "category %q already exists", *update.Name)
			}
			doc.Name = *update.Name
		}
		if update.Subcategories != nil {
			doc.Subcategories = models.AssignIDs(cloneSubcategories(*update.Subcategories))
		}
		if update.Status != nil {
			doc.Status = *update.Status
		}
		return nil
	})
}

func (s *Categories) SetStatus(ctx context.Context, id primitive.ObjectID, status models.Status) (*models.Category, error) {
	return s.Update(ctx, id, models.CategoryUpdate{Status: &status})
}

func (s *Categories) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return apperr.Storage(s.FailWrites, "failed to delete category")
	}
	if _, ok := s.docs[id]; !ok {
		return apperr.NotFound("category not found")
	}
	delete(s.docs, id)
	return nil
}

func (s *Categories) DeleteAll(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return 0, apperr.Storage(s.FailWrites, "failed to delete categories")
	}
	n := int64(len(s.docs))
	s.docs = make(map[primitive.ObjectID]*models.Category)
	return n, nil
}

func (s *Categories) AddSubcategory(ctx context.Context, id primitive.ObjectID, sub models.Subcategory) (*models.Category, error) {
	return s.mutate(id, func(doc *models.Category) error {
		if doc.HasSubcategoryNamed(sub.Name, primitive.NilObjectID) {
			return apperr.New(apperr.KindDuplicateSubcategory, "subcategory %q already exists", sub.Name)
		}
		if sub.ID.IsZero() {
			sub.ID = primitive.NewObjectID()
		}
		sub.Messages = models.AssignMessageIDs(append([]models.Message(nil), sub.Messages...))
		doc.Subcategories = append(doc.Subcategories, sub)
		return nil
	})
}

func (s *Categories) RemoveSubcategory(ctx context.Context, id, subID primitive.ObjectID) (*models.Category, error) {
	return s.mutate(id, func(doc *models.Category) error {
		for i, sub := range doc.Subcategories {
			if sub.ID == subID {
				doc.Subcategories = append(doc.Subcategories[:i], doc.Subcategories[i+1:]...)
				return nil
			}
		}
		return apperr.NotFound("subcategory not found")
	})
}

func (s *Categories) UpdateSubcategory(ctx context.Context, id, subID primitive.ObjectID, update models.SubcategoryUpdate) (*models.Category, error) {
	return s.mutate(id, func(doc *models.Category) error {
		sub := doc.FindSubcategory(subID)
		if sub == nil {
			return apperr.NotFound("subcategory not found")
		}
		if update.Name != nil {
			if doc.HasSubcategoryNamed(*update.Name, subID) {
				return apperr.New(apperr.KindDuplicateSubcategory, "subcategory %q already exists", *update.Name)
			}
			sub.Name = *update.Name
		}
		if update.Messages != nil {
			sub.Messages = models.AssignMessageIDs(append([]models.Message{}, *update.Messages...))
		}
		return nil
	})
}

func (s *Categories) AddMessage(ctx context.Context, id, subID primitive.ObjectID, msg models.Message) (*models.Category, error) {
	return s.mutate(id, func(doc *models.Category) error {
		sub := doc.FindSubcategory(subID)
		if sub == nil {
			return apperr.NotFound("subcategory not found")
		}
		if msg.ID.IsZero() {
			msg.ID = primitive.NewObjectID()
		}
		sub.Messages = append(sub.Messages, msg)
		return nil
	})
}

func (s *Categories) UpsertByName(ctx context.Context, up models.CategoryUpsert) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return false, apperr.Storage(s.FailWrites, "failed to upsert category %q", up.Name)
	}

	now := time.Now().UTC()
	subs := models.AssignIDs(cloneSubcategories(up.Subcategories))
	for _, doc := range s.docs {
		if doc.Name != up.Name {
			continue
		}
		doc.Subcategories = subs
		if up.StatusExplicit {
			doc.Status = up.Status
		}
		doc.UpdatedAt = now
		return false, nil
	}

	doc := &models.Category{
		ID:            primitive.NewObjectID(),
		Name:          up.Name,
		Status:        up.Status,
		CreatedBy:     up.CreatedBy,
		Subcategories: subs,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.docs[doc.ID] = doc
	return true, nil
}
