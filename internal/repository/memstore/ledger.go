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

var (
	_ repository.NotificationStore = (*Notifications)(nil)
	_ repository.ActivityStore     = (*Activities)(nil)
)

type Notifications struct {
	mu    sync.Mutex
	items []models.Notification

	FailWrites error
}

func NewNotifications() *Notifications { return &Notifications{} }

func (s *Notifications) Create(ctx context.Context, notif *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return apperr.Storage(s.FailWrites, "failed to create notification")
	}

	now := time.Now().UTC()
	notif.ID = primitive.NewObjectID()
	notif.CreatedAt = now
	notif.UpdatedAt = now
	s.items = append(s.items, *notif)
	return nil
}

func (s *Notifications) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Notification{}
	for _, n := range s.items {
		if filter.UnreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsRead != out[j].IsRead {
			return !out[i].IsRead
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && int64(len(out)) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *Notifications) CountUnread(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, item := range s.items {
		if !item.IsRead {
			n++
		}
	}
	return n, nil
}

func (s *Notifications) MarkRead(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return nil, apperr.Storage(s.FailWrites, "failed to update notification")
	}

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].IsRead = true
			s.items[i].UpdatedAt = time.Now().UTC()
			out := s.items[i]
			return &out, nil
		}
	}
	return nil, apperr.NotFound("notification not found")
}

func (s *Notifications) MarkReadForCategory(ctx context.Context, taxonomy models.Taxonomy, categoryID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return 0, apperr.Storage(s.FailWrites, "failed to update notifications")
	}

	var n int64
	for i := range s.items {
		item := &s.items[i]
		if item.Taxonomy == taxonomy && item.CategoryID == categoryID && !item.IsRead {
			item.IsRead = true
			item.UpdatedAt = time.Now().UTC()
			n++
		}
	}
	return n, nil
}

func (s *Notifications) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	var n int64
	for _, item := range s.items {
		if item.IsRead && !item.CreatedAt.After(cutoff) {
			n++
			continue
		}
		kept = append(kept, item)
	}
	s.items = kept
	return n, nil
}

type Activities struct {
	mu    sync.Mutex
	items []models.Activity
}

func NewActivities() *Activities { return &Activities{} }

func (s *Activities) Create(ctx context.Context, activity *models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	activity.ID = primitive.NewObjectID()
	s.items = append(s.items, *activity)
	return nil
}

func (s *Activities) List(ctx context.Context, taxonomy models.Taxonomy, limit int) ([]models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Activity{}
	for i := len(s.items) - 1; i >= 0; i-- {
		if taxonomy != "" && s.items[i].Taxonomy != taxonomy {
			continue
		}
		out = append(out, s.items[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
