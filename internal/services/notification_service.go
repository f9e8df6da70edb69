package services

import (
	"context"
	"time"

	"github.com/Dias221467/Message_Catalog/internal/models"
	"github.com/Dias221467/Message_Catalog/internal/repository"
	"github.com/Dias221467/Message_Catalog/pkg/apperr"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationList is the ledger view served to the admin bell.
type NotificationList struct {
	Notifications []models.NotificationView `json:"notifications"`
	UnreadCount   int64                     `json:"unreadCount"`
}

type NotificationService struct {
	repo       repository.NotificationStore
	categories map[models.Taxonomy]repository.CategoryStore
	publisher  NotificationPublisher
}

// NewNotificationService builds the ledger service. The category stores are
// used only to resolve weak references when listing.
func NewNotificationService(repo repository.NotificationStore, categories ...repository.CategoryStore) *NotificationService {
	s := &NotificationService{
		repo:       repo,
		categories: make(map[models.Taxonomy]repository.CategoryStore),
	}
	for _, store := range categories {
		s.categories[store.Taxonomy()] = store
	}
	return s
}

// SetPublisher attaches the live push channel.
func (s *NotificationService) SetPublisher(p NotificationPublisher) {
	s.publisher = p
}

// NotifyPendingCategory appends a category_approval entry for a category
// that needs review.
func (s *NotificationService) NotifyPendingCategory(ctx context.Context, taxonomy models.Taxonomy, category *models.Category) error {
	notif := &models.Notification{
		Type:         models.NotificationCategoryApproval,
		CategoryID:   category.ID,
		CategoryName: category.Name,
		Taxonomy:     taxonomy,
		IsEnglish:    taxonomy == models.TaxonomyEnglish,
		IsRead:       false,
	}
	if err := s.repo.Create(ctx, notif); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"notification_id": notif.ID.Hex(),
		"category_id":     category.ID.Hex(),
		"taxonomy":        taxonomy,
	}).Info("Approval notification created")

	if s.publisher != nil {
		s.publisher.Publish(*notif)
	}
	return nil
}

// List returns the ledger with every reference resolved against the
// current category state. Missing targets are flagged, not dropped.
func (s *NotificationService) List(ctx context.Context, filter models.NotificationFilter) (*NotificationList, error) {
	notifications, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnread(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]models.NotificationView, 0, len(notifications))
	for _, n := range notifications {
		view := models.NotificationView{Notification: n}
		ref, err := s.resolve(ctx, n)
		if err != nil {
			return nil, err
		}
		view.Category = ref
		view.Dangling = ref == nil
		views = append(views, view)
	}
	return &NotificationList{Notifications: views, UnreadCount: unread}, nil
}

func (s *NotificationService) resolve(ctx context.Context, n models.Notification) (*models.CategoryRef, error) {
	taxonomy := n.Taxonomy
	if taxonomy == "" {
		taxonomy = models.TaxonomyDefault
		if n.IsEnglish {
			taxonomy = models.TaxonomyEnglish
		}
	}
	store, ok := s.categories[taxonomy]
	if !ok {
		return nil, nil
	}

	category, err := store.GetByID(ctx, n.CategoryID)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &models.CategoryRef{ID: category.ID, Name: category.Name, Status: category.Status}, nil
}

// MarkRead flags one notification as read
func (s *NotificationService) MarkRead(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	notif, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		return nil, err
	}
	logrus.WithField("notification_id", id.Hex()).Info("Notification marked as read")
	return notif, nil
}

// MarkReadForCategory clears the pending alerts of a reviewed category
func (s *NotificationService) MarkReadForCategory(ctx context.Context, taxonomy models.Taxonomy, categoryID primitive.ObjectID) (int64, error) {
	return s.repo.MarkReadForCategory(ctx, taxonomy, categoryID)
}

// UnreadCount is the number of notifications still awaiting attention
func (s *NotificationService) UnreadCount(ctx context.Context) (int64, error) {
	return s.repo.CountUnread(ctx)
}

// DeleteExpiredNotifications removes read notifications older than retention.
// Called periodically by cron.
func (s *NotificationService) DeleteExpiredNotifications(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.DeleteReadBefore(ctx, time.Now().UTC().Add(-retention))
}
