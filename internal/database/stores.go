package database

import (
	"context"

	"github.com/Dias221467/Message_Catalog/internal/config"
	"github.com/Dias221467/Message_Catalog/internal/models"
	"github.com/Dias221467/Message_Catalog/internal/repository"
	"github.com/Dias221467/Message_Catalog/internal/repository/memstore"
	"github.com/Dias221467/Message_Catalog/pkg/logger"
)

// Stores bundles the repositories of one storage backend.
type Stores struct {
	Categories    map[models.Taxonomy]repository.CategoryStore
	Notifications repository.NotificationStore
	Activities    repository.ActivityStore
	Users         repository.UserStore

	close func(ctx context.Context) error
}

// CategoryStores lists the category stores in taxonomy order.
func (s *Stores) CategoryStores() []repository.CategoryStore {
	out := make([]repository.CategoryStore, 0, len(s.Categories))
	for _, t := range models.Taxonomies {
		if store, ok := s.Categories[t]; ok {
			out = append(out, store)
		}
	}
	return out
}

// Close releases the backend connection, if any.
func (s *Stores) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// OpenStores connects the backend selected by STORAGE_DRIVER. The Mongo
// backend also makes sure its indexes exist.
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	if cfg.StorageDriver == "memory" {
		logger.Log.Warn("Using in-memory storage; data is lost on restart")
		return MemoryStores(), nil
	}

	db, err := ConnectDB(cfg)
	if err != nil {
		return nil, err
	}

	categories := make(map[models.Taxonomy]repository.CategoryStore, len(models.Taxonomies))
	builders := []IndexBuilder{}
	for _, t := range models.Taxonomies {
		repo := repository.NewCategoryRepository(db, t)
		categories[t] = repo
		builders = append(builders, repo)
	}
	notifications := repository.NewNotificationRepository(db)
	users := repository.NewUserRepository(db)
	builders = append(builders, notifications, users)

	if err := EnsureIndexes(ctx, builders...); err != nil {
		_ = Disconnect(context.Background(), db)
		return nil, err
	}

	return &Stores{
		Categories:    categories,
		Notifications: notifications,
		Activities:    repository.NewActivityRepository(db),
		Users:         users,
		close: func(ctx context.Context) error {
			return Disconnect(ctx, db)
		},
	}, nil
}

// MemoryStores returns empty in-process stores.
func MemoryStores() *Stores {
	categories := make(map[models.Taxonomy]repository.CategoryStore, len(models.Taxonomies))
	for _, t := range models.Taxonomies {
		categories[t] = memstore.NewCategories(t)
	}
	return &Stores{
		Categories:    categories,
		Notifications: memstore.NewNotifications(),
		Activities:    memstore.NewActivities(),
		Users:         memstore.NewUsers(),
	}
}
