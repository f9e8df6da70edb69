package services

import (
	"context"
	"sync"
	"testing"

	"github.com/Dias221467/Message_Catalog/internal/models"
	"github.com/Dias221467/Message_Catalog/internal/repository/memstore"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memCache struct {
	mu          sync.Mutex
	lists       map[models.Taxonomy][]models.Category
	generations map[models.Taxonomy]int64
	hits        int
	invalidated int
	stale       int
}

func newMemCache() *memCache {
	return &memCache{
		lists:       make(map[models.Taxonomy][]models.Category),
		generations: make(map[models.Taxonomy]int64),
	}
}

func (c *memCache) GetApproved(ctx context.Context, t models.Taxonomy) ([]models.Category, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	list, ok := c.lists[t]
	if ok {
		c.hits++
	}
	return list, c.generations[t], ok
}

func (c *memCache) SetApproved(ctx context.Context, t models.Taxonomy, generation int64, categories []models.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[t] != generation {
		c.stale++
		return
	}
	c.lists[t] = categories
}

func (c *memCache) Invalidate(ctx context.Context, t models.Taxonomy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.lists, t)
	c.generations[t]++
	c.invalidated++
}

// gatedStore pauses the first List after it has read from the store, so a
// test can interleave a write before the listing is returned.
type gatedStore struct {
	*memstore.Categories
	once    sync.Once
	listed  chan struct{}
	release chan struct{}
}

func newGatedStore(inner *memstore.Categories) *gatedStore {
	return &gatedStore{
		Categories: inner,
		listed:     make(chan struct{}),
		release:    make(chan struct{}),
	}
}

func (g *gatedStore) List(ctx context.Context, filter models.CategoryFilter) ([]models.Category, error) {
	out, err := g.Categories.List(ctx, filter)
	g.once.Do(func() {
		close(g.listed)
		<-g.release
	})
	return out, err
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (p *recordingPublisher) Publish(n models.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, n)
}

type fixture struct {
	store         *memstore.Categories
	ledger        *memstore.Notifications
	activityLog   *memstore.Activities
	cache         *memCache
	publisher     *recordingPublisher
	notifications *NotificationService
	categories    *CategoryService
	moderation    *ModerationService
	imports       *ImportService
}

func newFixture(t *testing.T, taxonomy models.Taxonomy, importDefault models.Status) *fixture {
	t.Helper()
	f := &fixture{
		store:       memstore.NewCategories(taxonomy),
		ledger:      memstore.NewNotifications(),
		activityLog: memstore.NewActivities(),
		cache:       newMemCache(),
		publisher:   &recordingPublisher{},
	}
	activities := NewActivityService(f.activityLog)
	policy := NewTaxonomyPolicy(taxonomy, importDefault)

	f.notifications = NewNotificationService(f.ledger, f.store)
	f.notifications.SetPublisher(f.publisher)
	f.categories = NewCategoryService(f.store, policy, f.notifications, activities, f.cache)
	f.moderation = NewModerationService(f.store, f.notifications, activities, f.cache)
	f.imports = NewImportService(f.store, policy, activities, f.cache, ImportOptions{BatchSize: 2})
	return f
}

func actor(role models.Role) Actor {
	id := primitive.NewObjectID()
	return Actor{UserID: &id, Role: role}
}

var (
	member = actor(models.RoleMember)
	admin  = actor(models.RoleAdmin)
)

func (f *fixture) create(t *testing.T, who Actor, name string, subs ...string) *models.Category {
	t.Helper()
	input := CreateCategoryInput{Name: name}
	for _, s := range subs {
		input.Subcategories = append(input.Subcategories, models.Subcategory{Name: s})
	}
	c, err := f.categories.Create(context.Background(), who, input)
	require.NoError(t, err)
	return c
}
