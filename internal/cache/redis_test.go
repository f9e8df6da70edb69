package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Dias221467/Message_Catalog/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client, err := Connect(addr, os.Getenv("REDIS_PASSWORD"))
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func testTaxonomy(t *testing.T, client *redis.Client) models.Taxonomy {
	taxonomy := models.Taxonomy("test-" + uuid.NewString())
	t.Cleanup(func() {
		client.Del(context.Background(), key(taxonomy), generationKey(taxonomy))
	})
	return taxonomy
}

func TestCategoryCacheRoundTrip(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()
	c := NewCategoryCache(client, time.Minute)
	taxonomy := testTaxonomy(t, client)

	_, gen, ok := c.GetApproved(ctx, taxonomy)
	assert.False(t, ok)
	assert.EqualValues(t, 0, gen)

	c.SetApproved(ctx, taxonomy, gen, []models.Category{{Name: "Greetings", Status: models.StatusApproved}})
	got, _, ok := c.GetApproved(ctx, taxonomy)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "Greetings", got[0].Name)

	ttl, err := client.TTL(ctx, key(taxonomy)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	c.Invalidate(ctx, taxonomy)
	_, gen, ok = c.GetApproved(ctx, taxonomy)
	assert.False(t, ok)
	assert.EqualValues(t, 1, gen)

	require.NoError(t, client.Set(ctx, key(taxonomy), "not json", time.Minute).Err())
	_, _, ok = c.GetApproved(ctx, taxonomy)
	assert.False(t, ok)
	assert.EqualValues(t, 0, client.Exists(ctx, key(taxonomy)).Val(), "corrupt entries are dropped")
}

func TestCategoryCacheDropsWritesFromAnOlderGeneration(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()
	c := NewCategoryCache(client, time.Minute)
	taxonomy := testTaxonomy(t, client)

	_, stale, ok := c.GetApproved(ctx, taxonomy)
	require.False(t, ok)

	// a moderation write lands between the reader's miss and its store read
	c.Invalidate(ctx, taxonomy)
	c.SetApproved(ctx, taxonomy, stale, []models.Category{{Name: "Greetings", Status: models.StatusApproved}})

	_, fresh, ok := c.GetApproved(ctx, taxonomy)
	assert.False(t, ok, "a listing read before the invalidate must not be cached")
	assert.Equal(t, stale+1, fresh)

	c.SetApproved(ctx, taxonomy, fresh, []models.Category{})
	got, _, ok := c.GetApproved(ctx, taxonomy)
	require.True(t, ok)
	assert.Empty(t, got)
}

func TestCategoryCacheOutageIsAMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	ctx := context.Background()
	c := NewCategoryCache(client, 0)
	assert.Equal(t, DefaultTTL, c.ttl)

	c.SetApproved(ctx, models.TaxonomyDefault, 0, []models.Category{{Name: "A"}})
	_, gen, ok := c.GetApproved(ctx, models.TaxonomyDefault)
	assert.False(t, ok)
	assert.EqualValues(t, -1, gen, "an outage yields a generation no write can match")
	c.Invalidate(ctx, models.TaxonomyDefault)
}
