// Package cache keeps the public category listing of each taxonomy in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Dias221467/Message_Catalog/internal/models"
	"github.com/Dias221467/Message_Catalog/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	keyPrefix        = "catalog:approved:"
	generationPrefix = "catalog:approved-gen:"

	// DefaultTTL is how long a cached listing stays valid.
	DefaultTTL = 5 * time.Minute
)

// Connect creates a Redis client and verifies the connection with a ping.
func Connect(addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	logger.Log.WithField("addr", addr).Info("Redis connected")
	return client, nil
}

// CategoryCache stores the Approved listing per taxonomy. Errors are
// logged and treated as misses so Redis outages only cost latency.
type CategoryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCategoryCache(client *redis.Client, ttl time.Duration) *CategoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CategoryCache{client: client, ttl: ttl}
}

func key(taxonomy models.Taxonomy) string {
	return keyPrefix + string(taxonomy)
}

func generationKey(taxonomy models.Taxonomy) string {
	return generationPrefix + string(taxonomy)
}

var errStaleGeneration = errors.New("cache generation moved")

// GetApproved returns the cached listing, or false on a miss. The
// generation is read first and is only meaningful on a miss.
func (c *CategoryCache) GetApproved(ctx context.Context, taxonomy models.Taxonomy) ([]models.Category, int64, bool) {
	generation, err := c.client.Get(ctx, generationKey(taxonomy)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.Log.WithError(err).WithField("taxonomy", taxonomy).Warn("Category cache get failed")
		return nil, -1, false
	}

	raw, err := c.client.Get(ctx, key(taxonomy)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, generation, false
	}
	if err != nil {
		logger.Log.WithError(err).WithField("taxonomy", taxonomy).Warn("Category cache get failed")
		return nil, -1, false
	}

	var categories []models.Category
	if err := json.Unmarshal(raw, &categories); err != nil {
		logger.Log.WithError(err).WithField("taxonomy", taxonomy).Warn("Discarding corrupt cache entry")
		c.Invalidate(ctx, taxonomy)
		return nil, -1, false
	}
	return categories, generation, true
}

// SetApproved stores the listing unless the generation changed after it
// was read. The check and the write run in one WATCH transaction.
func (c *CategoryCache) SetApproved(ctx context.Context, taxonomy models.Taxonomy, generation int64, categories []models.Category) {
	if generation < 0 {
		return
	}
	raw, err := json.Marshal(categories)
	if err != nil {
		return
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, generationKey(taxonomy)).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(taxonomy), raw, c.ttl)
			return nil
		})
		return err
	}, generationKey(taxonomy))

	switch {
	case err == nil:
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		logger.Log.WithField("taxonomy", taxonomy).Debug("Skipped stale category cache write")
	default:
		logger.Log.WithError(err).WithField("taxonomy", taxonomy).Warn("Category cache set failed")
	}
}

// Invalidate drops the cached listing after any write to the taxonomy and
// bumps its generation.
func (c *CategoryCache) Invalidate(ctx context.Context, taxonomy models.Taxonomy) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(taxonomy))
		pipe.Del(ctx, key(taxonomy))
		return nil
	})
	if err != nil {
		logger.Log.WithError(err).WithFields(logrus.Fields{"taxonomy": taxonomy}).Warn("Category cache invalidate failed")
	}
}
