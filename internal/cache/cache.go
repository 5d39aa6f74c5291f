package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fhuszti/medias-display-go/internal/logger"
	"github.com/fhuszti/medias-display-go/internal/model"
	"github.com/fhuszti/medias-display-go/internal/port"
	"github.com/fhuszti/medias-display-go/internal/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long a catalogue record is served from Redis.
const DefaultTTL = 5 * time.Minute

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// compile-time check: *Cache must satisfy port.Cache
var _ port.Cache = (*Cache)(nil)

func NewCache(addr, password string) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	return &Cache{client: rdb, ttl: DefaultTTL}
}

// Ping checks the connection to Redis.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}

func (c *Cache) GetMedia(ctx context.Context, id uuid.UUID) (*model.Media, error) {
	logger.Debugf(ctx, "getting entry in cache for media #%s...", id)

	val, err := c.client.Get(ctx, getCacheKey(id.String())).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var m model.Media
	if err := json.Unmarshal(val, &m); err != nil {
		return nil, fmt.Errorf("unmarshal failed: %w", err)
	}
	return &m, nil
}

// SetMedia never fails the caller: a record that cannot be cached is simply
// read from the database next time.
func (c *Cache) SetMedia(ctx context.Context, m *model.Media) {
	logger.Debugf(ctx, "creating entry in cache for media #%s, valid for %s...", m.ID, c.ttl)

	data, err := json.Marshal(m)
	if err != nil {
		logger.Warnf(ctx, "failed to marshal media #%s for cache: %v", m.ID, err)
		return
	}
	if err := c.client.Set(ctx, getCacheKey(m.ID.String()), data, c.ttl).Err(); err != nil {
		logger.Warnf(ctx, "redis set failed for media #%s: %v", m.ID, err)
	}
}

func (c *Cache) DeleteMedia(ctx context.Context, id uuid.UUID) error {
	logger.Debugf(ctx, "deleting entry in cache for media #%s...", id)

	if err := c.client.Del(ctx, getCacheKey(id.String())).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func getCacheKey(id string) string {
	return "media:" + id
}
