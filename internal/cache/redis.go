package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/baharkarakas/rentacar-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "listing:"

// TombstoneTTL is how long an invalidated key refuses read-through writes.
// It outlives any single Get, so a view loaded before an edit or delete
// cannot be written back after the invalidation.
const TombstoneTTL = 30 * time.Second

// tombstone marks an invalidated key; it reads as a miss.
var tombstone = []byte{}

// Listings caches single-listing reads (with owner profile) in Redis.
type Listings struct {
	client *redis.Client
	ttl    time.Duration
}

func NewListings(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Listings, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &Listings{client: client, ttl: ttl}, nil
}

func Key(id string) string { return keyPrefix + id }

func (c *Listings) Get(ctx context.Context, id string) (*models.ListingView, error) {
	data, err := c.client.Get(ctx, Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // miss
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil // invalidated
	}
	var v models.ListingView
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Set stores v only when the key is absent. A live entry or a tombstone
// left by Delete wins.
func (c *Listings) Set(ctx context.Context, v models.ListingView) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.SetNX(ctx, Key(v.ID), data, c.ttl).Err()
}

// Delete replaces the entry with a tombstone instead of removing it.
func (c *Listings) Delete(ctx context.Context, id string) error {
	return c.client.Set(ctx, Key(id), tombstone, TombstoneTTL).Err()
}

func (c *Listings) Close() error { return c.client.Close() }
