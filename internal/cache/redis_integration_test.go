package cache

import (
	"context"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/rentacar-backend/internal/models"
)

func startRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping docker test in -short mode")
	}
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	res, err := pool.RunWithOptions(&dockertest.RunOptions{Repository: "redis", Tag: "7-alpine"}, func(c *docker.HostConfig) {
		c.AutoRemove = true
		c.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Purge(res) })

	addr := res.GetHostPort("6379/tcp")
	require.NoError(t, pool.Retry(func() error {
		c := redis.NewClient(&redis.Options{Addr: addr})
		defer c.Close()
		return c.Ping(context.Background()).Err()
	}))
	return addr
}

func TestKey(t *testing.T) {
	assert.Equal(t, "listing:42", Key("42"))
}

func TestListingsCacheRoundTrip(t *testing.T) {
	addr := startRedis(t)
	ctx := context.Background()

	c, err := NewListings(ctx, addr, "", 0, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	got, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got, "miss is nil, nil")

	v := models.ListingView{
		Listing: models.Listing{ID: "l1", Title: "Clio", Images: []models.Image{{URL: "u", Handle: "h"}}},
		Owner:   &models.Profile{ID: "u1", Name: "Ada", Email: "ada@example.com"},
	}
	require.NoError(t, c.Set(ctx, v))

	got, err = c.Get(ctx, "l1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Clio", got.Title)
	assert.Equal(t, "Ada", got.Owner.Name)
	assert.Equal(t, []models.Image{{URL: "u"}}, got.Images, "handles are not cached")

	require.NoError(t, c.Delete(ctx, "l1"))
	got, err = c.Get(ctx, "l1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSetAfterDeleteDoesNotResurrect(t *testing.T) {
	addr := startRedis(t)
	ctx := context.Background()

	c, err := NewListings(ctx, addr, "", 0, time.Hour)
	require.NoError(t, err)
	defer c.Close()

	stale := models.ListingView{Listing: models.Listing{ID: "l2", Title: "before edit"}}
	fresh := models.ListingView{Listing: models.Listing{ID: "l2", Title: "after edit"}}

	// a reader loaded stale, then an edit invalidated, then the reader writes back
	require.NoError(t, c.Delete(ctx, "l2"))
	require.NoError(t, c.Set(ctx, stale))
	got, err := c.Get(ctx, "l2")
	require.NoError(t, err)
	assert.Nil(t, got)

	ttl, err := c.client.TTL(ctx, Key("l2")).Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, TombstoneTTL)

	// once the tombstone is gone the next read-through fills the entry
	require.NoError(t, c.client.Del(ctx, Key("l2")).Err())
	require.NoError(t, c.Set(ctx, fresh))
	require.NoError(t, c.Set(ctx, stale))
	got, err = c.Get(ctx, "l2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "after edit", got.Title)
}

func TestNewListingsFailsWithoutServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewListings(ctx, "127.0.0.1:1", "", 0, time.Minute)
	assert.Error(t, err)
}
