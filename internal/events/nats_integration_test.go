package events

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/rentacar-backend/internal/logger"
)

func startNATS(t *testing.T) string {
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
	res, err := pool.RunWithOptions(&dockertest.RunOptions{Repository: "nats", Tag: "2.10"}, func(c *docker.HostConfig) {
		c.AutoRemove = true
		c.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Purge(res) })

	url := fmt.Sprintf("nats://%s", res.GetHostPort("4222/tcp"))
	require.NoError(t, pool.Retry(func() error {
		nc, err := nats.Connect(url)
		if err != nil {
			return err
		}
		nc.Close()
		return nil
	}))
	return url
}

func TestPublisherSendsJSON(t *testing.T) {
	url := startNATS(t)

	sub, err := nats.Connect(url)
	require.NoError(t, err)
	defer sub.Close()
	msgs := make(chan *nats.Msg, 1)
	_, err = sub.ChanSubscribe("listing.created", msgs)
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	p, err := NewPublisher(url, logger.Discard())
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Publish(context.Background(), "listing.created", map[string]string{"id": "abc"}))

	select {
	case m := <-msgs:
		var got map[string]string
		require.NoError(t, json.Unmarshal(m.Data, &got))
		assert.Equal(t, "abc", got["id"])
	case <-time.After(5 * time.Second):
		t.Fatal("event not received")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Publish(ctx, "listing.created", nil), context.Canceled)
}
