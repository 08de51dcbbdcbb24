//go:build integration

package archive

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts a Redis container for testing.
func setupRedis(t *testing.T) string {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start Redis container")
	t.Cleanup(func() {
		if err := redisC.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate Redis container: %v", err)
		}
	})

	host, err := redisC.Host(ctx)
	require.NoError(t, err)
	port, err := redisC.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return fmt.Sprintf("redis://%s:%s", host, port.Port())
}

func TestArchiveAgainstRedis(t *testing.T) {
	redisURL := setupRedis(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts, err := redis.ParseURL(redisURL)
	require.NoError(t, err)

	client, err := NewClient(opts, "integration")
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Ping(ctx))

	sub, err := client.SubscribeAnalysisEvents(ctx)
	require.NoError(t, err)
	defer sub.Close()

	replayID := uuid.New().String()
	for pid := 1; pid <= 2; pid++ {
		summary := fullSummary()
		summary.ReplayID = replayID
		summary.PID = pid
		require.NoError(t, client.SaveSummary(ctx, summary))
	}

	for i := 0; i < 2; i++ {
		select {
		case received := <-sub.Events():
			assert.Equal(t, replayID, received.ReplayID)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for analysis event")
		}
	}

	summaries, err := client.ListSummaries(ctx, replayID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.InDelta(t, 4.3, *summaries[1].MaxCoverage, 1e-9)

	ids, err := client.ListReplays(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, replayID)
}
