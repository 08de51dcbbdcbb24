package watch

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/spoor/internal/filter"
	"github.com/dyluth/spoor/pkg/archive"
)

// syncBuffer is a bytes.Buffer safe for a writer goroutine and a polling reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func setupClient(t *testing.T) *archive.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := archive.NewClient(&redis.Options{Addr: mr.Addr()}, "test-instance")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func newSummary(replayID string, pid int, name string) *archive.Summary {
	apm := 120.5
	return &archive.Summary{
		ReplayID:    replayID,
		Replay:      "game.SC2Replay",
		PID:         pid,
		Name:        name,
		CreatedAtMs: time.Now().UnixMilli(),
		AvgAPM:      &apm,
	}
}

func TestPollForReplay(t *testing.T) {
	client := setupClient(t)
	ctx := context.Background()

	t.Run("returns summaries when already archived", func(t *testing.T) {
		replayID := uuid.New().String()
		require.NoError(t, client.SaveSummary(ctx, newSummary(replayID, 1, "Serral")))

		summaries, err := PollForReplay(ctx, client, replayID, 2*time.Second)
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		assert.Equal(t, "Serral", summaries[0].Name)
	})

	t.Run("returns summaries archived after a delay", func(t *testing.T) {
		replayID := uuid.New().String()
		go func() {
			time.Sleep(300 * time.Millisecond)
			_ = client.SaveSummary(ctx, newSummary(replayID, 2, "Maru"))
		}()

		summaries, err := PollForReplay(ctx, client, replayID, 3*time.Second)
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		assert.Equal(t, 2, summaries[0].PID)
	})

	t.Run("times out when replay never appears", func(t *testing.T) {
		_, err := PollForReplay(ctx, client, uuid.New().String(), 500*time.Millisecond)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timeout waiting for replay")
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		cancelCtx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := PollForReplay(cancelCtx, client, uuid.New().String(), 5*time.Second)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestStreamSummaries(t *testing.T) {
	run := func(t *testing.T, format OutputFormat, criteria *filter.Criteria, save func(*archive.Client)) string {
		t.Helper()
		client := setupClient(t)
		ctx, cancel := context.WithCancel(context.Background())

		out := &syncBuffer{}
		errOut := &syncBuffer{}
		done := make(chan error, 1)
		go func() {
			done <- StreamSummaries(ctx, client, out, errOut, format, criteria)
		}()

		// Give the subscription time to register before publishing
		time.Sleep(200 * time.Millisecond)
		save(client)

		time.Sleep(300 * time.Millisecond)
		cancel()
		require.NoError(t, <-done)
		return out.String()
	}

	replayID := uuid.New().String()

	t.Run("default format prints one line per summary", func(t *testing.T) {
		out := run(t, OutputFormatDefault, nil, func(c *archive.Client) {
			require.NoError(t, c.SaveSummary(context.Background(), newSummary(replayID, 1, "Serral")))
			require.NoError(t, c.SaveSummary(context.Background(), newSummary(replayID, 2, "Maru")))
		})

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], "name=Serral")
		assert.Contains(t, lines[1], "name=Maru")
		assert.Contains(t, lines[0], "apm=120.5")
	})

	t.Run("json format prints summaries", func(t *testing.T) {
		out := run(t, OutputFormatJSON, nil, func(c *archive.Client) {
			require.NoError(t, c.SaveSummary(context.Background(), newSummary(replayID, 1, "Serral")))
		})

		var got archive.Summary
		require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &got))
		assert.Equal(t, replayID, got.ReplayID)
		assert.Equal(t, "Serral", got.Name)
	})

	t.Run("criteria filter the stream", func(t *testing.T) {
		out := run(t, OutputFormatDefault, &filter.Criteria{NameGlob: "maru"}, func(c *archive.Client) {
			require.NoError(t, c.SaveSummary(context.Background(), newSummary(replayID, 1, "Serral")))
			require.NoError(t, c.SaveSummary(context.Background(), newSummary(replayID, 2, "Maru")))
		})

		assert.NotContains(t, out, "Serral")
		assert.Contains(t, out, "name=Maru")
	})
}

func TestFormatSummary(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 30, 45, 0, time.Local).UnixMilli()
	apm := 98.3
	cov := 12.5

	tests := []struct {
		name     string
		summary  *archive.Summary
		expected string
	}{
		{
			name: "player with results",
			summary: &archive.Summary{
				ReplayID: "1c9b7a2e-0000-4000-8000-000000000001", Replay: "a.SC2Replay",
				PID: 1, Name: "Serral", CreatedAtMs: created, AvgAPM: &apm, MaxCoverage: &cov,
			},
			expected: "[12:30:45] 📊 Analyzed: replay=1c9b7a2e (a.SC2Replay) pid=1 name=Serral apm=98.3 max_cov=12.50%",
		},
		{
			name: "observer with warning",
			summary: &archive.Summary{
				ReplayID: "1c9b7a2e-0000-4000-8000-000000000001", Replay: "a.SC2Replay",
				PID: 101, Name: "Caster", Observer: true, CreatedAtMs: created,
				Warnings: map[string]string{"coverage": "skipped: no tracker events"},
			},
			expected: "[12:30:45] 📊 Analyzed: replay=1c9b7a2e (a.SC2Replay) pid=101 name=Caster observer warnings=1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatSummary(tt.summary))
		})
	}
}
