package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Client provides instance-scoped Redis operations for the summary archive.
// All keys and channels are automatically namespaced with the instance name.
// The client is safe for concurrent use.
type Client struct {
	rdb          *redis.Client
	instanceName string
}

// NewClient creates a new archive client for the specified instance.
// Returns an error if instanceName is not a valid instance name.
func NewClient(redisOpts *redis.Options, instanceName string) (*Client, error) {
	if err := ValidateInstanceName(instanceName); err != nil {
		return nil, err
	}

	return &Client{
		rdb:          redis.NewClient(redisOpts),
		instanceName: instanceName,
	}, nil
}

// Close closes the Redis connection. Implements io.Closer.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// SaveSummary writes a summary and indexes its pid under the replay, then
// publishes the summary on spoor:{instance}:analysis_events.
// Saving the same summary twice overwrites it.
func (c *Client) SaveSummary(ctx context.Context, s *Summary) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid summary: %w", err)
	}

	hash, err := SummaryToHash(s)
	if err != nil {
		return fmt.Errorf("failed to serialize summary: %w", err)
	}

	key := ParticipantKey(c.instanceName, s.ReplayID, s.PID)
	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, hash)
		pipe.SAdd(ctx, ParticipantsKey(c.instanceName, s.ReplayID), s.PID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write summary to Redis: %w", err)
	}

	summaryJSON, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal summary for event: %w", err)
	}

	channel := AnalysisEventsChannel(c.instanceName)
	if err := c.rdb.Publish(ctx, channel, summaryJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish analysis event: %w", err)
	}

	return nil
}

// GetSummary retrieves one participant's summary.
// Returns (nil, redis.Nil) if it doesn't exist. Use IsNotFound() to check.
func (c *Client) GetSummary(ctx context.Context, replayID string, pid int) (*Summary, error) {
	key := ParticipantKey(c.instanceName, replayID, pid)

	hashData, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read summary from Redis: %w", err)
	}

	// HGetAll returns an empty map for non-existent keys
	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	summary, err := HashToSummary(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize summary: %w", err)
	}

	return summary, nil
}

// ListSummaries returns every archived summary of a replay ordered by pid.
// Returns (nil, redis.Nil) if the replay is not archived.
func (c *Client) ListSummaries(ctx context.Context, replayID string) ([]*Summary, error) {
	members, err := c.rdb.SMembers(ctx, ParticipantsKey(c.instanceName, replayID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read participants from Redis: %w", err)
	}
	if len(members) == 0 {
		return nil, redis.Nil
	}

	pids := make([]int, 0, len(members))
	for _, m := range members {
		pid, err := strconv.Atoi(m)
		if err != nil {
			return nil, fmt.Errorf("invalid participant %q in index: %w", m, err)
		}
		pids = append(pids, pid)
	}
	sort.Ints(pids)

	summaries := make([]*Summary, 0, len(pids))
	for _, pid := range pids {
		s, err := c.GetSummary(ctx, replayID, pid)
		if err != nil {
			return nil, fmt.Errorf("participant %d: %w", pid, err)
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// ReplayExists checks if any summary of the replay is archived.
func (c *Client) ReplayExists(ctx context.Context, replayID string) (bool, error) {
	exists, err := c.rdb.Exists(ctx, ParticipantsKey(c.instanceName, replayID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check replay existence: %w", err)
	}
	return exists > 0, nil
}

// ListReplays returns the ids of every archived replay, sorted.
// Uses SCAN so large archives do not block the server.
func (c *Client) ListReplays(ctx context.Context) ([]string, error) {
	iter := c.rdb.Scan(ctx, 0, ParticipantsPattern(c.instanceName), 0).Iterator()

	var ids []string
	for iter.Next(ctx) {
		if id, ok := replayIDFromParticipantsKey(c.instanceName, iter.Val()); ok {
			ids = append(ids, id)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan replays: %w", err)
	}

	sort.Strings(ids)
	return ids, nil
}

// Subscription represents an active Pub/Sub subscription to analysis events.
// Caller must call Close() when done to clean up resources.
type Subscription struct {
	events <-chan *Summary
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of saved summaries.
// The channel is closed when the subscription is closed or the context is cancelled.
func (s *Subscription) Events() <-chan *Summary {
	return s.events
}

// Errors returns the channel of subscription errors.
// The subscription continues after errors; malformed messages are skipped.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription. Safe to call multiple times.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// SubscribeAnalysisEvents subscribes to saved summaries for this instance.
// Context cancellation also stops the subscription.
//
// Events are delivered on a buffered channel (size 10). Redis Pub/Sub is
// at-most-once, so a slow subscriber may miss events.
func (c *Client) SubscribeAnalysisEvents(ctx context.Context) (*Subscription, error) {
	pubsub := c.rdb.Subscribe(ctx, AnalysisEventsChannel(c.instanceName))

	// Wait for the subscription to be confirmed so no event published after
	// return is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to analysis events: %w", err)
	}

	eventsChan := make(chan *Summary, 10)
	errorsChan := make(chan error, 10)

	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var summary Summary
				if err := json.Unmarshal([]byte(msg.Payload), &summary); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal analysis event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &summary:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}

// IsNotFound returns true if the error is a Redis "key not found" error (redis.Nil).
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}
