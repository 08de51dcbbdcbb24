package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/dyluth/spoor/internal/config"
	"github.com/dyluth/spoor/internal/eventlog"
	"github.com/dyluth/spoor/internal/printer"
	"github.com/dyluth/spoor/internal/s2source"
	"github.com/dyluth/spoor/internal/scaffold"
	"github.com/dyluth/spoor/pkg/archive"
	"github.com/dyluth/spoor/pkg/replay"
)

// loadConfig loads the configuration at path. An empty path falls back to
// ./spoor.yml when present, then to the built-in defaults.
func loadConfig(path string) (*config.SpoorConfig, error) {
	if path == "" {
		if _, err := os.Stat(scaffold.ConfigFile); err != nil {
			return config.Default(), nil
		}
		path = scaffold.ConfigFile
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, printer.Error(
			"configuration error",
			fmt.Sprintf("Could not load %s: %v", path, err),
			[]string{"Write a fresh configuration:\n  spoor init --force"},
		)
	}
	return cfg, nil
}

// loadReplay builds a replay context from a .SC2Replay file or an event log.
func loadReplay(path string, cfg *config.SpoorConfig) (*replay.Context, error) {
	if s2source.IsReplay(path) {
		f, err := s2source.Load(path, s2source.Options{AbilityNames: cfg.Decoder.AbilityNames})
		if err != nil {
			return nil, err
		}
		return f.Context()
	}
	return eventlog.Load(path)
}

// archiveTarget resolves the Redis URL and instance name from flags first,
// then from the store section of the configuration.
func archiveTarget(cfg *config.SpoorConfig, redisURL, instanceName string) (string, string) {
	if cfg != nil && cfg.Store != nil {
		if redisURL == "" {
			redisURL = cfg.Store.RedisURL
		}
		if instanceName == "" {
			instanceName = cfg.Store.Instance
		}
	}
	if instanceName == "" {
		instanceName = "default"
	}
	return redisURL, instanceName
}

// connectArchive opens and pings the archive. Failures are printed and
// returned as plain errors for cobra.
func connectArchive(ctx context.Context, redisURL, instanceName string) (*archive.Client, error) {
	if redisURL == "" {
		return nil, printer.Error(
			"no archive configured",
			"This command needs a Redis archive.",
			[]string{
				"Pass the URL directly:\n  --redis redis://localhost:6379",
				"Or set store.redis_url in spoor.yml",
			},
		)
	}

	if err := archive.ValidateInstanceName(instanceName); err != nil {
		return nil, printer.Error(
			"invalid instance name",
			err.Error(),
			[]string{"Use lowercase letters, digits and hyphens, e.g. --name ladder-eu"},
		)
	}

	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, printer.Error(
			"invalid Redis URL",
			fmt.Sprintf("Could not parse %s: %v", redisURL, err),
			[]string{"Use the form redis://[user:password@]host:port[/db]"},
		)
	}

	client, err := archive.NewClient(redisOpts, instanceName)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive client: %w", err)
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, printer.ErrorWithContext(
			"Redis connection failed",
			fmt.Sprintf("Could not connect to Redis at %s", redisURL),
			map[string]string{"Instance": instanceName, "Error": err.Error()},
			[]string{"Check that Redis is running and reachable"},
		)
	}

	return client, nil
}

// errAlreadyReported marks failures that were printed while processing
// several inputs; the command still exits non-zero.
var errAlreadyReported = errors.New("one or more replays failed")
