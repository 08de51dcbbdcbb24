package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dyluth/spoor/internal/filter"
	"github.com/dyluth/spoor/internal/printer"
	"github.com/dyluth/spoor/internal/report"
	"github.com/dyluth/spoor/internal/resolver"
	"github.com/dyluth/spoor/internal/timespec"
	"github.com/dyluth/spoor/internal/watch"
	"github.com/dyluth/spoor/pkg/archive"
)

var (
	showConfigPath   string
	showRedisURL     string
	showInstanceName string
	showOutputFormat string
	showPlayer       string
	showPlayersOnly  bool
	showMinAPM       float64
	showSince        string
	showWait         time.Duration
)

var showCmd = &cobra.Command{
	Use:   "show [REPLAY_ID]",
	Short: "Print archived summaries",
	Long: `Print summaries archived by 'spoor analyze --redis'.

List Mode (no REPLAY_ID):
  Prints the ids of every archived replay.

Show Mode (with REPLAY_ID):
  Prints the summaries of one replay. Supports short ids
  (e.g. "1c9b7a" instead of the full UUID).

Filters (show mode only):
  --player        - Participant name (glob, case-insensitive: "ser*")
  --players-only  - Hide observers
  --min-apm       - Hide participants below this average APM
  --since         - Hide summaries archived before this time (duration or RFC3339)

Examples:
  # List archived replays
  spoor show --redis redis://localhost:6379

  # Show one replay as JSONL for piping to jq
  spoor show 1c9b7a --redis redis://localhost:6379 -o jsonl | jq .avg_apm

  # Wait up to 30s for a replay another process is analyzing
  spoor show 1c9b7a2e-0000-4000-8000-000000000001 --wait 30s`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVarP(&showConfigPath, "config", "c", "", "Path to spoor.yml (default: ./spoor.yml if present)")
	showCmd.Flags().StringVar(&showRedisURL, "redis", "", "Redis URL of the archive (default: store.redis_url)")
	showCmd.Flags().StringVarP(&showInstanceName, "name", "n", "", "Archive instance name (default: store.instance or 'default')")
	showCmd.Flags().StringVarP(&showOutputFormat, "output", "o", "default", "Output format: default or jsonl")
	showCmd.Flags().StringVar(&showPlayer, "player", "", "Filter by participant name (glob pattern)")
	showCmd.Flags().BoolVar(&showPlayersOnly, "players-only", false, "Hide observers")
	showCmd.Flags().Float64Var(&showMinAPM, "min-apm", 0, "Hide participants below this average APM")
	showCmd.Flags().StringVar(&showSince, "since", "", "Hide summaries archived before this time (duration or RFC3339)")
	showCmd.Flags().DurationVar(&showWait, "wait", 0, "Wait up to this long for a full replay id to be archived")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	format, err := report.ParseOutputFormat(showOutputFormat)
	if err != nil {
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", showOutputFormat),
			[]string{"Valid formats: default, jsonl"},
		)
	}

	criteria := &filter.Criteria{
		NameGlob:    showPlayer,
		PlayersOnly: showPlayersOnly,
		MinAvgAPM:   showMinAPM,
	}
	if showSince != "" {
		since, err := timespec.ParseWallClock(showSince, time.Now())
		if err != nil {
			return printer.Error("invalid --since value", err.Error(), nil)
		}
		criteria.SinceCreated = since.UnixMilli()
	}

	cfg, err := loadConfig(showConfigPath)
	if err != nil {
		return err
	}

	redisURL, instanceName := archiveTarget(cfg, showRedisURL, showInstanceName)
	client, err := connectArchive(ctx, redisURL, instanceName)
	if err != nil {
		return err
	}
	defer client.Close()

	if len(args) == 0 {
		return listReplays(cmd, client, instanceName)
	}

	var summaries []*archive.Summary
	if showWait > 0 {
		summaries, err = watch.PollForReplay(ctx, client, args[0], showWait)
		if err != nil {
			return printer.Error(
				fmt.Sprintf("replay '%s' not archived", args[0]),
				err.Error(),
				[]string{"--wait needs the full replay id printed by 'spoor analyze'"},
			)
		}
	} else {
		replayID, err := resolver.ResolveReplayID(ctx, client, args[0])
		if err != nil {
			return resolveError(args[0], instanceName, err)
		}
		summaries, err = client.ListSummaries(ctx, replayID)
		if err != nil {
			return fmt.Errorf("failed to read summaries: %w", err)
		}
	}

	replayName := args[0]
	if len(summaries) > 0 {
		replayName = summaries[0].Replay
	}
	return report.Write(cmd.OutOrStdout(), criteria.Apply(summaries), replayName, format)
}

func listReplays(cmd *cobra.Command, client *archive.Client, instanceName string) error {
	ids, err := client.ListReplays(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list replays: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(ids) == 0 {
		fmt.Fprintf(out, "No replays archived in instance '%s'\n", instanceName)
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(out, id)
	}
	return nil
}

func resolveError(shortID, instanceName string, err error) error {
	switch e := err.(type) {
	case *resolver.NotFoundError:
		return printer.Error(
			fmt.Sprintf("replay with ID '%s' not found", shortID),
			fmt.Sprintf("No replay matching this id is archived in instance '%s'.", instanceName),
			[]string{"List archived replays:\n  spoor show"},
		)
	case *resolver.AmbiguousError:
		return printer.Error("ambiguous replay ID", resolver.FormatAmbiguousError(e), nil)
	default:
		return printer.Error("failed to resolve replay ID", err.Error(), nil)
	}
}
