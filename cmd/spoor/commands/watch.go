package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dyluth/spoor/internal/filter"
	"github.com/dyluth/spoor/internal/printer"
	"github.com/dyluth/spoor/internal/watch"
)

var (
	watchConfigPath   string
	watchRedisURL     string
	watchInstanceName string
	watchOutputFormat string
	watchPlayer       string
	watchPlayersOnly  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream summaries as they are archived",
	Long: `Stream every summary archived in an instance as it is saved.

Runs until interrupted (Ctrl+C). Summaries saved before the watch started are
not shown; use 'spoor show' for those.

Output Formats:
  default - One line per summary with timestamp, replay and headline numbers
  json    - Line-delimited JSON for programmatic processing

Examples:
  # Watch the default instance
  spoor watch --redis redis://localhost:6379

  # Only players matching a name
  spoor watch --name ladder --player "ser*"`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchConfigPath, "config", "c", "", "Path to spoor.yml (default: ./spoor.yml if present)")
	watchCmd.Flags().StringVar(&watchRedisURL, "redis", "", "Redis URL of the archive (default: store.redis_url)")
	watchCmd.Flags().StringVarP(&watchInstanceName, "name", "n", "", "Archive instance name (default: store.instance or 'default')")
	watchCmd.Flags().StringVarP(&watchOutputFormat, "output", "o", "default", "Output format: default or json")
	watchCmd.Flags().StringVar(&watchPlayer, "player", "", "Filter by participant name (glob pattern)")
	watchCmd.Flags().BoolVar(&watchPlayersOnly, "players-only", false, "Hide observers")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	var format watch.OutputFormat
	switch watchOutputFormat {
	case "default":
		format = watch.OutputFormatDefault
	case "json":
		format = watch.OutputFormatJSON
	default:
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", watchOutputFormat),
			[]string{"Valid formats: default, json"},
		)
	}

	cfg, err := loadConfig(watchConfigPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisURL, instanceName := archiveTarget(cfg, watchRedisURL, watchInstanceName)
	client, err := connectArchive(ctx, redisURL, instanceName)
	if err != nil {
		return err
	}
	defer client.Close()

	criteria := &filter.Criteria{NameGlob: watchPlayer, PlayersOnly: watchPlayersOnly}

	if format == watch.OutputFormatDefault {
		printer.Step("Watching instance '%s' (Ctrl+C to stop)\n", instanceName)
	}
	if err := watch.StreamSummaries(ctx, client, cmd.OutOrStdout(), cmd.ErrOrStderr(), format, criteria); err != nil {
		return printer.Error("watch failed", err.Error(), nil)
	}
	return nil
}
