package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dyluth/spoor/internal/eventlog"
	"github.com/dyluth/spoor/internal/printer"
	"github.com/dyluth/spoor/internal/s2source"
)

var (
	decodeConfigPath string
	decodeFormat     string
	decodeOutputPath string
)

var decodeCmd = &cobra.Command{
	Use:   "decode FILE.SC2Replay",
	Short: "Convert a replay file into an event log",
	Long: `Decode a .SC2Replay file into the event log format read by 'spoor analyze'.

The event log holds the roster, map metadata and the ordered event stream in
JSON or YAML. It can be edited by hand, checked into test fixtures or analyzed
without the original replay.

Examples:
  # Print the event log as YAML
  spoor decode game.SC2Replay

  # Write JSON to a file
  spoor decode game.SC2Replay --format json -f game.json`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().StringVarP(&decodeConfigPath, "config", "c", "", "Path to spoor.yml (default: ./spoor.yml if present)")
	decodeCmd.Flags().StringVar(&decodeFormat, "format", "yaml", "Event log format: yaml or json")
	decodeCmd.Flags().StringVarP(&decodeOutputPath, "file", "f", "", "Write to this file instead of stdout")
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	format := eventlog.Format(decodeFormat)
	if format != eventlog.FormatJSON && format != eventlog.FormatYAML {
		return printer.Error(
			"invalid format",
			fmt.Sprintf("Unknown format: %s", decodeFormat),
			[]string{"Valid formats: yaml, json"},
		)
	}

	path := args[0]
	if !s2source.IsReplay(path) {
		return printer.Error(
			"not a replay file",
			fmt.Sprintf("%s does not have the .SC2Replay extension.", path),
			[]string{"Event logs can be analyzed directly:\n  spoor analyze " + path},
		)
	}

	cfg, err := loadConfig(decodeConfigPath)
	if err != nil {
		return err
	}

	f, err := s2source.Load(path, s2source.Options{AbilityNames: cfg.Decoder.AbilityNames})
	if err != nil {
		return printer.ErrorWithContext("failed to decode replay", err.Error(), map[string]string{"File": path}, nil)
	}

	data, err := eventlog.Encode(f, format)
	if err != nil {
		return err
	}

	if decodeOutputPath == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(decodeOutputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write event log: %w", err)
	}
	printer.Success("Wrote %d events to %s\n", len(f.Events), decodeOutputPath)
	return nil
}
