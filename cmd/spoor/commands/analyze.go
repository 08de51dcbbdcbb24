package commands

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dyluth/spoor/internal/config"
	"github.com/dyluth/spoor/internal/engine"
	"github.com/dyluth/spoor/internal/pipeline"
	"github.com/dyluth/spoor/internal/printer"
	"github.com/dyluth/spoor/internal/report"
	"github.com/dyluth/spoor/internal/timespec"
	"github.com/dyluth/spoor/pkg/archive"
	"github.com/dyluth/spoor/pkg/replay"
)

var (
	analyzeConfigPath   string
	analyzeOutputFormat string
	analyzeAt           string
	analyzeRedisURL     string
	analyzeInstanceName string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE...",
	Short: "Analyze replays and print per-player summaries",
	Long: `Analyze one or more replays with the configured modules.

Each FILE is either a .SC2Replay file or an event log (.json, .yaml, .yml).
Files are analyzed in parallel and printed in the order given. A module that
fails or lacks its input data is reported as a warning; the other modules'
results are still printed.

Output Formats:
  default - Table of participants followed by per-minute coverage
  jsonl   - One summary per participant as line-delimited JSON

Archiving:
  With --redis (or store.redis_url in spoor.yml) every summary is saved under
  a fresh replay id and can be shown later with 'spoor show'.

Examples:
  # Analyze a replay with the default modules
  spoor analyze game.SC2Replay

  # Show who had what selected at 12:30
  spoor analyze game.SC2Replay --at 12m30s

  # Archive summaries of several replays
  spoor analyze *.SC2Replay --redis redis://localhost:6379 --name ladder`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfigPath, "config", "c", "", "Path to spoor.yml (default: ./spoor.yml if present)")
	analyzeCmd.Flags().StringVarP(&analyzeOutputFormat, "output", "o", "default", "Output format: default or jsonl")
	analyzeCmd.Flags().StringVar(&analyzeAt, "at", "", "Also print selections at this game time (e.g. 12m30s, 12:30)")
	analyzeCmd.Flags().StringVar(&analyzeRedisURL, "redis", "", "Archive summaries to this Redis URL")
	analyzeCmd.Flags().StringVarP(&analyzeInstanceName, "name", "n", "", "Archive instance name (default: store.instance or 'default')")
	rootCmd.AddCommand(analyzeCmd)
}

// analysis is the outcome of analyzing one input file.
type analysis struct {
	path      string
	rc        *replay.Context
	run       *engine.Report
	summaries []*archive.Summary
	err       error
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	format, err := report.ParseOutputFormat(analyzeOutputFormat)
	if err != nil {
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", analyzeOutputFormat),
			[]string{"Valid formats: default, jsonl"},
		)
	}

	atFrame := -1
	if analyzeAt != "" {
		if format != report.OutputFormatDefault {
			return printer.Error(
				"--at requires the default output format",
				"Selections are printed as text and cannot be mixed into JSONL output.",
				[]string{"Drop --output=jsonl or --at"},
			)
		}
		atFrame, err = timespec.ParseFrame(analyzeAt)
		if err != nil {
			return printer.Error("invalid --at value", err.Error(), nil)
		}
	}

	cfg, err := loadConfig(analyzeConfigPath)
	if err != nil {
		return err
	}

	var store *archive.Client
	redisURL, instanceName := archiveTarget(cfg, analyzeRedisURL, analyzeInstanceName)
	if redisURL != "" {
		store, err = connectArchive(ctx, redisURL, instanceName)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	out := cmd.OutOrStdout()
	failed := false
	for _, a := range analyzeAll(args, cfg) {
		if a.err != nil {
			failed = true
			printer.ErrorWithContext("failed to analyze replay", a.err.Error(), map[string]string{"File": a.path}, nil)
			continue
		}

		printer.ModuleWarnings(a.rc.Name, report.Warnings(a.run))

		if err := report.Write(out, a.summaries, a.rc.Name, format); err != nil {
			return fmt.Errorf("failed to write summaries: %w", err)
		}
		if atFrame >= 0 {
			report.FormatSelectionAt(out, a.rc, atFrame)
		}

		if store != nil {
			for _, s := range a.summaries {
				if err := store.SaveSummary(ctx, s); err != nil {
					return fmt.Errorf("failed to archive summary of %s: %w", a.path, err)
				}
			}
			if format == report.OutputFormatDefault && len(a.summaries) > 0 {
				printer.Success("Archived %d summaries as replay %s\n", len(a.summaries), a.summaries[0].ReplayID)
			}
		}

		if format == report.OutputFormatDefault {
			fmt.Fprintln(out)
		}
	}

	if failed {
		return errAlreadyReported
	}
	return nil
}

// analyzeAll runs one engine per file on a bounded number of goroutines and
// returns the outcomes in input order.
func analyzeAll(paths []string, cfg *config.SpoorConfig) []*analysis {
	results := make([]*analysis, len(paths))
	sem := make(chan struct{}, runtime.NumCPU())

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = analyzeFile(path, cfg)
		}(i, path)
	}
	wg.Wait()

	return results
}

func analyzeFile(path string, cfg *config.SpoorConfig) *analysis {
	a := &analysis{path: path}

	rc, err := loadReplay(path, cfg)
	if err != nil {
		a.err = err
		return a
	}

	a.rc = rc
	a.run = pipeline.Analyze(rc, cfg)
	a.summaries = report.Build(rc, uuid.New().String(), a.run, time.Now())
	return a
}
