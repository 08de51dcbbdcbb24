package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dyluth/spoor/internal/filter"
	"github.com/dyluth/spoor/pkg/archive"
)

// OutputFormat selects how streamed summaries are printed.
type OutputFormat string

const (
	// OutputFormatDefault prints one human-readable line per summary
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSON prints one JSON object per line
	OutputFormatJSON OutputFormat = "json"
)

// pollInterval is how often PollForReplay checks the archive.
const pollInterval = 200 * time.Millisecond

// PollForReplay polls until the replay has archived summaries and returns them.
// Returns an error if timeout occurs or ctx is cancelled.
func PollForReplay(ctx context.Context, client *archive.Client, replayID string, timeout time.Duration) ([]*archive.Summary, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	timeoutCh := time.After(timeout)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case <-timeoutCh:
			return nil, fmt.Errorf("timeout waiting for replay %s after %v", replayID, timeout)

		case <-ticker.C:
			summaries, err := client.ListSummaries(ctx, replayID)
			if err != nil {
				if archive.IsNotFound(err) {
					continue
				}
				return nil, fmt.Errorf("failed to query for replay: %w", err)
			}
			return summaries, nil
		}
	}
}

// StreamSummaries prints every summary saved to the archive until ctx is
// cancelled or the subscription ends. Summaries rejected by criteria are
// skipped; a nil criteria passes everything. Malformed events are reported on
// errOut and do not stop the stream.
func StreamSummaries(ctx context.Context, client *archive.Client, w, errOut io.Writer, format OutputFormat, criteria *filter.Criteria) error {
	sub, err := client.SubscribeAnalysisEvents(ctx)
	if err != nil {
		return err
	}
	defer sub.Close()

	events := sub.Events()
	errs := sub.Errors()
	for {
		select {
		case <-ctx.Done():
			return nil

		case s, ok := <-events:
			if !ok {
				return nil
			}
			if criteria != nil && !criteria.Matches(s) {
				continue
			}
			if err := writeSummary(w, s, format); err != nil {
				return err
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			fmt.Fprintf(errOut, "⚠️  %v\n", err)
		}
	}
}

func writeSummary(w io.Writer, s *archive.Summary, format OutputFormat) error {
	if format == OutputFormatJSON {
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to marshal summary: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	_, err := fmt.Fprintln(w, FormatSummary(s))
	return err
}

// FormatSummary renders a saved summary as a single line.
func FormatSummary(s *archive.Summary) string {
	ts := time.UnixMilli(s.CreatedAtMs).Format("15:04:05")
	replayID := s.ReplayID
	if len(replayID) > 8 {
		replayID = replayID[:8]
	}

	line := fmt.Sprintf("[%s] 📊 Analyzed: replay=%s (%s) pid=%d name=%s", ts, replayID, s.Replay, s.PID, s.Name)
	if s.Observer {
		line += " observer"
	}
	if s.AvgAPM != nil {
		line += fmt.Sprintf(" apm=%.1f", *s.AvgAPM)
	}
	if s.MaxCoverage != nil {
		line += fmt.Sprintf(" max_cov=%.2f%%", *s.MaxCoverage)
	}
	if len(s.Warnings) > 0 {
		line += fmt.Sprintf(" warnings=%d", len(s.Warnings))
	}
	return line
}
