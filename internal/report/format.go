package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dyluth/spoor/internal/selection"
	"github.com/dyluth/spoor/internal/timespec"
	"github.com/dyluth/spoor/pkg/archive"
	"github.com/dyluth/spoor/pkg/replay"
)

// OutputFormat specifies how summaries are printed.
type OutputFormat string

const (
	// OutputFormatDefault uses a table followed by per-minute coverage lines
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSONL outputs complete summaries as line-delimited JSON
	OutputFormatJSONL OutputFormat = "jsonl"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputFormatDefault, OutputFormatJSONL:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("invalid output format '%s' (must be 'default' or 'jsonl')", s)
	}
}

// Write renders summaries in the requested format.
func Write(w io.Writer, summaries []*archive.Summary, replayName string, format OutputFormat) error {
	if format == OutputFormatJSONL {
		return FormatJSONL(w, summaries)
	}
	FormatTable(w, summaries, replayName)
	FormatCoverage(w, summaries)
	return nil
}

// FormatTable writes summaries as a formatted table to the provided writer.
// Returns the number of summaries formatted.
func FormatTable(w io.Writer, summaries []*archive.Summary, replayName string) int {
	if len(summaries) == 0 {
		fmt.Fprintf(w, "No participants found for replay '%s'\n", replayName)
		return 0
	}

	fmt.Fprintf(w, "Analysis of '%s':\n\n", replayName)

	fmt.Fprintf(w, "%-4s %-18s %-8s %-8s %-7s %-8s %s\n",
		"PID", "NAME", "ROLE", "AVG APM", "SEL ERR", "MAX COV", "CONTROL GROUPS")
	fmt.Fprintf(w, "%-4s %-18s %-8s %-8s %-7s %-8s %s\n",
		"----", "------------------", "--------", "--------", "-------", "--------", "----------------------------------------")

	for _, s := range summaries {
		fmt.Fprintf(w, "%-4d %-18s %-8s %-8s %-7s %-8s %s\n",
			s.PID,
			formatName(s.Name),
			formatRole(s.Observer),
			formatFloat(s.AvgAPM, "%.1f"),
			formatInt(s.SelectionErrors),
			formatFloat(s.MaxCoverage, "%.2f%%"),
			formatGroups(s.ControlGroups),
		)
	}

	countMsg := "participant"
	if len(summaries) != 1 {
		countMsg = "participants"
	}
	fmt.Fprintf(w, "\n%d %s\n", len(summaries), countMsg)

	return len(summaries)
}

// FormatCoverage writes one line per participant with coverage data, listing
// the percentage for each minute in order.
func FormatCoverage(w io.Writer, summaries []*archive.Summary) {
	for _, s := range summaries {
		if len(s.CoverageByMin) == 0 {
			continue
		}
		minutes := make([]int, 0, len(s.CoverageByMin))
		for m := range s.CoverageByMin {
			minutes = append(minutes, m)
		}
		sort.Ints(minutes)

		parts := make([]string, len(minutes))
		for i, m := range minutes {
			parts[i] = fmt.Sprintf("%d:%.2f%%", m, s.CoverageByMin[m])
		}
		fmt.Fprintf(w, "coverage %s: %s\n", s.Name, strings.Join(parts, " "))
	}
}

// FormatJSONL writes summaries as line-delimited JSON (JSONL).
func FormatJSONL(w io.Writer, summaries []*archive.Summary) error {
	for _, s := range summaries {
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to marshal summary to JSON: %w", err)
		}

		if _, err := fmt.Fprintf(w, "%s\n", string(data)); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}
	return nil
}

// FormatSelectionAt writes every participant's current selection and
// control groups as they stood at frame.
func FormatSelectionAt(w io.Writer, rc *replay.Context, frame int) {
	fmt.Fprintf(w, "Selections at %s (frame %d):\n", timespec.Format(timespec.ToSecond(frame)), frame)
	for _, p := range rc.People() {
		h, ok := replay.Lookup(rc.Results, p.PID, selection.HistoryKey)
		if !ok {
			continue
		}
		set := h.At(frame)
		fmt.Fprintf(w, "  %s: [%s]\n", formatName(p.Name), strings.Join(EntityNames(set.Current()), ", "))
		groups := ControlGroups(set)
		if len(groups) > 0 {
			fmt.Fprintf(w, "    groups: %s\n", formatGroups(groups))
		}
	}
}

// formatName truncates long names for the table.
func formatName(name string) string {
	if name == "" {
		return "-"
	}
	if len(name) > 18 {
		return name[:15] + "..."
	}
	return name
}

func formatRole(observer bool) string {
	if observer {
		return "observer"
	}
	return "player"
}

// formatFloat renders an optional value, "-" when the module produced nothing.
func formatFloat(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func formatInt(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

// formatGroups renders control groups as "1:3 4:1", group number then unit count.
func formatGroups(groups map[int][]string) string {
	if len(groups) == 0 {
		return "-"
	}
	keys := make([]int, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%d:%d", k, len(groups[k]))
	}
	return strings.Join(parts, " ")
}
