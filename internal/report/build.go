// Package report turns the result table of an analysis run into archive
// summaries and renders them for the terminal.
package report

import (
	"fmt"
	"time"

	"github.com/dyluth/spoor/internal/activity"
	"github.com/dyluth/spoor/internal/coverage"
	"github.com/dyluth/spoor/internal/engine"
	"github.com/dyluth/spoor/internal/selection"
	"github.com/dyluth/spoor/pkg/archive"
	"github.com/dyluth/spoor/pkg/replay"
)

// Build returns one summary per participant of rc, in roster order.
// Module failures and skips recorded in run become warnings on every summary.
func Build(rc *replay.Context, replayID string, run *engine.Report, now time.Time) []*archive.Summary {
	warnings := Warnings(run)

	var summaries []*archive.Summary
	for _, p := range rc.People() {
		s := &archive.Summary{
			ReplayID:    replayID,
			Replay:      rc.Name,
			PID:         p.PID,
			Name:        p.Name,
			Observer:    p.Observer,
			CreatedAtMs: now.UnixMilli(),
			Fields:      rc.Results.Fields(p.PID),
		}
		if len(warnings) > 0 {
			s.Warnings = warnings
		}

		if n, ok := replay.Lookup(rc.Results, p.PID, selection.ErrorsKey); ok {
			s.SelectionErrors = &n
		}
		if h, ok := replay.Lookup(rc.Results, p.PID, selection.HistoryKey); ok {
			s.ControlGroups = ControlGroups(h.Latest())
		}

		if apm, ok := replay.Lookup(rc.Results, p.PID, activity.APMKey); ok {
			s.APM = apm
		}
		if avg, ok := replay.Lookup(rc.Results, p.PID, activity.AvgAPMKey); ok {
			s.AvgAPM = &avg
		}
		if played, ok := replay.Lookup(rc.Results, p.PID, activity.SecondsPlayedKey); ok {
			s.SecondsPlayed = &played
		}

		if byMinute, ok := replay.Lookup(rc.Results, p.PID, coverage.ByMinuteKey); ok {
			s.CoverageByMin = byMinute
		}
		if maxPct, ok := replay.Lookup(rc.Results, p.PID, coverage.MaxKey); ok {
			s.MaxCoverage = &maxPct
		}

		summaries = append(summaries, s)
	}
	return summaries
}

// ControlGroups lists the unit types of every non-empty control group in set.
// Units whose type was never observed are shown by id.
func ControlGroups(set selection.SlotSet) map[int][]string {
	var groups map[int][]string
	for i := 0; i < replay.CurrentSelection; i++ {
		slot := set.Slot(i)
		if len(slot) == 0 {
			continue
		}
		if groups == nil {
			groups = make(map[int][]string)
		}
		groups[i] = EntityNames(slot)
	}
	return groups
}

// EntityNames returns the display name of each entity in order.
func EntityNames(entities []replay.Entity) []string {
	names := make([]string, len(entities))
	for i, e := range entities {
		if e.Type != "" {
			names[i] = e.Type
		} else {
			names[i] = fmt.Sprintf("#%d", e.ID)
		}
	}
	return names
}

// Warnings collects one line per module that was skipped or failed during run.
func Warnings(run *engine.Report) map[string]string {
	warnings := make(map[string]string)
	if run == nil {
		return warnings
	}
	for name, err := range run.Skipped {
		warnings[name] = fmt.Sprintf("skipped: %v", err)
	}

	byModule := make(map[string][]*engine.ModuleFailure)
	for _, f := range run.Failures {
		byModule[f.Module] = append(byModule[f.Module], f)
	}
	for name, failures := range byModule {
		msg := failures[0].Err.Error()
		if len(failures) > 1 {
			msg = fmt.Sprintf("%s (and %d more)", msg, len(failures)-1)
		}
		warnings[name] = msg
	}
	return warnings
}
