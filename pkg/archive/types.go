package archive

import (
	"fmt"

	"github.com/google/uuid"
)

// Summary is the exported analysis state of one participant of one replay.
// Pointer and map fields are nil when the producing module did not run or
// saw no qualifying events.
type Summary struct {
	ReplayID    string `json:"replay_id"` // UUID assigned per analysis run
	Replay      string `json:"replay"`    // Replay name, usually the file name
	PID         int    `json:"pid"`
	Name        string `json:"name"`
	Observer    bool   `json:"observer"`
	CreatedAtMs int64  `json:"created_at_ms"`

	SelectionErrors *int              `json:"selection_errors,omitempty"`
	ControlGroups   map[int][]string  `json:"control_groups,omitempty"` // Final non-empty control groups as unit types
	APM             map[int]int       `json:"apm,omitempty"`
	AvgAPM          *float64          `json:"avg_apm,omitempty"`
	SecondsPlayed   *int              `json:"seconds_played,omitempty"`
	CoverageByMin   map[int]float64   `json:"coverage_by_minute,omitempty"`
	MaxCoverage     *float64          `json:"max_coverage,omitempty"`
	Fields          []string          `json:"fields,omitempty"`   // Result fields present for this participant
	Warnings        map[string]string `json:"warnings,omitempty"` // Module name -> failure or skip reason
}

// Validate checks if the Summary has valid field values.
func (s *Summary) Validate() error {
	if !isValidUUID(s.ReplayID) {
		return fmt.Errorf("invalid replay ID: not a valid UUID")
	}
	if s.PID < 0 {
		return fmt.Errorf("invalid pid: must be >= 0, got %d", s.PID)
	}
	for group := range s.ControlGroups {
		if group < 0 || group > 9 {
			return fmt.Errorf("invalid control group %d: must be 0-9", group)
		}
	}
	return nil
}

// isValidUUID checks if a string is a valid UUID format.
func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
