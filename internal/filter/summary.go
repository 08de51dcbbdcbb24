package filter

import (
	"path/filepath"
	"strings"

	"github.com/dyluth/spoor/pkg/archive"
)

// Criteria defines filtering criteria for summaries.
// All filters are ANDed together - a summary must match ALL criteria to pass.
type Criteria struct {
	NameGlob     string  // Glob pattern for participant name (case-insensitive), empty = no filter
	PlayersOnly  bool    // Drop observers
	MinAvgAPM    float64 // Minimum average APM, 0 = no filter
	SinceCreated int64   // Unix timestamp in milliseconds, 0 = no filter
}

// Matches returns true if the summary matches all filter criteria.
// Zero criteria values are treated as "match all" for that criterion.
func (c *Criteria) Matches(s *archive.Summary) bool {
	if c.NameGlob != "" {
		matched, err := filepath.Match(strings.ToLower(c.NameGlob), strings.ToLower(s.Name))
		if err != nil || !matched {
			return false
		}
	}

	if c.PlayersOnly && s.Observer {
		return false
	}

	// Summaries without an activity result never pass an APM threshold
	if c.MinAvgAPM > 0 && (s.AvgAPM == nil || *s.AvgAPM < c.MinAvgAPM) {
		return false
	}

	if c.SinceCreated > 0 && s.CreatedAtMs < c.SinceCreated {
		return false
	}

	return true
}

// Apply returns the summaries matching c, preserving order.
func (c *Criteria) Apply(summaries []*archive.Summary) []*archive.Summary {
	if !c.HasFilters() {
		return summaries
	}
	kept := make([]*archive.Summary, 0, len(summaries))
	for _, s := range summaries {
		if c.Matches(s) {
			kept = append(kept, s)
		}
	}
	return kept
}

// HasFilters returns true if any filters are active.
func (c *Criteria) HasFilters() bool {
	return c.NameGlob != "" ||
		c.PlayersOnly ||
		c.MinAvgAPM > 0 ||
		c.SinceCreated > 0
}
