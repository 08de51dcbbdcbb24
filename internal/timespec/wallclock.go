package timespec

import (
	"fmt"
	"time"
)

// ParseWallClock parses a wall-clock specification relative to now.
// Supports two formats:
//   - Go duration format: "1h", "30m" (that long before now)
//   - RFC3339 timestamps: "2025-10-29T13:00:00Z"
func ParseWallClock(spec string, now time.Time) (time.Time, error) {
	if spec == "" {
		return time.Time{}, fmt.Errorf("empty time specification")
	}

	if t, err := time.Parse(time.RFC3339, spec); err == nil {
		return t, nil
	}

	if d, err := time.ParseDuration(spec); err == nil {
		if d < 0 {
			return time.Time{}, fmt.Errorf("negative time specification: %s", spec)
		}
		return now.Add(-d), nil
	}

	return time.Time{}, fmt.Errorf("invalid time specification: %s (use duration like '1h30m' or RFC3339 like '2025-10-29T13:00:00Z')", spec)
}
