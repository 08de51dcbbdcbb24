package timespec

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FramesPerSecond is the number of game loops per elapsed game second.
const FramesPerSecond = 16

// Parse parses a game-time specification into elapsed game seconds.
// Supports three formats:
//   - Go duration format: "90s", "12m", "12m30s"
//   - Clock format: "12:30" (minutes:seconds)
//   - Plain seconds: "750"
//
// Returns an error for empty or negative specifications.
func Parse(spec string) (int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, fmt.Errorf("empty time specification")
	}

	// Try clock format first
	if minutes, seconds, ok := strings.Cut(spec, ":"); ok {
		m, errM := strconv.Atoi(minutes)
		s, errS := strconv.Atoi(seconds)
		if errM != nil || errS != nil || m < 0 || s < 0 || s >= 60 {
			return 0, fmt.Errorf("invalid clock time: %s (use MM:SS like '12:30')", spec)
		}
		return m*60 + s, nil
	}

	// Plain seconds
	if n, err := strconv.Atoi(spec); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative time specification: %s", spec)
		}
		return n, nil
	}

	// Go duration
	if d, err := time.ParseDuration(spec); err == nil {
		if d < 0 {
			return 0, fmt.Errorf("negative time specification: %s", spec)
		}
		return int(d / time.Second), nil
	}

	return 0, fmt.Errorf("invalid time specification: %s (use duration like '12m30s', clock like '12:30' or seconds like '750')", spec)
}

// ParseFrame parses a game-time specification and converts it to a frame number.
func ParseFrame(spec string) (int, error) {
	seconds, err := Parse(spec)
	if err != nil {
		return 0, err
	}
	return ToFrame(seconds), nil
}

// ToFrame converts elapsed seconds to the first frame of that second.
func ToFrame(seconds int) int {
	return seconds * FramesPerSecond
}

// ToSecond converts a frame number to elapsed seconds.
func ToSecond(frame int) int {
	return frame / FramesPerSecond
}

// Format renders elapsed seconds as MM:SS.
func Format(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
