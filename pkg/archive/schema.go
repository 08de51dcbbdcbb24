package archive

import (
	"fmt"
	"regexp"
)

// MaxInstanceNameLength bounds instance names so keys stay readable.
const MaxInstanceNameLength = 63

// InstanceNamePattern matches valid instance names: lowercase alphanumeric,
// hyphens allowed but not at either end.
var InstanceNamePattern = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)

// ValidateInstanceName checks that name can be used as a key namespace.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("instance name cannot be empty")
	}

	if len(name) > MaxInstanceNameLength {
		return fmt.Errorf("instance name too long: %d characters (max: %d)", len(name), MaxInstanceNameLength)
	}

	if !InstanceNamePattern.MatchString(name) {
		return fmt.Errorf("invalid instance name '%s': must be lowercase alphanumeric with hyphens (not at start/end)", name)
	}

	return nil
}

// Redis key pattern helpers
//
// Key pattern: spoor:{instance_name}:replay:{replay_id}:...
// Channel pattern: spoor:{instance_name}:{event_type}_events

// ParticipantKey returns the Redis key for one participant's summary.
// Pattern: spoor:{instance_name}:replay:{replay_id}:participant:{pid}
func ParticipantKey(instanceName, replayID string, pid int) string {
	return fmt.Sprintf("spoor:%s:replay:%s:participant:%d", instanceName, replayID, pid)
}

// ParticipantsKey returns the Redis key for the set of archived pids of a replay.
// Pattern: spoor:{instance_name}:replay:{replay_id}:participants
func ParticipantsKey(instanceName, replayID string) string {
	return fmt.Sprintf("spoor:%s:replay:%s:participants", instanceName, replayID)
}

// ParticipantsPattern returns the SCAN pattern matching every replay's participants set.
func ParticipantsPattern(instanceName string) string {
	return fmt.Sprintf("spoor:%s:replay:*:participants", instanceName)
}

// AnalysisEventsChannel returns the Pub/Sub channel name for saved summaries.
// Pattern: spoor:{instance_name}:analysis_events
func AnalysisEventsChannel(instanceName string) string {
	return fmt.Sprintf("spoor:%s:analysis_events", instanceName)
}

// replayIDFromParticipantsKey extracts the replay id from a participants key.
func replayIDFromParticipantsKey(instanceName, key string) (string, bool) {
	prefix := fmt.Sprintf("spoor:%s:replay:", instanceName)
	const suffix = ":participants"
	if len(key) <= len(prefix)+len(suffix) || key[:len(prefix)] != prefix || key[len(key)-len(suffix):] != suffix {
		return "", false
	}
	return key[len(prefix) : len(key)-len(suffix)], true
}
