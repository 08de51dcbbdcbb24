package archive

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Serialization helpers for converting between Summary and Redis hashes
//
// Scalar fields are stored as individual hash fields. Maps and lists are
// JSON-encoded into single hash fields. Optional fields are omitted from the
// hash when nil.

// SummaryToHash converts a Summary to a Redis hash format.
func SummaryToHash(s *Summary) (map[string]interface{}, error) {
	hash := map[string]interface{}{
		"replay_id":     s.ReplayID,
		"replay":        s.Replay,
		"pid":           s.PID,
		"name":          s.Name,
		"observer":      strconv.FormatBool(s.Observer),
		"created_at_ms": s.CreatedAtMs,
	}

	if s.SelectionErrors != nil {
		hash["selection_errors"] = *s.SelectionErrors
	}
	if s.AvgAPM != nil {
		hash["avg_apm"] = strconv.FormatFloat(*s.AvgAPM, 'f', -1, 64)
	}
	if s.SecondsPlayed != nil {
		hash["seconds_played"] = *s.SecondsPlayed
	}
	if s.MaxCoverage != nil {
		hash["max_coverage"] = strconv.FormatFloat(*s.MaxCoverage, 'f', -1, 64)
	}

	jsonFields := map[string]interface{}{
		"control_groups":     s.ControlGroups,
		"apm":                s.APM,
		"coverage_by_minute": s.CoverageByMin,
		"fields":             s.Fields,
		"warnings":           s.Warnings,
	}
	for name, value := range jsonFields {
		encoded, ok, err := encodeOptional(value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", name, err)
		}
		if ok {
			hash[name] = encoded
		}
	}

	return hash, nil
}

// HashToSummary converts a Redis hash to a Summary.
func HashToSummary(hash map[string]string) (*Summary, error) {
	pid, err := strconv.Atoi(hash["pid"])
	if err != nil {
		return nil, fmt.Errorf("invalid pid field: %w", err)
	}

	createdAtMs, _ := strconv.ParseInt(hash["created_at_ms"], 10, 64)
	observer, _ := strconv.ParseBool(hash["observer"])

	s := &Summary{
		ReplayID:    hash["replay_id"],
		Replay:      hash["replay"],
		PID:         pid,
		Name:        hash["name"],
		Observer:    observer,
		CreatedAtMs: createdAtMs,
	}

	if s.SelectionErrors, err = optionalInt(hash, "selection_errors"); err != nil {
		return nil, err
	}
	if s.SecondsPlayed, err = optionalInt(hash, "seconds_played"); err != nil {
		return nil, err
	}
	if s.AvgAPM, err = optionalFloat(hash, "avg_apm"); err != nil {
		return nil, err
	}
	if s.MaxCoverage, err = optionalFloat(hash, "max_coverage"); err != nil {
		return nil, err
	}

	decoders := map[string]interface{}{
		"control_groups":     &s.ControlGroups,
		"apm":                &s.APM,
		"coverage_by_minute": &s.CoverageByMin,
		"fields":             &s.Fields,
		"warnings":           &s.Warnings,
	}
	for name, target := range decoders {
		raw := hash[name]
		if raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(raw), target); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", name, err)
		}
	}

	return s, nil
}

func encodeOptional(value interface{}) (string, bool, error) {
	switch v := value.(type) {
	case map[int][]string:
		if v == nil {
			return "", false, nil
		}
	case map[int]int:
		if v == nil {
			return "", false, nil
		}
	case map[int]float64:
		if v == nil {
			return "", false, nil
		}
	case map[string]string:
		if v == nil {
			return "", false, nil
		}
	case []string:
		if v == nil {
			return "", false, nil
		}
	}
	data, err := json.Marshal(value)
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

func optionalInt(hash map[string]string, field string) (*int, error) {
	raw, ok := hash[field]
	if !ok {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s field: %w", field, err)
	}
	return &v, nil
}

func optionalFloat(hash map[string]string, field string) (*float64, error) {
	raw, ok := hash[field]
	if !ok {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s field: %w", field, err)
	}
	return &v, nil
}
