package archive

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// toStringHash mimics what HGetAll returns for a hash written with HSet.
func toStringHash(hash map[string]interface{}) map[string]string {
	out := make(map[string]string, len(hash))
	for k, v := range hash {
		out[k] = fmt.Sprint(v)
	}
	return out
}

func intPtr(v int) *int {
	return &v
}

func floatPtr(v float64) *float64 {
	return &v
}

func fullSummary() *Summary {
	return &Summary{
		ReplayID:        uuid.New().String(),
		Replay:          "game.SC2Replay",
		PID:             2,
		Name:            "Serral",
		CreatedAtMs:     1700000000123,
		SelectionErrors: intPtr(3),
		ControlGroups:   map[int][]string{1: {"Queen", "Queen"}, 4: {"Hatchery"}},
		APM:             map[int]int{0: 40, 1: 210},
		AvgAPM:          floatPtr(187.5),
		SecondsPlayed:   intPtr(80),
		CoverageByMin:   map[int]float64{0: 3.17, 1: 4.3},
		MaxCoverage:     floatPtr(4.3),
		Fields:          []string{"activity.apm", "coverage.max"},
		Warnings:        map[string]string{"coverage": "replay has no tracker events"},
	}
}

func TestSummaryRoundTrip(t *testing.T) {
	original := fullSummary()

	hash, err := SummaryToHash(original)
	require.NoError(t, err)

	restored, err := HashToSummary(toStringHash(hash))
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestSummaryRoundTrip_OptionalFieldsAbsent(t *testing.T) {
	original := &Summary{
		ReplayID: uuid.New().String(),
		Replay:   "observer-only",
		PID:      16,
		Name:     "caster",
		Observer: true,
	}

	hash, err := SummaryToHash(original)
	require.NoError(t, err)
	assert.NotContains(t, hash, "avg_apm")
	assert.NotContains(t, hash, "coverage_by_minute")
	assert.NotContains(t, hash, "selection_errors")

	restored, err := HashToSummary(toStringHash(hash))
	require.NoError(t, err)
	assert.Equal(t, original, restored)
	assert.Nil(t, restored.MaxCoverage, "absent stays distinguishable from zero")
}

func TestHashToSummary_Malformed(t *testing.T) {
	valid := func() map[string]string {
		hash, err := SummaryToHash(fullSummary())
		require.NoError(t, err)
		return toStringHash(hash)
	}

	tests := []struct {
		name    string
		field   string
		value   string
		wantErr string
	}{
		{"pid", "pid", "one", "invalid pid field"},
		{"selection errors", "selection_errors", "x", "invalid selection_errors field"},
		{"avg apm", "avg_apm", "fast", "invalid avg_apm field"},
		{"coverage json", "coverage_by_minute", "{not json", "failed to unmarshal coverage_by_minute"},
		{"control groups json", "control_groups", "[]", "failed to unmarshal control_groups"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash := valid()
			hash[tt.field] = tt.value

			_, err := HashToSummary(hash)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
