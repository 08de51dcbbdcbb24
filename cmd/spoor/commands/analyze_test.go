package commands

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/spoor/internal/testutil"
)

func TestAnalyze_DefaultOutput(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "sample.yaml", testutil.SampleEventLog)

	out, errOut, err := execute(t, "analyze", path)
	require.NoError(t, err, errOut)

	assert.Contains(t, out, "Analysis of 'sample-game':")
	assert.Contains(t, out, "2 participants")
	assert.Contains(t, out, "coverage zerg: 0:3.17%")

	var zergRow, casterRow []string
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) > 1 && fields[1] == "zerg" {
			zergRow = fields
		}
		if len(fields) > 1 && fields[1] == "caster" {
			casterRow = fields
		}
	}
	require.NotNil(t, zergRow)
	assert.Equal(t, []string{"1", "zerg", "player", "3.0", "0", "3.17%", "4:2"}, zergRow)
	require.NotNil(t, casterRow)
	assert.Equal(t, "observer", casterRow[2])

	assert.Empty(t, errOut, "no module warnings expected")
}

func TestAnalyze_JSONL(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "sample.yaml", testutil.SampleEventLog)

	out, _, err := execute(t, "analyze", path, "--output", "jsonl")
	require.NoError(t, err)

	summaries := decodeJSONL(t, out)
	require.Len(t, summaries, 2)

	zerg := summaries[0]
	assert.Equal(t, 1, zerg.PID)
	assert.Equal(t, "sample-game", zerg.Replay)
	assert.Equal(t, []string{"Hatchery", "Drone"}, zerg.ControlGroups[4])
	require.NotNil(t, zerg.AvgAPM)
	assert.InDelta(t, 3.0, *zerg.AvgAPM, 1e-9)
	require.NotNil(t, zerg.MaxCoverage)
	assert.InDelta(t, 3.17, *zerg.MaxCoverage, 1e-9)

	assert.True(t, summaries[1].Observer)
	assert.Equal(t, zerg.ReplayID, summaries[1].ReplayID, "one replay id per file")
}

func TestAnalyze_SelectionsAt(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "sample.yaml", testutil.SampleEventLog)

	out, _, err := execute(t, "analyze", path, "--at", "0:03")
	require.NoError(t, err)

	assert.Contains(t, out, "Selections at 00:03 (frame 48):")
	assert.Contains(t, out, "  zerg: [Hatchery, Drone]")
	assert.Contains(t, out, "    groups: 4:2")
}

func TestAnalyze_ModuleSkipWarning(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "terran.yaml", testutil.NoTrackerEventLog)

	out, errOut, err := execute(t, "analyze", path)
	require.NoError(t, err, "a skipped module does not fail the command")

	assert.Contains(t, errOut, "no-tracker: module coverage: skipped: replay has no tracker events")
	assert.Contains(t, out, "Analysis of 'no-tracker':")
	assert.NotContains(t, out, "coverage terran:")
}

func TestAnalyze_MultipleFilesKeepOrder(t *testing.T) {
	dir := t.TempDir()
	first := testutil.WriteFile(t, dir, "b.yaml", testutil.NoTrackerEventLog)
	second := testutil.WriteFile(t, dir, "a.yaml", testutil.SampleEventLog)

	out, _, err := execute(t, "analyze", first, second)
	require.NoError(t, err)

	iFirst := strings.Index(out, "Analysis of 'no-tracker'")
	iSecond := strings.Index(out, "Analysis of 'sample-game'")
	require.GreaterOrEqual(t, iFirst, 0)
	require.GreaterOrEqual(t, iSecond, 0)
	assert.Less(t, iFirst, iSecond)
}

func TestAnalyze_Errors(t *testing.T) {
	dir := t.TempDir()
	sample := testutil.WriteFile(t, dir, "sample.yaml", testutil.SampleEventLog)

	t.Run("invalid output format", func(t *testing.T) {
		_, errOut, err := execute(t, "analyze", sample, "--output", "xml")
		require.Error(t, err)
		assert.Equal(t, "invalid output format", err.Error())
		assert.Contains(t, errOut, "Valid formats: default, jsonl")
	})

	t.Run("--at with jsonl", func(t *testing.T) {
		_, _, err := execute(t, "analyze", sample, "--output", "jsonl", "--at", "1m")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--at requires the default output format")
	})

	t.Run("invalid --at", func(t *testing.T) {
		_, _, err := execute(t, "analyze", sample, "--at", "soon")
		require.Error(t, err)
		assert.Equal(t, "invalid --at value", err.Error())
	})

	t.Run("missing file still prints the others", func(t *testing.T) {
		out, errOut, err := execute(t, "analyze", filepath.Join(dir, "missing.yaml"), sample)
		require.Error(t, err)
		assert.ErrorIs(t, err, errAlreadyReported)
		assert.Contains(t, errOut, "failed to analyze replay")
		assert.Contains(t, errOut, "missing.yaml")
		assert.Contains(t, out, "Analysis of 'sample-game'")
	})

	t.Run("unsupported extension", func(t *testing.T) {
		txt := testutil.WriteFile(t, dir, "notes.txt", "hello")
		_, errOut, err := execute(t, "analyze", txt)
		require.Error(t, err)
		assert.Contains(t, errOut, "unsupported event log extension")
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := testutil.WriteFile(t, dir, "spoor.yml", "version: \"2.0\"\n")
		_, errOut, err := execute(t, "analyze", sample, "--config", cfg)
		require.Error(t, err)
		assert.Equal(t, "configuration error", err.Error())
		assert.Contains(t, errOut, "unsupported version")
	})

	t.Run("no arguments", func(t *testing.T) {
		_, _, err := execute(t, "analyze")
		require.Error(t, err)
	})
}

func TestAnalyze_ConfigSelectsModules(t *testing.T) {
	dir := t.TempDir()
	sample := testutil.WriteFile(t, dir, "sample.yaml", testutil.SampleEventLog)
	cfg := testutil.WriteFile(t, dir, "spoor.yml", "version: \"1.0\"\nmodules: [activity]\n")

	out, _, err := execute(t, "analyze", sample, "--config", cfg, "-o", "jsonl")
	require.NoError(t, err)

	zerg := decodeJSONL(t, out)[0]
	assert.NotNil(t, zerg.AvgAPM)
	assert.Nil(t, zerg.MaxCoverage)
	assert.Nil(t, zerg.ControlGroups)
	assert.Nil(t, zerg.SelectionErrors)
}

func TestAnalyze_Archive(t *testing.T) {
	store := testutil.StartArchive(t, "ladder")
	sample := testutil.WriteFile(t, t.TempDir(), "sample.yaml", testutil.SampleEventLog)

	out, errOut, err := execute(t, "analyze", sample, "--redis", store.URL, "--name", "ladder")
	require.NoError(t, err, errOut)
	assert.Contains(t, out, "✓ Archived 2 summaries as replay ")

	ctx := context.Background()
	ids, err := store.Client.ListReplays(ctx)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Contains(t, out, ids[0])

	summaries, err := store.Client.ListSummaries(ctx, ids[0])
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "zerg", summaries[0].Name)
	assert.Equal(t, "caster", summaries[1].Name)

	t.Run("invalid instance name", func(t *testing.T) {
		_, _, err := execute(t, "analyze", sample, "--redis", store.URL, "--name", "Bad_Name")
		require.Error(t, err)
		assert.Equal(t, "invalid instance name", err.Error())
	})

	t.Run("unreachable redis", func(t *testing.T) {
		_, errOut, err := execute(t, "analyze", sample, "--redis", "redis://127.0.0.1:1")
		require.Error(t, err)
		assert.Equal(t, "Redis connection failed", err.Error())
		assert.Contains(t, errOut, "Instance: default")
	})
}
