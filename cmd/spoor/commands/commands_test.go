package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/spoor/internal/printer"
	"github.com/dyluth/spoor/pkg/archive"
)

// execute runs the root command with args and captures both output streams.
// Flag values are reset first because cobra binds them to package variables.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		color.NoColor = noColor
		printer.SetOutput(nil, nil)
	})

	for _, cmd := range rootCmd.Commands() {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}

	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetArgs(args)
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func decodeJSONL(t *testing.T, out string) []*archive.Summary {
	t.Helper()
	var summaries []*archive.Summary
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		var s archive.Summary
		require.NoError(t, json.Unmarshal([]byte(line), &s), line)
		summaries = append(summaries, &s)
	}
	return summaries
}

func TestRootCommand_ShowsHelpWhenNoSubcommand(t *testing.T) {
	out, _, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "analyze")
	assert.Contains(t, out, "show")
}

func TestRootCommand_RejectsUnknownFlags(t *testing.T) {
	_, _, err := execute(t, "--unknown-flag", "value")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown flag")
}

func TestSetVersionInfo(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "2024-05-01")
	assert.Equal(t, "1.2.3 (commit: abc123, built: 2024-05-01)", rootCmd.Version)
}

func TestSubcommandsRegistered(t *testing.T) {
	var names []string
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"analyze", "show", "watch", "decode", "init"} {
		assert.Contains(t, names, want)
	}

	// Every subcommand gets a usable RunE
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			continue
		}
		assert.NotNil(t, cmd.RunE, cmd.Name())
	}
}
