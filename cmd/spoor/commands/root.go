package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dyluth/spoor/internal/printer"
)

var (
	version string
	commit  string
	date    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "spoor",
	Short: "Spoor - replay event analysis engine",
	Long: `Spoor replays the decoded event stream of a real-time strategy game and
derives per-player analytics: selection and control group history, actions
per minute and creep coverage of the map.

Input is either a .SC2Replay file or an event log (.json, .yaml) holding an
already-decoded roster, map and event stream. Summaries can be archived in
Redis and inspected later with 'spoor show'.`,
	Version: version,
	// Unknown flags on the root command must not silently succeed
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		printer.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// We print formatted colored errors directly in the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}
