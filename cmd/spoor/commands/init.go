package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dyluth/spoor/internal/printer"
	"github.com/dyluth/spoor/internal/scaffold"
)

var (
	forceInit bool
	initDir   string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default spoor.yml",
	Long: `Write a commented spoor.yml holding the default analysis configuration.

Commands look for spoor.yml in the current directory when --config is not
given. Use --force to overwrite an existing file.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing spoor.yml")
	initCmd.Flags().StringVar(&initDir, "dir", ".", "Directory to write spoor.yml into")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if !forceInit {
		if err := scaffold.CheckExisting(initDir); err != nil {
			return printer.Error("project already initialized", err.Error(), nil)
		}
	}

	path, err := scaffold.Initialize(initDir, forceInit)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	printer.Success("Wrote %s\n", path)
	printer.Println("\nNext steps:")
	printer.Println("  1. Adjust coverage radii or modules in spoor.yml")
	printer.Println("  2. Run 'spoor analyze <replay>'")
	return nil
}
