package cli

import (
	"github.com/andy/multitimer/internal/app"
	"github.com/spf13/cobra"
)

var appInstance *app.App

var rootCmd = &cobra.Command{
	Use:   "multitimer",
	Short: "A terminal multi-timer and counter board",
	Long: `Multitimer runs a board of independent countdown timers and tally
counters in the terminal, with drift-corrected ticking, sequential
execution, and persisted preferences.

By default, running multitimer without arguments launches the interactive TUI.
Use subcommands to inspect or change configuration from the command line.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Default behavior: launch TUI
		launchTUI(cmd, args)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetApp sets the app instance for commands to use
func SetApp(a *app.App) {
	appInstance = a
}

func init() {
	// Add all subcommands
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(prefsCmd)
	rootCmd.AddCommand(resetCmd)
}
