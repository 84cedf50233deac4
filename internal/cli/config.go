package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/andy/multitimer/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or change configuration",
	Long:  `View the active configuration or set individual values from the command line.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appInstance.Config

		heading := func(s string) string { return s }
		if term.IsTerminal(int(os.Stdout.Fd())) {
			style := lipgloss.NewStyle().Bold(true)
			heading = func(s string) string { return style.Render(s) }
		}

		fmt.Println(heading("Engine"))
		fmt.Printf("  timer-count: %d\n", cfg.Engine.TimerCount)
		fmt.Printf("  max-time:    %ds\n", cfg.Engine.MaxTime)
		fmt.Printf("  auto-start:  %t\n", cfg.Engine.AutoStartEnabled)
		fmt.Printf("  sequential:  %t\n", cfg.Engine.SequentialExecution)
		fmt.Printf("  label-limit: %d\n", cfg.Engine.LabelLimit)
		fmt.Println(heading("Database"))
		fmt.Printf("  path: %s\n", cfg.Database.Path)

		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save the config file.

Keys:
  timer-count   board size preset (5, 10 or 15)
  max-time      per-timer cap in seconds (preset-validated)
  auto-start    true/false
  sequential    true/false`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appInstance.Config
		key, value := args[0], args[1]

		switch key {
		case "timer-count":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("timer-count must be a number: %w", err)
			}
			if !config.ValidTimerCount(n) {
				return fmt.Errorf("%w: timer-count %d (allowed %v)", config.ErrInvalidPreset, n, config.TimerCountPresets)
			}
			cfg.Engine.TimerCount = n

		case "max-time":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("max-time must be a number: %w", err)
			}
			if !config.ValidMaxTime(n) {
				return fmt.Errorf("%w: max-time %d (allowed %v)", config.ErrInvalidPreset, n, config.MaxTimePresets)
			}
			cfg.Engine.MaxTime = n

		case "auto-start":
			v, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("auto-start must be true or false: %w", err)
			}
			cfg.Engine.AutoStartEnabled = v

		case "sequential":
			v, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("sequential must be true or false: %w", err)
			}
			cfg.Engine.SequentialExecution = v

		default:
			return fmt.Errorf("unknown config key %q", key)
		}

		if err := appInstance.SaveConfig(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Printf("✓ %s set to %s\n", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
