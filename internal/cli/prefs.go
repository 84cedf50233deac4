package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/andy/multitimer/internal/domain"
)

var prefsBoard string

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Inspect stored preferences",
	Long:  `Show the preference blob stored for a board.`,
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored preference blob for a board",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := boardKey(prefsBoard)
		if err != nil {
			return err
		}

		p, err := appInstance.Prefs.Load(context.Background(), key)
		if err != nil {
			return fmt.Errorf("failed to load preferences: %w", err)
		}

		stored := p != nil
		if p == nil {
			p = domain.DefaultPreferences()
		}

		blob, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return err
		}

		if term.IsTerminal(int(os.Stdout.Fd())) {
			header := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("Preferences for %s", key))
			fmt.Println(header)
			if !stored {
				fmt.Println(lipgloss.NewStyle().Faint(true).Render("(nothing stored yet, showing defaults)"))
			}
		}
		fmt.Println(string(blob))

		return nil
	},
}

// boardKey translates the --board flag into a storage key.
func boardKey(board string) (string, error) {
	switch board {
	case "timer":
		return domain.BoardTimer, nil
	case "counter":
		return domain.BoardCounter, nil
	default:
		return "", fmt.Errorf("unknown board %q (use timer or counter)", board)
	}
}

func init() {
	prefsShowCmd.Flags().StringVar(&prefsBoard, "board", "timer", "board to inspect (timer or counter)")
	prefsCmd.AddCommand(prefsShowCmd)
}
