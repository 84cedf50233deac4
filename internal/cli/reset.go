package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andy/multitimer/internal/domain"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset stored data",
	Long: `Reset stored data.

Examples:
  multitimer reset prefs    # Delete all stored preference blobs`,
}

var resetPrefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Delete all stored preference blobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmPrompt("This will delete stored preferences for both boards. Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		ctx := context.Background()
		for _, key := range []string{domain.BoardTimer, domain.BoardCounter} {
			if err := appInstance.Prefs.Delete(ctx, key); err != nil {
				return fmt.Errorf("failed to delete %s: %w", key, err)
			}
		}

		fmt.Println("All stored preferences have been deleted.")
		return nil
	},
}

// confirmPrompt asks the user a yes/no question on stdin
func confirmPrompt(question string) bool {
	fmt.Printf("%s [y/N]: ", question)

	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func init() {
	resetCmd.AddCommand(resetPrefsCmd)
}
