package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codigo-app/codigo/internal/daemon"
)

func init() {
	rootCmd.AddCommand(resetFlagsCmd)
}

var resetFlagsCmd = &cobra.Command{
	Use:   "reset-streak-flags",
	Short: "Clear the same-day streak guard for all users",
	Long: `Clear the updated-streak-today flag on every profile.
The serve command runs this automatically at midnight; this command
exists for manual recovery when the server was down at the boundary.`,
	RunE: runResetFlags,
}

func runResetFlags(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	n, err := d.Streak.ResetDailyFlags()
	if err != nil {
		return err
	}
	fmt.Printf("Cleared %d profiles.\n", n)
	return nil
}
