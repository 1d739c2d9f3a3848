package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/codigo-app/codigo/internal/daemon"
	"github.com/codigo-app/codigo/internal/domain"
)

func init() {
	grantXPCmd.Flags().StringVar(&grantXPSource, "source", "exercise", "XP source label (exercise, lesson, achievement)")
	rootCmd.AddCommand(grantXPCmd)
}

var grantXPSource string

var grantXPCmd = &cobra.Command{
	Use:   "grant-xp <user-id> <amount>",
	Short: "Grant XP to a user",
	Args:  cobra.ExactArgs(2),
	RunE:  runGrantXP,
}

func runGrantXP(cmd *cobra.Command, args []string) error {
	amount, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[1], err)
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	st, err := d.XP.AddXP(args[0], amount, domain.XPSource(grantXPSource), time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("XP: %d (level %d)\n", st.XP, st.Level)
	return nil
}
