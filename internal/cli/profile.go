package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/codigo-app/codigo/internal/daemon"
)

func init() {
	rootCmd.AddCommand(profileCmd)
}

var profileCmd = &cobra.Command{
	Use:   "profile <user-id>",
	Short: "Show a user's gamification profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfile,
}

func runProfile(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	userID := args[0]
	now := time.Now()

	livesStatus, err := d.Lives.Reconcile(userID, now)
	if err != nil {
		return err
	}
	p, err := d.DB.GetProfile(userID, now)
	if err != nil {
		return err
	}
	earned, err := d.Achievements.ListEarned(userID)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "USER\t%s\n", p.UserID)
	fmt.Fprintf(w, "XP\t%d (level %d)\n", p.Gamification.XP, p.Gamification.Level)
	fmt.Fprintf(w, "LIVES\t%d/%d\n", livesStatus.Lives, d.Lives.Capacity())
	if livesStatus.TimeToNextLife != "" {
		fmt.Fprintf(w, "NEXT LIFE\t%s\n", livesStatus.TimeToNextLife)
	}
	fmt.Fprintf(w, "STREAK\t%d days\n", p.Gamification.Streak)
	fmt.Fprintf(w, "ACHIEVEMENTS\t%d\n", len(earned))
	fmt.Fprintf(w, "CREATED\t%s\n", p.CreatedAt.Format("2006-01-02 15:04"))
	return w.Flush()
}
