package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/codigo-app/codigo/internal/daemon"
	"github.com/codigo-app/codigo/internal/domain"
)

func init() {
	rootCmd.AddCommand(achievementsCmd)
}

var achievementsCmd = &cobra.Command{
	Use:   "achievements [user-id]",
	Short: "List the achievement catalog, or a user's earned achievements",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAchievements,
}

func runAchievements(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	if len(args) == 0 {
		fmt.Fprintln(w, "ID\tTITLE\tPOINTS\tCATEGORY")
		for _, def := range d.Achievements.Definitions() {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", def.ID, def.Title, def.Points, def.Category)
		}
		return w.Flush()
	}

	earned, err := d.Achievements.ListEarned(args[0])
	if err != nil {
		return err
	}
	if len(earned) == 0 {
		fmt.Println("No achievements earned yet.")
		return nil
	}

	fmt.Fprintln(w, "ID\tTITLE\tPOINTS\tEARNED")
	for _, a := range earned {
		title := a.ID
		if def, ok := domain.CatalogByID(a.ID); ok {
			title = def.Title
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", a.ID, title, a.Points, a.EarnedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
