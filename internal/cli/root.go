// Package cli implements the Codigo command-line interface using Cobra.
// Subcommands cover serving the API and inspecting or mutating user
// gamification state from an operator shell.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "codigo",
	Short: "Codigo — gamification and progress engine",
	Long: `Codigo is the backend for the Codigo learning app.
It tracks lives, XP, streaks, achievements, and course progress for
every user, and serves them over a REST API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
