// Package cli implements the dosewatch command-line interface using Cobra.
// Each subcommand maps to one estimator operation (add, dose, phase,
// feedback, etc.).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dosewatch",
	Short: "dosewatch — adaptive effect-phase tracking for doses",
	Long: `dosewatch tracks doses and predicts which effect phase each one is in
(pre-onset, kicking in, peaking, wearing off, worn off), learning each
substance's timing from your feedback over time.`,
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
