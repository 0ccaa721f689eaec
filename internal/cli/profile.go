package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dosewatch/dosewatch/internal/daemon"
)

func init() {
	rootCmd.AddCommand(profileCmd)
}

var profileCmd = &cobra.Command{
	Use:   "profile <substance>",
	Short: "Show the learned timing profile of a substance",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfile,
}

func runProfile(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	sub, err := d.DB.GetSubstanceByName(args[0])
	if err != nil {
		return fmt.Errorf("%q: %w", args[0], err)
	}
	profile, err := loadProfile(d, sub)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s)\n", sub.Name, sub.Category)
	printProfile(profile)
	return nil
}
