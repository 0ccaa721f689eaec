package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dosewatch/dosewatch/internal/daemon"
	"github.com/dosewatch/dosewatch/internal/domain"
)

func init() {
	doseCmd.Flags().DurationVar(&doseAgo, "ago", 0, "How long ago the dose was taken (e.g. 45m, 2h)")
	rootCmd.AddCommand(doseCmd)
}

var doseAgo time.Duration

var doseCmd = &cobra.Command{
	Use:   "dose <substance>",
	Short: "Record a dose of a substance",
	Args:  cobra.ExactArgs(1),
	RunE:  runDose,
}

func runDose(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	sub, err := d.DB.GetSubstanceByName(args[0])
	if err != nil {
		return fmt.Errorf("%q: %w", args[0], err)
	}

	dose := domain.Dose{
		ID:          uuid.NewString(),
		SubstanceID: sub.ID,
		TakenAt:     d.Estimator.Now().Add(-doseAgo),
	}
	if err := d.DB.InsertDose(dose); err != nil {
		return err
	}

	fmt.Printf("Recorded dose %s of %s (taken %s)\n",
		dose.ID[:8], sub.Name, dose.TakenAt.Local().Format("15:04"))
	return nil
}
