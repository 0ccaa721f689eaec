package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dosewatch/dosewatch/internal/daemon"
)

func init() {
	rootCmd.AddCommand(phaseCmd)
}

var phaseCmd = &cobra.Command{
	Use:   "phase <substance>",
	Short: "Predict the current phase of the latest dose of a substance",
	Args:  cobra.ExactArgs(1),
	RunE:  runPhase,
}

func runPhase(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	sub, err := d.DB.GetSubstanceByName(args[0])
	if err != nil {
		return fmt.Errorf("%q: %w", args[0], err)
	}
	doses, err := d.DB.ListDoses(sub.ID, 1)
	if err != nil {
		return err
	}
	if len(doses) == 0 {
		return fmt.Errorf("no doses recorded for %s", sub.Name)
	}
	dose := doses[0]

	profile, err := loadProfile(d, sub)
	if err != nil {
		return err
	}

	pred := d.Estimator.PredictPhaseForDose(profile, dose)
	elapsed := dose.ElapsedMinutes(d.Estimator.Now())

	fmt.Printf("%s — dose %s, %s after intake\n", sub.Name, dose.ID[:8], fmtMinutes(elapsed))
	fmt.Printf("  Phase:      %s (%.0f%% through the curve)\n", pred.Phase, pred.Progress*100)
	fmt.Printf("  Confidence: %.0f%% (%d feedback samples)\n", profile.Confidence*100, profile.Samples)
	if profile.AutoStopOnWearOff {
		fmt.Println("  Auto-stop:  flagged when this dose wears off")
	}
	return nil
}
