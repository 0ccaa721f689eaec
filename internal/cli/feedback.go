package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dosewatch/dosewatch/internal/daemon"
	"github.com/dosewatch/dosewatch/internal/domain"
)

func init() {
	feedbackCmd.Flags().Float64Var(&feedbackOffset, "offset", -1, "Minutes after intake the status was observed (default: elapsed time)")
	rootCmd.AddCommand(feedbackCmd)
}

var feedbackOffset float64

var feedbackCmd = &cobra.Command{
	Use:   "feedback <substance> <status>",
	Short: "Report what the latest dose is doing right now",
	Long: `Report feedback on the latest dose of a substance. Status is one of:
kicking_in, peaking, wearing_off, worn_off. The substance's timing
profile is updated from the report.`,
	Args: cobra.ExactArgs(2),
	RunE: runFeedback,
}

func runFeedback(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	status := domain.EventStatus(args[1])
	if !status.Valid() {
		return fmt.Errorf("%q: %w", args[1], domain.ErrInvalidStatus)
	}

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

	offset := feedbackOffset
	if offset < 0 {
		offset = dose.ElapsedMinutes(d.Estimator.Now())
	}

	ev := domain.EffectEvent{
		Status:        status,
		OffsetMinutes: offset,
		ReportedAt:    d.Estimator.Now(),
	}
	if err := d.DB.InsertFeedback(dose.ID, ev); err != nil {
		return err
	}

	profile, err := loadProfile(d, sub)
	if err != nil {
		return err
	}
	updated := d.Estimator.UpdateFromEvent(profile, ev, dose.Bucket())
	if err := d.DB.UpsertProfile(updated); err != nil {
		return err
	}

	fmt.Printf("Folded %s at %s into %s's profile\n", status, fmtMinutes(offset), sub.Name)
	printProfile(updated)
	return nil
}
