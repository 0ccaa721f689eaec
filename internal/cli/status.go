package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dosewatch/dosewatch/internal/daemon"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent doses across all substances with their current phase",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	subs, err := d.DB.ListSubstances()
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		fmt.Println("No substances tracked.")
		return nil
	}

	limit := d.Config.Estimator.RecentDoseLimit
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SUBSTANCE\tDOSE\tELAPSED\tPHASE\tPROGRESS")

	shown := 0
	for _, sub := range subs {
		doses, err := d.DB.ListDoses(sub.ID, limit)
		if err != nil {
			return err
		}
		profile, err := loadProfile(d, sub)
		if err != nil {
			return err
		}
		for _, dose := range doses {
			if shown >= limit {
				break
			}
			pred := d.Estimator.PredictPhaseForDose(profile, dose)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.0f%%\n",
				sub.Name,
				dose.ID[:8],
				fmtMinutes(dose.ElapsedMinutes(d.Estimator.Now())),
				pred.Phase,
				pred.Progress*100,
			)
			shown++
		}
	}
	if shown == 0 {
		fmt.Println("No doses recorded.")
		return nil
	}
	return w.Flush()
}
