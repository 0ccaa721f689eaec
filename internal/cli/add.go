package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dosewatch/dosewatch/internal/daemon"
	"github.com/dosewatch/dosewatch/internal/domain"
)

func init() {
	addCmd.Flags().StringVar(&addCategory, "category", "low_risk", "Substance category (opioid, stimulant, benzodiazepine, sleep_aid, antidepressant, supplement, low_risk)")
	addCmd.Flags().StringVar(&addDependency, "dependency-category", "", "Dependency category, takes precedence over --category for baseline defaults")
	addCmd.Flags().BoolVar(&addAutoStop, "auto-stop", false, "Flag predictions with auto-stop when the dose wears off")
	rootCmd.AddCommand(addCmd)
}

var (
	addCategory   string
	addDependency string
	addAutoStop   bool
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a substance and resolve its baseline profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	name := args[0]
	if _, err := d.DB.GetSubstanceByName(name); err == nil {
		return fmt.Errorf("%q: %w", name, domain.ErrSubstanceExists)
	}

	sub := domain.Substance{
		ID:                 uuid.NewString(),
		Name:               name,
		Category:           domain.Category(addCategory),
		DependencyCategory: domain.Category(addDependency),
		AutoStopOnWearOff:  addAutoStop,
	}
	if err := d.DB.InsertSubstance(sub); err != nil {
		return err
	}

	entries, err := d.DB.ListReferenceEntries()
	if err != nil {
		return err
	}
	profile := d.Estimator.ResolveBaseline(sub, entries, nil)
	if err := d.DB.UpsertProfile(profile); err != nil {
		return err
	}

	fmt.Printf("Added %s (%s)\n", sub.Name, sub.ID[:8])
	printProfile(profile)
	return nil
}
