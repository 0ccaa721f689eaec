package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dosewatch/dosewatch/internal/daemon"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tracked substances",
	RunE:    runList,
}

func runList(cmd *cobra.Command, args []string) error {
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
		fmt.Println("No substances tracked. Run 'dosewatch add <name>' to get started.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCATEGORY\tCONFIDENCE\tSAMPLES\tDURATION")
	for _, sub := range subs {
		p, err := d.DB.GetProfile(sub.ID)
		if err != nil {
			fmt.Fprintf(w, "%s\t%s\t-\t-\t-\n", sub.Name, sub.Category)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%.0f%%\t%d\t%s\n",
			sub.Name,
			sub.Category,
			p.Confidence*100,
			p.Samples,
			fmtMinutes(p.DurationMinutes),
		)
	}
	return w.Flush()
}
