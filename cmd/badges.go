package cmd

import (
	"docdot_backend/internal/badge"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var badgesCmd = &cobra.Command{
	Use:   "badges",
	Short: "Print the default badge catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tNAME\tTIER\tCATEGORY\tREQUIREMENT\tXP\tSECRET")
		for _, b := range badge.DefaultCatalog() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d %s\t%d\t%t\n",
				b.Code, b.Name, b.Tier, b.Category, b.Requirement, b.RequirementType, b.XPReward, b.IsSecret)
		}
		return w.Flush()
	},
}
