package commands

import (
	"context"
	"fmt"
	"os"

	"gsmarena-scraper/lib/telemetry"

	"github.com/spf13/cobra"
)

var verbose *bool

var rootCmd = &cobra.Command{
	Use:   "gsmarena",
	Short: "gsmarena scrapes the GSMArena phone catalog in three chained batch jobs.",
	Long: `gsmarena scrapes the GSMArena phone catalog in three chained batch jobs:
"reviews" collects the review listing, "specs" extracts specification tables
for each listed phone, and "images" downloads product photos. Each job reads
the previous job's CSV output, so they are meant to run in that order.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)
	},
}

func init() {
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
