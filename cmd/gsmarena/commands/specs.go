package commands

import (
	"fmt"
	"os"
	"time"

	"gsmarena-scraper/lib/scrapers/gsmarena"
	"gsmarena-scraper/lib/serviceutil"
	"gsmarena-scraper/services/specextractor"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(specsCmd)
}

var specsCmd = &cobra.Command{
	Use:   "specs",
	Short: "Extracts specification tables for every phone in the review CSV.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig().Specs

		client, err := gsmarena.NewClient(gsmarena.ClientOptions{})
		if err != nil {
			serviceutil.Fatal("failed to initialize client", err)
		}

		result, err := specextractor.Run(cmd.Context(), client, specextractor.Options{
			InputCSV:           cfg.InputCSV,
			OutputJSON:         cfg.OutputJSON,
			OutputCSV:          cfg.OutputCSV,
			MaxPhones:          cfg.MaxPhones,
			StartFrom:          cfg.StartFrom,
			Delay:              time.Duration(cfg.DelaySeconds) * time.Second,
			AlternateThreshold: cfg.AlternateThreshold,
		})
		if err != nil {
			serviceutil.Fatal("failed to extract specifications", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Phone", "Categories", "Fields"})
		for _, record := range result.Records {
			fields := 0
			for _, category := range record.Categories {
				fields += len(category)
			}
			t.AppendRow(table.Row{record.PhoneName, len(record.Categories), fields})
		}
		t.AppendFooter(table.Row{
			fmt.Sprintf("%d extracted", len(result.Records)),
			fmt.Sprintf("%d skipped", result.Skipped),
			"",
		})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
