package commands

import (
	"fmt"
	"os"
	"time"

	"gsmarena-scraper/lib/scrapers/gsmarena"
	"gsmarena-scraper/lib/serviceutil"
	"gsmarena-scraper/services/reviewlister"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reviewsCmd)
}

var reviewsCmd = &cobra.Command{
	Use:   "reviews",
	Short: "Scrapes the review listing into JSON and CSV files.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig().Reviews

		client, err := gsmarena.NewClient(gsmarena.ClientOptions{})
		if err != nil {
			serviceutil.Fatal("failed to initialize client", err)
		}

		result := reviewlister.Run(cmd.Context(), client, reviewlister.Options{
			BaseURL:   cfg.BaseURL,
			StartPage: cfg.StartPage,
			MaxPages:  cfg.MaxPages,
			Delay:     time.Duration(cfg.DelaySeconds) * time.Second,
		})

		if err := reviewlister.WriteOutputs(result.Reviews, cfg.OutputJSON, cfg.OutputCSV); err != nil {
			serviceutil.Fatal("failed to write outputs", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Phone", "Date", "Review URL"})
		for i, review := range result.Reviews {
			if i >= 5 {
				t.AppendRow(table.Row{"...", "", ""})
				break
			}
			t.AppendRow(table.Row{review.PhoneName, review.Date, review.ReviewURL})
		}
		t.AppendFooter(table.Row{
			fmt.Sprintf("%d reviews", len(result.Reviews)),
			"",
			fmt.Sprintf("%d pages", result.PagesScraped),
		})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
