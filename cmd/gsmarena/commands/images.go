package commands

import (
	"fmt"
	"os"
	"time"

	"gsmarena-scraper/lib/scrapers/gsmarena"
	"gsmarena-scraper/lib/serviceutil"
	"gsmarena-scraper/services/imagefetcher"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(imagesCmd)
}

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "Downloads product photos for every phone in the specification CSV.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig().Images

		client, err := gsmarena.NewClient(gsmarena.ClientOptions{})
		if err != nil {
			serviceutil.Fatal("failed to initialize client", err)
		}

		result, err := imagefetcher.Run(cmd.Context(), client, imagefetcher.Options{
			InputCSV:          cfg.InputCSV,
			ImagesDir:         cfg.ImagesDir,
			ManifestPath:      cfg.ManifestPath,
			MaxPhones:         cfg.MaxPhones,
			MaxImagesPerPhone: cfg.MaxImagesPerPhone,
			StartFrom:         cfg.StartFrom,
			Delay:             time.Duration(cfg.DelaySeconds) * time.Second,
		})
		if err != nil {
			serviceutil.Fatal("failed to fetch images", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Phone", "Brand", "Images"})
		for _, entry := range result.Manifest {
			t.AppendRow(table.Row{entry.CleanInfo.DisplayName, entry.CleanInfo.Brand, entry.ImageCount})
		}
		t.AppendFooter(table.Row{
			fmt.Sprintf("%d succeeded", result.Succeeded),
			fmt.Sprintf("%d failed", result.Failed),
			"",
		})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
