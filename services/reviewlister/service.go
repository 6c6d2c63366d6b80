// Package reviewlister paginates the review index and persists the
// collected records. It is the first job of the pipeline; its CSV output
// feeds the spec extractor.
package reviewlister

import (
	"context"
	"log/slog"
	"time"

	"gsmarena-scraper/lib/recordio"
	"gsmarena-scraper/lib/scrapers/gsmarena"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("services/reviewlister")

type Options struct {
	BaseURL   string
	StartPage int
	// MaxPages caps the number of pages fetched; 0 means no cap.
	MaxPages int
	// Delay is the etiquette pause between page fetches.
	Delay time.Duration
}

type Result struct {
	Reviews      []gsmarena.ReviewRecord
	PagesScraped int
}

const (
	// Stop after this many consecutive pages without records.
	maxConsecutiveEmpty = 3
	// A body at or under this size is a trivially-short page, meaning the
	// index ran out.
	minPageBytes = 1000
)

// Run walks the review index from opts.StartPage until a termination
// condition hits. Per-page failures count as empty pages and never abort
// the run.
func Run(ctx context.Context, client *gsmarena.Client, opts Options) Result {
	ctx, span := tracer.Start(ctx, "reviewlister:Run")
	defer span.End()

	if opts.StartPage < 1 {
		opts.StartPage = 1
	}

	var all []gsmarena.ReviewRecord
	page := opts.StartPage
	pagesScraped := 0
	consecutiveEmpty := 0

loop:
	for {
		pageURL := gsmarena.ReviewPageURL(opts.BaseURL, page)
		slog.InfoContext(ctx, "scraping review page", "page", page, "url", pageURL)

		records, size, err := client.FetchReviewPage(ctx, pageURL)
		pagesScraped++
		switch {
		case err != nil:
			slog.WarnContext(ctx, "review page failed", "page", page, "err", err)
			consecutiveEmpty++
			if consecutiveEmpty >= maxConsecutiveEmpty {
				slog.InfoContext(ctx, "stopping: empty page streak", "pages", consecutiveEmpty)
				break loop
			}
		case len(records) > 0:
			all = append(all, records...)
			consecutiveEmpty = 0
			slog.InfoContext(ctx, "found reviews", "page", page, "count", len(records), "total", len(all))
		default:
			consecutiveEmpty++
			slog.InfoContext(ctx, "no reviews on page", "page", page, "body_bytes", size)
			if size <= minPageBytes {
				slog.InfoContext(ctx, "stopping: page has no content", "page", page)
				break loop
			}
			if consecutiveEmpty >= maxConsecutiveEmpty {
				slog.InfoContext(ctx, "stopping: empty page streak", "pages", consecutiveEmpty)
				break loop
			}
		}

		if opts.MaxPages > 0 && pagesScraped >= opts.MaxPages {
			slog.InfoContext(ctx, "stopping: reached page limit", "max_pages", opts.MaxPages)
			break
		}

		page++

		if opts.Delay > 0 {
			time.Sleep(opts.Delay)
		}
	}

	span.SetAttributes(
		attribute.Int("reviews", len(all)),
		attribute.Int("pages", pagesScraped),
	)
	return Result{
		Reviews:      all,
		PagesScraped: pagesScraped,
	}
}

// WriteOutputs persists the collected records as a JSON array and a CSV
// with the fixed review column order. Both writes replace any existing
// file.
func WriteOutputs(reviews []gsmarena.ReviewRecord, jsonPath, csvPath string) error {
	if err := recordio.WriteJSONFile(jsonPath, reviews); err != nil {
		return err
	}

	rows := make([][]string, len(reviews))
	for i, r := range reviews {
		rows[i] = r.CSVRow()
	}
	return recordio.WriteCSVFile(csvPath, gsmarena.ReviewCSVHeader, rows)
}
