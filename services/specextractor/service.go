// Package specextractor resolves review pages to specification pages and
// extracts the categorized spec tables. It is the second job of the
// pipeline: it reads the review lister's CSV and checkpoints a JSON file
// after every phone so an interrupted run loses at most one record.
package specextractor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"gsmarena-scraper/lib/recordio"
	"gsmarena-scraper/lib/scrapers/gsmarena"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("services/specextractor")

type Options struct {
	InputCSV   string
	OutputJSON string
	OutputCSV  string
	// MaxPhones caps how many phones are processed; 0 means all.
	MaxPhones int
	// StartFrom skips this many phones from the top of the list, for
	// resuming a partial run.
	StartFrom int
	// Delay is the etiquette pause between phones.
	Delay time.Duration
	// AlternateThreshold triggers the fallback table parser when the
	// primary one yields this many categories or fewer.
	AlternateThreshold int
}

type Result struct {
	Records []gsmarena.SpecificationRecord
	// Skipped counts phones with no resolvable spec page or a failed
	// spec fetch.
	Skipped int
}

// ReadPhoneList loads the review lister's CSV. Rows without a review_url
// are dropped; missing names and dates become "Unknown".
func ReadPhoneList(path string) ([]gsmarena.SpecMetadata, error) {
	rows, err := recordio.ReadCSVRows(path)
	if err != nil {
		return nil, err
	}

	var phones []gsmarena.SpecMetadata
	for _, row := range rows {
		if row["review_url"] == "" {
			continue
		}
		meta := gsmarena.SpecMetadata{
			PhoneName: row["phone_name"],
			ReviewURL: row["review_url"],
			Date:      row["date"],
		}
		if meta.PhoneName == "" {
			meta.PhoneName = "Unknown"
		}
		if meta.Date == "" {
			meta.Date = "Unknown"
		}
		phones = append(phones, meta)
	}
	return phones, nil
}

func sliceToRange(phones []gsmarena.SpecMetadata, startFrom, maxPhones int) []gsmarena.SpecMetadata {
	if startFrom >= len(phones) {
		return nil
	}
	phones = phones[startFrom:]
	if maxPhones > 0 && maxPhones < len(phones) {
		phones = phones[:maxPhones]
	}
	return phones
}

// Run resolves and scrapes the spec page of every phone in the input list.
// Failures skip the phone; the JSON output is rewritten after each success
// so it is always a valid snapshot of progress.
func Run(ctx context.Context, client *gsmarena.Client, opts Options) (Result, error) {
	ctx, span := tracer.Start(ctx, "specextractor:Run")
	defer span.End()

	phones, err := ReadPhoneList(opts.InputCSV)
	if err != nil {
		return Result{}, fmt.Errorf("reading phone list: %w", err)
	}
	phones = sliceToRange(phones, opts.StartFrom, opts.MaxPhones)
	slog.InfoContext(ctx, "extracting specifications", "phones", len(phones))

	var result Result
	for i, meta := range phones {
		slog.InfoContext(
			ctx, "processing phone",
			"index", opts.StartFrom+i+1, "name", meta.PhoneName,
		)

		record, err := scrapePhone(ctx, client, meta, opts.AlternateThreshold)
		if err != nil {
			slog.WarnContext(ctx, "skipping phone", "name", meta.PhoneName, "err", err)
			result.Skipped++
		} else {
			result.Records = append(result.Records, record)
			// a failed checkpoint loses nothing: the records stay in
			// memory and the next write retries the full snapshot
			if err := recordio.WriteJSONFile(opts.OutputJSON, result.Records); err != nil {
				slog.WarnContext(ctx, "checkpoint write failed", "path", opts.OutputJSON, "err", err)
			}
			slog.InfoContext(
				ctx, "extracted specifications",
				"name", record.PhoneName, "categories", len(record.Categories),
			)
		}

		if opts.Delay > 0 && i < len(phones)-1 {
			time.Sleep(opts.Delay)
		}
	}

	span.SetAttributes(
		attribute.Int("records", len(result.Records)),
		attribute.Int("skipped", result.Skipped),
	)

	if opts.OutputCSV != "" && len(result.Records) > 0 {
		if err := WriteCSV(opts.OutputCSV, result.Records); err != nil {
			return result, fmt.Errorf("writing %s: %w", opts.OutputCSV, err)
		}
	}
	return result, nil
}

func scrapePhone(
	ctx context.Context,
	client *gsmarena.Client,
	meta gsmarena.SpecMetadata,
	alternateThreshold int,
) (gsmarena.SpecificationRecord, error) {
	specURL, err := client.FindSpecURL(ctx, meta.ReviewURL)
	if err != nil {
		return gsmarena.SpecificationRecord{}, fmt.Errorf("resolving spec page: %w", err)
	}
	if specURL == "" {
		return gsmarena.SpecificationRecord{}, fmt.Errorf("no spec link on %s", meta.ReviewURL)
	}
	meta.SpecURL = specURL

	phoneName, categories, err := client.ScrapeSpecifications(ctx, specURL, alternateThreshold)
	if err != nil {
		return gsmarena.SpecificationRecord{}, fmt.Errorf("scraping spec page: %w", err)
	}

	return gsmarena.SpecificationRecord{
		PhoneName:  phoneName,
		Metadata:   meta,
		Categories: categories,
	}, nil
}

// The metadata columns lead the flattened CSV in this fixed order.
var metadataHeader = []string{"phone_name", "date", "review_url", "spec_url"}

// FlattenForCSV builds one wide table over every record: the metadata
// columns first, then the sorted union of "Category - Field" columns.
// Phones missing a column get a blank cell.
func FlattenForCSV(records []gsmarena.SpecificationRecord) ([]string, [][]string) {
	columns := map[string]bool{}
	for _, record := range records {
		for category, fields := range record.Categories {
			for field := range fields {
				columns[category+" - "+field] = true
			}
		}
	}

	specColumns := make([]string, 0, len(columns))
	for col := range columns {
		specColumns = append(specColumns, col)
	}
	sort.Strings(specColumns)
	header := append(append([]string{}, metadataHeader...), specColumns...)

	rows := make([][]string, len(records))
	for i, record := range records {
		// the listing name, not the spec page title: downstream joins
		// (the image fetcher's manifest included) key on it
		name := record.Metadata.PhoneName
		cells := map[string]string{}
		for category, fields := range record.Categories {
			for field, value := range fields {
				cells[category+" - "+field] = value
			}
		}

		row := []string{name, record.Metadata.Date, record.Metadata.ReviewURL, record.Metadata.SpecURL}
		for _, col := range specColumns {
			row = append(row, cells[col])
		}
		rows[i] = row
	}
	return header, rows
}

// WriteCSV writes the flattened spec table, replacing any existing file.
func WriteCSV(path string, records []gsmarena.SpecificationRecord) error {
	header, rows := FlattenForCSV(records)
	return recordio.WriteCSVFile(path, header, rows)
}
