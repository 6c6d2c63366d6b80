// Package imagefetcher downloads product photos for phones whose spec pages
// are already known. It is the last job of the pipeline: it reads the spec
// extractor's CSV, derives each phone's gallery page, and saves the images
// under a per-phone directory with deterministic names.
package imagefetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gsmarena-scraper/lib/recordio"
	"gsmarena-scraper/lib/scrapers/gsmarena"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("services/imagefetcher")

type Options struct {
	InputCSV  string
	ImagesDir string
	// ManifestPath defaults to image_manifest.json in the working
	// directory.
	ManifestPath string
	// MaxPhones caps how many phones are processed; 0 means all.
	MaxPhones int
	// MaxImagesPerPhone caps discovery and download per phone.
	MaxImagesPerPhone int
	// StartFrom skips this many phones from the top of the list.
	StartFrom int
	// Delay is the etiquette pause between phones.
	Delay time.Duration
}

// Phone is one row of the input list: the raw listing name plus the spec
// page it was extracted from.
type Phone struct {
	Name    string
	SpecURL string
}

// ManifestEntry records what was saved for one phone.
type ManifestEntry struct {
	SpecURL    string             `json:"spec_url"`
	ImageCount int                `json:"image_count"`
	ImagePaths []string           `json:"image_paths"`
	CleanInfo  gsmarena.CleanInfo `json:"clean_info"`
}

// Manifest maps each phone's raw listing name to its download record.
// A duplicate listing name silently overwrites the earlier entry.
type Manifest map[string]ManifestEntry

type Result struct {
	Manifest Manifest
	// Succeeded counts phones with at least one saved image; only those
	// get a manifest entry.
	Succeeded int
	Failed    int
}

// Pause after every download attempt, successful or not.
const imagePause = 500 * time.Millisecond

// Column aliases for the spec page URL, accepting both this pipeline's
// flattened CSV and older exports.
var specURLColumns = []string{"spec_url", "_metadata - spec_url", "review_url"}

// ReadPhoneList loads the spec extractor's CSV. Rows lacking every known
// URL column are dropped; a missing name becomes "Unknown".
func ReadPhoneList(path string) ([]Phone, error) {
	rows, err := recordio.ReadCSVRows(path)
	if err != nil {
		return nil, err
	}

	var phones []Phone
	for _, row := range rows {
		var specURL string
		for _, col := range specURLColumns {
			if row[col] != "" {
				specURL = row[col]
				break
			}
		}
		if specURL == "" {
			continue
		}
		name := row["phone_name"]
		if name == "" {
			name = "Unknown"
		}
		phones = append(phones, Phone{Name: name, SpecURL: specURL})
	}
	return phones, nil
}

// Run downloads images for every phone in the input list. Phones that
// yield no saved image count as failed and get no manifest entry; the
// manifest is written once at the end.
func Run(ctx context.Context, client *gsmarena.Client, opts Options) (Result, error) {
	ctx, span := tracer.Start(ctx, "imagefetcher:Run")
	defer span.End()

	if opts.ManifestPath == "" {
		opts.ManifestPath = "image_manifest.json"
	}

	phones, err := ReadPhoneList(opts.InputCSV)
	if err != nil {
		return Result{}, fmt.Errorf("reading phone list: %w", err)
	}
	if opts.StartFrom >= len(phones) {
		phones = nil
	} else {
		phones = phones[opts.StartFrom:]
	}
	if opts.MaxPhones > 0 && opts.MaxPhones < len(phones) {
		phones = phones[:opts.MaxPhones]
	}
	slog.InfoContext(ctx, "fetching images", "phones", len(phones), "dir", opts.ImagesDir)

	result := Result{Manifest: Manifest{}}
	for i, phone := range phones {
		paths, info := fetchPhone(ctx, client, phone, opts)
		if len(paths) > 0 {
			result.Manifest[phone.Name] = ManifestEntry{
				SpecURL:    phone.SpecURL,
				ImageCount: len(paths),
				ImagePaths: paths,
				CleanInfo:  info,
			}
			result.Succeeded++
		} else {
			result.Failed++
		}

		if opts.Delay > 0 && i < len(phones)-1 {
			time.Sleep(opts.Delay)
		}
	}

	span.SetAttributes(
		attribute.Int("succeeded", result.Succeeded),
		attribute.Int("failed", result.Failed),
	)

	if err := recordio.WriteJSONFile(opts.ManifestPath, result.Manifest); err != nil {
		return result, fmt.Errorf("writing manifest: %w", err)
	}
	slog.InfoContext(
		ctx, "wrote image manifest",
		"path", opts.ManifestPath, "succeeded", result.Succeeded, "failed", result.Failed,
	)
	return result, nil
}

// fetchPhone discovers and downloads one phone's images, returning the
// saved file paths in discovery order.
func fetchPhone(ctx context.Context, client *gsmarena.Client, phone Phone, opts Options) ([]string, gsmarena.CleanInfo) {
	info := gsmarena.CleanPhoneName(phone.Name)

	picturesURL, err := gsmarena.PicturesURL(phone.SpecURL)
	if err != nil {
		slog.WarnContext(ctx, "cannot derive pictures page", "name", phone.Name, "err", err)
		return nil, info
	}
	slog.InfoContext(ctx, "processing phone", "name", info.DisplayName, "url", picturesURL)

	urls, err := client.DiscoverImages(ctx, picturesURL, opts.MaxImagesPerPhone)
	if err != nil {
		slog.WarnContext(ctx, "pictures page failed", "name", phone.Name, "err", err)
		return nil, info
	}
	if len(urls) == 0 {
		slog.WarnContext(ctx, "no images found", "name", phone.Name)
		return nil, info
	}

	phoneDir := filepath.Join(opts.ImagesDir, info.SafeName)
	if err := os.MkdirAll(phoneDir, 0o755); err != nil {
		slog.WarnContext(ctx, "cannot create image directory", "dir", phoneDir, "err", err)
		return nil, info
	}

	var paths []string
	for i, imageURL := range urls {
		// first image is the main shot, the rest keep their 1-based
		// gallery position
		name := "main"
		if i > 0 {
			name = fmt.Sprintf("angle_%d", i+1)
		}
		savePath := filepath.Join(phoneDir, name+gsmarena.ImageExtension(imageURL))

		if err := downloadImage(ctx, client, imageURL, savePath); err != nil {
			slog.WarnContext(ctx, "image download failed", "url", imageURL, "err", err)
		} else {
			paths = append(paths, savePath)
			if stat, err := os.Stat(savePath); err == nil {
				slog.DebugContext(ctx, "saved image", "file", savePath, "kb", stat.Size()/1024)
			}
		}

		time.Sleep(imagePause)
	}
	return paths, info
}

// downloadImage streams one image to disk. An empty body is treated as a
// failure and the file is removed.
func downloadImage(ctx context.Context, client *gsmarena.Client, imageURL, path string) error {
	res, err := client.Http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(imageURL)
	if err != nil {
		return err
	}
	body := res.RawBody()
	defer body.Close()
	if res.IsError() {
		return fmt.Errorf("unexpected status %s for %s", res.Status(), imageURL)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}

	buf := make([]byte, 8192)
	written, err := io.CopyBuffer(file, body, buf)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return err
	}
	if written == 0 {
		os.Remove(path)
		return fmt.Errorf("empty body for %s", imageURL)
	}
	return nil
}
