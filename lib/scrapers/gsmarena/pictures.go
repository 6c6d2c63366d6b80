package gsmarena

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/PuerkitoBio/purell"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PicturesURL derives a phone's gallery page from its spec page URL:
// `{slug}-{id}.php` becomes `{slug}-pictures-{id}.php` on the same host.
// URLs whose file part lacks a name-id hyphen produce an error.
func PicturesURL(specURL string) (string, error) {
	u, err := url.Parse(specURL)
	if err != nil {
		return "", err
	}

	rooted := strings.HasPrefix(u.Path, "/")
	base := strings.ReplaceAll(strings.TrimPrefix(u.Path, "/"), ".php", "")
	i := strings.LastIndex(base, "-")
	if i < 0 {
		return "", fmt.Errorf("no name-id separator in %q", specURL)
	}

	u.Path = base[:i] + "-pictures-" + base[i+1:] + ".php"
	if rooted {
		u.Path = "/" + u.Path
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

var imageExtensions = []string{".jpg", ".png", ".webp"}

// Source paths containing these markers are site chrome, not product shots.
var nonProductMarkers = []string{"icon", "logo", "sprite", "button", "blank"}

func hasImageExtension(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	p := strings.ToLower(u.Path)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}

func looksLikeChrome(link string) bool {
	lower := strings.ToLower(link)
	for _, marker := range nonProductMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// upgradeThumbnail swaps a thumbnail path for its full-size counterpart
// unless the URL already points at a full-size image directory.
func upgradeThumbnail(link string) string {
	if strings.Contains(link, "/vv/bigpic/") || strings.Contains(link, "/vv/pics/") {
		return link
	}
	if strings.Contains(strings.ToLower(link), "thumb") {
		return strings.ReplaceAll(link, "thumb", "pics")
	}
	return link
}

// normalizeImageKey is the dedupe key for a discovered URL; trivially
// different spellings of the same image should collapse.
func normalizeImageKey(link string) string {
	normalized, err := purell.NormalizeURLString(
		link,
		purell.FlagsSafe|
			purell.FlagsUsuallySafeNonGreedy|
			purell.FlagRemoveFragment|
			purell.FlagSortQuery,
	)
	if err != nil {
		return link
	}
	return normalized
}

// ExtractImageURLs discovers up to maxImages product image URLs from a
// pictures page, in order: the main photo container first, then the picture
// list's image links, then — only if that found at most one image — a
// broadened scan over img tags with chrome filtered out.
func (c *Client) ExtractImageURLs(doc *goquery.Document, maxImages int) []string {
	var urls []string
	seen := map[string]bool{}

	add := func(link string) {
		key := normalizeImageKey(link)
		if seen[key] {
			return
		}
		seen[key] = true
		urls = append(urls, link)
	}

	if img := doc.Find("div.specs-photo-main img").First(); img.Length() > 0 {
		if src := img.AttrOr("src", ""); src != "" {
			add(upgradeThumbnail(c.Resolve(src)))
		}
	}

	pictureList := doc.Find("#pictures-list")
	if pictureList.Length() > 0 {
		pictureList.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href := a.AttrOr("href", "")
			if href == "" || !hasImageExtension(href) {
				return true
			}
			add(c.Resolve(href))
			return len(urls) < maxImages
		})
	}

	if len(urls) <= 1 {
		scope := pictureList
		if scope.Length() == 0 {
			scope = doc.Selection
		}
		scope.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
			src := img.AttrOr("src", "")
			if src == "" || looksLikeChrome(src) || !hasImageExtension(src) {
				return true
			}
			add(upgradeThumbnail(c.Resolve(src)))
			return len(urls) < maxImages
		})
	}

	if len(urls) > maxImages {
		urls = urls[:maxImages]
	}
	return urls
}

// DiscoverImages fetches a pictures page and extracts its product image
// URLs.
func (c *Client) DiscoverImages(ctx context.Context, picturesURL string, maxImages int) ([]string, error) {
	ctx, span := tracer.Start(ctx, "client:DiscoverImages")
	defer span.End()

	doc, _, err := c.FetchDocument(ctx, picturesURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch pictures page")
		return nil, err
	}

	urls := c.ExtractImageURLs(doc, maxImages)
	span.SetAttributes(attribute.Int("image_count", len(urls)))
	return urls, nil
}

// ImageExtension returns the download filename extension for an image URL:
// its path extension when recognized, else ".jpg".
func ImageExtension(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return ".jpg"
	}
	ext := strings.ToLower(path.Ext(u.Path))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
		return ext
	}
	return ".jpg"
}
