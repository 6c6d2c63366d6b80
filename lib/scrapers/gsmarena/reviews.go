package gsmarena

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

// ReviewRecord is one entry from the review index. Only PhoneName and
// ReviewURL are reliably present; the rest is best-effort.
type ReviewRecord struct {
	PhoneName string `json:"phone_name,omitempty"`
	ReviewURL string `json:"review_url,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
	ImageAlt  string `json:"image_alt,omitempty"`
	Date      string `json:"date,omitempty"`
	Snippet   string `json:"snippet,omitempty"`
}

// ReviewCSVHeader is the fixed column order for the review CSV.
var ReviewCSVHeader = []string{"phone_name", "review_url", "image_url", "image_alt", "date", "snippet"}

func (r ReviewRecord) CSVRow() []string {
	return []string{r.PhoneName, r.ReviewURL, r.ImageURL, r.ImageAlt, r.Date, r.Snippet}
}

// ReviewPageURL builds the index URL for a page number: page 1 is the base
// URL verbatim, later pages add the iPage query parameter.
func ReviewPageURL(baseURL string, page int) string {
	if page == 1 {
		return baseURL
	}
	return fmt.Sprintf("%s?iPage=%d", baseURL, page)
}

// The site has shipped several review-list markups; try each container
// selector in order until one matches.
var reviewItemSelectors = []string{
	"div.review-item",
	"#review-body div.review-item",
	".review-item-new",
}

func findReviewItems(doc *goquery.Document) *goquery.Selection {
	for _, selector := range reviewItemSelectors {
		items := doc.Find(selector)
		if items.Length() > 0 {
			return items
		}
	}
	return doc.Find(reviewItemSelectors[0])
}

var reviewTitleSelectors = []string{"h3", "h2", "a.review-item-title"}

func findReviewTitle(item *goquery.Selection) *goquery.Selection {
	for _, selector := range reviewTitleSelectors {
		title := item.Find(selector).First()
		if title.Length() > 0 {
			return title
		}
	}
	return nil
}

var reviewDateSelectors = []string{"li", "span.review-date"}

func findReviewDate(item *goquery.Selection) *goquery.Selection {
	for _, selector := range reviewDateSelectors {
		date := item.Find(selector).First()
		if date.Length() > 0 {
			return date
		}
	}
	return nil
}

// ParseReviewList extracts the review records present on one index page. An
// item contributes a record only when at least one field was extracted.
func (c *Client) ParseReviewList(doc *goquery.Document) []ReviewRecord {
	var records []ReviewRecord

	findReviewItems(doc).Each(func(_ int, item *goquery.Selection) {
		var rec ReviewRecord

		if title := findReviewTitle(item); title != nil {
			rec.PhoneName = strings.TrimSpace(title.Text())
			link := title
			if !title.Is("a") {
				link = title.Find("a").First()
			}
			if href, ok := link.Attr("href"); ok && href != "" {
				rec.ReviewURL = c.Resolve(href)
			}
		}

		if img := item.Find("img").First(); img.Length() > 0 {
			rec.ImageURL = img.AttrOr("src", "")
			rec.ImageAlt = img.AttrOr("alt", "")
		}

		if date := findReviewDate(item); date != nil {
			rec.Date = strings.TrimSpace(date.Text())
		}

		if snippet := item.Find("p").First(); snippet.Length() > 0 {
			rec.Snippet = strings.TrimSpace(snippet.Text())
		}

		if rec != (ReviewRecord{}) {
			records = append(records, rec)
		}
	})

	return records
}

// FetchReviewPage fetches one index page and extracts its records. The byte
// count is reported even on parse failure so the caller can apply its
// trivially-short-page termination rule.
func (c *Client) FetchReviewPage(ctx context.Context, pageURL string) ([]ReviewRecord, int, error) {
	ctx, span := tracer.Start(ctx, "client:FetchReviewPage")
	defer span.End()

	doc, size, err := c.FetchDocument(ctx, pageURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch review page")
		return nil, size, err
	}

	return c.ParseReviewList(doc), size, nil
}
