package gsmarena

import (
	"context"
	"regexp"
	"strings"

	"gsmarena-scraper/lib/htmlutil"
	"gsmarena-scraper/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type SpecMetadata struct {
	PhoneName string `json:"phone_name"`
	ReviewURL string `json:"review_url"`
	SpecURL   string `json:"spec_url"`
	Date      string `json:"date"`
}

// SpecificationRecord holds the categorized key/value tables of one spec
// page. Later rows overwrite earlier identical field names within a
// category.
type SpecificationRecord struct {
	// PhoneName is the spec page's own title, which can differ from the
	// review listing's name.
	PhoneName  string                       `json:"phone_name,omitempty"`
	Metadata   SpecMetadata                 `json:"metadata"`
	Categories map[string]map[string]string `json:"categories"`
}

// Anchors whose text mentions any of these lead to the spec page.
var specLinkPhrases = []string{"specification", "specs", "full phone"}

// Spec page files look like `vivo_x300_pro_5g-14225.php`.
var specPagePattern = regexp.MustCompile(`-\d{4,5}\.php`)

// SpecURLFromDoc scans a review page's hyperlinks for the specification
// page. It prefers an anchor whose visible text mentions specifications;
// failing that, the first anchor matching the numeric-ID page pattern that
// isn't another review. Returns "" when neither matches.
func (c *Client) SpecURLFromDoc(doc *goquery.Document) string {
	anchors := htmlutil.GetAnchors(doc.Find("a[href]"))

	for _, a := range anchors {
		if a.Href == "" {
			continue
		}
		text := strings.ToLower(a.Name)
		for _, phrase := range specLinkPhrases {
			if strings.Contains(text, phrase) && strings.Contains(a.Href, ".php") {
				return c.Resolve(a.Href)
			}
		}
	}

	for _, a := range anchors {
		if specPagePattern.MatchString(a.Href) && !strings.Contains(a.Href, "review") {
			return c.Resolve(a.Href)
		}
	}

	return ""
}

// FindSpecURL fetches a review page and resolves its specification page URL.
// Returns "" with a nil error when the page has no recognizable spec link.
func (c *Client) FindSpecURL(ctx context.Context, reviewURL string) (string, error) {
	ctx, span := tracer.Start(ctx, "client:FindSpecURL")
	defer span.End()

	doc, _, err := c.FetchDocument(ctx, reviewURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch review page")
		return "", err
	}

	link := c.SpecURLFromDoc(doc)
	span.SetAttributes(attribute.String("spec_url", link))
	return link, nil
}

const defaultCategory = "General"

// ParseSpecifications is the primary extraction method: every table on the
// page, categorized by the nearest preceding header cell. It returns the
// page-title phone name alongside the category maps.
func ParseSpecifications(doc *goquery.Document) (string, map[string]map[string]string) {
	phoneName := strings.TrimSpace(doc.Find("h1.specs-phone-name-title").First().Text())

	categories := map[string]map[string]string{}
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		category := defaultCategory
		if th := htmlutil.PreviousElement(table.Nodes[0], "th"); th != nil {
			category = htmlutil.CleanText(th)
		}
		if categories[category] == nil {
			categories[category] = map[string]string{}
		}

		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() < 2 {
				return
			}
			name := textutil.CollapseSpace(cells.Eq(0).Text())
			value := textutil.CollapseSpace(cells.Eq(1).Text())
			if name != "" && value != "" {
				categories[category][name] = value
			}
		})
	})

	return phoneName, categories
}

// ParseSpecificationsAlt is the fallback extraction method for the markup
// that tags label/value cells inside a dedicated specs container. Results
// are merged into categories.
func ParseSpecificationsAlt(doc *goquery.Document, categories map[string]map[string]string) {
	doc.Find("#specs-list table").Each(func(_ int, table *goquery.Selection) {
		header := table.Find("th").First()
		if header.Length() == 0 {
			return
		}
		category := strings.TrimSpace(header.Text())
		categories[category] = map[string]string{}

		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			labels := row.Find("td.ttl")
			values := row.Find("td.nfo")

			n := labels.Length()
			if values.Length() < n {
				n = values.Length()
			}
			for i := 0; i < n; i++ {
				name := textutil.CollapseSpace(labels.Eq(i).Text())
				value := textutil.CollapseSpace(values.Eq(i).Text())
				if name != "" && value != "" {
					categories[category][name] = value
				}
			}
		})
	})
}

// ScrapeSpecifications fetches a spec page and extracts its categorized
// fields. When the primary method finds at most alternateThreshold
// categories the fallback method runs over the same category map; the
// threshold is a heuristic for "primary found nothing", not a verified
// condition.
func (c *Client) ScrapeSpecifications(ctx context.Context, specURL string, alternateThreshold int) (string, map[string]map[string]string, error) {
	ctx, span := tracer.Start(ctx, "client:ScrapeSpecifications")
	defer span.End()

	doc, _, err := c.FetchDocument(ctx, specURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch spec page")
		return "", nil, err
	}

	phoneName, categories := ParseSpecifications(doc)
	if len(categories) <= alternateThreshold {
		span.AddEvent("primary extraction near-empty, trying specs-list fallback")
		ParseSpecificationsAlt(doc, categories)
	}

	span.SetAttributes(attribute.Int("categories", len(categories)))
	return phoneName, categories, nil
}
