// Package gsmarena scrapes review, specification and picture pages from the
// GSMArena phone catalog. It owns everything that looks at one fetched
// document; batch orchestration lives in the service packages.
package gsmarena

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"gsmarena-scraper/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/gsmarena")

const DefaultBaseURL = "https://www.gsmarena.com/"

// The descriptive header set attached to every request. The site serves
// plain GETs; no auth, no cookies.
var defaultHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.9",
	"Connection":                "keep-alive",
	"Referer":                   "https://www.gsmarena.com/",
	"Upgrade-Insecure-Requests": "1",
}

type Client struct {
	Http *resty.Client
	base *url.URL
}

type ClientOptions struct {
	// BaseUrl defaults to the public site; overridable for tests.
	BaseUrl string
	// Timeout defaults to 15 seconds and covers every request, including
	// image downloads.
	Timeout time.Duration
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 15
	}

	base, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeaders(defaultHeaders)
	client.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(client, "scrapers/gsmarena/http")

	return &Client{
		Http: client,
		base: base,
	}, nil
}

// Resolve turns a possibly-relative href from a page into an absolute URL
// under the client's base.
func (c *Client) Resolve(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return c.base.ResolveReference(ref).String()
}

// FetchDocument GETs a page and parses it. The returned byte count is the
// raw body length, which the review lister uses to tell an empty result page
// from a trivially-short error page.
func (c *Client) FetchDocument(ctx context.Context, link string) (*goquery.Document, int, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		return nil, 0, err
	}
	if res.IsError() {
		return nil, len(res.Body()), fmt.Errorf("unexpected status %s for %s", res.Status(), link)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, len(res.Body()), err
	}
	return doc, len(res.Body()), nil
}
