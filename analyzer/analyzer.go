package analyzer

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"github.com/seo-optimizer/competitor/relay"
)

// Selectors are compiled once and shared by every extraction.
var (
	titleSelector       = cascadia.MustCompile("title")
	descriptionSelector = cascadia.MustCompile("meta[name='description']")
	h1Selector          = cascadia.MustCompile("h1")
	h2Selector          = cascadia.MustCompile("h2")
	h3Selector          = cascadia.MustCompile("h3")
	anchorSelector      = cascadia.MustCompile("a")
	imageSelector       = cascadia.MustCompile("img")
)

// Extractor turns a page URL into a SignalRecord.
type Extractor struct {
	fetcher relay.Fetcher
}

// New creates an Extractor that retrieves pages with fetcher.
func New(fetcher relay.Fetcher) *Extractor {
	return &Extractor{fetcher: fetcher}
}

// Extract retrieves pageURL and derives its SEO signals. On any failure it
// returns a nil record and an *ExtractionError.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (*SignalRecord, error) {
	start := time.Now()

	body, err := e.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		log.Debug().Err(err).Str("url", pageURL).Msg("page retrieval failed")
		return nil, &ExtractionError{URL: pageURL, Err: err}
	}

	record, err := ExtractHTML(pageURL, body)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("url", pageURL).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("page signals extracted")
	return record, nil
}

// ExtractHTML parses rawHTML as the document served at pageURL and derives
// its SEO signals.
func ExtractHTML(pageURL, rawHTML string) (*SignalRecord, error) {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, &ExtractionError{URL: pageURL, Err: err}
	}
	doc := goquery.NewDocumentFromNode(root)

	return &SignalRecord{
		URL:         pageURL,
		Title:       extractTitle(doc),
		Description: extractDescription(doc),
		Headings: HeadingCounts{
			H1: doc.FindMatcher(h1Selector).Length(),
			H2: doc.FindMatcher(h2Selector).Length(),
			H3: doc.FindMatcher(h3Selector).Length(),
		},
		Links:  countLinks(doc, pageURL),
		Images: countImages(doc),
	}, nil
}

func extractTitle(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.FindMatcher(titleSelector).First().Text())
	if title == "" {
		return NoTitle
	}
	return title
}

func extractDescription(doc *goquery.Document) string {
	description, _ := doc.FindMatcher(descriptionSelector).First().Attr("content")
	if description == "" {
		return NoDescription
	}
	return description
}

// countLinks classifies every anchor: an anchor is internal when its resolved
// href contains pageURL verbatim. The test is a plain substring match.
func countLinks(doc *goquery.Document, pageURL string) LinkCounts {
	base, _ := url.Parse(pageURL)

	links := LinkCounts{}
	doc.FindMatcher(anchorSelector).Each(func(_ int, s *goquery.Selection) {
		links.Total++
		if strings.Contains(resolveHref(base, s), pageURL) {
			links.Internal++
		}
	})
	links.External = links.Total - links.Internal
	return links
}

// resolveHref returns the absolute form of an anchor's href, or "" when the
// anchor has none. Unparseable hrefs are returned as written.
func resolveHref(base *url.URL, s *goquery.Selection) string {
	href, exists := s.Attr("href")
	if !exists {
		return ""
	}
	href = strings.TrimSpace(href)
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func countImages(doc *goquery.Document) ImageCounts {
	images := ImageCounts{}
	doc.FindMatcher(imageSelector).Each(func(_ int, s *goquery.Selection) {
		images.Total++
		if alt, _ := s.Attr("alt"); alt == "" {
			images.MissingAlt++
		}
	})
	return images
}
