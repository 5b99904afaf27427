package extract

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/newsprowl/newsprowl/internal/config"
	"github.com/newsprowl/newsprowl/internal/types"
)

// yearSegment matches the date path segment WordPress puts in permalinks,
// e.g. /2024/03/some-story/. Its presence distinguishes article URLs from
// category, tag, and pagination URLs on the same host.
var yearSegment = regexp.MustCompile(`/20\d{2}/`)

// LinkExtractor finds article links on a search results page. Strategies
// are tried in order; the first one yielding at least one accepted
// candidate wins exclusively.
type LinkExtractor struct {
	baseURL string
	logger  *slog.Logger
}

// NewLinkExtractor creates a link extractor bound to the configured site.
func NewLinkExtractor(cfg *config.Config, logger *slog.Logger) *LinkExtractor {
	return &LinkExtractor{
		baseURL: strings.TrimRight(cfg.Site.BaseURL, "/"),
		logger:  logger.With("component", "link_extractor"),
	}
}

// Extract returns accepted article URLs from a results page in document
// order, deduplicated within the page.
func (le *LinkExtractor) Extract(page *types.FetchedPage) ([]string, error) {
	doc, err := page.Document()
	if err != nil {
		return nil, &types.ExtractError{URL: page.URL, Stage: "links", Err: err}
	}

	// Strategy 1: result headlines, scoped to the main content column when
	// the theme provides one. Avoids picking up sidebar and footer links.
	candidates := le.fromHeadlines(doc, page.URL)
	if len(candidates) > 0 {
		le.logger.Debug("links extracted", "strategy", "headlines", "count", len(candidates))
		return candidates, nil
	}

	// Strategy 2: every anchor on the page, filtered by the acceptance
	// predicate. Noisy but survives template changes.
	candidates = le.fromAllAnchors(doc, page.URL)
	le.logger.Debug("links extracted", "strategy", "all_anchors", "count", len(candidates))
	return candidates, nil
}

// fromHeadlines takes the first anchor inside each result headline.
func (le *LinkExtractor) fromHeadlines(doc *goquery.Document, pageURL string) []string {
	scope := doc.Selection
	if main := doc.Find("div.td-main-content-wrap"); main.Length() > 0 {
		scope = main
	}

	var urls []string
	seen := make(map[string]bool)
	scope.Find("h3.entry-title").Each(func(_ int, title *goquery.Selection) {
		href, ok := title.Find("a").First().Attr("href")
		if !ok {
			return
		}
		resolved := le.resolve(href, pageURL)
		if resolved == "" || !le.Accept(resolved) || seen[resolved] {
			return
		}
		seen[resolved] = true
		urls = append(urls, resolved)
	})
	return urls
}

// fromAllAnchors scans every link on the page.
func (le *LinkExtractor) fromAllAnchors(doc *goquery.Document, pageURL string) []string {
	var urls []string
	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		resolved := le.resolve(href, pageURL)
		if resolved == "" || !le.Accept(resolved) || seen[resolved] {
			return
		}
		seen[resolved] = true
		urls = append(urls, resolved)
	})
	return urls
}

// Accept reports whether a URL looks like an on-site article permalink.
func (le *LinkExtractor) Accept(rawURL string) bool {
	if !strings.HasPrefix(rawURL, le.baseURL) {
		return false
	}
	if !yearSegment.MatchString(rawURL) {
		return false
	}
	if strings.Contains(rawURL, "/page/") {
		return false
	}
	if strings.HasSuffix(rawURL, "#comments") || strings.HasSuffix(rawURL, "#respond") {
		return false
	}
	return true
}

// resolve makes href absolute against the page it appeared on.
func (le *LinkExtractor) resolve(href, pageURL string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
