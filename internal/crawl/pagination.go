package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/newsprowl/newsprowl/internal/config"
	"github.com/newsprowl/newsprowl/internal/extract"
	"github.com/newsprowl/newsprowl/internal/fetcher"
	"github.com/newsprowl/newsprowl/internal/types"
)

// pageOfLabel matches the "Page X of Y" position indicator in the theme's
// pagination bar.
var pageOfLabel = regexp.MustCompile(`Page\s+(\d+)\s+of\s+(\d+)`)

// Paginator walks a keyword's search result pages, admitting article URLs
// into a frontier until a stop condition fires. Continuation to the next
// page requires at least one positive signal; the signals are independent
// and any one suffices.
type Paginator struct {
	cfg     *config.Config
	links   *extract.LinkExtractor
	fetcher fetcher.PageFetcher
	pacer   *fetcher.Pacer
	logger  *slog.Logger
}

// NewPaginator creates a paginator.
func NewPaginator(cfg *config.Config, links *extract.LinkExtractor, pf fetcher.PageFetcher, pacer *fetcher.Pacer, logger *slog.Logger) *Paginator {
	return &Paginator{
		cfg:     cfg,
		links:   links,
		fetcher: pf,
		pacer:   pacer,
		logger:  logger.With("component", "paginator"),
	}
}

// Collect returns article URLs for a keyword in discovery order, capped at
// the configured article limit, along with the number of result pages
// visited. URLs already in the seen frontier are never re-emitted; callers
// pre-seed it to exclude work from earlier sessions (nil starts empty).
// A failed fetch of the first page is an error; a failed fetch of a later
// page ends collection with what was gathered so far.
func (p *Paginator) Collect(ctx context.Context, keyword string, seen *Frontier) ([]string, int, error) {
	if seen == nil {
		seen = NewFrontier()
	}
	var urls []string
	pagesVisited := 0

	for pageNum := 1; pageNum <= p.cfg.Crawl.MaxPages; pageNum++ {
		if pageNum > 1 {
			p.pacer.PageGap(&p.cfg.Crawl)
		}

		pageURL := p.SearchURL(keyword, pageNum)
		p.logger.Info("fetching results page", "page", pageNum, "url", pageURL)

		page, err := p.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			if pageNum == 1 {
				return nil, pagesVisited, fmt.Errorf("fetch first results page: %w", err)
			}
			p.logger.Warn("results page fetch failed, stopping pagination", "page", pageNum, "error", err)
			break
		}
		pagesVisited++

		candidates, err := p.links.Extract(page)
		if err != nil {
			p.logger.Warn("link extraction failed, stopping pagination", "page", pageNum, "error", err)
			break
		}

		admitted := 0
		for _, u := range candidates {
			if seen.Admit(u) {
				admitted++
				urls = append(urls, u)
			}
		}
		p.logger.Info("results page processed",
			"page", pageNum,
			"candidates", len(candidates),
			"new", admitted,
			"total", len(urls),
		)

		// A page contributing nothing new means we're looping or done.
		if admitted == 0 {
			break
		}
		if len(urls) >= p.cfg.Crawl.MaxArticles {
			break
		}

		doc, err := page.Document()
		if err != nil || !p.hasNextPage(doc, pageNum, len(candidates)) {
			break
		}
	}

	if len(urls) == 0 {
		return nil, pagesVisited, types.ErrNoResults
	}
	if len(urls) > p.cfg.Crawl.MaxArticles {
		urls = urls[:p.cfg.Crawl.MaxArticles]
	}
	return urls, pagesVisited, nil
}

// SearchURL builds the URL of the numbered search results page. Page one
// lives at the site root; later pages use the /page/N/ path prefix.
func (p *Paginator) SearchURL(keyword string, pageNum int) string {
	base := strings.TrimRight(p.cfg.Site.BaseURL, "/")
	query := url.Values{"s": {keyword}}.Encode()
	if pageNum <= 1 {
		return fmt.Sprintf("%s/?%s", base, query)
	}
	return fmt.Sprintf("%s/page/%d/?%s", base, pageNum, query)
}

// hasNextPage reports whether any continuation signal is present on the
// current results page.
func (p *Paginator) hasNextPage(doc *goquery.Document, currentPage, candidateCount int) bool {
	if cur, total, ok := pagePosition(doc); ok && cur < total {
		p.logger.Debug("continuation: position label", "current", cur, "total", total)
		return true
	}

	nextFragment := fmt.Sprintf("/page/%d/", currentPage+1)

	// Theme pagination bar linking to the next page.
	found := false
	doc.Find("div.page-nav a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if href, _ := a.Attr("href"); strings.Contains(href, nextFragment) {
			found = true
			return false
		}
		return true
	})
	if found {
		p.logger.Debug("continuation: pagination bar link", "page", currentPage+1)
		return true
	}

	// Any search link to the next page, wherever it sits in the markup.
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if strings.Contains(href, nextFragment) && strings.Contains(href, "?s=") {
			found = true
			return false
		}
		return true
	})
	if found {
		p.logger.Debug("continuation: explicit next-page search link", "page", currentPage+1)
		return true
	}

	// A full page of results suggests more exist even without visible
	// pagination markup.
	if candidateCount >= p.cfg.Site.ResultsPerPage {
		p.logger.Debug("continuation: full results page", "candidates", candidateCount)
		return true
	}

	return false
}

// pagePosition parses the "Page X of Y" label from the pagination bar.
func pagePosition(doc *goquery.Document) (current, total int, ok bool) {
	label := doc.Find("div.page-nav span.pages").First().Text()
	m := pageOfLabel.FindStringSubmatch(label)
	if m == nil {
		return 0, 0, false
	}
	current, err1 := strconv.Atoi(m[1])
	total, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return current, total, true
}
