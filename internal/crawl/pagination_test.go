package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/newsprowl/newsprowl/internal/config"
	"github.com/newsprowl/newsprowl/internal/extract"
	"github.com/newsprowl/newsprowl/internal/fetcher"
	"github.com/newsprowl/newsprowl/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Site.BaseURL = "https://www.nrinow.news"
	cfg.Site.ResultsPerPage = 7
	cfg.Crawl.MaxArticles = 10
	cfg.Crawl.MaxPages = 15
	cfg.Crawl.PageDelayMin = 0
	cfg.Crawl.PageDelayMax = 0
	cfg.Crawl.ArticleDelayMin = 0
	cfg.Crawl.ArticleDelayMax = 0
	return cfg
}

// fakeFetcher serves canned pages and records every fetch.
type fakeFetcher struct {
	pages map[string]string
	fail  map[string]bool
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) (*types.FetchedPage, error) {
	f.calls = append(f.calls, rawURL)
	if f.fail[rawURL] {
		return nil, &types.FetchError{URL: rawURL, Err: errors.New("connection reset")}
	}
	html, ok := f.pages[rawURL]
	if !ok {
		return nil, &types.FetchError{URL: rawURL, Err: types.ErrEmptyPage}
	}
	return types.NewFetchedPage(rawURL, html), nil
}

func (f *fakeFetcher) Close() error { return nil }
func (f *fakeFetcher) Type() string { return "fake" }

// resultsPage renders a search results page with the given article links
// and an optional pagination bar.
func resultsPage(links []string, pageNav string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="td-main-content-wrap">`)
	for _, u := range links {
		fmt.Fprintf(&b, `<h3 class="entry-title"><a href="%s">headline</a></h3>`, u)
	}
	b.WriteString(`</div>`)
	b.WriteString(pageNav)
	b.WriteString(`</body></html>`)
	return b.String()
}

func storyURLs(from, to int) []string {
	var urls []string
	for i := from; i <= to; i++ {
		urls = append(urls, fmt.Sprintf("https://www.nrinow.news/2024/03/story-%d/", i))
	}
	return urls
}

func newTestPaginator(cfg *config.Config, ff *fakeFetcher) *Paginator {
	links := extract.NewLinkExtractor(cfg, testLogger)
	return NewPaginator(cfg, links, ff, fetcher.NewPacer(), testLogger)
}

func TestPaginatorSearchURL(t *testing.T) {
	p := newTestPaginator(testConfig(), &fakeFetcher{})

	if got := p.SearchURL("tax", 1); got != "https://www.nrinow.news/?s=tax" {
		t.Errorf("page 1 url: %q", got)
	}
	if got := p.SearchURL("tax", 3); got != "https://www.nrinow.news/page/3/?s=tax" {
		t.Errorf("page 3 url: %q", got)
	}
	if got := p.SearchURL("town council", 1); got != "https://www.nrinow.news/?s=town+council" {
		t.Errorf("encoded keyword: %q", got)
	}
}

func TestPaginatorStopsAtMaxArticles(t *testing.T) {
	nav := `<div class="page-nav"><span class="pages">Page 1 of 3</span></div>`
	ff := &fakeFetcher{pages: map[string]string{
		"https://www.nrinow.news/?s=tax":        resultsPage(storyURLs(1, 7), nav),
		"https://www.nrinow.news/page/2/?s=tax": resultsPage(storyURLs(8, 14), nav),
		"https://www.nrinow.news/page/3/?s=tax": resultsPage(storyURLs(15, 21), nav),
	}}

	p := newTestPaginator(testConfig(), ff)
	urls, pages, err := p.Collect(context.Background(), "tax", nil)
	if err != nil {
		t.Fatalf("collect error: %v", err)
	}
	if pages != 2 {
		t.Errorf("expected 2 pages visited, got %d", pages)
	}
	if len(urls) != 10 {
		t.Fatalf("expected 10 urls after truncation, got %d", len(urls))
	}
	if urls[0] != "https://www.nrinow.news/2024/03/story-1/" || urls[9] != "https://www.nrinow.news/2024/03/story-10/" {
		t.Errorf("discovery order broken: first=%q last=%q", urls[0], urls[9])
	}
}

func TestPaginatorStopsWithoutContinuationEvidence(t *testing.T) {
	// Three results, no pagination bar, below a full page: nothing says a
	// second page exists.
	ff := &fakeFetcher{pages: map[string]string{
		"https://www.nrinow.news/?s=rare": resultsPage(storyURLs(1, 3), ""),
	}}

	p := newTestPaginator(testConfig(), ff)
	urls, pages, err := p.Collect(context.Background(), "rare", nil)
	if err != nil {
		t.Fatalf("collect error: %v", err)
	}
	if pages != 1 || len(urls) != 3 {
		t.Errorf("expected 1 page / 3 urls, got %d / %d", pages, len(urls))
	}
	if len(ff.calls) != 1 {
		t.Errorf("expected a single fetch, got %v", ff.calls)
	}
}

func TestPaginatorFullPageHeuristic(t *testing.T) {
	// Exactly a full page of results and no pagination markup at all: the
	// count alone justifies trying page two.
	ff := &fakeFetcher{pages: map[string]string{
		"https://www.nrinow.news/?s=tax":        resultsPage(storyURLs(1, 7), ""),
		"https://www.nrinow.news/page/2/?s=tax": resultsPage(storyURLs(8, 9), ""),
	}}

	p := newTestPaginator(testConfig(), ff)
	urls, pages, err := p.Collect(context.Background(), "tax", nil)
	if err != nil {
		t.Fatalf("collect error: %v", err)
	}
	if pages != 2 || len(urls) != 9 {
		t.Errorf("expected 2 pages / 9 urls, got %d / %d", pages, len(urls))
	}
}

func TestPaginatorDuplicatePageStops(t *testing.T) {
	// Page two serves the same results again; zero new admissions must end
	// the walk even though the pagination bar claims more pages.
	nav := `<div class="page-nav"><span class="pages">Page 1 of 5</span></div>`
	same := resultsPage(storyURLs(1, 7), nav)
	ff := &fakeFetcher{pages: map[string]string{
		"https://www.nrinow.news/?s=tax":        same,
		"https://www.nrinow.news/page/2/?s=tax": same,
	}}

	p := newTestPaginator(testConfig(), ff)
	urls, pages, err := p.Collect(context.Background(), "tax", nil)
	if err != nil {
		t.Fatalf("collect error: %v", err)
	}
	if pages != 2 || len(urls) != 7 {
		t.Errorf("expected 2 pages / 7 urls, got %d / %d", pages, len(urls))
	}
}

func TestPaginatorLaterPageFailureKeepsResults(t *testing.T) {
	ff := &fakeFetcher{
		pages: map[string]string{
			"https://www.nrinow.news/?s=tax": resultsPage(storyURLs(1, 7), ""),
		},
		fail: map[string]bool{
			"https://www.nrinow.news/page/2/?s=tax": true,
		},
	}

	p := newTestPaginator(testConfig(), ff)
	urls, pages, err := p.Collect(context.Background(), "tax", nil)
	if err != nil {
		t.Fatalf("expected partial results, got error: %v", err)
	}
	if pages != 1 || len(urls) != 7 {
		t.Errorf("expected 1 page / 7 urls, got %d / %d", pages, len(urls))
	}
}

func TestPaginatorFirstPageFailure(t *testing.T) {
	ff := &fakeFetcher{fail: map[string]bool{
		"https://www.nrinow.news/?s=tax": true,
	}}

	p := newTestPaginator(testConfig(), ff)
	if _, _, err := p.Collect(context.Background(), "tax", nil); err == nil {
		t.Fatal("expected error on first-page failure")
	}
}

func TestPaginatorExcludesSeededURLs(t *testing.T) {
	// URLs already known before the crawl starts must never be re-emitted,
	// including canonical variants of the seeded form.
	ff := &fakeFetcher{pages: map[string]string{
		"https://www.nrinow.news/?s=tax": resultsPage(storyURLs(1, 5), ""),
	}}

	seen := NewFrontier()
	seen.Admit("https://www.nrinow.news/2024/03/story-2/")
	seen.Admit("https://www.nrinow.news/2024/03/story-4") // no trailing slash

	p := newTestPaginator(testConfig(), ff)
	urls, _, err := p.Collect(context.Background(), "tax", seen)
	if err != nil {
		t.Fatalf("collect error: %v", err)
	}

	want := []string{
		"https://www.nrinow.news/2024/03/story-1/",
		"https://www.nrinow.news/2024/03/story-3/",
		"https://www.nrinow.news/2024/03/story-5/",
	}
	if len(urls) != len(want) {
		t.Fatalf("expected %d urls, got %d: %v", len(want), len(urls), urls)
	}
	for i, u := range want {
		if urls[i] != u {
			t.Errorf("url %d: expected %q, got %q", i, u, urls[i])
		}
	}
}

func TestPaginatorNoResults(t *testing.T) {
	ff := &fakeFetcher{pages: map[string]string{
		"https://www.nrinow.news/?s=gibberish": `<html><body><p>Nothing found.</p></body></html>`,
	}}

	p := newTestPaginator(testConfig(), ff)
	_, _, err := p.Collect(context.Background(), "gibberish", nil)
	if !errors.Is(err, types.ErrNoResults) {
		t.Fatalf("expected ErrNoResults, got %v", err)
	}
}
