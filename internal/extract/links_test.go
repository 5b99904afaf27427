package extract

import (
	"log/slog"
	"os"
	"testing"

	"github.com/newsprowl/newsprowl/internal/config"
	"github.com/newsprowl/newsprowl/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Site.BaseURL = "https://www.nrinow.news"
	return cfg
}

const resultsHTML = `<!DOCTYPE html>
<html>
<body>
	<div class="td-main-content-wrap">
		<h3 class="entry-title"><a href="https://www.nrinow.news/2024/03/council-vote/">Council vote</a></h3>
		<h3 class="entry-title"><a href="/2024/03/school-budget/">School budget</a></h3>
		<h3 class="entry-title"><a href="https://www.nrinow.news/2024/03/council-vote/">Council vote again</a></h3>
		<h3 class="entry-title"><a href="https://www.nrinow.news/category/sports/">Sports section</a></h3>
	</div>
	<aside>
		<a href="https://www.nrinow.news/2024/01/sidebar-story/">Sidebar story</a>
	</aside>
</body>
</html>`

func TestLinkExtractorHeadlineStrategy(t *testing.T) {
	le := NewLinkExtractor(testConfig(), testLogger)
	page := types.NewFetchedPage("https://www.nrinow.news/?s=council", resultsHTML)

	urls, err := le.Extract(page)
	if err != nil {
		t.Fatalf("extract error: %v", err)
	}

	want := []string{
		"https://www.nrinow.news/2024/03/council-vote/",
		"https://www.nrinow.news/2024/03/school-budget/",
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

func TestLinkExtractorAnchorFallback(t *testing.T) {
	// No result headlines at all; the extractor should sweep every anchor.
	html := `<html><body>
		<a href="https://www.nrinow.news/2024/05/flood-warning/">Flood warning</a>
		<a href="https://www.nrinow.news/2024/05/flood-warning/#comments">12 comments</a>
		<a href="https://www.nrinow.news/page/2/?s=flood">Next</a>
		<a href="https://other.example.com/2024/05/offsite/">Offsite</a>
		<a href="https://www.nrinow.news/about/">About</a>
	</body></html>`

	le := NewLinkExtractor(testConfig(), testLogger)
	page := types.NewFetchedPage("https://www.nrinow.news/?s=flood", html)

	urls, err := le.Extract(page)
	if err != nil {
		t.Fatalf("extract error: %v", err)
	}
	if len(urls) != 1 || urls[0] != "https://www.nrinow.news/2024/05/flood-warning/" {
		t.Fatalf("expected single article url, got %v", urls)
	}
}

func TestLinkExtractorAccept(t *testing.T) {
	le := NewLinkExtractor(testConfig(), testLogger)

	cases := []struct {
		url  string
		want bool
	}{
		{"https://www.nrinow.news/2024/03/story/", true},
		{"https://www.nrinow.news/2019/12/old-story/", true},
		{"https://www.nrinow.news/category/news/", false},
		{"https://www.nrinow.news/page/3/?s=tax", false},
		{"https://www.nrinow.news/2024/03/story/#comments", false},
		{"https://www.nrinow.news/2024/03/story/#respond", false},
		{"https://evil.example.com/2024/03/story/", false},
	}
	for _, tc := range cases {
		if got := le.Accept(tc.url); got != tc.want {
			t.Errorf("Accept(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}
