package crawl

import (
	"context"
	"log/slog"
	"time"

	"github.com/newsprowl/newsprowl/internal/config"
	"github.com/newsprowl/newsprowl/internal/extract"
	"github.com/newsprowl/newsprowl/internal/fetcher"
	"github.com/newsprowl/newsprowl/internal/types"
)

// Stats summarizes one crawl session.
type Stats struct {
	Keyword      string
	PagesVisited int
	Articles     int
	Failures     int
	Duration     time.Duration
}

// Session runs a crawl end to end: discover article URLs, then visit them
// one at a time with pacing gaps. Everything is sequential; one browser
// page at a time keeps the traffic profile indistinguishable from a reader.
type Session struct {
	cfg       *config.Config
	fetcher   fetcher.PageFetcher
	links     *extract.LinkExtractor
	articles  *extract.ArticleExtractor
	paginator *Paginator
	pacer     *fetcher.Pacer
	logger    *slog.Logger
}

// NewSession wires a crawl session together.
func NewSession(cfg *config.Config, pf fetcher.PageFetcher, logger *slog.Logger) *Session {
	links := extract.NewLinkExtractor(cfg, logger)
	pacer := fetcher.NewPacer()
	return &Session{
		cfg:       cfg,
		fetcher:   pf,
		links:     links,
		articles:  extract.NewArticleExtractor(logger),
		paginator: NewPaginator(cfg, links, pf, pacer, logger),
		pacer:     pacer,
		logger:    logger.With("component", "session"),
	}
}

// Search crawls the articles matching a keyword. Results come back in
// search-result order; a fetch failure yields a failure record in place,
// never a gap.
func (s *Session) Search(ctx context.Context, keyword string) ([]types.ArticleRecord, *Stats, error) {
	return s.SearchExcluding(ctx, keyword, nil)
}

// SearchExcluding is Search with a pre-seeded frontier: URLs already in it
// are never fetched or re-emitted.
func (s *Session) SearchExcluding(ctx context.Context, keyword string, seen *Frontier) ([]types.ArticleRecord, *Stats, error) {
	start := time.Now()
	s.logger.Info("search crawl starting", "keyword", keyword)

	urls, pagesVisited, err := s.paginator.Collect(ctx, keyword, seen)
	if err != nil {
		return nil, &Stats{Keyword: keyword, PagesVisited: pagesVisited, Duration: time.Since(start)}, err
	}

	records := s.visit(ctx, urls, keyword)

	stats := s.finish(start, keyword, pagesVisited, records)
	return records, stats, nil
}

// Latest crawls the newest articles linked from the site front page.
func (s *Session) Latest(ctx context.Context) ([]types.ArticleRecord, *Stats, error) {
	start := time.Now()
	s.logger.Info("latest crawl starting", "site", s.cfg.Site.BaseURL)

	page, err := s.fetcher.Fetch(ctx, s.cfg.Site.BaseURL)
	if err != nil {
		return nil, &Stats{Duration: time.Since(start)}, err
	}

	candidates, err := s.links.Extract(page)
	if err != nil {
		return nil, &Stats{PagesVisited: 1, Duration: time.Since(start)}, err
	}
	if len(candidates) == 0 {
		return nil, &Stats{PagesVisited: 1, Duration: time.Since(start)}, types.ErrNoResults
	}

	frontier := NewFrontier()
	var urls []string
	for _, u := range candidates {
		if frontier.Admit(u) {
			urls = append(urls, u)
		}
		if len(urls) >= s.cfg.Crawl.MaxArticles {
			break
		}
	}

	records := s.visit(ctx, urls, "")

	stats := s.finish(start, "", 1, records)
	return records, stats, nil
}

// Article fetches and extracts a single article URL.
func (s *Session) Article(ctx context.Context, rawURL string) (types.ArticleRecord, error) {
	s.pacer.ArticleGap(&s.cfg.Crawl)
	page, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		s.logger.Warn("article fetch failed", "url", rawURL, "error", err)
		return types.FailedArticle(rawURL, "Failed to load page"), nil
	}
	return s.articles.Extract(page), nil
}

// visit fetches and extracts each URL in order. The pacing gap is applied
// before every fetch regardless of the previous outcome.
func (s *Session) visit(ctx context.Context, urls []string, keyword string) []types.ArticleRecord {
	records := make([]types.ArticleRecord, 0, len(urls))
	for i, u := range urls {
		if ctx.Err() != nil {
			s.logger.Warn("crawl cancelled", "visited", i, "of", len(urls))
			break
		}

		s.pacer.ArticleGap(&s.cfg.Crawl)
		s.logger.Info("visiting article", "rank", i+1, "of", len(urls), "url", u)

		var record types.ArticleRecord
		page, err := s.fetcher.Fetch(ctx, u)
		if err != nil {
			s.logger.Warn("article fetch failed", "url", u, "error", err)
			record = types.FailedArticle(u, "Failed to load page")
		} else {
			record = s.articles.Extract(page)
		}

		if keyword != "" {
			record.SearchKeyword = keyword
			record.SearchRank = i + 1
		}
		records = append(records, record)
	}
	return records
}

// finish logs and returns the session statistics.
func (s *Session) finish(start time.Time, keyword string, pagesVisited int, records []types.ArticleRecord) *Stats {
	stats := &Stats{
		Keyword:      keyword,
		PagesVisited: pagesVisited,
		Articles:     len(records),
		Duration:     time.Since(start),
	}
	for _, r := range records {
		if !r.Success {
			stats.Failures++
		}
	}
	s.logger.Info("crawl finished",
		"keyword", keyword,
		"pages", stats.PagesVisited,
		"articles", stats.Articles,
		"failures", stats.Failures,
		"duration", stats.Duration,
	)
	return stats
}
