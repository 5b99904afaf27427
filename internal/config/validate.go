package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/newsprowl/newsprowl/internal/types"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	u, err := url.Parse(cfg.Site.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("site.base_url %q is not an absolute URL", cfg.Site.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("site.base_url must be http(s), got %q", u.Scheme)
	}
	if cfg.Site.ResultsPerPage < 1 {
		return fmt.Errorf("site.results_per_page must be >= 1, got %d", cfg.Site.ResultsPerPage)
	}

	if cfg.Fetcher.Type != "browser" && cfg.Fetcher.Type != "http" {
		return fmt.Errorf("fetcher.type must be 'browser' or 'http', got %q", cfg.Fetcher.Type)
	}
	if cfg.Fetcher.RequestTimeout <= 0 {
		return fmt.Errorf("fetcher.request_timeout must be > 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}

	if cfg.Crawl.MaxArticles < 1 {
		return fmt.Errorf("crawl.max_articles must be >= 1, got %d", cfg.Crawl.MaxArticles)
	}
	if cfg.Crawl.MaxPages < 1 {
		return fmt.Errorf("crawl.max_pages must be >= 1, got %d", cfg.Crawl.MaxPages)
	}
	if cfg.Crawl.PageDelayMin < 0 || cfg.Crawl.ArticleDelayMin < 0 {
		return fmt.Errorf("crawl delays must be >= 0")
	}
	if cfg.Crawl.PageDelayMax < cfg.Crawl.PageDelayMin {
		return fmt.Errorf("crawl.page_delay_max must be >= crawl.page_delay_min")
	}
	if cfg.Crawl.ArticleDelayMax < cfg.Crawl.ArticleDelayMin {
		return fmt.Errorf("crawl.article_delay_max must be >= crawl.article_delay_min")
	}

	validStorageTypes := map[string]bool{
		"json": true, "jsonl": true, "files": true, "mongo": true,
	}
	if !validStorageTypes[cfg.Storage.Type] {
		return fmt.Errorf("storage.type %q is not supported (valid: json, jsonl, files, mongo)", cfg.Storage.Type)
	}
	if cfg.Storage.Type == "mongo" && cfg.Storage.Mongo.URI == "" {
		return fmt.Errorf("storage.mongo.uri is required when storage.type is 'mongo'")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level %q is not supported (valid: debug, info, warn, error)", cfg.Logging.Level)
	}

	return nil
}

// ValidateArticleURL checks that a user-supplied article URL belongs to the
// configured site. Off-site URLs are a caller-input error, not a crawl error.
func ValidateArticleURL(cfg *Config, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", types.ErrInvalidURL, rawURL)
	}
	if !strings.HasPrefix(rawURL, cfg.Site.BaseURL) {
		return fmt.Errorf("%w: %q is not under %s", types.ErrOffSiteURL, rawURL, cfg.Site.BaseURL)
	}
	return nil
}
