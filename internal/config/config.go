package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for newsprowl.
type Config struct {
	Site    SiteConfig    `mapstructure:"site"    yaml:"site"`
	Fetcher FetcherConfig `mapstructure:"fetcher" yaml:"fetcher"`
	Crawl   CrawlConfig   `mapstructure:"crawl"   yaml:"crawl"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// SiteConfig describes the target site's URL layout and template
// assumptions. Selector tables live with the extractors; everything that
// is a per-site number or path pattern is injectable here.
type SiteConfig struct {
	// BaseURL is the canonical origin, e.g. "https://www.nrinow.news".
	// Only article URLs starting with this prefix are accepted.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// ResultsPerPage is the nominal number of results on a full search
	// page. A page returning at least this many candidates is weak
	// evidence that more pages exist. Template-dependent; may drift.
	ResultsPerPage int `mapstructure:"results_per_page" yaml:"results_per_page"`
}

// FetcherConfig controls how pages are rendered into HTML.
type FetcherConfig struct {
	// Type selects the fetcher: "browser" (headless, stealth) or "http".
	Type string `mapstructure:"type" yaml:"type"`

	// Headless disables the visible browser window. Some challenge pages
	// only pass with a visible window; headless is best-effort.
	Headless bool `mapstructure:"headless" yaml:"headless"`

	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`

	// StabilizeWait is how long the DOM must stay unchanged before the
	// rendered HTML is captured.
	StabilizeWait time.Duration `mapstructure:"stabilize_wait" yaml:"stabilize_wait"`

	WindowWidth  int `mapstructure:"window_width"  yaml:"window_width"`
	WindowHeight int `mapstructure:"window_height" yaml:"window_height"`

	MaxBodySize int64    `mapstructure:"max_body_size" yaml:"max_body_size"`
	UserAgents  []string `mapstructure:"user_agents"   yaml:"user_agents"`
}

// CrawlConfig bounds a crawl session and paces its requests.
type CrawlConfig struct {
	MaxArticles int `mapstructure:"max_articles" yaml:"max_articles"`
	MaxPages    int `mapstructure:"max_pages"    yaml:"max_pages"`

	// Pacing gaps are mandatory minimums applied before every fetch of the
	// given kind, jittered up to the max, regardless of prior outcome.
	PageDelayMin    time.Duration `mapstructure:"page_delay_min"    yaml:"page_delay_min"`
	PageDelayMax    time.Duration `mapstructure:"page_delay_max"    yaml:"page_delay_max"`
	ArticleDelayMin time.Duration `mapstructure:"article_delay_min" yaml:"article_delay_min"`
	ArticleDelayMax time.Duration `mapstructure:"article_delay_max" yaml:"article_delay_max"`
}

// StorageConfig controls output.
type StorageConfig struct {
	// Type is one of: json, jsonl, files, mongo.
	Type       string `mapstructure:"type"        yaml:"type"`
	OutputPath string `mapstructure:"output_path" yaml:"output_path"`

	Mongo MongoConfig `mapstructure:"mongo" yaml:"mongo"`
}

// MongoConfig holds MongoDB backend settings.
type MongoConfig struct {
	URI        string `mapstructure:"uri"        yaml:"uri"`
	Database   string `mapstructure:"database"   yaml:"database"`
	Collection string `mapstructure:"collection" yaml:"collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults for the target
// site's current template.
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			BaseURL:        "https://www.nrinow.news",
			ResultsPerPage: 7,
		},
		Fetcher: FetcherConfig{
			Type:           "browser",
			Headless:       true,
			RequestTimeout: 30 * time.Second,
			StabilizeWait:  300 * time.Millisecond,
			WindowWidth:    1920,
			WindowHeight:   1080,
			MaxBodySize:    10 * 1024 * 1024, // 10MB
			UserAgents: []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			},
		},
		Crawl: CrawlConfig{
			MaxArticles:     10,
			MaxPages:        15,
			PageDelayMin:    2 * time.Second,
			PageDelayMax:    4 * time.Second,
			ArticleDelayMin: 3 * time.Second,
			ArticleDelayMax: 7 * time.Second,
		},
		Storage: StorageConfig{
			Type:       "json",
			OutputPath: "./output",
			Mongo: MongoConfig{
				Database:   "newsprowl",
				Collection: "articles",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
