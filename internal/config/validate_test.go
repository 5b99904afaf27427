package config

import "testing"

func TestValidateDefaults(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative base url", func(c *Config) { c.Site.BaseURL = "/news" }},
		{"bad scheme", func(c *Config) { c.Site.BaseURL = "ftp://example.com" }},
		{"zero results per page", func(c *Config) { c.Site.ResultsPerPage = 0 }},
		{"unknown fetcher", func(c *Config) { c.Fetcher.Type = "carrier-pigeon" }},
		{"zero timeout", func(c *Config) { c.Fetcher.RequestTimeout = 0 }},
		{"zero max articles", func(c *Config) { c.Crawl.MaxArticles = 0 }},
		{"inverted page delay", func(c *Config) {
			c.Crawl.PageDelayMin = 5e9
			c.Crawl.PageDelayMax = 1e9
		}},
		{"unknown storage", func(c *Config) { c.Storage.Type = "carrier-pigeon" }},
		{"mongo without uri", func(c *Config) {
			c.Storage.Type = "mongo"
			c.Storage.Mongo.URI = ""
		}},
		{"unknown log level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestValidateArticleURL(t *testing.T) {
	cfg := DefaultConfig()

	if err := ValidateArticleURL(cfg, "https://www.nrinow.news/2024/03/story/"); err != nil {
		t.Errorf("on-site url rejected: %v", err)
	}
	if err := ValidateArticleURL(cfg, "https://other.example.com/2024/03/story/"); err == nil {
		t.Error("off-site url accepted")
	}
}
