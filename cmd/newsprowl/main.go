package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/newsprowl/newsprowl/internal/config"
	"github.com/newsprowl/newsprowl/internal/crawl"
	"github.com/newsprowl/newsprowl/internal/fetcher"
	"github.com/newsprowl/newsprowl/internal/storage"
	"github.com/newsprowl/newsprowl/internal/types"
	"github.com/newsprowl/newsprowl/internal/wpapi"
)

var (
	cfgFile     string
	verbose     bool
	siteURL     string
	fetcherType string
	headless    bool
	outputPath  string
	outputType  string
	maxArticles int
	maxPages    int

	// api subcommand flags
	apiPerPage    int
	apiAfter      string
	apiBefore     string
	apiCategories []int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "newsprowl",
		Short: "newsprowl — local news article crawler",
		Long: `newsprowl crawls a WordPress news site and extracts structured articles.

Features:
  • Keyword search crawling with automatic pagination
  • Stealth headless-browser fetching (Cloudflare-tolerant)
  • Multi-strategy extraction: title, body, images, comments
  • Human-paced sequential crawling
  • JSON, JSONL, per-article files, MongoDB export
  • WordPress REST API mode for sites that allow it`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&siteURL, "site", "", "target site base URL")
	rootCmd.PersistentFlags().StringVar(&fetcherType, "fetcher", "", "fetcher type: browser, http")
	rootCmd.PersistentFlags().BoolVar(&headless, "headless", true, "run the browser headless")
	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "output directory or file path")
	rootCmd.PersistentFlags().StringVarP(&outputType, "format", "f", "", "output format: json, jsonl, files, mongo")

	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(latestCmd())
	rootCmd.AddCommand(articleCmd())
	rootCmd.AddCommand(apiCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// searchCmd creates the "search" subcommand.
func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [keyword]",
		Short: "Crawl articles matching a search keyword",
		Long:  "Search the site for a keyword, walk the result pages, and extract every matching article.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrawl(func(ctx context.Context, s *crawl.Session) ([]types.ArticleRecord, *crawl.Stats, error) {
				return s.Search(ctx, args[0])
			})
		},
	}
	cmd.Flags().IntVarP(&maxArticles, "max-articles", "m", 0, "maximum articles to extract (0 = config default)")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "maximum result pages to visit (0 = config default)")
	return cmd
}

// latestCmd creates the "latest" subcommand.
func latestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Crawl the newest articles from the front page",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrawl(func(ctx context.Context, s *crawl.Session) ([]types.ArticleRecord, *crawl.Stats, error) {
				return s.Latest(ctx)
			})
		},
	}
	cmd.Flags().IntVarP(&maxArticles, "max-articles", "m", 0, "maximum articles to extract (0 = config default)")
	return cmd
}

// articleCmd creates the "article" subcommand.
func articleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "article [url]",
		Short: "Extract a single article by URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrawl(func(ctx context.Context, s *crawl.Session) ([]types.ArticleRecord, *crawl.Stats, error) {
				record, err := s.Article(ctx, args[0])
				if err != nil {
					return nil, nil, err
				}
				stats := &crawl.Stats{Articles: 1}
				if !record.Success {
					stats.Failures = 1
				}
				return []types.ArticleRecord{record}, stats, nil
			}, args[0])
		},
	}
}

// apiCmd creates the "api" subcommand, which reads posts from the
// WordPress REST API instead of rendering pages.
func apiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "api [search-term]",
		Short: "Fetch posts via the WordPress REST API",
		Long:  "Read structured posts from /wp-json/wp/v2/posts. Faster than browser crawling, but only works on sites with the API enabled.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAPI,
	}
	cmd.Flags().IntVar(&apiPerPage, "per-page", 10, "posts per API page")
	cmd.Flags().StringVar(&apiAfter, "after", "", "only posts published after (ISO8601)")
	cmd.Flags().StringVar(&apiBefore, "before", "", "only posts published before (ISO8601)")
	cmd.Flags().IntSliceVar(&apiCategories, "categories", nil, "filter by category IDs")
	cmd.Flags().IntVarP(&maxArticles, "max-articles", "m", 0, "maximum posts to fetch (0 = config default)")
	return cmd
}

// runCrawl handles the shared setup and teardown around a crawl operation:
// config, logger, fetcher, storage, signals, and the summary printout.
func runCrawl(op func(context.Context, *crawl.Session) ([]types.ArticleRecord, *crawl.Stats, error), articleURLs ...string) error {
	logger := setupLogger()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyCLIOverrides(cfg)
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	for _, u := range articleURLs {
		if err := config.ValidateArticleURL(cfg, u); err != nil {
			return err
		}
	}

	pf, err := fetcher.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer pf.Close()

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down...", "signal", sig)
		cancel()
	}()

	session := crawl.NewSession(cfg, pf, logger)

	start := time.Now()
	records, stats, err := op(ctx, session)
	if err != nil {
		store.Close()
		return fmt.Errorf("crawl: %w", err)
	}

	if err := store.Store(records); err != nil {
		store.Close()
		return fmt.Errorf("store articles: %w", err)
	}
	if err := store.Close(); err != nil {
		return fmt.Errorf("close storage: %w", err)
	}

	printSummary(cfg, stats, time.Since(start))
	return nil
}

// runAPI executes the api command.
func runAPI(cmd *cobra.Command, args []string) error {
	logger := setupLogger()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyCLIOverrides(cfg)
	cfg.Fetcher.Type = "http" // the API is plain JSON; no browser needed
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	pf, err := fetcher.NewHTTPFetcher(cfg, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer pf.Close()

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}

	q := wpapi.Query{
		PerPage:    apiPerPage,
		After:      apiAfter,
		Before:     apiBefore,
		Categories: apiCategories,
		MaxPosts:   cfg.Crawl.MaxArticles,
	}
	if len(args) > 0 {
		q.Search = args[0]
	}

	client := wpapi.NewClient(cfg, pf, logger)

	start := time.Now()
	posts, err := client.Posts(context.Background(), q)
	if err != nil {
		store.Close()
		return fmt.Errorf("api: %w", err)
	}

	records := make([]types.ArticleRecord, len(posts))
	for i, p := range posts {
		records[i] = p.ToRecord()
		if q.Search != "" {
			records[i].SearchKeyword = q.Search
			records[i].SearchRank = i + 1
		}
	}

	if err := store.Store(records); err != nil {
		store.Close()
		return fmt.Errorf("store posts: %w", err)
	}
	if err := store.Close(); err != nil {
		return fmt.Errorf("close storage: %w", err)
	}

	fmt.Printf("\n✅ API fetch complete in %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("   Posts:   %d\n", len(records))
	fmt.Printf("   Output:  %s (%s)\n", cfg.Storage.OutputPath, cfg.Storage.Type)
	return nil
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("newsprowl %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			applyCLIOverrides(cfg)
			fmt.Printf("Site:\n")
			fmt.Printf("  Base URL:          %s\n", cfg.Site.BaseURL)
			fmt.Printf("  Results Per Page:  %d\n", cfg.Site.ResultsPerPage)
			fmt.Printf("\nFetcher:\n")
			fmt.Printf("  Type:              %s\n", cfg.Fetcher.Type)
			fmt.Printf("  Headless:          %v\n", cfg.Fetcher.Headless)
			fmt.Printf("  Request Timeout:   %s\n", cfg.Fetcher.RequestTimeout)
			fmt.Printf("  User Agents:       %d configured\n", len(cfg.Fetcher.UserAgents))
			fmt.Printf("\nCrawl:\n")
			fmt.Printf("  Max Articles:      %d\n", cfg.Crawl.MaxArticles)
			fmt.Printf("  Max Pages:         %d\n", cfg.Crawl.MaxPages)
			fmt.Printf("  Page Delay:        %s–%s\n", cfg.Crawl.PageDelayMin, cfg.Crawl.PageDelayMax)
			fmt.Printf("  Article Delay:     %s–%s\n", cfg.Crawl.ArticleDelayMin, cfg.Crawl.ArticleDelayMax)
			fmt.Printf("\nStorage:\n")
			fmt.Printf("  Type:              %s\n", cfg.Storage.Type)
			fmt.Printf("  Output Path:       %s\n", cfg.Storage.OutputPath)
			return nil
		},
	}
}

// printSummary prints the post-crawl report.
func printSummary(cfg *config.Config, stats *crawl.Stats, elapsed time.Duration) {
	fmt.Printf("\n✅ Crawl complete in %s\n", elapsed.Round(time.Millisecond))
	if stats.Keyword != "" {
		fmt.Printf("   Keyword:   %q\n", stats.Keyword)
	}
	if stats.PagesVisited > 0 {
		fmt.Printf("   Pages:     %d visited\n", stats.PagesVisited)
	}
	fmt.Printf("   Articles:  %d extracted, %d failed\n", stats.Articles-stats.Failures, stats.Failures)
	fmt.Printf("   Output:    %s (%s)\n", cfg.Storage.OutputPath, cfg.Storage.Type)
}

// setupLogger creates a structured logger.
func setupLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	handler := slog.NewTextHandler(os.Stderr, opts)
	return slog.New(handler)
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cfg *config.Config) {
	if siteURL != "" {
		cfg.Site.BaseURL = strings.TrimRight(siteURL, "/")
	}
	if fetcherType != "" {
		cfg.Fetcher.Type = strings.ToLower(fetcherType)
	}
	cfg.Fetcher.Headless = headless
	if outputPath != "" {
		cfg.Storage.OutputPath = outputPath
	}
	if outputType != "" {
		cfg.Storage.Type = strings.ToLower(outputType)
	}
	if maxArticles > 0 {
		cfg.Crawl.MaxArticles = maxArticles
	}
	if maxPages > 0 {
		cfg.Crawl.MaxPages = maxPages
	}
}
