package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/newsprowl/newsprowl/internal/config"
	"github.com/newsprowl/newsprowl/internal/types"
)

// challengePhrases are markers of anti-bot interstitials. Their presence is
// logged but not treated as failure: partially rendered pages sometimes
// still carry the content we want.
var challengePhrases = []string{
	"verify you are human",
	"cloudflare",
	"access denied",
	"challenge",
}

// BrowserFetcher implements PageFetcher using a stealth headless browser
// via Rod. Pages are loaded with human-like scrolling so the target site's
// lazy-loaded content is present in the captured HTML.
type BrowserFetcher struct {
	browser *rod.Browser
	cfg     *config.FetcherConfig
	pacer   *Pacer
	logger  *slog.Logger
}

// NewBrowserFetcher launches a Chromium instance and connects to it.
func NewBrowserFetcher(cfg *config.Config, logger *slog.Logger) (*BrowserFetcher, error) {
	bf := &BrowserFetcher{
		cfg:    &cfg.Fetcher,
		pacer:  NewPacer(),
		logger: logger.With("component", "browser_fetcher"),
	}

	launchURL, err := bf.launchBrowser()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(launchURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	bf.browser = browser

	bf.logger.Info("browser fetcher ready", "headless", cfg.Fetcher.Headless)
	return bf, nil
}

// launchBrowser starts Chromium with anti-detection flags.
func (bf *BrowserFetcher) launchBrowser() (string, error) {
	l := launcher.New().
		Headless(bf.cfg.Headless).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("disable-setuid-sandbox").
		Set("disable-web-security").
		Set("disable-blink-features", "AutomationControlled").
		Set("window-size", fmt.Sprintf("%d,%d", bf.cfg.WindowWidth, bf.cfg.WindowHeight))

	return l.Launch()
}

// Fetch navigates to a URL and returns the rendered page content.
func (bf *BrowserFetcher) Fetch(ctx context.Context, rawURL string) (*types.FetchedPage, error) {
	start := time.Now()
	bf.logger.Info("loading page", "url", rawURL)

	page, err := stealth.Page(bf.browser)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: fmt.Errorf("stealth page: %w", err)}
	}
	defer func() { _ = page.Close() }()

	if len(bf.cfg.UserAgents) > 0 {
		err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: bf.cfg.UserAgents[0],
		})
		if err != nil {
			bf.logger.Warn("failed to set user agent", "error", err)
		}
	}

	timeout := bf.cfg.RequestTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until < timeout {
			timeout = until
		}
	}

	if err := page.Timeout(timeout).Navigate(rawURL); err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}

	bf.scrollLikeHuman(page)

	// Wait for the DOM to settle; a stability timeout is survivable.
	if err := page.Timeout(timeout).WaitStable(bf.cfg.StabilizeWait); err != nil {
		bf.logger.Warn("page stability timeout, continuing", "url", rawURL, "error", err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}
	if strings.TrimSpace(html) == "" {
		return nil, &types.FetchError{URL: rawURL, Err: types.ErrEmptyPage}
	}

	if blocks := detectChallenges(html); len(blocks) > 0 {
		bf.logger.Warn("potential anti-bot markers detected", "url", rawURL, "markers", blocks)
	}

	bf.logger.Debug("page loaded",
		"url", rawURL,
		"size", len(html),
		"duration", time.Since(start),
	)

	return types.NewFetchedPage(rawURL, html), nil
}

// scrollLikeHuman scrolls a quarter page down and back up with jittered
// pauses, triggering lazy loaders the way a reader would.
func (bf *BrowserFetcher) scrollLikeHuman(page *rod.Page) {
	if _, err := page.Eval(`() => window.scrollTo(0, document.body.scrollHeight / 4)`); err != nil {
		bf.logger.Debug("scroll failed", "error", err)
		return
	}
	bf.pacer.Sleep(1*time.Second, 2*time.Second)
	if _, err := page.Eval(`() => window.scrollTo(0, 0)`); err != nil {
		bf.logger.Debug("scroll failed", "error", err)
	}
	bf.pacer.Sleep(1*time.Second, 2*time.Second)
}

// detectChallenges returns the anti-bot phrases present in the markup.
func detectChallenges(html string) []string {
	lower := strings.ToLower(html)
	var found []string
	for _, phrase := range challengePhrases {
		if strings.Contains(lower, phrase) {
			found = append(found, phrase)
		}
	}
	return found
}

// Close shuts down the browser.
func (bf *BrowserFetcher) Close() error {
	if bf.browser != nil {
		return bf.browser.Close()
	}
	return nil
}

// Type returns the fetcher type identifier.
func (bf *BrowserFetcher) Type() string {
	return "browser"
}
