package extract

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/newsprowl/newsprowl/internal/types"
)

// minBodyChars is the threshold under which a body candidate is considered
// boilerplate (share bars, related-post stubs) rather than article text.
const minBodyChars = 100

// Sentinel values recorded when a field cannot be extracted. Downstream
// consumers rely on these exact strings.
const (
	NoTitle       = "No title found"
	UnknownAuthor = "Unknown"
	UnknownDate   = "Unknown"
)

// ContentExtractor pulls the title, body text, author, and publish date out
// of an article page. Every field has an ordered strategy chain ending in a
// sentinel; extraction never fails outright.
type ContentExtractor struct {
	logger *slog.Logger
}

// NewContentExtractor creates a content extractor.
func NewContentExtractor(logger *slog.Logger) *ContentExtractor {
	return &ContentExtractor{
		logger: logger.With("component", "content_extractor"),
	}
}

// titleSelector matches h1/h2 headings carrying a title-class signal, in
// document order. A heading with no class signal is never taken; the
// sentinel is preferable to a site banner.
const titleSelector = "h1[class*='title'], h1[class*='headline'], " +
	"h2[class*='title'], h2[class*='headline']"

// Title returns the article headline, or NoTitle.
func (ce *ContentExtractor) Title(doc *goquery.Document) string {
	if text := strings.TrimSpace(doc.Find(titleSelector).First().Text()); text != "" {
		return normalizeWhitespace(text)
	}
	return NoTitle
}

// Body returns the article text. Candidates shorter than minBodyChars are
// rejected and the chain moves on: known theme containers, then generic
// content-bearing classes, then the page's main article element.
func (ce *ContentExtractor) Body(page *types.FetchedPage, doc *goquery.Document) string {
	for _, sel := range []string{
		".pf-content",
		".td-post-content",
		".entry-content",
		".post-content",
	} {
		container := doc.Find(sel).First()
		if container.Length() == 0 {
			continue
		}
		if text := cleanText(container); len(text) >= minBodyChars {
			ce.logger.Debug("body extracted", "strategy", sel, "chars", len(text))
			return text
		}
	}

	// Any content-ish div; the first one above the threshold wins.
	var found string
	doc.Find("div[class*='content']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if text := cleanText(s); len(text) >= minBodyChars {
			found = text
			return false
		}
		return true
	})
	if found != "" {
		ce.logger.Debug("body extracted", "strategy", "content_div", "chars", len(found))
		return found
	}

	// Last resort: semantic <article> elements. Pages can carry several
	// (related posts, teasers), so take the one with the most text.
	if text := ce.richestArticle(page, doc); len(text) >= minBodyChars {
		ce.logger.Debug("body extracted", "strategy", "article", "chars", len(text))
		return text
	}

	ce.logger.Warn("no body content found", "url", page.URL)
	return ""
}

// richestArticle finds the <article> element carrying the most text, using
// an XPath query over the raw parse tree to enumerate candidates.
func (ce *ContentExtractor) richestArticle(page *types.FetchedPage, doc *goquery.Document) string {
	root, err := html.Parse(strings.NewReader(page.HTML))
	if err != nil {
		return ""
	}
	nodes, err := htmlquery.QueryAll(root, "//article")
	if err != nil || len(nodes) == 0 {
		return ""
	}

	bestIdx, bestLen := -1, 0
	for i, node := range nodes {
		if n := len(htmlquery.InnerText(node)); n > bestLen {
			bestIdx, bestLen = i, n
		}
	}
	if bestIdx < 0 {
		return ""
	}

	container := doc.Find("article").Eq(bestIdx)
	if container.Length() == 0 {
		return ""
	}
	return cleanText(container)
}

// Author returns the byline, or UnknownAuthor.
func (ce *ContentExtractor) Author(doc *goquery.Document) string {
	text := strings.TrimSpace(doc.Find("[class*='author']").First().Text())
	if text == "" {
		return UnknownAuthor
	}
	text = strings.TrimSpace(strings.TrimPrefix(text, "By "))
	return normalizeWhitespace(text)
}

// PublishDate returns the publish date exactly as the page presents it, or
// UnknownDate. No parsing or reformatting happens here.
func (ce *ContentExtractor) PublishDate(doc *goquery.Document) string {
	if t := doc.Find("time").First(); t.Length() > 0 {
		if dt, ok := t.Attr("datetime"); ok && strings.TrimSpace(dt) != "" {
			return strings.TrimSpace(dt)
		}
		if text := strings.TrimSpace(t.Text()); text != "" {
			return normalizeWhitespace(text)
		}
	}
	for _, sel := range []string{
		"span[class*='date']",
		"[class*='published']",
		"[class*='time']",
	} {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return normalizeWhitespace(text)
		}
	}
	return UnknownDate
}

// cleanText returns the visible text of a selection with chrome elements
// removed and whitespace collapsed to single spaces.
func cleanText(sel *goquery.Selection) string {
	clone := sel.Clone()
	clone.Find("script, style, nav, aside, header, footer, form").Remove()
	return normalizeWhitespace(clone.Text())
}

// normalizeWhitespace collapses all runs of whitespace to single spaces.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
