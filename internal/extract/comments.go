package extract

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/newsprowl/newsprowl/internal/types"
)

// minCommentChars filters out fragments too short to be user content.
const minCommentChars = 10

// commentNoise marks comment-form boilerplate that selector fallbacks can
// sweep up.
var commentNoise = []string{
	"leave a reply",
	"cancel reply",
	"your email",
	"comment:",
}

// CommentExtractor pulls reader comments from an article page. The
// structured WordPress comment tree is tried first; a generic selector
// chain covers themes that render comments differently. Exactly one shape
// wins per page. When no real comments surface, a single metadata record
// documents what was (or wasn't) found.
type CommentExtractor struct {
	logger *slog.Logger
}

// NewCommentExtractor creates a comment extractor.
func NewCommentExtractor(logger *slog.Logger) *CommentExtractor {
	return &CommentExtractor{
		logger: logger.With("component", "comment_extractor"),
	}
}

// Extract returns the comments on an article page in document order. The
// result always has at least one record: real comments, or one metadata
// sentinel.
func (ce *CommentExtractor) Extract(page *types.FetchedPage, doc *goquery.Document) []types.CommentRecord {
	comments, sectionFound := ce.fromCommentTree(doc)
	if len(comments) == 0 && !sectionFound {
		// Only guess at comment markup when the page has no proper comments
		// section; an empty section means there are none.
		comments = ce.fromGenericSelectors(doc)
	}

	if len(comments) == 0 {
		comments = append(comments, types.CommentRecord{
			Text:    ce.absenceNote(doc),
			Author:  UnknownAuthor,
			DateRaw: UnknownDate,
			Kind:    types.KindMetadata,
		})
	}

	ce.logger.Debug("comments extracted", "url", page.URL, "count", len(comments))
	return comments
}

// fromCommentTree walks the standard WordPress comment markup:
// div#comments > ol.comment-list > li.comment, replies nested under
// ul.children. The second return reports whether the section exists at all.
func (ce *CommentExtractor) fromCommentTree(doc *goquery.Document) ([]types.CommentRecord, bool) {
	section := doc.Find("div#comments.comments")
	if section.Length() == 0 {
		section = doc.Find("div#comments")
	}
	if section.Length() == 0 {
		return nil, false
	}

	var comments []types.CommentRecord
	seen := make(map[string]bool)

	section.Find("ol.comment-list li.comment").Each(func(_ int, li *goquery.Selection) {
		id := strings.TrimPrefix(li.AttrOr("id", ""), "comment-")

		// Each comment's own fields live in its <article>; children carry
		// their own, so First() never crosses into a nested reply.
		body := li.Find("article").First()
		if body.Length() == 0 {
			body = li
		}

		text := normalizeWhitespace(body.Find("div.comment-content").First().Text())
		if !realCommentText(text) {
			return
		}

		key := id
		if key == "" {
			key = text
		}
		if seen[key] {
			return
		}
		seen[key] = true

		author := normalizeWhitespace(body.Find("cite").First().Text())
		if author == "" {
			author = UnknownAuthor
		}

		date := UnknownDate
		if t := body.Find("time").First(); t.Length() > 0 {
			if dt, ok := t.Attr("datetime"); ok && strings.TrimSpace(dt) != "" {
				date = strings.TrimSpace(dt)
			} else if text := normalizeWhitespace(t.Text()); text != "" {
				date = text
			}
		}

		kind := types.KindComment
		if li.ParentsFiltered("ul.children").Length() > 0 {
			kind = types.KindReply
		}

		comments = append(comments, types.CommentRecord{
			ID:      id,
			Text:    text,
			Author:  author,
			DateRaw: date,
			Kind:    kind,
		})
	})

	return comments, true
}

// fromGenericSelectors tries theme-agnostic comment selectors. The first
// selector producing any accepted comment wins exclusively.
func (ce *CommentExtractor) fromGenericSelectors(doc *goquery.Document) []types.CommentRecord {
	for _, sel := range []string{
		".comment",
		"[class*='comment-body']",
		"[id*='comment']",
	} {
		var comments []types.CommentRecord
		seen := make(map[string]bool)

		doc.Find(sel).Each(func(_ int, node *goquery.Selection) {
			text := cleanText(node)
			if !realCommentText(text) {
				return
			}

			id := strings.TrimPrefix(node.AttrOr("id", ""), "comment-")
			key := id
			if key == "" {
				key = text
			}
			if seen[key] {
				return
			}
			seen[key] = true

			author := normalizeWhitespace(node.Find("cite, [class*='author']").First().Text())
			if author == "" {
				author = UnknownAuthor
			}

			comments = append(comments, types.CommentRecord{
				ID:      id,
				Text:    text,
				Author:  author,
				DateRaw: UnknownDate,
				Kind:    types.KindComment,
			})
		})

		if len(comments) > 0 {
			ce.logger.Debug("comments extracted via fallback", "selector", sel, "count", len(comments))
			return comments
		}
	}
	return nil
}

// absenceNote describes what the page showed instead of comments.
func (ce *CommentExtractor) absenceNote(doc *goquery.Document) string {
	if header := normalizeWhitespace(doc.Find("h4.td-comments-title").First().Text()); header != "" {
		return "Comments section present but empty: " + header
	}
	return "No comments found"
}

// realCommentText accepts text long enough to be user content and free of
// comment-form boilerplate.
func realCommentText(text string) bool {
	if len(text) < minCommentChars {
		return false
	}
	lower := strings.ToLower(text)
	for _, noise := range commentNoise {
		if strings.Contains(lower, noise) {
			return false
		}
	}
	return true
}
