package extract

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/newsprowl/newsprowl/internal/types"
)

// ArticleExtractor turns a fetched article page into an ArticleRecord,
// running the field extractors in a fixed order. A panic anywhere inside
// extraction is converted into a failure record; one malformed page never
// takes down a crawl.
type ArticleExtractor struct {
	content  *ContentExtractor
	images   *ImageExtractor
	comments *CommentExtractor
	logger   *slog.Logger
}

// NewArticleExtractor wires the field extractors together.
func NewArticleExtractor(logger *slog.Logger) *ArticleExtractor {
	return &ArticleExtractor{
		content:  NewContentExtractor(logger),
		images:   NewImageExtractor(logger),
		comments: NewCommentExtractor(logger),
		logger:   logger.With("component", "article_extractor"),
	}
}

// Extract builds the record for one article page.
func (ae *ArticleExtractor) Extract(page *types.FetchedPage) (record types.ArticleRecord) {
	defer func() {
		if r := recover(); r != nil {
			ae.logger.Error("extraction panic", "url", page.URL, "panic", r)
			record = types.FailedArticle(page.URL, fmt.Sprintf("extraction error: %v", r))
		}
	}()

	doc, err := page.Document()
	if err != nil {
		return types.FailedArticle(page.URL, "unparseable HTML: "+err.Error())
	}

	body := ae.content.Body(page, doc)

	record = types.ArticleRecord{
		URL:            page.URL,
		Success:        true,
		Title:          ae.content.Title(doc),
		BodyText:       body,
		Author:         ae.content.Author(doc),
		PublishDateRaw: ae.content.PublishDate(doc),
		BodyLength:     len(body),
		Images:         ae.images.Extract(page, doc),
		Comments:       ae.comments.Extract(page, doc),
		ScrapedAt:      time.Now(),
	}

	ae.logger.Info("article extracted",
		"url", page.URL,
		"title", record.Title,
		"body_chars", record.BodyLength,
		"images", len(record.Images),
		"comments", record.CommentCount(),
	)
	return record
}
