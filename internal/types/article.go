package types

import (
	"encoding/json"
	"time"
)

// CommentKind distinguishes real user comments from diagnostic records.
type CommentKind string

const (
	// KindComment is a top-level comment.
	KindComment CommentKind = "comment"

	// KindReply is a comment nested under another comment.
	KindReply CommentKind = "reply"

	// KindMetadata is a sentinel record emitted when no real comments are
	// found. It carries a diagnostic string, never user content, and must
	// not be counted in aggregate comment statistics.
	KindMetadata CommentKind = "metadata"
)

// ImageRecord is a single image reference extracted from an article page.
// SourceURL is always absolute; relative and protocol-relative forms are
// resolved against the article URL at construction time.
type ImageRecord struct {
	SourceURL  string `json:"src"`
	AltText    string `json:"alt"`
	TitleText  string `json:"title"`
	Width      string `json:"width,omitempty"`
	Height     string `json:"height,omitempty"`
	CSSClasses string `json:"class"`
	Caption    string `json:"caption"`
}

// CommentRecord is a single extracted comment, reply, or metadata sentinel.
type CommentRecord struct {
	ID      string      `json:"comment_id,omitempty"`
	Text    string      `json:"text"`
	Author  string      `json:"author"`
	DateRaw string      `json:"date"`
	Kind    CommentKind `json:"type"`
}

// IsReal reports whether the record carries user content.
func (c CommentRecord) IsReal() bool {
	return c.Kind == KindComment || c.Kind == KindReply
}

// ArticleRecord is the result of extracting one article URL. When Success
// is false, BodyText is empty and Images/Comments are nil; Error carries
// the reason. Records are immutable once extraction completes.
type ArticleRecord struct {
	URL            string          `json:"url"`
	Success        bool            `json:"success"`
	Error          string          `json:"error,omitempty"`
	Title          string          `json:"title,omitempty"`
	BodyText       string          `json:"content,omitempty"`
	Author         string          `json:"author,omitempty"`
	PublishDateRaw string          `json:"publish_date,omitempty"`
	BodyLength     int             `json:"content_length"`
	Images         []ImageRecord   `json:"images,omitempty"`
	Comments       []CommentRecord `json:"comments,omitempty"`
	ScrapedAt      time.Time       `json:"scraped_at"`

	// SearchKeyword and SearchRank are set when the article was discovered
	// through a keyword search (rank is 1-based, search-result order).
	SearchKeyword string `json:"search_keyword,omitempty"`
	SearchRank    int    `json:"search_rank,omitempty"`
}

// FailedArticle creates a failure record for a URL that could not be
// fetched or extracted.
func FailedArticle(url, reason string) ArticleRecord {
	return ArticleRecord{
		URL:       url,
		Success:   false,
		Error:     reason,
		ScrapedAt: time.Now(),
	}
}

// CommentCount returns the number of real comments, excluding metadata
// sentinels.
func (a *ArticleRecord) CommentCount() int {
	n := 0
	for _, c := range a.Comments {
		if c.IsReal() {
			n++
		}
	}
	return n
}

// ToJSON serializes the record with indentation for file output.
func (a *ArticleRecord) ToJSON() ([]byte, error) {
	return json.MarshalIndent(a, "", "  ")
}
