package types

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// FetchedPage is the raw result of rendering one URL: the post-load HTML
// as the fetcher saw it. It is owned transiently by whichever extractor
// consumes it and is never mutated after creation.
type FetchedPage struct {
	URL       string
	HTML      string
	FetchedAt time.Time

	doc *goquery.Document
}

// NewFetchedPage creates a FetchedPage stamped with the current time.
func NewFetchedPage(url, html string) *FetchedPage {
	return &FetchedPage{
		URL:       url,
		HTML:      html,
		FetchedAt: time.Now(),
	}
}

// Document returns a parsed goquery document, lazily initializing it.
func (p *FetchedPage) Document() (*goquery.Document, error) {
	if p.doc != nil {
		return p.doc, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.HTML))
	if err != nil {
		return nil, err
	}
	p.doc = doc
	return doc, nil
}

// Size returns the length of the rendered markup in bytes.
func (p *FetchedPage) Size() int {
	return len(p.HTML)
}
