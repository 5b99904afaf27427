package storage

import (
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"
)

// maxSlugLen caps filename slugs to keep paths portable.
const maxSlugLen = 30

// slugStopwords are filler words skipped when building a slug.
var slugStopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true,
}

// Slug derives a filename fragment from an article title: the first three
// meaningful words, lowercased and joined with underscores. Words of two or
// fewer characters and filler words are skipped. Falls back to "article"
// when the title yields nothing usable.
func Slug(title string) string {
	var words []string
	for _, raw := range strings.Fields(title) {
		word := sanitizeWord(raw)
		if len(word) <= 2 || slugStopwords[word] {
			continue
		}
		words = append(words, word)
		if len(words) == 3 {
			break
		}
	}
	if len(words) == 0 {
		return "article"
	}

	slug := strings.Join(words, "_")
	if len(slug) > maxSlugLen {
		slug = slug[:maxSlugLen]
	}
	return strings.Trim(slug, "_")
}

// sanitizeWord lowercases a word and strips everything but letters and
// digits.
func sanitizeWord(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeDate converts a raw publish-date string to YYYYMMDD for file
// naming. Unparseable dates fall back to today.
func NormalizeDate(raw string) string {
	if t, err := dateparse.ParseAny(raw); err == nil {
		return t.Format("20060102")
	}
	return time.Now().Format("20060102")
}
