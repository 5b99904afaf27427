package crawl

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// Frontier is the append-only set of article URLs accepted during a crawl
// session. Membership is decided on the canonical form, so the same article
// reached via trailing-slash or fragment variants is admitted once. The set
// is never pruned while a session runs.
type Frontier struct {
	seen  map[string]struct{}
	order []string
}

// NewFrontier creates an empty frontier.
func NewFrontier() *Frontier {
	return &Frontier{
		seen: make(map[string]struct{}),
	}
}

// Admit adds a URL to the frontier. It returns true if the URL is new,
// false if its canonical form was already admitted.
func (f *Frontier) Admit(rawURL string) bool {
	hash := hashURL(CanonicalizeURL(rawURL))
	if _, ok := f.seen[hash]; ok {
		return false
	}
	f.seen[hash] = struct{}{}
	f.order = append(f.order, rawURL)
	return true
}

// Contains reports whether the URL's canonical form has been admitted.
func (f *Frontier) Contains(rawURL string) bool {
	_, ok := f.seen[hashURL(CanonicalizeURL(rawURL))]
	return ok
}

// URLs returns the admitted URLs in admission order.
func (f *Frontier) URLs() []string {
	return f.order
}

// Len returns the number of admitted URLs.
func (f *Frontier) Len() int {
	return len(f.order)
}

// CanonicalizeURL normalizes a URL for deduplication:
// - lowercases scheme and host
// - removes fragment
// - sorts query parameters
// - removes trailing slash (except root)
// - removes default ports (80 for http, 443 for https)
func CanonicalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	host := u.Hostname()
	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		u.Host = host
	}

	if u.RawQuery != "" {
		params := u.Query()
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var sorted []string
		for _, k := range keys {
			vals := params[k]
			sort.Strings(vals)
			for _, v := range vals {
				sorted = append(sorted, url.QueryEscape(k)+"="+url.QueryEscape(v))
			}
		}
		u.RawQuery = strings.Join(sorted, "&")
	}

	if u.Path != "/" && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimRight(u.Path, "/")
	}
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}

// hashURL creates a compact hash of a URL string.
func hashURL(canonicalURL string) string {
	h := sha256.Sum256([]byte(canonicalURL))
	return hex.EncodeToString(h[:16])
}
