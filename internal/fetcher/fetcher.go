package fetcher

import (
	"context"

	"github.com/newsprowl/newsprowl/internal/types"
)

// PageFetcher turns a URL into rendered HTML. Implementations must return
// markup reflecting post-load DOM state (client-side-rendered content
// included). Failure is reported as an error value; callers treat it as
// "no content", never as something to unwind through extraction logic.
type PageFetcher interface {
	// Fetch retrieves the rendered content at the given URL.
	Fetch(ctx context.Context, rawURL string) (*types.FetchedPage, error)

	// Close releases any resources held by the fetcher.
	Close() error

	// Type returns the fetcher type identifier.
	Type() string
}
