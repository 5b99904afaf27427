package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrInvalidURL = errors.New("invalid URL")
	ErrOffSiteURL = errors.New("URL is not on the configured site")
	ErrNoResults  = errors.New("no search results found")
	ErrEmptyPage  = errors.New("empty page content")
	ErrNoFetcher  = errors.New("no fetcher configured")
)

// FetchError wraps errors from the rendering collaborator. It is always
// non-fatal to a crawl: the affected page degrades to a failure record and
// the session continues.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractError wraps unexpected structural failures during extraction.
// It is caught at the article boundary and converted to a failure record;
// it never propagates into the pagination loop.
type ExtractError struct {
	URL   string
	Stage string
	Err   error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract error for %s (stage=%s): %v", e.URL, e.Stage, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// StorageError wraps errors from output backends.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
