package crawler

import (
	"errors"
	"fmt"
)

// Failure taxonomy for the crawl pipeline. These classify log lines and
// metrics; none of them escapes CrawlWithFallback.
var (
	// ErrServiceUnavailable marks the remote browser service as unhealthy or
	// unreachable.
	ErrServiceUnavailable = errors.New("remote browser service unavailable")
	// ErrMalformedResponse marks a non-JSON or schema-violating body from the
	// remote browser service.
	ErrMalformedResponse = errors.New("malformed remote browser response")
	// ErrNavigationTimeout marks a navigation that ran out of time. It is
	// non-fatal; extraction proceeds against the partial page.
	ErrNavigationTimeout = errors.New("navigation timed out")
	// ErrSelectorNotFound marks a wait-selector that never appeared.
	// Non-fatal.
	ErrSelectorNotFound = errors.New("wait selector not found")
)

// CrawlError wraps an unrecoverable failure of one browser crawl attempt.
type CrawlError struct {
	Company string
	Err     error
}

func (e *CrawlError) Error() string {
	return fmt.Sprintf("crawl %s: %v", e.Company, e.Err)
}

func (e *CrawlError) Unwrap() error {
	return e.Err
}
