// Package crawler implements the fallback orchestration engine that extracts
// job listings from corporate career pages. It sequences a cheap direct HTML
// fetch, ATS API detection, a remote browser-automation service, and a local
// headless browser, returning the first stage that produces results.
package crawler

import (
	"context"
	"time"

	"github.com/talentwire/jobs-crawler/internal/jobs"
)

// Config holds the orchestrator's stage gates and browser-stage knobs. It is
// decoupled from Viper so the engine stays testable on its own.
type Config struct {
	APIDetectionEnabled bool
	BrowserEnabled      bool
	BrowserTimeout      time.Duration
	WaitSelector        string
}

// PrimaryCrawler is the caller-supplied first stage, typically a plain HTML
// fetch of the career page. It may fail; the orchestrator treats any failure
// as "no result".
type PrimaryCrawler interface {
	FetchJobs(ctx context.Context, target jobs.CompanyTarget) ([]jobs.NormalizedJob, error)
}

// PrimaryFunc adapts a bare function to the PrimaryCrawler interface.
type PrimaryFunc func(ctx context.Context, target jobs.CompanyTarget) ([]jobs.NormalizedJob, error)

// FetchJobs implements PrimaryCrawler.
func (f PrimaryFunc) FetchJobs(ctx context.Context, target jobs.CompanyTarget) ([]jobs.NormalizedJob, error) {
	return f(ctx, target)
}

// APIFetcher pulls listings from a detected applicant-tracking-system API.
// One fetcher is instantiated per company and released after the stage runs.
type APIFetcher interface {
	FetchJobs(ctx context.Context) ([]jobs.NormalizedJob, error)
	Close() error
}

// APIFetcherFactory builds an APIFetcher for one company.
type APIFetcherFactory func(companyName, careerURL string) (APIFetcher, error)

// RemoteBrowser is a client for the out-of-process browser-automation
// service.
type RemoteBrowser interface {
	HealthCheck(ctx context.Context) bool
	Crawl(ctx context.Context, target jobs.CompanyTarget, timeout time.Duration, waitSelector string) ([]jobs.NormalizedJob, error)
}

// BrowserCrawler drives an in-process headless browser. waitSelector follows
// the same per-crawl override as the remote stage; empty means use the
// crawler's configured default.
type BrowserCrawler interface {
	FetchJobs(ctx context.Context, target jobs.CompanyTarget, waitSelector string) ([]jobs.NormalizedJob, error)
}

// IDGenerator produces request IDs for the diagnostic log trail.
type IDGenerator interface {
	NewID() (string, error)
}
