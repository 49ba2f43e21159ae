// Package jobs defines the canonical job-listing types shared by every
// crawl path, plus the normalization and deduplication pipeline that turns
// heterogeneous raw records into them.
package jobs

// CompanyTarget identifies one crawl target. It is owned by the caller and
// treated as immutable for the duration of a crawl attempt.
type CompanyTarget struct {
	Name          string `json:"name"`
	CareerPageURL string `json:"career_page_url"`
}

// RawJobRecord is an untyped record as produced by an extraction strategy or
// an external service. It has no guaranteed shape; field resolution happens
// in Normalize and nowhere else.
type RawJobRecord map[string]any

// NormalizedJob is the canonical listing record.
type NormalizedJob struct {
	ExternalID  string `json:"external_id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location,omitempty"`
	URL         string `json:"url"`
	SourceURL   string `json:"source_url"`
	Description string `json:"description,omitempty"`
	JobType     string `json:"job_type,omitempty"`
	PostedDate  string `json:"posted_date,omitempty"`
	Platform    string `json:"platform"`
}

// CrawlMethod tags which stage of the fallback chain produced a result.
type CrawlMethod string

// Crawl methods in fallback order.
const (
	MethodCareerPage        CrawlMethod = "career_page"
	MethodAPIFallback       CrawlMethod = "api_fallback"
	MethodPuppeteerFallback CrawlMethod = "puppeteer_fallback"
	MethodBrowserFallback   CrawlMethod = "browser_fallback"
	MethodNoResults         CrawlMethod = "no_results"
)

// CrawlResult is the outcome of one fallback crawl. It is produced fresh per
// attempt and never mutated after construction.
type CrawlResult struct {
	Jobs       []NormalizedJob `json:"jobs"`
	MethodUsed CrawlMethod     `json:"method_used"`
}
