package extract

import (
	"net/url"

	"github.com/talentwire/jobs-crawler/internal/jobs"
)

// contentHeuristicStrategy is a reserved slot for pattern matching over raw
// page text. The generic non-browser crawl path covers that ground today, so
// this strategy intentionally yields nothing; it stays in the chain as the
// extension point for future text heuristics.
type contentHeuristicStrategy struct{}

func (contentHeuristicStrategy) Name() string { return "content_heuristic" }

func (contentHeuristicStrategy) Extract(Page, *url.URL) ([]jobs.RawJobRecord, error) {
	return nil, nil
}
