package extract

import (
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/talentwire/jobs-crawler/internal/jobs"
)

// Strategy is one way of pulling job records out of a rendered page.
type Strategy interface {
	Name() string
	Extract(page Page, careerURL *url.URL) ([]jobs.RawJobRecord, error)
}

// Chain tries strategies in fixed priority order and stops at the first one
// that yields at least one record. A failure inside a strategy counts as
// "produced nothing" and never aborts the chain.
type Chain struct {
	strategies []Strategy
	logger     *zap.Logger
}

// NewChain builds the default chain: structured data, DOM heuristics,
// embedded-script JSON, then the content-heuristic extension point.
func NewChain(logger *zap.Logger) *Chain {
	return &Chain{
		strategies: []Strategy{
			structuredDataStrategy{},
			domHeuristicStrategy{},
			scriptJSONStrategy{},
			contentHeuristicStrategy{},
		},
		logger: logger,
	}
}

// Extract runs the chain over a page.
func (c *Chain) Extract(page Page, careerURL *url.URL) []jobs.RawJobRecord {
	for _, strategy := range c.strategies {
		records, err := runStrategy(strategy, page, careerURL)
		if err != nil {
			c.logger.Debug("extraction strategy failed",
				zap.String("strategy", strategy.Name()),
				zap.Error(err),
			)
			continue
		}
		if len(records) > 0 {
			c.logger.Debug("extraction strategy succeeded",
				zap.String("strategy", strategy.Name()),
				zap.Int("records", len(records)),
			)
			return records
		}
	}
	return nil
}

func runStrategy(s Strategy, page Page, careerURL *url.URL) (records []jobs.RawJobRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			records, err = nil, fmt.Errorf("strategy %s panicked: %v", s.Name(), r)
		}
	}()
	return s.Extract(page, careerURL)
}
