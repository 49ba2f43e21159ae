package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/talentwire/jobs-crawler/internal/extract"
	"github.com/talentwire/jobs-crawler/internal/jobs"
)

const primaryPlatformTag = "html"

// CollyConfig controls the direct-fetch primary stage.
type CollyConfig struct {
	UserAgent      string
	RequestTimeout time.Duration
	Concurrency    int
	DomainDelay    time.Duration
}

func (c *CollyConfig) applyDefaults() {
	if c.UserAgent == "" {
		c.UserAgent = "talentwire-jobs-crawler/1.0"
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 15 * time.Second
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 2
	}
	if c.DomainDelay <= 0 {
		c.DomainDelay = time.Second
	}
}

// CollyCrawler is the default primary stage: a plain HTTP fetch of the career
// page with no JavaScript, fed through the same extraction chain the browser
// stages use. JS-rendered pages legitimately produce nothing here; the
// orchestrator then falls through.
type CollyCrawler struct {
	baseCollector *colly.Collector
	chain         *extract.Chain
	detector      *HeuristicDetector
	logger        *zap.Logger
}

// NewCollyCrawler constructs a configured Colly-based primary crawler.
func NewCollyCrawler(cfg CollyConfig, chain *extract.Chain, logger *zap.Logger) (*CollyCrawler, error) {
	cfg.applyDefaults()

	base := colly.NewCollector(
		colly.Async(true),
		colly.UserAgent(cfg.UserAgent),
	)
	base.AllowURLRevisit = true
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.RequestTimeout,
		ForceAttemptHTTP2:     true,
	})
	base.SetRequestTimeout(cfg.RequestTimeout)

	if err := base.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: cfg.Concurrency,
		Delay:       cfg.DomainDelay,
	}); err != nil {
		return nil, err
	}

	return &CollyCrawler{
		baseCollector: base,
		chain:         chain,
		detector:      NewHeuristicDetector(),
		logger:        logger,
	}, nil
}

// FetchJobs fetches the career page and extracts listings from the raw HTML.
func (c *CollyCrawler) FetchJobs(ctx context.Context, target jobs.CompanyTarget) ([]jobs.NormalizedJob, error) {
	careerURL, err := url.Parse(target.CareerPageURL)
	if err != nil {
		return nil, &CrawlError{Company: target.Name, Err: err}
	}

	body, err := c.fetch(ctx, target.CareerPageURL)
	if err != nil {
		return nil, &CrawlError{Company: target.Name, Err: err}
	}

	page, err := extract.NewStaticPage(string(body), nil)
	if err != nil {
		return nil, &CrawlError{Company: target.Name, Err: err}
	}

	records := c.chain.Extract(page, careerURL)
	if len(records) == 0 && c.detector.NeedsJS(body) {
		c.logger.Info("career page likely requires JavaScript rendering",
			zap.String("company", target.Name),
			zap.String("career_url", target.CareerPageURL),
		)
	}

	normalized := jobs.NormalizeAll(records, target.Name, careerURL, primaryPlatformTag)
	return jobs.Dedupe(normalized), nil
}

type fetchResult struct {
	body []byte
	err  error
}

func (c *CollyCrawler) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	collector := c.baseCollector.Clone()
	resultCh := make(chan fetchResult, 1)
	var once sync.Once
	send := func(res fetchResult) {
		once.Do(func() { resultCh <- res })
	}

	collector.OnResponse(func(r *colly.Response) {
		if r.StatusCode != http.StatusOK || len(r.Body) == 0 {
			send(fetchResult{err: errors.New("empty or non-200 career page response")})
			return
		}
		send(fetchResult{body: append([]byte{}, r.Body...)})
	})
	collector.OnError(func(_ *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		send(fetchResult{err: err})
	})

	if err := collector.Visit(rawURL); err != nil {
		return nil, err
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return res.body, res.err
	default:
		return nil, errors.New("colly fetch produced no result")
	}
}
