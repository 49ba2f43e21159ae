package crawler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/talentwire/jobs-crawler/internal/jobs"
)

const (
	healthCheckTimeout = 5 * time.Second
	defaultGracePeriod = 10 * time.Second
	remotePlatformTag  = "puppeteer"
)

// PuppeteerClient talks to the out-of-process browser-automation service.
// Every failure mode degrades to an empty result so the orchestrator can fall
// through to the local browser.
type PuppeteerClient struct {
	baseURL string
	grace   time.Duration
	hc      *http.Client
	logger  *zap.Logger
}

// NewPuppeteerClient builds a client for the service at baseURL. The grace
// period is added on top of each crawl's requested timeout to cover service
// queueing and response transfer.
func NewPuppeteerClient(baseURL string, grace time.Duration, logger *zap.Logger) *PuppeteerClient {
	if grace <= 0 {
		grace = defaultGracePeriod
	}
	return &PuppeteerClient{
		baseURL: baseURL,
		grace:   grace,
		hc:      &http.Client{},
		logger:  logger,
	}
}

type crawlRequest struct {
	CompanyName     string `json:"company_name"`
	CareerURL       string `json:"career_url"`
	Timeout         int64  `json:"timeout"`
	WaitForSelector string `json:"wait_for_selector,omitempty"`
	WaitTimeout     int64  `json:"wait_timeout,omitempty"`
}

type crawlResponse struct {
	Success bool                `json:"success"`
	Jobs    []jobs.RawJobRecord `json:"jobs"`
	Error   string              `json:"error,omitempty"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// HealthCheck reports whether the service is reachable and answering. It
// never returns an error; any failure means unhealthy.
func (c *PuppeteerClient) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		c.logger.Debug("remote browser health check failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}
	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return false
	}
	return health.Status == "ok"
}

// Crawl submits one crawl job and waits for the result. Non-2xx responses,
// malformed bodies, and reported failures all yield an empty slice; the
// orchestrator treats that as "this method found nothing".
func (c *PuppeteerClient) Crawl(ctx context.Context, target jobs.CompanyTarget, timeout time.Duration, waitSelector string) ([]jobs.NormalizedJob, error) {
	careerURL, err := url.Parse(target.CareerPageURL)
	if err != nil {
		return nil, &CrawlError{Company: target.Name, Err: err}
	}

	payload := crawlRequest{
		CompanyName: target.Name,
		CareerURL:   target.CareerPageURL,
		Timeout:     timeout.Milliseconds(),
	}
	if waitSelector != "" {
		payload.WaitForSelector = waitSelector
		payload.WaitTimeout = (timeout / 2).Milliseconds()
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &CrawlError{Company: target.Name, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout+c.grace)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/crawl", bytes.NewReader(body))
	if err != nil {
		return nil, &CrawlError{Company: target.Name, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		c.logger.Warn("remote browser crawl request failed",
			zap.String("company", target.Name),
			zap.Error(err),
		)
		return []jobs.NormalizedJob{}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("remote browser crawl returned non-2xx",
			zap.String("company", target.Name),
			zap.Int("status", resp.StatusCode),
		)
		return []jobs.NormalizedJob{}, nil
	}

	var result crawlResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.logger.Warn("remote browser crawl response malformed",
			zap.String("company", target.Name),
			zap.Error(ErrMalformedResponse),
		)
		return []jobs.NormalizedJob{}, nil
	}
	if !result.Success {
		c.logger.Info("remote browser crawl reported failure",
			zap.String("company", target.Name),
			zap.String("error", result.Error),
		)
		return []jobs.NormalizedJob{}, nil
	}

	normalized := jobs.NormalizeAll(result.Jobs, target.Name, careerURL, remotePlatformTag)
	return jobs.Dedupe(normalized), nil
}
