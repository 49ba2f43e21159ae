// Package atsapi detects hosted applicant-tracking-system boards behind a
// career page and fetches listings from their public JSON APIs. It backs the
// API stage of the fallback chain.
package atsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/talentwire/jobs-crawler/internal/jobs"
)

type provider string

const (
	providerUnknown    provider = ""
	providerGreenhouse provider = "greenhouse"
	providerLever      provider = "lever"
)

// Client fetches listings for one company. It is instantiated per company
// and must be Closed after the stage runs.
type Client struct {
	companyName    string
	careerURL      *url.URL
	hc             *http.Client
	logger         *zap.Logger
	greenhouseBase string
	leverBase      string
}

// New builds a client for one company's career page.
func New(companyName, careerURL string, logger *zap.Logger) (*Client, error) {
	parsed, err := url.Parse(careerURL)
	if err != nil {
		return nil, fmt.Errorf("parse career url: %w", err)
	}
	return &Client{
		companyName:    companyName,
		careerURL:      parsed,
		hc:             &http.Client{Timeout: 20 * time.Second},
		logger:         logger,
		greenhouseBase: "https://boards-api.greenhouse.io",
		leverBase:      "https://api.lever.co",
	}, nil
}

// Close releases the client's HTTP resources.
func (c *Client) Close() error {
	c.hc.CloseIdleConnections()
	return nil
}

// FetchJobs detects a known ATS behind the career URL and pulls its public
// job board. An unrecognized host yields no jobs and no error; the
// orchestrator then falls through to the browser stages.
func (c *Client) FetchJobs(ctx context.Context) ([]jobs.NormalizedJob, error) {
	prov, slug := detectProvider(c.careerURL)
	switch prov {
	case providerGreenhouse:
		return c.fetchGreenhouse(ctx, slug)
	case providerLever:
		return c.fetchLever(ctx, slug)
	default:
		c.logger.Debug("no known ats behind career url",
			zap.String("company", c.companyName),
			zap.String("host", c.careerURL.Host),
		)
		return nil, nil
	}
}

// detectProvider recognizes hosted board URL shapes like
// boards.greenhouse.io/<slug> and jobs.lever.co/<slug>.
func detectProvider(u *url.URL) (provider, string) {
	host := strings.ToLower(u.Host)
	slug := firstPathSegment(u.Path)
	if slug == "" {
		return providerUnknown, ""
	}
	switch {
	case strings.HasSuffix(host, "greenhouse.io"):
		return providerGreenhouse, slug
	case strings.HasSuffix(host, "lever.co"):
		return providerLever, slug
	}
	return providerUnknown, ""
}

func firstPathSegment(path string) string {
	for _, segment := range strings.Split(strings.Trim(path, "/"), "/") {
		if segment != "" {
			return segment
		}
	}
	return ""
}

type greenhouseBoard struct {
	Jobs []struct {
		Title       string `json:"title"`
		AbsoluteURL string `json:"absolute_url"`
		Location    struct {
			Name string `json:"name"`
		} `json:"location"`
		Content string `json:"content"`
	} `json:"jobs"`
}

func (c *Client) fetchGreenhouse(ctx context.Context, slug string) ([]jobs.NormalizedJob, error) {
	endpoint := fmt.Sprintf("%s/v1/boards/%s/jobs?content=true", c.greenhouseBase, url.PathEscape(slug))

	var board greenhouseBoard
	if err := c.getJSON(ctx, endpoint, &board); err != nil {
		return nil, fmt.Errorf("greenhouse board %s: %w", slug, err)
	}

	raws := make([]jobs.RawJobRecord, 0, len(board.Jobs))
	for _, j := range board.Jobs {
		raws = append(raws, jobs.RawJobRecord{
			"title":       j.Title,
			"url":         j.AbsoluteURL,
			"location":    j.Location.Name,
			"description": j.Content,
		})
	}
	return jobs.Dedupe(jobs.NormalizeAll(raws, c.companyName, c.careerURL, string(providerGreenhouse))), nil
}

type leverPosting struct {
	Text       string `json:"text"`
	HostedURL  string `json:"hostedUrl"`
	Categories struct {
		Location   string `json:"location"`
		Commitment string `json:"commitment"`
	} `json:"categories"`
	DescriptionPlain string `json:"descriptionPlain"`
}

func (c *Client) fetchLever(ctx context.Context, slug string) ([]jobs.NormalizedJob, error) {
	endpoint := fmt.Sprintf("%s/v0/postings/%s?mode=json", c.leverBase, url.PathEscape(slug))

	var postings []leverPosting
	if err := c.getJSON(ctx, endpoint, &postings); err != nil {
		return nil, fmt.Errorf("lever postings %s: %w", slug, err)
	}

	raws := make([]jobs.RawJobRecord, 0, len(postings))
	for _, p := range postings {
		raws = append(raws, jobs.RawJobRecord{
			"title":       p.Text,
			"url":         p.HostedURL,
			"location":    p.Categories.Location,
			"job_type":    p.Categories.Commitment,
			"description": p.DescriptionPlain,
		})
	}
	return jobs.Dedupe(jobs.NormalizeAll(raws, c.companyName, c.careerURL, string(providerLever))), nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
