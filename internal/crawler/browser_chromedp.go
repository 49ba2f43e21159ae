package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/talentwire/jobs-crawler/internal/extract"
	"github.com/talentwire/jobs-crawler/internal/jobs"
)

// ErrBrowserDisabled indicates the local browser has been disabled via
// configuration.
var ErrBrowserDisabled = errors.New("local browser disabled")

const localPlatformTag = "browser"

// ChromedpConfig controls the local headless browser stage.
type ChromedpConfig struct {
	Headless     bool
	UserAgent    string
	NavTimeout   time.Duration
	WaitSelector string
	WaitTimeout  time.Duration
	SettleDelay  time.Duration
	DomainQPS    float64
	ViewportW    int64
	ViewportH    int64
}

func (c *ChromedpConfig) applyDefaults() {
	if c.UserAgent == "" {
		// A desktop UA keeps bot-detection friction low on career sites that
		// gate content on headless fingerprints.
		c.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if c.NavTimeout <= 0 {
		c.NavTimeout = 30 * time.Second
	}
	if c.WaitTimeout <= 0 {
		c.WaitTimeout = 5 * time.Second
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = 2 * time.Second
	}
	if c.ViewportW <= 0 || c.ViewportH <= 0 {
		c.ViewportW, c.ViewportH = 1366, 768
	}
}

// ChromedpCrawler drives headless Chrome, renders the career page, and feeds
// the result through the extraction chain. The shared browser process is
// owned by the crawler; each FetchJobs call runs in its own tab and tears it
// down on every exit path.
type ChromedpCrawler struct {
	allocatorCancel context.CancelFunc
	browserCtx      context.Context
	browserCancel   context.CancelFunc
	chain           *extract.Chain
	cfg             ChromedpConfig
	domainLimiters  sync.Map
	logger          *zap.Logger
}

// NewChromedpCrawler launches the browser process and warms it up.
func NewChromedpCrawler(cfg ChromedpConfig, chain *extract.Chain, logger *zap.Logger) (*ChromedpCrawler, error) {
	cfg.applyDefaults()

	opts := chromedp.DefaultExecAllocatorOptions[:]
	opts = append(opts,
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(int(cfg.ViewportW), int(cfg.ViewportH)),
	)
	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocatorCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}

	return &ChromedpCrawler{
		allocatorCancel: allocatorCancel,
		browserCtx:      browserCtx,
		browserCancel:   browserCancel,
		chain:           chain,
		cfg:             cfg,
		logger:          logger,
	}, nil
}

// Close tears down the browser process and its allocator.
func (c *ChromedpCrawler) Close() error {
	if c == nil {
		return nil
	}
	c.browserCancel()
	c.allocatorCancel()
	return nil
}

// FetchJobs renders the target's career page and extracts job listings. An
// empty waitSelector falls back to the configured default. Navigation and
// selector-wait timeouts are not fatal: partial page content is often enough
// for the extraction chain.
func (c *ChromedpCrawler) FetchJobs(ctx context.Context, target jobs.CompanyTarget, waitSelector string) ([]jobs.NormalizedJob, error) {
	if waitSelector == "" {
		waitSelector = c.cfg.WaitSelector
	}
	careerURL, err := url.Parse(target.CareerPageURL)
	if err != nil {
		return nil, &CrawlError{Company: target.Name, Err: err}
	}

	if err := c.waitDomainBudget(ctx, careerURL); err != nil {
		return nil, &CrawlError{Company: target.Name, Err: err}
	}

	tabCtx, cancelTab := chromedp.NewContext(c.browserCtx)
	defer cancelTab()
	stopForward := forwardCancel(ctx, cancelTab)
	defer stopForward()

	log := c.logger.With(zap.String("company", target.Name))

	c.navigate(tabCtx, target.CareerPageURL, log)
	c.waitForSelector(tabCtx, waitSelector, log)

	if err := chromedp.Run(tabCtx, chromedp.Sleep(c.cfg.SettleDelay)); err != nil {
		return nil, &CrawlError{Company: target.Name, Err: fmt.Errorf("settle wait: %w", err)}
	}

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, &CrawlError{Company: target.Name, Err: fmt.Errorf("snapshot html: %w", err)}
	}

	page, err := extract.NewStaticPage(html, tabEvaluator{ctx: tabCtx})
	if err != nil {
		return nil, &CrawlError{Company: target.Name, Err: fmt.Errorf("parse snapshot: %w", err)}
	}

	records := c.chain.Extract(page, careerURL)
	normalized := jobs.NormalizeAll(records, target.Name, careerURL, localPlatformTag)
	return jobs.Dedupe(normalized), nil
}

// navigate loads the page under a bounded timeout. A timeout is logged and
// swallowed; partial content may still be extractable.
func (c *ChromedpCrawler) navigate(tabCtx context.Context, rawURL string, log *zap.Logger) {
	navCtx, cancel := context.WithTimeout(tabCtx, c.cfg.NavTimeout)
	defer cancel()

	tasks := chromedp.Tasks{
		network.Enable(),
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if err := chromedp.Run(navCtx, tasks); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn("navigation timed out, continuing with partial page",
				zap.Error(ErrNavigationTimeout),
				zap.Duration("timeout", c.cfg.NavTimeout),
			)
			return
		}
		log.Warn("navigation failed, attempting extraction anyway", zap.Error(err))
	}
}

// waitForSelector optionally waits for a caller-specified selector. Absence
// is not fatal.
func (c *ChromedpCrawler) waitForSelector(tabCtx context.Context, selector string, log *zap.Logger) {
	if selector == "" {
		return
	}
	selCtx, cancel := context.WithTimeout(tabCtx, c.cfg.WaitTimeout)
	defer cancel()

	if err := chromedp.Run(selCtx, chromedp.WaitReady(selector, chromedp.ByQuery)); err != nil {
		log.Debug("wait selector did not appear",
			zap.String("selector", selector),
			zap.Error(ErrSelectorNotFound),
		)
	}
}

func (c *ChromedpCrawler) waitDomainBudget(ctx context.Context, careerURL *url.URL) error {
	if c.cfg.DomainQPS <= 0 {
		return nil
	}
	host := strings.ToLower(careerURL.Host)
	val, _ := c.domainLimiters.LoadOrStore(host, rate.NewLimiter(rate.Limit(c.cfg.DomainQPS), 1))
	limiter, ok := val.(*rate.Limiter)
	if !ok {
		return fmt.Errorf("unexpected limiter type %T", val)
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait domain budget: %w", err)
	}
	return nil
}

// tabEvaluator lets the extraction chain run JavaScript in the live tab even
// though it queries a static snapshot of the DOM.
type tabEvaluator struct {
	ctx context.Context
}

func (e tabEvaluator) Evaluate(expr string, out any) error {
	evalCtx, cancel := context.WithTimeout(e.ctx, 10*time.Second)
	defer cancel()
	return chromedp.Run(evalCtx, chromedp.Evaluate(expr, out))
}

// forwardCancel propagates caller cancellation into a chromedp tab context.
func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
