package crawler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/talentwire/jobs-crawler/internal/jobs"
)

// Stage names used in logs and metrics.
const (
	stagePrimary       = "primary"
	stageAPI           = "api"
	stageRemoteBrowser = "remote_browser"
	stageLocalBrowser  = "local_browser"
)

// Orchestrator sequences the fallback chain for one target at a time. Stages
// run strictly one after another and each is tried at most once per crawl, so
// a target site never sees simultaneous automated requests from one crawl.
// Instances share no mutable state; callers may run one per target
// concurrently.
type Orchestrator struct {
	cfg        Config
	primary    PrimaryCrawler
	apiFactory APIFetcherFactory
	remote     RemoteBrowser
	browser    BrowserCrawler
	idGen      IDGenerator
	logger     *zap.Logger
}

// NewOrchestrator wires the fallback stages. Any collaborator other than the
// primary crawler may be nil; its stage is then skipped.
func NewOrchestrator(
	cfg Config,
	primary PrimaryCrawler,
	apiFactory APIFetcherFactory,
	remote RemoteBrowser,
	browser BrowserCrawler,
	idGen IDGenerator,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		primary:    primary,
		apiFactory: apiFactory,
		remote:     remote,
		browser:    browser,
		idGen:      idGen,
		logger:     logger,
	}
}

// CrawlWithFallback runs the chain for one target. It never returns an error
// and never panics; the worst case is an empty job list tagged no_results.
// Transitions happen only on "no result" (empty list or failure), never on
// success, and the returned jobs always come from a single stage.
func (o *Orchestrator) CrawlWithFallback(ctx context.Context, target jobs.CompanyTarget) jobs.CrawlResult {
	log := o.logger.With(
		zap.String("company", target.Name),
		zap.String("career_url", target.CareerPageURL),
	)
	if o.idGen != nil {
		if id, err := o.idGen.NewID(); err == nil {
			log = log.With(zap.String("request_id", id))
		}
	}

	if found := o.runPrimary(ctx, target, log); len(found) > 0 {
		return o.done(found, jobs.MethodCareerPage, log)
	}

	if o.cfg.APIDetectionEnabled {
		if found := o.runAPI(ctx, target, log); len(found) > 0 {
			return o.done(found, jobs.MethodAPIFallback, log)
		}
	}

	if o.cfg.BrowserEnabled {
		if found := o.runRemoteBrowser(ctx, target, log); len(found) > 0 {
			return o.done(found, jobs.MethodPuppeteerFallback, log)
		}
		if found := o.runLocalBrowser(ctx, target, log); len(found) > 0 {
			return o.done(found, jobs.MethodBrowserFallback, log)
		}
	}

	log.Info("all crawl stages exhausted")
	crawlsByMethod.WithLabelValues(string(jobs.MethodNoResults)).Inc()
	return jobs.CrawlResult{Jobs: []jobs.NormalizedJob{}, MethodUsed: jobs.MethodNoResults}
}

func (o *Orchestrator) done(found []jobs.NormalizedJob, method jobs.CrawlMethod, log *zap.Logger) jobs.CrawlResult {
	log.Info("crawl succeeded",
		zap.String("method", string(method)),
		zap.Int("jobs", len(found)),
	)
	crawlsByMethod.WithLabelValues(string(method)).Inc()
	jobsExtracted.WithLabelValues(string(method)).Add(float64(len(found)))
	return jobs.CrawlResult{Jobs: found, MethodUsed: method}
}

func (o *Orchestrator) runPrimary(ctx context.Context, target jobs.CompanyTarget, log *zap.Logger) []jobs.NormalizedJob {
	if o.primary == nil {
		return nil
	}
	return o.runStage(stagePrimary, log, func() ([]jobs.NormalizedJob, error) {
		return o.primary.FetchJobs(ctx, target)
	})
}

func (o *Orchestrator) runAPI(ctx context.Context, target jobs.CompanyTarget, log *zap.Logger) []jobs.NormalizedJob {
	if o.apiFactory == nil {
		return nil
	}
	return o.runStage(stageAPI, log, func() ([]jobs.NormalizedJob, error) {
		fetcher, err := o.apiFactory(target.Name, target.CareerPageURL)
		if err != nil {
			return nil, err
		}
		defer func() {
			if cerr := fetcher.Close(); cerr != nil {
				log.Debug("api fetcher close failed", zap.Error(cerr))
			}
		}()
		return fetcher.FetchJobs(ctx)
	})
}

func (o *Orchestrator) runRemoteBrowser(ctx context.Context, target jobs.CompanyTarget, log *zap.Logger) []jobs.NormalizedJob {
	if o.remote == nil {
		return nil
	}
	return o.runStage(stageRemoteBrowser, log, func() ([]jobs.NormalizedJob, error) {
		if !o.remote.HealthCheck(ctx) {
			return nil, ErrServiceUnavailable
		}
		return o.remote.Crawl(ctx, target, o.cfg.BrowserTimeout, o.cfg.WaitSelector)
	})
}

func (o *Orchestrator) runLocalBrowser(ctx context.Context, target jobs.CompanyTarget, log *zap.Logger) []jobs.NormalizedJob {
	if o.browser == nil {
		return nil
	}
	return o.runStage(stageLocalBrowser, log, func() ([]jobs.NormalizedJob, error) {
		return o.browser.FetchJobs(ctx, target, o.cfg.WaitSelector)
	})
}

// runStage executes one stage with full failure containment. Errors and
// panics are logged and counted, then treated as "no result".
func (o *Orchestrator) runStage(stage string, log *zap.Logger, fn func() ([]jobs.NormalizedJob, error)) []jobs.NormalizedJob {
	stageAttempts.WithLabelValues(stage).Inc()
	found, err := callSafely(fn)
	if err != nil {
		stageFailures.WithLabelValues(stage).Inc()
		log.Warn("crawl stage failed", zap.String("stage", stage), zap.Error(err))
		return nil
	}
	if len(found) == 0 {
		log.Debug("crawl stage found nothing", zap.String("stage", stage))
		return nil
	}
	return found
}

func callSafely(fn func() ([]jobs.NormalizedJob, error)) (found []jobs.NormalizedJob, err error) {
	defer func() {
		if r := recover(); r != nil {
			found, err = nil, fmt.Errorf("stage panicked: %v", r)
		}
	}()
	return fn()
}
