package crawler

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/talentwire/jobs-crawler/internal/jobs"
)

var testTarget = jobs.CompanyTarget{Name: "Acme", CareerPageURL: "https://acme.example/careers"}

type spyPrimary struct {
	jobs   []jobs.NormalizedJob
	err    error
	panics bool
	calls  int
}

func (s *spyPrimary) FetchJobs(context.Context, jobs.CompanyTarget) ([]jobs.NormalizedJob, error) {
	s.calls++
	if s.panics {
		panic("primary exploded")
	}
	return s.jobs, s.err
}

type spyAPIFetcher struct {
	jobs       []jobs.NormalizedJob
	err        error
	fetchCalls int
	closeCalls int
}

func (s *spyAPIFetcher) FetchJobs(context.Context) ([]jobs.NormalizedJob, error) {
	s.fetchCalls++
	return s.jobs, s.err
}

func (s *spyAPIFetcher) Close() error {
	s.closeCalls++
	return nil
}

type spyRemote struct {
	healthy      bool
	jobs         []jobs.NormalizedJob
	err          error
	healthCalls  int
	crawlCalls   int
	lastSelector string
}

func (s *spyRemote) HealthCheck(context.Context) bool {
	s.healthCalls++
	return s.healthy
}

func (s *spyRemote) Crawl(_ context.Context, _ jobs.CompanyTarget, _ time.Duration, selector string) ([]jobs.NormalizedJob, error) {
	s.crawlCalls++
	s.lastSelector = selector
	return s.jobs, s.err
}

type spyBrowser struct {
	jobs         []jobs.NormalizedJob
	err          error
	calls        int
	lastSelector string
}

func (s *spyBrowser) FetchJobs(_ context.Context, _ jobs.CompanyTarget, selector string) ([]jobs.NormalizedJob, error) {
	s.calls++
	s.lastSelector = selector
	return s.jobs, s.err
}

func someJobs(titles ...string) []jobs.NormalizedJob {
	out := make([]jobs.NormalizedJob, 0, len(titles))
	for _, t := range titles {
		out = append(out, jobs.NormalizedJob{Title: t, URL: "https://acme.example/jobs/" + t})
	}
	return out
}

func newTestOrchestrator(cfg Config, primary PrimaryCrawler, api *spyAPIFetcher, remote RemoteBrowser, browser BrowserCrawler) *Orchestrator {
	var factory APIFetcherFactory
	if api != nil {
		factory = func(string, string) (APIFetcher, error) { return api, nil }
	}
	return NewOrchestrator(cfg, primary, factory, remote, browser, nil, zap.NewNop())
}

func TestPrimarySuccessShortCircuits(t *testing.T) {
	primary := &spyPrimary{jobs: someJobs("a", "b", "c")}
	api := &spyAPIFetcher{jobs: someJobs("x")}
	remote := &spyRemote{healthy: true, jobs: someJobs("y")}
	browser := &spyBrowser{jobs: someJobs("z")}
	o := newTestOrchestrator(Config{APIDetectionEnabled: true, BrowserEnabled: true}, primary, api, remote, browser)

	result := o.CrawlWithFallback(context.Background(), testTarget)
	if result.MethodUsed != jobs.MethodCareerPage {
		t.Fatalf("method = %q", result.MethodUsed)
	}
	if len(result.Jobs) != 3 {
		t.Fatalf("got %d jobs, want 3", len(result.Jobs))
	}
	if api.fetchCalls != 0 || remote.healthCalls != 0 || remote.crawlCalls != 0 || browser.calls != 0 {
		t.Fatal("later stages were invoked despite primary success")
	}
}

func TestPrimaryErrorAdvancesToAPI(t *testing.T) {
	primary := &spyPrimary{err: errors.New("career page down")}
	api := &spyAPIFetcher{jobs: someJobs("x")}
	o := newTestOrchestrator(Config{APIDetectionEnabled: true}, primary, api, nil, nil)

	result := o.CrawlWithFallback(context.Background(), testTarget)
	if result.MethodUsed != jobs.MethodAPIFallback {
		t.Fatalf("method = %q", result.MethodUsed)
	}
	if api.fetchCalls != 1 {
		t.Fatalf("api fetch calls = %d", api.fetchCalls)
	}
	if api.closeCalls != 1 {
		t.Fatalf("api fetcher not released, close calls = %d", api.closeCalls)
	}
}

func TestPrimaryPanicIsContained(t *testing.T) {
	primary := &spyPrimary{panics: true}
	api := &spyAPIFetcher{jobs: someJobs("x")}
	o := newTestOrchestrator(Config{APIDetectionEnabled: true}, primary, api, nil, nil)

	result := o.CrawlWithFallback(context.Background(), testTarget)
	if result.MethodUsed != jobs.MethodAPIFallback {
		t.Fatalf("method = %q", result.MethodUsed)
	}
}

func TestAPISkippedWhenDetectionDisabled(t *testing.T) {
	primary := &spyPrimary{}
	api := &spyAPIFetcher{jobs: someJobs("x")}
	o := newTestOrchestrator(Config{APIDetectionEnabled: false}, primary, api, nil, nil)

	result := o.CrawlWithFallback(context.Background(), testTarget)
	if result.MethodUsed != jobs.MethodNoResults {
		t.Fatalf("method = %q", result.MethodUsed)
	}
	if api.fetchCalls != 0 {
		t.Fatal("api stage invoked despite detection disabled")
	}
	if len(result.Jobs) != 0 {
		t.Fatalf("got %d jobs, want 0", len(result.Jobs))
	}
}

func TestBrowserStagesSkippedWhenDisabled(t *testing.T) {
	primary := &spyPrimary{}
	remote := &spyRemote{healthy: true, jobs: someJobs("y")}
	browser := &spyBrowser{jobs: someJobs("z")}
	o := newTestOrchestrator(Config{BrowserEnabled: false}, primary, nil, remote, browser)

	result := o.CrawlWithFallback(context.Background(), testTarget)
	if result.MethodUsed != jobs.MethodNoResults {
		t.Fatalf("method = %q", result.MethodUsed)
	}
	if remote.healthCalls != 0 || browser.calls != 0 {
		t.Fatal("browser stages invoked despite being disabled")
	}
}

func TestUnhealthyRemoteFallsThroughToLocal(t *testing.T) {
	primary := &spyPrimary{}
	remote := &spyRemote{healthy: false, jobs: someJobs("y")}
	browser := &spyBrowser{jobs: someJobs("z")}
	o := newTestOrchestrator(Config{BrowserEnabled: true}, primary, nil, remote, browser)

	result := o.CrawlWithFallback(context.Background(), testTarget)
	if result.MethodUsed != jobs.MethodBrowserFallback {
		t.Fatalf("method = %q", result.MethodUsed)
	}
	if remote.crawlCalls != 0 {
		t.Fatal("crawl called on unhealthy remote")
	}
	if browser.calls != 1 {
		t.Fatalf("browser calls = %d", browser.calls)
	}
}

func TestLocalBrowserReceivesWaitSelector(t *testing.T) {
	primary := &spyPrimary{}
	remote := &spyRemote{healthy: false}
	browser := &spyBrowser{jobs: someJobs("z")}
	o := newTestOrchestrator(Config{BrowserEnabled: true, WaitSelector: ".job-board"}, primary, nil, remote, browser)

	result := o.CrawlWithFallback(context.Background(), testTarget)
	if result.MethodUsed != jobs.MethodBrowserFallback {
		t.Fatalf("method = %q", result.MethodUsed)
	}
	if browser.lastSelector != ".job-board" {
		t.Fatalf("local browser wait selector = %q, want .job-board", browser.lastSelector)
	}
}

func TestEmptyRemoteResultFallsThroughToLocal(t *testing.T) {
	primary := &spyPrimary{}
	remote := &spyRemote{healthy: true}
	browser := &spyBrowser{jobs: someJobs("z")}
	o := newTestOrchestrator(Config{BrowserEnabled: true}, primary, nil, remote, browser)

	result := o.CrawlWithFallback(context.Background(), testTarget)
	if result.MethodUsed != jobs.MethodBrowserFallback {
		t.Fatalf("method = %q", result.MethodUsed)
	}
	if remote.crawlCalls != 1 {
		t.Fatalf("remote crawl calls = %d", remote.crawlCalls)
	}
}

func TestRemoteSuccessSkipsLocal(t *testing.T) {
	primary := &spyPrimary{}
	remote := &spyRemote{healthy: true, jobs: someJobs("y")}
	browser := &spyBrowser{jobs: someJobs("z")}
	o := newTestOrchestrator(Config{BrowserEnabled: true, WaitSelector: ".jobs"}, primary, nil, remote, browser)

	result := o.CrawlWithFallback(context.Background(), testTarget)
	if result.MethodUsed != jobs.MethodPuppeteerFallback {
		t.Fatalf("method = %q", result.MethodUsed)
	}
	if browser.calls != 0 {
		t.Fatal("local browser invoked despite remote success")
	}
	if remote.lastSelector != ".jobs" {
		t.Fatalf("wait selector = %q", remote.lastSelector)
	}
}

func TestAllStagesExhaustedYieldsNoResults(t *testing.T) {
	primary := &spyPrimary{err: errors.New("down")}
	api := &spyAPIFetcher{err: errors.New("no ats")}
	remote := &spyRemote{healthy: true, err: errors.New("service error")}
	browser := &spyBrowser{err: errors.New("chrome crashed")}
	o := newTestOrchestrator(Config{APIDetectionEnabled: true, BrowserEnabled: true}, primary, api, remote, browser)

	result := o.CrawlWithFallback(context.Background(), testTarget)
	if result.MethodUsed != jobs.MethodNoResults {
		t.Fatalf("method = %q", result.MethodUsed)
	}
	if result.Jobs == nil || len(result.Jobs) != 0 {
		t.Fatalf("jobs = %+v, want empty non-nil slice", result.Jobs)
	}
	if primary.calls != 1 || api.fetchCalls != 1 || remote.crawlCalls != 1 || browser.calls != 1 {
		t.Fatal("each stage should run exactly once")
	}
}
