package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/talentwire/jobs-crawler/internal/extract"
	"github.com/talentwire/jobs-crawler/internal/jobs"
)

const staticCareerPage = `<!doctype html><html><head>
<script type="application/ld+json">
{"@type":"JobPosting","title":"Backend Engineer","url":"/jobs/42",
 "jobLocation":{"address":{"addressLocality":"Berlin"}}}
</script>
</head><body><h1>Careers</h1></body></html>`

func newTestCollyCrawler(t *testing.T) *CollyCrawler {
	t.Helper()
	c, err := NewCollyCrawler(CollyConfig{}, extract.NewChain(zap.NewNop()), zap.NewNop())
	if err != nil {
		t.Fatalf("new colly crawler: %v", err)
	}
	return c
}

func TestCollyCrawlerExtractsStaticListings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, staticCareerPage)
	}))
	defer srv.Close()

	c := newTestCollyCrawler(t)
	target := jobs.CompanyTarget{Name: "Acme", CareerPageURL: srv.URL + "/careers"}

	found, err := c.FetchJobs(context.Background(), target)
	if err != nil {
		t.Fatalf("fetch jobs: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("got %d jobs, want 1: %+v", len(found), found)
	}
	if found[0].Title != "Backend Engineer" {
		t.Fatalf("title = %q", found[0].Title)
	}
	if found[0].URL != srv.URL+"/jobs/42" {
		t.Fatalf("url = %q", found[0].URL)
	}
	if found[0].Platform != "html" {
		t.Fatalf("platform = %q", found[0].Platform)
	}
	if found[0].Location != "Berlin" {
		t.Fatalf("location = %q", found[0].Location)
	}
}

func TestCollyCrawlerEmptyPageYieldsNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<!doctype html><html><body><div id="root"></div></body></html>`)
	}))
	defer srv.Close()

	c := newTestCollyCrawler(t)
	target := jobs.CompanyTarget{Name: "Acme", CareerPageURL: srv.URL}

	found, err := c.FetchJobs(context.Background(), target)
	if err != nil {
		t.Fatalf("fetch jobs: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("got %d jobs, want 0", len(found))
	}
}

func TestCollyCrawlerServerErrorReturnsCrawlError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestCollyCrawler(t)
	target := jobs.CompanyTarget{Name: "Acme", CareerPageURL: srv.URL}

	if _, err := c.FetchJobs(context.Background(), target); err == nil {
		t.Fatal("expected error for 503 career page")
	}
}
