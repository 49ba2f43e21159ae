package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// stageAttempts counts how often each fallback stage was entered.
	stageAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobs_crawler_stage_attempts_total",
		Help: "The number of times each fallback stage was attempted.",
	}, []string{"stage"})
	// stageFailures counts stage-level failures (exceptions or errors).
	stageFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobs_crawler_stage_failures_total",
		Help: "The number of stage-level failures, by stage.",
	}, []string{"stage"})
	// crawlsByMethod counts completed crawls by the method that won.
	crawlsByMethod = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobs_crawler_crawls_total",
		Help: "The number of completed fallback crawls, by winning method.",
	}, []string{"method"})
	// jobsExtracted counts normalized, deduplicated jobs returned to callers.
	jobsExtracted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobs_crawler_jobs_extracted_total",
		Help: "The number of job listings extracted, by method.",
	}, []string{"method"})
)
