package jobs

import "strings"

type dedupKey struct {
	url   string
	title string
}

// Dedupe removes duplicate listings within one crawl batch, keeping the first
// occurrence in iteration order. Two records with the same lower-cased
// trimmed (URL, title) pair are the same listing regardless of other fields.
// Records with an empty URL or title are dropped as a safety net.
func Dedupe(in []NormalizedJob) []NormalizedJob {
	seen := make(map[dedupKey]struct{}, len(in))
	out := make([]NormalizedJob, 0, len(in))
	for _, job := range in {
		key := dedupKey{
			url:   strings.ToLower(strings.TrimSpace(job.URL)),
			title: strings.ToLower(strings.TrimSpace(job.Title)),
		}
		if key.url == "" || key.title == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, job)
	}
	return out
}
