package extract

import (
	"net/url"
	"strings"

	"github.com/talentwire/jobs-crawler/internal/jobs"
)

// maxDOMElements caps how many matched containers one selector may yield.
const maxDOMElements = 50

// Plausible job-listing container hooks, most specific first. Scanning stops
// at the first selector that produces at least one record.
var containerSelectors = []string{
	"[data-job-id]",
	"[data-job]",
	".job-listing",
	".job-card",
	".job-item",
	".job-post",
	"li[class*='job']",
	"div[class*='job']",
	"article[class*='job']",
	"[class*='position']",
	"[class*='opening']",
	"[class*='vacancy']",
	"[class*='career']",
}

var titleSelectors = []string{"h1", "h2", "h3", "h4", "[class*='title']", "a"}

var locationSelectors = []string{"[class*='location']", "[class*='city']"}

// domHeuristicStrategy walks class-name and data-attribute hooks commonly
// used for job cards.
type domHeuristicStrategy struct{}

func (domHeuristicStrategy) Name() string { return "dom_heuristic" }

func (domHeuristicStrategy) Extract(page Page, careerURL *url.URL) ([]jobs.RawJobRecord, error) {
	for _, selector := range containerSelectors {
		elements := page.Find(selector)
		if len(elements) == 0 {
			continue
		}
		if len(elements) > maxDOMElements {
			elements = elements[:maxDOMElements]
		}
		records := make([]jobs.RawJobRecord, 0, len(elements))
		for _, el := range elements {
			if record, ok := recordFromElement(el, careerURL); ok {
				records = append(records, record)
			}
		}
		if len(records) > 0 {
			return records, nil
		}
	}
	return nil, nil
}

// recordFromElement extracts one container independently; an element without
// a title contributes no record.
func recordFromElement(el Element, careerURL *url.URL) (jobs.RawJobRecord, bool) {
	title := ""
	for _, sel := range titleSelectors {
		if found := el.Find(sel); len(found) > 0 {
			title = strings.TrimSpace(found[0].Text())
		}
		if title != "" {
			break
		}
	}
	if title == "" {
		return nil, false
	}

	record := jobs.RawJobRecord{"title": title}

	href := el.Attr("href")
	if href == "" {
		if anchors := el.Find("a"); len(anchors) > 0 {
			href = anchors[0].Attr("href")
		}
	}
	if href != "" {
		record["url"] = resolveHref(href, careerURL)
	}

	for _, sel := range locationSelectors {
		if found := el.Find(sel); len(found) > 0 {
			if loc := strings.TrimSpace(found[0].Text()); loc != "" {
				record["location"] = loc
				break
			}
		}
	}

	return record, true
}

func resolveHref(href string, careerURL *url.URL) string {
	parsed, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	if parsed.IsAbs() || careerURL == nil {
		return parsed.String()
	}
	return careerURL.ResolveReference(parsed).String()
}
