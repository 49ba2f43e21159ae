package crawler

import (
	"bytes"
)

// Default signals that a career page renders its listings client-side.
var (
	defaultJSKeywords = [][]byte{
		[]byte("you need to enable javascript"),
		[]byte("enable javascript to"),
		[]byte("__next_data__"),
		[]byte("data-reactroot"),
		[]byte("ng-app"),
		[]byte("<app-root"),
		[]byte("id=\"root\"></div>"),
	}
	defaultMinHTMLBytes = 2048
)

// HeuristicDetector flags pages that likely need JavaScript rendering. The
// primary stage uses it for diagnostics only; the fallback decision itself is
// driven by empty extraction results.
type HeuristicDetector struct {
	minHTMLBytes int
	keywords     [][]byte
}

// NewHeuristicDetector constructs a detector with the default thresholds.
func NewHeuristicDetector() *HeuristicDetector {
	return &HeuristicDetector{
		minHTMLBytes: defaultMinHTMLBytes,
		keywords:     defaultJSKeywords,
	}
}

// NeedsJS inspects the raw HTML for signals of client-side rendering.
func (d *HeuristicDetector) NeedsJS(body []byte) bool {
	if d == nil {
		return false
	}
	if d.minHTMLBytes > 0 && len(body) < d.minHTMLBytes {
		return true
	}
	lower := bytes.ToLower(body)
	for _, kw := range d.keywords {
		if bytes.Contains(lower, kw) {
			return true
		}
	}
	return false
}
