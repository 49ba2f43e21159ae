package extract

import (
	"encoding/json"
	"net/url"
	"sort"
	"strings"

	"github.com/talentwire/jobs-crawler/internal/jobs"
)

// maxWalkDepth bounds the structured-data traversal on adversarial nesting.
const maxWalkDepth = 32

// structuredDataStrategy scans embedded JSON-LD script blocks and collects
// every object typed as a JobPosting, wherever it sits in the document.
type structuredDataStrategy struct{}

func (structuredDataStrategy) Name() string { return "structured_data" }

func (structuredDataStrategy) Extract(page Page, _ *url.URL) ([]jobs.RawJobRecord, error) {
	var out []jobs.RawJobRecord
	for _, block := range page.Find(`script[type="application/ld+json"]`) {
		text := strings.TrimSpace(block.Text())
		if text == "" {
			continue
		}
		var doc any
		// One unparseable block must not prevent parsing of the others.
		if err := json.Unmarshal([]byte(text), &doc); err != nil {
			continue
		}
		out = append(out, collectJobPostings(doc)...)
	}
	return out, nil
}

type walkItem struct {
	node  any
	depth int
}

// collectJobPostings walks arbitrary nested JSON with an explicit worklist
// rather than recursion. Arrays are visited in order so record order stays
// stable for deduplication.
func collectJobPostings(root any) []jobs.RawJobRecord {
	var out []jobs.RawJobRecord
	queue := []walkItem{{node: root}}
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		if item.depth > maxWalkDepth {
			continue
		}
		switch node := item.node.(type) {
		case map[string]any:
			if isJobPosting(node) {
				out = append(out, recordFromPosting(node))
				continue
			}
			for _, key := range sortedKeys(node) {
				queue = append(queue, walkItem{node: node[key], depth: item.depth + 1})
			}
		case []any:
			for _, child := range node {
				queue = append(queue, walkItem{node: child, depth: item.depth + 1})
			}
		}
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isJobPosting(node map[string]any) bool {
	switch typ := node["@type"].(type) {
	case string:
		return strings.EqualFold(typ, "JobPosting")
	case []any:
		for _, t := range typ {
			if s, ok := t.(string); ok && strings.EqualFold(s, "JobPosting") {
				return true
			}
		}
	}
	return false
}

// recordFromPosting flattens one JobPosting into a raw record the normalizer
// understands.
func recordFromPosting(node map[string]any) jobs.RawJobRecord {
	record := jobs.RawJobRecord{}
	if title, ok := node["title"].(string); ok {
		record["title"] = title
	}
	if loc := postingLocality(node["jobLocation"]); loc != "" {
		record["location"] = loc
	}
	if u, ok := node["url"].(string); ok && u != "" {
		record["url"] = u
	} else if org, ok := node["hiringOrganization"].(map[string]any); ok {
		if same, ok := org["sameAs"].(string); ok {
			record["url"] = same
		}
	}
	if et, ok := node["employmentType"].(string); ok {
		record["employmentType"] = et
	}
	if desc, ok := node["description"].(string); ok {
		record["description"] = desc
	}
	return record
}

// postingLocality digs addressLocality out of a jobLocation value, which may
// be a single Place or a list of them.
func postingLocality(value any) string {
	places, ok := value.([]any)
	if !ok {
		places = []any{value}
	}
	for _, place := range places {
		node, ok := place.(map[string]any)
		if !ok {
			continue
		}
		if addr, ok := node["address"].(map[string]any); ok {
			if loc, ok := addr["addressLocality"].(string); ok && loc != "" {
				return loc
			}
		}
		if name, ok := node["name"].(string); ok && name != "" {
			return name
		}
	}
	return ""
}
