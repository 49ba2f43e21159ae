package jobs

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

const maxExternalIDLength = 255

// Candidate keys in priority order. Raw records come from many extraction
// paths and each names fields differently; first present key wins.
var (
	titleKeys       = []string{"title", "name", "position"}
	urlKeys         = []string{"url", "href", "link"}
	locationKeys    = []string{"location", "city", "address"}
	locationSubKeys = []string{"name", "locality", "addressLocality", "city"}
	descriptionKeys = []string{"description", "summary"}
	jobTypeKeys     = []string{"job_type", "employmentType", "type"}
)

// Normalize maps one raw record into the canonical schema. It reports false
// when the record has no usable title or normalization fails for any other
// reason; callers drop such records and continue with their siblings.
func Normalize(raw RawJobRecord, companyName string, careerURL *url.URL, platformTag string) (job NormalizedJob, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			job, ok = NormalizedJob{}, false
		}
	}()

	title := firstNonEmptyString(raw, titleKeys)
	if title == "" {
		return NormalizedJob{}, false
	}

	jobURL := resolveJobURL(raw, careerURL)

	return NormalizedJob{
		ExternalID:  buildExternalID(platformTag, companyName, jobURL, title),
		Title:       title,
		Company:     companyName,
		Location:    resolveLocation(raw),
		URL:         jobURL.String(),
		SourceURL:   jobURL.String(),
		Description: firstNonEmptyString(raw, descriptionKeys),
		JobType:     firstNonEmptyString(raw, jobTypeKeys),
		Platform:    platformTag,
	}, true
}

// NormalizeAll normalizes a batch, dropping records that fail individually.
func NormalizeAll(raws []RawJobRecord, companyName string, careerURL *url.URL, platformTag string) []NormalizedJob {
	out := make([]NormalizedJob, 0, len(raws))
	for _, raw := range raws {
		if job, ok := Normalize(raw, companyName, careerURL, platformTag); ok {
			out = append(out, job)
		}
	}
	return out
}

// resolveJobURL picks the first URL-ish field and resolves it against the
// career page URL. A record with no URL at all degrades to the career page
// itself rather than being dropped.
func resolveJobURL(raw RawJobRecord, careerURL *url.URL) *url.URL {
	rawURL := firstNonEmptyString(raw, urlKeys)
	if rawURL == "" {
		return careerURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return careerURL
	}
	if parsed.IsAbs() {
		return parsed
	}
	return careerURL.ResolveReference(parsed)
}

// resolveLocation handles both plain-string and structured location values.
func resolveLocation(raw RawJobRecord) string {
	for _, key := range locationKeys {
		value, present := raw[key]
		if !present || value == nil {
			continue
		}
		switch v := value.(type) {
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		case map[string]any:
			if name := locationNameFrom(v); name != "" {
				return name
			}
			return strings.TrimSpace(fmt.Sprint(v))
		case RawJobRecord:
			if name := locationNameFrom(v); name != "" {
				return name
			}
			return strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return ""
}

func locationNameFrom(m map[string]any) string {
	for _, key := range locationSubKeys {
		if s, ok := m[key].(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// buildExternalID derives a deterministic identifier from the source method,
// company, and URL path (or title when the path is empty), so idempotent
// re-crawls recognize previously seen listings.
func buildExternalID(platformTag, companyName string, jobURL *url.URL, title string) string {
	slug := strings.Trim(jobURL.Path, "/")
	slug = strings.ReplaceAll(slug, "/", "_")
	if slug == "" {
		slug = slugify(title)
	}
	id := fmt.Sprintf("%s_%s_%s", platformTag, slugify(companyName), slug)
	if len(id) > maxExternalIDLength {
		// Truncate on a rune boundary; company names and titles are not
		// guaranteed to be ASCII.
		cut := maxExternalIDLength
		for cut > 0 && !utf8.RuneStart(id[cut]) {
			cut--
		}
		id = id[:cut]
	}
	return id
}

func slugify(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

func firstNonEmptyString(raw RawJobRecord, keys []string) string {
	for _, key := range keys {
		if s, ok := raw[key].(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}
