package extract

import (
	"net/url"

	"github.com/talentwire/jobs-crawler/internal/jobs"
)

// jobsScanScript runs inside the page. It checks well-known globals a
// front-end app might expose its initial state under, then scans every inline
// script block for a "jobs" key and carves out the enclosing JSON object.
const jobsScanScript = `(() => {
  const asJobs = (value) => {
    if (!value || typeof value !== "object") return null;
    if (Array.isArray(value.jobs)) return value.jobs;
    if (value.data && Array.isArray(value.data.jobs)) return value.data.jobs;
    return null;
  };
  const globals = ["__INITIAL_STATE__", "__PRELOADED_STATE__", "__APP_STATE__", "jobsData", "initialData"];
  for (const name of globals) {
    const found = asJobs(window[name]);
    if (found && found.length) return found;
  }
  for (const script of document.querySelectorAll("script:not([src])")) {
    const text = script.textContent || "";
    const marker = text.indexOf('"jobs"');
    if (marker === -1) continue;
    let start = text.lastIndexOf("{", marker);
    while (start !== -1) {
      let depth = 0;
      for (let i = start; i < text.length; i++) {
        const ch = text[i];
        if (ch === "{") depth++;
        else if (ch === "}") {
          depth--;
          if (depth === 0) {
            try {
              const found = asJobs(JSON.parse(text.slice(start, i + 1)));
              if (found && found.length) return found;
            } catch (err) {}
            break;
          }
        }
      }
      start = start > 0 ? text.lastIndexOf("{", start - 1) : -1;
    }
  }
  return [];
})()`

// scriptJSONStrategy evaluates a page-scoped script that hunts for job data
// embedded in inline scripts or framework state globals. On pages without a
// script engine it yields nothing and the chain moves on.
type scriptJSONStrategy struct{}

func (scriptJSONStrategy) Name() string { return "script_json" }

func (scriptJSONStrategy) Extract(page Page, _ *url.URL) ([]jobs.RawJobRecord, error) {
	var rows []map[string]any
	if err := page.Evaluate(jobsScanScript, &rows); err != nil {
		return nil, err
	}
	records := make([]jobs.RawJobRecord, 0, len(rows))
	for _, row := range rows {
		if len(row) > 0 {
			records = append(records, jobs.RawJobRecord(row))
		}
	}
	return records, nil
}
