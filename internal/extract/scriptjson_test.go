package extract

import (
	"encoding/json"
	"errors"
	"testing"
)

// scriptedPage fakes a browser page whose script engine returns a canned
// JSON value for every expression.
type scriptedPage struct {
	payload string
}

func (scriptedPage) Find(string) []Element { return nil }
func (scriptedPage) HTML() string          { return "" }

func (p scriptedPage) Evaluate(_ string, out any) error {
	return json.Unmarshal([]byte(p.payload), out)
}

func TestScriptJSONReturnsRowsFromEvaluator(t *testing.T) {
	page := scriptedPage{payload: `[{"title":"Platform Engineer","url":"/jobs/9"},{"title":"Data Engineer"}]`}

	records, err := scriptJSONStrategy{}.Extract(page, nil)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0]["title"] != "Platform Engineer" {
		t.Fatalf("records[0] = %+v", records[0])
	}
}

func TestScriptJSONSkipsEmptyRows(t *testing.T) {
	page := scriptedPage{payload: `[{},{"title":"Kept"}]`}

	records, err := scriptJSONStrategy{}.Extract(page, nil)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(records) != 1 || records[0]["title"] != "Kept" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestScriptJSONWithoutScriptEngine(t *testing.T) {
	page, err := NewStaticPage("<html><body></body></html>", nil)
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	_, err = scriptJSONStrategy{}.Extract(page, nil)
	if !errors.Is(err, ErrNoScriptEngine) {
		t.Fatalf("err = %v, want ErrNoScriptEngine", err)
	}
}
