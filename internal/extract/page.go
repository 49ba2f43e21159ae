// Package extract pulls raw job records out of a rendered career page using
// an ordered chain of strategies.
package extract

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoScriptEngine is returned by pages that cannot evaluate JavaScript,
// such as snapshots taken from a plain HTTP fetch.
var ErrNoScriptEngine = errors.New("page has no script engine")

// Element is a single node in a rendered page.
type Element interface {
	Text() string
	Attr(name string) string
	Find(selector string) []Element
}

// Page abstracts a rendered page so strategies stay independent of the
// concrete browser library and testable against fakes.
type Page interface {
	Find(selector string) []Element
	Evaluate(expr string, out any) error
	HTML() string
}

// Evaluator runs a JavaScript expression in the page's global scope.
type Evaluator interface {
	Evaluate(expr string, out any) error
}

// StaticPage implements Page over an HTML snapshot using goquery. Script
// evaluation is delegated to the optional evaluator; a nil evaluator makes
// Evaluate fail with ErrNoScriptEngine, which the chain treats as "strategy
// produced nothing".
type StaticPage struct {
	doc  *goquery.Document
	eval Evaluator
	raw  string
}

// NewStaticPage parses an HTML snapshot into a queryable page.
func NewStaticPage(html string, eval Evaluator) (*StaticPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return &StaticPage{doc: doc, eval: eval, raw: html}, nil
}

// Find returns all elements matching the CSS selector.
func (p *StaticPage) Find(selector string) []Element {
	return wrapSelection(p.doc.Find(selector))
}

// Evaluate runs the expression through the configured script engine.
func (p *StaticPage) Evaluate(expr string, out any) error {
	if p.eval == nil {
		return ErrNoScriptEngine
	}
	return p.eval.Evaluate(expr, out)
}

// HTML returns the full serialized page.
func (p *StaticPage) HTML() string {
	return p.raw
}

type goqueryElement struct {
	sel *goquery.Selection
}

func (e goqueryElement) Text() string {
	return e.sel.Text()
}

func (e goqueryElement) Attr(name string) string {
	value, _ := e.sel.Attr(name)
	return value
}

func (e goqueryElement) Find(selector string) []Element {
	return wrapSelection(e.sel.Find(selector))
}

func wrapSelection(sel *goquery.Selection) []Element {
	out := make([]Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, goqueryElement{sel: s})
	})
	return out
}
