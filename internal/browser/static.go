package browser

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// StaticSession serves pages loaded by a Loader and parsed without a script
// engine. The markup seen is the server response, before any JavaScript runs.
type StaticSession struct {
	page *staticPage
}

// NewStaticSession creates a StaticSession that loads pages with loader.
func NewStaticSession(loader Loader) *StaticSession {
	return &StaticSession{page: &staticPage{loader: loader}}
}

// Page returns the session page.
func (s *StaticSession) Page() Page {
	return s.page
}

// Name returns "static".
func (s *StaticSession) Name() string {
	return "static"
}

// Close releases the current document.
func (s *StaticSession) Close() error {
	s.page.doc = nil
	return nil
}

type staticPage struct {
	loader Loader
	doc    *goquery.Document
	base   *url.URL
}

func (p *staticPage) Navigate(ctx context.Context, rawURL string) error {
	body, finalURL, err := p.loader.Load(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", rawURL, err)
	}

	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", finalURL, err)
	}

	base, err := url.Parse(finalURL)
	if err != nil {
		return fmt.Errorf("invalid document url %q: %w", finalURL, err)
	}

	doc := goquery.NewDocumentFromNode(root)
	doc.Url = base
	p.doc = doc
	p.base = base
	return nil
}

func (p *staticPage) Find(ctx context.Context, sel Selector) (Element, error) {
	if p.doc == nil {
		return nil, ErrNotNavigated
	}
	return p.first(p.doc.Selection, sel)
}

func (p *staticPage) FindAll(ctx context.Context, sel Selector) ([]Element, error) {
	if p.doc == nil {
		return nil, ErrNotNavigated
	}
	return p.all(p.doc.Selection, sel), nil
}

// Evaluate always fails: there is no script engine.
func (p *staticPage) Evaluate(ctx context.Context, expr string, res any) error {
	return fmt.Errorf("evaluate: %w", ErrUnsupported)
}

func (p *staticPage) first(from *goquery.Selection, sel Selector) (Element, error) {
	found := from.Find(sel.CSS()).First()
	if found.Length() == 0 {
		return nil, fmt.Errorf("%s: %w", sel, ErrNotFound)
	}
	return &staticElement{page: p, sel: found}, nil
}

func (p *staticPage) all(from *goquery.Selection, sel Selector) []Element {
	found := from.Find(sel.CSS())
	elems := make([]Element, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		elems = append(elems, &staticElement{page: p, sel: s})
	})
	return elems
}

type staticElement struct {
	page *staticPage
	sel  *goquery.Selection
}

func (e *staticElement) Find(ctx context.Context, sel Selector) (Element, error) {
	return e.page.first(e.sel, sel)
}

func (e *staticElement) FindAll(ctx context.Context, sel Selector) ([]Element, error) {
	return e.page.all(e.sel, sel), nil
}

// Text collapses whitespace runs the way rendered text would.
func (e *staticElement) Text(ctx context.Context) (string, error) {
	return strings.Join(strings.Fields(e.sel.Text()), " "), nil
}

func (e *staticElement) Attribute(ctx context.Context, name string) (string, error) {
	value, ok := e.sel.Attr(name)
	if !ok {
		return "", nil
	}
	if (name == "href" || name == "src") && e.page.base != nil {
		raw := strings.TrimSpace(value)
		ref, err := url.Parse(raw)
		if err != nil {
			return value, nil
		}
		resolved := e.page.base.ResolveReference(ref).String()
		// url.URL drops an empty fragment; the DOM keeps the bare "#".
		if strings.HasSuffix(raw, "#") && ref.Fragment == "" {
			resolved += "#"
		}
		return resolved, nil
	}
	return value, nil
}

func (e *staticElement) OuterHTML(ctx context.Context) (string, error) {
	out, err := goquery.OuterHtml(e.sel)
	if err != nil {
		return "", fmt.Errorf("failed to render outer html: %w", err)
	}
	return out, nil
}

// Click always fails: there is no script engine.
func (e *staticElement) Click(ctx context.Context) error {
	return fmt.Errorf("click: %w", ErrUnsupported)
}
