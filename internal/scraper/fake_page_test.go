package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/maltedev/fridge-capacity-crawler/internal/browser"
)

type nextState int

const (
	nextAbsent nextState = iota
	nextActive
	nextDisabled
)

// fakeListing simulates a paginated listing site. Page n shows numbered
// links for the pages in links[n] and a next control in state next[n].
type fakeListing struct {
	mu        sync.Mutex
	current   int
	content   map[int]string
	links     map[int][]int
	next      map[int]nextState
	nextClass string

	probes     []string
	clicks     []string
	navigated  []string
	contentErr error
	clickErr   error
	closed     bool
}

func newFakeListing() *fakeListing {
	return &fakeListing{
		current:   1,
		content:   make(map[int]string),
		links:     make(map[int][]int),
		next:      make(map[int]nextState),
		nextClass: "edge_nav nav_next",
	}
}

func (f *fakeListing) NewPage() (browser.Page, error) { return f, nil }

func (f *fakeListing) Navigate(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.navigated = append(f.navigated, url)
	return nil
}

func (f *fakeListing) Content(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.contentErr != nil {
		return "", f.contentErr
	}
	return f.content[f.current], nil
}

func (f *fakeListing) WaitClickable(ctx context.Context, loc browser.Locator, timeout time.Duration) (browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.probes = append(f.probes, loc.Expr)

	if loc.Kind == browser.ByCSS && loc.Expr == NextButtonSelector {
		switch f.next[f.current] {
		case nextActive:
			return &fakeElement{listing: f, class: f.nextClass, target: f.current + 1, name: "next"}, nil
		case nextDisabled:
			return &fakeElement{listing: f, class: f.nextClass + " off", target: f.current + 1, name: "next"}, nil
		}
		return nil, browser.ErrNotFound
	}

	for _, n := range f.links[f.current] {
		if loc == NumberLinkLocator(n) {
			return &fakeElement{listing: f, class: "num", target: n, name: fmt.Sprintf("num %d", n)}, nil
		}
	}
	return nil, browser.ErrNotFound
}

func (f *fakeListing) Close() error {
	f.closed = true
	return nil
}

func (f *fakeListing) probedNumbers() []string {
	var out []string
	for _, p := range f.probes {
		if strings.Contains(p, `@class, "num"`) {
			out = append(out, p)
		}
	}
	return out
}

type fakeElement struct {
	listing *fakeListing
	class   string
	target  int
	name    string
}

func (e *fakeElement) Attribute(ctx context.Context, name string) (string, error) {
	if name != "class" {
		return "", errors.New("unexpected attribute")
	}
	return e.class, nil
}

func (e *fakeElement) ScrollIntoView(ctx context.Context) error { return nil }

func (e *fakeElement) Click(ctx context.Context) error {
	e.listing.mu.Lock()
	defer e.listing.mu.Unlock()
	if e.listing.clickErr != nil {
		return e.listing.clickErr
	}
	e.listing.clicks = append(e.listing.clicks, e.name)
	e.listing.current = e.target
	return nil
}

type pauseRecorder struct {
	mu     sync.Mutex
	pauses []time.Duration
}

func (r *pauseRecorder) pause(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.pauses = append(r.pauses, d)
	r.mu.Unlock()
	return ctx.Err()
}

func listingPage(cards ...string) string {
	return `<html><body><ul>` + strings.Join(cards, "") + `</ul></body></html>`
}

func fridge(name string, total, fridgeL, freezer int) string {
	return fmt.Sprintf(`<li class="prod_item prod_layer"><p class="prod_name"><a>%s</a></p>`+
		`<div class="spec_list">총용량: %dL/냉장: %dL/냉동: %dL/</div></li>`, name, total, fridgeL, freezer)
}
