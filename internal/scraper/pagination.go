package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/maltedev/fridge-capacity-crawler/internal/browser"
	"github.com/maltedev/fridge-capacity-crawler/internal/models"
	"github.com/maltedev/fridge-capacity-crawler/internal/ratelimit"
)

const (
	DefaultProbeTimeout = 3 * time.Second
	DefaultSettlePause  = 500 * time.Millisecond
	DefaultReloadPause  = 2 * time.Second

	NextButtonSelector = "a.edge_nav.nav_next"
)

// Class markers that flag the next control as inactive on the last page.
var inactiveMarkers = []string{"disabled", "off"}

// Outcome is the result of one advancement attempt.
type Outcome int

const (
	AdvancedByNumber Outcome = iota
	AdvancedByNext
	EndOfListing
	NoControls
	NavigationFailed
)

func (o Outcome) Advanced() bool {
	return o == AdvancedByNumber || o == AdvancedByNext
}

func (o Outcome) String() string {
	switch o {
	case AdvancedByNumber:
		return "advanced_by_number"
	case AdvancedByNext:
		return "advanced_by_next"
	case EndOfListing:
		return "end_of_listing"
	case NoControls:
		return "no_controls"
	case NavigationFailed:
		return "navigation_failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// StopReason maps a failed advancement to the reason the crawl ended.
func (o Outcome) StopReason() models.StopReason {
	switch o {
	case EndOfListing:
		return models.StopEndOfListing
	case NoControls:
		return models.StopNoControls
	case NavigationFailed:
		return models.StopNavFailed
	default:
		return models.StopNone
	}
}

// NumberLinkLocator addresses the numbered pagination link for page n.
func NumberLinkLocator(n int) browser.Locator {
	return browser.XPath(fmt.Sprintf(`//a[contains(@class, "num") and normalize-space()="%d"]`, n))
}

func NextButtonLocator() browser.Locator {
	return browser.CSS(NextButtonSelector)
}

type PaginatorOptions struct {
	ProbeTimeout time.Duration
	SettlePause  time.Duration
	ReloadPause  time.Duration
}

func DefaultPaginatorOptions() PaginatorOptions {
	return PaginatorOptions{
		ProbeTimeout: DefaultProbeTimeout,
		SettlePause:  DefaultSettlePause,
		ReloadPause:  DefaultReloadPause,
	}
}

// Paginator moves a listing page forward by one page. Numbered links only
// cover a window around the current page, so it first probes for the link to
// page N+1 and falls back to the directional next control.
type Paginator struct {
	opts   PaginatorOptions
	pause  func(ctx context.Context, d time.Duration) error
	logger *slog.Logger
}

func NewPaginator(opts PaginatorOptions) *Paginator {
	return &Paginator{
		opts:   opts,
		pause:  ratelimit.Sleep,
		logger: slog.Default().With("component", "paginator"),
	}
}

// Next tries to display page currentPage+1. Only context cancellation is
// returned as an error; every other failure is reported through the Outcome.
func (p *Paginator) Next(ctx context.Context, page browser.Page, currentPage int) (Outcome, error) {
	target := currentPage + 1

	link, found, err := p.probe(ctx, page, NumberLinkLocator(target))
	if err != nil {
		return NavigationFailed, err
	}
	if found {
		if err := p.click(ctx, link); err != nil {
			return p.clickFailed(ctx, err, "number link", target)
		}
		p.logger.Info("clicked page link", "page", target)
		return AdvancedByNumber, nil
	}

	p.logger.Info("page link not visible, trying next button", "page", target)

	next, found, err := p.probe(ctx, page, NextButtonLocator())
	if err != nil {
		return NavigationFailed, err
	}
	if !found {
		p.logger.Info("next button not found, no further pages", "page", target)
		return NoControls, nil
	}

	if inactive(ctx, next) {
		p.logger.Info("next button is inactive, last page reached", "page", currentPage)
		return EndOfListing, nil
	}

	if err := p.click(ctx, next); err != nil {
		return p.clickFailed(ctx, err, "next button", target)
	}
	p.logger.Info("clicked next button", "page", target)
	return AdvancedByNext, nil
}

// probe waits for loc to become clickable. A timeout means not found.
func (p *Paginator) probe(ctx context.Context, page browser.Page, loc browser.Locator) (browser.Element, bool, error) {
	el, err := page.WaitClickable(ctx, loc, p.opts.ProbeTimeout)
	switch {
	case err == nil:
		return el, true, nil
	case ctx.Err() != nil:
		return nil, false, ctx.Err()
	case errors.Is(err, browser.ErrNotFound):
		return nil, false, nil
	default:
		p.logger.Warn("probe failed", "locator", loc.String(), "error", err)
		return nil, false, nil
	}
}

func (p *Paginator) click(ctx context.Context, el browser.Element) error {
	if err := el.ScrollIntoView(ctx); err != nil {
		return fmt.Errorf("failed to scroll into view: %w", err)
	}
	if err := p.pause(ctx, p.opts.SettlePause); err != nil {
		return err
	}
	if err := el.Click(ctx); err != nil {
		return fmt.Errorf("failed to click: %w", err)
	}
	return p.pause(ctx, p.opts.ReloadPause)
}

func (p *Paginator) clickFailed(ctx context.Context, err error, what string, target int) (Outcome, error) {
	if ctx.Err() != nil {
		return NavigationFailed, ctx.Err()
	}
	p.logger.Warn("navigation click failed", "control", what, "page", target, "error", err)
	return NavigationFailed, nil
}

func inactive(ctx context.Context, el browser.Element) bool {
	class, err := el.Attribute(ctx, "class")
	if err != nil {
		return false
	}
	for _, marker := range inactiveMarkers {
		if strings.Contains(class, marker) {
			return true
		}
	}
	return false
}
