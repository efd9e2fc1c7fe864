package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/maltedev/fridge-capacity-crawler/internal/browser"
	"github.com/maltedev/fridge-capacity-crawler/internal/models"
	"github.com/maltedev/fridge-capacity-crawler/internal/ratelimit"
)

const (
	DefaultStartURL    = "https://prod.danawa.com/list/?cate=102110"
	DefaultMaxPages    = 200
	DefaultInitialWait = 3 * time.Second
)

type CrawlerOptions struct {
	StartURL    string
	MaxPages    int
	InitialWait time.Duration
	Pagination  PaginatorOptions
	// PageDelay spaces page advances. Zero keeps the fixed pauses only.
	PageDelayMin time.Duration
	PageDelayMax time.Duration
}

func DefaultCrawlerOptions() CrawlerOptions {
	return CrawlerOptions{
		StartURL:    DefaultStartURL,
		MaxPages:    DefaultMaxPages,
		InitialWait: DefaultInitialWait,
		Pagination:  DefaultPaginatorOptions(),
	}
}

// ListingCrawler walks a paginated listing page by page, collecting rows
// until the listing ends or the page cap is reached.
type ListingCrawler struct {
	session   browser.Session
	parser    ListingParser
	paginator *Paginator
	robots    RobotsChecker
	rateLimit ratelimit.RateLimiter
	state     *models.CrawlState
	opts      CrawlerOptions
	logger    *slog.Logger
}

func NewListingCrawler(session browser.Session, p ListingParser, state *models.CrawlState, opts CrawlerOptions) *ListingCrawler {
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}

	return &ListingCrawler{
		session:   session,
		parser:    p,
		paginator: NewPaginator(opts.Pagination),
		rateLimit: ratelimit.NewSimpleRateLimiter(opts.PageDelayMin, opts.PageDelayMax),
		state:     state,
		opts:      opts,
		logger:    slog.Default().With("component", "listing_crawler"),
	}
}

// WithRobots makes Crawl consult robots.txt before opening the start URL.
func (c *ListingCrawler) WithRobots(r RobotsChecker) *ListingCrawler {
	c.robots = r
	return c
}

// Crawl runs the traversal and returns the final snapshot. Reaching the page
// cap and failing to advance are both normal ends. On cancellation the rows
// gathered so far are returned together with the context error.
func (c *ListingCrawler) Crawl(ctx context.Context) (models.Snapshot, error) {
	if err := c.checkStartURL(ctx); err != nil {
		c.state.Finish(models.StopPageError)
		return c.state.Snapshot(), err
	}

	c.logger.Info("starting listing crawl", "url", c.opts.StartURL, "max_pages", c.opts.MaxPages)

	page, err := c.session.NewPage()
	if err != nil {
		c.state.Finish(models.StopPageError)
		return c.state.Snapshot(), fmt.Errorf("failed to create page: %w", err)
	}
	defer page.Close()

	if err := page.Navigate(ctx, c.opts.StartURL); err != nil {
		c.state.Finish(models.StopPageError)
		return c.state.Snapshot(), fmt.Errorf("failed to open listing: %w", err)
	}

	if err := c.paginator.pause(ctx, c.opts.InitialWait); err != nil {
		c.state.Finish(models.StopCancelled)
		return c.state.Snapshot(), err
	}

	reason, err := c.loop(ctx, page)
	c.state.Finish(reason)

	snap := c.state.Snapshot()
	c.logger.Info("listing crawl completed",
		"pages", snap.PagesVisited,
		"rows", len(snap.Rows),
		"stop_reason", reason,
	)

	return snap, err
}

func (c *ListingCrawler) loop(ctx context.Context, page browser.Page) (models.StopReason, error) {
	for {
		current := c.state.CurrentPage()
		if current > c.opts.MaxPages {
			return models.StopPageCap, nil
		}

		c.logger.Info("processing listing page", "page", current)

		if err := ctx.Err(); err != nil {
			return models.StopCancelled, err
		}

		if err := c.processPage(ctx, page, current); err != nil {
			if ctx.Err() != nil {
				return models.StopCancelled, ctx.Err()
			}
			c.logger.Error("page extraction failed", "page", current, "error", err)
			return models.StopPageError, nil
		}

		if current >= c.opts.MaxPages {
			c.logger.Info("reached max pages limit", "pages", current)
			return models.StopPageCap, nil
		}

		if err := c.rateLimit.Wait(ctx); err != nil {
			return models.StopCancelled, err
		}

		outcome, err := c.paginator.Next(ctx, page, current)
		if err != nil {
			return models.StopCancelled, err
		}
		if !outcome.Advanced() {
			c.logger.Info("no more pages", "page", current, "outcome", outcome.String())
			return outcome.StopReason(), nil
		}

		c.state.Advance()
	}
}

func (c *ListingCrawler) processPage(ctx context.Context, page browser.Page, current int) error {
	content, err := page.Content(ctx)
	if err != nil {
		return err
	}

	rows, stats, err := c.parser.ParseListing(content)
	if err != nil {
		return err
	}

	c.state.AddPage(rows)

	c.logger.Info("extracted products from page",
		"page", current,
		"rows", stats.Emitted,
		"candidates", stats.Candidates,
		"missing_name", stats.MissingName,
		"missing_spec", stats.MissingSpec,
		"incomplete", stats.Incomplete,
	)

	return nil
}

func (c *ListingCrawler) checkStartURL(ctx context.Context) error {
	u, err := url.Parse(c.opts.StartURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidStartURL, c.opts.StartURL)
	}

	if c.robots == nil {
		return nil
	}

	allowed, err := c.robots.Allowed(ctx, c.opts.StartURL)
	if err != nil {
		c.logger.Warn("robots.txt check failed, continuing", "error", err)
		return nil
	}
	if !allowed {
		return fmt.Errorf("%w: %s", ErrDisallowed, c.opts.StartURL)
	}
	return nil
}
