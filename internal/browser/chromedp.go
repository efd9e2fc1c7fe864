package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// ChromedpSession drives Chrome over the DevTools protocol directly, for hosts
// where the playwright driver bundle is not installed.
type ChromedpSession struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	opts          *Options
	logger        *slog.Logger
}

func NewChromedp(ctx context.Context, opts *Options) (*ChromedpSession, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.NoSandbox,
		chromedp.WindowSize(opts.ViewportWidth, opts.ViewportHeight),
		chromedp.UserAgent(opts.UserAgent),
	)
	if opts.ProxyServer != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.ProxyServer))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// The first Run starts the browser process.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	return &ChromedpSession{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		opts:          opts,
		logger:        slog.Default().With("component", "browser", "driver", DriverChromedp),
	}, nil
}

func (b *ChromedpSession) NewPage() (Page, error) {
	tabCtx, tabCancel := chromedp.NewContext(b.browserCtx)
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		return nil, fmt.Errorf("failed to create new page: %w", err)
	}

	return &chromedpPage{
		ctx:     tabCtx,
		cancel:  tabCancel,
		timeout: b.opts.Timeout,
		logger:  b.logger,
	}, nil
}

func (b *ChromedpSession) Close() error {
	var err error
	if b.browserCtx != nil {
		err = chromedp.Cancel(b.browserCtx)
	}
	b.browserCancel()
	b.allocCancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}

type chromedpPage struct {
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
	logger  *slog.Logger
}

// run executes actions on the tab, bounded by timeout and by the caller's ctx.
func (p *chromedpPage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (p *chromedpPage) Navigate(ctx context.Context, url string) error {
	if err := p.run(ctx, p.timeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	p.logger.Debug("page loaded", "url", url)
	return nil
}

func (p *chromedpPage) Content(ctx context.Context) (string, error) {
	var content string
	if err := p.run(ctx, p.timeout, chromedp.OuterHTML("html", &content, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to get page content: %w", err)
	}
	return content, nil
}

func (p *chromedpPage) WaitClickable(ctx context.Context, loc Locator, timeout time.Duration) (Element, error) {
	by := chromedp.ByQuery
	if loc.Kind == ByXPath {
		by = chromedp.BySearch
	}

	var nodes []*cdp.Node
	err := p.run(ctx, timeout,
		chromedp.WaitVisible(loc.Expr, by),
		chromedp.WaitEnabled(loc.Expr, by),
		chromedp.Nodes(loc.Expr, &nodes, by, chromedp.AtLeast(1)),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to wait for %s: %w", loc, err)
	}
	if len(nodes) == 0 {
		return nil, ErrNotFound
	}

	return &chromedpElement{page: p, node: nodes[0]}, nil
}

func (p *chromedpPage) Close() error {
	p.cancel()
	return nil
}

type chromedpElement struct {
	page *chromedpPage
	node *cdp.Node
}

func (e *chromedpElement) Attribute(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return e.node.AttributeValue(name), nil
}

func (e *chromedpElement) ScrollIntoView(ctx context.Context) error {
	return e.callOn(ctx, "function() { this.scrollIntoView(true); }")
}

func (e *chromedpElement) Click(ctx context.Context) error {
	return e.callOn(ctx, "function() { this.click(); }")
}

func (e *chromedpElement) callOn(ctx context.Context, fn string) error {
	return e.page.run(ctx, e.page.timeout, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithBackendNodeID(e.node.BackendNodeID).Do(ctx)
		if err != nil {
			return fmt.Errorf("failed to resolve node: %w", err)
		}

		_, exception, err := runtime.CallFunctionOn(fn).WithObjectID(obj.ObjectID).Do(ctx)
		if err != nil {
			return err
		}
		if exception != nil {
			return exception
		}
		return nil
	}))
}
