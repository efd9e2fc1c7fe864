package browser

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by WaitClickable when no matching element became
// clickable before the timeout.
var ErrNotFound = errors.New("element not found")

const (
	DriverPlaywright = "playwright"
	DriverChromedp   = "chromedp"
)

type LocatorKind int

const (
	ByCSS LocatorKind = iota
	ByXPath
)

// Locator addresses an element either by CSS selector or by XPath expression.
type Locator struct {
	Kind LocatorKind
	Expr string
}

func CSS(expr string) Locator   { return Locator{Kind: ByCSS, Expr: expr} }
func XPath(expr string) Locator { return Locator{Kind: ByXPath, Expr: expr} }

func (l Locator) String() string {
	if l.Kind == ByXPath {
		return "xpath=" + l.Expr
	}
	return "css=" + l.Expr
}

// Session owns one browser process for the lifetime of a crawl.
type Session interface {
	NewPage() (Page, error)
	Close() error
}

// Page is a single rendered tab.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Content(ctx context.Context) (string, error)
	// WaitClickable polls until an element matching loc is visible and
	// enabled. It returns ErrNotFound when the timeout expires first.
	WaitClickable(ctx context.Context, loc Locator, timeout time.Duration) (Element, error)
	Close() error
}

type Element interface {
	Attribute(ctx context.Context, name string) (string, error)
	ScrollIntoView(ctx context.Context) error
	Click(ctx context.Context) error
}

type Options struct {
	Driver         string
	Headless       bool
	Timeout        time.Duration
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	TimezoneID     string
	Locale         string
	ProxyServer    string
	ExtraHeaders   map[string]string
}

func DefaultOptions() *Options {
	return &Options{
		Driver:         DriverPlaywright,
		Headless:       true,
		Timeout:        30 * time.Second,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		AcceptLanguage: "ko-KR,ko;q=0.9,en;q=0.8",
		TimezoneID:     "Asia/Seoul",
		Locale:         "ko-KR",
		ExtraHeaders: map[string]string{
			"Accept": "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		},
	}
}

// Open starts a browser session with the configured driver.
func Open(ctx context.Context, opts *Options) (Session, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	switch opts.Driver {
	case "", DriverPlaywright:
		s, err := NewPlaywright(opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverChromedp:
		s, err := NewChromedp(ctx, opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown browser driver %q", opts.Driver)
	}
}
