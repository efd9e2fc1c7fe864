package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/maltedev/fridge-capacity-crawler/internal/browser"
	"github.com/maltedev/fridge-capacity-crawler/internal/config"
	"github.com/maltedev/fridge-capacity-crawler/internal/parser"
	"github.com/maltedev/fridge-capacity-crawler/internal/ratelimit"
	"github.com/maltedev/fridge-capacity-crawler/internal/storage"
	"github.com/maltedev/fridge-capacity-crawler/pkg/logger"
)

func main() {
	var (
		file = flag.String("file", "", "Parse a saved listing HTML file instead of opening the browser")
		html = flag.String("html", "debug.html", "HTML output filename when fetching")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Starting Debug Mode")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var content string
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			logger.Error("Failed to read HTML file", "error", err, "file", *file)
			os.Exit(1)
		}
		content = string(data)
	} else {
		content, err = fetch(ctx, cfg)
		if err != nil {
			logger.Error("Failed to fetch listing", "error", err, "url", cfg.Crawler.StartURL)
			os.Exit(1)
		}
		if err := os.WriteFile(*html, []byte(content), 0o644); err != nil {
			logger.Error("Failed to save HTML", "error", err)
		} else {
			logger.Info("HTML saved", "file", *html)
		}
	}

	rows, stats, err := parser.NewListingParser().ParseListing(content)
	if err != nil {
		logger.Error("Failed to parse listing", "error", err)
		os.Exit(1)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", storage.Header[0], storage.Header[1], storage.Header[2], storage.Header[3]})
	for i, row := range rows {
		t.AppendRow(table.Row{i + 1, row.Name, row.TotalL, row.FreezerL, row.FridgeL})
	}
	t.AppendFooter(table.Row{"", "candidates", stats.Candidates, "skipped", stats.Skipped()})
	t.SetStyle(table.StyleRounded)
	t.Render()

	fmt.Printf("missing name: %d, missing spec: %d, incomplete: %d\n",
		stats.MissingName, stats.MissingSpec, stats.Incomplete)
}

// fetch opens the first listing page in a visible browser and returns its HTML.
func fetch(ctx context.Context, cfg *config.Config) (string, error) {
	opts := browser.DefaultOptions()
	opts.Driver = cfg.Browser.Driver
	opts.Headless = false
	opts.Timeout = cfg.Browser.Timeout

	session, err := browser.Open(ctx, opts)
	if err != nil {
		return "", fmt.Errorf("failed to initialize browser: %w", err)
	}
	defer session.Close()

	return render(ctx, session, cfg.Crawler.StartURL, cfg.Crawler.InitialWait)
}

// render loads url and waits for the client-side product cards before
// reading the HTML.
func render(ctx context.Context, session browser.Session, url string, wait time.Duration) (string, error) {
	page, err := session.NewPage()
	if err != nil {
		return "", fmt.Errorf("failed to create page: %w", err)
	}
	defer page.Close()

	if err := page.Navigate(ctx, url); err != nil {
		return "", err
	}

	if err := ratelimit.Sleep(ctx, wait); err != nil {
		return "", err
	}

	return page.Content(ctx)
}
