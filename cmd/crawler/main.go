package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/maltedev/fridge-capacity-crawler/internal/api"
	"github.com/maltedev/fridge-capacity-crawler/internal/browser"
	"github.com/maltedev/fridge-capacity-crawler/internal/config"
	"github.com/maltedev/fridge-capacity-crawler/internal/database"
	"github.com/maltedev/fridge-capacity-crawler/internal/events"
	"github.com/maltedev/fridge-capacity-crawler/internal/models"
	"github.com/maltedev/fridge-capacity-crawler/internal/parser"
	"github.com/maltedev/fridge-capacity-crawler/internal/report"
	"github.com/maltedev/fridge-capacity-crawler/internal/robots"
	"github.com/maltedev/fridge-capacity-crawler/internal/scraper"
	"github.com/maltedev/fridge-capacity-crawler/internal/storage"
	"github.com/maltedev/fridge-capacity-crawler/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const saveTimeout = 30 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("Invalid config: %v", err)
		return 1
	}

	logger := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.New().String()
	logger.Info("Starting fridge capacity crawler", "run_id", runID, "driver", cfg.Browser.Driver)

	session, err := browser.Open(ctx, browserOptions(cfg))
	if err != nil {
		logger.Error("Failed to initialize browser", "error", err)
		return 1
	}
	browserClosed := false
	closeBrowser := func() {
		if browserClosed {
			return
		}
		browserClosed = true
		if err := session.Close(); err != nil {
			logger.Warn("Failed to close browser", "error", err)
		}
	}
	defer closeBrowser()

	state := models.NewCrawlState(runID)
	crawler := scraper.NewListingCrawler(session, parser.NewListingParser(), state, crawlerOptions(cfg))
	if cfg.Crawler.RespectRobots {
		crawler.WithRobots(robots.NewChecker(cfg.Browser.UserAgent, cfg.Crawler.RobotsAgent, cfg.Browser.Timeout))
	}

	if cfg.Status.Addr != "" {
		srv := api.NewServer(cfg.Status.Addr, api.NewRouter(api.NewHandlers(state, logger), cfg.Status.AllowedOrigins), logger)
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Status API shutdown failed", "error", err)
			}
		}()
	}

	result, crawlErr := crawler.Crawl(ctx)
	switch {
	case crawlErr == nil:
	case errors.Is(crawlErr, context.Canceled):
		logger.Info("Shutdown signal received, saving collected rows", "rows", len(result.Rows))
	default:
		logger.Error("Crawl failed", "error", crawlErr)
	}

	// The run context may already be cancelled; saving gets its own deadline.
	saveCtx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	exporters, closeExporters := buildExporters(saveCtx, cfg, logger)
	defer closeExporters()

	writer := storage.NewWriter(storage.NewCSVSink(cfg.Output.CSV), exporters...)
	saveErr := persist(saveCtx, closeBrowser, writer, result)

	report.Summary(os.Stdout, result, writer.Results())

	if saveErr != nil {
		logger.Error("Failed to write output", "error", saveErr)
		return 1
	}
	if crawlErr != nil && !errors.Is(crawlErr, context.Canceled) {
		return 1
	}
	return 0
}

// persist tears the browser down before any output is written.
func persist(ctx context.Context, closeBrowser func(), writer *storage.Writer, result models.Snapshot) error {
	closeBrowser()
	return writer.Save(ctx, result)
}

func browserOptions(cfg *config.Config) *browser.Options {
	opts := browser.DefaultOptions()
	opts.Driver = cfg.Browser.Driver
	opts.Headless = cfg.Browser.Headless
	opts.Timeout = cfg.Browser.Timeout
	opts.ViewportWidth = cfg.Browser.ViewportWidth
	opts.ViewportHeight = cfg.Browser.ViewportHeight
	opts.ProxyServer = cfg.Browser.Proxy
	if cfg.Browser.UserAgent != "" {
		opts.UserAgent = cfg.Browser.UserAgent
	}
	return opts
}

func crawlerOptions(cfg *config.Config) scraper.CrawlerOptions {
	opts := scraper.DefaultCrawlerOptions()
	opts.StartURL = cfg.Crawler.StartURL
	opts.MaxPages = cfg.Crawler.MaxPages
	opts.InitialWait = cfg.Crawler.InitialWait
	opts.Pagination = scraper.PaginatorOptions{
		ProbeTimeout: cfg.Crawler.ProbeTimeout,
		SettlePause:  cfg.Crawler.SettlePause,
		ReloadPause:  cfg.Crawler.ReloadPause,
	}
	opts.PageDelayMin = cfg.Crawler.PageDelayMin
	opts.PageDelayMax = cfg.Crawler.PageDelayMax
	return opts
}

// buildExporters connects the optional sinks. A sink whose backend cannot be
// reached is skipped with a warning.
func buildExporters(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]storage.Sink, func()) {
	var (
		exporters []storage.Sink
		closers   []func()
	)

	if cfg.Output.XLSX != "" {
		exporters = append(exporters, storage.NewXLSXSink(cfg.Output.XLSX))
	}

	if cfg.Database.Enabled {
		db, err := database.New(ctx, database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Database: cfg.Database.Name,
			SSLMode:  cfg.Database.SSLMode,

			MaxConns:    cfg.Database.MaxConns,
			MinConns:    cfg.Database.MinConns,
			MaxConnLife: cfg.Database.MaxConnLife,
			MaxConnIdle: cfg.Database.MaxConnIdle,
		})
		if err != nil {
			logger.Warn("Database export disabled", "error", err)
		} else {
			exporters = append(exporters, database.NewCapacityRepository(db))
			closers = append(closers, db.Close)
		}
	}

	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis export disabled", "error", err)
			_ = client.Close()
		} else {
			exporters = append(exporters, events.NewPublisher(client, cfg.Redis.Stream, cfg.Redis.MaxLen, logger))
			closers = append(closers, func() { _ = client.Close() })
		}
	}

	return exporters, func() {
		for _, c := range closers {
			c()
		}
	}
}
