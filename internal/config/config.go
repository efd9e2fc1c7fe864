package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is read from the environment (and an optional .env file). Every
// field has a default, so an empty environment reproduces the fixed run.
type Config struct {
	Crawler  CrawlerConfig
	Browser  BrowserConfig
	Output   OutputConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Status   StatusConfig
	Logging  LoggingConfig
}

type CrawlerConfig struct {
	StartURL      string        `split_words:"true" default:"https://prod.danawa.com/list/?cate=102110"`
	MaxPages      int           `split_words:"true" default:"200"`
	InitialWait   time.Duration `split_words:"true" default:"3s"`
	ProbeTimeout  time.Duration `split_words:"true" default:"3s"`
	SettlePause   time.Duration `split_words:"true" default:"500ms"`
	ReloadPause   time.Duration `split_words:"true" default:"2s"`
	PageDelayMin  time.Duration `split_words:"true" default:"0s"`
	PageDelayMax  time.Duration `split_words:"true" default:"0s"`
	RespectRobots bool          `split_words:"true" default:"false"`
	RobotsAgent   string        `split_words:"true" default:"FridgeCapacityCrawler"`
}

type BrowserConfig struct {
	Driver         string        `split_words:"true" default:"playwright"`
	Headless       bool          `split_words:"true" default:"true"`
	Timeout        time.Duration `split_words:"true" default:"30s"`
	ViewportWidth  int           `split_words:"true" default:"1920"`
	ViewportHeight int           `split_words:"true" default:"1080"`
	UserAgent      string        `split_words:"true"`
	Proxy          string        `split_words:"true"`
}

type OutputConfig struct {
	CSV  string `split_words:"true" default:"danawa_fridge_capacity.csv"`
	XLSX string `split_words:"true"`
}

type DatabaseConfig struct {
	Enabled  bool   `split_words:"true" default:"false"`
	Host     string `split_words:"true" default:"localhost"`
	Port     int    `split_words:"true" default:"5432"`
	User     string `split_words:"true" default:"postgres"`
	Password string `split_words:"true"`
	Name     string `split_words:"true" default:"fridge_capacity"`
	SSLMode  string `split_words:"true" default:"disable"`
	// Pool limits; zero keeps the pgx defaults.
	MaxConns    int32         `split_words:"true" default:"4"`
	MinConns    int32         `split_words:"true" default:"0"`
	MaxConnLife time.Duration `split_words:"true" default:"0s"`
	MaxConnIdle time.Duration `split_words:"true" default:"0s"`
}

type RedisConfig struct {
	Enabled  bool   `split_words:"true" default:"false"`
	Addr     string `split_words:"true" default:"localhost:6379"`
	Password string `split_words:"true"`
	DB       int    `split_words:"true" default:"0"`
	Stream   string `split_words:"true" default:"stream:fridge_capacity"`
	MaxLen   int64  `split_words:"true" default:"10000"`
}

type StatusConfig struct {
	// Addr enables the status API when set, e.g. ":8080".
	Addr           string   `split_words:"true"`
	AllowedOrigins []string `split_words:"true"`
}

type LoggingConfig struct {
	Level  string `split_words:"true" default:"info"`
	Format string `split_words:"true" default:"text"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if _, statErr := os.Stat(".env"); statErr == nil {
			slog.Warn(".env file found but could not be loaded", "error", err)
		}
	}

	var cfg Config
	sections := []struct {
		prefix string
		spec   interface{}
	}{
		{"crawler", &cfg.Crawler},
		{"browser", &cfg.Browser},
		{"output", &cfg.Output},
		{"db", &cfg.Database},
		{"redis", &cfg.Redis},
		{"status", &cfg.Status},
		{"log", &cfg.Logging},
	}
	for _, s := range sections {
		if err := envconfig.Process(s.prefix, s.spec); err != nil {
			return nil, fmt.Errorf("failed to load %s config: %w", s.prefix, err)
		}
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.Crawler.StartURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("CRAWLER_START_URL must be an absolute URL"))
	}

	if c.Crawler.MaxPages < 1 {
		errs = append(errs, fmt.Errorf("CRAWLER_MAX_PAGES must be at least 1"))
	}

	if c.Crawler.PageDelayMin > c.Crawler.PageDelayMax {
		errs = append(errs, fmt.Errorf("CRAWLER_PAGE_DELAY_MIN cannot be greater than CRAWLER_PAGE_DELAY_MAX"))
	}

	switch c.Browser.Driver {
	case "playwright", "chromedp":
	default:
		errs = append(errs, fmt.Errorf("BROWSER_DRIVER must be playwright or chromedp, got %q", c.Browser.Driver))
	}

	if c.Output.CSV == "" {
		errs = append(errs, fmt.Errorf("OUTPUT_CSV cannot be empty"))
	}

	if c.Database.MaxConns < 0 || c.Database.MinConns < 0 {
		errs = append(errs, fmt.Errorf("DB_MAX_CONNS and DB_MIN_CONNS cannot be negative"))
	}
	if c.Database.MaxConns > 0 && c.Database.MinConns > c.Database.MaxConns {
		errs = append(errs, fmt.Errorf("DB_MIN_CONNS cannot be greater than DB_MAX_CONNS"))
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}
