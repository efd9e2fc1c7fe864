package robots

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/temoto/robotstxt"
)

const DefaultAgent = "FridgeCapacityCrawler"

// Checker fetches robots.txt once per host and tests URLs against the
// group for its agent. Hosts whose robots.txt cannot be read are allowed.
type Checker struct {
	client *resty.Client
	agent  string
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]*robotstxt.Group
}

func NewChecker(userAgent, agent string, timeout time.Duration) *Checker {
	if agent == "" {
		agent = DefaultAgent
	}

	client := resty.New()
	if userAgent != "" {
		client.SetHeader("user-agent", userAgent)
	}
	client.SetTimeout(timeout)

	return &Checker{
		client: client,
		agent:  agent,
		logger: slog.Default().With("component", "robots"),
		cache:  make(map[string]*robotstxt.Group),
	}
}

// Allowed reports whether agent may fetch rawURL.
func (c *Checker) Allowed(ctx context.Context, rawURL string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("failed to parse %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return false, fmt.Errorf("url %q has no scheme or host", rawURL)
	}

	group := c.group(ctx, u)
	if group == nil {
		return true, nil
	}
	return group.Test(u.RequestURI()), nil
}

func (c *Checker) group(ctx context.Context, u *url.URL) *robotstxt.Group {
	c.mu.Lock()
	defer c.mu.Unlock()

	if group, ok := c.cache[u.Host]; ok {
		return group
	}

	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"
	res, err := c.client.R().SetContext(ctx).Get(robotsURL)
	if err != nil {
		c.logger.Warn("robots.txt unavailable, allowing", "url", robotsURL, "error", err)
		c.cache[u.Host] = nil
		return nil
	}

	data, err := robotstxt.FromStatusAndBytes(res.StatusCode(), res.Body())
	if err != nil {
		c.logger.Warn("robots.txt unparsable, allowing", "url", robotsURL, "error", err)
		c.cache[u.Host] = nil
		return nil
	}

	group := data.FindGroup(c.agent)
	c.cache[u.Host] = group
	return group
}
