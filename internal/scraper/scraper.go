package scraper

import (
	"context"
	"errors"

	"github.com/maltedev/fridge-capacity-crawler/internal/models"
	"github.com/maltedev/fridge-capacity-crawler/internal/parser"
)

var (
	ErrInvalidStartURL = errors.New("invalid start URL")
	ErrDisallowed      = errors.New("start URL disallowed by robots.txt")
)

// ListingParser turns rendered listing HTML into rows.
type ListingParser interface {
	ParseListing(html string) ([]models.ProductRow, parser.ExtractStats, error)
}

// RobotsChecker reports whether the crawler may visit a URL.
type RobotsChecker interface {
	Allowed(ctx context.Context, url string) (bool, error)
}
