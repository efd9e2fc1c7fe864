package parser

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/fridge-capacity-crawler/internal/models"
	"golang.org/x/net/html"
)

const (
	DefaultCardSelector = "li.prod_item.prod_layer"
	DefaultNameSelector = "p.prod_name > a"
)

// DefaultSpecSelectors lists the two spec block layouts in priority order.
// Category templates render either one or the other.
var DefaultSpecSelectors = []string{
	"div.spec_list",
	"div.prod_spec_set",
}

// ExtractStats counts what happened to each product card on a page.
type ExtractStats struct {
	Candidates  int
	Emitted     int
	MissingName int
	MissingSpec int
	Incomplete  int
}

func (s ExtractStats) Skipped() int {
	return s.MissingName + s.MissingSpec + s.Incomplete
}

type ListingParser struct {
	cardSelector  string
	nameSelector  string
	specSelectors []string
	logger        *slog.Logger
}

func NewListingParser() *ListingParser {
	return &ListingParser{
		cardSelector:  DefaultCardSelector,
		nameSelector:  DefaultNameSelector,
		specSelectors: DefaultSpecSelectors,
		logger:        slog.Default().With("component", "listing_parser"),
	}
}

// ParseListing extracts one row per product card that has a name, a spec
// block and all three capacities. Everything else is skipped and counted.
func (p *ListingParser) ParseListing(page string) ([]models.ProductRow, ExtractStats, error) {
	var stats ExtractStats

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, stats, fmt.Errorf("failed to parse HTML: %w", err)
	}

	rows := make([]models.ProductRow, 0)

	doc.Find(p.cardSelector).Each(func(i int, card *goquery.Selection) {
		stats.Candidates++

		nameEl := card.Find(p.nameSelector).First()
		if nameEl.Length() == 0 {
			stats.MissingName++
			p.logger.Debug("skipping card without name", "index", i)
			return
		}
		name := strippedText(nameEl)

		specEl := p.findSpecBlock(card)
		if specEl == nil {
			stats.MissingSpec++
			p.logger.Debug("skipping card without spec block", "index", i, "name", name)
			return
		}

		row, ok := ExtractCapacities(strippedText(specEl)).Row(name)
		if !ok {
			stats.Incomplete++
			p.logger.Debug("skipping card with incomplete capacities", "index", i, "name", name)
			return
		}

		rows = append(rows, row)
		stats.Emitted++
	})

	return rows, stats, nil
}

func (p *ListingParser) findSpecBlock(card *goquery.Selection) *goquery.Selection {
	for _, selector := range p.specSelectors {
		if el := card.Find(selector).First(); el.Length() > 0 {
			return el
		}
	}
	return nil
}

// strippedText joins the trimmed, non-empty text nodes under the selection
// with single spaces.
func strippedText(s *goquery.Selection) string {
	var parts []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range s.Nodes {
		walk(n)
	}

	return strings.Join(parts, " ")
}
