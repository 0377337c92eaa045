package crawler

import (
	"context"

	"github.com/jmylchreest/dorar/internal/logger"
)

// ChainPage is one fetched page of a next-link chain.
type ChainPage struct {
	URL   string
	HTML  string
	Index int
}

// Chain follows "next" links from a first page.
type Chain struct {
	getter Getter
	site   *Site

	// MaxPages bounds the walk. Zero means no bound.
	MaxPages int

	// SameUnit stops the walk at a link into another unit.
	SameUnit bool
}

// NewChain creates a Chain that stays inside one unit.
func NewChain(g Getter, site *Site) *Chain {
	return &Chain{getter: g, site: site, SameUnit: true}
}

// Walk fetches first and every page reached through next links, calling fn
// for each. It stops at a failed fetch, a repeated URL, a link into
// another unit, the page bound, or a cancelled context. It returns the
// number of pages handed to fn.
func (c *Chain) Walk(ctx context.Context, first, referer string, fn func(ChainPage) error) (int, error) {
	visited := NewVisited()
	unit := c.site.SectionUnit(first)
	current := first
	count := 0

	for current != "" {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		if c.MaxPages > 0 && count >= c.MaxPages {
			break
		}
		if !visited.Visit(current) {
			logger.Debug("chain loop", "url", current)
			break
		}

		raw := c.getter.Get(ctx, current, referer)
		if raw == "" {
			break
		}
		if err := fn(ChainPage{URL: current, HTML: raw, Index: count}); err != nil {
			return count, err
		}
		count++

		next := c.site.Next(raw)
		if c.SameUnit && next != "" && unit != 0 && c.site.SectionUnit(next) != unit {
			logger.Debug("chain left unit", "from", current, "to", next)
			break
		}
		referer, current = current, next
	}
	logger.Debug("chain done", "first", first, "pages", count, "visited", visited.Len())
	return count, nil
}
