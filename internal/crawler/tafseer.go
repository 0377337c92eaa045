package crawler

import (
	"context"
	"errors"

	"github.com/jmylchreest/dorar/internal/logger"
	"github.com/jmylchreest/dorar/pkg/block"
	"github.com/jmylchreest/dorar/pkg/corpus"
	"github.com/jmylchreest/dorar/pkg/dorar"
)

// IntroPrefix is prepended to a unit's title for its introduction page.
const IntroPrefix = "تعريف "

// ErrUnavailable is returned when a unit's first page cannot be fetched.
var ErrUnavailable = errors.New("unit page unavailable")

// SectionPage is one chained page of a unit.
type SectionPage struct {
	URL   string      `json:"url" yaml:"url"`
	Block block.Block `json:"block" yaml:"block"`
}

// Surah is a unit fetched in full: its introduction and chained pages.
type Surah struct {
	Link     Link          `json:"link" yaml:"link"`
	Intro    block.Block   `json:"intro" yaml:"intro"`
	Sections []SectionPage `json:"sections" yaml:"sections"`
}

// Tafseer walks units of the commentary: the unit page then its chain.
type Tafseer struct {
	getter  Getter
	site    *Site
	extract Extractor
	index   string

	// MaxPages bounds each unit's chain. Zero means no bound.
	MaxPages int
}

// NewTafseer creates a walker. index is the referer for unit pages.
func NewTafseer(g Getter, site *Site, ex Extractor, index string) *Tafseer {
	return &Tafseer{getter: g, site: site, extract: ex, index: index}
}

func (t *Tafseer) chain() *Chain {
	c := NewChain(t.getter, t.site)
	c.MaxPages = t.MaxPages
	return c
}

// Surah fetches one unit as whole pages. Each page block numbers its
// footnotes from 1.
func (t *Tafseer) Surah(ctx context.Context, unit Link) (*Surah, error) {
	raw := t.getter.Get(ctx, unit.URL, t.index)
	if raw == "" {
		return nil, ErrUnavailable
	}

	s := &Surah{Link: unit}
	if page, err := t.extract.Content(raw, 1); err == nil && len(page.Blocks) > 0 {
		s.Intro = page.Blocks[0]
	}

	first := t.site.FirstSection(raw, unit.Num(0))
	if first == "" {
		logger.WarnContext(ctx, "no section link found", "unit", unit.Title)
		return s, nil
	}

	n, err := t.chain().Walk(ctx, first, unit.URL, func(p ChainPage) error {
		page, err := t.extract.Content(p.HTML, 1)
		if err != nil || len(page.Blocks) == 0 {
			s.Sections = append(s.Sections, SectionPage{URL: p.URL, Block: block.Failure(p.URL)})
			return nil
		}
		b := page.Blocks[0]
		b.Heading = page.Title
		s.Sections = append(s.Sections, SectionPage{URL: p.URL, Block: b})
		logger.InfoContext(ctx, "section extracted", "index", p.Index+1, "title", page.Title, "chars", len([]rune(b.Text)))
		return nil
	})
	logger.InfoContext(ctx, "unit done", "unit", unit.Title, "pages", n)
	return s, err
}

// Collect fetches one unit as articles and files every titled block with
// the collector. It returns the number of blocks added.
func (t *Tafseer) Collect(ctx context.Context, unit Link, c *dorar.Collector) (int, error) {
	raw := t.getter.Get(ctx, unit.URL, t.index)
	if raw == "" {
		return 0, ErrUnavailable
	}

	prov := corpus.Provenance{Unit: unit.Title, Order: unit.Num(0)}
	total := 0

	if page, err := t.extract.Articles(raw); err == nil {
		intro := prov
		intro.PageTitle = IntroPrefix + unit.Title
		intro.Locator = unit.URL
		total += c.Add(intro, page.Blocks)
	}

	first := t.site.FirstSection(raw, unit.Num(0))
	if first == "" {
		logger.WarnContext(ctx, "no section link found", "unit", unit.Title)
		return total, nil
	}

	_, err := t.chain().Walk(ctx, first, unit.URL, func(p ChainPage) error {
		page, err := t.extract.Articles(p.HTML)
		if err != nil {
			logger.WarnContext(ctx, "article extraction failed", "url", p.URL, "error", err)
			return nil
		}
		entry := prov
		entry.PageTitle = page.Title
		entry.Locator = p.URL
		added := c.Add(entry, page.Blocks)
		total += added
		logger.InfoContext(ctx, "page collected", "index", p.Index+1, "title", page.Title, "blocks", added, "sections", c.Len())
		return nil
	})
	return total, err
}
