// Package dorar extracts footnoted Markdown blocks from encyclopedia pages
// and groups them by canonical section heading.
package dorar

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/jmylchreest/dorar/internal/logger"
	"github.com/jmylchreest/dorar/pkg/block"
	"github.com/jmylchreest/dorar/pkg/markdown"
	"github.com/jmylchreest/dorar/pkg/sanitize"
)

// Page is the extraction result for one document.
type Page struct {
	// Title is the page title from og:title or <title>.
	Title string

	// Blocks are the extracted blocks in document order.
	Blocks []block.Block

	// Next is the footnote number following the last one used.
	Next int

	// Fallback is true when no content pane was found.
	Fallback bool

	Stats    *sanitize.Stats
	Warnings []sanitize.Warning
}

// Empty reports whether no block carries text.
func (p *Page) Empty() bool {
	for _, b := range p.Blocks {
		if !b.IsEmpty() {
			return false
		}
	}
	return true
}

// Extractor turns raw page markup into blocks.
type Extractor struct {
	page        *sanitize.Sanitizer
	articles    *sanitize.Sanitizer
	transformer *markdown.Transformer
	config      Config
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Extractor{
		page:        sanitize.New(cfg.Page),
		articles:    sanitize.New(cfg.Articles),
		transformer: markdown.New(cfg.Markdown),
		config:      cfg,
	}
}

// Content extracts the whole content region of a page as one block.
// Articles inside the region are rendered in order and share one footnote
// sequence starting at start.
func (e *Extractor) Content(raw string, start int) (*Page, error) {
	res, err := e.page.Sanitize(raw)
	if err != nil {
		return nil, err
	}

	page := &Page{
		Title:    pageTitle(res.Document),
		Next:     max(start, 1),
		Fallback: res.Fallback,
		Stats:    res.Stats,
		Warnings: res.Warnings,
	}

	units := res.Region.Find("article")
	if units.Length() == 0 {
		units = res.Region
	}

	var parts []string
	b := block.Block{Heading: page.Title}
	units.Each(func(_ int, unit *goquery.Selection) {
		out := e.transformer.TransformAfter(unit, page.Next, b.Footnotes)
		page.Next = out.Next
		if out.Text != "" {
			parts = append(parts, out.Text)
		}
		b.Footnotes = append(b.Footnotes, out.Footnotes...)
	})
	b.Text = strings.Join(parts, "\n\n")
	page.Blocks = []block.Block{b}

	logger.Debug("extracted page content",
		"title", page.Title,
		"chars", len(b.Text),
		"footnotes", len(b.Footnotes))
	return page, nil
}

// Articles extracts one block per <article> headed by its first heading,
// plus one block per titled passage inside it. Articles without a heading
// are skipped. Footnotes are numbered across the whole page from 1.
func (e *Extractor) Articles(raw string) (*Page, error) {
	res, err := e.articles.Sanitize(raw)
	if err != nil {
		return nil, err
	}

	page := &Page{
		Title:    pageTitle(res.Document),
		Next:     1,
		Stats:    res.Stats,
		Warnings: res.Warnings,
	}

	res.Document.Find("article").Each(func(_ int, art *goquery.Selection) {
		h := art.Find(e.config.HeadingSelector).First()
		heading := sanitize.StrippedText(h)
		h.Remove()
		if heading == "" {
			return
		}

		out := e.transformer.Transform(art, page.Next)
		page.Next = out.Next
		if out.Text != "" {
			page.Blocks = append(page.Blocks, block.Block{Heading: heading, Text: out.Text, Footnotes: out.Footnotes})
		}

		page.Blocks = append(page.Blocks, e.passages(art, page)...)
	})

	logger.Debug("extracted articles", "title", page.Title, "blocks", len(page.Blocks))
	return page, nil
}

// passages splits art at each title marker. Each passage runs from its
// marker to the next one or to the end of the article.
func (e *Extractor) passages(art *goquery.Selection, page *Page) []block.Block {
	if e.config.SplitClass == "" {
		return nil
	}
	selector := "." + e.config.SplitClass
	titles := art.Find(selector)
	if titles.Length() == 0 {
		return nil
	}

	var blocks []block.Block
	for i := range titles.Nodes {
		heading := sanitize.StrippedText(titles.Eq(i))
		if heading == "" {
			continue
		}

		clone := art.Clone()
		marks := clone.Find(selector)
		var to *html.Node
		if i+1 < marks.Length() {
			to = marks.Get(i + 1)
		}
		slice(clone.Get(0), marks.Get(i), to)

		out := e.transformer.Transform(clone, page.Next)
		page.Next = out.Next
		if out.Text != "" {
			blocks = append(blocks, block.Block{Heading: heading, Text: out.Text, Footnotes: out.Footnotes})
		}
	}
	return blocks
}

// slice removes everything under root except the nodes strictly between
// from and to in document order. A nil to means the end of root.
func slice(root, from, to *html.Node) {
	fromPath := ancestors(from)
	toPath := ancestors(to)
	inside, done := false, false

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			switch {
			case done:
				n.RemoveChild(c)
			case c == from:
				n.RemoveChild(c)
				inside = true
			case c == to:
				n.RemoveChild(c)
				done = true
			case !inside && fromPath[c], inside && toPath[c]:
				walk(c)
			case !inside:
				n.RemoveChild(c)
			}
			c = next
		}
	}
	walk(root)
}

func ancestors(n *html.Node) map[*html.Node]bool {
	set := make(map[*html.Node]bool)
	if n == nil {
		return set
	}
	for p := n.Parent; p != nil; p = p.Parent {
		set[p] = true
	}
	return set
}

// PageTitle returns the page title: the part of og:title after its first
// " - ", or else the last " - " part of <title>.
func PageTitle(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return ""
	}
	return pageTitle(doc)
}

func pageTitle(doc *goquery.Document) string {
	if content, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok && content != "" {
		parts := strings.SplitN(content, " - ", 2)
		return strings.TrimSpace(parts[len(parts)-1])
	}
	if t := doc.Find("title").First(); t.Length() > 0 {
		parts := strings.Split(t.Text(), " - ")
		return strings.TrimSpace(parts[len(parts)-1])
	}
	return ""
}
