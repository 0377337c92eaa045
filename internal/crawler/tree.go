package crawler

import (
	"context"

	"github.com/jmylchreest/dorar/internal/logger"
	"github.com/jmylchreest/dorar/pkg/block"
	"github.com/jmylchreest/dorar/pkg/dorar"
)

// Getter fetches a page and returns its markup, or "" when the page could
// not be fetched.
type Getter interface {
	Get(ctx context.Context, url, referer string) string
}

// Extractor renders fetched pages into blocks.
type Extractor interface {
	Content(raw string, start int) (*dorar.Page, error)
	Articles(raw string) (*dorar.Page, error)
}

// Node is one page reached by a tree walk.
type Node struct {
	URL   string `json:"url" yaml:"url"`
	Title string `json:"title" yaml:"title"`
	Level int    `json:"level" yaml:"level"`

	// Children lists the URLs linked from this page's active pane.
	// A parent page carries no text of its own.
	Children []string `json:"children,omitempty" yaml:"children,omitempty"`

	Block block.Block `json:"block" yaml:"block"`
}

// Tree walks tree pages depth first. Pages with child links become
// parents; other pages are extracted as leaves. One footnote counter runs
// across every leaf until ResetFootnotes is called.
type Tree struct {
	getter  Getter
	site    *Site
	extract Extractor
	visited *Visited
	next    int
}

// NewTree creates a Tree. visited is shared across walks so a page reached
// from two branches is emitted once per run.
func NewTree(g Getter, site *Site, ex Extractor, visited *Visited) *Tree {
	if visited == nil {
		visited = NewVisited()
	}
	return &Tree{getter: g, site: site, extract: ex, visited: visited, next: 1}
}

// ResetFootnotes restarts footnote numbering at 1, e.g. for a new branch file.
func (t *Tree) ResetFootnotes() {
	t.next = 1
}

// Next returns the footnote number the next leaf starts from.
func (t *Tree) Next() int {
	return t.next
}

// Walk fetches url and everything below it. It returns the nodes in
// depth-first order. A cancelled context stops the walk and returns the
// nodes collected so far with the context error.
func (t *Tree) Walk(ctx context.Context, url, title string, level int, referer string) ([]Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !t.visited.Visit(url) {
		return nil, nil
	}

	log := logger.With("url", url, "level", level)
	raw := t.getter.Get(ctx, url, referer)
	if raw == "" {
		return []Node{{URL: url, Title: title, Level: level, Block: block.Failure(title)}}, nil
	}

	children := t.site.PaneLinks(raw, t.site.NodeNum(url))
	if len(children) > 0 {
		parent := Node{URL: url, Title: title, Level: level, Block: block.Block{Heading: title}}
		for _, c := range children {
			parent.Children = append(parent.Children, c.URL)
		}
		log.Debug("tree parent", "children", len(children))

		nodes := []Node{parent}
		for _, c := range children {
			sub, err := t.Walk(ctx, c.URL, c.Title, level+1, url)
			nodes = append(nodes, sub...)
			if err != nil {
				return nodes, err
			}
		}
		return nodes, nil
	}

	page, err := t.extract.Content(raw, t.next)
	if err != nil || len(page.Blocks) == 0 {
		log.WarnContext(ctx, "leaf extraction failed", "error", err)
		return []Node{{URL: url, Title: title, Level: level, Block: block.Failure(title)}}, nil
	}
	t.next = page.Next

	b := page.Blocks[0]
	b.Heading = title
	log.InfoContext(ctx, "extracted", "title", title, "chars", len([]rune(b.Text)), "footnotes", len(b.Footnotes))
	return []Node{{URL: url, Title: title, Level: level, Block: b}}, nil
}
