package markdown

import (
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/jmylchreest/dorar/internal/logger"
	"github.com/jmylchreest/dorar/pkg/block"
)

var (
	multiSpace = regexp.MustCompile(` {2,}`)
	multiBlank = regexp.MustCompile(`\n{3,}`)
)

// Output is the result of transforming one region.
type Output struct {
	// Text is the Markdown body with " [^n]" placeholders.
	Text string

	// Footnotes lists the definitions in first-appearance order.
	Footnotes []block.Footnote

	// Next is the footnote number the following region should start from.
	Next int
}

// Transformer converts sanitized regions to Markdown.
// It only reads the tree it is given.
type Transformer struct {
	config   *Config
	nav      *regexp.Regexp
	footnote *regexp.Regexp
	inline   *regexp.Regexp
}

// New creates a Transformer with the given configuration.
// If config is nil, DefaultConfig() is used. Invalid patterns fall back to
// the defaults.
func New(config *Config) *Transformer {
	if config == nil {
		config = DefaultConfig()
	}
	def := DefaultConfig()
	return &Transformer{
		config:   config,
		nav:      compileOr("nav", config.NavPattern, def.NavPattern),
		footnote: compileOr("footnote", config.FootnotePattern, def.FootnotePattern),
		inline:   compileOr("inline footnote", config.InlineFootnotePattern, def.InlineFootnotePattern),
	}
}

func compileOr(name, pattern, fallback string) *regexp.Regexp {
	if pattern == "" {
		pattern = fallback
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		logger.Warn("invalid "+name+" pattern, using default", "pattern", pattern, "error", err)
		return regexp.MustCompile(fallback)
	}
	return re
}

// Config returns the transformer configuration.
func (t *Transformer) Config() *Config {
	return t.config
}

// fragment is one rendered piece of a region. Block fragments (headings)
// sit on their own lines; inline fragments are joined with spaces.
type fragment struct {
	text  string
	block bool
}

// state carries the footnote counter through one Transform call.
type state struct {
	next       int
	footnotes  []block.Footnote
	inFootnote bool

	// taken holds every footnote number defined in the block so far.
	taken map[int]bool
}

// Transform renders region to Markdown. Footnote markers are numbered
// sequentially from start in document order; empty markers are dropped
// without consuming a number.
func (t *Transformer) Transform(region *goquery.Selection, start int) Output {
	return t.TransformAfter(region, start, nil)
}

// TransformAfter renders region as the continuation of a block that already
// defines the footnotes in defined. Markers skip the numbers in use, and an
// inline footnote citing one of them keeps the existing definition. Only
// the new definitions are returned.
func (t *Transformer) TransformAfter(region *goquery.Selection, start int, defined []block.Footnote) Output {
	if start < 1 {
		start = 1
	}
	out := Output{Next: start}
	if region == nil || region.Length() == 0 {
		return out
	}

	st := &state{next: start, taken: make(map[int]bool, len(defined))}
	for _, d := range defined {
		st.taken[d.Number] = true
	}
	var units []string

	if t.hasParagraph(region.Nodes) {
		for _, n := range region.Nodes {
			if n.Type == html.ElementNode && (t.isNavAnchor(n) || t.isFootnote(n)) {
				continue
			}
			if n.Type == html.ElementNode && n.Data == "p" {
				units = appendUnit(units, joinFragments(t.renderChildren(n, st)))
				continue
			}
			t.collectUnits(n, st, &units)
		}
	} else {
		var frags []fragment
		for _, n := range region.Nodes {
			frags = append(frags, t.render(n, st)...)
		}
		units = appendUnit(units, joinFragments(frags))
	}

	text := strings.Join(units, "\n\n")
	text, st.footnotes = t.extractInlineFootnotes(text, st.footnotes, st.taken)

	out.Text = tidy(text)
	out.Footnotes = st.footnotes
	out.Next = st.next
	return out
}

// collectUnits walks n looking for paragraphs. Headings found on the way
// become their own units; other loose content is dropped.
func (t *Transformer) collectUnits(n *html.Node, st *state, units *[]string) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch {
		case t.isNavAnchor(c), t.isFootnote(c):
			continue
		case c.Data == "p":
			*units = appendUnit(*units, joinFragments(t.renderChildren(c, st)))
		case headingLevel(c) > 0:
			*units = appendUnit(*units, joinFragments(t.render(c, st)))
		default:
			if a, ok := t.annotation(c); ok && a.HeadingLevel > 0 {
				*units = appendUnit(*units, joinFragments(t.render(c, st)))
				continue
			}
			t.collectUnits(c, st, units)
		}
	}
}

// hasParagraph reports whether nodes hold a <p> outside footnote markers
// and navigation anchors, i.e. one that survives marker extraction.
func (t *Transformer) hasParagraph(nodes []*html.Node) bool {
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			if t.isNavAnchor(n) || t.isFootnote(n) {
				continue
			}
			if n.Data == "p" {
				return true
			}
		}
		var children []*html.Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			children = append(children, c)
		}
		if t.hasParagraph(children) {
			return true
		}
	}
	return false
}

func appendUnit(units []string, s string) []string {
	if s = strings.TrimSpace(s); s == "" {
		return units
	}
	return append(units, s)
}

func (t *Transformer) render(n *html.Node, st *state) []fragment {
	switch n.Type {
	case html.TextNode:
		if s := strings.TrimSpace(n.Data); s != "" {
			return []fragment{{text: s}}
		}
		return nil
	case html.DocumentNode:
		return t.renderChildren(n, st)
	case html.ElementNode:
	default:
		return nil
	}

	switch n.Data {
	case "script", "style", "br":
		return nil
	}

	if t.isNavAnchor(n) {
		return nil
	}

	if t.isFootnote(n) && !st.inFootnote {
		return t.renderFootnote(n, st)
	}

	if a, ok := t.annotation(n); ok {
		inner := inlineText(t.renderChildren(n, st))
		if inner == "" {
			return nil
		}
		if a.HeadingLevel > 0 {
			return []fragment{{text: headingPrefix(a.HeadingLevel) + inner, block: !st.inFootnote}}
		}
		return []fragment{{text: a.Open + inner + a.Close}}
	}

	if level := headingLevel(n); level > 0 {
		inner := inlineText(t.renderChildren(n, st))
		if inner == "" {
			return nil
		}
		return []fragment{{text: headingPrefix(level+t.config.HeadingOffset) + inner, block: !st.inFootnote}}
	}

	return t.renderChildren(n, st)
}

func (t *Transformer) renderChildren(n *html.Node, st *state) []fragment {
	var frags []fragment
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		frags = append(frags, t.render(c, st)...)
	}
	return frags
}

// renderFootnote replaces a marker with its placeholder and records the
// definition. Nested markers inside the body are rendered as plain text.
func (t *Transformer) renderFootnote(n *html.Node, st *state) []fragment {
	st.inFootnote = true
	body := inlineText(t.renderChildren(n, st))
	st.inFootnote = false
	if body == "" {
		return nil
	}
	for st.taken[st.next] {
		st.next++
	}
	num := st.next
	st.next++
	st.taken[num] = true
	st.footnotes = append(st.footnotes, block.Footnote{Number: num, Body: body})
	return []fragment{{text: block.Placeholder(num)}}
}

// extractInlineFootnotes turns "[n] body" runs written in the text into
// placeholders. Numbers in taken keep their existing definition.
func (t *Transformer) extractInlineFootnotes(text string, defs []block.Footnote, taken map[int]bool) (string, []block.Footnote) {
	matches := t.inline.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, defs
	}

	var sb strings.Builder
	last := 0
	for i, m := range matches {
		num, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			continue
		}

		// Body runs from the keyword to the line end or the next match.
		end := len(text)
		if nl := strings.IndexByte(text[m[1]:], '\n'); nl >= 0 {
			end = m[1] + nl
		}
		if i+1 < len(matches) && matches[i+1][0] < end {
			end = matches[i+1][0]
		}
		body := strings.TrimSpace(text[m[3]+1 : end])
		if body == "" && !taken[num] {
			continue
		}

		sb.WriteString(text[last:m[0]])
		sb.WriteString(block.Placeholder(num))
		sb.WriteString(" ")
		last = end

		if !taken[num] {
			taken[num] = true
			defs = append(defs, block.Footnote{Number: num, Body: body})
		}
	}
	sb.WriteString(text[last:])

	if logger.Enabled(slog.LevelDebug) {
		logger.Debug("inline footnotes extracted", "count", len(matches), "defined", len(defs))
	}
	return sb.String(), defs
}

func (t *Transformer) isNavAnchor(n *html.Node) bool {
	return n.Data == "a" && t.nav.MatchString(nodeText(n))
}

func (t *Transformer) isFootnote(n *html.Node) bool {
	if !slices.Contains(t.config.FootnoteTags, n.Data) {
		return false
	}
	class := attr(n, "class")
	return class != "" && t.footnote.MatchString(class)
}

func (t *Transformer) annotation(n *html.Node) (Annotation, bool) {
	classes := strings.Fields(attr(n, "class"))
	if len(classes) == 0 {
		return Annotation{}, false
	}
	for _, a := range t.config.Annotations {
		if a.Tag != "" && a.Tag != n.Data {
			continue
		}
		if slices.Contains(classes, a.Class) {
			return a, true
		}
	}
	return Annotation{}, false
}

func headingLevel(n *html.Node) int {
	if len(n.Data) == 2 && n.Data[0] == 'h' && n.Data[1] >= '1' && n.Data[1] <= '6' {
		return int(n.Data[1] - '0')
	}
	return 0
}

func headingPrefix(level int) string {
	level = max(1, min(level, 6))
	return strings.Repeat("#", level) + " "
}

// joinFragments joins inline fragments with single spaces and puts block
// fragments on their own paragraphs.
func joinFragments(frags []fragment) string {
	var sb strings.Builder
	prevBlock := false
	for i, f := range frags {
		if i > 0 {
			if f.block || prevBlock {
				sb.WriteString("\n\n")
			} else {
				sb.WriteString(" ")
			}
		}
		sb.WriteString(f.text)
		prevBlock = f.block
	}
	return multiSpace.ReplaceAllString(sb.String(), " ")
}

func inlineText(frags []fragment) string {
	parts := make([]string, 0, len(frags))
	for _, f := range frags {
		parts = append(parts, f.text)
	}
	return strings.TrimSpace(multiSpace.ReplaceAllString(strings.Join(parts, " "), " "))
}

// tidy trims every line, collapses space runs and blank-line runs.
func tidy(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(multiSpace.ReplaceAllString(line, " "))
	}
	text = multiBlank.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(text)
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeText(c))
	}
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
