package output

import (
	"fmt"
	"strings"

	"github.com/jmylchreest/dorar/internal/crawler"
	"github.com/jmylchreest/dorar/pkg/block"
	"github.com/jmylchreest/dorar/pkg/corpus"
	"github.com/jmylchreest/dorar/pkg/footnote"
)

// Fixed Arabic labels of the generated files.
const (
	SourceLabel    = "المصدر"
	IntroHeading   = "تعريف السورة"
	IndexTitle     = "فهرس أقسام التفسير"
	IndexFile      = "فهرس.md"
	OccurrenceWord = "موضع"
	UnitWord       = "سورة"
	SectionWord    = "قسم مختلف"
	Rule           = "---"
)

// doc builds one Markdown file.
type doc struct {
	sb strings.Builder
}

func (d *doc) para(s string) {
	d.sb.WriteString(s)
	d.sb.WriteString("\n\n")
}

func (d *doc) header(title, source string) {
	d.para("# " + title)
	d.para("> " + source)
	d.para(Rule)
}

// footnotes writes definition lines followed by a blank line.
func (d *doc) footnotes(defs []block.Footnote) {
	if len(defs) == 0 {
		return
	}
	for _, fn := range defs {
		d.sb.WriteString(fn.String())
		d.sb.WriteString("\n")
	}
	d.sb.WriteString("\n")
}

func (d *doc) String() string {
	return d.sb.String()
}

// headingLine renders a heading at level clamped to 1..6.
func headingLine(level int, title string) string {
	level = max(1, min(level, 6))
	return strings.Repeat("#", level) + " " + title
}

// BranchOptions controls tree branch rendering.
type BranchOptions struct {
	// Source is the attribution shown under the title.
	Source string

	// SeparatorLevel is the lowest node level followed by a rule.
	// Zero disables rules.
	SeparatorLevel int
}

// DefaultBranchOptions returns the options used for the grammar tree.
func DefaultBranchOptions() BranchOptions {
	return BranchOptions{
		Source:         SourceLabel + ": موسوعة اللغة العربية - الدرر السنية",
		SeparatorLevel: 3,
	}
}

// RenderBranch renders one tree branch. Footnotes are renumbered from 1
// across the file.
func RenderBranch(title string, nodes []crawler.Node, opts BranchOptions) string {
	var d doc
	d.header(title, opts.Source)

	r := footnote.NewRenumberer()
	for _, n := range nodes {
		d.para(headingLine(n.Level, n.Title))
		text, defs := r.Renumber(n.Block)
		if text != "" {
			d.para(text)
		}
		d.footnotes(defs)
		if opts.SeparatorLevel > 0 && n.Level >= opts.SeparatorLevel {
			d.para(Rule)
		}
	}
	return d.String()
}

// RenderSurah renders one unit with its introduction and chained pages.
// Footnotes are renumbered from 1 across the file.
func RenderSurah(s *crawler.Surah) string {
	var d doc
	d.header(s.Link.Title, SourceLabel+": "+s.Link.URL)

	r := footnote.NewRenumberer()
	if !s.Intro.IsEmpty() {
		d.para("## " + IntroHeading)
		text, defs := r.Renumber(s.Intro)
		d.para(text)
		d.footnotes(defs)
		d.para(Rule)
	}

	for _, sec := range s.Sections {
		d.para("## " + sec.Block.Heading)
		d.para("> " + sec.URL)
		if !sec.Block.IsEmpty() {
			text, defs := r.Renumber(sec.Block)
			d.para(text)
			d.footnotes(defs)
		}
		d.para(Rule)
	}
	return d.String()
}

// SectionOptions controls aggregated section rendering.
type SectionOptions struct {
	// FootnotesPerEntry writes each entry's definitions right after it
	// instead of collecting all of them at the end of the file.
	FootnotesPerEntry bool
}

// RenderSection renders one aggregated section. Entries are written in the
// order given and footnotes are renumbered from 1 across the file.
func RenderSection(sec corpus.Section, opts SectionOptions) string {
	var d doc
	d.para("# " + sec.Heading)
	d.para(fmt.Sprintf("> %d %s — %d %s", len(sec.Entries), OccurrenceWord, sec.Sources(), UnitWord))
	d.para(Rule)

	r := footnote.NewRenumberer()
	var all []block.Footnote
	for _, e := range sec.Entries {
		d.para("## " + e.Unit + " — " + e.PageTitle)
		d.para("> " + e.Locator)

		text, defs := r.Renumber(e.Block)
		d.para(text)
		if opts.FootnotesPerEntry {
			d.footnotes(defs)
		} else {
			all = append(all, defs...)
		}
		d.para(Rule)
	}
	d.footnotes(all)
	return d.String()
}

// IndexEntry is one line of the section index.
type IndexEntry struct {
	Heading string
	File    string
	Entries int
}

// RenderIndex renders the section index. entries are written in the order
// given, which is largest section first for a finalized corpus.
func RenderIndex(entries []IndexEntry) string {
	var d doc
	d.para("# " + IndexTitle)
	d.para(fmt.Sprintf("> %d %s", len(entries), SectionWord))
	d.para(Rule)
	for _, e := range entries {
		fmt.Fprintf(&d.sb, "- [%s](./%s) — %d %s\n", e.Heading, e.File, e.Entries, OccurrenceWord)
	}
	return d.String()
}
