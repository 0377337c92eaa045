// Package block defines the extracted content unit shared by the
// transformer, the footnote renumberer and the corpus aggregator.
package block

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// FailedText is the body recorded for a page whose fetch failed.
const FailedText = "(failed)"

// Footnote is one footnote definition of a Block.
type Footnote struct {
	Number int    `json:"number" yaml:"number"`
	Body   string `json:"body" yaml:"body"`
}

// String renders the definition line, e.g. "[^3]: body".
func (f Footnote) String() string {
	return fmt.Sprintf("[^%d]: %s", f.Number, f.Body)
}

// Placeholder renders the in-text marker, e.g. "[^3]".
func Placeholder(n int) string {
	return "[^" + strconv.Itoa(n) + "]"
}

// Block is one extracted content unit: a full page or a titled sub-passage.
type Block struct {
	Heading   string     `json:"heading" yaml:"heading"`
	Text      string     `json:"text" yaml:"text"`
	Footnotes []Footnote `json:"footnotes,omitempty" yaml:"footnotes,omitempty"`
	Failed    bool       `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// Failure returns the sentinel Block recorded for an unreachable page.
func Failure(heading string) Block {
	return Block{Heading: heading, Text: FailedText, Failed: true}
}

// IsEmpty reports whether the block carries no body text.
func (b Block) IsEmpty() bool {
	return strings.TrimSpace(b.Text) == ""
}

// PlaceholderPattern matches footnote placeholders in body text.
var PlaceholderPattern = regexp.MustCompile(`\[\^(\d+)\]`)

// Placeholders returns the distinct placeholder numbers found in text,
// in ascending order.
func Placeholders(text string) []int {
	seen := make(map[int]bool)
	var nums []int
	for _, m := range PlaceholderPattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || seen[n] {
			continue
		}
		seen[n] = true
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// Linkage describes mismatches between placeholders and definitions.
type Linkage struct {
	// Orphans are placeholders with no definition.
	Orphans []int
	// Unused are definitions never referenced from the text.
	Unused []int
}

// OK reports whether every placeholder has a definition and vice versa.
func (l Linkage) OK() bool {
	return len(l.Orphans) == 0 && len(l.Unused) == 0
}

// CheckLinkage compares the placeholders in the body with the footnote list.
func (b Block) CheckLinkage() Linkage {
	defined := make(map[int]bool, len(b.Footnotes))
	for _, fn := range b.Footnotes {
		defined[fn.Number] = true
	}
	used := make(map[int]bool)
	var l Linkage
	for _, n := range Placeholders(b.Text) {
		used[n] = true
		if !defined[n] {
			l.Orphans = append(l.Orphans, n)
		}
	}
	for _, fn := range b.Footnotes {
		if !used[fn.Number] {
			l.Unused = append(l.Unused, fn.Number)
		}
	}
	return l
}

// ParseFootnote parses a definition line of the form "[^n]: body".
func ParseFootnote(line string) (Footnote, bool) {
	m := definitionPattern.FindStringSubmatch(line)
	if m == nil {
		return Footnote{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return Footnote{}, false
	}
	return Footnote{Number: n, Body: strings.TrimSpace(m[2])}, true
}

var definitionPattern = regexp.MustCompile(`(?s)^\[\^(\d+)\]:(.*)$`)
