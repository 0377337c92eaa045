// Package footnote rewrites locally numbered footnotes into one global
// sequence when blocks are concatenated into a single output.
package footnote

import (
	"strconv"

	"github.com/jmylchreest/dorar/pkg/block"
)

// Renumberer hands out global footnote numbers across the blocks of one
// output unit. It is not safe for concurrent use.
type Renumberer struct {
	next int
}

// NewRenumberer returns a Renumberer starting at 1.
func NewRenumberer() *Renumberer {
	return &Renumberer{next: 1}
}

// Next returns the number the next definition will receive.
func (r *Renumberer) Next() int {
	return r.next
}

// Reset restarts numbering at 1.
func (r *Renumberer) Reset() {
	r.next = 1
}

// Renumber assigns a global number to every definition of b in order and
// rewrites b's placeholders in a single pass. Placeholders without a local
// definition are left untouched. When a local number is defined twice the
// first definition owns the placeholder.
func (r *Renumberer) Renumber(b block.Block) (string, []block.Footnote) {
	if len(b.Footnotes) == 0 {
		return b.Text, nil
	}

	mapping := make(map[int]int, len(b.Footnotes))
	defs := make([]block.Footnote, 0, len(b.Footnotes))
	for _, fn := range b.Footnotes {
		global := r.next
		r.next++
		if _, ok := mapping[fn.Number]; !ok {
			mapping[fn.Number] = global
		}
		defs = append(defs, block.Footnote{Number: global, Body: fn.Body})
	}

	text := block.PlaceholderPattern.ReplaceAllStringFunc(b.Text, func(m string) string {
		local, err := strconv.Atoi(m[2 : len(m)-1])
		if err != nil {
			return m
		}
		if global, ok := mapping[local]; ok {
			return block.Placeholder(global)
		}
		return m
	})
	return text, defs
}

// RenumberAll renumbers blocks in order and returns the rewritten blocks
// with the flat definition list.
func (r *Renumberer) RenumberAll(blocks []block.Block) ([]block.Block, []block.Footnote) {
	out := make([]block.Block, len(blocks))
	var all []block.Footnote
	for i, b := range blocks {
		text, defs := r.Renumber(b)
		b.Text = text
		b.Footnotes = defs
		out[i] = b
		all = append(all, defs...)
	}
	return out, all
}
