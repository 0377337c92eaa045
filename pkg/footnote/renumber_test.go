package footnote

import (
	"reflect"
	"testing"

	"github.com/jmylchreest/dorar/pkg/block"
)

func TestRenumberAll(t *testing.T) {
	blocks := []block.Block{
		{
			Heading:   "first",
			Text:      "a [^1] b [^2]",
			Footnotes: []block.Footnote{{Number: 1, Body: "one"}, {Number: 2, Body: "two"}},
		},
		{
			Heading:   "second",
			Text:      "c [^1]",
			Footnotes: []block.Footnote{{Number: 1, Body: "three"}},
		},
	}

	r := NewRenumberer()
	out, defs := r.RenumberAll(blocks)

	if out[0].Text != "a [^1] b [^2]" {
		t.Errorf("first text = %q", out[0].Text)
	}
	if out[1].Text != "c [^3]" {
		t.Errorf("second text = %q", out[1].Text)
	}
	want := []block.Footnote{
		{Number: 1, Body: "one"},
		{Number: 2, Body: "two"},
		{Number: 3, Body: "three"},
	}
	if !reflect.DeepEqual(defs, want) {
		t.Errorf("defs = %v, want %v", defs, want)
	}
	if r.Next() != 4 {
		t.Errorf("Next() = %d, want 4", r.Next())
	}
	if blocks[1].Text != "c [^1]" {
		t.Error("input blocks must not be modified")
	}
}

func TestRenumber_SequenceHasNoGaps(t *testing.T) {
	var blocks []block.Block
	for i := 0; i < 5; i++ {
		b := block.Block{Text: "x"}
		for n := 1; n <= i; n++ {
			b.Text += " " + block.Placeholder(n)
			b.Footnotes = append(b.Footnotes, block.Footnote{Number: n, Body: "body"})
		}
		blocks = append(blocks, b)
	}

	out, defs := NewRenumberer().RenumberAll(blocks)
	for i, d := range defs {
		if d.Number != i+1 {
			t.Fatalf("definition %d numbered %d", i, d.Number)
		}
	}
	if len(defs) != 10 {
		t.Errorf("expected 10 definitions, got %d", len(defs))
	}
	for _, b := range out {
		if l := b.CheckLinkage(); !l.OK() {
			t.Errorf("broken linkage in %q: %+v", b.Text, l)
		}
	}
}

func TestRenumber_NoCollisionWhenLocalExceedsGlobal(t *testing.T) {
	r := NewRenumberer()
	r.Renumber(block.Block{Text: "[^1]", Footnotes: []block.Footnote{{Number: 1, Body: "a"}}})

	// local 2 -> global 2 and local 3 -> global 3 must not chain
	text, _ := r.Renumber(block.Block{
		Text:      "[^3] then [^2]",
		Footnotes: []block.Footnote{{Number: 3, Body: "c"}, {Number: 2, Body: "b"}},
	})
	if text != "[^2] then [^3]" {
		t.Errorf("text = %q, want %q", text, "[^2] then [^3]")
	}
}

func TestRenumber_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		in       block.Block
		wantText string
		wantDefs []block.Footnote
	}{
		{
			name:     "orphan placeholder kept",
			in:       block.Block{Text: "a [^1] b [^9]", Footnotes: []block.Footnote{{Number: 1, Body: "x"}}},
			wantText: "a [^1] b [^9]",
			wantDefs: []block.Footnote{{Number: 1, Body: "x"}},
		},
		{
			name:     "unused definition kept",
			in:       block.Block{Text: "a", Footnotes: []block.Footnote{{Number: 1, Body: "x"}}},
			wantText: "a",
			wantDefs: []block.Footnote{{Number: 1, Body: "x"}},
		},
		{
			name: "duplicate local number",
			in: block.Block{Text: "a [^1]", Footnotes: []block.Footnote{
				{Number: 1, Body: "x"},
				{Number: 1, Body: "y"},
			}},
			wantText: "a [^1]",
			wantDefs: []block.Footnote{{Number: 1, Body: "x"}, {Number: 2, Body: "y"}},
		},
		{
			name:     "no footnotes",
			in:       block.Block{Text: "plain [^4]"},
			wantText: "plain [^4]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, defs := NewRenumberer().Renumber(tt.in)
			if text != tt.wantText {
				t.Errorf("text = %q, want %q", text, tt.wantText)
			}
			if !reflect.DeepEqual(defs, tt.wantDefs) {
				t.Errorf("defs = %v, want %v", defs, tt.wantDefs)
			}
		})
	}
}

func TestReset(t *testing.T) {
	r := NewRenumberer()
	r.Renumber(block.Block{Text: "[^1]", Footnotes: []block.Footnote{{Number: 1, Body: "a"}}})
	r.Reset()
	if r.Next() != 1 {
		t.Errorf("Next() after Reset = %d", r.Next())
	}
}
