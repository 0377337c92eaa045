// Package markdown renders a sanitized content region into Markdown text
// with footnote placeholders and a side list of footnote definitions.
package markdown

// Annotation describes an inline span category with its own rendering rule.
type Annotation struct {
	// Class is the class token that identifies the category.
	Class string `json:"class" yaml:"class"`

	// Tag restricts matching to one element name. Empty matches any element.
	Tag string `json:"tag" yaml:"tag"`

	// Open and Close wrap the span text.
	Open  string `json:"open" yaml:"open"`
	Close string `json:"close" yaml:"close"`

	// HeadingLevel, when non-zero, promotes the span to a Markdown heading
	// line of that level instead of wrapping it.
	HeadingLevel int `json:"heading_level" yaml:"heading_level"`
}

// Config defines the transformer rules.
type Config struct {
	// NavPattern matches the visible text of navigation anchors to drop.
	NavPattern string `json:"nav_pattern" yaml:"nav_pattern"`

	// Annotations are the inline span categories.
	Annotations []Annotation `json:"annotations" yaml:"annotations"`

	// HeadingOffset is added to native heading levels so body headings
	// never collide with the document title. Levels are capped at 6.
	HeadingOffset int `json:"heading_offset" yaml:"heading_offset"`

	// FootnoteTags are the element names that may carry a footnote.
	FootnoteTags []string `json:"footnote_tags" yaml:"footnote_tags"`

	// FootnotePattern matches the class attribute of footnote markers.
	FootnotePattern string `json:"footnote_pattern" yaml:"footnote_pattern"`

	// InlineFootnotePattern matches the start of a footnote written inline
	// in the text, e.g. "[3] يُنظَر: ...". Group 1 must capture the number.
	// The body runs to the end of the line or to the next inline footnote.
	InlineFootnotePattern string `json:"inline_footnote_pattern" yaml:"inline_footnote_pattern"`
}

// Verse, narration and sub-heading markers used by the default config.
const (
	VerseOpen      = "﴿"
	VerseClose     = "﴾"
	NarrationOpen  = "«"
	NarrationClose = "»"
)

// DefaultConfig returns the rules for encyclopedia pages.
func DefaultConfig() *Config {
	return &Config{
		NavPattern: `السابق|التالي|الصفحة|المراجع|اعتماد`,
		Annotations: []Annotation{
			{Class: "aaya", Tag: "span", Open: VerseOpen, Close: VerseClose},
			{Class: "sora", Tag: "span", Open: " ", Close: " "},
			{Class: "hadith", Tag: "span", Open: NarrationOpen, Close: NarrationClose},
			{Class: "title-2", Tag: "span", HeadingLevel: 4},
			{Class: "title-1", Tag: "span", HeadingLevel: 4},
		},
		HeadingOffset:         2,
		FootnoteTags:          []string{"span", "div", "sup"},
		FootnotePattern:       `(?i)foot|note|hawashi|fn|tip`,
		InlineFootnotePattern: `\[(\d+)\]\s*(?:يُنظَر|يُنظر|ينظر|انظر|\(\()`,
	}
}
