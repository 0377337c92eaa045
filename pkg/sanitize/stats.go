package sanitize

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/yosssi/gohtml"
)

// Stats captures what the sanitizer removed.
type Stats struct {
	InputBytes int `json:"input_bytes"`

	// Element counts
	ElementsRemoved map[string]int `json:"elements_removed"` // tag -> count
	NoiseMatches    map[string]int `json:"noise_matches"`    // class pattern -> count
	CollapseRemoved int            `json:"collapse_removed"`

	// Pane selection
	PanesConsidered int  `json:"panes_considered"`
	PaneSelected    bool `json:"pane_selected"`

	// Timing
	ParseDuration     time.Duration `json:"parse_duration_ms"`
	TransformDuration time.Duration `json:"transform_duration_ms"`
}

// NewStats creates a new Stats instance with initialized maps.
func NewStats() *Stats {
	return &Stats{
		ElementsRemoved: make(map[string]int),
		NoiseMatches:    make(map[string]int),
	}
}

// TotalElementsRemoved returns the sum of all removed elements.
func (s *Stats) TotalElementsRemoved() int {
	total := 0
	for _, count := range s.ElementsRemoved {
		total += count
	}
	return total
}

// RecordRemoval records that an element was removed.
func (s *Stats) RecordRemoval(tag string) {
	s.ElementsRemoved[strings.ToLower(tag)]++
}

// RecordNoiseMatch records that a noise class matched an element.
func (s *Stats) RecordNoiseMatch(class string) {
	s.NoiseMatches[class]++
}

// String returns a human-readable summary of the stats.
func (s *Stats) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Input: %d bytes\n", s.InputBytes))
	sb.WriteString(fmt.Sprintf("Elements removed: %d\n", s.TotalElementsRemoved()))

	if len(s.NoiseMatches) > 0 {
		parts := make([]string, 0, len(s.NoiseMatches))
		for class, count := range s.NoiseMatches {
			parts = append(parts, fmt.Sprintf("%s=%d", class, count))
		}
		sb.WriteString("Noise classes: ")
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString("\n")
	}

	if s.PanesConsidered > 0 {
		sb.WriteString(fmt.Sprintf("Panes: %d considered, selected=%v\n", s.PanesConsidered, s.PaneSelected))
	}

	sb.WriteString(fmt.Sprintf("Timing: parse=%v, transform=%v\n",
		s.ParseDuration.Round(time.Microsecond),
		s.TransformDuration.Round(time.Microsecond)))

	return sb.String()
}

// Warning represents a non-fatal issue encountered during sanitizing.
type Warning struct {
	Phase   string `json:"phase"`   // "parse", "transform", "select"
	Message string `json:"message"` // Human-readable description
	Context string `json:"context"` // Selector or pattern that caused the issue
}

// String returns a formatted warning message.
func (w Warning) String() string {
	if w.Context != "" {
		return fmt.Sprintf("[%s] %s (context: %s)", w.Phase, w.Message, w.Context)
	}
	return fmt.Sprintf("[%s] %s", w.Phase, w.Message)
}

// Result is the output of a sanitizing pass.
type Result struct {
	// Document is the parsed page. It has been mutated and must not be
	// sanitized again.
	Document *goquery.Document

	// Region is the selected content region.
	Region *goquery.Selection

	// Fallback is true when no suitable pane was found and the body
	// (or the whole document) became the region.
	Fallback bool

	Stats    *Stats
	Warnings []Warning
}

// AddWarning adds a warning to the result.
func (r *Result) AddWarning(phase, message, context string) {
	r.Warnings = append(r.Warnings, Warning{
		Phase:   phase,
		Message: message,
		Context: context,
	})
}

// HasWarnings returns true if any warnings were recorded.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Empty reports whether the region carries no text at all.
func (r *Result) Empty() bool {
	return r.Region == nil || strings.TrimSpace(r.Region.Text()) == ""
}

// HTML returns the region's markup, indented for reading.
func (r *Result) HTML() (string, error) {
	if r.Region == nil || r.Region.Length() == 0 {
		return "", nil
	}
	var sb strings.Builder
	for i := range r.Region.Nodes {
		h, err := goquery.OuterHtml(r.Region.Eq(i))
		if err != nil {
			return "", fmt.Errorf("rendering region: %w", err)
		}
		sb.WriteString(h)
	}
	return gohtml.Format(sb.String()), nil
}
