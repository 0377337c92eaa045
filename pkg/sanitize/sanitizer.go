package sanitize

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/jmylchreest/dorar/internal/logger"
)

// Sanitizer removes chrome and noise from a page and selects its content region.
type Sanitizer struct {
	config   *Config
	noise    []*regexp.Regexp
	crossRef *regexp.Regexp
}

// New creates a Sanitizer with the given configuration.
// If config is nil, DefaultConfig() is used.
func New(config *Config) *Sanitizer {
	if config == nil {
		config = DefaultConfig()
	}
	s := &Sanitizer{config: config}
	for _, class := range config.NoiseClasses {
		s.noise = append(s.noise, regexp.MustCompile(`\b`+regexp.QuoteMeta(class)+`\b`))
	}
	if config.CrossRefPattern != "" {
		if re, err := regexp.Compile(config.CrossRefPattern); err == nil {
			s.crossRef = re
		} else {
			logger.Warn("invalid cross reference pattern", "pattern", config.CrossRefPattern, "error", err)
		}
	}
	return s
}

// Config returns the sanitizer configuration.
func (s *Sanitizer) Config() *Config {
	return s.config
}

// Sanitize parses raw markup and returns the cleaned content region.
// Empty markup yields an empty region, not an error.
func (s *Sanitizer) Sanitize(raw string) (*Result, error) {
	parseStart := time.Now()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	parseDuration := time.Since(parseStart)
	if err != nil {
		return nil, fmt.Errorf("parsing markup: %w", err)
	}

	result := s.SanitizeDocument(doc)
	result.Stats.InputBytes = len(raw)
	result.Stats.ParseDuration = parseDuration
	return result, nil
}

// SanitizeDocument sanitizes an already parsed document in place.
func (s *Sanitizer) SanitizeDocument(doc *goquery.Document) *Result {
	start := time.Now()
	result := &Result{
		Document: doc,
		Stats:    NewStats(),
	}

	// Order matters: drop whole subtrees first, then choose among what is left.

	// 1. Structural chrome
	for _, tag := range s.config.RemoveTags {
		doc.Find(tag).Each(func(_ int, sel *goquery.Selection) {
			result.Stats.RecordRemoval(tag)
			sel.Remove()
		})
	}

	// 2. Noise classes
	s.removeNoise(doc.Selection, result)

	// 3. Collapsible panels
	if len(s.config.CollapseIDPrefixes) > 0 {
		s.removeCollapsed(doc, result)
	}

	// 4. Region
	region := s.selectPane(doc, result)
	if region == nil {
		result.Fallback = true
		region = doc.Find("body").First()
		if region.Length() == 0 {
			region = doc.Selection
		}
	}
	result.Region = region

	result.Stats.TransformDuration = time.Since(start)
	logger.Debug("sanitized page",
		"removed", result.Stats.TotalElementsRemoved(),
		"pane_selected", result.Stats.PaneSelected,
		"fallback", result.Fallback)

	return result
}

func (s *Sanitizer) removeNoise(root *goquery.Selection, result *Result) {
	if len(s.noise) == 0 {
		return
	}
	for i, re := range s.noise {
		class := s.config.NoiseClasses[i]
		root.Find("[class]").Each(func(_ int, sel *goquery.Selection) {
			if !isAttached(sel) {
				return
			}
			value, _ := sel.Attr("class")
			if matchesClass(re, value) {
				result.Stats.RecordNoiseMatch(class)
				result.Stats.RecordRemoval(goquery.NodeName(sel))
				sel.Remove()
			}
		})
	}
}

func (s *Sanitizer) removeCollapsed(doc *goquery.Document, result *Result) {
	doc.Find("div[id]").Each(func(_ int, sel *goquery.Selection) {
		id, _ := sel.Attr("id")
		for _, prefix := range s.config.CollapseIDPrefixes {
			if strings.HasPrefix(id, prefix) {
				result.Stats.CollapseRemoved++
				result.Stats.RecordRemoval("div")
				sel.Remove()
				return
			}
		}
	})
}

// selectPane returns the first active pane with substantial text and few
// cross-reference links, or nil.
func (s *Sanitizer) selectPane(doc *goquery.Document, result *Result) *goquery.Selection {
	if !s.config.SelectPane || s.config.ContainerSelector == "" || s.config.PaneSelector == "" {
		return nil
	}

	container := doc.Find(s.config.ContainerSelector).First()
	if container.Length() == 0 {
		return nil
	}

	var selected *goquery.Selection
	container.Find(s.config.PaneSelector).EachWithBreak(func(_ int, pane *goquery.Selection) bool {
		result.Stats.PanesConsidered++
		if s.config.ActiveClass != "" && !pane.HasClass(s.config.ActiveClass) {
			return true
		}
		textLen := utf8.RuneCountInString(StrippedText(pane))
		links := s.countCrossRefs(pane)
		if textLen > s.config.MinPaneText && links <= s.config.MaxPaneLinks {
			selected = pane
			return false
		}
		logger.Debug("pane rejected", "chars", textLen, "links", links)
		return true
	})

	if selected != nil {
		result.Stats.PaneSelected = true
	} else {
		result.AddWarning("select", "no active content pane found, using body", s.config.PaneSelector)
	}
	return selected
}

func (s *Sanitizer) countCrossRefs(pane *goquery.Selection) int {
	if s.crossRef == nil {
		return 0
	}
	count := 0
	pane.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if s.crossRef.MatchString(href) {
			count++
		}
	})
	return count
}

// StrippedText concatenates every text node of sel with surrounding
// whitespace removed, the way pane text length is measured.
func StrippedText(sel *goquery.Selection) string {
	var sb strings.Builder
	for _, n := range sel.Nodes {
		collectStripped(&sb, n)
	}
	return sb.String()
}

func collectStripped(sb *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		sb.WriteString(strings.TrimSpace(n.Data))
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectStripped(sb, c)
	}
}

// matchesClass tests the whole attribute and each class token.
func matchesClass(re *regexp.Regexp, value string) bool {
	if re.MatchString(value) {
		return true
	}
	for _, token := range strings.Fields(value) {
		if re.MatchString(token) {
			return true
		}
	}
	return false
}

// isAttached reports whether the selection's node still hangs from a document.
func isAttached(sel *goquery.Selection) bool {
	if sel.Length() == 0 {
		return false
	}
	n := sel.Nodes[0]
	for n.Parent != nil {
		n = n.Parent
	}
	return n.Type == html.DocumentNode
}
