package crawler

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Link is an anchor whose path matched a selector pattern.
type Link struct {
	URL   string `json:"url" yaml:"url"`
	Title string `json:"title" yaml:"title"`

	// Nums are the numeric groups captured from the path.
	Nums []int `json:"nums,omitempty" yaml:"nums,omitempty"`
}

// Num returns the i-th captured number, or 0.
func (l Link) Num(i int) int {
	if i < 0 || i >= len(l.Nums) {
		return 0
	}
	return l.Nums[i]
}

// LinkSelector extracts links whose path matches a pattern.
type LinkSelector struct {
	CSSSelector  string         // CSS selector for candidate anchors
	PathPattern  *regexp.Regexp // Regex the URL path must match; groups are captured as numbers
	TextContains string         // Required substring of the anchor text
	RequireText  bool           // Skip anchors without visible text
}

// NewLinkSelector creates a link selector.
func NewLinkSelector(cssSelector, pathPattern string) (*LinkSelector, error) {
	ls := &LinkSelector{CSSSelector: cssSelector}
	if pathPattern != "" {
		pattern, err := regexp.Compile(pathPattern)
		if err != nil {
			return nil, err
		}
		ls.PathPattern = pattern
	}
	return ls, nil
}

func mustLinkSelector(cssSelector, pathPattern string) *LinkSelector {
	ls, err := NewLinkSelector(cssSelector, pathPattern)
	if err != nil {
		panic(err)
	}
	return ls
}

// Select returns the matching links under root, deduplicated by URL, in
// document order. Links to other hosts are skipped.
func (ls *LinkSelector) Select(root *goquery.Selection, base *url.URL) []Link {
	selector := ls.CSSSelector
	if selector == "" {
		selector = "a[href]"
	}

	var links []Link
	seen := make(map[string]bool)

	root.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if link, ok := ls.match(s, base); ok && !seen[link.URL] {
			seen[link.URL] = true
			links = append(links, link)
		}
	})
	return links
}

// First returns the first matching link under root.
func (ls *LinkSelector) First(root *goquery.Selection, base *url.URL) (Link, bool) {
	selector := ls.CSSSelector
	if selector == "" {
		selector = "a[href]"
	}

	var found Link
	ok := false
	root.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		found, ok = ls.match(s, base)
		return !ok
	})
	return found, ok
}

func (ls *LinkSelector) match(s *goquery.Selection, base *url.URL) (Link, bool) {
	href, exists := s.Attr("href")
	if !exists || href == "" {
		return Link{}, false
	}

	// Skip fragments and javascript links
	if strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return Link{}, false
	}

	title := strings.Join(strings.Fields(s.Text()), " ")
	if ls.RequireText && title == "" {
		return Link{}, false
	}
	if ls.TextContains != "" && !strings.Contains(title, ls.TextContains) {
		return Link{}, false
	}

	linkURL, err := url.Parse(href)
	if err != nil {
		return Link{}, false
	}
	if base != nil {
		if linkURL.IsAbs() && !IsSameDomain(linkURL.String(), base.String()) {
			return Link{}, false
		}
		linkURL = base.ResolveReference(linkURL)
	}
	linkURL.Fragment = ""

	link := Link{URL: linkURL.String(), Title: title}
	if ls.PathPattern != nil {
		m := ls.PathPattern.FindStringSubmatch(linkURL.Path)
		if m == nil {
			return Link{}, false
		}
		for _, g := range m[1:] {
			n, err := strconv.Atoi(g)
			if err != nil {
				return Link{}, false
			}
			link.Nums = append(link.Nums, n)
		}
	}
	return link, true
}
