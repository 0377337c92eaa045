package crawler

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SiteConfig describes the link layout of the encyclopedia.
type SiteConfig struct {
	Base         string // scheme and host, e.g. https://dorar.net
	UnitSelector string // element holding one unit link (surah card)
	UnitPath     string // path of a unit page; group 1 is its number
	SectionPath  string // path of a chained page; groups are unit and page
	NodePath     string // path of a tree page; group 1 is its number
	PaneSelector string // tab panes holding child links
	ActiveClass  string // class of the pane currently shown
	NextText     string // anchor text of the "next" link
	BranchSplit  string // text that ends a branch title inside its pane
}

// DefaultSiteConfig returns the dorar.net layout.
func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		Base:         "https://dorar.net",
		UnitSelector: "div.card-personal",
		UnitPath:     `^/tafseer/(\d+)$`,
		SectionPath:  `^/tafseer/(\d+)/(\d+)$`,
		NodePath:     `^/arabia/(\d+)$`,
		PaneSelector: "div.tab-pane",
		ActiveClass:  "active",
		NextText:     "التالي",
		BranchSplit:  `تَمهيد|تمهيد|البابُ|الباب|مُقَدِّمة`,
	}
}

// Branch is one top-level entry of a tree root page.
type Branch struct {
	Title string `json:"title" yaml:"title"`
	Links []Link `json:"links" yaml:"links"`
}

// Site discovers links on encyclopedia pages.
type Site struct {
	config      SiteConfig
	base        *url.URL
	units       *LinkSelector
	sections    *LinkSelector
	next        *LinkSelector
	nodes       *LinkSelector
	branchSplit *regexp.Regexp
}

// NewSite compiles the layout patterns.
func NewSite(cfg SiteConfig) (*Site, error) {
	base, err := url.Parse(cfg.Base)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.Base)
	}

	s := &Site{config: cfg, base: base}
	if s.units, err = NewLinkSelector("a[href]", cfg.UnitPath); err != nil {
		return nil, fmt.Errorf("unit path: %w", err)
	}
	if s.sections, err = NewLinkSelector("a[href]", cfg.SectionPath); err != nil {
		return nil, fmt.Errorf("section path: %w", err)
	}
	s.next = mustLinkSelector("a[href]", cfg.SectionPath)
	s.next.TextContains = cfg.NextText
	if s.nodes, err = NewLinkSelector("a[href]", cfg.NodePath); err != nil {
		return nil, fmt.Errorf("node path: %w", err)
	}
	s.nodes.RequireText = true
	if s.branchSplit, err = regexp.Compile(cfg.BranchSplit); err != nil {
		return nil, fmt.Errorf("branch split: %w", err)
	}
	return s, nil
}

// Base returns the site root URL.
func (s *Site) Base() string {
	return s.base.String()
}

// Resolve turns a site path into an absolute URL.
func (s *Site) Resolve(path string) string {
	ref, err := url.Parse(path)
	if err != nil {
		return ""
	}
	return s.base.ResolveReference(ref).String()
}

func (s *Site) parse(html string) *goquery.Selection {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return &goquery.Selection{}
	}
	return doc.Selection
}

// Units returns the unit (surah) links of an index page sorted by number.
func (s *Site) Units(html string) []Link {
	var links []Link
	seen := make(map[string]bool)
	s.parse(html).Find(s.config.UnitSelector).Each(func(_ int, card *goquery.Selection) {
		link, ok := s.units.First(card, s.base)
		if !ok || link.Title == "" || seen[link.URL] {
			return
		}
		seen[link.URL] = true
		links = append(links, link)
	})
	sort.SliceStable(links, func(i, j int) bool {
		return links[i].Num(0) < links[j].Num(0)
	})
	return links
}

// FirstSection returns the lowest numbered chained page of unit linked
// from html, or else the page's "next" link, or "".
func (s *Site) FirstSection(html string, unit int) string {
	root := s.parse(html)
	var best Link
	for _, l := range s.sections.Select(root, s.base) {
		if l.Num(0) != unit {
			continue
		}
		if best.URL == "" || l.Num(1) < best.Num(1) {
			best = l
		}
	}
	if best.URL != "" {
		return best.URL
	}
	if next, ok := s.next.First(root, s.base); ok {
		return next.URL
	}
	return ""
}

// Next returns the "next" link of a chained page, or "".
func (s *Site) Next(html string) string {
	if next, ok := s.next.First(s.parse(html), s.base); ok {
		return next.URL
	}
	return ""
}

// SectionUnit returns the unit number of a chained page URL, or 0.
func (s *Site) SectionUnit(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}
	return pathNum(s.sections.PathPattern, u.Path)
}

// NodeNum returns the number of a tree page URL, or 0.
func (s *Site) NodeNum(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}
	return pathNum(s.nodes.PathPattern, u.Path)
}

func pathNum(re *regexp.Regexp, path string) int {
	m := re.FindStringSubmatch(path)
	if len(m) < 2 {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// PaneLinks returns the tree links of the first active pane whose number
// is greater than parent. A parent of 0 disables the filter.
func (s *Site) PaneLinks(html string, parent int) []Link {
	var pane *goquery.Selection
	s.parse(html).Find(s.config.PaneSelector).EachWithBreak(func(_ int, p *goquery.Selection) bool {
		if p.HasClass(s.config.ActiveClass) {
			pane = p
			return false
		}
		return true
	})
	if pane == nil {
		return nil
	}

	var links []Link
	for _, l := range s.nodes.Select(pane, s.base) {
		if parent > 0 && l.Num(0) <= parent {
			continue
		}
		links = append(links, l)
	}
	return links
}

// Branches lists every pane of a tree root page as a branch. Panes that
// repeat an earlier branch's first link are skipped.
func (s *Site) Branches(html string) []Branch {
	var branches []Branch
	seenFirst := make(map[string]bool)

	s.parse(html).Find(s.config.PaneSelector).Each(func(_ int, pane *goquery.Selection) {
		links := s.nodes.Select(pane, s.base)
		if len(links) == 0 || seenFirst[links[0].URL] {
			return
		}
		seenFirst[links[0].URL] = true

		text := strings.Join(strings.Fields(pane.Text()), " ")
		title := strings.TrimSpace(s.branchSplit.Split(text, 2)[0])
		if title == "" {
			title = links[0].Title
		}
		branches = append(branches, Branch{Title: title, Links: links})
	})
	return branches
}
