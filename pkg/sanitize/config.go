// Package sanitize strips page chrome from encyclopedia markup and isolates
// the single region that carries the authoritative text.
package sanitize

// Config defines the sanitizer rules.
type Config struct {
	// === Removal ===

	// RemoveTags are element names removed wherever they appear.
	RemoveTags []string `json:"remove_tags" yaml:"remove_tags"`

	// NoiseClasses are class names removed with word-boundary matching,
	// so "alert-dorar" also removes "alert-dorar-banner".
	NoiseClasses []string `json:"noise_classes" yaml:"noise_classes"`

	// CollapseIDPrefixes removes <div> elements whose id starts with one of
	// these prefixes (collapsible accordion panels).
	CollapseIDPrefixes []string `json:"collapse_id_prefixes" yaml:"collapse_id_prefixes"`

	// === Pane selection ===

	// SelectPane enables choosing one active tab pane as the content region.
	SelectPane bool `json:"select_pane" yaml:"select_pane"`

	// ContainerSelector locates the element holding the tab panes.
	ContainerSelector string `json:"container_selector" yaml:"container_selector"`

	// PaneSelector matches candidate panes inside the container.
	PaneSelector string `json:"pane_selector" yaml:"pane_selector"`

	// ActiveClass flags the pane currently shown.
	ActiveClass string `json:"active_class" yaml:"active_class"`

	// MinPaneText is the number of characters a pane must exceed.
	MinPaneText int `json:"min_pane_text" yaml:"min_pane_text"`

	// MaxPaneLinks is the most cross-reference links a content pane may hold.
	MaxPaneLinks int `json:"max_pane_links" yaml:"max_pane_links"`

	// CrossRefPattern matches hrefs counted as cross-reference links.
	CrossRefPattern string `json:"cross_ref_pattern" yaml:"cross_ref_pattern"`
}

// DefaultConfig returns the rules used for whole-page extraction.
func DefaultConfig() *Config {
	return &Config{
		RemoveTags: []string{"nav", "header", "footer", "script", "style", "form"},
		NoiseClasses: []string{
			"modal",
			"readMore",
			"alert-dorar",
			"title-manhag",
			"dorar_custom_accordion",
			"default-gradient",
			"footer-copyright",
			"card-personal",
			"fixed-bottom",
			"side-nav",
		},
		CollapseIDPrefixes: []string{"collapse"},

		SelectPane:        true,
		ContainerSelector: "div.card-body",
		PaneSelector:      "div.tab-pane",
		ActiveClass:       "active",
		MinPaneText:       200,
		MaxPaneLinks:      2,
		CrossRefPattern:   `^/(tafseer|arabia)/\d+(/\d+)?$`,
	}
}

// PresetArticles returns the rules used when a page is split into its
// <article> elements: chrome and noise are removed but the whole body is
// kept, since every article becomes its own block.
func PresetArticles() *Config {
	cfg := DefaultConfig()
	cfg.SelectPane = false
	cfg.CollapseIDPrefixes = nil
	return cfg
}

// Merge merges another config into this one.
// Non-zero values from other override this config; lists are appended
// without duplicates.
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	merged := *c

	merged.RemoveTags = appendUnique(merged.RemoveTags, other.RemoveTags)
	merged.NoiseClasses = appendUnique(merged.NoiseClasses, other.NoiseClasses)
	merged.CollapseIDPrefixes = appendUnique(merged.CollapseIDPrefixes, other.CollapseIDPrefixes)

	if other.SelectPane {
		merged.SelectPane = true
	}
	if other.ContainerSelector != "" {
		merged.ContainerSelector = other.ContainerSelector
	}
	if other.PaneSelector != "" {
		merged.PaneSelector = other.PaneSelector
	}
	if other.ActiveClass != "" {
		merged.ActiveClass = other.ActiveClass
	}
	if other.MinPaneText > 0 {
		merged.MinPaneText = other.MinPaneText
	}
	if other.MaxPaneLinks > 0 {
		merged.MaxPaneLinks = other.MaxPaneLinks
	}
	if other.CrossRefPattern != "" {
		merged.CrossRefPattern = other.CrossRefPattern
	}

	return &merged
}

func appendUnique(dst, src []string) []string {
	if len(src) == 0 {
		return dst
	}
	seen := make(map[string]bool, len(dst))
	out := make([]string, 0, len(dst)+len(src))
	for _, s := range dst {
		seen[s] = true
		out = append(out, s)
	}
	for _, s := range src {
		if !seen[s] {
			out = append(out, s)
			seen[s] = true
		}
	}
	return out
}
