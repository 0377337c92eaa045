// Package corpus groups extracted blocks from every visited page by
// canonical heading key.
package corpus

import (
	"slices"
	"sort"
	"unicode/utf8"

	"github.com/jmylchreest/dorar/internal/logger"
	"github.com/jmylchreest/dorar/pkg/block"
)

// Provenance identifies where a block came from.
type Provenance struct {
	// Unit is the name of the source document group, e.g. the surah.
	Unit string `json:"unit" yaml:"unit"`

	// Order is the unit's position in traversal order.
	Order int `json:"order" yaml:"order"`

	// PageTitle is the title of the page the block was extracted from.
	PageTitle string `json:"page_title,omitempty" yaml:"page_title,omitempty"`

	// Locator is the page URL.
	Locator string `json:"locator" yaml:"locator"`
}

// Entry is one block appended under a key.
type Entry struct {
	Provenance
	Block block.Block `json:"block" yaml:"block"`
}

// Section is every entry sharing one key.
type Section struct {
	Key string `json:"key" yaml:"key"`

	// Heading is the first raw heading observed for the key.
	Heading string  `json:"heading" yaml:"heading"`
	Entries []Entry `json:"entries" yaml:"entries"`
}

// Sources returns the number of distinct units contributing to s.
func (s Section) Sources() int {
	seen := make(map[int]bool)
	for _, e := range s.Entries {
		seen[e.Order] = true
	}
	return len(seen)
}

// Chars returns the number of characters of body text in s.
func (s Section) Chars() int {
	total := 0
	for _, e := range s.Entries {
		total += utf8.RuneCountInString(e.Block.Text)
	}
	return total
}

// Aggregator collects entries per key. Entries are never removed.
// It is not safe for concurrent use.
type Aggregator struct {
	order    []string
	sections map[string]*Section
}

// New returns an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{sections: make(map[string]*Section)}
}

// Append adds b under key. The first block appended for a key fixes the
// section's display heading. Empty keys are ignored.
func (a *Aggregator) Append(key string, prov Provenance, b block.Block) {
	if key == "" {
		logger.Debug("skipping block without key", "locator", prov.Locator)
		return
	}
	s, ok := a.sections[key]
	if !ok {
		heading := b.Heading
		if heading == "" {
			heading = key
		}
		s = &Section{Key: key, Heading: heading}
		a.sections[key] = s
		a.order = append(a.order, key)
	}
	s.Entries = append(s.Entries, Entry{Provenance: prov, Block: b})
}

// Len returns the number of keys.
func (a *Aggregator) Len() int {
	return len(a.order)
}

// Keys returns the keys in first-seen order.
func (a *Aggregator) Keys() []string {
	return slices.Clone(a.order)
}

// Entries returns the number of entries across all keys.
func (a *Aggregator) Entries() int {
	total := 0
	for _, s := range a.sections {
		total += len(s.Entries)
	}
	return total
}

// Finalize returns the sections ordered by descending entry count, ties in
// first-seen order. Each section's entries are stably sorted by orderKey;
// a nil orderKey sorts by Provenance.Order. The aggregator is not changed
// and may keep growing afterwards.
func (a *Aggregator) Finalize(orderKey func(Entry) int) []Section {
	if orderKey == nil {
		orderKey = func(e Entry) int { return e.Order }
	}

	out := make([]Section, 0, len(a.order))
	for _, key := range a.order {
		s := a.sections[key]
		entries := slices.Clone(s.Entries)
		sort.SliceStable(entries, func(i, j int) bool {
			return orderKey(entries[i]) < orderKey(entries[j])
		})
		out = append(out, Section{Key: s.Key, Heading: s.Heading, Entries: entries})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].Entries) > len(out[j].Entries)
	})
	return out
}
