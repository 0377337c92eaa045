// Package crawler walks the encyclopedia: site link discovery, the
// depth-first tree walk and the next-link chain.
package crawler

import (
	"net/url"
	"sync"
)

// Visited is a set of URLs already fetched during a run.
type Visited struct {
	mu   sync.Mutex
	seen map[string]bool
}

// NewVisited creates an empty set holding the given URLs.
func NewVisited(urls ...string) *Visited {
	v := &Visited{seen: make(map[string]bool)}
	for _, u := range urls {
		v.seen[normalizeURL(u)] = true
	}
	return v
}

// Visit marks rawURL visited and reports whether it was new.
// Unparseable URLs are never new.
func (v *Visited) Visit(rawURL string) bool {
	normalized := normalizeURL(rawURL)
	if normalized == "" {
		return false
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.seen[normalized] {
		return false
	}
	v.seen[normalized] = true
	return true
}

// Len returns the number of visited URLs.
func (v *Visited) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.seen)
}

// normalizeURL normalizes a URL for comparison.
func normalizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	// Remove fragment
	parsed.Fragment = ""

	// Remove trailing slash from path (unless it's just "/")
	if len(parsed.Path) > 1 && parsed.Path[len(parsed.Path)-1] == '/' {
		parsed.Path = parsed.Path[:len(parsed.Path)-1]
	}

	return parsed.String()
}

// IsSameDomain checks if two URLs are on the same domain.
func IsSameDomain(url1, url2 string) bool {
	parsed1, err := url.Parse(url1)
	if err != nil {
		return false
	}
	parsed2, err := url.Parse(url2)
	if err != nil {
		return false
	}
	return parsed1.Host == parsed2.Host
}
