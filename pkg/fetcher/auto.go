package fetcher

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/dorar/internal/logger"
)

// AutoFetcher fetches statically and retries in a browser when the
// response looks like a bot challenge instead of an encyclopedia page.
type AutoFetcher struct {
	static  *StaticFetcher
	dynamic *DynamicFetcher
}

// NewAuto creates a fetcher that falls back to a browser when needed.
func NewAuto(cfg Config) (*AutoFetcher, error) {
	dynamic, err := NewDynamic(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic fetcher: %w", err)
	}
	return &AutoFetcher{
		static:  NewStatic(cfg),
		dynamic: dynamic,
	}, nil
}

// Fetch tries static first, then falls back to dynamic if needed.
// A 404 is final and never retried.
func (f *AutoFetcher) Fetch(ctx context.Context, url string, opts Options) (Content, error) {
	content, err := f.static.Fetch(ctx, url, opts)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == 404 {
			return content, err
		}
		logger.Debug("static fetch failed, retrying in browser", "url", url, "error", err)
		return f.dynamic.Fetch(ctx, url, opts)
	}

	if needsBrowser(content.HTML) {
		logger.Debug("challenge page detected, retrying in browser", "url", url)
		return f.dynamic.Fetch(ctx, url, opts)
	}
	return content, nil
}

var challengeMarkers = []string{
	"cf-browser-verification",
	"challenge-platform",
	"just a moment",
	"enable javascript",
	"javascript is required",
}

// needsBrowser reports whether html is a challenge page: a known marker
// in a page without any <body> text worth keeping.
func needsBrowser(html string) bool {
	lower := strings.ToLower(html)
	marked := false
	for _, m := range challengeMarkers {
		if strings.Contains(lower, m) {
			marked = true
			break
		}
	}
	if !marked {
		return false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return true
	}
	doc.Find("script, style, noscript").Remove()
	return len(strings.Fields(doc.Find("body").Text())) < 50
}

// Close releases all fetcher resources.
func (f *AutoFetcher) Close() error {
	return f.dynamic.Close()
}

// Type returns the fetcher type.
func (f *AutoFetcher) Type() string {
	return "auto"
}

func titleOf(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
