package fetcher

import (
	"context"
	"time"

	"github.com/jmylchreest/dorar/internal/logger"
)

// SessionStats counts what a session fetched.
type SessionStats struct {
	Requests int   `json:"requests" yaml:"requests"`
	Failures int   `json:"failures" yaml:"failures"`
	Bytes    int64 `json:"bytes" yaml:"bytes"`
}

// Session fetches pages one at a time with a fixed delay after each
// request. Fetch failures are not errors to the caller: Get returns "".
// A Session is not safe for concurrent use.
type Session struct {
	fetcher Fetcher
	delay   time.Duration
	referer string
	stats   SessionStats
}

// NewSession wraps f. referer is sent when Get is called without one.
func NewSession(f Fetcher, delay time.Duration, referer string) *Session {
	return &Session{fetcher: f, delay: delay, referer: referer}
}

// Get fetches url and returns its markup, or "" on any failure.
func (s *Session) Get(ctx context.Context, url, referer string) string {
	opts := Options{Referer: coalesce(referer, s.referer)}

	s.stats.Requests++
	content, err := s.fetcher.Fetch(ctx, url, opts)
	s.wait(ctx)

	if err != nil {
		s.stats.Failures++
		logger.WarnContext(ctx, "fetch failed", "url", url, "status", content.StatusCode, "error", err)
		return ""
	}
	s.stats.Bytes += int64(len(content.HTML))
	logger.InfoContext(ctx, "fetched", "url", url, "status", content.StatusCode)
	return content.HTML
}

// Stats returns the request counters so far.
func (s *Session) Stats() SessionStats {
	return s.stats
}

// Close closes the underlying fetcher.
func (s *Session) Close() error {
	return s.fetcher.Close()
}

func (s *Session) wait(ctx context.Context) {
	if s.delay <= 0 {
		return
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
