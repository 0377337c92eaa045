package dorar

import (
	"github.com/jmylchreest/dorar/pkg/markdown"
	"github.com/jmylchreest/dorar/pkg/sanitize"
)

// Config holds all extractor configuration.
type Config struct {
	// Sanitizer rules for whole-page extraction.
	Page *sanitize.Config

	// Sanitizer rules for article extraction.
	Articles *sanitize.Config

	// Transformer rules.
	Markdown *markdown.Config

	// HeadingSelector locates an article's heading.
	HeadingSelector string

	// SplitClass marks the titled passages an article is split into.
	SplitClass string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Page:            sanitize.DefaultConfig(),
		Articles:        sanitize.PresetArticles(),
		Markdown:        markdown.DefaultConfig(),
		HeadingSelector: "h5, h4, h3",
		SplitClass:      "title-1",
	}
}

// Option configures an Extractor.
type Option func(*Config)

// WithPageConfig sets the sanitizer rules for whole-page extraction.
func WithPageConfig(cfg *sanitize.Config) Option {
	return func(c *Config) {
		c.Page = cfg
	}
}

// WithArticleConfig sets the sanitizer rules for article extraction.
func WithArticleConfig(cfg *sanitize.Config) Option {
	return func(c *Config) {
		c.Articles = cfg
	}
}

// WithMarkdownConfig sets the transformer rules.
func WithMarkdownConfig(cfg *markdown.Config) Option {
	return func(c *Config) {
		c.Markdown = cfg
	}
}

// WithHeadingSelector sets the selector for article headings.
func WithHeadingSelector(selector string) Option {
	return func(c *Config) {
		c.HeadingSelector = selector
	}
}

// WithSplitClass sets the class of passage titles inside an article.
func WithSplitClass(class string) Option {
	return func(c *Config) {
		c.SplitClass = class
	}
}
