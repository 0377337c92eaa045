package heading

import (
	"slices"

	"github.com/jmylchreest/dorar/internal/logger"
)

// DefaultThreshold is the similarity at or above which a heading joins an
// existing key.
const DefaultThreshold = 0.82

// DefaultNearMiss is how far below the threshold a score is still logged
// as a near miss.
const DefaultNearMiss = 0.05

// Config holds clusterer settings.
type Config struct {
	Threshold  float64
	NearMiss   float64
	Rules      []Rule
	Similarity Similarity
}

// Option configures a Clusterer.
type Option func(*Config)

// WithThreshold sets the merge threshold.
func WithThreshold(t float64) Option {
	return func(c *Config) {
		c.Threshold = t
	}
}

// WithNearMiss sets the margin under the threshold that is logged.
func WithNearMiss(m float64) Option {
	return func(c *Config) {
		c.NearMiss = m
	}
}

// WithRules replaces the paraphrase table.
func WithRules(rules []Rule) Option {
	return func(c *Config) {
		c.Rules = rules
	}
}

// WithSimilarity replaces the scoring function.
func WithSimilarity(fn Similarity) Option {
	return func(c *Config) {
		c.Similarity = fn
	}
}

// Clusterer assigns canonical keys to headings. Assignments are greedy and
// never revised: the first heading seen for a concept fixes its key.
// A Clusterer is not safe for concurrent use.
type Clusterer struct {
	config Config

	keys    []string
	index   map[string]int
	members map[string][]string
}

// NewClusterer creates a Clusterer with an empty registry.
func NewClusterer(opts ...Option) *Clusterer {
	cfg := Config{
		Threshold:  DefaultThreshold,
		NearMiss:   DefaultNearMiss,
		Rules:      DefaultRules(),
		Similarity: Ratio,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Similarity == nil {
		cfg.Similarity = Ratio
	}
	c := &Clusterer{config: cfg}
	c.Reset()
	return c
}

// Reset clears the registry for a new run.
func (c *Clusterer) Reset() {
	c.keys = nil
	c.index = make(map[string]int)
	c.members = make(map[string][]string)
}

// Key returns the canonical key for heading, registering a new key when no
// rule or existing key matches. An empty heading yields "" and is not
// registered.
func (c *Clusterer) Key(heading string) string {
	norm := Normalize(heading)
	if norm == "" {
		return ""
	}

	for _, rule := range c.config.Rules {
		if rule.Pattern.MatchString(norm) {
			c.register(rule.Label)
			c.addMember(rule.Label, heading)
			return rule.Label
		}
	}

	if _, ok := c.index[norm]; ok {
		c.addMember(norm, heading)
		return norm
	}

	// Scores compare the normalized heading with each key as registered.
	best, bestScore := -1, 0.0
	for i, k := range c.keys {
		if score := c.config.Similarity(norm, k); score > bestScore {
			best, bestScore = i, score
		}
	}

	if best >= 0 && bestScore >= c.config.Threshold {
		key := c.keys[best]
		c.addMember(key, heading)
		return key
	}

	if best >= 0 && bestScore >= c.config.Threshold-c.config.NearMiss {
		logger.Info("heading kept apart from near match",
			"heading", norm,
			"closest", c.keys[best],
			"score", bestScore,
			"threshold", c.config.Threshold)
	}

	c.register(norm)
	c.addMember(norm, heading)
	return norm
}

func (c *Clusterer) register(key string) {
	if _, ok := c.index[key]; ok {
		return
	}
	c.index[key] = len(c.keys)
	c.keys = append(c.keys, key)
	logger.Debug("registered heading key", "key", key)
}

func (c *Clusterer) addMember(key, heading string) {
	if !slices.Contains(c.members[key], heading) {
		c.members[key] = append(c.members[key], heading)
	}
}

// Keys returns the registered keys in registration order.
func (c *Clusterer) Keys() []string {
	return slices.Clone(c.keys)
}

// Members returns the distinct raw headings assigned to key, in the order
// they were first seen.
func (c *Clusterer) Members(key string) []string {
	return slices.Clone(c.members[key])
}

// Mapping returns every key with its member headings.
func (c *Clusterer) Mapping() map[string][]string {
	out := make(map[string][]string, len(c.members))
	for k, v := range c.members {
		out[k] = slices.Clone(v)
	}
	return out
}

// Len returns the number of registered keys.
func (c *Clusterer) Len() int {
	return len(c.keys)
}
