package dorar

import (
	"github.com/jmylchreest/dorar/pkg/block"
	"github.com/jmylchreest/dorar/pkg/corpus"
	"github.com/jmylchreest/dorar/pkg/heading"
)

// Collector assigns each block a canonical key and aggregates it.
// One Collector holds the state of one run.
type Collector struct {
	clusterer  *heading.Clusterer
	aggregator *corpus.Aggregator
}

// NewCollector creates a Collector with a fresh registry.
func NewCollector(opts ...heading.Option) *Collector {
	return &Collector{
		clusterer:  heading.NewClusterer(opts...),
		aggregator: corpus.New(),
	}
}

// Add files every block of a page under its heading's key and returns the
// number of blocks added. Blocks without a heading are skipped.
func (c *Collector) Add(prov corpus.Provenance, blocks []block.Block) int {
	added := 0
	for _, b := range blocks {
		key := c.clusterer.Key(b.Heading)
		if key == "" {
			continue
		}
		c.aggregator.Append(key, prov, b)
		added++
	}
	return added
}

// Sections returns the aggregated sections, largest first, with entries
// in traversal order.
func (c *Collector) Sections() []corpus.Section {
	return c.aggregator.Finalize(nil)
}

// Clusterer exposes the heading registry for inspection.
func (c *Collector) Clusterer() *heading.Clusterer {
	return c.clusterer
}

// Len returns the number of distinct sections.
func (c *Collector) Len() int {
	return c.aggregator.Len()
}

// Reset starts a new run.
func (c *Collector) Reset() {
	c.clusterer.Reset()
	c.aggregator = corpus.New()
}
