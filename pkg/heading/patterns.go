package heading

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Rule maps known paraphrasings of a heading to one fixed label.
// Patterns are matched against normalized text.
type Rule struct {
	Pattern *regexp.Regexp
	Label   string
}

// DefaultRules returns the built-in paraphrase table.
func DefaultRules() []Rule {
	return []Rule{
		{
			Pattern: regexp.MustCompile(`مناسبة\s+ال[اآ][يى](ة|تين|ات)\s+لما\s+(قبلها|سبق)`),
			Label:   "مناسبة الآيات لما قبلها",
		},
		{
			Pattern: regexp.MustCompile(`القراءات\s+(ذات|التي\s+لها)\s+الاثر\s+في\s+التفسير`),
			Label:   "القراءات ذات الأثر في التفسير",
		},
	}
}

type ruleFile struct {
	Rules []struct {
		Pattern string `yaml:"pattern"`
		Label   string `yaml:"label"`
	} `yaml:"rules"`
}

// ParseRules decodes a YAML rule table of the form
//
//	rules:
//	  - pattern: "..."
//	    label: "..."
func ParseRules(data []byte) ([]Rule, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding rules: %w", err)
	}
	rules := make([]Rule, 0, len(f.Rules))
	for i, r := range f.Rules {
		if r.Pattern == "" || r.Label == "" {
			return nil, fmt.Errorf("rule %d: pattern and label are required", i+1)
		}
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
		rules = append(rules, Rule{Pattern: re, Label: r.Label})
	}
	return rules, nil
}

// LoadRules reads a YAML rule table from path.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	return ParseRules(data)
}
