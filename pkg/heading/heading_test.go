package heading

import (
	"path/filepath"
	"reflect"
	"regexp"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"diacritics", "أَحْكَامُ الْقُرْآنِ", "احكام القران"},
		{"alef maqsura", "إلى موسى", "الي موسي"},
		{"wasla and dagger alef", "ٱلرَّحْمَٰنِ", "الرحمن"},
		{"whitespace", "  تفسير \t  الآيات\n", "تفسير الايات"},
		{"latin untouched", "Section  One", "Section One"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"abcd", "bcde", 0.75},
		{"same", "same", 1},
		{"", "", 1},
		{"abc", "xyz", 0},
	}

	for _, tt := range tests {
		if got := Ratio(tt.a, tt.b); got != tt.want {
			t.Errorf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestClusterer_ExplicitRules(t *testing.T) {
	c := NewClusterer()
	const label = "مناسبة الآيات لما قبلها"

	for _, h := range []string{"مناسبة الآية لما قبلها", "مناسبة الآيات لما سبق", "مُنَاسَبَةُ الآيَتَيْنِ لِمَا قَبْلَهَا"} {
		if got := c.Key(h); got != label {
			t.Errorf("Key(%q) = %q, want %q", h, got, label)
		}
	}
	if c.Len() != 1 {
		t.Errorf("expected one key, got %v", c.Keys())
	}
	if got := len(c.Members(label)); got != 3 {
		t.Errorf("expected 3 members, got %d", got)
	}

	if got := c.Key("القراءات التي لها الأثر في التفسير"); got != "القراءات ذات الأثر في التفسير" {
		t.Errorf("unexpected key for readings heading: %q", got)
	}
}

func TestClusterer_Idempotent(t *testing.T) {
	c := NewClusterer()
	first := c.Key("تفسير الآيات")
	second := c.Key("تفسير الآيات")
	if first != second {
		t.Errorf("Key not idempotent: %q then %q", first, second)
	}
	if c.Len() != 1 {
		t.Errorf("expected one key, got %d", c.Len())
	}
}

func TestClusterer_Threshold(t *testing.T) {
	c := NewClusterer()
	first := c.Key("تفسير الآيات")

	// ratio 20/23 after normalization
	if got := c.Key("تفسير الآية"); got != first {
		t.Errorf("expected merge into %q, got %q", first, got)
	}

	got := c.Key("غريب الكلمات")
	if got == first {
		t.Error("dissimilar heading merged")
	}
	if got != "غريب الكلمات" {
		t.Errorf("new key should be the normalized heading, got %q", got)
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 keys, got %v", c.Keys())
	}
}

func TestClusterer_Boundary(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		merge bool
	}{
		{"at threshold", 0.82, true},
		{"just under", 0.8199, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClusterer(WithRules(nil), WithSimilarity(func(a, b string) float64 {
				return tt.score
			}))
			c.Key("first")
			got := c.Key("second")
			if merged := got == "first"; merged != tt.merge {
				t.Errorf("score %v: merged = %v, want %v", tt.score, merged, tt.merge)
			}
		})
	}
}

func TestClusterer_TieGoesToFirstRegistered(t *testing.T) {
	sim := func(a, b string) float64 {
		if a == "k3" {
			return 0.9
		}
		return 0
	}
	c := NewClusterer(WithRules(nil), WithSimilarity(sim))
	c.Key("k1")
	c.Key("k2")

	if got := c.Key("k3"); got != "k1" {
		t.Errorf("tie resolved to %q, want k1", got)
	}
	if !reflect.DeepEqual(c.Keys(), []string{"k1", "k2"}) {
		t.Errorf("unexpected keys %v", c.Keys())
	}
}

func TestClusterer_ScoresAgainstRegisteredKeys(t *testing.T) {
	rules := []Rule{{Pattern: regexp.MustCompile("^مناسبة"), Label: "مناسبة الآيات"}}

	var compared []string
	sim := func(_, b string) float64 {
		compared = append(compared, b)
		return 0
	}
	c := NewClusterer(WithRules(rules), WithSimilarity(sim))

	c.Key("مناسبة الآيات لما قبلها")
	c.Key("آخر")
	if !reflect.DeepEqual(compared, []string{"مناسبة الآيات"}) {
		t.Errorf("compared against %q, want the registered label", compared)
	}
}

func TestClusterer_CustomThreshold(t *testing.T) {
	c := NewClusterer(WithThreshold(0.95))
	first := c.Key("تفسير الآيات")
	if got := c.Key("تفسير الآية"); got == first {
		t.Error("expected a new key under a stricter threshold")
	}
}

func TestClusterer_EmptyAndReset(t *testing.T) {
	c := NewClusterer()
	if got := c.Key("   "); got != "" {
		t.Errorf("Key(blank) = %q", got)
	}
	if c.Len() != 0 {
		t.Error("blank heading should not be registered")
	}

	c.Key("تفسير الآيات")
	c.Reset()
	if c.Len() != 0 || len(c.Mapping()) != 0 {
		t.Error("Reset should clear the registry")
	}
}

func TestClusterer_Mapping(t *testing.T) {
	c := NewClusterer()
	c.Key("تفسير الآيات")
	c.Key("تفسيرُ الآيةِ")

	m := c.Mapping()
	want := map[string][]string{"تفسير الايات": {"تفسير الآيات", "تفسيرُ الآيةِ"}}
	if !reflect.DeepEqual(m, want) {
		t.Errorf("Mapping() = %v, want %v", m, want)
	}
}

func TestLoadRules(t *testing.T) {
	rules, err := LoadRules(filepath.Join("testdata", "rules.yaml"))
	if err != nil {
		t.Fatalf("LoadRules() error = %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}

	c := NewClusterer(WithRules(rules))
	if got := c.Key("غريب المفردات"); got != "غريب الكلمات" {
		t.Errorf("Key() = %q, want rule label", got)
	}
}

func TestParseRules_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "rules: [unclosed"},
		{"missing label", "rules:\n  - pattern: x\n"},
		{"bad pattern", "rules:\n  - pattern: \"([\"\n    label: y\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRules([]byte(tt.data)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadRules_MissingFile(t *testing.T) {
	if _, err := LoadRules(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
