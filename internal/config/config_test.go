package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/jmylchreest/dorar/pkg/dorar"
	"github.com/jmylchreest/dorar/pkg/heading"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newViper())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BaseURL != "https://dorar.net" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Delay != 2*time.Second {
		t.Errorf("Delay = %v", cfg.Delay)
	}
	if cfg.Threshold != heading.DefaultThreshold {
		t.Errorf("Threshold = %v", cfg.Threshold)
	}
	if !cfg.SkipExisting || cfg.SeparatorLevel != 3 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".dorar.yaml")
	content := "delay: 500ms\nthreshold: 0.9\nfetch_mode: dynamic\nlimit: 3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig() error = %v", err)
	}

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Delay != 500*time.Millisecond || cfg.Threshold != 0.9 || cfg.FetchMode != "dynamic" || cfg.Limit != 3 {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
		field string
	}{
		{"bad url", "base_url", "not a url", "BaseURL"},
		{"empty output", "output_dir", "", "OutputDir"},
		{"zero timeout", "timeout", 0, "Timeout"},
		{"unknown mode", "fetch_mode", "headless", "FetchMode"},
		{"negative limit", "limit", -1, "Limit"},
		{"threshold above one", "threshold", 1.5, "Threshold"},
		{"zero threshold", "threshold", 0.0, "Threshold"},
		{"missing rules file", "rules_file", "/nonexistent/rules.yaml", "RulesFile"},
		{"deep separator", "separator_level", 7, "SeparatorLevel"},
		{"unknown manifest", "manifest", "xml", "Manifest"},
		{"relative tree root", "tree_root", "arabia/1", "TreeRoot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			v.Set(tt.key, tt.value)
			_, err := Load(v)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("expected error to name %s, got %v", tt.field, err)
			}
		})
	}
}

func TestLoad_ReportsEveryField(t *testing.T) {
	v := newViper()
	v.Set("limit", -1)
	v.Set("fetch_mode", "x")
	_, err := Load(v)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Limit") || !strings.Contains(err.Error(), "FetchMode") {
		t.Errorf("expected both fields reported, got %v", err)
	}
}

func TestRules(t *testing.T) {
	cfg, err := Load(newViper())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	rules, err := cfg.Rules()
	if err != nil {
		t.Fatalf("Rules() error = %v", err)
	}
	if len(rules) != len(heading.DefaultRules()) {
		t.Errorf("expected the built-in rules only, got %d", len(rules))
	}

	path := filepath.Join(t.TempDir(), "rules.yaml")
	data := "rules:\n  - pattern: 'غريب\\s+(الكلمات|المفردات)'\n    label: غريب الكلمات\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("writing rules: %v", err)
	}
	cfg.RulesFile = path
	rules, err = cfg.Rules()
	if err != nil {
		t.Fatalf("Rules() error = %v", err)
	}
	if len(rules) != len(heading.DefaultRules())+1 || rules[len(rules)-1].Label != "غريب الكلمات" {
		t.Errorf("unexpected rules %+v", rules)
	}

	opts, err := cfg.HeadingOptions()
	if err != nil || len(opts) != 3 {
		t.Errorf("HeadingOptions() = %d options, %v", len(opts), err)
	}
}

func TestExtractorOptions(t *testing.T) {
	cfg, err := Load(newViper())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if opts := cfg.ExtractorOptions(); opts != nil {
		t.Errorf("expected no options without extra noise classes, got %d", len(opts))
	}

	cfg.NoiseClasses = []string{"share-box"}
	ex := dorar.New(cfg.ExtractorOptions()...)
	page, err := ex.Content(`<html><body><p>نص <span class="share-box">شارك</span></p></body></html>`, 1)
	if err != nil {
		t.Fatalf("Content() error = %v", err)
	}
	if got := page.Blocks[0].Text; got != "نص" {
		t.Errorf("Text = %q, want %q", got, "نص")
	}
}
