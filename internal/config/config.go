// Package config loads the CLI configuration from flags, environment and
// the optional .dorar.yaml file.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/jmylchreest/dorar/pkg/dorar"
	"github.com/jmylchreest/dorar/pkg/heading"
	"github.com/jmylchreest/dorar/pkg/sanitize"
)

// Config is the validated run configuration.
type Config struct {
	BaseURL   string        `mapstructure:"base_url" validate:"required,url"`
	OutputDir string        `mapstructure:"output_dir" validate:"required"`
	Delay     time.Duration `mapstructure:"delay" validate:"gte=0"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
	UserAgent string        `mapstructure:"user_agent"`
	FetchMode string        `mapstructure:"fetch_mode" validate:"oneof=static dynamic auto"`

	// TreeRoot is the path of the grammar tree's root page.
	TreeRoot string `mapstructure:"tree_root" validate:"required,startswith=/"`

	// Limit crawls only the first N units or branches. Zero means all.
	Limit int `mapstructure:"limit" validate:"gte=0"`

	// MaxPages bounds each unit's chain. Zero means no bound.
	MaxPages int `mapstructure:"max_pages" validate:"gte=0"`

	Threshold float64 `mapstructure:"threshold" validate:"gt=0,lte=1"`
	NearMiss  float64 `mapstructure:"near_miss" validate:"gte=0,lt=1"`
	RulesFile string  `mapstructure:"rules_file" validate:"omitempty,file"`

	// NoiseClasses are extra class names stripped from every page.
	NoiseClasses []string `mapstructure:"noise_classes"`

	SeparatorLevel    int    `mapstructure:"separator_level" validate:"gte=0,lte=6"`
	SkipExisting      bool   `mapstructure:"skip_existing"`
	FootnotesPerEntry bool   `mapstructure:"footnotes_per_entry"`
	Manifest          string `mapstructure:"manifest" validate:"omitempty,oneof=json yaml"`
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "https://dorar.net")
	v.SetDefault("output_dir", "output")
	v.SetDefault("delay", 2*time.Second)
	v.SetDefault("timeout", 20*time.Second)
	v.SetDefault("fetch_mode", "static")
	v.SetDefault("tree_root", "/arabia/5197")
	v.SetDefault("limit", 0)
	v.SetDefault("max_pages", 0)
	v.SetDefault("threshold", heading.DefaultThreshold)
	v.SetDefault("near_miss", heading.DefaultNearMiss)
	v.SetDefault("separator_level", 3)
	v.SetDefault("skip_existing", true)
	v.SetDefault("manifest", "json")
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the struct tags and reports every failing field.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}
	errs := make([]error, 0, len(verrs))
	for _, e := range verrs {
		errs = append(errs, fmt.Errorf("invalid %s: %s", e.Field(), formatValidationError(e)))
	}
	return errors.Join(errs...)
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "url":
		return fmt.Sprintf("%q is not a URL", e.Value())
	case "oneof":
		return fmt.Sprintf("%v is not one of [%s]", e.Value(), e.Param())
	case "file":
		return fmt.Sprintf("%q is not a readable file", e.Value())
	case "gt", "gte", "lt", "lte":
		return fmt.Sprintf("%v must be %s %s", e.Value(), e.Tag(), e.Param())
	default:
		return fmt.Sprintf("failed %s validation", e.Tag())
	}
}

// Rules returns the canonical heading rules: the built-in ones followed
// by those of RulesFile, if set.
func (c *Config) Rules() ([]heading.Rule, error) {
	rules := heading.DefaultRules()
	if c.RulesFile == "" {
		return rules, nil
	}
	extra, err := heading.LoadRules(c.RulesFile)
	if err != nil {
		return nil, err
	}
	return append(rules, extra...), nil
}

// HeadingOptions returns the clusterer options for this configuration.
func (c *Config) HeadingOptions() ([]heading.Option, error) {
	rules, err := c.Rules()
	if err != nil {
		return nil, err
	}
	return []heading.Option{
		heading.WithThreshold(c.Threshold),
		heading.WithNearMiss(c.NearMiss),
		heading.WithRules(rules),
	}, nil
}

// ExtractorOptions returns the extractor options for this configuration.
func (c *Config) ExtractorOptions() []dorar.Option {
	if len(c.NoiseClasses) == 0 {
		return nil
	}
	extra := &sanitize.Config{NoiseClasses: c.NoiseClasses}
	return []dorar.Option{
		dorar.WithPageConfig(sanitize.DefaultConfig().Merge(extra)),
		dorar.WithArticleConfig(sanitize.PresetArticles().Merge(extra)),
	}
}
