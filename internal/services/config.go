package services

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	FrequencyHourly = "hourly"
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
)

// DefaultCategories is the category list used when a run config names none.
var DefaultCategories = []string{
	"Electronics",
	"Fashion",
	"Home & Garden",
	"Health & Beauty",
	"Sports & Outdoors",
}

type PriceRange struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

type SourcesConfig struct {
	GoogleTrends   bool `yaml:"google_trends" json:"googleTrends"`
	AmazonAPI      bool `yaml:"amazon_api" json:"amazonAPI"`
	AffiliateFeeds bool `yaml:"affiliate_feeds" json:"affiliateFeeds"`
}

// GenerationConfig controls one ingestion run. Zero values fall back to the
// documented defaults via Normalize.
type GenerationConfig struct {
	Frequency        string         `yaml:"frequency" json:"frequency"`
	QualityThreshold *float64       `yaml:"quality_threshold" json:"qualityThreshold,omitempty"`
	MinReviews       *int           `yaml:"min_reviews" json:"minReviews,omitempty"`
	PriceRange       *PriceRange    `yaml:"price_range" json:"priceRange,omitempty"`
	Sources          *SourcesConfig `yaml:"sources" json:"sources,omitempty"`
	Categories       []string       `yaml:"categories" json:"categories,omitempty"`
}

func DefaultGenerationConfig() *GenerationConfig {
	quality := 4.0
	minReviews := 100
	return &GenerationConfig{
		Frequency:        FrequencyDaily,
		QualityThreshold: &quality,
		MinReviews:       &minReviews,
		PriceRange:       &PriceRange{Min: 10, Max: 1000},
		Sources:          &SourcesConfig{GoogleTrends: true, AmazonAPI: true, AffiliateFeeds: true},
		Categories:       append([]string(nil), DefaultCategories...),
	}
}

// Normalize fills unset fields from the defaults and validates the rest.
// A nil receiver yields the full default config.
func (c *GenerationConfig) Normalize() (*GenerationConfig, error) {
	def := DefaultGenerationConfig()
	if c == nil {
		return def, nil
	}

	out := &GenerationConfig{
		Frequency:        strings.TrimSpace(strings.ToLower(c.Frequency)),
		QualityThreshold: c.QualityThreshold,
		MinReviews:       c.MinReviews,
		PriceRange:       c.PriceRange,
		Sources:          c.Sources,
		Categories:       append([]string(nil), c.Categories...),
	}

	if out.Frequency == "" {
		out.Frequency = def.Frequency
	}
	switch out.Frequency {
	case FrequencyHourly, FrequencyDaily, FrequencyWeekly:
	default:
		return nil, fmt.Errorf("invalid frequency %q", out.Frequency)
	}

	if out.QualityThreshold == nil {
		out.QualityThreshold = def.QualityThreshold
	}
	if *out.QualityThreshold < 0 || *out.QualityThreshold > 5 {
		return nil, fmt.Errorf("quality threshold %v outside [0,5]", *out.QualityThreshold)
	}

	if out.MinReviews == nil {
		out.MinReviews = def.MinReviews
	}
	if *out.MinReviews < 0 {
		return nil, fmt.Errorf("min reviews must be non-negative")
	}

	if out.PriceRange == nil {
		out.PriceRange = def.PriceRange
	}
	if out.PriceRange.Min < 0 || out.PriceRange.Max <= out.PriceRange.Min {
		return nil, fmt.Errorf("invalid price range [%v, %v]", out.PriceRange.Min, out.PriceRange.Max)
	}

	if out.Sources == nil {
		out.Sources = def.Sources
	}

	if len(out.Categories) == 0 {
		out.Categories = def.Categories
	}

	return out, nil
}

// LoadGenerationConfig reads the run defaults from GENERATION_CONFIG_PATH
// when set, otherwise returns the built-in defaults.
func LoadGenerationConfig() (*GenerationConfig, error) {
	path := strings.TrimSpace(os.Getenv("GENERATION_CONFIG_PATH"))
	if path == "" {
		return DefaultGenerationConfig(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read generation config %s: %w", path, err)
	}

	var cfg GenerationConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse generation config %s: %w", path, err)
	}
	return cfg.Normalize()
}
