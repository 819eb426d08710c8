package services

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestNormalizeNilYieldsDefaults(t *testing.T) {
	var cfg *GenerationConfig
	got, err := cfg.Normalize()
	if err != nil {
		t.Fatalf("Normalize(nil): %v", err)
	}
	if !reflect.DeepEqual(got, DefaultGenerationConfig()) {
		t.Fatalf("nil config did not normalize to defaults: %+v", got)
	}
}

func TestNormalizeEmptyEqualsDefaults(t *testing.T) {
	got, err := (&GenerationConfig{}).Normalize()
	if err != nil {
		t.Fatalf("Normalize(empty): %v", err)
	}
	if !reflect.DeepEqual(got, DefaultGenerationConfig()) {
		t.Fatalf("empty config did not normalize to defaults: %+v", got)
	}
}

func TestNormalizePartialKeepsOverrides(t *testing.T) {
	quality := 3.5
	cfg := &GenerationConfig{
		QualityThreshold: &quality,
		Categories:       []string{"Electronics"},
	}
	got, err := cfg.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if *got.QualityThreshold != 3.5 {
		t.Fatalf("quality override lost: %v", *got.QualityThreshold)
	}
	if len(got.Categories) != 1 || got.Categories[0] != "Electronics" {
		t.Fatalf("categories override lost: %v", got.Categories)
	}
	if *got.MinReviews != 100 {
		t.Fatalf("min reviews default missing: %v", *got.MinReviews)
	}
	if got.PriceRange.Min != 10 || got.PriceRange.Max != 1000 {
		t.Fatalf("price range default missing: %+v", got.PriceRange)
	}
	if !got.Sources.GoogleTrends || !got.Sources.AmazonAPI || !got.Sources.AffiliateFeeds {
		t.Fatalf("sources default missing: %+v", got.Sources)
	}
}

func TestNormalizeRejectsBadValues(t *testing.T) {
	bad := []*GenerationConfig{
		{Frequency: "fortnightly"},
		{QualityThreshold: floatPtr(9)},
		{MinReviews: intPtr(-1)},
		{PriceRange: &PriceRange{Min: 100, Max: 50}},
	}
	for i, cfg := range bad {
		if _, err := cfg.Normalize(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestLoadGenerationConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "generation.yaml")
	content := []byte(`
frequency: weekly
quality_threshold: 4.5
min_reviews: 250
price_range:
  min: 25
  max: 500
sources:
  google_trends: true
  amazon_api: false
  affiliate_feeds: true
categories:
  - Electronics
  - Fashion
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GENERATION_CONFIG_PATH", path)

	cfg, err := LoadGenerationConfig()
	if err != nil {
		t.Fatalf("LoadGenerationConfig: %v", err)
	}
	if cfg.Frequency != FrequencyWeekly {
		t.Fatalf("frequency = %q", cfg.Frequency)
	}
	if *cfg.QualityThreshold != 4.5 || *cfg.MinReviews != 250 {
		t.Fatalf("thresholds = %v / %v", *cfg.QualityThreshold, *cfg.MinReviews)
	}
	if cfg.Sources.AmazonAPI {
		t.Fatal("amazon_api should be disabled")
	}
	if len(cfg.Categories) != 2 {
		t.Fatalf("categories = %v", cfg.Categories)
	}
}

func TestLoadGenerationConfigWithoutPath(t *testing.T) {
	t.Setenv("GENERATION_CONFIG_PATH", "")
	cfg, err := LoadGenerationConfig()
	if err != nil {
		t.Fatalf("LoadGenerationConfig: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultGenerationConfig()) {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
