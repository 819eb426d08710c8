package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dealhawk/dealhawk-backend/internal/platform/logger"
	"github.com/dealhawk/dealhawk-backend/internal/platform/openai"
)

// TopCategories is the closed set the classifier may assign. Anything the
// model returns outside this list is coerced to Uncategorized.
var TopCategories = []string{
	"Electronics",
	"Fashion",
	"Home & Garden",
	"Health & Beauty",
	"Sports & Outdoors",
	"Toys & Games",
	"Books & Media",
	"Automotive",
	"Pet Supplies",
}

const CategoryUncategorized = "Uncategorized"

// CategorizationResult always carries a usable category. Fallback marks the
// safe default taken when the upstream call failed, so callers never have to
// catch an error just to keep going.
type CategorizationResult struct {
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory,omitempty"`
	Confidence  float64  `json:"confidence"`
	Keywords    []string `json:"keywords"`
	Fallback    bool     `json:"-"`
}

type ContentResult struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Benefits    []string `json:"benefits"`
	Fallback    bool     `json:"-"`
}

type CouponCandidate struct {
	Code          string   `json:"code"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	DiscountType  string   `json:"discount_type"`
	DiscountValue float64  `json:"discount_value"`
	MinimumSpend  *float64 `json:"minimum_spend,omitempty"`
	ExpiresInDays int      `json:"expires_in_days"`
}

// Classifier wraps the completion API for the ingestion pipeline.
// CategorizeProduct, GenerateProductContent and TrendingKeywords degrade to
// safe defaults instead of failing; GenerateCoupons surfaces its error so the
// coupon branch can record it per merchant.
type Classifier interface {
	CategorizeProduct(ctx context.Context, name, description string) CategorizationResult
	GenerateProductContent(ctx context.Context, name, description, category string) ContentResult
	GenerateCoupons(ctx context.Context, merchantName, category string, count int) ([]CouponCandidate, error)
	TrendingKeywords(ctx context.Context, category string) []string
}

type classifier struct {
	log *logger.Logger
	ai  openai.Client
}

func NewClassifier(log *logger.Logger, ai openai.Client) (Classifier, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if ai == nil {
		return nil, fmt.Errorf("openai client required")
	}
	return &classifier{log: log.With("service", "ClassifierService"), ai: ai}, nil
}

func fallbackCategorization() CategorizationResult {
	return CategorizationResult{
		Category:   CategoryUncategorized,
		Confidence: 0,
		Keywords:   []string{},
		Fallback:   true,
	}
}

func inTopCategories(name string) bool {
	for _, c := range TopCategories {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}

func (s *classifier) CategorizeProduct(ctx context.Context, name, description string) CategorizationResult {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"category":    map[string]any{"type": "string", "enum": append(append([]string{}, TopCategories...), CategoryUncategorized)},
			"subcategory": map[string]any{"type": "string"},
			"confidence":  map[string]any{"type": "number", "minimum": 0, "maximum": 1},
			"keywords":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required":             []string{"category", "subcategory", "confidence", "keywords"},
		"additionalProperties": false,
	}

	system := "You classify retail products into exactly one of these categories: " +
		strings.Join(TopCategories, ", ") + ". Use \"" + CategoryUncategorized + "\" only when nothing fits."
	user := fmt.Sprintf("Product name: %s\nDescription: %s", name, description)

	obj, err := s.ai.GenerateJSON(ctx, system, user, "product_categorization", schema)
	if err != nil {
		s.log.Warn("categorization failed, using fallback", "product", name, "error", err.Error())
		return fallbackCategorization()
	}

	out := CategorizationResult{
		Category:    strings.TrimSpace(asString(obj["category"])),
		Subcategory: strings.TrimSpace(asString(obj["subcategory"])),
		Confidence:  asFloat(obj["confidence"]),
		Keywords:    asStringSlice(obj["keywords"]),
	}
	if out.Category == "" || (!inTopCategories(out.Category) && !strings.EqualFold(out.Category, CategoryUncategorized)) {
		out.Category = CategoryUncategorized
	}
	if out.Confidence < 0 {
		out.Confidence = 0
	}
	if out.Confidence > 1 {
		out.Confidence = 1
	}
	if out.Keywords == nil {
		out.Keywords = []string{}
	}
	return out
}

func (s *classifier) GenerateProductContent(ctx context.Context, name, description, category string) ContentResult {
	echo := ContentResult{
		Title:       name,
		Description: description,
		Features:    []string{},
		Benefits:    []string{},
		Fallback:    true,
	}

	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":       map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
			"features":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"benefits":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required":             []string{"title", "description", "features", "benefits"},
		"additionalProperties": false,
	}

	system := "You rewrite product listings as concise, factual marketing copy for a deals site. No superlatives, no invented specs."
	user := fmt.Sprintf("Category: %s\nProduct name: %s\nDescription: %s", category, name, description)

	obj, err := s.ai.GenerateJSON(ctx, system, user, "product_content", schema)
	if err != nil {
		s.log.Warn("content generation failed, echoing input", "product", name, "error", err.Error())
		return echo
	}

	out := ContentResult{
		Title:       strings.TrimSpace(asString(obj["title"])),
		Description: strings.TrimSpace(asString(obj["description"])),
		Features:    asStringSlice(obj["features"]),
		Benefits:    asStringSlice(obj["benefits"]),
	}
	if out.Title == "" {
		out.Title = name
	}
	if out.Description == "" {
		out.Description = description
	}
	if out.Features == nil {
		out.Features = []string{}
	}
	if out.Benefits == nil {
		out.Benefits = []string{}
	}
	return out
}

func (s *classifier) GenerateCoupons(ctx context.Context, merchantName, category string, count int) ([]CouponCandidate, error) {
	if count <= 0 {
		count = 3
	}

	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"coupons": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"code":            map[string]any{"type": "string"},
						"title":           map[string]any{"type": "string"},
						"description":     map[string]any{"type": "string"},
						"discount_type":   map[string]any{"type": "string", "enum": []string{"percentage", "fixed"}},
						"discount_value":  map[string]any{"type": "number"},
						"minimum_spend":   map[string]any{"type": []string{"number", "null"}},
						"expires_in_days": map[string]any{"type": "integer", "minimum": 1},
					},
					"required":             []string{"code", "title", "description", "discount_type", "discount_value", "minimum_spend", "expires_in_days"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"coupons"},
		"additionalProperties": false,
	}

	system := "You draft plausible promotional coupon candidates for a deals site. Codes are short uppercase alphanumerics."
	user := fmt.Sprintf("Merchant: %s\nCategory: %s\nGenerate %d coupon candidates.", merchantName, category, count)

	obj, err := s.ai.GenerateJSON(ctx, system, user, "coupon_candidates", schema)
	if err != nil {
		return nil, fmt.Errorf("coupon generation for %s/%s: %w", merchantName, category, err)
	}

	rawList, _ := obj["coupons"].([]any)
	out := make([]CouponCandidate, 0, len(rawList))
	for _, item := range rawList {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		cand := CouponCandidate{
			Code:          strings.ToUpper(strings.TrimSpace(asString(m["code"]))),
			Title:         strings.TrimSpace(asString(m["title"])),
			Description:   strings.TrimSpace(asString(m["description"])),
			DiscountType:  strings.ToLower(strings.TrimSpace(asString(m["discount_type"]))),
			DiscountValue: asFloat(m["discount_value"]),
			ExpiresInDays: int(asFloat(m["expires_in_days"])),
		}
		if v, ok := m["minimum_spend"].(float64); ok {
			cand.MinimumSpend = &v
		}
		if cand.Code == "" || cand.DiscountValue <= 0 {
			continue
		}
		if cand.DiscountType != "percentage" && cand.DiscountType != "fixed" {
			continue
		}
		if cand.ExpiresInDays <= 0 {
			cand.ExpiresInDays = 30
		}
		out = append(out, cand)
		if len(out) == count {
			break
		}
	}
	return out, nil
}

func (s *classifier) TrendingKeywords(ctx context.Context, category string) []string {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"keywords": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required":             []string{"keywords"},
		"additionalProperties": false,
	}

	system := "You list product keywords currently trending with online shoppers. Short noun phrases only."
	user := fmt.Sprintf("List up to 5 trending product keywords in the %q category.", category)

	obj, err := s.ai.GenerateJSON(ctx, system, user, "trending_keywords", schema)
	if err != nil {
		s.log.Warn("trending keywords failed, returning none", "category", category, "error", err.Error())
		return []string{}
	}

	keywords := asStringSlice(obj["keywords"])
	if len(keywords) > 5 {
		keywords = keywords[:5]
	}
	return keywords
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}

func asStringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}
