package services

import (
	"context"
	"fmt"
	"math/rand"

	types "github.com/dealhawk/dealhawk-backend/internal/domain"
	"github.com/dealhawk/dealhawk-backend/internal/pkg/dbctx"
	"github.com/dealhawk/dealhawk-backend/internal/pkg/slug"
)

const (
	trendCandidatesPerCategory = 5
	affiliateFetchLimit        = 10
	trendMerchantName          = "Trend Picks Direct"
)

// Candidate is the uniform record every source adapter produces, pending
// classification and dedup.
type Candidate struct {
	Name          string
	Description   string
	Category      string
	Price         float64
	OriginalPrice *float64
	ImageURL      string
	ProductURL    string
	MerchantName  string
	Rating        *float64
	ReviewCount   *int
	ExternalID    string
	Source        string
}

// trendCandidates synthesizes one candidate per trending keyword, capped per
// category, with a price drawn uniformly from the configured range. This is a
// generative placeholder for a real trend feed.
func (s *generatorService) trendCandidates(ctx context.Context, cfg *GenerationConfig) ([]Candidate, []string) {
	var out []Candidate
	var errs []string

	for _, category := range cfg.Categories {
		if ctx.Err() != nil {
			return out, errs
		}
		keywords := s.classifier.TrendingKeywords(ctx, category)
		if len(keywords) > trendCandidatesPerCategory {
			keywords = keywords[:trendCandidatesPerCategory]
		}
		for _, keyword := range keywords {
			price := cfg.PriceRange.Min + rand.Float64()*(cfg.PriceRange.Max-cfg.PriceRange.Min)
			out = append(out, Candidate{
				Name:         fmt.Sprintf("%s Deal Finder Pick", keyword),
				Description:  fmt.Sprintf("Trending %s pick in %s, sourced from current shopper interest.", keyword, category),
				Category:     category,
				Price:        price,
				ProductURL:   "https://deals.example.com/trending/" + slug.Make(keyword),
				MerchantName: trendMerchantName,
				Source:       "google_trends",
			})
		}
	}
	return out, errs
}

// affiliateCandidates fetches up to the per-call limit from every active
// network crossed with every configured category. One failing network logs an
// error and the rest still run.
func (s *generatorService) affiliateCandidates(ctx context.Context, cfg *GenerationConfig) ([]Candidate, []string) {
	var out []Candidate
	var errs []string

	if s.affiliates == nil {
		return out, errs
	}

	networks, err := s.networkRepo.ListByStatus(dbctx.Context{Ctx: ctx}, types.NetworkStatusActive)
	if err != nil {
		errs = append(errs, fmt.Sprintf("list active networks: %v", err))
		return out, errs
	}

	for _, network := range networks {
		if network.Kind == types.NetworkKindAmazon && !cfg.Sources.AmazonAPI {
			continue
		}
		if network.Kind != types.NetworkKindAmazon && !cfg.Sources.AffiliateFeeds {
			continue
		}
		for _, category := range cfg.Categories {
			if ctx.Err() != nil {
				return out, errs
			}
			cands, err := s.affiliates.FetchProducts(ctx, network.ID, category, affiliateFetchLimit)
			if err != nil {
				errs = append(errs, fmt.Sprintf("network %s category %s: %v", network.Slug, category, err))
				continue
			}
			out = append(out, s.filterByQuality(cfg, cands)...)
		}
	}
	return out, errs
}

// filterByQuality drops candidates that report a rating or review count below
// the configured floor. Candidates that report neither pass through.
func (s *generatorService) filterByQuality(cfg *GenerationConfig, cands []Candidate) []Candidate {
	out := cands[:0]
	for _, cand := range cands {
		if cand.Rating != nil && *cand.Rating < *cfg.QualityThreshold {
			continue
		}
		if cand.ReviewCount != nil && *cand.ReviewCount < *cfg.MinReviews {
			continue
		}
		out = append(out, cand)
	}
	return out
}
