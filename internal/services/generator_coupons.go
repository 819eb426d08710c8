package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dealhawk/dealhawk-backend/internal/pkg/dbctx"

	types "github.com/dealhawk/dealhawk-backend/internal/domain"
)

const (
	couponMerchantLimit    = 10
	couponCategoryLimit    = 2
	couponsPerPair         = 3
	defaultCouponLifespanD = 30
)

// generateCoupons is the independent coupon branch: a bounded merchant and
// category cross product, three candidates each, exact-code dedup. New
// coupons land unverified; verification is a separate, real network check.
func (s *generatorService) generateCoupons(ctx context.Context, cfg *GenerationConfig) (found, added int, errs []string) {
	dbc := dbctx.Context{Ctx: ctx}

	merchants, err := s.merchantRepo.List(dbc, couponMerchantLimit, 0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("list merchants for coupons: %v", err))
		return found, added, errs
	}

	categories := cfg.Categories
	if len(categories) > couponCategoryLimit {
		categories = categories[:couponCategoryLimit]
	}

	for _, merchant := range merchants {
		for _, category := range categories {
			if ctx.Err() != nil {
				return found, added, errs
			}

			candidates, err := s.classifier.GenerateCoupons(ctx, merchant.Name, category, couponsPerPair)
			if err != nil {
				errs = append(errs, fmt.Sprintf("coupons for %s/%s: %v", merchant.Slug, category, err))
				continue
			}
			found += len(candidates)

			for _, cand := range candidates {
				exists, err := s.couponRepo.ExistsByCode(dbc, cand.Code)
				if err != nil {
					errs = append(errs, fmt.Sprintf("coupon code check %s: %v", cand.Code, err))
					continue
				}
				if exists {
					continue
				}

				lifespan := cand.ExpiresInDays
				if lifespan <= 0 {
					lifespan = defaultCouponLifespanD
				}
				expiresAt := time.Now().AddDate(0, 0, lifespan)

				coupon := &types.Coupon{
					Code:          cand.Code,
					Title:         cand.Title,
					Description:   cand.Description,
					DiscountType:  cand.DiscountType,
					DiscountValue: cand.DiscountValue,
					MinimumSpend:  cand.MinimumSpend,
					MerchantID:    merchant.ID,
					IsVerified:    false,
					IsActive:      true,
					ExpiresAt:     &expiresAt,
				}
				if _, err := s.couponRepo.Create(dbc, []*types.Coupon{coupon}); err != nil {
					errs = append(errs, fmt.Sprintf("insert coupon %s: %v", cand.Code, err))
					continue
				}
				added++
			}
		}
	}
	return found, added, errs
}
