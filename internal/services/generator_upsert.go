package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/dealhawk/dealhawk-backend/internal/domain"
	"github.com/dealhawk/dealhawk-backend/internal/pkg/dbctx"
	"github.com/dealhawk/dealhawk-backend/internal/pkg/slug"
)

// upsertCandidate is the dedup core. Lookup is by merchant SKU first, then by
// the normalized candidate name, both indexed. A match updates price and
// rating fields in place; a miss classifies, rewrites and inserts the product
// with its merchant and category links in one transaction.
func (s *generatorService) upsertCandidate(ctx context.Context, cand Candidate) (created bool, err error) {
	name := strings.TrimSpace(cand.Name)
	if name == "" {
		return false, errors.New("candidate name required")
	}
	nameKey := slug.Key(name)
	dbc := dbctx.Context{Ctx: ctx}

	var existing *types.Product
	if cand.ExternalID != "" {
		existing, err = s.productRepo.FindBySKU(dbc, cand.ExternalID)
		if err != nil {
			return false, fmt.Errorf("sku lookup: %w", err)
		}
	}
	if existing == nil {
		existing, err = s.productRepo.FindByNameKey(dbc, nameKey)
		if err != nil {
			return false, fmt.Errorf("name lookup: %w", err)
		}
	}

	if existing != nil {
		return false, s.updateExisting(dbc, existing, cand)
	}
	return true, s.insertNew(ctx, cand, name, nameKey)
}

// updateExisting refreshes only the volatile listing fields.
func (s *generatorService) updateExisting(dbc dbctx.Context, existing *types.Product, cand Candidate) error {
	updates := map[string]interface{}{
		"sale_price":          cand.Price,
		"discount_percentage": computeDiscount(cand.OriginalPrice, cand.Price),
	}
	if cand.OriginalPrice != nil {
		updates["original_price"] = *cand.OriginalPrice
	}
	if cand.Rating != nil {
		updates["rating"] = *cand.Rating
	}
	if cand.ReviewCount != nil {
		updates["review_count"] = *cand.ReviewCount
	}
	if err := s.productRepo.UpdateFields(dbc, existing.ID, updates); err != nil {
		return fmt.Errorf("update product %s: %w", existing.Slug, err)
	}
	return nil
}

func (s *generatorService) insertNew(ctx context.Context, cand Candidate, name, nameKey string) error {
	catRes := s.classifier.CategorizeProduct(ctx, name, cand.Description)
	content := s.classifier.GenerateProductContent(ctx, name, cand.Description, catRes.Category)

	merchantName := strings.TrimSpace(cand.MerchantName)
	if merchantName == "" {
		return errors.New("candidate merchant name required")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: ctx, Tx: tx}

		merchant, err := s.resolveMerchant(txc, merchantName)
		if err != nil {
			return err
		}
		category, err := s.resolveCategory(txc, catRes.Category)
		if err != nil {
			return err
		}

		metadata := datatypes.JSONMap{
			"source":      cand.Source,
			"aiGenerated": true,
			"keywords":    catRes.Keywords,
			"features":    content.Features,
			"benefits":    content.Benefits,
			"confidence":  catRes.Confidence,
		}
		if catRes.Subcategory != "" {
			metadata["subcategory"] = catRes.Subcategory
		}

		price := cand.Price
		product := &types.Product{
			Name:               content.Title,
			NameKey:            nameKey,
			Slug:               slug.Make(content.Title),
			Description:        content.Description,
			MerchantID:         merchant.ID,
			SKU:                optionalString(cand.ExternalID),
			OriginalPrice:      cand.OriginalPrice,
			SalePrice:          &price,
			DiscountPercentage: computeDiscount(cand.OriginalPrice, cand.Price),
			Rating:             cand.Rating,
			IsActive:           true,
			ImageURL:           cand.ImageURL,
			ProductURL:         cand.ProductURL,
			AffiliateURL:       cand.ProductURL,
			Metadata:           metadata,
		}
		if cand.ReviewCount != nil {
			product.ReviewCount = *cand.ReviewCount
		}

		if _, err := s.productRepo.Create(txc, []*types.Product{product}); err != nil {
			return fmt.Errorf("insert product %q: %w", name, err)
		}

		// Junction row rides the same transaction as the product insert so a
		// crash can never leave a product invisible to category browsing.
		if err := tx.WithContext(ctx).Model(product).Association("Categories").Append(category); err != nil {
			return fmt.Errorf("link product %q to category %q: %w", name, category.Name, err)
		}
		return nil
	})
}

func (s *generatorService) resolveMerchant(txc dbctx.Context, merchantName string) (*types.Merchant, error) {
	key := slug.Key(merchantName)
	merchant, err := s.merchantRepo.GetByNameKey(txc, key)
	if err != nil {
		return nil, fmt.Errorf("merchant lookup %q: %w", merchantName, err)
	}
	if merchant != nil {
		return merchant, nil
	}

	merchant = &types.Merchant{
		Name:     merchantName,
		NameKey:  key,
		Slug:     slug.Make(merchantName),
		IsActive: true,
	}
	if _, err := s.merchantRepo.Create(txc, []*types.Merchant{merchant}); err != nil {
		return nil, fmt.Errorf("create merchant %q: %w", merchantName, err)
	}
	return merchant, nil
}

func (s *generatorService) resolveCategory(txc dbctx.Context, categoryName string) (*types.Category, error) {
	key := slug.Key(categoryName)
	category, err := s.categoryRepo.GetByNameKey(txc, key)
	if err != nil {
		return nil, fmt.Errorf("category lookup %q: %w", categoryName, err)
	}
	if category != nil {
		return category, nil
	}

	category = &types.Category{
		Name:    categoryName,
		NameKey: key,
		Slug:    slug.Make(categoryName),
	}
	if _, err := s.categoryRepo.Create(txc, []*types.Category{category}); err != nil {
		return nil, fmt.Errorf("create category %q: %w", categoryName, err)
	}
	return category, nil
}

// computeDiscount derives the integer discount percentage, zero when the
// original price is absent or non-positive.
func computeDiscount(original *float64, sale float64) int {
	if original == nil || *original <= 0 {
		return 0
	}
	d := int(math.Round((*original - sale) / *original * 100))
	if d < 0 {
		return 0
	}
	return d
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
