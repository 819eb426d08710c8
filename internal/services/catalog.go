package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dealhawk/dealhawk-backend/internal/clients/redis"
	"github.com/dealhawk/dealhawk-backend/internal/data/repos"
	types "github.com/dealhawk/dealhawk-backend/internal/domain"
	"github.com/dealhawk/dealhawk-backend/internal/pkg/dbctx"
	"github.com/dealhawk/dealhawk-backend/internal/platform/envutil"
	"github.com/dealhawk/dealhawk-backend/internal/platform/logger"
)

const catalogCachePrefix = "catalog:"

// CatalogService serves the public browse surface. Listing reads go through
// redis with a short TTL when a cache is wired; every cache failure falls
// back to the database silently.
type CatalogService interface {
	ListProducts(ctx context.Context, filter repos.ProductFilter) ([]*types.Product, error)
	GetProduct(ctx context.Context, productSlug string) (*types.Product, error)
	ListMerchants(ctx context.Context, limit, offset int) ([]*types.Merchant, error)
	MerchantCoupons(ctx context.Context, merchantSlug string) ([]*types.Coupon, error)
	ListCoupons(ctx context.Context, limit, offset int) ([]*types.Coupon, error)
	ListCategories(ctx context.Context) ([]*types.Category, error)
}

type catalogService struct {
	log          *logger.Logger
	productRepo  repos.ProductRepo
	merchantRepo repos.MerchantRepo
	categoryRepo repos.CategoryRepo
	couponRepo   repos.CouponRepo
	cache        redis.Cache
	cacheTTL     time.Duration
}

func NewCatalogService(
	log *logger.Logger,
	productRepo repos.ProductRepo,
	merchantRepo repos.MerchantRepo,
	categoryRepo repos.CategoryRepo,
	couponRepo repos.CouponRepo,
	cache redis.Cache,
) (CatalogService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if productRepo == nil || merchantRepo == nil || categoryRepo == nil || couponRepo == nil {
		return nil, fmt.Errorf("repos required")
	}
	return &catalogService{
		log:          log.With("service", "CatalogService"),
		productRepo:  productRepo,
		merchantRepo: merchantRepo,
		categoryRepo: categoryRepo,
		couponRepo:   couponRepo,
		cache:        cache,
		cacheTTL:     time.Duration(envutil.Int("CATALOG_CACHE_TTL_SECONDS", 300)) * time.Second,
	}, nil
}

// cached wraps one listing query with the read-through pattern.
func cached[T any](ctx context.Context, s *catalogService, key string, load func() (T, error)) (T, error) {
	if s.cache != nil {
		var hit T
		if err := s.cache.GetJSON(ctx, key, &hit); err == nil {
			return hit, nil
		} else if err != redis.ErrCacheMiss {
			s.log.Warn("cache read failed", "key", key, "error", err.Error())
		}
	}

	out, err := load()
	if err != nil {
		return out, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, out, s.cacheTTL); err != nil {
			s.log.Warn("cache write failed", "key", key, "error", err.Error())
		}
	}
	return out, nil
}

func productFilterKey(f repos.ProductFilter) string {
	merchant := ""
	if f.MerchantID != nil {
		merchant = f.MerchantID.String()
	}
	minP, maxP := "", ""
	if f.MinPrice != nil {
		minP = fmt.Sprintf("%.2f", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		maxP = fmt.Sprintf("%.2f", *f.MaxPrice)
	}
	return fmt.Sprintf("%sproducts:%s:%s:%s:%s:%t:%d:%d",
		catalogCachePrefix, f.CategorySlug, merchant, minP, maxP, f.ActiveOnly, f.Limit, f.Offset)
}

func (s *catalogService) ListProducts(ctx context.Context, filter repos.ProductFilter) ([]*types.Product, error) {
	return cached(ctx, s, productFilterKey(filter), func() ([]*types.Product, error) {
		return s.productRepo.List(dbctx.Context{Ctx: ctx}, filter)
	})
}

func (s *catalogService) GetProduct(ctx context.Context, productSlug string) (*types.Product, error) {
	product, err := s.productRepo.GetBySlug(dbctx.Context{Ctx: ctx}, productSlug)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("product %q not found", productSlug)
	}
	return product, nil
}

func (s *catalogService) ListMerchants(ctx context.Context, limit, offset int) ([]*types.Merchant, error) {
	key := fmt.Sprintf("%smerchants:%d:%d", catalogCachePrefix, limit, offset)
	return cached(ctx, s, key, func() ([]*types.Merchant, error) {
		return s.merchantRepo.List(dbctx.Context{Ctx: ctx}, limit, offset)
	})
}

func (s *catalogService) MerchantCoupons(ctx context.Context, merchantSlug string) ([]*types.Coupon, error) {
	merchant, err := s.merchantRepo.GetBySlug(dbctx.Context{Ctx: ctx}, merchantSlug)
	if err != nil {
		return nil, err
	}
	if merchant == nil {
		return nil, fmt.Errorf("merchant %q not found", merchantSlug)
	}
	key := fmt.Sprintf("%smerchant_coupons:%s", catalogCachePrefix, merchant.ID)
	return cached(ctx, s, key, func() ([]*types.Coupon, error) {
		return s.couponRepo.ListByMerchant(dbctx.Context{Ctx: ctx}, merchant.ID, true)
	})
}

func (s *catalogService) ListCoupons(ctx context.Context, limit, offset int) ([]*types.Coupon, error) {
	key := fmt.Sprintf("%scoupons:%d:%d", catalogCachePrefix, limit, offset)
	return cached(ctx, s, key, func() ([]*types.Coupon, error) {
		return s.couponRepo.List(dbctx.Context{Ctx: ctx}, limit, offset)
	})
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*types.Category, error) {
	key := catalogCachePrefix + "categories"
	return cached(ctx, s, key, func() ([]*types.Category, error) {
		return s.categoryRepo.List(dbctx.Context{Ctx: ctx})
	})
}
