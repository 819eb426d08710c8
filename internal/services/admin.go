package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	affclient "github.com/dealhawk/dealhawk-backend/internal/clients/affiliate"
	"github.com/dealhawk/dealhawk-backend/internal/data/repos"
	types "github.com/dealhawk/dealhawk-backend/internal/domain"
	"github.com/dealhawk/dealhawk-backend/internal/pkg/dbctx"
	"github.com/dealhawk/dealhawk-backend/internal/pkg/slug"
	"github.com/dealhawk/dealhawk-backend/internal/platform/logger"
)

// ErrCouponNotFound is returned by VerifyCoupon for an unknown coupon ID so
// the HTTP layer can distinguish it from an upstream verification failure.
var ErrCouponNotFound = errors.New("coupon not found")

// CouponVerifier is the slice of AffiliateService the admin surface needs to
// check a code against the networks.
type CouponVerifier interface {
	VerifyCoupon(ctx context.Context, code string, merchantID uuid.UUID) (*affclient.VerifyResult, error)
}

// AdminCatalogService is the back-office write surface for merchants,
// products and coupons. The ingestion pipeline shares the same repos, so the
// name keys and slugs set here keep its dedupe lookups honest.
type AdminCatalogService interface {
	CreateMerchant(ctx context.Context, merchant *types.Merchant) (*types.Merchant, error)
	UpdateMerchant(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteMerchant(ctx context.Context, id uuid.UUID) error

	CreateProduct(ctx context.Context, product *types.Product) (*types.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	CreateCoupon(ctx context.Context, coupon *types.Coupon) (*types.Coupon, error)
	UpdateCoupon(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteCoupon(ctx context.Context, id uuid.UUID) error
	VerifyCoupon(ctx context.Context, id uuid.UUID) (*affclient.VerifyResult, error)
}

type adminCatalogService struct {
	log          *logger.Logger
	merchantRepo repos.MerchantRepo
	productRepo  repos.ProductRepo
	couponRepo   repos.CouponRepo
	verifier     CouponVerifier
}

func NewAdminCatalogService(
	log *logger.Logger,
	merchantRepo repos.MerchantRepo,
	productRepo repos.ProductRepo,
	couponRepo repos.CouponRepo,
	verifier CouponVerifier,
) (AdminCatalogService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if merchantRepo == nil || productRepo == nil || couponRepo == nil {
		return nil, fmt.Errorf("repos required")
	}
	if verifier == nil {
		return nil, fmt.Errorf("coupon verifier required")
	}
	return &adminCatalogService{
		log:          log.With("service", "AdminCatalogService"),
		merchantRepo: merchantRepo,
		productRepo:  productRepo,
		couponRepo:   couponRepo,
		verifier:     verifier,
	}, nil
}

func (s *adminCatalogService) CreateMerchant(ctx context.Context, merchant *types.Merchant) (*types.Merchant, error) {
	if merchant == nil || strings.TrimSpace(merchant.Name) == "" {
		return nil, fmt.Errorf("merchant name required")
	}
	merchant.Name = strings.TrimSpace(merchant.Name)
	merchant.NameKey = slug.Key(merchant.Name)
	if merchant.Slug == "" {
		merchant.Slug = slug.Make(merchant.Name)
	}
	// New rows always start active; deactivation is an explicit update.
	merchant.IsActive = true

	dbc := dbctx.Context{Ctx: ctx}
	existing, err := s.merchantRepo.GetByNameKey(dbc, merchant.NameKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("merchant %q already exists", merchant.Name)
	}

	created, err := s.merchantRepo.Create(dbc, []*types.Merchant{merchant})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

func (s *adminCatalogService) UpdateMerchant(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if name, ok := updates["name"].(string); ok {
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("merchant name cannot be empty")
		}
		updates["name"] = name
		updates["name_key"] = slug.Key(name)
	}
	return s.merchantRepo.UpdateFields(dbctx.Context{Ctx: ctx}, id, updates)
}

func (s *adminCatalogService) DeleteMerchant(ctx context.Context, id uuid.UUID) error {
	return s.merchantRepo.Delete(dbctx.Context{Ctx: ctx}, id)
}

func (s *adminCatalogService) CreateProduct(ctx context.Context, product *types.Product) (*types.Product, error) {
	if product == nil || strings.TrimSpace(product.Name) == "" {
		return nil, fmt.Errorf("product name required")
	}
	if product.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("product merchant required")
	}
	product.Name = strings.TrimSpace(product.Name)
	product.NameKey = slug.Key(product.Name)
	if product.Slug == "" {
		product.Slug = slug.Make(product.Name)
	}
	product.IsActive = true

	dbc := dbctx.Context{Ctx: ctx}
	merchant, err := s.merchantRepo.GetByID(dbc, product.MerchantID)
	if err != nil {
		return nil, err
	}
	if merchant == nil {
		return nil, fmt.Errorf("merchant %s not found", product.MerchantID)
	}

	created, err := s.productRepo.Create(dbc, []*types.Product{product})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

func (s *adminCatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if name, ok := updates["name"].(string); ok {
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("product name cannot be empty")
		}
		updates["name"] = name
		updates["name_key"] = slug.Key(name)
	}
	return s.productRepo.UpdateFields(dbctx.Context{Ctx: ctx}, id, updates)
}

func (s *adminCatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(dbctx.Context{Ctx: ctx}, id)
}

func (s *adminCatalogService) CreateCoupon(ctx context.Context, coupon *types.Coupon) (*types.Coupon, error) {
	if coupon == nil || strings.TrimSpace(coupon.Code) == "" {
		return nil, fmt.Errorf("coupon code required")
	}
	if coupon.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("coupon merchant required")
	}
	coupon.Code = strings.ToUpper(strings.TrimSpace(coupon.Code))
	switch coupon.DiscountType {
	case types.DiscountTypePercentage, types.DiscountTypeFixed:
	default:
		return nil, fmt.Errorf("invalid discount type %q", coupon.DiscountType)
	}
	if coupon.DiscountValue <= 0 {
		return nil, fmt.Errorf("discount value must be positive")
	}
	coupon.IsActive = true

	dbc := dbctx.Context{Ctx: ctx}
	exists, err := s.couponRepo.ExistsByCode(dbc, coupon.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("coupon code %s already exists", coupon.Code)
	}

	created, err := s.couponRepo.Create(dbc, []*types.Coupon{coupon})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

func (s *adminCatalogService) UpdateCoupon(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if code, ok := updates["code"].(string); ok {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			return fmt.Errorf("coupon code cannot be empty")
		}
		updates["code"] = code
	}
	return s.couponRepo.UpdateFields(dbctx.Context{Ctx: ctx}, id, updates)
}

func (s *adminCatalogService) DeleteCoupon(ctx context.Context, id uuid.UUID) error {
	return s.couponRepo.Delete(dbctx.Context{Ctx: ctx}, id)
}

// VerifyCoupon checks the stored code against the affiliate networks and
// persists the outcome. Codes the ingestion pipeline generated stay
// unverified until an admin runs this.
func (s *adminCatalogService) VerifyCoupon(ctx context.Context, id uuid.UUID) (*affclient.VerifyResult, error) {
	dbc := dbctx.Context{Ctx: ctx}
	coupon, err := s.couponRepo.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, fmt.Errorf("%w: %s", ErrCouponNotFound, id)
	}

	result, err := s.verifier.VerifyCoupon(ctx, coupon.Code, coupon.MerchantID)
	if err != nil {
		return nil, fmt.Errorf("verify coupon %s: %w", coupon.Code, err)
	}

	if err := s.couponRepo.UpdateFields(dbc, id, map[string]interface{}{
		"is_verified": result.Valid,
	}); err != nil {
		return result, fmt.Errorf("record verification for %s: %w", coupon.Code, err)
	}

	s.log.Info("coupon verification recorded",
		"code", coupon.Code,
		"valid", result.Valid,
	)
	return result, nil
}
