package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealhawk/dealhawk-backend/internal/pkg/dbctx"
	"github.com/dealhawk/dealhawk-backend/internal/platform/logger"

	types "github.com/dealhawk/dealhawk-backend/internal/domain"
)

// ProductFilter narrows List queries for the public catalog.
type ProductFilter struct {
	CategorySlug string
	MerchantID   *uuid.UUID
	MinPrice     *float64
	MaxPrice     *float64
	ActiveOnly   bool
	Limit        int
	Offset       int
}

type ProductRepo interface {
	Create(dbc dbctx.Context, products []*types.Product) ([]*types.Product, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Product, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.Product, error)
	// FindByNameKey is the indexed replacement for the legacy full-table
	// dedupe scan: one lookup per candidate.
	FindByNameKey(dbc dbctx.Context, nameKey string) (*types.Product, error)
	FindBySKU(dbc dbctx.Context, sku string) (*types.Product, error)
	List(dbc dbctx.Context, filter ProductFilter) ([]*types.Product, error)
	Count(dbc dbctx.Context) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type productRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return &productRepo{db: db, log: baseLog.With("repo", "ProductRepo")}
}

func (r *productRepo) Create(dbc dbctx.Context, products []*types.Product) ([]*types.Product, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(products) == 0 {
		return []*types.Product{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Product, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var p types.Product
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&p).Error; err != nil {
		return nil, err
	}
	if p.ID == uuid.Nil {
		return nil, nil
	}
	return &p, nil
}

func (r *productRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.Product, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if slug == "" {
		return nil, nil
	}
	var p types.Product
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Merchant").
		Preload("Categories").
		Where("slug = ?", slug).
		Limit(1).
		Find(&p).Error; err != nil {
		return nil, err
	}
	if p.ID == uuid.Nil {
		return nil, nil
	}
	return &p, nil
}

func (r *productRepo) FindByNameKey(dbc dbctx.Context, nameKey string) (*types.Product, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if nameKey == "" {
		return nil, nil
	}
	var p types.Product
	if err := transaction.WithContext(dbc.Ctx).
		Where("name_key = ?", nameKey).
		Limit(1).
		Find(&p).Error; err != nil {
		return nil, err
	}
	if p.ID == uuid.Nil {
		return nil, nil
	}
	return &p, nil
}

func (r *productRepo) FindBySKU(dbc dbctx.Context, sku string) (*types.Product, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if sku == "" {
		return nil, nil
	}
	var p types.Product
	if err := transaction.WithContext(dbc.Ctx).
		Where("sku = ?", sku).
		Limit(1).
		Find(&p).Error; err != nil {
		return nil, err
	}
	if p.ID == uuid.Nil {
		return nil, nil
	}
	return &p, nil
}

func (r *productRepo) List(dbc dbctx.Context, filter ProductFilter) ([]*types.Product, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	q := transaction.WithContext(dbc.Ctx).
		Model(&types.Product{}).
		Preload("Merchant")
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if filter.MerchantID != nil && *filter.MerchantID != uuid.Nil {
		q = q.Where("merchant_id = ?", *filter.MerchantID)
	}
	if filter.MinPrice != nil {
		q = q.Where("sale_price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("sale_price <= ?", *filter.MaxPrice)
	}
	if filter.CategorySlug != "" {
		q = q.Joins("JOIN product_categories pc ON pc.product_id = product.id").
			Joins("JOIN category c ON c.id = pc.category_id").
			Where("c.slug = ?", filter.CategorySlug)
	}

	var out []*types.Product
	if err := q.Order("updated_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRepo) Count(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Product{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *productRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Product{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *productRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.Product{}).Error
}
