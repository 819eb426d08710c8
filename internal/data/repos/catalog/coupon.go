package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealhawk/dealhawk-backend/internal/pkg/dbctx"
	"github.com/dealhawk/dealhawk-backend/internal/platform/logger"

	types "github.com/dealhawk/dealhawk-backend/internal/domain"
)

type CouponRepo interface {
	Create(dbc dbctx.Context, coupons []*types.Coupon) ([]*types.Coupon, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Coupon, error)
	ExistsByCode(dbc dbctx.Context, code string) (bool, error)
	List(dbc dbctx.Context, limit, offset int) ([]*types.Coupon, error)
	ListByMerchant(dbc dbctx.Context, merchantID uuid.UUID, activeOnly bool) ([]*types.Coupon, error)
	CountActive(dbc dbctx.Context) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type couponRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCouponRepo(db *gorm.DB, baseLog *logger.Logger) CouponRepo {
	return &couponRepo{db: db, log: baseLog.With("repo", "CouponRepo")}
}

func (r *couponRepo) Create(dbc dbctx.Context, coupons []*types.Coupon) ([]*types.Coupon, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(coupons) == 0 {
		return []*types.Coupon{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&coupons).Error; err != nil {
		return nil, err
	}
	return coupons, nil
}

func (r *couponRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Coupon, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var c types.Coupon
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&c).Error; err != nil {
		return nil, err
	}
	if c.ID == uuid.Nil {
		return nil, nil
	}
	return &c, nil
}

func (r *couponRepo) ExistsByCode(dbc dbctx.Context, code string) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if code == "" {
		return false, nil
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Coupon{}).
		Where("code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *couponRepo) List(dbc dbctx.Context, limit, offset int) ([]*types.Coupon, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 50
	}
	var out []*types.Coupon
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Merchant").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *couponRepo) ListByMerchant(dbc dbctx.Context, merchantID uuid.UUID, activeOnly bool) ([]*types.Coupon, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if merchantID == uuid.Nil {
		return nil, nil
	}
	q := transaction.WithContext(dbc.Ctx).
		Where("merchant_id = ?", merchantID)
	if activeOnly {
		q = q.Where("is_active = ?", true).
			Where("(expires_at IS NULL OR expires_at > ?)", time.Now())
	}
	var out []*types.Coupon
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *couponRepo) CountActive(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Coupon{}).
		Where("is_active = ?", true).
		Where("(expires_at IS NULL OR expires_at > ?)", time.Now()).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *couponRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.Coupon{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *couponRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.Coupon{}).Error
}
