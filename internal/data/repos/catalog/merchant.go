package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealhawk/dealhawk-backend/internal/pkg/dbctx"
	"github.com/dealhawk/dealhawk-backend/internal/platform/logger"

	types "github.com/dealhawk/dealhawk-backend/internal/domain"
)

type MerchantRepo interface {
	Create(dbc dbctx.Context, merchants []*types.Merchant) ([]*types.Merchant, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Merchant, error)
	GetByNameKey(dbc dbctx.Context, nameKey string) (*types.Merchant, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.Merchant, error)
	List(dbc dbctx.Context, limit, offset int) ([]*types.Merchant, error)
	Count(dbc dbctx.Context) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type merchantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMerchantRepo(db *gorm.DB, baseLog *logger.Logger) MerchantRepo {
	return &merchantRepo{db: db, log: baseLog.With("repo", "MerchantRepo")}
}

func (r *merchantRepo) Create(dbc dbctx.Context, merchants []*types.Merchant) ([]*types.Merchant, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(merchants) == 0 {
		return []*types.Merchant{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&merchants).Error; err != nil {
		return nil, err
	}
	return merchants, nil
}

func (r *merchantRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Merchant, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var m types.Merchant
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&m).Error; err != nil {
		return nil, err
	}
	if m.ID == uuid.Nil {
		return nil, nil
	}
	return &m, nil
}

func (r *merchantRepo) GetByNameKey(dbc dbctx.Context, nameKey string) (*types.Merchant, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if nameKey == "" {
		return nil, nil
	}
	var m types.Merchant
	if err := transaction.WithContext(dbc.Ctx).
		Where("name_key = ?", nameKey).
		Limit(1).
		Find(&m).Error; err != nil {
		return nil, err
	}
	if m.ID == uuid.Nil {
		return nil, nil
	}
	return &m, nil
}

func (r *merchantRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.Merchant, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if slug == "" {
		return nil, nil
	}
	var m types.Merchant
	if err := transaction.WithContext(dbc.Ctx).
		Where("slug = ?", slug).
		Limit(1).
		Find(&m).Error; err != nil {
		return nil, err
	}
	if m.ID == uuid.Nil {
		return nil, nil
	}
	return &m, nil
}

func (r *merchantRepo) List(dbc dbctx.Context, limit, offset int) ([]*types.Merchant, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 50
	}
	var out []*types.Merchant
	if err := transaction.WithContext(dbc.Ctx).
		Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *merchantRepo) Count(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Merchant{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *merchantRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.Merchant{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *merchantRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.Merchant{}).Error
}
