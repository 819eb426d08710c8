package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealhawk/dealhawk-backend/internal/pkg/dbctx"
	"github.com/dealhawk/dealhawk-backend/internal/platform/logger"

	types "github.com/dealhawk/dealhawk-backend/internal/domain"
)

type CategoryRepo interface {
	Create(dbc dbctx.Context, categories []*types.Category) ([]*types.Category, error)
	GetByNameKey(dbc dbctx.Context, nameKey string) (*types.Category, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.Category, error)
	List(dbc dbctx.Context) ([]*types.Category, error)
}

type categoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return &categoryRepo{db: db, log: baseLog.With("repo", "CategoryRepo")}
}

func (r *categoryRepo) Create(dbc dbctx.Context, categories []*types.Category) ([]*types.Category, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(categories) == 0 {
		return []*types.Category{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepo) GetByNameKey(dbc dbctx.Context, nameKey string) (*types.Category, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if nameKey == "" {
		return nil, nil
	}
	var c types.Category
	if err := transaction.WithContext(dbc.Ctx).
		Where("name_key = ?", nameKey).
		Limit(1).
		Find(&c).Error; err != nil {
		return nil, err
	}
	if c.ID == uuid.Nil {
		return nil, nil
	}
	return &c, nil
}

func (r *categoryRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.Category, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if slug == "" {
		return nil, nil
	}
	var c types.Category
	if err := transaction.WithContext(dbc.Ctx).
		Where("slug = ?", slug).
		Limit(1).
		Find(&c).Error; err != nil {
		return nil, err
	}
	if c.ID == uuid.Nil {
		return nil, nil
	}
	return &c, nil
}

func (r *categoryRepo) List(dbc dbctx.Context) ([]*types.Category, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Category
	if err := transaction.WithContext(dbc.Ctx).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
