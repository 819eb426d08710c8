package marketing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealhawk/dealhawk-backend/internal/pkg/dbctx"
	"github.com/dealhawk/dealhawk-backend/internal/platform/logger"

	types "github.com/dealhawk/dealhawk-backend/internal/domain"
)

// ProductClickCount is the aggregate row backing the dashboard's
// top-products listing.
type ProductClickCount struct {
	ProductID uuid.UUID `json:"product_id"`
	Clicks    int64     `json:"clicks"`
}

type ClickoutRepo interface {
	Create(dbc dbctx.Context, clickouts []*types.Clickout) ([]*types.Clickout, error)
	CountSince(dbc dbctx.Context, since time.Time) (int64, error)
	TopProductsSince(dbc dbctx.Context, since time.Time, limit int) ([]ProductClickCount, error)
}

type clickoutRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClickoutRepo(db *gorm.DB, baseLog *logger.Logger) ClickoutRepo {
	return &clickoutRepo{db: db, log: baseLog.With("repo", "ClickoutRepo")}
}

func (r *clickoutRepo) Create(dbc dbctx.Context, clickouts []*types.Clickout) ([]*types.Clickout, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(clickouts) == 0 {
		return []*types.Clickout{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&clickouts).Error; err != nil {
		return nil, err
	}
	return clickouts, nil
}

func (r *clickoutRepo) CountSince(dbc dbctx.Context, since time.Time) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Clickout{}).
		Where("created_at >= ?", since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *clickoutRepo) TopProductsSince(dbc dbctx.Context, since time.Time, limit int) ([]ProductClickCount, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 10
	}
	var out []ProductClickCount
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Clickout{}).
		Select("product_id, COUNT(*) AS clicks").
		Where("created_at >= ?", since).
		Group("product_id").
		Order("clicks DESC").
		Limit(limit).
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
