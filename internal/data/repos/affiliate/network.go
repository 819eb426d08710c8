package affiliate

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealhawk/dealhawk-backend/internal/pkg/dbctx"
	"github.com/dealhawk/dealhawk-backend/internal/platform/logger"

	types "github.com/dealhawk/dealhawk-backend/internal/domain"
)

type NetworkRepo interface {
	Create(dbc dbctx.Context, networks []*types.AffiliateNetwork) ([]*types.AffiliateNetwork, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.AffiliateNetwork, error)
	List(dbc dbctx.Context) ([]*types.AffiliateNetwork, error)
	ListByStatus(dbc dbctx.Context, status string) ([]*types.AffiliateNetwork, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type networkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNetworkRepo(db *gorm.DB, baseLog *logger.Logger) NetworkRepo {
	return &networkRepo{db: db, log: baseLog.With("repo", "NetworkRepo")}
}

func (r *networkRepo) Create(dbc dbctx.Context, networks []*types.AffiliateNetwork) ([]*types.AffiliateNetwork, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(networks) == 0 {
		return []*types.AffiliateNetwork{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&networks).Error; err != nil {
		return nil, err
	}
	return networks, nil
}

func (r *networkRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.AffiliateNetwork, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var n types.AffiliateNetwork
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&n).Error; err != nil {
		return nil, err
	}
	if n.ID == uuid.Nil {
		return nil, nil
	}
	return &n, nil
}

func (r *networkRepo) List(dbc dbctx.Context) ([]*types.AffiliateNetwork, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.AffiliateNetwork
	if err := transaction.WithContext(dbc.Ctx).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *networkRepo) ListByStatus(dbc dbctx.Context, status string) ([]*types.AffiliateNetwork, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if status == "" {
		return nil, nil
	}
	var out []*types.AffiliateNetwork
	if err := transaction.WithContext(dbc.Ctx).
		Where("status = ?", status).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *networkRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.AffiliateNetwork{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *networkRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.AffiliateNetwork{}).Error
}
