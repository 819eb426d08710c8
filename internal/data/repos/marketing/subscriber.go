package marketing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealhawk/dealhawk-backend/internal/pkg/dbctx"
	"github.com/dealhawk/dealhawk-backend/internal/platform/logger"

	types "github.com/dealhawk/dealhawk-backend/internal/domain"
)

type SubscriberRepo interface {
	Create(dbc dbctx.Context, subscribers []*types.Subscriber) ([]*types.Subscriber, error)
	GetByEmail(dbc dbctx.Context, email string) (*types.Subscriber, error)
	ListByStatus(dbc dbctx.Context, status string, limit, offset int) ([]*types.Subscriber, error)
	CountByStatus(dbc dbctx.Context, status string) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type subscriberRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubscriberRepo(db *gorm.DB, baseLog *logger.Logger) SubscriberRepo {
	return &subscriberRepo{db: db, log: baseLog.With("repo", "SubscriberRepo")}
}

func (r *subscriberRepo) Create(dbc dbctx.Context, subscribers []*types.Subscriber) ([]*types.Subscriber, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(subscribers) == 0 {
		return []*types.Subscriber{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&subscribers).Error; err != nil {
		return nil, err
	}
	return subscribers, nil
}

func (r *subscriberRepo) GetByEmail(dbc dbctx.Context, email string) (*types.Subscriber, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	var s types.Subscriber
	if err := transaction.WithContext(dbc.Ctx).
		Where("email = ?", email).
		Limit(1).
		Find(&s).Error; err != nil {
		return nil, err
	}
	if s.ID == uuid.Nil {
		return nil, nil
	}
	return &s, nil
}

func (r *subscriberRepo) ListByStatus(dbc dbctx.Context, status string, limit, offset int) ([]*types.Subscriber, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 500
	}
	var out []*types.Subscriber
	if err := transaction.WithContext(dbc.Ctx).
		Where("status = ?", status).
		Order("subscribed_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *subscriberRepo) CountByStatus(dbc dbctx.Context, status string) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Subscriber{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *subscriberRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.Subscriber{}).
		Where("id = ?", id).
		Updates(updates).Error
}
