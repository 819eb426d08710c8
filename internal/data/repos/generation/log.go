package generation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dealhawk/dealhawk-backend/internal/pkg/dbctx"
	"github.com/dealhawk/dealhawk-backend/internal/platform/logger"

	types "github.com/dealhawk/dealhawk-backend/internal/domain"
)

type LogRepo interface {
	Create(dbc dbctx.Context, logs []*types.GenerationLog) ([]*types.GenerationLog, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.GenerationLog, error)
	ListRecent(dbc dbctx.Context, limit int) ([]*types.GenerationLog, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	// FailStaleRunning closes out `running` rows older than the cutoff. A run
	// cannot survive a process restart, so anything stale is an orphan.
	FailStaleRunning(dbc dbctx.Context, olderThan time.Duration) (int64, error)
}

type logRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLogRepo(db *gorm.DB, baseLog *logger.Logger) LogRepo {
	return &logRepo{db: db, log: baseLog.With("repo", "GenerationLogRepo")}
}

func (r *logRepo) Create(dbc dbctx.Context, logs []*types.GenerationLog) ([]*types.GenerationLog, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(logs) == 0 {
		return []*types.GenerationLog{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *logRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.GenerationLog, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var l types.GenerationLog
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&l).Error; err != nil {
		return nil, err
	}
	if l.ID == uuid.Nil {
		return nil, nil
	}
	return &l, nil
}

func (r *logRepo) ListRecent(dbc dbctx.Context, limit int) ([]*types.GenerationLog, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 20
	}
	var out []*types.GenerationLog
	if err := transaction.WithContext(dbc.Ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *logRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.GenerationLog{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *logRepo) FailStaleRunning(dbc dbctx.Context, olderThan time.Duration) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	cutoff := now.Add(-olderThan)
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.GenerationLog{}).
		Where("status = ? AND started_at < ?", types.GenerationStatusRunning, cutoff).
		Updates(map[string]interface{}{
			"status":       types.GenerationStatusFailed,
			"errors":       datatypes.JSON([]byte(`["run abandoned: process restarted"]`)),
			"completed_at": now,
			"updated_at":   now,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
