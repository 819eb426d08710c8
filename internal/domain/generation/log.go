package generation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Log is the single persisted record of one ingestion run. It transitions
// running -> completed|failed exactly once and is never re-opened.
type Log struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Type            string            `gorm:"column:type;not null;index" json:"type"`
	Source          string            `gorm:"column:source" json:"source,omitempty"`
	Status          string            `gorm:"column:status;not null;index" json:"status"`
	ProductsFound   int               `gorm:"column:products_found;not null;default:0" json:"products_found"`
	ProductsAdded   int               `gorm:"column:products_added;not null;default:0" json:"products_added"`
	ProductsUpdated int               `gorm:"column:products_updated;not null;default:0" json:"products_updated"`
	CouponsFound    int               `gorm:"column:coupons_found;not null;default:0" json:"coupons_found"`
	CouponsAdded    int               `gorm:"column:coupons_added;not null;default:0" json:"coupons_added"`
	Errors          datatypes.JSON    `gorm:"column:errors;type:jsonb" json:"errors"`
	Metadata        datatypes.JSONMap `gorm:"column:metadata;type:jsonb" json:"metadata"`
	StartedAt       time.Time         `gorm:"column:started_at;not null;index" json:"started_at"`
	CompletedAt     *time.Time        `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt       time.Time         `gorm:"not null;index" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"not null" json:"updated_at"`
}

func (Log) TableName() string { return "generation_log" }

func (l *Log) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
