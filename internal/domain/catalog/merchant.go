package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Merchant struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string         `gorm:"column:name;not null" json:"name"`
	NameKey        string         `gorm:"column:name_key;not null;uniqueIndex:udx_merchant_name_key,where:deleted_at IS NULL" json:"-"`
	Slug           string         `gorm:"column:slug;not null;uniqueIndex:udx_merchant_slug,where:deleted_at IS NULL" json:"slug"`
	Website        string         `gorm:"column:website" json:"website,omitempty"`
	LogoURL        string         `gorm:"column:logo_url" json:"logo_url,omitempty"`
	CommissionRate float64        `gorm:"column:commission_rate;not null;default:0" json:"commission_rate"`
	IsActive       bool           `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt      time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Merchant) TableName() string { return "merchant" }

func (m *Merchant) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
