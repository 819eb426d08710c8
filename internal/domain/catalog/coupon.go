package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

type Coupon struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Code          string         `gorm:"column:code;not null;uniqueIndex:udx_coupon_code,where:deleted_at IS NULL" json:"code"`
	Title         string         `gorm:"column:title" json:"title,omitempty"`
	Description   string         `gorm:"column:description;type:text" json:"description,omitempty"`
	DiscountType  string         `gorm:"column:discount_type;not null" json:"discount_type"`
	DiscountValue float64        `gorm:"column:discount_value;not null" json:"discount_value"`
	MinimumSpend  *float64       `gorm:"column:minimum_spend" json:"minimum_spend,omitempty"`
	MerchantID    uuid.UUID      `gorm:"type:uuid;column:merchant_id;not null;index" json:"merchant_id"`
	Merchant      *Merchant      `gorm:"foreignKey:MerchantID" json:"merchant,omitempty"`
	ProductID     *uuid.UUID     `gorm:"type:uuid;column:product_id;index" json:"product_id,omitempty"`
	IsVerified    bool           `gorm:"column:is_verified;not null;default:false" json:"is_verified"`
	IsActive      bool           `gorm:"column:is_active;not null" json:"is_active"`
	ExpiresAt     *time.Time     `gorm:"column:expires_at;index" json:"expires_at,omitempty"`
	UsageCount    int            `gorm:"column:usage_count;not null;default:0" json:"usage_count"`
	MaxUsage      *int           `gorm:"column:max_usage" json:"max_usage,omitempty"`
	CreatedAt     time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Coupon) TableName() string { return "coupon" }

func (c *Coupon) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
