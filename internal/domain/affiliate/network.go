package affiliate

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NetworkStatusActive   = "active"
	NetworkStatusInactive = "inactive"
	NetworkStatusPending  = "pending"
)

const (
	NetworkKindCommissionJunction = "cj"
	NetworkKindImpact             = "impact"
	NetworkKindAmazon             = "amazon"
	NetworkKindShareASale         = "shareasale"
	NetworkKindGeneric            = "generic"
)

type Network struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string     `gorm:"column:name;not null" json:"name"`
	Slug          string     `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Kind          string     `gorm:"column:kind;not null" json:"kind"`
	BaseURL       string     `gorm:"column:base_url" json:"base_url,omitempty"`
	APIKey        string     `gorm:"column:api_key" json:"-"`
	APISecret     string     `gorm:"column:api_secret" json:"-"`
	TrackingID    string     `gorm:"column:tracking_id" json:"-"`
	Status        string     `gorm:"column:status;not null;default:pending;index" json:"status"`
	LastCheckedAt *time.Time `gorm:"column:last_checked_at" json:"last_checked_at,omitempty"`
	LastError     string     `gorm:"column:last_error" json:"last_error,omitempty"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updated_at"`
}

func (Network) TableName() string { return "affiliate_network" }

func (n *Network) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
