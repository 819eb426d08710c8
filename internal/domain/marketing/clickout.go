package marketing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Clickout records one outbound click from the site to a merchant page.
type Clickout struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID  uuid.UUID `gorm:"type:uuid;column:product_id;not null;index" json:"product_id"`
	MerchantID uuid.UUID `gorm:"type:uuid;column:merchant_id;not null;index" json:"merchant_id"`
	IPHash     string    `gorm:"column:ip_hash" json:"-"`
	Referrer   string    `gorm:"column:referrer" json:"referrer,omitempty"`
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`
}

func (Clickout) TableName() string { return "clickout" }

func (c *Clickout) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
