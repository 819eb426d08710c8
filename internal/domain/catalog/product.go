package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Product rows are created lazily during ingestion and updated in place on
// later runs. NameKey backs the case-insensitive dedupe lookup; the
// (merchant_id, sku) pair is unique so re-ingesting a feed item can never
// fork a second row for the same listing. The unique indexes only cover live
// rows, so a soft-deleted product does not block the pipeline from ingesting
// the same listing again.
type Product struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Name               string            `gorm:"column:name;not null" json:"name"`
	NameKey            string            `gorm:"column:name_key;not null;uniqueIndex:udx_product_name_key,where:deleted_at IS NULL" json:"-"`
	Slug               string            `gorm:"column:slug;not null;uniqueIndex:udx_product_slug,where:deleted_at IS NULL" json:"slug"`
	Description        string            `gorm:"column:description;type:text" json:"description,omitempty"`
	MerchantID         uuid.UUID         `gorm:"type:uuid;column:merchant_id;not null;index;uniqueIndex:idx_product_merchant_sku,where:deleted_at IS NULL" json:"merchant_id"`
	Merchant           *Merchant         `gorm:"foreignKey:MerchantID" json:"merchant,omitempty"`
	SKU                *string           `gorm:"column:sku;uniqueIndex:idx_product_merchant_sku" json:"sku,omitempty"`
	OriginalPrice      *float64          `gorm:"column:original_price" json:"original_price,omitempty"`
	SalePrice          *float64          `gorm:"column:sale_price" json:"sale_price,omitempty"`
	DiscountPercentage int               `gorm:"column:discount_percentage;not null;default:0" json:"discount_percentage"`
	Rating             *float64          `gorm:"column:rating" json:"rating,omitempty"`
	ReviewCount        int               `gorm:"column:review_count;not null;default:0" json:"review_count"`
	IsActive           bool              `gorm:"column:is_active;not null" json:"is_active"`
	ImageURL           string            `gorm:"column:image_url" json:"image_url,omitempty"`
	ProductURL         string            `gorm:"column:product_url" json:"product_url,omitempty"`
	AffiliateURL       string            `gorm:"column:affiliate_url" json:"affiliate_url,omitempty"`
	Metadata           datatypes.JSONMap `gorm:"column:metadata;type:jsonb" json:"metadata"`
	Categories         []*Category       `gorm:"many2many:product_categories" json:"categories,omitempty"`
	CreatedAt          time.Time         `gorm:"not null;index" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"not null;index" json:"updated_at"`
	DeletedAt          gorm.DeletedAt    `gorm:"index" json:"deleted_at,omitempty"`
}

func (Product) TableName() string { return "product" }

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
