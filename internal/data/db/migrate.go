package db

import (
	"gorm.io/gorm"

	types "github.com/dealhawk/dealhawk-backend/internal/domain"
)

func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&types.Merchant{},
		&types.Category{},
		&types.Product{},
		&types.Coupon{},
		&types.AffiliateNetwork{},
		&types.GenerationLog{},
		&types.Subscriber{},
		&types.Clickout{},
	)
}
