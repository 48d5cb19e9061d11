package postgres

import (
	"gorm.io/gorm"

	"github.com/lumapp/marketplace/infrastructure/persistence/postgres/po"
)

// AutoMigrate creates or updates the schema for every mapped table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&po.UserPO{},
		&po.StorePO{},
		&po.ProductPO{},
		&po.ProductVariantPO{},
		&po.OrderPO{},
		&po.SubOrderPO{},
		&po.OrderItemPO{},
		&po.OrderMessagePO{},
		&po.OutboxEventPO{},
	)
}
