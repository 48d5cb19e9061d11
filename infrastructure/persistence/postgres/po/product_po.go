package po

import (
	"time"

	"github.com/lumapp/marketplace/domain/catalog"
)

// ProductPO maps the products table.
type ProductPO struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	ExternalID string    `gorm:"size:36;uniqueIndex;not null"`
	StoreID    int64     `gorm:"index;not null"`
	Title      string    `gorm:"size:255;not null"`
	Price      int64     `gorm:"not null"`
	Currency   string    `gorm:"size:3;not null"`
	IsActive   bool      `gorm:"default:true;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (ProductPO) TableName() string { return "products" }

// ProductVariantPO maps the product_variants table.
type ProductVariantPO struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	ProductID int64  `gorm:"index;not null"`
	Name      string `gorm:"size:255;not null"`
	Price     *int64 `gorm:""`
	IsActive  bool   `gorm:"default:true;not null"`
}

func (ProductVariantPO) TableName() string { return "product_variants" }

func (po *ProductPO) ToDomain() *catalog.Product {
	return &catalog.Product{
		ID:         po.ID,
		ExternalID: po.ExternalID,
		StoreID:    po.StoreID,
		Title:      po.Title,
		PriceCOP:   po.Price,
		Currency:   po.Currency,
		IsActive:   po.IsActive,
		CreatedAt:  po.CreatedAt,
		UpdatedAt:  po.UpdatedAt,
	}
}

func (po *ProductVariantPO) ToDomain() *catalog.Variant {
	return &catalog.Variant{
		ID:        po.ID,
		ProductID: po.ProductID,
		Name:      po.Name,
		PriceCOP:  po.Price,
		IsActive:  po.IsActive,
	}
}
