// Package catalog exposes the read-only product lookups the order flow
// depends on. Catalog management itself is a separate system; orders only
// snapshot a product's title and price at purchase time.
package catalog

import (
	"context"
	"time"
)

// Product is a sellable catalog entry belonging to one store.
type Product struct {
	ID          int64
	ExternalID  string
	StoreID     int64
	Title       string
	PriceCOP    int64
	Currency    string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Variant is a concrete purchasable variation of a product. A variant may
// override the product price.
type Variant struct {
	ID        int64
	ProductID int64
	Name      string
	PriceCOP  *int64
	IsActive  bool
}

// EffectivePriceCOP resolves the price an item of this variant sells at.
func (p Product) EffectivePriceCOP(v *Variant) int64 {
	if v != nil && v.PriceCOP != nil {
		return *v.PriceCOP
	}
	return p.PriceCOP
}

// Repository is the lookup port the order flow uses to verify that
// referenced products exist and belong to the claimed store.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*Product, error)
	FindVariantByID(ctx context.Context, id int64) (*Variant, error)
	Exists(ctx context.Context, id int64) (bool, error)
}
