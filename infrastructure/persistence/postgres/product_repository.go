package postgres

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"

	"github.com/lumapp/marketplace/domain/catalog"
	"github.com/lumapp/marketplace/domain/shared"
	"github.com/lumapp/marketplace/infrastructure/persistence"
	"github.com/lumapp/marketplace/infrastructure/persistence/postgres/po"
)

// ProductRepository implements the catalog lookup port.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*catalog.Product, error) {
	var productPO po.ProductPO
	if err := r.getDB(ctx).First(&productPO, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("product", strconv.FormatInt(id, 10))
		}
		return nil, shared.NewPersistenceError("product", err)
	}
	return productPO.ToDomain(), nil
}

func (r *ProductRepository) FindVariantByID(ctx context.Context, id int64) (*catalog.Variant, error) {
	var variantPO po.ProductVariantPO
	if err := r.getDB(ctx).First(&variantPO, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("product_variant", strconv.FormatInt(id, 10))
		}
		return nil, shared.NewPersistenceError("product_variant", err)
	}
	return variantPO.ToDomain(), nil
}

func (r *ProductRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.getDB(ctx).Model(&po.ProductPO{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, shared.NewPersistenceError("product", err)
	}
	return count > 0, nil
}

var _ catalog.Repository = (*ProductRepository)(nil)
