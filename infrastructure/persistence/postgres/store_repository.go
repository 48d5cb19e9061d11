package postgres

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"

	"github.com/lumapp/marketplace/domain/shared"
	"github.com/lumapp/marketplace/domain/store"
	"github.com/lumapp/marketplace/infrastructure/persistence"
	"github.com/lumapp/marketplace/infrastructure/persistence/postgres/po"
)

// StoreRepository is the GORM implementation of the store directory port.
type StoreRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) *StoreRepository {
	return &StoreRepository{db: db}
}

func (r *StoreRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

func (r *StoreRepository) Create(ctx context.Context, s *store.Store) error {
	storePO := po.FromStoreDomain(s)
	storePO.ID = 0
	if err := r.getDB(ctx).Create(storePO).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return store.ErrSlugTaken
		}
		return shared.NewPersistenceError("store", err)
	}
	return nil
}

func (r *StoreRepository) FindByID(ctx context.Context, id int64) (*store.Store, error) {
	var storePO po.StorePO
	if err := r.getDB(ctx).First(&storePO, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("store", strconv.FormatInt(id, 10))
		}
		return nil, shared.NewPersistenceError("store", err)
	}
	return storePO.ToDomain(), nil
}

func (r *StoreRepository) FindBySlug(ctx context.Context, slug string) (*store.Store, error) {
	var storePO po.StorePO
	if err := r.getDB(ctx).First(&storePO, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("store", slug)
		}
		return nil, shared.NewPersistenceError("store", err)
	}
	return storePO.ToDomain(), nil
}

func (r *StoreRepository) List(ctx context.Context, limit, offset int) ([]*store.Store, error) {
	var storePOs []po.StorePO
	if err := r.getDB(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&storePOs).Error; err != nil {
		return nil, shared.NewPersistenceError("store", err)
	}

	stores := make([]*store.Store, len(storePOs))
	for i := range storePOs {
		stores[i] = storePOs[i].ToDomain()
	}
	return stores, nil
}

func (r *StoreRepository) Update(ctx context.Context, s *store.Store) error {
	result := r.getDB(ctx).Model(&po.StorePO{}).
		Where("id = ?", s.ID()).
		Updates(map[string]any{
			"name":        s.Name(),
			"description": s.Description(),
			"is_active":   s.IsActive(),
			"updated_at":  s.UpdatedAt(),
		})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return store.ErrSlugTaken
		}
		return shared.NewPersistenceError("store", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("store", strconv.FormatInt(s.ID(), 10))
	}
	return nil
}

func (r *StoreRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.getDB(ctx).Model(&po.StorePO{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, shared.NewPersistenceError("store", err)
	}
	return count > 0, nil
}

var _ store.Repository = (*StoreRepository)(nil)
