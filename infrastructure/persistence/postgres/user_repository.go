package postgres

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"

	"github.com/lumapp/marketplace/domain/shared"
	"github.com/lumapp/marketplace/domain/user"
	"github.com/lumapp/marketplace/infrastructure/persistence"
	"github.com/lumapp/marketplace/infrastructure/persistence/postgres/po"
)

// UserRepository is the GORM implementation of the user directory port.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	userPO := po.FromUserDomain(u)
	userPO.ID = 0
	if err := r.getDB(ctx).Create(userPO).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewConflictError("user", "email already registered")
		}
		return shared.NewPersistenceError("user", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	var userPO po.UserPO
	if err := r.getDB(ctx).First(&userPO, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("user", strconv.FormatInt(id, 10))
		}
		return nil, shared.NewPersistenceError("user", err)
	}
	return userPO.ToDomain(), nil
}

func (r *UserRepository) FindByExternalID(ctx context.Context, externalID string) (*user.User, error) {
	var userPO po.UserPO
	if err := r.getDB(ctx).First(&userPO, "external_id = ?", externalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("user", externalID)
		}
		return nil, shared.NewPersistenceError("user", err)
	}
	return userPO.ToDomain(), nil
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*user.User, error) {
	var userPOs []po.UserPO
	if err := r.getDB(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&userPOs).Error; err != nil {
		return nil, shared.NewPersistenceError("user", err)
	}

	users := make([]*user.User, len(userPOs))
	for i := range userPOs {
		users[i] = userPOs[i].ToDomain()
	}
	return users, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var userPO po.UserPO
	if err := r.getDB(ctx).First(&userPO, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("user", email)
		}
		return nil, shared.NewPersistenceError("user", err)
	}
	return userPO.ToDomain(), nil
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	result := r.getDB(ctx).Model(&po.UserPO{}).
		Where("id = ?", u.ID()).
		Updates(map[string]any{
			"full_name":  u.FullName(),
			"is_active":  u.IsActive(),
			"updated_at": u.UpdatedAt(),
		})
	if result.Error != nil {
		return shared.NewPersistenceError("user", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("user", strconv.FormatInt(u.ID(), 10))
	}
	return nil
}

func (r *UserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.getDB(ctx).Model(&po.UserPO{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, shared.NewPersistenceError("user", err)
	}
	return count > 0, nil
}

var _ user.Repository = (*UserRepository)(nil)
