package po

import (
	"time"

	"github.com/lumapp/marketplace/domain/user"
)

// UserPO maps the users table.
type UserPO struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	ExternalID string    `gorm:"size:36;uniqueIndex;not null"`
	Email      string    `gorm:"size:255;uniqueIndex;not null"`
	FullName   string    `gorm:"size:255;not null"`
	IsActive   bool      `gorm:"default:true;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (UserPO) TableName() string { return "users" }

func FromUserDomain(u *user.User) *UserPO {
	return &UserPO{
		ID:         u.ID(),
		ExternalID: u.ExternalID(),
		Email:      u.Email(),
		FullName:   u.FullName(),
		IsActive:   u.IsActive(),
		CreatedAt:  u.CreatedAt(),
		UpdatedAt:  u.UpdatedAt(),
	}
}

func (po *UserPO) ToDomain() *user.User {
	return user.Reconstruct(user.ReconstructionDTO{
		ID:         po.ID,
		ExternalID: po.ExternalID,
		Email:      po.Email,
		FullName:   po.FullName,
		IsActive:   po.IsActive,
		CreatedAt:  po.CreatedAt,
		UpdatedAt:  po.UpdatedAt,
	})
}
