package po

import (
	"time"

	"github.com/lumapp/marketplace/domain/store"
)

// StorePO maps the stores table.
type StorePO struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	ExternalID  string    `gorm:"size:36;uniqueIndex;not null"`
	OwnerID     int64     `gorm:"index;not null"`
	Name        string    `gorm:"size:255;not null"`
	Slug        string    `gorm:"size:255;uniqueIndex;not null"`
	Description string    `gorm:"type:text"`
	IsActive    bool      `gorm:"default:true;not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (StorePO) TableName() string { return "stores" }

func FromStoreDomain(s *store.Store) *StorePO {
	return &StorePO{
		ID:          s.ID(),
		ExternalID:  s.ExternalID(),
		OwnerID:     s.OwnerID(),
		Name:        s.Name(),
		Slug:        s.Slug(),
		Description: s.Description(),
		IsActive:    s.IsActive(),
		CreatedAt:   s.CreatedAt(),
		UpdatedAt:   s.UpdatedAt(),
	}
}

func (po *StorePO) ToDomain() *store.Store {
	return store.Reconstruct(store.ReconstructionDTO{
		ID:          po.ID,
		ExternalID:  po.ExternalID,
		OwnerID:     po.OwnerID,
		Name:        po.Name,
		Slug:        po.Slug,
		Description: po.Description,
		IsActive:    po.IsActive,
		CreatedAt:   po.CreatedAt,
		UpdatedAt:   po.UpdatedAt,
	})
}
