// Package store holds the seller store directory. A store is the unit an
// order decomposes by: every sub-order references exactly one store.
package store

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lumapp/marketplace/domain/shared"
)

// ErrSlugTaken signals a uniqueness conflict on the store slug.
var ErrSlugTaken = errors.New("store slug already taken")

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Store is a seller storefront.
type Store struct {
	id          int64
	externalID  string
	ownerID     int64
	name        string
	slug        string
	description string
	isActive    bool
	createdAt   time.Time
	updatedAt   time.Time
}

// NewStore validates and builds a storefront. Slug uniqueness is enforced by
// the repository, not here.
func NewStore(ownerID int64, name, slug, description string) (*Store, error) {
	if ownerID <= 0 {
		return nil, shared.NewValidationError("store", "owner_id", "owner_id must be positive")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("store", "name", "name cannot be empty")
	}
	slug = strings.ToLower(strings.TrimSpace(slug))
	if !slugPattern.MatchString(slug) {
		return nil, shared.NewValidationError("store", "slug", "slug must be lowercase alphanumeric with hyphens")
	}
	now := time.Now()
	return &Store{
		externalID:  uuid.NewString(),
		ownerID:     ownerID,
		name:        name,
		slug:        slug,
		description: strings.TrimSpace(description),
		isActive:    true,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Rename updates the display name and description.
func (s *Store) Rename(name, description string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("store", "name", "name cannot be empty")
	}
	s.name = name
	s.description = strings.TrimSpace(description)
	s.updatedAt = time.Now()
	return nil
}

// Deactivate closes the storefront. Existing orders keep referencing it.
func (s *Store) Deactivate() {
	s.isActive = false
	s.updatedAt = time.Now()
}

func (s *Store) ID() int64            { return s.id }
func (s *Store) ExternalID() string   { return s.externalID }
func (s *Store) OwnerID() int64       { return s.ownerID }
func (s *Store) Name() string         { return s.name }
func (s *Store) Slug() string         { return s.slug }
func (s *Store) Description() string  { return s.description }
func (s *Store) IsActive() bool       { return s.isActive }
func (s *Store) CreatedAt() time.Time { return s.createdAt }
func (s *Store) UpdatedAt() time.Time { return s.updatedAt }

// ReconstructionDTO rebuilds a Store from persisted state.
type ReconstructionDTO struct {
	ID          int64
	ExternalID  string
	OwnerID     int64
	Name        string
	Slug        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func Reconstruct(dto ReconstructionDTO) *Store {
	return &Store{
		id:          dto.ID,
		externalID:  dto.ExternalID,
		ownerID:     dto.OwnerID,
		name:        dto.Name,
		slug:        dto.Slug,
		description: dto.Description,
		isActive:    dto.IsActive,
		createdAt:   dto.CreatedAt,
		updatedAt:   dto.UpdatedAt,
	}
}

// Repository is the persistence port for the store directory. Create and
// Update return ErrSlugTaken on a slug uniqueness violation.
type Repository interface {
	Create(ctx context.Context, s *Store) error
	FindByID(ctx context.Context, id int64) (*Store, error)
	FindBySlug(ctx context.Context, slug string) (*Store, error)
	List(ctx context.Context, limit, offset int) ([]*Store, error)
	Update(ctx context.Context, s *Store) error
	Exists(ctx context.Context, id int64) (bool, error)
}
