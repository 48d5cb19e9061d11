// Package user holds the buyer/seller directory the order flow checks
// against. Accounts are created out of band; the marketplace core only needs
// existence and basic profile data.
package user

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lumapp/marketplace/domain/shared"
)

// User is a directory entry. It is deliberately thin; authentication and
// profiles live elsewhere.
type User struct {
	id         int64
	externalID string
	email      string
	fullName   string
	isActive   bool
	createdAt  time.Time
	updatedAt  time.Time
}

// NewUser validates and builds a directory entry.
func NewUser(email, fullName string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, shared.NewValidationError("user", "email", "email is not valid")
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, shared.NewValidationError("user", "full_name", "full_name cannot be empty")
	}
	now := time.Now()
	return &User{
		externalID: uuid.NewString(),
		email:      email,
		fullName:   fullName,
		isActive:   true,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// Deactivate disables the account without removing it.
func (u *User) Deactivate() {
	u.isActive = false
	u.updatedAt = time.Now()
}

// Rename updates the display name.
func (u *User) Rename(fullName string) error {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return shared.NewValidationError("user", "full_name", "full_name cannot be empty")
	}
	u.fullName = fullName
	u.updatedAt = time.Now()
	return nil
}

func (u *User) ID() int64            { return u.id }
func (u *User) ExternalID() string   { return u.externalID }
func (u *User) Email() string        { return u.email }
func (u *User) FullName() string     { return u.fullName }
func (u *User) IsActive() bool       { return u.isActive }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

// ReconstructionDTO rebuilds a User from persisted state.
type ReconstructionDTO struct {
	ID         int64
	ExternalID string
	Email      string
	FullName   string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func Reconstruct(dto ReconstructionDTO) *User {
	return &User{
		id:         dto.ID,
		externalID: dto.ExternalID,
		email:      dto.Email,
		fullName:   dto.FullName,
		isActive:   dto.IsActive,
		createdAt:  dto.CreatedAt,
		updatedAt:  dto.UpdatedAt,
	}
}

// Repository is the persistence port for the user directory.
type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByExternalID(ctx context.Context, externalID string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, limit, offset int) ([]*User, error)
	Update(ctx context.Context, u *User) error
	Exists(ctx context.Context, id int64) (bool, error)
}
