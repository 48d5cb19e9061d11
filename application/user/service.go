// Package user exposes the user directory operations.
package user

import (
	"context"
	"time"

	"github.com/lumapp/marketplace/domain/user"
)

// CreateUserRequest registers a directory entry.
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name" binding:"required"`
}

// UpdateUserRequest renames a directory entry.
type UpdateUserRequest struct {
	FullName string `json:"full_name" binding:"required"`
}

// ListUsersQuery mirrors the list endpoint's paging parameters.
type ListUsersQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// UserResponse is the directory view.
type UserResponse struct {
	ID         int64     `json:"id"`
	ExternalID string    `json:"external_id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ApplicationService coordinates user directory writes and reads.
type ApplicationService struct {
	userRepo user.Repository
}

func NewApplicationService(userRepo user.Repository) *ApplicationService {
	return &ApplicationService{userRepo: userRepo}
}

func (s *ApplicationService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	u, err := user.NewUser(req.Email, req.FullName)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}

	created, err := s.userRepo.FindByEmail(ctx, u.Email())
	if err != nil {
		return nil, err
	}
	return toResponse(created), nil
}

func (s *ApplicationService) GetUser(ctx context.Context, id int64) (*UserResponse, error) {
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(u), nil
}

func (s *ApplicationService) GetUserByExternalID(ctx context.Context, externalID string) (*UserResponse, error) {
	u, err := s.userRepo.FindByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	return toResponse(u), nil
}

func (s *ApplicationService) ListUsers(ctx context.Context, q ListUsersQuery) ([]*UserResponse, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	users, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]*UserResponse, len(users))
	for i, u := range users {
		responses[i] = toResponse(u)
	}
	return responses, nil
}

func (s *ApplicationService) UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) (*UserResponse, error) {
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.Rename(req.FullName); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, u); err != nil {
		return nil, err
	}
	return toResponse(u), nil
}

// DeactivateUser disables the account; orders it placed stay intact.
func (s *ApplicationService) DeactivateUser(ctx context.Context, id int64) error {
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	u.Deactivate()
	return s.userRepo.Update(ctx, u)
}

func toResponse(u *user.User) *UserResponse {
	return &UserResponse{
		ID:         u.ID(),
		ExternalID: u.ExternalID(),
		Email:      u.Email(),
		FullName:   u.FullName(),
		IsActive:   u.IsActive(),
		CreatedAt:  u.CreatedAt(),
		UpdatedAt:  u.UpdatedAt(),
	}
}
