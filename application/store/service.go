// Package store exposes the seller store directory operations.
package store

import (
	"context"
	"time"

	"github.com/lumapp/marketplace/domain/store"
)

// CreateStoreRequest opens a storefront.
type CreateStoreRequest struct {
	OwnerID     int64  `json:"owner_id" binding:"required,min=1"`
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Description string `json:"description"`
}

// UpdateStoreRequest renames a storefront.
type UpdateStoreRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// ListStoresQuery mirrors the list endpoint's paging parameters.
type ListStoresQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// StoreResponse is the store directory view.
type StoreResponse struct {
	ID          int64     `json:"id"`
	ExternalID  string    `json:"external_id"`
	OwnerID     int64     `json:"owner_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ApplicationService coordinates store directory writes and reads.
type ApplicationService struct {
	storeRepo store.Repository
}

func NewApplicationService(storeRepo store.Repository) *ApplicationService {
	return &ApplicationService{storeRepo: storeRepo}
}

// CreateStore opens a storefront; a taken slug surfaces as a conflict.
func (s *ApplicationService) CreateStore(ctx context.Context, req CreateStoreRequest) (*StoreResponse, error) {
	st, err := store.NewStore(req.OwnerID, req.Name, req.Slug, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.storeRepo.Create(ctx, st); err != nil {
		return nil, err
	}

	created, err := s.storeRepo.FindBySlug(ctx, st.Slug())
	if err != nil {
		return nil, err
	}
	return toResponse(created), nil
}

func (s *ApplicationService) GetStore(ctx context.Context, id int64) (*StoreResponse, error) {
	st, err := s.storeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(st), nil
}

func (s *ApplicationService) GetStoreBySlug(ctx context.Context, slug string) (*StoreResponse, error) {
	st, err := s.storeRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return toResponse(st), nil
}

func (s *ApplicationService) ListStores(ctx context.Context, q ListStoresQuery) ([]*StoreResponse, error) {
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

	stores, err := s.storeRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]*StoreResponse, len(stores))
	for i, st := range stores {
		responses[i] = toResponse(st)
	}
	return responses, nil
}

func (s *ApplicationService) UpdateStore(ctx context.Context, id int64, req UpdateStoreRequest) (*StoreResponse, error) {
	st, err := s.storeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := st.Rename(req.Name, req.Description); err != nil {
		return nil, err
	}
	if err := s.storeRepo.Update(ctx, st); err != nil {
		return nil, err
	}
	return toResponse(st), nil
}

// DeactivateStore closes a storefront without removing its history.
func (s *ApplicationService) DeactivateStore(ctx context.Context, id int64) error {
	st, err := s.storeRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	st.Deactivate()
	return s.storeRepo.Update(ctx, st)
}

func toResponse(st *store.Store) *StoreResponse {
	return &StoreResponse{
		ID:          st.ID(),
		ExternalID:  st.ExternalID(),
		OwnerID:     st.OwnerID(),
		Name:        st.Name(),
		Slug:        st.Slug(),
		Description: st.Description(),
		IsActive:    st.IsActive(),
		CreatedAt:   st.CreatedAt(),
		UpdatedAt:   st.UpdatedAt(),
	}
}
