package services

import (
	"context"

	"github.com/emre/schoolhub/internal/app/listquery"
	"github.com/emre/schoolhub/internal/app/models"
	"github.com/emre/schoolhub/internal/app/models/dto"
	"github.com/emre/schoolhub/internal/app/repositories"
	"github.com/emre/schoolhub/internal/pkg/auth"
	"github.com/emre/schoolhub/internal/pkg/helpers"
)

// ParentService handles parent business logic
type ParentService struct {
	parentRepo *repositories.ParentRepository
}

// NewParentService creates a new ParentService
func NewParentService(parentRepo *repositories.ParentRepository) *ParentService {
	return &ParentService{parentRepo: parentRepo}
}

// List returns one page of parents visible to the viewer
func (s *ParentService) List(ctx context.Context, params listquery.Params, viewer listquery.Viewer) ([]models.Parent, dto.PaginationInfo, error) {
	parents, total, err := s.parentRepo.List(ctx, params, viewer)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	page := listquery.ParsePage(params[listquery.KeyPage])
	return parents, helpers.NewPaginationInfo(total, page, listquery.PageSize), nil
}

// GetByID retrieves one parent with its children
func (s *ParentService) GetByID(ctx context.Context, id int64) (*models.Parent, error) {
	return s.parentRepo.GetByID(ctx, id)
}

// Create registers a parent and its login account
func (s *ParentService) Create(ctx context.Context, req dto.CreateParentRequest) (*models.Parent, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	parent := &models.Parent{
		Name:    req.Name,
		Surname: req.Surname,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}
	account := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
		Role:     models.RoleParent,
		IsActive: true,
	}

	id, err := s.parentRepo.Create(ctx, parent, account)
	if err != nil {
		return nil, err
	}
	return s.parentRepo.GetByID(ctx, id)
}

// Update rewrites a parent and its account fields
func (s *ParentService) Update(ctx context.Context, id int64, req dto.UpdateParentRequest) (*models.Parent, error) {
	hash := ""
	if req.Password != "" {
		var err error
		if hash, err = auth.HashPassword(req.Password); err != nil {
			return nil, err
		}
	}

	parent := &models.Parent{
		ID:      id,
		Name:    req.Name,
		Surname: req.Surname,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}
	if err := s.parentRepo.Update(ctx, parent, req.Username, hash); err != nil {
		return nil, err
	}
	return s.parentRepo.GetByID(ctx, id)
}

// Delete removes a parent and its login account
func (s *ParentService) Delete(ctx context.Context, id int64) error {
	return s.parentRepo.Delete(ctx, id)
}
