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

// TeacherService handles teacher business logic
type TeacherService struct {
	teacherRepo *repositories.TeacherRepository
}

// NewTeacherService creates a new TeacherService
func NewTeacherService(teacherRepo *repositories.TeacherRepository) *TeacherService {
	return &TeacherService{teacherRepo: teacherRepo}
}

// List returns one page of teachers visible to the viewer
func (s *TeacherService) List(ctx context.Context, params listquery.Params, viewer listquery.Viewer) ([]models.Teacher, dto.PaginationInfo, error) {
	teachers, total, err := s.teacherRepo.List(ctx, params, viewer)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	page := listquery.ParsePage(params[listquery.KeyPage])
	return teachers, helpers.NewPaginationInfo(total, page, listquery.PageSize), nil
}

// GetByID retrieves one teacher with its subjects
func (s *TeacherService) GetByID(ctx context.Context, id int64) (*models.Teacher, error) {
	return s.teacherRepo.GetByID(ctx, id)
}

// Create registers a teacher, its login account and its subject assignments
func (s *TeacherService) Create(ctx context.Context, req dto.CreateTeacherRequest) (*models.Teacher, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	teacher := &models.Teacher{
		Name:      req.Name,
		Surname:   req.Surname,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Img:       req.Img,
		BloodType: req.BloodType,
		Sex:       models.Sex(req.Sex),
		Birthday:  req.Birthday,
	}
	account := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
		Role:     models.RoleTeacher,
		IsActive: true,
	}

	id, err := s.teacherRepo.Create(ctx, teacher, account, req.SubjectIDs)
	if err != nil {
		return nil, err
	}
	return s.teacherRepo.GetByID(ctx, id)
}

// Update rewrites a teacher, its account fields and subject assignments
func (s *TeacherService) Update(ctx context.Context, id int64, req dto.UpdateTeacherRequest) (*models.Teacher, error) {
	hash := ""
	if req.Password != "" {
		var err error
		if hash, err = auth.HashPassword(req.Password); err != nil {
			return nil, err
		}
	}

	teacher := &models.Teacher{
		ID:        id,
		Name:      req.Name,
		Surname:   req.Surname,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Img:       req.Img,
		BloodType: req.BloodType,
		Sex:       models.Sex(req.Sex),
		Birthday:  req.Birthday,
	}
	if err := s.teacherRepo.Update(ctx, teacher, req.Username, hash, req.SubjectIDs); err != nil {
		return nil, err
	}
	return s.teacherRepo.GetByID(ctx, id)
}

// Delete removes a teacher and its login account
func (s *TeacherService) Delete(ctx context.Context, id int64) error {
	return s.teacherRepo.Delete(ctx, id)
}
