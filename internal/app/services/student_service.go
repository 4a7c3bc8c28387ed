package services

import (
	"context"

	"github.com/emre/schoolhub/internal/app/listquery"
	"github.com/emre/schoolhub/internal/app/models"
	"github.com/emre/schoolhub/internal/app/models/dto"
	"github.com/emre/schoolhub/internal/app/repositories"
	"github.com/emre/schoolhub/internal/cache"
	"github.com/emre/schoolhub/internal/pkg/apperrors"
	"github.com/emre/schoolhub/internal/pkg/auth"
	"github.com/emre/schoolhub/internal/pkg/helpers"
)

// StudentService handles student business logic
type StudentService struct {
	studentRepo *repositories.StudentRepository
	classRepo   *repositories.ClassRepository
	cache       *cache.Cache
}

// NewStudentService creates a new StudentService
func NewStudentService(studentRepo *repositories.StudentRepository, classRepo *repositories.ClassRepository, cacheClient *cache.Cache) *StudentService {
	return &StudentService{studentRepo: studentRepo, classRepo: classRepo, cache: cacheClient}
}

// List returns one page of students visible to the viewer
func (s *StudentService) List(ctx context.Context, params listquery.Params, viewer listquery.Viewer) ([]models.Student, dto.PaginationInfo, error) {
	students, total, err := s.studentRepo.List(ctx, params, viewer)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	page := listquery.ParsePage(params[listquery.KeyPage])
	return students, helpers.NewPaginationInfo(total, page, listquery.PageSize), nil
}

// GetByID retrieves one student
func (s *StudentService) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	return s.studentRepo.GetByID(ctx, id)
}

// Create registers a student and its login account. Enrollment is refused
// when the target class is at capacity.
func (s *StudentService) Create(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error) {
	if err := s.checkCapacity(ctx, req.ClassID); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	student := &models.Student{
		Name:      req.Name,
		Surname:   req.Surname,
		Phone:     req.Phone,
		Address:   req.Address,
		Img:       req.Img,
		BloodType: req.BloodType,
		Sex:       models.Sex(req.Sex),
		Birthday:  req.Birthday,
		GradeID:   req.GradeID,
		ClassID:   req.ClassID,
		ParentID:  req.ParentID,
	}
	account := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
		Role:     models.RoleStudent,
		IsActive: true,
	}

	id, err := s.studentRepo.Create(ctx, student, account)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cacheKeyOverview, cacheKeySexCounts)
	return s.studentRepo.GetByID(ctx, id)
}

// Update rewrites a student and its account fields
func (s *StudentService) Update(ctx context.Context, id int64, req dto.UpdateStudentRequest) (*models.Student, error) {
	current, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.ClassID != req.ClassID {
		if err := s.checkCapacity(ctx, req.ClassID); err != nil {
			return nil, err
		}
	}

	hash := ""
	if req.Password != "" {
		if hash, err = auth.HashPassword(req.Password); err != nil {
			return nil, err
		}
	}

	student := &models.Student{
		ID:        id,
		Name:      req.Name,
		Surname:   req.Surname,
		Phone:     req.Phone,
		Address:   req.Address,
		Img:       req.Img,
		BloodType: req.BloodType,
		Sex:       models.Sex(req.Sex),
		Birthday:  req.Birthday,
		GradeID:   req.GradeID,
		ClassID:   req.ClassID,
		ParentID:  req.ParentID,
	}
	if err := s.studentRepo.Update(ctx, student, req.Username, req.Email, hash); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cacheKeySexCounts)
	return s.studentRepo.GetByID(ctx, id)
}

// Delete removes a student and its login account
func (s *StudentService) Delete(ctx context.Context, id int64) error {
	if err := s.studentRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cacheKeyOverview, cacheKeySexCounts)
	return nil
}

func (s *StudentService) checkCapacity(ctx context.Context, classID int64) error {
	class, err := s.classRepo.GetByID(ctx, classID)
	if err != nil {
		return err
	}
	enrolled, err := s.classRepo.StudentCount(ctx, classID)
	if err != nil {
		return err
	}
	if enrolled >= class.Capacity {
		return apperrors.ErrClassCapacityFull
	}
	return nil
}
