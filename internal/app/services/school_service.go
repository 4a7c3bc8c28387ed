package services

import (
	"context"

	"github.com/emre/schoolhub/internal/app/listquery"
	"github.com/emre/schoolhub/internal/app/models"
	"github.com/emre/schoolhub/internal/app/models/dto"
	"github.com/emre/schoolhub/internal/app/repositories"
	"github.com/emre/schoolhub/internal/pkg/apperrors"
	"github.com/emre/schoolhub/internal/pkg/helpers"
)

// SchoolService handles class, grade, subject and lesson business logic
type SchoolService struct {
	classRepo  *repositories.ClassRepository
	lessonRepo *repositories.LessonRepository
}

// NewSchoolService creates a new SchoolService
func NewSchoolService(classRepo *repositories.ClassRepository, lessonRepo *repositories.LessonRepository) *SchoolService {
	return &SchoolService{classRepo: classRepo, lessonRepo: lessonRepo}
}

// ----- classes -----

// ListClasses returns one page of classes visible to the viewer
func (s *SchoolService) ListClasses(ctx context.Context, params listquery.Params, viewer listquery.Viewer) ([]models.Class, dto.PaginationInfo, error) {
	classes, total, err := s.classRepo.List(ctx, params, viewer)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	page := listquery.ParsePage(params[listquery.KeyPage])
	return classes, helpers.NewPaginationInfo(total, page, listquery.PageSize), nil
}

// GetClassByID retrieves one class
func (s *SchoolService) GetClassByID(ctx context.Context, id int64) (*models.Class, error) {
	return s.classRepo.GetByID(ctx, id)
}

// CreateClass creates a class
func (s *SchoolService) CreateClass(ctx context.Context, req dto.CreateClassRequest) (*models.Class, error) {
	class := &models.Class{
		Name:         req.Name,
		Capacity:     req.Capacity,
		GradeID:      req.GradeID,
		SupervisorID: req.SupervisorID,
	}
	id, err := s.classRepo.Create(ctx, class)
	if err != nil {
		return nil, err
	}
	return s.classRepo.GetByID(ctx, id)
}

// UpdateClass rewrites a class. Shrinking capacity below the current
// enrollment is refused.
func (s *SchoolService) UpdateClass(ctx context.Context, id int64, req dto.UpdateClassRequest) (*models.Class, error) {
	enrolled, err := s.classRepo.StudentCount(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Capacity < enrolled {
		return nil, apperrors.NewValidationError("capacity cannot be below current enrollment")
	}

	class := &models.Class{
		ID:           id,
		Name:         req.Name,
		Capacity:     req.Capacity,
		GradeID:      req.GradeID,
		SupervisorID: req.SupervisorID,
	}
	if err := s.classRepo.Update(ctx, class); err != nil {
		return nil, err
	}
	return s.classRepo.GetByID(ctx, id)
}

// DeleteClass removes a class
func (s *SchoolService) DeleteClass(ctx context.Context, id int64) error {
	return s.classRepo.Delete(ctx, id)
}

// ListGrades returns every grade ordered by level
func (s *SchoolService) ListGrades(ctx context.Context) ([]models.Grade, error) {
	return s.classRepo.ListGrades(ctx)
}

// ----- subjects -----

// ListSubjects returns one page of subjects visible to the viewer
func (s *SchoolService) ListSubjects(ctx context.Context, params listquery.Params, viewer listquery.Viewer) ([]models.Subject, dto.PaginationInfo, error) {
	subjects, total, err := s.lessonRepo.ListSubjects(ctx, params, viewer)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	page := listquery.ParsePage(params[listquery.KeyPage])
	return subjects, helpers.NewPaginationInfo(total, page, listquery.PageSize), nil
}

// GetSubjectByID retrieves one subject with its teachers
func (s *SchoolService) GetSubjectByID(ctx context.Context, id int64) (*models.Subject, error) {
	return s.lessonRepo.GetSubjectByID(ctx, id)
}

// CreateSubject creates a subject with its teacher assignments
func (s *SchoolService) CreateSubject(ctx context.Context, req dto.CreateSubjectRequest) (*models.Subject, error) {
	id, err := s.lessonRepo.CreateSubject(ctx, req.Name, req.TeacherIDs)
	if err != nil {
		return nil, err
	}
	return s.lessonRepo.GetSubjectByID(ctx, id)
}

// UpdateSubject renames a subject and replaces its teacher assignments
func (s *SchoolService) UpdateSubject(ctx context.Context, id int64, req dto.UpdateSubjectRequest) (*models.Subject, error) {
	if err := s.lessonRepo.UpdateSubject(ctx, id, req.Name, req.TeacherIDs); err != nil {
		return nil, err
	}
	return s.lessonRepo.GetSubjectByID(ctx, id)
}

// DeleteSubject removes a subject
func (s *SchoolService) DeleteSubject(ctx context.Context, id int64) error {
	return s.lessonRepo.DeleteSubject(ctx, id)
}

// ----- lessons -----

// ListLessons returns one page of lessons visible to the viewer
func (s *SchoolService) ListLessons(ctx context.Context, params listquery.Params, viewer listquery.Viewer) ([]models.Lesson, dto.PaginationInfo, error) {
	lessons, total, err := s.lessonRepo.ListLessons(ctx, params, viewer)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	page := listquery.ParsePage(params[listquery.KeyPage])
	return lessons, helpers.NewPaginationInfo(total, page, listquery.PageSize), nil
}

// GetLessonByID retrieves one lesson
func (s *SchoolService) GetLessonByID(ctx context.Context, id int64) (*models.Lesson, error) {
	return s.lessonRepo.GetLessonByID(ctx, id)
}

// CreateLesson creates a lesson. The scheduled window must not be inverted.
func (s *SchoolService) CreateLesson(ctx context.Context, req dto.CreateLessonRequest) (*models.Lesson, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, apperrors.NewValidationError("endTime must be after startTime")
	}

	lesson := &models.Lesson{
		Name:      req.Name,
		Day:       models.Day(req.Day),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		SubjectID: req.SubjectID,
		ClassID:   req.ClassID,
		TeacherID: req.TeacherID,
	}
	id, err := s.lessonRepo.CreateLesson(ctx, lesson)
	if err != nil {
		return nil, err
	}
	return s.lessonRepo.GetLessonByID(ctx, id)
}

// UpdateLesson rewrites a lesson
func (s *SchoolService) UpdateLesson(ctx context.Context, id int64, req dto.UpdateLessonRequest) (*models.Lesson, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, apperrors.NewValidationError("endTime must be after startTime")
	}

	lesson := &models.Lesson{
		ID:        id,
		Name:      req.Name,
		Day:       models.Day(req.Day),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		SubjectID: req.SubjectID,
		ClassID:   req.ClassID,
		TeacherID: req.TeacherID,
	}
	if err := s.lessonRepo.UpdateLesson(ctx, lesson); err != nil {
		return nil, err
	}
	return s.lessonRepo.GetLessonByID(ctx, id)
}

// DeleteLesson removes a lesson
func (s *SchoolService) DeleteLesson(ctx context.Context, id int64) error {
	return s.lessonRepo.DeleteLesson(ctx, id)
}
