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

// AssessmentService handles exam, assignment and result business logic.
// Writes from teachers are accepted only against lessons they teach.
type AssessmentService struct {
	assessmentRepo *repositories.AssessmentRepository
	lessonRepo     *repositories.LessonRepository
}

// NewAssessmentService creates a new AssessmentService
func NewAssessmentService(assessmentRepo *repositories.AssessmentRepository, lessonRepo *repositories.LessonRepository) *AssessmentService {
	return &AssessmentService{assessmentRepo: assessmentRepo, lessonRepo: lessonRepo}
}

// resultLessonID resolves the lesson a result hangs off via its exam or
// assignment target
func (s *AssessmentService) resultLessonID(ctx context.Context, examID, assignmentID *int64) (int64, error) {
	switch {
	case examID != nil:
		exam, err := s.assessmentRepo.GetExamByID(ctx, *examID)
		if err != nil {
			return 0, err
		}
		return exam.LessonID, nil
	case assignmentID != nil:
		assignment, err := s.assessmentRepo.GetAssignmentByID(ctx, *assignmentID)
		if err != nil {
			return 0, err
		}
		return assignment.LessonID, nil
	}
	return 0, apperrors.ErrResultTargetUnset
}

func (s *AssessmentService) assertResultWritable(ctx context.Context, examID, assignmentID *int64, viewer listquery.Viewer) error {
	if viewer.Role == models.RoleAdmin {
		return nil
	}
	lessonID, err := s.resultLessonID(ctx, examID, assignmentID)
	if err != nil {
		return err
	}
	return assertLessonWritable(ctx, s.lessonRepo, lessonID, viewer)
}

// ----- exams -----

// ListExams returns one page of exams visible to the viewer
func (s *AssessmentService) ListExams(ctx context.Context, params listquery.Params, viewer listquery.Viewer) ([]models.Exam, dto.PaginationInfo, error) {
	exams, total, err := s.assessmentRepo.ListExams(ctx, params, viewer)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	page := listquery.ParsePage(params[listquery.KeyPage])
	return exams, helpers.NewPaginationInfo(total, page, listquery.PageSize), nil
}

// GetExamByID retrieves one exam
func (s *AssessmentService) GetExamByID(ctx context.Context, id int64) (*models.Exam, error) {
	return s.assessmentRepo.GetExamByID(ctx, id)
}

// CreateExam creates an exam on a lesson the viewer may write to
func (s *AssessmentService) CreateExam(ctx context.Context, req dto.CreateExamRequest, viewer listquery.Viewer) (*models.Exam, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, apperrors.NewValidationError("endTime must be after startTime")
	}
	if err := assertLessonWritable(ctx, s.lessonRepo, req.LessonID, viewer); err != nil {
		return nil, err
	}

	exam := &models.Exam{
		Title:     req.Title,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		LessonID:  req.LessonID,
	}
	id, err := s.assessmentRepo.CreateExam(ctx, exam)
	if err != nil {
		return nil, err
	}
	return s.assessmentRepo.GetExamByID(ctx, id)
}

// UpdateExam rewrites an exam. The viewer must own both the current lesson
// and the one the request moves the exam to.
func (s *AssessmentService) UpdateExam(ctx context.Context, id int64, req dto.UpdateExamRequest, viewer listquery.Viewer) (*models.Exam, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, apperrors.NewValidationError("endTime must be after startTime")
	}
	current, err := s.assessmentRepo.GetExamByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := assertLessonWritable(ctx, s.lessonRepo, current.LessonID, viewer); err != nil {
		return nil, err
	}
	if req.LessonID != current.LessonID {
		if err := assertLessonWritable(ctx, s.lessonRepo, req.LessonID, viewer); err != nil {
			return nil, err
		}
	}

	exam := &models.Exam{
		ID:        id,
		Title:     req.Title,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		LessonID:  req.LessonID,
	}
	if err := s.assessmentRepo.UpdateExam(ctx, exam); err != nil {
		return nil, err
	}
	return s.assessmentRepo.GetExamByID(ctx, id)
}

// DeleteExam removes an exam the viewer may write to
func (s *AssessmentService) DeleteExam(ctx context.Context, id int64, viewer listquery.Viewer) error {
	if viewer.Role != models.RoleAdmin {
		current, err := s.assessmentRepo.GetExamByID(ctx, id)
		if err != nil {
			return err
		}
		if err := assertLessonWritable(ctx, s.lessonRepo, current.LessonID, viewer); err != nil {
			return err
		}
	}
	return s.assessmentRepo.DeleteExam(ctx, id)
}

// ----- assignments -----

// ListAssignments returns one page of assignments visible to the viewer
func (s *AssessmentService) ListAssignments(ctx context.Context, params listquery.Params, viewer listquery.Viewer) ([]models.Assignment, dto.PaginationInfo, error) {
	assignments, total, err := s.assessmentRepo.ListAssignments(ctx, params, viewer)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	page := listquery.ParsePage(params[listquery.KeyPage])
	return assignments, helpers.NewPaginationInfo(total, page, listquery.PageSize), nil
}

// GetAssignmentByID retrieves one assignment
func (s *AssessmentService) GetAssignmentByID(ctx context.Context, id int64) (*models.Assignment, error) {
	return s.assessmentRepo.GetAssignmentByID(ctx, id)
}

// CreateAssignment creates an assignment on a lesson the viewer may write to
func (s *AssessmentService) CreateAssignment(ctx context.Context, req dto.CreateAssignmentRequest, viewer listquery.Viewer) (*models.Assignment, error) {
	if !req.DueDate.After(req.StartDate) {
		return nil, apperrors.NewValidationError("dueDate must be after startDate")
	}
	if err := assertLessonWritable(ctx, s.lessonRepo, req.LessonID, viewer); err != nil {
		return nil, err
	}

	assignment := &models.Assignment{
		Title:     req.Title,
		StartDate: req.StartDate,
		DueDate:   req.DueDate,
		LessonID:  req.LessonID,
	}
	id, err := s.assessmentRepo.CreateAssignment(ctx, assignment)
	if err != nil {
		return nil, err
	}
	return s.assessmentRepo.GetAssignmentByID(ctx, id)
}

// UpdateAssignment rewrites an assignment under the same ownership rule as
// UpdateExam
func (s *AssessmentService) UpdateAssignment(ctx context.Context, id int64, req dto.UpdateAssignmentRequest, viewer listquery.Viewer) (*models.Assignment, error) {
	if !req.DueDate.After(req.StartDate) {
		return nil, apperrors.NewValidationError("dueDate must be after startDate")
	}
	current, err := s.assessmentRepo.GetAssignmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := assertLessonWritable(ctx, s.lessonRepo, current.LessonID, viewer); err != nil {
		return nil, err
	}
	if req.LessonID != current.LessonID {
		if err := assertLessonWritable(ctx, s.lessonRepo, req.LessonID, viewer); err != nil {
			return nil, err
		}
	}

	assignment := &models.Assignment{
		ID:        id,
		Title:     req.Title,
		StartDate: req.StartDate,
		DueDate:   req.DueDate,
		LessonID:  req.LessonID,
	}
	if err := s.assessmentRepo.UpdateAssignment(ctx, assignment); err != nil {
		return nil, err
	}
	return s.assessmentRepo.GetAssignmentByID(ctx, id)
}

// DeleteAssignment removes an assignment the viewer may write to
func (s *AssessmentService) DeleteAssignment(ctx context.Context, id int64, viewer listquery.Viewer) error {
	if viewer.Role != models.RoleAdmin {
		current, err := s.assessmentRepo.GetAssignmentByID(ctx, id)
		if err != nil {
			return err
		}
		if err := assertLessonWritable(ctx, s.lessonRepo, current.LessonID, viewer); err != nil {
			return err
		}
	}
	return s.assessmentRepo.DeleteAssignment(ctx, id)
}

// ----- results -----

// ListResults returns one page of results visible to the viewer
func (s *AssessmentService) ListResults(ctx context.Context, params listquery.Params, viewer listquery.Viewer) ([]models.Result, dto.PaginationInfo, error) {
	results, total, err := s.assessmentRepo.ListResults(ctx, params, viewer)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	page := listquery.ParsePage(params[listquery.KeyPage])
	return results, helpers.NewPaginationInfo(total, page, listquery.PageSize), nil
}

// ListResultsSized serves the export path with an explicit window size
func (s *AssessmentService) ListResultsSized(ctx context.Context, params listquery.Params, viewer listquery.Viewer, pageSize int) ([]models.Result, int, error) {
	return s.assessmentRepo.ListResultsSized(ctx, params, viewer, pageSize)
}

// GetResultByID retrieves one result
func (s *AssessmentService) GetResultByID(ctx context.Context, id int64) (*models.Result, error) {
	return s.assessmentRepo.GetResultByID(ctx, id)
}

// CreateResult records a score against an exam or an assignment. The viewer
// must own the lesson the target belongs to.
func (s *AssessmentService) CreateResult(ctx context.Context, req dto.CreateResultRequest, viewer listquery.Viewer) (*models.Result, error) {
	if err := s.assertResultWritable(ctx, req.ExamID, req.AssignmentID, viewer); err != nil {
		return nil, err
	}

	result := &models.Result{
		Score:        req.Score,
		ExamID:       req.ExamID,
		AssignmentID: req.AssignmentID,
		StudentID:    req.StudentID,
	}
	id, err := s.assessmentRepo.CreateResult(ctx, result)
	if err != nil {
		return nil, err
	}
	return s.assessmentRepo.GetResultByID(ctx, id)
}

// UpdateResult rewrites a result. Both the stored target and the requested
// one must belong to lessons the viewer may write to.
func (s *AssessmentService) UpdateResult(ctx context.Context, id int64, req dto.UpdateResultRequest, viewer listquery.Viewer) (*models.Result, error) {
	if viewer.Role != models.RoleAdmin {
		current, err := s.assessmentRepo.GetResultByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := s.assertResultWritable(ctx, current.ExamID, current.AssignmentID, viewer); err != nil {
			return nil, err
		}
		if err := s.assertResultWritable(ctx, req.ExamID, req.AssignmentID, viewer); err != nil {
			return nil, err
		}
	}

	result := &models.Result{
		ID:           id,
		Score:        req.Score,
		ExamID:       req.ExamID,
		AssignmentID: req.AssignmentID,
		StudentID:    req.StudentID,
	}
	if err := s.assessmentRepo.UpdateResult(ctx, result); err != nil {
		return nil, err
	}
	return s.assessmentRepo.GetResultByID(ctx, id)
}

// DeleteResult removes a result the viewer may write to
func (s *AssessmentService) DeleteResult(ctx context.Context, id int64, viewer listquery.Viewer) error {
	if viewer.Role != models.RoleAdmin {
		current, err := s.assessmentRepo.GetResultByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.assertResultWritable(ctx, current.ExamID, current.AssignmentID, viewer); err != nil {
			return err
		}
	}
	return s.assessmentRepo.DeleteResult(ctx, id)
}
