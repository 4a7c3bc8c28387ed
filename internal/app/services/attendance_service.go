package services

import (
	"context"

	"github.com/emre/schoolhub/internal/app/listquery"
	"github.com/emre/schoolhub/internal/app/models"
	"github.com/emre/schoolhub/internal/app/models/dto"
	"github.com/emre/schoolhub/internal/app/repositories"
	"github.com/emre/schoolhub/internal/cache"
	"github.com/emre/schoolhub/internal/pkg/helpers"
)

// AttendanceService handles attendance business logic. Teachers may only
// record attendance for lessons they teach.
type AttendanceService struct {
	attendanceRepo *repositories.AttendanceRepository
	lessonRepo     *repositories.LessonRepository
	cache          *cache.Cache
}

// NewAttendanceService creates a new AttendanceService
func NewAttendanceService(attendanceRepo *repositories.AttendanceRepository, lessonRepo *repositories.LessonRepository, cacheClient *cache.Cache) *AttendanceService {
	return &AttendanceService{attendanceRepo: attendanceRepo, lessonRepo: lessonRepo, cache: cacheClient}
}

// List returns one page of attendance records visible to the viewer
func (s *AttendanceService) List(ctx context.Context, params listquery.Params, viewer listquery.Viewer) ([]models.Attendance, dto.PaginationInfo, error) {
	records, total, err := s.attendanceRepo.List(ctx, params, viewer)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	page := listquery.ParsePage(params[listquery.KeyPage])
	return records, helpers.NewPaginationInfo(total, page, listquery.PageSize), nil
}

// ListSized serves the export path with an explicit window size
func (s *AttendanceService) ListSized(ctx context.Context, params listquery.Params, viewer listquery.Viewer, pageSize int) ([]models.Attendance, int, error) {
	return s.attendanceRepo.ListSized(ctx, params, viewer, pageSize)
}

// GetByID retrieves one attendance record
func (s *AttendanceService) GetByID(ctx context.Context, id int64) (*models.Attendance, error) {
	return s.attendanceRepo.GetByID(ctx, id)
}

// Create records attendance for one student in a lesson the viewer teaches
func (s *AttendanceService) Create(ctx context.Context, req dto.CreateAttendanceRequest, viewer listquery.Viewer) (*models.Attendance, error) {
	if err := assertLessonWritable(ctx, s.lessonRepo, req.LessonID, viewer); err != nil {
		return nil, err
	}

	record := &models.Attendance{
		Date:      req.Date,
		Present:   *req.Present,
		StudentID: req.StudentID,
		LessonID:  req.LessonID,
	}
	id, err := s.attendanceRepo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cacheKeyAttendance)
	return s.attendanceRepo.GetByID(ctx, id)
}

// Update rewrites an attendance record. The viewer must own both the stored
// lesson and the one the request points at.
func (s *AttendanceService) Update(ctx context.Context, id int64, req dto.UpdateAttendanceRequest, viewer listquery.Viewer) (*models.Attendance, error) {
	if viewer.Role != models.RoleAdmin {
		current, err := s.attendanceRepo.GetByID(ctx, id)
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
	}

	record := &models.Attendance{
		ID:        id,
		Date:      req.Date,
		Present:   *req.Present,
		StudentID: req.StudentID,
		LessonID:  req.LessonID,
	}
	if err := s.attendanceRepo.Update(ctx, record); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cacheKeyAttendance)
	return s.attendanceRepo.GetByID(ctx, id)
}

// Delete removes an attendance record the viewer may write to
func (s *AttendanceService) Delete(ctx context.Context, id int64, viewer listquery.Viewer) error {
	if viewer.Role != models.RoleAdmin {
		current, err := s.attendanceRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := assertLessonWritable(ctx, s.lessonRepo, current.LessonID, viewer); err != nil {
			return err
		}
	}
	if err := s.attendanceRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cacheKeyAttendance)
	return nil
}
