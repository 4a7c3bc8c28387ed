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

// BulletinService handles event and announcement business logic
type BulletinService struct {
	bulletinRepo *repositories.BulletinRepository
}

// NewBulletinService creates a new BulletinService
func NewBulletinService(bulletinRepo *repositories.BulletinRepository) *BulletinService {
	return &BulletinService{bulletinRepo: bulletinRepo}
}

// ----- events -----

// ListEvents returns one page of events visible to the viewer
func (s *BulletinService) ListEvents(ctx context.Context, params listquery.Params, viewer listquery.Viewer) ([]models.Event, dto.PaginationInfo, error) {
	events, total, err := s.bulletinRepo.ListEvents(ctx, params, viewer)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	page := listquery.ParsePage(params[listquery.KeyPage])
	return events, helpers.NewPaginationInfo(total, page, listquery.PageSize), nil
}

// GetEventByID retrieves one event
func (s *BulletinService) GetEventByID(ctx context.Context, id int64) (*models.Event, error) {
	return s.bulletinRepo.GetEventByID(ctx, id)
}

// CreateEvent publishes an event, school-wide when no class is given
func (s *BulletinService) CreateEvent(ctx context.Context, req dto.CreateEventRequest) (*models.Event, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, apperrors.NewValidationError("endTime must be after startTime")
	}

	event := &models.Event{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		ClassID:     req.ClassID,
	}
	id, err := s.bulletinRepo.CreateEvent(ctx, event)
	if err != nil {
		return nil, err
	}
	return s.bulletinRepo.GetEventByID(ctx, id)
}

// UpdateEvent rewrites an event
func (s *BulletinService) UpdateEvent(ctx context.Context, id int64, req dto.UpdateEventRequest) (*models.Event, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, apperrors.NewValidationError("endTime must be after startTime")
	}

	event := &models.Event{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		ClassID:     req.ClassID,
	}
	if err := s.bulletinRepo.UpdateEvent(ctx, event); err != nil {
		return nil, err
	}
	return s.bulletinRepo.GetEventByID(ctx, id)
}

// DeleteEvent removes an event
func (s *BulletinService) DeleteEvent(ctx context.Context, id int64) error {
	return s.bulletinRepo.DeleteEvent(ctx, id)
}

// ----- announcements -----

// ListAnnouncements returns one page of announcements visible to the viewer
func (s *BulletinService) ListAnnouncements(ctx context.Context, params listquery.Params, viewer listquery.Viewer) ([]models.Announcement, dto.PaginationInfo, error) {
	announcements, total, err := s.bulletinRepo.ListAnnouncements(ctx, params, viewer)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	page := listquery.ParsePage(params[listquery.KeyPage])
	return announcements, helpers.NewPaginationInfo(total, page, listquery.PageSize), nil
}

// GetAnnouncementByID retrieves one announcement
func (s *BulletinService) GetAnnouncementByID(ctx context.Context, id int64) (*models.Announcement, error) {
	return s.bulletinRepo.GetAnnouncementByID(ctx, id)
}

// CreateAnnouncement publishes an announcement, school-wide when no class is given
func (s *BulletinService) CreateAnnouncement(ctx context.Context, req dto.CreateAnnouncementRequest) (*models.Announcement, error) {
	announcement := &models.Announcement{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		ClassID:     req.ClassID,
	}
	id, err := s.bulletinRepo.CreateAnnouncement(ctx, announcement)
	if err != nil {
		return nil, err
	}
	return s.bulletinRepo.GetAnnouncementByID(ctx, id)
}

// UpdateAnnouncement rewrites an announcement
func (s *BulletinService) UpdateAnnouncement(ctx context.Context, id int64, req dto.UpdateAnnouncementRequest) (*models.Announcement, error) {
	announcement := &models.Announcement{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		ClassID:     req.ClassID,
	}
	if err := s.bulletinRepo.UpdateAnnouncement(ctx, announcement); err != nil {
		return nil, err
	}
	return s.bulletinRepo.GetAnnouncementByID(ctx, id)
}

// DeleteAnnouncement removes an announcement
func (s *BulletinService) DeleteAnnouncement(ctx context.Context, id int64) error {
	return s.bulletinRepo.DeleteAnnouncement(ctx, id)
}
