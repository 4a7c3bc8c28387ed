package dto

import "time"

// CreateEventRequest represents event creation data.
// A nil ClassID publishes the event school-wide.
type CreateEventRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description" binding:"required"`
	StartTime   time.Time `json:"startTime" binding:"required"`
	EndTime     time.Time `json:"endTime" binding:"required"`
	ClassID     *int64    `json:"classId,omitempty"`
}

// UpdateEventRequest represents event update data
type UpdateEventRequest = CreateEventRequest

// CreateAnnouncementRequest represents announcement creation data
type CreateAnnouncementRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description" binding:"required"`
	Date        time.Time `json:"date" binding:"required"`
	ClassID     *int64    `json:"classId,omitempty"`
}

// UpdateAnnouncementRequest represents announcement update data
type UpdateAnnouncementRequest = CreateAnnouncementRequest
