package dto

import "time"

// CreateClassRequest represents class creation data
type CreateClassRequest struct {
	Name         string `json:"name" binding:"required"`
	Capacity     int    `json:"capacity" binding:"required,gt=0"`
	GradeID      int64  `json:"gradeId" binding:"required,gt=0"`
	SupervisorID *int64 `json:"supervisorId,omitempty"`
}

// UpdateClassRequest represents class update data
type UpdateClassRequest = CreateClassRequest

// CreateSubjectRequest represents subject creation data
type CreateSubjectRequest struct {
	Name       string  `json:"name" binding:"required"`
	TeacherIDs []int64 `json:"teacherIds,omitempty"`
}

// UpdateSubjectRequest represents subject update data
type UpdateSubjectRequest = CreateSubjectRequest

// CreateLessonRequest represents lesson creation data
type CreateLessonRequest struct {
	Name      string    `json:"name" binding:"required"`
	Day       string    `json:"day" binding:"required,oneof=MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY"`
	StartTime time.Time `json:"startTime" binding:"required"`
	EndTime   time.Time `json:"endTime" binding:"required"`
	SubjectID int64     `json:"subjectId" binding:"required,gt=0"`
	ClassID   int64     `json:"classId" binding:"required,gt=0"`
	TeacherID int64     `json:"teacherId" binding:"required,gt=0"`
}

// UpdateLessonRequest represents lesson update data
type UpdateLessonRequest = CreateLessonRequest
