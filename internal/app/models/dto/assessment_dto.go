package dto

import "time"

// CreateExamRequest represents exam creation data
type CreateExamRequest struct {
	Title     string    `json:"title" binding:"required"`
	StartTime time.Time `json:"startTime" binding:"required"`
	EndTime   time.Time `json:"endTime" binding:"required"`
	LessonID  int64     `json:"lessonId" binding:"required,gt=0"`
}

// UpdateExamRequest represents exam update data
type UpdateExamRequest = CreateExamRequest

// CreateAssignmentRequest represents assignment creation data
type CreateAssignmentRequest struct {
	Title     string    `json:"title" binding:"required"`
	StartDate time.Time `json:"startDate" binding:"required"`
	DueDate   time.Time `json:"dueDate" binding:"required"`
	LessonID  int64     `json:"lessonId" binding:"required,gt=0"`
}

// UpdateAssignmentRequest represents assignment update data
type UpdateAssignmentRequest = CreateAssignmentRequest

// CreateResultRequest represents result creation data.
// Exactly one of ExamID and AssignmentID must be set.
type CreateResultRequest struct {
	Score        int    `json:"score" binding:"min=0,max=100"`
	ExamID       *int64 `json:"examId,omitempty"`
	AssignmentID *int64 `json:"assignmentId,omitempty"`
	StudentID    int64  `json:"studentId" binding:"required,gt=0"`
}

// UpdateResultRequest represents result update data
type UpdateResultRequest = CreateResultRequest

// CreateAttendanceRequest represents attendance creation data
type CreateAttendanceRequest struct {
	Date      time.Time `json:"date" binding:"required"`
	Present   *bool     `json:"present" binding:"required"`
	StudentID int64     `json:"studentId" binding:"required,gt=0"`
	LessonID  int64     `json:"lessonId" binding:"required,gt=0"`
}

// UpdateAttendanceRequest represents attendance update data
type UpdateAttendanceRequest = CreateAttendanceRequest
