package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// User errors
	ErrUserNotFound        = errors.New("user not found")
	ErrUsernameAlreadyUsed = errors.New("username already taken")
)

// Person record errors
var (
	ErrStudentNotFound = errors.New("student not found")
	ErrTeacherNotFound = errors.New("teacher not found")
	ErrParentNotFound  = errors.New("parent not found")
)

// School structure errors
var (
	ErrGradeNotFound        = errors.New("grade not found")
	ErrClassNotFound        = errors.New("class not found")
	ErrClassCapacityFull    = errors.New("class capacity reached")
	ErrSubjectNotFound      = errors.New("subject not found")
	ErrLessonNotFound       = errors.New("lesson not found")
	ErrClassAlreadyExists   = errors.New("class with this name already exists")
	ErrSubjectAlreadyExists = errors.New("subject with this name already exists")
)

// Assessment errors
var (
	ErrExamNotFound       = errors.New("exam not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrResultNotFound     = errors.New("result not found")
	ErrResultTargetUnset  = errors.New("result must reference an exam or an assignment")
)

// Attendance / bulletin errors
var (
	ErrAttendanceNotFound   = errors.New("attendance record not found")
	ErrEventNotFound        = errors.New("event not found")
	ErrAnnouncementNotFound = errors.New("announcement not found")
)

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
}

// Error implements the error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a CustomError wrapping ErrValidationFailed
func NewValidationError(message string) error {
	return &CustomError{Err: ErrValidationFailed, Message: message}
}
