package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emre/schoolhub/internal/app/models/dto"
	"github.com/emre/schoolhub/internal/pkg/apperrors"
	"github.com/emre/schoolhub/internal/pkg/logger"
)

// HandleAPIError maps application errors onto HTTP responses. Controllers
// funnel every service error through here so status codes stay consistent.
func HandleAPIError(c *gin.Context, err error) {
	var custom *apperrors.CustomError
	message := ""
	if errors.As(err, &custom) {
		message = custom.Message
	}

	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, apperrors.ErrAccountDisabled):
		respondError(c, http.StatusForbidden, dto.ErrorCodeForbidden, "Account is disabled")
	case errors.Is(err, apperrors.ErrTokenExpired):
		respondError(c, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid):
		respondError(c, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrPermissionDenied):
		respondError(c, http.StatusForbidden, dto.ErrorCodeForbidden, fallback(message, "Permission denied"))
	case errors.Is(err, apperrors.ErrValidationFailed), errors.Is(err, apperrors.ErrBadRequest):
		respondError(c, http.StatusBadRequest, dto.ErrorCodeValidationFailed, fallback(message, "Validation failed"))
	case errors.Is(err, apperrors.ErrResultTargetUnset):
		respondError(c, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Result must reference exactly one of exam or assignment")
	case errors.Is(err, apperrors.ErrClassCapacityFull):
		respondError(c, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Class capacity reached")
	case errors.Is(err, apperrors.ErrUsernameAlreadyUsed):
		respondError(c, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Username already taken")
	case errors.Is(err, apperrors.ErrClassAlreadyExists),
		errors.Is(err, apperrors.ErrSubjectAlreadyExists),
		errors.Is(err, apperrors.ErrResourceAlreadyExists),
		errors.Is(err, apperrors.ErrConflict):
		respondError(c, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists")
	case isNotFound(err):
		respondError(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, fallback(message, notFoundMessage(err)))
	default:
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled API error")
		respondError(c, http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error")
	}
}

func respondError(c *gin.Context, status int, code dto.ErrorCode, message string) {
	c.JSON(status, dto.NewErrorResponse(dto.NewErrorDetail(code, message)))
}

func fallback(message, def string) string {
	if message != "" {
		return message
	}
	return def
}

var notFoundErrors = map[error]string{
	apperrors.ErrResourceNotFound:     "Resource not found",
	apperrors.ErrUserNotFound:         "User not found",
	apperrors.ErrStudentNotFound:      "Student not found",
	apperrors.ErrTeacherNotFound:      "Teacher not found",
	apperrors.ErrParentNotFound:       "Parent not found",
	apperrors.ErrGradeNotFound:        "Grade not found",
	apperrors.ErrClassNotFound:        "Class not found",
	apperrors.ErrSubjectNotFound:      "Subject not found",
	apperrors.ErrLessonNotFound:       "Lesson not found",
	apperrors.ErrExamNotFound:         "Exam not found",
	apperrors.ErrAssignmentNotFound:   "Assignment not found",
	apperrors.ErrResultNotFound:       "Result not found",
	apperrors.ErrAttendanceNotFound:   "Attendance record not found",
	apperrors.ErrEventNotFound:        "Event not found",
	apperrors.ErrAnnouncementNotFound: "Announcement not found",
}

func isNotFound(err error) bool {
	for sentinel := range notFoundErrors {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func notFoundMessage(err error) string {
	for sentinel, message := range notFoundErrors {
		if errors.Is(err, sentinel) {
			return message
		}
	}
	return "Resource not found"
}
