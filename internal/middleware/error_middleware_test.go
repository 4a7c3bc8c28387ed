package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/emre/schoolhub/internal/app/models/dto"
	"github.com/emre/schoolhub/internal/pkg/apperrors"
)

func handleError(t *testing.T, err error) (int, dto.ErrorResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

	HandleAPIError(c, err)

	var body dto.ErrorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error response: %v", err)
	}
	return recorder.Code, body
}

func TestHandleAPIErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   dto.ErrorCode
	}{
		{"invalid credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{"disabled account", apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeForbidden},
		{"expired token", apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken},
		{"permission denied", apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden},
		{"validation failed", apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"result target unset", apperrors.ErrResultTargetUnset, http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"class capacity full", apperrors.ErrClassCapacityFull, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{"username taken", apperrors.ErrUsernameAlreadyUsed, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{"duplicate class", apperrors.ErrClassAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{"student not found", apperrors.ErrStudentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"lesson not found", apperrors.ErrLessonNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"unhandled error", errors.New("pq: connection refused"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := handleError(t, tt.err)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if body.Error == nil || body.Error.Code != tt.wantCode {
				t.Errorf("code = %v, want %v", body.Error, tt.wantCode)
			}
			if body.Success {
				t.Error("success = true on an error response")
			}
		})
	}
}

func TestHandleAPIErrorWrappedSentinel(t *testing.T) {
	wrapped := fmt.Errorf("loading exam: %w", apperrors.ErrExamNotFound)
	status, body := handleError(t, wrapped)
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for wrapped sentinel", status)
	}
	if body.Error.Message != "Exam not found" {
		t.Errorf("message = %q, want %q", body.Error.Message, "Exam not found")
	}
}

func TestHandleAPIErrorCustomMessage(t *testing.T) {
	custom := apperrors.NewValidationError("capacity below current enrollment")
	status, body := handleError(t, custom)
	if status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", status)
	}
	if body.Error.Message != "capacity below current enrollment" {
		t.Errorf("message = %q, want the custom message surfaced", body.Error.Message)
	}
}

func TestHandleAPIErrorNeverLeaksInternals(t *testing.T) {
	_, body := handleError(t, errors.New("dial tcp 10.0.0.5:5432: i/o timeout"))
	if body.Error.Message != "Internal server error" {
		t.Errorf("message = %q, internal detail leaked", body.Error.Message)
	}
}
