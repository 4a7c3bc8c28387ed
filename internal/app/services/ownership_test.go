package services

import (
	"context"
	"errors"
	"testing"

	"github.com/emre/schoolhub/internal/app/listquery"
	"github.com/emre/schoolhub/internal/app/models"
	"github.com/emre/schoolhub/internal/pkg/apperrors"
)

func TestCanMutateLesson(t *testing.T) {
	lesson := &models.Lesson{ID: 3, TeacherID: 7}

	tests := []struct {
		name    string
		viewer  listquery.Viewer
		wantErr error
	}{
		{"admin may always write", listquery.Viewer{Role: models.RoleAdmin}, nil},
		{"owning teacher may write", listquery.Viewer{Role: models.RoleTeacher, PersonID: 7}, nil},
		{"other teacher is denied", listquery.Viewer{Role: models.RoleTeacher, PersonID: 8}, apperrors.ErrPermissionDenied},
		{"student is denied", listquery.Viewer{Role: models.RoleStudent, PersonID: 7}, apperrors.ErrPermissionDenied},
		{"parent is denied", listquery.Viewer{Role: models.RoleParent, PersonID: 7}, apperrors.ErrPermissionDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := canMutateLesson(tt.viewer, lesson)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("canMutateLesson() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAssertLessonWritableChecksRoleBeforeStore(t *testing.T) {
	// a nil repository: the role gate must answer before any lookup runs
	err := assertLessonWritable(context.Background(), nil, 3, listquery.Viewer{Role: models.RoleStudent, PersonID: 3})
	if !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("student write = %v, want ErrPermissionDenied", err)
	}

	if err := assertLessonWritable(context.Background(), nil, 3, listquery.Viewer{Role: models.RoleAdmin}); err != nil {
		t.Errorf("admin write = %v, want nil", err)
	}
}
