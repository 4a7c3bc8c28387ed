package services

import (
	"context"

	"github.com/emre/schoolhub/internal/app/listquery"
	"github.com/emre/schoolhub/internal/app/models"
	"github.com/emre/schoolhub/internal/app/repositories"
	"github.com/emre/schoolhub/internal/pkg/apperrors"
)

// canMutateLesson is the ownership rule behind every staff write to exams,
// assignments, results and attendance: admins may always write, a teacher
// only against lessons they teach.
func canMutateLesson(viewer listquery.Viewer, lesson *models.Lesson) error {
	switch {
	case viewer.Role == models.RoleAdmin:
		return nil
	case viewer.Role == models.RoleTeacher && lesson.TeacherID == viewer.PersonID:
		return nil
	}
	return apperrors.ErrPermissionDenied
}

// assertLessonWritable resolves lessonID and applies canMutateLesson.
// Admins skip the lookup entirely.
func assertLessonWritable(ctx context.Context, lessonRepo *repositories.LessonRepository, lessonID int64, viewer listquery.Viewer) error {
	if viewer.Role == models.RoleAdmin {
		return nil
	}
	if viewer.Role != models.RoleTeacher {
		return apperrors.ErrPermissionDenied
	}
	lesson, err := lessonRepo.GetLessonByID(ctx, lessonID)
	if err != nil {
		return err
	}
	return canMutateLesson(viewer, lesson)
}
