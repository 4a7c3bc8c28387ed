package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/schoolhub/internal/app/listquery"
	"github.com/emre/schoolhub/internal/app/models"
	"github.com/emre/schoolhub/internal/pkg/apperrors"
	"github.com/emre/schoolhub/internal/pkg/logger"
)

// LessonRepository handles subject and lesson database operations
type LessonRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewLessonRepository creates a new LessonRepository
func NewLessonRepository(db *pgxpool.Pool) *LessonRepository {
	return &LessonRepository{db: db, sb: statementBuilder()}
}

// SubjectListSpec declares the subject list endpoint
func SubjectListSpec() listquery.Spec {
	return listquery.Spec{
		SearchColumns: []string{"sub.name"},
		Filters: map[string]listquery.FilterFunc{
			"teacherId": intExpr("sub.id IN (SELECT st.subject_id FROM subject_teachers st WHERE st.teacher_id = ?)"),
		},
		Sorts: map[string]string{
			"name": "sub.name",
		},
		DefaultOrder: []string{"sub.name ASC"},
		TieBreak:     "sub.id ASC",
		Scope:        subjectScope,
	}
}

// subjectScope: a teacher sees subjects they are assigned to, a student the
// subjects taught to its class, a parent those taught to any of their children.
func subjectScope(v listquery.Viewer) squirrel.Sqlizer {
	switch v.Role {
	case models.RoleTeacher:
		return squirrel.Expr("sub.id IN (SELECT st.subject_id FROM subject_teachers st WHERE st.teacher_id = ?)", v.PersonID)
	case models.RoleStudent:
		return squirrel.Expr(
			"sub.id IN (SELECT l.subject_id FROM lessons l JOIN students s ON s.class_id = l.class_id WHERE s.id = ?)",
			v.PersonID,
		)
	case models.RoleParent:
		return squirrel.Expr(
			"sub.id IN (SELECT l.subject_id FROM lessons l JOIN students s ON s.class_id = l.class_id WHERE s.parent_id = ?)",
			v.PersonID,
		)
	}
	return listquery.MatchNone()
}

// weekdayOrder sorts the day enum in school-week order instead of lexically
const weekdayOrder = "array_position(ARRAY['MONDAY','TUESDAY','WEDNESDAY','THURSDAY','FRIDAY'], l.day)"

// LessonListSpec declares the lesson list endpoint
func LessonListSpec() listquery.Spec {
	return listquery.Spec{
		SearchColumns: []string{"l.name", "sub.name", "t.name", "t.surname"},
		Filters: map[string]listquery.FilterFunc{
			"classId":   listquery.IntColumn("l.class_id"),
			"teacherId": listquery.IntColumn("l.teacher_id"),
			"subjectId": listquery.IntColumn("l.subject_id"),
			"day":       listquery.EnumColumn("l.day", "MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY"),
		},
		Sorts: map[string]string{
			"name":        "l.name",
			"day":         weekdayOrder,
			"startTime":   "l.start_time",
			"subjectName": "sub.name",
			"className":   "c.name",
		},
		DefaultOrder: []string{weekdayOrder + " ASC", "l.start_time ASC"},
		TieBreak:     "l.id ASC",
		Scope:        lessonScope,
	}
}

// lessonScope: a teacher sees its own lessons, a student its class schedule,
// a parent the schedules of their children.
func lessonScope(v listquery.Viewer) squirrel.Sqlizer {
	switch v.Role {
	case models.RoleTeacher:
		return squirrel.Eq{"l.teacher_id": v.PersonID}
	case models.RoleStudent:
		return squirrel.Expr("l.class_id IN (SELECT s.class_id FROM students s WHERE s.id = ?)", v.PersonID)
	case models.RoleParent:
		return squirrel.Expr("l.class_id IN (SELECT s.class_id FROM students s WHERE s.parent_id = ?)", v.PersonID)
	}
	return listquery.MatchNone()
}

// ----- subjects -----

// ListSubjects returns one page of subjects plus the total matching count
func (r *LessonRepository) ListSubjects(ctx context.Context, params listquery.Params, viewer listquery.Viewer) ([]models.Subject, int, error) {
	q := SubjectListSpec().Build(params, viewer)

	countQ := r.sb.Select("COUNT(*)").From("subjects sub").Where(q.Where)
	total, err := queryCount(ctx, r.db, countQ)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []models.Subject{}, 0, nil
	}

	sel := r.sb.Select("sub.id", "sub.name").From("subjects sub")
	sql, args, err := applyListQuery(sel, q).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list subjects query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query subjects: %w", err)
	}
	defer rows.Close()

	subjects, err := scanSubjectRows(rows)
	if err != nil {
		return nil, 0, err
	}

	// subject lists are short enough to hydrate teachers per page
	for i := range subjects {
		teachers, err := r.teachersOf(ctx, subjects[i].ID)
		if err != nil {
			return nil, 0, err
		}
		subjects[i].Teachers = teachers
	}
	return subjects, total, nil
}

// SearchSubjects returns up to limit subjects matching q, scoped to the viewer
func (r *LessonRepository) SearchSubjects(ctx context.Context, q string, viewer listquery.Viewer, limit uint64) ([]models.Subject, error) {
	where := SubjectListSpec().SearchWhere(q, viewer)

	sql, args, err := r.sb.Select("sub.id", "sub.name").
		From("subjects sub").
		Where(where).
		OrderBy("sub.name ASC", "sub.id ASC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build search subjects query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search subjects: %w", err)
	}
	defer rows.Close()

	return scanSubjectRows(rows)
}

func scanSubjectRows(rows pgx.Rows) ([]models.Subject, error) {
	var subjects []models.Subject
	for rows.Next() {
		var subject models.Subject
		if err := rows.Scan(&subject.ID, &subject.Name); err != nil {
			return nil, fmt.Errorf("failed to scan subject row: %w", err)
		}
		subjects = append(subjects, subject)
	}
	return subjects, rows.Err()
}

func (r *LessonRepository) teachersOf(ctx context.Context, subjectID int64) ([]models.Teacher, error) {
	sql, args, err := r.sb.Select("t.id", "t.name", "t.surname").
		From("teachers t").
		Join("subject_teachers st ON st.teacher_id = t.id").
		Where(squirrel.Eq{"st.subject_id": subjectID}).
		OrderBy("t.surname ASC", "t.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build subject teachers query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query subject teachers: %w", err)
	}
	defer rows.Close()

	var teachers []models.Teacher
	for rows.Next() {
		var t models.Teacher
		if err := rows.Scan(&t.ID, &t.Name, &t.Surname); err != nil {
			return nil, fmt.Errorf("failed to scan teacher row: %w", err)
		}
		teachers = append(teachers, t)
	}
	return teachers, rows.Err()
}

// GetSubjectByID retrieves a subject with its assigned teachers
func (r *LessonRepository) GetSubjectByID(ctx context.Context, id int64) (*models.Subject, error) {
	sql, args, err := r.sb.Select("id", "name").From("subjects").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get subject query: %w", err)
	}

	var subject models.Subject
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&subject.ID, &subject.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSubjectNotFound
		}
		return nil, fmt.Errorf("failed to query subject ID=%d: %w", id, err)
	}

	teachers, err := r.teachersOf(ctx, id)
	if err != nil {
		return nil, err
	}
	subject.Teachers = teachers
	return &subject, nil
}

// CreateSubject inserts a subject and its teacher assignments
func (r *LessonRepository) CreateSubject(ctx context.Context, name string, teacherIDs []int64) (int64, error) {
	var id int64
	err := runInTx(ctx, r.db, func(tx pgx.Tx) error {
		sql, args, err := r.sb.Insert("subjects").
			Columns("name").
			Values(name).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create subject query: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
			if isUniqueViolation(err) {
				return apperrors.ErrSubjectAlreadyExists
			}
			return fmt.Errorf("error inserting subject: %w", err)
		}
		return r.setTeachersTx(ctx, tx, id, teacherIDs)
	})
	if err != nil {
		return 0, err
	}

	logger.Info().Int64("subjectID", id).Msg("Subject created")
	return id, nil
}

// UpdateSubject renames a subject and replaces its teacher assignments
func (r *LessonRepository) UpdateSubject(ctx context.Context, id int64, name string, teacherIDs []int64) error {
	return runInTx(ctx, r.db, func(tx pgx.Tx) error {
		sql, args, err := r.sb.Update("subjects").
			Set("name", name).
			Where(squirrel.Eq{"id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build update subject query: %w", err)
		}
		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.ErrSubjectAlreadyExists
			}
			return fmt.Errorf("error updating subject ID=%d: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrSubjectNotFound
		}
		return r.setTeachersTx(ctx, tx, id, teacherIDs)
	})
}

// DeleteSubject removes a subject; lessons referencing it cascade at the store
func (r *LessonRepository) DeleteSubject(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("subjects").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete subject query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting subject ID=%d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSubjectNotFound
	}

	logger.Info().Int64("subjectID", id).Msg("Subject deleted")
	return nil
}

func (r *LessonRepository) setTeachersTx(ctx context.Context, tx pgx.Tx, subjectID int64, teacherIDs []int64) error {
	delSQL, delArgs, err := r.sb.Delete("subject_teachers").
		Where(squirrel.Eq{"subject_id": subjectID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build clear subject teachers query: %w", err)
	}
	if _, err := tx.Exec(ctx, delSQL, delArgs...); err != nil {
		return fmt.Errorf("error clearing subject teachers: %w", err)
	}
	if len(teacherIDs) == 0 {
		return nil
	}

	insert := r.sb.Insert("subject_teachers").Columns("subject_id", "teacher_id")
	for _, teacherID := range teacherIDs {
		insert = insert.Values(subjectID, teacherID)
	}
	insSQL, insArgs, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build subject teachers insert: %w", err)
	}
	if _, err := tx.Exec(ctx, insSQL, insArgs...); err != nil {
		return fmt.Errorf("error inserting subject teachers: %w", err)
	}
	return nil
}

// ----- lessons -----

func (r *LessonRepository) lessonSelect() squirrel.SelectBuilder {
	return r.sb.Select(
		"l.id", "l.name", "l.day", "l.start_time", "l.end_time",
		"l.subject_id", "l.class_id", "l.teacher_id",
		"sub.name AS subject_name", "c.name AS class_name",
		"t.name AS teacher_name", "t.surname AS teacher_surname",
	).
		From("lessons l").
		Join("subjects sub ON l.subject_id = sub.id").
		Join("classes c ON l.class_id = c.id").
		Join("teachers t ON l.teacher_id = t.id")
}

func (r *LessonRepository) lessonCount() squirrel.SelectBuilder {
	return r.sb.Select("COUNT(*)").
		From("lessons l").
		Join("subjects sub ON l.subject_id = sub.id").
		Join("classes c ON l.class_id = c.id").
		Join("teachers t ON l.teacher_id = t.id")
}

func scanLessonRows(rows pgx.Rows) ([]models.Lesson, error) {
	var lessons []models.Lesson
	for rows.Next() {
		var lesson models.Lesson
		var subjectName, className, teacherName, teacherSurname string
		err := rows.Scan(
			&lesson.ID, &lesson.Name, &lesson.Day, &lesson.StartTime, &lesson.EndTime,
			&lesson.SubjectID, &lesson.ClassID, &lesson.TeacherID,
			&subjectName, &className, &teacherName, &teacherSurname,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lesson row: %w", err)
		}
		lesson.Subject = &models.Subject{ID: lesson.SubjectID, Name: subjectName}
		lesson.Class = &models.Class{ID: lesson.ClassID, Name: className}
		lesson.Teacher = &models.Teacher{ID: lesson.TeacherID, Name: teacherName, Surname: teacherSurname}
		lessons = append(lessons, lesson)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lesson rows: %w", err)
	}
	return lessons, nil
}

// ListLessons returns one page of lessons plus the total matching count
func (r *LessonRepository) ListLessons(ctx context.Context, params listquery.Params, viewer listquery.Viewer) ([]models.Lesson, int, error) {
	q := LessonListSpec().Build(params, viewer)

	total, err := queryCount(ctx, r.db, r.lessonCount().Where(q.Where))
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []models.Lesson{}, 0, nil
	}

	sql, args, err := applyListQuery(r.lessonSelect(), q).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list lessons query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	lessons, err := scanLessonRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return lessons, total, nil
}

// SearchLessons returns up to limit lessons matching q, scoped to the viewer
func (r *LessonRepository) SearchLessons(ctx context.Context, q string, viewer listquery.Viewer, limit uint64) ([]models.Lesson, error) {
	where := LessonListSpec().SearchWhere(q, viewer)

	sql, args, err := r.lessonSelect().
		Where(where).
		OrderBy("l.name ASC", "l.id ASC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build search lessons query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search lessons: %w", err)
	}
	defer rows.Close()

	return scanLessonRows(rows)
}

// GetLessonByID retrieves a lesson by its id
func (r *LessonRepository) GetLessonByID(ctx context.Context, id int64) (*models.Lesson, error) {
	sql, args, err := r.lessonSelect().Where(squirrel.Eq{"l.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get lesson query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lesson ID=%d: %w", id, err)
	}
	defer rows.Close()

	lessons, err := scanLessonRows(rows)
	if err != nil {
		return nil, err
	}
	if len(lessons) == 0 {
		return nil, apperrors.ErrLessonNotFound
	}
	return &lessons[0], nil
}

// CreateLesson inserts a lesson
func (r *LessonRepository) CreateLesson(ctx context.Context, lesson *models.Lesson) (int64, error) {
	sql, args, err := r.sb.Insert("lessons").
		Columns("name", "day", "start_time", "end_time", "subject_id", "class_id", "teacher_id").
		Values(lesson.Name, lesson.Day, lesson.StartTime, lesson.EndTime, lesson.SubjectID, lesson.ClassID, lesson.TeacherID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create lesson query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("error inserting lesson: %w", err)
	}

	logger.Info().Int64("lessonID", id).Msg("Lesson created")
	return id, nil
}

// UpdateLesson rewrites a lesson row
func (r *LessonRepository) UpdateLesson(ctx context.Context, lesson *models.Lesson) error {
	sql, args, err := r.sb.Update("lessons").
		SetMap(map[string]interface{}{
			"name":       lesson.Name,
			"day":        lesson.Day,
			"start_time": lesson.StartTime,
			"end_time":   lesson.EndTime,
			"subject_id": lesson.SubjectID,
			"class_id":   lesson.ClassID,
			"teacher_id": lesson.TeacherID,
		}).
		Where(squirrel.Eq{"id": lesson.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update lesson query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating lesson ID=%d: %w", lesson.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrLessonNotFound
	}
	return nil
}

// DeleteLesson removes a lesson
func (r *LessonRepository) DeleteLesson(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("lessons").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete lesson query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting lesson ID=%d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrLessonNotFound
	}

	logger.Info().Int64("lessonID", id).Msg("Lesson deleted")
	return nil
}
