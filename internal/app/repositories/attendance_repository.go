package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/schoolhub/internal/app/listquery"
	"github.com/emre/schoolhub/internal/app/models"
	"github.com/emre/schoolhub/internal/pkg/apperrors"
	"github.com/emre/schoolhub/internal/pkg/logger"
)

// AttendanceRepository handles attendance database operations
type AttendanceRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAttendanceRepository creates a new AttendanceRepository
func NewAttendanceRepository(db *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{db: db, sb: statementBuilder()}
}

// AttendanceListSpec declares the attendance list endpoint
func AttendanceListSpec() listquery.Spec {
	return listquery.Spec{
		SearchColumns: []string{"st.name", "st.surname", "l.name"},
		Filters: map[string]listquery.FilterFunc{
			"studentId": listquery.IntColumn("at.student_id"),
			"lessonId":  listquery.IntColumn("at.lesson_id"),
			"classId":   listquery.IntColumn("l.class_id"),
			"present":   listquery.BoolColumn("at.present"),
			"date":      listquery.DateColumn("at.date"),
		},
		Sorts: map[string]string{
			"date":        "at.date",
			"studentName": "st.surname",
			"lessonName":  "l.name",
		},
		DefaultOrder: []string{"at.date DESC"},
		TieBreak:     "at.id ASC",
		Scope:        attendanceScope,
	}
}

func attendanceScope(v listquery.Viewer) squirrel.Sqlizer {
	switch v.Role {
	case models.RoleTeacher:
		return squirrel.Eq{"l.teacher_id": v.PersonID}
	case models.RoleStudent:
		return squirrel.Eq{"at.student_id": v.PersonID}
	case models.RoleParent:
		return squirrel.Eq{"st.parent_id": v.PersonID}
	}
	return listquery.MatchNone()
}

func (r *AttendanceRepository) baseSelect() squirrel.SelectBuilder {
	return r.sb.Select(
		"at.id", "at.date", "at.present", "at.student_id", "at.lesson_id",
		"st.name AS student_name", "st.surname AS student_surname",
		"l.name AS lesson_name",
	).
		From("attendances at").
		Join("students st ON at.student_id = st.id").
		Join("lessons l ON at.lesson_id = l.id")
}

func (r *AttendanceRepository) baseCount() squirrel.SelectBuilder {
	return r.sb.Select("COUNT(*)").
		From("attendances at").
		Join("students st ON at.student_id = st.id").
		Join("lessons l ON at.lesson_id = l.id")
}

func scanAttendanceRows(rows pgx.Rows) ([]models.Attendance, error) {
	var records []models.Attendance
	for rows.Next() {
		var record models.Attendance
		var studentName, studentSurname, lessonName string
		err := rows.Scan(
			&record.ID, &record.Date, &record.Present, &record.StudentID, &record.LessonID,
			&studentName, &studentSurname, &lessonName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance row: %w", err)
		}
		record.Student = &models.Student{ID: record.StudentID, Name: studentName, Surname: studentSurname}
		record.Lesson = &models.Lesson{ID: record.LessonID, Name: lessonName}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance rows: %w", err)
	}
	return records, nil
}

// List returns one page of attendance records plus the total matching count
func (r *AttendanceRepository) List(ctx context.Context, params listquery.Params, viewer listquery.Viewer) ([]models.Attendance, int, error) {
	return r.listSized(ctx, params, viewer, listquery.PageSize)
}

// ListSized serves the export path with an explicit window size
func (r *AttendanceRepository) ListSized(ctx context.Context, params listquery.Params, viewer listquery.Viewer, pageSize int) ([]models.Attendance, int, error) {
	return r.listSized(ctx, params, viewer, pageSize)
}

func (r *AttendanceRepository) listSized(ctx context.Context, params listquery.Params, viewer listquery.Viewer, pageSize int) ([]models.Attendance, int, error) {
	q := AttendanceListSpec().BuildSized(params, viewer, pageSize)

	total, err := queryCount(ctx, r.db, r.baseCount().Where(q.Where))
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []models.Attendance{}, 0, nil
	}

	sql, args, err := applyListQuery(r.baseSelect(), q).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list attendances query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	records, err := scanAttendanceRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// GetByID retrieves an attendance record by its id
func (r *AttendanceRepository) GetByID(ctx context.Context, id int64) (*models.Attendance, error) {
	sql, args, err := r.baseSelect().Where(squirrel.Eq{"at.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get attendance query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance ID=%d: %w", id, err)
	}
	defer rows.Close()

	records, err := scanAttendanceRows(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.ErrAttendanceNotFound
	}
	return &records[0], nil
}

// Create inserts an attendance record
func (r *AttendanceRepository) Create(ctx context.Context, record *models.Attendance) (int64, error) {
	sql, args, err := r.sb.Insert("attendances").
		Columns("date", "present", "student_id", "lesson_id").
		Values(record.Date, record.Present, record.StudentID, record.LessonID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create attendance query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("error inserting attendance: %w", err)
	}

	logger.Info().Int64("attendanceID", id).Msg("Attendance recorded")
	return id, nil
}

// Update rewrites an attendance record
func (r *AttendanceRepository) Update(ctx context.Context, record *models.Attendance) error {
	sql, args, err := r.sb.Update("attendances").
		SetMap(map[string]interface{}{
			"date":       record.Date,
			"present":    record.Present,
			"student_id": record.StudentID,
			"lesson_id":  record.LessonID,
		}).
		Where(squirrel.Eq{"id": record.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update attendance query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating attendance ID=%d: %w", record.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAttendanceNotFound
	}
	return nil
}

// Delete removes an attendance record
func (r *AttendanceRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("attendances").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete attendance query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting attendance ID=%d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAttendanceNotFound
	}

	logger.Info().Int64("attendanceID", id).Msg("Attendance deleted")
	return nil
}

// DailyCount is one day's present/absent tally
type DailyCount struct {
	Date    time.Time
	Present int
	Absent  int
}

// CountByDay tallies attendance between from and to inclusive, grouped by date
func (r *AttendanceRepository) CountByDay(ctx context.Context, from, to time.Time) ([]DailyCount, error) {
	sql, args, err := r.sb.Select(
		"date::date AS day",
		"COUNT(*) FILTER (WHERE present) AS present",
		"COUNT(*) FILTER (WHERE NOT present) AS absent",
	).
		From("attendances").
		Where(squirrel.Expr("date::date BETWEEN ? AND ?", from, to)).
		GroupBy("date::date").
		OrderBy("day ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build attendance tally query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance tallies: %w", err)
	}
	defer rows.Close()

	var counts []DailyCount
	for rows.Next() {
		var count DailyCount
		if err := rows.Scan(&count.Date, &count.Present, &count.Absent); err != nil {
			return nil, fmt.Errorf("failed to scan attendance tally row: %w", err)
		}
		counts = append(counts, count)
	}
	return counts, rows.Err()
}
