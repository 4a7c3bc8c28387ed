package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/schoolhub/internal/app/listquery"
	"github.com/emre/schoolhub/internal/app/models"
	"github.com/emre/schoolhub/internal/pkg/apperrors"
	"github.com/emre/schoolhub/internal/pkg/logger"
)

// AssessmentRepository handles exam, assignment and result database operations
type AssessmentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAssessmentRepository creates a new AssessmentRepository
func NewAssessmentRepository(db *pgxpool.Pool) *AssessmentRepository {
	return &AssessmentRepository{db: db, sb: statementBuilder()}
}

// lessonScopeOn builds the role predicate shared by every entity that hangs
// off a lesson row aliased as l.
func lessonScopeOn(v listquery.Viewer) squirrel.Sqlizer {
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

// ExamListSpec declares the exam list endpoint
func ExamListSpec() listquery.Spec {
	return listquery.Spec{
		SearchColumns: []string{"e.title", "sub.name"},
		Filters: map[string]listquery.FilterFunc{
			"classId":   listquery.IntColumn("l.class_id"),
			"teacherId": listquery.IntColumn("l.teacher_id"),
			"subjectId": listquery.IntColumn("l.subject_id"),
			"lessonId":  listquery.IntColumn("e.lesson_id"),
		},
		Sorts: map[string]string{
			"title":       "e.title",
			"startTime":   "e.start_time",
			"subjectName": "sub.name",
			"className":   "c.name",
		},
		DefaultOrder: []string{"e.start_time ASC"},
		TieBreak:     "e.id ASC",
		Scope:        lessonScopeOn,
	}
}

// AssignmentListSpec declares the assignment list endpoint
func AssignmentListSpec() listquery.Spec {
	return listquery.Spec{
		SearchColumns: []string{"a.title", "sub.name"},
		Filters: map[string]listquery.FilterFunc{
			"classId":   listquery.IntColumn("l.class_id"),
			"teacherId": listquery.IntColumn("l.teacher_id"),
			"subjectId": listquery.IntColumn("l.subject_id"),
			"lessonId":  listquery.IntColumn("a.lesson_id"),
		},
		Sorts: map[string]string{
			"title":       "a.title",
			"startDate":   "a.start_date",
			"dueDate":     "a.due_date",
			"subjectName": "sub.name",
			"className":   "c.name",
		},
		DefaultOrder: []string{"a.due_date ASC"},
		TieBreak:     "a.id ASC",
		Scope:        lessonScopeOn,
	}
}

// ResultListSpec declares the result list endpoint. Results reference either
// an exam or an assignment, so the lesson join goes through COALESCE.
func ResultListSpec() listquery.Spec {
	return listquery.Spec{
		SearchColumns: []string{"st.name", "st.surname", "e.title", "a.title"},
		Filters: map[string]listquery.FilterFunc{
			"studentId": listquery.IntColumn("r.student_id"),
			"classId":   listquery.IntColumn("l.class_id"),
			"teacherId": listquery.IntColumn("l.teacher_id"),
			"examId":    listquery.IntColumn("r.exam_id"),
		},
		Sorts: map[string]string{
			"score":       "r.score",
			"studentName": "st.surname",
			"title":       "COALESCE(e.title, a.title)",
		},
		DefaultOrder: []string{"r.id DESC"},
		TieBreak:     "r.id DESC",
		Scope:        resultScope,
	}
}

func resultScope(v listquery.Viewer) squirrel.Sqlizer {
	switch v.Role {
	case models.RoleTeacher:
		return squirrel.Eq{"l.teacher_id": v.PersonID}
	case models.RoleStudent:
		return squirrel.Eq{"r.student_id": v.PersonID}
	case models.RoleParent:
		return squirrel.Eq{"st.parent_id": v.PersonID}
	}
	return listquery.MatchNone()
}

// ----- exams -----

func (r *AssessmentRepository) examSelect() squirrel.SelectBuilder {
	return r.sb.Select(
		"e.id", "e.title", "e.start_time", "e.end_time", "e.lesson_id",
		"sub.name AS subject_name", "c.name AS class_name",
	).
		From("exams e").
		Join("lessons l ON e.lesson_id = l.id").
		Join("subjects sub ON l.subject_id = sub.id").
		Join("classes c ON l.class_id = c.id")
}

func (r *AssessmentRepository) examCount() squirrel.SelectBuilder {
	return r.sb.Select("COUNT(*)").
		From("exams e").
		Join("lessons l ON e.lesson_id = l.id").
		Join("subjects sub ON l.subject_id = sub.id").
		Join("classes c ON l.class_id = c.id")
}

func scanExamRows(rows pgx.Rows) ([]models.Exam, error) {
	var exams []models.Exam
	for rows.Next() {
		var exam models.Exam
		var subjectName, className string
		err := rows.Scan(
			&exam.ID, &exam.Title, &exam.StartTime, &exam.EndTime, &exam.LessonID,
			&subjectName, &className,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exam row: %w", err)
		}
		exam.Lesson = &models.Lesson{
			ID:      exam.LessonID,
			Subject: &models.Subject{Name: subjectName},
			Class:   &models.Class{Name: className},
		}
		exams = append(exams, exam)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exam rows: %w", err)
	}
	return exams, nil
}

// ListExams returns one page of exams plus the total matching count
func (r *AssessmentRepository) ListExams(ctx context.Context, params listquery.Params, viewer listquery.Viewer) ([]models.Exam, int, error) {
	q := ExamListSpec().Build(params, viewer)

	total, err := queryCount(ctx, r.db, r.examCount().Where(q.Where))
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []models.Exam{}, 0, nil
	}

	sql, args, err := applyListQuery(r.examSelect(), q).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list exams query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query exams: %w", err)
	}
	defer rows.Close()

	exams, err := scanExamRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return exams, total, nil
}

// SearchExams returns up to limit exams matching q, scoped to the viewer
func (r *AssessmentRepository) SearchExams(ctx context.Context, q string, viewer listquery.Viewer, limit uint64) ([]models.Exam, error) {
	where := ExamListSpec().SearchWhere(q, viewer)

	sql, args, err := r.examSelect().
		Where(where).
		OrderBy("e.title ASC", "e.id ASC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build search exams query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search exams: %w", err)
	}
	defer rows.Close()

	return scanExamRows(rows)
}

// GetExamByID retrieves an exam by its id
func (r *AssessmentRepository) GetExamByID(ctx context.Context, id int64) (*models.Exam, error) {
	sql, args, err := r.examSelect().Where(squirrel.Eq{"e.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get exam query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query exam ID=%d: %w", id, err)
	}
	defer rows.Close()

	exams, err := scanExamRows(rows)
	if err != nil {
		return nil, err
	}
	if len(exams) == 0 {
		return nil, apperrors.ErrExamNotFound
	}
	return &exams[0], nil
}

// CreateExam inserts an exam
func (r *AssessmentRepository) CreateExam(ctx context.Context, exam *models.Exam) (int64, error) {
	sql, args, err := r.sb.Insert("exams").
		Columns("title", "start_time", "end_time", "lesson_id").
		Values(exam.Title, exam.StartTime, exam.EndTime, exam.LessonID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create exam query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("error inserting exam: %w", err)
	}

	logger.Info().Int64("examID", id).Msg("Exam created")
	return id, nil
}

// UpdateExam rewrites an exam row
func (r *AssessmentRepository) UpdateExam(ctx context.Context, exam *models.Exam) error {
	sql, args, err := r.sb.Update("exams").
		SetMap(map[string]interface{}{
			"title":      exam.Title,
			"start_time": exam.StartTime,
			"end_time":   exam.EndTime,
			"lesson_id":  exam.LessonID,
		}).
		Where(squirrel.Eq{"id": exam.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update exam query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating exam ID=%d: %w", exam.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrExamNotFound
	}
	return nil
}

// DeleteExam removes an exam
func (r *AssessmentRepository) DeleteExam(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "exams", id, apperrors.ErrExamNotFound, "examID", "Exam deleted")
}

// ----- assignments -----

func (r *AssessmentRepository) assignmentSelect() squirrel.SelectBuilder {
	return r.sb.Select(
		"a.id", "a.title", "a.start_date", "a.due_date", "a.lesson_id",
		"sub.name AS subject_name", "c.name AS class_name",
	).
		From("assignments a").
		Join("lessons l ON a.lesson_id = l.id").
		Join("subjects sub ON l.subject_id = sub.id").
		Join("classes c ON l.class_id = c.id")
}

func (r *AssessmentRepository) assignmentCount() squirrel.SelectBuilder {
	return r.sb.Select("COUNT(*)").
		From("assignments a").
		Join("lessons l ON a.lesson_id = l.id").
		Join("subjects sub ON l.subject_id = sub.id").
		Join("classes c ON l.class_id = c.id")
}

func scanAssignmentRows(rows pgx.Rows) ([]models.Assignment, error) {
	var assignments []models.Assignment
	for rows.Next() {
		var assignment models.Assignment
		var subjectName, className string
		err := rows.Scan(
			&assignment.ID, &assignment.Title, &assignment.StartDate, &assignment.DueDate,
			&assignment.LessonID, &subjectName, &className,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment row: %w", err)
		}
		assignment.Lesson = &models.Lesson{
			ID:      assignment.LessonID,
			Subject: &models.Subject{Name: subjectName},
			Class:   &models.Class{Name: className},
		}
		assignments = append(assignments, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignment rows: %w", err)
	}
	return assignments, nil
}

// ListAssignments returns one page of assignments plus the total matching count
func (r *AssessmentRepository) ListAssignments(ctx context.Context, params listquery.Params, viewer listquery.Viewer) ([]models.Assignment, int, error) {
	q := AssignmentListSpec().Build(params, viewer)

	total, err := queryCount(ctx, r.db, r.assignmentCount().Where(q.Where))
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []models.Assignment{}, 0, nil
	}

	sql, args, err := applyListQuery(r.assignmentSelect(), q).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list assignments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	assignments, err := scanAssignmentRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return assignments, total, nil
}

// GetAssignmentByID retrieves an assignment by its id
func (r *AssessmentRepository) GetAssignmentByID(ctx context.Context, id int64) (*models.Assignment, error) {
	sql, args, err := r.assignmentSelect().Where(squirrel.Eq{"a.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get assignment query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignment ID=%d: %w", id, err)
	}
	defer rows.Close()

	assignments, err := scanAssignmentRows(rows)
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return nil, apperrors.ErrAssignmentNotFound
	}
	return &assignments[0], nil
}

// CreateAssignment inserts an assignment
func (r *AssessmentRepository) CreateAssignment(ctx context.Context, assignment *models.Assignment) (int64, error) {
	sql, args, err := r.sb.Insert("assignments").
		Columns("title", "start_date", "due_date", "lesson_id").
		Values(assignment.Title, assignment.StartDate, assignment.DueDate, assignment.LessonID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create assignment query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("error inserting assignment: %w", err)
	}

	logger.Info().Int64("assignmentID", id).Msg("Assignment created")
	return id, nil
}

// UpdateAssignment rewrites an assignment row
func (r *AssessmentRepository) UpdateAssignment(ctx context.Context, assignment *models.Assignment) error {
	sql, args, err := r.sb.Update("assignments").
		SetMap(map[string]interface{}{
			"title":      assignment.Title,
			"start_date": assignment.StartDate,
			"due_date":   assignment.DueDate,
			"lesson_id":  assignment.LessonID,
		}).
		Where(squirrel.Eq{"id": assignment.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update assignment query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating assignment ID=%d: %w", assignment.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAssignmentNotFound
	}
	return nil
}

// DeleteAssignment removes an assignment
func (r *AssessmentRepository) DeleteAssignment(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "assignments", id, apperrors.ErrAssignmentNotFound, "assignmentID", "Assignment deleted")
}

// ----- results -----

func (r *AssessmentRepository) resultSelect() squirrel.SelectBuilder {
	return r.sb.Select(
		"r.id", "r.score", "r.exam_id", "r.assignment_id", "r.student_id",
		"COALESCE(e.title, a.title, '') AS title",
		"st.name AS student_name", "st.surname AS student_surname",
	).
		From("results r").
		LeftJoin("exams e ON r.exam_id = e.id").
		LeftJoin("assignments a ON r.assignment_id = a.id").
		Join("lessons l ON l.id = COALESCE(e.lesson_id, a.lesson_id)").
		Join("students st ON r.student_id = st.id")
}

func (r *AssessmentRepository) resultCount() squirrel.SelectBuilder {
	return r.sb.Select("COUNT(*)").
		From("results r").
		LeftJoin("exams e ON r.exam_id = e.id").
		LeftJoin("assignments a ON r.assignment_id = a.id").
		Join("lessons l ON l.id = COALESCE(e.lesson_id, a.lesson_id)").
		Join("students st ON r.student_id = st.id")
}

func scanResultRows(rows pgx.Rows) ([]models.Result, error) {
	var results []models.Result
	for rows.Next() {
		var result models.Result
		var studentName, studentSurname string
		err := rows.Scan(
			&result.ID, &result.Score, &result.ExamID, &result.AssignmentID, &result.StudentID,
			&result.Title, &studentName, &studentSurname,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		result.Student = &models.Student{ID: result.StudentID, Name: studentName, Surname: studentSurname}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating result rows: %w", err)
	}
	return results, nil
}

// ListResults returns one page of results plus the total matching count
func (r *AssessmentRepository) ListResults(ctx context.Context, params listquery.Params, viewer listquery.Viewer) ([]models.Result, int, error) {
	return r.listResultsSized(ctx, params, viewer, listquery.PageSize)
}

// ListResultsSized serves the export path, which walks the same scoped query
// in larger windows.
func (r *AssessmentRepository) ListResultsSized(ctx context.Context, params listquery.Params, viewer listquery.Viewer, pageSize int) ([]models.Result, int, error) {
	return r.listResultsSized(ctx, params, viewer, pageSize)
}

func (r *AssessmentRepository) listResultsSized(ctx context.Context, params listquery.Params, viewer listquery.Viewer, pageSize int) ([]models.Result, int, error) {
	q := ResultListSpec().BuildSized(params, viewer, pageSize)

	total, err := queryCount(ctx, r.db, r.resultCount().Where(q.Where))
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []models.Result{}, 0, nil
	}

	sql, args, err := applyListQuery(r.resultSelect(), q).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list results query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	results, err := scanResultRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// GetResultByID retrieves a result by its id
func (r *AssessmentRepository) GetResultByID(ctx context.Context, id int64) (*models.Result, error) {
	sql, args, err := r.resultSelect().Where(squirrel.Eq{"r.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get result query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query result ID=%d: %w", id, err)
	}
	defer rows.Close()

	results, err := scanResultRows(rows)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, apperrors.ErrResultNotFound
	}
	return &results[0], nil
}

// CreateResult inserts a result; exactly one of exam and assignment is set
func (r *AssessmentRepository) CreateResult(ctx context.Context, result *models.Result) (int64, error) {
	if (result.ExamID == nil) == (result.AssignmentID == nil) {
		return 0, apperrors.ErrResultTargetUnset
	}

	sql, args, err := r.sb.Insert("results").
		Columns("score", "exam_id", "assignment_id", "student_id").
		Values(result.Score, result.ExamID, result.AssignmentID, result.StudentID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create result query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("error inserting result: %w", err)
	}

	logger.Info().Int64("resultID", id).Msg("Result created")
	return id, nil
}

// UpdateResult rewrites a result row
func (r *AssessmentRepository) UpdateResult(ctx context.Context, result *models.Result) error {
	if (result.ExamID == nil) == (result.AssignmentID == nil) {
		return apperrors.ErrResultTargetUnset
	}

	sql, args, err := r.sb.Update("results").
		SetMap(map[string]interface{}{
			"score":         result.Score,
			"exam_id":       result.ExamID,
			"assignment_id": result.AssignmentID,
			"student_id":    result.StudentID,
		}).
		Where(squirrel.Eq{"id": result.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update result query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating result ID=%d: %w", result.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrResultNotFound
	}
	return nil
}

// DeleteResult removes a result
func (r *AssessmentRepository) DeleteResult(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "results", id, apperrors.ErrResultNotFound, "resultID", "Result deleted")
}

func (r *AssessmentRepository) deleteByID(ctx context.Context, table string, id int64, notFound error, idField, msg string) error {
	sql, args, err := r.sb.Delete(table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query for %s: %w", table, err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting from %s ID=%d: %w", table, id, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound
	}

	logger.Info().Int64(idField, id).Msg(msg)
	return nil
}
