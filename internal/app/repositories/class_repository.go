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

// ClassRepository handles class and grade database operations
type ClassRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewClassRepository creates a new ClassRepository
func NewClassRepository(db *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{db: db, sb: statementBuilder()}
}

// ClassListSpec declares the class list endpoint. studentCount sorts by a
// relation aggregate; the id tie break keeps pagination stable across ties.
func ClassListSpec() listquery.Spec {
	return listquery.Spec{
		SearchColumns: []string{"c.name"},
		Filters: map[string]listquery.FilterFunc{
			"gradeId":      listquery.IntColumn("c.grade_id"),
			"supervisorId": listquery.IntColumn("c.supervisor_id"),
		},
		Sorts: map[string]string{
			"name":         "c.name",
			"capacity":     "c.capacity",
			"gradeLevel":   "g.level",
			"studentCount": "student_count",
		},
		DefaultOrder: []string{"c.name ASC"},
		TieBreak:     "c.id ASC",
		Scope:        classScope,
	}
}

// classScope: a teacher sees classes they supervise or teach in, a student
// its own class, a parent the classes of their children.
func classScope(v listquery.Viewer) squirrel.Sqlizer {
	switch v.Role {
	case models.RoleTeacher:
		return squirrel.Expr(
			"(c.supervisor_id = ? OR c.id IN (SELECT l.class_id FROM lessons l WHERE l.teacher_id = ?))",
			v.PersonID, v.PersonID,
		)
	case models.RoleStudent:
		return squirrel.Expr("c.id IN (SELECT s.class_id FROM students s WHERE s.id = ?)", v.PersonID)
	case models.RoleParent:
		return squirrel.Expr("c.id IN (SELECT s.class_id FROM students s WHERE s.parent_id = ?)", v.PersonID)
	}
	return listquery.MatchNone()
}

func (r *ClassRepository) baseSelect() squirrel.SelectBuilder {
	return r.sb.Select(
		"c.id", "c.name", "c.capacity", "c.grade_id", "c.supervisor_id",
		"g.level AS grade_level",
		"COALESCE(t.name || ' ' || t.surname, '') AS supervisor_name",
		"(SELECT COUNT(*) FROM students s WHERE s.class_id = c.id) AS student_count",
	).
		From("classes c").
		Join("grades g ON c.grade_id = g.id").
		LeftJoin("teachers t ON c.supervisor_id = t.id")
}

func (r *ClassRepository) baseCount() squirrel.SelectBuilder {
	return r.sb.Select("COUNT(*)").
		From("classes c").
		Join("grades g ON c.grade_id = g.id").
		LeftJoin("teachers t ON c.supervisor_id = t.id")
}

func scanClassRows(rows pgx.Rows) ([]models.Class, error) {
	var classes []models.Class
	for rows.Next() {
		var class models.Class
		var gradeLevel int
		var supervisorName string
		err := rows.Scan(
			&class.ID, &class.Name, &class.Capacity, &class.GradeID, &class.SupervisorID,
			&gradeLevel, &supervisorName, &class.StudentCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan class row: %w", err)
		}
		class.Grade = &models.Grade{ID: class.GradeID, Level: gradeLevel}
		if class.SupervisorID != nil && supervisorName != "" {
			class.Supervisor = &models.Teacher{ID: *class.SupervisorID, Name: supervisorName}
		}
		classes = append(classes, class)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating class rows: %w", err)
	}
	return classes, nil
}

// List returns one page of classes plus the total matching count
func (r *ClassRepository) List(ctx context.Context, params listquery.Params, viewer listquery.Viewer) ([]models.Class, int, error) {
	q := ClassListSpec().Build(params, viewer)

	total, err := queryCount(ctx, r.db, r.baseCount().Where(q.Where))
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []models.Class{}, 0, nil
	}

	sql, args, err := applyListQuery(r.baseSelect(), q).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list classes query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query classes: %w", err)
	}
	defer rows.Close()

	classes, err := scanClassRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return classes, total, nil
}

// Search returns up to limit classes matching q, scoped to the viewer
func (r *ClassRepository) Search(ctx context.Context, q string, viewer listquery.Viewer, limit uint64) ([]models.Class, error) {
	where := ClassListSpec().SearchWhere(q, viewer)

	sql, args, err := r.baseSelect().
		Where(where).
		OrderBy("c.name ASC", "c.id ASC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build search classes query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search classes: %w", err)
	}
	defer rows.Close()

	return scanClassRows(rows)
}

// GetByID retrieves a class by its id
func (r *ClassRepository) GetByID(ctx context.Context, id int64) (*models.Class, error) {
	sql, args, err := r.baseSelect().Where(squirrel.Eq{"c.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get class query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query class ID=%d: %w", id, err)
	}
	defer rows.Close()

	classes, err := scanClassRows(rows)
	if err != nil {
		return nil, err
	}
	if len(classes) == 0 {
		return nil, apperrors.ErrClassNotFound
	}
	return &classes[0], nil
}

// Create inserts a class
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) (int64, error) {
	sql, args, err := r.sb.Insert("classes").
		Columns("name", "capacity", "grade_id", "supervisor_id").
		Values(class.Name, class.Capacity, class.GradeID, class.SupervisorID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create class query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, apperrors.ErrClassAlreadyExists
		}
		return 0, fmt.Errorf("error inserting class: %w", err)
	}

	logger.Info().Int64("classID", id).Msg("Class created")
	return id, nil
}

// Update rewrites a class row
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	sql, args, err := r.sb.Update("classes").
		SetMap(map[string]interface{}{
			"name":          class.Name,
			"capacity":      class.Capacity,
			"grade_id":      class.GradeID,
			"supervisor_id": class.SupervisorID,
		}).
		Where(squirrel.Eq{"id": class.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update class query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrClassAlreadyExists
		}
		return fmt.Errorf("error updating class ID=%d: %w", class.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrClassNotFound
	}
	return nil
}

// Delete removes a class
func (r *ClassRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("classes").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete class query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting class ID=%d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrClassNotFound
	}

	logger.Info().Int64("classID", id).Msg("Class deleted")
	return nil
}

// StudentCount returns the current enrollment of a class
func (r *ClassRepository) StudentCount(ctx context.Context, classID int64) (int, error) {
	return queryCount(ctx, r.db, r.sb.Select("COUNT(*)").From("students").Where(squirrel.Eq{"class_id": classID}))
}

// ListGrades returns every grade ordered by level
func (r *ClassRepository) ListGrades(ctx context.Context) ([]models.Grade, error) {
	sql, args, err := r.sb.Select("id", "level").From("grades").OrderBy("level ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list grades query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query grades: %w", err)
	}
	defer rows.Close()

	var grades []models.Grade
	for rows.Next() {
		var grade models.Grade
		if err := rows.Scan(&grade.ID, &grade.Level); err != nil {
			return nil, fmt.Errorf("failed to scan grade row: %w", err)
		}
		grades = append(grades, grade)
	}
	return grades, rows.Err()
}
