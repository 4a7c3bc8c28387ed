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

// StudentRepository handles student database operations
type StudentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{db: db, sb: statementBuilder()}
}

// StudentListSpec declares the student list endpoint: searchable over name,
// surname and account email; filterable by class, grade, sex and teacher;
// newest first by default.
func StudentListSpec() listquery.Spec {
	return listquery.Spec{
		SearchColumns: []string{"s.name", "s.surname", "u.email"},
		Filters: map[string]listquery.FilterFunc{
			"classId": listquery.IntColumn("s.class_id"),
			"gradeId": listquery.IntColumn("s.grade_id"),
			"sex":     listquery.EnumColumn("s.sex", string(models.SexMale), string(models.SexFemale)),
			// students taught by one teacher, via that teacher's lessons
			"teacherId": intExpr("s.class_id IN (SELECT l.class_id FROM lessons l WHERE l.teacher_id = ?)"),
		},
		Sorts: map[string]string{
			"name":       "s.name",
			"surname":    "s.surname",
			"createdAt":  "s.created_at",
			"className":  "c.name",
			"gradeLevel": "g.level",
		},
		DefaultOrder: []string{"s.created_at DESC"},
		TieBreak:     "s.id ASC",
		Scope:        studentScope,
	}
}

// studentScope restricts students to the viewer's reach: a teacher sees
// students in classes they teach or supervise, a student sees classmates,
// a parent sees their own children.
func studentScope(v listquery.Viewer) squirrel.Sqlizer {
	switch v.Role {
	case models.RoleTeacher:
		return squirrel.Expr(
			"(s.class_id IN (SELECT l.class_id FROM lessons l WHERE l.teacher_id = ?)"+
				" OR s.class_id IN (SELECT sc.id FROM classes sc WHERE sc.supervisor_id = ?))",
			v.PersonID, v.PersonID,
		)
	case models.RoleStudent:
		return squirrel.Expr("s.class_id IN (SELECT s2.class_id FROM students s2 WHERE s2.id = ?)", v.PersonID)
	case models.RoleParent:
		return squirrel.Eq{"s.parent_id": v.PersonID}
	}
	return listquery.MatchNone()
}

const studentColumns = "s.id, s.user_id, s.name, s.surname, s.phone, s.address, s.img, " +
	"s.blood_type, s.sex, s.birthday, s.grade_id, s.class_id, s.parent_id, s.created_at"

func (r *StudentRepository) baseSelect() squirrel.SelectBuilder {
	return r.sb.Select(studentColumns, "c.name AS class_name", "g.level AS grade_level").
		From("students s").
		Join("users u ON s.user_id = u.id").
		Join("classes c ON s.class_id = c.id").
		Join("grades g ON s.grade_id = g.id")
}

func (r *StudentRepository) baseCount() squirrel.SelectBuilder {
	return r.sb.Select("COUNT(*)").
		From("students s").
		Join("users u ON s.user_id = u.id").
		Join("classes c ON s.class_id = c.id").
		Join("grades g ON s.grade_id = g.id")
}

func scanStudentRows(rows pgx.Rows) ([]models.Student, error) {
	var students []models.Student
	for rows.Next() {
		var student models.Student
		var className string
		var gradeLevel int
		err := rows.Scan(
			&student.ID, &student.UserID, &student.Name, &student.Surname,
			&student.Phone, &student.Address, &student.Img, &student.BloodType,
			&student.Sex, &student.Birthday, &student.GradeID, &student.ClassID,
			&student.ParentID, &student.CreatedAt, &className, &gradeLevel,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student row: %w", err)
		}
		student.Class = &models.Class{ID: student.ClassID, Name: className}
		student.Grade = &models.Grade{ID: student.GradeID, Level: gradeLevel}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student rows: %w", err)
	}
	return students, nil
}

// List returns one page of students matching the query parameters, plus the
// total count for the same predicate.
func (r *StudentRepository) List(ctx context.Context, params listquery.Params, viewer listquery.Viewer) ([]models.Student, int, error) {
	q := StudentListSpec().Build(params, viewer)

	total, err := queryCount(ctx, r.db, r.baseCount().Where(q.Where))
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []models.Student{}, 0, nil
	}

	sql, args, err := applyListQuery(r.baseSelect(), q).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	students, err := scanStudentRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

// Search returns up to limit students matching q, scoped to the viewer
func (r *StudentRepository) Search(ctx context.Context, q string, viewer listquery.Viewer, limit uint64) ([]models.Student, error) {
	where := StudentListSpec().SearchWhere(q, viewer)

	sql, args, err := r.baseSelect().
		Where(where).
		OrderBy("s.name ASC", "s.id ASC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build search students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search students: %w", err)
	}
	defer rows.Close()

	return scanStudentRows(rows)
}

// GetByID retrieves a student with class and grade data
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	sql, args, err := r.baseSelect().Where(squirrel.Eq{"s.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query student ID=%d: %w", id, err)
	}
	defer rows.Close()

	students, err := scanStudentRows(rows)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, apperrors.ErrStudentNotFound
	}
	return &students[0], nil
}

// GetByUserID resolves the student record bound to a login account
func (r *StudentRepository) GetByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	sql, args, err := r.sb.Select("id").From("students").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to query student for user ID=%d: %w", userID, err)
	}
	return r.GetByID(ctx, id)
}

// Create inserts a student and its login account in one transaction
func (r *StudentRepository) Create(ctx context.Context, student *models.Student, account *models.User) (int64, error) {
	var id int64
	err := runInTx(ctx, r.db, func(tx pgx.Tx) error {
		userID, err := createUserTx(ctx, tx, account)
		if err != nil {
			return err
		}

		sql, args, err := r.sb.Insert("students").
			Columns("user_id", "name", "surname", "phone", "address", "img",
				"blood_type", "sex", "birthday", "grade_id", "class_id", "parent_id").
			Values(userID, student.Name, student.Surname, student.Phone, student.Address,
				student.Img, student.BloodType, student.Sex, student.Birthday,
				student.GradeID, student.ClassID, student.ParentID).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create student query: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
			return fmt.Errorf("error inserting student: %w", err)
		}
		student.UserID = userID
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Info().Int64("studentID", id).Msg("Student created")
	return id, nil
}

// Update rewrites a student row and its account fields in one transaction.
// An empty passwordHash keeps the stored password.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student, username string, email *string, passwordHash string) error {
	err := runInTx(ctx, r.db, func(tx pgx.Tx) error {
		sql, args, err := r.sb.Update("students").
			SetMap(map[string]interface{}{
				"name":       student.Name,
				"surname":    student.Surname,
				"phone":      student.Phone,
				"address":    student.Address,
				"img":        student.Img,
				"blood_type": student.BloodType,
				"sex":        student.Sex,
				"birthday":   student.Birthday,
				"grade_id":   student.GradeID,
				"class_id":   student.ClassID,
				"parent_id":  student.ParentID,
			}).
			Where(squirrel.Eq{"id": student.ID}).
			Suffix("RETURNING user_id").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build update student query: %w", err)
		}

		var userID int64
		if err := tx.QueryRow(ctx, sql, args...).Scan(&userID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrStudentNotFound
			}
			return fmt.Errorf("error updating student ID=%d: %w", student.ID, err)
		}
		return updateUserTx(ctx, tx, userID, username, email, passwordHash)
	})
	if err != nil {
		return err
	}

	logger.Info().Int64("studentID", student.ID).Msg("Student updated")
	return nil
}

// Delete removes a student and its login account in one transaction
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	err := runInTx(ctx, r.db, func(tx pgx.Tx) error {
		sql, args, err := r.sb.Delete("students").
			Where(squirrel.Eq{"id": id}).
			Suffix("RETURNING user_id").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build delete student query: %w", err)
		}

		var userID int64
		if err := tx.QueryRow(ctx, sql, args...).Scan(&userID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrStudentNotFound
			}
			return fmt.Errorf("error deleting student ID=%d: %w", id, err)
		}
		return deleteUserTx(ctx, tx, userID)
	})
	if err != nil {
		return err
	}

	logger.Info().Int64("studentID", id).Msg("Student deleted")
	return nil
}

// CountBySex groups the scoped student population for the dashboard chart
func (r *StudentRepository) CountBySex(ctx context.Context) (map[models.Sex]int, error) {
	sql, args, err := r.sb.Select("sex", "COUNT(*)").
		From("students").
		GroupBy("sex").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count by sex query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count students by sex: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Sex]int)
	for rows.Next() {
		var sex models.Sex
		var count int
		if err := rows.Scan(&sex, &count); err != nil {
			return nil, fmt.Errorf("failed to scan sex count row: %w", err)
		}
		counts[sex] = count
	}
	return counts, rows.Err()
}
