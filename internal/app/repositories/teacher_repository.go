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

// TeacherRepository handles teacher database operations
type TeacherRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewTeacherRepository creates a new TeacherRepository
func NewTeacherRepository(db *pgxpool.Pool) *TeacherRepository {
	return &TeacherRepository{db: db, sb: statementBuilder()}
}

// TeacherListSpec declares the teacher list endpoint
func TeacherListSpec() listquery.Spec {
	return listquery.Spec{
		SearchColumns: []string{"t.name", "t.surname", "t.email"},
		Filters: map[string]listquery.FilterFunc{
			"classId":   intExpr("t.id IN (SELECT l.teacher_id FROM lessons l WHERE l.class_id = ?)"),
			"subjectId": intExpr("t.id IN (SELECT st.teacher_id FROM subject_teachers st WHERE st.subject_id = ?)"),
		},
		Sorts: map[string]string{
			"name":      "t.name",
			"surname":   "t.surname",
			"createdAt": "t.created_at",
		},
		DefaultOrder: []string{"t.created_at DESC"},
		TieBreak:     "t.id ASC",
		Scope:        teacherScope,
	}
}

// teacherScope: teachers see the whole staff list; students and parents see
// only the teachers giving lessons to their class(es).
func teacherScope(v listquery.Viewer) squirrel.Sqlizer {
	switch v.Role {
	case models.RoleTeacher:
		return nil
	case models.RoleStudent:
		return squirrel.Expr(
			"t.id IN (SELECT l.teacher_id FROM lessons l WHERE l.class_id IN"+
				" (SELECT s2.class_id FROM students s2 WHERE s2.id = ?))", v.PersonID)
	case models.RoleParent:
		return squirrel.Expr(
			"t.id IN (SELECT l.teacher_id FROM lessons l WHERE l.class_id IN"+
				" (SELECT s2.class_id FROM students s2 WHERE s2.parent_id = ?))", v.PersonID)
	}
	return listquery.MatchNone()
}

const teacherColumns = "t.id, t.user_id, t.name, t.surname, t.email, t.phone, t.address, " +
	"t.img, t.blood_type, t.sex, t.birthday, t.created_at"

func scanTeacherRows(rows pgx.Rows) ([]models.Teacher, error) {
	var teachers []models.Teacher
	for rows.Next() {
		var teacher models.Teacher
		err := rows.Scan(
			&teacher.ID, &teacher.UserID, &teacher.Name, &teacher.Surname,
			&teacher.Email, &teacher.Phone, &teacher.Address, &teacher.Img,
			&teacher.BloodType, &teacher.Sex, &teacher.Birthday, &teacher.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan teacher row: %w", err)
		}
		teachers = append(teachers, teacher)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teacher rows: %w", err)
	}
	return teachers, nil
}

// List returns one page of teachers plus the total matching count
func (r *TeacherRepository) List(ctx context.Context, params listquery.Params, viewer listquery.Viewer) ([]models.Teacher, int, error) {
	q := TeacherListSpec().Build(params, viewer)

	total, err := queryCount(ctx, r.db, r.sb.Select("COUNT(*)").From("teachers t").Where(q.Where))
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []models.Teacher{}, 0, nil
	}

	sql, args, err := applyListQuery(r.sb.Select(teacherColumns).From("teachers t"), q).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list teachers query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query teachers: %w", err)
	}
	defer rows.Close()

	teachers, err := scanTeacherRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return teachers, total, nil
}

// Search returns up to limit teachers matching q, scoped to the viewer
func (r *TeacherRepository) Search(ctx context.Context, q string, viewer listquery.Viewer, limit uint64) ([]models.Teacher, error) {
	where := TeacherListSpec().SearchWhere(q, viewer)

	sql, args, err := r.sb.Select(teacherColumns).From("teachers t").
		Where(where).
		OrderBy("t.name ASC", "t.id ASC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build search teachers query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search teachers: %w", err)
	}
	defer rows.Close()

	return scanTeacherRows(rows)
}

// GetByID retrieves a teacher with taught subjects attached
func (r *TeacherRepository) GetByID(ctx context.Context, id int64) (*models.Teacher, error) {
	sql, args, err := r.sb.Select(teacherColumns).From("teachers t").
		Where(squirrel.Eq{"t.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get teacher query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query teacher ID=%d: %w", id, err)
	}
	teachers, err := scanTeacherRows(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(teachers) == 0 {
		return nil, apperrors.ErrTeacherNotFound
	}
	teacher := teachers[0]

	subjects, err := r.subjectsOf(ctx, id)
	if err != nil {
		return nil, err
	}
	teacher.Subjects = subjects
	return &teacher, nil
}

// GetByUserID resolves the teacher record bound to a login account
func (r *TeacherRepository) GetByUserID(ctx context.Context, userID int64) (*models.Teacher, error) {
	sql, args, err := r.sb.Select("id").From("teachers").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get teacher query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTeacherNotFound
		}
		return nil, fmt.Errorf("failed to query teacher for user ID=%d: %w", userID, err)
	}
	return r.GetByID(ctx, id)
}

func (r *TeacherRepository) subjectsOf(ctx context.Context, teacherID int64) ([]models.Subject, error) {
	sql, args, err := r.sb.Select("sub.id", "sub.name").
		From("subjects sub").
		Join("subject_teachers st ON st.subject_id = sub.id").
		Where(squirrel.Eq{"st.teacher_id": teacherID}).
		OrderBy("sub.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build teacher subjects query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query teacher subjects: %w", err)
	}
	defer rows.Close()

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

// Create inserts a teacher, its login account and subject links in one
// transaction
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher, account *models.User, subjectIDs []int64) (int64, error) {
	var id int64
	err := runInTx(ctx, r.db, func(tx pgx.Tx) error {
		userID, err := createUserTx(ctx, tx, account)
		if err != nil {
			return err
		}

		sql, args, err := r.sb.Insert("teachers").
			Columns("user_id", "name", "surname", "email", "phone", "address",
				"img", "blood_type", "sex", "birthday").
			Values(userID, teacher.Name, teacher.Surname, teacher.Email, teacher.Phone,
				teacher.Address, teacher.Img, teacher.BloodType, teacher.Sex, teacher.Birthday).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create teacher query: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
			return fmt.Errorf("error inserting teacher: %w", err)
		}
		teacher.UserID = userID
		return r.setSubjectsTx(ctx, tx, id, subjectIDs)
	})
	if err != nil {
		return 0, err
	}

	logger.Info().Int64("teacherID", id).Msg("Teacher created")
	return id, nil
}

// Update rewrites a teacher row, its account fields and subject links
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher, username string, passwordHash string, subjectIDs []int64) error {
	err := runInTx(ctx, r.db, func(tx pgx.Tx) error {
		sql, args, err := r.sb.Update("teachers").
			SetMap(map[string]interface{}{
				"name":       teacher.Name,
				"surname":    teacher.Surname,
				"email":      teacher.Email,
				"phone":      teacher.Phone,
				"address":    teacher.Address,
				"img":        teacher.Img,
				"blood_type": teacher.BloodType,
				"sex":        teacher.Sex,
				"birthday":   teacher.Birthday,
			}).
			Where(squirrel.Eq{"id": teacher.ID}).
			Suffix("RETURNING user_id").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build update teacher query: %w", err)
		}

		var userID int64
		if err := tx.QueryRow(ctx, sql, args...).Scan(&userID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrTeacherNotFound
			}
			return fmt.Errorf("error updating teacher ID=%d: %w", teacher.ID, err)
		}
		if err := updateUserTx(ctx, tx, userID, username, teacher.Email, passwordHash); err != nil {
			return err
		}
		return r.setSubjectsTx(ctx, tx, teacher.ID, subjectIDs)
	})
	if err != nil {
		return err
	}

	logger.Info().Int64("teacherID", teacher.ID).Msg("Teacher updated")
	return nil
}

// Delete removes a teacher and its login account in one transaction
func (r *TeacherRepository) Delete(ctx context.Context, id int64) error {
	err := runInTx(ctx, r.db, func(tx pgx.Tx) error {
		sql, args, err := r.sb.Delete("teachers").
			Where(squirrel.Eq{"id": id}).
			Suffix("RETURNING user_id").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build delete teacher query: %w", err)
		}

		var userID int64
		if err := tx.QueryRow(ctx, sql, args...).Scan(&userID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrTeacherNotFound
			}
			return fmt.Errorf("error deleting teacher ID=%d: %w", id, err)
		}
		return deleteUserTx(ctx, tx, userID)
	})
	if err != nil {
		return err
	}

	logger.Info().Int64("teacherID", id).Msg("Teacher deleted")
	return nil
}

func (r *TeacherRepository) setSubjectsTx(ctx context.Context, tx pgx.Tx, teacherID int64, subjectIDs []int64) error {
	deleteSQL, deleteArgs, err := r.sb.Delete("subject_teachers").
		Where(squirrel.Eq{"teacher_id": teacherID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build clear subject links query: %w", err)
	}
	if _, err := tx.Exec(ctx, deleteSQL, deleteArgs...); err != nil {
		return fmt.Errorf("error clearing subject links: %w", err)
	}

	if len(subjectIDs) == 0 {
		return nil
	}

	insert := r.sb.Insert("subject_teachers").Columns("subject_id", "teacher_id")
	for _, subjectID := range subjectIDs {
		insert = insert.Values(subjectID, teacherID)
	}
	insertSQL, insertArgs, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build subject links query: %w", err)
	}
	if _, err := tx.Exec(ctx, insertSQL, insertArgs...); err != nil {
		return fmt.Errorf("error inserting subject links: %w", err)
	}
	return nil
}
