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

// ParentRepository handles parent database operations
type ParentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewParentRepository creates a new ParentRepository
func NewParentRepository(db *pgxpool.Pool) *ParentRepository {
	return &ParentRepository{db: db, sb: statementBuilder()}
}

// ParentListSpec declares the parent list endpoint
func ParentListSpec() listquery.Spec {
	return listquery.Spec{
		SearchColumns: []string{"p.name", "p.surname", "p.email"},
		Filters:       map[string]listquery.FilterFunc{},
		Sorts: map[string]string{
			"name":      "p.name",
			"surname":   "p.surname",
			"createdAt": "p.created_at",
		},
		DefaultOrder: []string{"p.created_at DESC"},
		TieBreak:     "p.id ASC",
		Scope:        parentScope,
	}
}

// parentScope: teachers see the parents of students they teach or supervise;
// a student sees its own parent; a parent sees itself.
func parentScope(v listquery.Viewer) squirrel.Sqlizer {
	switch v.Role {
	case models.RoleTeacher:
		return squirrel.Expr(
			"p.id IN (SELECT s.parent_id FROM students s WHERE"+
				" s.class_id IN (SELECT l.class_id FROM lessons l WHERE l.teacher_id = ?)"+
				" OR s.class_id IN (SELECT sc.id FROM classes sc WHERE sc.supervisor_id = ?))",
			v.PersonID, v.PersonID,
		)
	case models.RoleStudent:
		return squirrel.Expr("p.id IN (SELECT s.parent_id FROM students s WHERE s.id = ?)", v.PersonID)
	case models.RoleParent:
		return squirrel.Eq{"p.id": v.PersonID}
	}
	return listquery.MatchNone()
}

const parentColumns = "p.id, p.user_id, p.name, p.surname, p.email, p.phone, p.address, p.created_at"

func scanParentRows(rows pgx.Rows) ([]models.Parent, error) {
	var parents []models.Parent
	for rows.Next() {
		var parent models.Parent
		err := rows.Scan(
			&parent.ID, &parent.UserID, &parent.Name, &parent.Surname,
			&parent.Email, &parent.Phone, &parent.Address, &parent.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan parent row: %w", err)
		}
		parents = append(parents, parent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parent rows: %w", err)
	}
	return parents, nil
}

// List returns one page of parents plus the total matching count
func (r *ParentRepository) List(ctx context.Context, params listquery.Params, viewer listquery.Viewer) ([]models.Parent, int, error) {
	q := ParentListSpec().Build(params, viewer)

	total, err := queryCount(ctx, r.db, r.sb.Select("COUNT(*)").From("parents p").Where(q.Where))
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []models.Parent{}, 0, nil
	}

	sql, args, err := applyListQuery(r.sb.Select(parentColumns).From("parents p"), q).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list parents query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query parents: %w", err)
	}
	defer rows.Close()

	parents, err := scanParentRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return parents, total, nil
}

// Search returns up to limit parents matching q. The aggregate search
// service additionally restricts this type to admins.
func (r *ParentRepository) Search(ctx context.Context, q string, viewer listquery.Viewer, limit uint64) ([]models.Parent, error) {
	where := ParentListSpec().SearchWhere(q, viewer)

	sql, args, err := r.sb.Select(parentColumns).From("parents p").
		Where(where).
		OrderBy("p.name ASC", "p.id ASC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build search parents query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search parents: %w", err)
	}
	defer rows.Close()

	return scanParentRows(rows)
}

// GetByID retrieves a parent with children attached
func (r *ParentRepository) GetByID(ctx context.Context, id int64) (*models.Parent, error) {
	sql, args, err := r.sb.Select(parentColumns).From("parents p").
		Where(squirrel.Eq{"p.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get parent query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query parent ID=%d: %w", id, err)
	}
	parents, err := scanParentRows(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(parents) == 0 {
		return nil, apperrors.ErrParentNotFound
	}
	parent := parents[0]

	childSQL, childArgs, err := r.sb.Select("s.id", "s.name", "s.surname", "s.class_id").
		From("students s").
		Where(squirrel.Eq{"s.parent_id": id}).
		OrderBy("s.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build parent children query: %w", err)
	}
	childRows, err := r.db.Query(ctx, childSQL, childArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to query parent children: %w", err)
	}
	defer childRows.Close()
	for childRows.Next() {
		var child models.Student
		if err := childRows.Scan(&child.ID, &child.Name, &child.Surname, &child.ClassID); err != nil {
			return nil, fmt.Errorf("failed to scan child row: %w", err)
		}
		parent.Students = append(parent.Students, child)
	}
	if err := childRows.Err(); err != nil {
		return nil, err
	}
	return &parent, nil
}

// GetByUserID resolves the parent record bound to a login account
func (r *ParentRepository) GetByUserID(ctx context.Context, userID int64) (*models.Parent, error) {
	sql, args, err := r.sb.Select("id").From("parents").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get parent query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrParentNotFound
		}
		return nil, fmt.Errorf("failed to query parent for user ID=%d: %w", userID, err)
	}
	return r.GetByID(ctx, id)
}

// Create inserts a parent and its login account in one transaction
func (r *ParentRepository) Create(ctx context.Context, parent *models.Parent, account *models.User) (int64, error) {
	var id int64
	err := runInTx(ctx, r.db, func(tx pgx.Tx) error {
		userID, err := createUserTx(ctx, tx, account)
		if err != nil {
			return err
		}

		sql, args, err := r.sb.Insert("parents").
			Columns("user_id", "name", "surname", "email", "phone", "address").
			Values(userID, parent.Name, parent.Surname, parent.Email, parent.Phone, parent.Address).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create parent query: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
			return fmt.Errorf("error inserting parent: %w", err)
		}
		parent.UserID = userID
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Info().Int64("parentID", id).Msg("Parent created")
	return id, nil
}

// Update rewrites a parent row and its account fields in one transaction
func (r *ParentRepository) Update(ctx context.Context, parent *models.Parent, username string, passwordHash string) error {
	err := runInTx(ctx, r.db, func(tx pgx.Tx) error {
		sql, args, err := r.sb.Update("parents").
			SetMap(map[string]interface{}{
				"name":    parent.Name,
				"surname": parent.Surname,
				"email":   parent.Email,
				"phone":   parent.Phone,
				"address": parent.Address,
			}).
			Where(squirrel.Eq{"id": parent.ID}).
			Suffix("RETURNING user_id").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build update parent query: %w", err)
		}

		var userID int64
		if err := tx.QueryRow(ctx, sql, args...).Scan(&userID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrParentNotFound
			}
			return fmt.Errorf("error updating parent ID=%d: %w", parent.ID, err)
		}
		return updateUserTx(ctx, tx, userID, username, parent.Email, passwordHash)
	})
	if err != nil {
		return err
	}

	logger.Info().Int64("parentID", parent.ID).Msg("Parent updated")
	return nil
}

// Delete removes a parent and its login account in one transaction
func (r *ParentRepository) Delete(ctx context.Context, id int64) error {
	err := runInTx(ctx, r.db, func(tx pgx.Tx) error {
		sql, args, err := r.sb.Delete("parents").
			Where(squirrel.Eq{"id": id}).
			Suffix("RETURNING user_id").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build delete parent query: %w", err)
		}

		var userID int64
		if err := tx.QueryRow(ctx, sql, args...).Scan(&userID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrParentNotFound
			}
			return fmt.Errorf("error deleting parent ID=%d: %w", id, err)
		}
		return deleteUserTx(ctx, tx, userID)
	})
	if err != nil {
		return err
	}

	logger.Info().Int64("parentID", id).Msg("Parent deleted")
	return nil
}
