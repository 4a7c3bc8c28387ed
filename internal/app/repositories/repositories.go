package repositories

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/schoolhub/internal/app/listquery"
)

// Repositories bundles every repository for dependency injection
type Repositories struct {
	db *pgxpool.Pool

	UserRepository       *UserRepository
	StudentRepository    *StudentRepository
	TeacherRepository    *TeacherRepository
	ParentRepository     *ParentRepository
	ClassRepository      *ClassRepository
	LessonRepository     *LessonRepository
	AssessmentRepository *AssessmentRepository
	AttendanceRepository *AttendanceRepository
	BulletinRepository   *BulletinRepository
}

// NewRepositories creates all repositories sharing one connection pool
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		db:                   db,
		UserRepository:       NewUserRepository(db),
		StudentRepository:    NewStudentRepository(db),
		TeacherRepository:    NewTeacherRepository(db),
		ParentRepository:     NewParentRepository(db),
		ClassRepository:      NewClassRepository(db),
		LessonRepository:     NewLessonRepository(db),
		AssessmentRepository: NewAssessmentRepository(db),
		AttendanceRepository: NewAttendanceRepository(db),
		BulletinRepository:   NewBulletinRepository(db),
	}
}

// CountTable returns the row count of one table; the dashboard cards use it
func (r *Repositories) CountTable(ctx context.Context, table string) (int, error) {
	return queryCount(ctx, r.db, statementBuilder().Select("COUNT(*)").From(table))
}

func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// queryCount runs a COUNT(*) builder and scans the total
func queryCount(ctx context.Context, db *pgxpool.Pool, builder squirrel.SelectBuilder) (int, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var total int
	if err := db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return total, nil
}

// applyListQuery attaches the built WHERE/ORDER BY/window to a select
func applyListQuery(sel squirrel.SelectBuilder, q listquery.Query) squirrel.SelectBuilder {
	if len(q.Where) > 0 {
		sel = sel.Where(q.Where)
	}
	if len(q.OrderBy) > 0 {
		sel = sel.OrderBy(q.OrderBy...)
	}
	return sel.Limit(q.Limit).Offset(q.Offset)
}

// intExpr builds a filter from a SQL fragment with one placeholder bound to
// the parsed numeric value; non-numeric input matches nothing.
func intExpr(fragment string) listquery.FilterFunc {
	return func(value string) squirrel.Sqlizer {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return listquery.MatchNone()
		}
		return squirrel.Expr(fragment, n)
	}
}
