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

// BulletinRepository handles event and announcement database operations
type BulletinRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewBulletinRepository creates a new BulletinRepository
func NewBulletinRepository(db *pgxpool.Pool) *BulletinRepository {
	return &BulletinRepository{db: db, sb: statementBuilder()}
}

// bulletinScope: school-wide rows (class_id IS NULL) are visible to everyone;
// class-bound rows only to viewers attached to that class.
func bulletinScope(column string) listquery.ScopeFunc {
	return func(v listquery.Viewer) squirrel.Sqlizer {
		switch v.Role {
		case models.RoleTeacher:
			return squirrel.Expr(
				"("+column+" IS NULL OR "+column+" IN ("+
					"SELECT l.class_id FROM lessons l WHERE l.teacher_id = ? "+
					"UNION SELECT c.id FROM classes c WHERE c.supervisor_id = ?))",
				v.PersonID, v.PersonID,
			)
		case models.RoleStudent:
			return squirrel.Expr(
				"("+column+" IS NULL OR "+column+" IN (SELECT s.class_id FROM students s WHERE s.id = ?))",
				v.PersonID,
			)
		case models.RoleParent:
			return squirrel.Expr(
				"("+column+" IS NULL OR "+column+" IN (SELECT s.class_id FROM students s WHERE s.parent_id = ?))",
				v.PersonID,
			)
		}
		return listquery.MatchNone()
	}
}

// EventListSpec declares the event list endpoint
func EventListSpec() listquery.Spec {
	return listquery.Spec{
		SearchColumns: []string{"e.title", "e.description"},
		Filters: map[string]listquery.FilterFunc{
			"classId": listquery.IntColumn("e.class_id"),
			"date":    listquery.DateColumn("e.start_time"),
		},
		Sorts: map[string]string{
			"title":     "e.title",
			"startTime": "e.start_time",
			"className": "c.name",
		},
		DefaultOrder: []string{"e.start_time ASC"},
		TieBreak:     "e.id ASC",
		Scope:        bulletinScope("e.class_id"),
	}
}

// AnnouncementListSpec declares the announcement list endpoint
func AnnouncementListSpec() listquery.Spec {
	return listquery.Spec{
		SearchColumns: []string{"an.title", "an.description"},
		Filters: map[string]listquery.FilterFunc{
			"classId": listquery.IntColumn("an.class_id"),
			"date":    listquery.DateColumn("an.date"),
		},
		Sorts: map[string]string{
			"title":     "an.title",
			"date":      "an.date",
			"className": "c.name",
		},
		DefaultOrder: []string{"an.date DESC"},
		TieBreak:     "an.id ASC",
		Scope:        bulletinScope("an.class_id"),
	}
}

// ----- events -----

func (r *BulletinRepository) eventSelect() squirrel.SelectBuilder {
	return r.sb.Select(
		"e.id", "e.title", "e.description", "e.start_time", "e.end_time", "e.class_id",
		"COALESCE(c.name, '') AS class_name",
	).
		From("events e").
		LeftJoin("classes c ON e.class_id = c.id")
}

func (r *BulletinRepository) eventCount() squirrel.SelectBuilder {
	return r.sb.Select("COUNT(*)").
		From("events e").
		LeftJoin("classes c ON e.class_id = c.id")
}

func scanEventRows(rows pgx.Rows) ([]models.Event, error) {
	var events []models.Event
	for rows.Next() {
		var event models.Event
		var className string
		err := rows.Scan(
			&event.ID, &event.Title, &event.Description, &event.StartTime, &event.EndTime,
			&event.ClassID, &className,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		if event.ClassID != nil {
			event.Class = &models.Class{ID: *event.ClassID, Name: className}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}
	return events, nil
}

// ListEvents returns one page of events plus the total matching count
func (r *BulletinRepository) ListEvents(ctx context.Context, params listquery.Params, viewer listquery.Viewer) ([]models.Event, int, error) {
	q := EventListSpec().Build(params, viewer)

	total, err := queryCount(ctx, r.db, r.eventCount().Where(q.Where))
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []models.Event{}, 0, nil
	}

	sql, args, err := applyListQuery(r.eventSelect(), q).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list events query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events, err := scanEventRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// SearchEvents returns up to limit events matching q, scoped to the viewer
func (r *BulletinRepository) SearchEvents(ctx context.Context, q string, viewer listquery.Viewer, limit uint64) ([]models.Event, error) {
	where := EventListSpec().SearchWhere(q, viewer)

	sql, args, err := r.eventSelect().
		Where(where).
		OrderBy("e.title ASC", "e.id ASC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build search events query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search events: %w", err)
	}
	defer rows.Close()

	return scanEventRows(rows)
}

// GetEventByID retrieves an event by its id
func (r *BulletinRepository) GetEventByID(ctx context.Context, id int64) (*models.Event, error) {
	sql, args, err := r.eventSelect().Where(squirrel.Eq{"e.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get event query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query event ID=%d: %w", id, err)
	}
	defer rows.Close()

	events, err := scanEventRows(rows)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, apperrors.ErrEventNotFound
	}
	return &events[0], nil
}

// CreateEvent inserts an event
func (r *BulletinRepository) CreateEvent(ctx context.Context, event *models.Event) (int64, error) {
	sql, args, err := r.sb.Insert("events").
		Columns("title", "description", "start_time", "end_time", "class_id").
		Values(event.Title, event.Description, event.StartTime, event.EndTime, event.ClassID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create event query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("error inserting event: %w", err)
	}

	logger.Info().Int64("eventID", id).Msg("Event created")
	return id, nil
}

// UpdateEvent rewrites an event row
func (r *BulletinRepository) UpdateEvent(ctx context.Context, event *models.Event) error {
	sql, args, err := r.sb.Update("events").
		SetMap(map[string]interface{}{
			"title":       event.Title,
			"description": event.Description,
			"start_time":  event.StartTime,
			"end_time":    event.EndTime,
			"class_id":    event.ClassID,
		}).
		Where(squirrel.Eq{"id": event.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update event query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating event ID=%d: %w", event.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}
	return nil
}

// DeleteEvent removes an event
func (r *BulletinRepository) DeleteEvent(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("events").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete event query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting event ID=%d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}

	logger.Info().Int64("eventID", id).Msg("Event deleted")
	return nil
}

// ----- announcements -----

func (r *BulletinRepository) announcementSelect() squirrel.SelectBuilder {
	return r.sb.Select(
		"an.id", "an.title", "an.description", "an.date", "an.class_id",
		"COALESCE(c.name, '') AS class_name",
	).
		From("announcements an").
		LeftJoin("classes c ON an.class_id = c.id")
}

func (r *BulletinRepository) announcementCount() squirrel.SelectBuilder {
	return r.sb.Select("COUNT(*)").
		From("announcements an").
		LeftJoin("classes c ON an.class_id = c.id")
}

func scanAnnouncementRows(rows pgx.Rows) ([]models.Announcement, error) {
	var announcements []models.Announcement
	for rows.Next() {
		var announcement models.Announcement
		var className string
		err := rows.Scan(
			&announcement.ID, &announcement.Title, &announcement.Description,
			&announcement.Date, &announcement.ClassID, &className,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan announcement row: %w", err)
		}
		if announcement.ClassID != nil {
			announcement.Class = &models.Class{ID: *announcement.ClassID, Name: className}
		}
		announcements = append(announcements, announcement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating announcement rows: %w", err)
	}
	return announcements, nil
}

// ListAnnouncements returns one page of announcements plus the total matching count
func (r *BulletinRepository) ListAnnouncements(ctx context.Context, params listquery.Params, viewer listquery.Viewer) ([]models.Announcement, int, error) {
	q := AnnouncementListSpec().Build(params, viewer)

	total, err := queryCount(ctx, r.db, r.announcementCount().Where(q.Where))
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []models.Announcement{}, 0, nil
	}

	sql, args, err := applyListQuery(r.announcementSelect(), q).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list announcements query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query announcements: %w", err)
	}
	defer rows.Close()

	announcements, err := scanAnnouncementRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return announcements, total, nil
}

// SearchAnnouncements returns up to limit announcements matching q, scoped to the viewer
func (r *BulletinRepository) SearchAnnouncements(ctx context.Context, q string, viewer listquery.Viewer, limit uint64) ([]models.Announcement, error) {
	where := AnnouncementListSpec().SearchWhere(q, viewer)

	sql, args, err := r.announcementSelect().
		Where(where).
		OrderBy("an.title ASC", "an.id ASC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build search announcements query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search announcements: %w", err)
	}
	defer rows.Close()

	return scanAnnouncementRows(rows)
}

// GetAnnouncementByID retrieves an announcement by its id
func (r *BulletinRepository) GetAnnouncementByID(ctx context.Context, id int64) (*models.Announcement, error) {
	sql, args, err := r.announcementSelect().Where(squirrel.Eq{"an.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get announcement query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query announcement ID=%d: %w", id, err)
	}
	defer rows.Close()

	announcements, err := scanAnnouncementRows(rows)
	if err != nil {
		return nil, err
	}
	if len(announcements) == 0 {
		return nil, apperrors.ErrAnnouncementNotFound
	}
	return &announcements[0], nil
}

// CreateAnnouncement inserts an announcement
func (r *BulletinRepository) CreateAnnouncement(ctx context.Context, announcement *models.Announcement) (int64, error) {
	sql, args, err := r.sb.Insert("announcements").
		Columns("title", "description", "date", "class_id").
		Values(announcement.Title, announcement.Description, announcement.Date, announcement.ClassID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create announcement query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("error inserting announcement: %w", err)
	}

	logger.Info().Int64("announcementID", id).Msg("Announcement created")
	return id, nil
}

// UpdateAnnouncement rewrites an announcement row
func (r *BulletinRepository) UpdateAnnouncement(ctx context.Context, announcement *models.Announcement) error {
	sql, args, err := r.sb.Update("announcements").
		SetMap(map[string]interface{}{
			"title":       announcement.Title,
			"description": announcement.Description,
			"date":        announcement.Date,
			"class_id":    announcement.ClassID,
		}).
		Where(squirrel.Eq{"id": announcement.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update announcement query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating announcement ID=%d: %w", announcement.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAnnouncementNotFound
	}
	return nil
}

// DeleteAnnouncement removes an announcement
func (r *BulletinRepository) DeleteAnnouncement(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("announcements").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete announcement query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting announcement ID=%d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAnnouncementNotFound
	}

	logger.Info().Int64("announcementID", id).Msg("Announcement deleted")
	return nil
}
