package models

import "time"

// Event defines the event model based on the 'events' table.
// A nil ClassID means the event is visible school-wide.
type Event struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	StartTime   time.Time `json:"startTime" db:"start_time"`
	EndTime     time.Time `json:"endTime" db:"end_time"`
	ClassID     *int64    `json:"classId,omitempty" db:"class_id"`

	// Relations (populated when needed)
	Class *Class `json:"class,omitempty"`
}

// Announcement defines the announcement model based on the 'announcements'
// table. A nil ClassID means the announcement is visible school-wide.
type Announcement struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Date        time.Time `json:"date" db:"date"`
	ClassID     *int64    `json:"classId,omitempty" db:"class_id"`

	// Relations (populated when needed)
	Class *Class `json:"class,omitempty"`
}
