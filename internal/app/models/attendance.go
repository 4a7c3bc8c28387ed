package models

import "time"

// Attendance defines the attendance model based on the 'attendances' table
type Attendance struct {
	ID        int64     `json:"id" db:"id"`
	Date      time.Time `json:"date" db:"date"`
	Present   bool      `json:"present" db:"present"`
	StudentID int64     `json:"studentId" db:"student_id"`
	LessonID  int64     `json:"lessonId" db:"lesson_id"`

	// Relations (populated when needed)
	Student *Student `json:"student,omitempty"`
	Lesson  *Lesson  `json:"lesson,omitempty"`
}
