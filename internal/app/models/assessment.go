package models

import "time"

// Exam defines the exam model based on the 'exams' table
type Exam struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	StartTime time.Time `json:"startTime" db:"start_time"`
	EndTime   time.Time `json:"endTime" db:"end_time"`
	LessonID  int64     `json:"lessonId" db:"lesson_id"`

	// Relations (populated when needed)
	Lesson *Lesson `json:"lesson,omitempty"`
}

// Assignment defines the assignment model based on the 'assignments' table
type Assignment struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	StartDate time.Time `json:"startDate" db:"start_date"`
	DueDate   time.Time `json:"dueDate" db:"due_date"`
	LessonID  int64     `json:"lessonId" db:"lesson_id"`

	// Relations (populated when needed)
	Lesson *Lesson `json:"lesson,omitempty"`
}

// Result defines the result model based on the 'results' table.
// Exactly one of ExamID and AssignmentID is set.
type Result struct {
	ID           int64  `json:"id" db:"id"`
	Score        int    `json:"score" db:"score"`
	ExamID       *int64 `json:"examId,omitempty" db:"exam_id"`
	AssignmentID *int64 `json:"assignmentId,omitempty" db:"assignment_id"`
	StudentID    int64  `json:"studentId" db:"student_id"`

	// Relations (populated when needed)
	Exam       *Exam       `json:"exam,omitempty"`
	Assignment *Assignment `json:"assignment,omitempty"`
	Student    *Student    `json:"student,omitempty"`

	// Title of the exam or assignment the score belongs to
	Title string `json:"title,omitempty"`
}
