package models

import "time"

// Grade defines the grade (year level) model based on the 'grades' table
type Grade struct {
	ID    int64 `json:"id" db:"id"`
	Level int   `json:"level" db:"level"`
}

// Class defines the class model based on the 'classes' table
type Class struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	Capacity     int    `json:"capacity" db:"capacity"`
	GradeID      int64  `json:"gradeId" db:"grade_id"`
	SupervisorID *int64 `json:"supervisorId,omitempty" db:"supervisor_id"`

	// Relations (populated when needed)
	Grade        *Grade   `json:"grade,omitempty"`
	Supervisor   *Teacher `json:"supervisor,omitempty"`
	StudentCount int      `json:"studentCount,omitempty"`
}

// Subject defines the subject model based on the 'subjects' table
type Subject struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`

	// Relations (populated when needed)
	Teachers []Teacher `json:"teachers,omitempty"`
}

// Lesson defines the lesson model based on the 'lessons' table
type Lesson struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Day       Day       `json:"day" db:"day"`
	StartTime time.Time `json:"startTime" db:"start_time"`
	EndTime   time.Time `json:"endTime" db:"end_time"`
	SubjectID int64     `json:"subjectId" db:"subject_id"`
	ClassID   int64     `json:"classId" db:"class_id"`
	TeacherID int64     `json:"teacherId" db:"teacher_id"`

	// Relations (populated when needed)
	Subject *Subject `json:"subject,omitempty"`
	Class   *Class   `json:"class,omitempty"`
	Teacher *Teacher `json:"teacher,omitempty"`
}
