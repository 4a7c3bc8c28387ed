package models

import "time"

// Student defines the student model based on the 'students' table
type Student struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Surname   string    `json:"surname" db:"surname"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Address   string    `json:"address" db:"address"`
	Img       *string   `json:"img,omitempty" db:"img"`
	BloodType string    `json:"bloodType" db:"blood_type"`
	Sex       Sex       `json:"sex" db:"sex"`
	Birthday  time.Time `json:"birthday" db:"birthday"`
	GradeID   int64     `json:"gradeId" db:"grade_id"`
	ClassID   int64     `json:"classId" db:"class_id"`
	ParentID  int64     `json:"parentId" db:"parent_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// Relations (populated when needed)
	User   *User   `json:"user,omitempty"`
	Grade  *Grade  `json:"grade,omitempty"`
	Class  *Class  `json:"class,omitempty"`
	Parent *Parent `json:"parent,omitempty"`
}

// Teacher defines the teacher model based on the 'teachers' table
type Teacher struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Surname   string    `json:"surname" db:"surname"`
	Email     *string   `json:"email,omitempty" db:"email"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Address   string    `json:"address" db:"address"`
	Img       *string   `json:"img,omitempty" db:"img"`
	BloodType string    `json:"bloodType" db:"blood_type"`
	Sex       Sex       `json:"sex" db:"sex"`
	Birthday  time.Time `json:"birthday" db:"birthday"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// Relations (populated when needed)
	User     *User     `json:"user,omitempty"`
	Subjects []Subject `json:"subjects,omitempty"`
	Classes  []Class   `json:"classes,omitempty"`
}

// Parent defines the parent model based on the 'parents' table
type Parent struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Surname   string    `json:"surname" db:"surname"`
	Email     *string   `json:"email,omitempty" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	Address   string    `json:"address" db:"address"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// Relations (populated when needed)
	User     *User     `json:"user,omitempty"`
	Students []Student `json:"students,omitempty"`
}
