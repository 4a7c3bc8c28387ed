package dto

import "time"

// CreateStudentRequest represents student creation data.
// Username and password seed the student's login account.
type CreateStudentRequest struct {
	Username  string    `json:"username" binding:"required,min=3"`
	Password  string    `json:"password" binding:"required,min=8"`
	Email     *string   `json:"email,omitempty" binding:"omitempty,email"`
	Name      string    `json:"name" binding:"required"`
	Surname   string    `json:"surname" binding:"required"`
	Phone     *string   `json:"phone,omitempty"`
	Address   string    `json:"address" binding:"required"`
	Img       *string   `json:"img,omitempty"`
	BloodType string    `json:"bloodType" binding:"required"`
	Sex       string    `json:"sex" binding:"required,oneof=MALE FEMALE"`
	Birthday  time.Time `json:"birthday" binding:"required"`
	GradeID   int64     `json:"gradeId" binding:"required,gt=0"`
	ClassID   int64     `json:"classId" binding:"required,gt=0"`
	ParentID  int64     `json:"parentId" binding:"required,gt=0"`
}

// UpdateStudentRequest represents student update data.
// Password is optional; when empty the stored hash is kept.
type UpdateStudentRequest struct {
	Username  string    `json:"username" binding:"required,min=3"`
	Password  string    `json:"password,omitempty" binding:"omitempty,min=8"`
	Email     *string   `json:"email,omitempty" binding:"omitempty,email"`
	Name      string    `json:"name" binding:"required"`
	Surname   string    `json:"surname" binding:"required"`
	Phone     *string   `json:"phone,omitempty"`
	Address   string    `json:"address" binding:"required"`
	Img       *string   `json:"img,omitempty"`
	BloodType string    `json:"bloodType" binding:"required"`
	Sex       string    `json:"sex" binding:"required,oneof=MALE FEMALE"`
	Birthday  time.Time `json:"birthday" binding:"required"`
	GradeID   int64     `json:"gradeId" binding:"required,gt=0"`
	ClassID   int64     `json:"classId" binding:"required,gt=0"`
	ParentID  int64     `json:"parentId" binding:"required,gt=0"`
}

// CreateTeacherRequest represents teacher creation data
type CreateTeacherRequest struct {
	Username   string    `json:"username" binding:"required,min=3"`
	Password   string    `json:"password" binding:"required,min=8"`
	Email      *string   `json:"email,omitempty" binding:"omitempty,email"`
	Name       string    `json:"name" binding:"required"`
	Surname    string    `json:"surname" binding:"required"`
	Phone      *string   `json:"phone,omitempty"`
	Address    string    `json:"address" binding:"required"`
	Img        *string   `json:"img,omitempty"`
	BloodType  string    `json:"bloodType" binding:"required"`
	Sex        string    `json:"sex" binding:"required,oneof=MALE FEMALE"`
	Birthday   time.Time `json:"birthday" binding:"required"`
	SubjectIDs []int64   `json:"subjectIds,omitempty"`
}

// UpdateTeacherRequest represents teacher update data
type UpdateTeacherRequest struct {
	Username   string    `json:"username" binding:"required,min=3"`
	Password   string    `json:"password,omitempty" binding:"omitempty,min=8"`
	Email      *string   `json:"email,omitempty" binding:"omitempty,email"`
	Name       string    `json:"name" binding:"required"`
	Surname    string    `json:"surname" binding:"required"`
	Phone      *string   `json:"phone,omitempty"`
	Address    string    `json:"address" binding:"required"`
	Img        *string   `json:"img,omitempty"`
	BloodType  string    `json:"bloodType" binding:"required"`
	Sex        string    `json:"sex" binding:"required,oneof=MALE FEMALE"`
	Birthday   time.Time `json:"birthday" binding:"required"`
	SubjectIDs []int64   `json:"subjectIds,omitempty"`
}

// CreateParentRequest represents parent creation data
type CreateParentRequest struct {
	Username string  `json:"username" binding:"required,min=3"`
	Password string  `json:"password" binding:"required,min=8"`
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
	Name     string  `json:"name" binding:"required"`
	Surname  string  `json:"surname" binding:"required"`
	Phone    string  `json:"phone" binding:"required"`
	Address  string  `json:"address" binding:"required"`
}

// UpdateParentRequest represents parent update data
type UpdateParentRequest struct {
	Username string  `json:"username" binding:"required,min=3"`
	Password string  `json:"password,omitempty" binding:"omitempty,min=8"`
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
	Name     string  `json:"name" binding:"required"`
	Surname  string  `json:"surname" binding:"required"`
	Phone    string  `json:"phone" binding:"required"`
	Address  string  `json:"address" binding:"required"`
}
