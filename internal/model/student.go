package model

import "time"

// Student represents a student account. Identity resolution (login, token
// validation) happens in the auth layer; the exam core only consumes the
// resolved student ID.
type Student struct {
	ID           int       `json:"id"`
	Code         string    `json:"code"` // school-issued student code
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	ClassID      int       `json:"class_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StudentLoginRequest is the payload for student authentication.
type StudentLoginRequest struct {
	Code     string `json:"code" binding:"required,min=4,max=20"`
	Password string `json:"password" binding:"required,min=4,max=128"`
}

// StudentLoginResponse is returned after successful student login.
type StudentLoginResponse struct {
	Token   string  `json:"token"`
	Student Student `json:"student"`
}

// CreateStudentRequest is the payload for creating a new student account.
type CreateStudentRequest struct {
	Code     string `json:"code" binding:"required,min=4,max=20"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	ClassID  int    `json:"class_id" binding:"required"`
}

// UpdateStudentRequest is the payload for updating an existing student.
type UpdateStudentRequest struct {
	Code     string `json:"code" binding:"required,min=4,max=20"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Password string `json:"password" binding:"omitempty,min=6,max=128"`
	ClassID  int    `json:"class_id" binding:"required"`
}
