package model

import "time"

// Class represents a group of students an exam can be assigned to.
type Class struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Grade     int       `json:"grade"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateClassRequest is the payload for creating a class.
type CreateClassRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=50"`
	Grade int    `json:"grade" binding:"required,min=1,max=12"`
}

// UpdateClassRequest is the payload for updating a class.
type UpdateClassRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=50"`
	Grade int    `json:"grade" binding:"required,min=1,max=12"`
}
