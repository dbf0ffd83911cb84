package model

import (
	"time"

	"github.com/google/uuid"
)

// Difficulty enumerates question difficulty levels.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "Dễ"
	DifficultyMedium   Difficulty = "Trung bình"
	DifficultyHard     Difficulty = "Khó"
	DifficultyVeryHard Difficulty = "Rất khó"
)

// OptionCount is the fixed number of options every question carries.
const OptionCount = 4

// Question represents a multiple-choice question in the bank.
// Questions are immutable from the exam core's perspective: the delivery
// and grading paths only ever read them.
type Question struct {
	ID            uuid.UUID  `json:"id"`
	CategoryID    int        `json:"category_id"`
	Title         string     `json:"title"`
	Options       []string   `json:"options"` // always exactly 4 entries
	CorrectAnswer int        `json:"correct_answer"`
	Difficulty    Difficulty `json:"difficulty"`
	ImageURL      *string    `json:"image_url,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CreateQuestionRequest is the payload for adding a question to the bank.
type CreateQuestionRequest struct {
	CategoryID    int        `json:"category_id" binding:"required"`
	Title         string     `json:"title" binding:"required,min=1,max=5000"`
	Options       []string   `json:"options" binding:"required,len=4,dive,required"`
	CorrectAnswer *int       `json:"correct_answer" binding:"required,min=0,max=3"`
	Difficulty    Difficulty `json:"difficulty" binding:"required,oneof=Dễ 'Trung bình' Khó 'Rất khó'"`
	ImageURL      *string    `json:"image_url" binding:"omitempty,max=500"`
}

// UpdateQuestionRequest is the payload for editing an existing question.
type UpdateQuestionRequest struct {
	CategoryID    int        `json:"category_id" binding:"required"`
	Title         string     `json:"title" binding:"required,min=1,max=5000"`
	Options       []string   `json:"options" binding:"required,len=4,dive,required"`
	CorrectAnswer *int       `json:"correct_answer" binding:"required,min=0,max=3"`
	Difficulty    Difficulty `json:"difficulty" binding:"required,oneof=Dễ 'Trung bình' Khó 'Rất khó'"`
	ImageURL      *string    `json:"image_url" binding:"omitempty,max=500"`
}
