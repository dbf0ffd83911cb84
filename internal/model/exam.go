package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamStatus enumerates the possible states of a test exam.
type ExamStatus string

const (
	ExamStatusDraft     ExamStatus = "DRAFT"
	ExamStatusPublished ExamStatus = "PUBLISHED"
)

// DefaultBufferMinutes is the grace period appended to an exam's duration
// when computing the close time.
const DefaultBufferMinutes = 5

// Exam represents a test exam assembled by a teacher for one class.
//
// CloseTime is always derived as OpenTime + DurationMinutes + BufferMinutes;
// it is recomputed on every write and never directly settable.
type Exam struct {
	ID                    uuid.UUID  `json:"id"`
	Title                 string     `json:"title"`
	SubjectID             int        `json:"subject_id"`
	ClassID               int        `json:"class_id"`
	AuthorID              int        `json:"author_id"`
	DurationMinutes       int        `json:"duration_minutes"`
	BufferMinutes         int        `json:"buffer_minutes"`
	OpenTime              *time.Time `json:"open_time,omitempty"`
	CloseTime             *time.Time `json:"close_time,omitempty"`
	PassingScore          float64    `json:"passing_score"`
	ShowResultImmediately bool       `json:"show_result_immediately"`
	ShowCorrectAnswers    bool       `json:"show_correct_answers"`
	ShuffleQuestions      bool       `json:"shuffle_questions"`
	ShuffleOptions        bool       `json:"shuffle_options"`
	Status                ExamStatus `json:"status"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// ExamQuestion is one item on an exam: a question reference with a weight.
// The slice order in the exams' item list is the canonical question order.
type ExamQuestion struct {
	QuestionID uuid.UUID `json:"question_id"`
	Points     float64   `json:"points"`
	OrderNum   int       `json:"order_num"`
}

// CreateExamRequest is the payload for creating a new exam draft.
type CreateExamRequest struct {
	Title                 string     `json:"title" binding:"required,min=3,max=255"`
	SubjectID             int        `json:"subject_id" binding:"required"`
	ClassID               int        `json:"class_id" binding:"required"`
	DurationMinutes       int        `json:"duration_minutes" binding:"required,min=1,max=480"`
	BufferMinutes         *int       `json:"buffer_minutes" binding:"omitempty,min=0,max=60"`
	OpenTime              *time.Time `json:"open_time" binding:"omitempty"`
	PassingScore          float64    `json:"passing_score" binding:"min=0,max=100"`
	ShowResultImmediately bool       `json:"show_result_immediately"`
	ShowCorrectAnswers    bool       `json:"show_correct_answers"`
	ShuffleQuestions      *bool      `json:"shuffle_questions" binding:"omitempty"`
	ShuffleOptions        *bool      `json:"shuffle_options" binding:"omitempty"`
}

// UpdateExamRequest is the payload for updating a draft exam.
type UpdateExamRequest struct {
	Title                 string     `json:"title" binding:"required,min=3,max=255"`
	SubjectID             int        `json:"subject_id" binding:"required"`
	ClassID               int        `json:"class_id" binding:"required"`
	DurationMinutes       int        `json:"duration_minutes" binding:"required,min=1,max=480"`
	BufferMinutes         *int       `json:"buffer_minutes" binding:"omitempty,min=0,max=60"`
	OpenTime              *time.Time `json:"open_time" binding:"omitempty"`
	PassingScore          float64    `json:"passing_score" binding:"min=0,max=100"`
	ShowResultImmediately bool       `json:"show_result_immediately"`
	ShowCorrectAnswers    bool       `json:"show_correct_answers"`
	ShuffleQuestions      *bool      `json:"shuffle_questions" binding:"omitempty"`
	ShuffleOptions        *bool      `json:"shuffle_options" binding:"omitempty"`
}

// ExamItemRequest is one entry of a question attachment payload.
type ExamItemRequest struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	Points     float64   `json:"points" binding:"min=0"`
}

// ReplaceExamItemsRequest replaces the full ordered item list of a draft exam.
type ReplaceExamItemsRequest struct {
	Items []ExamItemRequest `json:"items" binding:"required,dive"`
}
