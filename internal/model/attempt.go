package model

import (
	"time"

	"github.com/google/uuid"
)

// OptionMap maps a displayed (shuffled) option index to its original index.
// JSON object keys are decoded into the int keys natively by encoding/json.
type OptionMap map[int]int

// Attempt is a student's single graded submission for one exam.
//
// Exactly one attempt may exist per (exam, student) pair, enforced by a
// unique index in PostgreSQL, which the write path treats as the
// authoritative guard. An attempt is written once at submission time and
// never updated afterwards.
type Attempt struct {
	ID               uuid.UUID                   `json:"id"`
	ExamID           uuid.UUID                   `json:"exam_id"`
	StudentID        int                         `json:"student_id"`
	Answers          map[uuid.UUID]int           `json:"answers"`
	ShuffleMappings  map[uuid.UUID]OptionMap     `json:"shuffle_mappings"`
	QuestionOrder    []uuid.UUID                 `json:"question_order"`
	Score            float64                     `json:"score"`
	TotalPoints      float64                     `json:"total_points"`
	Percentage       float64                     `json:"percentage"`
	ScoreOut10       float64                     `json:"score_out_10"`
	CorrectCount     int                         `json:"correct_count"`
	TotalQuestions   int                         `json:"total_questions"`
	IsPassed         bool                        `json:"is_passed"`
	TimeSpentSeconds int                         `json:"time_spent_seconds"`
	SubmittedAt      time.Time                   `json:"submitted_at"`
}

// SubmitAttemptRequest is the payload a student sends to finish an exam.
// Answers are keyed by question ID and expressed in original-index space
// (the client converts from shuffled indices through the shuffle map before
// transmission). The shuffle metadata is persisted verbatim so the review
// view can replay the exact ordering the student saw.
type SubmitAttemptRequest struct {
	Answers          map[uuid.UUID]int       `json:"answers" binding:"required"`
	ShuffleMappings  map[uuid.UUID]OptionMap `json:"shuffle_mappings" binding:"required"`
	QuestionOrder    []uuid.UUID             `json:"question_order" binding:"required,min=1"`
	TimeSpentSeconds int                     `json:"time_spent_seconds" binding:"min=0"`
}
