package exam

import (
	"time"

	"github.com/eduvio/examdesk/internal/model"
	"github.com/google/uuid"
)

// ReviewOption is one option as the student originally saw it, annotated
// for review. IsCorrect is only meaningful when the exam exposes correct
// answers.
type ReviewOption struct {
	Text            string `json:"text"`
	OriginalIndex   int    `json:"original_index"`
	IsCorrect       bool   `json:"is_correct"`
	IsStudentAnswer bool   `json:"is_student_answer"`
}

// ReviewQuestion is a graded question reconstructed in the exact display
// order the student experienced during the take.
type ReviewQuestion struct {
	QuestionID   uuid.UUID      `json:"question_id"`
	Title        string         `json:"title"`
	ImageURL     *string        `json:"image_url,omitempty"`
	Options      []ReviewOption `json:"options"`
	Answered     bool           `json:"answered"`
	Correct      bool           `json:"correct"`
	PointsEarned float64        `json:"points_earned"`
	Points       float64        `json:"points"`
}

// ReviewSummary is the aggregate slice of a graded attempt.
type ReviewSummary struct {
	Score            float64    `json:"score"`
	TotalPoints      float64    `json:"total_points"`
	Percentage       float64    `json:"percentage"`
	ScoreOut10       float64    `json:"score_out_10"`
	CorrectCount     int        `json:"correct_count"`
	TotalQuestions   int        `json:"total_questions"`
	IsPassed         bool       `json:"is_passed"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	SubmittedAt      time.Time `json:"submitted_at"`
}

// ReviewView is what a student may see of their finished attempt, gated by
// the exam's visibility flags.
type ReviewView struct {
	Summary   *ReviewSummary   `json:"summary,omitempty"`
	Questions []ReviewQuestion `json:"questions,omitempty"`
}

// ReviewVisibility carries the exam flags that gate review content.
type ReviewVisibility struct {
	ShowSummary   bool
	ShowQuestions bool
}

// Reconstruct rebuilds the review of a submitted attempt from its persisted
// order metadata. Questions come back in the attempt's recorded display
// order with options re-shuffled by the recorded mappings, so the review is
// bit-for-bit the paper the student saw. Correctness flags live in original
// index space regardless of shuffling. Questions absent from bank, or from
// the attempt's recorded order, are left out. A nil or invalid option
// mapping falls back to authored order.
func Reconstruct(items []model.ExamQuestion, bank map[uuid.UUID]model.Question, att *model.Attempt, vis ReviewVisibility) *ReviewView {
	view := &ReviewView{}
	if vis.ShowSummary {
		view.Summary = &ReviewSummary{
			Score:            att.Score,
			TotalPoints:      att.TotalPoints,
			Percentage:       att.Percentage,
			ScoreOut10:       att.ScoreOut10,
			CorrectCount:     att.CorrectCount,
			TotalQuestions:   att.TotalQuestions,
			IsPassed:         att.IsPassed,
			TimeSpentSeconds: att.TimeSpentSeconds,
			SubmittedAt:      att.SubmittedAt,
		}
	}
	if !vis.ShowQuestions {
		return view
	}

	pointsByID := make(map[uuid.UUID]float64, len(items))
	for _, it := range items {
		pointsByID[it.QuestionID] = it.Points
	}

	view.Questions = make([]ReviewQuestion, 0, len(att.QuestionOrder))
	for _, qid := range att.QuestionOrder {
		q, ok := bank[qid]
		if !ok {
			continue
		}
		points, ok := pointsByID[qid]
		if !ok {
			continue
		}

		perm := Identity(len(q.Options))
		if m, ok := att.ShuffleMappings[qid]; ok {
			if p, ok := PermutationFromMap(m, len(q.Options)); ok {
				perm = p
			}
		}

		ans, answered := att.Answers[qid]
		rq := ReviewQuestion{
			QuestionID: qid,
			Title:      q.Title,
			ImageURL:   q.ImageURL,
			Answered:   answered,
			Points:     points,
			Options:    make([]ReviewOption, 0, len(q.Options)),
		}
		if answered && ans == q.CorrectAnswer {
			rq.Correct = true
			rq.PointsEarned = points
		}
		for _, orig := range perm {
			rq.Options = append(rq.Options, ReviewOption{
				Text:            q.Options[orig],
				OriginalIndex:   orig,
				IsCorrect:       orig == q.CorrectAnswer,
				IsStudentAnswer: answered && orig == ans,
			})
		}
		view.Questions = append(view.Questions, rq)
	}
	return view
}
