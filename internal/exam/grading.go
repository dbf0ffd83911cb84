package exam

import (
	"math"

	"github.com/eduvio/examdesk/internal/model"
	"github.com/google/uuid"
)

// QuestionScore is the grading outcome of a single question.
type QuestionScore struct {
	QuestionID     uuid.UUID
	Answered       bool
	Correct        bool
	PointsEarned   float64
	PointsPossible float64
}

// GradeResult is the complete outcome of grading one attempt.
type GradeResult struct {
	Score          float64
	TotalPoints    float64
	Percentage     float64
	ScoreOut10     float64
	CorrectCount   int
	TotalQuestions int
	IsPassed       bool
	PerQuestion    []QuestionScore
}

// Grade scores answers against the exam's item list. Answers are keyed by
// question ID and hold original option indexes, so a simple int comparison
// against the authored correct answer decides each question. Unanswered
// questions earn nothing, items whose question no longer exists in bank are
// skipped entirely, and an exam with zero total points grades to 0% rather
// than dividing by zero. Passing is inclusive at the threshold.
func Grade(items []model.ExamQuestion, bank map[uuid.UUID]model.Question, answers map[uuid.UUID]int, passingScore float64) GradeResult {
	res := GradeResult{PerQuestion: make([]QuestionScore, 0, len(items))}
	for _, it := range items {
		q, ok := bank[it.QuestionID]
		if !ok {
			continue
		}
		qs := QuestionScore{QuestionID: it.QuestionID, PointsPossible: it.Points}
		if ans, answered := answers[it.QuestionID]; answered {
			qs.Answered = true
			if ans == q.CorrectAnswer {
				qs.Correct = true
				qs.PointsEarned = it.Points
			}
		}
		res.TotalQuestions++
		res.TotalPoints += it.Points
		res.Score += qs.PointsEarned
		if qs.Correct {
			res.CorrectCount++
		}
		res.PerQuestion = append(res.PerQuestion, qs)
	}
	// The pass verdict uses the raw ratio; rounding Percentage first could
	// nudge a just-short score over the threshold.
	var raw float64
	if res.TotalPoints > 0 {
		raw = res.Score / res.TotalPoints * 100
	}
	res.Percentage = round2(raw)
	res.ScoreOut10 = round2(res.Percentage / 10)
	res.IsPassed = raw >= passingScore
	return res
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
