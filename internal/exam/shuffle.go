package exam

import (
	"github.com/eduvio/examdesk/internal/model"
	"github.com/google/uuid"
)

// TakeQuestion is one question as the student sees it during a take:
// options possibly reordered, the correct answer never present.
type TakeQuestion struct {
	QuestionID uuid.UUID `json:"question_id"`
	Title      string    `json:"title"`
	Options    []string  `json:"options"`
	ImageURL   *string   `json:"image_url,omitempty"`
	Points     float64   `json:"points"`
}

// TakeView is the complete shuffled paper handed to a student, together
// with the reversal metadata the client must echo back at submit time.
type TakeView struct {
	Questions       []TakeQuestion               `json:"questions"`
	QuestionOrder   []uuid.UUID                  `json:"question_order"`
	ShuffleMappings map[uuid.UUID]model.OptionMap `json:"shuffle_mappings"`
}

// BuildTakeView assembles a fresh take of the exam. Question order and
// per-question option order are shuffled only when the corresponding exam
// flag is set; either way the mappings recorded are sufficient to map any
// displayed index back to the original authored index. Items whose question
// is missing from bank are skipped.
func BuildTakeView(e *model.Exam, items []model.ExamQuestion, bank map[uuid.UUID]model.Question) *TakeView {
	resolved := make([]model.ExamQuestion, 0, len(items))
	for _, it := range items {
		if _, ok := bank[it.QuestionID]; ok {
			resolved = append(resolved, it)
		}
	}

	order := Identity(len(resolved))
	if e.ShuffleQuestions {
		order = NewRandomPermutation(len(resolved))
	}
	ordered := Apply(order, resolved)

	view := &TakeView{
		Questions:       make([]TakeQuestion, 0, len(ordered)),
		QuestionOrder:   make([]uuid.UUID, 0, len(ordered)),
		ShuffleMappings: make(map[uuid.UUID]model.OptionMap, len(ordered)),
	}
	for _, it := range ordered {
		q := bank[it.QuestionID]
		perm := Identity(len(q.Options))
		if e.ShuffleOptions {
			perm = NewRandomPermutation(len(q.Options))
		}
		view.Questions = append(view.Questions, TakeQuestion{
			QuestionID: q.ID,
			Title:      q.Title,
			Options:    Apply(perm, q.Options),
			ImageURL:   q.ImageURL,
			Points:     it.Points,
		})
		view.QuestionOrder = append(view.QuestionOrder, q.ID)
		view.ShuffleMappings[q.ID] = perm.ToMap()
	}
	return view
}
