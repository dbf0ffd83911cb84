package exam

import (
	"testing"
	"time"

	"github.com/eduvio/examdesk/internal/model"
	"github.com/google/uuid"
)

func submittedAttempt(t *testing.T, items []model.ExamQuestion, bank map[uuid.UUID]model.Question) *model.Attempt {
	t.Helper()
	e := &model.Exam{ShuffleQuestions: true, ShuffleOptions: true}
	view := BuildTakeView(e, items, bank)

	answers := make(map[uuid.UUID]int, len(items))
	for i, it := range items {
		answers[it.QuestionID] = i % model.OptionCount
	}
	return &model.Attempt{
		ExamID:          uuid.New(),
		Answers:         answers,
		ShuffleMappings: view.ShuffleMappings,
		QuestionOrder:   view.QuestionOrder,
		SubmittedAt:     time.Now(),
	}
}

func TestReconstructPreservesDisplayOrder(t *testing.T) {
	items, bank := testBank(6)
	att := submittedAttempt(t, items, bank)

	view := Reconstruct(items, bank, att, ReviewVisibility{ShowSummary: true, ShowQuestions: true})
	if view.Summary == nil {
		t.Fatal("summary missing")
	}
	if len(view.Questions) != len(att.QuestionOrder) {
		t.Fatalf("got %d questions, want %d", len(view.Questions), len(att.QuestionOrder))
	}
	for i, rq := range view.Questions {
		if rq.QuestionID != att.QuestionOrder[i] {
			t.Errorf("question %d is %s, attempt recorded %s", i, rq.QuestionID, att.QuestionOrder[i])
		}
		q := bank[rq.QuestionID]
		perm, _ := PermutationFromMap(att.ShuffleMappings[rq.QuestionID], len(q.Options))
		for display, opt := range rq.Options {
			if want := q.Options[perm[display]]; opt.Text != want {
				t.Errorf("question %d option %d = %q, take showed %q", i, display, opt.Text, want)
			}
			if opt.OriginalIndex != perm[display] {
				t.Errorf("question %d option %d original index = %d, want %d", i, display, opt.OriginalIndex, perm[display])
			}
		}
	}
}

func TestReconstructAnswerFlags(t *testing.T) {
	items, bank := testBank(4)
	att := submittedAttempt(t, items, bank)
	// Flip the first question's answer to a wrong option, drop the last entirely.
	att.Answers[items[0].QuestionID] = 3
	delete(att.Answers, items[3].QuestionID)

	view := Reconstruct(items, bank, att, ReviewVisibility{ShowQuestions: true})
	byID := make(map[uuid.UUID]ReviewQuestion, len(view.Questions))
	for _, rq := range view.Questions {
		byID[rq.QuestionID] = rq
	}

	first := byID[items[0].QuestionID]
	if first.Correct || first.PointsEarned != 0 {
		t.Error("wrong answer marked correct")
	}
	last := byID[items[3].QuestionID]
	if last.Answered {
		t.Error("unanswered question marked answered")
	}
	for _, rq := range view.Questions {
		q := bank[rq.QuestionID]
		var correctSeen, answerSeen bool
		for _, opt := range rq.Options {
			if opt.IsCorrect {
				if opt.OriginalIndex != q.CorrectAnswer {
					t.Errorf("question %s flags original %d as correct, authored %d", rq.QuestionID, opt.OriginalIndex, q.CorrectAnswer)
				}
				correctSeen = true
			}
			if opt.IsStudentAnswer {
				answerSeen = true
			}
		}
		if !correctSeen {
			t.Errorf("question %s has no correct option flagged", rq.QuestionID)
		}
		if rq.Answered != answerSeen {
			t.Errorf("question %s answered=%v but flagged option=%v", rq.QuestionID, rq.Answered, answerSeen)
		}
	}
}

func TestReconstructVisibilityGating(t *testing.T) {
	items, bank := testBank(2)
	att := submittedAttempt(t, items, bank)

	tests := []struct {
		name          string
		vis           ReviewVisibility
		wantSummary   bool
		wantQuestions bool
	}{
		{"nothing visible", ReviewVisibility{}, false, false},
		{"summary only", ReviewVisibility{ShowSummary: true}, true, false},
		{"questions only", ReviewVisibility{ShowQuestions: true}, false, true},
		{"everything", ReviewVisibility{ShowSummary: true, ShowQuestions: true}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := Reconstruct(items, bank, att, tt.vis)
			if (view.Summary != nil) != tt.wantSummary {
				t.Errorf("summary present = %v, want %v", view.Summary != nil, tt.wantSummary)
			}
			if (len(view.Questions) > 0) != tt.wantQuestions {
				t.Errorf("questions present = %v, want %v", len(view.Questions) > 0, tt.wantQuestions)
			}
		})
	}
}

func TestReconstructTolerantOfDeletedQuestion(t *testing.T) {
	items, bank := testBank(3)
	att := submittedAttempt(t, items, bank)
	delete(bank, items[1].QuestionID)

	view := Reconstruct(items, bank, att, ReviewVisibility{ShowQuestions: true})
	if len(view.Questions) != 2 {
		t.Errorf("got %d questions, want 2 after one was deleted from the bank", len(view.Questions))
	}
}

func TestReconstructFallsBackOnCorruptMapping(t *testing.T) {
	items, bank := testBank(1)
	att := submittedAttempt(t, items, bank)
	att.ShuffleMappings[items[0].QuestionID] = model.OptionMap{0: 0, 1: 0, 2: 2, 3: 3}

	view := Reconstruct(items, bank, att, ReviewVisibility{ShowQuestions: true})
	if len(view.Questions) != 1 {
		t.Fatal("question dropped")
	}
	q := bank[items[0].QuestionID]
	for i, opt := range view.Questions[0].Options {
		if opt.Text != q.Options[i] {
			t.Errorf("option %d = %q, want authored order %q", i, opt.Text, q.Options[i])
		}
	}
}
