package exam

import (
	"testing"

	"github.com/eduvio/examdesk/internal/model"
	"github.com/google/uuid"
)

func testBank(n int) ([]model.ExamQuestion, map[uuid.UUID]model.Question) {
	items := make([]model.ExamQuestion, 0, n)
	bank := make(map[uuid.UUID]model.Question, n)
	for i := 0; i < n; i++ {
		id := uuid.New()
		items = append(items, model.ExamQuestion{QuestionID: id, Points: 2, OrderNum: i + 1})
		bank[id] = model.Question{
			ID:            id,
			Title:         "q",
			Options:       []string{"opt0", "opt1", "opt2", "opt3"},
			CorrectAnswer: i % model.OptionCount,
		}
	}
	return items, bank
}

func TestBuildTakeViewNoShuffle(t *testing.T) {
	items, bank := testBank(5)
	e := &model.Exam{ShuffleQuestions: false, ShuffleOptions: false}

	view := BuildTakeView(e, items, bank)
	if len(view.Questions) != 5 {
		t.Fatalf("got %d questions, want 5", len(view.Questions))
	}
	for i, q := range view.Questions {
		if q.QuestionID != items[i].QuestionID {
			t.Errorf("question %d out of order", i)
		}
		for j, opt := range q.Options {
			if want := bank[q.QuestionID].Options[j]; opt != want {
				t.Errorf("question %d option %d = %q, want %q", i, j, opt, want)
			}
		}
		m := view.ShuffleMappings[q.QuestionID]
		for display, orig := range m {
			if display != orig {
				t.Errorf("question %d mapping not identity: %v", i, m)
			}
		}
	}
}

func TestBuildTakeViewShuffleMappingsReverse(t *testing.T) {
	items, bank := testBank(8)
	e := &model.Exam{ShuffleQuestions: true, ShuffleOptions: true}

	for run := 0; run < 20; run++ {
		view := BuildTakeView(e, items, bank)
		if len(view.QuestionOrder) != len(items) {
			t.Fatalf("got %d ids in order, want %d", len(view.QuestionOrder), len(items))
		}
		seen := make(map[uuid.UUID]bool)
		for i, qid := range view.QuestionOrder {
			if seen[qid] {
				t.Fatalf("question %s listed twice", qid)
			}
			seen[qid] = true

			q := bank[qid]
			perm, ok := PermutationFromMap(view.ShuffleMappings[qid], len(q.Options))
			if !ok {
				t.Fatalf("question %s carries an invalid mapping", qid)
			}
			// Every displayed option must map back to the authored text.
			for display, shown := range view.Questions[i].Options {
				if want := q.Options[perm[display]]; shown != want {
					t.Fatalf("displayed option %d = %q, mapping says %q", display, shown, want)
				}
			}
		}
	}
}

func TestBuildTakeViewSkipsMissingQuestions(t *testing.T) {
	items, bank := testBank(4)
	items = append(items, model.ExamQuestion{QuestionID: uuid.New(), Points: 2, OrderNum: 5})
	e := &model.Exam{}

	view := BuildTakeView(e, items, bank)
	if len(view.Questions) != 4 {
		t.Errorf("got %d questions, want 4 after skipping dangling item", len(view.Questions))
	}
}

func TestBuildTakeViewNeverLeaksAnswer(t *testing.T) {
	items, bank := testBank(3)
	view := BuildTakeView(&model.Exam{ShuffleOptions: true}, items, bank)
	for _, q := range view.Questions {
		if len(q.Options) != model.OptionCount {
			t.Errorf("question %s has %d options, want %d", q.QuestionID, len(q.Options), model.OptionCount)
		}
	}
}
