package exam

import (
	"testing"

	"github.com/eduvio/examdesk/internal/model"
	"github.com/google/uuid"
)

func TestGrade(t *testing.T) {
	items, bank := testBank(4) // correct answers 0,1,2,3 with 2 points each

	allRight := map[uuid.UUID]int{}
	for i, it := range items {
		allRight[it.QuestionID] = i % model.OptionCount
	}
	oneWrong := map[uuid.UUID]int{}
	for k, v := range allRight {
		oneWrong[k] = v
	}
	oneWrong[items[0].QuestionID] = 3 // authored answer is 0

	tests := []struct {
		name         string
		answers      map[uuid.UUID]int
		passing      float64
		wantScore    float64
		wantPct      float64
		wantOut10    float64
		wantCorrect  int
		wantPassed   bool
	}{
		{"all correct", allRight, 70, 8, 100, 10, 4, true},
		{"one wrong", oneWrong, 70, 6, 75, 7.5, 3, true},
		{"threshold is inclusive", oneWrong, 75, 6, 75, 7.5, 3, true},
		{"just below threshold", oneWrong, 75.01, 6, 75, 7.5, 3, false},
		{"nothing answered", map[uuid.UUID]int{}, 70, 0, 0, 0, 0, false},
		{"nil answers", nil, 70, 0, 0, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Grade(items, bank, tt.answers, tt.passing)
			if got.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v", got.Score, tt.wantScore)
			}
			if got.TotalPoints != 8 {
				t.Errorf("TotalPoints = %v, want 8", got.TotalPoints)
			}
			if got.Percentage != tt.wantPct {
				t.Errorf("Percentage = %v, want %v", got.Percentage, tt.wantPct)
			}
			if got.ScoreOut10 != tt.wantOut10 {
				t.Errorf("ScoreOut10 = %v, want %v", got.ScoreOut10, tt.wantOut10)
			}
			if got.CorrectCount != tt.wantCorrect {
				t.Errorf("CorrectCount = %d, want %d", got.CorrectCount, tt.wantCorrect)
			}
			if got.TotalQuestions != 4 {
				t.Errorf("TotalQuestions = %d, want 4", got.TotalQuestions)
			}
			if got.IsPassed != tt.wantPassed {
				t.Errorf("IsPassed = %v, want %v", got.IsPassed, tt.wantPassed)
			}
		})
	}
}

func TestGradeSkipsDanglingItems(t *testing.T) {
	items, bank := testBank(3)
	ghost := model.ExamQuestion{QuestionID: uuid.New(), Points: 100, OrderNum: 4}
	items = append(items, ghost)

	answers := map[uuid.UUID]int{ghost.QuestionID: 0}
	for i, it := range items[:3] {
		answers[it.QuestionID] = i % model.OptionCount
	}

	got := Grade(items, bank, answers, 50)
	if got.TotalQuestions != 3 {
		t.Errorf("TotalQuestions = %d, want 3", got.TotalQuestions)
	}
	if got.TotalPoints != 6 {
		t.Errorf("TotalPoints = %v, ghost item leaked into the total", got.TotalPoints)
	}
	if got.Percentage != 100 {
		t.Errorf("Percentage = %v, want 100", got.Percentage)
	}
}

func TestGradeZeroPointExam(t *testing.T) {
	id := uuid.New()
	items := []model.ExamQuestion{{QuestionID: id, Points: 0, OrderNum: 1}}
	bank := map[uuid.UUID]model.Question{
		id: {ID: id, Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 1},
	}

	got := Grade(items, bank, map[uuid.UUID]int{id: 1}, 50)
	if got.Percentage != 0 || got.ScoreOut10 != 0 {
		t.Errorf("zero-point exam graded to %v%%, want 0", got.Percentage)
	}
	if got.CorrectCount != 1 {
		t.Errorf("CorrectCount = %d, want 1", got.CorrectCount)
	}
	if got.IsPassed {
		t.Error("zero-point exam must not pass a positive threshold")
	}
}

func TestGradeFractionalRounding(t *testing.T) {
	items, bank := testBank(3)
	answers := map[uuid.UUID]int{items[0].QuestionID: 0} // 2 of 6 points

	got := Grade(items, bank, answers, 50)
	if got.Percentage != 33.33 {
		t.Errorf("Percentage = %v, want 33.33", got.Percentage)
	}
	if got.ScoreOut10 != 3.33 {
		t.Errorf("ScoreOut10 = %v, want 3.33", got.ScoreOut10)
	}
}

func TestGradePassVerdictIgnoresRounding(t *testing.T) {
	items, bank := testBank(3)
	answers := map[uuid.UUID]int{ // 4 of 6 points, raw 66.666...%
		items[0].QuestionID: 0,
		items[1].QuestionID: 1,
	}

	got := Grade(items, bank, answers, 66.67)
	if got.Percentage != 66.67 {
		t.Errorf("Percentage = %v, want 66.67", got.Percentage)
	}
	if got.IsPassed {
		t.Error("raw 66.666...% must not pass a 66.67 threshold even though the displayed percentage rounds up to it")
	}
}
