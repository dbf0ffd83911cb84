package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	examcore "github.com/eduvio/examdesk/internal/exam"
	"github.com/eduvio/examdesk/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type fakeExamStore struct {
	exams map[uuid.UUID]*model.Exam
	items map[uuid.UUID][]model.ExamQuestion
}

func (f *fakeExamStore) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	e, ok := f.exams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (f *fakeExamStore) ListItems(_ context.Context, examID uuid.UUID) ([]model.ExamQuestion, error) {
	return f.items[examID], nil
}

func (f *fakeExamStore) ListPublishedForClass(_ context.Context, classID int) ([]model.Exam, error) {
	var out []model.Exam
	for _, e := range f.exams {
		if e.ClassID == classID && e.Status == model.ExamStatusPublished {
			out = append(out, *e)
		}
	}
	return out, nil
}

type fakeQuestionStore struct {
	bank map[uuid.UUID]model.Question
}

func (f *fakeQuestionStore) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Question, error) {
	out := make(map[uuid.UUID]model.Question, len(ids))
	for _, id := range ids {
		if q, ok := f.bank[id]; ok {
			out[id] = q
		}
	}
	return out, nil
}

type attemptKey struct {
	examID    uuid.UUID
	studentID int
}

// fakeAttemptStore mimics the unique-index behavior of the real table:
// a second insert for the same key inserts nothing and returns
// pgx.ErrNoRows, exactly as ON CONFLICT DO NOTHING RETURNING does.
type fakeAttemptStore struct {
	mu       sync.Mutex
	attempts map[attemptKey]*model.Attempt
}

func newFakeAttemptStore() *fakeAttemptStore {
	return &fakeAttemptStore{attempts: make(map[attemptKey]*model.Attempt)}
}

func (f *fakeAttemptStore) Create(_ context.Context, a *model.Attempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := attemptKey{a.ExamID, a.StudentID}
	if _, exists := f.attempts[key]; exists {
		return pgx.ErrNoRows
	}
	a.ID = uuid.New()
	cp := *a
	f.attempts[key] = &cp
	return nil
}

func (f *fakeAttemptStore) GetByExamAndStudent(_ context.Context, examID uuid.UUID, studentID int) (*model.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.attempts[attemptKey{examID, studentID}]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAttemptStore) Exists(_ context.Context, examID uuid.UUID, studentID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.attempts[attemptKey{examID, studentID}]
	return ok, nil
}

func (f *fakeAttemptStore) ListExamIDsByStudent(_ context.Context, studentID int) (map[uuid.UUID]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[uuid.UUID]bool)
	for k := range f.attempts {
		if k.studentID == studentID {
			out[k.examID] = true
		}
	}
	return out, nil
}

type fixture struct {
	svc      *AttemptService
	exam     *model.Exam
	items    []model.ExamQuestion
	bank     map[uuid.UUID]model.Question
	attempts *fakeAttemptStore
	clock    *time.Time
}

// newFixture builds a published 3-question exam (2 points each, correct
// answers 0, 1, 2) open at a fixed instant, with the service clock parked
// mid-window.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	open := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	e := &model.Exam{
		ID:              uuid.New(),
		Title:           "Kiểm tra giữa kỳ",
		ClassID:         7,
		AuthorID:        1,
		DurationMinutes: 45,
		BufferMinutes:   5,
		OpenTime:        &open,
		PassingScore:    50,
		Status:          model.ExamStatusPublished,
	}

	var items []model.ExamQuestion
	bank := make(map[uuid.UUID]model.Question)
	for i := 0; i < 3; i++ {
		id := uuid.New()
		items = append(items, model.ExamQuestion{QuestionID: id, Points: 2, OrderNum: i + 1})
		bank[id] = model.Question{
			ID:            id,
			Title:         "q",
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: i,
		}
	}

	attempts := newFakeAttemptStore()
	svc := NewAttemptService(
		&fakeExamStore{exams: map[uuid.UUID]*model.Exam{e.ID: e}, items: map[uuid.UUID][]model.ExamQuestion{e.ID: items}},
		&fakeQuestionStore{bank: bank},
		attempts,
	)
	now := open.Add(10 * time.Minute)
	svc.now = func() time.Time { return now }

	return &fixture{svc: svc, exam: e, items: items, bank: bank, attempts: attempts, clock: &now}
}

func (f *fixture) submitRequest(answers map[uuid.UUID]int) *model.SubmitAttemptRequest {
	order := make([]uuid.UUID, 0, len(f.items))
	mappings := make(map[uuid.UUID]model.OptionMap, len(f.items))
	for _, it := range f.items {
		order = append(order, it.QuestionID)
		mappings[it.QuestionID] = model.OptionMap{0: 0, 1: 1, 2: 2, 3: 3}
	}
	return &model.SubmitAttemptRequest{
		Answers:          answers,
		ShuffleMappings:  mappings,
		QuestionOrder:    order,
		TimeSpentSeconds: 600,
	}
}

func (f *fixture) allCorrect() map[uuid.UUID]int {
	answers := make(map[uuid.UUID]int, len(f.items))
	for i, it := range f.items {
		answers[it.QuestionID] = i
	}
	return answers
}

func TestCheckAttempt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	status, err := f.svc.CheckAttempt(ctx, f.exam.ID, 42, 7)
	if err != nil {
		t.Fatalf("CheckAttempt: %v", err)
	}
	if status.Attempted {
		t.Error("fresh student marked attempted")
	}
	if status.Window != examcore.WindowOpen {
		t.Errorf("Window = %v, want OPEN", status.Window)
	}
	if status.EndTime == nil || !status.EndTime.Equal(f.exam.OpenTime.Add(50*time.Minute)) {
		t.Errorf("EndTime = %v, want open+50m", status.EndTime)
	}
	if status.RemainingSeconds != 40*60 {
		t.Errorf("RemainingSeconds = %d, want 2400", status.RemainingSeconds)
	}

	if _, err := f.svc.Submit(ctx, f.exam.ID, 42, 7, f.submitRequest(f.allCorrect())); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	status, err = f.svc.CheckAttempt(ctx, f.exam.ID, 42, 7)
	if err != nil {
		t.Fatalf("CheckAttempt after submit: %v", err)
	}
	if !status.Attempted {
		t.Error("submitted student not marked attempted")
	}
}

func TestStartTakeGuards(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong class", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.svc.StartTake(ctx, f.exam.ID, 42, 99); !errors.Is(err, ErrWrongClass) {
			t.Errorf("err = %v, want ErrWrongClass", err)
		}
	})

	t.Run("unknown exam", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.svc.StartTake(ctx, uuid.New(), 42, 7); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("before open", func(t *testing.T) {
		f := newFixture(t)
		*f.clock = f.exam.OpenTime.Add(-time.Minute)
		if _, err := f.svc.StartTake(ctx, f.exam.ID, 42, 7); !errors.Is(err, ErrExamNotOpen) {
			t.Errorf("err = %v, want ErrExamNotOpen", err)
		}
	})

	t.Run("after close", func(t *testing.T) {
		f := newFixture(t)
		*f.clock = f.exam.OpenTime.Add(51 * time.Minute)
		if _, err := f.svc.StartTake(ctx, f.exam.ID, 42, 7); !errors.Is(err, ErrExamClosed) {
			t.Errorf("err = %v, want ErrExamClosed", err)
		}
	})

	t.Run("already attempted", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.svc.Submit(ctx, f.exam.ID, 42, 7, f.submitRequest(nil)); err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if _, err := f.svc.StartTake(ctx, f.exam.ID, 42, 7); !errors.Is(err, ErrAlreadyAttempted) {
			t.Errorf("err = %v, want ErrAlreadyAttempted", err)
		}
	})
}

func TestStartTakeDealsFreshPaper(t *testing.T) {
	f := newFixture(t)
	f.exam.ShuffleQuestions = true
	f.exam.ShuffleOptions = true
	ctx := context.Background()

	sess, err := f.svc.StartTake(ctx, f.exam.ID, 42, 7)
	if err != nil {
		t.Fatalf("StartTake: %v", err)
	}
	if len(sess.Take.Questions) != 3 {
		t.Fatalf("got %d questions, want 3", len(sess.Take.Questions))
	}
	if sess.RemainingSeconds != 40*60 {
		t.Errorf("RemainingSeconds = %d, want 2400", sess.RemainingSeconds)
	}
	for _, qid := range sess.Take.QuestionOrder {
		m := sess.Take.ShuffleMappings[qid]
		if _, ok := examcore.PermutationFromMap(m, model.OptionCount); !ok {
			t.Errorf("question %s has invalid mapping %v", qid, m)
		}
	}
	// A second call must succeed too: nothing was persisted.
	if _, err := f.svc.StartTake(ctx, f.exam.ID, 42, 7); err != nil {
		t.Fatalf("second StartTake: %v", err)
	}
}

func TestSubmitGradesAndRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	answers := f.allCorrect()
	answers[f.items[2].QuestionID] = 3 // wrong on purpose

	att, err := f.svc.Submit(ctx, f.exam.ID, 42, 7, f.submitRequest(answers))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if att.Score != 4 || att.TotalPoints != 6 {
		t.Errorf("score %v/%v, want 4/6", att.Score, att.TotalPoints)
	}
	if att.Percentage != 66.67 || att.ScoreOut10 != 6.67 {
		t.Errorf("percentage %v out10 %v, want 66.67 / 6.67", att.Percentage, att.ScoreOut10)
	}
	if !att.IsPassed {
		t.Error("66.67 against a threshold of 50 must pass")
	}
	if att.CorrectCount != 2 || att.TotalQuestions != 3 {
		t.Errorf("counts %d/%d, want 2/3", att.CorrectCount, att.TotalQuestions)
	}
	if !att.SubmittedAt.Equal(*f.clock) {
		t.Errorf("SubmittedAt = %v, want server clock %v", att.SubmittedAt, *f.clock)
	}
}

func TestSubmitScoreReveal(t *testing.T) {
	tests := []struct {
		name       string
		reveal     bool
		wantReveal bool
	}{
		{"results hidden until release", false, false},
		{"results shown immediately", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.exam.ShowResultImmediately = tt.reveal
			ctx := context.Background()

			outcome, err := f.svc.Submit(ctx, f.exam.ID, 42, 7, f.submitRequest(f.allCorrect()))
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}
			if outcome.ShowResult != tt.wantReveal {
				t.Errorf("ShowResult = %v, want %v", outcome.ShowResult, tt.wantReveal)
			}
			// The grade is always recorded; the flag only gates what the
			// student is told.
			if outcome.Percentage != 100 {
				t.Errorf("recorded percentage %v, want 100", outcome.Percentage)
			}
		})
	}
}

func TestSubmitSecondAttemptRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Submit(ctx, f.exam.ID, 42, 7, f.submitRequest(f.allCorrect()))
	if err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	if _, err := f.svc.Submit(ctx, f.exam.ID, 42, 7, f.submitRequest(nil)); !errors.Is(err, ErrAlreadyAttempted) {
		t.Fatalf("second Submit err = %v, want ErrAlreadyAttempted", err)
	}

	// The winning attempt is untouched.
	stored, err := f.attempts.GetByExamAndStudent(ctx, f.exam.ID, 42)
	if err != nil {
		t.Fatalf("GetByExamAndStudent: %v", err)
	}
	if stored.ID != first.ID || stored.Score != first.Score {
		t.Error("losing submission overwrote the recorded attempt")
	}
}

func TestSubmitAfterDeadlineStillAccepted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	*f.clock = f.exam.OpenTime.Add(2 * time.Hour)

	att, err := f.svc.Submit(ctx, f.exam.ID, 42, 7, f.submitRequest(f.allCorrect()))
	if err != nil {
		t.Fatalf("late Submit: %v", err)
	}
	if att.Percentage != 100 {
		t.Errorf("late submission graded %v%%, want 100", att.Percentage)
	}
}

func TestSubmitBeforeOpenRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	*f.clock = f.exam.OpenTime.Add(-time.Hour)

	if _, err := f.svc.Submit(ctx, f.exam.ID, 42, 7, f.submitRequest(nil)); !errors.Is(err, ErrExamNotOpen) {
		t.Errorf("err = %v, want ErrExamNotOpen", err)
	}
}

func TestSubmitConcurrentExactlyOneWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const racers = 16
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Submit(ctx, f.exam.ID, 42, 7, f.submitRequest(f.allCorrect()))
		}(i)
	}
	wg.Wait()

	var wins, dups int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrAlreadyAttempted):
			dups++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || dups != racers-1 {
		t.Errorf("wins = %d dups = %d, want exactly one winner", wins, dups)
	}
}

func TestMyResultVisibility(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		showResult    bool
		showAnswers   bool
		wantSummary   bool
		wantQuestions bool
	}{
		{"everything hidden", false, false, false, false},
		{"summary only", true, false, true, false},
		{"full review", true, true, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.exam.ShowResultImmediately = tt.showResult
			f.exam.ShowCorrectAnswers = tt.showAnswers

			if _, err := f.svc.Submit(ctx, f.exam.ID, 42, 7, f.submitRequest(f.allCorrect())); err != nil {
				t.Fatalf("Submit: %v", err)
			}

			res, err := f.svc.MyResultDetailed(ctx, f.exam.ID, 42, 7)
			if err != nil {
				t.Fatalf("MyResultDetailed: %v", err)
			}
			if (res.Summary != nil) != tt.wantSummary {
				t.Errorf("summary present = %v, want %v", res.Summary != nil, tt.wantSummary)
			}
			if (len(res.Questions) > 0) != tt.wantQuestions {
				t.Errorf("questions present = %v, want %v", len(res.Questions) > 0, tt.wantQuestions)
			}
			if res.SubmittedAt.IsZero() {
				t.Error("submission time always visible")
			}
		})
	}
}

func TestMyResultNoAttempt(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.MyResult(context.Background(), f.exam.ID, 42, 7); !errors.Is(err, ErrAttemptNotFound) {
		t.Errorf("err = %v, want ErrAttemptNotFound", err)
	}
}

func TestLobbyStatuses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lobby, err := f.svc.Lobby(ctx, 42, 7)
	if err != nil {
		t.Fatalf("Lobby: %v", err)
	}
	if len(lobby) != 1 || lobby[0].LobbyStatus != LobbyStatusAvailable {
		t.Fatalf("lobby = %+v, want one AVAILABLE entry", lobby)
	}

	if _, err := f.svc.Submit(ctx, f.exam.ID, 42, 7, f.submitRequest(nil)); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	lobby, _ = f.svc.Lobby(ctx, 42, 7)
	if lobby[0].LobbyStatus != LobbyStatusCompleted {
		t.Errorf("status = %v, want COMPLETED after submit", lobby[0].LobbyStatus)
	}

	// Another student still sees it, but only until the window closes.
	*f.clock = f.exam.OpenTime.Add(2 * time.Hour)
	lobby, _ = f.svc.Lobby(ctx, 43, 7)
	if lobby[0].LobbyStatus != LobbyStatusClosed {
		t.Errorf("status = %v, want CLOSED past the deadline", lobby[0].LobbyStatus)
	}

	// Wrong class sees nothing.
	lobby, _ = f.svc.Lobby(ctx, 44, 9)
	if len(lobby) != 0 {
		t.Errorf("lobby for another class has %d entries, want 0", len(lobby))
	}
}

func TestDraftExamInvisibleToStudents(t *testing.T) {
	f := newFixture(t)
	f.exam.Status = model.ExamStatusDraft
	ctx := context.Background()

	if _, err := f.svc.CheckAttempt(ctx, f.exam.ID, 42, 7); !errors.Is(err, ErrNotFound) {
		t.Errorf("CheckAttempt err = %v, want ErrNotFound", err)
	}
	if _, err := f.svc.StartTake(ctx, f.exam.ID, 42, 7); !errors.Is(err, ErrNotFound) {
		t.Errorf("StartTake err = %v, want ErrNotFound", err)
	}
}
