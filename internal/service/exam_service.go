package service

import (
	"context"
	"errors"
	"fmt"

	examcore "github.com/eduvio/examdesk/internal/exam"
	"github.com/eduvio/examdesk/internal/model"
	"github.com/eduvio/examdesk/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ExamService handles the teacher-facing exam lifecycle: drafting,
// composing the item list, publishing, and reading results.
type ExamService struct {
	examRepo     *repository.ExamRepository
	questionRepo *repository.QuestionRepository
	attemptRepo  *repository.AttemptRepository
}

// NewExamService creates a new ExamService.
func NewExamService(
	examRepo *repository.ExamRepository,
	questionRepo *repository.QuestionRepository,
	attemptRepo *repository.AttemptRepository,
) *ExamService {
	return &ExamService{
		examRepo:     examRepo,
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
	}
}

// ExamWithItems bundles an exam with its ordered item list for the editor.
type ExamWithItems struct {
	model.Exam
	Items []model.ExamQuestion `json:"items"`
}

// Create opens a new draft exam owned by authorID. The close time is
// derived from the open time, duration, and buffer; it is never accepted
// from the client.
func (s *ExamService) Create(ctx context.Context, authorID int, req *model.CreateExamRequest) (*model.Exam, error) {
	e := &model.Exam{
		Title:                 req.Title,
		SubjectID:             req.SubjectID,
		ClassID:               req.ClassID,
		AuthorID:              authorID,
		DurationMinutes:       req.DurationMinutes,
		BufferMinutes:         model.DefaultBufferMinutes,
		OpenTime:              req.OpenTime,
		PassingScore:          req.PassingScore,
		ShowResultImmediately: req.ShowResultImmediately,
		ShowCorrectAnswers:    req.ShowCorrectAnswers,
		ShuffleQuestions:      true,
		ShuffleOptions:        true,
		Status:                model.ExamStatusDraft,
	}
	if req.BufferMinutes != nil {
		e.BufferMinutes = *req.BufferMinutes
	}
	if req.ShuffleQuestions != nil {
		e.ShuffleQuestions = *req.ShuffleQuestions
	}
	if req.ShuffleOptions != nil {
		e.ShuffleOptions = *req.ShuffleOptions
	}
	syncCloseTime(e)

	if err := s.examRepo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}
	return e, nil
}

// Get retrieves an exam with its items, enforcing ownership.
func (s *ExamService) Get(ctx context.Context, id uuid.UUID, authorID int) (*ExamWithItems, error) {
	e, err := s.getOwned(ctx, id, authorID)
	if err != nil {
		return nil, err
	}
	items, err := s.examRepo.ListItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return &ExamWithItems{Exam: *e, Items: items}, nil
}

// List retrieves the author's exams, newest first.
func (s *ExamService) List(ctx context.Context, authorID, limit, offset int) ([]model.Exam, int, error) {
	return s.examRepo.ListByAuthorPaginated(ctx, authorID, limit, offset)
}

// Update rewrites a draft exam's fields. Published exams must be
// unpublished first so students never see a paper change under them.
func (s *ExamService) Update(ctx context.Context, id uuid.UUID, authorID int, req *model.UpdateExamRequest) (*model.Exam, error) {
	e, err := s.getOwned(ctx, id, authorID)
	if err != nil {
		return nil, err
	}
	if e.Status != model.ExamStatusDraft {
		return nil, ErrExamNotDraft
	}

	e.Title = req.Title
	e.SubjectID = req.SubjectID
	e.ClassID = req.ClassID
	e.DurationMinutes = req.DurationMinutes
	e.OpenTime = req.OpenTime
	e.PassingScore = req.PassingScore
	e.ShowResultImmediately = req.ShowResultImmediately
	e.ShowCorrectAnswers = req.ShowCorrectAnswers
	if req.BufferMinutes != nil {
		e.BufferMinutes = *req.BufferMinutes
	}
	if req.ShuffleQuestions != nil {
		e.ShuffleQuestions = *req.ShuffleQuestions
	}
	if req.ShuffleOptions != nil {
		e.ShuffleOptions = *req.ShuffleOptions
	}
	syncCloseTime(e)

	if err := s.examRepo.Update(ctx, e); err != nil {
		return nil, fmt.Errorf("update exam: %w", err)
	}
	return e, nil
}

// ReplaceItems swaps the draft's ordered question list. The slice order in
// the request becomes the canonical order. Every referenced question must
// exist in the bank.
func (s *ExamService) ReplaceItems(ctx context.Context, id uuid.UUID, authorID int, req *model.ReplaceExamItemsRequest) error {
	e, err := s.getOwned(ctx, id, authorID)
	if err != nil {
		return err
	}
	if e.Status != model.ExamStatusDraft {
		return ErrExamNotDraft
	}

	ids := make([]uuid.UUID, 0, len(req.Items))
	seen := make(map[uuid.UUID]bool, len(req.Items))
	for _, it := range req.Items {
		if seen[it.QuestionID] {
			return fmt.Errorf("question %s listed twice: %w", it.QuestionID, ErrDependencyExists)
		}
		seen[it.QuestionID] = true
		ids = append(ids, it.QuestionID)
	}
	bank, err := s.questionRepo.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("resolve questions: %w", err)
	}
	for _, qid := range ids {
		if _, ok := bank[qid]; !ok {
			return ErrNotFound
		}
	}

	items := make([]model.ExamQuestion, 0, len(req.Items))
	for i, it := range req.Items {
		items = append(items, model.ExamQuestion{
			QuestionID: it.QuestionID,
			Points:     it.Points,
			OrderNum:   i + 1,
		})
	}
	return s.examRepo.ReplaceItems(ctx, id, items)
}

// Publish makes a draft visible to its class. A publishable exam needs at
// least one question and a scheduled open time.
func (s *ExamService) Publish(ctx context.Context, id uuid.UUID, authorID int) (*model.Exam, error) {
	e, err := s.getOwned(ctx, id, authorID)
	if err != nil {
		return nil, err
	}
	if e.Status != model.ExamStatusDraft {
		return nil, ErrExamNotDraft
	}
	n, err := s.examRepo.CountItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}
	if n == 0 {
		return nil, ErrExamEmpty
	}
	if e.OpenTime == nil {
		return nil, ErrExamNotOpen
	}
	if err := s.examRepo.UpdateStatus(ctx, id, model.ExamStatusPublished); err != nil {
		return nil, fmt.Errorf("publish: %w", err)
	}
	e.Status = model.ExamStatusPublished
	return e, nil
}

// Unpublish pulls an exam back into draft. Refused once any attempt has
// been submitted: graded history must stay tied to the paper it was
// graded against.
func (s *ExamService) Unpublish(ctx context.Context, id uuid.UUID, authorID int) (*model.Exam, error) {
	e, err := s.getOwned(ctx, id, authorID)
	if err != nil {
		return nil, err
	}
	if e.Status != model.ExamStatusPublished {
		return nil, ErrExamNotPublished
	}
	n, err := s.attemptRepo.CountByExam(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count attempts: %w", err)
	}
	if n > 0 {
		return nil, ErrDependencyExists
	}
	if err := s.examRepo.UpdateStatus(ctx, id, model.ExamStatusDraft); err != nil {
		return nil, fmt.Errorf("unpublish: %w", err)
	}
	e.Status = model.ExamStatusDraft
	return e, nil
}

// Delete removes a draft exam. Exams with submitted attempts cannot be
// deleted.
func (s *ExamService) Delete(ctx context.Context, id uuid.UUID, authorID int) error {
	e, err := s.getOwned(ctx, id, authorID)
	if err != nil {
		return err
	}
	if e.Status != model.ExamStatusDraft {
		return ErrExamNotDraft
	}
	n, err := s.attemptRepo.CountByExam(ctx, id)
	if err != nil {
		return fmt.Errorf("count attempts: %w", err)
	}
	if n > 0 {
		return ErrDependencyExists
	}
	return s.examRepo.Delete(ctx, id)
}

// Results retrieves the graded outcome of every student who submitted.
func (s *ExamService) Results(ctx context.Context, id uuid.UUID, authorID int) ([]repository.AttemptResult, error) {
	if _, err := s.getOwned(ctx, id, authorID); err != nil {
		return nil, err
	}
	return s.attemptRepo.ListResultsByExam(ctx, id)
}

func (s *ExamService) getOwned(ctx context.Context, id uuid.UUID, authorID int) (*model.Exam, error) {
	e, err := s.examRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}
	if e.AuthorID != authorID {
		return nil, ErrNotExamAuthor
	}
	return e, nil
}

// syncCloseTime recomputes the derived close time after any field change.
func syncCloseTime(e *model.Exam) {
	if end, ok := examcore.EndTime(e); ok {
		e.CloseTime = &end
	} else {
		e.CloseTime = nil
	}
}
