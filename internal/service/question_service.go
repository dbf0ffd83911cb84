package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/eduvio/examdesk/internal/model"
	"github.com/eduvio/examdesk/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// QuestionService handles question bank business logic.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
	categoryRepo *repository.CategoryRepository
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questionRepo *repository.QuestionRepository, categoryRepo *repository.CategoryRepository) *QuestionService {
	return &QuestionService{questionRepo: questionRepo, categoryRepo: categoryRepo}
}

// Get retrieves a single bank question.
func (s *QuestionService) Get(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get question: %w", err)
	}
	return q, nil
}

// List retrieves bank questions, optionally scoped to one category.
func (s *QuestionService) List(ctx context.Context, categoryID, limit, offset int) ([]model.Question, int, error) {
	return s.questionRepo.ListByCategoryPaginated(ctx, categoryID, limit, offset)
}

// Create adds a question to the bank under an existing category.
func (s *QuestionService) Create(ctx context.Context, req *model.CreateQuestionRequest) (*model.Question, error) {
	if _, err := s.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	q := &model.Question{
		CategoryID:    req.CategoryID,
		Title:         req.Title,
		Options:       req.Options,
		CorrectAnswer: *req.CorrectAnswer,
		Difficulty:    req.Difficulty,
		ImageURL:      req.ImageURL,
	}
	if err := s.questionRepo.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return q, nil
}

// Update rewrites a bank question. Attempts already graded against the old
// wording keep their recorded scores; only future takes see the edit.
func (s *QuestionService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateQuestionRequest) (*model.Question, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	q.CategoryID = req.CategoryID
	q.Title = req.Title
	q.Options = req.Options
	q.CorrectAnswer = *req.CorrectAnswer
	q.Difficulty = req.Difficulty
	q.ImageURL = req.ImageURL
	if err := s.questionRepo.Update(ctx, q); err != nil {
		return nil, fmt.Errorf("update question: %w", err)
	}
	return q, nil
}

// Delete removes a question unless an exam still references it.
func (s *QuestionService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	n, err := s.questionRepo.CountUsages(ctx, id)
	if err != nil {
		return fmt.Errorf("count usages: %w", err)
	}
	if n > 0 {
		return ErrDependencyExists
	}
	return s.questionRepo.Delete(ctx, id)
}
