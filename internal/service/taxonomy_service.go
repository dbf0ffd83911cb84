package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/eduvio/examdesk/internal/model"
	"github.com/eduvio/examdesk/internal/repository"
	"github.com/jackc/pgx/v5"
)

// TaxonomyService manages the small lookup entities exams hang off of:
// classes, subjects, and question categories.
type TaxonomyService struct {
	classRepo    *repository.ClassRepository
	subjectRepo  *repository.SubjectRepository
	categoryRepo *repository.CategoryRepository
}

// NewTaxonomyService creates a new TaxonomyService.
func NewTaxonomyService(
	classRepo *repository.ClassRepository,
	subjectRepo *repository.SubjectRepository,
	categoryRepo *repository.CategoryRepository,
) *TaxonomyService {
	return &TaxonomyService{
		classRepo:    classRepo,
		subjectRepo:  subjectRepo,
		categoryRepo: categoryRepo,
	}
}

// ListClasses retrieves all classes.
func (s *TaxonomyService) ListClasses(ctx context.Context) ([]model.Class, error) {
	return s.classRepo.List(ctx)
}

// CreateClass adds a class.
func (s *TaxonomyService) CreateClass(ctx context.Context, req *model.CreateClassRequest) (*model.Class, error) {
	c := &model.Class{Name: req.Name, Grade: req.Grade}
	if err := s.classRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create class: %w", err)
	}
	return c, nil
}

// UpdateClass rewrites a class.
func (s *TaxonomyService) UpdateClass(ctx context.Context, id int, req *model.UpdateClassRequest) (*model.Class, error) {
	c, err := s.classRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get class: %w", err)
	}
	c.Name = req.Name
	c.Grade = req.Grade
	if err := s.classRepo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update class: %w", err)
	}
	return c, nil
}

// DeleteClass removes a class with no enrolled students.
func (s *TaxonomyService) DeleteClass(ctx context.Context, id int) error {
	if _, err := s.classRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get class: %w", err)
	}
	n, err := s.classRepo.CountStudents(ctx, id)
	if err != nil {
		return fmt.Errorf("count students: %w", err)
	}
	if n > 0 {
		return ErrDependencyExists
	}
	return s.classRepo.Delete(ctx, id)
}

// ListSubjects retrieves all subjects.
func (s *TaxonomyService) ListSubjects(ctx context.Context) ([]model.Subject, error) {
	return s.subjectRepo.List(ctx)
}

// CreateSubject adds a subject.
func (s *TaxonomyService) CreateSubject(ctx context.Context, req *model.CreateSubjectRequest) (*model.Subject, error) {
	sub := &model.Subject{Name: req.Name}
	if err := s.subjectRepo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("create subject: %w", err)
	}
	return sub, nil
}

// DeleteSubject removes a subject with no categories under it.
func (s *TaxonomyService) DeleteSubject(ctx context.Context, id int) error {
	if _, err := s.subjectRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get subject: %w", err)
	}
	cats, err := s.categoryRepo.ListBySubject(ctx, id)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	if len(cats) > 0 {
		return ErrDependencyExists
	}
	return s.subjectRepo.Delete(ctx, id)
}

// ListCategories retrieves categories, optionally scoped to one subject.
func (s *TaxonomyService) ListCategories(ctx context.Context, subjectID int) ([]model.Category, error) {
	return s.categoryRepo.ListBySubject(ctx, subjectID)
}

// CreateCategory adds a question category under an existing subject.
func (s *TaxonomyService) CreateCategory(ctx context.Context, req *model.CreateCategoryRequest) (*model.Category, error) {
	if _, err := s.subjectRepo.GetByID(ctx, req.SubjectID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get subject: %w", err)
	}
	c := &model.Category{SubjectID: req.SubjectID, Name: req.Name}
	if err := s.categoryRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// DeleteCategory removes a category with no questions in it.
func (s *TaxonomyService) DeleteCategory(ctx context.Context, id int) error {
	if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get category: %w", err)
	}
	n, err := s.categoryRepo.CountQuestions(ctx, id)
	if err != nil {
		return fmt.Errorf("count questions: %w", err)
	}
	if n > 0 {
		return ErrDependencyExists
	}
	return s.categoryRepo.Delete(ctx, id)
}
