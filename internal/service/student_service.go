package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/eduvio/examdesk/internal/model"
	"github.com/eduvio/examdesk/internal/repository"
	"github.com/jackc/pgx/v5"
)

// StudentService handles teacher-side student account management.
type StudentService struct {
	studentRepo *repository.StudentRepository
	classRepo   *repository.ClassRepository
	auth        *AuthService
}

// NewStudentService creates a new StudentService.
func NewStudentService(studentRepo *repository.StudentRepository, classRepo *repository.ClassRepository, auth *AuthService) *StudentService {
	return &StudentService{studentRepo: studentRepo, classRepo: classRepo, auth: auth}
}

// Get retrieves a student account.
func (s *StudentService) Get(ctx context.Context, id int) (*model.Student, error) {
	st, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get student: %w", err)
	}
	return st, nil
}

// List retrieves students, optionally filtered to one class.
func (s *StudentService) List(ctx context.Context, classID *int, limit, offset int) ([]model.Student, int, error) {
	return s.studentRepo.ListPaginated(ctx, classID, limit, offset)
}

// Create registers a new student account in a known class.
func (s *StudentService) Create(ctx context.Context, req *model.CreateStudentRequest) (*model.Student, error) {
	if _, err := s.classRepo.GetByID(ctx, req.ClassID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get class: %w", err)
	}
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	st := &model.Student{
		Code:         req.Code,
		Name:         req.Name,
		PasswordHash: hash,
		ClassID:      req.ClassID,
	}
	if err := s.studentRepo.Create(ctx, st); err != nil {
		if errors.Is(err, repository.ErrDuplicateCode) {
			return nil, ErrDependencyExists
		}
		return nil, fmt.Errorf("create student: %w", err)
	}
	return st, nil
}

// Update rewrites a student account. An empty password leaves the current
// credential in place.
func (s *StudentService) Update(ctx context.Context, id int, req *model.UpdateStudentRequest) (*model.Student, error) {
	st, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.classRepo.GetByID(ctx, req.ClassID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get class: %w", err)
	}

	st.Code = req.Code
	st.Name = req.Name
	st.ClassID = req.ClassID
	st.PasswordHash = ""
	if req.Password != "" {
		hash, err := s.auth.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		st.PasswordHash = hash
	}

	if err := s.studentRepo.Update(ctx, st); err != nil {
		if errors.Is(err, repository.ErrDuplicateCode) {
			return nil, ErrDependencyExists
		}
		return nil, fmt.Errorf("update student: %w", err)
	}
	return s.Get(ctx, id)
}

// Delete removes a student account and clears any live session.
func (s *StudentService) Delete(ctx context.Context, id int) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.studentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return s.auth.ResetStudentSession(ctx, id)
}

// ResetSession clears a student's single-device login lock so they can sign
// in again after a crash or device change.
func (s *StudentService) ResetSession(ctx context.Context, id int) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.auth.ResetStudentSession(ctx, id)
}
