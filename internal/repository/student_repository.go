package repository

import (
	"context"
	"errors"

	"github.com/eduvio/examdesk/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrDuplicateCode = errors.New("student with this code already exists")

// StudentRepository handles student data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// GetByID retrieves a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id int) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, code, name, password_hash, class_id, created_at, updated_at
		 FROM students WHERE id = $1`, id,
	).Scan(&s.ID, &s.Code, &s.Name, &s.PasswordHash, &s.ClassID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByCode retrieves a student by their unique school-issued code.
func (r *StudentRepository) GetByCode(ctx context.Context, code string) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, code, name, password_hash, class_id, created_at, updated_at
		 FROM students WHERE code = $1`, code,
	).Scan(&s.ID, &s.Code, &s.Name, &s.PasswordHash, &s.ClassID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListPaginated retrieves students with pagination and optional class filter.
func (r *StudentRepository) ListPaginated(ctx context.Context, classID *int, limit, offset int) ([]model.Student, int, error) {
	countQuery := `SELECT COUNT(*) FROM students`
	listQuery := `SELECT id, code, name, password_hash, class_id, created_at, updated_at FROM students`
	var countArgs, listArgs []any
	if classID != nil {
		countQuery += ` WHERE class_id = $1`
		listQuery += ` WHERE class_id = $1 ORDER BY name LIMIT $2 OFFSET $3`
		countArgs = append(countArgs, *classID)
		listArgs = append(listArgs, *classID, limit, offset)
	} else {
		listQuery += ` ORDER BY name LIMIT $1 OFFSET $2`
		listArgs = append(listArgs, limit, offset)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.Code, &s.Name, &s.PasswordHash, &s.ClassID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		students = append(students, s)
	}
	return students, total, rows.Err()
}

// Create inserts a new student. A duplicate code surfaces as
// ErrDuplicateCode.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO students (code, name, password_hash, class_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		s.Code, s.Name, s.PasswordHash, s.ClassID,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateCode
	}
	return err
}

// Update rewrites a student. An empty password hash keeps the current one.
func (r *StudentRepository) Update(ctx context.Context, s *model.Student) error {
	var err error
	if s.PasswordHash != "" {
		_, err = r.pool.Exec(ctx,
			`UPDATE students
			 SET code = $1, name = $2, password_hash = $3, class_id = $4, updated_at = NOW()
			 WHERE id = $5`,
			s.Code, s.Name, s.PasswordHash, s.ClassID, s.ID)
	} else {
		_, err = r.pool.Exec(ctx,
			`UPDATE students
			 SET code = $1, name = $2, class_id = $3, updated_at = NOW()
			 WHERE id = $4`,
			s.Code, s.Name, s.ClassID, s.ID)
	}
	if isUniqueViolation(err) {
		return ErrDuplicateCode
	}
	return err
}

// Delete removes a student.
func (r *StudentRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
