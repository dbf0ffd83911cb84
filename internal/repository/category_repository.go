package repository

import (
	"context"

	"github.com/eduvio/examdesk/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CategoryRepository handles question category data access.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// GetByID retrieves a category.
func (r *CategoryRepository) GetByID(ctx context.Context, id int) (*model.Category, error) {
	c := &model.Category{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, subject_id, name FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.SubjectID, &c.Name)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListBySubject retrieves categories, optionally filtered by subject.
// Pass subjectID=0 to list all.
func (r *CategoryRepository) ListBySubject(ctx context.Context, subjectID int) ([]model.Category, error) {
	query := `SELECT id, subject_id, name FROM categories`
	var args []any
	if subjectID > 0 {
		query += ` WHERE subject_id = $1`
		args = append(args, subjectID)
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.SubjectID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Create inserts a new category.
func (r *CategoryRepository) Create(ctx context.Context, c *model.Category) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO categories (subject_id, name) VALUES ($1, $2) RETURNING id`,
		c.SubjectID, c.Name,
	).Scan(&c.ID)
}

// Delete removes a category.
func (r *CategoryRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	return err
}

// CountQuestions returns how many bank questions sit in the category.
func (r *CategoryRepository) CountQuestions(ctx context.Context, id int) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM questions WHERE category_id = $1`, id).Scan(&n)
	return n, err
}
