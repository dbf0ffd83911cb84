package repository

import (
	"context"

	"github.com/eduvio/examdesk/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuestionRepository handles question bank data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// GetByID retrieves one question.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, category_id, title, options, correct_answer, difficulty, image_url, created_at, updated_at
		 FROM questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.CategoryID, &q.Title, &q.Options, &q.CorrectAnswer, &q.Difficulty, &q.ImageURL, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// GetByIDs retrieves a batch of questions keyed by ID. Missing IDs are
// simply absent from the result.
func (r *QuestionRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Question, error) {
	bank := make(map[uuid.UUID]model.Question, len(ids))
	if len(ids) == 0 {
		return bank, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, category_id, title, options, correct_answer, difficulty, image_url, created_at, updated_at
		 FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.CategoryID, &q.Title, &q.Options, &q.CorrectAnswer, &q.Difficulty, &q.ImageURL, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		bank[q.ID] = q
	}
	return bank, rows.Err()
}

// ListByCategoryPaginated retrieves questions in a category, newest first.
// Pass categoryID=0 to list across all categories.
func (r *QuestionRepository) ListByCategoryPaginated(ctx context.Context, categoryID, limit, offset int) ([]model.Question, int, error) {
	countQuery := `SELECT COUNT(*) FROM questions`
	listQuery := `SELECT id, category_id, title, options, correct_answer, difficulty, image_url, created_at, updated_at
	              FROM questions`
	var countArgs, listArgs []any
	if categoryID > 0 {
		countQuery += ` WHERE category_id = $1`
		listQuery += ` WHERE category_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		countArgs = append(countArgs, categoryID)
		listArgs = append(listArgs, categoryID, limit, offset)
	} else {
		listQuery += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
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

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.CategoryID, &q.Title, &q.Options, &q.CorrectAnswer, &q.Difficulty, &q.ImageURL, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, 0, err
		}
		questions = append(questions, q)
	}
	return questions, total, rows.Err()
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (category_id, title, options, correct_answer, difficulty, image_url)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		q.CategoryID, q.Title, q.Options, q.CorrectAnswer, q.Difficulty, q.ImageURL,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// Update rewrites a question.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE questions
		 SET category_id = $1, title = $2, options = $3, correct_answer = $4,
		     difficulty = $5, image_url = $6, updated_at = NOW()
		 WHERE id = $7`,
		q.CategoryID, q.Title, q.Options, q.CorrectAnswer, q.Difficulty, q.ImageURL, q.ID)
	return err
}

// Delete removes a question from the bank.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	return err
}

// CountUsages returns how many exams currently reference the question.
func (r *QuestionRepository) CountUsages(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_questions WHERE question_id = $1`, id).Scan(&n)
	return n, err
}
