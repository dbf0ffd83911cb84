package repository

import (
	"context"
	"fmt"

	"github.com/eduvio/examdesk/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const examColumns = `id, title, subject_id, class_id, author_id,
	        duration_minutes, buffer_minutes, open_time, close_time,
	        passing_score, show_result_immediately, show_correct_answers,
	        shuffle_questions, shuffle_options, status, created_at, updated_at`

// ExamRepository handles exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

func scanExam(row interface{ Scan(...any) error }) (*model.Exam, error) {
	e := &model.Exam{}
	err := row.Scan(&e.ID, &e.Title, &e.SubjectID, &e.ClassID, &e.AuthorID,
		&e.DurationMinutes, &e.BufferMinutes, &e.OpenTime, &e.CloseTime,
		&e.PassingScore, &e.ShowResultImmediately, &e.ShowCorrectAnswers,
		&e.ShuffleQuestions, &e.ShuffleOptions, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetByID retrieves an exam by its UUID.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return scanExam(r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams WHERE id = $1`, id))
}

// Create inserts a new exam draft.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (title, subject_id, class_id, author_id,
		        duration_minutes, buffer_minutes, open_time, close_time,
		        passing_score, show_result_immediately, show_correct_answers,
		        shuffle_questions, shuffle_options, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING id, created_at, updated_at`,
		e.Title, e.SubjectID, e.ClassID, e.AuthorID,
		e.DurationMinutes, e.BufferMinutes, e.OpenTime, e.CloseTime,
		e.PassingScore, e.ShowResultImmediately, e.ShowCorrectAnswers,
		e.ShuffleQuestions, e.ShuffleOptions, e.Status,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// Update rewrites a draft exam's editable fields.
func (r *ExamRepository) Update(ctx context.Context, e *model.Exam) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exams
		 SET title = $1, subject_id = $2, class_id = $3,
		     duration_minutes = $4, buffer_minutes = $5,
		     open_time = $6, close_time = $7, passing_score = $8,
		     show_result_immediately = $9, show_correct_answers = $10,
		     shuffle_questions = $11, shuffle_options = $12,
		     updated_at = NOW()
		 WHERE id = $13`,
		e.Title, e.SubjectID, e.ClassID,
		e.DurationMinutes, e.BufferMinutes,
		e.OpenTime, e.CloseTime, e.PassingScore,
		e.ShowResultImmediately, e.ShowCorrectAnswers,
		e.ShuffleQuestions, e.ShuffleOptions, e.ID)
	return err
}

// UpdateStatus moves an exam between DRAFT and PUBLISHED.
func (r *ExamRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ExamStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exams SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id)
	return err
}

// Delete removes an exam. Items cascade; attempts block deletion at the
// database level so graded history is never lost.
func (r *ExamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM exams WHERE id = $1`, id)
	return err
}

// ListByAuthorPaginated retrieves exams created by one teacher, newest first.
func (r *ExamRepository) ListByAuthorPaginated(ctx context.Context, authorID, limit, offset int) ([]model.Exam, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exams WHERE author_id = $1`, authorID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+`
		 FROM exams WHERE author_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`, authorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, 0, err
		}
		exams = append(exams, *e)
	}
	return exams, total, rows.Err()
}

// ListPublishedForClass retrieves every published exam assigned to a class,
// soonest opening first. Exams with no open time sort last.
func (r *ExamRepository) ListPublishedForClass(ctx context.Context, classID int) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+`
		 FROM exams
		 WHERE class_id = $1 AND status = $2
		 ORDER BY open_time ASC NULLS LAST`, classID, model.ExamStatusPublished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, err
		}
		exams = append(exams, *e)
	}
	return exams, rows.Err()
}

// ListItems retrieves an exam's ordered question references.
func (r *ExamRepository) ListItems(ctx context.Context, examID uuid.UUID) ([]model.ExamQuestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT question_id, points, order_num
		 FROM exam_questions WHERE exam_id = $1
		 ORDER BY order_num`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.ExamQuestion
	for rows.Next() {
		var it model.ExamQuestion
		if err := rows.Scan(&it.QuestionID, &it.Points, &it.OrderNum); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ReplaceItems swaps an exam's item list for a new ordered set in one
// transaction.
func (r *ExamRepository) ReplaceItems(ctx context.Context, examID uuid.UUID, items []model.ExamQuestion) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM exam_questions WHERE exam_id = $1`, examID); err != nil {
		return err
	}
	for _, it := range items {
		if _, err := tx.Exec(ctx,
			`INSERT INTO exam_questions (exam_id, question_id, points, order_num)
			 VALUES ($1, $2, $3, $4)`,
			examID, it.QuestionID, it.Points, it.OrderNum); err != nil {
			return fmt.Errorf("insert item %s: %w", it.QuestionID, err)
		}
	}
	if _, err := tx.Exec(ctx, `UPDATE exams SET updated_at = NOW() WHERE id = $1`, examID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CountItems returns how many questions an exam currently carries.
func (r *ExamRepository) CountItems(ctx context.Context, examID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_questions WHERE exam_id = $1`, examID).Scan(&n)
	return n, err
}
