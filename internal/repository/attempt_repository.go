package repository

import (
	"context"
	"time"

	"github.com/eduvio/examdesk/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AttemptResult combines student identity with their attempt outcome for
// the author's results listing.
type AttemptResult struct {
	StudentID        int       `json:"student_id"`
	Code             string    `json:"code"`
	Name             string    `json:"name"`
	Score            float64   `json:"score"`
	TotalPoints      float64   `json:"total_points"`
	Percentage       float64   `json:"percentage"`
	ScoreOut10       float64   `json:"score_out_10"`
	CorrectCount     int       `json:"correct_count"`
	TotalQuestions   int       `json:"total_questions"`
	IsPassed         bool      `json:"is_passed"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	SubmittedAt      time.Time `json:"submitted_at"`
}

// AttemptRepository handles attempt data access. The unique index on
// (exam_id, student_id) is the single source of truth for the
// one-attempt-per-student rule; Create surfaces a violation as
// pgx.ErrNoRows through its DO NOTHING clause.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// Create inserts the attempt atomically. When an attempt for the same
// (exam, student) already exists the insert inserts nothing and the
// RETURNING scan fails with pgx.ErrNoRows, which callers translate to the
// duplicate-attempt domain error. Two racing submissions therefore resolve
// inside PostgreSQL: exactly one row wins.
func (r *AttemptRepository) Create(ctx context.Context, a *model.Attempt) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_attempts
		        (exam_id, student_id, answers, shuffle_mappings, question_order,
		         score, total_points, percentage, score_out_10,
		         correct_count, total_questions, is_passed, time_spent_seconds, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 ON CONFLICT (exam_id, student_id) DO NOTHING
		 RETURNING id`,
		a.ExamID, a.StudentID, a.Answers, a.ShuffleMappings, a.QuestionOrder,
		a.Score, a.TotalPoints, a.Percentage, a.ScoreOut10,
		a.CorrectCount, a.TotalQuestions, a.IsPassed, a.TimeSpentSeconds, a.SubmittedAt,
	).Scan(&a.ID)
}

// GetByExamAndStudent retrieves a student's attempt for one exam.
func (r *AttemptRepository) GetByExamAndStudent(ctx context.Context, examID uuid.UUID, studentID int) (*model.Attempt, error) {
	a := &model.Attempt{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, exam_id, student_id, answers, shuffle_mappings, question_order,
		        score, total_points, percentage, score_out_10,
		        correct_count, total_questions, is_passed, time_spent_seconds, submitted_at
		 FROM exam_attempts
		 WHERE exam_id = $1 AND student_id = $2`, examID, studentID,
	).Scan(&a.ID, &a.ExamID, &a.StudentID, &a.Answers, &a.ShuffleMappings, &a.QuestionOrder,
		&a.Score, &a.TotalPoints, &a.Percentage, &a.ScoreOut10,
		&a.CorrectCount, &a.TotalQuestions, &a.IsPassed, &a.TimeSpentSeconds, &a.SubmittedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Exists reports whether the student already has an attempt for the exam.
func (r *AttemptRepository) Exists(ctx context.Context, examID uuid.UUID, studentID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM exam_attempts WHERE exam_id = $1 AND student_id = $2)`,
		examID, studentID).Scan(&exists)
	return exists, err
}

// ListResultsByExam retrieves every graded attempt for an exam joined with
// student identity, best score first.
func (r *AttemptRepository) ListResultsByExam(ctx context.Context, examID uuid.UUID) ([]AttemptResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.code, s.name,
		        a.score, a.total_points, a.percentage, a.score_out_10,
		        a.correct_count, a.total_questions, a.is_passed,
		        a.time_spent_seconds, a.submitted_at
		 FROM exam_attempts a
		 JOIN students s ON s.id = a.student_id
		 WHERE a.exam_id = $1
		 ORDER BY a.percentage DESC, a.submitted_at ASC`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []AttemptResult
	for rows.Next() {
		var res AttemptResult
		if err := rows.Scan(&res.StudentID, &res.Code, &res.Name,
			&res.Score, &res.TotalPoints, &res.Percentage, &res.ScoreOut10,
			&res.CorrectCount, &res.TotalQuestions, &res.IsPassed,
			&res.TimeSpentSeconds, &res.SubmittedAt); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// ListExamIDsByStudent returns the set of exam IDs the student has already
// attempted, for decorating the lobby listing.
func (r *AttemptRepository) ListExamIDsByStudent(ctx context.Context, studentID int) (map[uuid.UUID]bool, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT exam_id FROM exam_attempts WHERE student_id = $1`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempted := make(map[uuid.UUID]bool)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		attempted[id] = true
	}
	return attempted, rows.Err()
}

// CountByExam returns the number of submitted attempts for an exam.
func (r *AttemptRepository) CountByExam(ctx context.Context, examID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_attempts WHERE exam_id = $1`, examID).Scan(&n)
	return n, err
}
