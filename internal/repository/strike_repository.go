package repository

import (
	"context"

	"github.com/eduvio/examdesk/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StrikeRepository persists integrity strike events.
type StrikeRepository struct {
	pool *pgxpool.Pool
}

// NewStrikeRepository creates a new StrikeRepository.
func NewStrikeRepository(pool *pgxpool.Pool) *StrikeRepository {
	return &StrikeRepository{pool: pool}
}

// BulkInsert writes a batch of strikes with COPY.
func (r *StrikeRepository) BulkInsert(ctx context.Context, strikes []model.Strike) error {
	if len(strikes) == 0 {
		return nil
	}
	_, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"exam_strikes"},
		[]string{"exam_id", "student_id", "kind", "reported_at"},
		pgx.CopyFromSlice(len(strikes), func(i int) ([]any, error) {
			s := strikes[i]
			return []any{s.ExamID, s.StudentID, s.Kind, s.ReportedAt}, nil
		}),
	)
	return err
}

// Insert writes one strike. Fallback path when a COPY batch fails.
func (r *StrikeRepository) Insert(ctx context.Context, s *model.Strike) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_strikes (exam_id, student_id, kind, reported_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		s.ExamID, s.StudentID, s.Kind, s.ReportedAt,
	).Scan(&s.ID)
}

// ListByExam retrieves every strike recorded for an exam, newest first.
func (r *StrikeRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Strike, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, student_id, kind, reported_at
		 FROM exam_strikes WHERE exam_id = $1
		 ORDER BY reported_at DESC`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var strikes []model.Strike
	for rows.Next() {
		var s model.Strike
		if err := rows.Scan(&s.ID, &s.ExamID, &s.StudentID, &s.Kind, &s.ReportedAt); err != nil {
			return nil, err
		}
		strikes = append(strikes, s)
	}
	return strikes, rows.Err()
}

// CountByExam returns strike totals per student for an exam.
func (r *StrikeRepository) CountByExam(ctx context.Context, examID uuid.UUID) (map[int]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT student_id, COUNT(*)
		 FROM exam_strikes WHERE exam_id = $1
		 GROUP BY student_id`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int64)
	for rows.Next() {
		var sid int
		var n int64
		if err := rows.Scan(&sid, &n); err != nil {
			return nil, err
		}
		counts[sid] = n
	}
	return counts, rows.Err()
}
