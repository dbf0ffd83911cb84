package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eduvio/examdesk/internal/config"
	"github.com/eduvio/examdesk/internal/model"
	"github.com/eduvio/examdesk/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// StrikeEvent is the JSON payload fanned out on the exam's monitor channel
// and queued for persistence.
type StrikeEvent struct {
	Type      string           `json:"type"`
	ExamID    string           `json:"exam_id"`
	StudentID int              `json:"student_id"`
	Kind      model.StrikeKind `json:"kind"`
	Count     int64            `json:"count"`
	Timestamp int64            `json:"timestamp"`
}

// MonitorService records integrity strikes and serves the author's live
// monitor. Strikes take the fast path through Redis: the counter and the
// pub/sub fan-out are updated synchronously, the PostgreSQL write happens
// in a background batch worker.
type MonitorService struct {
	strikeRepo  *repository.StrikeRepository
	attemptRepo *repository.AttemptRepository
	rdb         *redis.Client
}

// NewMonitorService creates a new MonitorService.
func NewMonitorService(strikeRepo *repository.StrikeRepository, attemptRepo *repository.AttemptRepository, rdb *redis.Client) *MonitorService {
	return &MonitorService{strikeRepo: strikeRepo, attemptRepo: attemptRepo, rdb: rdb}
}

// RecordStrike counts one suspicious client event, queues it for durable
// storage, and fans it out to anyone watching the exam monitor. Returns
// the student's running strike total for this exam, so the client can
// resume the warn-warn-submit sequence after a page refresh instead of
// starting over.
func (s *MonitorService) RecordStrike(ctx context.Context, examID uuid.UUID, studentID int, kind model.StrikeKind) (int64, error) {
	if !model.ValidStrikeKind(kind) {
		return 0, ErrInvalidStrike
	}

	countKey := config.CacheKey.StudentStrikeCountKey(examID.String(), studentID)
	count, err := s.rdb.Incr(ctx, countKey).Result()
	if err != nil {
		return 0, fmt.Errorf("count strike: %w", err)
	}
	// Counter outlives the exam window by a day, then evaporates.
	s.rdb.Expire(ctx, countKey, 24*time.Hour)

	event := StrikeEvent{
		Type:      "strike",
		ExamID:    examID.String(),
		StudentID: studentID,
		Kind:      kind,
		Count:     count,
		Timestamp: time.Now().Unix(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return count, fmt.Errorf("marshal strike: %w", err)
	}

	pipe := s.rdb.Pipeline()
	pipe.LPush(ctx, config.WorkerKey.PersistStrikesQueue, payload)
	pipe.Publish(ctx, config.CacheKey.ExamMonitorChannel(examID.String()), payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return count, fmt.Errorf("queue strike: %w", err)
	}
	return count, nil
}

// StrikeCount returns the student's running strike total for an exam.
func (s *MonitorService) StrikeCount(ctx context.Context, examID uuid.UUID, studentID int) (int64, error) {
	count, err := s.rdb.Get(ctx, config.CacheKey.StudentStrikeCountKey(examID.String(), studentID)).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("get strike count: %w", err)
	}
	return count, nil
}

// MonitorSnapshot is the initial state pushed when an author attaches to
// the live monitor stream.
type MonitorSnapshot struct {
	Type          string          `json:"type"`
	SubmittedCount int            `json:"submitted_count"`
	StrikeCounts  map[int]int64   `json:"strike_counts"`
	TotalStrikes  int64           `json:"total_strikes"`
	ServerTime    time.Time       `json:"server_time"`
}

// Snapshot assembles the current submission and strike totals for an exam.
func (s *MonitorService) Snapshot(ctx context.Context, examID uuid.UUID) (*MonitorSnapshot, error) {
	submitted, err := s.attemptRepo.CountByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("count attempts: %w", err)
	}

	snapshot := &MonitorSnapshot{
		Type:           "snapshot",
		SubmittedCount: submitted,
		StrikeCounts:   make(map[int]int64),
		ServerTime:     time.Now(),
	}
	// Strike counts are best-effort: the monitor still works without them.
	if counts, err := s.strikeRepo.CountByExam(ctx, examID); err == nil {
		snapshot.StrikeCounts = counts
		for _, n := range counts {
			snapshot.TotalStrikes += n
		}
	}
	return snapshot, nil
}

// ListStrikes returns the persisted strike log for an exam.
func (s *MonitorService) ListStrikes(ctx context.Context, examID uuid.UUID) ([]model.Strike, error) {
	return s.strikeRepo.ListByExam(ctx, examID)
}

// Subscribe attaches to the exam's monitor channel. The caller owns the
// returned PubSub and must Close it.
func (s *MonitorService) Subscribe(ctx context.Context, examID uuid.UUID) *redis.PubSub {
	return s.rdb.Subscribe(ctx, config.CacheKey.ExamMonitorChannel(examID.String()))
}

// PublishSubmission notifies the monitor that a student has turned in
// their paper.
func (s *MonitorService) PublishSubmission(ctx context.Context, examID uuid.UUID, studentID int, percentage float64) {
	payload, err := json.Marshal(map[string]any{
		"type":       "submission",
		"exam_id":    examID.String(),
		"student_id": studentID,
		"percentage": percentage,
		"timestamp":  time.Now().Unix(),
	})
	if err != nil {
		return
	}
	s.rdb.Publish(ctx, config.CacheKey.ExamMonitorChannel(examID.String()), payload)
}
