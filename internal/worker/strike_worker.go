package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/eduvio/examdesk/internal/config"
	"github.com/eduvio/examdesk/internal/model"
	"github.com/eduvio/examdesk/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second // must be >= 1s to satisfy Redis
)

// StrikeWorker drains the strike queue into PostgreSQL in batches. The hot
// path (counter + pub/sub) never waits on the database; this worker is the
// durability tail.
type StrikeWorker struct {
	strikeRepo *repository.StrikeRepository
	rdb        *redis.Client
	log        zerolog.Logger
}

// NewStrikeWorker creates a new StrikeWorker.
func NewStrikeWorker(strikeRepo *repository.StrikeRepository, rdb *redis.Client, log zerolog.Logger) *StrikeWorker {
	return &StrikeWorker{
		strikeRepo: strikeRepo,
		rdb:        rdb,
		log:        log.With().Str("component", "strike_worker").Logger(),
	}
}

type strikePayload struct {
	ExamID    string           `json:"exam_id"`
	StudentID int              `json:"student_id"`
	Kind      model.StrikeKind `json:"kind"`
	Timestamp int64            `json:"timestamp"`
}

// Start runs the drain loop until ctx is cancelled, then flushes whatever
// is still buffered.
func (w *StrikeWorker) Start(ctx context.Context) {
	w.log.Info().Msg("strike worker started")

	buffer := make([]*strikePayload, 0, BatchSize)
	lastFlush := time.Now()

	for {
		if len(buffer) > 0 && (len(buffer) >= BatchSize || time.Since(lastFlush) >= BatchTimeout) {
			w.flushSafe(ctx, buffer)
			buffer = buffer[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
		}

		result, err := w.rdb.BLPop(ctx, PollTimeout, config.WorkerKey.PersistStrikesQueue).Result()
		if err != nil {
			if err == redis.Nil {
				continue // queue empty, loop back to check the flush timer
			}
			if ctx.Err() != nil {
				w.shutdown(buffer)
				return
			}
			w.log.Error().Err(err).Msg("redis connection error, sleeping 3s")
			time.Sleep(3 * time.Second)
			continue
		}
		if len(result) < 2 {
			continue
		}

		var payload strikePayload
		if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
			// Malformed JSON can never succeed on retry. Log and discard.
			w.log.Error().Err(err).Str("data", result[1]).Msg("discarding malformed strike payload")
			continue
		}
		buffer = append(buffer, &payload)
	}
}

// flushSafe tries the bulk path first, then row-by-row recovery.
func (w *StrikeWorker) flushSafe(ctx context.Context, batch []*strikePayload) {
	strikes := make([]model.Strike, 0, len(batch))
	for _, p := range batch {
		s, ok := w.toStrike(p)
		if !ok {
			continue
		}
		strikes = append(strikes, *s)
	}

	if err := w.strikeRepo.BulkInsert(ctx, strikes); err != nil {
		w.log.Warn().Err(err).Int("count", len(strikes)).Msg("bulk insert failed, attempting row-by-row recovery")
		w.fallbackInsert(ctx, batch)
		return
	}
	w.log.Debug().Int("count", len(strikes)).Msg("flushed strike batch")
}

func (w *StrikeWorker) fallbackInsert(ctx context.Context, batch []*strikePayload) {
	var requeue []*strikePayload
	for _, p := range batch {
		s, ok := w.toStrike(p)
		if !ok {
			continue
		}
		if err := w.strikeRepo.Insert(ctx, s); err != nil {
			w.log.Error().Err(err).Int("student_id", p.StudentID).Msg("insert failed, requeueing")
			requeue = append(requeue, p)
		}
	}
	if len(requeue) > 0 {
		w.requeue(ctx, requeue)
	}
}

func (w *StrikeWorker) toStrike(p *strikePayload) (*model.Strike, bool) {
	examID, err := uuid.Parse(p.ExamID)
	if err != nil {
		w.log.Error().Str("exam_id", p.ExamID).Msg("dropping strike with invalid exam id")
		return nil, false
	}
	return &model.Strike{
		ExamID:     examID,
		StudentID:  p.StudentID,
		Kind:       p.Kind,
		ReportedAt: time.Unix(p.Timestamp, 0),
	}, true
}

func (w *StrikeWorker) requeue(ctx context.Context, items []*strikePayload) {
	pipe := w.rdb.Pipeline()
	for _, p := range items {
		data, _ := json.Marshal(p)
		pipe.RPush(ctx, config.WorkerKey.PersistStrikesQueue, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Msg("failed to requeue strikes, data loss occurred")
		return
	}
	w.log.Info().Int("count", len(items)).Msg("requeued failed strikes")
	// Back off so a hard-down database is not hammered.
	time.Sleep(2 * time.Second)
}

func (w *StrikeWorker) shutdown(buffer []*strikePayload) {
	w.log.Info().Msg("strike worker stopping, flushing remaining buffer")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if len(buffer) > 0 {
		w.flushSafe(shutdownCtx, buffer)
	}
}
