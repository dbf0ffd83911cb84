package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/eduvio/examdesk/internal/response"
	"github.com/eduvio/examdesk/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	snapshotInterval  = 15 * time.Second
	keepAliveInterval = 30 * time.Second
)

// MonitorHandler streams live exam activity to the exam's author over SSE.
type MonitorHandler struct {
	examService    *service.ExamService
	monitorService *service.MonitorService
	log            zerolog.Logger
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(examService *service.ExamService, monitorService *service.MonitorService, log zerolog.Logger) *MonitorHandler {
	return &MonitorHandler{
		examService:    examService,
		monitorService: monitorService,
		log:            log.With().Str("component", "monitor_handler").Logger(),
	}
}

// MonitorExamSSE godoc
// GET /api/v1/teacher/exams/:id/monitor
// Pushes a snapshot on attach, then forwards strike and submission events
// as they happen, with periodic snapshot refreshes and keep-alive pings.
func (h *MonitorHandler) MonitorExamSSE(c *gin.Context) {
	claims, examID, ok := claimsAndExamID(c)
	if !ok {
		return
	}

	// Ownership check doubles as the existence check.
	if _, err := h.examService.Get(c.Request.Context(), examID, claims.UserID); err != nil {
		failFromService(c, err)
		return
	}

	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	h.sendSnapshot(c, examID)

	pubsub := h.monitorService.Subscribe(reqCtx, examID)
	defer pubsub.Close()
	ch := pubsub.Channel()

	snapshotTicker := time.NewTicker(snapshotInterval)
	defer snapshotTicker.Stop()

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()

	h.log.Info().Str("exam_id", examID.String()).Int("teacher_id", claims.UserID).Msg("teacher attached to live monitor")

	pingPayload, _ := json.Marshal(map[string]string{"type": "ping"})

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Str("exam_id", examID.String()).Msg("teacher detached from live monitor")
			return

		case msg := <-ch:
			// Events arrive pre-serialized from the publisher; forward raw.
			writeSSE(c, []byte(msg.Payload))

		case <-snapshotTicker.C:
			h.sendSnapshot(c, examID)

		case <-keepAliveTicker.C:
			writeSSE(c, pingPayload)
		}
	}
}

func (h *MonitorHandler) sendSnapshot(c *gin.Context, examID uuid.UUID) {
	// Cap snapshot queries so a slow database never stalls the SSE loop.
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	snapshot, err := h.monitorService.Snapshot(ctx, examID)
	if err != nil {
		h.log.Error().Err(err).Str("exam_id", examID.String()).Msg("snapshot failed")
		return
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	writeSSE(c, payload)
}

func writeSSE(c *gin.Context, payload []byte) {
	c.Writer.Write([]byte("data: "))
	c.Writer.Write(payload)
	c.Writer.Write([]byte("\n\n"))
	c.Writer.Flush()
}

// ListStrikes godoc
// GET /api/v1/teacher/exams/:id/strikes
// The persisted strike log for after-the-fact review.
func (h *MonitorHandler) ListStrikes(c *gin.Context) {
	claims, examID, ok := claimsAndExamID(c)
	if !ok {
		return
	}
	if _, err := h.examService.Get(c.Request.Context(), examID, claims.UserID); err != nil {
		failFromService(c, err)
		return
	}
	strikes, err := h.monitorService.ListStrikes(c.Request.Context(), examID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"strikes": strikes})
}
