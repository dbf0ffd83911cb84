package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	examcore "github.com/eduvio/examdesk/internal/exam"
	"github.com/eduvio/examdesk/internal/middleware"
	"github.com/eduvio/examdesk/internal/model"
	"github.com/eduvio/examdesk/internal/repository"
	"github.com/eduvio/examdesk/internal/service"
	ws "github.com/eduvio/examdesk/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler handles the in-exam WebSocket stream. The client uses it for
// two things while a take is in flight: re-anchoring its countdown to the
// server clock, and reporting integrity strikes.
type WSHandler struct {
	examRepo       *repository.ExamRepository
	monitorService *service.MonitorService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(examRepo *repository.ExamRepository, monitorService *service.MonitorService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		examRepo:       examRepo,
		monitorService: monitorService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// ExamWebSocketStream godoc
// WS /ws/v1/student/exams/:id/stream
func (h *WSHandler) ExamWebSocketStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	examID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid exam ID"})
		return
	}

	exam, err := h.examRepo.GetByID(c.Request.Context(), examID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pgx.ErrNoRows) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "exam unavailable"})
		return
	}
	if exam.Status != model.ExamStatusPublished || exam.ClassID != claims.ClassID {
		c.JSON(http.StatusForbidden, gin.H{"error": "exam unavailable"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	studentID := claims.UserID
	wsLog := h.log.With().
		Int("student_id", studentID).
		Str("exam_id", examID.String()).
		Logger()
	wsLog.Info().Msg("student connected")

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("unexpected close")
			} else {
				wsLog.Debug().Msg("connection closed")
			}
			break
		}

		switch msg.Action {
		case ws.ActionPing:
			h.handlePing(conn, exam)
		case ws.ActionStrike:
			h.handleStrike(conn, wsLog, examID, studentID, msg.Kind)
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("unknown action")
			ws.WriteError(conn, "unknown action: "+string(msg.Action))
		}
	}
}

// handlePing answers with the server clock and the authoritative seconds
// remaining, computed fresh from the exam's own window.
func (h *WSHandler) handlePing(conn *websocket.Conn, exam *model.Exam) {
	now := time.Now()
	ws.WriteTyped(conn, ws.PongResponse{
		Event:            ws.EventPong,
		ServerTime:       now,
		RemainingSeconds: examcore.RemainingSeconds(exam, now),
	})
}

func (h *WSHandler) handleStrike(conn *websocket.Conn, wsLog zerolog.Logger, examID uuid.UUID, studentID int, kind string) {
	count, err := h.monitorService.RecordStrike(context.Background(), examID, studentID, model.StrikeKind(kind))
	if err != nil {
		if errors.Is(err, service.ErrInvalidStrike) {
			ws.WriteError(conn, "unknown strike kind: "+kind)
			return
		}
		wsLog.Error().Err(err).Msg("record strike failed")
		ws.WriteError(conn, "strike not recorded")
		return
	}
	ws.WriteTyped(conn, ws.StrikeResponse{Event: ws.EventStrike, Count: count})
}
