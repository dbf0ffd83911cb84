package handler

import (
	"net/http"

	"github.com/eduvio/examdesk/internal/middleware"
	"github.com/eduvio/examdesk/internal/model"
	"github.com/eduvio/examdesk/internal/response"
	"github.com/eduvio/examdesk/internal/service"
	"github.com/eduvio/examdesk/internal/validator"
	"github.com/gin-gonic/gin"
)

// StudentExamHandler handles the student-facing exam flow.
type StudentExamHandler struct {
	attemptService *service.AttemptService
	monitorService *service.MonitorService
}

// NewStudentExamHandler creates a new StudentExamHandler.
func NewStudentExamHandler(attemptService *service.AttemptService, monitorService *service.MonitorService) *StudentExamHandler {
	return &StudentExamHandler{attemptService: attemptService, monitorService: monitorService}
}

// Lobby godoc
// GET /api/v1/student/lobby
// Lists the published exams for the student's class.
func (h *StudentExamHandler) Lobby(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	lobby, err := h.attemptService.Lobby(c.Request.Context(), claims.UserID, claims.ClassID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exams": lobby})
}

// CheckAttempt godoc
// GET /api/v1/student/exams/:id/attempt
// Pre-take gate: reports attempt state, window status, and the server clock.
func (h *StudentExamHandler) CheckAttempt(c *gin.Context) {
	claims, examID, ok := claimsAndExamID(c)
	if !ok {
		return
	}
	status, err := h.attemptService.CheckAttempt(c.Request.Context(), examID, claims.UserID, claims.ClassID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, status)
}

// StartTake godoc
// POST /api/v1/student/exams/:id/take
// Deals a freshly shuffled paper. Nothing is persisted; a refresh deals a
// new one.
func (h *StudentExamHandler) StartTake(c *gin.Context) {
	claims, examID, ok := claimsAndExamID(c)
	if !ok {
		return
	}
	session, err := h.attemptService.StartTake(c.Request.Context(), examID, claims.UserID, claims.ClassID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, session)
}

// Submit godoc
// POST /api/v1/student/exams/:id/submit
// Grades and records the one allowed attempt.
func (h *StudentExamHandler) Submit(c *gin.Context) {
	claims, examID, ok := claimsAndExamID(c)
	if !ok {
		return
	}

	var req model.SubmitAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	outcome, err := h.attemptService.Submit(c.Request.Context(), examID, claims.UserID, claims.ClassID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	h.monitorService.PublishSubmission(c.Request.Context(), examID, claims.UserID, outcome.Percentage)

	// The score rides along only when the exam reveals results immediately;
	// otherwise the student gets a bare acknowledgement and waits for the
	// result endpoints to unlock.
	body := gin.H{
		"attempt_id":   outcome.ID,
		"submitted_at": outcome.SubmittedAt,
	}
	if outcome.ShowResult {
		body["score"] = outcome.Score
		body["total_points"] = outcome.TotalPoints
		body["percentage"] = outcome.Percentage
		body["score_out_10"] = outcome.ScoreOut10
		body["correct_count"] = outcome.CorrectCount
		body["total_questions"] = outcome.TotalQuestions
		body["is_passed"] = outcome.IsPassed
	}
	response.Success(c, http.StatusCreated, body)
}

// MyResult godoc
// GET /api/v1/student/exams/:id/result
func (h *StudentExamHandler) MyResult(c *gin.Context) {
	claims, examID, ok := claimsAndExamID(c)
	if !ok {
		return
	}
	result, err := h.attemptService.MyResult(c.Request.Context(), examID, claims.UserID, claims.ClassID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// MyResultDetailed godoc
// GET /api/v1/student/exams/:id/result/detail
// Full review: the paper replayed in the order the student saw it.
func (h *StudentExamHandler) MyResultDetailed(c *gin.Context) {
	claims, examID, ok := claimsAndExamID(c)
	if !ok {
		return
	}
	result, err := h.attemptService.MyResultDetailed(c.Request.Context(), examID, claims.UserID, claims.ClassID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// ReportStrike godoc
// POST /api/v1/student/exams/:id/strikes
// HTTP fallback for strike reporting when the WebSocket is unavailable.
func (h *StudentExamHandler) ReportStrike(c *gin.Context) {
	claims, examID, ok := claimsAndExamID(c)
	if !ok {
		return
	}

	var req struct {
		Kind model.StrikeKind `json:"kind" binding:"required"`
	}
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	count, err := h.monitorService.RecordStrike(c.Request.Context(), examID, claims.UserID, req.Kind)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"count": count})
}

// MyStrikeCount godoc
// GET /api/v1/student/exams/:id/strikes
// Returns the running strike total so a page reload restores the counter.
func (h *StudentExamHandler) MyStrikeCount(c *gin.Context) {
	claims, examID, ok := claimsAndExamID(c)
	if !ok {
		return
	}
	count, err := h.monitorService.StrikeCount(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"count": count})
}
