package handler

import (
	"math"
	"net/http"
	"strconv"

	"github.com/eduvio/examdesk/internal/middleware"
	"github.com/eduvio/examdesk/internal/model"
	"github.com/eduvio/examdesk/internal/response"
	"github.com/eduvio/examdesk/internal/service"
	"github.com/eduvio/examdesk/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ExamHandler handles the teacher-side exam management endpoints.
type ExamHandler struct {
	examService *service.ExamService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// ListExams godoc
// GET /api/v1/teacher/exams
func (h *ExamHandler) ListExams(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	page, perPage := paginationParams(c)
	exams, total, err := h.examService.List(c.Request.Context(), claims.UserID, perPage, (page-1)*perPage)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"exams": exams}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(perPage))),
	})
}

// CreateExam godoc
// POST /api/v1/teacher/exams
func (h *ExamHandler) CreateExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"exam": exam})
}

// GetExam godoc
// GET /api/v1/teacher/exams/:id
func (h *ExamHandler) GetExam(c *gin.Context) {
	claims, examID, ok := claimsAndExamID(c)
	if !ok {
		return
	}
	exam, err := h.examService.Get(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// UpdateExam godoc
// PUT /api/v1/teacher/exams/:id
func (h *ExamHandler) UpdateExam(c *gin.Context) {
	claims, examID, ok := claimsAndExamID(c)
	if !ok {
		return
	}

	var req model.UpdateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Update(c.Request.Context(), examID, claims.UserID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// DeleteExam godoc
// DELETE /api/v1/teacher/exams/:id
func (h *ExamHandler) DeleteExam(c *gin.Context) {
	claims, examID, ok := claimsAndExamID(c)
	if !ok {
		return
	}
	if err := h.examService.Delete(c.Request.Context(), examID, claims.UserID); err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ReplaceExamItems godoc
// PUT /api/v1/teacher/exams/:id/questions
// Replaces the draft's ordered question list.
func (h *ExamHandler) ReplaceExamItems(c *gin.Context) {
	claims, examID, ok := claimsAndExamID(c)
	if !ok {
		return
	}

	var req model.ReplaceExamItemsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.examService.ReplaceItems(c.Request.Context(), examID, claims.UserID, &req); err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": true})
}

// PublishExam godoc
// POST /api/v1/teacher/exams/:id/publish
func (h *ExamHandler) PublishExam(c *gin.Context) {
	claims, examID, ok := claimsAndExamID(c)
	if !ok {
		return
	}
	exam, err := h.examService.Publish(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// UnpublishExam godoc
// POST /api/v1/teacher/exams/:id/unpublish
func (h *ExamHandler) UnpublishExam(c *gin.Context) {
	claims, examID, ok := claimsAndExamID(c)
	if !ok {
		return
	}
	exam, err := h.examService.Unpublish(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// ExamResults godoc
// GET /api/v1/teacher/exams/:id/results
func (h *ExamHandler) ExamResults(c *gin.Context) {
	claims, examID, ok := claimsAndExamID(c)
	if !ok {
		return
	}
	results, err := h.examService.Results(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// claimsAndExamID pulls the common pair every exam endpoint needs.
func claimsAndExamID(c *gin.Context) (*service.Claims, uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, uuid.Nil, false
	}
	examID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil, uuid.Nil, false
	}
	return claims, examID, true
}

func paginationParams(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "10"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}
	return page, perPage
}
