package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/tms-backend/internal/model"
	"github.com/stemsi/tms-backend/internal/response"
	"github.com/stemsi/tms-backend/internal/service"
	"github.com/stemsi/tms-backend/internal/validator"
)

// PointsHandler handles grading endpoints.
type PointsHandler struct {
	pointsService *service.PointsService
	log           zerolog.Logger
}

// NewPointsHandler creates a new PointsHandler.
func NewPointsHandler(pointsService *service.PointsService, log zerolog.Logger) *PointsHandler {
	return &PointsHandler{
		pointsService: pointsService,
		log:           log.With().Str("component", "points_handler").Logger(),
	}
}

// AdjustSheetPoints godoc
// PUT /api/v1/students/:id/points
// Merges graded sheet exercises into the student's points.
func (h *PointsHandler) AdjustSheetPoints(c *gin.Context) {
	studentID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req model.AdjustPointsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.pointsService.AdjustSheetPoints(c.Request.Context(), studentID, req.Points)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// AdjustExamResults godoc
// PUT /api/v1/students/:id/exams/:exam_id/points
func (h *PointsHandler) AdjustExamResults(c *gin.Context) {
	studentID, ok := parseID(c, "id")
	if !ok {
		return
	}
	examID, ok := parseID(c, "exam_id")
	if !ok {
		return
	}

	var req model.AdjustPointsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.pointsService.AdjustExamResults(c.Request.Context(), studentID, examID, req.Points)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// SetPresentations godoc
// PUT /api/v1/students/:id/presentations/:sheet_id
func (h *PointsHandler) SetPresentations(c *gin.Context) {
	studentID, ok := parseID(c, "id")
	if !ok {
		return
	}
	sheetID, ok := parseID(c, "sheet_id")
	if !ok {
		return
	}

	var req model.SetPresentationsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.pointsService.SetPresentationPoints(c.Request.Context(), studentID, sheetID, *req.Count)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"student": student})
}
