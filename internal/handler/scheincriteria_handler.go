package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/tms-backend/internal/model"
	"github.com/stemsi/tms-backend/internal/response"
	"github.com/stemsi/tms-backend/internal/service"
	"github.com/stemsi/tms-backend/internal/validator"
)

// ScheinCriteriaHandler handles criteria configuration and schein status
// endpoints.
type ScheinCriteriaHandler struct {
	criteriaService *service.ScheinCriteriaService
	log             zerolog.Logger
}

// NewScheinCriteriaHandler creates a new ScheinCriteriaHandler.
func NewScheinCriteriaHandler(criteriaService *service.ScheinCriteriaService, log zerolog.Logger) *ScheinCriteriaHandler {
	return &ScheinCriteriaHandler{
		criteriaService: criteriaService,
		log:             log.With().Str("component", "scheincriteria_handler").Logger(),
	}
}

// GetFormData godoc
// GET /api/v1/scheincriteria/form
// Returns the input form and initial values of every criteria type.
func (h *ScheinCriteriaHandler) GetFormData(c *gin.Context) {
	response.Success(c, http.StatusOK, h.criteriaService.GetFormData())
}

// ValidateCriteria godoc
// POST /api/v1/scheincriteria/validate
// Validates a criteria configuration without storing it.
func (h *ScheinCriteriaHandler) ValidateCriteria(c *gin.Context) {
	var req model.ValidateCriteriaRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.criteriaService.Validate(req.Identifier, req.Data); err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"valid": true})
}

// ListCriteria godoc
// GET /api/v1/scheincriteria
func (h *ScheinCriteriaHandler) ListCriteria(c *gin.Context) {
	list, err := h.criteriaService.List(c.Request.Context())
	if err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"criterias": list})
}

// CreateCriteria godoc
// POST /api/v1/scheincriteria
func (h *ScheinCriteriaHandler) CreateCriteria(c *gin.Context) {
	var req model.ScheinCriteriaRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	created, err := h.criteriaService.Create(c.Request.Context(), &req)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"criteria": created})
}

// GetCriteria godoc
// GET /api/v1/scheincriteria/:id
func (h *ScheinCriteriaHandler) GetCriteria(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	found, err := h.criteriaService.Get(c.Request.Context(), id)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"criteria": found})
}

// UpdateCriteria godoc
// PUT /api/v1/scheincriteria/:id
func (h *ScheinCriteriaHandler) UpdateCriteria(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req model.ScheinCriteriaRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	updated, err := h.criteriaService.Update(c.Request.Context(), id, &req)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"criteria": updated})
}

// DeleteCriteria godoc
// DELETE /api/v1/scheincriteria/:id
func (h *ScheinCriteriaHandler) DeleteCriteria(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.criteriaService.Delete(c.Request.Context(), id); err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// GetCriteriaInfo godoc
// GET /api/v1/scheincriteria/:id/info
// Evaluates one criteria for every student.
func (h *ScheinCriteriaHandler) GetCriteriaInfo(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	info, err := h.criteriaService.CriteriaInfo(c.Request.Context(), id)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, info)
}

// GetAllSummaries godoc
// GET /api/v1/scheincriteria/students
// Returns the schein status of every student.
func (h *ScheinCriteriaHandler) GetAllSummaries(c *gin.Context) {
	summaries, err := h.criteriaService.SummaryForAllStudents(c.Request.Context())
	if err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"summaries": summaries})
}

// GetStudentSummary godoc
// GET /api/v1/scheincriteria/students/:id
func (h *ScheinCriteriaHandler) GetStudentSummary(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	summary, err := h.criteriaService.SummaryForStudent(c.Request.Context(), id)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"student_id": id, "summary": summary})
}

// parseID reads a UUID path parameter and answers 400 if it is malformed.
func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}
