package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/tms-backend/internal/criteria"
	"github.com/stemsi/tms-backend/internal/points"
	"github.com/stemsi/tms-backend/internal/repository"
	"github.com/stemsi/tms-backend/internal/response"
	"github.com/stemsi/tms-backend/internal/service"
)

// failWithError maps service and engine errors onto the response envelope.
func failWithError(c *gin.Context, log zerolog.Logger, err error) {
	var validationErr *criteria.ValidationError
	switch {
	case errors.As(err, &validationErr):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validationErr.Fields)
	case errors.Is(err, criteria.ErrUnknownCriteria), errors.Is(err, criteria.ErrNoSchema):
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownCriteria)
	case errors.Is(err, points.ErrInvalidKey), errors.Is(err, points.ErrInvalidPoints), errors.Is(err, service.ErrForeignPointKey):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"points": err.Error()})
	case errors.Is(err, criteria.ErrDataIntegrity):
		log.Warn().Err(err).Msg("Data integrity violation")
		response.Fail(c, http.StatusConflict, response.ErrDataIntegrity)
	case errors.Is(err, service.ErrCriteriaNotFound),
		errors.Is(err, service.ErrStudentNotFound),
		errors.Is(err, service.ErrExamNotFound),
		errors.Is(err, service.ErrSheetNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, repository.ErrDuplicateCriteriaName):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
