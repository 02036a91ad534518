package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/tms-backend/internal/criteria"
)

// ScheinCriteria is a persisted criteria configuration. Data holds the
// submitted field values of the criteria type named by Identifier.
type ScheinCriteria struct {
	ID         uuid.UUID      `json:"id"`
	Name       string         `json:"name"`
	Identifier string         `json:"identifier"`
	Data       map[string]any `json:"data"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// ScheinCriteriaRequest is the payload for creating or updating a criteria.
type ScheinCriteriaRequest struct {
	Name       string         `json:"name" binding:"required,min=2,max=255"`
	Identifier string         `json:"identifier" binding:"required,max=64"`
	Data       map[string]any `json:"data"`
}

// ValidateCriteriaRequest is the payload for a dry-run validation.
type ValidateCriteriaRequest struct {
	Identifier string         `json:"identifier" binding:"required,max=64"`
	Data       map[string]any `json:"data"`
}

// ScheinCriteriaResponse is the public shape of a criteria: its identity and
// the values of the reconstructed criterion.
type ScheinCriteriaResponse struct {
	ID         uuid.UUID      `json:"id"`
	Name       string         `json:"name"`
	Identifier string         `json:"identifier"`
	Data       map[string]any `json:"data"`
}

// FormCatalogue is the form of every criteria type plus its initial values.
type FormCatalogue struct {
	Forms         map[string]criteria.FormDataSet `json:"forms"`
	InitialValues map[string]map[string]any       `json:"initial_values"`
}

// StudentSummary is the schein status of one student in a class-wide report.
// Error is set if the status could not be computed.
type StudentSummary struct {
	StudentID uuid.UUID         `json:"student_id"`
	Summary   *criteria.Summary `json:"summary,omitempty"`
	Passed    bool              `json:"passed"`
	Error     string            `json:"error,omitempty"`
}

// CriteriaInfo is the result of one criteria for every student.
type CriteriaInfo struct {
	Criteria ScheinCriteriaResponse        `json:"criteria"`
	Results  map[uuid.UUID]criteria.Result `json:"results"`
	Errors   map[uuid.UUID]string          `json:"errors,omitempty"`
}
