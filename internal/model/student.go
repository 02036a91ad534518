package model

import (
	"github.com/google/uuid"
	"github.com/stemsi/tms-backend/internal/criteria"
	"github.com/stemsi/tms-backend/internal/points"
)

// Student is a course participant with everything recorded for them.
type Student struct {
	ID              uuid.UUID                           `json:"id"`
	FirstName       string                              `json:"first_name"`
	LastName        string                              `json:"last_name"`
	MatriculationNo string                              `json:"matriculation_no,omitempty"`
	TutorialID      *uuid.UUID                          `json:"tutorial_id,omitempty"`
	SheetPoints     points.PointMapDTO                  `json:"sheet_points"`
	ExamResults     map[string]points.PointMapDTO       `json:"exam_results"`
	Presentations   map[string]int                      `json:"presentations"`
	Attendances     map[string]criteria.AttendanceState `json:"attendances"`
}

// AdjustPointsRequest carries newly graded exercises. Keys are point ids
// ("<sheet or exam id>::<exercise id>").
type AdjustPointsRequest struct {
	Points points.PointMapDTO `json:"points" binding:"required"`
}

// SetPresentationsRequest sets the number of presentations on one sheet.
type SetPresentationsRequest struct {
	Count *int `json:"count" binding:"required,gte=0"`
}
