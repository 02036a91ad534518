package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/tms-backend/internal/points"
)

// Sheet is an exercise sheet.
type Sheet struct {
	ID        uuid.UUID         `json:"id"`
	SheetNo   int               `json:"sheet_no"`
	Bonus     bool              `json:"bonus"`
	Exercises []points.Exercise `json:"exercises"`
	CreatedAt time.Time         `json:"created_at"`
}

// ScheinExam is an exam counting towards the schein.
type ScheinExam struct {
	ID        uuid.UUID         `json:"id"`
	ExamNo    int               `json:"exam_no"`
	Date      time.Time         `json:"date"`
	Exercises []points.Exercise `json:"exercises"`
}

// Tutorial is a tutorial group with its meeting dates.
type Tutorial struct {
	ID    uuid.UUID   `json:"id"`
	Slot  string      `json:"slot"`
	Dates []time.Time `json:"dates"`
}
