package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stemsi/tms-backend/internal/criteria"
	"github.com/stemsi/tms-backend/internal/model"
)

// CriteriaStore persists scheincriteria configurations.
type CriteriaStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.ScheinCriteria, error)
	GetAll(ctx context.Context) ([]model.ScheinCriteria, error)
	Create(ctx context.Context, c *model.ScheinCriteria) error
	Update(ctx context.Context, c *model.ScheinCriteria) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// StudentStore reads students and serializes changes to their records.
type StudentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Student, error)
	GetAll(ctx context.Context) ([]model.Student, error)
	Modify(ctx context.Context, id uuid.UUID, fn func(*model.Student) error) (*model.Student, error)
}

// SheetStore reads exercise sheets.
type SheetStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Sheet, error)
	GetAll(ctx context.Context) ([]model.Sheet, error)
}

// ExamStore reads schein exams.
type ExamStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.ScheinExam, error)
	GetAll(ctx context.Context) ([]model.ScheinExam, error)
}

// TutorialStore lists tutorials.
type TutorialStore interface {
	GetAll(ctx context.Context) ([]model.Tutorial, error)
}

// SummaryStore caches computed summaries and queues recomputation.
type SummaryStore interface {
	Generation(ctx context.Context) (int64, error)
	Bump(ctx context.Context) error
	Get(ctx context.Context, generation int64, studentID string) (*criteria.Summary, error)
	Set(ctx context.Context, generation int64, studentID string, s *criteria.Summary) error
	Forget(ctx context.Context, generation int64, studentID string) error
	EnqueueRecompute(ctx context.Context, studentIDs ...string) error
}
