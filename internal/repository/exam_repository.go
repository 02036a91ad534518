package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/tms-backend/internal/model"
	"github.com/stemsi/tms-backend/internal/points"
)

// ExamRepository handles schein exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// GetByID retrieves an exam by its UUID.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ScheinExam, error) {
	e := &model.ScheinExam{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, exam_no, date, exercises FROM scheinexams WHERE id = $1`, id,
	).Scan(&e.ID, &e.ExamNo, &e.Date, &e.Exercises)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetAll retrieves every exam ordered by exam number.
func (r *ExamRepository) GetAll(ctx context.Context) ([]model.ScheinExam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_no, date, exercises FROM scheinexams ORDER BY exam_no`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.ScheinExam
	for rows.Next() {
		var e model.ScheinExam
		if err := rows.Scan(&e.ID, &e.ExamNo, &e.Date, &e.Exercises); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// Create inserts a new exam.
func (r *ExamRepository) Create(ctx context.Context, e *model.ScheinExam) error {
	exercises := e.Exercises
	if exercises == nil {
		exercises = []points.Exercise{}
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO scheinexams (exam_no, date, exercises)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		e.ExamNo, e.Date, exercises,
	).Scan(&e.ID)
}
