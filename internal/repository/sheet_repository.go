package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/tms-backend/internal/model"
	"github.com/stemsi/tms-backend/internal/points"
)

// SheetRepository handles exercise sheet data access.
type SheetRepository struct {
	pool *pgxpool.Pool
}

// NewSheetRepository creates a new SheetRepository.
func NewSheetRepository(pool *pgxpool.Pool) *SheetRepository {
	return &SheetRepository{pool: pool}
}

// GetByID retrieves a sheet by its ID.
func (r *SheetRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Sheet, error) {
	var s model.Sheet
	err := r.pool.QueryRow(ctx,
		`SELECT id, sheet_no, bonus, exercises, created_at FROM sheets WHERE id = $1`, id,
	).Scan(&s.ID, &s.SheetNo, &s.Bonus, &s.Exercises, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetAll retrieves every sheet ordered by sheet number.
func (r *SheetRepository) GetAll(ctx context.Context) ([]model.Sheet, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, sheet_no, bonus, exercises, created_at FROM sheets ORDER BY sheet_no`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sheets []model.Sheet
	for rows.Next() {
		var s model.Sheet
		if err := rows.Scan(&s.ID, &s.SheetNo, &s.Bonus, &s.Exercises, &s.CreatedAt); err != nil {
			return nil, err
		}
		sheets = append(sheets, s)
	}
	return sheets, rows.Err()
}

// Create inserts a new sheet.
func (r *SheetRepository) Create(ctx context.Context, s *model.Sheet) error {
	exercises := s.Exercises
	if exercises == nil {
		exercises = []points.Exercise{}
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO sheets (sheet_no, bonus, exercises)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		s.SheetNo, s.Bonus, exercises,
	).Scan(&s.ID, &s.CreatedAt)
}
