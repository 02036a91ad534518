package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/tms-backend/internal/model"
)

// TutorialRepository handles tutorial data access.
type TutorialRepository struct {
	pool *pgxpool.Pool
}

// NewTutorialRepository creates a new TutorialRepository.
func NewTutorialRepository(pool *pgxpool.Pool) *TutorialRepository {
	return &TutorialRepository{pool: pool}
}

// GetAll retrieves every tutorial with its dates.
func (r *TutorialRepository) GetAll(ctx context.Context) ([]model.Tutorial, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, slot, dates FROM tutorials ORDER BY slot`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tutorials []model.Tutorial
	for rows.Next() {
		var t model.Tutorial
		if err := rows.Scan(&t.ID, &t.Slot, &t.Dates); err != nil {
			return nil, err
		}
		tutorials = append(tutorials, t)
	}
	return tutorials, rows.Err()
}

// Create inserts a new tutorial.
func (r *TutorialRepository) Create(ctx context.Context, t *model.Tutorial) error {
	dates := t.Dates
	if dates == nil {
		dates = []time.Time{}
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO tutorials (slot, dates) VALUES ($1, $2) RETURNING id`,
		t.Slot, dates,
	).Scan(&t.ID)
}
