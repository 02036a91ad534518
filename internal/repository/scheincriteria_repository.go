package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/tms-backend/internal/model"
)

var ErrDuplicateCriteriaName = errors.New("scheincriteria with this name already exists")

// ScheinCriteriaRepository handles scheincriteria data access.
type ScheinCriteriaRepository struct {
	pool *pgxpool.Pool
}

// NewScheinCriteriaRepository creates a new ScheinCriteriaRepository.
func NewScheinCriteriaRepository(pool *pgxpool.Pool) *ScheinCriteriaRepository {
	return &ScheinCriteriaRepository{pool: pool}
}

// GetByID retrieves a criteria by its UUID.
func (r *ScheinCriteriaRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ScheinCriteria, error) {
	c := &model.ScheinCriteria{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, identifier, data, created_at, updated_at
		 FROM scheincriterias WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Identifier, &c.Data, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetAll retrieves every criteria in creation order.
func (r *ScheinCriteriaRepository) GetAll(ctx context.Context) ([]model.ScheinCriteria, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, identifier, data, created_at, updated_at
		 FROM scheincriterias ORDER BY created_at, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.ScheinCriteria
	for rows.Next() {
		var c model.ScheinCriteria
		if err := rows.Scan(&c.ID, &c.Name, &c.Identifier, &c.Data, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Create inserts a new criteria.
func (r *ScheinCriteriaRepository) Create(ctx context.Context, c *model.ScheinCriteria) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO scheincriterias (name, identifier, data)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		c.Name, c.Identifier, c.Data,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapDuplicate(err)
}

// Update replaces name, identifier and data of an existing criteria.
func (r *ScheinCriteriaRepository) Update(ctx context.Context, c *model.ScheinCriteria) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE scheincriterias SET name = $1, identifier = $2, data = $3, updated_at = NOW()
		 WHERE id = $4
		 RETURNING created_at, updated_at`,
		c.Name, c.Identifier, c.Data, c.ID,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	return mapDuplicate(err)
}

// Delete removes a criteria. Returns pgx.ErrNoRows if it does not exist.
func (r *ScheinCriteriaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM scheincriterias WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func mapDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateCriteriaName
	}
	return err
}
