package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/tms-backend/internal/model"
)

var ErrDuplicateMatriculationNo = errors.New("student with this matriculation number already exists")

const studentColumns = `id, first_name, last_name, matriculation_no, tutorial_id,
	sheet_points, exam_results, presentations, attendances`

// StudentRepository handles student data access. Point maps, exam results,
// presentations and attendances are stored as JSONB documents.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

func scanStudent(row pgx.Row) (*model.Student, error) {
	s := &model.Student{}
	var matNo *string
	if err := row.Scan(&s.ID, &s.FirstName, &s.LastName, &matNo, &s.TutorialID,
		&s.SheetPoints, &s.ExamResults, &s.Presentations, &s.Attendances); err != nil {
		return nil, err
	}
	if matNo != nil {
		s.MatriculationNo = *matNo
	}
	return s, nil
}

// GetByID retrieves a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Student, error) {
	return scanStudent(r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = $1`, id))
}

// GetAll retrieves every student ordered by name.
func (r *StudentRepository) GetAll(ctx context.Context) ([]model.Student, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+studentColumns+` FROM students ORDER BY last_name, first_name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, *s)
	}
	return students, rows.Err()
}

// Create inserts a new student.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	var matNo *string
	if s.MatriculationNo != "" {
		matNo = &s.MatriculationNo
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO students (first_name, last_name, matriculation_no, tutorial_id,
		                       sheet_points, exam_results, presentations, attendances)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		s.FirstName, s.LastName, matNo, s.TutorialID,
		nonNil(s.SheetPoints), nonNil(s.ExamResults), nonNil(s.Presentations), nonNil(s.Attendances),
	).Scan(&s.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateMatriculationNo
		}
		return err
	}
	return nil
}

// Modify loads the student under a row lock, applies fn and writes the
// grading columns back in the same transaction. Concurrent modifications of
// one student are serialized; an error from fn rolls back.
func (r *StudentRepository) Modify(ctx context.Context, id uuid.UUID, fn func(*model.Student) error) (*model.Student, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	s, err := scanStudent(tx.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}

	if err := fn(s); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE students
		 SET sheet_points = $1, exam_results = $2, presentations = $3, attendances = $4, updated_at = NOW()
		 WHERE id = $5`,
		nonNil(s.SheetPoints), nonNil(s.ExamResults), nonNil(s.Presentations), nonNil(s.Attendances), id,
	); err != nil {
		return nil, fmt.Errorf("update student: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return s, nil
}

// nonNil keeps NOT NULL JSONB columns from receiving SQL NULL for nil maps.
func nonNil[M ~map[K]V, K comparable, V any](m M) M {
	if m == nil {
		return M{}
	}
	return m
}
