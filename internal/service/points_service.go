package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stemsi/tms-backend/internal/model"
	"github.com/stemsi/tms-backend/internal/points"
)

// Domain Errors
var (
	ErrExamNotFound    = errors.New("scheinexam not found")
	ErrSheetNotFound   = errors.New("sheet not found")
	ErrForeignPointKey = errors.New("point key does not belong to the target")
)

// PointsService records grading results of students. Every entry is checked
// against the exercises of its sheet or exam before it is stored.
type PointsService struct {
	students StudentStore
	sheets   SheetStore
	exams    ExamStore
	cache    SummaryStore
	log      zerolog.Logger
}

// NewPointsService creates a new PointsService.
func NewPointsService(students StudentStore, sheets SheetStore, exams ExamStore, cache SummaryStore, log zerolog.Logger) *PointsService {
	return &PointsService{
		students: students,
		sheets:   sheets,
		exams:    exams,
		cache:    cache,
		log:      log.With().Str("component", "points_service").Logger(),
	}
}

// AdjustSheetPoints merges newly graded sheet exercises into the student's
// point map. Entries not named in partial are left untouched.
func (s *PointsService) AdjustSheetPoints(ctx context.Context, studentID uuid.UUID, partial points.PointMapDTO) (*model.Student, error) {
	update, err := points.PointMapFromDTO(partial)
	if err != nil {
		return nil, err
	}

	sheets, err := s.sheets.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	exercises := make(map[string][]points.Exercise, len(sheets))
	for _, sh := range sheets {
		exercises[sh.ID.String()] = sh.Exercises
	}
	if err := checkEntries(update, exercises); err != nil {
		return nil, err
	}

	st, err := s.students.Modify(ctx, studentID, func(st *model.Student) error {
		current, err := points.PointMapFromDTO(st.SheetPoints)
		if err != nil {
			return fmt.Errorf("stored sheet points: %w", err)
		}
		current.AdjustPoints(update)
		st.SheetPoints, err = current.ToDTO()
		return err
	})
	if err != nil {
		return nil, s.mapStudentErr(err)
	}

	s.changed(ctx, studentID)
	return st, nil
}

// AdjustExamResults merges newly graded exercises of one exam. Every key of
// partial must belong to that exam.
func (s *PointsService) AdjustExamResults(ctx context.Context, studentID, examID uuid.UUID, partial points.PointMapDTO) (*model.Student, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}

	update, err := points.PointMapFromDTO(partial)
	if err != nil {
		return nil, err
	}
	key := examID.String()
	for _, k := range update.Keys() {
		id, _ := points.ParsePointID(k)
		if id.ContainerID != key {
			return nil, fmt.Errorf("%w: %s", ErrForeignPointKey, k)
		}
	}
	if err := checkEntries(update, map[string][]points.Exercise{key: exam.Exercises}); err != nil {
		return nil, err
	}

	st, err := s.students.Modify(ctx, studentID, func(st *model.Student) error {
		if st.ExamResults == nil {
			st.ExamResults = make(map[string]points.PointMapDTO)
		}
		current, err := points.PointMapFromDTO(st.ExamResults[key])
		if err != nil {
			return fmt.Errorf("stored exam result: %w", err)
		}
		current.AdjustPoints(update)
		st.ExamResults[key], err = current.ToDTO()
		return err
	})
	if err != nil {
		return nil, s.mapStudentErr(err)
	}

	s.changed(ctx, studentID)
	return st, nil
}

// SetPresentationPoints sets how often the student presented on a sheet.
func (s *PointsService) SetPresentationPoints(ctx context.Context, studentID, sheetID uuid.UUID, count int) (*model.Student, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: negative presentation count %d", points.ErrInvalidPoints, count)
	}
	if _, err := s.sheets.GetByID(ctx, sheetID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSheetNotFound
		}
		return nil, err
	}

	st, err := s.students.Modify(ctx, studentID, func(st *model.Student) error {
		if st.Presentations == nil {
			st.Presentations = make(map[string]int)
		}
		st.Presentations[sheetID.String()] = count
		return nil
	})
	if err != nil {
		return nil, s.mapStudentErr(err)
	}

	s.changed(ctx, studentID)
	return st, nil
}

// checkEntries verifies every entry of update against the exercises of its
// container. An unknown container or exercise is a foreign key.
func checkEntries(update *points.PointMap, exercises map[string][]points.Exercise) error {
	for _, k := range update.Keys() {
		id, err := points.ParsePointID(k)
		if err != nil {
			return err
		}
		list, ok := exercises[id.ContainerID]
		if !ok {
			return fmt.Errorf("%w: %s: unknown sheet or exam", ErrForeignPointKey, k)
		}
		ex, ok := points.FindExercise(list, id.ExerciseID)
		if !ok {
			return fmt.Errorf("%w: %s: unknown exercise", ErrForeignPointKey, k)
		}
		entry, _ := update.GetEntry(id)
		if err := ex.CheckEntry(entry); err != nil {
			return err
		}
	}
	return nil
}

func (s *PointsService) mapStudentErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrStudentNotFound
	}
	return err
}

// changed drops the stale summary and queues a recomputation.
func (s *PointsService) changed(ctx context.Context, studentID uuid.UUID) {
	if s.cache == nil {
		return
	}
	id := studentID.String()
	gen, err := s.cache.Generation(ctx)
	if err == nil {
		err = s.cache.Forget(ctx, gen, id)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("student_id", id).Msg("Drop cached summary failed")
	}
	if err := s.cache.EnqueueRecompute(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("student_id", id).Msg("Enqueue recompute failed")
	}
}
