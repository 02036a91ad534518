package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stemsi/tms-backend/internal/criteria"
	"github.com/stemsi/tms-backend/internal/model"
	"golang.org/x/sync/errgroup"
)

// Domain Errors
var (
	ErrCriteriaNotFound = errors.New("scheincriteria not found")
	ErrStudentNotFound  = errors.New("student not found")
)

// ScheinCriteriaService manages criteria configurations and evaluates them
// for students.
type ScheinCriteriaService struct {
	registry  *criteria.Registry
	store     CriteriaStore
	students  StudentStore
	sheets    SheetStore
	exams     ExamStore
	tutorials TutorialStore
	cache     SummaryStore
	workers   int
	log       zerolog.Logger
}

// NewScheinCriteriaService creates a new ScheinCriteriaService. cache may be
// nil, in which case summaries are always computed.
func NewScheinCriteriaService(
	registry *criteria.Registry,
	store CriteriaStore,
	students StudentStore,
	sheets SheetStore,
	exams ExamStore,
	tutorials TutorialStore,
	cache SummaryStore,
	workers int,
	log zerolog.Logger,
) *ScheinCriteriaService {
	if workers < 1 {
		workers = 1
	}
	return &ScheinCriteriaService{
		registry:  registry,
		store:     store,
		students:  students,
		sheets:    sheets,
		exams:     exams,
		tutorials: tutorials,
		cache:     cache,
		workers:   workers,
		log:       log.With().Str("component", "scheincriteria_service").Logger(),
	}
}

// ─── Configuration ───────────────────────────────────────────────────────

// GetFormData returns the form of every criteria type with initial values.
func (s *ScheinCriteriaService) GetFormData() *model.FormCatalogue {
	forms := s.registry.Blueprints.AllFormData()
	initial := make(map[string]map[string]any, len(forms))
	for id, set := range forms {
		initial[id] = criteria.GenerateInitialValue(set, s.log)
	}
	return &model.FormCatalogue{Forms: forms, InitialValues: initial}
}

// Validate checks a configuration without persisting it.
func (s *ScheinCriteriaService) Validate(identifier string, data map[string]any) error {
	return s.registry.Blueprints.Validate(identifier, data)
}

// Create validates and stores a new criteria. Defaults of the criteria type
// fill fields missing from data.
func (s *ScheinCriteriaService) Create(ctx context.Context, req *model.ScheinCriteriaRequest) (*model.ScheinCriteriaResponse, error) {
	c, err := s.registry.Blueprints.Build(req.Identifier, req.Data)
	if err != nil {
		return nil, err
	}

	entity := &model.ScheinCriteria{
		Name:       req.Name,
		Identifier: c.Identifier(),
		Data:       criteria.Values(c),
	}
	if err := s.store.Create(ctx, entity); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("criteria_id", entity.ID.String()).
		Str("identifier", entity.Identifier).
		Msg("Scheincriteria created")

	s.invalidate(ctx)
	return toResponse(entity, c), nil
}

// Update replaces an existing criteria.
func (s *ScheinCriteriaService) Update(ctx context.Context, id uuid.UUID, req *model.ScheinCriteriaRequest) (*model.ScheinCriteriaResponse, error) {
	c, err := s.registry.Blueprints.Build(req.Identifier, req.Data)
	if err != nil {
		return nil, err
	}

	entity := &model.ScheinCriteria{
		ID:         id,
		Name:       req.Name,
		Identifier: c.Identifier(),
		Data:       criteria.Values(c),
	}
	if err := s.store.Update(ctx, entity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCriteriaNotFound
		}
		return nil, err
	}

	s.invalidate(ctx)
	return toResponse(entity, c), nil
}

// Delete removes a criteria.
func (s *ScheinCriteriaService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCriteriaNotFound
		}
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Get returns one criteria reconstructed from its stored data.
func (s *ScheinCriteriaService) Get(ctx context.Context, id uuid.UUID) (*model.ScheinCriteriaResponse, error) {
	entity, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCriteriaNotFound
		}
		return nil, err
	}
	c, err := s.registry.Blueprints.Instantiate(entity.Identifier, entity.Data)
	if err != nil {
		return nil, fmt.Errorf("criteria %s: %w", entity.ID, err)
	}
	return toResponse(entity, c), nil
}

// List returns every stored criteria.
func (s *ScheinCriteriaService) List(ctx context.Context) ([]model.ScheinCriteriaResponse, error) {
	entities, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.ScheinCriteriaResponse, 0, len(entities))
	for i := range entities {
		c, err := s.registry.Blueprints.Instantiate(entities[i].Identifier, entities[i].Data)
		if err != nil {
			return nil, fmt.Errorf("criteria %s: %w", entities[i].ID, err)
		}
		out = append(out, *toResponse(&entities[i], c))
	}
	return out, nil
}

func toResponse(entity *model.ScheinCriteria, c criteria.Criterion) *model.ScheinCriteriaResponse {
	return &model.ScheinCriteriaResponse{
		ID:         entity.ID,
		Name:       entity.Name,
		Identifier: entity.Identifier,
		Data:       criteria.Values(c),
	}
}

// ─── Evaluation ──────────────────────────────────────────────────────────

// configured reconstructs every stored criteria for evaluation.
func (s *ScheinCriteriaService) configured(ctx context.Context) ([]criteria.Configured, error) {
	entities, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load criteria: %w", err)
	}
	out := make([]criteria.Configured, 0, len(entities))
	for _, e := range entities {
		c, err := s.registry.Blueprints.Instantiate(e.Identifier, e.Data)
		if err != nil {
			return nil, fmt.Errorf("criteria %s: %w", e.ID, err)
		}
		out = append(out, criteria.Configured{ID: e.ID.String(), Name: e.Name, Criterion: c})
	}
	return out, nil
}

// evaluation bundles everything needed to compute summaries.
type evaluation struct {
	course     *course
	configured []criteria.Configured
}

func (s *ScheinCriteriaService) prepare(ctx context.Context) (*evaluation, error) {
	configured, err := s.configured(ctx)
	if err != nil {
		return nil, err
	}
	c, err := loadCourse(ctx, s.sheets, s.exams, s.tutorials)
	if err != nil {
		return nil, err
	}
	return &evaluation{course: c, configured: configured}, nil
}

func (e *evaluation) summarize(st *model.Student) (*criteria.Summary, error) {
	in, err := e.course.input(st)
	if err != nil {
		return nil, err
	}
	summary, err := criteria.Summarize(in, e.configured)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// SummaryForStudent evaluates every criteria for one student.
func (s *ScheinCriteriaService) SummaryForStudent(ctx context.Context, studentID uuid.UUID) (*criteria.Summary, error) {
	gen, cached := s.cached(ctx, studentID.String())
	if cached != nil {
		return cached, nil
	}

	st, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	eval, err := s.prepare(ctx)
	if err != nil {
		return nil, err
	}
	summary, err := eval.summarize(st)
	if err != nil {
		return nil, err
	}

	s.remember(ctx, gen, st.ID.String(), summary)
	return summary, nil
}

// SummaryForAllStudents evaluates every criteria for every student. A student
// whose data cannot be evaluated gets an entry with an error and does not
// fail the report.
func (s *ScheinCriteriaService) SummaryForAllStudents(ctx context.Context) ([]model.StudentSummary, error) {
	// The generation is read before the criteria so a concurrent change
	// leaves these summaries under the old generation.
	gen := s.generation(ctx)
	students, err := s.students.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	eval, err := s.prepare(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.StudentSummary, len(students))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i := range students {
		st := &students[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entry := model.StudentSummary{StudentID: st.ID}
			summary, err := eval.summarize(st)
			if err != nil {
				s.log.Warn().Err(err).Str("student_id", st.ID.String()).Msg("Summary failed")
				entry.Error = err.Error()
			} else {
				entry.Summary = summary
				entry.Passed = summary.Passed
				s.remember(gctx, gen, st.ID.String(), summary)
			}
			out[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// CriteriaInfo evaluates one criteria for every student.
func (s *ScheinCriteriaService) CriteriaInfo(ctx context.Context, id uuid.UUID) (*model.CriteriaInfo, error) {
	entity, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCriteriaNotFound
		}
		return nil, err
	}
	c, err := s.registry.Blueprints.Instantiate(entity.Identifier, entity.Data)
	if err != nil {
		return nil, fmt.Errorf("criteria %s: %w", entity.ID, err)
	}
	cfg := criteria.Configured{ID: entity.ID.String(), Name: entity.Name, Criterion: c}

	students, err := s.students.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	crs, err := loadCourse(ctx, s.sheets, s.exams, s.tutorials)
	if err != nil {
		return nil, err
	}

	info := &model.CriteriaInfo{
		Criteria: *toResponse(entity, c),
		Results:  make(map[uuid.UUID]criteria.Result, len(students)),
		Errors:   make(map[uuid.UUID]string),
	}
	for i := range students {
		st := &students[i]
		in, err := crs.input(st)
		if err != nil {
			info.Errors[st.ID] = err.Error()
			continue
		}
		result, err := criteria.Evaluate(cfg, in)
		if err != nil {
			info.Errors[st.ID] = err.Error()
			continue
		}
		info.Results[st.ID] = result
	}
	return info, nil
}

// Recompute evaluates the given students and refreshes their cached
// summaries. Unknown students are skipped.
func (s *ScheinCriteriaService) Recompute(ctx context.Context, studentIDs []uuid.UUID) error {
	if len(studentIDs) == 0 {
		return nil
	}
	gen := s.generation(ctx)
	eval, err := s.prepare(ctx)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, id := range studentIDs {
		g.Go(func() error {
			st, err := s.students.GetByID(gctx, id)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return nil
				}
				return err
			}
			summary, err := eval.summarize(st)
			if err != nil {
				s.log.Warn().Err(err).Str("student_id", id.String()).Msg("Recompute failed")
				return nil
			}
			s.remember(gctx, gen, id.String(), summary)
			return nil
		})
	}
	return g.Wait()
}

// ─── Cache helpers ───────────────────────────────────────────────────────

// Cache failures are logged; evaluation never depends on Redis.

func (s *ScheinCriteriaService) generation(ctx context.Context) int64 {
	if s.cache == nil {
		return 0
	}
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Read summary generation failed")
	}
	return gen
}

func (s *ScheinCriteriaService) cached(ctx context.Context, studentID string) (int64, *criteria.Summary) {
	if s.cache == nil {
		return 0, nil
	}
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Read summary generation failed")
		return 0, nil
	}
	summary, err := s.cache.Get(ctx, gen, studentID)
	if err != nil {
		s.log.Warn().Err(err).Str("student_id", studentID).Msg("Read cached summary failed")
		return gen, nil
	}
	return gen, summary
}

func (s *ScheinCriteriaService) remember(ctx context.Context, gen int64, studentID string, summary *criteria.Summary) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, gen, studentID, summary); err != nil {
		s.log.Warn().Err(err).Str("student_id", studentID).Msg("Cache summary failed")
	}
}

func (s *ScheinCriteriaService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Invalidate summaries failed")
	}
}
