package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stemsi/tms-backend/internal/criteria"
	"github.com/stemsi/tms-backend/internal/model"
)

type fakeCriteriaStore struct {
	mu    sync.Mutex
	items []model.ScheinCriteria
}

func (f *fakeCriteriaStore) GetByID(_ context.Context, id uuid.UUID) (*model.ScheinCriteria, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			c := f.items[i]
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeCriteriaStore) GetAll(context.Context) ([]model.ScheinCriteria, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.ScheinCriteria(nil), f.items...), nil
}

func (f *fakeCriteriaStore) Create(_ context.Context, c *model.ScheinCriteria) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	f.items = append(f.items, *c)
	return nil
}

func (f *fakeCriteriaStore) Update(_ context.Context, c *model.ScheinCriteria) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == c.ID {
			f.items[i] = *c
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeCriteriaStore) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeStudentStore struct {
	mu       sync.Mutex
	students map[uuid.UUID]*model.Student
	order    []uuid.UUID
	reads    int
}

func newFakeStudentStore(students ...*model.Student) *fakeStudentStore {
	f := &fakeStudentStore{students: make(map[uuid.UUID]*model.Student)}
	for _, s := range students {
		f.students[s.ID] = s
		f.order = append(f.order, s.ID)
	}
	return f
}

// clone deep copies through JSON so callers never share maps with the store.
func clone(s *model.Student) *model.Student {
	raw, err := json.Marshal(s)
	if err != nil {
		panic(fmt.Sprintf("marshal student: %v", err))
	}
	var out model.Student
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(fmt.Sprintf("unmarshal student: %v", err))
	}
	return &out
}

func (f *fakeStudentStore) GetByID(_ context.Context, id uuid.UUID) (*model.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	s, ok := f.students[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return clone(s), nil
}

func (f *fakeStudentStore) GetAll(context.Context) ([]model.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Student, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, *clone(f.students[id]))
	}
	return out, nil
}

func (f *fakeStudentStore) Modify(_ context.Context, id uuid.UUID, fn func(*model.Student) error) (*model.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.students[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	working := clone(s)
	if err := fn(working); err != nil {
		return nil, err
	}
	f.students[id] = working
	return clone(working), nil
}

type fakeSheetStore struct{ sheets []model.Sheet }

func (f *fakeSheetStore) GetByID(_ context.Context, id uuid.UUID) (*model.Sheet, error) {
	for i := range f.sheets {
		if f.sheets[i].ID == id {
			return &f.sheets[i], nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeSheetStore) GetAll(context.Context) ([]model.Sheet, error) { return f.sheets, nil }

type fakeExamStore struct{ exams []model.ScheinExam }

func (f *fakeExamStore) GetByID(_ context.Context, id uuid.UUID) (*model.ScheinExam, error) {
	for i := range f.exams {
		if f.exams[i].ID == id {
			return &f.exams[i], nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeExamStore) GetAll(context.Context) ([]model.ScheinExam, error) { return f.exams, nil }

type fakeTutorialStore struct{ tutorials []model.Tutorial }

func (f *fakeTutorialStore) GetAll(context.Context) ([]model.Tutorial, error) {
	return f.tutorials, nil
}

type fakeSummaryStore struct {
	mu         sync.Mutex
	generation int64
	entries    map[string]*criteria.Summary
	queue      []string
}

func newFakeSummaryStore() *fakeSummaryStore {
	return &fakeSummaryStore{entries: make(map[string]*criteria.Summary)}
}

func (f *fakeSummaryStore) key(gen int64, id string) string { return fmt.Sprintf("%d:%s", gen, id) }

func (f *fakeSummaryStore) Generation(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generation, nil
}

func (f *fakeSummaryStore) Bump(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generation++
	return nil
}

func (f *fakeSummaryStore) Get(_ context.Context, gen int64, id string) (*criteria.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[f.key(gen, id)], nil
}

func (f *fakeSummaryStore) Set(_ context.Context, gen int64, id string, s *criteria.Summary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[f.key(gen, id)] = s
	return nil
}

func (f *fakeSummaryStore) Forget(_ context.Context, gen int64, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, f.key(gen, id))
	return nil
}

func (f *fakeSummaryStore) EnqueueRecompute(_ context.Context, ids ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, ids...)
	return nil
}
