package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/tms-backend/internal/criteria"
	"github.com/stemsi/tms-backend/internal/model"
	"github.com/stemsi/tms-backend/internal/points"
)

type pointsFixture struct {
	svc      *PointsService
	students *fakeStudentStore
	cache    *fakeSummaryStore
	sheet    model.Sheet
	exam     model.ScheinExam
}

func newPointsFixture(student *model.Student) *pointsFixture {
	sheet := model.Sheet{ID: uuid.New(), SheetNo: 1, Exercises: []points.Exercise{
		{ID: "1", Name: "1", MaxPoints: 10},
		{ID: "2", Name: "2", Subexercises: []points.Subexercise{
			{ID: "a", Name: "a", MaxPoints: 4},
			{ID: "b", Name: "b", MaxPoints: 4},
		}},
	}}
	exam := model.ScheinExam{ID: uuid.New(), ExamNo: 1, Exercises: []points.Exercise{
		{ID: "1", Name: "1", MaxPoints: 10},
	}}
	f := &pointsFixture{
		students: newFakeStudentStore(student),
		cache:    newFakeSummaryStore(),
		sheet:    sheet,
		exam:     exam,
	}
	f.svc = NewPointsService(f.students,
		&fakeSheetStore{sheets: []model.Sheet{sheet}},
		&fakeExamStore{exams: []model.ScheinExam{exam}},
		f.cache, zerolog.Nop())
	return f
}

func (f *pointsFixture) sheetKey(exercise string) string {
	return points.NewPointID(f.sheet.ID.String(), exercise).String()
}

func (f *pointsFixture) examKey(exercise string) string {
	return points.NewPointID(f.exam.ID.String(), exercise).String()
}

func entry(v string) points.EntryDTO {
	return points.EntryDTO{Points: json.RawMessage(v)}
}

func TestAdjustSheetPointsMerges(t *testing.T) {
	student := &model.Student{ID: uuid.New()}
	f := newPointsFixture(student)
	f.students.students[student.ID].SheetPoints = points.PointMapDTO{
		f.sheetKey("1"): entry("4"),
		f.sheetKey("2"): entry(`{"a":1,"b":2}`),
	}
	ctx := context.Background()
	_ = f.cache.Set(ctx, 0, student.ID.String(), &criteria.Summary{Passed: true})

	updated, err := f.svc.AdjustSheetPoints(ctx, student.ID, points.PointMapDTO{
		f.sheetKey("2"): entry(`{"a":3.5}`),
	})
	if err != nil {
		t.Fatalf("AdjustSheetPoints() error = %v", err)
	}

	pm, err := points.PointMapFromDTO(updated.SheetPoints)
	if err != nil {
		t.Fatalf("PointMapFromDTO() error = %v", err)
	}
	tests := []struct {
		key  points.PointID
		want float64
	}{
		{points.NewPointID(f.sheet.ID.String(), "1"), 4},
		{points.NewPointID(f.sheet.ID.String(), "2"), 3.5},
	}
	for _, tt := range tests {
		if got, ok := pm.GetPoints(tt.key); !ok || got != tt.want {
			t.Errorf("GetPoints(%s) = (%v, %v), want %v", tt.key, got, ok, tt.want)
		}
	}

	if len(f.cache.queue) != 1 || f.cache.queue[0] != student.ID.String() {
		t.Errorf("queue = %v, want student enqueued", f.cache.queue)
	}
	if _, ok := f.cache.entries[f.cache.key(0, student.ID.String())]; ok {
		t.Error("stale summary still cached")
	}
}

func TestAdjustSheetPointsRejectsInvalidEntries(t *testing.T) {
	student := &model.Student{ID: uuid.New()}
	f := newPointsFixture(student)

	tests := []struct {
		name    string
		partial points.PointMapDTO
		want    error
	}{
		{"malformed key", points.PointMapDTO{"nokey": entry("1")}, points.ErrInvalidKey},
		{"unknown sheet", points.PointMapDTO{"ghost-sheet::1": entry("3")}, ErrForeignPointKey},
		{"unknown exercise", points.PointMapDTO{f.sheetKey("9"): entry("1")}, ErrForeignPointKey},
		{"negative", points.PointMapDTO{f.sheetKey("1"): entry("-3")}, points.ErrInvalidPoints},
		{"above max", points.PointMapDTO{f.sheetKey("1"): entry("11")}, points.ErrInvalidPoints},
		{"unknown subexercise", points.PointMapDTO{f.sheetKey("2"): entry(`{"c":1}`)}, points.ErrInvalidPoints},
		{"subexercise above max", points.PointMapDTO{f.sheetKey("2"): entry(`{"a":5}`)}, points.ErrInvalidPoints},
		{
			"one bad entry rejects the whole update",
			points.PointMapDTO{f.sheetKey("1"): entry("5"), f.sheetKey("2"): entry(`{"b":-1}`)},
			points.ErrInvalidPoints,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AdjustSheetPoints(context.Background(), student.ID, tt.partial)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	if len(f.students.students[student.ID].SheetPoints) != 0 {
		t.Errorf("sheet points = %v, want nothing stored", f.students.students[student.ID].SheetPoints)
	}
	if len(f.cache.queue) != 0 {
		t.Errorf("queue = %v, want nothing enqueued", f.cache.queue)
	}
}

func TestRejectedSheetPointsKeepSummaryEvaluable(t *testing.T) {
	student := &model.Student{ID: uuid.New()}
	f := newPointsFixture(student)
	ctx := context.Background()

	if _, err := f.svc.AdjustSheetPoints(ctx, student.ID, points.PointMapDTO{"ghost-sheet::1": entry("-3")}); err == nil {
		t.Fatal("AdjustSheetPoints() accepted a key of an unknown sheet")
	}

	summaries := NewScheinCriteriaService(
		newRegistry(t), &fakeCriteriaStore{}, f.students,
		&fakeSheetStore{sheets: []model.Sheet{f.sheet}}, &fakeExamStore{}, &fakeTutorialStore{},
		nil, 1, zerolog.Nop(),
	)
	if _, err := summaries.Create(ctx, &model.ScheinCriteriaRequest{
		Name: "Sheets", Identifier: criteria.SheetTotalIdentifier, Data: map[string]any{},
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := summaries.SummaryForStudent(ctx, student.ID); err != nil {
		t.Errorf("SummaryForStudent() error = %v, want evaluable student", err)
	}
}

func TestAdjustExamResults(t *testing.T) {
	student := &model.Student{ID: uuid.New()}
	f := newPointsFixture(student)
	ctx := context.Background()
	key := f.examKey("1")

	if _, err := f.svc.AdjustExamResults(ctx, student.ID, f.exam.ID, points.PointMapDTO{key: entry("6")}); err != nil {
		t.Fatalf("AdjustExamResults() error = %v", err)
	}
	stored := f.students.students[student.ID].ExamResults[f.exam.ID.String()]
	if string(stored[key].Points) != "6" {
		t.Errorf("stored = %s, want 6", stored[key].Points)
	}

	tests := []struct {
		name      string
		studentID uuid.UUID
		examID    uuid.UUID
		partial   points.PointMapDTO
		want      error
	}{
		{"foreign key", student.ID, f.exam.ID, points.PointMapDTO{"other::1": entry("1")}, ErrForeignPointKey},
		{"unknown exercise", student.ID, f.exam.ID, points.PointMapDTO{f.examKey("nope"): entry("500")}, ErrForeignPointKey},
		{"negative", student.ID, f.exam.ID, points.PointMapDTO{key: entry("-7")}, points.ErrInvalidPoints},
		{"above max", student.ID, f.exam.ID, points.PointMapDTO{key: entry("10.5")}, points.ErrInvalidPoints},
		{"unknown exam", student.ID, uuid.New(), points.PointMapDTO{key: entry("1")}, ErrExamNotFound},
		{"unknown student", uuid.New(), f.exam.ID, points.PointMapDTO{key: entry("1")}, ErrStudentNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AdjustExamResults(ctx, tt.studentID, tt.examID, tt.partial)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	stored = f.students.students[student.ID].ExamResults[f.exam.ID.String()]
	if len(stored) != 1 || string(stored[key].Points) != "6" {
		t.Errorf("stored = %v, want only the accepted entry", stored)
	}
}

func TestSetPresentationPoints(t *testing.T) {
	student := &model.Student{ID: uuid.New()}
	f := newPointsFixture(student)
	ctx := context.Background()

	updated, err := f.svc.SetPresentationPoints(ctx, student.ID, f.sheet.ID, 2)
	if err != nil {
		t.Fatalf("SetPresentationPoints() error = %v", err)
	}
	if updated.Presentations[f.sheet.ID.String()] != 2 {
		t.Errorf("presentations = %v, want 2 for sheet", updated.Presentations)
	}

	if _, err := f.svc.SetPresentationPoints(ctx, student.ID, uuid.New(), 3); !errors.Is(err, ErrSheetNotFound) {
		t.Errorf("unknown sheet error = %v, want ErrSheetNotFound", err)
	}
	if _, err := f.svc.SetPresentationPoints(ctx, student.ID, f.sheet.ID, -1); !errors.Is(err, points.ErrInvalidPoints) {
		t.Errorf("negative count error = %v, want ErrInvalidPoints", err)
	}
	if got := f.students.students[student.ID].Presentations; len(got) != 1 {
		t.Errorf("presentations = %v, want only the known sheet", got)
	}
}
