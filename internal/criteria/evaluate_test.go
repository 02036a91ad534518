package criteria

import (
	"errors"
	"testing"

	"github.com/stemsi/tms-backend/internal/points"
)

func examFixture() Exam {
	return Exam{
		ID: "exam-1",
		No: 1,
		Exercises: []points.Exercise{
			{ID: "A", Name: "A", MaxPoints: 10},
			{ID: "B", Name: "B", MaxPoints: 10},
			{ID: "C", Name: "C", Subexercises: []points.Subexercise{
				{ID: "C1", Name: "C1", MaxPoints: 10},
				{ID: "C2", Name: "C2", MaxPoints: 5, Bonus: true},
			}},
		},
	}
}

func examResults(examID string, values map[string]float64) *points.PointMap {
	m := points.NewPointMap()
	for ex, v := range values {
		m.SetPointEntry(points.NewPointID(examID, ex), points.PointMapEntry{Points: v})
	}
	return m
}

func TestExamCriteriaScenario(t *testing.T) {
	exam := examFixture()
	in := &Input{
		Student: StudentData{
			ID:          "s1",
			ExamResults: map[string]*points.PointMap{exam.ID: examResults(exam.ID, map[string]float64{"A": 9, "B": 4, "C": 5})},
		},
		Exams: []Exam{exam},
	}

	c := &ExamCriteria{PercentageOfAllPointsNeeded: 0.5}
	got, err := c.Evaluate(in)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got.Achieved != 18 || got.Total != 30 || !got.Passed {
		t.Errorf("Evaluate() = achieved %v total %v passed %v, want 18/30 passed", got.Achieved, got.Total, got.Passed)
	}
	info := got.Infos[exam.ID]
	if info.State != StatePassed || info.No != 1 || info.Achieved != 18 || info.Total != 30 {
		t.Errorf("info = %+v", info)
	}
}

func TestExamCriteriaBoundary(t *testing.T) {
	exam := examFixture()
	in := &Input{
		Student: StudentData{
			ExamResults: map[string]*points.PointMap{exam.ID: examResults(exam.ID, map[string]float64{"A": 10, "B": 5})},
		},
		Exams: []Exam{exam},
	}

	if ExamPassBoundary != BoundaryStrict {
		t.Fatalf("ExamPassBoundary = %v, want strict", ExamPassBoundary)
	}

	tests := []struct {
		name       string
		individual bool
		wantState  InfoState
		wantPassed bool
	}{
		// 15/30 is exactly the required fraction: the single exam is not
		// passed, the pooled fraction is.
		{name: "pooled", individual: false, wantState: StateNotPassed, wantPassed: true},
		{name: "individually", individual: true, wantState: StateNotPassed, wantPassed: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &ExamCriteria{PassAllExamsIndividually: tt.individual, PercentageOfAllPointsNeeded: 0.5}
			got, err := c.Evaluate(in)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got.Infos[exam.ID].State != tt.wantState {
				t.Errorf("state = %q, want %q", got.Infos[exam.ID].State, tt.wantState)
			}
			if got.Passed != tt.wantPassed {
				t.Errorf("passed = %v, want %v", got.Passed, tt.wantPassed)
			}
		})
	}
}

func TestExamCriteriaMissingExam(t *testing.T) {
	in := &Input{
		Student: StudentData{
			ExamResults: map[string]*points.PointMap{"gone": examResults("gone", map[string]float64{"A": 1})},
		},
		Exams: []Exam{examFixture()},
	}
	_, err := (&ExamCriteria{PercentageOfAllPointsNeeded: 0.5}).Evaluate(in)
	if !errors.Is(err, ErrDataIntegrity) {
		t.Fatalf("Evaluate() error = %v, want ErrDataIntegrity", err)
	}
	var ie *IntegrityError
	if !errors.As(err, &ie) || ie.Entity != "exam" || ie.ID != "gone" {
		t.Errorf("IntegrityError = %+v", ie)
	}
}

func TestExamCriteriaWithoutResults(t *testing.T) {
	in := &Input{Exams: []Exam{examFixture()}}
	got, err := (&ExamCriteria{PercentageOfAllPointsNeeded: 0.5}).Evaluate(in)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got.Passed || got.Achieved != 0 || got.Total != 30 {
		t.Errorf("Evaluate() = %+v", got)
	}
}

func TestZeroTotalPolicy(t *testing.T) {
	empty := &Input{}

	tests := []struct {
		name       string
		criterion  Criterion
		wantPassed bool
	}{
		{name: "exam without exams", criterion: &ExamCriteria{PercentageOfAllPointsNeeded: 0.5}, wantPassed: true},
		{name: "exam individually without exams", criterion: &ExamCriteria{PassAllExamsIndividually: true, PercentageOfAllPointsNeeded: 0.5}, wantPassed: true},
		{name: "percentage of no sheets", criterion: &SheetTotalCriteria{possiblePercentage{Percentage: true, ValueNeeded: 0.5}}, wantPassed: true},
		{name: "absolute points of no sheets", criterion: &SheetTotalCriteria{possiblePercentage{Percentage: false, ValueNeeded: 5}}, wantPassed: false},
		{name: "absolute zero needed", criterion: &SheetTotalCriteria{possiblePercentage{Percentage: false, ValueNeeded: 0}}, wantPassed: true},
		{name: "attendance without dates", criterion: &AttendanceCriteria{possiblePercentage{Percentage: true, ValueNeeded: 0.6}}, wantPassed: true},
		{name: "absolute attendance without dates", criterion: &AttendanceCriteria{possiblePercentage{Percentage: false, ValueNeeded: 3}}, wantPassed: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.criterion.Evaluate(empty)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got.Total != 0 {
				t.Errorf("total = %v, want 0", got.Total)
			}
			if got.Passed != tt.wantPassed {
				t.Errorf("passed = %v, want %v", got.Passed, tt.wantPassed)
			}
		})
	}
}

func sheetsFixture() []Sheet {
	return []Sheet{
		{ID: "sh1", No: 1, Exercises: []points.Exercise{{ID: "1", MaxPoints: 10}, {ID: "2", MaxPoints: 4, Bonus: true}}},
		{ID: "sh2", No: 2, Exercises: []points.Exercise{{ID: "1", MaxPoints: 10}}},
		{ID: "sh3", No: 3, Bonus: true, Exercises: []points.Exercise{{ID: "1", MaxPoints: 6}}},
	}
}

func sheetPoints(values map[string]float64) *points.PointMap {
	m := points.NewPointMap()
	for key, v := range values {
		id, err := points.ParsePointID(key)
		if err != nil {
			panic(err)
		}
		m.SetPointEntry(id, points.PointMapEntry{Points: v})
	}
	return m
}

func TestSheetTotalCriteria(t *testing.T) {
	in := &Input{
		Student: StudentData{SheetPoints: sheetPoints(map[string]float64{
			"sh1::1": 6, "sh1::2": 4, "sh2::1": 3, "sh3::1": 2,
		})},
		Sheets: sheetsFixture(),
	}

	tests := []struct {
		name       string
		c          *SheetTotalCriteria
		wantPassed bool
	}{
		{name: "percentage reached", c: &SheetTotalCriteria{possiblePercentage{Percentage: true, ValueNeeded: 0.75}}, wantPassed: true},
		{name: "percentage missed", c: &SheetTotalCriteria{possiblePercentage{Percentage: true, ValueNeeded: 0.8}}, wantPassed: false},
		{name: "absolute reached", c: &SheetTotalCriteria{possiblePercentage{ValueNeeded: 15}}, wantPassed: true},
		{name: "absolute missed", c: &SheetTotalCriteria{possiblePercentage{ValueNeeded: 16}}, wantPassed: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.c.Evaluate(in)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			// 6+4+3+2 achieved, 10+10 must.
			if got.Achieved != 15 || got.Total != 20 {
				t.Errorf("achieved/total = %v/%v, want 15/20", got.Achieved, got.Total)
			}
			if got.Passed != tt.wantPassed {
				t.Errorf("passed = %v, want %v", got.Passed, tt.wantPassed)
			}
			if info := got.Infos["sh3"]; info.Total != 0 || info.Achieved != 2 {
				t.Errorf("bonus sheet info = %+v", info)
			}
		})
	}
}

func TestSheetCriteriaMissingSheet(t *testing.T) {
	in := &Input{
		Student: StudentData{SheetPoints: sheetPoints(map[string]float64{"deleted::1": 3})},
		Sheets:  sheetsFixture(),
	}
	for _, c := range []Criterion{NewSheetTotalCriteria(), NewSheetIndividualCriteria()} {
		if _, err := c.Evaluate(in); !errors.Is(err, ErrDataIntegrity) {
			t.Errorf("%s: Evaluate() error = %v, want ErrDataIntegrity", c.Identifier(), err)
		}
	}
}

func TestSheetIndividualCriteria(t *testing.T) {
	in := &Input{
		Student: StudentData{SheetPoints: sheetPoints(map[string]float64{
			"sh1::1": 5, "sh2::1": 4, "sh3::1": 3,
		})},
		Sheets: sheetsFixture(),
	}

	c := &SheetIndividualCriteria{
		possiblePercentage:  possiblePercentage{Percentage: false, ValueNeeded: 2},
		PercentagePerSheet:  true,
		ValuePerSheetNeeded: 0.5,
	}
	got, err := c.Evaluate(in)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	// sh1 5/10 passed, sh2 4/10 not passed, bonus sh3 3/6 passed.
	if got.Achieved != 2 || got.Total != 2 || !got.Passed {
		t.Errorf("Evaluate() = achieved %v total %v passed %v", got.Achieved, got.Total, got.Passed)
	}
	if got.Unit != UnitSheets {
		t.Errorf("unit = %s", got.Unit)
	}
	wantStates := map[string]InfoState{"sh1": StatePassed, "sh2": StateNotPassed, "sh3": StatePassed}
	for id, want := range wantStates {
		if got.Infos[id].State != want {
			t.Errorf("state[%s] = %q, want %q", id, got.Infos[id].State, want)
		}
	}

	c.PercentagePerSheet = false
	c.ValuePerSheetNeeded = 4
	got, _ = c.Evaluate(in)
	if got.Achieved != 2 {
		t.Errorf("absolute per sheet achieved = %v, want 2", got.Achieved)
	}
}

func TestAttendanceCriteria(t *testing.T) {
	in := &Input{
		Student: StudentData{Attendances: map[string]AttendanceState{
			"2024-04-01": AttendancePresent,
			"2024-04-08": AttendanceExcused,
			"2024-04-15": AttendanceUnexcused,
			"2023-01-01": AttendancePresent,
		}},
		TutorialDates: []string{"2024-04-01", "2024-04-08", "2024-04-15", "2024-04-22"},
	}

	got, err := (&AttendanceCriteria{possiblePercentage{Percentage: true, ValueNeeded: 0.5}}).Evaluate(in)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got.Achieved != 2 || got.Total != 4 || !got.Passed {
		t.Errorf("Evaluate() = %+v", got)
	}
	if info := got.Infos["2024-04-08"]; info.State != StatePassed || info.Detail != string(AttendanceExcused) || info.No != 2 {
		t.Errorf("excused info = %+v", info)
	}
	if info := got.Infos["2024-04-22"]; info.State != StateNotPassed || info.Detail != "" {
		t.Errorf("missing info = %+v", info)
	}
	if _, ok := got.Infos["2023-01-01"]; ok {
		t.Error("attendance outside the tutorial is reported")
	}

	got, _ = (&AttendanceCriteria{possiblePercentage{ValueNeeded: 3}}).Evaluate(in)
	if got.Passed {
		t.Error("absolute attendance of 3 passed with 2 dates attended")
	}
}

func TestPresentationCriteria(t *testing.T) {
	in := &Input{
		Student: StudentData{Presentations: map[string]int{"sh1": 1, "sh2": 1}},
		Sheets:  sheetsFixture(),
	}

	got, err := (&PresentationCriteria{PresentationsNeeded: 2}).Evaluate(in)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got.Achieved != 2 || got.Total != 2 || !got.Passed || len(got.Infos) != 2 {
		t.Errorf("Evaluate() = %+v", got)
	}

	got, _ = (&PresentationCriteria{PresentationsNeeded: 3}).Evaluate(in)
	if got.Passed {
		t.Error("3 presentations needed but passed with 2")
	}

	in.Student.Presentations["gone"] = 1
	if _, err := (&PresentationCriteria{}).Evaluate(in); !errors.Is(err, ErrDataIntegrity) {
		t.Errorf("Evaluate() error = %v, want ErrDataIntegrity", err)
	}
}

func TestSummarizeIsConjunctive(t *testing.T) {
	in := &Input{
		Student: StudentData{
			SheetPoints:   sheetPoints(map[string]float64{"sh1::1": 10, "sh2::1": 10}),
			Presentations: map[string]int{"sh1": 3},
			Attendances:   map[string]AttendanceState{"d1": AttendancePresent},
		},
		Sheets:        sheetsFixture(),
		Exams:         []Exam{examFixture()},
		TutorialDates: []string{"d1"},
	}

	configured := []Configured{
		{ID: "c1", Name: "Sheets", Criterion: NewSheetTotalCriteria()},
		{ID: "c2", Name: "Presentations", Criterion: NewPresentationCriteria()},
		{ID: "c3", Name: "Attendance", Criterion: NewAttendanceCriteria()},
		{ID: "c4", Name: "Exam", Criterion: NewExamCriteria()},
	}

	summary, err := Summarize(in, configured)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	passed := 0
	for _, r := range summary.Results {
		if r.Passed {
			passed++
		}
	}
	if passed != 3 {
		t.Fatalf("%d criteria passed, want 3: %+v", passed, summary.Results)
	}
	if summary.Passed {
		t.Error("summary passed with a failing criterion")
	}
	if summary.Results["c4"].Name != "Exam" || summary.Results["c4"].Passed {
		t.Errorf("exam result = %+v", summary.Results["c4"])
	}

	summary, err = Summarize(in, configured[:3])
	if err != nil || !summary.Passed {
		t.Errorf("Summarize() = %+v, %v, want passed", summary, err)
	}
}

func TestSummarizePropagatesIntegrityErrors(t *testing.T) {
	in := &Input{Student: StudentData{ExamResults: map[string]*points.PointMap{"gone": points.NewPointMap()}}}
	_, err := Summarize(in, []Configured{{ID: "c1", Name: "Exam", Criterion: NewExamCriteria()}})
	if !errors.Is(err, ErrDataIntegrity) {
		t.Errorf("Summarize() error = %v, want ErrDataIntegrity", err)
	}
}
