package criteria

import "github.com/stemsi/tms-backend/internal/points"

// Unit is the unit of achieved and total values of a status.
type Unit string

const (
	UnitPoints        Unit = "points"
	UnitSheets        Unit = "sheets"
	UnitExams         Unit = "exams"
	UnitPresentations Unit = "presentations"
	UnitDates         Unit = "dates"
)

// InfoState is the state of one item of a status breakdown.
type InfoState string

const (
	StatePassed    InfoState = "passed"
	StateNotPassed InfoState = "notpassed"
	StateNone      InfoState = ""
)

func stateOf(passed bool) InfoState {
	if passed {
		return StatePassed
	}
	return StateNotPassed
}

// StatusInfo is the breakdown of one item (sheet, exam, date) of a status.
type StatusInfo struct {
	No       int       `json:"no"`
	Achieved float64   `json:"achieved"`
	Total    float64   `json:"total"`
	Unit     Unit      `json:"unit"`
	State    InfoState `json:"state,omitempty"`
	// Detail carries variant specific state, e.g. the attendance state.
	Detail string `json:"detail,omitempty"`
}

// StatusCheckResponse is the result of evaluating one criterion for one
// student.
type StatusCheckResponse struct {
	Identifier string                `json:"identifier"`
	Achieved   float64               `json:"achieved"`
	Total      float64               `json:"total"`
	Unit       Unit                  `json:"unit"`
	Passed     bool                  `json:"passed"`
	Infos      map[string]StatusInfo `json:"infos"`
}

// Boundary decides whether a ratio reaching the threshold exactly passes.
type Boundary int

const (
	BoundaryInclusive Boundary = iota
	BoundaryStrict
)

// Reached compares ratio against threshold.
func (b Boundary) Reached(ratio, threshold float64) bool {
	if b == BoundaryStrict {
		return ratio > threshold
	}
	return ratio >= threshold
}

// ExamPassBoundary is used for the pass state of a single exam. An exam with
// exactly the required fraction is not passed.
const ExamPassBoundary = BoundaryStrict

// meetsFraction reports whether achieved/total reaches threshold. With
// nothing to achieve (total == 0) the threshold counts as met.
func meetsFraction(achieved, total, threshold float64, b Boundary) bool {
	if total <= 0 {
		return true
	}
	return b.Reached(achieved/total, threshold)
}

// ─── Evaluation input ────────────────────────────────────────────────────

// AttendanceState is the recorded state of a student at one tutorial date.
type AttendanceState string

const (
	AttendancePresent   AttendanceState = "PRESENT"
	AttendanceExcused   AttendanceState = "EXCUSED"
	AttendanceUnexcused AttendanceState = "UNEXCUSED"
)

// Counts reports whether the state counts as attended.
func (s AttendanceState) Counts() bool {
	return s == AttendancePresent || s == AttendanceExcused
}

// Sheet is an exercise sheet of the course.
type Sheet struct {
	ID        string
	No        int
	Bonus     bool
	Exercises []points.Exercise
}

// Exam is a schein exam of the course.
type Exam struct {
	ID        string
	No        int
	Exercises []points.Exercise
}

// StudentData is everything recorded for one student.
type StudentData struct {
	ID          string
	SheetPoints *points.PointMap
	// ExamResults holds one point map per exam id.
	ExamResults map[string]*points.PointMap
	// Presentations counts presentations per sheet id.
	Presentations map[string]int
	// Attendances maps a tutorial date (YYYY-MM-DD) to the recorded state.
	Attendances map[string]AttendanceState
}

// Input is the data one evaluation runs against.
type Input struct {
	Student StudentData
	Sheets  []Sheet
	Exams   []Exam
	// TutorialDates lists the dates (YYYY-MM-DD) of the student's tutorial.
	TutorialDates []string
}

func (in *Input) sheetPoints() *points.PointMap {
	if in.Student.SheetPoints == nil {
		return points.NewPointMap()
	}
	return in.Student.SheetPoints
}

// checkSheetReferences fails if the student has points for a sheet which is
// not part of the catalogue.
func (in *Input) checkSheetReferences(criteria string) error {
	known := make(map[string]bool, len(in.Sheets))
	for _, s := range in.Sheets {
		known[s.ID] = true
	}
	for _, key := range in.sheetPoints().Keys() {
		id, err := points.ParsePointID(key)
		if err != nil {
			return err
		}
		if !known[id.ContainerID] {
			return &IntegrityError{Criteria: criteria, Entity: "sheet", ID: id.ContainerID}
		}
	}
	return nil
}

// sheetResult is the achieved and reference points of one sheet.
type sheetResult struct {
	sheet    Sheet
	achieved float64
	info     points.PointInfo
}

func (in *Input) sheetResults() []sheetResult {
	pm := in.sheetPoints()
	out := make([]sheetResult, 0, len(in.Sheets))
	for _, s := range in.Sheets {
		info := points.TotalPointInfo(s.Exercises)
		if s.Bonus {
			info = points.PointInfo{Bonus: info.Total()}
		}
		out = append(out, sheetResult{
			sheet:    s,
			achieved: pm.SumOfExercises(s.ID, s.Exercises),
			info:     info,
		})
	}
	return out
}
