package criteria

import (
	"sort"

	"github.com/stemsi/tms-backend/internal/points"
)

const (
	ExamIdentifier = "exam"
	ExamClass      = "ScheinexamCriteria"
)

// ExamCriteria requires a fraction of the must points of the schein exams,
// either pooled over all exams or in every exam individually.
type ExamCriteria struct {
	PassAllExamsIndividually    bool    `json:"passAllExamsIndividually"`
	PercentageOfAllPointsNeeded float64 `json:"percentageOfAllPointsNeeded" binding:"gte=0,lte=1"`
}

func NewExamCriteria() Criterion {
	return &ExamCriteria{PercentageOfAllPointsNeeded: 0.5}
}

func (c *ExamCriteria) Identifier() string { return ExamIdentifier }

func (c *ExamCriteria) Lineage() []string {
	return []string{ExamClass, BaseClass}
}

func (c *ExamCriteria) Fields() []Field {
	return []Field{
		identifierField(ExamIdentifier),
		{Name: "passAllExamsIndividually", Kind: KindBoolean, Value: c.PassAllExamsIndividually},
		{Name: "percentageOfAllPointsNeeded", Kind: KindNumber, Value: c.PercentageOfAllPointsNeeded},
	}
}

func (c *ExamCriteria) Evaluate(in *Input) (StatusCheckResponse, error) {
	known := make(map[string]bool, len(in.Exams))
	for _, e := range in.Exams {
		known[e.ID] = true
	}

	referenced := make([]string, 0, len(in.Student.ExamResults))
	for id := range in.Student.ExamResults {
		referenced = append(referenced, id)
	}
	sort.Strings(referenced)
	for _, id := range referenced {
		if !known[id] {
			return StatusCheckResponse{}, &IntegrityError{Criteria: ExamIdentifier, Entity: "exam", ID: id}
		}
	}

	infos := make(map[string]StatusInfo, len(in.Exams))
	var achieved, total float64
	allPassed := true

	for _, exam := range in.Exams {
		results := in.Student.ExamResults[exam.ID]
		if results == nil {
			results = points.NewPointMap()
		}

		examAchieved := results.SumOfExercises(exam.ID, exam.Exercises)
		examTotal := points.TotalPointInfo(exam.Exercises).Must
		passed := meetsFraction(examAchieved, examTotal, c.PercentageOfAllPointsNeeded, ExamPassBoundary)

		achieved += examAchieved
		total += examTotal
		allPassed = allPassed && passed

		infos[exam.ID] = StatusInfo{
			No:       exam.No,
			Achieved: examAchieved,
			Total:    examTotal,
			Unit:     UnitPoints,
			State:    stateOf(passed),
		}
	}

	var passed bool
	if c.PassAllExamsIndividually {
		passed = allPassed
	} else {
		passed = meetsFraction(achieved, total, c.PercentageOfAllPointsNeeded, BoundaryInclusive)
	}

	return StatusCheckResponse{
		Identifier: ExamIdentifier,
		Achieved:   achieved,
		Total:      total,
		Unit:       UnitPoints,
		Passed:     passed,
		Infos:      infos,
	}, nil
}

func declareExamMetadata(m *MetadataRegistry) {
	m.Add(MetadataKey{Class: ExamClass, Property: "percentageOfAllPointsNeeded"}, Percentage())
}
