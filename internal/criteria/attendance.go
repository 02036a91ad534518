package criteria

const (
	AttendanceIdentifier = "attendance"
	AttendanceClass      = "AttendanceCriteria"
)

// AttendanceCriteria requires a number or fraction of attended tutorial
// dates. Excused absences count as attended.
type AttendanceCriteria struct {
	possiblePercentage
}

func NewAttendanceCriteria() Criterion {
	return &AttendanceCriteria{possiblePercentage{Percentage: true, ValueNeeded: 0.6}}
}

func (c *AttendanceCriteria) Identifier() string { return AttendanceIdentifier }

func (c *AttendanceCriteria) Lineage() []string {
	return []string{AttendanceClass, PossiblePercentageClass, BaseClass}
}

func (c *AttendanceCriteria) Fields() []Field {
	return append([]Field{identifierField(AttendanceIdentifier)}, c.possiblePercentage.fields()...)
}

func (c *AttendanceCriteria) Evaluate(in *Input) (StatusCheckResponse, error) {
	infos := make(map[string]StatusInfo, len(in.TutorialDates))
	var achieved float64

	for i, date := range in.TutorialDates {
		state := in.Student.Attendances[date]
		attended := state.Counts()

		var value float64
		if attended {
			value = 1
			achieved++
		}
		infos[date] = StatusInfo{
			No:       i + 1,
			Achieved: value,
			Total:    1,
			Unit:     UnitDates,
			State:    stateOf(attended),
			Detail:   string(state),
		}
	}

	total := float64(len(in.TutorialDates))
	return StatusCheckResponse{
		Identifier: AttendanceIdentifier,
		Achieved:   achieved,
		Total:      total,
		Unit:       UnitDates,
		Passed:     c.reached(achieved, total),
		Infos:      infos,
	}, nil
}
