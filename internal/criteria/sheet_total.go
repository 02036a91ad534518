package criteria

const (
	SheetTotalIdentifier = "sheetTotal"
	SheetTotalClass      = "SheetTotalCriteria"
)

// SheetTotalCriteria requires a number or fraction of all must points of
// every exercise sheet. Points on bonus sheets and bonus exercises count as
// achieved but never raise the total.
type SheetTotalCriteria struct {
	possiblePercentage
}

func NewSheetTotalCriteria() Criterion {
	return &SheetTotalCriteria{possiblePercentage{Percentage: true, ValueNeeded: 0.5}}
}

func (c *SheetTotalCriteria) Identifier() string { return SheetTotalIdentifier }

func (c *SheetTotalCriteria) Lineage() []string {
	return []string{SheetTotalClass, PossiblePercentageClass, BaseClass}
}

func (c *SheetTotalCriteria) Fields() []Field {
	return append([]Field{identifierField(SheetTotalIdentifier)}, c.possiblePercentage.fields()...)
}

func (c *SheetTotalCriteria) Evaluate(in *Input) (StatusCheckResponse, error) {
	if err := in.checkSheetReferences(SheetTotalIdentifier); err != nil {
		return StatusCheckResponse{}, err
	}

	results := in.sheetResults()
	infos := make(map[string]StatusInfo, len(results))
	var achieved, total float64

	for _, r := range results {
		achieved += r.achieved
		total += r.info.Must

		state := StateNone
		if c.Percentage && !r.sheet.Bonus {
			state = stateOf(meetsFraction(r.achieved, r.info.Must, c.ValueNeeded, BoundaryInclusive))
		}
		infos[r.sheet.ID] = StatusInfo{
			No:       r.sheet.No,
			Achieved: r.achieved,
			Total:    r.info.Must,
			Unit:     UnitPoints,
			State:    state,
		}
	}

	return StatusCheckResponse{
		Identifier: SheetTotalIdentifier,
		Achieved:   achieved,
		Total:      total,
		Unit:       UnitPoints,
		Passed:     c.reached(achieved, total),
		Infos:      infos,
	}, nil
}
