package criteria

const (
	SheetIndividualIdentifier = "sheetIndividual"
	SheetIndividualClass      = "SheetIndividualCriteria"
)

// SheetIndividualCriteria requires a number or fraction of sheets to be
// passed, where each sheet is passed by reaching a per-sheet threshold.
// Passed bonus sheets count as achieved without raising the total.
type SheetIndividualCriteria struct {
	possiblePercentage
	PercentagePerSheet  bool    `json:"percentagePerSheet"`
	ValuePerSheetNeeded float64 `json:"valuePerSheetNeeded" binding:"gte=0,fraction_if=PercentagePerSheet"`
}

func NewSheetIndividualCriteria() Criterion {
	return &SheetIndividualCriteria{
		possiblePercentage:  possiblePercentage{Percentage: true, ValueNeeded: 0.6},
		PercentagePerSheet:  true,
		ValuePerSheetNeeded: 0.5,
	}
}

func (c *SheetIndividualCriteria) Identifier() string { return SheetIndividualIdentifier }

func (c *SheetIndividualCriteria) Lineage() []string {
	return []string{SheetIndividualClass, PossiblePercentageClass, BaseClass}
}

func (c *SheetIndividualCriteria) Fields() []Field {
	fields := append([]Field{identifierField(SheetIndividualIdentifier)}, c.possiblePercentage.fields()...)
	return append(fields,
		Field{Name: "percentagePerSheet", Kind: KindBoolean, Value: c.PercentagePerSheet},
		Field{Name: "valuePerSheetNeeded", Kind: KindNumber, Value: c.ValuePerSheetNeeded},
	)
}

func (c *SheetIndividualCriteria) sheetPassed(achieved, reference float64) bool {
	if c.PercentagePerSheet {
		return meetsFraction(achieved, reference, c.ValuePerSheetNeeded, BoundaryInclusive)
	}
	return achieved >= c.ValuePerSheetNeeded
}

func (c *SheetIndividualCriteria) Evaluate(in *Input) (StatusCheckResponse, error) {
	if err := in.checkSheetReferences(SheetIndividualIdentifier); err != nil {
		return StatusCheckResponse{}, err
	}

	results := in.sheetResults()
	infos := make(map[string]StatusInfo, len(results))
	var achieved, total float64

	for _, r := range results {
		reference := r.info.Must
		if r.sheet.Bonus {
			reference = r.info.Total()
		} else {
			total++
		}

		passed := c.sheetPassed(r.achieved, reference)
		if passed {
			achieved++
		}
		infos[r.sheet.ID] = StatusInfo{
			No:       r.sheet.No,
			Achieved: r.achieved,
			Total:    reference,
			Unit:     UnitPoints,
			State:    stateOf(passed),
		}
	}

	return StatusCheckResponse{
		Identifier: SheetIndividualIdentifier,
		Achieved:   achieved,
		Total:      total,
		Unit:       UnitSheets,
		Passed:     c.reached(achieved, total),
		Infos:      infos,
	}, nil
}

func declareSheetIndividualMetadata(m *MetadataRegistry) {
	m.Add(MetadataKey{Class: SheetIndividualClass, Property: "valuePerSheetNeeded"},
		PossiblePercentage("percentagePerSheet").WithMin(0))
}
