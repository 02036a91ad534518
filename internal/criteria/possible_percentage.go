package criteria

// PossiblePercentageClass is the base class of criteria whose threshold is
// either absolute or a fraction of the total.
const PossiblePercentageClass = "PossiblePercentageCriteria"

// possiblePercentage is embedded by criteria with a switchable threshold.
type possiblePercentage struct {
	Percentage  bool    `json:"percentage"`
	ValueNeeded float64 `json:"valueNeeded" binding:"gte=0,fraction_if=Percentage"`
}

func (p possiblePercentage) fields() []Field {
	return []Field{
		{Name: "percentage", Kind: KindBoolean, Value: p.Percentage},
		{Name: "valueNeeded", Kind: KindNumber, Value: p.ValueNeeded},
	}
}

// reached compares achieved against ValueNeeded, either as the fraction
// achieved/total or as an absolute value.
func (p possiblePercentage) reached(achieved, total float64) bool {
	if p.Percentage {
		return meetsFraction(achieved, total, p.ValueNeeded, BoundaryInclusive)
	}
	return achieved >= p.ValueNeeded
}

func declarePossiblePercentageMetadata(m *MetadataRegistry) {
	m.Add(MetadataKey{Class: PossiblePercentageClass, Property: "valueNeeded"},
		PossiblePercentage("percentage").WithMin(0))
}

func identifierField(id string) Field {
	return Field{Name: IdentifierField, Kind: KindString, Value: id}
}
