package criteria

import "sort"

const (
	PresentationIdentifier = "presentation"
	PresentationClass      = "PresentationCriteria"
)

// PresentationCriteria requires a minimum number of presentations in the
// tutorial.
type PresentationCriteria struct {
	PresentationsNeeded int `json:"presentationsNeeded" binding:"gte=0"`
}

func NewPresentationCriteria() Criterion {
	return &PresentationCriteria{PresentationsNeeded: 2}
}

func (c *PresentationCriteria) Identifier() string { return PresentationIdentifier }

func (c *PresentationCriteria) Lineage() []string {
	return []string{PresentationClass, BaseClass}
}

func (c *PresentationCriteria) Fields() []Field {
	return []Field{
		identifierField(PresentationIdentifier),
		{Name: "presentationsNeeded", Kind: KindNumber, Value: c.PresentationsNeeded},
	}
}

func (c *PresentationCriteria) Evaluate(in *Input) (StatusCheckResponse, error) {
	sheetNo := make(map[string]int, len(in.Sheets))
	for _, s := range in.Sheets {
		sheetNo[s.ID] = s.No
	}

	ids := make([]string, 0, len(in.Student.Presentations))
	for id := range in.Student.Presentations {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	infos := make(map[string]StatusInfo, len(ids))
	var achieved float64
	for _, id := range ids {
		no, ok := sheetNo[id]
		if !ok {
			return StatusCheckResponse{}, &IntegrityError{Criteria: PresentationIdentifier, Entity: "sheet", ID: id}
		}
		count := float64(in.Student.Presentations[id])
		achieved += count
		infos[id] = StatusInfo{
			No:       no,
			Achieved: count,
			Total:    count,
			Unit:     UnitPresentations,
			State:    StateNone,
		}
	}

	total := float64(c.PresentationsNeeded)
	return StatusCheckResponse{
		Identifier: PresentationIdentifier,
		Achieved:   achieved,
		Total:      total,
		Unit:       UnitPresentations,
		Passed:     achieved >= total,
		Infos:      infos,
	}, nil
}

func declarePresentationMetadata(m *MetadataRegistry) {
	m.Add(MetadataKey{Class: PresentationClass, Property: "presentationsNeeded"}, Int().WithMin(0))
}
