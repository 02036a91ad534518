package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/stemsi/tms-backend/internal/criteria"
	"github.com/stemsi/tms-backend/internal/model"
	"github.com/stemsi/tms-backend/internal/points"
)

// dateLayout is the key format of tutorial dates and attendances.
const dateLayout = "2006-01-02"

// course is the catalogue every evaluation of one request runs against.
type course struct {
	sheets    []criteria.Sheet
	exams     []criteria.Exam
	tutorials map[uuid.UUID][]string
}

func loadCourse(ctx context.Context, sheets SheetStore, exams ExamStore, tutorials TutorialStore) (*course, error) {
	sheetList, err := sheets.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sheets: %w", err)
	}
	examList, err := exams.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load exams: %w", err)
	}
	tutorialList, err := tutorials.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tutorials: %w", err)
	}

	c := &course{
		sheets:    make([]criteria.Sheet, 0, len(sheetList)),
		exams:     make([]criteria.Exam, 0, len(examList)),
		tutorials: make(map[uuid.UUID][]string, len(tutorialList)),
	}
	for _, s := range sheetList {
		c.sheets = append(c.sheets, criteria.Sheet{ID: s.ID.String(), No: s.SheetNo, Bonus: s.Bonus, Exercises: s.Exercises})
	}
	for _, e := range examList {
		c.exams = append(c.exams, criteria.Exam{ID: e.ID.String(), No: e.ExamNo, Exercises: e.Exercises})
	}
	for _, t := range tutorialList {
		dates := make([]string, 0, len(t.Dates))
		for _, d := range t.Dates {
			dates = append(dates, d.Format(dateLayout))
		}
		sort.Strings(dates)
		c.tutorials[t.ID] = dates
	}
	return c, nil
}

// input converts a stored student into the evaluation input.
func (c *course) input(s *model.Student) (*criteria.Input, error) {
	sheetPoints, err := points.PointMapFromDTO(s.SheetPoints)
	if err != nil {
		return nil, fmt.Errorf("student %s sheet points: %w", s.ID, err)
	}

	results := make(map[string]*points.PointMap, len(s.ExamResults))
	for examID, dto := range s.ExamResults {
		pm, err := points.PointMapFromDTO(dto)
		if err != nil {
			return nil, fmt.Errorf("student %s exam %s: %w", s.ID, examID, err)
		}
		results[examID] = pm
	}

	in := &criteria.Input{
		Student: criteria.StudentData{
			ID:            s.ID.String(),
			SheetPoints:   sheetPoints,
			ExamResults:   results,
			Presentations: s.Presentations,
			Attendances:   s.Attendances,
		},
		Sheets: c.sheets,
		Exams:  c.exams,
	}
	if s.TutorialID != nil {
		in.TutorialDates = c.tutorials[*s.TutorialID]
	}
	return in, nil
}
