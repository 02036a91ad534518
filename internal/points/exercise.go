package points

import (
	"errors"
	"fmt"
)

// ErrInvalidPoints reports an entry that does not fit its exercise.
var ErrInvalidPoints = errors.New("invalid points")

// Subexercise is one part of an exercise. Subexercises do not nest further.
type Subexercise struct {
	ID        string  `json:"id" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	MaxPoints float64 `json:"max_points" binding:"gte=0"`
	Bonus     bool    `json:"bonus"`
}

// Exercise is a gradable item of a sheet or an exam.
type Exercise struct {
	ID           string        `json:"id" binding:"required"`
	Name         string        `json:"name" binding:"required"`
	MaxPoints    float64       `json:"max_points" binding:"gte=0"`
	Bonus        bool          `json:"bonus"`
	Subexercises []Subexercise `json:"subexercises,omitempty" binding:"dive"`
}

// PointInfo splits maximum points into required ("must") and bonus points.
type PointInfo struct {
	Must  float64 `json:"must"`
	Bonus float64 `json:"bonus"`
}

// Add returns the component-wise sum of both infos.
func (p PointInfo) Add(o PointInfo) PointInfo {
	return PointInfo{Must: p.Must + o.Must, Bonus: p.Bonus + o.Bonus}
}

// Total returns must and bonus points together.
func (p PointInfo) Total() float64 {
	return p.Must + p.Bonus
}

// PointInfo returns the maximum points of the subexercise.
func (s Subexercise) PointInfo() PointInfo {
	if s.Bonus {
		return PointInfo{Bonus: s.MaxPoints}
	}
	return PointInfo{Must: s.MaxPoints}
}

// HasSubexercises reports whether the points of e are given per subexercise.
func (e Exercise) HasSubexercises() bool {
	return len(e.Subexercises) > 0
}

// PointInfo returns the maximum points of the exercise. Exercises with
// subexercises derive them from their parts; a bonus exercise never
// contributes must points, not even through its subexercises.
func (e Exercise) PointInfo() PointInfo {
	if !e.HasSubexercises() {
		if e.Bonus {
			return PointInfo{Bonus: e.MaxPoints}
		}
		return PointInfo{Must: e.MaxPoints}
	}

	var info PointInfo
	for _, sub := range e.Subexercises {
		info = info.Add(sub.PointInfo())
	}
	if e.Bonus {
		return PointInfo{Bonus: info.Total()}
	}
	return info
}

// TotalPointInfo sums the maximum points of all exercises.
func TotalPointInfo(exercises []Exercise) PointInfo {
	var info PointInfo
	for _, ex := range exercises {
		info = info.Add(ex.PointInfo())
	}
	return info
}

// FindExercise returns the exercise with the given id.
func FindExercise(exercises []Exercise, id string) (Exercise, bool) {
	for _, ex := range exercises {
		if ex.ID == id {
			return ex, true
		}
	}
	return Exercise{}, false
}

// CheckEntry verifies that entry grades e: points are never negative and
// never exceed the maximum; a breakdown is only allowed for exercises with
// subexercises and may only name those, each within its own maximum.
func (e Exercise) CheckEntry(entry PointMapEntry) error {
	if entry.Breakdown == nil {
		limit := e.PointInfo().Total()
		if entry.Points < 0 || entry.Points > limit {
			return fmt.Errorf("%w: exercise %s: %v not in [0, %v]", ErrInvalidPoints, e.ID, entry.Points, limit)
		}
		return nil
	}

	if !e.HasSubexercises() {
		return fmt.Errorf("%w: exercise %s has no subexercises", ErrInvalidPoints, e.ID)
	}
	subs := make(map[string]Subexercise, len(e.Subexercises))
	for _, sub := range e.Subexercises {
		subs[sub.ID] = sub
	}
	for id, v := range entry.Breakdown {
		sub, ok := subs[id]
		if !ok {
			return fmt.Errorf("%w: exercise %s: unknown subexercise %s", ErrInvalidPoints, e.ID, id)
		}
		if v < 0 || v > sub.MaxPoints {
			return fmt.Errorf("%w: subexercise %s.%s: %v not in [0, %v]", ErrInvalidPoints, e.ID, id, v, sub.MaxPoints)
		}
	}
	return nil
}
