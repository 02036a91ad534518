package points

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// KeySeparator joins the container id and the exercise id of a PointID.
const KeySeparator = "::"

// ErrInvalidKey is returned when a serialized PointID cannot be parsed.
var ErrInvalidKey = errors.New("invalid point key")

// PointID identifies one exercise inside a container (sheet or exam).
type PointID struct {
	ContainerID string
	ExerciseID  string
}

// NewPointID builds the key for an exercise of the given container.
func NewPointID(containerID, exerciseID string) PointID {
	return PointID{ContainerID: containerID, ExerciseID: exerciseID}
}

// String serializes the id. Equal ids always produce the same string.
func (id PointID) String() string {
	return id.ContainerID + KeySeparator + id.ExerciseID
}

// ParsePointID is the inverse of PointID.String.
func ParsePointID(key string) (PointID, error) {
	container, exercise, ok := strings.Cut(key, KeySeparator)
	if !ok || container == "" || exercise == "" {
		return PointID{}, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return PointID{ContainerID: container, ExerciseID: exercise}, nil
}

// PointMapEntry holds the achieved points of one exercise. Exactly one of
// Points and Breakdown is meaningful: Breakdown is used when the exercise is
// graded per subexercise.
type PointMapEntry struct {
	Comment   string
	Points    float64
	Breakdown map[string]float64
}

// Total returns the achieved points, summing the breakdown if present.
func (e PointMapEntry) Total() float64 {
	if e.Breakdown == nil {
		return e.Points
	}
	var sum float64
	for _, v := range e.Breakdown {
		sum += v
	}
	return sum
}

// PointMap is a sparse map of achieved points. It performs no validation
// against exercise maxima; callers are responsible for that.
type PointMap struct {
	entries map[string]PointMapEntry
}

// NewPointMap returns an empty map.
func NewPointMap() *PointMap {
	return &PointMap{entries: make(map[string]PointMapEntry)}
}

// Len returns the number of graded exercises.
func (m *PointMap) Len() int {
	return len(m.entries)
}

// Keys returns all serialized ids.
func (m *PointMap) Keys() []string {
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	return keys
}

// Has reports whether points were entered for the id.
func (m *PointMap) Has(id PointID) bool {
	_, ok := m.entries[id.String()]
	return ok
}

// GetEntry returns the raw entry for the id.
func (m *PointMap) GetEntry(id PointID) (PointMapEntry, bool) {
	e, ok := m.entries[id.String()]
	return e, ok
}

// GetPoints returns the achieved points for the id.
func (m *PointMap) GetPoints(id PointID) (float64, bool) {
	e, ok := m.entries[id.String()]
	if !ok {
		return 0, false
	}
	return e.Total(), true
}

// SetPointEntry stores the entry for the id, replacing any previous one.
func (m *PointMap) SetPointEntry(id PointID, entry PointMapEntry) {
	if m.entries == nil {
		m.entries = make(map[string]PointMapEntry)
	}
	m.entries[id.String()] = cloneEntry(entry)
}

// AdjustPoints overwrites every entry present in partial. Entries absent from
// partial are left untouched.
func (m *PointMap) AdjustPoints(partial *PointMap) {
	if partial == nil {
		return
	}
	if m.entries == nil {
		m.entries = make(map[string]PointMapEntry, len(partial.entries))
	}
	for k, e := range partial.entries {
		m.entries[k] = cloneEntry(e)
	}
}

// SumOf returns the achieved points of all exercises in the container.
func (m *PointMap) SumOf(containerID string) float64 {
	prefix := containerID + KeySeparator
	var sum float64
	for k, e := range m.entries {
		if strings.HasPrefix(k, prefix) {
			sum += e.Total()
		}
	}
	return sum
}

// SumOfExercises returns the achieved points of the container restricted to
// the given exercises.
func (m *PointMap) SumOfExercises(containerID string, exercises []Exercise) float64 {
	var sum float64
	for _, ex := range exercises {
		if p, ok := m.GetPoints(NewPointID(containerID, ex.ID)); ok {
			sum += p
		}
	}
	return sum
}

// Clone returns a deep copy.
func (m *PointMap) Clone() *PointMap {
	out := NewPointMap()
	out.AdjustPoints(m)
	return out
}

func cloneEntry(e PointMapEntry) PointMapEntry {
	if e.Breakdown == nil {
		return e
	}
	b := make(map[string]float64, len(e.Breakdown))
	for k, v := range e.Breakdown {
		b[k] = v
	}
	e.Breakdown = b
	return e
}

// ─── DTO ─────────────────────────────────────────────────────────────────

// EntryDTO is the storage form of an entry. Points is either a number or an
// object of subexercise id → number.
type EntryDTO struct {
	Comment string          `json:"comment,omitempty"`
	Points  json.RawMessage `json:"points"`
}

// PointMapDTO is the plain key-value form of a PointMap.
type PointMapDTO map[string]EntryDTO

// ToDTO converts the map into its storage form.
func (m *PointMap) ToDTO() (PointMapDTO, error) {
	dto := make(PointMapDTO, len(m.entries))
	for k, e := range m.entries {
		var (
			raw []byte
			err error
		)
		if e.Breakdown != nil {
			raw, err = json.Marshal(e.Breakdown)
		} else {
			raw, err = json.Marshal(e.Points)
		}
		if err != nil {
			return nil, fmt.Errorf("encode entry %s: %w", k, err)
		}
		dto[k] = EntryDTO{Comment: e.Comment, Points: raw}
	}
	return dto, nil
}

// PointMapFromDTO rebuilds a map from its storage form.
func PointMapFromDTO(dto PointMapDTO) (*PointMap, error) {
	m := NewPointMap()
	for k, d := range dto {
		if _, err := ParsePointID(k); err != nil {
			return nil, err
		}
		entry := PointMapEntry{Comment: d.Comment}
		raw := strings.TrimSpace(string(d.Points))
		switch {
		case raw == "" || raw == "null":
		case strings.HasPrefix(raw, "{"):
			if err := json.Unmarshal(d.Points, &entry.Breakdown); err != nil {
				return nil, fmt.Errorf("decode entry %s: %w", k, err)
			}
		default:
			if err := json.Unmarshal(d.Points, &entry.Points); err != nil {
				return nil, fmt.Errorf("decode entry %s: %w", k, err)
			}
		}
		m.entries[k] = entry
	}
	return m, nil
}

// MarshalJSON encodes the map as its DTO.
func (m *PointMap) MarshalJSON() ([]byte, error) {
	dto, err := m.ToDTO()
	if err != nil {
		return nil, err
	}
	return json.Marshal(dto)
}

// UnmarshalJSON decodes the map from its DTO.
func (m *PointMap) UnmarshalJSON(data []byte) error {
	var dto PointMapDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return err
	}
	decoded, err := PointMapFromDTO(dto)
	if err != nil {
		return err
	}
	m.entries = decoded.entries
	return nil
}
