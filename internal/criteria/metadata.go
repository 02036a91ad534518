package criteria

import "sync"

// MetadataKind tags the editable shape of a criteria field.
type MetadataKind int

const (
	// MetaEmpty is returned when no metadata was declared for a field.
	MetaEmpty MetadataKind = iota
	MetaIgnored
	MetaInt
	MetaFloat
	MetaPercentage
	MetaPossiblePercentage
	MetaEnum
)

func (k MetadataKind) String() string {
	switch k {
	case MetaEmpty:
		return "empty"
	case MetaIgnored:
		return "ignored"
	case MetaInt:
		return "int"
	case MetaFloat:
		return "float"
	case MetaPercentage:
		return "percentage"
	case MetaPossiblePercentage:
		return "possible-percentage"
	case MetaEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// Metadata describes how a criteria field may be edited.
type Metadata struct {
	Kind MetadataKind
	Min  *float64
	Max  *float64
	// ToggledBy names the sibling boolean field which decides whether a
	// possible-percentage value is a fraction or an absolute value.
	ToggledBy string
	Values    []string
}

// Ignored hides a field from the generated form.
func Ignored() Metadata { return Metadata{Kind: MetaIgnored} }

// Int declares an integer field without bounds.
func Int() Metadata { return Metadata{Kind: MetaInt} }

// Float declares a float field without bounds.
func Float() Metadata { return Metadata{Kind: MetaFloat} }

// Percentage declares a field holding a fraction of a whole.
func Percentage() Metadata { return Metadata{Kind: MetaPercentage} }

// PossiblePercentage declares a field which is a fraction if the boolean
// field toggledBy is set, and an absolute value otherwise.
func PossiblePercentage(toggledBy string) Metadata {
	return Metadata{Kind: MetaPossiblePercentage, ToggledBy: toggledBy}
}

// Enum declares a field restricted to the given values.
func Enum(values ...string) Metadata {
	return Metadata{Kind: MetaEnum, Values: append([]string(nil), values...)}
}

// WithMin returns a copy of m with a lower bound.
func (m Metadata) WithMin(min float64) Metadata {
	m.Min = &min
	return m
}

// WithMax returns a copy of m with an upper bound.
func (m Metadata) WithMax(max float64) Metadata {
	m.Max = &max
	return m
}

// MetadataKey addresses the metadata of one field of one criteria class.
type MetadataKey struct {
	Class    string
	Property string
}

// MetadataRegistry maps criteria fields to their metadata. It is filled once
// during startup and only read afterwards.
type MetadataRegistry struct {
	mu      sync.RWMutex
	entries map[MetadataKey]Metadata
}

func NewMetadataRegistry() *MetadataRegistry {
	return &MetadataRegistry{entries: make(map[MetadataKey]Metadata)}
}

// Add stores the metadata, replacing an earlier declaration for the key.
func (r *MetadataRegistry) Add(key MetadataKey, meta Metadata) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = meta
}

// Get walks lineage from the most derived class to the base and returns the
// first metadata declared for property. A Metadata of kind MetaEmpty is
// returned if no class in the chain declares it.
func (r *MetadataRegistry) Get(lineage []string, property string) Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, class := range lineage {
		if meta, ok := r.entries[MetadataKey{Class: class, Property: property}]; ok {
			return meta
		}
	}
	return Metadata{Kind: MetaEmpty}
}

// For returns the metadata of a field of the criterion.
func (r *MetadataRegistry) For(c Criterion, property string) Metadata {
	return r.Get(c.Lineage(), property)
}
