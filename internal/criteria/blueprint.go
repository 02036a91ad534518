package criteria

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Factory returns a fresh criterion holding its default values.
type Factory func() Criterion

// Schema validates a decoded criterion and returns field name → message for
// every violation, or nil.
type Schema interface {
	Validate(v any) map[string]string
}

// Blueprint is the registered description of one criteria type.
type Blueprint struct {
	Identifier string
	Prototype  Criterion
	Form       FormDataSet

	factory Factory
	schema  Schema
}

// BlueprintRegistry holds one blueprint per criteria identifier.
type BlueprintRegistry struct {
	mu         sync.RWMutex
	meta       *MetadataRegistry
	blueprints map[string]*Blueprint
	log        zerolog.Logger
}

func NewBlueprintRegistry(meta *MetadataRegistry, log zerolog.Logger) *BlueprintRegistry {
	return &BlueprintRegistry{
		meta:       meta,
		blueprints: make(map[string]*Blueprint),
		log:        log.With().Str("component", "criteria_blueprints").Logger(),
	}
}

// Register derives the form of the prototype built by factory and stores it
// under the prototype's identifier. A later registration for the same
// identifier replaces the earlier one.
func (r *BlueprintRegistry) Register(factory Factory, schema Schema) error {
	proto := factory()
	id := proto.Identifier()

	form := make(FormDataSet)
	for i, f := range proto.Fields() {
		if f.Name == IdentifierField {
			continue
		}
		data, ok, err := DeriveFormFieldData(f.Name, f.Kind, r.meta.For(proto, f.Name))
		if err != nil {
			return fmt.Errorf("register %s criteria: %w", id, err)
		}
		if !ok {
			continue
		}
		data.Order = i
		form[f.Name] = data
	}

	r.mu.Lock()
	r.blueprints[id] = &Blueprint{
		Identifier: id,
		Prototype:  proto,
		Form:       form,
		factory:    factory,
		schema:     schema,
	}
	r.mu.Unlock()

	r.log.Debug().Str("identifier", id).Int("fields", len(form)).Msg("criteria blueprint registered")
	return nil
}

// Unregister removes the blueprint of the identifier.
func (r *BlueprintRegistry) Unregister(identifier string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.blueprints, identifier)
}

// Get returns the blueprint of the identifier.
func (r *BlueprintRegistry) Get(identifier string) (*Blueprint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bp, ok := r.blueprints[identifier]
	return bp, ok
}

// Identifiers returns all registered identifiers, sorted.
func (r *BlueprintRegistry) Identifiers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.blueprints))
	for id := range r.blueprints {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Instantiate builds a criterion of the identifier from submitted data.
// Values in data replace the defaults of the fresh instance; keys which are
// not fields of the criterion are ignored.
func (r *BlueprintRegistry) Instantiate(identifier string, data map[string]any) (Criterion, error) {
	bp, ok := r.Get(identifier)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCriteria, identifier)
	}
	c, fields := bp.decode(data)
	if len(fields) > 0 {
		return nil, &ValidationError{Identifier: identifier, Fields: fields}
	}
	return c, nil
}

// Validate checks data against the schema of the identifier. All invalid
// fields are reported at once through a *ValidationError.
func (r *BlueprintRegistry) Validate(identifier string, data map[string]any) error {
	bp, ok := r.Get(identifier)
	if !ok || bp.schema == nil {
		return fmt.Errorf("%w: %q", ErrNoSchema, identifier)
	}

	c, fields := bp.decode(data)
	for name, msg := range bp.schema.Validate(c) {
		if _, exists := fields[name]; !exists {
			fields[name] = msg
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Identifier: identifier, Fields: fields}
	}
	return nil
}

// Build validates data and instantiates the criterion in one step.
func (r *BlueprintRegistry) Build(identifier string, data map[string]any) (Criterion, error) {
	if err := r.Validate(identifier, data); err != nil {
		if errors.Is(err, ErrNoSchema) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCriteria, identifier)
		}
		return nil, err
	}
	return r.Instantiate(identifier, data)
}

// AllFormData returns the form of every registered criteria type.
func (r *BlueprintRegistry) AllFormData() map[string]FormDataSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]FormDataSet, len(r.blueprints))
	for id, bp := range r.blueprints {
		form := make(FormDataSet, len(bp.Form))
		for name, field := range bp.Form {
			form[name] = field
		}
		out[id] = form
	}
	return out
}

// decode applies data key by key onto a fresh instance so that every badly
// typed field is reported, not only the first one.
func (bp *Blueprint) decode(data map[string]any) (Criterion, map[string]string) {
	c := bp.factory()
	fields := make(map[string]string)

	known := make(map[string]bool)
	for _, f := range c.Fields() {
		known[f.Name] = true
	}

	for key, value := range data {
		if key == IdentifierField || !known[key] {
			continue
		}
		raw, err := json.Marshal(map[string]any{key: value})
		if err != nil {
			fields[key] = err.Error()
			continue
		}
		if err := json.Unmarshal(raw, c); err != nil {
			fields[key] = decodeMessage(key, err)
		}
	}
	return c, fields
}

func decodeMessage(key string, err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("%s must be of type %s", key, typeErr.Type.String())
	}
	return err.Error()
}
