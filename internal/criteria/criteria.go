// Package criteria implements the scheincriteria engine: a registry of
// grading policies which describe their own configuration form, validate
// submitted configurations and evaluate students against them.
package criteria

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// IdentifierField is the structural field every criterion carries. It is
// never part of a generated form.
const IdentifierField = "identifier"

// BaseClass is the root of every criteria lineage.
const BaseClass = "Scheincriteria"

// ValueKind is the runtime kind of a criteria field.
type ValueKind int

const (
	KindString ValueKind = iota
	KindBoolean
	KindNumber
)

// Field is one configurable value of a criterion.
type Field struct {
	Name  string
	Kind  ValueKind
	Value any
}

// Criterion is one configured grading policy.
type Criterion interface {
	// Identifier names the criteria type, e.g. "exam".
	Identifier() string
	// Lineage lists the class names from the most derived to BaseClass.
	Lineage() []string
	// Fields lists every field in declaration order, including identifier.
	Fields() []Field
	// Evaluate checks the student of in against the policy.
	Evaluate(in *Input) (StatusCheckResponse, error)
}

// Values returns the public shape of c: its identifier and field values.
func Values(c Criterion) map[string]any {
	fields := c.Fields()
	out := make(map[string]any, len(fields)+1)
	out[IdentifierField] = c.Identifier()
	for _, f := range fields {
		out[f.Name] = f.Value
	}
	return out
}

// Errors returned by the engine.
var (
	ErrMissingMetadata = errors.New("numeric criteria field has no metadata")
	ErrUnknownCriteria = errors.New("unknown criteria type")
	ErrNoSchema        = errors.New("no schema registered for identifier")
	ErrInvalidConfig   = errors.New("invalid criteria configuration")
	ErrDataIntegrity   = errors.New("referenced entity not found")
)

// ValidationError carries every invalid field of a submitted configuration.
type ValidationError struct {
	Identifier string
	Fields     map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("%s: %s: invalid fields %s", ErrInvalidConfig, e.Identifier, strings.Join(names, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidConfig }

// IntegrityError reports a reference to an entity which does not exist.
type IntegrityError struct {
	Criteria string
	Entity   string
	ID       string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s criteria: %s %q: %s", e.Criteria, e.Entity, e.ID, ErrDataIntegrity)
}

func (e *IntegrityError) Unwrap() error { return ErrDataIntegrity }
