package criteria

import (
	"fmt"

	"github.com/rs/zerolog"
)

// MaxSafeInteger bounds integer fields which declare no explicit range.
const MaxSafeInteger = 1<<53 - 1

// FormFieldType is the UI-facing kind of a form field.
type FormFieldType string

const (
	FieldString  FormFieldType = "string"
	FieldBoolean FormFieldType = "boolean"
	FieldInteger FormFieldType = "integer"
	FieldFloat   FormFieldType = "float"
	FieldSelect  FormFieldType = "select"
)

// FormFieldData describes one input of a criteria form.
type FormFieldData struct {
	Type       FormFieldType `json:"type"`
	Order      int           `json:"order"`
	Min        *float64      `json:"min,omitempty"`
	Max        *float64      `json:"max,omitempty"`
	Percentage bool          `json:"percentage,omitempty"`
	ToggledBy  string        `json:"toggledBy,omitempty"`
	Values     []string      `json:"values,omitempty"`
}

// FormDataSet maps field names to their form description.
type FormDataSet map[string]FormFieldData

// DeriveFormFieldData maps a field and its metadata to a form field. The
// boolean result is false if the field is not exposed. A numeric field
// without metadata is a configuration error.
func DeriveFormFieldData(name string, kind ValueKind, meta Metadata) (FormFieldData, bool, error) {
	if name == IdentifierField {
		return FormFieldData{}, false, nil
	}
	if meta.Kind == MetaEnum {
		return FormFieldData{Type: FieldSelect, Values: append([]string(nil), meta.Values...)}, true, nil
	}

	switch kind {
	case KindString:
		return FormFieldData{Type: FieldString}, true, nil
	case KindBoolean:
		return FormFieldData{Type: FieldBoolean}, true, nil
	case KindNumber:
		return deriveNumberField(name, meta)
	default:
		return FormFieldData{}, false, fmt.Errorf("field %q: unsupported value kind %d", name, kind)
	}
}

func deriveNumberField(name string, meta Metadata) (FormFieldData, bool, error) {
	switch meta.Kind {
	case MetaIgnored:
		return FormFieldData{}, false, nil
	case MetaInt:
		return FormFieldData{
			Type: FieldInteger,
			Min:  boundOr(meta.Min, -MaxSafeInteger),
			Max:  boundOr(meta.Max, MaxSafeInteger),
		}, true, nil
	case MetaFloat:
		return FormFieldData{Type: FieldFloat, Min: meta.Min, Max: meta.Max}, true, nil
	case MetaPercentage:
		return FormFieldData{
			Type:       FieldFloat,
			Min:        floatPtr(0),
			Max:        floatPtr(100),
			Percentage: true,
		}, true, nil
	case MetaPossiblePercentage:
		return FormFieldData{
			Type:      FieldFloat,
			Min:       meta.Min,
			Max:       meta.Max,
			ToggledBy: meta.ToggledBy,
		}, true, nil
	default:
		return FormFieldData{}, false, fmt.Errorf("field %q: %w", name, ErrMissingMetadata)
	}
}

// GenerateInitialValue returns the default value of every field of set.
func GenerateInitialValue(set FormDataSet, log zerolog.Logger) map[string]any {
	values := make(map[string]any, len(set))
	for name, field := range set {
		switch field.Type {
		case FieldString, FieldSelect:
			values[name] = ""
		case FieldBoolean:
			values[name] = false
		case FieldInteger, FieldFloat:
			if field.Min == nil || *field.Min <= 0 {
				values[name] = float64(0)
			} else {
				values[name] = *field.Min
			}
		default:
			log.Warn().
				Str("field", name).
				Str("type", string(field.Type)).
				Msg("no initial value for unknown form field type")
			values[name] = ""
		}
	}
	return values
}

func boundOr(v *float64, fallback float64) *float64 {
	if v != nil {
		return floatPtr(*v)
	}
	return floatPtr(fallback)
}

func floatPtr(v float64) *float64 { return &v }
