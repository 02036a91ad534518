package criteria

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Registry bundles the metadata and blueprint registries of the process.
type Registry struct {
	Metadata   *MetadataRegistry
	Blueprints *BlueprintRegistry
}

func NewRegistry(log zerolog.Logger) *Registry {
	meta := NewMetadataRegistry()
	return &Registry{
		Metadata:   meta,
		Blueprints: NewBlueprintRegistry(meta, log),
	}
}

// definition declares one criteria type: its field metadata and its factory.
type definition struct {
	declare func(*MetadataRegistry)
	factory Factory
}

// definitions lists every criteria type in registration order.
var definitions = []definition{
	{declare: declarePossiblePercentageMetadata, factory: NewAttendanceCriteria},
	{declare: declarePresentationMetadata, factory: NewPresentationCriteria},
	{factory: NewSheetTotalCriteria},
	{declare: declareSheetIndividualMetadata, factory: NewSheetIndividualCriteria},
	{declare: declareExamMetadata, factory: NewExamCriteria},
}

// RegisterAll declares the metadata of every criteria type and registers
// their blueprints. It must run before the registry serves any request.
func RegisterAll(r *Registry, schema Schema) error {
	for _, d := range definitions {
		if d.declare != nil {
			d.declare(r.Metadata)
		}
	}
	for _, d := range definitions {
		if err := r.Blueprints.Register(d.factory, schema); err != nil {
			return fmt.Errorf("register criteria: %w", err)
		}
	}
	return nil
}
