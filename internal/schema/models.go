package schema

import (
	"fmt"

	"github.com/kailas-cloud/gumby/internal/domain"
	"github.com/kailas-cloud/gumby/internal/domain/enum"
)

// Individuals is the individuals index with its embedded encounters.
var Individuals = Model{
	Name: "individuals",
	Fields: []Field{
		{Name: "id", Type: Keyword},
		{Name: "name", Type: Text, Sortable: true},
		{Name: "alias", Type: Keyword},
		{Name: "taxonomy", Type: Keyword},
		{Name: "last_sighting", Type: Date, Sortable: true},
		{Name: "sex", Type: Keyword, Enum: enum.Strings(enum.Sexes())},
		{Name: "birth", Type: Date},
		{Name: "death", Type: Date},
		{Name: "encounters", Type: Nested, Fields: []Field{
			{Name: "id", Type: Keyword},
			{Name: "point", Type: Geo},
			{Name: "animate_status", Type: Keyword, Enum: enum.Strings(enum.LivingStatuses())},
			{Name: "sex", Type: Keyword, Enum: enum.Strings(enum.Sexes())},
			{Name: "submitter_id", Type: Keyword},
			{Name: "date_occurred", Type: Date},
			{Name: "taxonomy", Type: Keyword},
			{Name: "has_annotation", Type: Boolean},
		}},
	},
}

// Sightings is the standalone sightings index.
var Sightings = Model{
	Name: "sightings",
	Fields: []Field{
		{Name: "id", Type: Keyword},
		{Name: "individual_id", Type: Keyword},
		{Name: "point", Type: Geo},
		{Name: "viewpoint", Type: Keyword, Enum: enum.Strings(enum.Viewpoints())},
		{Name: "animate_status", Type: Keyword, Enum: enum.Strings(enum.LivingStatuses())},
		{Name: "sex", Type: Keyword, Enum: enum.Strings(enum.Sexes())},
		{Name: "submitter_id", Type: Keyword},
		{Name: "date_occurred", Type: Date, Sortable: true},
		{Name: "taxonomy", Type: Keyword},
		{Name: "has_annotation", Type: Boolean},
	},
}

// All returns every declared model.
func All() []Model {
	return []Model{Individuals, Sightings}
}

// Names returns the names of every declared model.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, m := range all {
		names[i] = m.Name
	}
	return names
}

// Lookup resolves model names; no names means every model.
func Lookup(names ...string) ([]Model, error) {
	if len(names) == 0 {
		return All(), nil
	}
	out := make([]Model, 0, len(names))
	for _, name := range names {
		found := false
		for _, m := range All() {
			if m.Name == name {
				out = append(out, m)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w %q (known: %v)", domain.ErrUnknownModel, name, Names())
		}
	}
	return out, nil
}
