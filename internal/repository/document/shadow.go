package document

import (
	"fmt"
	"maps"
	"slices"

	"github.com/kailas-cloud/gumby/internal/domain"
	"github.com/kailas-cloud/gumby/internal/schema"
)

// StripShadows removes the index-only fields from a stored document, in
// place, leaving its public form.
func StripShadows(model schema.Model, doc map[string]any) {
	stripFields(model.Fields, doc)
}

func stripFields(fields []schema.Field, doc map[string]any) {
	for _, f := range fields {
		if f.Type == schema.Nested {
			elems, _ := doc[f.Name].([]any)
			for _, e := range elems {
				if m, ok := e.(map[string]any); ok {
					stripFields(f.Fields, m)
				}
			}
			continue
		}
		if shadow := f.Shadow(); shadow != f.Name {
			delete(doc, shadow)
		}
	}
}

// CheckDeclared rejects the first key of doc, in key order, that model does
// not declare. Shadow fields are accepted; the codec rebuilds them.
func CheckDeclared(model schema.Model, doc map[string]any) error {
	return checkFields(model.Name, model.Fields, "", doc)
}

func checkFields(model string, fields []schema.Field, base string, doc map[string]any) error {
	for _, key := range slices.Sorted(maps.Keys(doc)) {
		f, ok := declared(fields, key)
		if !ok {
			return domain.NewValidationError(base+key, "", "not a declared "+model+" field")
		}
		if f.Type != schema.Nested {
			continue
		}
		elems, _ := doc[key].([]any)
		for i, e := range elems {
			m, ok := e.(map[string]any)
			if !ok {
				continue // the codec rejects the element
			}
			if err := checkFields(model, f.Fields, fmt.Sprintf("%s%s[%d].", base, key, i), m); err != nil {
				return err
			}
		}
	}
	return nil
}

func declared(fields []schema.Field, key string) (schema.Field, bool) {
	for _, f := range fields {
		if f.Name == key || f.Shadow() == key {
			return f, true
		}
	}
	return schema.Field{}, false
}
