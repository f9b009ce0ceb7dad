// Package schema declares the indexed document kinds: their fields, field
// types and enumerated value constraints.
package schema

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/gumby/internal/db"
	"github.com/kailas-cloud/gumby/internal/domain"
)

// Type is the indexing type of a declared field.
type Type string

// Field type constants.
const (
	// Keyword is an exact-match field.
	Keyword Type = "keyword"
	// Text is a full-text field.
	Text Type = "text"
	// Date is an RFC 3339 timestamp, indexed through its epoch-millisecond shadow.
	Date Type = "date"
	// Boolean is indexed as the tags "true" / "false".
	Boolean Type = "boolean"
	// Geo is a lat/lon point, indexed through its "lon,lat" shadow.
	Geo Type = "geo"
	// Nested is an array of objects whose children are indexed per element.
	Nested Type = "nested"
)

// GeoShadow is the stored field carrying the "lon,lat" form of a geo field.
const GeoShadow = "location"

// Field declares a single document field.
type Field struct {
	Name     string
	Type     Type
	Enum     []string
	Sortable bool
	// Fields holds the children of a Nested field.
	Fields []Field
}

// Shadow returns the stored field the index reads for f, or f.Name when the
// value is indexed as-is.
func (f Field) Shadow() string {
	switch f.Type {
	case Date:
		return f.Name + "_ts"
	case Geo:
		return GeoShadow
	default:
		return f.Name
	}
}

// Model declares one document kind and its index.
type Model struct {
	Name   string
	Fields []Field
}

// IndexName returns the FT index name under the key prefix.
func (m Model) IndexName(prefix string) string {
	return prefix + m.Name + ":idx"
}

// KeyPrefix returns the key prefix of the model's documents.
func (m Model) KeyPrefix(prefix string) string {
	return prefix + m.Name + ":"
}

// Key returns the storage key of a document.
func (m Model) Key(prefix, id string) string {
	return m.KeyPrefix(prefix) + id
}

// Field resolves a dotted path such as "encounters.taxonomy".
func (m Model) Field(path string) (Field, bool) {
	parent, child, nested := strings.Cut(path, ".")
	f, ok := find(m.Fields, parent)
	if !ok {
		return Field{}, false
	}
	if !nested {
		return f, true
	}
	if f.Type != Nested {
		return Field{}, false
	}
	return find(f.Fields, child)
}

// Alias returns the index attribute name of a field path:
// "sex" stays "sex", "encounters.sex" becomes "encounters_sex".
func (m Model) Alias(path string) string {
	return strings.ReplaceAll(path, ".", "_")
}

// CheckEnum validates value against the enum declared for path. Fields
// without an enum accept anything; the empty value means absent.
func (m Model) CheckEnum(path, value string) error {
	f, ok := m.Field(path)
	if !ok {
		return fmt.Errorf("%w: %s has no field %q", domain.ErrValidation, m.Name, path)
	}
	if value == "" || len(f.Enum) == 0 {
		return nil
	}
	if !slices.Contains(f.Enum, value) {
		return domain.NewEnumError(path, value, f.Enum)
	}
	return nil
}

// IndexDefinition builds the FT.CREATE definition for the model.
func (m Model) IndexDefinition(prefix string) (*db.IndexDefinition, error) {
	b := db.NewIndex(m.IndexName(prefix)).
		OnJSON().
		Prefix(m.KeyPrefix(prefix))

	for _, f := range m.Fields {
		if f.Type == Nested {
			for _, child := range f.Fields {
				if err := addField(b, "$."+f.Name+"[*].", f.Name+"_", child); err != nil {
					return nil, fmt.Errorf("%s.%s: %w", f.Name, child.Name, err)
				}
			}
			continue
		}
		if err := addField(b, "$.", "", f); err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
	}

	return b.Build()
}

func addField(b *db.IndexBuilder, pathPrefix, aliasPrefix string, f Field) error {
	var ft db.IndexFieldType
	switch f.Type {
	case Keyword, Boolean:
		ft = db.IndexFieldTag
	case Text:
		ft = db.IndexFieldText
	case Date:
		ft = db.IndexFieldNumeric
	case Geo:
		ft = db.IndexFieldGeo
	default:
		return fmt.Errorf("field type %q cannot be indexed here", f.Type)
	}
	// keywords compare exactly, in the index and in Matches alike
	b.Field(db.IndexField{
		Name:             pathPrefix + f.Shadow(),
		Alias:            aliasPrefix + f.Name,
		Type:             ft,
		Sortable:         f.Sortable,
		TagCaseSensitive: f.Type == Keyword,
	})
	return nil
}

func find(fields []Field, name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
