package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_Simple(t *testing.T) {
	idx := NewIndex("test-idx").
		Prefix("doc:").
		Tag("sex", "").
		Numeric("born", "").
		MustBuild()

	if err := idx.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Name != "test-idx" {
		t.Errorf("name = %q, want test-idx", idx.Name)
	}
	if idx.StorageType != StorageHash {
		t.Errorf("storage = %q, want HASH", idx.StorageType)
	}
	if len(idx.Fields) != 2 {
		t.Fatalf("fields count = %d, want 2", len(idx.Fields))
	}
	if idx.Fields[0].Name != "sex" || idx.Fields[0].Type != IndexFieldTag {
		t.Errorf("field[0] = %+v, want sex TAG", idx.Fields[0])
	}
	if idx.Fields[1].Name != "born" || idx.Fields[1].Type != IndexFieldNumeric {
		t.Errorf("field[1] = %+v, want born NUMERIC", idx.Fields[1])
	}
}

func TestIndexBuilder_JSONWithAliases(t *testing.T) {
	idx := NewIndex("gumby:individuals:idx").
		OnJSON().
		Prefix("gumby:individuals:").
		Text("$.name", "name").
		Geo("$.encounters[*].location", "encounters_point").
		MustBuild()

	if idx.StorageType != StorageJSON {
		t.Errorf("storage = %q, want JSON", idx.StorageType)
	}
	if idx.Fields[1].Type != IndexFieldGeo {
		t.Errorf("field[1] type = %v, want GEO", idx.Fields[1].Type)
	}
	if idx.Fields[1].Key() != "encounters_point" {
		t.Errorf("field[1] key = %q, want encounters_point", idx.Fields[1].Key())
	}
}

func TestIndexBuilder_TagOptions(t *testing.T) {
	idx := NewIndex("tag-idx").
		Prefix("t:").
		TagWithOpts("tags", "", "|", true).
		MustBuild()

	f := idx.Fields[0]
	if f.TagSeparator != "|" {
		t.Errorf("separator = %q, want |", f.TagSeparator)
	}
	if !f.TagCaseSensitive {
		t.Error("expected TagCaseSensitive=true")
	}
}

func TestIndexBuilder_MultiplePrefixes(t *testing.T) {
	idx := NewIndex("multi-idx").
		Prefix("a:", "b:", "c:").
		Tag("x", "").
		MustBuild()

	if len(idx.Prefixes) != 3 {
		t.Errorf("prefix count = %d, want 3", len(idx.Prefixes))
	}
}

func TestIndexBuilder_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder func() (*IndexDefinition, error)
		wantErr string
	}{
		{
			name: "empty name",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("").Tag("x", "").Build()
			},
			wantErr: "index name is required",
		},
		{
			name: "no fields",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Build()
			},
			wantErr: "at least one field",
		},
		{
			name: "invalid characters",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx with spaces").Tag("x", "").Build()
			},
			wantErr: "invalid characters",
		},
		{
			name: "duplicate alias",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Tag("$.a", "x").Numeric("$.b", "x").Build()
			},
			wantErr: "duplicate field name: x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got error %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestIndexDefinition_String(t *testing.T) {
	idx := NewIndex("my-idx").
		OnJSON().
		Prefix("doc:").
		Tag("$.sex", "sex").
		Field(IndexField{Name: "$.last_sighting_ts", Alias: "last_sighting", Type: IndexFieldNumeric, Sortable: true}).
		MustBuild()

	s := idx.String()
	want := "FT.CREATE my-idx ON JSON PREFIX doc: SCHEMA $.sex AS sex TAG $.last_sighting_ts AS last_sighting NUMERIC SORTABLE"
	if s != want {
		t.Errorf("String() =\n%q\nwant\n%q", s, want)
	}
}

func TestIndexField_KeyFallsBackToName(t *testing.T) {
	f := IndexField{Name: "plain", Type: IndexFieldTag}
	if f.Key() != "plain" {
		t.Errorf("Key() = %q, want plain", f.Key())
	}
}

func TestIndexBuilder_DuplicateFields(t *testing.T) {
	idx := &IndexDefinition{
		Name: "dup-idx",
		Fields: []IndexField{
			{Name: "field1", Type: IndexFieldTag},
			{Name: "field1", Type: IndexFieldNumeric},
		},
	}

	if err := idx.Validate(); err == nil {
		t.Fatal("expected error for duplicate fields")
	}
}
