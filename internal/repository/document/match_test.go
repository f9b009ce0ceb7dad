package document

import (
	"testing"

	"github.com/kailas-cloud/gumby/internal/domain/geo"
	"github.com/kailas-cloud/gumby/internal/domain/search/filter"
	"github.com/kailas-cloud/gumby/internal/schema"
)

func TestMatches(t *testing.T) {
	doc := map[string]any{
		"id":            "a",
		"name":          "TI-00007 the tall",
		"sex":           "female",
		"last_sighting": "2024-03-01T12:00:00Z",
		"encounters": []any{
			encounter("Giraffa reticulata", false),
			encounter("Giraffa tippelskirchi", true),
		},
	}

	from, _ := filter.NewRangeFilter(nil, ptr(1704067200000), nil, nil) // 2024-01-01
	until, _ := filter.NewRangeFilter(nil, nil, ptr(1704067200000), nil)

	tests := []struct {
		name string
		expr func(t *testing.T) filter.Expression
		want bool
	}{
		{"empty", func(*testing.T) filter.Expression { return filter.Expression{} }, true},
		{"keyword", func(t *testing.T) filter.Expression {
			return expr(t, []filter.Condition{cond(t)(filter.NewMatch("sex", "female"))}, nil, nil)
		}, true},
		{"keyword mismatch", func(t *testing.T) filter.Expression {
			return expr(t, []filter.Condition{cond(t)(filter.NewMatch("sex", "male"))}, nil, nil)
		}, false},
		{"keyword is case sensitive", func(t *testing.T) filter.Expression {
			return expr(t, []filter.Condition{cond(t)(filter.NewMatch("sex", "Female"))}, nil, nil)
		}, false},
		{"text token", func(t *testing.T) filter.Expression {
			return expr(t, []filter.Condition{cond(t)(filter.NewMatch("name", "Tall"))}, nil, nil)
		}, true},
		{"date range", func(t *testing.T) filter.Expression {
			return expr(t, []filter.Condition{cond(t)(filter.NewRange("last_sighting", from))}, nil, nil)
		}, true},
		{"date range excludes", func(t *testing.T) filter.Expression {
			return expr(t, []filter.Condition{cond(t)(filter.NewRange("last_sighting", until))}, nil, nil)
		}, false},
		{"absent field", func(t *testing.T) filter.Expression {
			return expr(t, []filter.Condition{cond(t)(filter.NewMatch("alias", "x"))}, nil, nil)
		}, false},
		{"must_not", func(t *testing.T) filter.Expression {
			return expr(t, nil, nil, []filter.Condition{cond(t)(filter.NewMatch("sex", "female"))})
		}, false},
		{"should", func(t *testing.T) filter.Expression {
			return expr(t, nil, []filter.Condition{
				cond(t)(filter.NewMatch("sex", "male")),
				cond(t)(filter.NewMatch("sex", "female")),
			}, nil)
		}, true},
		{"nested same element", func(t *testing.T) filter.Expression {
			inner := expr(t, []filter.Condition{
				cond(t)(filter.NewMatch("taxonomy", "Giraffa tippelskirchi")),
				cond(t)(filter.NewMatch("has_annotation", "true")),
			}, nil, nil)
			return expr(t, []filter.Condition{cond(t)(filter.NewNested("encounters", inner))}, nil, nil)
		}, true},
		{"nested across elements", func(t *testing.T) filter.Expression {
			inner := expr(t, []filter.Condition{
				cond(t)(filter.NewMatch("taxonomy", "Giraffa reticulata")),
				cond(t)(filter.NewMatch("has_annotation", "true")),
			}, nil, nil)
			return expr(t, []filter.Condition{cond(t)(filter.NewNested("encounters", inner))}, nil, nil)
		}, false},
		{"nested geo", func(t *testing.T) filter.Expression {
			r := filter.Radius{Center: geo.Point{Lat: -1.5, Lon: 36.81}, Meters: 2000}
			inner := expr(t, []filter.Condition{cond(t)(filter.NewGeoRadius("point", r))}, nil, nil)
			return expr(t, []filter.Condition{cond(t)(filter.NewNested("encounters", inner))}, nil, nil)
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(schema.Individuals, doc, tt.expr(t)); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
