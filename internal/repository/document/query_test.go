package document

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/gumby/internal/domain"
	"github.com/kailas-cloud/gumby/internal/domain/geo"
	"github.com/kailas-cloud/gumby/internal/domain/search/filter"
	"github.com/kailas-cloud/gumby/internal/schema"
)

func ptr(v float64) *float64 { return &v }

func TestBuildQuery(t *testing.T) {
	rng, err := filter.NewRangeFilter(nil, ptr(1704067200000), ptr(1735689600000), nil)
	if err != nil {
		t.Fatalf("range: %v", err)
	}

	tests := []struct {
		name  string
		model schema.Model
		expr  func(t *testing.T) filter.Expression
		want  string
	}{
		{
			name:  "empty",
			model: schema.Individuals,
			expr:  func(*testing.T) filter.Expression { return filter.Expression{} },
			want:  "*",
		},
		{
			name:  "keyword and text",
			model: schema.Individuals,
			expr: func(t *testing.T) filter.Expression {
				return expr(t, []filter.Condition{
					cond(t)(filter.NewMatch("sex", "non-binary")),
					cond(t)(filter.NewMatch("name", "TI-00042")),
				}, nil, nil)
			},
			want: `@sex:{non\-binary} @name:(TI\-00042)`,
		},
		{
			name:  "date range keeps epoch millis whole",
			model: schema.Individuals,
			expr: func(t *testing.T) filter.Expression {
				return expr(t, []filter.Condition{cond(t)(filter.NewRange("last_sighting", rng))}, nil, nil)
			},
			want: "@last_sighting:[1704067200000 (1735689600000]",
		},
		{
			name:  "should and must_not",
			model: schema.Sightings,
			expr: func(t *testing.T) filter.Expression {
				return expr(t, nil,
					[]filter.Condition{
						cond(t)(filter.NewMatch("viewpoint", "left")),
						cond(t)(filter.NewMatch("viewpoint", "right")),
					},
					[]filter.Condition{cond(t)(filter.NewMatch("animate_status", "dead"))},
				)
			},
			want: "(@viewpoint:{left} | @viewpoint:{right}) -@animate_status:{dead}",
		},
		{
			name:  "geo radius",
			model: schema.Sightings,
			expr: func(t *testing.T) filter.Expression {
				r := filter.Radius{Center: geo.Point{Lat: -1.5, Lon: 36.8}, Meters: 5000}
				return expr(t, []filter.Condition{cond(t)(filter.NewGeoRadius("point", r))}, nil, nil)
			},
			want: "@point:[36.8 -1.5 5000 m]",
		},
		{
			name:  "nested must_not is left to the matcher",
			model: schema.Individuals,
			expr: func(t *testing.T) filter.Expression {
				inner := expr(t,
					[]filter.Condition{cond(t)(filter.NewMatch("submitter_id", "bob"))}, nil,
					[]filter.Condition{cond(t)(filter.NewMatch("animate_status", "dead"))},
				)
				return expr(t, []filter.Condition{cond(t)(filter.NewNested("encounters", inner))}, nil, nil)
			},
			want: "(@encounters_submitter_id:{bob})",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildQuery(tt.model, tt.expr(t))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestBuildQuery_Errors(t *testing.T) {
	tests := []struct {
		name string
		c    func(t *testing.T) filter.Condition
	}{
		{"unknown field", func(t *testing.T) filter.Condition { return cond(t)(filter.NewMatch("colour", "brown")) }},
		{"enum violation", func(t *testing.T) filter.Condition { return cond(t)(filter.NewMatch("sex", "hermaphrodite")) }},
		{"range on keyword", func(t *testing.T) filter.Condition {
			r, _ := filter.NewRangeFilter(ptr(1), nil, nil, nil)
			return cond(t)(filter.NewRange("taxonomy", r))
		}},
		{"match on date", func(t *testing.T) filter.Condition { return cond(t)(filter.NewMatch("birth", "2020")) }},
		{"bad boolean", func(t *testing.T) filter.Condition {
			inner := expr(t, []filter.Condition{cond(t)(filter.NewMatch("has_annotation", "maybe"))}, nil, nil)
			return cond(t)(filter.NewNested("encounters", inner))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildQuery(schema.Individuals, expr(t, []filter.Condition{tt.c(t)}, nil, nil))
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestTagEscaper(t *testing.T) {
	got := tagEscaper.Replace("a b-c.d")
	if got != `a\ b\-c\.d` {
		t.Errorf("unexpected escape: %q", got)
	}
}
