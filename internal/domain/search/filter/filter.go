package filter

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/gumby/internal/domain/geo"
)

// MaxConditionsPerGroup is the maximum number of conditions per filter group.
const MaxConditionsPerGroup = 32

// Expression is a structured filter with must/should/must_not boolean semantics.
type Expression struct {
	must    []Condition
	should  []Condition
	mustNot []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(must, should, mustNot []Condition) (Expression, error) {
	if len(must) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(should) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many should conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(mustNot) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must_not conditions (max %d)", MaxConditionsPerGroup)
	}
	return Expression{must: must, should: should, mustNot: mustNot}, nil
}

// Must returns the must conditions.
func (e Expression) Must() []Condition { return e.must }

// Should returns the should conditions.
func (e Expression) Should() []Condition { return e.should }

// MustNot returns the must-not conditions.
func (e Expression) MustNot() []Condition { return e.mustNot }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0 && len(e.should) == 0 && len(e.mustNot) == 0
}

// Condition is a single filter clause: a term match, a numeric range,
// a geo radius or a nested sub-expression.
// Keys are dotted document paths such as "sex" or "encounters.taxonomy".
type Condition struct {
	key       string
	match     string
	rangeExpr *Range
	radius    *Radius
	nested    *Expression
}

// NewMatch creates an exact tag match condition.
func NewMatch(key, match string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if match == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, match: match}, nil
}

// NewRange creates a numeric range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, rangeExpr: &r}, nil
}

// NewGeoRadius creates a condition matching points within r of its center.
func NewGeoRadius(key string, r Radius) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if r.Meters <= 0 {
		return Condition{}, fmt.Errorf("radius for key %q must be positive", key)
	}
	return Condition{key: key, radius: &r}, nil
}

// NewNested creates a condition that holds when a single element of the
// array at path satisfies every clause of expr. Keys inside expr are
// relative to path.
func NewNested(path string, expr Expression) (Condition, error) {
	if path == "" {
		return Condition{}, fmt.Errorf("nested path is required")
	}
	if expr.IsEmpty() {
		return Condition{}, fmt.Errorf("nested expression for %q is empty", path)
	}
	if expr.hasNested() {
		return Condition{}, errors.New("nested conditions cannot be nested further")
	}
	return Condition{key: path, nested: &expr}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Match returns the exact match value.
func (c Condition) Match() string { return c.match }

// Range returns the numeric range expression.
func (c Condition) Range() *Range { return c.rangeExpr }

// IsMatch reports whether this is a match condition.
func (c Condition) IsMatch() bool { return c.match != "" }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.rangeExpr != nil }

// Radius returns the geo radius expression.
func (c Condition) Radius() *Radius { return c.radius }

// IsGeo reports whether this is a geo radius condition.
func (c Condition) IsGeo() bool { return c.radius != nil }

// Nested returns the sub-expression of a nested condition.
func (c Condition) Nested() *Expression { return c.nested }

// IsNested reports whether this is a nested condition.
func (c Condition) IsNested() bool { return c.nested != nil }

// Radius is a circle on the globe.
type Radius struct {
	Center geo.Point
	Meters float64
}

// Contains reports whether p lies within the circle.
func (r Radius) Contains(p geo.Point) bool {
	return r.Center.DistanceTo(p) <= r.Meters
}

func (e Expression) hasNested() bool {
	for _, group := range [][]Condition{e.must, e.should, e.mustNot} {
		for _, c := range group {
			if c.IsNested() {
				return true
			}
		}
	}
	return false
}

// Range is a numeric range with gt/gte/lt/lte boundaries.
type Range struct {
	gt  *float64
	gte *float64
	lt  *float64
	lte *float64
}

// NewRangeFilter validates and creates a Range.
// At least one boundary required. gt/gte and lt/lte are mutually exclusive.
func NewRangeFilter(gt, gte, lt, lte *float64) (Range, error) {
	if gt == nil && gte == nil && lt == nil && lte == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	if gt != nil && gte != nil {
		return Range{}, fmt.Errorf("cannot specify both gt and gte")
	}
	if lt != nil && lte != nil {
		return Range{}, fmt.Errorf("cannot specify both lt and lte")
	}
	return Range{gt: gt, gte: gte, lt: lt, lte: lte}, nil
}

// GT returns the lower exclusive bound.
func (r Range) GT() *float64 { return r.gt }

// GTE returns the lower inclusive bound.
func (r Range) GTE() *float64 { return r.gte }

// LT returns the upper exclusive bound.
func (r Range) LT() *float64 { return r.lt }

// LTE returns the upper inclusive bound.
func (r Range) LTE() *float64 { return r.lte }

// Contains reports whether v satisfies every boundary.
func (r Range) Contains(v float64) bool {
	switch {
	case r.gt != nil && v <= *r.gt:
		return false
	case r.gte != nil && v < *r.gte:
		return false
	case r.lt != nil && v >= *r.lt:
		return false
	case r.lte != nil && v > *r.lte:
		return false
	}
	return true
}
