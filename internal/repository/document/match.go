package document

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/gumby/internal/domain/geo"
	"github.com/kailas-cloud/gumby/internal/domain/search/filter"
	"github.com/kailas-cloud/gumby/internal/schema"
)

// Matches evaluates expr against a stored document. A nested condition holds
// when one element of the array satisfies its whole sub-expression.
// Unknown fields never match.
func Matches(model schema.Model, doc map[string]any, expr filter.Expression) bool {
	return matchExpression(model, "", doc, expr)
}

func matchExpression(model schema.Model, base string, doc map[string]any, expr filter.Expression) bool {
	for _, c := range expr.Must() {
		if !matchCondition(model, base, doc, c) {
			return false
		}
	}
	if len(expr.Should()) > 0 {
		matched := false
		for _, c := range expr.Should() {
			if matchCondition(model, base, doc, c) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, c := range expr.MustNot() {
		if matchCondition(model, base, doc, c) {
			return false
		}
	}
	return true
}

func matchCondition(model schema.Model, base string, doc map[string]any, c filter.Condition) bool {
	path := c.Key()
	if base != "" {
		path = base + "." + path
	}
	f, ok := model.Field(path)
	if !ok {
		return false
	}
	v, present := doc[c.Key()]
	if !present || v == nil {
		return false
	}

	switch {
	case c.IsNested():
		elems, ok := v.([]any)
		if !ok {
			return false
		}
		for _, e := range elems {
			m, ok := e.(map[string]any)
			if ok && matchExpression(model, path, m, *c.Nested()) {
				return true
			}
		}
		return false

	case c.IsGeo():
		p, ok := pointOf(v)
		return ok && c.Radius().Contains(p)

	case c.IsRange():
		s, ok := v.(string)
		if !ok {
			return false
		}
		t, err := ParseTime(s)
		if err != nil {
			return false
		}
		return c.Range().Contains(float64(EpochMillis(t)))

	case c.IsMatch():
		return matchValue(f, v, c.Match())
	}
	return false
}

func matchValue(f schema.Field, v any, want string) bool {
	switch f.Type {
	case schema.Boolean:
		b, ok := v.(bool)
		if !ok {
			return false
		}
		w, err := strconv.ParseBool(want)
		return err == nil && b == w
	case schema.Text:
		s, ok := v.(string)
		if !ok {
			return false
		}
		tokens := strings.Fields(strings.ToLower(s))
		for _, term := range strings.Fields(strings.ToLower(want)) {
			found := false
			for _, tok := range tokens {
				if tok == term {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	default:
		s, ok := v.(string)
		return ok && s == want
	}
}

func pointOf(v any) (geo.Point, bool) {
	switch p := v.(type) {
	case string:
		pt, err := geo.Parse(p)
		return pt, err == nil
	case map[string]any:
		lat, okLat := p["lat"].(float64)
		lon, okLon := p["lon"].(float64)
		if !okLat || !okLon {
			return geo.Point{}, false
		}
		return geo.Point{Lat: lat, Lon: lon}, true
	}
	return geo.Point{}, false
}
