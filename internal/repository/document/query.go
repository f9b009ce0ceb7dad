package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/gumby/internal/domain"
	"github.com/kailas-cloud/gumby/internal/domain/search/filter"
	"github.com/kailas-cloud/gumby/internal/schema"
)

// BuildQuery translates expr into an FT.SEARCH query string for model.
// Nested conditions are translated to their element fields without the
// same-element constraint, so the result is a superset that Matches
// narrows down; must_not inside a nested condition is left to Matches.
func BuildQuery(model schema.Model, expr filter.Expression) (string, error) {
	q, err := buildExpression(model, "", expr, false)
	if err != nil {
		return "", err
	}
	if q == "" {
		return "*", nil
	}
	return q, nil
}

func buildExpression(model schema.Model, base string, expr filter.Expression, inNested bool) (string, error) {
	var parts []string

	for _, cond := range expr.Must() {
		p, err := buildCondition(model, base, cond)
		if err != nil {
			return "", err
		}
		if p != "" {
			parts = append(parts, p)
		}
	}

	if len(expr.Should()) > 0 {
		should := make([]string, 0, len(expr.Should()))
		for _, cond := range expr.Should() {
			p, err := buildCondition(model, base, cond)
			if err != nil {
				return "", err
			}
			if p == "" {
				// one unconstrained alternative makes the group match everything
				should = nil
				break
			}
			should = append(should, p)
		}
		if len(should) > 0 {
			parts = append(parts, "("+strings.Join(should, " | ")+")")
		}
	}

	for _, cond := range expr.MustNot() {
		p, err := buildCondition(model, base, cond)
		if err != nil {
			return "", err
		}
		if inNested || cond.IsNested() {
			continue
		}
		parts = append(parts, "-"+p)
	}

	return strings.Join(parts, " "), nil
}

func buildCondition(model schema.Model, base string, cond filter.Condition) (string, error) {
	path := cond.Key()
	if base != "" {
		path = base + "." + path
	}

	f, ok := model.Field(path)
	if !ok {
		return "", fmt.Errorf("%w: %s has no field %q", domain.ErrValidation, model.Name, path)
	}
	alias := model.Alias(path)

	switch {
	case cond.IsNested():
		if f.Type != schema.Nested {
			return "", domain.NewValidationError(path, "", "is not a nested field")
		}
		inner, err := buildExpression(model, path, *cond.Nested(), true)
		if err != nil {
			return "", err
		}
		if inner == "" {
			return "", nil
		}
		return "(" + inner + ")", nil

	case cond.IsGeo():
		if f.Type != schema.Geo {
			return "", domain.NewValidationError(path, "", "radius needs a geo field")
		}
		r := cond.Radius()
		return fmt.Sprintf("@%s:[%s %s %s m]", alias,
			formatNumber(r.Center.Lon), formatNumber(r.Center.Lat), formatNumber(r.Meters)), nil

	case cond.IsRange():
		if f.Type != schema.Date {
			return "", domain.NewValidationError(path, "", "range needs a date field")
		}
		return buildNumericFilter(alias, *cond.Range()), nil

	case cond.IsMatch():
		return buildMatch(model, path, alias, f, cond.Match())
	}
	return "", fmt.Errorf("%w: empty condition on %q", domain.ErrValidation, path)
}

func buildMatch(model schema.Model, path, alias string, f schema.Field, value string) (string, error) {
	switch f.Type {
	case schema.Keyword:
		if err := model.CheckEnum(path, value); err != nil {
			return "", err
		}
		return buildTagFilter(alias, value), nil
	case schema.Boolean:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return "", domain.NewEnumError(path, value, []string{"true", "false"})
		}
		return buildTagFilter(alias, strconv.FormatBool(b)), nil
	case schema.Text:
		return fmt.Sprintf("@%s:(%s)", alias, escapeQuery(value)), nil
	default:
		return "", domain.NewValidationError(path, value, fmt.Sprintf("%s fields do not take exact matches", f.Type))
	}
}

func buildTagFilter(key, value string) string {
	escaped := tagEscaper.Replace(value)
	return fmt.Sprintf("@%s:{%s}", key, escaped)
}

func buildNumericFilter(key string, r filter.Range) string {
	minBound := "-inf"
	maxBound := "+inf"

	if r.GT() != nil {
		minBound = "(" + formatNumber(*r.GT())
	} else if r.GTE() != nil {
		minBound = formatNumber(*r.GTE())
	}

	if r.LT() != nil {
		maxBound = "(" + formatNumber(*r.LT())
	} else if r.LTE() != nil {
		maxBound = formatNumber(*r.LTE())
	}

	return fmt.Sprintf("@%s:[%s %s]", key, minBound, maxBound)
}

// formatNumber avoids exponent notation, which epoch milliseconds would
// otherwise get.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func hasNested(expr filter.Expression) bool {
	for _, group := range [][]filter.Condition{expr.Must(), expr.Should(), expr.MustNot()} {
		for _, c := range group {
			if c.IsNested() {
				return true
			}
		}
	}
	return false
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	"/", "\\/",
	" ", "\\ ",
)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
)
