// Package request holds the validated parameters of an individuals search.
package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/gumby/internal/domain/search/filter"
)

// Search parameter limits.
const (
	DefaultLimit = 20
	MaxLimit     = 1000
)

// Request is a validated search query.
type Request struct {
	filters  filter.Expression
	limit    int
	offset   int
	sortBy   string
	sortDesc bool
}

// New validates and normalizes search parameters.
// sort is a field path, optionally prefixed with "-" for descending order;
// empty means engine order. Limit defaults to DefaultLimit and is clamped
// to MaxLimit.
func New(filters filter.Expression, limit, offset int, sort string) (Request, error) {
	if offset < 0 {
		return Request{}, fmt.Errorf("offset must not be negative")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	desc := strings.HasPrefix(sort, "-")
	sortBy := strings.TrimPrefix(sort, "-")
	if desc && sortBy == "" {
		return Request{}, fmt.Errorf("sort field is required after %q", "-")
	}

	return Request{
		filters:  filters,
		limit:    limit,
		offset:   offset,
		sortBy:   sortBy,
		sortDesc: desc,
	}, nil
}

// Filters returns the filter expression.
func (r *Request) Filters() filter.Expression { return r.filters }

// Limit returns the maximum results to return.
func (r *Request) Limit() int { return r.limit }

// Offset returns the number of matches to skip.
func (r *Request) Offset() int { return r.offset }

// SortBy returns the sort field path, empty for engine order.
func (r *Request) SortBy() string { return r.sortBy }

// SortDesc reports descending sort order.
func (r *Request) SortDesc() bool { return r.sortDesc }
