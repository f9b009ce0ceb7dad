package gumby

import (
	"context"
	"time"

	"github.com/kailas-cloud/gumby/internal/domain/geo"
	domind "github.com/kailas-cloud/gumby/internal/domain/individual"
	"github.com/kailas-cloud/gumby/internal/domain/search/filter"
	searchuc "github.com/kailas-cloud/gumby/internal/usecase/search"
)

// Individual is a cataloged animal with its encounters.
type Individual = domind.Individual

// SearchResult is one page of individuals with the exact match count.
type SearchResult = searchuc.Result

// SearchBuilder is a fluent builder for individual searches. Encounter
// criteria must hold for one and the same encounter.
type SearchBuilder struct {
	client   *Client
	criteria searchuc.Criteria
	err      error
}

// Sex filters on the sex of the individual.
func (b *SearchBuilder) Sex(sex string) *SearchBuilder {
	b.criteria.Sex = sex
	return b
}

// Taxonomy filters on the encounter taxonomy.
func (b *SearchBuilder) Taxonomy(taxonomy string) *SearchBuilder {
	b.criteria.Taxonomy = taxonomy
	return b
}

// Annotated filters on whether the encounter has an annotation.
func (b *SearchBuilder) Annotated(has bool) *SearchBuilder {
	b.criteria.Annotated = &has
	return b
}

// Submitter filters on the encounter submitter.
func (b *SearchBuilder) Submitter(id string) *SearchBuilder {
	b.criteria.Submitter = id
	return b
}

// Since keeps encounters that occurred at or after t.
func (b *SearchBuilder) Since(t time.Time) *SearchBuilder {
	b.criteria.Since = &t
	return b
}

// Near keeps encounters within radiusKm of the point.
func (b *SearchBuilder) Near(lat, lon, radiusKm float64) *SearchBuilder {
	p, err := geo.NewPoint(lat, lon)
	if err != nil && b.err == nil {
		b.err = err
	}
	b.criteria.Near = &filter.Radius{Center: p, Meters: radiusKm * 1000}
	return b
}

// Limit sets the maximum number of hits.
func (b *SearchBuilder) Limit(n int) *SearchBuilder {
	b.criteria.Limit = n
	return b
}

// Offset skips the first n matches.
func (b *SearchBuilder) Offset(n int) *SearchBuilder {
	b.criteria.Offset = n
	return b
}

// SortBy orders hits by field, descending when desc is set.
func (b *SearchBuilder) SortBy(field string, desc bool) *SearchBuilder {
	if desc {
		field = "-" + field
	}
	b.criteria.Sort = field
	return b
}

// Do runs the search.
func (b *SearchBuilder) Do(ctx context.Context) (SearchResult, error) {
	if b.err != nil {
		return SearchResult{}, b.err
	}
	return b.client.search.Search(ctx, b.criteria)
}

// Count returns the exact number of matching individuals, ignoring
// Limit, Offset and SortBy.
func (b *SearchBuilder) Count(ctx context.Context) (int, error) {
	if b.err != nil {
		return 0, b.err
	}
	return b.client.search.Count(ctx, b.criteria)
}
