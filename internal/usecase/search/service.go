// Package search turns CLI-style criteria into individual searches.
package search

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gumby/internal/domain"
	"github.com/kailas-cloud/gumby/internal/domain/geo"
	domind "github.com/kailas-cloud/gumby/internal/domain/individual"
	"github.com/kailas-cloud/gumby/internal/domain/search/filter"
	"github.com/kailas-cloud/gumby/internal/domain/search/request"
	"github.com/kailas-cloud/gumby/internal/metrics"
	"github.com/kailas-cloud/gumby/internal/repository/document"
	"github.com/kailas-cloud/gumby/internal/schema"
)

// Criteria selects individuals. Encounter criteria must hold for one and
// the same encounter.
type Criteria struct {
	// Sex of the individual.
	Sex string

	Taxonomy  string
	Annotated *bool
	Submitter string
	Since     *time.Time
	Near      *filter.Radius

	Limit  int
	Offset int
	Sort   string
}

// Result is one page of matching individuals.
type Result struct {
	Total int
	Hits  []*domind.Individual
}

// Service searches individuals.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// New creates a search service.
func New(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Search runs the criteria and returns the exact total with one page of hits.
func (s *Service) Search(ctx context.Context, c Criteria) (Result, error) {
	start := time.Now()
	defer metrics.ObserveSince("search", start)

	req, err := BuildRequest(c)
	if err != nil {
		return Result{}, err
	}
	page, err := s.repo.Search(ctx, req)
	metrics.CountDocuments(schema.Individuals.Name, "search", len(page.Hits), err)
	if err != nil {
		return Result{}, fmt.Errorf("search individuals: %w", err)
	}

	s.logger.Debug("Search finished",
		zap.Int("total", page.Total),
		zap.Int("hits", len(page.Hits)),
		zap.Duration("duration", time.Since(start)),
	)
	return Result{Total: page.Total, Hits: page.Hits}, nil
}

// Count returns the exact number of individuals matching the criteria;
// paging and sort are ignored.
func (s *Service) Count(ctx context.Context, c Criteria) (int, error) {
	start := time.Now()
	defer metrics.ObserveSince("count", start)

	c.Limit, c.Offset, c.Sort = 0, 0, ""
	req, err := BuildRequest(c)
	if err != nil {
		return 0, err
	}
	n, err := s.repo.CountMatching(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("count individuals: %w", err)
	}
	s.logger.Debug("Count finished", zap.Int("total", n), zap.Duration("duration", time.Since(start)))
	return n, nil
}

// BuildRequest converts criteria into a validated search request.
func BuildRequest(c Criteria) (request.Request, error) {
	var must []filter.Condition

	if c.Sex != "" {
		if err := schema.Individuals.CheckEnum("sex", c.Sex); err != nil {
			return request.Request{}, err
		}
		cond, err := filter.NewMatch("sex", c.Sex)
		if err != nil {
			return request.Request{}, invalid(err)
		}
		must = append(must, cond)
	}

	nested, err := encounterConditions(c)
	if err != nil {
		return request.Request{}, err
	}
	if len(nested) > 0 {
		inner, err := filter.NewExpression(nested, nil, nil)
		if err != nil {
			return request.Request{}, invalid(err)
		}
		cond, err := filter.NewNested("encounters", inner)
		if err != nil {
			return request.Request{}, invalid(err)
		}
		must = append(must, cond)
	}

	expr, err := filter.NewExpression(must, nil, nil)
	if err != nil {
		return request.Request{}, invalid(err)
	}
	req, err := request.New(expr, c.Limit, c.Offset, c.Sort)
	if err != nil {
		return request.Request{}, invalid(err)
	}
	return req, nil
}

func encounterConditions(c Criteria) ([]filter.Condition, error) {
	var conds []filter.Condition
	add := func(cond filter.Condition, err error) error {
		if err != nil {
			return invalid(err)
		}
		conds = append(conds, cond)
		return nil
	}

	if c.Taxonomy != "" {
		if err := add(filter.NewMatch("taxonomy", c.Taxonomy)); err != nil {
			return nil, err
		}
	}
	if c.Annotated != nil {
		if err := add(filter.NewMatch("has_annotation", strconv.FormatBool(*c.Annotated))); err != nil {
			return nil, err
		}
	}
	if c.Submitter != "" {
		if err := add(filter.NewMatch("submitter_id", c.Submitter)); err != nil {
			return nil, err
		}
	}
	if c.Since != nil {
		since := float64(document.EpochMillis(*c.Since))
		r, err := filter.NewRangeFilter(nil, &since, nil, nil)
		if err != nil {
			return nil, invalid(err)
		}
		if err := add(filter.NewRange("date_occurred", r)); err != nil {
			return nil, err
		}
	}
	if c.Near != nil {
		if !geo.ValidateCoordinates(c.Near.Center.Lat, c.Near.Center.Lon) {
			return nil, domain.NewValidationError("near", c.Near.Center.String(), "coordinates out of range")
		}
		if err := add(filter.NewGeoRadius("point", *c.Near)); err != nil {
			return nil, err
		}
	}
	return conds, nil
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrValidation, err)
}
