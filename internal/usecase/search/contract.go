package search

import (
	"context"

	domind "github.com/kailas-cloud/gumby/internal/domain/individual"
	"github.com/kailas-cloud/gumby/internal/domain/search/request"
	"github.com/kailas-cloud/gumby/internal/repository/document"
)

// Repository runs validated searches over individuals.
type Repository interface {
	Search(ctx context.Context, req request.Request) (document.Page[*domind.Individual], error)
	CountMatching(ctx context.Context, req request.Request) (int, error)
}
