package lifecycle

import (
	"context"

	"github.com/kailas-cloud/gumby/internal/repository/index"
	"github.com/kailas-cloud/gumby/internal/schema"
)

// IndexRepository defines the storage contract for model indexes.
type IndexRepository interface {
	Recreate(ctx context.Context, m schema.Model) error
	Status(ctx context.Context, m schema.Model) (index.Status, error)
}
