package health

import (
	"context"

	"github.com/kailas-cloud/gumby/internal/repository/index"
	"github.com/kailas-cloud/gumby/internal/schema"
)

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// IndexInspector reports the state of a model's index.
type IndexInspector interface {
	Status(ctx context.Context, m schema.Model) (index.Status, error)
}
