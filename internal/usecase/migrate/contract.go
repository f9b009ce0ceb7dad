package migrate

import (
	"context"

	"github.com/kailas-cloud/gumby/internal/schema"
)

// Repository is the document store a migration rewrites.
type Repository interface {
	Model() schema.Model
	IDs(ctx context.Context) ([]string, error)
	GetDocument(ctx context.Context, id string) (map[string]any, error)
	PutDocument(ctx context.Context, doc map[string]any) error
	Refresh(ctx context.Context) error
}
