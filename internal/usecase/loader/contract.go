package loader

import (
	"context"

	domind "github.com/kailas-cloud/gumby/internal/domain/individual"
	domsighting "github.com/kailas-cloud/gumby/internal/domain/sighting"
	"github.com/kailas-cloud/gumby/internal/schema"
)

// IndividualRepository stores generated individuals.
type IndividualRepository interface {
	SaveMany(ctx context.Context, docs []*domind.Individual) error
	Refresh(ctx context.Context) error
}

// SightingRepository stores generated sightings.
type SightingRepository interface {
	SaveMany(ctx context.Context, docs []domsighting.Sighting) error
	Refresh(ctx context.Context) error
}

// DocumentRepository reads and writes documents of one model in their
// public JSON form.
type DocumentRepository interface {
	Model() schema.Model
	IDs(ctx context.Context) ([]string, error)
	GetDocument(ctx context.Context, id string) (map[string]any, error)
	PutDocument(ctx context.Context, doc map[string]any) error
	Refresh(ctx context.Context) error
}
