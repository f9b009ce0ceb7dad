package loader

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/kailas-cloud/gumby/internal/domain"
	domind "github.com/kailas-cloud/gumby/internal/domain/individual"
	domsighting "github.com/kailas-cloud/gumby/internal/domain/sighting"
	"github.com/kailas-cloud/gumby/internal/schema"
)

type mockIndividuals struct {
	saveManyFn func(ctx context.Context, docs []*domind.Individual) error
	refreshFn  func(ctx context.Context) error
}

func (m *mockIndividuals) SaveMany(ctx context.Context, docs []*domind.Individual) error {
	if m.saveManyFn != nil {
		return m.saveManyFn(ctx, docs)
	}
	return nil
}

func (m *mockIndividuals) Refresh(ctx context.Context) error {
	if m.refreshFn != nil {
		return m.refreshFn(ctx)
	}
	return nil
}

type mockSightings struct {
	saveManyFn func(ctx context.Context, docs []domsighting.Sighting) error
	refreshFn  func(ctx context.Context) error
}

func (m *mockSightings) SaveMany(ctx context.Context, docs []domsighting.Sighting) error {
	if m.saveManyFn != nil {
		return m.saveManyFn(ctx, docs)
	}
	return nil
}

func (m *mockSightings) Refresh(ctx context.Context) error {
	if m.refreshFn != nil {
		return m.refreshFn(ctx)
	}
	return nil
}

// memRepo keeps documents in their JSON form keyed by id.
type memRepo struct {
	docs      map[string][]byte
	validate  func(doc map[string]any) error
	refreshes int
}

func newMemRepo() *memRepo {
	return &memRepo{docs: map[string][]byte{}}
}

func (r *memRepo) Model() schema.Model { return schema.Individuals }

func (r *memRepo) IDs(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(r.docs))
	for id := range r.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *memRepo) GetDocument(_ context.Context, id string) (map[string]any, error) {
	data, ok := r.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *memRepo) PutDocument(_ context.Context, doc map[string]any) error {
	if r.validate != nil {
		if err := r.validate(doc); err != nil {
			return err
		}
	}
	id, _ := doc["id"].(string)
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	r.docs[id] = data
	return nil
}

func (r *memRepo) Refresh(_ context.Context) error {
	r.refreshes++
	return nil
}
