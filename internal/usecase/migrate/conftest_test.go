package migrate

import (
	"context"
	"encoding/json"
	"slices"
	"testing"

	"github.com/kailas-cloud/gumby/internal/domain"
	"github.com/kailas-cloud/gumby/internal/schema"
)

// memRepo is an in-memory Repository holding documents as JSON.
type memRepo struct {
	docs      map[string][]byte
	refreshed int
	putErr    error
	validate  func(doc map[string]any) error
}

func newMemRepo(t *testing.T, docs ...map[string]any) *memRepo {
	t.Helper()
	r := &memRepo{docs: make(map[string][]byte)}
	for _, d := range docs {
		data, err := json.Marshal(d)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r.docs[d["id"].(string)] = data
	}
	return r
}

func (r *memRepo) Model() schema.Model { return schema.Individuals }

func (r *memRepo) IDs(context.Context) ([]string, error) {
	ids := make([]string, 0, len(r.docs))
	for id := range r.docs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (r *memRepo) GetDocument(_ context.Context, id string) (map[string]any, error) {
	data, ok := r.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	var m map[string]any
	err := json.Unmarshal(data, &m)
	return m, err
}

func (r *memRepo) PutDocument(_ context.Context, doc map[string]any) error {
	if r.putErr != nil {
		return r.putErr
	}
	if r.validate != nil {
		if err := r.validate(doc); err != nil {
			return err
		}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	r.docs[doc["id"].(string)] = data
	return nil
}

func (r *memRepo) Refresh(context.Context) error {
	r.refreshed++
	return nil
}

func (r *memRepo) get(t *testing.T, id string) map[string]any {
	t.Helper()
	m, err := r.GetDocument(context.Background(), id)
	if err != nil {
		t.Fatalf("get %s: %v", id, err)
	}
	return m
}
