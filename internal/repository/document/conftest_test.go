package document

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/kailas-cloud/gumby/internal/db"
	"github.com/kailas-cloud/gumby/internal/schema"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetFn      func(ctx context.Context, key, path string, data []byte) error
	jsonSetMultiFn func(ctx context.Context, items []db.JSONSetItem) error
	jsonGetFn      func(ctx context.Context, key string, paths ...string) ([]byte, error)
	searchFn       func(ctx context.Context, q *db.Query) (*db.SearchResult, error)
	searchCountFn  func(ctx context.Context, index, query string) (int, error)
	refreshFn      func(ctx context.Context, name string) error
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	if m.jsonSetMultiFn != nil {
		return m.jsonSetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) Search(ctx context.Context, q *db.Query) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchCount(ctx context.Context, index, query string) (int, error) {
	if m.searchCountFn != nil {
		return m.searchCountFn(ctx, index, query)
	}
	return 0, nil
}

func (m *mockStore) Refresh(ctx context.Context, name string) error {
	if m.refreshFn != nil {
		return m.refreshFn(ctx, name)
	}
	return nil
}

// mapCodec stores documents as plain JSON objects keyed by "id".
type mapCodec struct{}

func (mapCodec) Encode(doc map[string]any) ([]byte, error) { return json.Marshal(doc) }

func (mapCodec) Decode(data []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if _, ok := m["id"].(string); !ok {
		return nil, fmt.Errorf("document has no id")
	}
	return m, nil
}

func (mapCodec) ID(doc map[string]any) string {
	id, _ := doc["id"].(string)
	return id
}

func newTestRepo(t *testing.T) (*Repo[map[string]any], *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New[map[string]any](ms, schema.Individuals, "test-", mapCodec{})
	return repo, ms
}

// entry renders a search hit the way FT.SEARCH returns a "$" field.
func entry(t *testing.T, key string, doc map[string]any) db.SearchEntry {
	t.Helper()
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return db.SearchEntry{Key: key, Fields: map[string]string{"$": string(data)}}
}

func encounter(taxonomy string, annotated bool) map[string]any {
	return map[string]any{
		"id":             "e-" + taxonomy,
		"taxonomy":       taxonomy,
		"has_annotation": annotated,
		"point":          map[string]any{"lat": -1.5, "lon": 36.8},
		"location":       "36.8,-1.5",
	}
}
