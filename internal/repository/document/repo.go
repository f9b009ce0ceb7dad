// Package document is a generic JSON document repository over the search
// engine. Typed repositories plug in a Codec for their domain type.
package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/gumby/internal/db"
	"github.com/kailas-cloud/gumby/internal/domain"
	"github.com/kailas-cloud/gumby/internal/domain/search/request"
	"github.com/kailas-cloud/gumby/internal/schema"
)

// DefaultPageSize is the FT.SEARCH page size used when walking an index.
const DefaultPageSize = 500

// Store is the consumer interface for documents (ISP).
type Store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Search(ctx context.Context, q *db.Query) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
	Refresh(ctx context.Context, name string) error
}

// Codec converts a domain document to and from its stored JSON form.
// Decode validates enumerations and identities.
type Codec[T any] interface {
	Encode(doc T) ([]byte, error)
	Decode(data []byte) (T, error)
	ID(doc T) string
}

// Page is one page of search hits.
type Page[T any] struct {
	Total int
	Hits  []T
}

// Repo stores documents of one model.
type Repo[T any] struct {
	store    Store
	model    schema.Model
	prefix   string
	codec    Codec[T]
	pageSize int
}

// New creates a repository for model under the key prefix.
func New[T any](s Store, model schema.Model, prefix string, codec Codec[T]) *Repo[T] {
	return &Repo[T]{store: s, model: model, prefix: prefix, codec: codec, pageSize: DefaultPageSize}
}

// WithPageSize overrides the page size used when walking the index.
func (r *Repo[T]) WithPageSize(n int) *Repo[T] {
	if n > 0 {
		r.pageSize = n
	}
	return r
}

// Model returns the model the repository stores.
func (r *Repo[T]) Model() schema.Model { return r.model }

// Save creates or replaces a document.
func (r *Repo[T]) Save(ctx context.Context, doc T) error {
	key := r.key(r.codec.ID(doc))
	data, err := r.codec.Encode(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

// SaveMany writes documents in one pipelined round-trip.
func (r *Repo[T]) SaveMany(ctx context.Context, docs []T) error {
	if len(docs) == 0 {
		return nil
	}
	items := make([]db.JSONSetItem, len(docs))
	for i, doc := range docs {
		key := r.key(r.codec.ID(doc))
		data, err := r.codec.Encode(doc)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		items[i] = db.JSONSetItem{Key: key, Path: "$", Data: data}
	}
	if err := r.store.JSONSetMulti(ctx, items); err != nil {
		return fmt.Errorf("json.set %d %s: %w", len(items), r.model.Name, err)
	}
	return nil
}

// Get returns a document by id.
func (r *Repo[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	data, err := r.getStored(ctx, id)
	if err != nil {
		return zero, err
	}
	doc, err := r.codec.Decode(data)
	if err != nil {
		return zero, fmt.Errorf("decode %s: %w", r.key(id), err)
	}
	return doc, nil
}

// GetDocument returns a document by id as its public JSON object, without
// the index shadow fields.
func (r *Repo[T]) GetDocument(ctx context.Context, id string) (map[string]any, error) {
	data, err := r.getStored(ctx, id)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", r.key(id), err)
	}
	StripShadows(r.model, m)
	return m, nil
}

// PutDocument validates a public JSON object through the codec and saves it.
// Keys the model does not declare are rejected rather than dropped.
func (r *Repo[T]) PutDocument(ctx context.Context, m map[string]any) error {
	if err := CheckDeclared(r.model, m); err != nil {
		return err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	doc, err := r.codec.Decode(data)
	if err != nil {
		return err
	}
	return r.Save(ctx, doc)
}

// Count returns the number of indexed documents.
func (r *Repo[T]) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, r.indexName(), "*")
	if err != nil {
		return 0, fmt.Errorf("search count %s: %w", r.model.Name, err)
	}
	return n, nil
}

// IDs returns every document id, sorted. The full list is read before the
// caller starts writing, so rewrites cannot shift the pages.
func (r *Repo[T]) IDs(ctx context.Context) ([]string, error) {
	var ids []string
	for offset := 0; ; offset += r.pageSize {
		res, err := r.store.Search(ctx, &db.Query{
			Index:     r.indexName(),
			Query:     "*",
			Offset:    offset,
			Limit:     r.pageSize,
			NoContent: true,
		})
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", r.model.Name, err)
		}
		for _, e := range res.Entries {
			ids = append(ids, r.idFromKey(e.Key))
		}
		if len(res.Entries) < r.pageSize || offset+r.pageSize >= res.Total {
			break
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// Search runs a filtered, sorted and paged query. Nested conditions are
// pushed down as a prefilter and then verified per document, so Total is
// the exact number of matching documents.
func (r *Repo[T]) Search(ctx context.Context, req request.Request) (Page[T], error) {
	expr := req.Filters()
	query, err := BuildQuery(r.model, expr)
	if err != nil {
		return Page[T]{}, err
	}

	sortBy := ""
	if req.SortBy() != "" {
		f, ok := r.model.Field(req.SortBy())
		if !ok || !f.Sortable {
			return Page[T]{}, fmt.Errorf("%w: %s is not sortable", domain.ErrValidation, req.SortBy())
		}
		sortBy = r.model.Alias(req.SortBy())
	}

	if !hasNested(expr) {
		res, err := r.store.Search(ctx, &db.Query{
			Index:        r.indexName(),
			Query:        query,
			Offset:       req.Offset(),
			Limit:        req.Limit(),
			SortBy:       sortBy,
			SortDesc:     req.SortDesc(),
			ReturnFields: []string{"$"},
		})
		if err != nil {
			return Page[T]{}, fmt.Errorf("search %s: %w", r.model.Name, err)
		}
		hits, err := r.decodeEntries(res.Entries)
		if err != nil {
			return Page[T]{}, err
		}
		return Page[T]{Total: res.Total, Hits: hits}, nil
	}

	page := Page[T]{}
	skipped := 0
	for offset := 0; ; offset += r.pageSize {
		res, err := r.store.Search(ctx, &db.Query{
			Index:        r.indexName(),
			Query:        query,
			Offset:       offset,
			Limit:        r.pageSize,
			SortBy:       sortBy,
			SortDesc:     req.SortDesc(),
			ReturnFields: []string{"$"},
		})
		if err != nil {
			return Page[T]{}, fmt.Errorf("search %s: %w", r.model.Name, err)
		}
		for _, e := range res.Entries {
			var m map[string]any
			if err := json.Unmarshal([]byte(unwrapJSONPath(e.Fields["$"])), &m); err != nil {
				return Page[T]{}, fmt.Errorf("unmarshal %s: %w", e.Key, err)
			}
			if !Matches(r.model, m, expr) {
				continue
			}
			page.Total++
			if skipped < req.Offset() {
				skipped++
				continue
			}
			if len(page.Hits) >= req.Limit() {
				continue
			}
			doc, err := r.codec.Decode([]byte(unwrapJSONPath(e.Fields["$"])))
			if err != nil {
				return Page[T]{}, fmt.Errorf("decode %s: %w", e.Key, err)
			}
			page.Hits = append(page.Hits, doc)
		}
		if len(res.Entries) < r.pageSize || offset+r.pageSize >= res.Total {
			break
		}
	}
	return page, nil
}

// CountMatching returns the exact number of documents matching expr.
func (r *Repo[T]) CountMatching(ctx context.Context, req request.Request) (int, error) {
	if !hasNested(req.Filters()) {
		query, err := BuildQuery(r.model, req.Filters())
		if err != nil {
			return 0, err
		}
		n, err := r.store.SearchCount(ctx, r.indexName(), query)
		if err != nil {
			return 0, fmt.Errorf("search count %s: %w", r.model.Name, err)
		}
		return n, nil
	}
	page, err := r.Search(ctx, req)
	if err != nil {
		return 0, err
	}
	return page.Total, nil
}

// Refresh blocks until every written document is searchable.
func (r *Repo[T]) Refresh(ctx context.Context) error {
	if err := r.store.Refresh(ctx, r.indexName()); err != nil {
		return fmt.Errorf("refresh %s: %w", r.model.Name, err)
	}
	return nil
}

func (r *Repo[T]) getStored(ctx context.Context, id string) ([]byte, error) {
	key := r.key(id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("json.get %s: %w", key, err)
	}
	data := unwrapJSONPath(string(raw))
	if data == "" {
		return nil, domain.ErrNotFound
	}
	return []byte(data), nil
}

func (r *Repo[T]) decodeEntries(entries []db.SearchEntry) ([]T, error) {
	out := make([]T, 0, len(entries))
	for _, e := range entries {
		doc, err := r.codec.Decode([]byte(unwrapJSONPath(e.Fields["$"])))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", e.Key, err)
		}
		out = append(out, doc)
	}
	return out, nil
}

func (r *Repo[T]) key(id string) string {
	return r.model.Key(r.prefix, id)
}

func (r *Repo[T]) indexName() string {
	return r.model.IndexName(r.prefix)
}

func (r *Repo[T]) idFromKey(key string) string {
	return strings.TrimPrefix(key, r.model.KeyPrefix(r.prefix))
}

// unwrapJSONPath strips the single-element array JSONPath "$" replies are
// wrapped in; plain objects pass through.
func unwrapJSONPath(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "[") {
		return t
	}
	var arr []json.RawMessage
	if err := json.Unmarshal([]byte(t), &arr); err != nil || len(arr) == 0 {
		return ""
	}
	return string(arr[0])
}
