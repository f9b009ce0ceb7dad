// Package index manages the search index of each model together with the
// metadata hash recorded next to it.
package index

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/gumby/internal/db"
	"github.com/kailas-cloud/gumby/internal/domain"
	"github.com/kailas-cloud/gumby/internal/schema"
)

// store is the consumer interface for index management (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
	IndexExists(ctx context.Context, name string) (bool, error)
	IndexInfo(ctx context.Context, name string) (db.IndexInfo, error)
}

// Status describes one model's index.
type Status struct {
	Model     string
	Index     string
	Exists    bool
	Docs      int
	Indexing  bool
	CreatedAt *time.Time
}

// Repo creates, drops and inspects model indexes.
type Repo struct {
	store  store
	prefix string
	now    func() time.Time
}

// New creates an index repository under the key prefix.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix, now: time.Now}
}

// Recreate drops the model's index together with its documents, then
// creates it afresh: HSET metadata, then FT.CREATE. On FT.CREATE failure
// the metadata is rolled back via DEL.
func (r *Repo) Recreate(ctx context.Context, m schema.Model) error {
	def, err := m.IndexDefinition(r.prefix)
	if err != nil {
		return fmt.Errorf("build index %s: %w", m.Name, err)
	}

	if err := r.drop(ctx, m); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	metaKey := r.metaKey(m.Name)
	hashData, err := metaToHash(m, def, r.now())
	if err != nil {
		return err
	}
	if err := r.store.HSet(ctx, metaKey, hashData); err != nil {
		return fmt.Errorf("hset meta %s: %w", m.Name, err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		cleanupErr := r.store.Del(ctx, metaKey)
		return errors.Join(fmt.Errorf("create index %s: %w", def.Name, err), cleanupErr)
	}
	return nil
}

func (r *Repo) drop(ctx context.Context, m schema.Model) error {
	name := m.IndexName(r.prefix)

	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check index %s: %w", name, err)
	}
	if !exists {
		// stale metadata from an interrupted run
		if err := r.store.Del(ctx, r.metaKey(m.Name)); err != nil {
			return fmt.Errorf("del meta %s: %w", m.Name, err)
		}
		return domain.ErrNotFound
	}

	if err := r.store.DropIndex(ctx, name, true); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w", name, err)
	}
	if err := r.store.Del(ctx, r.metaKey(m.Name)); err != nil {
		return fmt.Errorf("del meta %s: %w", m.Name, err)
	}
	return nil
}

// Status reports whether the model's index exists, how many documents it
// holds and when it was created.
func (r *Repo) Status(ctx context.Context, m schema.Model) (Status, error) {
	st := Status{Model: m.Name, Index: m.IndexName(r.prefix)}

	info, err := r.store.IndexInfo(ctx, st.Index)
	if errors.Is(err, db.ErrIndexNotFound) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("index info %s: %w", st.Index, err)
	}
	st.Exists = true
	st.Docs = info.NumDocs
	st.Indexing = info.Indexing

	meta, err := r.store.HGetAll(ctx, r.metaKey(m.Name))
	if err != nil {
		return st, fmt.Errorf("hgetall meta %s: %w", m.Name, err)
	}
	if len(meta) > 0 {
		createdAt, err := createdAtFromHash(meta)
		if err != nil {
			return st, fmt.Errorf("meta %s: %w", m.Name, err)
		}
		st.CreatedAt = &createdAt
	}
	return st, nil
}

// Key patterns: {prefix}meta:{model}, {prefix}{model}:idx, {prefix}{model}:

func (r *Repo) metaKey(model string) string {
	return fmt.Sprintf("%smeta:%s", r.prefix, model)
}
