// Package migrate rewrites every document of an index in place.
package migrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gumby/internal/domain"
	"github.com/kailas-cloud/gumby/internal/metrics"
	"github.com/kailas-cloud/gumby/internal/repository/document"
)

// Document is the public JSON form of a stored document.
type Document = map[string]any

// Func rewrites one document in place.
type Func func(doc Document) error

// Typed adapts a function over a decoded domain value, such as
// func(*individual.Individual) error, into a Func. T should be a pointer
// type so fn's changes are kept.
func Typed[T any](codec document.Codec[T], fn func(T) error) Func {
	return func(doc Document) error {
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("marshal document: %w", err)
		}
		v, err := codec.Decode(data)
		if err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
		out, err := codec.Encode(v)
		if err != nil {
			return err
		}
		var m map[string]any
		if err := json.Unmarshal(out, &m); err != nil {
			return fmt.Errorf("unmarshal document: %w", err)
		}
		clear(doc)
		maps.Copy(doc, m)
		return nil
	}
}

// Result counts the documents a run rewrote. Failed is 1 when the run
// stopped on an error.
type Result struct {
	Migrated int
	Failed   int
}

// Runner applies a Func to every document of a repository.
type Runner struct {
	repo   Repository
	logger *zap.Logger
}

// NewRunner creates a migration runner.
func NewRunner(repo Repository, logger *zap.Logger) *Runner {
	return &Runner{repo: repo, logger: logger}
}

// Run loads every document, applies fn, saves the result and finally
// refreshes the index. The first failure stops the run; documents already
// rewritten stay rewritten.
func (r *Runner) Run(ctx context.Context, fn Func) (Result, error) {
	model := r.repo.Model().Name
	start := time.Now()
	defer metrics.ObserveSince("migrate", start)

	ids, err := r.repo.IDs(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list %s: %w", model, err)
	}

	var res Result
	fail := func(id string, err error) (Result, error) {
		res.Failed = 1
		metrics.CountDocuments(model, "migrate", 1, err)
		r.logger.Error("Migration stopped",
			zap.String("model", model),
			zap.String("id", id),
			zap.Int("migrated", res.Migrated),
			zap.Error(err),
		)
		return res, fmt.Errorf("migrate %s %s: %w", model, id, err)
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return fail(id, err)
		}
		doc, err := r.repo.GetDocument(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue // deleted since listing
		}
		if err != nil {
			return fail(id, err)
		}
		if err := fn(doc); err != nil {
			return fail(id, err)
		}
		if err := r.repo.PutDocument(ctx, doc); err != nil {
			return fail(id, err)
		}
		res.Migrated++
	}
	metrics.CountDocuments(model, "migrate", res.Migrated, nil)

	if err := r.repo.Refresh(ctx); err != nil {
		return res, fmt.Errorf("refresh %s: %w", model, err)
	}

	r.logger.Info("Migration finished",
		zap.String("model", model),
		zap.Int("migrated", res.Migrated),
		zap.Duration("duration", time.Since(start)),
	)
	return res, nil
}
