// Package loader fills indexes with synthetic or dumped data and dumps
// them back out.
package loader

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gumby/internal/domain"
	domind "github.com/kailas-cloud/gumby/internal/domain/individual"
	domsighting "github.com/kailas-cloud/gumby/internal/domain/sighting"
	"github.com/kailas-cloud/gumby/internal/factory"
	"github.com/kailas-cloud/gumby/internal/metrics"
	"github.com/kailas-cloud/gumby/internal/schema"
)

// DefaultBatchSize is the number of documents written per round-trip.
const DefaultBatchSize = 100

// Synthetic load defaults, applied to zero RandomOptions fields.
const (
	DefaultIndividuals   = 50
	DefaultMinEncounters = 1
	DefaultMaxEncounters = 20
)

// RandomOptions sizes a synthetic load. Zero fields take the defaults; an
// unset MaxEncounters is raised to MinEncounters when that is larger.
type RandomOptions struct {
	Individuals   int
	MinEncounters int
	MaxEncounters int
	Sightings     int
}

// RandomResult counts generated documents.
type RandomResult struct {
	Individuals int
	Encounters  int
	Sightings   int
}

// Service loads and dumps documents.
type Service struct {
	individuals IndividualRepository
	sightings   SightingRepository
	factory     *factory.Factory
	logger      *zap.Logger
	batchSize   int
}

// New creates a loader. sightings can be nil when no sightings are generated.
func New(individuals IndividualRepository, sightings SightingRepository, f *factory.Factory, logger *zap.Logger) *Service {
	return &Service{
		individuals: individuals,
		sightings:   sightings,
		factory:     f,
		logger:      logger,
		batchSize:   DefaultBatchSize,
	}
}

// LoadRandom generates and saves synthetic individuals (and sightings),
// then refreshes the indexes.
func (s *Service) LoadRandom(ctx context.Context, opts RandomOptions) (RandomResult, error) {
	start := time.Now()
	defer metrics.ObserveSince("load_random", start)

	opts, err := opts.withDefaults()
	if err != nil {
		return RandomResult{}, err
	}

	var res RandomResult
	batch := s.factory.Batch(opts.Individuals, opts.MinEncounters, opts.MaxEncounters)
	for i := 0; i < len(batch); i += s.batchSize {
		chunk := batch[i:min(i+s.batchSize, len(batch))]
		err := s.individuals.SaveMany(ctx, chunk)
		metrics.CountDocuments(schema.Individuals.Name, "load_random", len(chunk), err)
		if err != nil {
			return res, fmt.Errorf("save individuals: %w", err)
		}
		res.Individuals += len(chunk)
		for _, ind := range chunk {
			res.Encounters += len(ind.Encounters)
		}
	}
	if err := s.individuals.Refresh(ctx); err != nil {
		return res, fmt.Errorf("refresh individuals: %w", err)
	}

	if opts.Sightings > 0 {
		if s.sightings == nil {
			return res, errors.New("no sightings repository configured")
		}
		if err := s.loadSightings(ctx, batch, opts.Sightings); err != nil {
			return res, err
		}
		res.Sightings = opts.Sightings
	}

	s.logger.Info("Random data loaded",
		zap.Int("individuals", res.Individuals),
		zap.Int("encounters", res.Encounters),
		zap.Int("sightings", res.Sightings),
		zap.Duration("duration", time.Since(start)),
	)
	return res, nil
}

func (o RandomOptions) withDefaults() (RandomOptions, error) {
	for _, c := range []struct {
		name string
		v    int
	}{
		{"individuals", o.Individuals},
		{"min_encounters", o.MinEncounters},
		{"max_encounters", o.MaxEncounters},
		{"sightings", o.Sightings},
	} {
		if c.v < 0 {
			return o, domain.NewValidationError(c.name, strconv.Itoa(c.v), "must not be negative")
		}
	}

	if o.Individuals == 0 {
		o.Individuals = DefaultIndividuals
	}
	if o.MinEncounters == 0 {
		o.MinEncounters = DefaultMinEncounters
	}
	if o.MaxEncounters == 0 {
		o.MaxEncounters = max(DefaultMaxEncounters, o.MinEncounters)
	}
	if o.MinEncounters > o.MaxEncounters {
		return o, domain.NewValidationError("min_encounters", strconv.Itoa(o.MinEncounters),
			"exceeds max_encounters "+strconv.Itoa(o.MaxEncounters))
	}
	return o, nil
}

// loadSightings generates n sightings; every other one is attributed to a
// generated individual.
func (s *Service) loadSightings(ctx context.Context, individuals []*domind.Individual, n int) error {
	docs := make([]domsighting.Sighting, n)
	for i := range docs {
		docs[i] = s.factory.Sighting()
		if len(individuals) > 0 && i%2 == 0 {
			ind := individuals[(i/2)%len(individuals)]
			docs[i].IndividualID = ind.ID
			docs[i].Taxonomy = ind.Taxonomy
		}
	}
	for i := 0; i < len(docs); i += s.batchSize {
		chunk := docs[i:min(i+s.batchSize, len(docs))]
		err := s.sightings.SaveMany(ctx, chunk)
		metrics.CountDocuments(schema.Sightings.Name, "load_random", len(chunk), err)
		if err != nil {
			return fmt.Errorf("save sightings: %w", err)
		}
	}
	if err := s.sightings.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh sightings: %w", err)
	}
	return nil
}

// LoadJSON reads a JSON array of documents, validates and saves each one,
// then refreshes the index once after the last. It stops at the first
// invalid item; items before it stay saved.
func (s *Service) LoadJSON(ctx context.Context, repo DocumentRepository, r io.Reader) (int, error) {
	model := repo.Model().Name
	start := time.Now()
	defer metrics.ObserveSince("load_json", start)

	dec := json.NewDecoder(bufio.NewReader(r))
	tok, err := dec.Token()
	if err != nil {
		return 0, fmt.Errorf("%w: read json: %w", domain.ErrValidation, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return 0, fmt.Errorf("%w: expected a JSON array of %s", domain.ErrValidation, model)
	}

	n := 0
	for dec.More() {
		var doc map[string]any
		if err := dec.Decode(&doc); err != nil {
			return n, fmt.Errorf("%w: item %d: %w", domain.ErrValidation, n, err)
		}
		err := repo.PutDocument(ctx, doc)
		metrics.CountDocuments(model, "load_json", 1, err)
		if err != nil {
			return n, fmt.Errorf("item %d: %w", n, err)
		}
		n++
	}
	if _, err := dec.Token(); err != nil {
		return n, fmt.Errorf("%w: read json: %w", domain.ErrValidation, err)
	}

	if err := repo.Refresh(ctx); err != nil {
		return n, fmt.Errorf("refresh %s: %w", model, err)
	}
	s.logger.Info("JSON loaded", zap.String("model", model), zap.Int("documents", n))
	return n, nil
}

// Dump writes every document of repo as one JSON array, in id order. The
// output is accepted by LoadJSON. Output is streamed through a buffer, so a
// failure after the first flush leaves a truncated array in w.
func (s *Service) Dump(ctx context.Context, repo DocumentRepository, w io.Writer) (int, error) {
	model := repo.Model().Name
	start := time.Now()
	defer metrics.ObserveSince("dump", start)

	ids, err := repo.IDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list %s: %w", model, err)
	}

	bw := bufio.NewWriter(w)
	n := 0
	if _, err := bw.WriteString("["); err != nil {
		return 0, fmt.Errorf("write dump: %w", err)
	}
	for _, id := range ids {
		doc, err := repo.GetDocument(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue // deleted since listing
		}
		if err != nil {
			return n, fmt.Errorf("get %s %s: %w", model, id, err)
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return n, fmt.Errorf("marshal %s %s: %w", model, id, err)
		}
		if n > 0 {
			if err := bw.WriteByte(','); err != nil {
				return n, fmt.Errorf("write dump: %w", err)
			}
		}
		if _, err := bw.Write(data); err != nil {
			return n, fmt.Errorf("write dump: %w", err)
		}
		n++
	}
	if _, err := bw.WriteString("]\n"); err != nil {
		return n, fmt.Errorf("write dump: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("write dump: %w", err)
	}
	metrics.CountDocuments(model, "dump", n, nil)
	s.logger.Debug("Index dumped", zap.String("model", model), zap.Int("documents", n))
	return n, nil
}
