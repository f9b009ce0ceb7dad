// Package gumby is the library entry point to the wildlife sighting
// indexes: it initializes them, loads and dumps documents, runs
// migrations and searches individuals.
package gumby

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gumby/internal/db"
	dbRedis "github.com/kailas-cloud/gumby/internal/db/redis"
	"github.com/kailas-cloud/gumby/internal/factory"
	"github.com/kailas-cloud/gumby/internal/repository/index"
	"github.com/kailas-cloud/gumby/internal/repository/individual"
	"github.com/kailas-cloud/gumby/internal/repository/sighting"
	"github.com/kailas-cloud/gumby/internal/schema"
	"github.com/kailas-cloud/gumby/internal/usecase/lifecycle"
	"github.com/kailas-cloud/gumby/internal/usecase/loader"
	"github.com/kailas-cloud/gumby/internal/usecase/migrate"
	searchuc "github.com/kailas-cloud/gumby/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultPrefix           = "gumby:"
)

// Model names.
const (
	Individuals = "individuals"
	Sightings   = "sightings"
)

type (
	// InitReport lists initialized models and connection warnings.
	InitReport = lifecycle.Report
	// IndexStatus describes one index.
	IndexStatus = index.Status
	// RandomOptions sizes a synthetic load.
	RandomOptions = loader.RandomOptions
	// RandomResult counts generated documents.
	RandomResult = loader.RandomResult
	// MigrateResult counts migrated documents.
	MigrateResult = migrate.Result
)

// Client is the gumby library entry point.
type Client struct {
	store       db.Store
	indexes     *index.Repo
	individuals *individual.Repo
	sightings   *sighting.Repo
	lifecycle   *lifecycle.Service
	loader      *loader.Service
	search      *searchuc.Service
	logger      *zap.Logger
}

// New connects to the search engine and waits until it answers.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		prefix:           defaultPrefix,
		readinessTimeout: defaultReadinessTimeout,
	}
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("gumby: search engine address required (use WithAddrs)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
		DB:       cfg.db,
	})
	if err != nil {
		return nil, fmt.Errorf("gumby: create store: %w", err)
	}
	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("gumby: search engine not ready: %w", err)
	}

	return wireClient(store, cfg), nil
}

func wireClient(store db.Store, cfg *clientConfig) *Client {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	seed := cfg.seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	indexes := index.New(store, cfg.prefix)
	inds := individual.New(store, cfg.prefix)
	sights := sighting.New(store, cfg.prefix)

	return &Client{
		store:       store,
		indexes:     indexes,
		individuals: inds,
		sightings:   sights,
		lifecycle:   lifecycle.New(indexes, logger),
		loader:      loader.New(inds, sights, factory.New(seed), logger),
		search:      searchuc.New(inds, logger),
		logger:      logger,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks search engine connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Initialize drops and recreates the indexes of the named models, every
// model when none are named. With failGracefully a connection error
// becomes a warning in the report instead of an error.
func (c *Client) Initialize(ctx context.Context, failGracefully bool, models ...string) (InitReport, error) {
	ms, err := schema.Lookup(models...)
	if err != nil {
		return InitReport{}, err
	}
	return c.lifecycle.Initialize(ctx, ms, failGracefully)
}

// Status reports the state of the named indexes, every index when none
// are named.
func (c *Client) Status(ctx context.Context, models ...string) ([]IndexStatus, error) {
	ms, err := schema.Lookup(models...)
	if err != nil {
		return nil, err
	}
	return c.lifecycle.Status(ctx, ms)
}

// LoadRandom saves synthetic individuals and sightings.
func (c *Client) LoadRandom(ctx context.Context, opts RandomOptions) (RandomResult, error) {
	return c.loader.LoadRandom(ctx, opts)
}

// LoadJSON saves a JSON array of documents of model, validating each.
func (c *Client) LoadJSON(ctx context.Context, model string, r io.Reader) (int, error) {
	repo, err := c.documents(model)
	if err != nil {
		return 0, err
	}
	return c.loader.LoadJSON(ctx, repo, r)
}

// Dump writes every document of model to w as a JSON array in id order.
func (c *Client) Dump(ctx context.Context, model string, w io.Writer) (int, error) {
	repo, err := c.documents(model)
	if err != nil {
		return 0, err
	}
	return c.loader.Dump(ctx, repo, w)
}

// Migrate applies a built-in script or a script file to every document
// of model.
func (c *Client) Migrate(ctx context.Context, model, script string) (MigrateResult, error) {
	s, err := migrate.Resolve(script)
	if err != nil {
		return MigrateResult{}, err
	}
	repo, err := c.documents(model)
	if err != nil {
		return MigrateResult{}, err
	}
	return migrate.NewRunner(repo, c.logger).Run(ctx, s.Func())
}

// MigrateIndividuals applies fn to every stored individual, in id order,
// and saves what it leaves behind. The first error stops the run.
func (c *Client) MigrateIndividuals(ctx context.Context, fn func(*Individual) error) (MigrateResult, error) {
	return migrate.NewRunner(c.individuals, c.logger).Run(ctx, migrate.Typed(individual.Codec{}, fn))
}

// Search starts a search over individuals.
func (c *Client) Search() *SearchBuilder {
	return &SearchBuilder{client: c}
}

func (c *Client) documents(model string) (loader.DocumentRepository, error) {
	ms, err := schema.Lookup(model)
	if err != nil {
		return nil, err
	}
	if ms[0].Name == schema.Sightings.Name {
		return c.sightings, nil
	}
	return c.individuals, nil
}
