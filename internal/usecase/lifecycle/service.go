// Package lifecycle initializes and inspects the model indexes.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gumby/internal/db"
	"github.com/kailas-cloud/gumby/internal/metrics"
	"github.com/kailas-cloud/gumby/internal/repository/index"
	"github.com/kailas-cloud/gumby/internal/schema"
)

// Warning is a connection failure suppressed by graceful initialization.
type Warning struct {
	Model string
	Err   error
}

func (w Warning) String() string {
	return fmt.Sprintf("connection error while initializing '%s': %v", w.Model, w.Err)
}

// Report lists the models initialized and the failures that were suppressed.
type Report struct {
	Initialized []string
	Warnings    []Warning
}

// Service drops and recreates model indexes.
type Service struct {
	repo   IndexRepository
	logger *zap.Logger
}

// New creates a lifecycle service.
func New(repo IndexRepository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Initialize drops and recreates the index of each model; no models means
// every declared model. With failGracefully a connection error is logged,
// recorded as a warning and the next model is processed; otherwise it is
// returned as is. Other errors are always returned.
func (s *Service) Initialize(ctx context.Context, models []schema.Model, failGracefully bool) (Report, error) {
	if len(models) == 0 {
		models = schema.All()
	}

	var report Report
	for _, m := range models {
		start := time.Now()
		err := s.repo.Recreate(ctx, m)
		metrics.ObserveSince("initialize", start)

		if err == nil {
			report.Initialized = append(report.Initialized, m.Name)
			s.logger.Info("Index initialized", zap.String("model", m.Name), zap.Duration("duration", time.Since(start)))
			continue
		}
		if failGracefully && errors.Is(err, db.ErrConnection) {
			s.logger.Warn(fmt.Sprintf("connection error while initializing '%s'", m.Name),
				zap.String("model", m.Name),
				zap.Error(err),
			)
			report.Warnings = append(report.Warnings, Warning{Model: m.Name, Err: err})
			continue
		}
		return report, fmt.Errorf("initialize %s: %w", m.Name, err)
	}
	return report, nil
}

// Status returns the index status of each model; no models means every
// declared model.
func (s *Service) Status(ctx context.Context, models []schema.Model) ([]index.Status, error) {
	if len(models) == 0 {
		models = schema.All()
	}
	out := make([]index.Status, 0, len(models))
	for _, m := range models {
		st, err := s.repo.Status(ctx, m)
		if err != nil {
			return nil, fmt.Errorf("status %s: %w", m.Name, err)
		}
		out = append(out, st)
	}
	return out, nil
}
