// Package health checks the search engine and the model indexes.
package health

import (
	"context"

	"github.com/kailas-cloud/gumby/internal/schema"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the engine is up but an index is missing.
	Degraded Status = "degraded"
	// Unhealthy indicates the engine cannot be reached.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckMissing indicates an index that has not been initialized.
	CheckMissing CheckResult = "missing"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db      DBPinger
	indexes IndexInspector
	models  []schema.Model
}

// New creates a Service. indexes can be nil to check the connection only.
func New(db DBPinger, indexes IndexInspector, models []schema.Model) *Service {
	return &Service{db: db, indexes: indexes, models: models}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		return Report{Status: Unhealthy, Checks: checks}
	}
	checks["database"] = CheckOK

	status := Healthy
	if s.indexes != nil {
		for _, m := range s.models {
			st, err := s.indexes.Status(ctx, m)
			switch {
			case err != nil:
				checks["index:"+m.Name] = CheckError
				status = Degraded
			case !st.Exists:
				checks["index:"+m.Name] = CheckMissing
				status = Degraded
			default:
				checks["index:"+m.Name] = CheckOK
			}
		}
	}

	return Report{Status: status, Checks: checks}
}

// Healthy reports whether the engine is reachable.
func (s *Service) Healthy(ctx context.Context) bool {
	return s.db.Ping(ctx) == nil
}
