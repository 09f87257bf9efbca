// Package health aggregates component checks into one service status.
package health

import (
	"context"
	"sync"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component (the cache) is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates analyses cannot be served.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

// Component names reported in Report.Checks.
const (
	ComponentEmbedding = "embedding"
	ComponentCache     = "cache"
)

// DefaultTimeout bounds a whole Check call.
const DefaultTimeout = 5 * time.Second

// Report aggregates health check results. Errors holds the cause of every
// failing check for logs; it is never sent to clients.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	Errors map[string]error
}

// Service coordinates health checks.
type Service struct {
	embedding EmbeddingChecker
	cache     CachePinger
	timeout   time.Duration
}

// New creates a Service. cache can be nil when caching is disabled.
func New(embedding EmbeddingChecker, cache CachePinger) *Service {
	return &Service{embedding: embedding, cache: cache, timeout: DefaultTimeout}
}

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check runs all component checks concurrently.
// A failing embedding provider makes the service unhealthy; a failing cache only degrades it.
func (s *Service) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	probes := map[string]func(context.Context) error{
		ComponentEmbedding: s.embedding.HealthCheck,
	}
	if s.cache != nil {
		probes[ComponentCache] = s.cache.Ping
	}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		errs = make(map[string]error)
	)
	for name, probe := range probes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := probe(ctx); err != nil {
				mu.Lock()
				errs[name] = err
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	report := Report{Status: Healthy, Checks: make(map[string]CheckResult, len(probes)), Errors: errs}
	for name := range probes {
		if _, failed := errs[name]; !failed {
			report.Checks[name] = CheckOK
			continue
		}
		report.Checks[name] = CheckError
		switch {
		case name == ComponentEmbedding:
			report.Status = Unhealthy
		case report.Status == Healthy:
			report.Status = Degraded
		}
	}
	return report
}
