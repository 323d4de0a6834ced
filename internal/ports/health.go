package ports

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrDuplicateChecker is returned when a checker name is registered twice.
var ErrDuplicateChecker = errors.New("duplicate health checker")

// HealthChecker is implemented by adapters that can report their health.
type HealthChecker interface {
	// Name identifies the checker in readiness responses.
	Name() string

	// Check returns nil when the component is usable.
	Check(ctx context.Context) error
}

// HealthRegistry aggregates checkers for the readiness endpoint.
type HealthRegistry interface {
	Register(checker HealthChecker) error
	CheckAll(ctx context.Context) *HealthResult
}

// HealthStatus is the state of one check or of the whole service.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResult is the aggregate of every registered check.
type HealthResult struct {
	Status    HealthStatus            `json:"status"`
	Checks    map[string]*CheckResult `json:"checks"`
	Timestamp time.Time               `json:"timestamp"`
}

// Ready reports whether the service should receive traffic. A degraded
// service is still ready.
func (r *HealthResult) Ready() bool {
	return r.Status != HealthStatusUnhealthy
}

// CheckResult is the outcome of one check.
type CheckResult struct {
	Status   HealthStatus  `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// optionalChecker marks a dependency the service can run without, such as
// the response cache, which is bypassed on failure.
type optionalChecker struct {
	HealthChecker
}

// Optional wraps checker so its failure degrades rather than fails readiness.
func Optional(checker HealthChecker) HealthChecker {
	return optionalChecker{checker}
}

// DefaultHealthRegistry runs checks concurrently and is safe for concurrent use.
type DefaultHealthRegistry struct {
	mu       sync.RWMutex
	checkers []HealthChecker
}

// NewHealthRegistry returns an empty registry.
func NewHealthRegistry() *DefaultHealthRegistry {
	return &DefaultHealthRegistry{}
}

// Register adds checker, rejecting duplicate names.
func (r *DefaultHealthRegistry) Register(checker HealthChecker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.checkers {
		if c.Name() == checker.Name() {
			return fmt.Errorf("%w: %s", ErrDuplicateChecker, checker.Name())
		}
	}
	r.checkers = append(r.checkers, checker)

	return nil
}

// CheckAll runs every check and folds the results: any failing required
// check makes the service unhealthy, a failing optional one degrades it.
func (r *DefaultHealthRegistry) CheckAll(ctx context.Context) *HealthResult {
	r.mu.RLock()
	checkers := append([]HealthChecker(nil), r.checkers...)
	r.mu.RUnlock()

	result := &HealthResult{
		Status:    HealthStatusHealthy,
		Checks:    make(map[string]*CheckResult, len(checkers)),
		Timestamp: time.Now(),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, checker := range checkers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			start := time.Now()
			err := checker.Check(ctx)
			cr := &CheckResult{Status: HealthStatusHealthy, Duration: time.Since(start)}

			_, optional := checker.(optionalChecker)
			if err != nil {
				cr.Message = err.Error()
				cr.Status = HealthStatusUnhealthy
				if optional {
					cr.Status = HealthStatusDegraded
				}
			}

			mu.Lock()
			defer mu.Unlock()

			result.Checks[checker.Name()] = cr
			result.Status = worse(result.Status, cr.Status)
		}()
	}

	wg.Wait()

	return result
}

func worse(a, b HealthStatus) HealthStatus {
	rank := map[HealthStatus]int{HealthStatusHealthy: 0, HealthStatusDegraded: 1, HealthStatusUnhealthy: 2}
	if rank[b] > rank[a] {
		return b
	}

	return a
}
