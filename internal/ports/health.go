package ports

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrDuplicateChecker is returned when a checker name is registered twice.
var ErrDuplicateChecker = errors.New("duplicate health checker")

// defaultCheckTimeout bounds a single check when the caller sets no deadline.
const defaultCheckTimeout = 2 * time.Second

// HealthChecker reports the health of one dependency: a downstream client
// or the Redis snapshot store.
type HealthChecker interface {
	// Name identifies the check in the readiness response.
	Name() string

	// Check returns nil when the dependency is usable.
	Check(ctx context.Context) error
}

// CriticalityReporter is optionally implemented by a HealthChecker. A
// non-critical failure degrades the status instead of failing readiness.
type CriticalityReporter interface {
	Critical() bool
}

// HealthRegistry aggregates the registered checks.
type HealthRegistry interface {
	// Register adds a checker; names must be unique.
	Register(checker HealthChecker) error

	// CheckAll runs every check concurrently.
	CheckAll(ctx context.Context) *HealthResult
}

// HealthStatus is the outcome of one check or of the whole registry.
type HealthStatus string

// Health statuses, from best to worst.
const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// severity orders statuses so the worst one wins.
func (s HealthStatus) severity() int {
	switch s {
	case HealthStatusUnhealthy:
		return 2
	case HealthStatusDegraded:
		return 1
	default:
		return 0
	}
}

// HealthResult aggregates every check.
type HealthResult struct {
	Status    HealthStatus            `json:"status"`
	Checks    map[string]*CheckResult `json:"checks"`
	Timestamp time.Time               `json:"timestamp"`
}

// CheckResult is the outcome of one check.
type CheckResult struct {
	Status   HealthStatus  `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// DefaultHealthRegistry is the concurrency-safe HealthRegistry.
type DefaultHealthRegistry struct {
	mu       sync.RWMutex
	checkers []HealthChecker
	timeout  time.Duration
}

// NewHealthRegistry creates an empty registry.
func NewHealthRegistry() *DefaultHealthRegistry {
	return &DefaultHealthRegistry{timeout: defaultCheckTimeout}
}

// Register implements HealthRegistry.
func (r *DefaultHealthRegistry) Register(checker HealthChecker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.checkers {
		if existing.Name() == checker.Name() {
			return fmt.Errorf("%w: %s", ErrDuplicateChecker, checker.Name())
		}
	}

	r.checkers = append(r.checkers, checker)

	return nil
}

// CheckAll implements HealthRegistry. Each check gets at most the registry
// timeout. The overall status is the worst individual status.
func (r *DefaultHealthRegistry) CheckAll(ctx context.Context) *HealthResult {
	r.mu.RLock()
	checkers := append([]HealthChecker(nil), r.checkers...)
	r.mu.RUnlock()

	results := make([]*CheckResult, len(checkers))

	var g errgroup.Group
	for i, checker := range checkers {
		g.Go(func() error {
			results[i] = r.run(ctx, checker)
			return nil
		})
	}

	_ = g.Wait()

	out := &HealthResult{
		Status:    HealthStatusHealthy,
		Checks:    make(map[string]*CheckResult, len(checkers)),
		Timestamp: time.Now(),
	}

	for i, checker := range checkers {
		out.Checks[checker.Name()] = results[i]

		if results[i].Status.severity() > out.Status.severity() {
			out.Status = results[i].Status
		}
	}

	return out
}

func (r *DefaultHealthRegistry) run(ctx context.Context, checker HealthChecker) *CheckResult {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	err := checker.Check(ctx)
	result := &CheckResult{Status: HealthStatusHealthy, Duration: time.Since(start)}

	if err != nil {
		result.Status = HealthStatusUnhealthy
		if !isCritical(checker) {
			result.Status = HealthStatusDegraded
		}

		result.Message = err.Error()
	}

	return result
}

// isCritical treats checkers as critical unless they report otherwise.
func isCritical(c HealthChecker) bool {
	if r, ok := c.(CriticalityReporter); ok {
		return r.Critical()
	}

	return true
}
