package reporting

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/KhaledAOsman/empower-task/domain/fault"
	"github.com/KhaledAOsman/empower-task/domain/metrics"
	"github.com/KhaledAOsman/empower-task/domain/policy"
	"github.com/KhaledAOsman/empower-task/modules/registry"
	"github.com/KhaledAOsman/empower-task/modules/tasks"
)

// CacheStore is the slice of the cache module the reporting service uses.
// It stays nil when Redis is not configured; every call then computes
// directly.
type CacheStore interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

// Service computes per-employee performance summaries over the stored
// tasks, with an optional read-through cache in front of the computation.
// Cached summaries are a stale-tolerant view, never authoritative: the
// overdue count drifts as days pass, so the cache TTL bounds staleness
// even between invalidations.
type Service struct {
	tasks    tasks.TasksPort
	registry registry.RegistryPort
	cache    CacheStore
	sfGroup  singleflight.Group // Prevents cache stampede
	now      func() time.Time
}

// NewService creates a reporting Service. The ports may arrive later,
// through dependency injection, but must be set before the first call.
func NewService(tasksPort tasks.TasksPort, registryPort registry.RegistryPort) *Service {
	return &Service{
		tasks:    tasksPort,
		registry: registryPort,
		now:      time.Now,
	}
}

// SetCache wires the metrics cache. Leaving it unset disables caching.
func (s *Service) SetCache(c CacheStore) {
	s.cache = c
}

// cacheKey returns the cache key for an employee's summary.
func cacheKey(employeeID string) string {
	return "employee:" + employeeID
}

// EmployeeMetrics returns the performance summary for one employee.
// Managers read anyone's figures, employees only their own. Authorization
// runs on every call before the cache is consulted, so a cached summary
// never bypasses a denial.
func (s *Service) EmployeeMetrics(ctx context.Context, actor policy.Actor, employeeID string) (*EmployeeMetricsResponse, error) {
	if d := policy.Authorize(actor, policy.OpReadMetrics, policy.Target{OwnerID: employeeID}); !d.Allowed {
		return nil, fault.Authorization(string(d.Reason))
	}

	if _, err := s.registry.GetProfile(ctx, employeeID); err != nil {
		if fault.CodeOf(err) == fault.CodeNotFound {
			return nil, fault.Newf(fault.CodeNotFound, "employee %s not found", employeeID)
		}
		return nil, err
	}

	if s.cache == nil {
		return s.compute(ctx, employeeID)
	}

	key := cacheKey(employeeID)

	var cached EmployeeMetricsResponse
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		log.Printf("[reporting] Cache error for %s: %v", employeeID, err)
	}
	if found {
		return &cached, nil
	}

	// Cache miss. Concurrent recomputes for the same employee collapse
	// into one database pass.
	val, err, _ := s.sfGroup.Do(key, func() (any, error) {
		return s.compute(ctx, employeeID)
	})
	if err != nil {
		return nil, err
	}
	resp := val.(*EmployeeMetricsResponse)

	if err := s.cache.Set(ctx, key, resp); err != nil {
		log.Printf("[reporting] Warning: failed to cache metrics for %s: %v", employeeID, err)
	}

	return resp, nil
}

// InvalidateEmployee drops the cached summary for one employee. A no-op
// without a cache.
func (s *Service) InvalidateEmployee(ctx context.Context, employeeID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey(employeeID)); err != nil {
		log.Printf("[reporting] Warning: failed to invalidate metrics for %s: %v", employeeID, err)
	}
}

// compute fetches the employee's tasks and runs the metrics engine.
func (s *Service) compute(ctx context.Context, employeeID string) (*EmployeeMetricsResponse, error) {
	taskList, err := s.tasks.ForAssignee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return &EmployeeMetricsResponse{
		EmployeeID: employeeID,
		Summary:    metrics.Compute(taskList, s.now()),
	}, nil
}
