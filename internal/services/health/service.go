package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

const defaultTimeout = 3 * time.Second

// CheckFunc reports whether one dependency is reachable.
type CheckFunc func(ctx context.Context) error

// Report is the result of running every registered check.
type Report struct {
	OK     bool              `json:"ok"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Service runs dependency checks for the health endpoint.
type Service struct {
	mu      sync.RWMutex
	checks  map[string]CheckFunc
	timeout time.Duration
}

// NewService constructs a health service with no checks registered.
func NewService() *Service {
	return &Service{checks: map[string]CheckFunc{}, timeout: defaultTimeout}
}

// Register adds a named check. A nil check is ignored.
func (s *Service) Register(name string, check CheckFunc) {
	if check == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = check
}

// Status runs all checks concurrently, each bounded by the service timeout.
func (s *Service) Status(ctx context.Context) Report {
	s.mu.RLock()
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	checks := make([]CheckFunc, len(names))
	for i, name := range names {
		checks[i] = s.checks[name]
	}
	s.mu.RUnlock()

	results := make([]string, len(names))
	var wg sync.WaitGroup
	for i := range checks {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			checkCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			if err := checks[i](checkCtx); err != nil {
				results[i] = "down"
				return
			}
			results[i] = "up"
		}(i)
	}
	wg.Wait()

	report := Report{OK: true}
	if len(names) > 0 {
		report.Checks = make(map[string]string, len(names))
	}
	for i, name := range names {
		report.Checks[name] = results[i]
		if results[i] != "up" {
			report.OK = false
		}
	}
	return report
}
