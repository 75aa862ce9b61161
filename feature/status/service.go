package status

import (
	"context"
	stdsync "sync"
	"time"

	"gearsync/feature/audit"
	"gearsync/feature/sync"

	"go.uber.org/zap"
)

// Service exposes the sync engine's state to operators and triggers
// manual cycles.
type Service struct {
	driver *sync.Driver
	cfg    *sync.Config
	store  *audit.Store
	logger *zap.Logger

	mu      stdsync.Mutex
	running bool
	last    []sync.CycleResult
}

// NewService creates the status service. store may be nil when no audit
// database is configured.
func NewService(driver *sync.Driver, cfg *sync.Config, store *audit.Store, logger *zap.Logger) *Service {
	return &Service{driver: driver, cfg: cfg, store: store, logger: logger}
}

// Snapshot is the operator-facing view of the engine.
type Snapshot struct {
	State       sync.State         `json:"state"`
	LastResults []sync.CycleResult `json:"last_results"`
}

// Snapshot returns the current driver state and the results of the most
// recent cycle.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:       s.driver.State(),
		LastResults: s.last,
	}
}

// History returns recent cycle records from the audit store.
func (s *Service) History(ctx context.Context, limit int) ([]audit.CycleRecord, error) {
	if s.store == nil {
		return []audit.CycleRecord{}, nil
	}
	return s.store.Recent(ctx, limit)
}

// RunCycle triggers one cycle over the configured window. Only one cycle
// runs at a time; a second trigger while busy is rejected.
func (s *Service) RunCycle(ctx context.Context) ([]sync.CycleResult, bool) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, false
	}
	s.running = true
	s.mu.Unlock()

	since := time.Now().UTC().Add(-s.cfg.Window())
	results := s.driver.Run(ctx, since)

	s.mu.Lock()
	s.running = false
	s.last = results
	s.mu.Unlock()

	return results, true
}

// RunLoop runs cycles on the configured interval until the context ends.
// The first cycle starts immediately.
func (s *Service) RunLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval())
	defer ticker.Stop()

	for {
		if _, ok := s.RunCycle(ctx); !ok {
			s.logger.Warn("Skipping scheduled cycle, another one is running")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
