package vfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/agentfs/agentfs/internal/logging"
)

// Sleep is injectable so readiness polling is testable without real
// delays.
type Sleep func(ctx context.Context, d time.Duration) error

func realSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Supervisor polls mount bindings until their physical prefixes become
// reachable. The remote storage mount may lag behind sandbox creation,
// so readiness is a bounded retry loop, not a single stat.
type Supervisor struct {
	attempts int
	delay    time.Duration
	sleep    Sleep
	observe  func(prefix, outcome string)
	log      *logging.Logger
}

// NewSupervisor creates a supervisor with the given retry budget. A
// zero attempts or delay falls back to the defaults (6 attempts, 2s).
func NewSupervisor(attempts int, delay time.Duration, log *logging.Logger) *Supervisor {
	if attempts <= 0 {
		attempts = 6
	}
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &Supervisor{attempts: attempts, delay: delay, sleep: realSleep, log: log}
}

// WithSleep overrides the sleep function. Test hook.
func (s *Supervisor) WithSleep(sleep Sleep) *Supervisor {
	s.sleep = sleep
	return s
}

// WithObserver registers a per-attempt outcome callback, keyed by the
// binding's virtual prefix. Used for metrics.
func (s *Supervisor) WithObserver(observe func(prefix, outcome string)) *Supervisor {
	s.observe = observe
	return s
}

func (s *Supervisor) record(prefix, outcome string) {
	if s.observe != nil {
		s.observe(prefix, outcome)
	}
}

// EnsureReady polls until the binding's physical prefix is listable,
// and writable for writable bindings. Returns ErrMountNotReady once the
// retry budget is exhausted.
func (s *Supervisor) EnsureReady(ctx context.Context, b *Binding) error {
	if !b.Linked {
		return nil
	}
	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		lastErr = probe(b)
		if lastErr == nil {
			s.record(b.VirtualPrefix, "ready")
			s.log.Info("mount ready",
				zap.String("prefix", b.VirtualPrefix),
				zap.Int("attempt", attempt),
			)
			return nil
		}
		s.record(b.VirtualPrefix, "not_ready")
		s.log.Warn("mount not ready",
			zap.String("prefix", b.VirtualPrefix),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", s.attempts),
			zap.Error(lastErr),
		)
		if attempt < s.attempts {
			if err := s.sleep(ctx, s.delay); err != nil {
				return fmt.Errorf("%w: %v", ErrMountNotReady, err)
			}
		}
	}
	return fmt.Errorf("%w: %s: %v", ErrMountNotReady, b.VirtualPrefix, lastErr)
}

// EnsureAll verifies every binding in the table. Failure on the
// workspace binding is fatal; ticket and skills bindings degrade to an
// empty scratch directory so later lookups fail closed with not-found
// instead of aborting the session.
func (s *Supervisor) EnsureAll(ctx context.Context, t *Table) error {
	for _, b := range t.All() {
		err := s.EnsureReady(ctx, b)
		if err == nil {
			continue
		}
		if b.VirtualPrefix == WorkspacePrefix {
			return err
		}
		empty, mkErr := os.MkdirTemp("", "agentfs-empty-*")
		if mkErr != nil {
			return fmt.Errorf("degrading %s: %w", b.VirtualPrefix, mkErr)
		}
		s.log.Warn("mount degraded to empty directory",
			zap.String("prefix", b.VirtualPrefix),
			zap.Error(err),
		)
		b.PhysicalPrefix = empty
	}
	return nil
}

// probe checks that the physical prefix is listable, and for writable
// bindings that a file can actually be created and removed there.
func probe(b *Binding) error {
	if _, err := os.ReadDir(b.PhysicalPrefix); err != nil {
		return err
	}
	if !b.Writable {
		return nil
	}
	f, err := os.CreateTemp(b.PhysicalPrefix, ".readycheck-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(filepath.Clean(name))
}
