package vfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentfs/agentfs/internal/logging"
)

func noSleep(calls *int) Sleep {
	return func(ctx context.Context, d time.Duration) error {
		*calls++
		return nil
	}
}

func TestEnsureReadyImmediate(t *testing.T) {
	sleeps := 0
	s := NewSupervisor(3, time.Millisecond, logging.Nop()).WithSleep(noSleep(&sleeps))
	b := &Binding{VirtualPrefix: WorkspacePrefix, PhysicalPrefix: t.TempDir(), Writable: true, Linked: true}

	require.NoError(t, s.EnsureReady(context.Background(), b))
	assert.Zero(t, sleeps)
}

func TestEnsureReadyRetriesUntilBudget(t *testing.T) {
	sleeps := 0
	s := NewSupervisor(4, time.Millisecond, logging.Nop()).WithSleep(noSleep(&sleeps))
	b := &Binding{VirtualPrefix: TicketPrefix, PhysicalPrefix: filepath.Join(t.TempDir(), "absent"), Linked: true}

	err := s.EnsureReady(context.Background(), b)
	assert.ErrorIs(t, err, ErrMountNotReady)
	// No sleep after the final attempt.
	assert.Equal(t, 3, sleeps)
}

func TestEnsureReadyMountAppearsMidway(t *testing.T) {
	parent := t.TempDir()
	target := filepath.Join(parent, "late")

	sleeps := 0
	s := NewSupervisor(5, time.Millisecond, logging.Nop()).WithSleep(func(ctx context.Context, d time.Duration) error {
		sleeps++
		if sleeps == 2 {
			require.NoError(t, os.Mkdir(target, 0o755))
		}
		return nil
	})
	b := &Binding{VirtualPrefix: TicketPrefix, PhysicalPrefix: target, Linked: true}

	require.NoError(t, s.EnsureReady(context.Background(), b))
	assert.Equal(t, 2, sleeps)
}

func TestEnsureReadySkipsUnlinked(t *testing.T) {
	s := NewSupervisor(1, time.Millisecond, logging.Nop())
	b := &Binding{VirtualPrefix: TicketPrefix, PhysicalPrefix: "", Linked: false}

	require.NoError(t, s.EnsureReady(context.Background(), b))
}

func TestEnsureReadyContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewSupervisor(3, time.Millisecond, logging.Nop())
	b := &Binding{VirtualPrefix: TicketPrefix, PhysicalPrefix: filepath.Join(t.TempDir(), "absent"), Linked: true}

	err := s.EnsureReady(ctx, b)
	assert.ErrorIs(t, err, ErrMountNotReady)
}

func TestEnsureReadyObserver(t *testing.T) {
	sleeps := 0
	outcomes := map[string]int{}
	s := NewSupervisor(2, time.Millisecond, logging.Nop()).
		WithSleep(noSleep(&sleeps)).
		WithObserver(func(prefix, outcome string) {
			assert.Equal(t, TicketPrefix, prefix)
			outcomes[outcome]++
		})
	b := &Binding{VirtualPrefix: TicketPrefix, PhysicalPrefix: filepath.Join(t.TempDir(), "absent"), Linked: true}

	_ = s.EnsureReady(context.Background(), b)
	assert.Equal(t, map[string]int{"not_ready": 2}, outcomes)
}

func TestEnsureAllWorkspaceFailureIsFatal(t *testing.T) {
	sleeps := 0
	s := NewSupervisor(2, time.Millisecond, logging.Nop()).WithSleep(noSleep(&sleeps))
	table := NewTable(filepath.Join(t.TempDir(), "absent"), "", t.TempDir())

	err := s.EnsureAll(context.Background(), table)
	assert.ErrorIs(t, err, ErrMountNotReady)
}

func TestEnsureAllDegradesSkillsToEmpty(t *testing.T) {
	sleeps := 0
	s := NewSupervisor(2, time.Millisecond, logging.Nop()).WithSleep(noSleep(&sleeps))
	table := NewTable(t.TempDir(), "", filepath.Join(t.TempDir(), "absent"))

	require.NoError(t, s.EnsureAll(context.Background(), table))

	skills := table.Get(SkillsPrefix)
	entries, err := os.ReadDir(skills.PhysicalPrefix)
	require.NoError(t, err)
	assert.Empty(t, entries)
	t.Cleanup(func() { os.RemoveAll(skills.PhysicalPrefix) })
}
