package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/agentfs/agentfs/internal/config"
	"github.com/agentfs/agentfs/internal/logging"
	"github.com/agentfs/agentfs/internal/shared/id"
	"github.com/agentfs/agentfs/internal/vfs"
)

// Manager owns the workspaces of all active threads. Isolation between
// workspaces is structural: each gets its own physical subtree and its
// own executor, and the manager never shares state between them.
type Manager struct {
	workspaces sync.Map // thread id -> *Workspace

	storage    config.StorageConfig
	execCfg    ExecConfig
	supervisor *vfs.Supervisor
	log        *logging.Logger
}

// NewManager creates a workspace manager.
func NewManager(cfg *config.Config, supervisor *vfs.Supervisor, log *logging.Logger) *Manager {
	return &Manager{
		storage: cfg.Storage,
		execCfg: ExecConfig{
			BwrapPath:      cfg.Sandbox.BwrapPath,
			DefaultTimeout: cfg.Sandbox.DefaultTimeout,
			MaxOutputBytes: cfg.Sandbox.MaxOutputBytes,
		},
		supervisor: supervisor,
		log:        log,
	}
}

// CreateRequest carries the construction context for one workspace.
type CreateRequest struct {
	OwnerID  string
	ThreadID string // minted when empty
	TicketID string
}

// Create builds the workspace for a thread. The physical workspace
// directory is created under the workspace root keyed by thread id;
// the ticket binding points into the shared ticket store when a ticket
// is linked.
func (m *Manager) Create(ctx context.Context, req CreateRequest) (*Workspace, error) {
	threadID := req.ThreadID
	if threadID == "" {
		threadID = id.NewThreadID().String()
	}
	if _, ok := m.workspaces.Load(threadID); ok {
		return nil, fmt.Errorf("workspace already exists for thread %s", threadID)
	}

	workspaceRoot := filepath.Join(m.storage.WorkspaceRoot, threadID)
	if err := os.MkdirAll(workspaceRoot, 0o755); err != nil {
		return nil, fmt.Errorf("provision workspace storage: %w", err)
	}
	ticketRoot := ""
	if req.TicketID != "" {
		ticketRoot = filepath.Join(m.storage.TicketRoot, req.TicketID)
	}

	w, err := New(ctx, Options{
		OwnerID:       req.OwnerID,
		ThreadID:      threadID,
		TicketID:      req.TicketID,
		WorkspaceRoot: workspaceRoot,
		TicketRoot:    ticketRoot,
		SkillsRoot:    m.storage.SkillsRoot,
	}, m.supervisor, m.execCfg, m.log)
	if err != nil {
		return nil, err
	}

	if existing, loaded := m.workspaces.LoadOrStore(threadID, w); loaded {
		return existing.(*Workspace), nil
	}
	return w, nil
}

// Get returns the workspace for a thread.
func (m *Manager) Get(threadID string) (*Workspace, bool) {
	v, ok := m.workspaces.Load(threadID)
	if !ok {
		return nil, false
	}
	return v.(*Workspace), true
}

// Remove drops a thread's workspace from the manager. Physical storage
// is durable and intentionally left in place.
func (m *Manager) Remove(threadID string) {
	m.workspaces.Delete(threadID)
}

// Count returns the number of active workspaces.
func (m *Manager) Count() int {
	n := 0
	m.workspaces.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
