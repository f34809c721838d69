// Package workspace assembles the per-thread filesystem core: binding
// table, resolver, skill gate, file facade and command executor.
package workspace

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agentfs/agentfs/internal/fileops"
	"github.com/agentfs/agentfs/internal/logging"
	"github.com/agentfs/agentfs/internal/sandbox"
	"github.com/agentfs/agentfs/internal/skills"
	"github.com/agentfs/agentfs/internal/vfs"
)

// Options is the immutable context supplied once at workspace
// construction.
type Options struct {
	OwnerID  string
	ThreadID string
	TicketID string

	// Physical storage handles for the three mount bindings.
	WorkspaceRoot string
	TicketRoot    string // empty when no ticket is linked
	SkillsRoot    string
}

// Workspace is one conversation thread's private filesystem view. One
// logical caller drives it at a time; distinct workspaces share no
// mutable state.
type Workspace struct {
	OwnerID  string
	ThreadID string
	TicketID string

	gate     *skills.Gate
	catalog  *skills.Catalog
	resolver *vfs.Resolver
	files    *fileops.Facade
	executor *sandbox.Executor
	log      *logging.Logger

	CreatedAt time.Time
}

// New builds a workspace, waiting for its mounts to become ready.
// Workspace mount failure is fatal; ticket and skills failures degrade
// to empty directories inside the supervisor.
func New(ctx context.Context, opts Options, supervisor *vfs.Supervisor, execCfg ExecConfig, log *logging.Logger) (*Workspace, error) {
	if opts.ThreadID == "" {
		return nil, fmt.Errorf("thread id required")
	}
	table := vfs.NewTable(opts.WorkspaceRoot, opts.TicketRoot, opts.SkillsRoot)
	if err := supervisor.EnsureAll(ctx, table); err != nil {
		return nil, err
	}

	wsLog := log.With(zap.String("thread_id", opts.ThreadID))
	gate := skills.NewGate()
	resolver := vfs.NewResolver(table, gate)
	w := &Workspace{
		OwnerID:   opts.OwnerID,
		ThreadID:  opts.ThreadID,
		TicketID:  opts.TicketID,
		gate:      gate,
		catalog:   skills.NewCatalog(table.Get(vfs.SkillsPrefix).PhysicalPrefix, wsLog),
		resolver:  resolver,
		files:     fileops.NewFacade(resolver, wsLog),
		executor:  sandbox.NewExecutor(table.Get(vfs.WorkspacePrefix).PhysicalPrefix, execCfg.BwrapPath, execCfg.DefaultTimeout, execCfg.MaxOutputBytes, wsLog),
		log:       wsLog,
		CreatedAt: time.Now(),
	}
	return w, nil
}

// ExecConfig carries executor settings into workspace construction.
type ExecConfig struct {
	BwrapPath      string
	DefaultTimeout time.Duration
	MaxOutputBytes int
}

// Files returns the file-operation facade.
func (w *Workspace) Files() *fileops.Facade {
	return w.files
}

// Resolver returns the virtual path resolver.
func (w *Workspace) Resolver() *vfs.Resolver {
	return w.resolver
}

// Skills returns the discovery catalog over the skills mount.
func (w *Workspace) Skills() *skills.Catalog {
	return w.catalog
}

// LoadSkill validates the identifier against the catalog and adds it
// to the turn's loaded set. Returns the skill's discovery info.
func (w *Workspace) LoadSkill(identifier string) (skills.Info, error) {
	skillID, err := skills.ParseIdentifier(identifier)
	if err != nil {
		return skills.Info{}, fmt.Errorf("%w: %v", vfs.ErrPathNotFound, err)
	}
	info, err := w.catalog.Get(skillID)
	if err != nil {
		// Unknown skills fail like nonexistent paths; the error does
		// not reveal whether the package exists.
		return skills.Info{}, vfs.ErrPathNotFound
	}
	w.gate.Load(skillID)
	w.log.Info("skill loaded", zap.String("skill", skillID.String()))
	return info, nil
}

// LoadedSkills returns the identifiers visible in the current turn.
func (w *Workspace) LoadedSkills() []skills.Identifier {
	return w.gate.ListLoaded()
}

// EndTurn clears the loaded skill set. Invoked by the turn lifecycle,
// not by the agent.
func (w *Workspace) EndTurn() {
	w.gate.Reset()
	w.log.Debug("turn ended, skill set reset")
}

// Run executes a command inside the workspace's sandbox.
func (w *Workspace) Run(ctx context.Context, command string, timeout time.Duration) *sandbox.Result {
	return w.executor.Run(ctx, command, timeout)
}
