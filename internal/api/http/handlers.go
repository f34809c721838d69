// Package http implements the HTTP handlers of the agent-facing API.
package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agentfs/agentfs/internal/logging"
	"github.com/agentfs/agentfs/internal/monitoring"
	"github.com/agentfs/agentfs/internal/sandbox"
	"github.com/agentfs/agentfs/internal/vfs"
	"github.com/agentfs/agentfs/internal/workspace"
)

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	manager *workspace.Manager
	metrics *monitoring.Metrics
	log     *logging.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(manager *workspace.Manager, metrics *monitoring.Metrics, log *logging.Logger) *Handlers {
	return &Handlers{manager: manager, metrics: metrics, log: log}
}

// Health responds to liveness probes.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "workspaces": h.manager.Count()})
}

type createWorkspaceRequest struct {
	OwnerID  string `json:"owner_id" binding:"required"`
	ThreadID string `json:"thread_id"`
	TicketID string `json:"ticket_id"`
}

// CreateWorkspace constructs the workspace for a conversation thread.
func (h *Handlers) CreateWorkspace(c *gin.Context) {
	var req createWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	w, err := h.manager.Create(c.Request.Context(), workspace.CreateRequest{
		OwnerID:  req.OwnerID,
		ThreadID: req.ThreadID,
		TicketID: req.TicketID,
	})
	if err != nil {
		h.log.Error("workspace creation failed", zap.Error(err))
		h.renderError(c, err)
		return
	}
	h.metrics.WorkspacesActive.Set(float64(h.manager.Count()))
	c.JSON(http.StatusCreated, gin.H{
		"thread_id":  w.ThreadID,
		"owner_id":   w.OwnerID,
		"ticket_id":  w.TicketID,
		"created_at": w.CreatedAt,
	})
}

// workspaceFor loads the thread's workspace or renders 404.
func (h *Handlers) workspaceFor(c *gin.Context) (*workspace.Workspace, bool) {
	w, ok := h.manager.Get(c.Param("thread"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown thread"})
		return nil, false
	}
	return w, true
}

// ListFiles lists a virtual directory.
func (h *Handlers) ListFiles(c *gin.Context) {
	w, ok := h.workspaceFor(c)
	if !ok {
		return
	}
	entries, err := w.Files().List(c.Query("path"))
	h.metrics.RecordFileOp("list", err)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

// ReadFile returns a file's text content, optionally line-sliced.
func (h *Handlers) ReadFile(c *gin.Context) {
	w, ok := h.workspaceFor(c)
	if !ok {
		return
	}
	offset := intQuery(c, "offset")
	limit := intQuery(c, "limit")
	content, err := w.Files().Read(c.Query("path"), offset, limit)
	h.metrics.RecordFileOp("read", err)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": c.Query("path"), "content": content})
}

type writeFileRequest struct {
	Path    string `json:"path" binding:"required"`
	Content string `json:"content"`
}

// WriteFile replaces a file's content.
func (h *Handlers) WriteFile(c *gin.Context) {
	w, ok := h.workspaceFor(c)
	if !ok {
		return
	}
	var req writeFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := w.Files().Write(req.Path, req.Content)
	h.metrics.RecordFileOp("write", err)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"written": true, "path": req.Path})
}

type editFileRequest struct {
	Path       string `json:"path" binding:"required"`
	Old        string `json:"old" binding:"required"`
	New        string `json:"new"`
	ReplaceAll bool   `json:"replace_all"`
}

// EditFile performs a read-modify-write replacement.
func (h *Handlers) EditFile(c *gin.Context) {
	w, ok := h.workspaceFor(c)
	if !ok {
		return
	}
	var req editFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := w.Files().Edit(req.Path, req.Old, req.New, req.ReplaceAll)
	h.metrics.RecordFileOp("edit", err)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"edited": true, "path": req.Path})
}

// SearchFiles runs a recursive text search over a subtree.
func (h *Handlers) SearchFiles(c *gin.Context) {
	w, ok := h.workspaceFor(c)
	if !ok {
		return
	}
	matches, err := w.Files().Search(c.Request.Context(), c.Query("pattern"), c.Query("path"), c.Query("glob"))
	h.metrics.RecordFileOp("search", err)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches, "count": len(matches)})
}

// GlobFiles runs a recursive filename match over a subtree.
func (h *Handlers) GlobFiles(c *gin.Context) {
	w, ok := h.workspaceFor(c)
	if !ok {
		return
	}
	scope := c.Query("path")
	if scope == "" {
		scope = vfs.WorkspacePrefix
	}
	entries, err := w.Files().Glob(c.Query("pattern"), scope)
	h.metrics.RecordFileOp("glob", err)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

// ArchiveWorkspace streams the workspace subtree as a tar.gz snapshot.
func (h *Handlers) ArchiveWorkspace(c *gin.Context) {
	w, ok := h.workspaceFor(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "application/gzip")
	c.Header("Content-Disposition", `attachment; filename="workspace.tar.gz"`)
	if err := w.Files().Archive(c.Writer); err != nil {
		h.log.Error("archive failed", zap.String("thread_id", w.ThreadID), zap.Error(err))
	}
}

type execRequest struct {
	Command   string `json:"command" binding:"required"`
	TimeoutMS int    `json:"timeout_ms"`
}

// Exec runs a command in the workspace sandbox.
func (h *Handlers) Exec(c *gin.Context) {
	w, ok := h.workspaceFor(c)
	if !ok {
		return
	}
	var req execRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start := time.Now()
	result := w.Run(c.Request.Context(), req.Command, time.Duration(req.TimeoutMS)*time.Millisecond)
	h.metrics.ExecTotal.WithLabelValues(string(result.Status)).Inc()
	h.metrics.ExecDuration.Observe(time.Since(start).Seconds())

	status := http.StatusOK
	if result.Status == sandbox.StatusSetupFailure {
		status = http.StatusBadGateway
	}
	c.JSON(status, result)
}

// ListSkills returns the pre-load discovery catalog.
func (h *Handlers) ListSkills(c *gin.Context) {
	w, ok := h.workspaceFor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"skills": w.Skills().List()})
}

type loadSkillRequest struct {
	Skill string `json:"skill" binding:"required"`
}

// LoadSkill adds a skill to the turn's loaded set.
func (h *Handlers) LoadSkill(c *gin.Context) {
	w, ok := h.workspaceFor(c)
	if !ok {
		return
	}
	var req loadSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	info, err := w.LoadSkill(req.Skill)
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.metrics.SkillLoadsTotal.Inc()
	c.JSON(http.StatusOK, gin.H{"loaded": true, "skill": info})
}

// EndTurn clears the turn's loaded skill set. Called by the turn
// lifecycle, not by the agent.
func (h *Handlers) EndTurn(c *gin.Context) {
	w, ok := h.workspaceFor(c)
	if !ok {
		return
	}
	w.EndTurn()
	c.JSON(http.StatusOK, gin.H{"reset": true})
}

// renderError maps the typed error taxonomy onto HTTP statuses.
// Messages carry virtual detail only.
func (h *Handlers) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, vfs.ErrPathNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "path not found"})
	case errors.Is(err, vfs.ErrPathEscape):
		c.JSON(http.StatusBadRequest, gin.H{"error": "path outside mount"})
	case errors.Is(err, vfs.ErrReadOnlyViolation):
		c.JSON(http.StatusForbidden, gin.H{"error": "mount is read-only"})
	case errors.Is(err, vfs.ErrBinaryContent):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "binary content rejected"})
	case errors.Is(err, vfs.ErrAmbiguousEdit):
		c.JSON(http.StatusConflict, gin.H{"error": "edit target is ambiguous"})
	case errors.Is(err, vfs.ErrMountNotReady):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage mount not ready"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func intQuery(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 0 {
		return 0
	}
	return v
}
