package sandbox

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/agentfs/agentfs/internal/logging"
	"github.com/agentfs/agentfs/internal/shared/id"
)

// hostBinds are the only host directories visible inside the sandbox,
// all read-only, supplying the interpreter/toolchain runtime. Missing
// directories are skipped at argument-build time.
var hostBinds = []string{
	"/usr",
	"/bin",
	"/sbin",
	"/lib",
	"/lib64",
	"/etc/alternatives",
	"/etc/ssl",
	"/etc/resolv.conf",
}

// venvActivate is the conventional location of a Python virtual
// environment inside the workspace. When present it is sourced before
// the user command runs.
const venvActivate = ".venv/bin/activate"

// Executor runs commands against one workspace's physical root.
type Executor struct {
	workspaceRoot  string
	bwrapPath      string
	defaultTimeout time.Duration
	maxOutput      int
	log            *logging.Logger
}

// NewExecutor creates an executor bound to the given workspace root.
func NewExecutor(workspaceRoot, bwrapPath string, defaultTimeout time.Duration, maxOutput int, log *logging.Logger) *Executor {
	if bwrapPath == "" {
		bwrapPath = "bwrap"
	}
	if defaultTimeout <= 0 {
		defaultTimeout = 2 * time.Minute
	}
	if maxOutput <= 0 {
		maxOutput = 1 << 20
	}
	return &Executor{
		workspaceRoot:  workspaceRoot,
		bwrapPath:      bwrapPath,
		defaultTimeout: defaultTimeout,
		maxOutput:      maxOutput,
		log:            log,
	}
}

// Args builds the bubblewrap argument list for one command. Only the
// workspace root is bound writable; everything else the command can
// see is the read-only host toolchain and a throwaway tmpfs.
func (e *Executor) Args(command string) []string {
	args := []string{
		"--die-with-parent",
		"--unshare-pid",
		"--bind", e.workspaceRoot, "/workspace",
		"--chdir", "/workspace",
		"--tmpfs", "/tmp",
		"--proc", "/proc",
		"--dev", "/dev",
		"--setenv", "HOME", "/workspace",
		"--setenv", "TMPDIR", "/tmp",
	}
	for _, dir := range hostBinds {
		if _, err := os.Stat(dir); err == nil {
			args = append(args, "--ro-bind", dir, dir)
		}
	}
	shellCmd := command
	if _, err := os.Stat(filepath.Join(e.workspaceRoot, venvActivate)); err == nil {
		shellCmd = ". /workspace/" + venvActivate + " && " + command
	}
	return append(args, "/bin/sh", "-c", shellCmd)
}

// Run executes command inside the sandbox and waits up to timeout. A
// zero timeout uses the executor default.
func (e *Executor) Run(ctx context.Context, command string, timeout time.Duration) *Result {
	if timeout <= 0 {
		timeout = e.defaultTimeout
	}
	execID := id.NewExecutionID().String()
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, e.bwrapPath, e.Args(command)...)
	stdout := newBoundedBuffer(e.maxOutput)
	stderr := newBoundedBuffer(e.maxOutput)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = 5 * time.Second

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	result := &Result{ID: execID}
	switch {
	case runCtx.Err() != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded):
		// Partial output is discarded; a timeout must never look like
		// a truncated success.
		result.Status = StatusTimeout
		result.ExitCode = -1
	case err == nil:
		result.Status = StatusOK
		result.Stdout = stdout.String()
		result.Stderr = stderr.String()
		result.Truncated = stdout.Truncated() || stderr.Truncated()
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.Status = StatusNonZeroExit
			result.ExitCode = exitErr.ExitCode()
			result.Stdout = stdout.String()
			result.Stderr = stderr.String()
			result.Truncated = stdout.Truncated() || stderr.Truncated()
		} else {
			result.Status = StatusSetupFailure
			result.ExitCode = -1
			result.Stderr = err.Error()
		}
	}

	e.log.Info("command finished",
		zap.String("exec_id", execID),
		zap.String("status", string(result.Status)),
		zap.Int("exit_code", result.ExitCode),
		zap.Duration("elapsed", elapsed),
	)
	return result
}

// boundedBuffer captures up to max bytes and records whether anything
// was dropped.
type boundedBuffer struct {
	mu        sync.Mutex
	buf       []byte
	max       int
	truncated bool
}

func newBoundedBuffer(max int) *boundedBuffer {
	return &boundedBuffer{max: max}
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	room := b.max - len(b.buf)
	if room <= 0 {
		b.truncated = true
		return len(p), nil
	}
	if len(p) > room {
		b.buf = append(b.buf, p[:room]...)
		b.truncated = true
		return len(p), nil
	}
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *boundedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}

func (b *boundedBuffer) Truncated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.truncated
}
