package sandbox

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentfs/agentfs/internal/logging"
)

func TestArgsBindOnlyWorkspaceWritable(t *testing.T) {
	root := t.TempDir()
	e := NewExecutor(root, "bwrap", time.Minute, 1<<20, logging.Nop())

	args := e.Args("ls")
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "--bind "+root+" /workspace")
	assert.Contains(t, joined, "--chdir /workspace")
	assert.Contains(t, joined, "--unshare-pid")
	assert.Contains(t, joined, "--tmpfs /tmp")
	// The workspace bind is the only writable bind.
	assert.Equal(t, 1, strings.Count(joined, "--bind "))

	require.GreaterOrEqual(t, len(args), 3)
	assert.Equal(t, []string{"/bin/sh", "-c", "ls"}, args[len(args)-3:])
}

func TestArgsVenvActivation(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".venv", "bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".venv", "bin", "activate"), []byte("export VIRTUAL_ENV=1"), 0o644))
	e := NewExecutor(root, "bwrap", time.Minute, 1<<20, logging.Nop())

	args := e.Args("python main.py")
	shellCmd := args[len(args)-1]
	assert.Equal(t, ". /workspace/.venv/bin/activate && python main.py", shellCmd)
}

func TestRunSetupFailure(t *testing.T) {
	e := NewExecutor(t.TempDir(), "/nonexistent/bwrap-binary", time.Minute, 1<<20, logging.Nop())

	result := e.Run(context.Background(), "true", 0)
	assert.Equal(t, StatusSetupFailure, result.Status)
	assert.Equal(t, -1, result.ExitCode)
	assert.NotEmpty(t, result.Stderr)
	assert.NotEmpty(t, result.ID)
}

// The remaining run tests need a real bubblewrap binary.
func requireBwrap(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("bwrap"); err != nil {
		t.Skip("bwrap not installed")
	}
}

func TestRunEcho(t *testing.T) {
	requireBwrap(t)
	e := NewExecutor(t.TempDir(), "bwrap", time.Minute, 1<<20, logging.Nop())

	result := e.Run(context.Background(), "echo hello", 0)
	require.Equal(t, StatusOK, result.Status)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "hello\n", result.Stdout)
	assert.False(t, result.Truncated)
}

func TestRunNonZeroExitCarriesStderr(t *testing.T) {
	requireBwrap(t)
	e := NewExecutor(t.TempDir(), "bwrap", time.Minute, 1<<20, logging.Nop())

	result := e.Run(context.Background(), "echo oops >&2; exit 3", 0)
	assert.Equal(t, StatusNonZeroExit, result.Status)
	assert.Equal(t, 3, result.ExitCode)
	assert.Contains(t, result.Stderr, "oops")
}

func TestRunCannotReachOtherWorkspace(t *testing.T) {
	requireBwrap(t)
	other := t.TempDir()
	marker := filepath.Join(other, "marker.md")
	require.NoError(t, os.WriteFile(marker, []byte("second workspace"), 0o644))
	e := NewExecutor(t.TempDir(), "bwrap", time.Minute, 1<<20, logging.Nop())

	// The other workspace's physical path, embedded literally in the
	// command, resolves to nothing inside the sandbox.
	result := e.Run(context.Background(), "cat "+marker, 0)
	assert.Equal(t, StatusNonZeroExit, result.Status)
	assert.NotEqual(t, 0, result.ExitCode)
	assert.Empty(t, result.Stdout)
	assert.NotEmpty(t, result.Stderr)
}

func TestRunTimeoutDiscardsOutput(t *testing.T) {
	requireBwrap(t)
	e := NewExecutor(t.TempDir(), "bwrap", time.Minute, 1<<20, logging.Nop())

	result := e.Run(context.Background(), "echo partial; sleep 30", 500*time.Millisecond)
	assert.Equal(t, StatusTimeout, result.Status)
	assert.Equal(t, -1, result.ExitCode)
	assert.Empty(t, result.Stdout)
	assert.Empty(t, result.Stderr)
}

func TestBoundedBuffer(t *testing.T) {
	b := newBoundedBuffer(8)

	n, err := b.Write([]byte("12345"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.False(t, b.Truncated())

	n, err = b.Write([]byte("67890"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "12345678", b.String())
	assert.True(t, b.Truncated())

	// Writes after the cap are swallowed, not errors.
	_, err = b.Write([]byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "12345678", b.String())
}
