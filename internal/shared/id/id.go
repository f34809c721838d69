// Package id provides centralized ID generation.
//
// Thread and workspace identifiers are prefixed ULIDs: lexicographically
// sortable, readable in logs and unique across services. Execution ids
// are plain UUIDs minted per command run.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// ThreadID identifies a conversation thread.
type ThreadID string

// WorkspaceID identifies a workspace instance.
type WorkspaceID string

// ExecutionID identifies one sandboxed command run.
type ExecutionID string

const (
	threadPrefix    = "thr"
	workspacePrefix = "ws"
)

// Generator generates ULIDs with optional prefixes.
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = &Generator{entropy: rand.Reader}
	})
	return defaultGenerator
}

// Generate creates a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string.
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewThreadID generates a new thread ID.
func NewThreadID() ThreadID {
	return ThreadID(Default().GenerateWithPrefix(threadPrefix))
}

// NewWorkspaceID generates a new workspace ID.
func NewWorkspaceID() WorkspaceID {
	return WorkspaceID(Default().GenerateWithPrefix(workspacePrefix))
}

// NewExecutionID generates a new execution ID.
func NewExecutionID() ExecutionID {
	return ExecutionID(uuid.NewString())
}

func (id ThreadID) String() string    { return string(id) }
func (id WorkspaceID) String() string { return string(id) }
func (id ExecutionID) String() string { return string(id) }
