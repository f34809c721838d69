package skills

import (
	"sort"
	"sync"
)

// Gate holds the set of skills loaded in the current agent turn. It is
// per-workspace state owned by the turn-processing loop, never a
// package-level global. The only transitions are Load and Reset.
type Gate struct {
	mu     sync.RWMutex
	loaded map[string]Identifier // keyed by short name
}

// NewGate creates an empty gate.
func NewGate() *Gate {
	return &Gate{loaded: make(map[string]Identifier)}
}

// Load adds a skill to the loaded set. Idempotent: loading an already
// loaded skill is a no-op.
func (g *Gate) Load(id Identifier) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.loaded[id.ShortName()] = id
}

// IsLoaded returns the identifier loaded under the given short name.
func (g *Gate) IsLoaded(shortName string) (Identifier, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.loaded[shortName]
	return id, ok
}

// ListLoaded returns the loaded identifiers sorted by short name.
func (g *Gate) ListLoaded() []Identifier {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ids := make([]Identifier, 0, len(g.loaded))
	for _, id := range g.loaded {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].ShortName() < ids[j].ShortName() })
	return ids
}

// Reset clears the loaded set. Invoked exactly once at the natural end
// of each agent turn; there is no agent-facing unload.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.loaded = make(map[string]Identifier)
}

// Resolve implements the resolver's gate interface: it maps a short
// name to the loaded skill's directory pair.
func (g *Gate) Resolve(shortName string) (string, bool) {
	id, ok := g.IsLoaded(shortName)
	if !ok {
		return "", false
	}
	return id.Dir(), true
}

// Visible implements the resolver's gate interface: the short names of
// all loaded skills, sorted.
func (g *Gate) Visible() []string {
	ids := g.ListLoaded()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.ShortName()
	}
	return names
}
