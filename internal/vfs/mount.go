package vfs

import "strings"

// Canonical virtual prefixes. These are the only roots the agent can
// address; the mapping is closed-world.
const (
	WorkspacePrefix = "/workspace"
	TicketPrefix    = "/ticket"
	SkillsPrefix    = "/skills"
)

// Binding maps one virtual prefix to a physical storage location.
type Binding struct {
	VirtualPrefix  string
	PhysicalPrefix string
	Writable       bool

	// Linked is false when the binding is declared but has no backing
	// storage, e.g. a workspace with no ticket attached. Lookups under
	// an unlinked binding fail closed with ErrPathNotFound.
	Linked bool
}

// Table holds the canonical bindings for one workspace, ordered
// longest-prefix-first so dispatch never depends on ad hoc slicing.
type Table struct {
	bindings []*Binding
}

// NewTable builds the canonical three-binding table. ticketRoot may be
// empty when no ticket is linked to the conversation.
func NewTable(workspaceRoot, ticketRoot, skillsRoot string) *Table {
	t := &Table{}
	t.add(&Binding{VirtualPrefix: WorkspacePrefix, PhysicalPrefix: workspaceRoot, Writable: true, Linked: true})
	t.add(&Binding{VirtualPrefix: TicketPrefix, PhysicalPrefix: ticketRoot, Linked: ticketRoot != ""})
	t.add(&Binding{VirtualPrefix: SkillsPrefix, PhysicalPrefix: skillsRoot, Linked: skillsRoot != ""})
	return t
}

func (t *Table) add(b *Binding) {
	// Insert keeping longer prefixes first.
	for i, existing := range t.bindings {
		if len(b.VirtualPrefix) > len(existing.VirtualPrefix) {
			t.bindings = append(t.bindings[:i], append([]*Binding{b}, t.bindings[i:]...)...)
			return
		}
	}
	t.bindings = append(t.bindings, b)
}

// Match returns the binding owning the given normalized virtual path,
// or nil when no canonical prefix covers it.
func (t *Table) Match(virtual string) *Binding {
	for _, b := range t.bindings {
		if virtual == b.VirtualPrefix || strings.HasPrefix(virtual, b.VirtualPrefix+"/") {
			return b
		}
	}
	return nil
}

// Get returns the binding registered for the exact virtual prefix.
func (t *Table) Get(prefix string) *Binding {
	for _, b := range t.bindings {
		if b.VirtualPrefix == prefix {
			return b
		}
	}
	return nil
}

// All returns the bindings in dispatch order.
func (t *Table) All() []*Binding {
	return t.bindings
}
