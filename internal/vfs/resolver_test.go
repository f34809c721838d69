package vfs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGate backs resolver tests without the full skills package.
type fakeGate struct {
	dirs map[string]string // short name -> category/name
}

func (g *fakeGate) Resolve(shortName string) (string, bool) {
	dir, ok := g.dirs[shortName]
	return dir, ok
}

func (g *fakeGate) Visible() []string {
	names := make([]string, 0, len(g.dirs))
	for name := range g.dirs {
		names = append(names, name)
	}
	return names
}

func newTestResolver(t *testing.T, gate Gate) (*Resolver, string, string, string) {
	t.Helper()
	ws := t.TempDir()
	ticket := t.TempDir()
	skills := t.TempDir()
	if gate == nil {
		gate = &fakeGate{dirs: map[string]string{}}
	}
	return NewResolver(NewTable(ws, ticket, skills), gate), ws, ticket, skills
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"plain", "/workspace/a.md", "/workspace/a.md", nil},
		{"double separators", "/workspace//a//b.md", "/workspace/a/b.md", nil},
		{"dot segments", "/workspace/./a/../b.md", "/workspace/b.md", nil},
		{"trailing slash", "/workspace/dir/", "/workspace/dir", nil},
		{"root", "/", "/", nil},
		{"relative", "workspace/a.md", "", ErrPathEscape},
		{"empty", "", "", ErrPathEscape},
		{"climb above root", "/../etc/passwd", "", ErrPathEscape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToPhysicalWorkspace(t *testing.T) {
	r, ws, _, _ := newTestResolver(t, nil)

	physical, err := r.ToPhysical("/workspace/notes/draft.md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ws, "notes", "draft.md"), physical)
}

func TestToPhysicalOutsideMounts(t *testing.T) {
	r, _, _, _ := newTestResolver(t, nil)

	_, err := r.ToPhysical("/etc/passwd")
	assert.ErrorIs(t, err, ErrPathNotFound)

	// Climbing out of a mount is an escape, not a miss.
	_, err = r.ToPhysical("/workspace/../../etc/passwd")
	assert.ErrorIs(t, err, ErrPathEscape)
}

func TestToPhysicalDotsInNameAreNotEscapes(t *testing.T) {
	r, _, _, _ := newTestResolver(t, nil)

	// Unmounted names that merely contain ".." are misses, not escapes.
	_, err := r.ToPhysical("/a..b")
	assert.ErrorIs(t, err, ErrPathNotFound)
	_, err = r.ToPhysical("/notes..old/x.md")
	assert.ErrorIs(t, err, ErrPathNotFound)
}

func TestToPhysicalEscapeCollapsesInsideMount(t *testing.T) {
	r, ws, _, _ := newTestResolver(t, nil)

	// Dot-dot segments that stay inside the mount are fine.
	physical, err := r.ToPhysical("/workspace/a/../b.md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ws, "b.md"), physical)
}

func TestToPhysicalUnlinkedTicket(t *testing.T) {
	ws := t.TempDir()
	r := NewResolver(NewTable(ws, "", t.TempDir()), &fakeGate{dirs: map[string]string{}})

	_, err := r.ToPhysical("/ticket/case.md")
	assert.ErrorIs(t, err, ErrPathNotFound)
}

func TestToPhysicalSkills(t *testing.T) {
	gate := &fakeGate{dirs: map[string]string{"compraventa": "escrituras/compraventa"}}
	r, _, _, skillsRoot := newTestResolver(t, gate)

	physical, err := r.ToPhysical("/skills/compraventa/SKILL.md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(skillsRoot, "escrituras", "compraventa", "SKILL.md"), physical)

	// An unloaded skill fails exactly like a nonexistent path.
	_, err = r.ToPhysical("/skills/poderes/SKILL.md")
	assert.ErrorIs(t, err, ErrPathNotFound)

	// Bare /skills has no physical directory.
	_, err = r.ToPhysical("/skills")
	assert.ErrorIs(t, err, ErrPathNotFound)
}

func TestToVirtualRoundTrip(t *testing.T) {
	gate := &fakeGate{dirs: map[string]string{"compraventa": "escrituras/compraventa"}}
	r, _, _, _ := newTestResolver(t, gate)

	for _, virtual := range []string{
		"/workspace/a/b.md",
		"/ticket/case.md",
		"/skills/compraventa/resources/template.docx",
	} {
		physical, err := r.ToPhysical(virtual)
		require.NoError(t, err, virtual)
		back, err := r.ToVirtual(physical)
		require.NoError(t, err, virtual)
		assert.Equal(t, virtual, back)
	}
}

func TestToVirtualOutsideBindings(t *testing.T) {
	r, _, _, _ := newTestResolver(t, nil)

	_, err := r.ToVirtual("/etc/passwd")
	assert.ErrorIs(t, err, ErrPathEscape)
}

func TestToVirtualUnloadedSkillSubtree(t *testing.T) {
	r, _, _, skillsRoot := newTestResolver(t, &fakeGate{dirs: map[string]string{}})

	_, err := r.ToVirtual(filepath.Join(skillsRoot, "escrituras", "compraventa", "SKILL.md"))
	assert.ErrorIs(t, err, ErrPathNotFound)
}

func TestTableLongestPrefixFirst(t *testing.T) {
	table := NewTable(t.TempDir(), t.TempDir(), t.TempDir())

	assert.Equal(t, WorkspacePrefix, table.Match("/workspace/a").VirtualPrefix)
	assert.Equal(t, TicketPrefix, table.Match("/ticket").VirtualPrefix)
	assert.Nil(t, table.Match("/workspaces"))
	assert.Nil(t, table.Match("/"))
}
