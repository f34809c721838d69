package skills

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentfs/agentfs/internal/logging"
)

const compraventaManifest = `---
name: compraventa
description: Drafting guidance for property sale deeds
category: escrituras
version: "1.2"
---
# Compraventa

Follow the checklist in resources/checklist.md.
`

func writeSkill(t *testing.T, root, category, name, manifest string) {
	t.Helper()
	dir := filepath.Join(root, category, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestName), []byte(manifest), 0o644))
}

func TestParseManifest(t *testing.T) {
	m, body, err := ParseManifest([]byte(compraventaManifest))
	require.NoError(t, err)
	assert.Equal(t, "compraventa", m.Name)
	assert.Equal(t, "escrituras", m.Category)
	assert.Equal(t, "1.2", m.Version)
	assert.Contains(t, body, "# Compraventa")
	assert.NotContains(t, body, "name:")
}

func TestParseManifestErrors(t *testing.T) {
	cases := map[string]string{
		"no front matter": "# Just a heading\n",
		"unterminated":    "---\nname: x\n",
		"missing name":    "---\ndescription: d\n---\nbody",
		"yaml syntax":     "---\nname: [\n---\nbody",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := ParseManifest([]byte(content))
			assert.Error(t, err)
		})
	}
}

func TestCatalogList(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "escrituras", "compraventa", compraventaManifest)
	writeSkill(t, root, "poderes", "general", "---\nname: general\n---\nbody")
	// Malformed manifests are skipped, not fatal.
	writeSkill(t, root, "escrituras", "broken", "no front matter")

	c := NewCatalog(root, logging.Nop())
	infos := c.List()
	require.Len(t, infos, 2)
	assert.Equal(t, "escrituras/compraventa", infos[0].Identifier.String())
	assert.Equal(t, "poderes/general", infos[1].Identifier.String())
	assert.Equal(t, "Drafting guidance for property sale deeds", infos[0].Manifest.Description)
}

func TestCatalogGetUnknown(t *testing.T) {
	c := NewCatalog(t.TempDir(), logging.Nop())
	_, err := c.Get(Identifier{Category: "escrituras", Name: "nope"})
	assert.Error(t, err)
}

func TestIsAuthoringArtifact(t *testing.T) {
	assert.True(t, IsAuthoringArtifact("NOTES.md"))
	assert.True(t, IsAuthoringArtifact(".hidden"))
	assert.False(t, IsAuthoringArtifact("SKILL.md"))
	assert.False(t, IsAuthoringArtifact("notes.md"))
}
