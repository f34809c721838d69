package skills

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/agentfs/agentfs/internal/logging"
)

// Info describes one skill package found under the skills root.
type Info struct {
	Identifier Identifier `json:"identifier"`
	Manifest   Manifest   `json:"manifest"`
}

// Catalog discovers skill packages under the skills physical root.
// Discovery only reads manifests; it never exposes skill bodies, which
// stay behind the gate.
type Catalog struct {
	root string
	log  *logging.Logger
}

// NewCatalog creates a catalog over the given physical skills root.
func NewCatalog(root string, log *logging.Logger) *Catalog {
	return &Catalog{root: root, log: log}
}

// List walks <root>/<category>/<name>/SKILL.md and returns the
// discovery listing, sorted by identifier. Packages with unreadable or
// malformed manifests are skipped and logged, not fatal.
func (c *Catalog) List() []Info {
	var infos []Info
	categories, err := os.ReadDir(c.root)
	if err != nil {
		c.log.Warn("skills root unreadable", zap.Error(err))
		return nil
	}
	for _, category := range categories {
		if !category.IsDir() || IsAuthoringArtifact(category.Name()) {
			continue
		}
		names, err := os.ReadDir(filepath.Join(c.root, category.Name()))
		if err != nil {
			continue
		}
		for _, name := range names {
			if !name.IsDir() || IsAuthoringArtifact(name.Name()) {
				continue
			}
			id := Identifier{Category: category.Name(), Name: name.Name()}
			info, err := c.Get(id)
			if err != nil {
				c.log.Warn("skipping skill package",
					zap.String("skill", id.String()),
					zap.Error(err),
				)
				continue
			}
			infos = append(infos, info)
		}
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Identifier.String() < infos[j].Identifier.String()
	})
	return infos
}

// Get reads and parses one skill's manifest.
func (c *Catalog) Get(id Identifier) (Info, error) {
	content, err := os.ReadFile(filepath.Join(c.root, id.Category, id.Name, ManifestName))
	if err != nil {
		return Info{}, fmt.Errorf("skill %s: %w", id, err)
	}
	manifest, _, err := ParseManifest(content)
	if err != nil {
		return Info{}, fmt.Errorf("skill %s: %w", id, err)
	}
	return Info{Identifier: id, Manifest: manifest}, nil
}
