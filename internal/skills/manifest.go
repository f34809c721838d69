package skills

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
)

// ManifestName is the conventional manifest file at a skill's root.
const ManifestName = "SKILL.md"

// AuthoringNotesName is the internal authoring-notes file stored
// alongside skill content. It is excluded from listing and reading
// regardless of load state.
const AuthoringNotesName = "NOTES.md"

// Manifest is the YAML front-matter at the head of SKILL.md. It serves
// both the pre-load discovery listing and the head of the loaded
// content.
type Manifest struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Version     string `yaml:"version"`
}

// ParseManifest splits SKILL.md content into front-matter and body.
func ParseManifest(content []byte) (Manifest, string, error) {
	var m Manifest
	text := string(content)
	rest, ok := strings.CutPrefix(text, "---\n")
	if !ok {
		return m, "", fmt.Errorf("manifest front-matter missing")
	}
	front, body, ok := strings.Cut(rest, "\n---")
	if !ok {
		return m, "", fmt.Errorf("manifest front-matter unterminated")
	}
	if err := yaml.Unmarshal([]byte(front), &m); err != nil {
		return m, "", fmt.Errorf("manifest front-matter: %w", err)
	}
	if m.Name == "" {
		return m, "", fmt.Errorf("manifest missing name")
	}
	body = strings.TrimPrefix(body, "\n")
	return m, body, nil
}

// IsAuthoringArtifact reports whether a file name is an internal
// authoring artifact. Dotfiles are treated the same way.
func IsAuthoringArtifact(name string) bool {
	return name == AuthoringNotesName || strings.HasPrefix(name, ".")
}
