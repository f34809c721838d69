package skills

import (
	"fmt"
	"strings"
)

// Identifier is the stable category/name pair keying a skill package.
type Identifier struct {
	Category string
	Name     string
}

// ParseIdentifier parses "category/name". Both segments must be plain
// path components; anything else is rejected before it can reach the
// filesystem.
func ParseIdentifier(s string) (Identifier, error) {
	category, name, ok := strings.Cut(s, "/")
	if !ok || category == "" || name == "" || strings.Contains(name, "/") {
		return Identifier{}, fmt.Errorf("invalid skill identifier %q: want category/name", s)
	}
	for _, seg := range []string{category, name} {
		if seg == "." || seg == ".." || strings.ContainsAny(seg, `\`) {
			return Identifier{}, fmt.Errorf("invalid skill identifier %q", s)
		}
	}
	return Identifier{Category: category, Name: name}, nil
}

// String returns the canonical "category/name" form.
func (id Identifier) String() string {
	return id.Category + "/" + id.Name
}

// ShortName is the single segment the skill is addressed by under
// /skills once loaded.
func (id Identifier) ShortName() string {
	return id.Name
}

// Dir is the slash-separated directory pair under the skills root.
func (id Identifier) Dir() string {
	return id.Category + "/" + id.Name
}
