package vfs

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Gate reports which skills are currently visible. The resolver treats
// /skills as entirely absent when nothing is loaded and as containing
// exactly the loaded entries otherwise.
type Gate interface {
	// Resolve maps a short name to the category/name directory pair of
	// a loaded skill. ok is false when no loaded skill has that name.
	Resolve(shortName string) (dir string, ok bool)

	// Visible lists the short names of all loaded skills.
	Visible() []string
}

// Resolver converts between virtual and physical paths using the
// workspace's binding table and the skill gate.
type Resolver struct {
	table *Table
	gate  Gate
}

// NewResolver builds a resolver over the given table and gate.
func NewResolver(table *Table, gate Gate) *Resolver {
	return &Resolver{table: table, gate: gate}
}

// Table exposes the underlying binding table.
func (r *Resolver) Table() *Table {
	return r.table
}

// Gate exposes the skill gate consulted for /skills paths.
func (r *Resolver) Gate() Gate {
	return r.gate
}

// Normalize collapses repeated separators and dot segments and strips
// the trailing slash (except at root). Parent-directory segments that
// would climb above the root yield ErrPathEscape.
func Normalize(virtual string) (string, error) {
	if virtual == "" || !strings.HasPrefix(virtual, "/") {
		return "", fmt.Errorf("%w: relative path", ErrPathEscape)
	}
	cleaned := path.Clean(virtual)
	if cleaned == "/.." || strings.HasPrefix(cleaned, "/../") {
		return "", ErrPathEscape
	}
	return cleaned, nil
}

// BindingFor normalizes the path and returns the binding owning it.
// A path under no canonical prefix is ErrPathNotFound; the mapping is
// closed-world.
func (r *Resolver) BindingFor(virtual string) (*Binding, string, error) {
	cleaned, err := Normalize(virtual)
	if err != nil {
		return nil, "", err
	}
	b := r.table.Match(cleaned)
	if b == nil {
		// A path that climbed out of its prefix via ".." segments is an
		// escape, not a miss; it must be rejected before storage. Dots
		// inside a name are not parent segments.
		for _, seg := range strings.Split(virtual, "/") {
			if seg == ".." {
				return nil, "", ErrPathEscape
			}
		}
		return nil, "", ErrPathNotFound
	}
	rel := strings.TrimPrefix(strings.TrimPrefix(cleaned, b.VirtualPrefix), "/")
	return b, rel, nil
}

// ToPhysical resolves a virtual path to its physical location. For
// /skills paths the first segment is a short name looked up through the
// gate; an unloaded skill fails exactly like a nonexistent path.
func (r *Resolver) ToPhysical(virtual string) (string, error) {
	b, rel, err := r.BindingFor(virtual)
	if err != nil {
		return "", err
	}
	if !b.Linked {
		return "", ErrPathNotFound
	}
	if b.VirtualPrefix != SkillsPrefix {
		return filepath.Join(b.PhysicalPrefix, filepath.FromSlash(rel)), nil
	}
	if rel == "" {
		// Bare /skills has no single physical directory; listings are
		// synthesized from the gate.
		return "", ErrPathNotFound
	}
	short, rest, _ := strings.Cut(rel, "/")
	dir, ok := r.gate.Resolve(short)
	if !ok {
		return "", ErrPathNotFound
	}
	return filepath.Join(b.PhysicalPrefix, filepath.FromSlash(dir), filepath.FromSlash(rest)), nil
}

// ToVirtual inverts the mapping. A physical path under no binding is
// ErrPathEscape; a skill subtree reverse-maps only while that skill is
// loaded.
func (r *Resolver) ToVirtual(physical string) (string, error) {
	for _, b := range r.table.All() {
		if !b.Linked || b.PhysicalPrefix == "" {
			continue
		}
		rel, err := filepath.Rel(b.PhysicalPrefix, physical)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if rel == "." {
			return b.VirtualPrefix, nil
		}
		slashRel := filepath.ToSlash(rel)
		if b.VirtualPrefix != SkillsPrefix {
			return b.VirtualPrefix + "/" + slashRel, nil
		}
		return r.skillToVirtual(slashRel)
	}
	return "", ErrPathEscape
}

// skillToVirtual collapses a category/name physical prefix back to the
// loaded skill's short name. Unloaded subtrees do not reverse-map.
func (r *Resolver) skillToVirtual(rel string) (string, error) {
	parts := strings.SplitN(rel, "/", 3)
	if len(parts) < 2 {
		return "", ErrPathNotFound
	}
	category, name := parts[0], parts[1]
	dir, ok := r.gate.Resolve(name)
	if !ok || dir != category+"/"+name {
		return "", ErrPathNotFound
	}
	virtual := SkillsPrefix + "/" + name
	if len(parts) == 3 {
		virtual += "/" + parts[2]
	}
	return virtual, nil
}
