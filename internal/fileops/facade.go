package fileops

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/agentfs/agentfs/internal/logging"
	"github.com/agentfs/agentfs/internal/vfs"
)

// Facade exposes the agent-facing file operations over one workspace's
// resolver.
type Facade struct {
	resolver *vfs.Resolver
	log      *logging.Logger
}

// NewFacade creates a facade over the given resolver.
func NewFacade(resolver *vfs.Resolver, log *logging.Logger) *Facade {
	return &Facade{resolver: resolver, log: log}
}

// List returns the children of a virtual directory, filtered by the
// owning mount's policy. Listing /skills itself synthesizes one entry
// per loaded skill; with nothing loaded it is empty, not an error.
func (f *Facade) List(virtual string) ([]FileEntry, error) {
	cleaned, err := vfs.Normalize(virtual)
	if err != nil {
		return nil, err
	}
	if cleaned == vfs.SkillsPrefix {
		return f.listLoadedSkills(), nil
	}

	b, _, err := f.resolver.BindingFor(cleaned)
	if err != nil {
		return nil, err
	}
	physical, err := f.resolver.ToPhysical(cleaned)
	if err != nil {
		return nil, err
	}
	children, err := os.ReadDir(physical)
	if err != nil {
		return nil, mapStorageErr(err)
	}

	entries := make([]FileEntry, 0, len(children))
	for _, child := range children {
		if !listable(b, child.Name(), child.IsDir()) {
			continue
		}
		info, err := child.Info()
		if err != nil {
			continue
		}
		entries = append(entries, FileEntry{
			Path:     path.Join(cleaned, child.Name()),
			IsDir:    child.IsDir(),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}
	return entries, nil
}

// listLoadedSkills synthesizes the /skills listing from the gate. The
// physical skills root is never enumerated here, so unloaded skills
// stay invisible.
func (f *Facade) listLoadedSkills() []FileEntry {
	names := f.resolver.Gate().Visible()
	entries := make([]FileEntry, 0, len(names))
	for _, short := range names {
		entry := FileEntry{Path: vfs.SkillsPrefix + "/" + short, IsDir: true}
		if physical, err := f.resolver.ToPhysical(entry.Path); err == nil {
			if info, err := os.Stat(physical); err == nil {
				entry.Modified = info.ModTime()
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

// Read returns a file's text content. offset is a 0-based line index
// and limit a line count; zero limit means to the end. Non-text
// content is rejected on every mount, the API is text-only.
func (f *Facade) Read(virtual string, offset, limit int) (string, error) {
	b, _, err := f.resolver.BindingFor(virtual)
	if err != nil {
		return "", err
	}
	if hiddenFromRead(b, virtual) {
		return "", vfs.ErrPathNotFound
	}
	physical, err := f.resolver.ToPhysical(virtual)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(physical)
	if err != nil {
		return "", mapStorageErr(err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: is a directory", vfs.ErrPathNotFound)
	}
	data, err := os.ReadFile(physical)
	if err != nil {
		return "", mapStorageErr(err)
	}
	if !detectText(data) {
		return "", vfs.ErrBinaryContent
	}
	content := string(data)
	if offset <= 0 && limit <= 0 {
		return content, nil
	}
	return sliceLines(content, offset, limit), nil
}

// Write replaces a file's content. Parent directories are created as
// needed; the write lands via a temp file and rename so a concurrent
// reader sees either the old or the new content, never a mix.
func (f *Facade) Write(virtual, content string) error {
	b, _, err := f.resolver.BindingFor(virtual)
	if err != nil {
		return err
	}
	if !b.Writable {
		return vfs.ErrReadOnlyViolation
	}
	physical, err := f.resolver.ToPhysical(virtual)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(physical), 0o755); err != nil {
		return fmt.Errorf("create parents: %w", err)
	}
	if err := atomicWrite(physical, []byte(content)); err != nil {
		return err
	}
	f.log.Debug("file written", zap.String("path", virtual), zap.Int("bytes", len(content)))
	return nil
}

// Edit replaces old with replacement in the file's content. old absent
// is not-found; old occurring more than once without replaceAll is
// ambiguous and leaves the file unchanged.
func (f *Facade) Edit(virtual, old, replacement string, replaceAll bool) error {
	b, _, err := f.resolver.BindingFor(virtual)
	if err != nil {
		return err
	}
	if !b.Writable {
		return vfs.ErrReadOnlyViolation
	}
	physical, err := f.resolver.ToPhysical(virtual)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(physical)
	if err != nil {
		return mapStorageErr(err)
	}
	content := string(data)
	switch count := strings.Count(content, old); {
	case count == 0:
		return fmt.Errorf("edit target absent: %w", vfs.ErrPathNotFound)
	case count > 1 && !replaceAll:
		return vfs.ErrAmbiguousEdit
	}
	n := 1
	if replaceAll {
		n = -1
	}
	return atomicWrite(physical, []byte(strings.Replace(content, old, replacement, n)))
}

// atomicWrite writes data next to the target and renames it into
// place. The remote mount promises POSIX rename semantics.
func atomicWrite(physical string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(physical), ".write-*")
	if err != nil {
		return fmt.Errorf("stage write: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("stage write: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("stage write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("stage write: %w", err)
	}
	if err := os.Rename(name, physical); err != nil {
		os.Remove(name)
		return fmt.Errorf("commit write: %w", err)
	}
	return nil
}

// sliceLines cuts content to limit lines starting at the 0-based
// offset line. A trailing newline on the slice is preserved only when
// the slice does not reach the end of the content.
func sliceLines(content string, offset, limit int) string {
	lines := strings.Split(content, "\n")
	if offset < 0 {
		offset = 0
	}
	if offset >= len(lines) {
		return ""
	}
	end := len(lines)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return strings.Join(lines[offset:end], "\n")
}

// mapStorageErr folds storage-level failures into the typed taxonomy
// so physical detail never crosses the boundary.
func mapStorageErr(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return vfs.ErrPathNotFound
	}
	if errors.Is(err, fs.ErrPermission) {
		return vfs.ErrPathNotFound
	}
	return fmt.Errorf("storage failure: %w", err)
}
