package fileops

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"

	"github.com/agentfs/agentfs/internal/skills"
	"github.com/agentfs/agentfs/internal/vfs"
)

const (
	maxSearchMatches  = 1000
	maxSearchFileSize = 4 << 20
	maxLineBytes      = 256 * 1024
)

var errMatchLimit = errors.New("match limit reached")

// Search scans the subtree at scope (default /workspace) for lines
// matching pattern, a regular expression. glob optionally restricts
// the scanned files by relative path. Results carry virtual paths.
func (f *Facade) Search(ctx context.Context, pattern, scope, glob string) ([]Match, error) {
	if scope == "" {
		scope = vfs.WorkspacePrefix
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	cleaned, err := vfs.Normalize(scope)
	if err != nil {
		return nil, err
	}
	b, _, err := f.resolver.BindingFor(cleaned)
	if err != nil {
		return nil, err
	}
	root, err := f.resolver.ToPhysical(cleaned)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(root); err != nil {
		return nil, mapStorageErr(err)
	}

	var (
		mu      sync.Mutex
		matches []Match
	)
	conf := fastwalk.Config{Follow: false}
	walkErr := fastwalk.Walk(&conf, root, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil || d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		relSlash := filepath.ToSlash(rel)
		if b.VirtualPrefix == vfs.SkillsPrefix && skills.IsAuthoringArtifact(filepath.Base(p)) {
			return nil
		}
		if glob != "" {
			if ok, _ := doublestar.Match(glob, relSlash); !ok {
				return nil
			}
		}
		if info, err := d.Info(); err != nil || info.Size() > maxSearchFileSize {
			return nil
		}

		hits, err := scanFile(p, re)
		if err != nil || len(hits) == 0 {
			return nil
		}
		virtual := cleaned + "/" + relSlash
		mu.Lock()
		defer mu.Unlock()
		for _, h := range hits {
			if len(matches) >= maxSearchMatches {
				return errMatchLimit
			}
			h.Path = virtual
			matches = append(matches, h)
		}
		return nil
	})
	if walkErr != nil && !errors.Is(walkErr, errMatchLimit) {
		return nil, walkErr
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Path != matches[j].Path {
			return matches[i].Path < matches[j].Path
		}
		return matches[i].Line < matches[j].Line
	})
	return matches, nil
}

// scanFile collects the matching lines of one file.
func scanFile(physical string, re *regexp.Regexp) ([]Match, error) {
	file, err := os.Open(physical)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var hits []Match
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	line := 0
	for scanner.Scan() {
		line++
		if re.Match(scanner.Bytes()) {
			hits = append(hits, Match{Line: line, Text: scanner.Text()})
		}
	}
	return hits, scanner.Err()
}

// Glob matches filenames recursively under scope using gitignore-style
// ** patterns and returns entries with virtual paths. Parent-directory
// segments in the pattern are rejected before any storage access; the
// walk never leaves the scoped subtree.
func (f *Facade) Glob(pattern, scope string) ([]FileEntry, error) {
	for _, seg := range strings.Split(pattern, "/") {
		if seg == ".." {
			return nil, vfs.ErrPathEscape
		}
	}
	cleaned, err := vfs.Normalize(scope)
	if err != nil {
		return nil, err
	}
	b, _, err := f.resolver.BindingFor(cleaned)
	if err != nil {
		return nil, err
	}
	root, err := f.resolver.ToPhysical(cleaned)
	if err != nil {
		return nil, err
	}
	physMatches, err := doublestar.FilepathGlob(filepath.Join(root, filepath.FromSlash(pattern)))
	if err != nil {
		return nil, err
	}

	entries := make([]FileEntry, 0, len(physMatches))
	for _, p := range physMatches {
		if b.VirtualPrefix == vfs.SkillsPrefix && skills.IsAuthoringArtifact(filepath.Base(p)) {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		virtual, err := f.resolver.ToVirtual(p)
		if err != nil {
			continue
		}
		entries = append(entries, FileEntry{
			Path:     virtual,
			IsDir:    info.IsDir(),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}
