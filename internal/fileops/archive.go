package fileops

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/agentfs/agentfs/internal/vfs"
)

// Archive streams the workspace subtree as a tar.gz snapshot. Entry
// names are relative to the workspace root, so the archive carries no
// physical path detail.
func (f *Facade) Archive(w io.Writer) error {
	root, err := f.resolver.ToPhysical(vfs.WorkspacePrefix)
	if err != nil {
		return err
	}
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil || rel == "." {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		// Symlinks and other irregular files are skipped; the mount is
		// not expected to produce them, and they must not leak targets
		// outside the workspace into the snapshot.
		if !info.Mode().IsRegular() && !info.IsDir() {
			return nil
		}
		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		if info.IsDir() {
			header.Name += "/"
		}
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		file, err := os.Open(p)
		if err != nil {
			return err
		}
		defer file.Close()
		_, err = io.Copy(tw, file)
		return err
	})
	if walkErr != nil {
		tw.Close()
		gz.Close()
		return fmt.Errorf("archive workspace: %w", walkErr)
	}
	if err := tw.Close(); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}
