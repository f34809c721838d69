package vfs

import "errors"

// Typed errors returned across the file-operation boundary. Callers
// branch on these with errors.Is; messages never carry physical paths.
var (
	// ErrPathNotFound covers paths under no binding, unloaded skills and
	// unlinked tickets alike, so that probing cannot distinguish them.
	ErrPathNotFound = errors.New("path not found")

	// ErrPathEscape marks a normalized path that traverses outside its
	// bound prefix. Rejected before any storage access.
	ErrPathEscape = errors.New("path outside mount")

	// ErrReadOnlyViolation marks a write or edit against the ticket or
	// skills mount.
	ErrReadOnlyViolation = errors.New("mount is read-only")

	// ErrBinaryContent marks a read of non-text content on a mount that
	// restricts reads to text.
	ErrBinaryContent = errors.New("binary content rejected")

	// ErrAmbiguousEdit marks an edit whose target occurs more than once
	// without an explicit replace-all directive.
	ErrAmbiguousEdit = errors.New("edit target is ambiguous")

	// ErrMountNotReady means physical storage did not become available
	// within the bounded retry budget. Fatal for the workspace binding.
	ErrMountNotReady = errors.New("mount not ready")
)
