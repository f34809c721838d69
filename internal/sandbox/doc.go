// Package sandbox runs agent commands inside an isolated filesystem
// view built with bubblewrap.
//
// The workspace's physical directory is bound at the logical root's
// /workspace and used as the working directory, so absolute paths in
// the command address workspace storage, never the host and never
// another workspace. A fixed set of host directories is exposed
// read-only to supply the interpreter toolchain; scratch space is a
// per-command tmpfs discarded when the command exits.
package sandbox
