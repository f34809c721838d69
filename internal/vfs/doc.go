// Package vfs implements the virtual path layer of the agent filesystem.
//
// Every path the agent sees is virtual and lives under one of three
// canonical prefixes: /workspace (writable), /ticket (read-only,
// optional) and /skills (read-only, gate-mediated). The resolver maps
// virtual paths to physical storage locations and back; the supervisor
// verifies the physical locations are reachable before a workspace is
// handed to a caller. No path outside the canonical prefixes is ever
// resolvable.
package vfs
