// Package fileops implements the file-operation facade the agent uses
// against its virtual filesystem: list, read, write, edit, search and
// glob, plus a workspace archive export.
//
// Every operation takes and returns virtual paths only. Resolution,
// mount access modes and skill visibility are delegated to the vfs
// resolver; results never leak physical path detail.
package fileops
