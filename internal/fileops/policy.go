package fileops

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"

	"github.com/agentfs/agentfs/internal/skills"
	"github.com/agentfs/agentfs/internal/vfs"
)

// documentExtensions are the file types surfaced by listings on the
// workspace and ticket mounts. Skills mounts list every file type, the
// resources/ subtree of a skill may hold anything.
var documentExtensions = map[string]bool{
	".md":   true,
	".txt":  true,
	".csv":  true,
	".tsv":  true,
	".json": true,
	".yaml": true,
	".yml":  true,
	".toml": true,
	".xml":  true,
	".html": true,
	".pdf":  true,
	".docx": true,
	".xlsx": true,
	".pptx": true,
}

// listable reports whether a child entry appears in a listing of the
// given mount. Directories always list.
func listable(b *vfs.Binding, name string, isDir bool) bool {
	if b.VirtualPrefix == vfs.SkillsPrefix {
		return !skills.IsAuthoringArtifact(name)
	}
	if isDir {
		return true
	}
	return documentExtensions[strings.ToLower(filepath.Ext(name))]
}

// hiddenFromRead reports whether a file must never be readable on the
// given mount regardless of its existence. Authoring artifacts inside
// skill packages read as not-found so their presence is not revealed.
func hiddenFromRead(b *vfs.Binding, virtual string) bool {
	return b.VirtualPrefix == vfs.SkillsPrefix && skills.IsAuthoringArtifact(filepath.Base(virtual))
}

// detectText decides whether content may be returned as text. The
// mimetype sniff accepts anything rooted in text/plain; for the rest a
// charset detection pass rescues legacy encodings that the sniffer
// misclassifies as binary.
func detectText(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	for mt := mimetype.Detect(data); mt != nil; mt = mt.Parent() {
		if mt.Is("text/plain") {
			return true
		}
	}
	result, err := chardet.NewTextDetector().DetectBest(data)
	return err == nil && result.Confidence >= 80
}
