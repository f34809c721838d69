package fileops

import "time"

// FileEntry describes one child in a listing. Paths are virtual.
type FileEntry struct {
	Path     string    `json:"path"`
	IsDir    bool      `json:"is_dir"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Match is one search hit: virtual path, 1-based line number and the
// matching line's text.
type Match struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Text string `json:"text"`
}
