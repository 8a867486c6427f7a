package signals

import (
	"path"
	"strings"
)

// File is one file reported by the walker.
type File struct {
	// Path is slash-separated and relative to the folder root.
	Path string
	Stem string
	Ext  string
}

// FolderContents is the walker's view of one candidate folder. All paths
// are slash-separated and relative to Root.
type FolderContents struct {
	Root       string
	Name       string
	Subfolders []string
	Files      []File
	IniFiles   []string
}

// NewFile splits a relative path into a File.
func NewFile(rel string) File {
	rel = path.Clean(strings.ReplaceAll(rel, "\\", "/"))
	base := path.Base(rel)
	ext := path.Ext(base)
	return File{Path: rel, Stem: strings.TrimSuffix(base, ext), Ext: strings.ToLower(strings.TrimPrefix(ext, "."))}
}

// depth is the number of segments in a relative path; root-level items have
// depth one.
func depth(rel string) int {
	rel = strings.Trim(rel, "/")
	if rel == "" || rel == "." {
		return 0
	}
	return strings.Count(rel, "/") + 1
}
