package matcher

import (
	"path"
	"strings"
	"testing"
	"testing/fstest"

	"modmatch/internal/signals"
)

// folderSignals collects signals for a folder named name whose files are
// given as relative path to content.
func folderSignals(t *testing.T, name string, files map[string]string, mode signals.Mode) signals.FolderSignals {
	t.Helper()
	fsys := fstest.MapFS{}
	contents := signals.FolderContents{Root: "/mods/" + name, Name: name}
	dirs := map[string]struct{}{}
	for rel, data := range files {
		fsys[rel] = &fstest.MapFile{Data: []byte(data)}
		contents.Files = append(contents.Files, signals.NewFile(rel))
		if strings.EqualFold(path.Ext(rel), ".ini") {
			contents.IniFiles = append(contents.IniFiles, rel)
		}
		for dir := path.Dir(rel); dir != "."; dir = path.Dir(dir) {
			dirs[dir] = struct{}{}
		}
	}
	for dir := range dirs {
		contents.Subfolders = append(contents.Subfolders, dir)
	}
	return signals.Collect(fsys, contents, mode, signals.DefaultIniConfig())
}

func hasReason[T Reason](reasons []Reason) bool {
	for _, r := range reasons {
		if _, ok := r.(T); ok {
			return true
		}
	}
	return false
}

func candidateIDs(cands []Candidate) []int {
	out := make([]int, 0, len(cands))
	for _, c := range cands {
		out = append(out, int(c.EntryID))
	}
	return out
}
