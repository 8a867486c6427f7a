package folderscan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"modmatch/internal/services"
	"modmatch/internal/signals"
)

// Options bounds a scan.
type Options struct {
	// MaxDepth is the deepest relative path reported; root-level entries have
	// depth one. Zero or less means unlimited.
	MaxDepth int
	Excludes []string
}

// Scan walks the folder at root.
func Scan(root string, opts Options) (signals.FolderContents, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return signals.FolderContents{}, services.Wrap(services.ErrNotFound, "folderscan", "stat", root, err)
		}
		return signals.FolderContents{}, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return signals.FolderContents{}, services.Wrap(services.ErrValidation, "folderscan", "stat", root+" is not a directory", nil)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return ScanFS(os.DirFS(abs), abs, opts)
}

// ScanFS walks fsys, which must be rooted at the folder; root is only used
// for the reported Root and Name.
func ScanFS(fsys fs.FS, root string, opts Options) (signals.FolderContents, error) {
	contents := signals.FolderContents{
		Root: root,
		Name: filepath.Base(filepath.Clean(root)),
	}
	err := fs.WalkDir(fsys, ".", func(rel string, d fs.DirEntry, walkErr error) error {
		if rel == "." {
			return walkErr
		}
		if walkErr != nil {
			// Unreadable subtrees are skipped rather than failing the folder.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if excluded(opts.Excludes, rel) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		depth := strings.Count(rel, "/") + 1
		if opts.MaxDepth > 0 && depth > opts.MaxDepth {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		switch {
		case d.IsDir():
			contents.Subfolders = append(contents.Subfolders, rel)
		case d.Type().IsRegular():
			contents.Files = append(contents.Files, signals.NewFile(rel))
			if strings.EqualFold(path.Ext(rel), ".ini") {
				contents.IniFiles = append(contents.IniFiles, rel)
			}
		}
		return nil
	})
	if err != nil {
		return signals.FolderContents{}, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(contents.Subfolders)
	sort.Slice(contents.Files, func(i, j int) bool { return contents.Files[i].Path < contents.Files[j].Path })
	sort.Strings(contents.IniFiles)
	return contents, nil
}

// Discover returns the absolute paths of the directories directly beneath
// library, sorted by name, skipping excluded ones.
func Discover(library string, excludes []string) ([]string, error) {
	entries, err := os.ReadDir(library)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "folderscan", "discover", library, err)
		}
		return nil, fmt.Errorf("read library %s: %w", library, err)
	}
	abs, err := filepath.Abs(library)
	if err != nil {
		abs = library
	}
	var folders []string
	for _, entry := range entries {
		if !entry.IsDir() || excluded(excludes, entry.Name()) {
			continue
		}
		folders = append(folders, filepath.Join(abs, entry.Name()))
	}
	sort.Strings(folders)
	return folders, nil
}

func excluded(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
