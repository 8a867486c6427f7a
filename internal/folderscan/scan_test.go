package folderscan_test

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"testing/fstest"

	"modmatch/internal/folderscan"
	"modmatch/internal/services"
	"modmatch/internal/testsupport"
)

func TestScanListsContentsSorted(t *testing.T) {
	root := filepath.Join(t.TempDir(), "HuTao Mod")
	testsupport.WriteTree(t, root, map[string]string{
		"mod.ini":              "[TextureOverrideHuTaoBody]\n",
		"Body/HuTaoBody.dds":   "x",
		"Body/Extra/deep.ini":  "[x]\n",
		"Body/Extra/More/a.b":  "too deep",
		".git/HEAD":            "ref",
		"DISABLED_old/old.ini": "[x]\n",
	})

	contents, err := folderscan.Scan(root, folderscan.Options{MaxDepth: 3, Excludes: []string{"**/.git", "**/DISABLED*"}})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if contents.Name != "HuTao Mod" {
		t.Fatalf("Name = %q", contents.Name)
	}
	if want := []string{"Body", "Body/Extra", "Body/Extra/More"}; !reflect.DeepEqual(contents.Subfolders, want) {
		t.Fatalf("Subfolders = %v, want %v", contents.Subfolders, want)
	}
	var files []string
	for _, f := range contents.Files {
		files = append(files, f.Path)
	}
	if want := []string{"Body/Extra/deep.ini", "Body/HuTaoBody.dds", "mod.ini"}; !reflect.DeepEqual(files, want) {
		t.Fatalf("Files = %v, want %v", files, want)
	}
	if want := []string{"Body/Extra/deep.ini", "mod.ini"}; !reflect.DeepEqual(contents.IniFiles, want) {
		t.Fatalf("IniFiles = %v, want %v", contents.IniFiles, want)
	}
}

func TestScanFSUnlimitedDepth(t *testing.T) {
	fsys := fstest.MapFS{
		"a/b/c/d/e.ini": &fstest.MapFile{Data: []byte("[x]")},
		"Readme.TXT":    &fstest.MapFile{Data: []byte("hi")},
	}
	contents, err := folderscan.ScanFS(fsys, "/mods/Pack", folderscan.Options{})
	if err != nil {
		t.Fatalf("ScanFS failed: %v", err)
	}
	if contents.Name != "Pack" || len(contents.IniFiles) != 1 || len(contents.Subfolders) != 4 {
		t.Fatalf("unexpected contents %+v", contents)
	}
	if contents.Files[0].Ext != "txt" || contents.Files[0].Stem != "Readme" {
		t.Fatalf("file split = %+v", contents.Files[0])
	}
}

func TestScanMissingFolder(t *testing.T) {
	_, err := folderscan.Scan(filepath.Join(t.TempDir(), "missing"), folderscan.Options{})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestScanRejectsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.ini")
	testsupport.WriteText(t, file, "[x]")
	if _, err := folderscan.Scan(file, folderscan.Options{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestDiscover(t *testing.T) {
	library := t.TempDir()
	testsupport.WriteTree(t, library, map[string]string{
		"Zeta/mod.ini":          "",
		"Alpha/mod.ini":         "",
		"DISABLED Beta/mod.ini": "",
		"loose.txt":             "",
	})
	folders, err := folderscan.Discover(library, []string{"**/DISABLED*"})
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	want := []string{filepath.Join(library, "Alpha"), filepath.Join(library, "Zeta")}
	if !reflect.DeepEqual(folders, want) {
		t.Fatalf("Discover = %v, want %v", folders, want)
	}
}
