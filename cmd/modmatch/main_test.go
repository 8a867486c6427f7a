package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"modmatch/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	library    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(homeDir, ".cache"))
	t.Setenv("MODMATCH_CATALOG", "")

	catalogPath := filepath.Join(base, "catalog.json")
	testsupport.WriteText(t, catalogPath, testsupport.SampleCatalogJSON)

	configPath := filepath.Join(base, "modmatch.toml")
	testsupport.WriteText(t, configPath, fmt.Sprintf(`[paths]
catalog = %q
cache_dir = %q

[rerank]
provider = "lexical"
cache = "sqlite"

[batch]
concurrency = 2

[logging]
level = "error"
`, catalogPath, filepath.Join(base, "cache")))

	library := testsupport.WriteTree(t, filepath.Join(base, "Mods"), map[string]string{
		"Unnamed/mod.ini": "[TextureOverrideBody]\nhash = a1b2c3d4\n",
	})
	if err := os.MkdirAll(filepath.Join(library, "Kamisato"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	return &cliTestEnv{baseDir: base, configPath: configPath, library: library}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	full := args
	if configPath != "" {
		full = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(full)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\n--- output ---\n%s", needle, haystack)
	}
}

func TestMatchCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"match", filepath.Join(env.library, "Unnamed")}, env.configPath)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	requireContains(t, out, "Auto Matched: Hu Tao")
	requireContains(t, out, "Confidence: High")
	requireContains(t, out, "Decided by: hash")

	out, _, err = runCLI(t, []string{"match", "--explain", filepath.Join(env.library, "Unnamed")}, env.configPath)
	if err != nil {
		t.Fatalf("match --explain: %v", err)
	}
	requireContains(t, out, "Reasons for Hu Tao:")
	requireContains(t, out, "Stage trace:")
	requireContains(t, out, "Signals:")
}

func TestMatchCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"match", "--json", "--explain", filepath.Join(env.library, "Unnamed")}, env.configPath)
	if err != nil {
		t.Fatalf("match --json: %v", err)
	}
	var view matchView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if view.Status != "auto_matched" || view.Stage != "hash" {
		t.Fatalf("unexpected status %q stage %q", view.Status, view.Stage)
	}
	if len(view.Candidates) == 0 || view.Candidates[0].Name != "Hu Tao" {
		t.Fatalf("unexpected candidates %+v", view.Candidates)
	}
	if len(view.Candidates[0].Reasons) == 0 {
		t.Fatal("expected reasons with --explain")
	}
	if view.Signals == nil || len(view.Signals.Hashes) == 0 {
		t.Fatalf("expected signals with hashes, got %+v", view.Signals)
	}
}

func TestMatchCommandRejectsBadFlags(t *testing.T) {
	env := setupCLITestEnv(t)
	folder := filepath.Join(env.library, "Unnamed")

	if _, _, err := runCLI(t, []string{"match", "--mode", "deep", folder}, env.configPath); err == nil {
		t.Fatal("expected invalid mode error")
	}
	if _, _, err := runCLI(t, []string{"match", "--strict", folder}, env.configPath); err == nil {
		t.Fatal("expected --strict without --type to fail")
	}
	if _, _, err := runCLI(t, []string{"match", "--json", "--yaml", folder}, env.configPath); err == nil {
		t.Fatal("expected --json and --yaml to conflict")
	}
}

func TestMatchCommandMissingFolder(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"match", filepath.Join(env.library, "Missing")}, env.configPath)
	if err == nil {
		t.Fatal("expected error for missing folder")
	}
	requireContains(t, err.Error(), "Missing")
}

func TestBatchCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"batch", env.library}, env.configPath)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	requireContains(t, out, "Unnamed")
	requireContains(t, out, "Auto Matched: Hu Tao")
	requireContains(t, out, "auto_matched: 1")

	out, _, err = runCLI(t, []string{"batch", "--json", "--concurrency", "1", env.library}, env.configPath)
	if err != nil {
		t.Fatalf("batch --json: %v", err)
	}
	var view batchView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if len(view.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(view.Results))
	}
	if view.Counts["auto_matched"] != 1 {
		t.Fatalf("unexpected counts %v", view.Counts)
	}
	if view.CorrelationID == "" {
		t.Fatal("expected correlation id")
	}
}

func TestBatchCommandEmptyLibrary(t *testing.T) {
	env := setupCLITestEnv(t)
	empty := filepath.Join(env.baseDir, "Empty")
	if err := os.MkdirAll(empty, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	out, _, err := runCLI(t, []string{"batch", empty}, env.configPath)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	requireContains(t, out, "No mod folders found")
}

func TestCatalogCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"catalog", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog stats: %v", err)
	}
	requireContains(t, out, "Entries\t10")

	out, _, err = runCLI(t, []string{"catalog", "lookup", "hu", "tao"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog lookup: %v", err)
	}
	requireContains(t, out, "Hu Tao")
	requireContains(t, out, "Cherries Snow-Laden")

	if _, _, err := runCLI(t, []string{"catalog", "lookup", "Furina"}, env.configPath); err == nil {
		t.Fatal("expected lookup of unknown entry to fail")
	}
}

func TestCatalogOverrideFlag(t *testing.T) {
	env := setupCLITestEnv(t)
	other := filepath.Join(env.baseDir, "other.json")
	testsupport.WriteText(t, other, `[{"name": "Furina", "object_type": "Character"}]`)

	out, _, err := runCLI(t, []string{"--catalog", other, "catalog", "stats", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog stats: %v", err)
	}
	requireContains(t, out, `"entries": 1`)
}

func TestCacheCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"cache", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	requireContains(t, out, "Re-rank cache is empty")

	// Kamisato lands in review and the lexical provider scores its shortlist.
	if _, _, err := runCLI(t, []string{"match", "--mode", "full", filepath.Join(env.library, "Kamisato")}, env.configPath); err != nil {
		t.Fatalf("match: %v", err)
	}
	out, _, err = runCLI(t, []string{"cache", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	requireContains(t, out, "lexical")

	out, _, err = runCLI(t, []string{"cache", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Cleared 1 cached result(s)")

	if _, _, err := runCLI(t, []string{"cache", "remove", "missing"}, env.configPath); err == nil {
		t.Fatal("expected remove of unknown key to fail")
	}
}
