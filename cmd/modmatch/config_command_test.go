package main

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.configPath)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigInitSkipsBrokenConfig(t *testing.T) {
	env := setupCLITestEnv(t)
	broken := filepath.Join(env.baseDir, "broken.toml")
	if err := os.WriteFile(broken, []byte("[unknown]\nkey = 1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, _, err := runCLI(t, []string{"config", "validate"}, broken); err == nil {
		t.Fatal("expected validate to reject unknown section")
	}
	target := filepath.Join(t.TempDir(), "config.toml")
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, broken); err != nil {
		t.Fatalf("config init should not load config: %v", err)
	}
}

func TestConfigShowMasksAPIKey(t *testing.T) {
	env := setupCLITestEnv(t)
	data, err := os.ReadFile(env.configPath)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	withKey := string(data) + "\n[llm]\napi_key = \"sk-secret\"\n"
	if err := os.WriteFile(env.configPath, []byte(withKey), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, _, err := runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "sk-secret") {
		t.Fatalf("api key leaked:\n%s", out)
	}
	requireContains(t, out, "********")
	requireContains(t, out, "[rerank]")
}

func TestConfigValidateChecksLLMProvider(t *testing.T) {
	tests := []struct {
		name      string
		provider  string
		args      []string
		reply     string
		status    int
		wantCalls int32
		wantErr   bool
		wantOut   string
	}{
		{name: "healthy", provider: "llm", reply: `{\"ok\":true}`, status: http.StatusOK, wantCalls: 1, wantOut: "LLM provider reachable"},
		{name: "unhealthy", provider: "llm", reply: `{\"ok\":false}`, status: http.StatusOK, wantCalls: 1, wantErr: true},
		{name: "unauthorized", provider: "llm", status: http.StatusUnauthorized, wantCalls: 1, wantErr: true},
		{name: "offline", provider: "llm", args: []string{"--offline"}, status: http.StatusOK, wantOut: "Configuration valid"},
		{name: "lexical provider", provider: "lexical", status: http.StatusOK, wantOut: "Configuration valid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupCLITestEnv(t)
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				if tt.status != http.StatusOK {
					w.WriteHeader(tt.status)
					return
				}
				_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"`+tt.reply+`"}}]}`)
			}))
			defer server.Close()

			data, err := os.ReadFile(env.configPath)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			cfgText := strings.Replace(string(data), `provider = "lexical"`, fmt.Sprintf("provider = %q", tt.provider), 1)
			cfgText += fmt.Sprintf("\n[llm]\napi_key = \"sk-test\"\nbase_url = %q\n", server.URL)
			if err := os.WriteFile(env.configPath, []byte(cfgText), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}

			out, _, err := runCLI(t, append([]string{"config", "validate"}, tt.args...), env.configPath)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected validate to fail, output:\n%s", out)
				}
			} else if err != nil {
				t.Fatalf("config validate: %v", err)
			}
			if tt.wantOut != "" {
				requireContains(t, out, tt.wantOut)
			}
			if got := calls.Load(); got != tt.wantCalls {
				t.Fatalf("expected %d health requests, got %d", tt.wantCalls, got)
			}
		})
	}
}
