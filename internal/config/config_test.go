package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("default output format = %q, want text", cfg.Output.Format)
	}
	if len(cfg.Scan.ExcludeGlobs) == 0 {
		t.Error("default exclude globs are empty")
	}
	if !cfg.FindOpenAPI() || !cfg.GenerateOpenAPI() {
		t.Error("OpenAPI discovery and generation should default on")
	}
}

func TestLoadMergesUserConfig(t *testing.T) {
	root := t.TempDir()
	contents := `{
  // workspace config
  "schemaVersion": "1",
  "scan": {
    "languages": ["java", "python"],
    "excludeGlobs": ["generated/**"],
  },
  "output": { "format": "json" },
  "github": { "token": "tok_abc" },
  "openapi": { "generateIfNone": false },
}`
	if err := os.WriteFile(filepath.Join(root, FileName), []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Scan.Languages) != 2 || cfg.Scan.Languages[0] != "java" {
		t.Errorf("languages = %v", cfg.Scan.Languages)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("output format = %q, want json", cfg.Output.Format)
	}
	if cfg.GitHub.Token != "tok_abc" {
		t.Errorf("token = %q", cfg.GitHub.Token)
	}
	if cfg.GenerateOpenAPI() {
		t.Error("generateIfNone=false was not honored")
	}
	if !cfg.FindOpenAPI() {
		t.Error("findExisting should stay on when unset")
	}

	found := false
	gitDefault := false
	for _, g := range cfg.Scan.ExcludeGlobs {
		if g == "generated/**" {
			found = true
		}
		if g == ".git/**" {
			gitDefault = true
		}
	}
	if !found || !gitDefault {
		t.Errorf("exclude globs missing merge results: %v", cfg.Scan.ExcludeGlobs)
	}
}

func TestMergeGlobsDeduplicates(t *testing.T) {
	merged := mergeGlobs([]string{"a/**", "b/**"}, []string{" a/** ", "c//d/**", ""})
	want := []string{"a/**", "b/**", "c/d/**"}
	if len(merged) != len(want) {
		t.Fatalf("merged = %v, want %v", merged, want)
	}
	for i := range want {
		if merged[i] != want[i] {
			t.Errorf("merged[%d] = %q, want %q", i, merged[i], want[i])
		}
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"unknown top-level key", `{"scann": {"languages": ["java"]}}`},
		{"unsupported language", `{"scan": {"languages": ["cobol"]}}`},
		{"bad output format", `{"output": {"format": "xml"}}`},
		{"wrong kind", `{"kind": "something-else"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			if err := os.WriteFile(filepath.Join(root, FileName), []byte(tt.contents), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(root); err == nil {
				t.Errorf("Load accepted %s", tt.contents)
			}
		})
	}
}
