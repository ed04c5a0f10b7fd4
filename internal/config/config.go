// Package config loads the workspace configuration from
// .routemap.jsonc and layers it over built-in defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsonc "github.com/muhammadmuzzammil1998/jsonc"

	"github.com/mehmetkoksal-w/routemap/internal/validate"
	"github.com/mehmetkoksal-w/routemap/schemas"
)

// FileName is the workspace configuration file looked up under the
// scan root.
const FileName = ".routemap.jsonc"

// ScanConfig selects what the scanner processes.
type ScanConfig struct {
	Languages    []string `json:"languages,omitempty"`
	ExcludeGlobs []string `json:"excludeGlobs,omitempty"`
}

// OutputConfig selects how results are rendered.
type OutputConfig struct {
	Format string `json:"format,omitempty"`
	File   string `json:"file,omitempty"`
}

// GitHubConfig holds GitHub API access settings.
type GitHubConfig struct {
	Token string `json:"token,omitempty"`
}

// OpenAPIConfig controls OpenAPI document discovery and generation.
type OpenAPIConfig struct {
	FindExisting   *bool  `json:"findExisting,omitempty"`
	GenerateIfNone *bool  `json:"generateIfNone,omitempty"`
	OutputDir      string `json:"outputDir,omitempty"`
	OutputFormat   string `json:"outputFormat,omitempty"`
}

// Config is the full workspace configuration.
type Config struct {
	SchemaVersion string        `json:"schemaVersion"`
	Kind          string        `json:"kind"`
	Scan          ScanConfig    `json:"scan"`
	Output        OutputConfig  `json:"output"`
	GitHub        GitHubConfig  `json:"github"`
	OpenAPI       OpenAPIConfig `json:"openapi"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		SchemaVersion: "1",
		Kind:          "routemap-config",
		Scan: ScanConfig{
			ExcludeGlobs: defaultExcludeGlobs(),
		},
		Output: OutputConfig{Format: "text"},
		OpenAPI: OpenAPIConfig{
			OutputDir:    "openapi-docs",
			OutputFormat: "json",
		},
	}
}

// Load reads .routemap.jsonc from root and merges it over the
// defaults. A missing file yields the defaults without error.
func Load(root string) (Config, error) {
	cfg := Default()
	path := filepath.Join(root, FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if err := validate.JSONC(path, schemas.Config); err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	var user Config
	if err := json.Unmarshal(jsonc.ToJSON(data), &user); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if user.SchemaVersion != "" {
		cfg.SchemaVersion = user.SchemaVersion
	}
	if len(user.Scan.Languages) > 0 {
		cfg.Scan.Languages = user.Scan.Languages
	}
	cfg.Scan.ExcludeGlobs = mergeGlobs(cfg.Scan.ExcludeGlobs, user.Scan.ExcludeGlobs)
	if user.Output.Format != "" {
		cfg.Output.Format = user.Output.Format
	}
	if user.Output.File != "" {
		cfg.Output.File = user.Output.File
	}
	if user.GitHub.Token != "" {
		cfg.GitHub.Token = user.GitHub.Token
	}
	if user.OpenAPI.FindExisting != nil {
		cfg.OpenAPI.FindExisting = user.OpenAPI.FindExisting
	}
	if user.OpenAPI.GenerateIfNone != nil {
		cfg.OpenAPI.GenerateIfNone = user.OpenAPI.GenerateIfNone
	}
	if user.OpenAPI.OutputDir != "" {
		cfg.OpenAPI.OutputDir = user.OpenAPI.OutputDir
	}
	if user.OpenAPI.OutputFormat != "" {
		cfg.OpenAPI.OutputFormat = user.OpenAPI.OutputFormat
	}
	return cfg, nil
}

// FindOpenAPI reports whether existing OpenAPI documents should be
// located (enabled unless switched off).
func (c Config) FindOpenAPI() bool {
	return c.OpenAPI.FindExisting == nil || *c.OpenAPI.FindExisting
}

// GenerateOpenAPI reports whether a spec should be generated when a
// repository carries none.
func (c Config) GenerateOpenAPI() bool {
	return c.OpenAPI.GenerateIfNone == nil || *c.OpenAPI.GenerateIfNone
}

func defaultExcludeGlobs() []string {
	return []string{
		".git/**",
		".routemap/**",
		"node_modules/**",
		"vendor/**",
		"third_party/**",
		"venv/**",
		".venv/**",
		"__pycache__/**",
		"dist/**",
		"build/**",
		"coverage/**",
		"target/**",
		".next/**",
		".gradle/**",
		".idea/**",
		".vscode/**",
		"**/*.min.*",
		"**/*.lock",
		"**/*.generated.*",
	}
}

func mergeGlobs(defaults, user []string) []string {
	seen := make(map[string]struct{})
	var merged []string
	appendIfMissing := func(globs []string) {
		for _, g := range globs {
			norm := normalizeGlob(g)
			if norm == "" {
				continue
			}
			if _, ok := seen[norm]; ok {
				continue
			}
			seen[norm] = struct{}{}
			merged = append(merged, norm)
		}
	}
	appendIfMissing(defaults)
	appendIfMissing(user)
	return merged
}

func normalizeGlob(g string) string {
	trimmed := strings.TrimSpace(g)
	if trimmed == "" {
		return ""
	}
	trimmed = strings.ReplaceAll(trimmed, "\\", "/")
	for strings.Contains(trimmed, "//") {
		trimmed = strings.ReplaceAll(trimmed, "//", "/")
	}
	return filepath.ToSlash(trimmed)
}

// WriteJSON marshals data with indentation and writes it to path.
func WriteJSON(path string, data any) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
