// Package openapi discovers existing OpenAPI/Swagger documents in a scanned
// tree and generates OpenAPI 3.0 specifications from extracted endpoints.
package openapi

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mehmetkoksal-w/routemap/internal/extract"
	"github.com/mehmetkoksal-w/routemap/internal/logger"
)

// Document describes an existing OpenAPI/Swagger file found in a repository.
type Document struct {
	File    string         `json:"file"`    // path relative to the repository root
	Format  string         `json:"format"`  // json or yaml
	Version string         `json:"version"` // e.g. "OpenAPI 3.0.1", "Swagger 2.0"
	Info    map[string]any `json:"info,omitempty"`
	AbsPath string         `json:"-"`
}

var openapiFilePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)swagger\.(json|yaml|yml)$`),
	regexp.MustCompile(`(?i)openapi\.(json|yaml|yml)$`),
	regexp.MustCompile(`(?i)api-docs\.(json|yaml|yml)$`),
	regexp.MustCompile(`(?i)api-specification\.(json|yaml|yml)$`),
	regexp.MustCompile(`(?i)swagger-config\.(json|yaml|yml)$`),
	regexp.MustCompile(`(?i)openapi-config\.(json|yaml|yml)$`),
}

// FindDocuments inspects the given relative file paths under root and returns
// every valid OpenAPI/Swagger document among them.
func FindDocuments(root string, files []string) []Document {
	var docs []Document
	for _, rel := range files {
		base := filepath.Base(rel)
		matched := false
		for _, re := range openapiFilePatterns {
			if re.MatchString(base) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		abs := filepath.Join(root, filepath.FromSlash(rel))
		format, version, info := sniffDocument(abs)
		if format == "" {
			logger.Debug("%s matches an OpenAPI name pattern but is not a valid specification", rel)
			continue
		}
		logger.Info("Found OpenAPI/Swagger file: %s (version: %s)", rel, version)
		docs = append(docs, Document{File: rel, Format: format, Version: version, Info: info, AbsPath: abs})
	}
	return docs
}

// sniffDocument parses a candidate file as JSON first, then YAML, and checks
// for a swagger or openapi version key.
func sniffDocument(path string) (format, version string, info map[string]any) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", "", nil
	}

	var data map[string]any
	if err := json.Unmarshal(content, &data); err == nil {
		format = "json"
	} else if err := yaml.Unmarshal(content, &data); err == nil {
		format = "yaml"
	} else {
		return "", "", nil
	}

	info, _ = data["info"].(map[string]any)
	if v, ok := data["swagger"].(string); ok {
		return format, "Swagger " + v, info
	}
	if v, ok := data["openapi"].(string); ok {
		return format, "OpenAPI " + v, info
	}
	return "", "", nil
}

// CopyDocument saves a found document into outputDir, keeping its base name.
func CopyDocument(doc Document, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", err
	}
	content, err := os.ReadFile(doc.AbsPath)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", doc.AbsPath, err)
	}
	dest := filepath.Join(outputDir, filepath.Base(doc.File))
	if err := os.WriteFile(dest, content, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	return dest, nil
}

// Spec is a generated OpenAPI 3.0 document. Maps keep the shape loose so both
// json and yaml marshalling produce the expected structure.
type Spec struct {
	OpenAPI string                    `json:"openapi" yaml:"openapi"`
	Info    SpecInfo                  `json:"info" yaml:"info"`
	Paths   map[string]map[string]any `json:"paths" yaml:"paths"`
}

type SpecInfo struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Version     string `json:"version" yaml:"version"`
}

var generableMethods = map[string]bool{
	"get": true, "post": true, "put": true, "delete": true,
	"patch": true, "options": true, "head": true,
}

// Generate builds an OpenAPI 3.0.0 specification from extracted endpoints.
// Router-level methods that have no HTTP equivalent (ALL, USE) are skipped.
func Generate(result extract.RepositoryResult) *Spec {
	logger.Info("Generating OpenAPI specification for %s with %d endpoints", result.Repository, result.EndpointCount)

	spec := &Spec{
		OpenAPI: "3.0.0",
		Info: SpecInfo{
			Title:       "API Documentation for " + result.Repository,
			Description: "Automatically generated API documentation for " + result.Repository,
			Version:     "1.0.0",
		},
		Paths: map[string]map[string]any{},
	}

	for _, ep := range result.Endpoints {
		method := strings.ToLower(ep.Method)
		if !generableMethods[method] {
			continue
		}
		if spec.Paths[ep.Path] == nil {
			spec.Paths[ep.Path] = map[string]any{}
		}

		parameters := []map[string]any{}
		hasBody := false
		for _, p := range ep.Parameters {
			switch p.Kind {
			case extract.ParamBody:
				hasBody = true
			case extract.ParamPath:
				parameters = append(parameters, map[string]any{
					"name": p.Name, "in": "path", "required": true,
					"schema": map[string]any{"type": "string"},
				})
			case extract.ParamQuery, extract.ParamHeader, extract.ParamCookie:
				parameters = append(parameters, map[string]any{
					"name": p.Name, "in": string(p.Kind), "required": false,
					"schema": map[string]any{"type": "string"},
				})
			}
		}

		operation := map[string]any{
			"summary":     ep.Method + " " + ep.Path,
			"description": "Source: " + ep.File,
			"parameters":  parameters,
			"responses": map[string]any{
				"200": map[string]any{"description": "Successful operation"},
			},
		}
		if hasBody || method == "post" || method == "put" || method == "patch" {
			operation["requestBody"] = map[string]any{
				"description": "Request body",
				"content": map[string]any{
					"application/json": map[string]any{
						"schema": map[string]any{"type": "object"},
					},
				},
			}
		}
		spec.Paths[ep.Path][method] = operation
	}
	return spec
}

// Save writes a generated specification to outputDir as
// openapi-<repo>.<format>, where format is json or yaml.
func Save(spec *Spec, outputDir, repoName, format string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", err
	}
	if format != "json" && format != "yaml" {
		return "", fmt.Errorf("unknown openapi output format %q (want json or yaml)", format)
	}

	var data []byte
	var err error
	if format == "json" {
		data, err = json.MarshalIndent(spec, "", "  ")
	} else {
		data, err = yaml.Marshal(spec)
	}
	if err != nil {
		return "", fmt.Errorf("marshal openapi spec: %w", err)
	}

	path := filepath.Join(outputDir, fmt.Sprintf("openapi-%s.%s", repoName, format))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	logger.Info("Saved generated OpenAPI specification to %s", path)
	return path, nil
}

// SortedPaths returns the spec's paths in deterministic order, for reporting.
func (s *Spec) SortedPaths() []string {
	paths := make([]string, 0, len(s.Paths))
	for p := range s.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
