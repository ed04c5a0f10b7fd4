package openapi

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mehmetkoksal-w/routemap/internal/extract"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindDocuments(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/openapi.json", `{"openapi": "3.0.1", "info": {"title": "Users API"}, "paths": {}}`)
	writeFile(t, root, "api/swagger.yaml", "swagger: \"2.0\"\ninfo:\n  title: Legacy API\npaths: {}\n")
	writeFile(t, root, "conf/openapi.yml", "just: some yaml\n")
	writeFile(t, root, "src/routes.py", "# not a spec\n")

	files := []string{"docs/openapi.json", "api/swagger.yaml", "conf/openapi.yml", "src/routes.py"}
	docs := FindDocuments(root, files)
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2: %+v", len(docs), docs)
	}
	if docs[0].File != "docs/openapi.json" || docs[0].Format != "json" || docs[0].Version != "OpenAPI 3.0.1" {
		t.Errorf("first doc = %+v", docs[0])
	}
	if docs[1].Format != "yaml" || docs[1].Version != "Swagger 2.0" {
		t.Errorf("second doc = %+v", docs[1])
	}
	if title, _ := docs[0].Info["title"].(string); title != "Users API" {
		t.Errorf("info title = %q", title)
	}
}

func TestCopyDocument(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "openapi.json", `{"openapi": "3.0.0", "paths": {}}`)
	docs := FindDocuments(root, []string{"openapi.json"})
	if len(docs) != 1 {
		t.Fatalf("got %d documents, want 1", len(docs))
	}

	outDir := filepath.Join(t.TempDir(), "out")
	dest, err := CopyDocument(docs[0], outDir)
	if err != nil {
		t.Fatalf("CopyDocument: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read copy: %v", err)
	}
	if string(data) != `{"openapi": "3.0.0", "paths": {}}` {
		t.Errorf("copied content = %q", data)
	}
}

func TestGenerate(t *testing.T) {
	result := extract.RepositoryResult{
		Repository: "users-service",
		Endpoints: []extract.Endpoint{
			{
				Method: "GET", Path: "/users/{id}", File: "src/users.py", Framework: "fastapi",
				Parameters: []extract.Parameter{
					{Name: "id", Kind: extract.ParamPath, Identifier: "id"},
					{Name: "verbose", Kind: extract.ParamQuery, Identifier: "verbose"},
					{Name: "Authorization", Kind: extract.ParamHeader, Identifier: "token"},
				},
			},
			{
				Method: "POST", Path: "/users", File: "src/users.py", Framework: "fastapi",
				Parameters: []extract.Parameter{{Name: "payload", Kind: extract.ParamBody, Identifier: "payload"}},
			},
			{Method: "USE", Path: "/admin", File: "src/app.js", Framework: "express"},
		},
		EndpointCount: 3,
	}

	spec := Generate(result)
	if spec.OpenAPI != "3.0.0" {
		t.Errorf("openapi version = %q", spec.OpenAPI)
	}
	if len(spec.Paths) != 2 {
		t.Fatalf("got %d paths, want 2 (USE must be skipped): %v", len(spec.Paths), spec.SortedPaths())
	}

	getOp, ok := spec.Paths["/users/{id}"]["get"].(map[string]any)
	if !ok {
		t.Fatalf("missing get operation for /users/{id}")
	}
	params, _ := getOp["parameters"].([]map[string]any)
	if len(params) != 3 {
		t.Fatalf("got %d parameters, want 3: %v", len(params), params)
	}
	if params[0]["in"] != "path" || params[0]["required"] != true {
		t.Errorf("path param = %v", params[0])
	}
	if params[2]["name"] != "Authorization" || params[2]["in"] != "header" {
		t.Errorf("header param = %v", params[2])
	}
	if _, hasBody := getOp["requestBody"]; hasBody {
		t.Error("get operation should not carry a request body")
	}

	postOp, ok := spec.Paths["/users"]["post"].(map[string]any)
	if !ok {
		t.Fatalf("missing post operation for /users")
	}
	if _, hasBody := postOp["requestBody"]; !hasBody {
		t.Error("post operation missing request body")
	}
}

func TestSaveFormats(t *testing.T) {
	spec := Generate(extract.RepositoryResult{Repository: "svc", Endpoints: []extract.Endpoint{
		{Method: "GET", Path: "/health", File: "app.js", Framework: "express"},
	}})

	dir := t.TempDir()
	jsonPath, err := Save(spec, dir, "svc", "json")
	if err != nil {
		t.Fatalf("Save json: %v", err)
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("saved spec is not valid json: %v", err)
	}

	if _, err := Save(spec, dir, "svc", "yaml"); err != nil {
		t.Fatalf("Save yaml: %v", err)
	}
	if _, err := Save(spec, dir, "svc", "toml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
