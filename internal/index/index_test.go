package index

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mehmetkoksal-w/routemap/internal/extract"
	"github.com/mehmetkoksal-w/routemap/internal/model"
)

func testArtifact(scanID, repo string, endpoints []extract.Endpoint) *model.ScanArtifact {
	return &model.ScanArtifact{
		SchemaVersion: model.SchemaVersion,
		Kind:          "routemap-scan",
		ScanID:        scanID,
		Repository:    repo,
		Root:          "/tmp/" + repo,
		CommitHash:    "abc123",
		StartedAt:     time.Now().UTC().Add(-time.Second).Format(time.RFC3339),
		CompletedAt:   time.Now().UTC().Format(time.RFC3339),
		Result: extract.RepositoryResult{
			Repository:       repo,
			Endpoints:        endpoints,
			EndpointCount:    len(endpoints),
			DeclarationsSeen: len(endpoints),
			FilesScanned:     3,
		},
	}
}

func TestOpenCreatesSchema(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "routemap.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = db.Close() }()

	version, err := GetIndexSchemaVersion(db)
	if err != nil {
		t.Fatalf("GetIndexSchemaVersion: %v", err)
	}
	if want := len(indexMigrations) - 1; version != want {
		t.Errorf("schema version = %d, want %d", version, want)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routemap.db")
	db1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	_ = db1.Close()

	db2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer func() { _ = db2.Close() }()

	version, err := GetIndexSchemaVersion(db2)
	if err != nil {
		t.Fatalf("GetIndexSchemaVersion: %v", err)
	}
	if want := len(indexMigrations) - 1; version != want {
		t.Errorf("schema version after reopen = %d, want %d", version, want)
	}
}

func TestSaveScanRoundTrip(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "routemap.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = db.Close() }()

	endpoints := []extract.Endpoint{
		{
			Method:    "GET",
			Path:      "/api/v1/users/{id}",
			File:      "src/UserController.java",
			Line:      42,
			Framework: "spring",
			Handler:   "getUser",
			Parameters: []extract.Parameter{
				{Name: "id", Kind: extract.ParamPath, Identifier: "id"},
				{Name: "Authorization", Kind: extract.ParamHeader, Identifier: "token"},
			},
		},
		{
			Method:    "POST",
			Path:      "/api/v1/users",
			File:      "src/UserController.java",
			Line:      58,
			Framework: "spring",
			Handler:   "createUser",
		},
	}
	art := testArtifact("scan-1", "users-service", endpoints)
	if err := SaveScan(db, art); err != nil {
		t.Fatalf("SaveScan: %v", err)
	}

	got, err := EndpointsForScan(db, "scan-1")
	if err != nil {
		t.Fatalf("EndpointsForScan: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d endpoints, want 2", len(got))
	}
	first := got[0]
	if first.Method != "GET" || first.Path != "/api/v1/users/{id}" {
		t.Errorf("first endpoint = %s %s", first.Method, first.Path)
	}
	if len(first.Parameters) != 2 {
		t.Fatalf("got %d params, want 2", len(first.Parameters))
	}
	if first.Parameters[0].Name != "id" || first.Parameters[0].Kind != extract.ParamPath {
		t.Errorf("param[0] = %+v", first.Parameters[0])
	}
	if first.Parameters[1].Name != "Authorization" || first.Parameters[1].Identifier != "token" {
		t.Errorf("param[1] = %+v", first.Parameters[1])
	}
	if got[1].Handler != "createUser" || len(got[1].Parameters) != 0 {
		t.Errorf("second endpoint = %+v", got[1])
	}
}

func TestLatestScan(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "routemap.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = db.Close() }()

	none, err := LatestScan(db, "never-scanned")
	if err != nil {
		t.Fatalf("LatestScan empty: %v", err)
	}
	if none != nil {
		t.Errorf("expected nil summary for unscanned repository, got %+v", none)
	}

	older := testArtifact("scan-old", "users-service", nil)
	older.CompletedAt = time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	newer := testArtifact("scan-new", "users-service", nil)
	for _, art := range []*model.ScanArtifact{older, newer} {
		if err := SaveScan(db, art); err != nil {
			t.Fatalf("SaveScan(%s): %v", art.ScanID, err)
		}
	}

	latest, err := LatestScan(db, "users-service")
	if err != nil {
		t.Fatalf("LatestScan: %v", err)
	}
	if latest == nil || latest.ScanID != "scan-new" {
		t.Fatalf("latest = %+v, want scan-new", latest)
	}
	if latest.CommitHash != "abc123" || latest.FilesScanned != 3 {
		t.Errorf("summary fields = %+v", latest)
	}
}
