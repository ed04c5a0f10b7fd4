// Package model defines the persisted artifact shapes.
package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mehmetkoksal-w/routemap/internal/extract"
)

// SchemaVersion is the artifact schema version written by this build.
const SchemaVersion = "1"

// Provenance records who produced an artifact and with what.
type Provenance struct {
	CreatedBy        string `json:"createdBy"`
	CreatedAt        string `json:"createdAt"`
	Generator        string `json:"generator,omitempty"`
	GeneratorVersion string `json:"generatorVersion,omitempty"`
}

// ScanArtifact is the JSON artifact describing one repository scan.
type ScanArtifact struct {
	SchemaVersion string                   `json:"schemaVersion"`
	Kind          string                   `json:"kind"`
	ScanID        string                   `json:"scanId"` // UUID
	Repository    string                   `json:"repository"`
	Root          string                   `json:"root,omitempty"`
	CommitHash    string                   `json:"commitHash,omitempty"` // empty if not a git repo
	StartedAt     string                   `json:"startedAt"`
	CompletedAt   string                   `json:"completedAt"`
	Result        extract.RepositoryResult `json:"result"`
	Provenance    Provenance               `json:"provenance"`
}

// WriteScanArtifact writes the artifact to disk.
func WriteScanArtifact(path string, artifact ScanArtifact) error {
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// LoadScanArtifact reads an artifact from disk.
func LoadScanArtifact(path string) (ScanArtifact, error) {
	var a ScanArtifact
	data, err := os.ReadFile(path)
	if err != nil {
		return a, err
	}
	if err := json.Unmarshal(data, &a); err != nil {
		return a, fmt.Errorf("parse %s: %w", path, err)
	}
	return a, nil
}
