// Package scan orchestrates endpoint extraction across a repository tree.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mehmetkoksal-w/routemap/internal/analysis"
	"github.com/mehmetkoksal-w/routemap/internal/config"
	"github.com/mehmetkoksal-w/routemap/internal/extract"
	"github.com/mehmetkoksal-w/routemap/internal/fsutil"
	"github.com/mehmetkoksal-w/routemap/internal/gitutil"
	"github.com/mehmetkoksal-w/routemap/internal/index"
	"github.com/mehmetkoksal-w/routemap/internal/logger"
	"github.com/mehmetkoksal-w/routemap/internal/model"
	"github.com/mehmetkoksal-w/routemap/internal/openapi"
	"github.com/mehmetkoksal-w/routemap/internal/validate"
	"github.com/mehmetkoksal-w/routemap/schemas"
)

// Version is stamped at build time and recorded in artifact provenance.
var Version = "dev"

// Options adjusts a single scan run.
type Options struct {
	// Repository overrides the display name derived from the root path.
	Repository string
	// Languages restricts extraction; empty means all supported languages.
	Languages []analysis.Language
	// Workers caps the worker pool; 0 auto-detects from CPU count.
	Workers int
	// NoPersist skips writing the .routemap artifact and sqlite index,
	// for scans of throwaway clones.
	NoPersist bool
}

// Report is the outcome of one repository scan.
type Report struct {
	Artifact model.ScanArtifact
	// FoundDocs are pre-existing OpenAPI/Swagger documents in the tree.
	FoundDocs []openapi.Document
	// GeneratedSpec is the path of the generated OpenAPI file, if any.
	GeneratedSpec string
}

// resolveAndValidateRoot converts a path to absolute and verifies it exists.
func resolveAndValidateRoot(root string) (string, error) {
	rootPath, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(rootPath); os.IsNotExist(err) {
		return "", fmt.Errorf("directory does not exist: %s", rootPath)
	}
	return rootPath, nil
}

// fileOutcome pairs one scanned file with its extraction result.
type fileOutcome struct {
	path     string
	language analysis.Language
	result   extract.FileResult
}

// Run scans the tree at root and returns the assembled report. Configuration
// comes from cfg; pass config.Load(root) output for the usual behavior.
func Run(root string, cfg config.Config, opts Options) (*Report, error) {
	rootPath, err := resolveAndValidateRoot(root)
	if err != nil {
		return nil, err
	}
	repoName := opts.Repository
	if repoName == "" {
		repoName = gitutil.RepoNameFromURL(rootPath)
	}
	startedAt := time.Now().UTC()
	logger.Info("Scanning repository: %s", repoName)

	files, err := fsutil.ListFiles(rootPath, cfg.Scan.ExcludeGlobs)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	sort.Strings(files)

	languages := opts.Languages
	if len(languages) == 0 && len(cfg.Scan.Languages) > 0 {
		langs, unknown := analysis.ParseLanguages(cfg.Scan.Languages)
		if len(unknown) > 0 {
			return nil, fmt.Errorf("unknown languages in config: %v", unknown)
		}
		languages = langs
	}

	outcomes := scanFiles(rootPath, files, languages, opts.Workers)

	result := aggregate(repoName, outcomes)
	logger.Info("Found %d endpoints in %s (%d declarations seen, %d dropped)",
		result.EndpointCount, repoName, result.DeclarationsSeen, result.Dropped)

	artifact := model.ScanArtifact{
		SchemaVersion: model.SchemaVersion,
		Kind:          "routemap-scan",
		ScanID:        uuid.NewString(),
		Repository:    repoName,
		Root:          rootPath,
		StartedAt:     startedAt.Format(time.RFC3339),
		CompletedAt:   time.Now().UTC().Format(time.RFC3339),
		Result:        result,
		Provenance: model.Provenance{
			CreatedBy:        "routemap",
			CreatedAt:        time.Now().UTC().Format(time.RFC3339),
			Generator:        "routemap scan",
			GeneratorVersion: Version,
		},
	}
	if gitutil.IsGitRepo(rootPath) {
		if hash, err := gitutil.GetHeadCommit(rootPath); err == nil {
			artifact.CommitHash = hash
		}
	}
	if err := validate.Value(artifact, schemas.Scan); err != nil {
		return nil, fmt.Errorf("scan artifact failed validation: %w", err)
	}

	report := &Report{Artifact: artifact}
	if err := handleOpenAPI(report, rootPath, files, cfg); err != nil {
		return nil, err
	}

	if !opts.NoPersist {
		if err := persist(rootPath, &artifact); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// scanFiles extracts endpoints from every supported file using a worker pool.
func scanFiles(rootPath string, files []string, languages []analysis.Language, workers int) []fileOutcome {
	engine := extract.NewEngine(extract.NewDefaultRegistry(), languages)

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > 8 {
		workers = 8
	}

	jobs := make(chan string)
	var mu sync.Mutex
	var outcomes []fileOutcome
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rel := range jobs {
				lang, ok := analysis.DetectLanguage(rel)
				if !ok {
					continue
				}
				content, err := os.ReadFile(filepath.Join(rootPath, filepath.FromSlash(rel)))
				if err != nil {
					logger.Debug("skip %s: %v", rel, err)
					continue
				}
				unit := analysis.NewSourceUnit(rel, content)
				res := engine.ExtractFile(unit)
				unit.Close()
				mu.Lock()
				outcomes = append(outcomes, fileOutcome{path: rel, language: lang, result: res})
				mu.Unlock()
			}
		}()
	}
	for _, rel := range files {
		jobs <- rel
	}
	close(jobs)
	wg.Wait()
	return outcomes
}

// aggregate merges per-file results into a deterministic repository result.
func aggregate(repoName string, outcomes []fileOutcome) extract.RepositoryResult {
	result := extract.RepositoryResult{
		Repository:    repoName,
		Endpoints:     []extract.Endpoint{},
		LanguageStats: map[string]int{},
	}
	for _, o := range outcomes {
		result.FilesScanned++
		result.DeclarationsSeen += o.result.DeclarationsSeen
		result.Dropped += o.result.Dropped
		result.Endpoints = append(result.Endpoints, o.result.Endpoints...)
		if len(o.result.Endpoints) > 0 {
			result.LanguageStats[string(o.language)]++
		}
	}
	sort.Slice(result.Endpoints, func(i, j int) bool {
		a, b := result.Endpoints[i], result.Endpoints[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Method != b.Method {
			return a.Method < b.Method
		}
		return a.Path < b.Path
	})
	result.EndpointCount = len(result.Endpoints)
	if len(result.LanguageStats) == 0 {
		result.LanguageStats = nil
	}
	return result
}

// handleOpenAPI finds existing specification documents and, when none exist,
// generates one from the extracted endpoints.
func handleOpenAPI(report *Report, rootPath string, files []string, cfg config.Config) error {
	if cfg.FindOpenAPI() {
		report.FoundDocs = openapi.FindDocuments(rootPath, files)
		for _, doc := range report.FoundDocs {
			if _, err := openapi.CopyDocument(doc, cfg.OpenAPI.OutputDir); err != nil {
				return fmt.Errorf("save openapi document %s: %w", doc.File, err)
			}
		}
	}
	if len(report.FoundDocs) == 0 && cfg.GenerateOpenAPI() && report.Artifact.Result.EndpointCount > 0 {
		spec := openapi.Generate(report.Artifact.Result)
		path, err := openapi.Save(spec, cfg.OpenAPI.OutputDir, report.Artifact.Repository, cfg.OpenAPI.OutputFormat)
		if err != nil {
			return err
		}
		report.GeneratedSpec = path
	}
	return nil
}

// persist writes the artifact under .routemap/ and records it in the index.
func persist(rootPath string, artifact *model.ScanArtifact) error {
	stateDir := filepath.Join(rootPath, ".routemap")
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return err
	}
	if err := model.WriteScanArtifact(filepath.Join(stateDir, "scan.json"), *artifact); err != nil {
		return err
	}
	db, err := index.Open(filepath.Join(stateDir, "routemap.db"))
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer func() { _ = db.Close() }()
	if err := index.SaveScan(db, artifact); err != nil {
		return fmt.Errorf("record scan: %w", err)
	}
	return nil
}
