// Package cli implements the routemap command line interface.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mehmetkoksal-w/routemap/internal/analysis"
	"github.com/mehmetkoksal-w/routemap/internal/config"
	"github.com/mehmetkoksal-w/routemap/internal/extract"
	"github.com/mehmetkoksal-w/routemap/internal/github"
	"github.com/mehmetkoksal-w/routemap/internal/gitutil"
	"github.com/mehmetkoksal-w/routemap/internal/index"
	"github.com/mehmetkoksal-w/routemap/internal/logger"
	"github.com/mehmetkoksal-w/routemap/internal/output"
	"github.com/mehmetkoksal-w/routemap/internal/scan"
)

func Run(args []string) error {
	if len(args) == 0 {
		return usage()
	}
	switch args[0] {
	case "version", "--version", "-v":
		return cmdVersion(args[1:])
	case "init":
		return cmdInit(args[1:])
	case "scan":
		return cmdScan(args[1:])
	case "report":
		return cmdReport(args[1:])
	case "help", "-h", "--help":
		return usage()
	default:
		return fmt.Errorf("unknown command: %s\nRun 'routemap help' for usage", args[0])
	}
}

func usage() error {
	fmt.Print(`routemap - HTTP endpoint discovery for source trees

COMMANDS
  init      Write a default .routemap.jsonc to the current directory
  scan      Extract HTTP endpoints from repositories
  report    Render the last recorded scan of a local tree
  version   Show version information
  help      Show this help

SCAN TARGETS
  routemap scan ./path/to/repo           scan a local tree
  routemap scan --repo URL [--repo URL]  clone and scan GitHub repositories
  routemap scan --user NAME              scan all repositories of a user
  routemap scan --org NAME               scan all repositories of an organization

Run 'routemap scan -h' for the full flag list.
`)
	return nil
}

func cmdInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	force := fs.Bool("force", false, "overwrite an existing config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path := config.FileName
	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.WriteJSON(path, config.Default()); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

// repoList collects repeatable --repo flags.
type repoList []string

func (r *repoList) String() string     { return strings.Join(*r, ",") }
func (r *repoList) Set(v string) error { *r = append(*r, v); return nil }

func cmdScan(args []string) error {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	var repos repoList
	fs.Var(&repos, "repo", "GitHub repository URL to clone and scan (repeatable)")
	user := fs.String("user", "", "GitHub username to scan repositories from")
	org := fs.String("org", "", "GitHub organization to scan repositories from")
	token := fs.String("token", "", "GitHub personal access token")
	languages := fs.String("languages", "", "comma-separated language filter (java, python, javascript, typescript)")
	format := fs.String("output", "", "report format: text, csv, or json")
	outputFile := fs.String("output-file", "", "write the report to a file instead of stdout")
	workers := fs.Int("workers", 0, "worker pool size (0 = auto)")
	findOpenAPI := fs.Bool("find-openapi", true, "look for existing OpenAPI/Swagger documents")
	generateOpenAPI := fs.Bool("generate-openapi", true, "generate an OpenAPI spec when none is found")
	openapiDir := fs.String("openapi-dir", "", "directory for found and generated OpenAPI documents")
	openapiFormat := fs.String("openapi-format", "", "generated spec format: json or yaml")
	verbose := fs.Bool("verbose", false, "enable progress logging")
	debug := fs.Bool("debug", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case *debug:
		logger.SetLevel(logger.LevelDebug)
	case *verbose:
		logger.SetLevel(logger.LevelInfo)
	}

	locals := fs.Args()
	remote := len(repos) > 0 || *user != "" || *org != ""
	if len(locals) == 0 && !remote {
		locals = []string{"."}
	}
	if len(locals) > 0 && remote {
		return errors.New("local paths and remote repository flags cannot be combined")
	}
	if *user != "" && *org != "" {
		return errors.New("--user and --org are mutually exclusive")
	}

	var langFilter []analysis.Language
	if *languages != "" {
		langs, unknown := analysis.ParseLanguages(strings.Split(*languages, ","))
		if len(unknown) > 0 {
			return fmt.Errorf("unknown languages: %s", strings.Join(unknown, ", "))
		}
		langFilter = langs
	}

	// bool flags override the config file only when actually passed
	passed := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { passed[f.Name] = true })

	applyFlags := func(cfg *config.Config) {
		if *token != "" {
			cfg.GitHub.Token = *token
		}
		if passed["find-openapi"] {
			cfg.OpenAPI.FindExisting = findOpenAPI
		}
		if passed["generate-openapi"] {
			cfg.OpenAPI.GenerateIfNone = generateOpenAPI
		}
		if *openapiDir != "" {
			cfg.OpenAPI.OutputDir = *openapiDir
		}
		if *openapiFormat != "" {
			cfg.OpenAPI.OutputFormat = *openapiFormat
		}
	}

	var results []extract.RepositoryResult
	var reportFormat, reportFile string

	scanOne := func(root string, opts scan.Options, cfg config.Config) error {
		report, err := scan.Run(root, cfg, opts)
		if err != nil {
			return err
		}
		results = append(results, report.Artifact.Result)
		for _, doc := range report.FoundDocs {
			fmt.Printf("found existing OpenAPI document: %s (%s)\n", doc.File, doc.Version)
		}
		if report.GeneratedSpec != "" {
			fmt.Printf("generated OpenAPI spec: %s\n", report.GeneratedSpec)
		}
		if reportFormat == "" {
			reportFormat = cfg.Output.Format
		}
		if reportFile == "" {
			reportFile = cfg.Output.File
		}
		return nil
	}

	if remote {
		urls := []string(repos)
		cfg := config.Default()
		applyFlags(&cfg)
		if *user != "" || *org != "" {
			client := github.NewClient(cfg.GitHub.Token)
			listed, err := client.ListRepos(context.Background(), *user, *org)
			if err != nil {
				return err
			}
			urls = append(urls, listed...)
		}
		for _, url := range urls {
			dir, err := gitutil.Clone(context.Background(), url, cfg.GitHub.Token)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
				continue
			}
			opts := scan.Options{
				Repository: gitutil.RepoNameFromURL(url),
				Languages:  langFilter,
				Workers:    *workers,
				NoPersist:  true,
			}
			err = scanOne(dir, opts, cfg)
			_ = os.RemoveAll(dir)
			if err != nil {
				return err
			}
		}
	} else {
		for _, root := range locals {
			cfg, err := config.Load(root)
			if err != nil {
				return fmt.Errorf("load config for %s: %w", root, err)
			}
			applyFlags(&cfg)
			// scan.Run derives the repository name from the resolved root
			opts := scan.Options{
				Languages: langFilter,
				Workers:   *workers,
			}
			if err := scanOne(root, opts, cfg); err != nil {
				return err
			}
		}
	}

	if len(results) == 0 {
		return errors.New("no repositories were scanned")
	}

	if *format != "" {
		reportFormat = *format
	}
	if *outputFile != "" {
		reportFile = *outputFile
	}
	if reportFormat == "" {
		reportFormat = "text"
	}
	parsed, err := output.ParseFormat(reportFormat)
	if err != nil {
		return err
	}
	return output.WriteReport(reportFile, results, parsed)
}

// cmdReport renders the latest recorded scan of a local tree from its
// sqlite index, without rescanning.
func cmdReport(args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	format := fs.String("output", "text", "report format: text, csv, or json")
	outputFile := fs.String("output-file", "", "write the report to a file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}
	parsed, err := output.ParseFormat(*format)
	if err != nil {
		return err
	}
	rootPath, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	dbPath := filepath.Join(rootPath, ".routemap", "routemap.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("no scan index at %s (run 'routemap scan' first)", dbPath)
	}
	db, err := index.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if v, err := index.GetIndexSchemaVersion(db); err == nil && v > index.CurrentSchemaVersion() {
		return fmt.Errorf("index at %s uses schema v%d; this build understands up to v%d",
			dbPath, v, index.CurrentSchemaVersion())
	}

	repoName := gitutil.RepoNameFromURL(rootPath)
	summary, err := index.LatestScan(db, repoName)
	if err != nil {
		return err
	}
	if summary == nil {
		return fmt.Errorf("no recorded scan for %s", repoName)
	}
	endpoints, err := index.EndpointsForScan(db, summary.ScanID)
	if err != nil {
		return err
	}
	if endpoints == nil {
		endpoints = []extract.Endpoint{}
	}

	result := extract.RepositoryResult{
		Repository:       summary.Repository,
		Endpoints:        endpoints,
		EndpointCount:    summary.EndpointCount,
		DeclarationsSeen: summary.DeclarationsSeen,
		Dropped:          summary.Dropped,
		FilesScanned:     summary.FilesScanned,
	}
	return output.WriteReport(*outputFile, []extract.RepositoryResult{result}, parsed)
}
