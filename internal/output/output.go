// Package output renders scan results as text, csv, or json reports.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/mehmetkoksal-w/routemap/internal/extract"
)

// Format names a report format.
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText:
		return FormatText, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, csv, or json)", s)
}

// Render writes a report for the given repositories to w.
func Render(w io.Writer, results []extract.RepositoryResult, format Format) error {
	switch format {
	case FormatText:
		return renderText(w, results)
	case FormatCSV:
		return renderCSV(w, results)
	case FormatJSON:
		return renderJSON(w, results)
	}
	return fmt.Errorf("unknown output format %q", format)
}

// WriteReport renders to the named file, or to stdout when path is empty.
func WriteReport(path string, results []extract.RepositoryResult, format Format) error {
	if path == "" {
		return Render(os.Stdout, results, format)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	if err := Render(f, results, format); err != nil {
		return err
	}
	return f.Close()
}

func renderText(w io.Writer, results []extract.RepositoryResult) error {
	rule := strings.Repeat("=", 80)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "HTTP ENDPOINT REPORT")
	fmt.Fprintln(w, rule)

	totalEndpoints := 0
	totalSeen := 0
	totalDropped := 0
	langTotals := map[string]int{}
	for _, r := range results {
		totalEndpoints += r.EndpointCount
		totalSeen += r.DeclarationsSeen
		totalDropped += r.Dropped
		for lang, n := range r.LanguageStats {
			langTotals[lang] += n
		}
	}

	fmt.Fprintf(w, "Repositories scanned: %d\n", len(results))
	fmt.Fprintf(w, "Endpoints found: %d\n", totalEndpoints)
	fmt.Fprintf(w, "Declarations seen: %d (dropped: %d)\n", totalSeen, totalDropped)

	if len(langTotals) > 0 {
		langs := make([]string, 0, len(langTotals))
		for lang := range langTotals {
			langs = append(langs, lang)
		}
		sort.Strings(langs)
		fmt.Fprintln(w, "\nLanguage breakdown:")
		for _, lang := range langs {
			fmt.Fprintf(w, "  %s: %d file(s)\n", lang, langTotals[lang])
		}
	}

	for _, r := range results {
		fmt.Fprintf(w, "\n%s\n", strings.Repeat("-", 80))
		fmt.Fprintf(w, "Repository: %s (%d endpoints)\n", r.Repository, r.EndpointCount)
		for i, ep := range r.Endpoints {
			fmt.Fprintf(w, "\n%d. %s %s\n", i+1, ep.Method, ep.Path)
			fmt.Fprintf(w, "   Framework: %s\n", ep.Framework)
			fmt.Fprintf(w, "   File: %s:%d\n", ep.File, ep.Line)
			if ep.Handler != "" {
				fmt.Fprintf(w, "   Function: %s\n", ep.Handler)
			}
			for _, p := range ep.Parameters {
				if p.Identifier != "" && p.Identifier != p.Name {
					fmt.Fprintf(w, "   Param: %s (%s, bound to %s)\n", p.Name, p.Kind, p.Identifier)
				} else {
					fmt.Fprintf(w, "   Param: %s (%s)\n", p.Name, p.Kind)
				}
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", rule)
	return nil
}

func renderCSV(w io.Writer, results []extract.RepositoryResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Repository", "Path", "Method", "Framework", "File", "Line", "Function"}); err != nil {
		return err
	}
	for _, r := range results {
		for _, ep := range r.Endpoints {
			row := []string{r.Repository, ep.Path, ep.Method, ep.Framework, ep.File, strconv.Itoa(ep.Line), ep.Handler}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func renderJSON(w io.Writer, results []extract.RepositoryResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
