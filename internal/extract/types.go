// Package extract locates HTTP route declarations in source units and
// resolves them into normalized endpoint records.
package extract

import (
	"regexp"

	sitter "github.com/smacker/go-tree-sitter"
)

// ParamKind classifies where an endpoint parameter is carried.
type ParamKind string

const (
	ParamPath   ParamKind = "path"
	ParamQuery  ParamKind = "query"
	ParamHeader ParamKind = "header"
	ParamCookie ParamKind = "cookie"
	ParamBody   ParamKind = "body"
	ParamOther  ParamKind = "other"
)

// Parameter is one resolved endpoint parameter. Name is the name
// visible to API callers; Identifier is the local variable name it was
// resolved from, kept for diagnostics.
type Parameter struct {
	Name       string    `json:"name"`
	Kind       ParamKind `json:"kind"`
	Identifier string    `json:"identifier,omitempty"`
}

// Candidate is a located route declaration awaiting parameter
// resolution and normalization. Method may be empty when the
// declaration does not determine one; such candidates are dropped by
// the normalizer. Context carries the surrounding source text for
// pattern-mode resolution; node anchors tree-mode resolution instead.
type Candidate struct {
	Framework string
	Method    string
	RawPath   string
	Line      int
	Column    int
	Handler   string
	Context   string

	node *sitter.Node
}

// Endpoint is one normalized HTTP route.
type Endpoint struct {
	Method     string      `json:"method"`
	Path       string      `json:"path"`
	Parameters []Parameter `json:"parameters,omitempty"`
	File       string      `json:"file"`
	Line       int         `json:"line"`
	Framework  string      `json:"framework"`
	Handler    string      `json:"handler,omitempty"`
}

// FileResult is the outcome of extracting one source unit.
// DeclarationsSeen counts located candidates including those the
// normalizer dropped or deduplication merged away.
type FileResult struct {
	Endpoints        []Endpoint
	DeclarationsSeen int
	Dropped          int
}

// RepositoryResult aggregates extraction across one repository.
type RepositoryResult struct {
	Repository       string         `json:"repository"`
	Endpoints        []Endpoint     `json:"endpoints"`
	EndpointCount    int            `json:"endpoint_count"`
	DeclarationsSeen int            `json:"declarations_seen"`
	Dropped          int            `json:"dropped"`
	FilesScanned     int            `json:"files_scanned"`
	LanguageStats    map[string]int `json:"language_stats,omitempty"`
}

var (
	bracePathParam = regexp.MustCompile(`\{(\w+)(?::[^}]*)?\}`)
	colonPathParam = regexp.MustCompile(`:(\w+)`)
	anglePathParam = regexp.MustCompile(`<(?:\w+:)?(\w+)>`)
)

// templateParams extracts path parameters declared inside a path
// template with the given placeholder pattern, in source order.
func templateParams(path string, re *regexp.Regexp) []Parameter {
	var params []Parameter
	for _, m := range re.FindAllStringSubmatch(path, -1) {
		params = append(params, Parameter{Name: m[1], Kind: ParamPath, Identifier: m[1]})
	}
	return params
}
