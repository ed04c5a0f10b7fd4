package extract

import (
	"bytes"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/mehmetkoksal-w/routemap/internal/analysis"
)

// DjangoExtractor locates URL patterns in Django urls.py modules.
// Django route declarations carry no HTTP method, so every candidate
// is counted by the engine and then rejected by the normalizer; the
// extractor exists so those declarations are visible in the
// seen/dropped diagnostics instead of silently missing.
type DjangoExtractor struct{}

// NewDjangoExtractor creates a new Django URL pattern locator.
func NewDjangoExtractor() *DjangoExtractor {
	return &DjangoExtractor{}
}

// ID returns the unique identifier for this extractor.
func (d *DjangoExtractor) ID() string {
	return "django"
}

// Framework returns the framework name.
func (d *DjangoExtractor) Framework() string {
	return "django"
}

// Languages returns the languages this extractor supports.
func (d *DjangoExtractor) Languages() []analysis.Language {
	return []analysis.Language{analysis.LangPython}
}

// CanExtract returns true for Python units declaring urlpatterns.
func (d *DjangoExtractor) CanExtract(unit *analysis.SourceUnit) bool {
	return unit.Language == analysis.LangPython &&
		bytes.Contains(unit.Content, []byte("urlpatterns"))
}

var djangoPathFuncs = map[string]bool{
	"path":    true,
	"url":     true,
	"re_path": true,
}

// Locate finds path()/url()/re_path() route entries.
func (d *DjangoExtractor) Locate(unit *analysis.SourceUnit) []Candidate {
	if unit.Mode() == analysis.ModeTree {
		return d.locateTree(unit)
	}
	return d.locateText(unit)
}

func (d *DjangoExtractor) locateTree(unit *analysis.SourceUnit) []Candidate {
	var candidates []Candidate
	walkNodes(unit.Root(), "call", func(call *sitter.Node) {
		if !djangoPathFuncs[callFunctionName(call, unit.Content)] {
			return
		}
		args := call.ChildByFieldName("arguments")
		if args == nil {
			return
		}
		path := firstStringArgument(call, unit.Content)
		if path == "" {
			return
		}
		handler := djangoViewName(args, unit.Content)
		if handler == "" {
			return
		}
		candidates = append(candidates, Candidate{
			Framework: "django",
			RawPath:   path,
			Line:      int(call.StartPoint().Row) + 1,
			Handler:   handler,
		})
	})
	return candidates
}

// djangoViewName returns the second positional argument's dotted name.
func djangoViewName(args *sitter.Node, content []byte) string {
	positional := 0
	for i := 0; i < int(args.ChildCount()); i++ {
		arg := args.Child(i)
		if arg == nil {
			continue
		}
		switch arg.Type() {
		case "(", ")", ",", "comment", "keyword_argument":
			continue
		}
		positional++
		if positional < 2 {
			continue
		}
		switch arg.Type() {
		case "identifier", "attribute":
			return arg.Content(content)
		}
		return ""
	}
	return ""
}

var djangoPathPattern = regexp.MustCompile(`(?:path|url|re_path)\(['"]([^'"]+)['"]\s*,\s*(\w+(?:\.\w+)*)`)

func (d *DjangoExtractor) locateText(unit *analysis.SourceUnit) []Candidate {
	var candidates []Candidate
	for i, line := range strings.Split(string(unit.Content), "\n") {
		for _, m := range djangoPathPattern.FindAllStringSubmatch(line, -1) {
			candidates = append(candidates, Candidate{
				Framework: "django",
				RawPath:   m[1],
				Line:      i + 1,
				Handler:   m[2],
				Context:   line,
			})
		}
	}
	return candidates
}

// ResolveParameters yields path parameters from <converter:name>
// template segments.
func (d *DjangoExtractor) ResolveParameters(unit *analysis.SourceUnit, c *Candidate) []Parameter {
	return templateParams(c.RawPath, anglePathParam)
}
