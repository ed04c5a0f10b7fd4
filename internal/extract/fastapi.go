package extract

import (
	"bytes"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/mehmetkoksal-w/routemap/internal/analysis"
)

// FastAPIExtractor extracts endpoints from FastAPI applications.
type FastAPIExtractor struct{}

// NewFastAPIExtractor creates a new FastAPI endpoint extractor.
func NewFastAPIExtractor() *FastAPIExtractor {
	return &FastAPIExtractor{}
}

// ID returns the unique identifier for this extractor.
func (f *FastAPIExtractor) ID() string {
	return "fastapi"
}

// Framework returns the framework name.
func (f *FastAPIExtractor) Framework() string {
	return "fastapi"
}

// Languages returns the languages this extractor supports.
func (f *FastAPIExtractor) Languages() []analysis.Language {
	return []analysis.Language{analysis.LangPython}
}

// CanExtract returns true for Python units that mention FastAPI.
func (f *FastAPIExtractor) CanExtract(unit *analysis.SourceUnit) bool {
	return unit.Language == analysis.LangPython &&
		bytes.Contains(unit.Content, []byte("fastapi"))
}

// Locate finds @app.<verb>(...) route decorators.
func (f *FastAPIExtractor) Locate(unit *analysis.SourceUnit) []Candidate {
	if unit.Mode() == analysis.ModeTree {
		return f.locateTree(unit)
	}
	return f.locateText(unit)
}

func (f *FastAPIExtractor) locateTree(unit *analysis.SourceUnit) []Candidate {
	var candidates []Candidate
	walkNodes(unit.Root(), "decorated_definition", func(node *sitter.Node) {
		def := node.ChildByFieldName("definition")
		if def == nil || def.Type() != "function_definition" {
			return
		}
		handler := ""
		if name := def.ChildByFieldName("name"); name != nil {
			handler = name.Content(unit.Content)
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			dec := node.Child(i)
			if dec == nil || dec.Type() != "decorator" {
				continue
			}
			call := firstChildOfType(dec, "call")
			if call == nil {
				continue
			}
			method := pythonVerbs[callAttribute(call, unit.Content)]
			if method == "" {
				continue
			}
			path := firstStringArgument(call, unit.Content)
			if path == "" {
				continue
			}
			candidates = append(candidates, Candidate{
				Framework: "fastapi",
				Method:    method,
				RawPath:   path,
				Line:      int(def.StartPoint().Row) + 1,
				Handler:   handler,
				node:      def,
			})
		}
	})
	return candidates
}

var fastapiVerbPattern = regexp.MustCompile(`@\w+\.(get|post|put|delete|patch|options|head)\(['"]([^'"]+)['"]\)`)

func (f *FastAPIExtractor) locateText(unit *analysis.SourceUnit) []Candidate {
	var candidates []Candidate
	for i, line := range strings.Split(string(unit.Content), "\n") {
		for _, m := range fastapiVerbPattern.FindAllStringSubmatch(line, -1) {
			candidates = append(candidates, Candidate{
				Framework: "fastapi",
				Method:    strings.ToUpper(m[1]),
				RawPath:   m[2],
				Line:      i + 1,
				Context:   line,
			})
		}
	}
	return candidates
}

// ResolveParameters resolves path parameters from the {name} template
// segments. In tree mode the handler signature is also inspected:
// parameters not bound to a template segment are query parameters by
// FastAPI convention, except self/request/response and dependency
// injections.
func (f *FastAPIExtractor) ResolveParameters(unit *analysis.SourceUnit, c *Candidate) []Parameter {
	if c.node == nil {
		return templateParams(c.RawPath, bracePathParam)
	}

	pathNames := make(map[string]bool)
	for _, p := range templateParams(c.RawPath, bracePathParam) {
		pathNames[p.Name] = true
	}

	formals := c.node.ChildByFieldName("parameters")
	if formals == nil {
		return templateParams(c.RawPath, bracePathParam)
	}
	var params []Parameter
	for i := 0; i < int(formals.ChildCount()); i++ {
		formal := formals.Child(i)
		if formal == nil {
			continue
		}
		name, skip := pythonParamName(formal, unit.Content)
		if name == "" || skip {
			continue
		}
		kind := ParamQuery
		if pathNames[name] {
			kind = ParamPath
		}
		params = append(params, Parameter{Name: name, Kind: kind, Identifier: name})
	}
	return params
}

// pythonParamName returns the name of one formal parameter node. skip
// is true for receiver-style names and Depends() defaults, which are
// not caller-visible inputs.
func pythonParamName(formal *sitter.Node, content []byte) (name string, skip bool) {
	switch formal.Type() {
	case "identifier":
		name = formal.Content(content)
	case "typed_parameter":
		if id := firstChildOfType(formal, "identifier"); id != nil {
			name = id.Content(content)
		}
	case "default_parameter", "typed_default_parameter":
		if n := formal.ChildByFieldName("name"); n != nil {
			name = n.Content(content)
		}
		if v := formal.ChildByFieldName("value"); v != nil && v.Type() == "call" {
			if callFunctionName(v, content) == "Depends" {
				return name, true
			}
		}
	default:
		return "", false
	}
	switch name {
	case "self", "cls", "request", "response":
		return name, true
	}
	return name, false
}
