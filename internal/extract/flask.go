package extract

import (
	"bytes"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/mehmetkoksal-w/routemap/internal/analysis"
)

// FlaskExtractor extracts endpoints from Flask applications.
type FlaskExtractor struct{}

// NewFlaskExtractor creates a new Flask endpoint extractor.
func NewFlaskExtractor() *FlaskExtractor {
	return &FlaskExtractor{}
}

// ID returns the unique identifier for this extractor.
func (f *FlaskExtractor) ID() string {
	return "flask"
}

// Framework returns the framework name.
func (f *FlaskExtractor) Framework() string {
	return "flask"
}

// Languages returns the languages this extractor supports.
func (f *FlaskExtractor) Languages() []analysis.Language {
	return []analysis.Language{analysis.LangPython}
}

// CanExtract returns true for Python units that mention Flask.
func (f *FlaskExtractor) CanExtract(unit *analysis.SourceUnit) bool {
	return unit.Language == analysis.LangPython &&
		bytes.Contains(unit.Content, []byte("flask"))
}

var pythonVerbs = map[string]string{
	"get":     "GET",
	"post":    "POST",
	"put":     "PUT",
	"delete":  "DELETE",
	"patch":   "PATCH",
	"options": "OPTIONS",
	"head":    "HEAD",
}

// Locate finds @x.route(...) and @x.<verb>(...) decorators.
func (f *FlaskExtractor) Locate(unit *analysis.SourceUnit) []Candidate {
	if unit.Mode() == analysis.ModeTree {
		return f.locateTree(unit)
	}
	return f.locateText(unit)
}

func (f *FlaskExtractor) locateTree(unit *analysis.SourceUnit) []Candidate {
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
		line := int(def.StartPoint().Row) + 1
		for i := 0; i < int(node.ChildCount()); i++ {
			dec := node.Child(i)
			if dec == nil || dec.Type() != "decorator" {
				continue
			}
			call := firstChildOfType(dec, "call")
			if call == nil {
				continue
			}
			attr := callAttribute(call, unit.Content)
			path := firstStringArgument(call, unit.Content)
			if path == "" {
				continue
			}
			switch {
			case attr == "route":
				for _, method := range flaskRouteMethods(call, unit.Content) {
					candidates = append(candidates, Candidate{
						Framework: "flask",
						Method:    method,
						RawPath:   path,
						Line:      line,
						Handler:   handler,
					})
				}
			case pythonVerbs[attr] != "":
				candidates = append(candidates, Candidate{
					Framework: "flask",
					Method:    pythonVerbs[attr],
					RawPath:   path,
					Line:      line,
					Handler:   handler,
				})
			}
		}
	})
	return candidates
}

// flaskRouteMethods reads the methods=[...] keyword of a route()
// decorator; a route without one answers GET.
func flaskRouteMethods(call *sitter.Node, content []byte) []string {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return []string{"GET"}
	}
	for i := 0; i < int(args.ChildCount()); i++ {
		arg := args.Child(i)
		if arg == nil || arg.Type() != "keyword_argument" {
			continue
		}
		name := arg.ChildByFieldName("name")
		value := arg.ChildByFieldName("value")
		if name == nil || value == nil || name.Content(content) != "methods" {
			continue
		}
		var methods []string
		for j := 0; j < int(value.ChildCount()); j++ {
			el := value.Child(j)
			if el == nil || el.Type() != "string" {
				continue
			}
			if m := cleanStringLiteral(el.Content(content)); m != "" {
				methods = append(methods, strings.ToUpper(m))
			}
		}
		if len(methods) > 0 {
			return methods
		}
	}
	return []string{"GET"}
}

var (
	flaskRoutePattern = regexp.MustCompile(`@\w+\.route\(['"]([^'"]+)['"](?:\s*,\s*methods=\[([^\]]+)\])?`)
	flaskVerbPattern  = regexp.MustCompile(`@\w+\.(get|post|put|delete|patch|options|head)\(['"]([^'"]+)['"]\)`)
)

func (f *FlaskExtractor) locateText(unit *analysis.SourceUnit) []Candidate {
	var candidates []Candidate
	for i, line := range strings.Split(string(unit.Content), "\n") {
		for _, m := range flaskRoutePattern.FindAllStringSubmatch(line, -1) {
			methods := []string{"GET"}
			if m[2] != "" {
				methods = nil
				for _, raw := range strings.Split(m[2], ",") {
					methods = append(methods, strings.ToUpper(strings.Trim(strings.TrimSpace(raw), `'"`)))
				}
			}
			for _, method := range methods {
				candidates = append(candidates, Candidate{
					Framework: "flask",
					Method:    method,
					RawPath:   m[1],
					Line:      i + 1,
					Context:   line,
				})
			}
		}
		for _, m := range flaskVerbPattern.FindAllStringSubmatch(line, -1) {
			candidates = append(candidates, Candidate{
				Framework: "flask",
				Method:    strings.ToUpper(m[1]),
				RawPath:   m[2],
				Line:      i + 1,
				Context:   line,
			})
		}
	}
	return candidates
}

// ResolveParameters yields the path parameters declared in the route
// template's <converter:name> segments.
func (f *FlaskExtractor) ResolveParameters(unit *analysis.SourceUnit, c *Candidate) []Parameter {
	return templateParams(c.RawPath, anglePathParam)
}

// firstChildOfType returns the first direct child with the given type.
func firstChildOfType(node *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child != nil && child.Type() == nodeType {
			return child
		}
	}
	return nil
}

// callAttribute returns the attribute name of a call on an object
// (x.route → "route"), or "" for plain function calls.
func callAttribute(call *sitter.Node, content []byte) string {
	fn := call.ChildByFieldName("function")
	if fn == nil || fn.Type() != "attribute" {
		return ""
	}
	attr := fn.ChildByFieldName("attribute")
	if attr == nil {
		return ""
	}
	return attr.Content(content)
}

// callFunctionName returns the simple name a call is made through,
// whether a bare identifier or the final attribute of a dotted path.
func callFunctionName(call *sitter.Node, content []byte) string {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return ""
	}
	switch fn.Type() {
	case "identifier":
		return fn.Content(content)
	case "attribute":
		if attr := fn.ChildByFieldName("attribute"); attr != nil {
			return attr.Content(content)
		}
	}
	return ""
}

// firstStringArgument returns the unquoted first positional string
// argument of a call, or "".
func firstStringArgument(call *sitter.Node, content []byte) string {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return ""
	}
	for i := 0; i < int(args.ChildCount()); i++ {
		arg := args.Child(i)
		if arg == nil {
			continue
		}
		switch arg.Type() {
		case "(", ")", ",", "comment":
			continue
		case "string":
			return cleanStringLiteral(arg.Content(content))
		default:
			return ""
		}
	}
	return ""
}
