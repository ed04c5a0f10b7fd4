package extract

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/mehmetkoksal-w/routemap/internal/analysis"
)

// ExpressExtractor extracts endpoints from Express.js applications.
type ExpressExtractor struct{}

// NewExpressExtractor creates a new Express endpoint extractor.
func NewExpressExtractor() *ExpressExtractor {
	return &ExpressExtractor{}
}

// ID returns the unique identifier for this extractor.
func (e *ExpressExtractor) ID() string {
	return "express"
}

// Framework returns the framework name.
func (e *ExpressExtractor) Framework() string {
	return "express"
}

// Languages returns the languages this extractor supports.
func (e *ExpressExtractor) Languages() []analysis.Language {
	return []analysis.Language{analysis.LangJavaScript, analysis.LangTypeScript}
}

// CanExtract returns true if this extractor can handle the given unit.
func (e *ExpressExtractor) CanExtract(unit *analysis.SourceUnit) bool {
	return unit.Language == analysis.LangJavaScript || unit.Language == analysis.LangTypeScript
}

// expressVerbs maps routing call names to HTTP methods. all registers
// a handler for every method.
var expressVerbs = map[string]string{
	"get":     "GET",
	"post":    "POST",
	"put":     "PUT",
	"delete":  "DELETE",
	"patch":   "PATCH",
	"options": "OPTIONS",
	"head":    "HEAD",
	"all":     "ALL",
}

// Locate finds app.<verb>(path, ...) route registrations and
// path-based use() router mounts.
func (e *ExpressExtractor) Locate(unit *analysis.SourceUnit) []Candidate {
	if unit.Mode() == analysis.ModeTree {
		return e.locateTree(unit)
	}
	return e.locateText(unit)
}

func (e *ExpressExtractor) locateTree(unit *analysis.SourceUnit) []Candidate {
	var candidates []Candidate
	walkNodes(unit.Root(), "call_expression", func(call *sitter.Node) {
		fn := call.ChildByFieldName("function")
		argsNode := call.ChildByFieldName("arguments")
		if fn == nil || argsNode == nil || fn.Type() != "member_expression" {
			return
		}
		property := fn.ChildByFieldName("property")
		if property == nil {
			return
		}
		callName := property.Content(unit.Content)
		args := callArguments(argsNode, unit.Content)
		if len(args) == 0 {
			return
		}
		path := cleanStringLiteral(args[0])

		method := expressVerbs[strings.ToLower(callName)]
		switch {
		case method != "":
			if path == "" {
				return
			}
		case strings.ToLower(callName) == "use":
			// Only path-based use() mounts a router; bare
			// middleware registration is not a route.
			if path == "" || !strings.HasPrefix(path, "/") {
				return
			}
			method = "USE"
		default:
			return
		}

		handler := ""
		if len(args) > 1 {
			if last := args[len(args)-1]; isExpressHandlerRef(last) {
				handler = last
			}
		}
		candidates = append(candidates, Candidate{
			Framework: "express",
			Method:    method,
			RawPath:   path,
			Line:      int(call.StartPoint().Row) + 1,
			Column:    int(call.StartPoint().Column),
			Handler:   handler,
			node:      call,
		})
	})
	return candidates
}

// callArguments returns the raw text of each call argument.
func callArguments(argsNode *sitter.Node, content []byte) []string {
	var args []string
	for i := 0; i < int(argsNode.ChildCount()); i++ {
		child := argsNode.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "(", ")", ",", "comment":
			continue
		}
		args = append(args, child.Content(content))
	}
	return args
}

// isExpressHandlerRef reports whether an argument is a named handler
// reference rather than an inline function literal.
func isExpressHandlerRef(arg string) bool {
	if arg == "" || strings.ContainsAny(arg, "({=>\n") {
		return false
	}
	return true
}

var expressRoutePattern = regexp.MustCompile(`[A-Za-z_$][A-Za-z0-9_$]*\.(get|post|put|delete|patch|options|head|all|use)\s*\(\s*['"]([^'"]+)['"]`)

func (e *ExpressExtractor) locateText(unit *analysis.SourceUnit) []Candidate {
	var candidates []Candidate
	for i, line := range strings.Split(string(unit.Content), "\n") {
		for _, m := range expressRoutePattern.FindAllStringSubmatch(line, -1) {
			method := expressVerbs[m[1]]
			if m[1] == "use" {
				if !strings.HasPrefix(m[2], "/") {
					continue
				}
				method = "USE"
			}
			candidates = append(candidates, Candidate{
				Framework: "express",
				Method:    method,
				RawPath:   m[2],
				Line:      i + 1,
				Context:   line,
			})
		}
	}
	return candidates
}

// ResolveParameters yields the path parameters declared as :name
// segments of the route path.
func (e *ExpressExtractor) ResolveParameters(unit *analysis.SourceUnit, c *Candidate) []Parameter {
	return templateParams(c.RawPath, colonPathParam)
}
