package extract

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/mehmetkoksal-w/routemap/internal/analysis"
)

// SpringExtractor extracts endpoints from Spring Boot controllers.
type SpringExtractor struct{}

// NewSpringExtractor creates a new Spring endpoint extractor.
func NewSpringExtractor() *SpringExtractor {
	return &SpringExtractor{}
}

// ID returns the unique identifier for this extractor.
func (s *SpringExtractor) ID() string {
	return "spring"
}

// Framework returns the framework name.
func (s *SpringExtractor) Framework() string {
	return "spring"
}

// Languages returns the languages this extractor supports.
func (s *SpringExtractor) Languages() []analysis.Language {
	return []analysis.Language{analysis.LangJava}
}

// CanExtract returns true if this extractor can handle the given unit.
func (s *SpringExtractor) CanExtract(unit *analysis.SourceUnit) bool {
	return unit.Language == analysis.LangJava
}

// mappingMethods maps mapping annotation names to the HTTP method they
// imply. RequestMapping defaults to GET unless a method attribute says
// otherwise.
var mappingMethods = map[string]string{
	"GetMapping":     "GET",
	"PostMapping":    "POST",
	"PutMapping":     "PUT",
	"DeleteMapping":  "DELETE",
	"PatchMapping":   "PATCH",
	"RequestMapping": "GET",
}

// paramAnnotationKinds maps parameter annotation names to the kind of
// parameter they declare.
var paramAnnotationKinds = map[string]ParamKind{
	"PathVariable":  ParamPath,
	"RequestParam":  ParamQuery,
	"RequestHeader": ParamHeader,
	"CookieValue":   ParamCookie,
	"RequestBody":   ParamBody,
}

// Locate finds mapping annotations on methods of controller classes.
func (s *SpringExtractor) Locate(unit *analysis.SourceUnit) []Candidate {
	if unit.Mode() == analysis.ModeTree {
		return s.locateTree(unit)
	}
	return s.locateText(unit)
}

func (s *SpringExtractor) locateTree(unit *analysis.SourceUnit) []Candidate {
	var candidates []Candidate
	walkNodes(unit.Root(), "class_declaration", func(class *sitter.Node) {
		isController := false
		basePath := ""
		for _, ann := range annotationsOf(class, unit.Content) {
			switch ann.name {
			case "RestController", "Controller":
				isController = true
			case "RequestMapping":
				basePath = ann.pathValue()
			}
		}
		if !isController {
			return
		}
		body := class.ChildByFieldName("body")
		if body == nil {
			return
		}
		for i := 0; i < int(body.ChildCount()); i++ {
			method := body.Child(i)
			if method == nil || method.Type() != "method_declaration" {
				continue
			}
			candidates = append(candidates, s.methodCandidates(method, basePath, unit.Content)...)
		}
	})
	return candidates
}

func (s *SpringExtractor) methodCandidates(method *sitter.Node, basePath string, content []byte) []Candidate {
	var candidates []Candidate
	handler := ""
	if name := method.ChildByFieldName("name"); name != nil {
		handler = name.Content(content)
	}
	for _, ann := range annotationsOf(method, content) {
		httpMethod, ok := mappingMethods[ann.name]
		if !ok {
			continue
		}
		if ann.name == "RequestMapping" {
			if m := requestMappingMethod(ann.pairs["method"]); m != "" {
				httpMethod = m
			}
		}
		candidates = append(candidates, Candidate{
			Framework: "spring",
			Method:    httpMethod,
			RawPath:   joinSpringPaths(basePath, ann.pathValue()),
			Line:      int(method.StartPoint().Row) + 1,
			Column:    int(method.StartPoint().Column),
			Handler:   handler,
			node:      method,
		})
	}
	return candidates
}

// requestMappingMethod reads the method attribute of a RequestMapping
// annotation: RequestMethod.POST, or an array of references from which
// the first applies.
func requestMappingMethod(raw string) string {
	raw = strings.Trim(strings.TrimSpace(raw), "{}")
	if raw == "" {
		return ""
	}
	first := strings.TrimSpace(strings.Split(raw, ",")[0])
	if idx := strings.LastIndex(first, "."); idx >= 0 {
		first = first[idx+1:]
	}
	return strings.ToUpper(first)
}

// joinSpringPaths combines a class-level base path with a method-level
// one, keeping a single slash between segments.
func joinSpringPaths(base, p string) string {
	if base == "" || base == "/" {
		if p == "" {
			return "/"
		}
		if !strings.HasPrefix(p, "/") {
			return "/" + p
		}
		return p
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	base = strings.TrimSuffix(base, "/")
	if p == "" || p == "/" {
		return base
	}
	if !strings.HasPrefix(p, "/") {
		return base + "/" + p
	}
	return base + p
}

var (
	springController   = regexp.MustCompile(`@(?:RestController|Controller)\b`)
	springClassMapping = regexp.MustCompile(`@RequestMapping\s*\(\s*(?:value\s*=\s*)?["']([^"']*)["']\s*\)`)
	springStopLine     = regexp.MustCompile(`^\s*\}\s*$`)
	springNextMapping  = regexp.MustCompile(`@\w+Mapping`)

	springMappingPatterns = []struct {
		re     *regexp.Regexp
		method string
	}{
		{regexp.MustCompile(`@GetMapping\s*\(\s*(?:value\s*=\s*)?["']([^"']*)["']\s*\)`), "GET"},
		{regexp.MustCompile(`@PostMapping\s*\(\s*(?:value\s*=\s*)?["']([^"']*)["']\s*\)`), "POST"},
		{regexp.MustCompile(`@PutMapping\s*\(\s*(?:value\s*=\s*)?["']([^"']*)["']\s*\)`), "PUT"},
		{regexp.MustCompile(`@DeleteMapping\s*\(\s*(?:value\s*=\s*)?["']([^"']*)["']\s*\)`), "DELETE"},
		{regexp.MustCompile(`@PatchMapping\s*\(\s*(?:value\s*=\s*)?["']([^"']*)["']\s*\)`), "PATCH"},
		{regexp.MustCompile(`@RequestMapping\s*\(\s*(?:value\s*=\s*)?["']([^"']*)["']\s*(?:,\s*method\s*=\s*(?:RequestMethod\.)?([A-Z]+))?`), ""},
	}
)

// springParamWindow bounds how many lines after a mapping annotation
// are searched for parameter declarations in pattern mode.
const springParamWindow = 10

func (s *SpringExtractor) locateText(unit *analysis.SourceUnit) []Candidate {
	lines := strings.Split(string(unit.Content), "\n")

	isController := false
	basePath := ""
	basePathLine := -1
	for i, line := range lines {
		if springController.MatchString(line) {
			isController = true
		}
		if m := springClassMapping.FindStringSubmatch(line); m != nil {
			basePath = m[1]
			basePathLine = i
		}
	}
	if !isController {
		return nil
	}

	var candidates []Candidate
	for i, line := range lines {
		// The class-level mapping supplies the base path; it is not
		// itself a route.
		if i == basePathLine {
			continue
		}
		for _, pat := range springMappingPatterns {
			for _, m := range pat.re.FindAllStringSubmatch(line, -1) {
				method := pat.method
				if method == "" {
					method = "GET"
					if len(m) > 2 && m[2] != "" {
						method = m[2]
					}
				}
				candidates = append(candidates, Candidate{
					Framework: "spring",
					Method:    method,
					RawPath:   joinSpringPaths(basePath, m[1]),
					Line:      i + 1,
					Context:   springContext(lines, i),
				})
			}
		}
	}
	return candidates
}

// springContext gathers the declaration's surrounding text: the
// mapping line plus the wrapped method signature below it, stopping at
// a closing brace or the next mapping annotation.
func springContext(lines []string, start int) string {
	span := []string{lines[start]}
	for j := start + 1; j < len(lines) && j <= start+springParamWindow; j++ {
		if springStopLine.MatchString(lines[j]) || springNextMapping.MatchString(lines[j]) {
			break
		}
		span = append(span, lines[j])
	}
	return strings.Join(span, "\n")
}

// ResolveParameters resolves the candidate's method parameters, in
// declaration order. The external name precedence is: annotation
// value/name attribute, then the variable identifier, then the
// kind-specific convention. A @RequestHeader parameter named
// authorization in any case resolves to the canonical Authorization.
func (s *SpringExtractor) ResolveParameters(unit *analysis.SourceUnit, c *Candidate) []Parameter {
	if c.node != nil {
		return s.resolveTree(unit, c)
	}
	return s.resolveText(c)
}

func (s *SpringExtractor) resolveTree(unit *analysis.SourceUnit, c *Candidate) []Parameter {
	formals := c.node.ChildByFieldName("parameters")
	if formals == nil {
		return nil
	}
	var params []Parameter
	for i := 0; i < int(formals.ChildCount()); i++ {
		formal := formals.Child(i)
		if formal == nil || formal.Type() != "formal_parameter" {
			continue
		}
		identifier := ""
		if name := formal.ChildByFieldName("name"); name != nil {
			identifier = name.Content(unit.Content)
		}
		kind := ParamOther
		external := identifier
		for _, ann := range annotationsOf(formal, unit.Content) {
			k, ok := paramAnnotationKinds[ann.name]
			if !ok {
				continue
			}
			kind = k
			if v := ann.nameValue(); v != "" {
				external = v
			}
			break
		}
		if kind == ParamHeader && strings.EqualFold(external, "authorization") {
			external = "Authorization"
		}
		if external == "" {
			continue
		}
		params = append(params, Parameter{Name: external, Kind: kind, Identifier: identifier})
	}
	return params
}

// springParamPatterns match one parameter annotation each. Group 1 is
// the optional explicit name attribute, group 2 the trailing variable
// identifier.
var springParamPatterns = []struct {
	re   *regexp.Regexp
	kind ParamKind
}{
	{regexp.MustCompile(`@PathVariable\s*(?:\(\s*(?:value\s*=\s*)?["']([^"']+)["'])?\s*\)?\s*(?:\w+\s+)?(\w+)`), ParamPath},
	{regexp.MustCompile(`@RequestParam\s*(?:\(\s*(?:value\s*=\s*)?["']([^"']+)["'])?\s*\)?\s*(?:\w+\s+)?(\w+)`), ParamQuery},
	{regexp.MustCompile(`@RequestHeader\s*(?:\(\s*(?:value\s*=\s*)?["']([^"']+)["'])?\s*\)?\s*(?:\w+\s+)?(\w+)`), ParamHeader},
	{regexp.MustCompile(`@CookieValue\s*(?:\(\s*(?:value\s*=\s*)?["']([^"']+)["'])?\s*\)?\s*(?:\w+\s+)?(\w+)`), ParamCookie},
	{regexp.MustCompile(`@RequestBody\s*(?:\w+\s+)?()(\w+)`), ParamBody},
}

func (s *SpringExtractor) resolveText(c *Candidate) []Parameter {
	type located struct {
		offset int
		param  Parameter
	}
	var found []located
	for _, pat := range springParamPatterns {
		for _, m := range pat.re.FindAllStringSubmatchIndex(c.Context, -1) {
			name := submatch(c.Context, m, 1)
			identifier := submatch(c.Context, m, 2)
			if name == "" {
				name = identifier
			}
			if pat.kind == ParamHeader && strings.EqualFold(name, "authorization") {
				name = "Authorization"
			}
			if name == "" {
				continue
			}
			found = append(found, located{offset: m[0], param: Parameter{
				Name:       name,
				Kind:       pat.kind,
				Identifier: identifier,
			}})
		}
	}
	// Matches from different kind patterns interleave on a single
	// line; order by source offset so the result follows declaration
	// order.
	for i := 1; i < len(found); i++ {
		for j := i; j > 0 && found[j].offset < found[j-1].offset; j-- {
			found[j], found[j-1] = found[j-1], found[j]
		}
	}
	params := make([]Parameter, 0, len(found))
	for _, f := range found {
		params = append(params, f.param)
	}
	if len(params) == 0 {
		return nil
	}
	return params
}

// submatch returns the text of capture group g from a
// FindAllStringSubmatchIndex match, or "" when the group is absent.
func submatch(s string, m []int, g int) string {
	if 2*g+1 >= len(m) || m[2*g] < 0 {
		return ""
	}
	return s[m[2*g]:m[2*g+1]]
}
