package extract

import "strings"

// canonicalMethods is the set of HTTP methods an endpoint may carry.
// ALL covers Express app.all routes; USE marks Express router mounts.
var canonicalMethods = map[string]bool{
	"GET":     true,
	"POST":    true,
	"PUT":     true,
	"DELETE":  true,
	"PATCH":   true,
	"OPTIONS": true,
	"HEAD":    true,
	"TRACE":   true,
	"ALL":     true,
	"USE":     true,
}

// normalize assembles a candidate and its resolved parameters into an
// endpoint. A candidate whose method cannot be mapped to a canonical
// verb is rejected, never emitted with a guessed method.
func normalize(c *Candidate, params []Parameter, file string) (Endpoint, bool) {
	method := strings.ToUpper(strings.TrimSpace(c.Method))
	if !canonicalMethods[method] {
		return Endpoint{}, false
	}
	return Endpoint{
		Method:     method,
		Path:       cleanPath(c.RawPath),
		Parameters: params,
		File:       file,
		Line:       c.Line,
		Framework:  c.Framework,
		Handler:    c.Handler,
	}, true
}

// cleanPath strips surrounding whitespace and quoting from a path
// template. Placeholder syntax ({id}, :id, <id>) is framework-specific
// and preserved verbatim.
func cleanPath(raw string) string {
	p := strings.TrimSpace(raw)
	for len(p) >= 2 {
		first, last := p[0], p[len(p)-1]
		if first == last && (first == '"' || first == '\'' || first == '`') {
			p = p[1 : len(p)-1]
			p = strings.TrimSpace(p)
			continue
		}
		break
	}
	return p
}

// cleanStringLiteral unwraps a quoted source literal. Unlike
// cleanPath, anything that is not a quoted literal yields "".
func cleanStringLiteral(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return ""
	}
	first, last := s[0], s[len(s)-1]
	if first == last && (first == '"' || first == '\'' || first == '`') {
		return s[1 : len(s)-1]
	}
	return ""
}
