package extract

import (
	"github.com/mehmetkoksal-w/routemap/internal/analysis"
)

// Engine dispatches source units to the registered extractors and
// assembles normalized, per-file deduplicated endpoint records. It
// holds no per-unit state, so one engine may serve concurrent callers.
type Engine struct {
	registry  *Registry
	languages map[analysis.Language]bool
}

// NewEngine creates an engine over the given registry. A non-empty
// languages slice restricts extraction to those languages; an empty
// slice means every registered language.
func NewEngine(registry *Registry, languages []analysis.Language) *Engine {
	var filter map[analysis.Language]bool
	if len(languages) > 0 {
		filter = make(map[analysis.Language]bool, len(languages))
		for _, l := range languages {
			filter[l] = true
		}
	}
	return &Engine{registry: registry, languages: filter}
}

// ExtractFile runs every applicable extractor over one unit. Located
// declarations that normalize to the same (method, path) pair within
// the unit collapse into a single endpoint; candidates whose method
// cannot be determined are counted and dropped.
func (e *Engine) ExtractFile(unit *analysis.SourceUnit) FileResult {
	var result FileResult
	if unit.Language == "" {
		return result
	}
	if e.languages != nil && !e.languages[unit.Language] {
		return result
	}

	seen := make(map[string]bool)
	for _, ex := range e.registry.For(unit) {
		candidates := ex.Locate(unit)
		result.DeclarationsSeen += len(candidates)
		for i := range candidates {
			c := &candidates[i]
			params := ex.ResolveParameters(unit, c)
			ep, ok := normalize(c, params, unit.Path)
			if !ok {
				result.Dropped++
				continue
			}
			key := ep.Method + " " + ep.Path
			if seen[key] {
				continue
			}
			seen[key] = true
			result.Endpoints = append(result.Endpoints, ep)
		}
	}
	return result
}
