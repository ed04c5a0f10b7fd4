package extract

import (
	"github.com/mehmetkoksal-w/routemap/internal/analysis"
)

// Extractor pairs a declaration locator with a parameter resolver for
// one framework. Locate finds candidate route declarations in a unit;
// ResolveParameters expands one candidate into its ordered parameter
// list. Both honor the unit's mode: tree-based when a syntax tree is
// available, textual patterns otherwise.
type Extractor interface {
	// ID returns the unique identifier for this extractor.
	ID() string

	// Framework returns the framework name (e.g., "spring", "express").
	Framework() string

	// Languages returns the languages this extractor supports.
	Languages() []analysis.Language

	// CanExtract returns true if this extractor can handle the given unit.
	CanExtract(unit *analysis.SourceUnit) bool

	// Locate finds candidate route declarations in the unit.
	Locate(unit *analysis.SourceUnit) []Candidate

	// ResolveParameters resolves a located candidate's parameters in
	// declaration order.
	ResolveParameters(unit *analysis.SourceUnit, c *Candidate) []Parameter
}

// Registry holds registered extractors. It is an explicit value built
// once at startup and passed to the engine; there is no package-level
// default.
type Registry struct {
	extractors []Extractor
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{extractors: make([]Extractor, 0)}
}

// NewDefaultRegistry creates a registry with all built-in extractors.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewSpringExtractor())
	r.Register(NewFlaskExtractor())
	r.Register(NewFastAPIExtractor())
	r.Register(NewDjangoExtractor())
	r.Register(NewExpressExtractor())
	return r
}

// Register adds an extractor to the registry.
func (r *Registry) Register(e Extractor) {
	r.extractors = append(r.extractors, e)
}

// For returns all extractors that can handle the given unit, in
// registration order.
func (r *Registry) For(unit *analysis.SourceUnit) []Extractor {
	var result []Extractor
	for _, e := range r.extractors {
		if e.CanExtract(unit) {
			result = append(result, e)
		}
	}
	return result
}

// All returns every registered extractor.
func (r *Registry) All() []Extractor {
	return r.extractors
}
