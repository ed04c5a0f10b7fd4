// Package analysis builds in-memory source units for the extraction
// engine: raw file content plus, when the grammar parses cleanly, a
// tree-sitter syntax tree.
package analysis

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Mode describes which extraction strategy a unit supports.
type Mode int

const (
	// ModeText means only textual pattern matching is possible.
	ModeText Mode = iota
	// ModeTree means a syntax tree is available and authoritative.
	ModeTree
)

// SourceUnit is one source file prepared for extraction. It is
// immutable once built and discarded after the file is processed.
type SourceUnit struct {
	Path     string
	Language Language
	Content  []byte

	tree *sitter.Tree
}

// NewSourceUnit builds a unit for path, parsing content with the
// tree-sitter grammar registered for the file's language. A grammar
// that fails to parse, or produces an error-bearing tree, degrades the
// unit to text-only mode; that is not reported as an error.
func NewSourceUnit(path string, content []byte) *SourceUnit {
	unit := &SourceUnit{Path: path, Content: content}
	lang, ok := DetectLanguage(path)
	if !ok {
		return unit
	}
	unit.Language = lang

	grammar := grammarFor(lang)
	if grammar == nil {
		return unit
	}
	parser := sitter.NewParser()
	parser.SetLanguage(grammar)
	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil || tree == nil {
		return unit
	}
	if tree.RootNode().HasError() {
		// Malformed source: pattern mode is the sole source for
		// this unit.
		tree.Close()
		return unit
	}
	unit.tree = tree
	return unit
}

// NewTextUnit builds a unit that never carries a syntax tree,
// regardless of whether the content would parse.
func NewTextUnit(path string, content []byte) *SourceUnit {
	unit := &SourceUnit{Path: path, Content: content}
	if lang, ok := DetectLanguage(path); ok {
		unit.Language = lang
	}
	return unit
}

// Mode reports whether tree-based extraction is available.
func (u *SourceUnit) Mode() Mode {
	if u.tree != nil {
		return ModeTree
	}
	return ModeText
}

// Root returns the syntax tree root, or nil in text-only mode.
func (u *SourceUnit) Root() *sitter.Node {
	if u.tree == nil {
		return nil
	}
	return u.tree.RootNode()
}

// Close releases the syntax tree. The unit must not be used after.
func (u *SourceUnit) Close() {
	if u.tree != nil {
		u.tree.Close()
		u.tree = nil
	}
}

func grammarFor(lang Language) *sitter.Language {
	switch lang {
	case LangJava:
		return java.GetLanguage()
	case LangPython:
		return python.GetLanguage()
	case LangJavaScript:
		return javascript.GetLanguage()
	case LangTypeScript:
		return typescript.GetLanguage()
	default:
		return nil
	}
}
