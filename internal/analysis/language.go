package analysis

import (
	"path/filepath"
	"strings"
)

// Language represents a programming language routemap can scan.
type Language string

// Supported languages.
const (
	LangJava       Language = "java"
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
)

var extensionToLanguage = map[string]Language{
	// Java
	".java": LangJava,
	// Python
	".py":  LangPython,
	".pyw": LangPython,
	// JavaScript
	".js":  LangJavaScript,
	".mjs": LangJavaScript,
	".cjs": LangJavaScript,
	".jsx": LangJavaScript,
	// TypeScript
	".ts":  LangTypeScript,
	".tsx": LangTypeScript,
	".mts": LangTypeScript,
	".cts": LangTypeScript,
}

// DetectLanguage returns the language of a file based on its extension.
// The second return value is false for files routemap does not scan.
func DetectLanguage(path string) (Language, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	lang, ok := extensionToLanguage[ext]
	return lang, ok
}

// SupportedLanguages returns every language tag a registry can be
// restricted to. The order is stable.
func SupportedLanguages() []Language {
	return []Language{LangJava, LangPython, LangJavaScript, LangTypeScript}
}

// ParseLanguages converts user-supplied language names into tags,
// accepting common aliases. Unknown names are returned in the second
// value so the caller can report them.
func ParseLanguages(names []string) ([]Language, []string) {
	var langs []Language
	var unknown []string
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "java":
			langs = append(langs, LangJava)
		case "python", "py":
			langs = append(langs, LangPython)
		case "javascript", "js":
			langs = append(langs, LangJavaScript)
		case "typescript", "ts":
			langs = append(langs, LangTypeScript)
		case "":
			// skip empty entries
		default:
			unknown = append(unknown, name)
		}
	}
	return langs, unknown
}
