// Package domain defines the core types shared by the ratchet engine.
package domain

import (
	"path/filepath"
	"strings"
)

// Language represents a programming language that syntax-aware rules can parse.
type Language string

// Supported languages for tree-sitter backed rules.
const (
	LanguageGo         Language = "go"
	LanguageJavaScript Language = "javascript"
	LanguagePython     Language = "python"
	LanguageRust       Language = "rust"
	LanguageTypeScript Language = "typescript"
)

// Languages lists every supported language in a stable order.
var Languages = []Language{
	LanguageGo,
	LanguageJavaScript,
	LanguagePython,
	LanguageRust,
	LanguageTypeScript,
}

// ParseLanguage returns the language with the given name.
func ParseLanguage(name string) (Language, bool) {
	lang := Language(strings.ToLower(strings.TrimSpace(name)))
	for _, l := range Languages {
		if l == lang {
			return l, true
		}
	}
	return "", false
}

// Extension returns the canonical source file extension for the language.
func (l Language) Extension() FileExtension {
	switch l {
	case LanguageGo:
		return ".go"
	case LanguageJavaScript:
		return ".js"
	case LanguagePython:
		return ".py"
	case LanguageRust:
		return ".rs"
	default:
		return ".ts"
	}
}

// LanguageForPath guesses the language from a file name.
func LanguageForPath(path string) (Language, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return LanguageGo, true
	case ".js", ".jsx", ".mjs", ".cjs":
		return LanguageJavaScript, true
	case ".py", ".pyi":
		return LanguagePython, true
	case ".rs":
		return LanguageRust, true
	case ".ts", ".tsx", ".mts", ".cts":
		return LanguageTypeScript, true
	default:
		return "", false
	}
}
