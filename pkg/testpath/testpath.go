// Package testpath holds the single convention that separates test code from production code.
// Every rule that exempts tests must go through IsTest so the convention cannot drift.
package testpath

import (
	"path/filepath"
	"strings"
)

// testDirs are directory names whose contents count as test code.
var testDirs = map[string]bool{
	"test":      true,
	"tests":     true,
	"__tests__": true,
}

// IsTest reports whether path (relative or absolute) is test code.
func IsTest(path string) bool {
	if path == "" {
		return false
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".py", ".pyi":
		return isPythonTestFile(path)
	case ".go":
		return isGoTestFile(path)
	case ".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs", ".mts", ".cts":
		return isJSTestFile(path)
	case ".rs":
		return isRustTestFile(path)
	default:
		return inTestDir(path)
	}
}

func isPythonTestFile(path string) bool {
	base := filepath.Base(path)
	name := strings.TrimSuffix(strings.TrimSuffix(base, ".pyi"), ".py")

	// pytest conventions: test_*.py or *_test.py
	if strings.HasPrefix(name, "test_") || strings.HasSuffix(name, "_test") {
		return true
	}

	// conftest.py holds fixtures, which share the closure idioms of tests.
	if name == "conftest" {
		return true
	}

	return inTestDir(path)
}

func isGoTestFile(path string) bool {
	return strings.HasSuffix(filepath.Base(path), "_test.go")
}

func isJSTestFile(path string) bool {
	lowerBase := strings.ToLower(filepath.Base(path))

	if strings.Contains(lowerBase, ".test.") || strings.Contains(lowerBase, ".spec.") {
		return true
	}

	return inTestDir(path)
}

func isRustTestFile(path string) bool {
	if strings.HasSuffix(filepath.Base(path), "_test.rs") {
		return true
	}
	return inTestDir(path)
}

// inTestDir reports whether any directory component of path is a test directory.
func inTestDir(path string) bool {
	normalizedPath := filepath.ToSlash(path)
	parts := strings.Split(normalizedPath, "/")
	for _, dir := range parts[:len(parts)-1] {
		if testDirs[dir] {
			return true
		}
	}
	return false
}
