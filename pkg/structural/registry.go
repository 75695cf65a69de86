package structural

import (
	"maps"
	"slices"
)

// Evaluator names, as used in configuration files.
const (
	IfElifWithoutElse                = "if-elif-without-else"
	InlineFunctions                  = "inline-functions"
	UnderscoreImports                = "underscore-imports"
	InitMethodsInNonExceptionClasses = "init-methods-in-non-exception-classes"
)

var registry = map[string]Evaluator{
	IfElifWithoutElse:                FindIfElifWithoutElse,
	InlineFunctions:                  FindInlineFunctions,
	UnderscoreImports:                FindUnderscoreImports,
	InitMethodsInNonExceptionClasses: FindInitMethodsInNonExceptionClasses,
}

// Lookup returns the evaluator registered under name.
func Lookup(name string) (Evaluator, bool) {
	evaluate, ok := registry[name]
	return evaluate, ok
}

// Names returns the registered evaluator names in sorted order.
func Names() []string {
	return slices.Sorted(maps.Keys(registry))
}
