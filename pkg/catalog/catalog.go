// Package catalog holds the default rule table for Python projects.
//
// The table is declarative: each entry names a rule, its matcher and the baseline it
// starts from. Projects lower baselines through the counts file and may add rules of
// their own in configuration; they never raise the values below.
package catalog

import (
	"github.com/specvital/ratchet/pkg/domain"
	"github.com/specvital/ratchet/pkg/match"
	"github.com/specvital/ratchet/pkg/ratchet"
	"github.com/specvital/ratchet/pkg/structural"
	"github.com/specvital/ratchet/pkg/toolcheck"
)

var py = domain.MustFileExtension(".py")

type regexEntry struct {
	id          string
	name        string
	description string
	expr        string
	multiline   bool
	baseline    domain.Baseline
}

type structuralEntry struct {
	evaluator   string
	name        string
	description string
	baseline    domain.Baseline
}

var regexRules = []regexEntry{
	{
		id:          "todos",
		name:        "TODO comments",
		description: "TODO comments should not increase (ideally should decrease to zero)",
		expr:        `# TODO:.*`,
	},
	{
		id:          "exec-usage",
		name:        "exec() usages",
		description: "exec() should not be used due to security and maintainability concerns",
		expr:        `\bexec\s*\(`,
	},
	{
		id:          "eval-usage",
		name:        "eval() usages",
		description: "eval() should not be used due to security and maintainability concerns",
		expr:        `\beval\s*\(`,
	},
	{
		id:          "inline-imports",
		name:        "inline imports",
		description: "Imports should be at the top of the file, not inline within functions",
		expr:        `^[ \t]+import\s+\w+|^[ \t]+from\s+\S+\s+import\b`,
		multiline:   true,
		baseline:    1,
	},
	{
		id:          "bare-except",
		name:        "bare except clauses",
		description: "Bare 'except:' catches all exceptions including system exits. Use specific exception types instead",
		expr:        `except\s*:`,
	},
	{
		id:          "broad-exception-catch",
		name:        "except Exception catches",
		description: "Catching 'Exception' is too broad. Use specific exception types instead",
		expr:        `except\s+Exception\b`,
	},
	{
		id:          "base-exception-catch",
		name:        "except BaseException catches",
		description: "Catching 'BaseException' catches system exits and keyboard interrupts. Use specific exception types instead",
		expr:        `except\s+BaseException\b`,
	},
	{
		id:          "while-true",
		name:        "while True loops",
		description: "'while True' loops can cause infinite loops and make code harder to reason about. Use explicit conditions instead",
		expr:        `\bwhile\s+True\s*:`,
	},
	{
		id:          "asyncio-import",
		name:        "asyncio imports",
		description: "asyncio is banned per style guide. Use synchronous code instead",
		expr:        `\bimport\s+asyncio\b|\bfrom\s+asyncio\b`,
	},
	{
		id:          "pandas-import",
		name:        "pandas imports",
		description: "pandas is banned per style guide. Use polars instead",
		expr:        `\bimport\s+pandas\b|\bfrom\s+pandas\b`,
	},
	{
		id:          "dataclasses-import",
		name:        "dataclasses imports",
		description: "dataclasses are banned per style guide. Use pydantic models instead",
		expr:        `\bimport\s+dataclasses\b|\bfrom\s+dataclasses\b`,
	},
	{
		id:          "namedtuple-usage",
		name:        "namedtuple usage",
		description: "namedtuple is banned per style guide. Use pydantic models instead",
		expr:        `\bnamedtuple\s*\(`,
	},
	{
		// ty: ignore[...] directives have to trail the line they silence.
		id:          "trailing-comments",
		name:        "trailing comments",
		description: "Comments should be on their own line, not trailing after code. Trailing comments make code harder to read",
		expr:        `[^\s#].*[ \t]#(?!\s*ty:\s*ignore\[)`,
	},
	{
		id:          "relative-imports",
		name:        "relative imports",
		description: "Always use absolute imports, never relative imports. Use 'from package.module' instead of 'from .'",
		expr:        `^from\s+\.`,
		multiline:   true,
	},
	{
		id:          "global-keyword",
		name:        "global keyword usage",
		description: "Avoid using the 'global' keyword. Pass state explicitly through function parameters instead",
		expr:        `\bglobal\s+\w+`,
	},
	{
		id:          "init-docstrings",
		name:        "docstrings in __init__ methods",
		description: "Never create docstrings for __init__ methods. The class docstring should describe the class, not __init__",
		expr:        `def __init__[^:]*:\s+"""`,
		multiline:   true,
	},
	{
		id:          "args-in-docstrings",
		name:        "Args: sections in docstrings",
		description: "Never include 'Args:' sections in docstrings. Use inline parameter comments if needed",
		expr:        `"""[\s\S]{0,500}Args:`,
		multiline:   true,
	},
	{
		id:          "returns-in-docstrings",
		name:        "Returns: sections in docstrings",
		description: "Never include 'Returns:' sections in docstrings. Use inline return type comments if needed",
		expr:        `"""[\s\S]{0,500}Returns:`,
		multiline:   true,
	},
	{
		id:          "num-prefix",
		name:        "num prefix usage",
		description: "Avoid using 'num' prefix. Use 'count' or 'idx' instead (e.g., 'user_count' not 'num_users')",
		expr:        `\bnum_\w+|\bnumOf|\bnum[A-Z]`,
	},
	{
		id:          "builtin-exception-raises",
		name:        "direct raising of built-in exceptions",
		description: "Never raise built-in exceptions directly. Create custom exception types that inherit from both the package base exception and the built-in",
		expr:        `raise\s+(ValueError|KeyError|TypeError|AttributeError|IndexError|RuntimeError|OSError|IOError)\(`,
	},
	{
		id:          "yaml-usage",
		name:        "yaml usage",
		description: "NEVER use YAML files. Use TOML for configuration instead",
		expr:        `yaml`,
		multiline:   true,
	},
	{
		id:          "literal-with-multiple-options",
		name:        "Literal with multiple options",
		description: "Never use Literal with multiple string options. Create an UpperCaseStrEnum instead per the style guide",
		expr:        `Literal\[.*,.*\]`,
	},
	{
		id:          "import-datetime",
		name:        "import datetime",
		description: "Do not use 'import datetime'. Import specific items instead: 'from datetime import datetime, timedelta, etc.'",
		expr:        `^import datetime$`,
		multiline:   true,
	},
	{
		id:          "time-sleep",
		name:        "time.sleep usage",
		description: "time.sleep is an antipattern. Instead, poll for the condition that you expect to be true. See wait_for",
		expr:        `\btime\.sleep\s*\(|\bfrom\s+time\s+import\s+sleep\b`,
		baseline:    4,
	},
	{
		id:          "bare-print",
		name:        "bare print statements",
		description: "Do not use bare print statements. Use logger.info(), logger.debug(), logger.warning(), etc instead",
		expr:        `^\s*print\s*\(`,
		multiline:   true,
	},
	{
		id:          "click-echo",
		name:        "click.echo usage",
		description: "Do not use click.echo. Use logger.info() instead for consistent logging",
		expr:        `\bclick\.echo\b|\bfrom\s+click\s+import\s+.*\becho\b`,
	},
	{
		id:          "bare-generic-types",
		name:        "bare generic types",
		description: "Generic types must specify their type parameters. Use 'list[str]' not 'list', 'dict[str, int]' not 'dict', etc.",
		expr:        `:\s*(list|dict|tuple|set|List|Dict|Tuple|Set|Mapping|Sequence)\s*($|[,\)\]])`,
	},
	{
		id:          "typing-builtin-imports",
		name:        "typing module imports for builtin types",
		description: "Do not import Dict, List, Set, or Tuple from typing. Use lowercase builtin types (dict, list, set, tuple) instead",
		expr:        `\bfrom\s+typing\s+import\s+.*\b(Dict|List|Set|Tuple)\b`,
	},
	{
		id:          "fstring-logging",
		name:        "f-string logging",
		description: "Do not use f-strings with loguru. Use loguru-style placeholder syntax instead: logger.info('message {}', var) instead of logger.info(f'message {var}')",
		expr:        `logger\.(trace|debug|info|warning|error|exception)\(f`,
	},
}

var structuralRules = []structuralEntry{
	{
		evaluator:   structural.IfElifWithoutElse,
		name:        "if/elif without else",
		description: "All if/elif chains must have an else clause to ensure all cases are handled explicitly",
	},
	{
		evaluator:   structural.InlineFunctions,
		name:        "inline functions in non-test code",
		description: "Functions should not be defined inside other functions in non-test code. Extract them as top-level functions or methods",
		baseline:    1,
	},
	{
		evaluator:   structural.UnderscoreImports,
		name:        "importing underscore-prefixed names in non-test code",
		description: "Do not import underscore-prefixed functions/classes/constants in non-test code. These are private and should not be used outside their defining module",
	},
	{
		evaluator:   structural.InitMethodsInNonExceptionClasses,
		name:        "__init__ methods in non-Exception/Error classes",
		description: "Do not define __init__ methods in non-Exception/Error classes. Use Pydantic models instead, which handle initialization automatically",
		baseline:    1,
	},
}

// Python returns a fresh copy of the default rule table: regex rules first, then the
// structural rules. Callers may modify the result.
func Python() []ratchet.Rule {
	rules := make([]ratchet.Rule, 0, len(regexRules)+len(structuralRules))
	for _, entry := range regexRules {
		var opts []match.PatternOption
		if entry.multiline {
			opts = append(opts, match.WithMultiline())
		}
		rules = append(rules, ratchet.Rule{
			ID:          entry.id,
			Name:        entry.name,
			Description: entry.description,
			Matcher:     ratchet.Regex(py, match.MustRegexPattern(entry.expr, opts...)),
			Baseline:    entry.baseline,
		})
	}
	for _, entry := range structuralRules {
		evaluate, ok := structural.Lookup(entry.evaluator)
		if !ok {
			panic("catalog: unknown evaluator " + entry.evaluator)
		}
		rules = append(rules, ratchet.Rule{
			ID:          entry.evaluator,
			Name:        entry.name,
			Description: entry.description,
			Matcher:     ratchet.Structural(entry.evaluator, evaluate),
			Baseline:    entry.baseline,
		})
	}
	return rules
}

// Tools returns the default external checks. Both run through uv from the project root.
func Tools() []toolcheck.Check {
	return []toolcheck.Check{
		{
			ID:          "ty",
			Name:        "Type checker",
			Description: "The codebase must have zero type errors",
			Command:     "uv",
			Args:        []string{"run", "ty", "check"},
		},
		{
			ID:          "ruff",
			Name:        "Ruff linter",
			Description: "The codebase must have zero ruff linting errors",
			Command:     "uv",
			Args:        []string{"run", "ruff", "check"},
		},
	}
}
