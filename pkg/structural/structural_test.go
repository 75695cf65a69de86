package structural_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specvital/ratchet/pkg/domain"
	"github.com/specvital/ratchet/pkg/structural"
)

const fixtureRoot = "testdata/python"

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func chunkStrings(chunks []domain.Chunk) []string {
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, c.String())
	}
	return out
}

func TestEvaluators_EmptyDirectory(t *testing.T) {
	evaluators := map[string]structural.Evaluator{
		"if/elif":     structural.FindIfElifWithoutElse,
		"inline":      structural.FindInlineFunctions,
		"underscore":  structural.FindUnderscoreImports,
		"init method": structural.FindInitMethodsInNonExceptionClasses,
	}

	for name, evaluate := range evaluators {
		t.Run(name, func(t *testing.T) {
			result, err := evaluate(context.Background(), t.TempDir(), "")
			require.NoError(t, err)
			assert.Empty(t, result.Chunks)
			assert.Empty(t, result.ParseErrors)
		})
	}
}

func TestEvaluators_Idempotent(t *testing.T) {
	evaluators := map[string]structural.Evaluator{
		"if/elif":     structural.FindIfElifWithoutElse,
		"inline":      structural.FindInlineFunctions,
		"underscore":  structural.FindUnderscoreImports,
		"init method": structural.FindInitMethodsInNonExceptionClasses,
	}

	for name, evaluate := range evaluators {
		t.Run(name, func(t *testing.T) {
			first, err := evaluate(context.Background(), fixtureRoot, "")
			require.NoError(t, err)
			second, err := evaluate(context.Background(), fixtureRoot, "")
			require.NoError(t, err)

			assert.NotEmpty(t, first.Chunks)
			assert.Equal(t, first, second)
		})
	}
}

func TestEvaluators_MissingRoot(t *testing.T) {
	_, err := structural.FindIfElifWithoutElse(context.Background(), filepath.Join(t.TempDir(), "missing"), "")
	assert.Error(t, err)
}

func TestEvaluators_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := structural.FindInlineFunctions(ctx, fixtureRoot, "")
	assert.Error(t, err)
}

func TestFindIfElifWithoutElse(t *testing.T) {
	t.Run("should report open chains at the if line", func(t *testing.T) {
		result, err := structural.FindIfElifWithoutElse(context.Background(), fixtureRoot, "")
		require.NoError(t, err)

		assert.Equal(t, []string{
			`app/branches.py:11: if kind == "a":`,
			`app/branches.py:14: if kind.startswith("b"):`,
		}, chunkStrings(result.Chunks))
	})

	t.Run("should skip files with syntax errors and record them", func(t *testing.T) {
		result, err := structural.FindIfElifWithoutElse(context.Background(), fixtureRoot, "")
		require.NoError(t, err)

		require.Len(t, result.ParseErrors, 1)
		assert.Equal(t, "app/broken.py", result.ParseErrors[0].Path)
		assert.GreaterOrEqual(t, result.ParseErrors[0].Line, 1)
		assert.Contains(t, result.ParseErrors[0].Error(), "app/broken.py")
	})

	t.Run("should pass once the else branch is present", func(t *testing.T) {
		chain := "if cond1:\n    a = 1\nelif cond2:\n    a = 2\n"
		withElse := chain + "else:\n    a = 3\n"

		root := t.TempDir()
		writeFiles(t, root, map[string]string{"mod.py": withElse})
		result, err := structural.FindIfElifWithoutElse(context.Background(), root, "")
		require.NoError(t, err)
		assert.Empty(t, result.Chunks)

		writeFiles(t, root, map[string]string{"mod.py": chain})
		result, err = structural.FindIfElifWithoutElse(context.Background(), root, "")
		require.NoError(t, err)
		require.Len(t, result.Chunks, 1)
		assert.Equal(t, 1, result.Chunks[0].Line)
		assert.Equal(t, "mod.py", result.Chunks[0].File)
	})

	t.Run("should count a chain with several elifs once", func(t *testing.T) {
		root := t.TempDir()
		writeFiles(t, root, map[string]string{
			"mod.py": "if a:\n    pass\nelif b:\n    pass\nelif c:\n    pass\n",
		})

		result, err := structural.FindIfElifWithoutElse(context.Background(), root, "")
		require.NoError(t, err)
		assert.Len(t, result.Chunks, 1)
	})

	t.Run("should ignore plain if statements", func(t *testing.T) {
		root := t.TempDir()
		writeFiles(t, root, map[string]string{
			"mod.py": "if a:\n    pass\n\nif b:\n    pass\nelse:\n    pass\n",
		})

		result, err := structural.FindIfElifWithoutElse(context.Background(), root, "")
		require.NoError(t, err)
		assert.Empty(t, result.Chunks)
	})

	t.Run("should never report the excluded file", func(t *testing.T) {
		result, err := structural.FindIfElifWithoutElse(context.Background(), fixtureRoot, "app/branches.py")
		require.NoError(t, err)
		assert.Empty(t, result.Chunks)
	})
}

func TestFindInlineFunctions(t *testing.T) {
	t.Run("should report nested definitions outside tests", func(t *testing.T) {
		result, err := structural.FindInlineFunctions(context.Background(), fixtureRoot, "")
		require.NoError(t, err)

		assert.Equal(t, []string{
			"app/nested.py:5: def inner():",
			"app/nested.py:13: def cached():",
			"app/nested.py:14: def deepest():",
			"app/nested.py:28: def run(self):",
		}, chunkStrings(result.Chunks))
	})

	t.Run("should not report methods of top-level classes", func(t *testing.T) {
		root := t.TempDir()
		writeFiles(t, root, map[string]string{
			"svc.py": "class Service:\n    def run(self):\n        return 1\n\n    async def stop(self):\n        return 2\n",
		})

		result, err := structural.FindInlineFunctions(context.Background(), root, "")
		require.NoError(t, err)
		assert.Empty(t, result.Chunks)
	})

	t.Run("should report async nested definitions", func(t *testing.T) {
		root := t.TempDir()
		writeFiles(t, root, map[string]string{
			"svc.py": "async def outer():\n    async def inner():\n        pass\n    await inner()\n",
		})

		result, err := structural.FindInlineFunctions(context.Background(), root, "")
		require.NoError(t, err)
		require.Len(t, result.Chunks, 1)
		assert.Equal(t, 2, result.Chunks[0].Line)
	})

	t.Run("should exempt test files", func(t *testing.T) {
		root := t.TempDir()
		nested := "def outer():\n    def inner():\n        pass\n"
		writeFiles(t, root, map[string]string{
			"tests/helpers.py": nested,
			"pkg/test_mod.py":  nested,
			"pkg/mod_test.py":  nested,
			"conftest.py":      nested,
		})

		result, err := structural.FindInlineFunctions(context.Background(), root, "")
		require.NoError(t, err)
		assert.Empty(t, result.Chunks)
	})
}

func TestFindUnderscoreImports(t *testing.T) {
	t.Run("should report private names outside tests", func(t *testing.T) {
		result, err := structural.FindUnderscoreImports(context.Background(), fixtureRoot, "")
		require.NoError(t, err)

		assert.Equal(t, []string{
			"app/imports.py:4: import _thread",
			"app/imports.py:5: from collections import _OrderedDictKeysView",
			"app/imports.py:6: from pkg.internal import _helper as helper",
			"app/imports.py:8: from . import _sibling",
			"app/imports.py:9: import pkg._private.mod as mod",
		}, chunkStrings(result.Chunks))
	})

	t.Run("should report each private name of a parenthesized import", func(t *testing.T) {
		root := t.TempDir()
		writeFiles(t, root, map[string]string{
			"mod.py": "from pkg import (\n    _a,\n    b,\n    _c,\n)\n",
		})

		result, err := structural.FindUnderscoreImports(context.Background(), root, "")
		require.NoError(t, err)
		assert.Equal(t, []string{
			"mod.py:2: from pkg import _a",
			"mod.py:4: from pkg import _c",
		}, chunkStrings(result.Chunks))
	})

	t.Run("should ignore wildcard and dunder imports", func(t *testing.T) {
		root := t.TempDir()
		writeFiles(t, root, map[string]string{
			"mod.py": "from pkg import *\nfrom pkg import __all__\nimport __main__\n",
		})

		result, err := structural.FindUnderscoreImports(context.Background(), root, "")
		require.NoError(t, err)
		assert.Empty(t, result.Chunks)
	})
}

func TestFindInitMethodsInNonExceptionClasses(t *testing.T) {
	t.Run("should report initializers of non-exception classes", func(t *testing.T) {
		result, err := structural.FindInitMethodsInNonExceptionClasses(context.Background(), fixtureRoot, "")
		require.NoError(t, err)

		assert.Equal(t, []string{
			"app/models.py:2: def __init__(self, value):",
			"app/models.py:37: def __init__(self):",
		}, chunkStrings(result.Chunks))
	})

	t.Run("should resolve exception bases across files", func(t *testing.T) {
		root := t.TempDir()
		writeFiles(t, root, map[string]string{
			"a.py": "class Leaf(Middle):\n    def __init__(self):\n        pass\n",
			"b.py": "class Middle(Top):\n    pass\n\n\nclass Top(Exception):\n    pass\n",
		})

		result, err := structural.FindInitMethodsInNonExceptionClasses(context.Background(), root, "")
		require.NoError(t, err)
		assert.Empty(t, result.Chunks)
	})

	t.Run("should terminate on inheritance cycles", func(t *testing.T) {
		root := t.TempDir()
		writeFiles(t, root, map[string]string{
			"mod.py": "class A(B):\n    def __init__(self):\n        pass\n\n\nclass B(A):\n    pass\n",
		})

		result, err := structural.FindInitMethodsInNonExceptionClasses(context.Background(), root, "")
		require.NoError(t, err)
		assert.Len(t, result.Chunks, 1)
	})

	t.Run("should resolve exceptions reached through a cycle", func(t *testing.T) {
		root := t.TempDir()
		writeFiles(t, root, map[string]string{
			"mod.py": "class Z(Y):\n    pass\n\n\n" +
				"class X(Y):\n    pass\n\n\n" +
				"class Y(X, KeyError):\n    pass\n\n\n" +
				"class V(X):\n    def __init__(self):\n        pass\n\n\n" +
				"class W(Z):\n    def __init__(self):\n        pass\n",
		})

		result, err := structural.FindInitMethodsInNonExceptionClasses(context.Background(), root, "")
		require.NoError(t, err)
		assert.Empty(t, result.Chunks)
	})

	t.Run("should report decorated initializers", func(t *testing.T) {
		root := t.TempDir()
		writeFiles(t, root, map[string]string{
			"mod.py": "class Config:\n    @override\n    def __init__(self):\n        pass\n",
		})

		result, err := structural.FindInitMethodsInNonExceptionClasses(context.Background(), root, "")
		require.NoError(t, err)
		require.Len(t, result.Chunks, 1)
		assert.Equal(t, 3, result.Chunks[0].Line)
	})

	t.Run("should ignore classes without an initializer", func(t *testing.T) {
		root := t.TempDir()
		writeFiles(t, root, map[string]string{
			"mod.py": "class Model(BaseModel):\n    name: str\n\n    def run(self):\n        pass\n",
		})

		result, err := structural.FindInitMethodsInNonExceptionClasses(context.Background(), root, "")
		require.NoError(t, err)
		assert.Empty(t, result.Chunks)
	})
}

func TestLookup(t *testing.T) {
	for _, name := range structural.Names() {
		evaluate, ok := structural.Lookup(name)
		assert.True(t, ok, name)
		assert.NotNil(t, evaluate, name)
	}

	assert.Len(t, structural.Names(), 4)
	_, ok := structural.Lookup("no-such-evaluator")
	assert.False(t, ok)
}
