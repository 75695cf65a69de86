package match

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specvital/ratchet/pkg/domain"
	"github.com/specvital/ratchet/pkg/textutil"
)

var pyExt = domain.MustFileExtension(".py")

func TestNewRegexPattern(t *testing.T) {
	t.Run("should compile lookahead", func(t *testing.T) {
		p, err := NewRegexPattern(`[^\s#].*[ \t]#(?!\s*ty:\s*ignore\[)`)
		require.NoError(t, err)
		assert.False(t, p.IsMultiline())
		assert.False(t, p.IsIgnoreCase())
	})

	t.Run("should return PatternError for malformed pattern", func(t *testing.T) {
		_, err := NewRegexPattern(`except(`)

		var patternErr *PatternError
		require.True(t, errors.As(err, &patternErr))
		assert.Equal(t, "except(", patternErr.Expr)
	})

	t.Run("should reject empty pattern", func(t *testing.T) {
		_, err := NewRegexPattern("")
		assert.Error(t, err)
	})

	t.Run("should panic in Must variant", func(t *testing.T) {
		assert.Panics(t, func() { MustRegexPattern(`[`) })
	})

	t.Run("should describe its mode", func(t *testing.T) {
		p := MustRegexPattern(`yaml`, WithMultiline(), WithIgnoreCase())
		assert.Equal(t, "/yaml/ (multiline,ignorecase)", p.String())
	})
}

func TestFind_SingleLine(t *testing.T) {
	content := []byte("try:\n    x()\nexcept:\n    pass\ntry:\n    y()\nexcept Exception as e:\n    pass\n")

	bare, err := Find("a.py", content, MustRegexPattern(`except\s*:`))
	require.NoError(t, err)
	require.Len(t, bare, 1)
	assert.Equal(t, domain.Chunk{File: "a.py", Line: 3, Text: "except:"}, bare[0])

	broad, err := Find("a.py", content, MustRegexPattern(`except\s+Exception\b`))
	require.NoError(t, err)
	require.Len(t, broad, 1)
	assert.Equal(t, 7, broad[0].Line)
	assert.Equal(t, "except Exception", broad[0].Text)
}

func TestFind_SingleLineDoesNotCrossLines(t *testing.T) {
	content := []byte("except\n:\n")

	chunks, err := Find("a.py", content, MustRegexPattern(`except\s*:`))
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestFind_MultipleMatchesPerLine(t *testing.T) {
	chunks, err := Find("a.py", []byte("eval(a) + eval(b)\n"), MustRegexPattern(`\beval\s*\(`))
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, 1, chunks[0].Line)
	assert.Equal(t, 1, chunks[1].Line)
}

func TestFind_Multiline(t *testing.T) {
	t.Run("should report the first line of a spanning match", func(t *testing.T) {
		content := []byte("x = 1\ndef f():\n    \"\"\"Do it.\n\n    Args:\n        a: thing\n    \"\"\"\n")

		chunks, err := Find("a.py", content, MustRegexPattern(`"""[\s\S]{0,500}Args:`, WithMultiline()))
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, 3, chunks[0].Line)
		assert.True(t, strings.HasPrefix(chunks[0].Text, `"""Do it.`))
		assert.True(t, strings.HasSuffix(chunks[0].Text, "Args:"))
	})

	t.Run("should anchor at line starts", func(t *testing.T) {
		content := []byte("import os\nfrom .sibling import x\n  from . import y\nfrom .other import z\n")

		chunks, err := Find("a.py", content, MustRegexPattern(`^from\s+\.`, WithMultiline()))
		require.NoError(t, err)
		require.Len(t, chunks, 2)
		assert.Equal(t, 2, chunks[0].Line)
		assert.Equal(t, 4, chunks[1].Line)
	})

	t.Run("should count lines by rune offsets", func(t *testing.T) {
		content := []byte("# 日本語のコメント\nname = \"é\"\nimport datetime\n")

		chunks, err := Find("a.py", content, MustRegexPattern(`^import datetime$`, WithMultiline()))
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, 3, chunks[0].Line)
	})

	t.Run("should cap long excerpts", func(t *testing.T) {
		content := []byte(`"""` + strings.Repeat("word ", 95) + "Returns:\n")

		chunks, err := Find("a.py", content, MustRegexPattern(`"""[\s\S]{0,500}Returns:`, WithMultiline()))
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.LessOrEqual(t, textutil.VisibleWidth(chunks[0].Text), MaxExcerptWidth)
		assert.True(t, strings.HasSuffix(chunks[0].Text, textutil.Ellipsis))
	})
}

func TestFind_IgnoreCase(t *testing.T) {
	content := []byte("import YAML\n")

	sensitive, err := Find("a.py", content, MustRegexPattern(`yaml`))
	require.NoError(t, err)
	assert.Empty(t, sensitive)

	insensitive, err := Find("a.py", content, MustRegexPattern(`yaml`, WithIgnoreCase()))
	require.NoError(t, err)
	assert.Len(t, insensitive, 1)
}

func TestFind_TrailingCommentLookahead(t *testing.T) {
	content := []byte("x = 1  # explain\ny = cast(z)  # ty: ignore[invalid]\n# own line\n")

	chunks, err := Find("a.py", content, MustRegexPattern(`[^\s#].*[ \t]#(?!\s*ty:\s*ignore\[)`))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 1, chunks[0].Line)
}

func TestFind_ContextLines(t *testing.T) {
	content := []byte("a\nb\nTODO\nc\nd\n")

	chunks, err := Find("a.py", content, MustRegexPattern(`TODO`), WithContextLines(1))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, []string{"b", "TODO", "c"}, chunks[0].Context)

	chunks, err = Find("a.py", []byte("TODO\n"), MustRegexPattern(`TODO`), WithContextLines(3))
	require.NoError(t, err)
	assert.Equal(t, []string{"TODO"}, chunks[0].Context)
}

func TestFind_CRLF(t *testing.T) {
	chunks, err := Find("a.py", []byte("import datetime\r\nx = 1\r\n"), MustRegexPattern(`^import datetime$`))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "import datetime", chunks[0].Text)
}

func TestFind_Timeout(t *testing.T) {
	p := MustRegexPattern(`(a+)+$`, WithMatchTimeout(time.Millisecond))
	content := []byte(strings.Repeat("a", 5000) + "!")

	_, err := Find("slow.py", content, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slow.py")
}

func TestNewRegexPattern_DefaultTimeout(t *testing.T) {
	assert.Equal(t, 10*time.Second, DefaultMatchTimeout)
	assert.Equal(t, DefaultMatchTimeout, MustRegexPattern(`except\s*:`).re.MatchTimeout)
	assert.Equal(t, time.Second, MustRegexPattern(`x`, WithMatchTimeout(time.Second)).re.MatchTimeout)
}

func TestCheckRegexRatchet(t *testing.T) {
	t.Run("should return no chunks for empty tree", func(t *testing.T) {
		chunks, err := CheckRegexRatchet(context.Background(), t.TempDir(), pyExt, MustRegexPattern(`except\s*:`), "")
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("should find three nested bare excepts in fixture", func(t *testing.T) {
		root := t.TempDir()
		fixture, err := os.ReadFile(filepath.Join("testdata", "python_except.py"))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(root, "python_except.py"), fixture, 0644))

		chunks, err := CheckRegexRatchet(context.Background(), root, pyExt, MustRegexPattern(`except\s*:`), "")
		require.NoError(t, err)
		require.Len(t, chunks, 3)
		assert.Equal(t, []int{6, 13, 16}, []int{chunks[0].Line, chunks[1].Line, chunks[2].Line})

		broad, err := CheckRegexRatchet(context.Background(), root, pyExt, MustRegexPattern(`except\s+Exception\b`), "")
		require.NoError(t, err)
		require.Len(t, broad, 1)
		assert.Equal(t, 25, broad[0].Line)
	})

	t.Run("should never report the self file", func(t *testing.T) {
		root := t.TempDir()
		self := filepath.Join(root, "test_ratchets.py")
		require.NoError(t, os.WriteFile(self, []byte(`pattern = r"except\s*:"`+"\nexcept:\n"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(root, "app.py"), []byte("except:\n"), 0644))

		chunks, err := CheckRegexRatchet(context.Background(), root, pyExt, MustRegexPattern(`except\s*:`), self)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		for _, c := range chunks {
			assert.NotEqual(t, "test_ratchets.py", c.File)
		}
	})

	t.Run("should fail for missing root", func(t *testing.T) {
		_, err := CheckRegexRatchet(context.Background(), filepath.Join(t.TempDir(), "nope"), pyExt, MustRegexPattern(`x`), "")
		assert.Error(t, err)
	})
}
