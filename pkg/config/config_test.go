package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specvital/ratchet/pkg/config"
	"github.com/specvital/ratchet/pkg/domain"
	"github.com/specvital/ratchet/pkg/ratchet"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Formats(t *testing.T) {
	tomlCfg, err := config.Load("testdata/ratchet.toml")
	require.NoError(t, err)
	yamlCfg, err := config.Load("testdata/ratchet.yaml")
	require.NoError(t, err)

	assert.Equal(t, tomlCfg.File, yamlCfg.File)

	for _, cfg := range []*config.Config{tomlCfg, yamlCfg} {
		dir, err := filepath.Abs("testdata")
		require.NoError(t, err)

		assert.Equal(t, dir, cfg.Dir)
		assert.Equal(t, filepath.Join(dir, "src"), cfg.Root())
		assert.Equal(t, "ratchets/test_ratchets.py", cfg.Self())
		assert.Equal(t, filepath.Join(dir, "ratchet-counts.toml"), cfg.CountsPath())
		assert.False(t, cfg.DefaultRules())
		assert.True(t, cfg.DefaultTools())
		assert.True(t, cfg.Disabled("ruff"))
		assert.False(t, cfg.Disabled("bare-except"))
		assert.Equal(t, 4, cfg.Workers())
		assert.Equal(t, 10*time.Minute, cfg.Timeout())
		assert.Equal(t, 1, cfg.ContextLines())
		assert.Equal(t, map[string]domain.Baseline{"bare-except": 2}, cfg.Baselines())
		assert.Len(t, cfg.ScanOptions(), 3)

		rules := cfg.Rules()
		require.Len(t, rules, 4)
		assert.Equal(t, "bare-except", rules[0].ID)
		assert.Equal(t, domain.Baseline(3), rules[0].Baseline)
		assert.IsType(t, ratchet.RegexMatcher{}, rules[0].Matcher)
		regex := rules[1].Matcher.(ratchet.RegexMatcher)
		assert.True(t, regex.Pattern.IsMultiline())
		assert.Equal(t, []string{"pkg/**"}, regex.Include)
		assert.IsType(t, ratchet.QueryMatcher{}, rules[2].Matcher)
		assert.IsType(t, ratchet.StructuralMatcher{}, rules[3].Matcher)

		tools := cfg.Tools()
		require.Len(t, tools, 1)
		assert.Equal(t, "mypy", tools[0].ID)
		assert.Equal(t, 2*time.Minute, tools[0].Timeout)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{name: "unknown toml key", file: "ratchet.toml", content: "colour = \"red\"\n", wantErr: "colour"},
		{name: "unknown yaml key", file: "ratchet.yaml", content: "colour: red\n", wantErr: "colour"},
		{name: "unsupported extension", file: "ratchet.ini", content: "", wantErr: "unsupported config extension"},
		{name: "bad regex", file: "ratchet.toml", content: "[[rules]]\nid = \"x\"\npattern = \"(\"\n", wantErr: "rules[0]"},
		{name: "missing matcher", file: "ratchet.toml", content: "[[rules]]\nid = \"x\"\n", wantErr: "one of pattern, query or evaluator is required"},
		{name: "ambiguous matcher", file: "ratchet.toml", content: "[[rules]]\nid = \"x\"\npattern = \"a\"\nevaluator = \"inline-functions\"\n", wantErr: "ambiguous rule"},
		{name: "unknown kind", file: "ratchet.toml", content: "[[rules]]\nid = \"x\"\nkind = \"ast\"\npattern = \"a\"\n", wantErr: "unknown kind"},
		{name: "bad id", file: "ratchet.toml", content: "[[rules]]\nid = \"Bad Id\"\npattern = \"a\"\n", wantErr: "kebab-case"},
		{name: "duplicate id", file: "ratchet.toml", content: "[[rules]]\nid = \"x\"\npattern = \"a\"\n[[rules]]\nid = \"x\"\npattern = \"b\"\n", wantErr: "duplicate rule id"},
		{name: "bad extension", file: "ratchet.toml", content: "[[rules]]\nid = \"x\"\npattern = \"a\"\nextension = \"py\"\n", wantErr: "rules[0]"},
		{name: "invalid query", file: "ratchet.toml", content: "[[rules]]\nid = \"x\"\nlanguage = \"python\"\nquery = \"(unclosed_paren\"\n", wantErr: "invalid python query"},
		{name: "unknown language", file: "ratchet.toml", content: "[[rules]]\nid = \"x\"\nlanguage = \"cobol\"\nquery = \"(a) @b\"\n", wantErr: "unknown language"},
		{name: "unknown evaluator", file: "ratchet.toml", content: "[[rules]]\nid = \"x\"\nevaluator = \"nope\"\n", wantErr: "unknown evaluator"},
		{name: "bad include glob", file: "ratchet.toml", content: "[[rules]]\nid = \"x\"\npattern = \"a\"\ninclude = [\"[\"]\n", wantErr: "invalid glob pattern"},
		{name: "negative baseline", file: "ratchet.toml", content: "[[rules]]\nid = \"x\"\npattern = \"a\"\nbaseline = -1\n", wantErr: "must not be negative"},
		{name: "bad timeout", file: "ratchet.toml", content: "timeout = \"soon\"\n", wantErr: "invalid timeout"},
		{name: "negative workers", file: "ratchet.toml", content: "workers = -2\n", wantErr: "workers must not be negative"},
		{name: "negative override", file: "ratchet.toml", content: "[baselines]\nx = -1\n", wantErr: "baselines.x"},
		{name: "tool without command", file: "ratchet.toml", content: "[[tools]]\nid = \"ty\"\n", wantErr: "command is required"},
		{name: "duplicate tool", file: "ratchet.toml", content: "[[tools]]\nid = \"ty\"\ncommand = \"ty\"\n[[tools]]\nid = \"ty\"\ncommand = \"ty\"\n", wantErr: "duplicate tool id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.file, tt.content))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoad_ReportsEveryError(t *testing.T) {
	content := "workers = -1\n[[rules]]\nid = \"a\"\n[[rules]]\nid = \"b\"\nevaluator = \"nope\"\n"

	_, err := config.Load(writeConfig(t, "ratchet.toml", content))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers must not be negative")
	assert.Contains(t, err.Error(), "rules[0]")
	assert.Contains(t, err.Error(), "rules[1]")
}

func TestLoad_EmptyYAML(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "ratchet.yml", ""))
	require.NoError(t, err)
	assert.True(t, cfg.DefaultRules())
	assert.Empty(t, cfg.Rules())
}

func TestDefault(t *testing.T) {
	dir := t.TempDir()

	cfg, err := config.Default(dir)
	require.NoError(t, err)

	assert.Empty(t, cfg.Path)
	assert.Equal(t, dir, cfg.Root())
	assert.True(t, cfg.DefaultRules())
	assert.False(t, cfg.DefaultTools())
	assert.Equal(t, filepath.Join(dir, "ratchet-counts.toml"), cfg.CountsPath())
	assert.Empty(t, cfg.ScanOptions())
	assert.Zero(t, cfg.Timeout())
}

func TestFind(t *testing.T) {
	t.Run("should prefer an explicit path", func(t *testing.T) {
		path := writeConfig(t, "custom.toml", "")

		found, err := config.Find(t.TempDir(), path)
		require.NoError(t, err)
		assert.Equal(t, path, found)
	})

	t.Run("should reject a missing explicit path", func(t *testing.T) {
		_, err := config.Find("", filepath.Join(t.TempDir(), "missing.toml"))
		assert.Error(t, err)
	})

	t.Run("should reject a directory", func(t *testing.T) {
		_, err := config.Find("", t.TempDir())
		assert.ErrorContains(t, err, "is a directory")
	})

	t.Run("should walk up from the start directory", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "ratchet.yaml"), nil, 0644))
		nested := filepath.Join(root, "a", "b")
		require.NoError(t, os.MkdirAll(nested, 0755))

		found, err := config.Find(nested, "")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "ratchet.yaml"), found)
	})

	t.Run("should prefer toml within one directory", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "ratchet.yaml"), nil, 0644))
		require.NoError(t, os.WriteFile(filepath.Join(root, "ratchet.toml"), nil, 0644))

		found, err := config.Find(root, "")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "ratchet.toml"), found)
	})
}
