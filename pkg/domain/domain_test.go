package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileExtension(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "python", input: ".py"},
		{name: "compound", input: ".test.ts"},
		{name: "empty", input: "", wantErr: true},
		{name: "dot only", input: ".", wantErr: true},
		{name: "missing dot", input: "py", wantErr: true},
		{name: "separator", input: "./py", wantErr: true},
		{name: "windows separator", input: `.\py`, wantErr: true},
		{name: "whitespace", input: ".py ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, err := NewFileExtension(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidExtension))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, ext.String())
		})
	}
}

func TestMustFileExtension_Panics(t *testing.T) {
	assert.Panics(t, func() { MustFileExtension("py") })
	assert.NotPanics(t, func() { MustFileExtension(".py") })
}

func TestFileExtension_Matches(t *testing.T) {
	ext := MustFileExtension(".py")

	assert.True(t, ext.Matches("main.py"))
	assert.True(t, ext.Matches("pkg/module.py"))
	assert.False(t, ext.Matches("main.pyi"))
	assert.False(t, ext.Matches("main.go"))
}

func TestLanguageForPath(t *testing.T) {
	tests := []struct {
		path string
		want Language
		ok   bool
	}{
		{"a/b.py", LanguagePython, true},
		{"stub.pyi", LanguagePython, true},
		{"main.go", LanguageGo, true},
		{"lib.rs", LanguageRust, true},
		{"app.tsx", LanguageTypeScript, true},
		{"app.mjs", LanguageJavaScript, true},
		{"README.md", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := LanguageForPath(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLanguage(t *testing.T) {
	lang, ok := ParseLanguage(" Python ")
	assert.True(t, ok)
	assert.Equal(t, LanguagePython, lang)
	assert.Equal(t, FileExtension(".py"), lang.Extension())

	_, ok = ParseLanguage("cobol")
	assert.False(t, ok)
}

func TestBaseline_Allows(t *testing.T) {
	assert.True(t, Baseline(0).Allows(0))
	assert.False(t, Baseline(0).Allows(1))
	assert.True(t, Baseline(2).Allows(2))
	assert.False(t, Baseline(1).Allows(2))
}

func TestChunk_String(t *testing.T) {
	c := Chunk{File: "pkg/a.py", Line: 7, Text: "except:"}

	assert.Equal(t, "pkg/a.py:7", c.Position())
	assert.Equal(t, "pkg/a.py:7: except:", c.String())
}
