package match

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/specvital/ratchet/pkg/domain"
	"github.com/specvital/ratchet/pkg/textutil"
)

// MaxExcerptWidth caps the stored text of a multiline match.
// Some patterns look up to ~500 characters past a marker; the excerpt keeps diagnostics readable.
const MaxExcerptWidth = 300

type findConfig struct {
	contextLines int
	excerptWidth int
}

// FindOption configures Find.
type FindOption func(*findConfig)

// WithContextLines fills Chunk.Context with n lines on each side of the match start.
func WithContextLines(n int) FindOption {
	return func(c *findConfig) {
		if n >= 0 {
			c.contextLines = n
		}
	}
}

// WithExcerptWidth overrides MaxExcerptWidth for multiline matches.
func WithExcerptWidth(w int) FindOption {
	return func(c *findConfig) {
		if w > 0 {
			c.excerptWidth = w
		}
	}
}

// Find returns every non-overlapping match of p in content as a chunk for path.
func Find(path string, content []byte, p *RegexPattern, opts ...FindOption) ([]domain.Chunk, error) {
	cfg := findConfig{excerptWidth: MaxExcerptWidth}
	for _, opt := range opts {
		opt(&cfg)
	}

	text := string(content)
	lines := splitLines(text)

	var chunks []domain.Chunk
	if p.multiline {
		found, err := findMultiline(path, text, p.re, cfg)
		if err != nil {
			return nil, err
		}
		chunks = found
	} else {
		for i, line := range lines {
			found, err := findAll(p.re, line)
			if err != nil {
				return nil, fmt.Errorf("match %s in %s:%d: %w", p.expr, path, i+1, err)
			}
			for _, m := range found {
				chunks = append(chunks, domain.Chunk{
					File: path,
					Line: i + 1,
					Text: m.String(),
				})
			}
		}
	}

	if cfg.contextLines > 0 {
		for i := range chunks {
			chunks[i].Context = contextWindow(lines, chunks[i].Line, cfg.contextLines)
		}
	}

	return chunks, nil
}

func findMultiline(path, text string, re *regexp2.Regexp, cfg findConfig) ([]domain.Chunk, error) {
	found, err := findAll(re, text)
	if err != nil {
		return nil, fmt.Errorf("match %s in %s: %w", re.String(), path, err)
	}
	if len(found) == 0 {
		return nil, nil
	}

	starts := lineStarts([]rune(text))
	chunks := make([]domain.Chunk, 0, len(found))
	for _, m := range found {
		chunks = append(chunks, domain.Chunk{
			File: path,
			Line: lineForOffset(starts, m.Index),
			Text: textutil.TruncateByWidth(m.String(), cfg.excerptWidth, textutil.Ellipsis),
		})
	}
	return chunks, nil
}

func findAll(re *regexp2.Regexp, s string) ([]*regexp2.Match, error) {
	var matches []*regexp2.Match

	m, err := re.FindStringMatch(s)
	for m != nil && err == nil {
		matches = append(matches, m)
		prev := m
		m, err = re.FindNextMatch(m)
		if m != nil && m.Length == 0 && prev.Length == 0 && m.Index == prev.Index {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// splitLines splits on '\n' and drops a trailing '\r' from each line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// lineStarts returns the rune offset at which each line begins.
func lineStarts(runes []rune) []int {
	starts := []int{0}
	for i, r := range runes {
		if r == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// lineForOffset maps a rune offset to its 1-based line.
func lineForOffset(starts []int, offset int) int {
	idx := sort.Search(len(starts), func(i int) bool {
		return starts[i] > offset
	})
	return idx
}

func contextWindow(lines []string, line, n int) []string {
	from := line - 1 - n
	if from < 0 {
		from = 0
	}
	to := line + n
	if to > len(lines) {
		to = len(lines)
	}
	if from >= to {
		return nil
	}
	window := make([]string, to-from)
	copy(window, lines[from:to])
	return window
}
