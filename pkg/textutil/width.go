// Package textutil measures and trims excerpt text by terminal display width.
package textutil

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Ellipsis marks a truncated excerpt.
const Ellipsis = "…"

// VisibleWidth returns the terminal display width of s.
// Line breaks and tabs count as one cell each, so blank lines still use up an excerpt budget.
func VisibleWidth(s string) int {
	if s == "" {
		return 0
	}
	width := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		width += graphemeWidth(g.Str())
	}
	return width
}

// TruncateByWidth cuts s to at most w display cells without splitting a grapheme.
// When s is cut and ellipsis is non-empty, the ellipsis is appended within the limit.
func TruncateByWidth(s string, w int, ellipsis string) string {
	if s == "" || w <= 0 {
		return ""
	}
	if VisibleWidth(s) <= w {
		return s
	}

	limit := w
	ellW := runewidth.StringWidth(ellipsis)
	if ellW <= w {
		limit = w - ellW
	} else {
		ellipsis = ""
	}

	var b strings.Builder
	used := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		seg := g.Str()
		segW := graphemeWidth(seg)
		if used+segW > limit {
			break
		}
		b.WriteString(seg)
		used += segW
	}
	return b.String() + ellipsis
}

// FirstLine returns s up to its first line break.
func FirstLine(s string) string {
	if idx := strings.IndexAny(s, "\r\n"); idx >= 0 {
		return s[:idx]
	}
	return s
}

func graphemeWidth(seg string) int {
	switch seg {
	case "\n", "\r\n", "\r", "\t":
		return 1
	}
	return runewidth.StringWidth(seg)
}
